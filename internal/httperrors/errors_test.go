package httperrors

import (
	"context"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"expensetracker/cli/internal/errors"
)

func TestClassify(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	tests := []struct {
		name string
		err  error
		want Cause
	}{
		{"nil", nil, CauseUnknown},
		{"deadline", errors.Wrap(errors.Network, "cannot reach backend", context.DeadlineExceeded), CauseTimeout},
		{"dns", errors.Wrap(errors.Network, "cannot reach backend", &net.DNSError{Err: "no such host", Name: "backend"}), CauseDNS},
		{"refused", errors.Wrap(errors.Network, "cannot reach backend", refused), CauseRefused},
		{"tls", errors.Wrap(errors.Network, "cannot reach backend", fmt.Errorf("x509: certificate signed by unknown authority")), CauseTLS},
		{"server", errors.WithStatus(503, "unavailable"), CauseServer},
		{"client status", errors.WithStatus(404, "not found"), CauseUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestPresentSkipsNonNetworkErrors(t *testing.T) {
	assert.False(t, Present(errors.New(errors.Auth, "invalid credentials"), "logging in", "http://localhost:8080"))
	assert.False(t, Present(errors.WithStatus(404, "not found"), "calling", "http://localhost:8080"))
	assert.True(t, Present(errors.WithStatus(502, "bad gateway"), "calling", "http://localhost:8080"))
}

func TestExtractHostFromURL(t *testing.T) {
	assert.Equal(t, "localhost:8080", ExtractHostFromURL("http://localhost:8080"))
	assert.Equal(t, "the backend", ExtractHostFromURL("::bad"))
}
