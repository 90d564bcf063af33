// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns failed backend calls into troubleshooting output.
package httperrors

import (
	"context"
	stderrors "errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"expensetracker/cli/internal/errors"
)

// Cause is the detected reason a backend call failed.
type Cause int

const (
	CauseUnknown Cause = iota
	CauseTimeout
	CauseDNS
	CauseRefused
	CauseTLS
	CauseServer
)

// Classify inspects err for the common transport failures.
func Classify(err error) Cause {
	switch {
	case err == nil:
		return CauseUnknown
	case isTimeout(err):
		return CauseTimeout
	case isDNS(err):
		return CauseDNS
	case isConnectionRefused(err):
		return CauseRefused
	case isTLS(err):
		return CauseTLS
	case errors.StatusCode(err) >= 500:
		return CauseServer
	}
	return CauseUnknown
}

// Present prints a troubleshooting block for a network or server failure
// that happened while doing action (for example "logging in"). It reports
// whether err was one it knows how to present.
func Present(err error, action, baseURL string) bool {
	if !errors.Is(err, errors.Network) && errors.StatusCode(err) < 500 {
		return false
	}

	host := ExtractHostFromURL(baseURL)
	switch Classify(err) {
	case CauseTimeout:
		showTimeout(action)
	case CauseDNS:
		showDNS(action, host)
	case CauseRefused:
		showRefused(action, host)
	case CauseTLS:
		showTLS(action)
	case CauseServer:
		showServer(action, errors.StatusCode(err))
	default:
		showGeneric(action, host, err)
	}
	return true
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded")
}

func isDNS(err error) bool {
	var dnsErr *net.DNSError
	return stderrors.As(err, &dnsErr)
}

func isConnectionRefused(err error) bool {
	if stderrors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLS(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "tls") ||
		strings.Contains(s, "x509") ||
		strings.Contains(s, "certificate") ||
		strings.Contains(s, "handshake")
}

func showTimeout(action string) {
	pterm.Printf("⏱️  Connection timeout while %s\n", action)
	pterm.Println()
	pterm.Println("The backend took too long to respond. This could mean:")
	pterm.Println("  • The backend is under heavy load")
	pterm.Println("  • A firewall is dropping the connection")
	pterm.Println("  • EXPENSETRACKER_TIMEOUT is set too low")
	pterm.Println()
}

func showDNS(action, host string) {
	pterm.Printf("🌐 Cannot resolve %s while %s\n", host, action)
	pterm.Println()
	pterm.Println("Please check:")
	pterm.Println("  • EXPENSETRACKER_API_URL or base_url in config.yaml")
	pterm.Println("  • EXPENSETRACKER_MODE (\"container\" expects a host named backend)")
	pterm.Println()
}

func showRefused(action, host string) {
	pterm.Printf("🚫 Connection to %s refused while %s\n", host, action)
	pterm.Println()
	pterm.Println("Nothing is listening at that address. Is the backend running?")
	pterm.Println()
}

func showTLS(action string) {
	pterm.Printf("🔒 Secure connection failed while %s\n", action)
	pterm.Println()
	pterm.Println("Try:")
	pterm.Println("  • Checking your system date and time")
	pterm.Println("  • Using http:// for a local backend")
	pterm.Println()
}

func showServer(action string, status int) {
	pterm.Printf("⚠️  Backend error %d while %s\n", status, action)
	pterm.Println()
	pterm.Println("The backend failed to handle the request. Please try again later.")
	pterm.Println()
}

func showGeneric(action, host string, err error) {
	pterm.Printf("❌ Cannot reach %s while %s\n", host, action)
	pterm.Println()

	details := err.Error()
	if len(details) > 100 {
		details = details[:100] + "..."
	}
	pterm.Debug.Printf("Technical details: %s\n", details)
	pterm.Println()
}

// ExtractHostFromURL extracts the host from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "the backend"
	}
	return u.Host
}
