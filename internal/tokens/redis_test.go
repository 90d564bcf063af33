package tokens

import (
	"context"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RedisStoreTestSuite struct {
	suite.Suite
	ctx       context.Context
	container testcontainers.Container
	url       string
	store     *RedisStore
}

func (s *RedisStoreTestSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(s.T())

	s.ctx = context.Background()
	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	s.Require().NoError(err)
	s.container = container

	host, err := container.Host(s.ctx)
	s.Require().NoError(err)
	port, err := container.MappedPort(s.ctx, "6379")
	s.Require().NoError(err)
	s.url = fmt.Sprintf("redis://%s:%s/0", host, port.Port())

	store, err := OpenRedisStore(s.ctx, s.url, "test:session")
	s.Require().NoError(err)
	s.store = store
}

func (s *RedisStoreTestSuite) TearDownSuite() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(s.ctx))
	}
}

func (s *RedisStoreTestSuite) SetupTest() {
	s.Require().NoError(s.store.Clear(s.ctx))
}

func (s *RedisStoreTestSuite) TestRoundTrip() {
	want := Pair{AccessToken: "access", RefreshToken: "refresh"}
	s.Require().NoError(s.store.Set(s.ctx, want))

	got, err := s.store.Get(s.ctx)
	s.Require().NoError(err)
	s.Equal(want, got)
}

func (s *RedisStoreTestSuite) TestClearIsIdempotent() {
	s.Require().NoError(s.store.Set(s.ctx, Pair{AccessToken: "a", RefreshToken: "r"}))
	s.Require().NoError(s.store.Clear(s.ctx))
	s.Require().NoError(s.store.Clear(s.ctx))

	got, err := s.store.Get(s.ctx)
	s.Require().NoError(err)
	s.True(got.Empty())
}

func (s *RedisStoreTestSuite) TestSharedBetweenClients() {
	opts, err := redis.ParseURL(s.url)
	s.Require().NoError(err)
	other := NewRedisStore(redis.NewClient(opts), "test:session")
	defer other.Close()

	s.Require().NoError(s.store.Set(s.ctx, Pair{AccessToken: "a", RefreshToken: "r"}))

	got, err := other.Get(s.ctx)
	s.Require().NoError(err)
	s.Equal(Pair{AccessToken: "a", RefreshToken: "r"}, got)
}

func TestRedisStoreTestSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreTestSuite))
}
