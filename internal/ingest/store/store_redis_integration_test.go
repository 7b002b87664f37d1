//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"salesintel/internal/ingest/store"
	"salesintel/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestClaimReleaseCycle() {
	ctx := context.Background()

	ok, err := s.store.Claim(ctx, "acme:k1", time.Minute)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.Claim(ctx, "acme:k1", time.Minute)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.Release(ctx, "acme:k1"))

	ok, err = s.store.Claim(ctx, "acme:k1", time.Minute)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisStoreSuite) TestClaimExpires() {
	ctx := context.Background()
	_, err := s.store.Claim(ctx, "short", 100*time.Millisecond)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		ok, err := s.store.Claim(ctx, "short", time.Minute)
		return err == nil && ok
	}, 2*time.Second, 50*time.Millisecond)
}

func (s *RedisStoreSuite) TestConcurrentClaimsHaveOneWinner() {
	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.store.Claim(context.Background(), "race", time.Minute); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), wins.Load())
}
