//go:build integration

package cache

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aakar/internal/events"
	"aakar/internal/platform/config"
	"aakar/internal/platform/redis"
	"aakar/pkg/testutil/containers"
)

type CacheIntegrationSuite struct {
	suite.Suite

	rc     *containers.RedisContainer
	client *redis.Client
	store  *events.InMemoryStore
	cache  *Cache
}

func TestCacheIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheIntegrationSuite))
}

func (s *CacheIntegrationSuite) SetupSuite() {
	s.rc = containers.NewRedisContainer(s.T())

	client, err := redis.New(config.RedisConfig{
		URL:          s.rc.URL,
		PoolSize:     2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	s.Require().NoError(err)
	s.client = client
}

func (s *CacheIntegrationSuite) SetupTest() {
	s.Require().NoError(s.rc.FlushAll(context.Background()))
	s.store = events.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	s.cache = New(s.store, s.client, time.Minute, nil, logger)
}

func (s *CacheIntegrationSuite) TestReadThroughPopulatesCache() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, events.Event{ID: 1, Name: "Robo Race", Active: true}))

	list, err := s.cache.ListActive(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)

	// A store change is invisible until the cache entry goes away.
	s.Require().NoError(s.store.Save(ctx, events.Event{ID: 2, Name: "Hackathon", Active: true}))
	list, err = s.cache.ListActive(ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *CacheIntegrationSuite) TestInvalidateDropsCachedListing() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, events.Event{ID: 1, Name: "Robo Race", Active: true}))

	_, err := s.cache.ListActive(ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Save(ctx, events.Event{ID: 2, Name: "Hackathon", Active: true}))
	s.Require().NoError(s.cache.Invalidate(ctx))

	list, err := s.cache.ListActive(ctx)
	s.Require().NoError(err)
	s.Len(list, 2)
}

func (s *CacheIntegrationSuite) TestEmptyListingIsCached() {
	ctx := context.Background()

	list, err := s.cache.ListActive(ctx)
	s.Require().NoError(err)
	s.Empty(list)
}
