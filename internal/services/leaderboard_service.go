package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"questline/engine/internal/common"
	"questline/engine/internal/constants"
	"questline/engine/internal/db/repositories"
	"questline/engine/internal/metrics"
	"questline/engine/internal/models/entities"

	"golang.org/x/sync/singleflight"
)

const leaderboardCacheTTL = 30 * time.Second

// LeaderboardService is the read-side ranking helper. Pages are cached
// briefly and concurrent loads for the same page collapse into one query;
// rank lookups always hit the store.
type LeaderboardService struct {
	repo    *repositories.LeaderboardRepository
	cache   common.CacheInterface
	metrics *metrics.Registry
	group   singleflight.Group
}

// NewLeaderboardService creates a LeaderboardService. cache and metricsReg
// may be nil.
func NewLeaderboardService(repo *repositories.LeaderboardRepository, cache common.CacheInterface, metricsReg *metrics.Registry) *LeaderboardService {
	return &LeaderboardService{repo: repo, cache: cache, metrics: metricsReg}
}

// Top returns a community's leaderboard ordered by XP descending. Entries
// may be up to the cache TTL stale.
func (s *LeaderboardService) Top(ctx context.Context, communityID string, limit int) ([]entities.LeaderboardRow, error) {
	if limit <= 0 {
		limit = constants.DefaultLeaderboardLimit
	}

	key := fmt.Sprintf("leaderboard:%s:%d", communityID, limit)
	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			if rows, ok := decodeCachedRows(cached); ok {
				s.metrics.IncCacheHit("leaderboard")
				return rows, nil
			}
		}
		s.metrics.IncCacheMiss("leaderboard")
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		rows, err := s.repo.Top(ctx, communityID, limit)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.Set(key, rows, leaderboardCacheTTL)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]entities.LeaderboardRow), nil
}

// decodeCachedRows recovers a leaderboard page from a cached value. The
// in-memory cache hands the typed slice straight back; a JSON-backed cache
// hands back decoded generics, which round-trip through json into the typed
// slice. Anything else is a miss.
func decodeCachedRows(cached interface{}) ([]entities.LeaderboardRow, bool) {
	if rows, ok := cached.([]entities.LeaderboardRow); ok {
		return rows, true
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return nil, false
	}
	var rows []entities.LeaderboardRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

// RankForMember returns the member's 1-based rank within the community.
// Computed as a count of strictly higher scores rather than a page scan, so
// it stays cheap as communities grow.
func (s *LeaderboardService) RankForMember(ctx context.Context, communityID, memberID string) (int, error) {
	return s.repo.RankForMember(ctx, communityID, memberID)
}
