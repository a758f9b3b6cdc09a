package service

import (
	"context"
	"encoding/json"
	"time"

	"codeprep/internal/domain/model"
	"codeprep/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const analyticsCacheKey = "analytics:snapshot"

type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	rdb           *redis.Client // nil disables caching
	cacheTTL      time.Duration
	now           func() time.Time
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, rdb *redis.Client, cacheTTL time.Duration) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		rdb:           rdb,
		cacheTTL:      cacheTTL,
		now:           time.Now,
	}
}

func (s *AnalyticsService) Get(ctx context.Context) (*model.Analytics, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, analyticsCacheKey).Bytes(); err == nil {
			var a model.Analytics
			if err := json.Unmarshal(cached, &a); err != nil {
				zap.S().Warnw("discarding unreadable analytics cache entry", "error", err)
			} else {
				return &a, nil
			}
		}
	}

	weekStart, monthStart := periodStarts(s.now())
	snapshot, err := s.analyticsRepo.Snapshot(ctx, weekStart, monthStart)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(snapshot); err == nil {
			if err := s.rdb.Set(ctx, analyticsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				zap.S().Warnw("failed to cache analytics snapshot", "error", err)
			}
		}
	}
	return snapshot, nil
}

// periodStarts returns midnight of the current week's Sunday and of
// the first of the current month.
func periodStarts(now time.Time) (weekStart, monthStart time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart = today.AddDate(0, 0, -int(today.Weekday()))
	monthStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return weekStart, monthStart
}
