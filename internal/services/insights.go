package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AnshRaj112/ai-journal-backend/internal/apperrors"
	"github.com/AnshRaj112/ai-journal-backend/internal/database"
	"github.com/AnshRaj112/ai-journal-backend/internal/models"
)

const (
	moodInsightsTTL = 10 * time.Minute
	// outlives every data key written under the version it names
	moodsVersionTTL = 24 * time.Hour
)

// MoodInsights summarizes a user's entries by display category.
type MoodInsights struct {
	Total    int                         `json:"total"`
	ThisWeek int                         `json:"thisWeek"`
	Moods    map[models.MoodCategory]int `json:"moods"`
}

// InsightsService computes mood insights, cached per user when a cache is configured.
type InsightsService struct {
	entries database.EntryStore
	cache   Cache
	logger  *zap.Logger
	now     func() time.Time
}

// NewInsightsService accepts a nil cache.
func NewInsightsService(entries database.EntryStore, cache Cache, logger *zap.Logger) *InsightsService {
	return &InsightsService{entries: entries, cache: cache, logger: logger, now: time.Now}
}

func moodsVersionKey(userID string) string {
	return CacheKey("moods:ver", userID)
}

// moodsCacheKey resolves the data key for the user's current cache version.
// Invalidate moves the version, so a result computed before an invalidation
// is written under a key no later read uses.
func (s *InsightsService) moodsCacheKey(ctx context.Context, userID string) (string, error) {
	var version string
	if _, err := s.cache.Get(ctx, moodsVersionKey(userID), &version); err != nil {
		return "", err
	}
	return CacheKey("moods", userID+":"+version), nil
}

func (s *InsightsService) MoodInsights(ctx context.Context, userID string) (*MoodInsights, error) {
	var key string
	if s.cache != nil {
		var err error
		if key, err = s.moodsCacheKey(ctx, userID); err != nil {
			s.logger.Warn("Mood insights cache read failed", zap.String("user_id", userID), zap.Error(err))
		} else {
			var cached MoodInsights
			hit, err := s.cache.Get(ctx, key, &cached)
			if err != nil {
				s.logger.Warn("Mood insights cache read failed", zap.String("user_id", userID), zap.Error(err))
			} else if hit {
				return &cached, nil
			}
		}
	}

	entries, err := s.entries.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list entries", err)
	}
	insights := ComputeMoodInsights(entries, s.now())

	if key != "" {
		if err := s.cache.Set(ctx, key, insights, moodInsightsTTL); err != nil {
			s.logger.Warn("Mood insights cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return insights, nil
}

// Invalidate moves the user's cache version. Failures are logged only.
func (s *InsightsService) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	superseded, keyErr := s.moodsCacheKey(ctx, userID)
	if err := s.cache.Set(ctx, moodsVersionKey(userID), uuid.NewString(), moodsVersionTTL); err != nil {
		s.logger.Warn("Mood insights cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if keyErr == nil {
		if err := s.cache.Delete(ctx, superseded); err != nil {
			s.logger.Debug("Superseded mood insights not dropped", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// ComputeMoodInsights counts every category, zero counts included.
func ComputeMoodInsights(entries []models.JournalEntry, now time.Time) *MoodInsights {
	insights := &MoodInsights{
		Total: len(entries),
		Moods: make(map[models.MoodCategory]int, len(models.MoodCategories)),
	}
	for _, c := range models.MoodCategories {
		insights.Moods[c] = 0
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	for _, e := range entries {
		insights.Moods[e.Mood.Category()]++
		if e.CreatedAt.After(weekAgo) {
			insights.ThisWeek++
		}
	}
	return insights
}
