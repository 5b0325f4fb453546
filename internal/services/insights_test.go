package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/ai-journal-backend/internal/database"
	"github.com/AnshRaj112/ai-journal-backend/internal/models"
)

func TestComputeMoodInsights(t *testing.T) {
	now := fixedNow
	entries := []models.JournalEntry{
		{Mood: "Happy", CreatedAt: now.Add(-time.Hour)},
		{Mood: "happy", CreatedAt: now.Add(-48 * time.Hour)},
		{Mood: "Anxious", CreatedAt: now.Add(-10 * 24 * time.Hour)},
		{Mood: "Melancholic", CreatedAt: now.Add(-30 * 24 * time.Hour)},
	}

	got := ComputeMoodInsights(entries, now)

	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 2, got.ThisWeek)
	assert.Equal(t, 2, got.Moods[models.CategoryHappy])
	assert.Equal(t, 1, got.Moods[models.CategoryAnxious])
	assert.Equal(t, 1, got.Moods[models.CategoryUnrecognized])
	assert.Equal(t, 0, got.Moods[models.CategorySad])
	assert.Len(t, got.Moods, len(models.MoodCategories))
}

func TestMoodInsightsCached(t *testing.T) {
	_, client := newTestRedis(t)
	store := database.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.CreateEntry(ctx, &models.JournalEntry{ID: "e1", OwnerID: "alice", Mood: "Sad", CreatedAt: time.Now()}))

	svc := NewInsightsService(store, NewRedisCache(client), zap.NewNop())

	first, err := svc.MoodInsights(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Total)

	require.NoError(t, store.CreateEntry(ctx, &models.JournalEntry{ID: "e2", OwnerID: "alice", Mood: "Sad", CreatedAt: time.Now()}))

	cached, err := svc.MoodInsights(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Total, "served from cache")

	svc.Invalidate(ctx, "alice")
	fresh, err := svc.MoodInsights(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Total)
	assert.Equal(t, 2, fresh.Moods[models.CategorySad])
}

// racingStore creates an entry and invalidates between a reader's list and
// its cache write.
type racingStore struct {
	database.EntryStore
	svc  *InsightsService
	once sync.Once
}

func (r *racingStore) ListByOwner(ctx context.Context, ownerID string) ([]models.JournalEntry, error) {
	entries, err := r.EntryStore.ListByOwner(ctx, ownerID)
	r.once.Do(func() {
		_ = r.EntryStore.CreateEntry(ctx, &models.JournalEntry{ID: "e2", OwnerID: ownerID, Mood: "Happy", CreatedAt: time.Now()})
		r.svc.Invalidate(ctx, ownerID)
	})
	return entries, err
}

func TestMoodInsightsStaleWriteAfterInvalidate(t *testing.T) {
	mr, client := newTestRedis(t)
	store := database.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.CreateEntry(ctx, &models.JournalEntry{ID: "e1", OwnerID: "alice", Mood: "Sad", CreatedAt: time.Now()}))

	racing := &racingStore{EntryStore: store}
	svc := NewInsightsService(racing, NewRedisCache(client), zap.NewNop())
	racing.svc = svc

	stale, err := svc.MoodInsights(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, stale.Total)

	fresh, err := svc.MoodInsights(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Total, "result computed before the invalidation is not served")
	assert.Equal(t, 1, fresh.Moods[models.CategoryHappy])

	assert.True(t, mr.Exists("cache:moods:ver:alice"))
	assert.Equal(t, moodsVersionTTL, mr.TTL("cache:moods:ver:alice"))
}

func TestMoodInsightsInvalidateDropsSupersededEntry(t *testing.T) {
	mr, client := newTestRedis(t)
	store := database.NewMemoryStore()
	ctx := context.Background()
	svc := NewInsightsService(store, NewRedisCache(client), zap.NewNop())

	_, err := svc.MoodInsights(ctx, "alice")
	require.NoError(t, err)
	require.True(t, mr.Exists("cache:moods:alice:"))

	svc.Invalidate(ctx, "alice")
	assert.False(t, mr.Exists("cache:moods:alice:"))
}

func TestMoodInsightsCacheFailureFallsBack(t *testing.T) {
	store := database.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.CreateEntry(ctx, &models.JournalEntry{ID: "e1", OwnerID: "alice", Mood: "Happy", CreatedAt: time.Now()}))

	broken := &mockCache{
		getFunc: func(context.Context, string, interface{}) (bool, error) { return false, errors.New("redis down") },
		setFunc: func(context.Context, string, interface{}) error { return errors.New("redis down") },
	}
	svc := NewInsightsService(store, broken, zap.NewNop())

	got, err := svc.MoodInsights(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Total)
}

func TestMoodInsightsWithoutCache(t *testing.T) {
	svc := NewInsightsService(database.NewMemoryStore(), nil, zap.NewNop())
	svc.Invalidate(context.Background(), "alice")

	got, err := svc.MoodInsights(context.Background(), "alice")
	require.NoError(t, err)
	assert.Zero(t, got.Total)
	assert.NotNil(t, got.Moods)
}
