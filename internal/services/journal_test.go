package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/ai-journal-backend/internal/apperrors"
	"github.com/AnshRaj112/ai-journal-backend/internal/database"
	"github.com/AnshRaj112/ai-journal-backend/internal/models"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestEntryService(store database.EntryStore, analyzer Analyzer, opts ...EntryServiceOption) *EntryService {
	s := NewEntryService(store, analyzer, zap.NewNop(), opts...)
	s.now = func() time.Time { return fixedNow }
	s.newID = func() string { return "entry-1" }
	return s
}

func TestCreateRoundTrip(t *testing.T) {
	var stored *models.JournalEntry
	store := &mockEntryStore{createEntryFunc: func(_ context.Context, e *models.JournalEntry) error {
		stored = e
		return nil
	}}
	analyzer := &mockAnalyzer{analyzeFunc: func(context.Context, string) (string, error) {
		return `{"summary":"S","mood":"Happy","suggestion":"T"}`, nil
	}}
	inv := &mockInvalidator{}
	svc := newTestEntryService(store, analyzer, WithInvalidator(inv))

	entry, err := svc.Create(context.Background(), "alice", "  Great day at the beach.  ")
	require.NoError(t, err)

	assert.Equal(t, &models.JournalEntry{
		ID:         "entry-1",
		OwnerID:    "alice",
		Content:    "Great day at the beach.",
		Summary:    "S",
		Mood:       models.MoodHappy,
		Suggestion: "T",
		CreatedAt:  fixedNow,
		UpdatedAt:  fixedNow,
	}, entry)
	assert.Same(t, entry, stored)
	assert.Equal(t, []string{"Great day at the beach."}, analyzer.calls)
	assert.Equal(t, []string{"alice"}, inv.users)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"empty", "", "Content is required"},
		{"whitespace", " \n\t ", "Content is required"},
		{"too long", strings.Repeat("é", 11), "Content is too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockEntryStore{}
			analyzer := &mockAnalyzer{}
			svc := newTestEntryService(store, analyzer, WithMaxContentLength(10))

			_, err := svc.Create(context.Background(), "alice", tt.content)
			appErr := apperrors.Get(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperrors.KindValidation, appErr.Kind)
			assert.Equal(t, tt.message, appErr.Message)
			assert.Zero(t, analyzer.callCount())
			assert.Zero(t, store.wrote())
		})
	}
}

func TestCreateIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name    string
		analyze func(context.Context, string) (string, error)
		kind    apperrors.Kind
		code    string
		message string
	}{
		{
			name:    "no json",
			analyze: func(context.Context, string) (string, error) { return "I'd rather not say.", nil },
			kind:    apperrors.KindAIResponse,
			message: "no JSON object found",
		},
		{
			name:    "missing mood",
			analyze: func(context.Context, string) (string, error) { return `{"summary":"x"}`, nil },
			kind:    apperrors.KindAIResponse,
			message: "incomplete analysis",
		},
		{
			name: "rate limited",
			analyze: func(context.Context, string) (string, error) {
				return "", apperrors.NewAIServiceError(apperrors.CodeAIRateLimited, "AI service rate limit exceeded")
			},
			kind: apperrors.KindAIService,
			code: apperrors.CodeAIRateLimited,
		},
		{
			name:    "unclassified failure",
			analyze: func(context.Context, string) (string, error) { return "", errors.New("dial tcp: refused") },
			kind:    apperrors.KindAIService,
			code:    apperrors.CodeAIUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := database.NewMemoryStore()
			inv := &mockInvalidator{}
			svc := newTestEntryService(store, &mockAnalyzer{analyzeFunc: tt.analyze}, WithInvalidator(inv))

			_, err := svc.Create(context.Background(), "alice", "some text")
			appErr := apperrors.Get(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.kind, appErr.Kind)
			if tt.code != "" {
				assert.Equal(t, tt.code, appErr.Code)
			}
			if tt.message != "" {
				assert.Equal(t, tt.message, appErr.Message)
			}

			entries, err := store.ListByOwner(context.Background(), "alice")
			require.NoError(t, err)
			assert.Empty(t, entries)
			assert.Empty(t, inv.users)
		})
	}
}

func TestCreateStoreFailure(t *testing.T) {
	store := &mockEntryStore{createEntryFunc: func(context.Context, *models.JournalEntry) error {
		return errors.New("connection reset")
	}}
	svc := newTestEntryService(store, &mockAnalyzer{})

	_, err := svc.Create(context.Background(), "alice", "text")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStoreFailure))
}

func TestEditReanalyzesAndKeepsIdentity(t *testing.T) {
	store := database.NewMemoryStore()
	created := fixedNow.Add(-24 * time.Hour)
	require.NoError(t, store.CreateEntry(context.Background(), &models.JournalEntry{
		ID: "e1", OwnerID: "alice", Content: "old", Summary: "old", Mood: models.MoodSad, Suggestion: "old",
		CreatedAt: created, UpdatedAt: created,
	}))
	analyzer := &mockAnalyzer{analyzeFunc: func(context.Context, string) (string, error) {
		return `{"summary":"new summary","mood":"Happy","suggestions":"new tip"}`, nil
	}}
	svc := newTestEntryService(store, analyzer)

	entry, err := svc.Edit(context.Background(), "e1", "alice", " old ")
	require.NoError(t, err)

	assert.Equal(t, 1, analyzer.callCount(), "unchanged content is still re-analyzed")
	assert.Equal(t, "e1", entry.ID)
	assert.Equal(t, "alice", entry.OwnerID)
	assert.Equal(t, created, entry.CreatedAt)
	assert.Equal(t, fixedNow, entry.UpdatedAt)
	assert.Equal(t, "new summary", entry.Summary)
	assert.Equal(t, models.MoodHappy, entry.Mood)
	assert.Equal(t, "new tip", entry.Suggestion)
}

func TestEditAndDeleteByOtherUser(t *testing.T) {
	store := database.NewMemoryStore()
	require.NoError(t, store.CreateEntry(context.Background(), &models.JournalEntry{
		ID: "e1", OwnerID: "alice", Content: "alice's secret", Summary: "s", Mood: models.MoodSad, CreatedAt: fixedNow,
	}))
	analyzer := &mockAnalyzer{}
	svc := newTestEntryService(store, analyzer)

	entry, err := svc.Edit(context.Background(), "e1", "bob", "overwrite")
	assert.Nil(t, entry)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFoundOrUnauthorized))
	assert.NotContains(t, err.Error(), "alice's secret")
	assert.Zero(t, analyzer.callCount(), "no upstream call for foreign entries")

	err = svc.Delete(context.Background(), "e1", "bob")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFoundOrUnauthorized))

	_, missingErr := svc.Edit(context.Background(), "nope", "bob", "overwrite")
	assert.Equal(t, apperrors.Get(err).Message, apperrors.Get(missingErr).Message)

	still, err := store.GetOwned(context.Background(), "e1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice's secret", still.Content)
}

func TestEditFailureLeavesEntryUnchanged(t *testing.T) {
	store := database.NewMemoryStore()
	require.NoError(t, store.CreateEntry(context.Background(), &models.JournalEntry{
		ID: "e1", OwnerID: "alice", Content: "old", Summary: "s", Mood: models.MoodSad, CreatedAt: fixedNow,
	}))
	analyzer := &mockAnalyzer{analyzeFunc: func(context.Context, string) (string, error) {
		return `{"summary":"x","mood":`, nil
	}}
	svc := newTestEntryService(store, analyzer)

	_, err := svc.Edit(context.Background(), "e1", "alice", "new")
	assert.True(t, apperrors.IsKind(err, apperrors.KindAIResponse))

	entry, err := store.GetOwned(context.Background(), "e1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "old", entry.Content)
	assert.Equal(t, models.MoodSad, entry.Mood)
}

func TestEditEntryVanishedDuringAnalysis(t *testing.T) {
	store := &mockEntryStore{
		getOwnedFunc: func(_ context.Context, id, owner string) (*models.JournalEntry, error) {
			return &models.JournalEntry{ID: id, OwnerID: owner, CreatedAt: fixedNow}, nil
		},
		updateOwnedFunc: func(context.Context, *models.JournalEntry) (*models.JournalEntry, error) {
			return nil, database.ErrNotFound
		},
	}
	svc := newTestEntryService(store, &mockAnalyzer{})

	_, err := svc.Edit(context.Background(), "e1", "alice", "text")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFoundOrUnauthorized))
}

func TestDelete(t *testing.T) {
	store := database.NewMemoryStore()
	require.NoError(t, store.CreateEntry(context.Background(), &models.JournalEntry{ID: "e1", OwnerID: "alice"}))
	inv := &mockInvalidator{}
	svc := newTestEntryService(store, &mockAnalyzer{}, WithInvalidator(inv))

	require.NoError(t, svc.Delete(context.Background(), "e1", "alice"))
	assert.Equal(t, []string{"alice"}, inv.users)

	err := svc.Delete(context.Background(), "e1", "alice")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFoundOrUnauthorized))
}

func TestListAllScopedAndOrdered(t *testing.T) {
	store := database.NewMemoryStore()
	analyzer := &mockAnalyzer{}
	svc := NewEntryService(store, analyzer, zap.NewNop())

	clock := fixedNow
	svc.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	for _, owner := range []string{"alice", "bob", "alice", "carol", "alice"} {
		_, err := svc.Create(context.Background(), owner, "entry by "+owner)
		require.NoError(t, err)
	}

	entries, err := svc.ListAll(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, "alice", e.OwnerID)
		assert.NotEmpty(t, e.Summary)
		assert.NotEmpty(t, e.Mood)
		if i > 0 {
			assert.True(t, entries[i-1].CreatedAt.After(e.CreatedAt))
		}
	}

	empty, err := svc.ListAll(context.Background(), "dave")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestListAllNilFromStore(t *testing.T) {
	svc := newTestEntryService(&mockEntryStore{}, &mockAnalyzer{})

	entries, err := svc.ListAll(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, entries)
}
