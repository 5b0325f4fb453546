package services

import (
	"context"
	"sync"
	"time"

	"github.com/AnshRaj112/ai-journal-backend/internal/database"
	"github.com/AnshRaj112/ai-journal-backend/internal/models"
)

type mockEntryStore struct {
	createEntryFunc func(ctx context.Context, entry *models.JournalEntry) error
	getOwnedFunc    func(ctx context.Context, id, ownerID string) (*models.JournalEntry, error)
	updateOwnedFunc func(ctx context.Context, entry *models.JournalEntry) (*models.JournalEntry, error)
	deleteOwnedFunc func(ctx context.Context, id, ownerID string) error
	listByOwnerFunc func(ctx context.Context, ownerID string) ([]models.JournalEntry, error)

	mu     sync.Mutex
	writes int
}

func (m *mockEntryStore) wrote() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *mockEntryStore) countWrite() {
	m.mu.Lock()
	m.writes++
	m.mu.Unlock()
}

func (m *mockEntryStore) CreateEntry(ctx context.Context, entry *models.JournalEntry) error {
	m.countWrite()
	if m.createEntryFunc != nil {
		return m.createEntryFunc(ctx, entry)
	}
	return nil
}

func (m *mockEntryStore) GetOwned(ctx context.Context, id, ownerID string) (*models.JournalEntry, error) {
	if m.getOwnedFunc != nil {
		return m.getOwnedFunc(ctx, id, ownerID)
	}
	return nil, database.ErrNotFound
}

func (m *mockEntryStore) UpdateOwned(ctx context.Context, entry *models.JournalEntry) (*models.JournalEntry, error) {
	m.countWrite()
	if m.updateOwnedFunc != nil {
		return m.updateOwnedFunc(ctx, entry)
	}
	return entry, nil
}

func (m *mockEntryStore) DeleteOwned(ctx context.Context, id, ownerID string) error {
	m.countWrite()
	if m.deleteOwnedFunc != nil {
		return m.deleteOwnedFunc(ctx, id, ownerID)
	}
	return nil
}

func (m *mockEntryStore) ListByOwner(ctx context.Context, ownerID string) ([]models.JournalEntry, error) {
	if m.listByOwnerFunc != nil {
		return m.listByOwnerFunc(ctx, ownerID)
	}
	return nil, nil
}

type mockAnalyzer struct {
	analyzeFunc func(ctx context.Context, content string) (string, error)

	mu    sync.Mutex
	calls []string
}

func (m *mockAnalyzer) Analyze(ctx context.Context, content string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, content)
	m.mu.Unlock()
	if m.analyzeFunc != nil {
		return m.analyzeFunc(ctx, content)
	}
	return `{"summary":"A calm day.","suggestion":"Keep it up.","mood":"Neutral"}`, nil
}

func (m *mockAnalyzer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockInvalidator struct {
	users []string
}

func (m *mockInvalidator) Invalidate(_ context.Context, userID string) {
	m.users = append(m.users, userID)
}

type mockCache struct {
	getFunc    func(ctx context.Context, key string, dest interface{}) (bool, error)
	setFunc    func(ctx context.Context, key string, value interface{}) error
	deleteFunc func(ctx context.Context, key string) error
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key, dest)
	}
	return false, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, key, value)
	}
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, key)
	}
	return nil
}
