package database

import (
	"context"
	"sort"
	"sync"

	"github.com/AnshRaj112/ai-journal-backend/internal/models"
)

// MemoryStore is an in-process Store used for local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]models.User // keyed by email
	entries map[string]models.JournalEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]models.User),
		entries: make(map[string]models.JournalEntry),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Email]; exists {
		return ErrDuplicateEmail
	}
	s.users[user.Email] = *user
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStore) CreateEntry(_ context.Context, entry *models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.ID] = *entry
	return nil
}

func (s *MemoryStore) GetOwned(_ context.Context, id, ownerID string) (*models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok || entry.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (s *MemoryStore) UpdateOwned(_ context.Context, entry *models.JournalEntry) (*models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.entries[entry.ID]
	if !ok || stored.OwnerID != entry.OwnerID {
		return nil, ErrNotFound
	}
	stored.Content = entry.Content
	stored.Summary = entry.Summary
	stored.Mood = entry.Mood
	stored.Suggestion = entry.Suggestion
	stored.UpdatedAt = entry.UpdatedAt
	s.entries[entry.ID] = stored
	return &stored, nil
}

func (s *MemoryStore) DeleteOwned(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok || entry.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := []models.JournalEntry{}
	for _, e := range s.entries {
		if e.OwnerID == ownerID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *MemoryStore) Ping(context.Context) error  { return nil }
func (s *MemoryStore) Close(context.Context) error { return nil }
