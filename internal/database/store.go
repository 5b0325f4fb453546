package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/AnshRaj112/ai-journal-backend/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or is not owned by the caller.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a user with the same email already exists.
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// EntryStore persists journal entries. Every read and write except CreateEntry is
// scoped to an owner: an entry owned by someone else behaves exactly like a
// missing one and yields ErrNotFound.
type EntryStore interface {
	CreateEntry(ctx context.Context, entry *models.JournalEntry) error
	GetOwned(ctx context.Context, id, ownerID string) (*models.JournalEntry, error)
	// UpdateOwned replaces content, analysis fields and updated_at in one write
	// and returns the stored entry.
	UpdateOwned(ctx context.Context, entry *models.JournalEntry) (*models.JournalEntry, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
	// ListByOwner returns the owner's entries newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]models.JournalEntry, error)
}

// Store is a backend holding both users and entries.
type Store interface {
	UserStore
	EntryStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the backend named by the URL scheme:
// postgres:// (default), mongodb:// or mongodb+srv://, memory://.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "memory://"):
		logger.Warn("Using in-memory store, data will not survive a restart")
		return NewMemoryStore(), nil
	case strings.HasPrefix(databaseURL, "mongodb://"), strings.HasPrefix(databaseURL, "mongodb+srv://"):
		store, err := ConnectMongo(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		logger.Info("Connected to MongoDB", zap.String("database", store.db.Name()))
		return store, nil
	default:
		store, err := ConnectPostgres(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("Connected to PostgreSQL")
		return store, nil
	}
}
