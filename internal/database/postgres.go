package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/AnshRaj112/ai-journal-backend/internal/models"
)

const uniqueViolation = "23505"

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ConnectPostgres opens a pooled connection and creates the schema.
func ConnectPostgres(ctx context.Context, postgresURI string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	store := NewPostgresStore(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Migrate creates all necessary tables if they don't exist
func (s *PostgresStore) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(320) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS journal_entries (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			summary TEXT NOT NULL,
			mood TEXT NOT NULL,
			suggestion TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// mood is open-ended; tables created with a bounded column are widened
		`ALTER TABLE journal_entries ALTER COLUMN mood TYPE TEXT`,

		`CREATE INDEX IF NOT EXISTS idx_journal_entries_owner_created ON journal_entries(owner_id, created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

const entryColumns = `id, owner_id, content, summary, mood, suggestion, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.JournalEntry, error) {
	var e models.JournalEntry
	var mood string
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Content, &e.Summary, &mood, &e.Suggestion, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Mood = models.Mood(mood)
	return &e, nil
}

func (s *PostgresStore) CreateEntry(ctx context.Context, entry *models.JournalEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_entries (`+entryColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.OwnerID, entry.Content, entry.Summary, string(entry.Mood), entry.Suggestion,
		entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetOwned(ctx context.Context, id, ownerID string) (*models.JournalEntry, error) {
	if !validUUID(id) {
		return nil, ErrNotFound
	}
	entry, err := scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE id = $1 AND owner_id = $2`, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) UpdateOwned(ctx context.Context, entry *models.JournalEntry) (*models.JournalEntry, error) {
	if !validUUID(entry.ID) {
		return nil, ErrNotFound
	}
	updated, err := scanEntry(s.db.QueryRowContext(ctx,
		`UPDATE journal_entries
		SET content = $3, summary = $4, mood = $5, suggestion = $6, updated_at = $7
		WHERE id = $1 AND owner_id = $2
		RETURNING `+entryColumns,
		entry.ID, entry.OwnerID, entry.Content, entry.Summary, string(entry.Mood), entry.Suggestion, entry.UpdatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) DeleteOwned(ctx context.Context, id, ownerID string) error {
	if !validUUID(id) {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]models.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close(context.Context) error {
	return s.db.Close()
}

// ids are UUID columns, a malformed id can never match a row
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
