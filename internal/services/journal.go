package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AnshRaj112/ai-journal-backend/internal/apperrors"
	"github.com/AnshRaj112/ai-journal-backend/internal/database"
	"github.com/AnshRaj112/ai-journal-backend/internal/models"
)

// DefaultMaxContentLength bounds entry content in runes.
const DefaultMaxContentLength = 10000

// EntryRecorder counts entry operations.
type EntryRecorder interface {
	RecordEntryOperation(operation string, err error)
}

// Invalidator drops derived per-user data after a write.
type Invalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// EntryService runs the create/edit pipeline: validate, analyze, parse, persist.
// A failure at any step leaves the store untouched.
type EntryService struct {
	store            database.EntryStore
	analyzer         Analyzer
	invalidator      Invalidator
	metrics          EntryRecorder
	logger           *zap.Logger
	maxContentLength int
	now              func() time.Time
	newID            func() string
}

// EntryServiceOption customizes an EntryService.
type EntryServiceOption func(*EntryService)

func WithMaxContentLength(n int) EntryServiceOption {
	return func(s *EntryService) { s.maxContentLength = n }
}

func WithInvalidator(inv Invalidator) EntryServiceOption {
	return func(s *EntryService) { s.invalidator = inv }
}

func WithEntryMetrics(m EntryRecorder) EntryServiceOption {
	return func(s *EntryService) { s.metrics = m }
}

func NewEntryService(store database.EntryStore, analyzer Analyzer, logger *zap.Logger, opts ...EntryServiceOption) *EntryService {
	s := &EntryService{
		store:            store,
		analyzer:         analyzer,
		logger:           logger,
		maxContentLength: DefaultMaxContentLength,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EntryService) Create(ctx context.Context, ownerID, content string) (entry *models.JournalEntry, err error) {
	defer func() { s.record("create", err) }()

	content, err = s.validateContent(content)
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyze(ctx, content)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entry = &models.JournalEntry{
		ID:        s.newID(),
		OwnerID:   ownerID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	entry.Apply(analysis)

	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, apperrors.NewPersistenceError("insert entry", err)
	}
	s.invalidate(ctx, ownerID)

	s.logger.Info("Journal entry created",
		zap.String("entry_id", entry.ID),
		zap.String("user_id", ownerID),
		zap.String("mood", string(entry.Mood)))
	return entry, nil
}

// Edit replaces the content and always re-analyzes it. The ownership check runs
// before the upstream call so foreign or missing ids never cost a request.
func (s *EntryService) Edit(ctx context.Context, entryID, callerID, content string) (entry *models.JournalEntry, err error) {
	defer func() { s.record("edit", err) }()

	content, err = s.validateContent(content)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetOwned(ctx, entryID, callerID)
	if err != nil {
		return nil, s.storeError("get entry", err)
	}

	analysis, err := s.analyze(ctx, content)
	if err != nil {
		return nil, err
	}

	existing.Content = content
	existing.UpdatedAt = s.now()
	existing.Apply(analysis)

	updated, err := s.store.UpdateOwned(ctx, existing)
	if err != nil {
		return nil, s.storeError("update entry", err)
	}
	s.invalidate(ctx, callerID)

	s.logger.Info("Journal entry updated",
		zap.String("entry_id", updated.ID),
		zap.String("user_id", callerID),
		zap.String("mood", string(updated.Mood)))
	return updated, nil
}

func (s *EntryService) Delete(ctx context.Context, entryID, callerID string) (err error) {
	defer func() { s.record("delete", err) }()

	if err := s.store.DeleteOwned(ctx, entryID, callerID); err != nil {
		return s.storeError("delete entry", err)
	}
	s.invalidate(ctx, callerID)

	s.logger.Info("Journal entry deleted", zap.String("entry_id", entryID), zap.String("user_id", callerID))
	return nil
}

// ListAll returns the caller's entries newest first; never nil.
func (s *EntryService) ListAll(ctx context.Context, callerID string) (entries []models.JournalEntry, err error) {
	defer func() { s.record("list", err) }()

	entries, err = s.store.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list entries", err)
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	return entries, nil
}

func (s *EntryService) validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperrors.NewValidationError("Content is required")
	}
	if s.maxContentLength > 0 && utf8.RuneCountInString(content) > s.maxContentLength {
		return "", apperrors.NewValidationError("Content is too long")
	}
	return content, nil
}

func (s *EntryService) analyze(ctx context.Context, content string) (models.Analysis, error) {
	raw, err := s.analyzer.Analyze(ctx, content)
	if err != nil {
		if apperrors.Get(err) == nil {
			err = apperrors.NewAIServiceError(apperrors.CodeAIUnavailable, "AI service unavailable").WithCause(err)
		}
		return models.Analysis{}, err
	}

	analysis, err := ParseAnalysis(raw)
	if err != nil {
		// raw output may quote the entry, log its size only
		s.logger.Warn("Unusable AI response", zap.Int("response_length", len(raw)), zap.Error(err))
		return models.Analysis{}, err
	}
	if !analysis.Mood.IsCanonical() {
		s.logger.Debug("Non-canonical mood from AI", zap.String("mood", string(analysis.Mood)))
	}
	return analysis, nil
}

func (s *EntryService) storeError(op string, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.NewNotFoundOrUnauthorizedError()
	}
	return apperrors.NewPersistenceError(op, err)
}

func (s *EntryService) invalidate(ctx context.Context, userID string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, userID)
	}
}

func (s *EntryService) record(op string, err error) {
	if s.metrics != nil {
		s.metrics.RecordEntryOperation(op, err)
	}
}
