package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/ai-journal-backend/internal/apperrors"
	"github.com/AnshRaj112/ai-journal-backend/internal/middleware"
	"github.com/AnshRaj112/ai-journal-backend/internal/models"
	"github.com/AnshRaj112/ai-journal-backend/internal/services"
)

type ContentRequest struct {
	Content string `json:"content"`
}

// EntryResponse is the wire form of a journal entry.
type EntryResponse struct {
	ID           string              `json:"id"`
	OwnerID      string              `json:"ownerId"`
	Content      string              `json:"content"`
	Summary      string              `json:"summary"`
	Mood         models.Mood         `json:"mood"`
	MoodCategory models.MoodCategory `json:"moodCategory"`
	Suggestion   string              `json:"suggestion"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

func toEntryResponse(e *models.JournalEntry) EntryResponse {
	return EntryResponse{
		ID:           e.ID,
		OwnerID:      e.OwnerID,
		Content:      e.Content,
		Summary:      e.Summary,
		Mood:         e.Mood,
		MoodCategory: e.Mood.Category(),
		Suggestion:   e.Suggestion,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

type JournalHandler struct {
	entries  *services.EntryService
	insights *services.InsightsService
	logger   *zap.Logger
}

func NewJournalHandler(entries *services.EntryService, insights *services.InsightsService, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{entries: entries, insights: insights, logger: logger}
}

// callerID returns the id set by the auth middleware.
func (h *JournalHandler) callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, h.logger, apperrors.NewUnauthenticatedError(""))
	}
	return userID, ok
}

// Create handles POST /journal/create
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req ContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	entry, err := h.entries.Create(r.Context(), userID, req.Content)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// List handles GET /journal/all
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	entries, err := h.entries.ListAll(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, toEntryResponse(&entries[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

// Edit handles PUT /journal/edit/{id}
func (h *JournalHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req ContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	entry, err := h.entries.Edit(r.Context(), chi.URLParam(r, "id"), userID, req.Content)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toEntryResponse(entry))
}

// Delete handles DELETE /journal/delete/{id}
func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	if err := h.entries.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Entry deleted"})
}

// Moods handles GET /journal/moods
func (h *JournalHandler) Moods(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	insights, err := h.insights.MoodInsights(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, insights)
}
