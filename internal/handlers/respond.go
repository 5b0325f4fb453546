package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnshRaj112/ai-journal-backend/internal/apperrors"
	authmw "github.com/AnshRaj112/ai-journal-backend/internal/middleware"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError maps err to a status and body and logs it with request context.
// Store failures are reported generically; the cause only goes to the log.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr := apperrors.Get(err)
	if appErr == nil {
		appErr = apperrors.NewInternalError("Internal server error").WithCause(err)
	}
	status := appErr.HTTPStatus()

	fields := []zap.Field{
		zap.String("kind", string(appErr.Kind)),
		zap.String("code", appErr.Code),
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("requestID", middleware.GetReqID(r.Context())),
	}
	if userID, ok := authmw.UserIDFromContext(r.Context()); ok {
		fields = append(fields, zap.String("userID", userID))
	}
	if entryID := chi.URLParam(r, "id"); entryID != "" {
		fields = append(fields, zap.String("entryID", entryID))
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}

	message := appErr.Message
	if appErr.Kind == apperrors.KindPersistence && appErr.Code == apperrors.CodeStoreFailure {
		message = "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		logger.Error(appErr.Message, fields...)
	} else {
		logger.Warn(appErr.Message, fields...)
	}

	respondJSON(w, status, ErrorResponse{Error: message, Type: string(appErr.Kind), Code: appErr.Code})
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.NewValidationError("Request body too large")
		}
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("Request body is required")
		}
		return apperrors.NewValidationError("Invalid request body").WithCause(err)
	}
	return nil
}
