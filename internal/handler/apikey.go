package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/responder/responder/internal/auth"
	"github.com/responder/responder/internal/handler/dto"
	"github.com/responder/responder/internal/service"
)

// APIKeyRotator issues API keys for owner accounts.
type APIKeyRotator interface {
	RotateAPIKey(ctx context.Context, ownerID string) (*auth.GeneratedKey, error)
}

// APIKeyHandler manages the caller's API key credential.
type APIKeyHandler struct {
	owners APIKeyRotator
	logger *slog.Logger
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(owners APIKeyRotator, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		owners: owners,
		logger: logger,
	}
}

// Rotate handles POST /api/v1/api-key. It replaces the caller's key with a
// fresh one and returns the plaintext exactly once. The old key stops
// verifying immediately, though a cached auth entry may honor it briefly.
func (h *APIKeyHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	ownerCtx := auth.OwnerFromContext(r.Context())
	if ownerCtx == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	key, err := h.owners.RotateAPIKey(r.Context(), ownerCtx.OwnerID)
	if err != nil {
		if errors.Is(err, service.ErrOwnerNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "owner not found")
			return
		}
		h.logger.Error("failed to rotate API key",
			"error", err,
			"owner_id", ownerCtx.OwnerID,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to rotate API key")
		return
	}

	writeJSON(w, http.StatusCreated, dto.APIKeyResponse{
		Key:    key.Plaintext,
		Prefix: key.Prefix,
	})
}
