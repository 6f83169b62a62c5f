package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/responder/responder/internal/auth"
	"github.com/responder/responder/internal/handler/dto"
	"github.com/responder/responder/internal/model"
	"github.com/responder/responder/internal/service"
)

// AdminOwnerService defines the owner operations available to admins.
type AdminOwnerService interface {
	CreateOwner(ctx context.Context, input service.CreateOwnerInput) (*model.Owner, error)
	GetOwner(ctx context.Context, id string) (*model.Owner, error)
	RotateAPIKey(ctx context.Context, ownerID string) (*auth.GeneratedKey, error)
	DeactivateOwner(ctx context.Context, ownerID string) error
}

// AdminHandler provides admin-only endpoints for account operations.
type AdminHandler struct {
	owners AdminOwnerService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(owners AdminOwnerService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		owners: owners,
		logger: logger,
	}
}

// CreateOwnerRequest represents the request body for registering an owner.
type CreateOwnerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Admin    bool   `json:"admin,omitempty"`
}

// CreateOwner handles POST /api/v1/admin/owners.
// The new account has no API key until one is issued for it.
func (h *AdminHandler) CreateOwner(w http.ResponseWriter, r *http.Request) {
	var req CreateOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	owner, err := h.owners.CreateOwner(r.Context(), service.CreateOwnerInput{
		Username: req.Username,
		Name:     req.Name,
		Admin:    req.Admin,
	})
	if err != nil {
		switch err {
		case service.ErrInvalidUsername:
			writeErrorJSON(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case service.ErrUsernameExists:
			writeErrorJSON(w, http.StatusConflict, "USERNAME_EXISTS", err.Error())
		default:
			h.logger.Error("failed to create owner", "error", err)
			writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create owner")
		}
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToOwnerResponse(owner))
}

// GetOwner handles GET /api/v1/admin/owners/{id}.
func (h *AdminHandler) GetOwner(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owners.GetOwner(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if err == service.ErrOwnerNotFound {
			writeErrorJSON(w, http.StatusNotFound, "NOT_FOUND", "owner not found")
			return
		}
		h.logger.Error("failed to get owner", "error", err)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to get owner")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToOwnerResponse(owner))
}

// IssueAPIKey handles POST /api/v1/admin/owners/{id}/api-key.
// Issues (or replaces) the owner's key and returns the plaintext once.
func (h *AdminHandler) IssueAPIKey(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "id")

	key, err := h.owners.RotateAPIKey(r.Context(), ownerID)
	if err != nil {
		if err == service.ErrOwnerNotFound {
			writeErrorJSON(w, http.StatusNotFound, "NOT_FOUND", "owner not found")
			return
		}
		h.logger.Error("failed to issue API key",
			"error", err,
			"owner_id", ownerID,
		)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to issue API key")
		return
	}

	writeJSON(w, http.StatusCreated, dto.APIKeyResponse{
		Key:    key.Plaintext,
		Prefix: key.Prefix,
	})
}

// DeactivateOwner handles DELETE /api/v1/admin/owners/{id}.
func (h *AdminHandler) DeactivateOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "id")

	if err := h.owners.DeactivateOwner(r.Context(), ownerID); err != nil {
		if err == service.ErrOwnerNotFound {
			writeErrorJSON(w, http.StatusNotFound, "NOT_FOUND", "owner not found")
			return
		}
		h.logger.Error("failed to deactivate owner",
			"error", err,
			"owner_id", ownerID,
		)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to deactivate owner")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deactivated": true})
}

// StatsResponse represents basic operational statistics.
type StatsResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		Timestamp: time.Now().UTC(),
		Service:   "responder",
		Version:   "1.0.0",
	})
}

// writeErrorJSON writes a JSON error response.
func writeErrorJSON(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}
