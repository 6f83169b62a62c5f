package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/responder/responder/internal/auth"
	"github.com/responder/responder/internal/handler/dto"
	"github.com/responder/responder/internal/model"
)

const (
	defaultCallsLimit = 50
	maxCallsLimit     = 500
)

// DispatchEventLister lists recorded calls for an endpoint, scoped to its
// owner.
type DispatchEventLister interface {
	ListByEndpoint(ctx context.Context, ownerID, endpointID string, limit int) ([]*model.DispatchEvent, error)
}

// CallsHandler exposes the dispatch log for an owner's endpoints.
type CallsHandler struct {
	events DispatchEventLister
	logger *slog.Logger
}

// NewCallsHandler creates a new CallsHandler.
func NewCallsHandler(events DispatchEventLister, logger *slog.Logger) *CallsHandler {
	return &CallsHandler{
		events: events,
		logger: logger,
	}
}

// CallListResponse represents recorded calls for an endpoint.
type CallListResponse struct {
	Calls []dto.DispatchEventResponse `json:"calls"`
	Total int                         `json:"total"`
}

// List handles GET /api/v1/endpoints/{id}/calls?limit=N.
// Events are written asynchronously, so very recent calls may lag.
func (h *CallsHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerCtx := auth.OwnerFromContext(r.Context())
	if ownerCtx == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	limit := defaultCallsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		if parsed > maxCallsLimit {
			parsed = maxCallsLimit
		}
		limit = parsed
	}

	events, err := h.events.ListByEndpoint(r.Context(), ownerCtx.OwnerID, chi.URLParam(r, "id"), limit)
	if err != nil {
		h.logger.Error("failed to list dispatch events",
			"error", err,
			"owner_id", ownerCtx.OwnerID,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list calls")
		return
	}

	response := CallListResponse{
		Calls: make([]dto.DispatchEventResponse, 0, len(events)),
		Total: len(events),
	}
	for _, e := range events {
		response.Calls = append(response.Calls, dto.ToDispatchEventResponse(e))
	}

	writeJSON(w, http.StatusOK, response)
}
