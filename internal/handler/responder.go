package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/responder/responder/internal/auth"
	"github.com/responder/responder/internal/dispatchlog"
	"github.com/responder/responder/internal/middleware"
	"github.com/responder/responder/internal/model"
	"github.com/responder/responder/internal/service"
)

// DispatchService resolves a runtime request to a stored response.
type DispatchService interface {
	Dispatch(ctx context.Context, input service.DispatchInput) (*service.DispatchResult, error)
}

// EventPublisher enqueues dispatch events for async processing.
type EventPublisher interface {
	PublishAsync(event dispatchlog.DispatchEventPayload)
}

// ResponderHandler serves the runtime dispatch path. This is the hot path;
// everything else in the API exists so this handler has something to serve.
type ResponderHandler struct {
	dispatcher DispatchService
	publisher  EventPublisher
	logger     *slog.Logger
}

// NewResponderHandler creates a new ResponderHandler.
// The publisher may be nil, in which case no events are recorded.
func NewResponderHandler(dispatcher DispatchService, publisher EventPublisher, logger *slog.Logger) *ResponderHandler {
	return &ResponderHandler{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
	}
}

// Dispatch handles /responder/{ownerToken}/{slug} for all methods.
// The stored response body is written byte-for-byte; no re-serialization
// happens on this path.
func (h *ResponderHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	ownerToken := chi.URLParam(r, "ownerToken")
	slug := chi.URLParam(r, "slug")

	result, err := h.dispatcher.Dispatch(r.Context(), service.DispatchInput{
		OwnerToken:   ownerToken,
		Slug:         slug,
		Method:       r.Method,
		PresentedKey: r.Header.Get("x-api-key"),
	})
	if err != nil {
		h.handleDispatchError(w, r, slug, err)
		return
	}

	h.publishEvent(r, result.Owner, result.Endpoint, slug, http.StatusOK, "")

	w.Header().Set("Content-Type", result.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Body); err != nil {
		h.logger.Debug("failed to write dispatch response", "error", err)
	}
}

// handleDispatchError maps dispatcher errors to HTTP responses. Existence
// failures surface before method failures, and method before access, so the
// response never leaks more than the caller has already proven.
func (h *ResponderHandler) handleDispatchError(w http.ResponseWriter, r *http.Request, slug string, err error) {
	var mna *service.MethodNotAllowedError
	if errors.As(err, &mna) {
		h.publishEvent(r, mna.Owner, mna.Endpoint, slug, http.StatusMethodNotAllowed, "")
		w.Header().Set("Allow", string(mna.Expected))
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", mna.Error())
		return
	}

	var denied *service.AccessDeniedError
	if errors.As(err, &denied) {
		h.publishEvent(r, denied.Owner, denied.Endpoint, slug, http.StatusUnauthorized, string(denied.Reason))
		writeError(w, http.StatusUnauthorized, "ACCESS_DENIED", denialMessage(denied.Reason))
		return
	}

	switch {
	case errors.Is(err, service.ErrOwnerNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "owner not found")
	case errors.Is(err, service.ErrEndpointNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	default:
		h.logger.Error("dispatch failed",
			"error", err,
			"slug", slug,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// publishEvent records a dispatch outcome, fire and forget. Events are only
// recorded once an owner has been resolved; probes against unknown owners
// have no account to attribute them to.
func (h *ResponderHandler) publishEvent(r *http.Request, owner *model.Owner, endpoint *model.Endpoint, slug string, status int, denialReason string) {
	if h.publisher == nil || owner == nil {
		return
	}

	now := time.Now().UTC()
	payload := dispatchlog.DispatchEventPayload{
		OwnerID:      owner.ID,
		Slug:         slug,
		Method:       r.Method,
		Status:       status,
		DenialReason: denialReason,
		CallerHash:   dispatchlog.GenerateCallerHash(middleware.GetClientIP(r), r.Header.Get("User-Agent"), now),
		DispatchedAt: now.UnixMilli(),
	}
	if endpoint != nil {
		payload.EndpointID = endpoint.ID
	}

	h.publisher.PublishAsync(payload)
}

func denialMessage(reason auth.DenialReason) string {
	switch reason {
	case auth.DenialMissingKey:
		return "api key required"
	case auth.DenialNoKeyConfigured:
		return "no api key configured for this endpoint"
	case auth.DenialInvalidKey:
		return "invalid api key"
	default:
		return "access denied"
	}
}
