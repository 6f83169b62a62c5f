package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/responder/responder/internal/auth"
	"github.com/responder/responder/internal/handler/dto"
	"github.com/responder/responder/internal/model"
	"github.com/responder/responder/internal/service"
)

// EndpointService defines the registry operations the handler depends on.
type EndpointService interface {
	CreateEndpoint(ctx context.Context, input service.CreateEndpointInput) (*model.Endpoint, error)
	GetEndpoint(ctx context.Context, ownerID, id string) (*model.Endpoint, error)
	ListEndpoints(ctx context.Context, ownerID string) (*service.ListEndpointsOutput, error)
	UpdateEndpoint(ctx context.Context, input service.UpdateEndpointInput) (*model.Endpoint, error)
	DeleteEndpoint(ctx context.Context, ownerID, id string) (bool, error)
}

// EndpointHandler manages endpoint CRUD operations.
type EndpointHandler struct {
	registry EndpointService
	logger   *slog.Logger
}

// NewEndpointHandler creates a new EndpointHandler.
func NewEndpointHandler(registry EndpointService, logger *slog.Logger) *EndpointHandler {
	return &EndpointHandler{
		registry: registry,
		logger:   logger,
	}
}

// Create handles POST /api/v1/endpoints.
func (h *EndpointHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerCtx := auth.OwnerFromContext(r.Context())
	if ownerCtx == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.CreateEndpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	endpoint, err := h.registry.CreateEndpoint(r.Context(), service.CreateEndpointInput{
		OwnerID:       ownerCtx.OwnerID,
		Name:          req.Name,
		Slug:          req.Slug,
		Method:        req.Method,
		Visibility:    req.Visibility,
		Response:      req.Response,
		Schema:        req.Schema,
		EnforceSchema: req.EnforceSchema,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToEndpointResponse(endpoint))
}

// Get handles GET /api/v1/endpoints/{id}.
func (h *EndpointHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerCtx := auth.OwnerFromContext(r.Context())
	if ownerCtx == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	endpoint, err := h.registry.GetEndpoint(r.Context(), ownerCtx.OwnerID, id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEndpointResponse(endpoint))
}

// List handles GET /api/v1/endpoints. The response separates the caller's
// own endpoints from the public catalog.
func (h *EndpointHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerCtx := auth.OwnerFromContext(r.Context())
	if ownerCtx == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	out, err := h.registry.ListEndpoints(r.Context(), ownerCtx.OwnerID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	response := dto.ListEndpointsResponse{
		Owned:  make([]dto.EndpointResponse, 0, len(out.Owned)),
		Public: make([]dto.EndpointResponse, 0, len(out.Public)),
	}
	for _, e := range out.Owned {
		response.Owned = append(response.Owned, dto.ToEndpointResponse(e))
	}
	for _, e := range out.Public {
		response.Public = append(response.Public, dto.ToEndpointResponse(e))
	}

	writeJSON(w, http.StatusOK, response)
}

// Update handles PATCH /api/v1/endpoints/{id}.
func (h *EndpointHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerCtx := auth.OwnerFromContext(r.Context())
	if ownerCtx == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.UpdateEndpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	endpoint, err := h.registry.UpdateEndpoint(r.Context(), service.UpdateEndpointInput{
		ID:            chi.URLParam(r, "id"),
		OwnerID:       ownerCtx.OwnerID,
		Name:          req.Name,
		Method:        req.Method,
		Visibility:    req.Visibility,
		Response:      req.Response,
		Schema:        req.Schema,
		ClearSchema:   req.ClearSchema,
		EnforceSchema: req.EnforceSchema,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEndpointResponse(endpoint))
}

// Delete handles DELETE /api/v1/endpoints/{id}. Deleting an absent endpoint
// is not an error; the response reports whether anything was removed.
func (h *EndpointHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerCtx := auth.OwnerFromContext(r.Context())
	if ownerCtx == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	deleted, err := h.registry.DeleteEndpoint(r.Context(), ownerCtx.OwnerID, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteEndpointResponse{Deleted: deleted})
}

// handleServiceError maps registry errors to HTTP responses.
func (h *EndpointHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var mismatch *service.SchemaMismatchError
	if errors.As(err, &mismatch) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "response does not conform to schema",
			Code:    "SCHEMA_MISMATCH",
			Details: dto.ToSchemaIssues(mismatch.Issues),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrInvalidSlug),
		errors.Is(err, service.ErrInvalidVisibility):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrInvalidMethod):
		writeError(w, http.StatusBadRequest, "INVALID_METHOD", "Invalid method")
	case errors.Is(err, service.ErrMalformedResponse),
		errors.Is(err, service.ErrMalformedSchema):
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
	case errors.Is(err, service.ErrSlugExists):
		writeError(w, http.StatusBadRequest, "SLUG_EXISTS", err.Error())
	case errors.Is(err, service.ErrEndpointNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	default:
		h.logger.Error("endpoint operation failed",
			"error", err,
			"path", r.URL.Path,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
