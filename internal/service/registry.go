// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/responder/responder/internal/cache"
	"github.com/responder/responder/internal/metrics"
	"github.com/responder/responder/internal/model"
	"github.com/responder/responder/internal/repository"
	"github.com/responder/responder/internal/schema"
)

// Service errors.
var (
	ErrMissingFields     = errors.New("name, slug and response are required")
	ErrInvalidSlug       = errors.New("invalid slug format")
	ErrInvalidMethod     = errors.New("invalid method")
	ErrInvalidVisibility = errors.New("invalid visibility")
	ErrMalformedResponse = errors.New("response must be valid JSON")
	ErrMalformedSchema   = errors.New("schema must be valid JSON")
	ErrSlugExists        = errors.New("slug already exists for this owner")
	ErrEndpointNotFound  = errors.New("endpoint not found")
)

// SchemaMismatchError reports a response that does not conform to its schema.
type SchemaMismatchError struct {
	Issues []schema.Issue
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("response does not match schema (%d issues)", len(e.Issues))
}

// Slug validation regex: 1-64 chars, alphanumeric plus hyphen and underscore.
var slugRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// EndpointStore is the persistence contract the registry depends on.
// Satisfied by *repository.Repository.
type EndpointStore interface {
	CreateEndpoint(ctx context.Context, ep *model.Endpoint) error
	GetEndpointByID(ctx context.Context, ownerID, id string) (*model.Endpoint, error)
	GetEndpointBySlug(ctx context.Context, ownerID, slug string) (*model.Endpoint, error)
	ListOwnedEndpoints(ctx context.Context, ownerID string) ([]*model.Endpoint, error)
	ListPublicEndpoints(ctx context.Context) ([]*model.Endpoint, error)
	UpdateEndpoint(ctx context.Context, ep *model.Endpoint) error
	DeleteEndpoint(ctx context.Context, ownerID, id string) (bool, error)
}

// EndpointCache is the cache invalidation contract for endpoint mutations.
// Satisfied by *cache.Cache. May be nil when no cache is configured.
type EndpointCache interface {
	SetEndpoint(ctx context.Context, endpoint *model.Endpoint) error
	DeleteEndpoint(ctx context.Context, ownerID, slug string) error
}

// EndpointRegistry enforces domain rules around endpoint persistence.
type EndpointRegistry struct {
	store   EndpointStore
	cache   EndpointCache
	metrics metrics.Recorder
}

// NewEndpointRegistry creates a new EndpointRegistry.
func NewEndpointRegistry(store EndpointStore, epCache EndpointCache, recorder metrics.Recorder) *EndpointRegistry {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &EndpointRegistry{
		store:   store,
		cache:   epCache,
		metrics: recorder,
	}
}

// CreateEndpointInput defines input for creating an endpoint.
type CreateEndpointInput struct {
	OwnerID       string
	Name          string
	Slug          string
	Method        string
	Visibility    string
	Response      string
	Schema        string
	EnforceSchema bool
}

// CreateEndpoint validates input fully before a single persist call, so an
// invalid pairing never reaches storage. Slug collisions surface as
// ErrSlugExists from the store's uniqueness constraint, never from a
// check-then-insert.
func (s *EndpointRegistry) CreateEndpoint(ctx context.Context, input CreateEndpointInput) (*model.Endpoint, error) {
	if input.Name == "" || input.Slug == "" || input.Response == "" {
		return nil, ErrMissingFields
	}

	if !slugRegex.MatchString(input.Slug) {
		return nil, ErrInvalidSlug
	}

	method := model.Method(input.Method)
	if !method.IsValid() {
		return nil, ErrInvalidMethod
	}

	visibility := model.VisibilityPublic
	if input.Visibility != "" {
		visibility = model.Visibility(input.Visibility)
		if !visibility.IsValid() {
			return nil, ErrInvalidVisibility
		}
	}

	response, err := model.ParseJSONDocument(input.Response)
	if err != nil {
		return nil, ErrMalformedResponse
	}

	var schemaDoc model.JSONDocument
	if input.Schema != "" {
		schemaDoc, err = model.ParseJSONDocument(input.Schema)
		if err != nil {
			return nil, ErrMalformedSchema
		}
	}

	// Enforcement is meaningless without a schema document; the flag is
	// clamped off rather than stored dangling.
	enforce := input.EnforceSchema
	if schemaDoc.IsZero() {
		enforce = false
	}

	if err := checkSchemaConformance(response, schemaDoc, enforce); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	endpoint := &model.Endpoint{
		ID:            ulid.Make().String(),
		OwnerID:       input.OwnerID,
		Name:          input.Name,
		Slug:          input.Slug,
		Method:        method,
		Visibility:    visibility,
		Response:      response.Canonical(),
		EnforceSchema: enforce,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if !schemaDoc.IsZero() {
		endpoint.Schema = schemaDoc.Canonical()
	}

	if err := s.store.CreateEndpoint(ctx, endpoint); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("failed to create endpoint: %w", err)
	}

	s.metrics.IncEndpointCreated()

	// A pre-create probe for this slug may have left a negative-cache
	// tombstone; drop it so dispatch sees the new definition immediately.
	s.invalidate(ctx, input.OwnerID, input.Slug)

	return endpoint, nil
}

// GetEndpoint retrieves an endpoint by ID, scoped to the owner.
func (s *EndpointRegistry) GetEndpoint(ctx context.Context, ownerID, id string) (*model.Endpoint, error) {
	endpoint, err := s.store.GetEndpointByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrEndpointNotFound) {
			return nil, ErrEndpointNotFound
		}
		return nil, err
	}

	return endpoint, nil
}

// ListEndpointsOutput defines output for listing endpoints.
type ListEndpointsOutput struct {
	Owned  []*model.Endpoint
	Public []*model.Endpoint
}

// ListEndpoints returns the caller's own endpoints plus all public ones,
// both ordered by recency.
func (s *EndpointRegistry) ListEndpoints(ctx context.Context, ownerID string) (*ListEndpointsOutput, error) {
	owned, err := s.store.ListOwnedEndpoints(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	public, err := s.store.ListPublicEndpoints(ctx)
	if err != nil {
		return nil, err
	}

	return &ListEndpointsOutput{
		Owned:  owned,
		Public: public,
	}, nil
}

// UpdateEndpointInput defines input for updating an endpoint. Each field is
// either "unchanged" (nil) or "set to X"; absence is never conflated with
// null.
type UpdateEndpointInput struct {
	ID            string
	OwnerID       string
	Name          *string
	Method        *string
	Visibility    *string
	Response      *string
	Schema        *string
	ClearSchema   bool
	EnforceSchema *bool
}

// UpdateEndpoint applies a partial update. Validation runs against the merged
// result; schema conformance is re-checked only when the response, the
// schema, or the enforce flag changed in this call.
func (s *EndpointRegistry) UpdateEndpoint(ctx context.Context, input UpdateEndpointInput) (*model.Endpoint, error) {
	endpoint, err := s.store.GetEndpointByID(ctx, input.OwnerID, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrEndpointNotFound) {
			return nil, ErrEndpointNotFound
		}
		return nil, err
	}

	priorSlug := endpoint.Slug
	conformanceAffected := false

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrMissingFields
		}
		endpoint.Name = *input.Name
	}

	if input.Method != nil {
		method := model.Method(*input.Method)
		if !method.IsValid() {
			return nil, ErrInvalidMethod
		}
		endpoint.Method = method
	}

	if input.Visibility != nil {
		visibility := model.Visibility(*input.Visibility)
		if !visibility.IsValid() {
			return nil, ErrInvalidVisibility
		}
		endpoint.Visibility = visibility
	}

	if input.Response != nil {
		response, err := model.ParseJSONDocument(*input.Response)
		if err != nil {
			return nil, ErrMalformedResponse
		}
		endpoint.Response = response.Canonical()
		conformanceAffected = true
	}

	if input.ClearSchema {
		endpoint.Schema = model.JSONDocument{}
		conformanceAffected = true
	} else if input.Schema != nil {
		schemaDoc, err := model.ParseJSONDocument(*input.Schema)
		if err != nil {
			return nil, ErrMalformedSchema
		}
		endpoint.Schema = schemaDoc.Canonical()
		conformanceAffected = true
	}

	if input.EnforceSchema != nil {
		endpoint.EnforceSchema = *input.EnforceSchema
		conformanceAffected = true
	}

	// Clearing the schema, or enabling enforcement on an endpoint that never
	// had one, must not leave the flag dangling.
	if endpoint.Schema.IsZero() {
		endpoint.EnforceSchema = false
	}

	if conformanceAffected {
		if err := checkSchemaConformance(endpoint.Response, endpoint.Schema, endpoint.EnforceSchema); err != nil {
			return nil, err
		}
	}

	endpoint.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateEndpoint(ctx, endpoint); err != nil {
		if errors.Is(err, repository.ErrEndpointNotFound) {
			return nil, ErrEndpointNotFound
		}
		return nil, err
	}

	s.metrics.IncEndpointUpdated()

	s.invalidate(ctx, endpoint.OwnerID, priorSlug)

	return endpoint, nil
}

// DeleteEndpoint removes an endpoint. It reports whether a row was actually
// removed rather than erroring on "not found": a concurrent double-delete is
// a benign race, not a fault.
func (s *EndpointRegistry) DeleteEndpoint(ctx context.Context, ownerID, id string) (bool, error) {
	endpoint, err := s.store.GetEndpointByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrEndpointNotFound) {
			return false, nil
		}
		return false, err
	}

	deleted, err := s.store.DeleteEndpoint(ctx, ownerID, id)
	if err != nil {
		return false, err
	}

	if deleted {
		s.metrics.IncEndpointDeleted()
		s.invalidate(ctx, ownerID, endpoint.Slug)
	}

	return deleted, nil
}

// invalidate drops the cached entry for an owner/slug pair. Failures are
// tolerated; the cache entry expires on its own TTL.
func (s *EndpointRegistry) invalidate(ctx context.Context, ownerID, slug string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DeleteEndpoint(ctx, ownerID, slug)
}

// checkSchemaConformance compiles the schema and, when enforcement is on,
// validates the response against it. A schema stored without enforcement is
// still required to compile.
func checkSchemaConformance(response, schemaDoc model.JSONDocument, enforce bool) error {
	if schemaDoc.IsZero() {
		return nil
	}

	compiled, err := schema.Compile(schemaDoc.Value())
	if err != nil {
		return ErrMalformedSchema
	}

	if !enforce {
		return nil
	}

	valid, issues := compiled.Validate(response.Value())
	if !valid {
		return &SchemaMismatchError{Issues: issues}
	}

	return nil
}

var _ EndpointStore = (*repository.Repository)(nil)
var _ EndpointCache = (*cache.Cache)(nil)
