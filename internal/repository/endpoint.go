package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/responder/responder/internal/model"
)

// Common errors for endpoint repository operations.
var (
	ErrEndpointNotFound = errors.New("endpoint not found")
	ErrSlugExists       = errors.New("slug already exists for this owner")
)

const endpointColumns = `id, owner_id, name, slug, method, visibility, response_body, response_schema, enforce_schema, created_at, updated_at`

// CreateEndpoint inserts a new endpoint definition.
// The (owner_id, slug) uniqueness constraint is enforced by the database,
// so concurrent creates racing on the same pair have exactly one winner.
func (r *Repository) CreateEndpoint(ctx context.Context, ep *model.Endpoint) error {
	query := `
		INSERT INTO endpoints (id, owner_id, name, slug, method, visibility, response_body, response_schema, enforce_schema, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var schemaText *string
	if ep.HasSchema() {
		s := ep.Schema.String()
		schemaText = &s
	}

	_, err := r.pool.Exec(ctx, query,
		ep.ID,
		ep.OwnerID,
		ep.Name,
		ep.Slug,
		string(ep.Method),
		string(ep.Visibility),
		ep.Response.String(),
		schemaText,
		ep.EnforceSchema,
		ep.CreatedAt,
		ep.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create endpoint: %w", err)
	}

	return nil
}

// GetEndpointBySlug retrieves an endpoint by owner and slug.
// This is the hot path for dispatch.
func (r *Repository) GetEndpointBySlug(ctx context.Context, ownerID, slug string) (*model.Endpoint, error) {
	query := `
		SELECT ` + endpointColumns + `
		FROM endpoints
		WHERE owner_id = $1 AND slug = $2
	`

	ep, err := scanEndpoint(r.pool.QueryRow(ctx, query, ownerID, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEndpointNotFound
		}
		return nil, fmt.Errorf("failed to get endpoint by slug: %w", err)
	}

	return ep, nil
}

// GetEndpointByID retrieves an endpoint by ID, scoped to its owner.
// A matching ID under a different owner resolves to not found.
func (r *Repository) GetEndpointByID(ctx context.Context, ownerID, id string) (*model.Endpoint, error) {
	query := `
		SELECT ` + endpointColumns + `
		FROM endpoints
		WHERE id = $1 AND owner_id = $2
	`

	ep, err := scanEndpoint(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEndpointNotFound
		}
		return nil, fmt.Errorf("failed to get endpoint by ID: %w", err)
	}

	return ep, nil
}

// ListOwnedEndpoints retrieves all endpoints owned by ownerID, newest first.
func (r *Repository) ListOwnedEndpoints(ctx context.Context, ownerID string) ([]*model.Endpoint, error) {
	query := `
		SELECT ` + endpointColumns + `
		FROM endpoints
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned endpoints: %w", err)
	}
	defer rows.Close()

	return collectEndpoints(rows)
}

// ListPublicEndpoints retrieves all public endpoints joined with their
// owner's display username, newest first.
func (r *Repository) ListPublicEndpoints(ctx context.Context) ([]*model.Endpoint, error) {
	query := `
		SELECT e.id, e.owner_id, e.name, e.slug, e.method, e.visibility, e.response_body, e.response_schema, e.enforce_schema, e.created_at, e.updated_at,
		       o.username
		FROM endpoints e
		JOIN owners o ON o.id = e.owner_id
		WHERE e.visibility = 'public'
		ORDER BY e.created_at DESC, e.id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list public endpoints: %w", err)
	}
	defer rows.Close()

	var endpoints []*model.Endpoint
	for rows.Next() {
		ep, err := scanEndpointWithOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan endpoint: %w", err)
		}
		endpoints = append(endpoints, ep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating endpoints: %w", err)
	}

	return endpoints, nil
}

// UpdateEndpoint updates an endpoint's mutable fields.
// The update is scoped to the owner; a matching ID under a different
// owner matches zero rows and reports not found.
func (r *Repository) UpdateEndpoint(ctx context.Context, ep *model.Endpoint) error {
	query := `
		UPDATE endpoints
		SET name = $3, method = $4, visibility = $5, response_body = $6, response_schema = $7, enforce_schema = $8, updated_at = $9
		WHERE id = $1 AND owner_id = $2
	`

	var schemaText *string
	if ep.HasSchema() {
		s := ep.Schema.String()
		schemaText = &s
	}

	result, err := r.pool.Exec(ctx, query,
		ep.ID,
		ep.OwnerID,
		ep.Name,
		string(ep.Method),
		string(ep.Visibility),
		ep.Response.String(),
		schemaText,
		ep.EnforceSchema,
		ep.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update endpoint: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrEndpointNotFound
	}

	return nil
}

// DeleteEndpoint removes an endpoint, scoped to its owner.
// Returns whether a row was actually removed; a missing row is not an
// error since a concurrent double-delete is a benign race.
func (r *Repository) DeleteEndpoint(ctx context.Context, ownerID, id string) (bool, error) {
	query := `
		DELETE FROM endpoints
		WHERE id = $1 AND owner_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete endpoint: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// scanEndpoint scans a single row into an Endpoint model.
func scanEndpoint(row pgx.Row) (*model.Endpoint, error) {
	var ep model.Endpoint
	var method, visibility, responseBody string
	var schemaText *string

	err := row.Scan(
		&ep.ID,
		&ep.OwnerID,
		&ep.Name,
		&ep.Slug,
		&method,
		&visibility,
		&responseBody,
		&schemaText,
		&ep.EnforceSchema,
		&ep.CreatedAt,
		&ep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return hydrateEndpoint(&ep, method, visibility, responseBody, schemaText)
}

// scanEndpointWithOwner scans a row that carries the joined owner username.
func scanEndpointWithOwner(rows pgx.Rows) (*model.Endpoint, error) {
	var ep model.Endpoint
	var method, visibility, responseBody string
	var schemaText *string

	err := rows.Scan(
		&ep.ID,
		&ep.OwnerID,
		&ep.Name,
		&ep.Slug,
		&method,
		&visibility,
		&responseBody,
		&schemaText,
		&ep.EnforceSchema,
		&ep.CreatedAt,
		&ep.UpdatedAt,
		&ep.OwnerUsername,
	)
	if err != nil {
		return nil, err
	}

	return hydrateEndpoint(&ep, method, visibility, responseBody, schemaText)
}

// hydrateEndpoint rebuilds value types from stored text. Stored bodies
// were canonicalized at write time, so a parse failure here means the
// row was corrupted outside the application.
func hydrateEndpoint(ep *model.Endpoint, method, visibility, responseBody string, schemaText *string) (*model.Endpoint, error) {
	ep.Method = model.Method(method)
	ep.Visibility = model.Visibility(visibility)

	response, err := model.ParseJSONDocument(responseBody)
	if err != nil {
		return nil, fmt.Errorf("stored response for endpoint %s is not valid JSON: %w", ep.ID, err)
	}
	ep.Response = response

	if schemaText != nil {
		schemaDoc, err := model.ParseJSONDocument(*schemaText)
		if err != nil {
			return nil, fmt.Errorf("stored schema for endpoint %s is not valid JSON: %w", ep.ID, err)
		}
		ep.Schema = schemaDoc
	}

	return ep, nil
}

func collectEndpoints(rows pgx.Rows) ([]*model.Endpoint, error) {
	var endpoints []*model.Endpoint
	for rows.Next() {
		ep, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan endpoint: %w", err)
		}
		endpoints = append(endpoints, ep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating endpoints: %w", err)
	}

	return endpoints, nil
}
