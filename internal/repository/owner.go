package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/responder/responder/internal/model"
)

// Common errors for owner repository operations.
var (
	ErrOwnerNotFound  = errors.New("owner not found")
	ErrUsernameExists = errors.New("username already exists")
)

// CreateOwner inserts a new owner into the database.
func (r *Repository) CreateOwner(ctx context.Context, owner *model.Owner) error {
	query := `
		INSERT INTO owners (id, username, name, admin, active, api_key_hash, api_key_prefix, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		owner.ID,
		owner.Username,
		owner.Name,
		owner.Admin,
		owner.Active,
		nullableString(owner.APIKeyHash),
		nullableString(owner.APIKeyPrefix),
		owner.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("failed to create owner: %w", err)
	}

	return nil
}

// GetOwnerByID retrieves an owner by ID, active or not.
func (r *Repository) GetOwnerByID(ctx context.Context, id string) (*model.Owner, error) {
	query := `
		SELECT id, username, name, admin, active, api_key_hash, api_key_prefix, created_at
		FROM owners
		WHERE id = $1
	`

	owner, err := scanOwner(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to get owner by ID: %w", err)
	}

	return owner, nil
}

// GetOwnerByToken resolves a dispatch path segment to an active owner.
// The token may be a username or an owner ID rendered as text; the match
// is exact, with no trimming or case folding.
func (r *Repository) GetOwnerByToken(ctx context.Context, token string) (*model.Owner, error) {
	query := `
		SELECT id, username, name, admin, active, api_key_hash, api_key_prefix, created_at
		FROM owners
		WHERE active AND (username = $1 OR id = $1)
	`

	owner, err := scanOwner(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to get owner by token: %w", err)
	}

	return owner, nil
}

// GetOwnersByKeyPrefix retrieves active owners whose API key carries the
// given visible prefix. Used by the management auth middleware.
func (r *Repository) GetOwnersByKeyPrefix(ctx context.Context, prefix string) ([]*model.Owner, error) {
	query := `
		SELECT id, username, name, admin, active, api_key_hash, api_key_prefix, created_at
		FROM owners
		WHERE active AND api_key_prefix = $1
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get owners by key prefix: %w", err)
	}
	defer rows.Close()

	var owners []*model.Owner
	for rows.Next() {
		owner, err := scanOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, owner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owners: %w", err)
	}

	return owners, nil
}

// SetOwnerAPIKey replaces the owner's API key verifier and prefix.
func (r *Repository) SetOwnerAPIKey(ctx context.Context, ownerID, keyHash, keyPrefix string) error {
	query := `
		UPDATE owners
		SET api_key_hash = $2, api_key_prefix = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, ownerID, keyHash, keyPrefix)
	if err != nil {
		return fmt.Errorf("failed to set owner API key: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrOwnerNotFound
	}

	return nil
}

// DeactivateOwner marks an owner inactive. Inactive owners resolve to
// "not found" for all dispatch purposes.
func (r *Repository) DeactivateOwner(ctx context.Context, ownerID string) error {
	query := `
		UPDATE owners
		SET active = FALSE
		WHERE id = $1 AND active
	`

	result, err := r.pool.Exec(ctx, query, ownerID)
	if err != nil {
		return fmt.Errorf("failed to deactivate owner: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrOwnerNotFound
	}

	return nil
}

// scanOwner scans a single row into an Owner model.
func scanOwner(row pgx.Row) (*model.Owner, error) {
	var owner model.Owner
	var keyHash, keyPrefix *string

	err := row.Scan(
		&owner.ID,
		&owner.Username,
		&owner.Name,
		&owner.Admin,
		&owner.Active,
		&keyHash,
		&keyPrefix,
		&owner.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if keyHash != nil {
		owner.APIKeyHash = *keyHash
	}
	if keyPrefix != nil {
		owner.APIKeyPrefix = *keyPrefix
	}

	return &owner, nil
}

// nullableString converts empty strings to nil for nullable columns.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
