package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/responder/responder/internal/auth"
	"github.com/responder/responder/internal/model"
	"github.com/responder/responder/internal/repository"
)

// Owner service errors.
var (
	ErrInvalidUsername = errors.New("invalid username format")
	ErrUsernameExists  = errors.New("username already taken")
)

// Username validation regex: 3-40 chars, alphanumeric plus hyphen and
// underscore. Usernames that look numeric are allowed; owner resolution
// treats them as opaque tokens.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,40}$`)

// OwnerService handles owner accounts and their API keys.
type OwnerService struct {
	repo *repository.Repository
}

// NewOwnerService creates a new OwnerService.
func NewOwnerService(repo *repository.Repository) *OwnerService {
	return &OwnerService{repo: repo}
}

// CreateOwnerInput defines input for registering an owner.
type CreateOwnerInput struct {
	Username string
	Name     string
	Admin    bool
}

// CreateOwner registers a new owner account. The account starts without an
// API key; private endpoints stay unreachable until one is generated.
func (s *OwnerService) CreateOwner(ctx context.Context, input CreateOwnerInput) (*model.Owner, error) {
	if !usernameRegex.MatchString(input.Username) {
		return nil, ErrInvalidUsername
	}

	name := input.Name
	if name == "" {
		name = input.Username
	}

	owner := &model.Owner{
		ID:        ulid.Make().String(),
		Username:  input.Username,
		Name:      name,
		Admin:     input.Admin,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateOwner(ctx, owner); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create owner: %w", err)
	}

	return owner, nil
}

// GetOwner retrieves an owner by ID.
func (s *OwnerService) GetOwner(ctx context.Context, id string) (*model.Owner, error) {
	owner, err := s.repo.GetOwnerByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	return owner, nil
}

// RotateAPIKey generates a fresh API key for the owner and stores its
// Argon2id hash. The plaintext is returned exactly once and never persisted.
// A previously cached auth context for the old key survives until its TTL,
// which bounds how long a rotated-out key keeps working.
func (s *OwnerService) RotateAPIKey(ctx context.Context, ownerID string) (*auth.GeneratedKey, error) {
	if _, err := s.GetOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	key, err := auth.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	if err := s.repo.SetOwnerAPIKey(ctx, ownerID, key.Hash, key.Prefix); err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	return key, nil
}

// DeactivateOwner disables an owner account. Their endpoints stop resolving
// once cached entries expire.
func (s *OwnerService) DeactivateOwner(ctx context.Context, ownerID string) error {
	if err := s.repo.DeactivateOwner(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return ErrOwnerNotFound
		}
		return err
	}

	return nil
}
