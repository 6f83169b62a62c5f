package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/responder/responder/internal/auth"
	"github.com/responder/responder/internal/cache"
	"github.com/responder/responder/internal/metrics"
	"github.com/responder/responder/internal/model"
	"github.com/responder/responder/internal/repository"
)

// Dispatcher errors.
var (
	ErrOwnerNotFound = errors.New("owner not found")
)

// MethodNotAllowedError reports a dispatch with the wrong HTTP method.
// Owner and Endpoint carry the resolved entities so callers can attribute
// the refusal.
type MethodNotAllowedError struct {
	Expected model.Method
	Owner    *model.Owner
	Endpoint *model.Endpoint
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method not allowed, use %s", e.Expected)
}

// AccessDeniedError reports a dispatch refused by the access check.
type AccessDeniedError struct {
	Reason   auth.DenialReason
	Owner    *model.Owner
	Endpoint *model.Endpoint
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Reason)
}

// OwnerStore is the owner lookup contract the dispatcher depends on.
// Satisfied by *repository.Repository.
type OwnerStore interface {
	GetOwnerByToken(ctx context.Context, token string) (*model.Owner, error)
	GetEndpointBySlug(ctx context.Context, ownerID, slug string) (*model.Endpoint, error)
}

// DispatchCache is the read-path cache contract. May be nil.
type DispatchCache interface {
	GetEndpoint(ctx context.Context, ownerID, slug string) (*model.CachedEndpoint, error)
	SetEndpoint(ctx context.Context, endpoint *model.Endpoint) error
	IsNegativelyCached(ctx context.Context, ownerID, slug string) (bool, error)
	SetNegativeCache(ctx context.Context, ownerID, slug string) error
}

// Dispatcher resolves inbound runtime requests to registered endpoints.
type Dispatcher struct {
	store   OwnerStore
	cache   DispatchCache
	metrics metrics.Recorder
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(store OwnerStore, dispatchCache DispatchCache, recorder metrics.Recorder) *Dispatcher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Dispatcher{
		store:   store,
		cache:   dispatchCache,
		metrics: recorder,
	}
}

// DispatchInput identifies an inbound runtime request.
type DispatchInput struct {
	OwnerToken   string
	Slug         string
	Method       string
	PresentedKey string
}

// DispatchResult is a successful dispatch outcome.
type DispatchResult struct {
	Owner       *model.Owner
	Endpoint    *model.Endpoint
	Body        []byte
	ContentType string
	CacheHit    bool
}

// Dispatch walks the resolution sequence strictly in order: owner, endpoint,
// method, access. Existence is always checked before method and method
// before access, so a caller probing a nonexistent path never learns whether
// a key would have been required. The returned body is the stored response
// byte-for-byte; nothing re-serializes it on the read path.
func (s *Dispatcher) Dispatch(ctx context.Context, input DispatchInput) (*DispatchResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveDispatchDuration(time.Since(start))
	}()

	owner, err := s.store.GetOwnerByToken(ctx, input.OwnerToken)
	if err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	endpoint, cacheHit, err := s.resolveEndpoint(ctx, owner.ID, input.Slug)
	if err != nil {
		return nil, err
	}

	if model.Method(input.Method) != endpoint.Method {
		return nil, &MethodNotAllowedError{Expected: endpoint.Method, Owner: owner, Endpoint: endpoint}
	}

	decision := auth.Authorize(endpoint, owner, input.PresentedKey)
	if !decision.Allowed {
		s.metrics.IncDispatchDenied(string(decision.Reason))
		return nil, &AccessDeniedError{Reason: decision.Reason, Owner: owner, Endpoint: endpoint}
	}

	return &DispatchResult{
		Owner:       owner,
		Endpoint:    endpoint,
		Body:        endpoint.Response.Bytes(),
		ContentType: "application/json",
		CacheHit:    cacheHit,
	}, nil
}

// resolveEndpoint is the hot-path lookup: cache, negative cache, then the
// store with a cache backfill.
func (s *Dispatcher) resolveEndpoint(ctx context.Context, ownerID, slug string) (*model.Endpoint, bool, error) {
	if s.cache != nil {
		cached, err := s.cache.GetEndpoint(ctx, ownerID, slug)
		if err == nil {
			endpoint, convErr := cached.ToEndpoint(ownerID, slug)
			if convErr == nil {
				s.metrics.IncDispatchCacheHit()
				return endpoint, true, nil
			}
			// Corrupted entry - fall through to the store
		} else if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.IncDispatchCacheMiss()
			isNegative, _ := s.cache.IsNegativelyCached(ctx, ownerID, slug)
			if isNegative {
				return nil, false, ErrEndpointNotFound
			}
		}
		// Redis errors fall through to the store
	}

	endpoint, err := s.store.GetEndpointBySlug(ctx, ownerID, slug)
	if err != nil {
		if errors.Is(err, repository.ErrEndpointNotFound) {
			if s.cache != nil {
				_ = s.cache.SetNegativeCache(ctx, ownerID, slug)
			}
			return nil, false, ErrEndpointNotFound
		}
		return nil, false, err
	}

	if s.cache != nil {
		// Backfill failures are tolerated; the next miss retries.
		_ = s.cache.SetEndpoint(ctx, endpoint)
	}

	return endpoint, false, nil
}

var _ OwnerStore = (*repository.Repository)(nil)
var _ DispatchCache = (*cache.Cache)(nil)
