package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/responder/responder/internal/auth"
	"github.com/responder/responder/internal/model"
	"github.com/responder/responder/internal/repository"
)

// fakeDispatchStore backs the dispatcher with in-memory owners and
// endpoints. Token lookup matches username or ID, active owners only.
type fakeDispatchStore struct {
	owners    []*model.Owner
	endpoints *fakeEndpointStore
}

func newFakeDispatchStore() *fakeDispatchStore {
	return &fakeDispatchStore{endpoints: newFakeEndpointStore()}
}

func (f *fakeDispatchStore) GetOwnerByToken(ctx context.Context, token string) (*model.Owner, error) {
	for _, o := range f.owners {
		if o.Active && (o.Username == token || o.ID == token) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrOwnerNotFound
}

func (f *fakeDispatchStore) GetEndpointBySlug(ctx context.Context, ownerID, slug string) (*model.Endpoint, error) {
	return f.endpoints.GetEndpointBySlug(ctx, ownerID, slug)
}

func mustParseJSON(t *testing.T, s string) model.JSONDocument {
	t.Helper()
	doc, err := model.ParseJSONDocument(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return doc
}

func seedDispatchStore(t *testing.T) (*fakeDispatchStore, *auth.GeneratedKey) {
	t.Helper()

	key, err := auth.GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	store := newFakeDispatchStore()
	store.owners = append(store.owners, &model.Owner{
		ID:           "owner1",
		Username:     "admin",
		Name:         "Admin",
		Active:       true,
		APIKeyHash:   key.Hash,
		APIKeyPrefix: key.Prefix,
	})

	public := &model.Endpoint{
		ID:         "ep1",
		OwnerID:    "owner1",
		Name:       "ping",
		Slug:       "ping",
		Method:     model.MethodGet,
		Visibility: model.VisibilityPublic,
		Response:   mustParseJSON(t, `{"ok":true}`),
	}
	private := &model.Endpoint{
		ID:         "ep2",
		OwnerID:    "owner1",
		Name:       "secret",
		Slug:       "secret",
		Method:     model.MethodGet,
		Visibility: model.VisibilityPrivate,
		Response:   mustParseJSON(t, `{"hidden":1}`),
	}

	ctx := context.Background()
	if err := store.endpoints.CreateEndpoint(ctx, public); err != nil {
		t.Fatalf("seed public: %v", err)
	}
	if err := store.endpoints.CreateEndpoint(ctx, private); err != nil {
		t.Fatalf("seed private: %v", err)
	}

	return store, key
}

func TestDispatchPublicEndpoint(t *testing.T) {
	store, _ := seedDispatchStore(t)
	svc := NewDispatcher(store, nil, nil)

	result, err := svc.Dispatch(context.Background(), DispatchInput{
		OwnerToken: "admin",
		Slug:       "ping",
		Method:     "GET",
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if !bytes.Equal(result.Body, []byte(`{"ok":true}`)) {
		t.Errorf("body = %s, want stored bytes verbatim", result.Body)
	}
	if result.ContentType != "application/json" {
		t.Errorf("content type = %q", result.ContentType)
	}
}

func TestDispatchOwnerByID(t *testing.T) {
	store, _ := seedDispatchStore(t)
	svc := NewDispatcher(store, nil, nil)

	_, err := svc.Dispatch(context.Background(), DispatchInput{
		OwnerToken: "owner1",
		Slug:       "ping",
		Method:     "GET",
	})
	if err != nil {
		t.Fatalf("dispatch by owner ID failed: %v", err)
	}
}

func TestDispatchOwnerNotFound(t *testing.T) {
	store, _ := seedDispatchStore(t)
	svc := NewDispatcher(store, nil, nil)

	_, err := svc.Dispatch(context.Background(), DispatchInput{
		OwnerToken: "nobody",
		Slug:       "ping",
		Method:     "GET",
	})
	if !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestDispatchOwnerTokenExactMatch(t *testing.T) {
	store, _ := seedDispatchStore(t)
	svc := NewDispatcher(store, nil, nil)

	// Token matching is exact: no case folding, no trimming.
	for _, token := range []string{"Admin", "ADMIN", " admin"} {
		_, err := svc.Dispatch(context.Background(), DispatchInput{
			OwnerToken: token,
			Slug:       "ping",
			Method:     "GET",
		})
		if !errors.Is(err, ErrOwnerNotFound) {
			t.Errorf("token %q: expected ErrOwnerNotFound, got %v", token, err)
		}
	}
}

func TestDispatchEndpointNotFound(t *testing.T) {
	store, _ := seedDispatchStore(t)
	svc := NewDispatcher(store, nil, nil)

	_, err := svc.Dispatch(context.Background(), DispatchInput{
		OwnerToken: "admin",
		Slug:       "missing",
		Method:     "GET",
	})
	if !errors.Is(err, ErrEndpointNotFound) {
		t.Fatalf("expected ErrEndpointNotFound, got %v", err)
	}
}

func TestDispatchMethodNotAllowed(t *testing.T) {
	store, _ := seedDispatchStore(t)
	svc := NewDispatcher(store, nil, nil)

	_, err := svc.Dispatch(context.Background(), DispatchInput{
		OwnerToken: "admin",
		Slug:       "ping",
		Method:     "POST",
	})

	var notAllowed *MethodNotAllowedError
	if !errors.As(err, &notAllowed) {
		t.Fatalf("expected MethodNotAllowedError, got %v", err)
	}
	if notAllowed.Expected != model.MethodGet {
		t.Errorf("expected method = %q, want GET", notAllowed.Expected)
	}
}

func TestDispatchExistenceCheckedBeforeMethod(t *testing.T) {
	store, _ := seedDispatchStore(t)
	svc := NewDispatcher(store, nil, nil)

	// A wrong method against a nonexistent slug must read as not-found,
	// never as method-not-allowed.
	_, err := svc.Dispatch(context.Background(), DispatchInput{
		OwnerToken: "admin",
		Slug:       "missing",
		Method:     "POST",
	})
	if !errors.Is(err, ErrEndpointNotFound) {
		t.Fatalf("expected ErrEndpointNotFound, got %v", err)
	}
}

func TestDispatchPrivateEndpointDenials(t *testing.T) {
	store, key := seedDispatchStore(t)
	svc := NewDispatcher(store, nil, nil)

	tests := []struct {
		name       string
		key        string
		wantReason auth.DenialReason
	}{
		{"missing_key", "", auth.DenialMissingKey},
		{"wrong_key", "rk_000000_00000000000000000000000000000000", auth.DenialInvalidKey},
		{"truncated_real_key", key.Plaintext[:len(key.Plaintext)-1], auth.DenialInvalidKey},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.Dispatch(context.Background(), DispatchInput{
				OwnerToken:   "admin",
				Slug:         "secret",
				Method:       "GET",
				PresentedKey: test.key,
			})

			var denied *AccessDeniedError
			if !errors.As(err, &denied) {
				t.Fatalf("expected AccessDeniedError, got %v", err)
			}
			if denied.Reason != test.wantReason {
				t.Errorf("reason = %q, want %q", denied.Reason, test.wantReason)
			}
		})
	}
}

func TestDispatchPrivateEndpointNoKeyConfigured(t *testing.T) {
	store, _ := seedDispatchStore(t)
	store.owners[0].APIKeyHash = ""
	store.owners[0].APIKeyPrefix = ""
	svc := NewDispatcher(store, nil, nil)

	_, err := svc.Dispatch(context.Background(), DispatchInput{
		OwnerToken:   "admin",
		Slug:         "secret",
		Method:       "GET",
		PresentedKey: "rk_000000_00000000000000000000000000000000",
	})

	var denied *AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected AccessDeniedError, got %v", err)
	}
	if denied.Reason != auth.DenialNoKeyConfigured {
		t.Errorf("reason = %q, want %q", denied.Reason, auth.DenialNoKeyConfigured)
	}
}

func TestDispatchPrivateEndpointWithValidKey(t *testing.T) {
	store, key := seedDispatchStore(t)
	svc := NewDispatcher(store, nil, nil)

	result, err := svc.Dispatch(context.Background(), DispatchInput{
		OwnerToken:   "admin",
		Slug:         "secret",
		Method:       "GET",
		PresentedKey: key.Plaintext,
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if !bytes.Equal(result.Body, []byte(`{"hidden":1}`)) {
		t.Errorf("body = %s", result.Body)
	}
}

func TestDispatchInactiveOwner(t *testing.T) {
	store, _ := seedDispatchStore(t)
	store.owners[0].Active = false
	svc := NewDispatcher(store, nil, nil)

	_, err := svc.Dispatch(context.Background(), DispatchInput{
		OwnerToken: "admin",
		Slug:       "ping",
		Method:     "GET",
	})
	if !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound for inactive owner, got %v", err)
	}
}
