package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/responder/responder/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420421

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// TruncateAll empties every application table. Migrations are embedded and
// applied by repository.Migrate, so tests reset state instead of rebuilding
// the schema.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "TRUNCATE dispatch_events, endpoints, owners CASCADE")
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestOwner creates a test owner with sensible defaults.
func NewTestOwner(t testing.TB, username string) *model.Owner {
	t.Helper()
	return &model.Owner{
		ID:        ulid.Make().String(),
		Username:  username,
		Name:      username,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTestEndpoint creates a test endpoint owned by the given owner.
func NewTestEndpoint(t testing.TB, ownerID, slug string) *model.Endpoint {
	t.Helper()
	response, err := model.ParseJSONDocument(`{"ok":true}`)
	if err != nil {
		t.Fatalf("parse test response: %v", err)
	}
	now := time.Now().UTC()
	return &model.Endpoint{
		ID:         ulid.Make().String(),
		OwnerID:    ownerID,
		Name:       "Endpoint " + slug,
		Slug:       slug,
		Method:     model.MethodGet,
		Visibility: model.VisibilityPublic,
		Response:   response.Canonical(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// UniqueSlug generates a unique slug for tests.
func UniqueSlug(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
