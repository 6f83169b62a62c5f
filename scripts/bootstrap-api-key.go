package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/responder/responder/internal/auth"
	"github.com/responder/responder/internal/model"
	"github.com/responder/responder/internal/repository"
)

type output struct {
	OwnerID   string `json:"owner_id"`
	Username  string `json:"username"`
	Admin     bool   `json:"admin"`
	Key       string `json:"key"`
	KeyPrefix string `json:"key_prefix"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "system", "Owner username")
		name        = flag.String("name", "System", "Owner display name")
		admin       = flag.Bool("admin", true, "Grant the owner admin rights")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "run migrations:", err)
		os.Exit(1)
	}

	owner, err := ensureOwner(ctx, repo, *username, *name, *admin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	generated, err := auth.GenerateAPIKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate api key:", err)
		os.Exit(1)
	}

	if err := repo.SetOwnerAPIKey(ctx, owner.ID, generated.Hash, generated.Prefix); err != nil {
		fmt.Fprintln(os.Stderr, "store api key:", err)
		os.Exit(1)
	}

	out := output{
		OwnerID:   owner.ID,
		Username:  owner.Username,
		Admin:     owner.Admin,
		Key:       generated.Plaintext,
		KeyPrefix: generated.Prefix,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Key)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func ensureOwner(ctx context.Context, repo *repository.Repository, username, name string, admin bool) (*model.Owner, error) {
	existing, err := repo.GetOwnerByToken(ctx, username)
	if err == nil {
		if existing.Admin != admin {
			return nil, fmt.Errorf("owner %s exists with admin=%v", username, existing.Admin)
		}
		return existing, nil
	}
	if !errors.Is(err, repository.ErrOwnerNotFound) {
		return nil, fmt.Errorf("lookup owner: %w", err)
	}

	owner := &model.Owner{
		ID:        ulid.Make().String(),
		Username:  username,
		Name:      name,
		Admin:     admin,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateOwner(ctx, owner); err != nil {
		return nil, fmt.Errorf("create owner: %w", err)
	}
	return owner, nil
}
