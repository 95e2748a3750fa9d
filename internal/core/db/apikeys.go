package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowbuilder/branchkeeper/internal/types"
	"github.com/google/uuid"
)

// ErrAPIKeyNotFound indicates no active key with that id for the tenant.
var ErrAPIKeyNotFound = errors.New("api key not found")

// APIKeyStore records issued API keys. Only the HMAC of a key is stored.
type APIKeyStore struct {
	queries *Queries
	now     func() time.Time
}

// NewAPIKeyStore creates a key store over loaded queries.
func NewAPIKeyStore(queries *Queries) *APIKeyStore {
	return &APIKeyStore{
		queries: queries,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateAPIKey stores keyHash for tenant, creating the tenant if needed.
// Returns the new key's id.
func (s *APIKeyStore) CreateAPIKey(ctx context.Context, tenant types.TenantID, secretID string, keyHash []byte, name string) (string, error) {
	now := s.now()
	if _, err := s.queries.ExecContext(ctx, "ensure-tenant", string(tenant), string(tenant), now); err != nil {
		return "", fmt.Errorf("ensure tenant %s: %w", tenant, err)
	}

	id := uuid.Must(uuid.NewV7()).String()
	if _, err := s.queries.ExecContext(ctx, "insert-api-key", id, string(tenant), secretID, keyHash, name, now); err != nil {
		return "", fmt.Errorf("insert api key: %w", err)
	}
	return id, nil
}

// RevokeAPIKey marks a key revoked. Revoking twice reports ErrAPIKeyNotFound.
func (s *APIKeyStore) RevokeAPIKey(ctx context.Context, tenant types.TenantID, id string) error {
	res, err := s.queries.ExecContext(ctx, "revoke-api-key", s.now(), id, string(tenant))
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if n == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}
