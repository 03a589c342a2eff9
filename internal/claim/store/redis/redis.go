// Package redis persists claim records in Redis for deployments where multiple
// instances share registry state.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"claimd/internal/claim/models"
	"claimd/internal/claim/store"
	"claimd/pkg/domain"
)

// Redis key prefix for claim records.
const claimKeyPrefix = "claim:"

type Store struct {
	client *redis.Client
}

var _ store.ClaimStore = (*Store)(nil)

// New constructs a Redis-backed claim store. The client lifecycle is managed
// externally.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func key(fp domain.Fingerprint) string { return claimKeyPrefix + fp.Key() }

func (s *Store) Get(ctx context.Context, fp domain.Fingerprint) (models.ClaimRecord, error) {
	b, err := s.client.Get(ctx, key(fp)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ClaimRecord{}, store.ErrNotFound
	}
	if err != nil {
		return models.ClaimRecord{}, fmt.Errorf("get claim record: %w", err)
	}
	return models.DecodeClaimRecord(b)
}

func (s *Store) Contains(ctx context.Context, fp domain.Fingerprint) (bool, error) {
	n, err := s.client.Exists(ctx, key(fp)).Result()
	if err != nil {
		return false, fmt.Errorf("check claim record: %w", err)
	}
	return n > 0, nil
}

func (s *Store) Insert(ctx context.Context, fp domain.Fingerprint, rec models.ClaimRecord) error {
	b, err := rec.Encode()
	if err != nil {
		return err
	}
	// No TTL: claims persist until revoked.
	if err := s.client.Set(ctx, key(fp), b, 0).Err(); err != nil {
		return fmt.Errorf("insert claim record: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, fp domain.Fingerprint) error {
	if err := s.client.Del(ctx, key(fp)).Err(); err != nil {
		return fmt.Errorf("remove claim record: %w", err)
	}
	return nil
}
