// Package store defines the ClaimStore contract: a durable, atomically
// updatable mapping from fingerprint to ownership record. No validation logic
// lives here; the service owns the state machine.
package store

import (
	"context"

	"claimd/internal/claim/models"
	"claimd/pkg/domain"
	dErrors "claimd/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific misses consistent across the in-memory,
// leveldb, postgres, and redis implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "claim record not found")

// ClaimStore is interface-driven to keep the state machine testable and to
// allow swapping persistence without rewiring business code. Every operation
// must be atomic with respect to concurrent calls; the service additionally
// serializes read-modify-write sequences.
type ClaimStore interface {
	// Get returns the record for fp, or ErrNotFound when the fingerprint is
	// unclaimed.
	Get(ctx context.Context, fp domain.Fingerprint) (models.ClaimRecord, error)
	// Contains reports whether fp currently has a record.
	Contains(ctx context.Context, fp domain.Fingerprint) (bool, error)
	// Insert writes the record for fp, replacing any existing one.
	Insert(ctx context.Context, fp domain.Fingerprint, rec models.ClaimRecord) error
	// Remove deletes the record for fp. Removing an absent fingerprint is a
	// no-op; the service checks presence first.
	Remove(ctx context.Context, fp domain.Fingerprint) error
}
