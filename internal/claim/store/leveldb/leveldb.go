// Package leveldb provides a ClaimStore backed by an IPFS datastore, durable
// on local disk via go-ds-leveldb.
package leveldb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	leveldb "github.com/ipfs/go-ds-leveldb"

	"claimd/internal/claim/models"
	"claimd/internal/claim/store"
	"claimd/pkg/domain"
)

const claimsPrefix = "claims"

type Store struct {
	data datastore.Datastore
}

var _ store.ClaimStore = (*Store)(nil)

// New wraps an existing datastore under the claims namespace.
func New(ds datastore.Datastore) *Store {
	return &Store{data: namespace.Wrap(ds, datastore.NewKey(claimsPrefix))}
}

// Open creates a LevelDB-backed store rooted at path.
func Open(path string) (*Store, *leveldb.Datastore, error) {
	ds, err := leveldb.NewDatastore(path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("open leveldb datastore: %w", err)
	}
	return New(ds), ds, nil
}

func (s *Store) Get(ctx context.Context, fp domain.Fingerprint) (models.ClaimRecord, error) {
	b, err := s.data.Get(ctx, datastore.NewKey(fp.Key()))
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return models.ClaimRecord{}, store.ErrNotFound
		}
		return models.ClaimRecord{}, fmt.Errorf("get claim record: %w", err)
	}
	return models.DecodeClaimRecord(b)
}

func (s *Store) Contains(ctx context.Context, fp domain.Fingerprint) (bool, error) {
	ok, err := s.data.Has(ctx, datastore.NewKey(fp.Key()))
	if err != nil {
		return false, fmt.Errorf("check claim record: %w", err)
	}
	return ok, nil
}

func (s *Store) Insert(ctx context.Context, fp domain.Fingerprint, rec models.ClaimRecord) error {
	b, err := rec.Encode()
	if err != nil {
		return err
	}
	if err := s.data.Put(ctx, datastore.NewKey(fp.Key()), b); err != nil {
		return fmt.Errorf("insert claim record: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, fp domain.Fingerprint) error {
	if err := s.data.Delete(ctx, datastore.NewKey(fp.Key())); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("remove claim record: %w", err)
	}
	return nil
}
