package leveldb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimd/internal/claim/models"
	"claimd/internal/claim/store"
	"claimd/pkg/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, ds, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	fp := domain.Fingerprint{0x01, 0x02, 0x03}
	rec := models.ClaimRecord{Owner: "alice", RegisteredAt: 7}

	_, err := s.Get(ctx, fp)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Insert(ctx, fp, rec))

	got, err := s.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	ok, err := s.Contains(ctx, fp)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Remove(ctx, fp))
	ok, err = s.Contains(ctx, fp)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	fp := domain.Fingerprint("claim")

	require.NoError(t, s.Insert(ctx, fp, models.ClaimRecord{Owner: "alice", RegisteredAt: 1}))
	require.NoError(t, s.Insert(ctx, fp, models.ClaimRecord{Owner: "bob", RegisteredAt: 2}))

	got, err := s.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity("bob"), got.Owner)
	assert.Equal(t, domain.LogicalTimestamp(2), got.RegisteredAt)
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fp := domain.Fingerprint("durable")

	s, ds, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, fp, models.ClaimRecord{Owner: "alice", RegisteredAt: 9}))
	require.NoError(t, ds.Close())

	s2, ds2, err := Open(dir)
	require.NoError(t, err)
	defer func() { _ = ds2.Close() }()

	got, err := s2.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity("alice"), got.Owner)
}
