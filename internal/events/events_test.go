package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimd/pkg/domain"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder()
	fp := domain.Fingerprint{0x01}

	require.NoError(t, r.Emit(ctx, Created("alice", fp, 5)))
	require.NoError(t, r.Emit(ctx, Transferred("alice", fp, "bob", 6)))
	require.NoError(t, r.Emit(ctx, Revoked("bob", fp)))

	evs := r.Events()
	require.Len(t, evs, 3)
	assert.Equal(t, TypeClaimCreated, evs[0].Type)
	assert.Equal(t, TypeClaimTransferred, evs[1].Type)
	assert.Equal(t, domain.Identity("bob"), evs[1].Dest)
	assert.Equal(t, TypeClaimRevoked, evs[2].Type)
	assert.False(t, evs[0].EmittedAt.IsZero())

	r.Reset()
	assert.Empty(t, r.Events())
}

func TestEventEnvelope(t *testing.T) {
	ev := Transferred("alice", domain.Fingerprint{0xab, 0xcd}, "bob", 9)

	b, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "claim_transferred", decoded["type"])
	assert.Equal(t, "abcd", decoded["fingerprint"])
	assert.Equal(t, "alice", decoded["caller"])
	assert.Equal(t, "bob", decoded["dest"])
	assert.Equal(t, float64(9), decoded["registered_at"])
}

func TestRevokedOmitsTransferFields(t *testing.T) {
	b, err := json.Marshal(Revoked("alice", domain.Fingerprint{0x01}))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	_, hasDest := decoded["dest"]
	assert.False(t, hasDest)
	_, hasRegisteredAt := decoded["registered_at"]
	assert.False(t, hasRegisteredAt)
}

func TestLogSinkNeverFails(t *testing.T) {
	sink := NewLogSink(slog.New(slog.DiscardHandler))
	err := sink.Emit(context.Background(), Created("alice", domain.Fingerprint{0x01}, 1))
	assert.NoError(t, err)
}
