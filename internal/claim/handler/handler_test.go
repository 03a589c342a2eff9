package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claimservice "claimd/internal/claim/service"
	"claimd/internal/claim/store/memory"
	"claimd/internal/events"
	"claimd/internal/jwttoken"
	"claimd/internal/platform/clock"
	"claimd/pkg/domain"
)

type fixture struct {
	server *httptest.Server
	tokens *jwttoken.JWTService
	sink   *events.Recorder
	clock  *clock.Manual
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	sink := events.NewRecorder()
	clk := clock.NewManual(50)

	svc, err := claimservice.New(memory.New(), clk, 10,
		claimservice.WithLogger(logger),
		claimservice.WithEventSink(sink),
	)
	require.NoError(t, err)

	tokens := jwttoken.NewJWTService("test-signing-key", "claimd-test")

	router := chi.NewRouter()
	New(svc, logger, tokens).Register(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &fixture{server: server, tokens: tokens, sink: sink, clock: clk}
}

func (f *fixture) request(t *testing.T, method, path string, body any, identity domain.Identity) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !identity.IsZero() {
		token, err := f.tokens.GenerateAccessToken(identity, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["error"]
}

// "abc" hex encoded, the fingerprint used throughout.
var fpHex = fmt.Sprintf("%x", "abc")

func TestCreateClaim(t *testing.T) {
	f := newFixture(t)

	t.Run("creates and returns 201", func(t *testing.T) {
		resp := f.request(t, http.MethodPost, "/claims", map[string]string{"fingerprint": fpHex}, "alice")
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("duplicate create returns 409 proof_already_exists", func(t *testing.T) {
		resp := f.request(t, http.MethodPost, "/claims", map[string]string{"fingerprint": fpHex}, "bob")
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "proof_already_exists", errorCode(t, resp))
	})

	t.Run("over-limit fingerprint returns 400 proof_too_long", func(t *testing.T) {
		long := bytes.Repeat([]byte{0x11}, 11)
		resp := f.request(t, http.MethodPost, "/claims", map[string]string{"fingerprint": fmt.Sprintf("%x", long)}, "alice")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "proof_too_long", errorCode(t, resp))
	})

	t.Run("non-hex fingerprint returns 400", func(t *testing.T) {
		resp := f.request(t, http.MethodPost, "/claims", map[string]string{"fingerprint": "zzzz"}, "alice")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing token returns 401", func(t *testing.T) {
		resp := f.request(t, http.MethodPost, "/claims", map[string]string{"fingerprint": fpHex}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLookupClaim(t *testing.T) {
	f := newFixture(t)
	f.clock.Set(77)

	resp := f.request(t, http.MethodPost, "/claims", map[string]string{"fingerprint": fpHex}, "alice")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("returns the record", func(t *testing.T) {
		resp := f.request(t, http.MethodGet, "/claims/"+fpHex, nil, "alice")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Fingerprint  string `json:"fingerprint"`
			Owner        string `json:"owner"`
			RegisteredAt uint64 `json:"registered_at"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, fpHex, body.Fingerprint)
		assert.Equal(t, "alice", body.Owner)
		assert.Equal(t, uint64(77), body.RegisteredAt)
	})

	t.Run("absent fingerprint returns 404 claim_not_exist", func(t *testing.T) {
		resp := f.request(t, http.MethodGet, "/claims/beef", nil, "alice")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "claim_not_exist", errorCode(t, resp))
	})
}

func TestRevokeClaim(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodPost, "/claims", map[string]string{"fingerprint": fpHex}, "alice")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("non-owner revoke returns 403 not_proof_owner", func(t *testing.T) {
		resp := f.request(t, http.MethodDelete, "/claims/"+fpHex, nil, "mallory")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "not_proof_owner", errorCode(t, resp))
	})

	t.Run("owner revoke returns 204 and frees the fingerprint", func(t *testing.T) {
		resp := f.request(t, http.MethodDelete, "/claims/"+fpHex, nil, "alice")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = f.request(t, http.MethodGet, "/claims/"+fpHex, nil, "alice")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("revoking an absent claim returns 404", func(t *testing.T) {
		resp := f.request(t, http.MethodDelete, "/claims/"+fpHex, nil, "alice")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "claim_not_exist", errorCode(t, resp))
	})
}

func TestTransferClaim(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodPost, "/claims", map[string]string{"fingerprint": fpHex}, "alice")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("owner transfer returns 204 and reassigns", func(t *testing.T) {
		resp := f.request(t, http.MethodPost, "/claims/"+fpHex+"/transfer", map[string]string{"dest": "carol"}, "alice")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = f.request(t, http.MethodGet, "/claims/"+fpHex, nil, "alice")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "carol", body["owner"])
	})

	t.Run("stale owner transfer returns 403", func(t *testing.T) {
		resp := f.request(t, http.MethodPost, "/claims/"+fpHex+"/transfer", map[string]string{"dest": "dave"}, "alice")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("empty dest returns 400", func(t *testing.T) {
		resp := f.request(t, http.MethodPost, "/claims/"+fpHex+"/transfer", map[string]string{"dest": ""}, "carol")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestEventTrailThroughHTTP(t *testing.T) {
	f := newFixture(t)

	f.request(t, http.MethodPost, "/claims", map[string]string{"fingerprint": fpHex}, "alice")
	f.request(t, http.MethodPost, "/claims/"+fpHex+"/transfer", map[string]string{"dest": "carol"}, "alice")
	f.request(t, http.MethodDelete, "/claims/"+fpHex, nil, "carol")

	evs := f.sink.Events()
	require.Len(t, evs, 3)
	assert.Equal(t, events.TypeClaimCreated, evs[0].Type)
	assert.Equal(t, events.TypeClaimTransferred, evs[1].Type)
	assert.Equal(t, events.TypeClaimRevoked, evs[2].Type)
}
