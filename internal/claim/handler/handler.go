// Package handler is the thin HTTP layer over the claim service. It decodes
// requests, delegates to the service, and translates coded domain errors into
// JSON responses; no business logic lives here.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"claimd/internal/claim/models"
	"claimd/internal/platform/middleware"
	"claimd/pkg/domain"
	dErrors "claimd/pkg/domain-errors"
	"claimd/pkg/requestcontext"
)

// Service defines the claim operations the handler depends on.
type Service interface {
	Create(ctx context.Context, caller domain.Identity, fp domain.Fingerprint) error
	Revoke(ctx context.Context, caller domain.Identity, fp domain.Fingerprint) error
	Transfer(ctx context.Context, caller domain.Identity, fp domain.Fingerprint, dest domain.Identity) error
	Lookup(ctx context.Context, fp domain.Fingerprint) (models.ClaimRecord, error)
}

// Handler handles claim-related endpoints.
type Handler struct {
	logger    *slog.Logger
	claims    Service
	validator middleware.TokenValidator
}

// New creates a new claim Handler.
func New(claims Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		claims:    claims,
		validator: validator,
	}
}

// Register registers the claim routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	claimRouter := chi.NewRouter()
	claimRouter.Use(middleware.Recovery(h.logger))
	claimRouter.Use(middleware.RequestID)
	claimRouter.Use(middleware.Logger(h.logger))
	claimRouter.Use(middleware.Timeout(30 * time.Second))
	claimRouter.Use(middleware.ContentTypeJSON)
	claimRouter.Use(middleware.RequireAuth(h.validator, h.logger))
	claimRouter.Post("/claims", h.handleCreate)
	claimRouter.Get("/claims/{fingerprint}", h.handleLookup)
	claimRouter.Delete("/claims/{fingerprint}", h.handleRevoke)
	claimRouter.Post("/claims/{fingerprint}/transfer", h.handleTransfer)

	r.Mount("/", claimRouter)
}

type createRequest struct {
	Fingerprint string `json:"fingerprint"`
}

type transferRequest struct {
	Dest string `json:"dest"`
}

type claimResponse struct {
	Fingerprint  domain.Fingerprint      `json:"fingerprint"`
	Owner        domain.Identity         `json:"owner"`
	RegisteredAt domain.LogicalTimestamp `json:"registered_at"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	fp, err := domain.ParseFingerprint(req.Fingerprint)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.claims.Create(ctx, caller, fp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	fp, err := domain.ParseFingerprint(chi.URLParam(r, "fingerprint"))
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.claims.Lookup(r.Context(), fp)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(claimResponse{
		Fingerprint:  fp,
		Owner:        rec.Owner,
		RegisteredAt: rec.RegisteredAt,
	})
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	fp, err := domain.ParseFingerprint(chi.URLParam(r, "fingerprint"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.claims.Revoke(r.Context(), caller, fp); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	fp, err := domain.ParseFingerprint(chi.URLParam(r, "fingerprint"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	dest, err := domain.ParseIdentity(req.Dest)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.claims.Transfer(r.Context(), caller, fp, dest); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// caller reads the authenticated identity the middleware injected.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	caller := requestcontext.Identity(r.Context())
	if caller.IsZero() {
		// Should never happen when RequireAuth is configured correctly.
		h.logger.ErrorContext(r.Context(), "identity missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		writeError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return caller, true
}

// writeError centralizes domain error translation to HTTP responses so every
// endpoint returns the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             string(code),
		"error_description": dErrors.MessageOf(err),
	})
}
