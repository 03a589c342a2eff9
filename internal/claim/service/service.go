// Package service implements the claim state machine. Per fingerprint:
//
//	Absent -> Claimed(owner) -> Claimed(newOwner)* -> Absent
//
// Create is the only Absent->Claimed edge, Revoke the only ->Absent edge, and
// Transfer the only Claimed->Claimed edge. Preconditions are evaluated first,
// left to right; the first failure is reported and no mutation occurs.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"claimd/internal/claim/models"
	"claimd/internal/claim/store"
	"claimd/internal/events"
	"claimd/internal/platform/clock"
	"claimd/internal/platform/metrics"
	"claimd/pkg/domain"
	dErrors "claimd/pkg/domain-errors"
)

// Service validates preconditions against the store and the injected
// collaborators, then applies an all-or-nothing mutation. The internal mutex
// makes each call one logical transaction: no partial or interleaved
// read-modify-write is observable.
type Service struct {
	mu         sync.Mutex
	store      store.ClaimStore
	clock      clock.Clock
	sink       events.Sink
	proofLimit int
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithEventSink(sink events.Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// New constructs the claim service. proofLimit bounds fingerprint byte length
// for new claims.
func New(claims store.ClaimStore, clk clock.Clock, proofLimit int, opts ...Option) (*Service, error) {
	if claims == nil {
		return nil, fmt.Errorf("claim store is required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if proofLimit <= 0 {
		return nil, fmt.Errorf("proof limit must be positive, got %d", proofLimit)
	}

	svc := &Service{
		store:      claims,
		clock:      clk,
		proofLimit: proofLimit,
		logger:     slog.Default(),
		tracer:     otel.Tracer("claimd/internal/claim/service"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create registers caller as the first claimant of fingerprint.
func (s *Service) Create(ctx context.Context, caller domain.Identity, fp domain.Fingerprint) error {
	ctx, span := s.startSpan(ctx, "claim.create", fp)
	defer span.End()
	defer s.observe("create", time.Now())

	if caller.IsZero() {
		return s.reject(ctx, span, "create", dErrors.New(dErrors.CodeInvalidInput, "caller identity is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(fp) > s.proofLimit {
		return s.reject(ctx, span, "create", dErrors.New(dErrors.CodeProofTooLong, "fingerprint exceeds proof limit"))
	}

	exists, err := s.store.Contains(ctx, fp)
	if err != nil {
		return s.fail(ctx, span, "create", err)
	}
	if exists {
		return s.reject(ctx, span, "create", dErrors.New(dErrors.CodeProofAlreadyExists, "fingerprint already claimed"))
	}

	now := s.clock.Now()
	rec := models.ClaimRecord{Owner: caller, RegisteredAt: now}
	if err := s.store.Insert(ctx, fp, rec); err != nil {
		return s.fail(ctx, span, "create", err)
	}

	s.emit(ctx, events.Created(caller, fp, now))
	if s.metrics != nil {
		s.metrics.ClaimsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "claim created",
		"caller", caller.String(),
		"fingerprint", fp.String(),
		"registered_at", uint64(now),
	)
	return nil
}

// Revoke deletes the record for fingerprint if caller owns it.
func (s *Service) Revoke(ctx context.Context, caller domain.Identity, fp domain.Fingerprint) error {
	ctx, span := s.startSpan(ctx, "claim.revoke", fp)
	defer span.End()
	defer s.observe("revoke", time.Now())

	if caller.IsZero() {
		return s.reject(ctx, span, "revoke", dErrors.New(dErrors.CodeInvalidInput, "caller identity is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ownedBy(ctx, caller, fp); err != nil {
		return s.reject(ctx, span, "revoke", err)
	}

	if err := s.store.Remove(ctx, fp); err != nil {
		return s.fail(ctx, span, "revoke", err)
	}

	s.emit(ctx, events.Revoked(caller, fp))
	if s.metrics != nil {
		s.metrics.ClaimsRevoked.Inc()
	}
	s.logger.InfoContext(ctx, "claim revoked",
		"caller", caller.String(),
		"fingerprint", fp.String(),
	)
	return nil
}

// Transfer reassigns the record for fingerprint to dest if caller owns it. The
// registration height is refreshed to the current logical time.
func (s *Service) Transfer(ctx context.Context, caller domain.Identity, fp domain.Fingerprint, dest domain.Identity) error {
	ctx, span := s.startSpan(ctx, "claim.transfer", fp)
	defer span.End()
	defer s.observe("transfer", time.Now())

	if caller.IsZero() {
		return s.reject(ctx, span, "transfer", dErrors.New(dErrors.CodeInvalidInput, "caller identity is required"))
	}
	if dest.IsZero() {
		return s.reject(ctx, span, "transfer", dErrors.New(dErrors.CodeInvalidInput, "destination identity is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ownedBy(ctx, caller, fp); err != nil {
		return s.reject(ctx, span, "transfer", err)
	}

	now := s.clock.Now()
	rec := models.ClaimRecord{Owner: dest, RegisteredAt: now}
	if err := s.store.Insert(ctx, fp, rec); err != nil {
		return s.fail(ctx, span, "transfer", err)
	}

	s.emit(ctx, events.Transferred(caller, fp, dest, now))
	if s.metrics != nil {
		s.metrics.ClaimsTransferred.Inc()
	}
	s.logger.InfoContext(ctx, "claim transferred",
		"caller", caller.String(),
		"fingerprint", fp.String(),
		"dest", dest.String(),
		"registered_at", uint64(now),
	)
	return nil
}

// Lookup returns the current record for fingerprint. Read-only; emits nothing.
func (s *Service) Lookup(ctx context.Context, fp domain.Fingerprint) (models.ClaimRecord, error) {
	rec, err := s.store.Get(ctx, fp)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return models.ClaimRecord{}, dErrors.New(dErrors.CodeClaimNotExist, "fingerprint is not claimed")
		}
		return models.ClaimRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up claim")
	}
	return rec, nil
}

// ownedBy fetches the record for fp and checks caller ownership, mapping a
// store miss to ClaimNotExist. Callers hold s.mu.
func (s *Service) ownedBy(ctx context.Context, caller domain.Identity, fp domain.Fingerprint) (models.ClaimRecord, error) {
	rec, err := s.store.Get(ctx, fp)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return models.ClaimRecord{}, dErrors.New(dErrors.CodeClaimNotExist, "fingerprint is not claimed")
		}
		return models.ClaimRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read claim")
	}
	if rec.Owner != caller {
		return models.ClaimRecord{}, dErrors.New(dErrors.CodeNotProofOwner, "caller does not own this claim")
	}
	return rec, nil
}

// emit forwards the event to the sink. The store mutation has already
// committed; sink failures are logged, never surfaced to the caller.
func (s *Service) emit(ctx context.Context, ev events.Event) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Emit(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "event emission failed",
			"type", string(ev.Type),
			"fingerprint", ev.Fingerprint.String(),
			"error", err,
		)
	}
}

func (s *Service) startSpan(ctx context.Context, name string, fp domain.Fingerprint) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Int("claim.fingerprint_len", len(fp)),
	))
}

func (s *Service) reject(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	if s.metrics != nil {
		s.metrics.OpsRejected.WithLabelValues(op, string(dErrors.CodeOf(err))).Inc()
	}
	s.logger.WarnContext(ctx, "claim operation rejected",
		"op", op,
		"code", string(dErrors.CodeOf(err)),
	)
	return err
}

func (s *Service) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	s.logger.ErrorContext(ctx, "claim operation failed",
		"op", op,
		"error", err,
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, "claim store failure")
}

func (s *Service) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.OpDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}
}
