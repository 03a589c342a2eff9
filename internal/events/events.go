// Package events models claim lifecycle notifications as an observer
// interface. The service emits after a successful mutation; delivery transport
// is a deployment concern behind the Sink interface.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"claimd/pkg/domain"
)

// Type discriminates the claim lifecycle events.
type Type string

const (
	TypeClaimCreated     Type = "claim_created"
	TypeClaimRevoked     Type = "claim_revoked"
	TypeClaimTransferred Type = "claim_transferred"
)

// Event is the envelope emitted for every successful mutation. Caller is the
// identity that performed the operation; Dest is set only for transfers.
type Event struct {
	Type         Type                    `json:"type"`
	Caller       domain.Identity         `json:"caller"`
	Fingerprint  domain.Fingerprint      `json:"fingerprint"`
	Dest         domain.Identity         `json:"dest,omitempty"`
	RegisteredAt domain.LogicalTimestamp `json:"registered_at,omitempty"`
	EmittedAt    time.Time               `json:"emitted_at"`
}

// Created builds a ClaimCreated event.
func Created(caller domain.Identity, fp domain.Fingerprint, at domain.LogicalTimestamp) Event {
	return Event{Type: TypeClaimCreated, Caller: caller, Fingerprint: fp, RegisteredAt: at}
}

// Revoked builds a ClaimRevoked event.
func Revoked(caller domain.Identity, fp domain.Fingerprint) Event {
	return Event{Type: TypeClaimRevoked, Caller: caller, Fingerprint: fp}
}

// Transferred builds a ClaimTransferred event.
func Transferred(caller domain.Identity, fp domain.Fingerprint, dest domain.Identity, at domain.LogicalTimestamp) Event {
	return Event{Type: TypeClaimTransferred, Caller: caller, Fingerprint: fp, Dest: dest, RegisteredAt: at}
}

// Sink receives claim lifecycle events. Implementations must not fail the
// originating call: the store mutation has already committed when Emit runs,
// so sinks buffer or log delivery problems instead of returning them upstream.
type Sink interface {
	Emit(ctx context.Context, ev Event) error
}

// Recorder is the test harness sink: it records every emission so tests can
// assert events without coupling to a notification transport.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ Sink = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev.EmittedAt.IsZero() {
		ev.EmittedAt = time.Now()
	}
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of everything emitted so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event{}, r.events...)
}

// Reset clears recorded events between test cases.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// LogSink writes events to structured logs. Default sink when no broker is
// configured.
type LogSink struct {
	logger *slog.Logger
}

var _ Sink = (*LogSink)(nil)

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, ev Event) error {
	s.logger.InfoContext(ctx, "claim event",
		"type", string(ev.Type),
		"caller", ev.Caller.String(),
		"fingerprint", ev.Fingerprint.String(),
		"dest", ev.Dest.String(),
		"registered_at", uint64(ev.RegisteredAt),
	)
	return nil
}
