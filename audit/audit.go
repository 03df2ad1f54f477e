// Package audit records every answered question as a JSON entry. Entries go
// to one or more sinks: an append-only JSON-lines file and a NATS subject.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Entry is one answered question.
type Entry struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Time       time.Time `json:"time"`
	Question   string    `json:"question"`
	Route      string    `json:"route"`
	RawPlan    string    `json:"raw_plan,omitempty"`
	Function   string    `json:"function,omitempty"`
	Arguments  []string  `json:"arguments,omitempty"`
	Output     string    `json:"output"`
	Status     string    `json:"status"`
	DurationMs int64     `json:"duration_ms"`
}

// Sink stores entries.
type Sink interface {
	Write(ctx context.Context, e Entry) error
	Close() error
}

// Multi fans entries out to several sinks.
type Multi []Sink

// Write writes to every sink and joins the failures.
func (m Multi) Write(ctx context.Context, e Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder stamps entries with ids and a session id and writes them. A nil
// *Recorder records nothing.
type Recorder struct {
	sink      Sink
	sessionID string
	logger    *slog.Logger
	now       func() time.Time
}

// NewRecorder starts a session writing to sink.
func NewRecorder(sink Sink, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		sink:      sink,
		sessionID: uuid.New().String(),
		logger:    logger,
		now:       time.Now,
	}
}

// SessionID returns the id shared by this recorder's entries.
func (r *Recorder) SessionID() string {
	if r == nil {
		return ""
	}
	return r.sessionID
}

// Record writes e. Sink failures are logged, never returned: auditing must
// not change the answer a user sees.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.sink == nil {
		return
	}
	e.ID = uuid.New().String()
	e.SessionID = r.sessionID
	if e.Time.IsZero() {
		e.Time = r.now().UTC()
	}
	if err := r.sink.Write(ctx, e); err != nil {
		r.logger.Warn("Audit write failed", "entry_id", e.ID, "error", err)
	}
}

// Close closes the sink.
func (r *Recorder) Close() error {
	if r == nil || r.sink == nil {
		return nil
	}
	return r.sink.Close()
}
