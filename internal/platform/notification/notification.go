// Package notification provides the user-facing message sink consumed by the
// domain stores. Every mutation surfaces a success, error, or info message;
// the server renders them into structured logs, and tests use the Recorder
// double to assert on what was surfaced.
package notification

import (
	"sync"

	"github.com/rs/zerolog"
)

// Notifier is the sink for user-visible messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// ---------------------------------------------------------------------------
// Log-backed implementation
// ---------------------------------------------------------------------------

// LogNotifier renders notifications as structured log events.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier returns a Notifier backed by the given logger.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(msg string) {
	n.logger.Info().Str("kind", "success").Msg(msg)
}

func (n *LogNotifier) Error(msg string) {
	n.logger.Warn().Str("kind", "error").Msg(msg)
}

func (n *LogNotifier) Info(msg string) {
	n.logger.Info().Str("kind", "info").Msg(msg)
}

// ---------------------------------------------------------------------------
// Recorder (test double)
// ---------------------------------------------------------------------------

// Event is a single recorded notification.
type Event struct {
	Kind    string // "success", "error", or "info"
	Message string
}

// Recorder is a test double that records every notification.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Success(msg string) { r.record("success", msg) }
func (r *Recorder) Error(msg string)   { r.record("error", msg) }
func (r *Recorder) Info(msg string)    { r.record("info", msg) }

func (r *Recorder) record(kind, msg string) {
	r.mu.Lock()
	r.events = append(r.events, Event{Kind: kind, Message: msg})
	r.mu.Unlock()
}

// Events returns a copy of recorded notifications in order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Last returns the most recent notification, or a zero Event.
func (r *Recorder) Last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}
	}
	return r.events[len(r.events)-1]
}

// Reset discards all recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
