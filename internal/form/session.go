package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/registration"
)

// ErrClosed is returned by Session operations after Close, and reported
// when a reset fires on a torn-down session.
var ErrClosed = errors.New("form session closed")

// Sink receives accepted records.
type Sink interface {
	Accept(ctx context.Context, r registration.Record) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, r registration.Record) error

// Accept calls f.
func (f SinkFunc) Accept(ctx context.Context, r registration.Record) error { return f(ctx, r) }

// Session is a goroutine-safe form that owns its deferred reset.
// Front ends without their own event loop (the prompt and batch commands)
// drive the form through a Session.
type Session struct {
	mu        sync.Mutex
	state     State
	sink      Sink
	delay     time.Duration
	scheduler Scheduler
	onReset   func()
	onError   func(error)

	cancelReset CancelFunc
	generation  uint64
	closed      bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSink sets where accepted records are emitted.
func WithSink(s Sink) SessionOption {
	return func(sess *Session) { sess.sink = s }
}

// WithResetDelay sets the delay between acceptance and reset.
func WithResetDelay(d time.Duration) SessionOption {
	return func(sess *Session) {
		if d > 0 {
			sess.delay = d
		}
	}
}

// WithScheduler replaces the timer used for the reset.
func WithScheduler(s Scheduler) SessionOption {
	return func(sess *Session) {
		if s != nil {
			sess.scheduler = s
		}
	}
}

// WithSessionValidator replaces the field validator.
func WithSessionValidator(fn registration.ValidateFunc) SessionOption {
	return func(sess *Session) { sess.state = New(WithValidator(fn)) }
}

// WithOnReset registers a callback run after each reset, outside the lock.
func WithOnReset(fn func()) SessionOption {
	return func(sess *Session) { sess.onReset = fn }
}

// WithErrorHandler receives sink failures and resets that fire after Close.
func WithErrorHandler(fn func(error)) SessionOption {
	return func(sess *Session) { sess.onError = fn }
}

// NewSession creates an empty session.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		state:     New(),
		delay:     DefaultResetDelay,
		scheduler: TimerScheduler{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetField updates a value; see State.SetField.
func (s *Session) SetField(f registration.Field, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	next, err := s.state.SetField(f, value)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// Touch marks f touched and returns its visible error, if any.
func (s *Session) Touch(f registration.Field) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	s.state = s.state.SetTouched(f)
	return s.state.VisibleError(f), nil
}

// Submit runs the submission controller. An accepted record is emitted to
// the sink and a reset is scheduled after the configured delay.
func (s *Session) Submit(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Outcome{}, ErrClosed
	}
	next, out := s.state.Submit()
	s.state = next
	if out.Accepted {
		s.scheduleResetLocked()
	}
	sink, onError := s.sink, s.onError
	s.mu.Unlock()

	switch {
	case out.Ignored:
		log.Debug(log.CatForm, "Submit ignored while awaiting reset")
	case out.Accepted:
		log.Info(log.CatForm, "Submission accepted", "reset_in", s.delay)
		if sink != nil {
			if err := sink.Accept(ctx, out.Record); err != nil {
				log.ErrorErr(log.CatSubmit, "Sink rejected record", err)
				if onError != nil {
					onError(err)
				}
			}
		}
	default:
		log.Debug(log.CatForm, "Submission rejected", "errors", len(out.Errors), "first", out.FirstInvalid)
	}
	return out, nil
}

// Close cancels any pending reset. The session rejects further use.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cancelReset != nil {
		s.cancelReset()
		s.cancelReset = nil
	}
	return nil
}

func (s *Session) scheduleResetLocked() {
	if s.cancelReset != nil {
		s.cancelReset()
	}
	s.generation++
	gen := s.generation
	s.cancelReset = s.scheduler.AfterFunc(s.delay, func() { s.reset(gen) })
}

// reset runs on the scheduler's goroutine.
func (s *Session) reset(gen uint64) {
	s.mu.Lock()
	if s.closed {
		onError := s.onError
		s.mu.Unlock()
		log.ErrorErr(log.CatForm, "Reset fired after teardown", ErrClosed)
		if onError != nil {
			onError(ErrClosed)
		}
		return
	}
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.state = s.state.Reset()
	s.cancelReset = nil
	onReset := s.onReset
	s.mu.Unlock()

	log.Debug(log.CatForm, "Form reset")
	if onReset != nil {
		onReset()
	}
}
