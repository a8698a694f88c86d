package form

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/regform/internal/registration"
)

// manualScheduler records scheduled tasks so tests decide when they run.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &manualTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, task)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		stopped := !task.cancelled
		task.cancelled = true
		return stopped
	}
}

// fire runs the most recent task, cancelled or not, the way a timer that
// already fired races with Stop.
func (s *manualScheduler) fire() {
	s.mu.Lock()
	task := s.tasks[len(s.tasks)-1]
	s.mu.Unlock()
	task.fn()
}

func (s *manualScheduler) last() *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return nil
	}
	return s.tasks[len(s.tasks)-1]
}

type recordingSink struct {
	mu      sync.Mutex
	records []registration.Record
	err     error
}

func (r *recordingSink) Accept(_ context.Context, rec registration.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return r.err
}

func fillSession(t *testing.T, s *Session, r registration.Record) {
	t.Helper()
	for _, f := range registration.Fields() {
		require.NoError(t, s.SetField(f, r.Value(f)))
	}
}

func TestSession_AcceptEmitsAndSchedulesReset(t *testing.T) {
	sched := &manualScheduler{}
	sink := &recordingSink{}
	resets := 0
	s := NewSession(WithScheduler(sched), WithSink(sink), WithOnReset(func() { resets++ }))
	defer func() { _ = s.Close() }()

	fillSession(t, s, validRecord())
	out, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, out.Accepted)
	require.Equal(t, []registration.Record{validRecord()}, sink.records)
	require.True(t, s.Snapshot().Submitted())

	task := sched.last()
	require.NotNil(t, task)
	require.Equal(t, DefaultResetDelay, task.delay)

	sched.fire()
	snap := s.Snapshot()
	require.False(t, snap.Submitted())
	require.Equal(t, registration.Record{}, snap.Values())
	require.Empty(t, snap.TouchedFields())
	require.Empty(t, snap.Errors())
	require.Equal(t, 1, resets)
}

func TestSession_RejectDoesNotSchedule(t *testing.T) {
	sched := &manualScheduler{}
	sink := &recordingSink{}
	s := NewSession(WithScheduler(sched), WithSink(sink))

	r := validRecord()
	r.TermsAccepted = false
	fillSession(t, s, r)

	out, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.False(t, out.Accepted)
	require.Equal(t, registration.FieldTermsAccepted, out.FirstInvalid)
	require.Nil(t, sched.last())
	require.Empty(t, sink.records)
	require.False(t, s.Snapshot().Submitted())
}

func TestSession_CloseCancelsReset(t *testing.T) {
	sched := &manualScheduler{}
	var reported []error
	s := NewSession(WithScheduler(sched), WithErrorHandler(func(err error) { reported = append(reported, err) }))

	fillSession(t, s, validRecord())
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.True(t, sched.last().cancelled)

	// A timer that fired anyway must not touch the torn-down state.
	sched.fire()
	require.True(t, s.Snapshot().Submitted())
	require.Len(t, reported, 1)
	require.True(t, errors.Is(reported[0], ErrClosed))
}

func TestSession_ClosedRejectsUse(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	require.ErrorIs(t, s.SetField(registration.FieldName, "Asha"), ErrClosed)
	_, err := s.Touch(registration.FieldName)
	require.ErrorIs(t, err, ErrClosed)
	_, err = s.Submit(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}

func TestSession_TouchReturnsVisibleError(t *testing.T) {
	s := NewSession()
	msg, err := s.Touch(registration.FieldAge)
	require.NoError(t, err)
	require.Equal(t, "Age is required", msg)

	require.NoError(t, s.SetField(registration.FieldAge, "42"))
	msg, err = s.Touch(registration.FieldAge)
	require.NoError(t, err)
	require.Empty(t, msg)
}

func TestSession_SinkErrorDoesNotUndoAcceptance(t *testing.T) {
	sched := &manualScheduler{}
	boom := errors.New("collector offline")
	var reported error
	s := NewSession(
		WithScheduler(sched),
		WithSink(&recordingSink{err: boom}),
		WithErrorHandler(func(err error) { reported = err }),
	)

	fillSession(t, s, validRecord())
	out, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, out.Accepted)
	require.ErrorIs(t, reported, boom)
	require.True(t, s.Snapshot().Submitted())
}

func TestSession_SubmitWhileSubmittedIgnored(t *testing.T) {
	sched := &manualScheduler{}
	sink := &recordingSink{}
	s := NewSession(WithScheduler(sched), WithSink(sink))

	fillSession(t, s, validRecord())
	_, _ = s.Submit(context.Background())
	out, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, out.Ignored)
	require.Len(t, sink.records, 1)
	require.Len(t, sched.tasks, 1)
}

func TestSession_CustomDelayAndValidator(t *testing.T) {
	sched := &manualScheduler{}
	s := NewSession(
		WithScheduler(sched),
		WithResetDelay(50*time.Millisecond),
		WithSessionValidator(func(registration.Field, any) string { return "" }),
	)

	_, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, 50*time.Millisecond, sched.last().delay)
}

func TestSession_RealTimerResets(t *testing.T) {
	done := make(chan struct{})
	s := NewSession(WithResetDelay(10*time.Millisecond), WithOnReset(func() { close(done) }))
	defer func() { _ = s.Close() }()

	fillSession(t, s, validRecord())
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "reset never fired")
	}
	require.False(t, s.Snapshot().Submitted())
}
