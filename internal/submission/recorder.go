// Package submission records accepted registrations.
//
// Nothing is persisted. A Recorder gives each accepted record an ID, writes
// a log line, publishes it to in-process subscribers and wraps the work in a
// trace span.
package submission

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/pubsub"
	"github.com/zjrosen/regform/internal/registration"
	"github.com/zjrosen/regform/internal/tracing"
)

// Submission is an accepted record with its assigned identity.
type Submission struct {
	ID          string              `json:"id"`
	SubmittedAt time.Time           `json:"submittedAt"`
	Record      registration.Record `json:"record"`
}

// Recorder implements form.Sink.
type Recorder struct {
	broker *pubsub.Broker[Submission]
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithTracer sets the tracer used for submission spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Recorder) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithIDGenerator overrides submission ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(r *Recorder) { r.newID = fn }
}

// NewRecorder creates a recorder with its own broker.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		broker: pubsub.NewBroker[Submission](),
		tracer: noop.NewTracerProvider().Tracer(tracing.ServiceName),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Accept records r. It never fails once ctx is live; a cancelled context
// is reported so callers can tell the record was dropped.
func (rec *Recorder) Accept(ctx context.Context, r registration.Record) error {
	_, span := rec.tracer.Start(ctx, tracing.SpanSubmit,
		trace.WithAttributes(
			attribute.String(tracing.AttrCourse, r.Course),
			attribute.String(tracing.AttrState, r.State),
			attribute.String(tracing.AttrEducation, r.PreviousEducation),
			attribute.Bool(tracing.AttrHostel, r.InterestedInHostel),
		))
	defer span.End()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "context done")
		return err
	}

	sub := Submission{ID: rec.newID(), SubmittedAt: rec.now(), Record: r}
	span.SetAttributes(attribute.String(tracing.AttrSubmissionID, sub.ID))

	log.Info(log.CatSubmit, "Registration submitted",
		"id", sub.ID,
		"name", r.Name,
		"email", r.Email,
		"course", r.Course,
		"state", r.State,
		"hostel", r.InterestedInHostel)

	subscribers := rec.broker.SubscriberCount()
	rec.broker.Publish(pubsub.SubmittedEvent, sub)
	span.AddEvent(tracing.EventPublished, trace.WithAttributes(attribute.Int(tracing.AttrSubscribers, subscribers)))
	span.SetStatus(codes.Ok, "")
	return nil
}

// Subscribe returns a channel of submissions; see pubsub.Broker.Subscribe.
func (rec *Recorder) Subscribe(ctx context.Context) <-chan pubsub.Event[Submission] {
	return rec.broker.Subscribe(ctx)
}

// Close closes every subscription.
func (rec *Recorder) Close() {
	rec.broker.Close()
}
