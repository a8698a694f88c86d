// Package form holds the registration form state machine.
//
// State is an immutable value: every transition (SetField, SetTouched,
// Submit, Reset) returns a new State and never shares maps with the
// receiver. Front ends feed user events into these transitions and own
// the deferred reset that follows an accepted submission.
//
//	s := form.New()
//	s, _ = s.SetField(registration.FieldName, "Asha")
//	s = s.SetTouched(registration.FieldName)
//	s, out := s.Submit()
//	if out.Accepted {
//	    // emit out.Record, then call s.Reset() after the delay
//	}
package form

import (
	"github.com/zjrosen/regform/internal/registration"
)

// Phase is the state machine position of a form.
type Phase int

const (
	// PhaseEditing accepts edits and submit attempts.
	PhaseEditing Phase = iota
	// PhaseSubmitted is entered after an accepted submit and left by Reset.
	PhaseSubmitted
)

func (p Phase) String() string {
	if p == PhaseSubmitted {
		return "submitted"
	}
	return "editing"
}

// State is the complete form state: values, touched fields, per-field
// errors and the submitted flag.
type State struct {
	values    registration.Record
	touched   map[registration.Field]bool
	errors    map[registration.Field]string
	submitted bool
	validate  registration.ValidateFunc
}

// Option configures a new State.
type Option func(*State)

// WithValidator replaces the field validator. A nil fn keeps the default.
func WithValidator(fn registration.ValidateFunc) Option {
	return func(s *State) {
		if fn != nil {
			s.validate = fn
		}
	}
}

// New returns an empty form in the editing phase.
func New(opts ...Option) State {
	s := State{validate: registration.ValidateField}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Outcome describes the result of a submit attempt.
type Outcome struct {
	// Accepted is true when every validated field passed.
	Accepted bool
	// Ignored is true when the form was already submitted and awaiting reset.
	Ignored bool
	// Record is the submitted record when Accepted.
	Record registration.Record
	// Errors holds the per-field messages of a rejected attempt.
	Errors map[registration.Field]string
	// FirstInvalid is the earliest field in declaration order with an error.
	FirstInvalid registration.Field
}

// Values returns the current field values.
func (s State) Values() registration.Record { return s.values }

// Value returns the current value of f.
func (s State) Value(f registration.Field) any { return s.values.Value(f) }

// Submitted reports whether the last submit was accepted and the reset has
// not happened yet.
func (s State) Submitted() bool { return s.submitted }

// Phase returns the state machine position.
func (s State) Phase() Phase {
	if s.submitted {
		return PhaseSubmitted
	}
	return PhaseEditing
}

// Touched reports whether the user has interacted with f.
func (s State) Touched(f registration.Field) bool { return s.touched[f] }

// Error returns the stored error for f, touched or not.
func (s State) Error(f registration.Field) string { return s.errors[f] }

// VisibleError returns the error to display next to f: only touched fields
// show their errors.
func (s State) VisibleError(f registration.Field) string {
	if !s.touched[f] {
		return ""
	}
	return s.errors[f]
}

// Errors returns a copy of the error map.
func (s State) Errors() map[registration.Field]string {
	return cloneErrors(s.errors)
}

// TouchedFields returns the touched fields in declaration order.
func (s State) TouchedFields() []registration.Field {
	var out []registration.Field
	for _, f := range registration.Fields() {
		if s.touched[f] {
			out = append(out, f)
		}
	}
	return out
}

// SetField stores a new value for f. An existing error on f is cleared
// without re-validating; validation happens on blur and on submit.
func (s State) SetField(f registration.Field, value any) (State, error) {
	values, err := s.values.With(f, value)
	if err != nil {
		return s, err
	}
	next := s.clone()
	next.values = values
	if _, ok := next.errors[f]; ok {
		delete(next.errors, f)
	}
	return next, nil
}

// SetTouched marks f as touched and re-validates it, storing the result.
// Fields that are never validated are only marked.
func (s State) SetTouched(f registration.Field) State {
	if !f.Valid() {
		return s
	}
	next := s.clone()
	next.touched[f] = true
	if !f.Validated() {
		return next
	}
	if msg := next.validate(f, next.values.Value(f)); msg != "" {
		next.errors[f] = msg
	} else {
		delete(next.errors, f)
	}
	return next
}

// Submit marks every field touched and validates the whole record.
// An accepted record moves the form to PhaseSubmitted; a rejected one keeps
// it editing with the errors stored. Attempts while submitted are ignored.
func (s State) Submit() (State, Outcome) {
	if s.submitted {
		return s, Outcome{Ignored: true}
	}

	next := s.clone()
	for _, f := range registration.Fields() {
		next.touched[f] = true
	}
	next.errors = registration.ValidateAll(next.values, next.validate)

	if len(next.errors) == 0 {
		next.submitted = true
		return next, Outcome{Accepted: true, Record: next.values}
	}

	first, _ := registration.FirstInvalid(next.errors)
	return next, Outcome{
		Errors:       cloneErrors(next.errors),
		FirstInvalid: first,
	}
}

// Reset returns the form to its initial empty state, keeping the validator.
func (s State) Reset() State {
	return State{validate: s.validator()}
}

func (s State) validator() registration.ValidateFunc {
	if s.validate == nil {
		return registration.ValidateField
	}
	return s.validate
}

func (s State) clone() State {
	next := s
	next.validate = s.validator()
	next.touched = make(map[registration.Field]bool, len(s.touched))
	for f, v := range s.touched {
		next.touched[f] = v
	}
	next.errors = cloneErrors(s.errors)
	return next
}

func cloneErrors(src map[registration.Field]string) map[registration.Field]string {
	out := make(map[registration.Field]string, len(src))
	for f, msg := range src {
		out[f] = msg
	}
	return out
}
