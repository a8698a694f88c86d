package registration

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned when a key does not name a form field.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidValue is returned when a value has the wrong type for its field.
	ErrInvalidValue = errors.New("invalid value")
)

// Record is the complete set of collected student fields.
type Record struct {
	Name               string `yaml:"name" json:"name"`
	Email              string `yaml:"email" json:"email"`
	Age                string `yaml:"age" json:"age"`
	Phone              string `yaml:"phone" json:"phone"`
	Gender             string `yaml:"gender" json:"gender"`
	Course             string `yaml:"course" json:"course"`
	Address            string `yaml:"address" json:"address"`
	City               string `yaml:"city" json:"city"`
	State              string `yaml:"state" json:"state"`
	ZipCode            string `yaml:"zipCode" json:"zipCode"`
	GuardianName       string `yaml:"guardianName" json:"guardianName"`
	GuardianPhone      string `yaml:"guardianPhone" json:"guardianPhone"`
	PreviousEducation  string `yaml:"previousEducation" json:"previousEducation"`
	InterestedInHostel bool   `yaml:"interestedInHostel" json:"interestedInHostel"`
	TermsAccepted      bool   `yaml:"termsAccepted" json:"termsAccepted"`
}

// Value returns the current value of f: a string for text and choice
// fields, a bool for flags, nil for unknown fields.
func (r Record) Value(f Field) any {
	switch f {
	case FieldInterestedInHostel:
		return r.InterestedInHostel
	case FieldTermsAccepted:
		return r.TermsAccepted
	}
	if p := r.text(f); p != nil {
		return *p
	}
	return nil
}

// Text returns the string value of f, or "" for flags and unknown fields.
func (r Record) Text(f Field) string {
	if p := r.text(f); p != nil {
		return *p
	}
	return ""
}

// With returns a copy of r with f set to v.
func (r Record) With(f Field, v any) (Record, error) {
	if !f.Valid() {
		return r, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	if f.Kind() == KindFlag {
		b, ok := v.(bool)
		if !ok {
			return r, fmt.Errorf("%w: %s expects a bool, got %T", ErrInvalidValue, f, v)
		}
		if f == FieldTermsAccepted {
			r.TermsAccepted = b
		} else {
			r.InterestedInHostel = b
		}
		return r, nil
	}
	s, ok := v.(string)
	if !ok {
		return r, fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidValue, f, v)
	}
	*r.text(f) = s
	return r, nil
}

// text returns a pointer to the string backing f within r.
func (r *Record) text(f Field) *string {
	switch f {
	case FieldName:
		return &r.Name
	case FieldEmail:
		return &r.Email
	case FieldAge:
		return &r.Age
	case FieldPhone:
		return &r.Phone
	case FieldGender:
		return &r.Gender
	case FieldCourse:
		return &r.Course
	case FieldAddress:
		return &r.Address
	case FieldCity:
		return &r.City
	case FieldState:
		return &r.State
	case FieldZipCode:
		return &r.ZipCode
	case FieldGuardianName:
		return &r.GuardianName
	case FieldGuardianPhone:
		return &r.GuardianPhone
	case FieldPreviousEducation:
		return &r.PreviousEducation
	}
	return nil
}
