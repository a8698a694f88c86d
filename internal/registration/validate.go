package registration

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ValidateFunc maps a field and its raw value to an error message.
// An empty string means the value is acceptable.
type ValidateFunc func(f Field, value any) string

const (
	minAge = 16
	maxAge = 100
)

var (
	lettersPattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^[0-9]{10}$`)
	zipPattern     = regexp.MustCompile(`^[0-9]{6}$`)
)

// TermsMessage is reported when the terms checkbox is not ticked.
const TermsMessage = "You must accept the terms and conditions"

// ValidateField checks a single field value and returns a human readable
// message, or "" when valid. It has no side effects.
//
// Values of the wrong type are treated as the zero value for the field.
// Address and hostel interest are never validated.
func ValidateField(f Field, value any) string {
	if f == FieldTermsAccepted {
		if b, _ := value.(bool); !b {
			return TermsMessage
		}
		return ""
	}

	s, _ := value.(string)
	switch f {
	case FieldName:
		return validatePersonName(s, "Name")
	case FieldGuardianName:
		return validatePersonName(s, "Guardian name")

	case FieldEmail:
		if s == "" {
			return "Email is required"
		}
		if !emailPattern.MatchString(s) {
			return "Invalid email format"
		}

	case FieldAge:
		return validateAge(s)

	case FieldPhone:
		return validatePhone(s, "Phone number is required")
	case FieldGuardianPhone:
		return validatePhone(s, "Guardian phone is required")

	case FieldGender:
		if s == "" {
			return "Please select gender"
		}
	case FieldCourse:
		if s == "" {
			return "Please select a course"
		}
	case FieldState:
		if s == "" {
			return "Please select a state"
		}
	case FieldPreviousEducation:
		if s == "" {
			return "Please select previous education"
		}

	case FieldCity:
		if strings.TrimSpace(s) == "" {
			return "City is required"
		}

	case FieldZipCode:
		if s == "" {
			return "ZIP code is required"
		}
		if !zipPattern.MatchString(s) {
			return "ZIP code must be 6 digits"
		}
	}
	return ""
}

// ValidateAll runs fn over every validated field of r and returns the
// messages keyed by field. The map is empty when r is acceptable.
func ValidateAll(r Record, fn ValidateFunc) map[Field]string {
	if fn == nil {
		fn = ValidateField
	}
	errs := make(map[Field]string)
	for _, f := range fields {
		if !f.Validated() {
			continue
		}
		if msg := fn(f, r.Value(f)); msg != "" {
			errs[f] = msg
		}
	}
	return errs
}

// FirstInvalid returns the earliest field in declaration order that has an
// entry in errs.
func FirstInvalid(errs map[Field]string) (Field, bool) {
	for _, f := range fields {
		if _, ok := errs[f]; ok {
			return f, true
		}
	}
	return "", false
}

func validatePersonName(s, subject string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return subject + " is required"
	}
	if len([]rune(trimmed)) < 2 {
		return subject + " must be at least 2 characters"
	}
	if !lettersPattern.MatchString(s) {
		return "Name should only contain letters"
	}
	return ""
}

func validateAge(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "Age is required"
	}
	age, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(age) || math.IsInf(age, 0) {
		return "Age must be a number"
	}
	if age < minAge {
		return "Minimum age is 16"
	}
	if age > maxAge {
		return "Please enter a valid age"
	}
	return ""
}

func validatePhone(s, required string) string {
	if s == "" {
		return required
	}
	if !phonePattern.MatchString(s) {
		return "Phone must be exactly 10 digits"
	}
	return ""
}
