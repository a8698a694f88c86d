// Package registration defines the student registration record and the
// per-field validation rules applied to it.
package registration

// Field names a single input of the registration form.
// The string value is the key used in record files and error maps.
type Field string

const (
	FieldName               Field = "name"
	FieldEmail              Field = "email"
	FieldAge                Field = "age"
	FieldPhone              Field = "phone"
	FieldGender             Field = "gender"
	FieldCourse             Field = "course"
	FieldAddress            Field = "address"
	FieldCity               Field = "city"
	FieldState              Field = "state"
	FieldZipCode            Field = "zipCode"
	FieldGuardianName       Field = "guardianName"
	FieldGuardianPhone      Field = "guardianPhone"
	FieldPreviousEducation  Field = "previousEducation"
	FieldInterestedInHostel Field = "interestedInHostel"
	FieldTermsAccepted      Field = "termsAccepted"
)

// Kind describes the value type a field holds.
type Kind int

const (
	// KindText holds free-form text.
	KindText Kind = iota
	// KindChoice holds a code picked from a fixed option list.
	KindChoice
	// KindFlag holds a boolean.
	KindFlag
)

// fields is the declaration order. It decides which invalid field is
// reported first.
var fields = []Field{
	FieldName,
	FieldEmail,
	FieldAge,
	FieldPhone,
	FieldGender,
	FieldCourse,
	FieldAddress,
	FieldCity,
	FieldState,
	FieldZipCode,
	FieldGuardianName,
	FieldGuardianPhone,
	FieldPreviousEducation,
	FieldInterestedInHostel,
	FieldTermsAccepted,
}

var labels = map[Field]string{
	FieldName:               "Full Name",
	FieldEmail:              "Email Address",
	FieldAge:                "Age",
	FieldPhone:              "Phone Number",
	FieldGender:             "Gender",
	FieldCourse:             "Course",
	FieldAddress:            "Address",
	FieldCity:               "City",
	FieldState:              "State",
	FieldZipCode:            "ZIP Code",
	FieldGuardianName:       "Guardian Name",
	FieldGuardianPhone:      "Guardian Phone",
	FieldPreviousEducation:  "Previous Education",
	FieldInterestedInHostel: "Interested in Hostel",
	FieldTermsAccepted:      "Terms and Conditions",
}

// Fields returns every field in declaration order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// ParseField returns the Field for a key such as "zipCode".
func ParseField(key string) (Field, bool) {
	f := Field(key)
	return f, f.Valid()
}

// Valid reports whether f is one of the declared fields.
func (f Field) Valid() bool {
	_, ok := labels[f]
	return ok
}

// Label is the human readable name shown next to the input.
func (f Field) Label() string {
	if l, ok := labels[f]; ok {
		return l
	}
	return string(f)
}

// Kind returns the value type of the field.
func (f Field) Kind() Kind {
	switch f {
	case FieldGender, FieldCourse, FieldState, FieldPreviousEducation:
		return KindChoice
	case FieldInterestedInHostel, FieldTermsAccepted:
		return KindFlag
	default:
		return KindText
	}
}

// Validated reports whether submission checks this field.
// Address and hostel interest are optional and never checked.
func (f Field) Validated() bool {
	return f.Valid() && f != FieldAddress && f != FieldInterestedInHostel
}

// Index returns the declaration position of f, or -1.
func (f Field) Index() int {
	for i, candidate := range fields {
		if candidate == f {
			return i
		}
	}
	return -1
}
