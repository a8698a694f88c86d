package regform

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/zjrosen/regform/internal/options"
	"github.com/zjrosen/regform/internal/registration"
)

// section groups fields under one bordered box.
type section struct {
	title  string
	fields []registration.Field
}

// sections is the display order. It differs from declaration order, which
// only decides the first invalid field.
var sections = []section{
	{"Personal Information", []registration.Field{
		registration.FieldName,
		registration.FieldEmail,
		registration.FieldAge,
		registration.FieldPhone,
		registration.FieldGender,
	}},
	{"Address Details", []registration.Field{
		registration.FieldAddress,
		registration.FieldCity,
		registration.FieldState,
		registration.FieldZipCode,
	}},
	{"Guardian Information", []registration.Field{
		registration.FieldGuardianName,
		registration.FieldGuardianPhone,
	}},
	{"Academic Information", []registration.Field{
		registration.FieldPreviousEducation,
		registration.FieldCourse,
		registration.FieldInterestedInHostel,
	}},
	{"Terms and Conditions", []registration.Field{
		registration.FieldTermsAccepted,
	}},
}

var placeholders = map[registration.Field]string{
	registration.FieldName:              "Enter full name",
	registration.FieldEmail:             "email@example.com",
	registration.FieldAge:               "Enter age",
	registration.FieldPhone:             "10-digit mobile number",
	registration.FieldAddress:           "House number, street name",
	registration.FieldCity:              "Enter city",
	registration.FieldZipCode:           "6-digit PIN",
	registration.FieldGuardianName:      "Parent/Guardian name",
	registration.FieldGuardianPhone:     "10-digit number",
	registration.FieldGender:            "Select gender",
	registration.FieldCourse:            "Select course",
	registration.FieldState:             "Select state",
	registration.FieldPreviousEducation: "Select qualification",
}

var charLimits = map[registration.Field]int{
	registration.FieldAge:           3,
	registration.FieldPhone:         10,
	registration.FieldGuardianPhone: 10,
	registration.FieldZipCode:       6,
}

var flagLabels = map[registration.Field]string{
	registration.FieldInterestedInHostel: "Interested in hostel accommodation",
	registration.FieldTermsAccepted:      "I accept the terms and conditions",
}

// maxVisibleOptions bounds the height of an open option list.
const maxVisibleOptions = 6

// fieldState holds the widget state of one field.
type fieldState struct {
	field registration.Field
	kind  registration.Kind

	// Text
	input textinput.Model

	// Choice
	options  []options.Option
	cursor   int
	offset   int
	selected string

	// Flag
	checked bool
}

func newFieldState(f registration.Field, catalog options.Catalog, width int) fieldState {
	fs := fieldState{field: f, kind: f.Kind()}
	switch fs.kind {
	case registration.KindText:
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[f]
		if limit, ok := charLimits[f]; ok {
			ti.CharLimit = limit
		}
		ti.Width = max(width, 10)
		fs.input = ti
	case registration.KindChoice:
		fs.options = catalog.Choices(f)
	}
	return fs
}

// buildFields creates widgets for every field in display order.
func buildFields(catalog options.Catalog, width int) []fieldState {
	var out []fieldState
	for _, s := range sections {
		for _, f := range s.fields {
			out = append(out, newFieldState(f, catalog, width))
		}
	}
	return out
}

func (fs *fieldState) focus() {
	if fs.kind == registration.KindText {
		fs.input.Focus()
	}
	if fs.kind == registration.KindChoice {
		// Open the list on the current selection.
		if i := fs.indexOf(fs.selected); i >= 0 {
			fs.cursor = i
		}
		fs.clampOffset()
	}
}

func (fs *fieldState) blur() {
	if fs.kind == registration.KindText {
		fs.input.Blur()
	}
}

func (fs *fieldState) clear() {
	fs.input.SetValue("")
	fs.selected = ""
	fs.cursor = 0
	fs.offset = 0
	fs.checked = false
}

func (fs *fieldState) indexOf(value string) int {
	for i, o := range fs.options {
		if o.Value == value {
			return i
		}
	}
	return -1
}

func (fs *fieldState) moveCursor(delta int) {
	if len(fs.options) == 0 {
		return
	}
	fs.cursor = (fs.cursor + delta + len(fs.options)) % len(fs.options)
	fs.clampOffset()
}

// clampOffset keeps the cursor inside the visible option window.
func (fs *fieldState) clampOffset() {
	if fs.cursor < fs.offset {
		fs.offset = fs.cursor
	}
	if fs.cursor >= fs.offset+maxVisibleOptions {
		fs.offset = fs.cursor - maxVisibleOptions + 1
	}
	fs.offset = max(0, min(fs.offset, len(fs.options)-maxVisibleOptions))
}

// setOptions replaces the option list. A selection that no longer exists
// is dropped and reported.
func (fs *fieldState) setOptions(opts []options.Option) (dropped bool) {
	fs.options = opts
	if fs.selected != "" && fs.indexOf(fs.selected) < 0 {
		fs.selected = ""
		dropped = true
	}
	fs.cursor = max(0, fs.indexOf(fs.selected))
	fs.offset = 0
	fs.clampOffset()
	return dropped
}

// value returns the widget value in the type the form state expects.
func (fs *fieldState) value() any {
	switch fs.kind {
	case registration.KindChoice:
		return fs.selected
	case registration.KindFlag:
		return fs.checked
	default:
		return fs.input.Value()
	}
}
