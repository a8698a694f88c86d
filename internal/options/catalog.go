// Package options provides the option lists behind the form's select fields.
//
// A built-in catalog is embedded in the binary. Users can override it with a
// YAML file of the same shape; the file is validated before use so a broken
// edit never empties a picker.
package options

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/regform/internal/registration"
)

//go:embed options.yaml
var defaultCatalog []byte

// ErrEmptyCatalog is returned when a catalog file leaves a select field
// without options.
var ErrEmptyCatalog = errors.New("option catalog has an empty list")

// Option is one entry of a select field.
type Option struct {
	Value string `yaml:"value" json:"value" validate:"required"`
	Label string `yaml:"label" json:"label" validate:"required"`
}

// Catalog holds the option lists for every select field.
type Catalog struct {
	Genders   []Option `yaml:"genders" json:"genders" validate:"required,min=1,unique=Value,dive"`
	Courses   []Option `yaml:"courses" json:"courses" validate:"required,min=1,unique=Value,dive"`
	States    []Option `yaml:"states" json:"states" validate:"required,min=1,unique=Value,dive"`
	Education []Option `yaml:"education" json:"education" validate:"required,min=1,unique=Value,dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the embedded catalog.
func Default() Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded option catalog: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file. An empty path returns Default.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("loading options: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("loading options %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks that every list is present, non-empty and free of
// duplicate values.
func (c Catalog) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	empty := false
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
		if fe.Tag() == "required" || fe.Tag() == "min" {
			empty = empty || !strings.Contains(fe.Namespace(), "[")
		}
	}
	joined := strings.Join(msgs, "; ")
	if empty {
		return fmt.Errorf("%w: %s", ErrEmptyCatalog, joined)
	}
	return fmt.Errorf("invalid option catalog: %s", joined)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", fe.Namespace(), fe.Param())
	case "unique":
		return fmt.Sprintf("%s has duplicate values", fe.Namespace())
	default:
		return fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
}

// Choices returns the options for a select field, or nil for other fields.
func (c Catalog) Choices(f registration.Field) []Option {
	switch f {
	case registration.FieldGender:
		return c.Genders
	case registration.FieldCourse:
		return c.Courses
	case registration.FieldState:
		return c.States
	case registration.FieldPreviousEducation:
		return c.Education
	default:
		return nil
	}
}

// Contains reports whether value is one of f's options.
func (c Catalog) Contains(f registration.Field, value string) bool {
	for _, o := range c.Choices(f) {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Label returns the display label for a selected value, or the value itself
// when it is not in the catalog.
func (c Catalog) Label(f registration.Field, value string) string {
	for _, o := range c.Choices(f) {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// Validator wraps fn so that non-empty selections outside the catalog are
// rejected. Values typed by hand (record files) go through this; pickers can
// only produce catalog values.
func (c Catalog) Validator(fn registration.ValidateFunc) registration.ValidateFunc {
	if fn == nil {
		fn = registration.ValidateField
	}
	return func(f registration.Field, value any) string {
		if msg := fn(f, value); msg != "" {
			return msg
		}
		if f.Kind() != registration.KindChoice {
			return ""
		}
		s, _ := value.(string)
		if s == "" || c.Contains(f, s) {
			return ""
		}
		return fmt.Sprintf("Unknown %s %q", strings.ToLower(f.Label()), s)
	}
}
