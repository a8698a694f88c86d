package options

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/regform/internal/registration"
)

func TestDefault(t *testing.T) {
	c := Default()

	require.Len(t, c.Genders, 3)
	require.Len(t, c.Courses, 6)
	require.Len(t, c.Education, 5)
	require.Len(t, c.States, 28)

	require.Equal(t, Option{Value: "cs", Label: "Computer Science"}, c.Courses[0])
	require.Equal(t, Option{Value: "ec", Label: "Electronics & Communication"}, c.Courses[5])
	require.Equal(t, Option{Value: "10th", Label: "10th Standard"}, c.Education[0])
	require.Equal(t, "Andhra Pradesh", c.States[0].Value)
	require.Equal(t, "West Bengal", c.States[27].Value)
}

func TestChoices(t *testing.T) {
	c := Default()
	require.Equal(t, c.Genders, c.Choices(registration.FieldGender))
	require.Equal(t, c.Courses, c.Choices(registration.FieldCourse))
	require.Equal(t, c.States, c.Choices(registration.FieldState))
	require.Equal(t, c.Education, c.Choices(registration.FieldPreviousEducation))
	require.Nil(t, c.Choices(registration.FieldCity))
}

func TestLabel(t *testing.T) {
	c := Default()
	require.Equal(t, "Mechanical Engineering", c.Label(registration.FieldCourse, "me"))
	require.Equal(t, "zz", c.Label(registration.FieldCourse, "zz"))
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
genders: [{value: x, label: X}]
courses: [{value: bio, label: Biology}]
states: [{value: Goa, label: Goa}]
education: [{value: phd, label: Doctorate}]
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []Option{{Value: "bio", Label: "Biology"}}, c.Courses)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
	require.Contains(t, err.Error(), "loading options")
}

func TestParse_EmptyList(t *testing.T) {
	_, err := Parse([]byte(`
genders: [{value: x, label: X}]
courses: []
states: [{value: Goa, label: Goa}]
education: [{value: phd, label: Doctorate}]
`))
	require.ErrorIs(t, err, ErrEmptyCatalog)
	require.Contains(t, err.Error(), "Courses")
}

func TestParse_MissingList(t *testing.T) {
	_, err := Parse([]byte(`genders: [{value: x, label: X}]`))
	require.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestParse_DuplicateValues(t *testing.T) {
	_, err := Parse([]byte(`
genders: [{value: x, label: X}, {value: x, label: Y}]
courses: [{value: bio, label: Biology}]
states: [{value: Goa, label: Goa}]
education: [{value: phd, label: Doctorate}]
`))
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrEmptyCatalog))
	require.Contains(t, err.Error(), "duplicate")
}

func TestParse_BlankLabel(t *testing.T) {
	_, err := Parse([]byte(`
genders: [{value: x}]
courses: [{value: bio, label: Biology}]
states: [{value: Goa, label: Goa}]
education: [{value: phd, label: Doctorate}]
`))
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrEmptyCatalog))
	require.Contains(t, err.Error(), "Label")
}

func TestParse_BadYAML(t *testing.T) {
	_, err := Parse([]byte("genders: [unterminated"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing catalog")
}

func TestValidator(t *testing.T) {
	fn := Default().Validator(nil)

	tests := []struct {
		name  string
		field registration.Field
		value any
		want  string
	}{
		{"known course", registration.FieldCourse, "cs", ""},
		{"unknown course", registration.FieldCourse, "xx", `Unknown course "xx"`},
		{"unknown education", registration.FieldPreviousEducation, "phd", `Unknown previous education "phd"`},
		{"unknown state", registration.FieldState, "Atlantis", `Unknown state "Atlantis"`},
		{"empty keeps base message", registration.FieldGender, "", "Please select gender"},
		{"text fields untouched", registration.FieldCity, "Pune", ""},
		{"base errors win", registration.FieldAge, "9", "Minimum age is 16"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, fn(tt.field, tt.value))
		})
	}
}

func TestValidator_WrapsCustomFunc(t *testing.T) {
	fn := Default().Validator(func(registration.Field, any) string { return "" })
	require.Empty(t, fn(registration.FieldCourse, ""))
	require.Equal(t, `Unknown gender "robot"`, fn(registration.FieldGender, "robot"))
}
