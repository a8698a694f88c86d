package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/regform/internal/config"
	"github.com/zjrosen/regform/internal/form"
	"github.com/zjrosen/regform/internal/options"
	"github.com/zjrosen/regform/internal/registration"
)

const validYAML = `name: Asha Verma
email: asha@example.com
age: "19"
phone: "9876543210"
gender: female
course: cs
address: 12 MG Road
city: Pune
state: Maharashtra
zipCode: "411001"
guardianName: Ravi Verma
guardianPhone: "9123456780"
previousEducation: 12th
interestedInHostel: true
termsAccepted: true
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type sinkRecorder struct {
	mu      sync.Mutex
	records []registration.Record
}

func (s *sinkRecorder) Accept(_ context.Context, r registration.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return nil
}

func TestReadRecord_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	fromYAML, err := readRecord(writeFile(t, dir, "asha.yaml", validYAML))
	require.NoError(t, err)
	require.Equal(t, "19", fromYAML.Age)
	require.True(t, fromYAML.InterestedInHostel)

	data, err := json.Marshal(fromYAML)
	require.NoError(t, err)
	fromJSON, err := readRecord(writeFile(t, dir, "asha.json", string(data)))
	require.NoError(t, err)
	if diff := cmp.Diff(fromYAML, fromJSON); diff != "" {
		t.Fatalf("records differ (-yaml +json):\n%s", diff)
	}
}

func TestReadRecord_RejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	_, err := readRecord(writeFile(t, dir, "typo.yaml", "nmae: Asha\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "typo.yaml")

	_, err = readRecord(writeFile(t, dir, "typo.json", `{"nmae": "Asha"}`))
	require.Error(t, err)

	_, err = readRecord(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecord_EmptyFileIsEmptyRecord(t *testing.T) {
	r, err := readRecord(writeFile(t, t.TempDir(), "empty.yaml", ""))
	require.NoError(t, err)
	require.Equal(t, registration.Record{}, r)
}

func TestSubmitFiles_Text(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", validYAML)
	bad := writeFile(t, dir, "bad.yaml", strings.Replace(validYAML, `zipCode: "411001"`, `zipCode: "12"`, 1))
	unknown := writeFile(t, dir, "unknown.yaml", strings.Replace(validYAML, "course: cs", "course: astrology", 1))

	sink := &sinkRecorder{}
	var out bytes.Buffer
	err := submitFiles(context.Background(), &out, []string{good, bad, unknown}, options.Default(), sink, false)
	require.ErrorIs(t, err, errRejected)

	text := out.String()
	require.Contains(t, text, good+": accepted")
	require.Contains(t, text, bad+": rejected\n  zipCode: ZIP code must be 6 digits\n")
	require.Contains(t, text, `  course: Unknown course "astrology"`)
	require.Len(t, sink.records, 1)
	require.Equal(t, "Asha Verma", sink.records[0].Name)
}

func TestSubmitFiles_ErrorsInDeclarationOrder(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yaml", "termsAccepted: false\n")

	var out bytes.Buffer
	err := submitFiles(context.Background(), &out, []string{path}, options.Default(), nil, false)
	require.ErrorIs(t, err, errRejected)

	var fields []string
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n")[1:] {
		fields = append(fields, strings.TrimSpace(strings.SplitN(line, ":", 2)[0]))
	}
	var want []string
	for _, f := range registration.Fields() {
		if f.Validated() {
			want = append(want, string(f))
		}
	}
	require.Equal(t, want, fields)
}

func TestSubmitFiles_JSON(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", validYAML)
	missing := filepath.Join(dir, "missing.yaml")

	var out bytes.Buffer
	err := submitFiles(context.Background(), &out, []string{good, missing}, options.Default(), nil, true)
	require.ErrorIs(t, err, errRejected)

	dec := json.NewDecoder(&out)
	var first, second submitResult
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))

	require.Equal(t, submitResult{File: good, Accepted: true}, first)
	require.False(t, second.Accepted)
	require.Contains(t, second.Error, "reading record")
}

func TestSubmitFiles_AllAccepted(t *testing.T) {
	path := writeFile(t, t.TempDir(), "good.yaml", validYAML)
	var out bytes.Buffer
	require.NoError(t, submitFiles(context.Background(), &out, []string{path}, options.Default(), nil, false))
}

// scriptedAsker replays answers in order.
type scriptedAsker struct {
	answers []any
	asked   []string
}

func (a *scriptedAsker) next(message string) any {
	a.asked = append(a.asked, message)
	if len(a.answers) == 0 {
		return nil
	}
	v := a.answers[0]
	a.answers = a.answers[1:]
	return v
}

func (a *scriptedAsker) Input(message, _ string) (string, error) {
	v, _ := a.next(message).(string)
	return v, nil
}

func (a *scriptedAsker) Select(message string, _ []string) (string, error) {
	v, _ := a.next(message).(string)
	return v, nil
}

func (a *scriptedAsker) Confirm(message string) (bool, error) {
	switch v := a.next(message).(type) {
	case bool:
		return v, nil
	case error:
		return false, v
	}
	return false, nil
}

func TestRunPrompt_ReasksInvalidAnswers(t *testing.T) {
	ask := &scriptedAsker{answers: []any{
		"Asha Verma",
		"not-an-email", "asha@example.com",
		"15", "19",
		"9876543210",
		"Female",
		"Computer Science",
		"12 MG Road",
		"Pune",
		"Maharashtra",
		"411001",
		"Ravi Verma",
		"9123456780",
		"12th Standard",
		false,
		false, true,
	}}

	sink := &sinkRecorder{}
	session := form.NewSession(form.WithSink(sink), form.WithSessionValidator(options.Default().Validator(nil)))
	defer func() { _ = session.Close() }()

	var out bytes.Buffer
	require.NoError(t, runPrompt(context.Background(), &out, ask, options.Default(), session))

	require.Contains(t, out.String(), "Invalid email format")
	require.Contains(t, out.String(), "Minimum age is 16")
	require.Contains(t, out.String(), registration.TermsMessage)
	require.Contains(t, out.String(), "Registration completed successfully!")

	require.Len(t, sink.records, 1)
	got := sink.records[0]
	require.Equal(t, "female", got.Gender)
	require.Equal(t, "cs", got.Course)
	require.Equal(t, "12th", got.PreviousEducation)
	require.True(t, got.TermsAccepted)
	require.False(t, got.InterestedInHostel)
	require.Len(t, ask.asked, len(registration.Fields())+3)
}

func TestRunPrompt_AbortStops(t *testing.T) {
	ask := &scriptedAsker{answers: []any{
		"Asha Verma", "asha@example.com", "19", "9876543210", "Female", "Computer Science",
		"", "Pune", "Maharashtra", "411001", "Ravi Verma", "9123456780", "12th Standard",
		errAborted,
	}}
	session := form.NewSession()
	defer func() { _ = session.Close() }()

	err := runPrompt(context.Background(), &bytes.Buffer{}, ask, options.Default(), session)
	require.True(t, errors.Is(err, errAborted))
	require.False(t, session.Snapshot().Submitted())
}

func TestRunPrompt_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session := form.NewSession()
	defer func() { _ = session.Close() }()

	err := runPrompt(ctx, &bytes.Buffer{}, &scriptedAsker{}, options.Default(), session)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPrintCatalog_RoundTrips(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printCatalog(&out, options.Default()))

	c, err := options.Parse(out.Bytes())
	require.NoError(t, err)
	require.Equal(t, options.Default(), c)
}

func TestUseOptionsFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(cfgPath))

	var catalog bytes.Buffer
	require.NoError(t, printCatalog(&catalog, options.Default()))
	optsPath := writeFile(t, dir, "options.yaml", catalog.String())

	var out bytes.Buffer
	require.NoError(t, useOptionsFile(&out, cfgPath, optsPath))
	require.Contains(t, out.String(), optsPath)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	var saved struct {
		Form struct {
			OptionsFile string `yaml:"options_file"`
		} `yaml:"form"`
	}
	require.NoError(t, yaml.Unmarshal(data, &saved))
	require.Equal(t, optsPath, saved.Form.OptionsFile)
}

func TestUseOptionsFile_InvalidFileNotSaved(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(cfgPath))
	before, err := os.ReadFile(cfgPath)
	require.NoError(t, err)

	bad := writeFile(t, dir, "options.yaml", "genders: []\n")
	err = useOptionsFile(&bytes.Buffer{}, cfgPath, bad)
	require.ErrorIs(t, err, options.ErrEmptyCatalog)

	after, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"prompt", "submit", "options"} {
		require.True(t, names[want], "missing %s command", want)
	}
	for _, flag := range []string{"config", "debug", "options", "reset-delay"} {
		require.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "missing --%s", flag)
	}
}
