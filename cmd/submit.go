package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/regform/internal/form"
	"github.com/zjrosen/regform/internal/options"
	"github.com/zjrosen/regform/internal/registration"
)

// errRejected makes the command exit non-zero once every file is reported.
var errRejected = errors.New("one or more registrations were rejected")

var submitJSON bool

var submitCmd = &cobra.Command{
	Use:   "submit FILE...",
	Short: "Validate and submit registration records from files",
	Long: `Validate registration records stored as YAML or JSON and submit the
valid ones.

Each file holds one record keyed by field name (name, email, age, phone,
gender, course, address, city, state, zipCode, guardianName, guardianPhone,
previousEducation, interestedInHostel, termsAccepted). Select fields must
use a value from the option catalog.

Examples:
  regform submit asha.yaml
  regform submit records/*.json --json | jq 'select(.accepted | not)'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := options.Load(cfg.Form.OptionsFile)
		if err != nil {
			return err
		}
		rec, cleanup, err := newRecorder()
		if err != nil {
			return err
		}
		defer cleanup()

		return submitFiles(cmd.Context(), cmd.OutOrStdout(), args, catalog, rec, submitJSON)
	},
}

func init() {
	submitCmd.Flags().BoolVar(&submitJSON, "json", false, "print one JSON result per file")
	rootCmd.AddCommand(submitCmd)
}

// submitResult is the outcome for one file.
type submitResult struct {
	File     string            `json:"file"`
	Accepted bool              `json:"accepted"`
	Errors   map[string]string `json:"errors,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func submitFiles(ctx context.Context, out io.Writer, paths []string, catalog options.Catalog, sink form.Sink, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	enc := json.NewEncoder(out)

	rejected := false
	for _, path := range paths {
		res := submitFile(ctx, path, catalog, sink)
		if !res.Accepted {
			rejected = true
		}
		if asJSON {
			if err := enc.Encode(res); err != nil {
				return err
			}
			continue
		}
		printResult(out, res)
	}
	if rejected {
		return errRejected
	}
	return nil
}

func submitFile(ctx context.Context, path string, catalog options.Catalog, sink form.Sink) submitResult {
	res := submitResult{File: path}

	r, err := readRecord(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	// The reset delay is irrelevant here; Close drops the pending reset.
	session := form.NewSession(
		form.WithSink(sink),
		form.WithSessionValidator(catalog.Validator(nil)),
		form.WithResetDelay(cfg.Form.ResetDelay),
	)
	defer func() { _ = session.Close() }()

	for _, f := range registration.Fields() {
		if err := session.SetField(f, r.Value(f)); err != nil {
			res.Error = err.Error()
			return res
		}
	}
	outcome, err := session.Submit(ctx)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Accepted = outcome.Accepted
	if len(outcome.Errors) > 0 {
		res.Errors = make(map[string]string, len(outcome.Errors))
		for f, msg := range outcome.Errors {
			res.Errors[string(f)] = msg
		}
	}
	return res
}

func printResult(out io.Writer, res submitResult) {
	switch {
	case res.Error != "":
		_, _ = fmt.Fprintf(out, "%s: error: %s\n", res.File, res.Error)
	case res.Accepted:
		_, _ = fmt.Fprintf(out, "%s: accepted\n", res.File)
	default:
		_, _ = fmt.Fprintf(out, "%s: rejected\n", res.File)
		for _, f := range registration.Fields() {
			if msg, ok := res.Errors[string(f)]; ok {
				_, _ = fmt.Fprintf(out, "  %s: %s\n", f, msg)
			}
		}
	}
}

// readRecord decodes a record file. Unknown keys are rejected so a typo in
// a field name is not mistaken for an empty field.
func readRecord(path string) (registration.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return registration.Record{}, fmt.Errorf("reading record: %w", err)
	}

	var r registration.Record
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&r)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&r)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return registration.Record{}, fmt.Errorf("decoding record %s: %w", path, err)
	}
	return r, nil
}
