package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/zjrosen/regform/internal/form"
	"github.com/zjrosen/regform/internal/options"
	"github.com/zjrosen/regform/internal/registration"
	"github.com/zjrosen/regform/internal/ui/markdown"
	"github.com/zjrosen/regform/internal/ui/regform"
	"github.com/zjrosen/regform/internal/ui/styles"
)

// errAborted is returned when the user interrupts a prompt.
var errAborted = errors.New("registration aborted")

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Fill in the registration form one question at a time",
	Long: `Fill in the registration form one question at a time, for terminals
where the full-screen form does not work. Invalid answers are asked again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, err := options.Load(cfg.Form.OptionsFile)
		if err != nil {
			return err
		}
		rec, cleanup, err := newRecorder()
		if err != nil {
			return err
		}
		defer cleanup()

		session := form.NewSession(
			form.WithSink(rec),
			form.WithSessionValidator(catalog.Validator(nil)),
			form.WithResetDelay(cfg.Form.ResetDelay),
		)
		defer func() { _ = session.Close() }()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runPrompt(ctx, cmd.OutOrStdout(), surveyAsker{}, catalog, session)
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
}

// asker asks one question. The survey implementation talks to the terminal;
// tests replay canned answers.
type asker interface {
	Input(message, help string) (string, error)
	Select(message string, choices []string) (string, error)
	Confirm(message string) (bool, error)
}

type surveyAsker struct{}

func (surveyAsker) Input(message, help string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Input{Message: message, Help: help}, &out)
	return out, translateSurveyErr(err)
}

func (surveyAsker) Select(message string, choices []string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Select{Message: message, Options: choices, PageSize: 10}, &out)
	return out, translateSurveyErr(err)
}

func (surveyAsker) Confirm(message string) (bool, error) {
	var out bool
	err := survey.AskOne(&survey.Confirm{Message: message}, &out)
	return out, translateSurveyErr(err)
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}

// runPrompt asks for every field in declaration order. Each answer is set
// and then touched; an answer with a visible error is asked again.
func runPrompt(ctx context.Context, out io.Writer, ask asker, catalog options.Catalog, session *form.Session) error {
	_, _ = fmt.Fprintln(out, styles.TitleStyle.Render("Student Registration Form"))
	_, _ = fmt.Fprintln(out, styles.SubtitleStyle.Render("Please fill in all required fields"))

	for _, f := range registration.Fields() {
		if f == registration.FieldTermsAccepted {
			printTerms(out)
		}
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			value, err := askField(ask, catalog, f)
			if err != nil {
				return err
			}
			if err := session.SetField(f, value); err != nil {
				return err
			}
			msg, err := session.Touch(f)
			if err != nil {
				return err
			}
			if msg == "" {
				break
			}
			_, _ = fmt.Fprintln(out, styles.FieldErrorStyle.Render("  "+msg))
		}
	}

	outcome, err := session.Submit(ctx)
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		// Every answer passed on its own, so this only happens with a
		// validator that looks at more than one field.
		return fmt.Errorf("registration rejected: %s", outcome.Errors[outcome.FirstInvalid])
	}
	_, _ = fmt.Fprintln(out, "✓ "+regform.SuccessMessage)
	return nil
}

func askField(ask asker, catalog options.Catalog, f registration.Field) (any, error) {
	label := f.Label()
	if f.Validated() {
		label += " *"
	}

	switch f.Kind() {
	case registration.KindChoice:
		opts := catalog.Choices(f)
		labels := make([]string, len(opts))
		for i, o := range opts {
			labels[i] = o.Label
		}
		picked, err := ask.Select(label, labels)
		if err != nil {
			return nil, err
		}
		for _, o := range opts {
			if o.Label == picked {
				return o.Value, nil
			}
		}
		return picked, nil

	case registration.KindFlag:
		if f == registration.FieldTermsAccepted {
			label = "I accept the terms and conditions"
		}
		return ask.Confirm(label)

	default:
		return ask.Input(label, "")
	}
}

func printTerms(out io.Writer) {
	r, err := markdown.New(80, cfg.UI.MarkdownStyle)
	if err != nil {
		_, _ = fmt.Fprintln(out, markdown.Terms())
		return
	}
	rendered, err := r.Render(markdown.Terms())
	if err != nil {
		rendered = markdown.Terms()
	}
	_, _ = fmt.Fprintln(out, rendered)
}
