package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/regform/internal/config"
	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/options"
)

var optionsUse string

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Print the option lists used by select fields",
	Long: `Print the effective option catalog as YAML.

The output is a valid options file: redirect it, edit it, and point the form
at it with --use (saved to the config file) or --options (this run only).

Examples:
  regform options > my-options.yaml
  regform options --use my-options.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if optionsUse != "" {
			return useOptionsFile(cmd.OutOrStdout(), configPath(), optionsUse)
		}
		catalog, err := options.Load(cfg.Form.OptionsFile)
		if err != nil {
			return err
		}
		return printCatalog(cmd.OutOrStdout(), catalog)
	},
}

func init() {
	optionsCmd.Flags().StringVar(&optionsUse, "use", "", "validate FILE and save it as form.options_file in the config")
	rootCmd.AddCommand(optionsCmd)
}

func printCatalog(out io.Writer, c options.Catalog) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return enc.Close()
}

// useOptionsFile checks that path loads and records it in the config file.
func useOptionsFile(out io.Writer, cfgPath, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := options.Load(abs); err != nil {
		return err
	}
	if err := config.SetOptionsFile(cfgPath, abs); err != nil {
		return err
	}
	log.Info(log.CatConfig, "Options file saved", "config", cfgPath, "options_file", abs)
	_, _ = fmt.Fprintf(out, "form.options_file set to %s in %s\n", abs, cfgPath)
	return nil
}
