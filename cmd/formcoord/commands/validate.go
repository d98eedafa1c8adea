package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcoord/pkg/definition"
)

type validateOptions struct {
	valuesFile string
	set        []string
	json       bool
}

var validateOpts validateOptions

func init() {
	validateCmd.Flags().StringVar(&validateOpts.valuesFile, "values", "",
		"JSON or YAML file with field values")
	validateCmd.Flags().StringArrayVar(&validateOpts.set, "set", nil,
		"set a field value (name=value), repeatable")
	validateCmd.Flags().BoolVar(&validateOpts.json, "json", false,
		"output results as JSON")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <definition>",
	Short: "Validate values against a form definition",
	Long: `Validate loads a form definition, applies the given values and waits
until every field and its dependents have been validated.

Exit codes:
  0 - Form is valid
  1 - Form is invalid or the definition could not be loaded`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.Context(), args[0], validateOpts, cmd.OutOrStdout())
	},
}

func runValidate(ctx context.Context, path string, opts validateOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(path)
	if err != nil {
		return err
	}
	values := map[string]any{}
	if opts.valuesFile != "" {
		if values, err = readValues(opts.valuesFile); err != nil {
			return err
		}
	}
	if err := parseAssignments(opts.set, values); err != nil {
		return err
	}
	if err := definition.ApplyValues(s.inputs, values); err != nil {
		return err
	}

	s.coord.Mount(ctx)
	defer s.coord.Unmount()
	if err := s.settle(ctx); err != nil {
		return err
	}
	logger.Debug("form settled", "state", s.coord.State().String())
	return writeReport(w, buildReport(s, s.coord.Submit()), wantJSON(opts.json))
}
