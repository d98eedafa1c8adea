package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcoord/pkg/prompt"
)

type fillOptions struct {
	maxAttempts int
	confirm     bool
	json        bool
}

var fillOpts fillOptions

// newDriver is swapped in tests.
var newDriver = func(cmd *cobra.Command) prompt.Driver {
	return prompt.NewSurveyDriver(cmd.ErrOrStderr())
}

func init() {
	fillCmd.Flags().IntVar(&fillOpts.maxAttempts, "max-attempts", 0,
		"give up after this many invalid answers per field (0 = unlimited)")
	fillCmd.Flags().BoolVar(&fillOpts.confirm, "confirm", false,
		"ask before submitting")
	fillCmd.Flags().BoolVar(&fillOpts.json, "json", false,
		"output the submitted form as JSON")
	rootCmd.AddCommand(fillCmd)
}

var fillCmd = &cobra.Command{
	Use:   "fill <definition>",
	Short: "Fill a form interactively",
	Long: `Fill prompts for every field of a form definition. A field is asked
again while its value fails its rules, and fields invalidated by a later
answer are revisited before the form is submitted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFill(cmd.Context(), args[0], newDriver(cmd), fillOpts, cmd.OutOrStdout())
	},
}

func runFill(ctx context.Context, path string, driver prompt.Driver, opts fillOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(path)
	if err != nil {
		return err
	}
	s.coord.Mount(ctx)
	defer s.coord.Unmount()
	if err := s.settle(ctx); err != nil {
		return err
	}

	filler := prompt.NewFiller(driver, s.coord,
		prompt.WithMaxAttempts(opts.maxAttempts),
		prompt.WithConfirmSubmit(opts.confirm),
	)
	result, submitted, err := filler.Fill(ctx, s.inputs)
	if err != nil {
		return err
	}
	if !submitted {
		_, err := fmt.Fprintln(w, "Submission cancelled")
		return err
	}
	return writeReport(w, buildReport(s, result), wantJSON(opts.json))
}
