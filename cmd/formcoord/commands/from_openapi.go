package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcoord/pkg/openapi"
)

type fromOpenAPIOptions struct {
	operation string
	list      bool
	resolve   bool
	output    string
}

var fromOpenAPIOpts fromOpenAPIOptions

func init() {
	fromOpenAPICmd.Flags().StringVar(&fromOpenAPIOpts.operation, "operation", "",
		"operation id whose request body becomes the form")
	fromOpenAPICmd.Flags().BoolVar(&fromOpenAPIOpts.list, "list", false,
		"list operations with a request body")
	fromOpenAPICmd.Flags().BoolVar(&fromOpenAPIOpts.resolve, "resolve-refs", false,
		"allow external references and validate the document")
	fromOpenAPICmd.Flags().StringVarP(&fromOpenAPIOpts.output, "output", "o", "",
		"write the definition to a file instead of stdout")
	rootCmd.AddCommand(fromOpenAPICmd)
}

var fromOpenAPICmd = &cobra.Command{
	Use:   "from-openapi <document>",
	Short: "Derive a form definition from an OpenAPI operation",
	Long: `from-openapi reads an OpenAPI 3 document and turns the JSON request body
of one operation into a YAML form definition. Required properties become
isRequired, string limits become minLength/maxLength, patterns become
matchRegexp and the x-formcoord-equals-field extension becomes equalsField.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFromOpenAPI(cmd.Context(), args[0], fromOpenAPIOpts, cmd.OutOrStdout())
	},
}

func runFromOpenAPI(ctx context.Context, path string, opts fromOpenAPIOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	loadOpts := openapi.Options{ResolveReferences: opts.resolve}

	if opts.list {
		ids, err := openapi.Operations(ctx, raw, loadOpts)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
		return nil
	}
	if opts.operation == "" {
		return errors.New("--operation is required unless --list is set")
	}

	def, err := openapi.FormFromOpenAPI(ctx, raw, opts.operation, loadOpts)
	if err != nil {
		return err
	}
	out, err := def.Marshal()
	if err != nil {
		return err
	}
	if opts.output != "" {
		if err := os.WriteFile(opts.output, out, 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", opts.output)
		}
		logger.Info("definition written", "path", opts.output, "fields", len(def.Fields))
		return nil
	}
	_, err = w.Write(out)
	return err
}
