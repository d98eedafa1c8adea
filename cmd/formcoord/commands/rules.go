package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcoord/pkg/rules"
)

var rulesJSON bool

func init() {
	rulesCmd.Flags().BoolVar(&rulesJSON, "json", false, "output rules as JSON")
	rootCmd.AddCommand(rulesCmd)
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the built-in validation rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRules(rules.NewRegistry(), rulesJSON, cmd.OutOrStdout())
	},
}

type ruleInfo struct {
	Name                string `json:"name"`
	CreatesDependencies bool   `json:"creates_dependencies"`
}

func runRules(reg *rules.Registry, asJSON bool, w io.Writer) error {
	var infos []ruleInfo
	for _, name := range reg.Names() {
		rule, _ := reg.Lookup(name)
		infos = append(infos, ruleInfo{Name: name, CreatesDependencies: rule.CreatesDependencies})
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		return nil
	}
	for _, info := range infos {
		if info.CreatesDependencies {
			fmt.Fprintf(w, "%-14s %s\n", info.Name, dimColor.Sprint("(names other fields)"))
			continue
		}
		fmt.Fprintln(w, info.Name)
	}
	return nil
}
