package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formcoord/pkg/definition"
	"github.com/goliatone/go-formcoord/pkg/field"
	"github.com/goliatone/go-formcoord/pkg/form"
)

var errValidationFailed = errors.New("validation failed")

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	dimColor  = color.New(color.FgHiBlack)
)

// session is a loaded definition bound to a fresh coordinator.
type session struct {
	def    definition.Form
	coord  *form.Coordinator
	inputs []*field.Input
}

func openSession(path string, extra ...form.Option) (*session, error) {
	def, err := definition.LoadFile(path)
	if err != nil {
		return nil, err
	}
	opts := append(appConfig.FormOptions(), form.WithLogger(logger.With("form", def.Name)))
	coord := form.New(append(opts, extra...)...)
	if err := def.Check(coord.Rules()); err != nil {
		return nil, err
	}
	inputs, err := def.Build()
	if err != nil {
		return nil, err
	}
	if err := definition.Bind(coord, inputs); err != nil {
		return nil, err
	}
	return &session{def: def, coord: coord, inputs: inputs}, nil
}

func (s *session) settle(ctx context.Context) error {
	if err := s.coord.Wait(ctx); err != nil {
		return errors.Wrap(err, "waiting for validation")
	}
	return nil
}

// readValues decodes a JSON or YAML object of field values.
func readValues(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading values %s", path)
	}
	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err == nil {
		return values, nil
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "parsing values %s", path)
	}
	return values, nil
}

// parseAssignments turns name=value pairs into values. Later pairs win.
func parseAssignments(pairs []string, into map[string]any) error {
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return errors.Newf("invalid --set %q, expected name=value", pair)
		}
		into[name] = value
	}
	return nil
}

type fieldReport struct {
	Name   string   `json:"name"`
	Label  string   `json:"label,omitempty"`
	Valid  bool     `json:"valid"`
	Failed []string `json:"failed,omitempty"`
	Error  string   `json:"error,omitempty"`
	Value  any      `json:"value,omitempty"`
}

type formReport struct {
	Form   string        `json:"form"`
	Valid  bool          `json:"valid"`
	Fields []fieldReport `json:"fields"`
}

func buildReport(s *session, result form.SubmitResult) formReport {
	report := formReport{Form: s.def.Name, Valid: result.Valid}
	for _, in := range s.inputs {
		fr := fieldReport{
			Name:   in.Name(),
			Label:  in.Label(),
			Valid:  in.IsValid(),
			Failed: in.Failed(),
			Value:  result.Values[in.Name()],
		}
		if err := in.Err(); err != nil {
			fr.Error = err.Error()
		}
		if in.Secret() && fr.Value != nil {
			fr.Value = "****"
		}
		report.Fields = append(report.Fields, fr)
	}
	return report
}

func writeReport(w io.Writer, report formReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
	} else {
		name := report.Form
		if name == "" {
			name = "(unnamed)"
		}
		if report.Valid {
			okColor.Fprintf(w, "✓ Form '%s' is valid\n", name)
		} else {
			failColor.Fprintf(w, "✗ Form '%s' is invalid\n", name)
		}
		fmt.Fprintln(w)
		for _, fr := range report.Fields {
			if fr.Valid {
				okColor.Fprintf(w, "  ✓ %s", fr.Name)
			} else {
				failColor.Fprintf(w, "  ✗ %s", fr.Name)
			}
			switch {
			case fr.Error != "":
				dimColor.Fprintf(w, "  error: %s", fr.Error)
			case len(fr.Failed) > 0:
				dimColor.Fprintf(w, "  failed: %s", strings.Join(fr.Failed, ", "))
			}
			fmt.Fprintln(w)
		}
	}
	if !report.Valid {
		return errValidationFailed
	}
	return nil
}

func wantJSON(flag bool) bool {
	return flag || strings.EqualFold(appConfig.Output, "json")
}
