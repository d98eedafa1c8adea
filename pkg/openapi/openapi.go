// Package openapi derives form definitions from the JSON request bodies of
// OpenAPI 3 operations.
package openapi

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formcoord/pkg/definition"
	"github.com/goliatone/go-formcoord/pkg/rules"
)

// Extension keys read from property schemas.
const (
	ExtensionEqualsField = "x-formcoord-equals-field"
	ExtensionRules       = "x-formcoord-rules"
)

// ErrOperationNotFound reports an operation id missing from the document.
var ErrOperationNotFound = errors.New("openapi: operation not found")

// Options tunes document loading.
type Options struct {
	// ResolveReferences allows external $ref and validates the loaded document.
	ResolveReferences bool
}

// Operations lists the operation ids with a request body, sorted.
func Operations(ctx context.Context, raw []byte, opts Options) ([]string, error) {
	doc, err := load(ctx, raw, opts)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, op := range collect(doc) {
		if op.RequestBody != nil {
			ids = append(ids, op.OperationID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// FormFromOpenAPI builds a definition from the request body schema of the
// operation identified by operationID.
func FormFromOpenAPI(ctx context.Context, raw []byte, operationID string, opts Options) (definition.Form, error) {
	doc, err := load(ctx, raw, opts)
	if err != nil {
		return definition.Form{}, err
	}
	var target *openapi3.Operation
	for _, op := range collect(doc) {
		if op.OperationID == operationID {
			target = op
			break
		}
	}
	if target == nil {
		return definition.Form{}, errors.Wrapf(ErrOperationNotFound, "%q", operationID)
	}
	schema := requestSchema(target.RequestBody)
	if schema == nil {
		return definition.Form{}, errors.Newf("openapi: operation %q has no object request body", operationID)
	}

	out := definition.Form{Name: operationID, Description: target.Summary}
	if out.Description == "" {
		out.Description = target.Description
	}
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		out.Fields = append(out.Fields, convertProperty(name, ref.Value, required[name]))
	}
	return out, nil
}

// LoadFile reads the document at path and derives the operation's form.
func LoadFile(ctx context.Context, path, operationID string, opts Options) (definition.Form, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return definition.Form{}, errors.Wrapf(err, "openapi: read %s", path)
	}
	return FormFromOpenAPI(ctx, raw, operationID, opts)
}

func load(ctx context.Context, raw []byte, opts Options) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: opts.ResolveReferences}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, errors.Wrap(err, "openapi: load document")
	}
	if opts.ResolveReferences {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, errors.Wrap(err, "openapi: validate")
		}
	}
	return doc, nil
}

func collect(doc *openapi3.T) []*openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	var ops []*openapi3.Operation
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			if op.OperationID == "" {
				op.OperationID = strings.ToLower(method) + ":" + path
			}
			ops = append(ops, op)
		}
	}
	return ops
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return objectOnly(mt.Schema.Value)
		}
	}
	return nil
}

func objectOnly(schema *openapi3.Schema) *openapi3.Schema {
	if len(schema.Properties) == 0 {
		return nil
	}
	return schema
}

func convertProperty(name string, schema *openapi3.Schema, required bool) definition.Field {
	fd := definition.Field{
		Name:   name,
		Label:  schema.Title,
		Value:  schema.Default,
		Secret: schema.Format == "password" || schema.WriteOnly,
	}
	if required {
		fd.Rules = append(fd.Rules, rules.RuleIsRequired)
	}
	switch firstSchemaType(schema.Type) {
	case openapi3.TypeNumber, openapi3.TypeInteger:
		fd.Rules = append(fd.Rules, rules.RuleIsNumber)
	}
	if schema.Format == "email" {
		fd.Rules = append(fd.Rules, rules.RuleIsEmail)
	}
	if schema.MinLength > 0 {
		fd.Rules = append(fd.Rules, rules.RuleMinLength+":"+strconv.FormatUint(schema.MinLength, 10))
	}
	if schema.MaxLength != nil {
		fd.Rules = append(fd.Rules, rules.RuleMaxLength+":"+strconv.FormatUint(*schema.MaxLength, 10))
	}
	if schema.Pattern != "" {
		// quoted so the pattern survives rule argument parsing verbatim
		quoted, _ := json.Marshal(schema.Pattern)
		fd.Rules = append(fd.Rules, rules.RuleMatchRegexp+":"+string(quoted))
	}
	if other, ok := schema.Extensions[ExtensionEqualsField].(string); ok && other != "" {
		fd.Rules = append(fd.Rules, rules.RuleEqualsField+":"+other)
	}
	if extra, ok := schema.Extensions[ExtensionRules].([]any); ok {
		for _, entry := range extra {
			if spec, ok := entry.(string); ok && strings.TrimSpace(spec) != "" {
				fd.Rules = append(fd.Rules, spec)
			}
		}
	}
	return fd
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
