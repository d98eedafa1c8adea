package openapi

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcoord/pkg/definition"
	"github.com/goliatone/go-formcoord/pkg/rules"
	"github.com/goliatone/go-formcoord/pkg/testsupport"
)

const petstore = `
openapi: 3.0.3
info:
  title: Accounts
  version: 1.0.0
paths:
  /accounts:
    post:
      operationId: createAccount
      summary: Create an account
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [email, password]
              properties:
                email:
                  type: string
                  format: email
                  title: Email
                password:
                  type: string
                  format: password
                  minLength: 8
                  maxLength: 64
                confirmPassword:
                  type: string
                  format: password
                  x-formcoord-equals-field: password
                age:
                  type: integer
                handle:
                  type: string
                  pattern: "^[a-z]+:[0-9]+$"
                  x-formcoord-rules: [isPlainText]
      responses:
        "201":
          description: created
    get:
      operationId: listAccounts
      responses:
        "200":
          description: ok
`

func TestOperations(t *testing.T) {
	ids, err := Operations(context.Background(), []byte(petstore), Options{})
	if err != nil {
		t.Fatalf("Operations: %v", err)
	}
	if diff := cmp.Diff([]string{"createAccount"}, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestFormFromOpenAPI(t *testing.T) {
	got, err := FormFromOpenAPI(context.Background(), []byte(petstore), "createAccount", Options{})
	if err != nil {
		t.Fatalf("FormFromOpenAPI: %v", err)
	}
	testsupport.AssertGoldenDefinition(t, "testdata/create_account.golden.yaml", got)
	if err := got.Check(rules.NewRegistry()); err != nil {
		t.Fatalf("derived form should pass Check: %v", err)
	}
}

func TestFormFromOpenAPI_PatternArgumentSurvivesParsing(t *testing.T) {
	got, err := FormFromOpenAPI(context.Background(), []byte(petstore), "createAccount", Options{})
	if err != nil {
		t.Fatalf("FormFromOpenAPI: %v", err)
	}
	var handle definition.Field
	for _, fd := range got.Fields {
		if fd.Name == "handle" {
			handle = fd
		}
	}
	spec, err := rules.ParseSpec(handle.Rules[0])
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}
	if diff := cmp.Diff([]any{"^[a-z]+:[0-9]+$"}, spec.Args); diff != "" {
		t.Fatalf("pattern args mismatch (-want +got):\n%s", diff)
	}
}

func TestFormFromOpenAPI_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := FormFromOpenAPI(ctx, nil, "x", Options{}); err == nil {
		t.Fatalf("expected empty document error")
	}
	if _, err := FormFromOpenAPI(ctx, []byte(petstore), "deleteAccount", Options{}); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := FormFromOpenAPI(ctx, []byte(petstore), "listAccounts", Options{}); err == nil {
		t.Fatalf("expected error for operation without request body")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := FormFromOpenAPI(cancelled, []byte(petstore), "createAccount", Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
