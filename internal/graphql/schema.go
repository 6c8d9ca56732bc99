package graphql

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/validator"
)

//go:embed schema/backend.graphqls
var backendSDL string

// ErrInvalidDocument is returned when a request does not validate against
// the backend schema. No network call is made in that case.
var ErrInvalidDocument = errors.New("invalid graphql document")

// Schema is the backend schema requests are checked against.
type Schema struct {
	schema *ast.Schema
}

// LoadSchema parses sdl.
func LoadSchema(name, sdl string) (*Schema, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
	}
	return &Schema{schema: schema}, nil
}

// LoadSchemaFile parses the SDL file at path. An empty path loads the
// embedded backend schema.
func LoadSchemaFile(path string) (*Schema, error) {
	if path == "" {
		return DefaultSchema()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return LoadSchema(path, string(data))
}

// DefaultSchema returns the embedded backend schema.
func DefaultSchema() (*Schema, error) {
	return LoadSchema("backend.graphqls", backendSDL)
}

// Validate parses query and checks it against the schema.
func (s *Schema) Validate(query string) (*ast.QueryDocument, error) {
	doc, errs := gqlparser.LoadQuery(s.schema, query)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, errs)
	}
	return doc, nil
}

// ValidateRequest checks the document of req and coerces its variables
// against the selected operation.
func (s *Schema) ValidateRequest(req Request) error {
	doc, err := s.Validate(req.Query)
	if err != nil {
		return err
	}
	op := doc.Operations.ForName(req.OperationName)
	if op == nil {
		return fmt.Errorf("%w: operation %q not found", ErrInvalidDocument, req.OperationName)
	}
	variables := req.Variables
	if variables == nil {
		variables = map[string]any{}
	}
	if _, err := validator.VariableValues(s.schema, op, variables); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}
