// Package schema compiles JSON Schema documents and checks JSON values
// against them. Validation follows draft-07 semantics.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformedSchema indicates a schema document that does not compile.
// This is a caller configuration error, distinct from a document that
// merely fails validation.
var ErrMalformedSchema = errors.New("malformed JSON schema")

// Issue is a single validation failure, located by JSON path.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Compiled is a compiled, reusable JSON Schema.
type Compiled struct {
	schema *jsonschema.Schema
}

// Compile builds a reusable schema from a decoded schema document.
// Returns ErrMalformedSchema (wrapped) if the document is not a valid schema.
func Compile(schemaDoc any) (*Compiled, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	if err := compiler.AddResource("schema.json", docReader(schemaDoc)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSchema, err)
	}

	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSchema, err)
	}

	return &Compiled{schema: compiled}, nil
}

// Validate checks a decoded JSON value against the schema.
// A conforming document returns (true, nil); a non-conforming one returns
// false plus a structured list of issues, never a single opaque message.
func (c *Compiled) Validate(doc any) (bool, []Issue) {
	err := c.schema.Validate(doc)
	if err == nil {
		return true, nil
	}

	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		var issues []Issue
		collectIssues(validationErr, &issues)
		return false, issues
	}

	return false, []Issue{{Path: "", Message: err.Error()}}
}

// collectIssues walks the error tree and flattens leaf causes.
func collectIssues(err *jsonschema.ValidationError, issues *[]Issue) {
	if len(err.Causes) == 0 {
		*issues = append(*issues, Issue{
			Path:    pointerToPath(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectIssues(cause, issues)
	}
}

// docReader re-encodes the decoded document so the compiler sees
// consistent types regardless of where the document came from.
func docReader(doc any) io.Reader {
	data, err := json.Marshal(doc)
	if err != nil {
		return strings.NewReader("")
	}
	return bytes.NewReader(data)
}

// pointerToPath converts a JSON Pointer to dot notation for readability.
func pointerToPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return ""
	}
	path := strings.TrimPrefix(pointer, "/")
	return strings.ReplaceAll(path, "/", ".")
}
