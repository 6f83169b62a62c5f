package schema

import (
	"encoding/json"
	"errors"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("test input is not JSON: %v", err)
	}
	return v
}

func TestCompile_ValidSchema(t *testing.T) {
	t.Parallel()

	schemaDoc := decode(t, `{
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "integer", "minimum": 0}
		}
	}`)

	if _, err := Compile(schemaDoc); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
}

func TestCompile_MalformedSchema(t *testing.T) {
	t.Parallel()

	// "type" must be a string or array of strings.
	schemaDoc := decode(t, `{"type": 12}`)

	_, err := Compile(schemaDoc)
	if !errors.Is(err, ErrMalformedSchema) {
		t.Errorf("Compile error = %v, want ErrMalformedSchema", err)
	}
}

func TestValidate_Conforming(t *testing.T) {
	t.Parallel()

	compiled, err := Compile(decode(t, `{
		"type": "object",
		"required": ["ok"],
		"properties": {"ok": {"type": "boolean"}}
	}`))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	valid, issues := compiled.Validate(decode(t, `{"ok": true}`))
	if !valid {
		t.Errorf("expected valid, got issues: %v", issues)
	}
	if issues != nil {
		t.Errorf("issues should be nil for a conforming document, got %v", issues)
	}
}

func TestValidate_MissingRequiredProperty(t *testing.T) {
	t.Parallel()

	compiled, err := Compile(decode(t, `{
		"type": "object",
		"required": ["name", "email"]
	}`))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	valid, issues := compiled.Validate(decode(t, `{"name": "a"}`))
	if valid {
		t.Fatal("document missing a required property should not validate")
	}
	if len(issues) == 0 {
		t.Fatal("expected structured issues, got none")
	}
}

func TestValidate_TypeMismatch(t *testing.T) {
	t.Parallel()

	compiled, err := Compile(decode(t, `{
		"type": "object",
		"properties": {"count": {"type": "integer"}}
	}`))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	valid, issues := compiled.Validate(decode(t, `{"count": "three"}`))
	if valid {
		t.Fatal("type mismatch should not validate")
	}

	found := false
	for _, issue := range issues {
		if issue.Path == "count" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an issue at path %q, got %v", "count", issues)
	}
}

func TestValidate_NestedShapes(t *testing.T) {
	t.Parallel()

	compiled, err := Compile(decode(t, `{
		"type": "object",
		"properties": {
			"items": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["id"],
					"properties": {"id": {"type": "string"}}
				}
			}
		}
	}`))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	valid, _ := compiled.Validate(decode(t, `{"items": [{"id": "a"}, {"id": "b"}]}`))
	if !valid {
		t.Error("conforming nested document should validate")
	}

	valid, issues := compiled.Validate(decode(t, `{"items": [{"id": "a"}, {}]}`))
	if valid {
		t.Fatal("nested document missing required property should not validate")
	}
	if len(issues) == 0 {
		t.Fatal("expected issues for nested failure")
	}
}

func TestPointerToPath(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":              "",
		"/":             "",
		"/name":         "name",
		"/items/0/id":   "items.0.id",
		"/a/b/c":        "a.b.c",
	}

	for pointer, want := range cases {
		if got := pointerToPath(pointer); got != want {
			t.Errorf("pointerToPath(%q) = %q, want %q", pointer, got, want)
		}
	}
}
