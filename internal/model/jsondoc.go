package model

import (
	"encoding/json"
	"errors"
)

// ErrNotJSON indicates input that does not parse as a JSON document.
var ErrNotJSON = errors.New("not a valid JSON document")

// JSONDocument is a JSON value carrying both its serialized form and the
// decoded structure. Instances can only be built through ParseJSONDocument
// or Canonical, so an invalid document can never exist.
type JSONDocument struct {
	raw   []byte
	value any
}

// ParseJSONDocument validates s and returns a document holding s verbatim.
// The raw bytes are kept exactly as given; no re-serialization happens here.
func ParseJSONDocument(s string) (JSONDocument, error) {
	var value any
	if err := json.Unmarshal([]byte(s), &value); err != nil {
		return JSONDocument{}, ErrNotJSON
	}
	return JSONDocument{raw: []byte(s), value: value}, nil
}

// Canonical returns a document whose raw form is the canonical re-encoding
// of the parsed value. Used on the write path so stored text is normalized;
// the read path serves stored bytes untouched.
func (d JSONDocument) Canonical() JSONDocument {
	raw, err := json.Marshal(d.value)
	if err != nil {
		// The value came from json.Unmarshal, so it always re-encodes.
		return d
	}
	return JSONDocument{raw: raw, value: d.value}
}

// String returns the serialized form.
func (d JSONDocument) String() string {
	return string(d.raw)
}

// Bytes returns the serialized form.
func (d JSONDocument) Bytes() []byte {
	return d.raw
}

// Value returns the decoded structure.
func (d JSONDocument) Value() any {
	return d.value
}

// IsZero reports whether the document is the zero value (no content).
func (d JSONDocument) IsZero() bool {
	return d.raw == nil
}
