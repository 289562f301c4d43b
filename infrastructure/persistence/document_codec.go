package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"

	"forever-us/domain/core/entities"
	"forever-us/domain/core/validators"
	pkgerrors "forever-us/pkg/errors"
)

// documentFields are the top-level keys every stored or imported document must carry
var documentFields = []string{"person1", "person2", "startDate", "memories", "theme"}

// decodeDocument parses raw JSON into an AppDocument. It reports the missing
// top-level fields separately from syntax or type errors so callers can map
// each to their own error kind.
func decodeDocument(raw []byte) (entities.AppDocument, []string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return entities.AppDocument{}, nil, fmt.Errorf("parse document: %w", err)
	}

	var missing []string
	for _, name := range documentFields {
		value, ok := fields[name]
		if !ok || isEmptyJSON(value) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return entities.AppDocument{}, missing, nil
	}

	var doc entities.AppDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return entities.AppDocument{}, nil, fmt.Errorf("decode document: %w", err)
	}
	return doc.Normalize(), nil, nil
}

// isEmptyJSON treats null and "" like an absent field
func isEmptyJSON(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`))
}

func encodeDocument(doc entities.AppDocument, indent bool) ([]byte, error) {
	doc = doc.Normalize()
	if indent {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// parseStored decodes a stored record; any failure means the record is corrupt
func parseStored(key string, raw []byte, v *validators.DocumentValidator) (entities.AppDocument, error) {
	doc, missing, err := decodeDocument(raw)
	if err != nil {
		return entities.AppDocument{}, pkgerrors.NewCorruptStateError(key, err)
	}
	if len(missing) > 0 {
		return entities.AppDocument{}, pkgerrors.NewCorruptStateError(key, pkgerrors.NewMissingFieldsError(missing))
	}
	if err := v.Validate(doc); err != nil {
		return entities.AppDocument{}, pkgerrors.NewCorruptStateError(key, err)
	}
	return doc, nil
}
