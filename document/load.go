package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrNoObjects is returned by SurveyKeys when the document has no object list.
var ErrNoObjects = errors.New("document: no objects")

// Load decodes a scene document.
func Load(r io.Reader) (*Root, error) {
	var root Root
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("document: decode scene: %w", err)
	}
	return &root, nil
}

// LoadModel decodes a model file.
func LoadModel(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("document: decode model: %w", err)
	}
	return &m, nil
}

// UnmarshalJSON accepts either a bare number or a {"user", "value"} object.
func (u *UserValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		type plain UserValue
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("document: user value: %w", err)
		}
		*u = UserValue(p)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("document: user value: %w", err)
	}
	*u = UserValue{Value: f}
	return nil
}

// KeyType is one object key together with the JSON type it was seen with.
type KeyType struct {
	Key  string
	Type string
}

// SurveyKeys reports every (key, JSON type) pair used by the objects of a
// scene document, sorted by key then type. It is meant for checking a new
// producer's output against the Object schema.
func SurveyKeys(r io.Reader) ([]KeyType, error) {
	var raw struct {
		Objects []json.RawMessage `json:"objects"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("document: survey: %w", err)
	}
	if len(raw.Objects) == 0 {
		return nil, ErrNoObjects
	}

	seen := make(map[KeyType]struct{})
	for _, obj := range raw.Objects {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(obj, &fields); err != nil {
			// Non-object entries are skipped.
			continue
		}
		for k, v := range fields {
			seen[KeyType{Key: k, Type: jsonType(v)}] = struct{}{}
		}
	}

	out := make([]KeyType, 0, len(seen))
	for kt := range seen {
		out = append(out, kt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

func jsonType(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return "null"
	}
	switch v[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
