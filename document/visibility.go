package document

import (
	"bytes"
	"encoding/json"
)

// VisibilityKind identifies how a `visible` field was encoded.
//
// Scene producers emit either a bare boolean or a user-bindable
// `{"user": ..., "value": bool}` object depending on their version.
type VisibilityKind uint8

const (
	// VisibilityAbsent means the field was missing or null.
	VisibilityAbsent VisibilityKind = iota
	// VisibilityPlain is a bare JSON boolean.
	VisibilityPlain
	// VisibilityWrapped is an object carrying a boolean "value".
	VisibilityWrapped
	// VisibilityOther is any other JSON shape, including a wrapped object
	// whose "value" is missing, null or not a boolean.
	VisibilityOther
)

// String returns the name of the encoding.
func (k VisibilityKind) String() string {
	switch k {
	case VisibilityAbsent:
		return "absent"
	case VisibilityPlain:
		return "plain"
	case VisibilityWrapped:
		return "wrapped"
	default:
		return "other"
	}
}

// Visibility is the decoded form of a `visible` field.
type Visibility struct {
	Kind  VisibilityKind
	Value bool

	// User is the raw user-property binding of a wrapped value, if any.
	User json.RawMessage
}

// Visible returns a plain boolean visibility.
func Visible(v bool) Visibility {
	return Visibility{Kind: VisibilityPlain, Value: v}
}

// WrappedVisible returns a wrapped visibility with no user binding.
func WrappedVisible(v bool) Visibility {
	return Visibility{Kind: VisibilityWrapped, Value: v}
}

// PlainReading is the bare-boolean interpretation: the value when the field
// was a boolean, true otherwise.
func (v Visibility) PlainReading() bool {
	if v.Kind == VisibilityPlain {
		return v.Value
	}
	return true
}

// WrappedReading is the `{value: bool}` interpretation: the value when the
// field was a wrapped boolean, true otherwise.
func (v Visibility) WrappedReading() bool {
	if v.Kind == VisibilityWrapped {
		return v.Value
	}
	return true
}

// IsVisible reports whether both readings are non-false.
func (v Visibility) IsVisible() bool {
	return v.PlainReading() && v.WrappedReading()
}

// UnmarshalJSON implements json.Unmarshaler. It never fails: unexpected
// shapes decode as VisibilityOther.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = Visibility{}
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		v.Kind = VisibilityAbsent
	case bytes.Equal(data, []byte("true")):
		v.Kind, v.Value = VisibilityPlain, true
	case bytes.Equal(data, []byte("false")):
		v.Kind, v.Value = VisibilityPlain, false
	case data[0] == '{':
		var wrapped struct {
			User  json.RawMessage `json:"user"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			v.Kind = VisibilityOther
			return nil
		}
		// A null value decodes into a bool without error, so it is
		// rejected explicitly along with a missing one.
		value := bytes.TrimSpace(wrapped.Value)
		var b bool
		if len(value) == 0 || bytes.Equal(value, []byte("null")) || json.Unmarshal(value, &b) != nil {
			v.Kind = VisibilityOther
			v.User = wrapped.User
			return nil
		}
		v.Kind, v.Value, v.User = VisibilityWrapped, b, wrapped.User
	default:
		v.Kind = VisibilityOther
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Visibility) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case VisibilityPlain:
		return json.Marshal(v.Value)
	case VisibilityWrapped:
		out := struct {
			User  json.RawMessage `json:"user,omitempty"`
			Value bool            `json:"value"`
		}{v.User, v.Value}
		return json.Marshal(out)
	default:
		return []byte("null"), nil
	}
}
