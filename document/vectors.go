package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidVectors is returned when a JSON value is neither a number nor a string.
var ErrInvalidVectors = errors.New("document: vectors value must be a number or a string")

// VectorsKind identifies which encoding a Vectors value was read from.
type VectorsKind uint8

const (
	// VectorsScalar is a single number, e.g. `1.5`.
	VectorsScalar VectorsKind = iota
	// VectorsComponents is a whitespace-separated component string, e.g. `"1 2 3"`.
	VectorsComponents
)

// Vectors is the scalar-or-component-string encoding used by every spatial
// field of a scene document.
//
// The zero value is the scalar 0.
type Vectors struct {
	kind       VectorsKind
	scalar     float64
	components string
}

// Scalar returns a Vectors holding a single number.
func Scalar(s float64) Vectors {
	return Vectors{kind: VectorsScalar, scalar: s}
}

// Components returns a Vectors holding a whitespace-separated component string.
func Components(s string) Vectors {
	return Vectors{kind: VectorsComponents, components: s}
}

// Kind reports the encoding of v.
func (v Vectors) Kind() VectorsKind { return v.kind }

// String returns the document form of v.
func (v Vectors) String() string {
	if v.kind == VectorsComponents {
		return v.components
	}
	return strconv.FormatFloat(v.scalar, 'g', -1, 64)
}

// Parse decodes v into its numeric components.
//
// A scalar always yields exactly one component. A component string yields one
// value per whitespace-separated token, in order; if any token is not a valid
// 64-bit float, Parse returns nil, false and never a partial result.
func (v Vectors) Parse() ([]float64, bool) {
	if v.kind == VectorsScalar {
		return []float64{v.scalar}, true
	}
	tokens := strings.Fields(v.components)
	out := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

// Vec3 parses v and shapes it into three components.
// A single component is broadcast to all axes; longer vectors keep their
// first three components. Anything else fails.
func (v Vectors) Vec3() ([3]float64, bool) {
	var out [3]float64
	c, ok := v.fit(3)
	if !ok {
		return out, false
	}
	copy(out[:], c)
	return out, true
}

// Vec2 is the two-component counterpart of Vec3.
func (v Vectors) Vec2() ([2]float64, bool) {
	var out [2]float64
	c, ok := v.fit(2)
	if !ok {
		return out, false
	}
	copy(out[:], c)
	return out, true
}

func (v Vectors) fit(n int) ([]float64, bool) {
	c, ok := v.Parse()
	if !ok {
		return nil, false
	}
	switch {
	case len(c) == 1:
		out := make([]float64, n)
		for i := range out {
			out[i] = c[0]
		}
		return out, true
	case len(c) >= n:
		return c[:n], true
	default:
		return nil, false
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Vectors) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrInvalidVectors
	}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("document: vectors string: %w", err)
		}
		*v = Components(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("document: vectors scalar: %w", err)
		}
		*v = Scalar(f)
		return nil
	default:
		return fmt.Errorf("%w: got %s", ErrInvalidVectors, data)
	}
}

// MarshalJSON implements json.Marshaler.
func (v Vectors) MarshalJSON() ([]byte, error) {
	if v.kind == VectorsComponents {
		return json.Marshal(v.components)
	}
	return json.Marshal(v.scalar)
}
