// Package draw turns scene document objects into textured quads and writes
// them, in document order, into a gpu.BufferSet.
package draw

import (
	"errors"
	"fmt"

	"github.com/gogpu/wallscene/assets"
	"github.com/gogpu/wallscene/document"
)

// Resolution errors. Every one wraps ErrUnresolvable, so callers that only
// care whether an object was dropped can test for that.
var (
	ErrUnresolvable = errors.New("draw: object cannot be drawn")

	ErrHidden            = fmt.Errorf("%w: hidden", ErrUnresolvable)
	ErrMissingOrigin     = fmt.Errorf("%w: missing origin", ErrUnresolvable)
	ErrMissingSize       = fmt.Errorf("%w: missing size", ErrUnresolvable)
	ErrMalformedVector   = fmt.Errorf("%w: malformed vector", ErrUnresolvable)
	ErrMissingImage      = fmt.Errorf("%w: missing image", ErrUnresolvable)
	ErrUnresolvedPath    = fmt.Errorf("%w: image has no material", ErrUnresolvable)
	ErrUnresolvedTexture = fmt.Errorf("%w: texture not loaded", ErrUnresolvable)
)

// Defaults for the optional transform fields.
var (
	DefaultAngles = [3]float64{0, 0, 0}
	DefaultScale  = [3]float64{1, 1, 1}
)

// DrawTextureObject is an object that resolved completely: a transform and
// the texture it samples. The texture is shared with the cache it came from.
type DrawTextureObject struct {
	ID   int64
	Name string

	Origin [3]float64
	Angles [3]float64
	Scale  [3]float64
	Size   [2]float64

	// Alpha is always 1. The document alpha is not applied.
	Alpha float64

	Texture *assets.Texture
}

// Resolve builds the draw object for obj. Checks run in a fixed order and
// the first failure is returned: visibility, origin, size, angles, scale,
// then image to material to texture.
func Resolve(obj *document.Object, index *assets.Index, cache *assets.Cache) (*DrawTextureObject, error) {
	if !obj.Visible.IsVisible() {
		return nil, ErrHidden
	}

	origin, err := requiredVec3(obj.Origin, "origin", ErrMissingOrigin)
	if err != nil {
		return nil, err
	}
	if obj.Size == nil {
		return nil, ErrMissingSize
	}
	size, ok := obj.Size.Vec2()
	if !ok {
		return nil, fmt.Errorf("%w: size %s", ErrMalformedVector, obj.Size)
	}
	angles, err := optionalVec3(obj.Angles, "angles", DefaultAngles)
	if err != nil {
		return nil, err
	}
	scale, err := optionalVec3(obj.Scale, "scale", DefaultScale)
	if err != nil {
		return nil, err
	}

	if obj.Image == nil || *obj.Image == "" {
		return nil, ErrMissingImage
	}
	material, ok := index.Lookup(*obj.Image)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedPath, *obj.Image)
	}
	key := assets.TextureKey(material)
	tex, ok := cache.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedTexture, key)
	}

	return &DrawTextureObject{
		ID:      obj.ID,
		Name:    obj.Name,
		Origin:  origin,
		Angles:  angles,
		Scale:   scale,
		Size:    size,
		Alpha:   1,
		Texture: tex,
	}, nil
}

func requiredVec3(v *document.Vectors, field string, missing error) ([3]float64, error) {
	if v == nil {
		return [3]float64{}, missing
	}
	out, ok := v.Vec3()
	if !ok {
		return [3]float64{}, fmt.Errorf("%w: %s %s", ErrMalformedVector, field, v)
	}
	return out, nil
}

func optionalVec3(v *document.Vectors, field string, def [3]float64) ([3]float64, error) {
	if v == nil {
		return def, nil
	}
	out, ok := v.Vec3()
	if !ok {
		return [3]float64{}, fmt.Errorf("%w: %s %s", ErrMalformedVector, field, v)
	}
	return out, nil
}
