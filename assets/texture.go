// Package assets resolves the textures a scene document refers to.
//
// Objects name their image by a model path ("models/tree.json"). The model
// names a material ("materials/tree.json"), and the decoded texture for that
// material is stored under the material path with a ".tex" extension
// ("materials/tree.tex"). An [Index] holds the model→material mapping and a
// [Cache] holds the decoded textures by texture key.
//
// Both are filled once per scene load and are read-only afterwards, so they
// are safe for concurrent readers. Decoded textures are shared by pointer:
// every draw object referring to the same key holds the same *Texture.
package assets

import (
	"github.com/gogpu/wgpu/hal"
)

// Texture is a decoded, GPU-resident texture.
type Texture struct {
	key    string
	width  uint32
	height uint32

	texture hal.Texture
	view    hal.TextureView
}

// NewTexture wraps an already uploaded texture. Ownership of tex and view
// passes to the returned Texture (released by Cache.Destroy).
func NewTexture(key string, width, height uint32, tex hal.Texture, view hal.TextureView) *Texture {
	return &Texture{
		key:     key,
		width:   width,
		height:  height,
		texture: tex,
		view:    view,
	}
}

// Key returns the texture key the texture is cached under.
func (t *Texture) Key() string { return t.key }

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (width, height uint32) { return t.width, t.height }

// View returns the texture view bound for sampling.
func (t *Texture) View() hal.TextureView { return t.view }

// Raw returns the underlying texture.
func (t *Texture) Raw() hal.Texture { return t.texture }

// destroy releases the GPU objects. Safe to call more than once.
func (t *Texture) destroy(device hal.Device) {
	if device == nil {
		return
	}
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		device.DestroyTexture(t.texture)
		t.texture = nil
	}
}
