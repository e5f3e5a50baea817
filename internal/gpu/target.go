package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DefaultTargetFormat is the offscreen color format. It matches the byte
// order of image.RGBA so readback needs no swizzle.
const DefaultTargetFormat = gputypes.TextureFormatRGBA8Unorm

// copyPitchAlignment is the row alignment required by texture-to-buffer copies.
const copyPitchAlignment = 256

// Target is a single-sample offscreen color texture that frames render into
// and read back from.
type Target struct {
	device hal.Device
	format gputypes.TextureFormat

	tex  hal.Texture
	view hal.TextureView

	width  uint32
	height uint32
}

// NewTarget returns an empty target. Textures are created by Ensure.
func NewTarget(device hal.Device, format gputypes.TextureFormat) *Target {
	return &Target{device: device, format: format}
}

// Ensure (re)creates the texture if the requested size differs from the
// current one. On failure, partially created resources are released.
func (t *Target) Ensure(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("gpu: invalid target size %dx%d", width, height)
	}
	if t.tex != nil && t.width == width && t.height == height {
		return nil
	}
	t.Destroy()

	tex, err := t.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "scene_target",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        t.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	t.tex = tex

	view, err := t.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "scene_target_view",
	})
	if err != nil {
		t.Destroy()
		return fmt.Errorf("create target view: %w", err)
	}
	t.view = view

	t.width, t.height = width, height
	slogger().Debug("gpu: target allocated", "width", width, "height", height)
	return nil
}

// Size returns the current target size.
func (t *Target) Size() (width, height uint32) { return t.width, t.height }

// View returns the render attachment view.
func (t *Target) View() hal.TextureView { return t.view }

// Texture returns the underlying texture.
func (t *Target) Texture() hal.Texture { return t.tex }

// Destroy releases the texture and view. Safe to call more than once.
func (t *Target) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
	t.width, t.height = 0, 0
}

// alignedBytesPerRow returns the 256-byte aligned row pitch for an RGBA8 row.
func alignedBytesPerRow(width uint32) uint32 {
	bpr := width * 4
	return (bpr + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// unpadRows copies height rows of width*4 bytes out of src, whose rows are
// pitch bytes apart, into dst.
func unpadRows(dst, src []byte, width, height, pitch uint32) {
	bpr := int(width) * 4
	if int(pitch) == bpr {
		copy(dst, src[:bpr*int(height)])
		return
	}
	for row := 0; row < int(height); row++ {
		copy(dst[row*bpr:(row+1)*bpr], src[row*int(pitch):row*int(pitch)+bpr])
	}
}
