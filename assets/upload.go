package assets

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	xdraw "golang.org/x/image/draw"
)

// ErrEmptyImage is returned when uploading an image with no pixels.
var ErrEmptyImage = errors.New("assets: image is empty")

// Uploader creates GPU textures from decoded images.
type Uploader struct {
	device hal.Device
	queue  hal.Queue
}

// NewUploader returns an uploader bound to device and queue.
func NewUploader(device hal.Device, queue hal.Queue) *Uploader {
	return &Uploader{device: device, queue: queue}
}

// Upload converts img to premultiplied RGBA8, creates a sampled texture and
// copies the pixels into it.
func (u *Uploader) Upload(key string, img image.Image) (*Texture, error) {
	rgba := toRGBA(img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyImage, key)
	}
	width, height := uint32(w), uint32(h) //nolint:gosec // image bounds are positive

	tex, err := u.device.CreateTexture(&hal.TextureDescriptor{
		Label:         key,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("assets: create texture %s: %w", key, err)
	}

	view, err := u.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         key + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		u.device.DestroyTexture(tex)
		return nil, fmt.Errorf("assets: create texture view %s: %w", key, err)
	}

	u.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		rgba.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(rgba.Stride), //nolint:gosec // stride of a positive-width image
			RowsPerImage: height,
		},
		&hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)

	return NewTexture(key, width, height, tex, view), nil
}

// toRGBA returns img as a tightly packed *image.RGBA anchored at (0, 0).
// image.RGBA is alpha-premultiplied, which is what the sprite pipeline
// blends with.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}
