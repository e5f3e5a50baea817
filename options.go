package wallscene

import (
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/wallscene/internal/gpu"
)

// Limits bounds the number of vertices and indices a frame may write.
type Limits = gpu.Limits

// DefaultLimits returns room for gpu.DefaultMaxObjects quads.
func DefaultLimits() Limits { return gpu.DefaultLimits() }

// LimitsForObjects returns room for n quads.
func LimitsForObjects(n uint32) Limits { return gpu.LimitsForObjects(n) }

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := wallscene.NewRenderer(device, queue,
//	    wallscene.WithSize(1280, 720),
//	    wallscene.WithLimits(wallscene.LimitsForObjects(4096)),
//	)
type Option func(*options)

type options struct {
	limits       Limits
	targetFormat gputypes.TextureFormat
	clear        gputypes.Color
	width        uint32
	height       uint32
	spirv        bool
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		limits:       DefaultLimits(),
		targetFormat: gpu.DefaultTargetFormat,
		clear:        gputypes.Color{R: 0, G: 0, B: 0, A: 1},
	}
}

// WithLimits sets the buffer capacity. Limits are validated by NewRenderer.
func WithLimits(l Limits) Option {
	return func(o *options) {
		o.limits = l
	}
}

// WithTargetFormat sets the color format the pipeline renders to. It must
// match the format of views passed to RenderToView. Offscreen frames always
// read back as RGBA, so RenderFrame requires the default format.
func WithTargetFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.targetFormat = f
	}
}

// WithClearColor sets the color a frame starts from when the scene does not
// enable its own clear color.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.clear = c
	}
}

// WithSize fixes the offscreen frame size. Without it, RenderFrame uses the
// scene's orthogonal projection size.
func WithSize(width, height uint32) Option {
	return func(o *options) {
		o.width, o.height = width, height
	}
}

// WithSPIRVShader compiles the sprite shader to SPIR-V up front instead of
// handing WGSL to the device.
func WithSPIRVShader() Option {
	return func(o *options) {
		o.spirv = true
	}
}

// WithLogger gives the renderer its own logger instead of the package one.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
