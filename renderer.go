package wallscene

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/wallscene/assets"
	"github.com/gogpu/wallscene/document"
	"github.com/gogpu/wallscene/internal/draw"
	"github.com/gogpu/wallscene/internal/gpu"
)

// Renderer errors.
var (
	// ErrClosed is returned by a Renderer after Close.
	ErrClosed = errors.New("wallscene: renderer is closed")

	// ErrNoViewport is returned when neither WithSize nor the scene's
	// orthogonal projection gives a frame size.
	ErrNoViewport = errors.New("wallscene: no frame size")

	// ErrNilDocument is returned when rendering a nil scene.
	ErrNilDocument = errors.New("wallscene: nil scene document")

	// ErrOffscreenFormat is returned by RenderFrame when the renderer was
	// built for a non-RGBA target.
	ErrOffscreenFormat = errors.New("wallscene: offscreen frames need an RGBA8 target format")

	// ErrNoHALProvider is returned when a device provider does not expose
	// HAL types.
	ErrNoHALProvider = errors.New("wallscene: provider does not expose HAL device and queue")
)

// Renderer draws scene documents. It owns its buffers, pipeline and bind
// groups; the device, queue and textures belong to the caller.
//
// A Renderer is not safe for concurrent use. Drive it from one goroutine.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	opts   options

	buffers  *gpu.BufferSet
	pipeline *gpu.SpritePipeline
	target   *gpu.Target

	frameGroup    hal.BindGroup
	textureGroups map[gpu.TextureBinding]hal.BindGroup

	closed bool
}

// NewRenderer creates the buffer set and sprite pipeline on device.
func NewRenderer(device hal.Device, queue hal.Queue, opts ...Option) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, errors.New("wallscene: nil device or queue")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{
		device:        device,
		queue:         queue,
		opts:          o,
		textureGroups: make(map[gpu.TextureBinding]hal.BindGroup),
	}

	var err error
	r.buffers, err = gpu.NewBufferSet(device, queue, o.limits)
	if err != nil {
		return nil, fmt.Errorf("wallscene: %w", err)
	}
	r.pipeline, err = gpu.NewSpritePipeline(device, gpu.PipelineConfig{
		TargetFormat: o.targetFormat,
		SPIRV:        o.spirv,
	})
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("wallscene: %w", err)
	}
	r.frameGroup, err = r.pipeline.NewFrameBindGroup(r.buffers)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("wallscene: %w", err)
	}
	r.target = gpu.NewTarget(device, o.targetFormat)

	r.log().Info("wallscene: renderer ready",
		"max_objects", o.limits.MaxObjects(),
		"spirv", o.spirv,
	)
	return r, nil
}

// NewRendererFromProvider creates a Renderer on the device of a host
// application. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewRendererFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Renderer, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := any(provider).(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	return NewRenderer(device, queue, opts...)
}

func (r *Renderer) log() *slog.Logger {
	if r.opts.logger != nil {
		return r.opts.logger
	}
	return Logger()
}

// Limits returns the buffer capacity of the renderer.
func (r *Renderer) Limits() Limits { return r.opts.limits }

// BuildQueue resolves every object of root in document order. Objects that
// cannot be drawn are recorded in the report and left out of the queue.
func (r *Renderer) BuildQueue(root *document.Root, index *assets.Index, cache *assets.Cache) (*draw.Queue, Report) {
	return buildQueue(r.log(), root, index, cache)
}

func buildQueue(log *slog.Logger, root *document.Root, index *assets.Index, cache *assets.Cache) (*draw.Queue, Report) {
	var report Report
	if root == nil {
		return draw.NewQueue(0), report
	}
	report.Objects = len(root.Objects)
	q := draw.NewQueue(len(root.Objects))
	for i := range root.Objects {
		obj := &root.Objects[i]
		d, err := draw.Resolve(obj, index, cache)
		if err != nil {
			report.Dropped = append(report.Dropped, Dropped{ID: obj.ID, Name: obj.Name, Reason: err})
			log.Debug("wallscene: object dropped", "id", obj.ID, "name", obj.Name, "reason", err)
			continue
		}
		q.Push(d)
	}
	report.Queued = q.Len()
	return q, report
}

// RenderFrame draws root into an offscreen target and reads it back.
//
// The frame size comes from WithSize, or else from the scene's orthogonal
// projection. Dropped objects do not fail the frame; running out of buffer
// capacity or a device error does, and no image is returned.
func (r *Renderer) RenderFrame(root *document.Root, index *assets.Index, cache *assets.Cache) (*image.RGBA, Report, error) {
	if r.closed {
		return nil, Report{}, ErrClosed
	}
	if root == nil {
		return nil, Report{}, ErrNilDocument
	}
	if r.opts.targetFormat != gpu.DefaultTargetFormat {
		return nil, Report{}, ErrOffscreenFormat
	}
	w, h, err := r.frameSize(root)
	if err != nil {
		return nil, Report{}, err
	}
	if err := r.target.Ensure(w, h); err != nil {
		return nil, Report{}, fmt.Errorf("wallscene: %w", err)
	}

	pass, report, err := r.prepare(root, index, cache, r.target.View(), w, h)
	if err != nil {
		return nil, report, err
	}
	img, err := gpu.Submit(r.device, r.queue, r.pipeline, r.buffers, pass, r.target)
	if err != nil {
		return nil, report, fmt.Errorf("wallscene: %w", err)
	}
	return img, report, nil
}

// RenderToView draws root into a caller-owned view of the given size, such
// as a swapchain image. Presenting it is up to the caller.
func (r *Renderer) RenderToView(view hal.TextureView, width, height uint32, root *document.Root, index *assets.Index, cache *assets.Cache) (Report, error) {
	if r.closed {
		return Report{}, ErrClosed
	}
	if root == nil {
		return Report{}, ErrNilDocument
	}
	if width == 0 || height == 0 {
		return Report{}, ErrNoViewport
	}
	pass, report, err := r.prepare(root, index, cache, view, width, height)
	if err != nil {
		return report, err
	}
	if _, err := gpu.Submit(r.device, r.queue, r.pipeline, r.buffers, pass, nil); err != nil {
		return report, fmt.Errorf("wallscene: %w", err)
	}
	return report, nil
}

// prepare resets the buffers, uploads the projection, writes every quad and
// binds each draw to its texture.
func (r *Renderer) prepare(root *document.Root, index *assets.Index, cache *assets.Cache, view hal.TextureView, w, h uint32) (*gpu.Pass, Report, error) {
	q, report := r.BuildQueue(root, index, cache)

	r.buffers.Reset()
	pw, ph := projectionSize(root, w, h)
	if err := r.buffers.WriteProjection(gpu.Projection(pw, ph, float32(root.General.FarZ))); err != nil {
		return nil, report, fmt.Errorf("wallscene: %w", err)
	}

	calls, err := q.Submit(r.buffers)
	report.Drawn = len(calls)
	if err != nil {
		r.log().Warn("wallscene: frame aborted", "queued", report.Queued, "written", report.Drawn, "err", err)
		return nil, report, fmt.Errorf("wallscene: %w", err)
	}

	draws := make([]gpu.BoundDraw, 0, len(calls))
	for _, c := range calls {
		group, err := r.textureGroup(c.Texture)
		if err != nil {
			return nil, report, fmt.Errorf("wallscene: %w", err)
		}
		draws = append(draws, gpu.BoundDraw{Group: group, FirstIndex: c.FirstIndex, IndexCount: c.IndexCount})
	}

	return &gpu.Pass{
		View:       view,
		Clear:      r.clearColor(root),
		FrameGroup: r.frameGroup,
		Draws:      draws,
	}, report, nil
}

// textureGroup returns the cached bind group for tex, creating it on first use.
func (r *Renderer) textureGroup(tex gpu.TextureBinding) (hal.BindGroup, error) {
	if g, ok := r.textureGroups[tex]; ok {
		return g, nil
	}
	g, err := r.pipeline.NewTextureBindGroup(tex.Key(), tex.View())
	if err != nil {
		return nil, err
	}
	r.textureGroups[tex] = g
	return g, nil
}

// ReleaseTextures drops the bind groups of every texture. Call it before
// destroying a texture cache the renderer has drawn from.
func (r *Renderer) ReleaseTextures() {
	for tex, g := range r.textureGroups {
		r.device.DestroyBindGroup(g)
		delete(r.textureGroups, tex)
	}
}

func (r *Renderer) frameSize(root *document.Root) (uint32, uint32, error) {
	if r.opts.width > 0 && r.opts.height > 0 {
		return r.opts.width, r.opts.height, nil
	}
	op := root.General.OrthogonalProjection
	if op.Width > 0 && op.Height > 0 {
		return uint32(op.Width), uint32(op.Height), nil //nolint:gosec // checked positive
	}
	return 0, 0, ErrNoViewport
}

// projectionSize is the scene-unit extent mapped onto the frame: the scene's
// orthogonal projection when it has one, the frame size otherwise.
func projectionSize(root *document.Root, w, h uint32) (float32, float32) {
	op := root.General.OrthogonalProjection
	if op.Width > 0 && op.Height > 0 {
		return float32(op.Width), float32(op.Height)
	}
	return float32(w), float32(h)
}

func (r *Renderer) clearColor(root *document.Root) gputypes.Color {
	if !root.General.ClearEnabled {
		return r.opts.clear
	}
	c, ok := root.General.ClearColor.Vec3()
	if !ok {
		return r.opts.clear
	}
	return gputypes.Color{R: c[0], G: c[1], B: c[2], A: 1}
}

// Close releases everything the renderer created. Textures and the device
// are left alone. Safe to call more than once.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.ReleaseTextures()
	if r.frameGroup != nil {
		r.device.DestroyBindGroup(r.frameGroup)
		r.frameGroup = nil
	}
	if r.target != nil {
		r.target.Destroy()
	}
	if r.pipeline != nil {
		r.pipeline.Destroy()
	}
	if r.buffers != nil {
		r.buffers.Destroy()
	}
	r.log().Info("wallscene: renderer closed")
}
