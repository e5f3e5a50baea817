package gpu

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoView is returned when a frame has no color attachment.
var ErrNoView = errors.New("gpu: frame has no target view")

// fenceTimeout bounds the wait for a submitted frame.
const fenceTimeout = 5 * time.Second

// TextureBinding is a sampled texture a draw call refers to.
type TextureBinding interface {
	Key() string
	View() hal.TextureView
}

// DrawCall is one indexed draw of a quad written to a BufferSet.
type DrawCall struct {
	Texture      TextureBinding
	TextureIndex uint32
	FirstIndex   uint32
	IndexCount   uint32
}

// BoundDraw is a DrawCall whose texture has been resolved to a bind group.
type BoundDraw struct {
	Group      hal.BindGroup
	FirstIndex uint32
	IndexCount uint32
}

// Pass describes the single render pass of a frame.
type Pass struct {
	// View is the color attachment. For offscreen frames it is the view of
	// the readback target.
	View  hal.TextureView
	Clear gputypes.Color

	// FrameGroup binds the projection at group(0).
	FrameGroup hal.BindGroup
	Draws      []BoundDraw
}

// RecordDraws records every draw of pass into rp. Draws are issued in order,
// so later quads paint over earlier ones.
func RecordDraws(rp hal.RenderPassEncoder, p *SpritePipeline, bs *BufferSet, pass *Pass) {
	if len(pass.Draws) == 0 {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, pass.FrameGroup, nil)
	rp.SetVertexBuffer(0, bs.VertexBuffer(), 0)
	rp.SetIndexBuffer(bs.IndexBuffer(), gputypes.IndexFormatUint16, 0)
	for _, d := range pass.Draws {
		rp.SetBindGroup(1, d.Group, nil)
		rp.DrawIndexed(d.IndexCount, 1, d.FirstIndex, 0, 0)
	}
}

// Submit encodes pass, submits it and waits for the GPU.
//
// When readback is non-nil its texture is copied to a staging buffer after the
// pass and returned as an image; pass.View must then be readback's view.
// Otherwise the frame targets a caller-owned view (a surface) and the
// returned image is nil.
func Submit(device hal.Device, queue hal.Queue, p *SpritePipeline, bs *BufferSet, pass *Pass, readback *Target) (*image.RGBA, error) { //nolint:funlen // encode, copy, submit and read back in one place
	if pass.View == nil {
		return nil, ErrNoView
	}

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "scene_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("scene_frame"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "scene_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       pass.View,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: pass.Clear,
		}},
	})
	RecordDraws(rp, p, bs, pass)
	rp.End()

	var (
		staging hal.Buffer
		pitch   uint32
		w, h    uint32
	)
	if readback != nil {
		w, h = readback.Size()
		pitch = alignedBytesPerRow(w)
		staging, err = device.CreateBuffer(&hal.BufferDescriptor{
			Label: "scene_staging",
			Size:  uint64(pitch) * uint64(h),
			Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			encoder.DiscardEncoding()
			return nil, fmt.Errorf("create staging buffer: %w", err)
		}
		defer device.DestroyBuffer(staging)

		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: readback.Texture(),
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		encoder.CopyTextureToBuffer(readback.Texture(), staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: h},
			TextureBase:  hal.ImageCopyTexture{Texture: readback.Texture(), MipLevel: 0},
			Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		}})
		// Back to attachment usage for the next frame's pass.
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: readback.Texture(),
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	fence, err := device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	defer device.DestroyFence(fence)

	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return nil, fmt.Errorf("wait for GPU: %w", err)
	}
	if !fenceOK {
		return nil, fmt.Errorf("wait for GPU: timed out after %v", fenceTimeout)
	}

	if readback == nil {
		return nil, nil //nolint:nilnil // surface frames have no image
	}

	raw := make([]byte, uint64(pitch)*uint64(h))
	if err := queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	unpadRows(img.Pix, raw, w, h, pitch)
	return img, nil
}
