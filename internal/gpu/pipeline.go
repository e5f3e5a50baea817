package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/sprite.wgsl
var spriteShaderSource string

// ShaderSourceWGSL returns the embedded sprite shader.
func ShaderSourceWGSL() string { return spriteShaderSource }

// CompileSPIRV compiles the sprite shader to SPIR-V words with naga.
func CompileSPIRV() ([]uint32, error) {
	spirvBytes, err := naga.Compile(spriteShaderSource)
	if err != nil {
		return nil, fmt.Errorf("compile sprite shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile sprite shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

// PipelineConfig selects how the sprite pipeline is built.
type PipelineConfig struct {
	// TargetFormat is the color attachment format.
	TargetFormat gputypes.TextureFormat

	// SPIRV hands the device naga-compiled SPIR-V instead of WGSL source.
	SPIRV bool
}

// SpritePipeline is the render pipeline for textured quads, along with its
// layouts and the shared sampler.
//
// Bind groups:
//
//	group(0) binding(0): projection uniform (vertex)
//	group(1) binding(0): sprite texture (fragment)
//	group(1) binding(1): sampler (fragment)
type SpritePipeline struct {
	device hal.Device
	format gputypes.TextureFormat

	shader        hal.ShaderModule
	frameLayout   hal.BindGroupLayout
	textureLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	sampler       hal.Sampler
	pipeline      hal.RenderPipeline
}

// NewSpritePipeline compiles the shader and creates the pipeline. On failure,
// partially created resources are released.
func NewSpritePipeline(device hal.Device, cfg PipelineConfig) (*SpritePipeline, error) {
	p := &SpritePipeline{device: device, format: cfg.TargetFormat}
	if err := p.create(cfg); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *SpritePipeline) create(cfg PipelineConfig) error { //nolint:funlen // GPU pipeline descriptors are inherently verbose
	source := hal.ShaderSource{WGSL: spriteShaderSource}
	if cfg.SPIRV {
		words, err := CompileSPIRV()
		if err != nil {
			return err
		}
		source = hal.ShaderSource{SPIRV: words}
	}
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "sprite_shader",
		Source: source,
	})
	if err != nil {
		return fmt.Errorf("create sprite shader: %w", err)
	}
	p.shader = shader

	frameLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sprite_frame_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create sprite frame layout: %w", err)
	}
	p.frameLayout = frameLayout

	textureLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sprite_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create sprite texture layout: %w", err)
	}
	p.textureLayout = textureLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "sprite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.frameLayout, p.textureLayout},
	})
	if err != nil {
		return fmt.Errorf("create sprite pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "sprite_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create sprite sampler: %w", err)
	}
	p.sampler = sampler

	// Quads are painted in submission order over premultiplied texels.
	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "sprite_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    []gputypes.VertexBufferLayout{VertexLayout()},
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create sprite pipeline: %w", err)
	}
	p.pipeline = pipeline
	return nil
}

// Format returns the color format the pipeline renders to.
func (p *SpritePipeline) Format() gputypes.TextureFormat { return p.format }

// NewFrameBindGroup binds the projection buffer of bs to group(0).
func (p *SpritePipeline) NewFrameBindGroup(bs *BufferSet) (hal.BindGroup, error) {
	bg, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "sprite_frame_bind",
		Layout: p.frameLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: bs.ProjectionBuffer().NativeHandle(), Offset: 0, Size: ProjectionSize,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create frame bind group: %w", err)
	}
	return bg, nil
}

// NewTextureBindGroup binds view and the shared sampler to group(1).
func (p *SpritePipeline) NewTextureBindGroup(label string, view hal.TextureView) (hal.BindGroup, error) {
	bg, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label,
		Layout: p.textureLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: p.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create texture bind group %s: %w", label, err)
	}
	return bg, nil
}

// Destroy releases pipeline resources in reverse creation order. Safe to call
// on a partially created pipeline.
func (p *SpritePipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.textureLayout != nil {
		p.device.DestroyBindGroupLayout(p.textureLayout)
		p.textureLayout = nil
	}
	if p.frameLayout != nil {
		p.device.DestroyBindGroupLayout(p.frameLayout)
		p.frameLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
