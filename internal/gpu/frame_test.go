package gpu

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestSubmitSurfaceFrame(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewSpritePipeline(device, PipelineConfig{TargetFormat: DefaultTargetFormat})
	if err != nil {
		t.Fatalf("NewSpritePipeline() error = %v", err)
	}
	defer p.Destroy()
	bs, err := NewBufferSet(device, queue, DefaultLimits())
	if err != nil {
		t.Fatalf("NewBufferSet() error = %v", err)
	}
	defer bs.Destroy()

	// Any view works as a surface stand-in.
	surface := NewTarget(device, DefaultTargetFormat)
	defer surface.Destroy()
	if err := surface.Ensure(16, 16); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	frameGroup, err := p.NewFrameBindGroup(bs)
	if err != nil {
		t.Fatalf("NewFrameBindGroup() error = %v", err)
	}
	defer device.DestroyBindGroup(frameGroup)

	first, err := bs.AppendQuad(make([]Vertex, 4), []uint16{0, 2, 1, 0, 3, 2})
	if err != nil {
		t.Fatalf("AppendQuad() error = %v", err)
	}
	texGroup, err := p.NewTextureBindGroup("surface_tex", surface.View())
	if err != nil {
		t.Fatalf("NewTextureBindGroup() error = %v", err)
	}
	defer device.DestroyBindGroup(texGroup)

	img, err := Submit(device, queue, p, bs, &Pass{
		View:       surface.View(),
		Clear:      gputypes.Color{A: 1},
		FrameGroup: frameGroup,
		Draws:      []BoundDraw{{Group: texGroup, FirstIndex: first, IndexCount: 6}},
	}, nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if img != nil {
		t.Error("surface frame returned an image")
	}
}

func TestSubmitOffscreenFrame(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewSpritePipeline(device, PipelineConfig{TargetFormat: DefaultTargetFormat})
	if err != nil {
		t.Fatalf("NewSpritePipeline() error = %v", err)
	}
	defer p.Destroy()
	bs, err := NewBufferSet(device, queue, DefaultLimits())
	if err != nil {
		t.Fatalf("NewBufferSet() error = %v", err)
	}
	defer bs.Destroy()

	target := NewTarget(device, DefaultTargetFormat)
	defer target.Destroy()
	if err := target.Ensure(70, 3); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	img, err := Submit(device, queue, p, bs, &Pass{View: target.View()}, target)
	if err != nil {
		if strings.HasPrefix(err.Error(), "readback") {
			t.Skipf("backend cannot read buffers back: %v", err)
		}
		t.Fatalf("Submit() error = %v", err)
	}
	if img == nil || img.Rect.Dx() != 70 || img.Rect.Dy() != 3 {
		t.Fatalf("Submit() image = %v", img)
	}
}

func TestSubmitRequiresView(t *testing.T) {
	_, err := Submit(nil, nil, nil, nil, &Pass{}, nil)
	if !errors.Is(err, ErrNoView) {
		t.Errorf("Submit() error = %v, want ErrNoView", err)
	}
}

func TestTargetEnsure(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	target := NewTarget(device, DefaultTargetFormat)
	defer target.Destroy()

	if err := target.Ensure(0, 10); err == nil {
		t.Error("Ensure(0, 10) succeeded")
	}
	if err := target.Ensure(64, 32); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	tex := target.Texture()
	if err := target.Ensure(64, 32); err != nil {
		t.Fatalf("second Ensure() error = %v", err)
	}
	if target.Texture() != tex {
		t.Error("texture recreated for unchanged size")
	}
	if err := target.Ensure(128, 32); err != nil {
		t.Fatalf("resize Ensure() error = %v", err)
	}
	if w, h := target.Size(); w != 128 || h != 32 {
		t.Errorf("Size() = (%d, %d), want (128, 32)", w, h)
	}
}

func TestAlignedBytesPerRow(t *testing.T) {
	tests := []struct{ width, want uint32 }{
		{1, 256},
		{64, 256},
		{65, 512},
		{800, 3328},
	}
	for _, tt := range tests {
		if got := alignedBytesPerRow(tt.width); got != tt.want {
			t.Errorf("alignedBytesPerRow(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestUnpadRows(t *testing.T) {
	// 1x2 image with 8-byte pitch: each row carries 4 bytes of padding.
	src := []byte{1, 2, 3, 4, 0, 0, 0, 0, 5, 6, 7, 8, 0, 0, 0, 0}
	dst := make([]byte, 8)
	unpadRows(dst, src, 1, 2, 8)
	if !bytes.Equal(dst, []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("unpadRows = %v", dst)
	}

	tight := []byte{9, 9, 9, 9}
	dst = make([]byte, 4)
	unpadRows(dst, tight, 1, 1, 4)
	if !bytes.Equal(dst, tight) {
		t.Errorf("unpadRows without padding = %v", dst)
	}
}
