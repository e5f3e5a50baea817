package wallscene

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/wallscene/assets"
	"github.com/gogpu/wallscene/document"
	"github.com/gogpu/wallscene/internal/draw"
	"github.com/gogpu/wallscene/internal/gpu"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	require.NoError(t, err)
	adapters := instance.EnumerateAdapters(nil)
	require.NotEmpty(t, adapters)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func vec(s string) *document.Vectors {
	v := document.Components(s)
	return &v
}

func spriteAt(image string) document.Object {
	return document.Object{
		Name:   strings.TrimSuffix(image, ".json"),
		Origin: vec("0 0 0"),
		Size:   vec("64 64"),
		Image:  &image,
	}
}

func sceneWith(objects ...document.Object) *document.Root {
	for i := range objects {
		objects[i].ID = int64(i + 1)
	}
	root := &document.Root{Objects: objects}
	root.General.OrthogonalProjection = document.OrthogonalProjection{Width: 320, Height: 240}
	return root
}

// sceneAssets uploads two textures on device: "tree" (used by two models)
// and "rock".
func sceneAssets(t *testing.T, device hal.Device, queue hal.Queue) (*assets.Index, *assets.Cache) {
	t.Helper()
	ix := assets.NewIndex()
	ix.Add("models/tree.json", "materials/tree.json")
	ix.Add("models/tree2.json", "materials/tree.json")
	ix.Add("models/rock.json", "materials/rock.json")

	up := assets.NewUploader(device, queue)
	cache := assets.NewCache()
	for _, key := range []string{"materials/tree.tex", "materials/rock.tex"} {
		tex, err := up.Upload(key, image.NewRGBA(image.Rect(0, 0, 4, 4)))
		require.NoError(t, err)
		cache.Put(tex)
	}
	t.Cleanup(func() { cache.Destroy(device) })
	return ix, cache
}

func TestNewRendererRejectsInvalidLimits(t *testing.T) {
	device, queue := createNoopDevice(t)
	_, err := NewRenderer(device, queue, WithLimits(Limits{MaxVertex: 4, MaxIndex: 12}))
	assert.ErrorIs(t, err, gpu.ErrInvalidLimits)
}

func TestNewRendererFromProviderWithoutHAL(t *testing.T) {
	_, err := NewRendererFromProvider(nil)
	assert.ErrorIs(t, err, ErrNoHALProvider)
}

func TestBuildQueueReport(t *testing.T) {
	device, queue := createNoopDevice(t)
	ix, cache := sceneAssets(t, device, queue)

	hidden := spriteAt("models/rock.json")
	hidden.Visible = document.WrappedVisible(false)
	noSize := spriteAt("models/tree.json")
	noSize.Size = nil
	root := sceneWith(
		spriteAt("models/tree.json"),
		hidden,
		noSize,
		spriteAt("models/unknown.json"),
		spriteAt("models/rock.json"),
	)

	r, err := NewRenderer(device, queue)
	require.NoError(t, err)
	defer r.Close()

	q, report := r.BuildQueue(root, ix, cache)
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 5, report.Objects)
	assert.Equal(t, 2, report.Queued)
	require.Len(t, report.Dropped, 3)
	assert.Equal(t, int64(2), report.Dropped[0].ID)
	assert.Equal(t, 1, report.DroppedBy(draw.ErrHidden))
	assert.Equal(t, 1, report.DroppedBy(draw.ErrMissingSize))
	assert.Equal(t, 1, report.DroppedBy(draw.ErrUnresolvedPath))
	assert.Equal(t, 3, report.DroppedBy(draw.ErrUnresolvable))
}

func TestRenderToView(t *testing.T) {
	device, queue := createNoopDevice(t)
	ix, cache := sceneAssets(t, device, queue)

	r, err := NewRenderer(device, queue)
	require.NoError(t, err)
	defer r.Close()

	surface := gpu.NewTarget(device, gpu.DefaultTargetFormat)
	defer surface.Destroy()
	require.NoError(t, surface.Ensure(320, 240))

	root := sceneWith(
		spriteAt("models/tree.json"),
		spriteAt("models/rock.json"),
		spriteAt("models/tree2.json"),
	)
	report, err := r.RenderToView(surface.View(), 320, 240, root, ix, cache)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Drawn)
	assert.Empty(t, report.Dropped)

	// One bind group per distinct texture, reused across frames.
	assert.Len(t, r.textureGroups, 2)
	_, err = r.RenderToView(surface.View(), 320, 240, root, ix, cache)
	require.NoError(t, err)
	assert.Len(t, r.textureGroups, 2)
	assert.Equal(t, uint32(12), r.buffers.VertexLen(), "buffers are reset every frame")

	r.ReleaseTextures()
	assert.Empty(t, r.textureGroups)
}

func TestRenderFrameCapacityExceeded(t *testing.T) {
	device, queue := createNoopDevice(t)
	ix, cache := sceneAssets(t, device, queue)

	r, err := NewRenderer(device, queue, WithLimits(LimitsForObjects(2)))
	require.NoError(t, err)
	defer r.Close()

	root := sceneWith(
		spriteAt("models/tree.json"),
		spriteAt("models/rock.json"),
		spriteAt("models/tree2.json"),
	)
	img, report, err := r.RenderFrame(root, ix, cache)
	assert.Nil(t, img)
	assert.ErrorIs(t, err, gpu.ErrCapacityExceeded)
	assert.Equal(t, 3, report.Queued)
	assert.Equal(t, 2, report.Drawn)
	assert.Equal(t, uint32(8), r.buffers.VertexLen())
}

func TestRenderFrame(t *testing.T) {
	device, queue := createNoopDevice(t)
	ix, cache := sceneAssets(t, device, queue)

	r, err := NewRenderer(device, queue, WithSize(64, 32))
	require.NoError(t, err)
	defer r.Close()

	img, report, err := r.RenderFrame(sceneWith(spriteAt("models/tree.json")), ix, cache)
	if err != nil && strings.Contains(err.Error(), "readback") {
		t.Skipf("backend cannot read buffers back: %v", err)
	}
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 32), img.Rect)
	assert.Equal(t, 1, report.Drawn)
}

func TestRenderFrameErrors(t *testing.T) {
	device, queue := createNoopDevice(t)

	r, err := NewRenderer(device, queue)
	require.NoError(t, err)

	_, _, err = r.RenderFrame(nil, nil, nil)
	assert.ErrorIs(t, err, ErrNilDocument)

	// No WithSize and no orthogonal projection.
	_, _, err = r.RenderFrame(&document.Root{}, nil, nil)
	assert.ErrorIs(t, err, ErrNoViewport)

	_, err = r.RenderToView(nil, 0, 0, &document.Root{}, nil, nil)
	assert.ErrorIs(t, err, ErrNoViewport)

	r.Close()
	r.Close()
	_, _, err = r.RenderFrame(&document.Root{}, nil, nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRenderFrameRequiresRGBATarget(t *testing.T) {
	device, queue := createNoopDevice(t)
	r, err := NewRenderer(device, queue, WithTargetFormat(gputypes.TextureFormatBGRA8Unorm))
	require.NoError(t, err)
	defer r.Close()

	_, _, err = r.RenderFrame(sceneWith(), nil, nil)
	assert.True(t, errors.Is(err, ErrOffscreenFormat), "err = %v", err)
}

func TestClearColor(t *testing.T) {
	device, queue := createNoopDevice(t)
	fallback := gputypes.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}
	r, err := NewRenderer(device, queue, WithClearColor(fallback))
	require.NoError(t, err)
	defer r.Close()

	root := sceneWith()
	root.General.ClearColor = document.Components("0.5 0.25 1")
	assert.Equal(t, fallback, r.clearColor(root), "clear color applies only when enabled")

	root.General.ClearEnabled = true
	assert.Equal(t, gputypes.Color{R: 0.5, G: 0.25, B: 1, A: 1}, r.clearColor(root))

	root.General.ClearColor = document.Components("red")
	assert.Equal(t, fallback, r.clearColor(root))
}

func TestProjectionSize(t *testing.T) {
	root := sceneWith()
	w, h := projectionSize(root, 1920, 1080)
	assert.Equal(t, [2]float32{320, 240}, [2]float32{w, h})

	root.General.OrthogonalProjection = document.OrthogonalProjection{}
	w, h = projectionSize(root, 1920, 1080)
	assert.Equal(t, [2]float32{1920, 1080}, [2]float32{w, h})
}
