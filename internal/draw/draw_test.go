package draw

import (
	"math"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/wallscene/assets"
	"github.com/gogpu/wallscene/document"
	"github.com/gogpu/wallscene/internal/gpu"
)

// scene holds an index and cache with two materials, "tree" and "rock".
type scene struct {
	index *assets.Index
	cache *assets.Cache
}

func newScene() scene {
	ix := assets.NewIndex()
	ix.Add("models/tree.json", "materials/tree.json")
	ix.Add("models/tree2.json", "materials/tree.json")
	ix.Add("models/rock.json", "materials/rock.json")
	ix.Add("models/ghost.json", "materials/ghost.json")

	c := assets.NewCache()
	c.Put(assets.NewTexture("materials/tree.tex", 64, 64, nil, nil))
	c.Put(assets.NewTexture("materials/rock.tex", 32, 16, nil, nil))
	return scene{index: ix, cache: c}
}

func vec(s string) *document.Vectors {
	v := document.Components(s)
	return &v
}

func str(s string) *string { return &s }

func spriteObject(id int64, image string) document.Object {
	return document.Object{
		ID:     id,
		Name:   "sprite",
		Origin: vec("10 20 0"),
		Size:   vec("100 50"),
		Image:  str(image),
	}
}

func newBufferSet(t *testing.T, objects uint32) *gpu.BufferSet {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	require.NoError(t, err)
	adapters := instance.EnumerateAdapters(nil)
	require.NotEmpty(t, adapters)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	require.NoError(t, err)

	bs, err := gpu.NewBufferSet(openDev.Device, openDev.Queue, gpu.LimitsForObjects(objects))
	require.NoError(t, err)
	t.Cleanup(func() {
		bs.Destroy()
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return bs
}

func TestResolve(t *testing.T) {
	s := newScene()
	obj := spriteObject(7, "models/tree.json")

	d, err := Resolve(&obj, s.index, s.cache)
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.ID)
	assert.Equal(t, [3]float64{10, 20, 0}, d.Origin)
	assert.Equal(t, [2]float64{100, 50}, d.Size)
	assert.Equal(t, DefaultAngles, d.Angles)
	assert.Equal(t, DefaultScale, d.Scale)
	assert.Equal(t, "materials/tree.tex", d.Texture.Key())
}

func TestResolveFailures(t *testing.T) {
	s := newScene()
	tests := []struct {
		name   string
		mutate func(*document.Object)
		want   error
	}{
		{"missing origin", func(o *document.Object) { o.Origin = nil }, ErrMissingOrigin},
		{"missing size", func(o *document.Object) { o.Size = nil }, ErrMissingSize},
		{"missing both", func(o *document.Object) { o.Origin, o.Size = nil, nil }, ErrMissingOrigin},
		{"malformed origin", func(o *document.Object) { o.Origin = vec("1 x 3") }, ErrMalformedVector},
		{"short origin", func(o *document.Object) { o.Origin = vec("1 2") }, ErrMalformedVector},
		{"malformed size", func(o *document.Object) { o.Size = vec("") }, ErrMalformedVector},
		{"malformed angles", func(o *document.Object) { o.Angles = vec("0 0 nope") }, ErrMalformedVector},
		{"malformed scale", func(o *document.Object) { o.Scale = vec("1 1") }, ErrMalformedVector},
		{"no image", func(o *document.Object) { o.Image = nil }, ErrMissingImage},
		{"empty image", func(o *document.Object) { o.Image = str("") }, ErrMissingImage},
		{"unknown image", func(o *document.Object) { o.Image = str("models/none.json") }, ErrUnresolvedPath},
		{"texture not loaded", func(o *document.Object) { o.Image = str("models/ghost.json") }, ErrUnresolvedTexture},
		{"plain hidden", func(o *document.Object) { o.Visible = document.Visible(false) }, ErrHidden},
		{"wrapped hidden", func(o *document.Object) { o.Visible = document.WrappedVisible(false) }, ErrHidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := spriteObject(1, "models/tree.json")
			tt.mutate(&obj)
			d, err := Resolve(&obj, s.index, s.cache)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrUnresolvable)
		})
	}
}

func TestResolveVisibilityReadings(t *testing.T) {
	s := newScene()
	tests := []struct {
		name    string
		visible document.Visibility
		drawn   bool
	}{
		{"absent", document.Visibility{}, true},
		{"plain true", document.Visible(true), true},
		{"wrapped true", document.WrappedVisible(true), true},
		{"other shape", document.Visibility{Kind: document.VisibilityOther}, true},
		// The plain reading of a wrapped value is true, and vice versa, so
		// each encoding alone decides.
		{"plain false", document.Visible(false), false},
		{"wrapped false", document.WrappedVisible(false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := spriteObject(1, "models/tree.json")
			obj.Visible = tt.visible
			_, err := Resolve(&obj, s.index, s.cache)
			assert.Equal(t, tt.drawn, err == nil, "err = %v", err)
		})
	}
}

func TestResolveIgnoresDocumentAlpha(t *testing.T) {
	s := newScene()
	obj := spriteObject(1, "models/tree.json")
	half := 0.5
	obj.Alpha = &half

	d, err := Resolve(&obj, s.index, s.cache)
	require.NoError(t, err)
	// Document alpha is not applied; objects always draw opaque.
	assert.InDelta(t, 1.0, d.Alpha, 0)
}

func TestResolveBroadcastsScalarVectors(t *testing.T) {
	s := newScene()
	obj := spriteObject(1, "models/tree.json")
	origin := document.Scalar(5)
	size := document.Scalar(8)
	obj.Origin, obj.Size = &origin, &size

	d, err := Resolve(&obj, s.index, s.cache)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{5, 5, 5}, d.Origin)
	assert.Equal(t, [2]float64{8, 8}, d.Size)
}

func TestResolveSharesTexture(t *testing.T) {
	s := newScene()
	a := spriteObject(1, "models/tree.json")
	b := spriteObject(2, "models/tree2.json")

	da, err := Resolve(&a, s.index, s.cache)
	require.NoError(t, err)
	db, err := Resolve(&b, s.index, s.cache)
	require.NoError(t, err)
	assert.Same(t, da.Texture, db.Texture)
}

func cornerSet(verts [4]gpu.Vertex) [][2]float64 {
	out := make([][2]float64, 0, 4)
	for _, v := range verts {
		out = append(out, [2]float64{
			math.Round(float64(v.Position[0])*1e4) / 1e4,
			math.Round(float64(v.Position[1])*1e4) / 1e4,
		})
	}
	return out
}

func TestQuadVerticesUnrotatedSquare(t *testing.T) {
	const w = 40
	obj := &DrawTextureObject{
		Origin: [3]float64{3, 7, 0.25},
		Size:   [2]float64{w, w},
		Scale:  DefaultScale,
	}
	verts := QuadVertices(obj, 0)

	assert.ElementsMatch(t, [][2]float64{
		{3, 7}, {3 + w, 7}, {3 + w, 7 + w}, {3, 7 + w},
	}, cornerSet(verts))
	for _, v := range verts {
		assert.InDelta(t, 0.25, v.Position[2], 1e-6)
	}
	// Top-left corner samples the top-left texel.
	assert.Equal(t, [2]float32{0, 0}, verts[0].UV)
	assert.InDelta(t, 3, verts[0].Position[0], 1e-4)
	assert.InDelta(t, 7+w, verts[0].Position[1], 1e-4)
}

func TestQuadVerticesRotated(t *testing.T) {
	obj := &DrawTextureObject{
		Size:   [2]float64{20, 10},
		Scale:  DefaultScale,
		Angles: [3]float64{30, 45, 90},
	}
	verts := QuadVertices(obj, 3)

	// 90° about the quad's center (10, 5) swaps the extents.
	assert.ElementsMatch(t, [][2]float64{
		{5, -5}, {15, -5}, {15, 15}, {5, 15},
	}, cornerSet(verts))
	// Counter-clockwise: the top-left corner (-10, 5) lands at (-5, -10).
	assert.InDelta(t, 5, verts[0].Position[0], 1e-4)
	assert.InDelta(t, -5, verts[0].Position[1], 1e-4)
	for _, v := range verts {
		assert.Equal(t, uint32(3), v.TextureIndex)
	}
}

func TestQuadVerticesIgnoresScale(t *testing.T) {
	s := newScene()
	obj := spriteObject(1, "models/tree.json")
	obj.Origin, obj.Size, obj.Scale = vec("0 0 0"), vec("40 40"), vec("2 2 1")

	d, err := Resolve(&obj, s.index, s.cache)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{2, 2, 1}, d.Scale)
	assert.ElementsMatch(t, [][2]float64{
		{0, 0}, {40, 0}, {40, 40}, {0, 40},
	}, cornerSet(QuadVertices(d, 0)))
}

func TestQueueSubmit(t *testing.T) {
	s := newScene()
	bs := newBufferSet(t, 8)

	q := NewQueue(0)
	images := []string{"models/tree.json", "models/rock.json", "models/tree2.json"}
	for i, img := range images {
		obj := spriteObject(int64(i), img)
		d, err := Resolve(&obj, s.index, s.cache)
		require.NoError(t, err)
		q.Push(d)
	}
	require.Equal(t, 3, q.Len())

	calls, err := q.Submit(bs)
	require.NoError(t, err)
	assert.Equal(t, uint32(12), bs.VertexLen())
	assert.Equal(t, uint32(18), bs.IndexLen())

	require.Len(t, calls, 3)
	for i, c := range calls {
		assert.Equal(t, uint32(i), c.TextureIndex)
		assert.Equal(t, uint32(6*i), c.FirstIndex)
		assert.Equal(t, uint32(6), c.IndexCount)
	}
	assert.Equal(t, "materials/rock.tex", calls[1].Texture.Key())
	assert.Same(t, calls[0].Texture, calls[2].Texture)

	_, err = q.Submit(bs)
	assert.ErrorIs(t, err, ErrQueueConsumed)
	assert.Equal(t, 0, q.Len())
}

func TestQueueSubmitCapacityExceeded(t *testing.T) {
	s := newScene()
	bs := newBufferSet(t, 2)

	q := NewQueue(3)
	for i := 0; i < 3; i++ {
		obj := spriteObject(int64(i), "models/tree.json")
		d, err := Resolve(&obj, s.index, s.cache)
		require.NoError(t, err)
		q.Push(d)
	}

	calls, err := q.Submit(bs)
	assert.ErrorIs(t, err, gpu.ErrCapacityExceeded)
	assert.Len(t, calls, 2)
	assert.Equal(t, uint32(8), bs.VertexLen())
	assert.Equal(t, uint32(12), bs.IndexLen())
}
