package draw

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/wallscene/internal/gpu"
)

// ErrQueueConsumed is returned when a queue is submitted twice.
var ErrQueueConsumed = errors.New("draw: queue already submitted")

// QuadIndices are the two triangles of a quad, relative to its first vertex.
var QuadIndices = [6]uint16{0, 2, 1, 0, 3, 2}

// quadUVs are the texture coordinates of the four corners, in corner order.
var quadUVs = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Queue is the ordered, single-use list of objects drawn in one frame.
// Insertion order is paint order.
type Queue struct {
	objects   []*DrawTextureObject
	submitted bool
}

// NewQueue returns an empty queue with room for n objects.
func NewQueue(n int) *Queue {
	return &Queue{objects: make([]*DrawTextureObject, 0, n)}
}

// Push appends obj.
func (q *Queue) Push(obj *DrawTextureObject) {
	q.objects = append(q.objects, obj)
}

// Len returns the number of queued objects.
func (q *Queue) Len() int { return len(q.objects) }

// Objects returns the queued objects in order.
func (q *Queue) Objects() []*DrawTextureObject { return q.objects }

// Submit writes every object into bs as a quad, in order, and returns one
// draw call per object. Object i is tagged with texture index i.
//
// The queue is consumed whether or not Submit succeeds. If an object does not
// fit, submission stops at that object and the error wraps
// gpu.ErrCapacityExceeded; the draw calls for the objects already written are
// returned alongside it.
func (q *Queue) Submit(bs *gpu.BufferSet) ([]gpu.DrawCall, error) {
	if q.submitted {
		return nil, ErrQueueConsumed
	}
	q.submitted = true
	objects := q.objects
	q.objects = nil

	calls := make([]gpu.DrawCall, 0, len(objects))
	for i, obj := range objects {
		textureIndex := uint32(i) //nolint:gosec // bounded by buffer capacity
		verts := QuadVertices(obj, textureIndex)
		first, err := bs.AppendQuad(verts[:], QuadIndices[:])
		if err != nil {
			return calls, fmt.Errorf("draw: object %d (%q): %w", obj.ID, obj.Name, err)
		}
		calls = append(calls, gpu.DrawCall{
			Texture:      obj.Texture,
			TextureIndex: textureIndex,
			FirstIndex:   first,
			IndexCount:   uint32(len(QuadIndices)),
		})
	}
	return calls, nil
}

// QuadVertices returns the four corners of obj's quad.
//
// The quad is size, centered on (0, 0), rotated about Z by angles.z degrees
// (counter-clockwise), and moved so that its unrotated bottom-left corner
// sits at origin.xy. Every corner takes origin.z as its depth. Scale and the
// X and Y rotations are resolved but not applied.
func QuadVertices(obj *DrawTextureObject, textureIndex uint32) [4]gpu.Vertex {
	w, h := obj.Size[0], obj.Size[1]
	corners := [4]mgl64.Vec2{
		{-w / 2, h / 2},
		{w / 2, h / 2},
		{w / 2, -h / 2},
		{-w / 2, -h / 2},
	}
	rot := mgl64.Rotate2D(mgl64.DegToRad(obj.Angles[2]))
	center := mgl64.Vec2{obj.Origin[0] + w/2, obj.Origin[1] + h/2}

	var out [4]gpu.Vertex
	for i, c := range corners {
		p := rot.Mul2x1(c).Add(center)
		out[i] = gpu.Vertex{
			Position:     [3]float32{float32(p[0]), float32(p[1]), float32(obj.Origin[2])},
			UV:           quadUVs[i],
			TextureIndex: textureIndex,
		}
	}
	return out
}
