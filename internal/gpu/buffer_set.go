package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Buffer set errors.
var (
	// ErrCapacityExceeded is returned when a quad does not fit in the
	// remaining vertex or index capacity. Nothing is written.
	ErrCapacityExceeded = errors.New("gpu: buffer capacity exceeded")

	// ErrInvalidLimits is returned by Limits.Validate.
	ErrInvalidLimits = errors.New("gpu: invalid buffer limits")

	// ErrBufferSetDestroyed is returned when writing to a destroyed set.
	ErrBufferSetDestroyed = errors.New("gpu: buffer set has been destroyed")
)

// DefaultMaxObjects is the number of quads a default buffer set holds.
const DefaultMaxObjects = 1024

// ProjectionSize is the byte size of the projection uniform (mat4x4<f32>).
const ProjectionSize = 64

// maxIndexedVertex is the number of vertices addressable by 16-bit indices.
const maxIndexedVertex = 1 << 16

// Limits bounds the vertex and index buffers of a BufferSet, in elements.
type Limits struct {
	MaxVertex uint32
	MaxIndex  uint32
}

// DefaultLimits returns limits sized for DefaultMaxObjects quads.
func DefaultLimits() Limits {
	return LimitsForObjects(DefaultMaxObjects)
}

// LimitsForObjects returns limits sized for n quads.
func LimitsForObjects(n uint32) Limits {
	return Limits{MaxVertex: 4 * n, MaxIndex: 6 * n}
}

// MaxObjects returns the number of quads the limits hold.
func (l Limits) MaxObjects() uint32 { return l.MaxVertex / 4 }

// Validate checks that the vertex and index limits describe the same number
// of whole quads and that every vertex is addressable by a 16-bit index.
func (l Limits) Validate() error {
	switch {
	case l.MaxVertex == 0 || l.MaxIndex == 0:
		return fmt.Errorf("%w: zero capacity (vertex=%d index=%d)", ErrInvalidLimits, l.MaxVertex, l.MaxIndex)
	case l.MaxVertex%4 != 0 || l.MaxIndex%6 != 0 || l.MaxVertex/4 != l.MaxIndex/6:
		return fmt.Errorf("%w: vertex=%d index=%d do not describe whole quads", ErrInvalidLimits, l.MaxVertex, l.MaxIndex)
	case l.MaxVertex > maxIndexedVertex:
		return fmt.Errorf("%w: %d vertices exceed 16-bit indices", ErrInvalidLimits, l.MaxVertex)
	}
	return nil
}

// writeFunc uploads data into buf at a byte offset.
type writeFunc func(buf hal.Buffer, offset uint64, data []byte) error

// BufferSet owns the vertex, index, and projection buffers of the sprite
// renderer, plus the cursors that track how much of each has been written
// this frame. Writes go straight to the queue; nothing is staged on the CPU.
//
// A BufferSet is not safe for concurrent use.
type BufferSet struct {
	device hal.Device
	write  writeFunc
	limits Limits

	vertex     hal.Buffer
	index      hal.Buffer
	projection hal.Buffer

	vertexLen uint32
	indexLen  uint32
}

// NewBufferSet validates limits and allocates the three buffers.
// On failure, partially created buffers are released.
func NewBufferSet(device hal.Device, queue hal.Queue, limits Limits) (*BufferSet, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	bs := &BufferSet{
		device: device,
		write: func(buf hal.Buffer, offset uint64, data []byte) error {
			return queue.WriteBuffer(buf, offset, data)
		},
		limits: limits,
	}

	var err error
	bs.vertex, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "sprite_vertices",
		Size:  uint64(limits.MaxVertex) * VertexStride,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}
	bs.index, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "sprite_indices",
		Size:  uint64(limits.MaxIndex) * IndexSize,
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		bs.Destroy()
		return nil, fmt.Errorf("create index buffer: %w", err)
	}
	bs.projection, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "sprite_projection",
		Size:  ProjectionSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		bs.Destroy()
		return nil, fmt.Errorf("create projection buffer: %w", err)
	}

	slogger().Debug("gpu: buffer set allocated",
		"max_vertex", limits.MaxVertex,
		"max_index", limits.MaxIndex,
		"vertex_bytes", uint64(limits.MaxVertex)*VertexStride,
		"index_bytes", uint64(limits.MaxIndex)*IndexSize,
	)
	return bs, nil
}

// Limits returns the capacity the set was created with.
func (bs *BufferSet) Limits() Limits { return bs.limits }

// VertexLen returns the number of vertices written since the last Reset.
func (bs *BufferSet) VertexLen() uint32 { return bs.vertexLen }

// IndexLen returns the number of indices written since the last Reset.
func (bs *BufferSet) IndexLen() uint32 { return bs.indexLen }

// Reset rewinds both cursors. Buffer contents are left as they are and
// overwritten by the next frame.
func (bs *BufferSet) Reset() {
	bs.vertexLen = 0
	bs.indexLen = 0
}

// AppendQuad writes verts and indices at the current cursors and advances
// them. indices are relative to the quad and are rebased onto the current
// vertex cursor, so the caller never sees absolute positions.
//
// The returned first index is the position of the quad's first index in the
// index buffer. If either buffer lacks room, ErrCapacityExceeded is returned
// and nothing is written. A failed queue write leaves the cursors where they
// were.
func (bs *BufferSet) AppendQuad(verts []Vertex, indices []uint16) (firstIndex uint32, err error) {
	if bs.vertex == nil {
		return 0, ErrBufferSetDestroyed
	}
	nv, ni := uint32(len(verts)), uint32(len(indices)) //nolint:gosec // quads are tiny
	if bs.vertexLen+nv > bs.limits.MaxVertex || bs.indexLen+ni > bs.limits.MaxIndex {
		return 0, fmt.Errorf("%w: have %d/%d vertices %d/%d indices, need %d more vertices %d more indices",
			ErrCapacityExceeded, bs.vertexLen, bs.limits.MaxVertex, bs.indexLen, bs.limits.MaxIndex, nv, ni)
	}

	base := uint16(bs.vertexLen) //nolint:gosec // MaxVertex <= 65536 by Validate
	rebased := make([]uint16, ni)
	for i, idx := range indices {
		rebased[i] = base + idx
	}

	if err := bs.write(bs.vertex, uint64(bs.vertexLen)*VertexStride, encodeVertices(verts)); err != nil {
		return 0, fmt.Errorf("write vertices: %w", err)
	}
	if err := bs.write(bs.index, uint64(bs.indexLen)*IndexSize, encodeIndices(rebased)); err != nil {
		return 0, fmt.Errorf("write indices: %w", err)
	}

	firstIndex = bs.indexLen
	bs.vertexLen += nv
	bs.indexLen += ni
	return firstIndex, nil
}

// WriteProjection uploads a column-major 4x4 matrix to the projection buffer.
func (bs *BufferSet) WriteProjection(m [16]float32) error {
	if bs.projection == nil {
		return ErrBufferSetDestroyed
	}
	if err := bs.write(bs.projection, 0, encodeMatrix(m)); err != nil {
		return fmt.Errorf("write projection: %w", err)
	}
	return nil
}

// VertexBuffer returns the vertex buffer.
func (bs *BufferSet) VertexBuffer() hal.Buffer { return bs.vertex }

// IndexBuffer returns the index buffer.
func (bs *BufferSet) IndexBuffer() hal.Buffer { return bs.index }

// ProjectionBuffer returns the projection uniform buffer.
func (bs *BufferSet) ProjectionBuffer() hal.Buffer { return bs.projection }

// Destroy releases all buffers. Safe to call more than once.
func (bs *BufferSet) Destroy() {
	if bs.device == nil {
		return
	}
	if bs.projection != nil {
		bs.device.DestroyBuffer(bs.projection)
		bs.projection = nil
	}
	if bs.index != nil {
		bs.device.DestroyBuffer(bs.index)
		bs.index = nil
	}
	if bs.vertex != nil {
		bs.device.DestroyBuffer(bs.vertex)
		bs.vertex = nil
	}
	bs.Reset()
}
