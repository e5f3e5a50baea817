package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// VertexStride is the byte size of one encoded Vertex:
// position (3 x f32) + uv (2 x f32) + texture_index (u32) = 24 bytes.
const VertexStride = 24

// IndexSize is the byte size of one index. Indices are 16-bit.
const IndexSize = 2

// Attribute offsets within a vertex record.
const (
	positionOffset     = 0
	uvOffset           = 12
	textureIndexOffset = 20
)

// Vertex is one corner of a sprite quad.
type Vertex struct {
	Position     [3]float32
	UV           [2]float32
	TextureIndex uint32
}

// Encode writes v into dst in little-endian order. dst must hold at least
// VertexStride bytes.
func (v Vertex) Encode(dst []byte) {
	_ = dst[VertexStride-1]
	binary.LittleEndian.PutUint32(dst[0:], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(dst[4:], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(dst[8:], math.Float32bits(v.Position[2]))
	binary.LittleEndian.PutUint32(dst[uvOffset:], math.Float32bits(v.UV[0]))
	binary.LittleEndian.PutUint32(dst[uvOffset+4:], math.Float32bits(v.UV[1]))
	binary.LittleEndian.PutUint32(dst[textureIndexOffset:], v.TextureIndex)
}

// DecodeVertex is the inverse of Vertex.Encode.
func DecodeVertex(src []byte) Vertex {
	_ = src[VertexStride-1]
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(src[off:])) }
	return Vertex{
		Position:     [3]float32{f(0), f(4), f(8)},
		UV:           [2]float32{f(uvOffset), f(uvOffset + 4)},
		TextureIndex: binary.LittleEndian.Uint32(src[textureIndexOffset:]),
	}
}

// encodeVertices packs verts into a freshly allocated byte slice.
func encodeVertices(verts []Vertex) []byte {
	buf := make([]byte, len(verts)*VertexStride)
	for i, v := range verts {
		v.Encode(buf[i*VertexStride:])
	}
	return buf
}

// encodeIndices packs 16-bit indices little-endian.
func encodeIndices(indices []uint16) []byte {
	buf := make([]byte, len(indices)*IndexSize)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(buf[i*IndexSize:], idx)
	}
	return buf
}

// VertexLayout describes Vertex to the sprite pipeline.
func VertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: positionOffset, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: uvOffset, ShaderLocation: 1},
			{Format: gputypes.VertexFormatUint32, Offset: textureIndexOffset, ShaderLocation: 2},
		},
	}
}
