// Package gpu owns the GPU side of scene rendering: the vertex format, the
// vertex/index/projection buffer set, the sprite pipeline, the offscreen
// target and frame submission.
//
// Everything here talks to github.com/gogpu/wgpu/hal directly. Callers build
// quads with BufferSet.AppendQuad, turn the resulting DrawCalls into bound
// draws, and hand one Pass per frame to Submit.
//
// # Buffers
//
// A BufferSet holds three buffers sized from Limits:
//
//	vertex      MaxVertex * 24 bytes   Vertex | CopyDst
//	index       MaxIndex  * 2 bytes    Index  | CopyDst
//	projection  64 bytes               Uniform | CopyDst
//
// Indices are 16-bit, so MaxVertex may not exceed 65536.
package gpu
