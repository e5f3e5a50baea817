package gpu

import (
	"encoding/binary"
	"math"

	mgl "github.com/go-gl/mathgl/mgl32"
)

// DefaultFarZ bounds the depth range when the scene does not set one.
const DefaultFarZ = 1000

// depthCorrection remaps OpenGL clip depth [-1, 1] to WebGPU's [0, 1].
var depthCorrection = mgl.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Projection returns the column-major orthographic projection that maps scene
// units (origin bottom-left, y up) onto a width x height viewport. Depth
// covers [-farZ, farZ]; a non-positive farZ uses DefaultFarZ.
func Projection(width, height, farZ float32) [16]float32 {
	if farZ <= 0 {
		farZ = DefaultFarZ
	}
	return depthCorrection.Mul4(mgl.Ortho(0, width, 0, height, -farZ, farZ))
}

func encodeMatrix(m [16]float32) []byte {
	buf := make([]byte, ProjectionSize)
	for i, f := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
