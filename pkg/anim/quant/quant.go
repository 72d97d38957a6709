// Package quant packs rotation and translation samples into their
// fixed-width binary encodings and back.
//
// Quaternions drop W in every reduced format, the decoder reconstructs it
// from the unit length. The sub-float32 formats store each component as an
// unsigned fixed-point value in [-1, 1], translations must be normalized
// into that range before they can use a reduced format.
package quant

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/icza/bitio"

	"acl/pkg/anim/format"
)

// Quat is a rotation quaternion.
type Quat struct {
	X, Y, Z, W float64
}

// Vector is a translation vector.
type Vector struct {
	X, Y, Z float64
}

// PackRotation encodes q in the given fixed-width rotation format.
func PackRotation(q Quat, f format.RotationFormat) []byte {
	size := format.RotationSize(f)
	switch f {
	case format.Quat128:
		buf := make([]byte, size)
		putFloat32(buf[0:], q.X)
		putFloat32(buf[4:], q.Y)
		putFloat32(buf[8:], q.Z)
		putFloat32(buf[12:], q.W)
		return buf
	case format.Quat96:
		q = positiveW(q)
		buf := make([]byte, size)
		putFloat32(buf[0:], q.X)
		putFloat32(buf[4:], q.Y)
		putFloat32(buf[8:], q.Z)
		return buf
	case format.Quat48:
		q = positiveW(q)
		return packBits([3]float64{q.X, q.Y, q.Z}, [3]uint8{16, 16, 16})
	default: // Quat32, size already validated the format.
		q = positiveW(q)
		return packBits([3]float64{q.X, q.Y, q.Z}, [3]uint8{11, 11, 10})
	}
}

// UnpackRotation decodes one sample packed by PackRotation.
func UnpackRotation(buf []byte, f format.RotationFormat) Quat {
	switch f {
	case format.Quat128:
		return Quat{
			X: getFloat32(buf[0:]),
			Y: getFloat32(buf[4:]),
			Z: getFloat32(buf[8:]),
			W: getFloat32(buf[12:]),
		}
	case format.Quat96:
		return reconstructW(getFloat32(buf[0:]), getFloat32(buf[4:]), getFloat32(buf[8:]))
	case format.Quat48:
		v := unpackBits(buf, [3]uint8{16, 16, 16})
		return reconstructW(v[0], v[1], v[2])
	default:
		v := unpackBits(buf, [3]uint8{11, 11, 10})
		return reconstructW(v[0], v[1], v[2])
	}
}

// PackTranslation encodes v in the given fixed-width vector format.
func PackTranslation(v Vector, f format.VectorFormat) []byte {
	size := format.VectorSize(f)
	switch f {
	case format.Vector96:
		buf := make([]byte, size)
		putFloat32(buf[0:], v.X)
		putFloat32(buf[4:], v.Y)
		putFloat32(buf[8:], v.Z)
		return buf
	case format.Vector48:
		return packBits([3]float64{v.X, v.Y, v.Z}, [3]uint8{16, 16, 16})
	default: // Vector32.
		return packBits([3]float64{v.X, v.Y, v.Z}, [3]uint8{11, 11, 10})
	}
}

// UnpackTranslation decodes one sample packed by PackTranslation.
func UnpackTranslation(buf []byte, f format.VectorFormat) Vector {
	switch f {
	case format.Vector96:
		return Vector{
			X: getFloat32(buf[0:]),
			Y: getFloat32(buf[4:]),
			Z: getFloat32(buf[8:]),
		}
	case format.Vector48:
		v := unpackBits(buf, [3]uint8{16, 16, 16})
		return Vector{X: v[0], Y: v[1], Z: v[2]}
	default:
		v := unpackBits(buf, [3]uint8{11, 11, 10})
		return Vector{X: v[0], Y: v[1], Z: v[2]}
	}
}

// positiveW flips the quaternion sign so W is non-negative. q and -q encode
// the same rotation, this lets W be reconstructed without a sign bit.
func positiveW(q Quat) Quat {
	if q.W < 0 {
		return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
	}
	return q
}

func reconstructW(x, y, z float64) Quat {
	sq := 1 - x*x - y*y - z*z
	if sq < 0 {
		sq = 0
	}
	return Quat{X: x, Y: y, Z: z, W: math.Sqrt(sq)}
}

func packBits(values [3]float64, bits [3]uint8) []byte {
	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)
	for i, v := range values {
		w.TryWriteBits(packUnitFloat(v, bits[i]), bits[i])
	}
	if w.TryError == nil {
		w.TryError = w.Close()
	}
	if w.TryError != nil {
		// Writes to a bytes.Buffer cannot fail.
		panic(w.TryError)
	}
	return buf.Bytes()
}

func unpackBits(buf []byte, bits [3]uint8) [3]float64 {
	r := bitio.NewReader(bytes.NewReader(buf))
	var values [3]float64
	for i := range values {
		values[i] = unpackUnitFloat(r.TryReadBits(bits[i]), bits[i])
	}
	if r.TryError != nil {
		panic(r.TryError)
	}
	return values
}

// packUnitFloat maps [-1, 1] onto an unsigned fixed-point value of the
// given bit width, clamping out-of-range input.
func packUnitFloat(v float64, bits uint8) uint64 {
	if v < -1 {
		v = -1
	} else if v > 1 {
		v = 1
	}
	maxValue := float64(uint64(1)<<bits - 1)
	return uint64((v*0.5+0.5)*maxValue + 0.5)
}

func unpackUnitFloat(u uint64, bits uint8) float64 {
	maxValue := float64(uint64(1)<<bits - 1)
	return (float64(u)/maxValue)*2 - 1
}

func putFloat32(buf []byte, v float64) {
	binary.BigEndian.PutUint32(buf, math.Float32bits(float32(v)))
}

func getFloat32(buf []byte) float64 {
	return float64(math.Float32frombits(binary.BigEndian.Uint32(buf)))
}
