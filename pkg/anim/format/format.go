// Package format enumerates the quantization formats for packed rotation
// and translation samples and knows their encoded widths.
package format

import "fmt"

// RotationFormat is the encoding scheme for one rotation sample.
type RotationFormat uint8

// Rotation formats. Quat128 through Quat32 are fixed-width. QuatVariable is
// a clip-level family selector, each track resolves to one of the
// fixed-width formats and records it in the format table.
const (
	Quat128      RotationFormat = iota // Full precision, 4x float32.
	Quat96                             // W dropped, 3x float32.
	Quat48                             // W dropped, 3x 16 bits.
	Quat32                             // W dropped, 11+11+10 bits.
	QuatVariable                       // Width chosen per track.
)

// VectorFormat is the encoding scheme for one translation sample.
type VectorFormat uint8

// Vector formats, mirroring the rotation families.
const (
	Vector96       VectorFormat = iota // Full precision, 3x float32.
	Vector48                           // 3x 16 bits.
	Vector32                           // 11+11+10 bits.
	VectorVariable                     // Width chosen per track.
)

// RotationSize returns the packed byte width of a fixed-width rotation
// format. Widths must be known before writing since the region sizes are
// computed from them. Calling it with a variable or unknown format is a
// contract violation by the caller and panics.
func RotationSize(f RotationFormat) int {
	switch f {
	case Quat128:
		return 16
	case Quat96:
		return 12
	case Quat48:
		return 6
	case Quat32:
		return 4
	default:
		panic(fmt.Sprintf("rotation format %d has no fixed size", f))
	}
}

// VectorSize returns the packed byte width of a fixed-width vector format.
// Same contract as RotationSize.
func VectorSize(f VectorFormat) int {
	switch f {
	case Vector96:
		return 12
	case Vector48:
		return 6
	case Vector32:
		return 4
	default:
		panic(fmt.Sprintf("vector format %d has no fixed size", f))
	}
}

// RotationFormatVariable reports whether the format requires a per-track
// selector byte in the format table.
func RotationFormatVariable(f RotationFormat) bool {
	return f == QuatVariable
}

// VectorFormatVariable reports whether the format requires a per-track
// selector byte in the format table.
func VectorFormatVariable(f VectorFormat) bool {
	return f == VectorVariable
}

func (f RotationFormat) String() string {
	switch f {
	case Quat128:
		return "quat128"
	case Quat96:
		return "quat96"
	case Quat48:
		return "quat48"
	case Quat32:
		return "quat32"
	case QuatVariable:
		return "quatVariable"
	}
	return fmt.Sprintf("unknown(%d)", uint8(f))
}

// ParseRotationFormat maps a config string to a rotation format.
func ParseRotationFormat(s string) (RotationFormat, error) {
	for _, f := range []RotationFormat{Quat128, Quat96, Quat48, Quat32, QuatVariable} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown rotation format: %q", s)
}

// ParseVectorFormat maps a config string to a vector format.
func ParseVectorFormat(s string) (VectorFormat, error) {
	for _, f := range []VectorFormat{Vector96, Vector48, Vector32, VectorVariable} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown vector format: %q", s)
}

func (f VectorFormat) String() string {
	switch f {
	case Vector96:
		return "vector96"
	case Vector48:
		return "vector48"
	case Vector32:
		return "vector32"
	case VectorVariable:
		return "vectorVariable"
	}
	return fmt.Sprintf("unknown(%d)", uint8(f))
}
