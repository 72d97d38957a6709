// Package encoder turns raw bone tracks into a compressed clip blob. It
// classifies each channel as default, constant or animated, resolves the
// per-bone quantization formats, and hands the packed streams to the clip
// writer.
package encoder

import (
	"errors"
	"fmt"

	"acl/pkg/anim/clip"
	"acl/pkg/anim/format"
	"acl/pkg/anim/quant"
	"acl/pkg/anim/track"
	"acl/pkg/log"
)

// RawBone is one bone's uncompressed tracks. An animated channel must hold
// one sample per clip sample, shorter tracks collapse to constant or
// default.
type RawBone struct {
	Name            string       `json:"name"`
	BindRotation    quant.Quat   `json:"bindRotation"`
	BindTranslation quant.Vector `json:"bindTranslation"`

	Rotations    []quant.Quat   `json:"rotations"`
	Translations []quant.Vector `json:"translations"`
}

// RawClip is an uncompressed animation clip.
type RawClip struct {
	Name       string    `json:"name"`
	SampleRate float32   `json:"sampleRate"`
	Bones      []RawBone `json:"bones"`
}

// Options control format selection and classification.
type Options struct {
	// Clip-level family choice per channel type.
	RotationFormat    format.RotationFormat
	TranslationFormat format.VectorFormat

	// Channels this close to the bind pose or to their own first sample
	// collapse to default or constant.
	Threshold float64

	// Largest per-component quantization error a variable track may
	// accept when its format is resolved.
	Precision float64
}

// DefaultOptions .
func DefaultOptions() Options {
	return Options{
		RotationFormat:    format.QuatVariable,
		TranslationFormat: format.Vector96,
		Threshold:         0.00001,
		Precision:         0.001,
	}
}

// ErrSampleCount animated channels disagree on the sample count.
var ErrSampleCount = errors.New("inconsistent sample count")

// Compress classifies, quantizes and packs a raw clip.
func Compress(raw *RawClip, opts Options, logger *log.Logger) ([]byte, error) {
	bones, err := BuildBones(raw, opts)
	if err != nil {
		return nil, err
	}

	for i := range bones {
		logger.Debug().Src("encoder").Clip(raw.Name).Msgf(
			"bone %d: rotation %v, translation %v",
			i, bones[i].Rotations.Type, bones[i].Translations.Type)
	}

	blob, err := clip.Write(bones, raw.SampleRate, opts.RotationFormat, opts.TranslationFormat)
	if err != nil {
		return nil, fmt.Errorf("write clip: %w", err)
	}

	logger.Info().Src("encoder").Clip(raw.Name).Msgf(
		"%d bones, %d samples, %d bytes",
		len(bones), bones.SampleCount(), len(blob))

	return blob, nil
}

// BuildBones classifies and quantizes every channel of the raw clip. The
// result feeds the packer directly.
func BuildBones(raw *RawClip, opts Options) (track.Bones, error) {
	numSamples := rawSampleCount(raw)

	bones := make(track.Bones, len(raw.Bones))
	for i := range raw.Bones {
		rawBone := &raw.Bones[i]

		rotations, err := buildRotations(rawBone, numSamples, opts)
		if err != nil {
			return nil, fmt.Errorf("bone %v: %w", rawBone.Name, err)
		}
		translations, err := buildTranslations(rawBone, numSamples, opts)
		if err != nil {
			return nil, fmt.Errorf("bone %v: %w", rawBone.Name, err)
		}

		bones[i] = track.Bone{Rotations: rotations, Translations: translations}
	}
	return bones, nil
}

// rawSampleCount is the longest channel length, the count every animated
// channel must match.
func rawSampleCount(raw *RawClip) int {
	count := 0
	for i := range raw.Bones {
		if n := len(raw.Bones[i].Rotations); n > count {
			count = n
		}
		if n := len(raw.Bones[i].Translations); n > count {
			count = n
		}
	}
	return count
}

func buildRotations(rawBone *RawBone, numSamples int, opts Options) (track.Rotations, error) {
	samples := rawBone.Rotations

	if allQuatsNear(samples, rawBone.BindRotation, opts.Threshold) {
		return track.Rotations{Type: track.TypeDefault}, nil
	}

	constant := len(samples) == 1 ||
		(len(samples) > 1 && allQuatsNear(samples[1:], samples[0], opts.Threshold))

	f := opts.RotationFormat
	if format.RotationFormatVariable(f) {
		if constant {
			// Constant channels have no format table slot, the decoder
			// expects full precision for them under a variable family.
			f = format.Quat96
		} else {
			f = resolveRotationFormat(samples, opts.Precision)
		}
	}

	if constant {
		return track.Rotations{
			Type:       track.TypeConstant,
			Format:     f,
			NumSamples: 1,
			Data:       quant.PackRotation(samples[0], f),
		}, nil
	}

	if len(samples) != numSamples {
		return track.Rotations{}, fmt.Errorf("%w: rotations %d of %d",
			ErrSampleCount, len(samples), numSamples)
	}

	data := make([]byte, 0, numSamples*format.RotationSize(f))
	for _, q := range samples {
		data = append(data, quant.PackRotation(q, f)...)
	}
	return track.Rotations{
		Type:       track.TypeAnimated,
		Format:     f,
		NumSamples: numSamples,
		Data:       data,
	}, nil
}

func buildTranslations(rawBone *RawBone, numSamples int, opts Options) (track.Translations, error) {
	samples := rawBone.Translations

	if allVectorsNear(samples, rawBone.BindTranslation, opts.Threshold) {
		return track.Translations{Type: track.TypeDefault}, nil
	}

	constant := len(samples) == 1 ||
		(len(samples) > 1 && allVectorsNear(samples[1:], samples[0], opts.Threshold))

	f := opts.TranslationFormat
	if format.VectorFormatVariable(f) {
		if constant {
			f = format.Vector96
		} else {
			f = resolveVectorFormat(samples, opts.Precision)
		}
	}

	if constant {
		return track.Translations{
			Type:       track.TypeConstant,
			Format:     f,
			NumSamples: 1,
			Data:       quant.PackTranslation(samples[0], f),
		}, nil
	}

	if len(samples) != numSamples {
		return track.Translations{}, fmt.Errorf("%w: translations %d of %d",
			ErrSampleCount, len(samples), numSamples)
	}

	data := make([]byte, 0, numSamples*format.VectorSize(f))
	for _, v := range samples {
		data = append(data, quant.PackTranslation(v, f)...)
	}
	return track.Translations{
		Type:       track.TypeAnimated,
		Format:     f,
		NumSamples: numSamples,
		Data:       data,
	}, nil
}

// resolveRotationFormat picks the smallest reduced format that stays within
// the precision budget for every sample. Quat96 always qualifies.
func resolveRotationFormat(samples []quant.Quat, precision float64) format.RotationFormat {
	for _, f := range []format.RotationFormat{format.Quat32, format.Quat48} {
		if rotationError(samples, f) <= precision {
			return f
		}
	}
	return format.Quat96
}

func resolveVectorFormat(samples []quant.Vector, precision float64) format.VectorFormat {
	for _, f := range []format.VectorFormat{format.Vector32, format.Vector48} {
		if vectorError(samples, f) <= precision {
			return f
		}
	}
	return format.Vector96
}

func rotationError(samples []quant.Quat, f format.RotationFormat) float64 {
	worst := 0.0
	for _, q := range samples {
		actual := quant.UnpackRotation(quant.PackRotation(q, f), f)
		if e := quatDistance(q, actual); e > worst {
			worst = e
		}
	}
	return worst
}

func vectorError(samples []quant.Vector, f format.VectorFormat) float64 {
	worst := 0.0
	for _, v := range samples {
		actual := quant.UnpackTranslation(quant.PackTranslation(v, f), f)
		if e := vectorDistance(v, actual); e > worst {
			worst = e
		}
	}
	return worst
}

func allQuatsNear(samples []quant.Quat, ref quant.Quat, threshold float64) bool {
	for _, q := range samples {
		if quatDistance(q, ref) > threshold {
			return false
		}
	}
	return true
}

func allVectorsNear(samples []quant.Vector, ref quant.Vector, threshold float64) bool {
	for _, v := range samples {
		if vectorDistance(v, ref) > threshold {
			return false
		}
	}
	return true
}

// quatDistance is the largest component delta, sign-aligned since q and -q
// are the same rotation.
func quatDistance(a, b quant.Quat) float64 {
	dot := a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
	if dot < 0 {
		b = quant.Quat{X: -b.X, Y: -b.Y, Z: -b.Z, W: -b.W}
	}
	worst := abs(a.X - b.X)
	if e := abs(a.Y - b.Y); e > worst {
		worst = e
	}
	if e := abs(a.Z - b.Z); e > worst {
		worst = e
	}
	if e := abs(a.W - b.W); e > worst {
		worst = e
	}
	return worst
}

func vectorDistance(a, b quant.Vector) float64 {
	worst := abs(a.X - b.X)
	if e := abs(a.Y - b.Y); e > worst {
		worst = e
	}
	if e := abs(a.Z - b.Z); e > worst {
		worst = e
	}
	return worst
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
