// Package track models per-bone rotation and translation sample streams as
// handed to the packer by the encoder.
package track

import (
	"acl/pkg/anim/format"
)

// Type classifies one channel of a bone.
type Type uint8

// Channel categories. A channel is animated iff its value varies across the
// clip, constant and default apply only to non-animated channels.
const (
	TypeDefault  Type = iota // Bind-pose value, contributes no data.
	TypeConstant             // Single value for the whole clip.
	TypeAnimated             // One value per sample.
)

func (t Type) String() string {
	switch t {
	case TypeDefault:
		return "default"
	case TypeConstant:
		return "constant"
	case TypeAnimated:
		return "animated"
	}
	return "unknown"
}

// Rotations is one bone's quantized rotation track. Data holds NumSamples
// packed samples back to back, SampleSize bytes each. A constant track
// holds a single sample, a default track holds none.
type Rotations struct {
	Type       Type
	Format     format.RotationFormat
	NumSamples int
	Data       []byte
}

// SampleSize is the packed byte width of one sample.
func (r *Rotations) SampleSize() int {
	return format.RotationSize(r.Format)
}

// Sample returns the packed bytes of sample i.
func (r *Rotations) Sample(i int) []byte {
	size := r.SampleSize()
	return r.Data[i*size : (i+1)*size]
}

// Translations is one bone's quantized translation track, same layout as
// Rotations.
type Translations struct {
	Type       Type
	Format     format.VectorFormat
	NumSamples int
	Data       []byte
}

// SampleSize is the packed byte width of one sample.
func (t *Translations) SampleSize() int {
	return format.VectorSize(t.Format)
}

// Sample returns the packed bytes of sample i.
func (t *Translations) Sample(i int) []byte {
	size := t.SampleSize()
	return t.Data[i*size : (i+1)*size]
}

// Bone holds both channels of one skeleton bone.
type Bone struct {
	Rotations    Rotations
	Translations Translations
}

// RotationAnimated reports whether the rotation channel varies over time.
func (b *Bone) RotationAnimated() bool {
	return b.Rotations.Type == TypeAnimated
}

// TranslationAnimated reports whether the translation channel varies over time.
func (b *Bone) TranslationAnimated() bool {
	return b.Translations.Type == TypeAnimated
}

// RotationConstant reports whether the rotation channel holds a single
// non-default value.
func (b *Bone) RotationConstant() bool {
	return b.Rotations.Type == TypeConstant
}

// TranslationConstant reports whether the translation channel holds a
// single non-default value.
func (b *Bone) TranslationConstant() bool {
	return b.Translations.Type == TypeConstant
}

// Bones is the ordered bone list of one clip. The slice index is the bone
// index, it is the join key the decoder uses to associate region bytes back
// to skeleton bones and must traverse identically in every region.
type Bones []Bone

// SampleCount returns the sample count shared by every animated channel in
// the clip, zero if nothing is animated. Count consistency across channels
// is the encoder's responsibility.
func (bones Bones) SampleCount() int {
	for i := range bones {
		if bones[i].RotationAnimated() {
			return bones[i].Rotations.NumSamples
		}
		if bones[i].TranslationAnimated() {
			return bones[i].Translations.NumSamples
		}
	}
	return 0
}
