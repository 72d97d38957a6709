// Package packer computes the exact byte sizes of a compressed clip's data
// regions and writes each region into a caller-provided buffer in the
// decoder's layout. A size calculator and its paired writer must agree byte
// for byte, the writers verify this and fail instead of corrupting the
// offsets every later region byte depends on.
package packer

import (
	"errors"
	"fmt"

	"acl/pkg/anim/format"
	"acl/pkg/anim/track"
)

// Region write failures. Too much/too little indicate drift between a size
// calculator and its paired writer, the buffer contents must be discarded.
var (
	ErrWroteTooMuch   = errors.New("wrote too much data")
	ErrWroteTooLittle = errors.New("wrote too little data")
	ErrNoSamples      = errors.New("no samples to write")
)

// ConstantDataSize returns the byte size of the constant region, one packed
// sample per constant channel.
func ConstantDataSize(bones track.Bones) int {
	size := 0
	for i := range bones {
		bone := &bones[i]
		if bone.RotationConstant() {
			size += format.RotationSize(bone.Rotations.Format)
		}
		if bone.TranslationConstant() {
			size += format.VectorSize(bone.Translations.Format)
		}
	}
	return size
}

// AnimatedDataSize returns the byte size of the animated region and the
// width of one full-skeleton pose slice. The decoder needs the pose size to
// seek straight to a sample time, the caller must persist it next to the
// region.
func AnimatedDataSize(bones track.Bones) (size, poseSize int) {
	for i := range bones {
		bone := &bones[i]
		if bone.RotationAnimated() {
			sampleSize := format.RotationSize(bone.Rotations.Format)
			size += sampleSize * bone.Rotations.NumSamples
			poseSize += sampleSize
		}
		if bone.TranslationAnimated() {
			sampleSize := format.VectorSize(bone.Translations.Format)
			size += sampleSize * bone.Translations.NumSamples
			poseSize += sampleSize
		}
	}
	return size, poseSize
}

// FormatDataSize returns the byte size of the format table, one selector
// byte per animated channel of a variable-width family. Whether a family is
// variable is the clip-level choice passed in, the per-bone resolved
// formats only matter once the bytes are written.
func FormatDataSize(
	bones track.Bones,
	rotFormat format.RotationFormat,
	transFormat format.VectorFormat,
) int {
	rotationVariable := format.RotationFormatVariable(rotFormat)
	translationVariable := format.VectorFormatVariable(transFormat)

	size := 0
	for i := range bones {
		bone := &bones[i]
		if rotationVariable && bone.RotationAnimated() {
			size++
		}
		if translationVariable && bone.TranslationAnimated() {
			size++
		}
	}
	return size
}

// WriteConstantData packs sample zero of every constant channel into buf,
// bones ascending, rotation before translation. buf must be exactly
// ConstantDataSize long.
func WriteConstantData(bones track.Bones, buf []byte) error {
	w := regionWriter{buf: buf}
	for i := range bones {
		bone := &bones[i]
		if bone.RotationConstant() {
			w.write(bone.Rotations.Sample(0))
		}
		if bone.TranslationConstant() {
			w.write(bone.Translations.Sample(0))
		}
		if w.overflowed() {
			return fmt.Errorf("constant data: bone %d: %w", i, ErrWroteTooMuch)
		}
	}
	if !w.full() {
		return fmt.Errorf("constant data: %w", ErrWroteTooLittle)
	}
	return nil
}

// WriteAnimatedData packs every sample of every animated channel into buf.
// buf must be exactly the size returned by AnimatedDataSize.
//
// Data is sorted first by time, second by bone. This keeps all bones
// contiguous in memory when the decoder samples a particular time.
func WriteAnimatedData(bones track.Bones, buf []byte) error {
	numSamples := bones.SampleCount()
	if numSamples <= 1 {
		return fmt.Errorf("animated data: %d samples: %w", numSamples, ErrNoSamples)
	}

	w := regionWriter{buf: buf}
	for sampleIndex := 0; sampleIndex < numSamples; sampleIndex++ {
		for i := range bones {
			bone := &bones[i]
			if bone.RotationAnimated() {
				w.write(bone.Rotations.Sample(sampleIndex))
			}
			if bone.TranslationAnimated() {
				w.write(bone.Translations.Sample(sampleIndex))
			}
			if w.overflowed() {
				return fmt.Errorf("animated data: sample %d bone %d: %w",
					sampleIndex, i, ErrWroteTooMuch)
			}
		}
	}
	if !w.full() {
		return fmt.Errorf("animated data: %w", ErrWroteTooLittle)
	}
	return nil
}

// WriteFormatData emits the resolved format id of every animated channel
// belonging to a variable-width family, same traversal order as the other
// writers. buf must be exactly FormatDataSize long.
func WriteFormatData(
	bones track.Bones,
	rotFormat format.RotationFormat,
	transFormat format.VectorFormat,
	buf []byte,
) error {
	rotationVariable := format.RotationFormatVariable(rotFormat)
	translationVariable := format.VectorFormatVariable(transFormat)

	w := regionWriter{buf: buf}
	for i := range bones {
		bone := &bones[i]
		if rotationVariable && bone.RotationAnimated() {
			w.writeByte(byte(bone.Rotations.Format))
		}
		if translationVariable && bone.TranslationAnimated() {
			w.writeByte(byte(bone.Translations.Format))
		}
		if w.overflowed() {
			return fmt.Errorf("format data: bone %d: %w", i, ErrWroteTooMuch)
		}
	}
	if !w.full() {
		return fmt.Errorf("format data: %w", ErrWroteTooLittle)
	}
	return nil
}

// regionWriter copies bytes into a fixed destination and tracks the write
// position. The position keeps advancing past the destination end without
// copying so overflow can be detected at the caller's checkpoints.
type regionWriter struct {
	buf []byte
	pos int
}

func (w *regionWriter) write(p []byte) {
	if w.pos+len(p) <= len(w.buf) {
		copy(w.buf[w.pos:], p)
	}
	w.pos += len(p)
}

func (w *regionWriter) writeByte(b byte) {
	if w.pos < len(w.buf) {
		w.buf[w.pos] = b
	}
	w.pos++
}

func (w *regionWriter) overflowed() bool {
	return w.pos > len(w.buf)
}

func (w *regionWriter) full() bool {
	return w.pos == len(w.buf)
}
