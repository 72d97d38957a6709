// Package clip assembles packed track regions into a single compressed
// clip blob and reads them back.
//
// Blob layout: header, format table, constant region, animated region. The
// header records every region size so the decoder can slice the blob
// without scanning.
package clip

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"acl/pkg/anim/format"
	"acl/pkg/anim/packer"
	"acl/pkg/anim/track"
)

const version = 1

const headerSize = 29

// Header is the fixed-size clip header.
type Header struct {
	NumBones          uint16
	NumSamples        uint32
	SampleRate        float32
	RotationFormat    format.RotationFormat
	TranslationFormat format.VectorFormat
	FormatDataSize    uint32
	ConstantDataSize  uint32
	AnimatedDataSize  uint32
	AnimatedPoseSize  uint32
}

// Size marshaled size.
func (h *Header) Size() int {
	return headerSize
}

// Marshal header.
func (h Header) Marshal() []byte {
	out := make([]byte, headerSize)
	pos := 0

	out[pos] = version
	pos++

	binary.BigEndian.PutUint16(out[pos:], h.NumBones)
	pos += 2

	binary.BigEndian.PutUint32(out[pos:], h.NumSamples)
	pos += 4

	binary.BigEndian.PutUint32(out[pos:], math.Float32bits(h.SampleRate))
	pos += 4

	out[pos] = byte(h.RotationFormat)
	pos++

	out[pos] = byte(h.TranslationFormat)
	pos++

	binary.BigEndian.PutUint32(out[pos:], h.FormatDataSize)
	pos += 4

	binary.BigEndian.PutUint32(out[pos:], h.ConstantDataSize)
	pos += 4

	binary.BigEndian.PutUint32(out[pos:], h.AnimatedDataSize)
	pos += 4

	binary.BigEndian.PutUint32(out[pos:], h.AnimatedPoseSize)

	return out
}

// Unmarshal errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrTruncated          = errors.New("clip too short")
	ErrInvalidSize        = errors.New("clip size does not match header")
)

// Unmarshal header from the start of buf.
func (h *Header) Unmarshal(buf []byte) error {
	if len(buf) < headerSize {
		return ErrTruncated
	}
	if buf[0] != version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, buf[0])
	}

	h.NumBones = binary.BigEndian.Uint16(buf[1:])
	h.NumSamples = binary.BigEndian.Uint32(buf[3:])
	h.SampleRate = math.Float32frombits(binary.BigEndian.Uint32(buf[7:]))
	h.RotationFormat = format.RotationFormat(buf[11])
	h.TranslationFormat = format.VectorFormat(buf[12])
	h.FormatDataSize = binary.BigEndian.Uint32(buf[13:])
	h.ConstantDataSize = binary.BigEndian.Uint32(buf[17:])
	h.AnimatedDataSize = binary.BigEndian.Uint32(buf[21:])
	h.AnimatedPoseSize = binary.BigEndian.Uint32(buf[25:])
	return nil
}

// Write compresses bones into one blob. rotFormat and transFormat are the
// clip-level family choices, each bone carries its own resolved format.
func Write(
	bones track.Bones,
	sampleRate float32,
	rotFormat format.RotationFormat,
	transFormat format.VectorFormat,
) ([]byte, error) {
	formatSize := packer.FormatDataSize(bones, rotFormat, transFormat)
	constantSize := packer.ConstantDataSize(bones)
	animatedSize, poseSize := packer.AnimatedDataSize(bones)

	header := Header{
		NumBones:          uint16(len(bones)),
		NumSamples:        uint32(bones.SampleCount()),
		SampleRate:        sampleRate,
		RotationFormat:    rotFormat,
		TranslationFormat: transFormat,
		FormatDataSize:    uint32(formatSize),
		ConstantDataSize:  uint32(constantSize),
		AnimatedDataSize:  uint32(animatedSize),
		AnimatedPoseSize:  uint32(poseSize),
	}

	blob := make([]byte, headerSize+formatSize+constantSize+animatedSize)
	copy(blob, header.Marshal())
	pos := headerSize

	err := packer.WriteFormatData(bones, rotFormat, transFormat, blob[pos:pos+formatSize])
	if err != nil {
		return nil, fmt.Errorf("write format data: %w", err)
	}
	pos += formatSize

	if err := packer.WriteConstantData(bones, blob[pos:pos+constantSize]); err != nil {
		return nil, fmt.Errorf("write constant data: %w", err)
	}
	pos += constantSize

	if animatedSize > 0 {
		if err := packer.WriteAnimatedData(bones, blob[pos:]); err != nil {
			return nil, fmt.Errorf("write animated data: %w", err)
		}
	}

	return blob, nil
}

// Reader gives region access into one clip blob.
type Reader struct {
	Header Header

	formatData   []byte
	constantData []byte
	animatedData []byte
}

// NewReader parses a clip blob. The blob is retained, not copied.
func NewReader(blob []byte) (*Reader, error) {
	r := &Reader{}
	if err := r.Header.Unmarshal(blob); err != nil {
		return nil, err
	}

	formatSize := int(r.Header.FormatDataSize)
	constantSize := int(r.Header.ConstantDataSize)
	animatedSize := int(r.Header.AnimatedDataSize)
	if len(blob) != headerSize+formatSize+constantSize+animatedSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSize, len(blob))
	}
	if animatedSize != int(r.Header.AnimatedPoseSize)*int(r.Header.NumSamples) {
		return nil, fmt.Errorf("%w: animated region %d bytes", ErrInvalidSize, animatedSize)
	}

	pos := headerSize
	r.formatData = blob[pos : pos+formatSize]
	pos += formatSize
	r.constantData = blob[pos : pos+constantSize]
	pos += constantSize
	r.animatedData = blob[pos:]
	return r, nil
}

// FormatData returns the per-track format table.
func (r *Reader) FormatData() []byte {
	return r.formatData
}

// ConstantData returns the constant region.
func (r *Reader) ConstantData() []byte {
	return r.constantData
}

// ErrBadSampleIndex sample index out of range.
var ErrBadSampleIndex = errors.New("sample index out of range")

// Pose returns the contiguous animated slice of one sample time, every
// animated channel in bone order.
func (r *Reader) Pose(sampleIndex int) ([]byte, error) {
	if sampleIndex < 0 || sampleIndex >= int(r.Header.NumSamples) {
		return nil, fmt.Errorf("%w: %d", ErrBadSampleIndex, sampleIndex)
	}
	poseSize := int(r.Header.AnimatedPoseSize)
	return r.animatedData[sampleIndex*poseSize : (sampleIndex+1)*poseSize], nil
}
