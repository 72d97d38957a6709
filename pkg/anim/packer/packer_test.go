package packer

import (
	"testing"

	"acl/pkg/anim/format"
	"acl/pkg/anim/track"

	"github.com/stretchr/testify/require"
)

// seqBytes returns n packed samples of sampleSize bytes with a recognizable
// per-sample pattern.
func seqBytes(first byte, numSamples, sampleSize int) []byte {
	buf := make([]byte, numSamples*sampleSize)
	for i := range buf {
		buf[i] = first + byte(i)
	}
	return buf
}

// testBones is the reference clip used across tests.
//
// Bone 0: rotation constant quat48, translation default.
// Bone 1: rotation animated quat32 (3 samples), translation animated
// vector48 (3 samples) under a variable clip family.
func testBones() track.Bones {
	return track.Bones{
		{
			Rotations: track.Rotations{
				Type:       track.TypeConstant,
				Format:     format.Quat48,
				NumSamples: 1,
				Data:       seqBytes(0x10, 1, 6),
			},
			Translations: track.Translations{
				Type: track.TypeDefault,
			},
		},
		{
			Rotations: track.Rotations{
				Type:       track.TypeAnimated,
				Format:     format.Quat32,
				NumSamples: 3,
				Data:       seqBytes(0x40, 3, 4),
			},
			Translations: track.Translations{
				Type:       track.TypeAnimated,
				Format:     format.Vector48,
				NumSamples: 3,
				Data:       seqBytes(0x80, 3, 6),
			},
		},
	}
}

func TestConstantDataSize(t *testing.T) {
	require.Equal(t, 6, ConstantDataSize(testBones()))
}

func TestAnimatedDataSize(t *testing.T) {
	size, poseSize := AnimatedDataSize(testBones())
	require.Equal(t, 30, size)     // 3 samples x (4+6).
	require.Equal(t, 10, poseSize) // quat32 + vector48.
}

func TestFormatDataSize(t *testing.T) {
	bones := testBones()

	t.Run("translationVariable", func(t *testing.T) {
		// Only bone 1 translation is animated under a variable family.
		size := FormatDataSize(bones, format.Quat32, format.VectorVariable)
		require.Equal(t, 1, size)
	})
	t.Run("bothVariable", func(t *testing.T) {
		size := FormatDataSize(bones, format.QuatVariable, format.VectorVariable)
		require.Equal(t, 2, size)
	})
	t.Run("bothFixed", func(t *testing.T) {
		size := FormatDataSize(bones, format.Quat32, format.Vector48)
		require.Equal(t, 0, size)
	})
}

func TestWriteConstantData(t *testing.T) {
	bones := testBones()

	buf := make([]byte, ConstantDataSize(bones))
	err := WriteConstantData(bones, buf)
	require.NoError(t, err)

	// Bone 0 rotation sample 0 only, bone 1 contributes nothing.
	expected := []byte{0x10, 0x11, 0x12, 0x13, 0x14, 0x15}
	require.Equal(t, expected, buf)
}

func TestWriteAnimatedData(t *testing.T) {
	bones := testBones()

	size, poseSize := AnimatedDataSize(bones)
	buf := make([]byte, size)
	err := WriteAnimatedData(bones, buf)
	require.NoError(t, err)

	expected := []byte{
		// Sample 0: bone 1 rotation, bone 1 translation.
		0x40, 0x41, 0x42, 0x43,
		0x80, 0x81, 0x82, 0x83, 0x84, 0x85,
		// Sample 1.
		0x44, 0x45, 0x46, 0x47,
		0x86, 0x87, 0x88, 0x89, 0x8a, 0x8b,
		// Sample 2.
		0x48, 0x49, 0x4a, 0x4b,
		0x8c, 0x8d, 0x8e, 0x8f, 0x90, 0x91,
	}
	require.Equal(t, expected, buf)

	// Pose-slice contiguity, slice t holds exactly the samples of time t.
	for sampleIndex := 0; sampleIndex < 3; sampleIndex++ {
		slice := buf[sampleIndex*poseSize : (sampleIndex+1)*poseSize]
		expectedSlice := append(
			append([]byte{}, bones[1].Rotations.Sample(sampleIndex)...),
			bones[1].Translations.Sample(sampleIndex)...)
		require.Equal(t, expectedSlice, slice)
	}
}

func TestWriteFormatData(t *testing.T) {
	bones := testBones()

	t.Run("translationVariable", func(t *testing.T) {
		size := FormatDataSize(bones, format.Quat32, format.VectorVariable)
		buf := make([]byte, size)
		err := WriteFormatData(bones, format.Quat32, format.VectorVariable, buf)
		require.NoError(t, err)

		// Bone 1 translation resolved to vector48.
		require.Equal(t, []byte{byte(format.Vector48)}, buf)
	})
	t.Run("bothVariable", func(t *testing.T) {
		size := FormatDataSize(bones, format.QuatVariable, format.VectorVariable)
		buf := make([]byte, size)
		err := WriteFormatData(bones, format.QuatVariable, format.VectorVariable, buf)
		require.NoError(t, err)

		// Bone 1 rotation then bone 1 translation.
		require.Equal(t, []byte{byte(format.Quat32), byte(format.Vector48)}, buf)
	})
}

func TestAllDefault(t *testing.T) {
	bones := track.Bones{
		{}, // Zero value of both channels is TypeDefault.
		{},
	}

	require.Equal(t, 0, ConstantDataSize(bones))
	size, poseSize := AnimatedDataSize(bones)
	require.Equal(t, 0, size)
	require.Equal(t, 0, poseSize)
	require.Equal(t, 0, FormatDataSize(bones, format.QuatVariable, format.VectorVariable))

	require.NoError(t, WriteConstantData(bones, nil))
	require.NoError(t, WriteFormatData(bones, format.QuatVariable, format.VectorVariable, nil))
}

func TestWriteAnimatedDataNoSamples(t *testing.T) {
	t.Run("zeroSamples", func(t *testing.T) {
		bones := track.Bones{{}}
		err := WriteAnimatedData(bones, nil)
		require.ErrorIs(t, err, ErrNoSamples)
	})
	t.Run("oneSample", func(t *testing.T) {
		// A single sample should have been classified constant upstream.
		bones := track.Bones{{
			Rotations: track.Rotations{
				Type:       track.TypeAnimated,
				Format:     format.Quat32,
				NumSamples: 1,
				Data:       seqBytes(0, 1, 4),
			},
		}}
		buf := make([]byte, 4)
		err := WriteAnimatedData(bones, buf)
		require.ErrorIs(t, err, ErrNoSamples)
		require.Equal(t, make([]byte, 4), buf)
	})
}

func TestSizeWriterDrift(t *testing.T) {
	bones := testBones()

	t.Run("constantTooSmall", func(t *testing.T) {
		buf := make([]byte, ConstantDataSize(bones)-1)
		err := WriteConstantData(bones, buf)
		require.ErrorIs(t, err, ErrWroteTooMuch)
	})
	t.Run("constantTooBig", func(t *testing.T) {
		buf := make([]byte, ConstantDataSize(bones)+1)
		err := WriteConstantData(bones, buf)
		require.ErrorIs(t, err, ErrWroteTooLittle)
	})
	t.Run("animatedTooSmall", func(t *testing.T) {
		size, _ := AnimatedDataSize(bones)
		err := WriteAnimatedData(bones, make([]byte, size-1))
		require.ErrorIs(t, err, ErrWroteTooMuch)
	})
	t.Run("animatedTooBig", func(t *testing.T) {
		size, _ := AnimatedDataSize(bones)
		err := WriteAnimatedData(bones, make([]byte, size+1))
		require.ErrorIs(t, err, ErrWroteTooLittle)
	})
	t.Run("formatTooSmall", func(t *testing.T) {
		err := WriteFormatData(bones, format.QuatVariable, format.VectorVariable, make([]byte, 1))
		require.ErrorIs(t, err, ErrWroteTooMuch)
	})
	t.Run("formatTooBig", func(t *testing.T) {
		err := WriteFormatData(bones, format.QuatVariable, format.VectorVariable, make([]byte, 3))
		require.ErrorIs(t, err, ErrWroteTooLittle)
	})
}

// TestConstantRoundTrip re-associates constant region bytes to bones by the
// same traversal and expects the original samples back.
func TestConstantRoundTrip(t *testing.T) {
	bones := track.Bones{
		{
			Rotations: track.Rotations{
				Type:       track.TypeConstant,
				Format:     format.Quat96,
				NumSamples: 1,
				Data:       seqBytes(0x01, 1, 12),
			},
			Translations: track.Translations{
				Type:       track.TypeConstant,
				Format:     format.Vector32,
				NumSamples: 1,
				Data:       seqBytes(0x20, 1, 4),
			},
		},
		{
			Translations: track.Translations{
				Type:       track.TypeConstant,
				Format:     format.Vector96,
				NumSamples: 1,
				Data:       seqBytes(0x30, 1, 12),
			},
		},
	}

	buf := make([]byte, ConstantDataSize(bones))
	require.NoError(t, WriteConstantData(bones, buf))

	pos := 0
	for i := range bones {
		bone := &bones[i]
		if bone.RotationConstant() {
			size := bone.Rotations.SampleSize()
			require.Equal(t, bone.Rotations.Sample(0), buf[pos:pos+size])
			pos += size
		}
		if bone.TranslationConstant() {
			size := bone.Translations.SampleSize()
			require.Equal(t, bone.Translations.Sample(0), buf[pos:pos+size])
			pos += size
		}
	}
	require.Equal(t, len(buf), pos)
}
