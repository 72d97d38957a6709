package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRotationSize(t *testing.T) {
	cases := []struct {
		format   RotationFormat
		expected int
	}{
		{Quat128, 16},
		{Quat96, 12},
		{Quat48, 6},
		{Quat32, 4},
	}
	for _, tc := range cases {
		t.Run(tc.format.String(), func(t *testing.T) {
			require.Equal(t, tc.expected, RotationSize(tc.format))
		})
	}

	t.Run("variablePanics", func(t *testing.T) {
		require.Panics(t, func() { RotationSize(QuatVariable) })
	})
}

func TestVectorSize(t *testing.T) {
	cases := []struct {
		format   VectorFormat
		expected int
	}{
		{Vector96, 12},
		{Vector48, 6},
		{Vector32, 4},
	}
	for _, tc := range cases {
		t.Run(tc.format.String(), func(t *testing.T) {
			require.Equal(t, tc.expected, VectorSize(tc.format))
		})
	}

	t.Run("variablePanics", func(t *testing.T) {
		require.Panics(t, func() { VectorSize(VectorVariable) })
	})
}

func TestFormatVariable(t *testing.T) {
	require.True(t, RotationFormatVariable(QuatVariable))
	require.False(t, RotationFormatVariable(Quat48))
	require.True(t, VectorFormatVariable(VectorVariable))
	require.False(t, VectorFormatVariable(Vector96))
}

func TestParseFormat(t *testing.T) {
	rf, err := ParseRotationFormat("quat48")
	require.NoError(t, err)
	require.Equal(t, Quat48, rf)

	vf, err := ParseVectorFormat("vectorVariable")
	require.NoError(t, err)
	require.Equal(t, VectorVariable, vf)

	_, err = ParseRotationFormat("bad")
	require.Error(t, err)

	_, err = ParseVectorFormat("bad")
	require.Error(t, err)
}
