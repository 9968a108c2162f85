package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToInt32(t *testing.T) {
	v, err := IntToInt32(42)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)

	_, err = IntToInt32(math.MaxInt32 + 1)
	assert.Error(t, err)

	_, err = IntToInt32(math.MinInt32 - 1)
	assert.Error(t, err)
}

func TestIntToInt32Clamped(t *testing.T) {
	tests := []struct {
		in   int
		want int32
	}{
		{0, 0},
		{10, 10},
		{-10, -10},
		{math.MaxInt32 + 1, math.MaxInt32},
		{math.MinInt32 - 1, math.MinInt32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IntToInt32Clamped(tt.in))
	}
}

func TestIntToUint32Clamped(t *testing.T) {
	tests := []struct {
		in   int
		want uint32
	}{
		{-1, 0},
		{0, 0},
		{5, 5},
		{math.MaxUint32 + 1, math.MaxUint32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IntToUint32Clamped(tt.in))
	}
}
