package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckMultiplyOverflow(t *testing.T) {
	assert.NoError(t, CheckMultiplyOverflow(0, math.MaxUint64))
	assert.NoError(t, CheckMultiplyOverflow(math.MaxUint64, 0))
	assert.NoError(t, CheckMultiplyOverflow(math.MaxUint64, 1))
	assert.NoError(t, CheckMultiplyOverflow(1<<32, 1<<31))

	assert.Error(t, CheckMultiplyOverflow(1<<32, 1<<32))
	assert.Error(t, CheckMultiplyOverflow(math.MaxUint64, 2))
}

func TestSafeMultiply(t *testing.T) {
	n, err := SafeMultiply(1<<20, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, uint64(1)<<40, n)

	n, err = SafeMultiply(math.MaxUint64, 2)
	require.Error(t, err)
	assert.Equal(t, uint64(0), n)
}

func TestVoxelCount(t *testing.T) {
	n, err := VoxelCount(4, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(24), n)

	n, err = VoxelCount(0, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	_, err = VoxelCount(-1, 2, 3)
	require.Error(t, err)

	// Each pair fits in uint64 but the full product does not.
	_, err = VoxelCount(math.MaxInt32, math.MaxInt32, math.MaxInt32)
	require.Error(t, err)
}

func TestValidateBufferSize(t *testing.T) {
	assert.NoError(t, ValidateBufferSize(100, MaxDataSize, "voxel data"))
	assert.NoError(t, ValidateBufferSize(MaxDataSize, MaxDataSize, "voxel data"))

	err := ValidateBufferSize(MaxExtHeaderSize+1, MaxExtHeaderSize, "extended header")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extended header")
}
