package utils

import (
	"fmt"
	"math"
)

// CheckMultiplyOverflow checks if multiplying two uint64 values would overflow.
// Returns an error if overflow would occur.
func CheckMultiplyOverflow(a, b uint64) error {
	if a == 0 || b == 0 {
		return nil // No overflow when either is zero
	}

	if a > math.MaxUint64/b {
		return fmt.Errorf("multiplication overflow: %d * %d exceeds uint64 max", a, b)
	}

	return nil
}

// SafeMultiply multiplies two uint64 values and returns the result if no overflow occurs.
// Returns 0 and an error if overflow would occur.
func SafeMultiply(a, b uint64) (uint64, error) {
	if err := CheckMultiplyOverflow(a, b); err != nil {
		return 0, err
	}
	return a * b, nil
}

// VoxelCount safely multiplies the three grid dimensions of a map.
// Returns an error if any dimension is negative or the product overflows.
func VoxelCount(nx, ny, nz int32) (uint64, error) {
	if nx < 0 || ny < 0 || nz < 0 {
		return 0, fmt.Errorf("negative dimension: %dx%dx%d", nx, ny, nz)
	}

	n, err := SafeMultiply(uint64(nx), uint64(ny))
	if err != nil {
		return 0, fmt.Errorf("voxel count overflow: %w", err)
	}
	n, err = SafeMultiply(n, uint64(nz))
	if err != nil {
		return 0, fmt.Errorf("voxel count overflow: %w", err)
	}
	return n, nil
}

// ValidateBufferSize validates that a buffer size is within reasonable limits.
// maxSize parameter allows different limits for different use cases.
func ValidateBufferSize(size, maxSize uint64, description string) error {
	if size > maxSize {
		return fmt.Errorf("%s: size %d exceeds maximum %d", description, size, maxSize)
	}

	return nil
}

// Common buffer size limits.
const (
	// MaxDataSize limits the in-memory voxel block to 16GB. Maps larger than
	// this should be accessed through the mmap backend.
	MaxDataSize = 16 * 1024 * 1024 * 1024

	// MaxExtHeaderSize limits the extended header to 64MB. Real-world FEI and
	// serialEM extended headers are well under 1MB.
	MaxExtHeaderSize = 64 * 1024 * 1024
)
