// Package float16 converts between IEEE 754 half-precision bit patterns and
// float32. Mode 12 voxels are stored as half-precision values; Go has no
// native 16-bit float type, so the codec moves through uint16 bit patterns.
package float16

import "math"

// ToFloat32 converts a half-precision bit pattern to float32. The conversion
// is exact: every half value, including subnormals, Inf and NaN, has a
// float32 representation.
func ToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1F
	mant := uint32(h & 0x3FF)

	var out uint32
	switch exp {
	case 0:
		if mant == 0 {
			// Signed zero.
			out = sign << 31
			break
		}
		// Subnormal half: renormalize into the float32 exponent range.
		e := uint32(127 - 15 + 1)
		for mant&0x400 == 0 {
			mant <<= 1
			e--
		}
		mant &= 0x3FF
		out = (sign << 31) | (e << 23) | (mant << 13)
	case 0x1F:
		// Inf or NaN; keep the NaN payload.
		out = (sign << 31) | 0x7F800000 | (mant << 13)
	default:
		out = (sign << 31) | ((exp + 127 - 15) << 23) | (mant << 13)
	}

	return math.Float32frombits(out)
}

// FromFloat32 converts a float32 to the nearest half-precision bit pattern,
// rounding to nearest even. Values beyond the half range become Inf;
// values below the smallest subnormal flush to signed zero.
func FromFloat32(f float32) uint16 {
	b := math.Float32bits(f)
	sign := uint16(b>>16) & 0x8000
	exp := int32(b>>23) & 0xFF
	mant := b & 0x7FFFFF

	switch {
	case exp == 0xFF:
		if mant != 0 {
			return sign | 0x7E00 // quiet NaN
		}
		return sign | 0x7C00 // Inf
	case exp-127 > 15:
		return sign | 0x7C00 // overflow to Inf
	case exp-127 >= -14:
		// Normal range: round the 23-bit mantissa to 10 bits.
		h := uint32(exp-127+15)<<10 | mant>>13
		if rem := mant & 0x1FFF; rem > 0x1000 || (rem == 0x1000 && h&1 == 1) {
			h++ // may carry into the exponent, which is the correct rounding
		}
		return sign | uint16(h)
	case exp-127 >= -24:
		// Subnormal half.
		mant |= 0x800000
		shift := uint32(-(exp - 127) - 14 + 13)
		h := mant >> shift
		if rem := mant & (1<<shift - 1); rem > 1<<(shift-1) || (rem == 1<<(shift-1) && h&1 == 1) {
			h++
		}
		return sign | uint16(h)
	default:
		return sign // underflow to signed zero
	}
}
