package mrc

// Mode identifies the on-disk encoding of one voxel, as stored in word 4 of
// the header. The set below is closed: the data block has a codec for every
// registered mode and rejects everything else.
type Mode int32

const (
	// ModeInt8 is an 8-bit signed integer voxel (mode 0).
	ModeInt8 Mode = 0
	// ModeInt16 is a 16-bit signed integer voxel (mode 1).
	ModeInt16 Mode = 1
	// ModeFloat32 is a 32-bit IEEE 754 float voxel (mode 2).
	ModeFloat32 Mode = 2
	// ModeInt16Complex is a complex voxel with 16-bit integer components
	// (mode 3). The layout is real then imaginary, which matches the de facto
	// convention used by CCP4, IMOD and other MRC implementations; MRC2014
	// does not specify it formally.
	ModeInt16Complex Mode = 3
	// ModeFloat32Complex is a complex voxel with 32-bit float components
	// (mode 4), laid out real then imaginary like mode 3.
	ModeFloat32Complex Mode = 4
	// ModeUint16 is a 16-bit unsigned integer voxel (mode 6).
	ModeUint16 Mode = 6
	// ModeFloat16 is a 16-bit IEEE 754 half-precision float voxel (mode 12).
	ModeFloat16 Mode = 12
	// ModePacked4Bit stores two 4-bit voxels per byte, low nibble first
	// (mode 101).
	ModePacked4Bit Mode = 101
)

// ModeFromCode returns the mode registered for a raw header code. The second
// return is false for unregistered codes.
func ModeFromCode(code int32) (Mode, bool) {
	switch Mode(code) {
	case ModeInt8, ModeInt16, ModeFloat32, ModeInt16Complex,
		ModeFloat32Complex, ModeUint16, ModeFloat16, ModePacked4Bit:
		return Mode(code), true
	default:
		return 0, false
	}
}

// ByteSize returns the storage width of one voxel in bytes. For
// ModePacked4Bit it returns 1 even though two voxels share each byte; use
// DataSize for the exact byte count of a sample sequence.
func (m Mode) ByteSize() int {
	switch m {
	case ModeInt8, ModePacked4Bit:
		return 1
	case ModeInt16, ModeUint16, ModeFloat16:
		return 2
	case ModeFloat32, ModeInt16Complex:
		return 4
	case ModeFloat32Complex:
		return 8
	default:
		return 0
	}
}

// DataSize returns the exact number of bytes needed to store the given
// number of voxels. ModePacked4Bit rounds up to whole bytes.
func (m Mode) DataSize(samples uint64) uint64 {
	if m == ModePacked4Bit {
		return (samples + 1) / 2
	}
	return samples * uint64(m.ByteSize())
}

// IsComplex reports whether voxels are (real, imaginary) pairs.
func (m Mode) IsComplex() bool {
	return m == ModeInt16Complex || m == ModeFloat32Complex
}

// IsInteger reports whether voxels belong to the integer family.
func (m Mode) IsInteger() bool {
	switch m {
	case ModeInt8, ModeInt16, ModeInt16Complex, ModeUint16, ModePacked4Bit:
		return true
	default:
		return false
	}
}

// IsFloat reports whether voxels belong to the float family.
func (m Mode) IsFloat() bool {
	switch m {
	case ModeFloat32, ModeFloat32Complex, ModeFloat16:
		return true
	default:
		return false
	}
}

func (m Mode) String() string {
	switch m {
	case ModeInt8:
		return "Int8"
	case ModeInt16:
		return "Int16"
	case ModeFloat32:
		return "Float32"
	case ModeInt16Complex:
		return "Int16Complex"
	case ModeFloat32Complex:
		return "Float32Complex"
	case ModeUint16:
		return "Uint16"
	case ModeFloat16:
		return "Float16"
	case ModePacked4Bit:
		return "Packed4Bit"
	default:
		return "Unknown"
	}
}
