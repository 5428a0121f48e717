package mrc

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHeader returns a header that validates: a 4x3x2 float32 map.
func testHeader() Header {
	h := NewHeader()
	h.Nx, h.Ny, h.Nz = 4, 3, 2
	h.Mx, h.My, h.Mz = 4, 3, 2
	h.XLen, h.YLen, h.ZLen = 4, 3, 2
	h.Mode = int32(ModeFloat32)
	return h
}

func TestNewHeaderDefaults(t *testing.T) {
	h := NewHeader()

	assert.Equal(t, MapSignature, h.Map)
	assert.Equal(t, float32(90), h.Alpha)
	assert.Equal(t, float32(90), h.Beta)
	assert.Equal(t, float32(90), h.Gamma)
	assert.Equal(t, int32(1), h.MapC)
	assert.Equal(t, int32(2), h.MapR)
	assert.Equal(t, int32(3), h.MapS)
	assert.Equal(t, int32(20141), h.NVersion())

	// Zero dimensions: not yet a valid header.
	assert.False(t, h.Validate())
}

func TestDecodeHeaderLittleEndian(t *testing.T) {
	buf := make([]byte, HeaderSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], 4)   // Nx
	le.PutUint32(buf[4:], 3)   // Ny
	le.PutUint32(buf[8:], 2)   // Nz
	le.PutUint32(buf[12:], 2)  // Mode = float32
	le.PutUint32(buf[28:], 4)  // Mx
	le.PutUint32(buf[32:], 3)  // My
	le.PutUint32(buf[36:], 2)  // Mz
	le.PutUint32(buf[40:], math.Float32bits(40.5)) // XLen
	le.PutUint32(buf[52:], math.Float32bits(90))   // Alpha
	le.PutUint32(buf[56:], math.Float32bits(90))   // Beta
	le.PutUint32(buf[60:], math.Float32bits(90))   // Gamma
	le.PutUint32(buf[64:], 1)  // MapC
	le.PutUint32(buf[68:], 2)  // MapR
	le.PutUint32(buf[72:], 3)  // MapS
	le.PutUint32(buf[76:], math.Float32bits(-1.5)) // DMin
	le.PutUint32(buf[80:], math.Float32bits(7.25)) // DMax
	le.PutUint32(buf[88:], 1)   // ISpg
	le.PutUint32(buf[92:], 128) // NSymBT
	le.PutUint32(buf[108:], 20141) // NVERSION at header byte 108
	le.PutUint32(buf[200:], math.Float32bits(5)) // Origin[1]
	copy(buf[208:], "MAP ")
	copy(buf[212:], []byte{0x44, 0x44, 0x00, 0x00})
	le.PutUint32(buf[216:], math.Float32bits(0.5)) // RMS

	h, err := DecodeHeader(buf)
	require.NoError(t, err)

	assert.Equal(t, int32(4), h.Nx)
	assert.Equal(t, int32(3), h.Ny)
	assert.Equal(t, int32(2), h.Nz)
	assert.Equal(t, int32(2), h.Mode)
	assert.Equal(t, float32(40.5), h.XLen)
	assert.Equal(t, float32(-1.5), h.DMin)
	assert.Equal(t, float32(7.25), h.DMax)
	assert.Equal(t, int32(1), h.ISpg)
	assert.Equal(t, int32(128), h.NSymBT)
	assert.Equal(t, int32(20141), h.NVersion())
	assert.Equal(t, float32(5), h.Origin[1])
	assert.Equal(t, MapSignature, h.Map)
	assert.Equal(t, binary.LittleEndian, h.ByteOrder())
	assert.Equal(t, float32(0.5), h.RMS)
	assert.True(t, h.Validate())
}

func TestDecodeHeaderBigEndian(t *testing.T) {
	buf := make([]byte, HeaderSize)
	be := binary.BigEndian
	be.PutUint32(buf[0:], 2)
	be.PutUint32(buf[4:], 2)
	be.PutUint32(buf[8:], 2)
	be.PutUint32(buf[12:], 1) // Mode = int16
	be.PutUint32(buf[64:], 1)
	be.PutUint32(buf[68:], 2)
	be.PutUint32(buf[72:], 3)
	copy(buf[208:], "MAP ")
	copy(buf[212:], []byte{0x11, 0x11, 0x00, 0x00})

	h, err := DecodeHeader(buf)
	require.NoError(t, err)

	assert.Equal(t, int32(2), h.Nx)
	assert.Equal(t, int32(1), h.Mode)
	assert.Equal(t, binary.BigEndian, h.ByteOrder())
	assert.True(t, h.Validate())
}

func TestDecodeHeaderUnknownStampDefaultsLittle(t *testing.T) {
	buf := make([]byte, HeaderSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], 7)
	copy(buf[212:], []byte{0xAB, 0xCD, 0x00, 0x00})

	h, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, int32(7), h.Nx)
	assert.Equal(t, binary.LittleEndian, h.ByteOrder())
	// The stamp bytes themselves are preserved verbatim.
	assert.Equal(t, [4]byte{0xAB, 0xCD, 0x00, 0x00}, h.MachSt)
}

func TestDecodeHeaderWrongLength(t *testing.T) {
	_, err := DecodeHeader(make([]byte, HeaderSize-1))
	require.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = DecodeHeader(make([]byte, HeaderSize+1))
	require.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestHeaderEncodeOffsets(t *testing.T) {
	h := testHeader()
	h.SetByteOrder(binary.LittleEndian)
	h.DMin, h.DMax, h.DMean = -1, 1, 0.25
	h.NSymBT = 256
	h.Origin = [3]float32{1, 2, 3}
	h.RMS = 0.125

	buf := h.Bytes()
	require.Len(t, buf, HeaderSize)

	le := binary.LittleEndian
	assert.Equal(t, uint32(4), le.Uint32(buf[0:]))  // Nx
	assert.Equal(t, uint32(3), le.Uint32(buf[4:]))  // Ny
	assert.Equal(t, uint32(2), le.Uint32(buf[8:]))  // Nz
	assert.Equal(t, uint32(2), le.Uint32(buf[12:])) // Mode
	assert.Equal(t, math.Float32bits(90), le.Uint32(buf[52:]))    // Alpha
	assert.Equal(t, uint32(1), le.Uint32(buf[64:]))               // MapC
	assert.Equal(t, math.Float32bits(-1), le.Uint32(buf[76:]))    // DMin
	assert.Equal(t, math.Float32bits(0.25), le.Uint32(buf[84:]))  // DMean
	assert.Equal(t, uint32(256), le.Uint32(buf[92:]))             // NSymBT
	assert.Equal(t, uint32(20141), le.Uint32(buf[108:]))          // NVERSION
	assert.Equal(t, math.Float32bits(2), le.Uint32(buf[200:]))    // Origin[1]
	assert.Equal(t, []byte("MAP "), buf[208:212])
	assert.Equal(t, []byte{0x44, 0x44, 0x00, 0x00}, buf[212:216])
	assert.Equal(t, math.Float32bits(0.125), le.Uint32(buf[216:])) // RMS
}

func TestHeaderEncodeBigEndian(t *testing.T) {
	h := testHeader()
	h.SetByteOrder(binary.BigEndian)

	buf := h.Bytes()
	be := binary.BigEndian
	assert.Equal(t, uint32(4), be.Uint32(buf[0:]))
	assert.Equal(t, uint32(2), be.Uint32(buf[12:]))
	assert.Equal(t, uint32(20141), be.Uint32(buf[108:]))
	assert.Equal(t, []byte{0x11, 0x11, 0x00, 0x00}, buf[212:216])
}

func TestHeaderRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		h := testHeader()
		h.SetByteOrder(order)
		h.NxStart, h.NyStart, h.NzStart = -2, 0, 5
		h.DMin, h.DMax, h.DMean = -3.5, 12.25, 1.5
		h.ISpg = 19
		h.Origin = [3]float32{-1, 0, 1}
		h.RMS = 2.5
		require.NoError(t, h.AddLabel("round trip"))

		got, err := DecodeHeader(h.Bytes())
		require.NoError(t, err)
		assert.Equal(t, h, got, "order %v", order)
	}
}

func TestHeaderValidate(t *testing.T) {
	mutate := []struct {
		name string
		f    func(*Header)
		ok   bool
	}{
		{"valid", func(h *Header) {}, true},
		{"zero nx", func(h *Header) { h.Nx = 0 }, false},
		{"negative ny", func(h *Header) { h.Ny = -1 }, false},
		{"mode gap", func(h *Header) { h.Mode = 5 }, false},
		{"mode negative", func(h *Header) { h.Mode = -1 }, false},
		{"bad signature", func(h *Header) { h.Map = [4]byte{'M', 'A', 'P', 'X'} }, false},
		{"axis repeat", func(h *Header) { h.MapC, h.MapR, h.MapS = 1, 1, 3 }, false},
		{"axis out of range", func(h *Header) { h.MapC = 4 }, false},
		{"axis reorder", func(h *Header) { h.MapC, h.MapR, h.MapS = 3, 1, 2 }, true},
		{"negative nsymbt", func(h *Header) { h.NSymBT = -1 }, false},
		{"ispg crystal max", func(h *Header) { h.ISpg = 230 }, true},
		{"ispg above crystal", func(h *Header) { h.ISpg = 231 }, false},
		{"ispg below stack", func(h *Header) { h.ISpg = 400 }, false},
		{"ispg stack min", func(h *Header) { h.ISpg = 401 }, true},
		{"ispg stack max", func(h *Header) { h.ISpg = 630 }, true},
		{"ispg above stack", func(h *Header) { h.ISpg = 631 }, false},
		{"ispg negative", func(h *Header) { h.ISpg = -1 }, false},
	}

	for _, tt := range mutate {
		t.Run(tt.name, func(t *testing.T) {
			h := testHeader()
			tt.f(&h)
			assert.Equal(t, tt.ok, h.Validate())
		})
	}
}

func TestHeaderSizes(t *testing.T) {
	h := testHeader()
	assert.Equal(t, uint64(24), h.VoxelCount())
	assert.Equal(t, uint64(96), h.DataSize()) // 24 voxels x 4 bytes
	assert.Equal(t, int64(1024), h.DataOffset())

	h.NSymBT = 80
	assert.Equal(t, int64(1104), h.DataOffset())

	h.Mode = int32(ModePacked4Bit)
	h.Nx, h.Ny, h.Nz = 3, 1, 1
	assert.Equal(t, uint64(2), h.DataSize()) // 3 nibbles round up to 2 bytes

	h.Mode = 5
	assert.Equal(t, uint64(0), h.DataSize())

	h.Nz = -1
	assert.Equal(t, uint64(0), h.VoxelCount())
}

func TestHeaderExtType(t *testing.T) {
	h := testHeader()
	h.SetByteOrder(binary.LittleEndian)

	require.NoError(t, h.SetExtTypeString("FEI1"))
	assert.Equal(t, "FEI1", h.ExtTypeString())

	err := h.SetExtTypeString("TOOLONG")
	require.ErrorIs(t, err, ErrInvalidDimensions)

	h.SetExtType(0x31494546) // "FEI1" read as a little-endian int32
	assert.Equal(t, "FEI1", h.ExtTypeString())
	assert.Equal(t, int32(0x31494546), h.ExtType())
}

func TestHeaderSetByteOrderKeepsPackedFields(t *testing.T) {
	h := testHeader()
	h.SetByteOrder(binary.LittleEndian)
	require.NoError(t, h.SetExtTypeString("CCP4"))
	extType := h.ExtType()

	h.SetByteOrder(binary.BigEndian)
	assert.Equal(t, binary.BigEndian, h.ByteOrder())
	assert.Equal(t, extType, h.ExtType())
	assert.Equal(t, int32(20141), h.NVersion())
	// The raw tag bytes are now stored in the opposite order.
	assert.Equal(t, "4PCC", h.ExtTypeString())
}

func TestHeaderLabels(t *testing.T) {
	h := testHeader()
	assert.Empty(t, h.Labels())

	require.NoError(t, h.AddLabel("first label"))
	require.NoError(t, h.AddLabel("second"))
	assert.Equal(t, []string{"first label", "second"}, h.Labels())
	assert.Equal(t, int32(2), h.NLabl)

	// Long labels are truncated to the 80-byte slot.
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'x'
	}
	require.NoError(t, h.AddLabel(string(long)))
	assert.Len(t, h.Labels()[2], 80)

	for h.NLabl < MaxLabels {
		require.NoError(t, h.AddLabel("fill"))
	}
	err := h.AddLabel("one too many")
	require.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestHeaderSwapEndian(t *testing.T) {
	h := testHeader()
	h.SetByteOrder(binary.LittleEndian)
	h.DMin = 1.5
	require.NoError(t, h.SetExtTypeString("SERI"))
	original := h

	h.SwapEndian()

	// Numeric fields are byte-reversed in place, the stamp flips.
	assert.Equal(t, int32(4<<24), h.Nx)
	assert.Equal(t, binary.BigEndian, h.ByteOrder())
	assert.Equal(t, [4]byte{0x11, 0x11, 0x00, 0x00}, h.MachSt)
	// The signature and the label area are untouched.
	assert.Equal(t, MapSignature, h.Map)
	assert.Equal(t, original.Label, h.Label)
	// Packed sub-field accessors read with the new order, so the values hold.
	assert.Equal(t, original.ExtType(), h.ExtType())
	assert.Equal(t, int32(20141), h.NVersion())
	assert.Equal(t, "IRES", h.ExtTypeString())

	// Swapping twice restores the record.
	h.SwapEndian()
	assert.Equal(t, original, h)
}
