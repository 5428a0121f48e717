package mrc

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/scigolib/mrc/internal/endian"
	"github.com/scigolib/mrc/internal/utils"
)

// Sizes of the fixed header regions.
const (
	HeaderSize = 1024
	ExtraSize  = 100
	LabelSize  = 800

	// MaxLabels is the number of 80-byte label slots in the label area.
	MaxLabels = 10
	labelLen  = 80
)

// MapSignature is the fixed format signature at bytes 208-211 ("MAP ").
var MapSignature = [4]byte{'M', 'A', 'P', ' '}

// Offsets of the two packed sub-fields inside the Extra region.
const (
	extTypeOffset  = 8  // bytes 104-107 of the header
	nVersionOffset = 12 // bytes 108-111 of the header
)

// Header is the 1024-byte fixed MRC2014 header. All numeric fields are held
// in native byte order; only the serialized form produced by Encode is in
// file byte order. The byte arrays (Extra, Map, MachSt, Label) are stored
// verbatim and never byte-order converted as a whole.
//
// On-disk layout (byte offsets):
//
//	  0-39   Nx Ny Nz Mode NxStart NyStart NzStart Mx My Mz (10 x int32)
//	 40-63   XLen YLen ZLen Alpha Beta Gamma (6 x float32)
//	 64-75   MapC MapR MapS (3 x int32)
//	 76-87   DMin DMax DMean (3 x float32)
//	 88-95   ISpg NSymBT (2 x int32)
//	 96-195  Extra (100 bytes; int32 EXTTYP at 104, int32 NVERSION at 108)
//	196-207  Origin (3 x float32)
//	208-211  Map signature "MAP "
//	212-215  MachSt machine stamp
//	216-219  RMS (float32)
//	220-223  NLabl (int32)
//	224-1023 Label (10 slots of 80 bytes)
type Header struct {
	Nx, Ny, Nz                int32 // voxel counts along the fast, medium, slow axes
	Mode                      int32
	NxStart, NyStart, NzStart int32
	Mx, My, Mz                int32   // sampling intervals along the cell axes
	XLen, YLen, ZLen          float32 // cell dimensions in Angstroms
	Alpha, Beta, Gamma        float32 // cell angles in degrees
	MapC, MapR, MapS          int32   // axis correspondence, a permutation of 1,2,3
	DMin, DMax, DMean         float32
	ISpg                      int32
	NSymBT                    int32 // extended header length in bytes
	Extra                     [ExtraSize]byte
	Origin                    [3]float32
	Map                       [4]byte
	MachSt                    [4]byte
	RMS                       float32
	NLabl                     int32
	Label                     [LabelSize]byte
}

// NewHeader returns a header with safe defaults: the format signature, the
// native machine stamp, an identity axis mapping, 90-degree cell angles and
// the MRC2014 version number. Dimensions are zero, so the header does not
// validate until the caller sets them.
func NewHeader() Header {
	h := Header{
		Alpha:  90,
		Beta:   90,
		Gamma:  90,
		MapC:   1,
		MapR:   2,
		MapS:   3,
		Map:    MapSignature,
		MachSt: endian.NativeStamp(),
	}
	h.SetNVersion(20141)
	return h
}

// DecodeHeader decodes a 1024-byte header image. The byte order is taken
// from the machine stamp at bytes 212-215 and applied to every numeric
// field; the byte-array fields are copied verbatim. Unrecognized stamps
// decode as little-endian. The result is not validated.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) != HeaderSize {
		return Header{}, fmt.Errorf("%w: header must be %d bytes, got %d",
			ErrInvalidDimensions, HeaderSize, len(buf))
	}

	var h Header
	copy(h.MachSt[:], buf[212:216])
	order, _ := endian.Detect(h.MachSt)

	ri := func(off int) int32 { return int32(order.Uint32(buf[off : off+4])) }
	rf := func(off int) float32 { return math.Float32frombits(order.Uint32(buf[off : off+4])) }

	h.Nx = ri(0)
	h.Ny = ri(4)
	h.Nz = ri(8)
	h.Mode = ri(12)
	h.NxStart = ri(16)
	h.NyStart = ri(20)
	h.NzStart = ri(24)
	h.Mx = ri(28)
	h.My = ri(32)
	h.Mz = ri(36)
	h.XLen = rf(40)
	h.YLen = rf(44)
	h.ZLen = rf(48)
	h.Alpha = rf(52)
	h.Beta = rf(56)
	h.Gamma = rf(60)
	h.MapC = ri(64)
	h.MapR = ri(68)
	h.MapS = ri(72)
	h.DMin = rf(76)
	h.DMax = rf(80)
	h.DMean = rf(84)
	h.ISpg = ri(88)
	h.NSymBT = ri(92)
	copy(h.Extra[:], buf[96:196])
	h.Origin[0] = rf(196)
	h.Origin[1] = rf(200)
	h.Origin[2] = rf(204)
	copy(h.Map[:], buf[208:212])
	h.RMS = rf(216)
	h.NLabl = ri(220)
	copy(h.Label[:], buf[224:1024])

	return h, nil
}

// Encode serializes the header into a 1024-byte buffer. The byte order is
// taken from the header's own machine stamp, so a header carrying a
// big-endian stamp produces a big-endian image.
func (h *Header) Encode(dst []byte) error {
	if len(dst) != HeaderSize {
		return fmt.Errorf("%w: header buffer must be %d bytes, got %d",
			ErrInvalidDimensions, HeaderSize, len(dst))
	}

	order := h.ByteOrder()
	pi := func(off int, v int32) { order.PutUint32(dst[off:off+4], uint32(v)) }
	pf := func(off int, v float32) { order.PutUint32(dst[off:off+4], math.Float32bits(v)) }

	pi(0, h.Nx)
	pi(4, h.Ny)
	pi(8, h.Nz)
	pi(12, h.Mode)
	pi(16, h.NxStart)
	pi(20, h.NyStart)
	pi(24, h.NzStart)
	pi(28, h.Mx)
	pi(32, h.My)
	pi(36, h.Mz)
	pf(40, h.XLen)
	pf(44, h.YLen)
	pf(48, h.ZLen)
	pf(52, h.Alpha)
	pf(56, h.Beta)
	pf(60, h.Gamma)
	pi(64, h.MapC)
	pi(68, h.MapR)
	pi(72, h.MapS)
	pf(76, h.DMin)
	pf(80, h.DMax)
	pf(84, h.DMean)
	pi(88, h.ISpg)
	pi(92, h.NSymBT)
	copy(dst[96:196], h.Extra[:])
	pf(196, h.Origin[0])
	pf(200, h.Origin[1])
	pf(204, h.Origin[2])
	copy(dst[208:212], h.Map[:])
	copy(dst[212:216], h.MachSt[:])
	pf(216, h.RMS)
	pi(220, h.NLabl)
	copy(dst[224:1024], h.Label[:])

	return nil
}

// Bytes returns the serialized header as a fresh 1024-byte slice.
func (h *Header) Bytes() []byte {
	buf := make([]byte, HeaderSize)
	_ = h.Encode(buf) // length is correct by construction
	return buf
}

// ByteOrder returns the byte order encoded by the machine stamp.
// Unrecognized stamps yield little-endian.
func (h *Header) ByteOrder() binary.ByteOrder {
	order, _ := endian.Detect(h.MachSt)
	return order
}

// SetByteOrder rewrites the machine stamp to the canonical stamp for the
// given order, so the next Encode serializes in that order. The EXTTYP and
// NVERSION sub-fields are re-encoded to keep their values; the rest of the
// Extra region is opaque bytes and stays as it is.
func (h *Header) SetByteOrder(order binary.ByteOrder) {
	extType, nVersion := h.ExtType(), h.NVersion()
	h.MachSt = endian.Stamp(order)
	h.SetExtType(extType)
	h.SetNVersion(nVersion)
}

// Validate reports whether the header is structurally sound: positive
// dimensions, a registered mode, the fixed format signature, an axis mapping
// that is a permutation of 1,2,3, a non-negative extended header length and
// a legal space group. It performs no I/O and never fails; it only returns
// a boolean.
func (h *Header) Validate() bool {
	if h.Nx <= 0 || h.Ny <= 0 || h.Nz <= 0 {
		return false
	}
	if _, ok := ModeFromCode(h.Mode); !ok {
		return false
	}
	if h.Map != MapSignature {
		return false
	}
	if !isAxisPermutation(h.MapC, h.MapR, h.MapS) {
		return false
	}
	if h.NSymBT < 0 {
		return false
	}
	return legalSpaceGroup(h.ISpg)
}

// isAxisPermutation reports whether c, r, s is a permutation of 1, 2, 3.
func isAxisPermutation(c, r, s int32) bool {
	var seen [4]bool
	for _, v := range [3]int32{c, r, s} {
		if v < 1 || v > 3 || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// legalSpaceGroup reports whether ispg is in the crystallographic range
// 0-230 or the 401-630 volume-stack range.
func legalSpaceGroup(ispg int32) bool {
	return (ispg >= 0 && ispg <= 230) || (ispg >= 401 && ispg <= 630)
}

// VoxelCount returns nx*ny*nz, or 0 when a dimension is negative or the
// product overflows.
func (h *Header) VoxelCount() uint64 {
	n, err := utils.VoxelCount(h.Nx, h.Ny, h.Nz)
	if err != nil {
		return 0
	}
	return n
}

// DataSize returns the byte length of the voxel data block declared by the
// header: nx*ny*nz times the mode's byte width, rounded up to whole bytes
// for the packed 4-bit mode. It returns 0 for an unregistered mode or an
// overflowing product.
func (h *Header) DataSize() uint64 {
	m, ok := ModeFromCode(h.Mode)
	if !ok {
		return 0
	}
	return m.DataSize(h.VoxelCount())
}

// DataOffset returns the file offset of the voxel data block.
func (h *Header) DataOffset() int64 {
	return HeaderSize + int64(h.NSymBT)
}

// ExtType returns the 4-byte extended-header type tag packed into the Extra
// region, read with the header's byte order.
func (h *Header) ExtType() int32 {
	return int32(h.ByteOrder().Uint32(h.Extra[extTypeOffset : extTypeOffset+4]))
}

// SetExtType stores the extended-header type tag with the header's byte order.
func (h *Header) SetExtType(v int32) {
	h.ByteOrder().PutUint32(h.Extra[extTypeOffset:extTypeOffset+4], uint32(v))
}

// ExtTypeString returns the type tag as its raw 4 bytes, which tools render
// as 4 ASCII characters ("CCP4", "FEI1", "SERI", ...).
func (h *Header) ExtTypeString() string {
	return string(h.Extra[extTypeOffset : extTypeOffset+4])
}

// SetExtTypeString stores a 4-character type tag verbatim.
func (h *Header) SetExtTypeString(s string) error {
	if len(s) != 4 {
		return fmt.Errorf("%w: EXTTYP must be exactly 4 characters, got %q",
			ErrInvalidDimensions, s)
	}
	copy(h.Extra[extTypeOffset:extTypeOffset+4], s)
	return nil
}

// NVersion returns the format version number packed into the Extra region
// (20140 for MRC2014, 20141 for the update), read with the header's byte
// order.
func (h *Header) NVersion() int32 {
	return int32(h.ByteOrder().Uint32(h.Extra[nVersionOffset : nVersionOffset+4]))
}

// SetNVersion stores the format version number with the header's byte order.
func (h *Header) SetNVersion(v int32) {
	h.ByteOrder().PutUint32(h.Extra[nVersionOffset:nVersionOffset+4], uint32(v))
}

// Labels returns the first NLabl label strings with trailing padding removed.
func (h *Header) Labels() []string {
	n := int(h.NLabl)
	if n < 0 {
		n = 0
	}
	if n > MaxLabels {
		n = MaxLabels
	}
	labels := make([]string, 0, n)
	for i := 0; i < n; i++ {
		raw := h.Label[i*labelLen : (i+1)*labelLen]
		labels = append(labels, strings.TrimRight(string(raw), " \x00"))
	}
	return labels
}

// AddLabel appends a label to the label area, space-padded to 80 bytes.
// Text longer than 80 bytes is truncated. It fails once all 10 slots are
// used.
func (h *Header) AddLabel(text string) error {
	if h.NLabl < 0 || h.NLabl >= MaxLabels {
		return fmt.Errorf("%w: label area is full (%d slots)", ErrInvalidDimensions, MaxLabels)
	}
	slot := h.Label[int(h.NLabl)*labelLen : (int(h.NLabl)+1)*labelLen]
	for i := range slot {
		slot[i] = ' '
	}
	copy(slot, text)
	h.NLabl++
	return nil
}

// SwapEndian flips the byte order of every numeric field in place, including
// the EXTTYP and NVERSION sub-fields packed into the Extra region, and
// rewrites the machine stamp to the canonical stamp of the opposite order.
// The format signature and the label area are untouched. Rewriting the stamp
// keeps ByteOrder and the packed sub-field accessors consistent with the
// swapped layout, and makes the operation an involution for headers carrying
// a canonical stamp.
func (h *Header) SwapEndian() {
	opposite := endian.Opposite(h.ByteOrder())

	si := func(v *int32) { *v = int32(bits.ReverseBytes32(uint32(*v))) }
	sf := func(v *float32) { *v = math.Float32frombits(bits.ReverseBytes32(math.Float32bits(*v))) }

	si(&h.Nx)
	si(&h.Ny)
	si(&h.Nz)
	si(&h.Mode)
	si(&h.NxStart)
	si(&h.NyStart)
	si(&h.NzStart)
	si(&h.Mx)
	si(&h.My)
	si(&h.Mz)
	sf(&h.XLen)
	sf(&h.YLen)
	sf(&h.ZLen)
	sf(&h.Alpha)
	sf(&h.Beta)
	sf(&h.Gamma)
	si(&h.MapC)
	si(&h.MapR)
	si(&h.MapS)
	sf(&h.DMin)
	sf(&h.DMax)
	sf(&h.DMean)
	si(&h.ISpg)
	si(&h.NSymBT)
	for _, off := range [2]int{extTypeOffset, nVersionOffset} {
		b := h.Extra[off : off+4]
		b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	}
	for i := range h.Origin {
		sf(&h.Origin[i])
	}
	sf(&h.RMS)
	si(&h.NLabl)

	h.MachSt = endian.Stamp(opposite)
}
