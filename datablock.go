package mrc

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"
	"unsafe"

	"github.com/scigolib/mrc/internal/endian"
	"github.com/scigolib/mrc/internal/float16"
)

// ComplexInt16 is one mode 3 voxel: a complex value with 16-bit integer
// components, stored real first.
type ComplexInt16 struct {
	Real, Imag int16
}

// DataBlock is a read-only typed accessor over a raw voxel byte range. The
// bytes stay in file byte order; every getter decodes to native values. The
// block borrows the byte range and never copies or owns it.
//
// The sample count is carried explicitly because it cannot always be derived
// from the byte length: the packed 4-bit mode rounds up to whole bytes, so an
// odd sample count leaves one trailing nibble in storage that is not part of
// the logical sequence.
type DataBlock struct {
	data    []byte
	mode    Mode
	order   binary.ByteOrder
	samples int
}

// NewDataBlock wraps a byte range holding samples voxels of the given mode in
// the given byte order. A nil order means little-endian. It fails with
// ErrInvalidDimensions when the byte length does not match the mode's exact
// size for the declared sample count.
func NewDataBlock(data []byte, mode Mode, order binary.ByteOrder, samples int) (DataBlock, error) {
	if _, ok := ModeFromCode(int32(mode)); !ok {
		return DataBlock{}, fmt.Errorf("%w: unregistered mode code %d", ErrInvalidMode, int32(mode))
	}
	if samples < 0 {
		return DataBlock{}, fmt.Errorf("%w: negative sample count %d", ErrInvalidDimensions, samples)
	}
	if want := mode.DataSize(uint64(samples)); uint64(len(data)) != want {
		return DataBlock{}, fmt.Errorf("%w: %d bytes for %d %s samples, want %d",
			ErrInvalidDimensions, len(data), samples, mode, want)
	}
	if order == nil {
		order = binary.LittleEndian
	}
	return DataBlock{data: data, mode: mode, order: order, samples: samples}, nil
}

// Bytes returns the underlying file-endian byte range.
func (b DataBlock) Bytes() []byte { return b.data }

// Mode returns the voxel encoding of the block.
func (b DataBlock) Mode() Mode { return b.mode }

// ByteOrder returns the byte order the block decodes with.
func (b DataBlock) ByteOrder() binary.ByteOrder { return b.order }

// Len returns the number of logical samples.
func (b DataBlock) Len() int { return b.samples }

func (b DataBlock) checkMode(want Mode) error {
	if b.mode != want {
		return fmt.Errorf("%w: block holds %s, not %s", ErrInvalidMode, b.mode, want)
	}
	return nil
}

func (b DataBlock) checkIndex(i int) error {
	if i < 0 || i >= b.samples {
		return fmt.Errorf("%w: sample index %d out of range [0,%d)",
			ErrInvalidDimensions, i, b.samples)
	}
	return nil
}

// checkDst bounds a bulk read: the destination may cover at most the stored
// sample count. Reads never partially fill the destination on failure.
func (b DataBlock) checkDst(n int) error {
	if n > b.samples {
		return fmt.Errorf("%w: destination holds %d samples, block holds %d",
			ErrInvalidDimensions, n, b.samples)
	}
	return nil
}

// Int8At returns sample i of a mode 0 block.
func (b DataBlock) Int8At(i int) (int8, error) {
	if err := b.checkMode(ModeInt8); err != nil {
		return 0, err
	}
	if err := b.checkIndex(i); err != nil {
		return 0, err
	}
	return int8(b.data[i]), nil
}

// Int16At returns sample i of a mode 1 block.
func (b DataBlock) Int16At(i int) (int16, error) {
	if err := b.checkMode(ModeInt16); err != nil {
		return 0, err
	}
	if err := b.checkIndex(i); err != nil {
		return 0, err
	}
	return int16(b.order.Uint16(b.data[2*i:])), nil
}

// Uint16At returns sample i of a mode 6 block.
func (b DataBlock) Uint16At(i int) (uint16, error) {
	if err := b.checkMode(ModeUint16); err != nil {
		return 0, err
	}
	if err := b.checkIndex(i); err != nil {
		return 0, err
	}
	return b.order.Uint16(b.data[2*i:]), nil
}

// Float16At returns sample i of a mode 12 block, widened to float32.
func (b DataBlock) Float16At(i int) (float32, error) {
	if err := b.checkMode(ModeFloat16); err != nil {
		return 0, err
	}
	if err := b.checkIndex(i); err != nil {
		return 0, err
	}
	return float16.ToFloat32(b.order.Uint16(b.data[2*i:])), nil
}

// Float32At returns sample i of a mode 2 block.
func (b DataBlock) Float32At(i int) (float32, error) {
	if err := b.checkMode(ModeFloat32); err != nil {
		return 0, err
	}
	if err := b.checkIndex(i); err != nil {
		return 0, err
	}
	return math.Float32frombits(b.order.Uint32(b.data[4*i:])), nil
}

// ComplexInt16At returns sample i of a mode 3 block.
func (b DataBlock) ComplexInt16At(i int) (ComplexInt16, error) {
	if err := b.checkMode(ModeInt16Complex); err != nil {
		return ComplexInt16{}, err
	}
	if err := b.checkIndex(i); err != nil {
		return ComplexInt16{}, err
	}
	return ComplexInt16{
		Real: int16(b.order.Uint16(b.data[4*i:])),
		Imag: int16(b.order.Uint16(b.data[4*i+2:])),
	}, nil
}

// Complex64At returns sample i of a mode 4 block.
func (b DataBlock) Complex64At(i int) (complex64, error) {
	if err := b.checkMode(ModeFloat32Complex); err != nil {
		return 0, err
	}
	if err := b.checkIndex(i); err != nil {
		return 0, err
	}
	re := math.Float32frombits(b.order.Uint32(b.data[8*i:]))
	im := math.Float32frombits(b.order.Uint32(b.data[8*i+4:]))
	return complex(re, im), nil
}

// NibbleAt returns sample i of a mode 101 block as a value in 0-15. Two
// samples share each byte; even indices occupy the low nibble.
func (b DataBlock) NibbleAt(i int) (uint8, error) {
	if err := b.checkMode(ModePacked4Bit); err != nil {
		return 0, err
	}
	if err := b.checkIndex(i); err != nil {
		return 0, err
	}
	v := b.data[i/2]
	if i%2 == 0 {
		return v & 0x0F, nil
	}
	return v >> 4, nil
}

// ReadInt8s fills dst with decoded mode 0 samples starting at index 0.
func (b DataBlock) ReadInt8s(dst []int8) error {
	if err := b.checkMode(ModeInt8); err != nil {
		return err
	}
	if err := b.checkDst(len(dst)); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = int8(b.data[i])
	}
	return nil
}

// ReadInt16s fills dst with decoded mode 1 samples starting at index 0.
func (b DataBlock) ReadInt16s(dst []int16) error {
	if err := b.checkMode(ModeInt16); err != nil {
		return err
	}
	if err := b.checkDst(len(dst)); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = int16(b.order.Uint16(b.data[2*i:]))
	}
	return nil
}

// ReadUint16s fills dst with decoded mode 6 samples starting at index 0.
func (b DataBlock) ReadUint16s(dst []uint16) error {
	if err := b.checkMode(ModeUint16); err != nil {
		return err
	}
	if err := b.checkDst(len(dst)); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = b.order.Uint16(b.data[2*i:])
	}
	return nil
}

// ReadFloat16s fills dst with decoded mode 12 samples, widened to float32.
func (b DataBlock) ReadFloat16s(dst []float32) error {
	if err := b.checkMode(ModeFloat16); err != nil {
		return err
	}
	if err := b.checkDst(len(dst)); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = float16.ToFloat32(b.order.Uint16(b.data[2*i:]))
	}
	return nil
}

// ReadFloat32s fills dst with decoded mode 2 samples starting at index 0.
func (b DataBlock) ReadFloat32s(dst []float32) error {
	if err := b.checkMode(ModeFloat32); err != nil {
		return err
	}
	if err := b.checkDst(len(dst)); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = math.Float32frombits(b.order.Uint32(b.data[4*i:]))
	}
	return nil
}

// ReadComplexInt16s fills dst with decoded mode 3 samples starting at index 0.
func (b DataBlock) ReadComplexInt16s(dst []ComplexInt16) error {
	if err := b.checkMode(ModeInt16Complex); err != nil {
		return err
	}
	if err := b.checkDst(len(dst)); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = ComplexInt16{
			Real: int16(b.order.Uint16(b.data[4*i:])),
			Imag: int16(b.order.Uint16(b.data[4*i+2:])),
		}
	}
	return nil
}

// ReadComplex64s fills dst with decoded mode 4 samples starting at index 0.
func (b DataBlock) ReadComplex64s(dst []complex64) error {
	if err := b.checkMode(ModeFloat32Complex); err != nil {
		return err
	}
	if err := b.checkDst(len(dst)); err != nil {
		return err
	}
	for i := range dst {
		re := math.Float32frombits(b.order.Uint32(b.data[8*i:]))
		im := math.Float32frombits(b.order.Uint32(b.data[8*i+4:]))
		dst[i] = complex(re, im)
	}
	return nil
}

// ReadNibbles fills dst with decoded mode 101 samples starting at index 0.
// Only the declared sample count is addressable; the trailing high nibble of
// an odd-count block is skipped.
func (b DataBlock) ReadNibbles(dst []uint8) error {
	if err := b.checkMode(ModePacked4Bit); err != nil {
		return err
	}
	if err := b.checkDst(len(dst)); err != nil {
		return err
	}
	for i := range dst {
		v := b.data[i/2]
		if i%2 == 0 {
			dst[i] = v & 0x0F
		} else {
			dst[i] = v >> 4
		}
	}
	return nil
}

// Int8s decodes the whole block as mode 0 samples.
func (b DataBlock) Int8s() ([]int8, error) {
	dst := make([]int8, b.samples)
	if err := b.ReadInt8s(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Int16s decodes the whole block as mode 1 samples.
func (b DataBlock) Int16s() ([]int16, error) {
	dst := make([]int16, b.samples)
	if err := b.ReadInt16s(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Uint16s decodes the whole block as mode 6 samples.
func (b DataBlock) Uint16s() ([]uint16, error) {
	dst := make([]uint16, b.samples)
	if err := b.ReadUint16s(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Float16s decodes the whole block as mode 12 samples, widened to float32.
func (b DataBlock) Float16s() ([]float32, error) {
	dst := make([]float32, b.samples)
	if err := b.ReadFloat16s(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Float32s decodes the whole block as mode 2 samples.
func (b DataBlock) Float32s() ([]float32, error) {
	dst := make([]float32, b.samples)
	if err := b.ReadFloat32s(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// ComplexInt16s decodes the whole block as mode 3 samples.
func (b DataBlock) ComplexInt16s() ([]ComplexInt16, error) {
	dst := make([]ComplexInt16, b.samples)
	if err := b.ReadComplexInt16s(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Complex64s decodes the whole block as mode 4 samples.
func (b DataBlock) Complex64s() ([]complex64, error) {
	dst := make([]complex64, b.samples)
	if err := b.ReadComplex64s(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Nibbles decodes the whole block as mode 101 samples.
func (b DataBlock) Nibbles() ([]uint8, error) {
	dst := make([]uint8, b.samples)
	if err := b.ReadNibbles(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Values returns a restartable iterator over all samples of a scalar-mode
// block, each widened to float64. The sequence is recomputed from the stored
// bytes on every range, so it can be iterated any number of times. Complex
// blocks yield nothing; use Complex128Values for them.
func (b DataBlock) Values() iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for i := 0; i < b.samples; i++ {
			var v float64
			switch b.mode {
			case ModeInt8:
				v = float64(int8(b.data[i]))
			case ModeInt16:
				v = float64(int16(b.order.Uint16(b.data[2*i:])))
			case ModeUint16:
				v = float64(b.order.Uint16(b.data[2*i:]))
			case ModeFloat16:
				v = float64(float16.ToFloat32(b.order.Uint16(b.data[2*i:])))
			case ModeFloat32:
				v = float64(math.Float32frombits(b.order.Uint32(b.data[4*i:])))
			case ModePacked4Bit:
				raw := b.data[i/2]
				if i%2 == 0 {
					v = float64(raw & 0x0F)
				} else {
					v = float64(raw >> 4)
				}
			default:
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Complex128Values returns a restartable iterator over all samples of a
// complex-mode block, each widened to complex128. Scalar blocks yield
// nothing.
func (b DataBlock) Complex128Values() iter.Seq[complex128] {
	return func(yield func(complex128) bool) {
		for i := 0; i < b.samples; i++ {
			var v complex128
			switch b.mode {
			case ModeInt16Complex:
				re := int16(b.order.Uint16(b.data[4*i:]))
				im := int16(b.order.Uint16(b.data[4*i+2:]))
				v = complex(float64(re), float64(im))
			case ModeFloat32Complex:
				re := math.Float32frombits(b.order.Uint32(b.data[8*i:]))
				im := math.Float32frombits(b.order.Uint32(b.data[8*i+4:]))
				v = complex(float64(re), float64(im))
			default:
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Float32View reinterprets the block's bytes as a []float32 without copying.
// It requires mode 2, the native byte order and 4-byte aligned storage, and
// fails with ErrTypeMismatch otherwise. The returned slice aliases the
// block's bytes. Prefer the decoding accessors unless the copy matters.
func (b DataBlock) Float32View() ([]float32, error) {
	if err := b.checkMode(ModeFloat32); err != nil {
		return nil, err
	}
	if !endian.IsNative(b.order) {
		return nil, fmt.Errorf("%w: block is not in native byte order", ErrTypeMismatch)
	}
	if b.samples == 0 {
		return nil, nil
	}
	p := unsafe.Pointer(&b.data[0])
	if uintptr(p)%unsafe.Alignof(float32(0)) != 0 {
		return nil, fmt.Errorf("%w: storage is not 4-byte aligned", ErrTypeMismatch)
	}
	return unsafe.Slice((*float32)(p), b.samples), nil
}

// Int16View reinterprets the block's bytes as a []int16 without copying,
// under the same conditions as Float32View.
func (b DataBlock) Int16View() ([]int16, error) {
	if err := b.checkMode(ModeInt16); err != nil {
		return nil, err
	}
	if !endian.IsNative(b.order) {
		return nil, fmt.Errorf("%w: block is not in native byte order", ErrTypeMismatch)
	}
	if b.samples == 0 {
		return nil, nil
	}
	p := unsafe.Pointer(&b.data[0])
	if uintptr(p)%unsafe.Alignof(int16(0)) != 0 {
		return nil, fmt.Errorf("%w: storage is not 2-byte aligned", ErrTypeMismatch)
	}
	return unsafe.Slice((*int16)(p), b.samples), nil
}
