package mrc

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/scigolib/mrc/internal/float16"
)

// DataBlockMut is a mutable typed accessor over a raw voxel byte range. It
// embeds the read-only accessor, so every getter and iterator is available,
// and adds per-sample and bulk setters that encode native values into the
// block's file byte order.
//
// Bulk setters are strict: the value count must exactly equal the declared
// sample count, so a write always fills the whole region. This is deliberate
// and differs from the read path, which allows reading a prefix.
type DataBlockMut struct {
	DataBlock
}

// NewDataBlockMut wraps a mutable byte range under the same construction
// rules as NewDataBlock.
func NewDataBlockMut(data []byte, mode Mode, order binary.ByteOrder, samples int) (DataBlockMut, error) {
	b, err := NewDataBlock(data, mode, order, samples)
	if err != nil {
		return DataBlockMut{}, err
	}
	return DataBlockMut{DataBlock: b}, nil
}

// BytesMut returns the underlying byte range for raw mutation. Bytes written
// through it must be in the block's file byte order.
func (b DataBlockMut) BytesMut() []byte { return b.data }

// checkSrc bounds a bulk write: strict equality with the sample count.
func (b DataBlockMut) checkSrc(n int) error {
	if n != b.samples {
		return fmt.Errorf("%w: got %d values for a block of %d samples",
			ErrInvalidDimensions, n, b.samples)
	}
	return nil
}

// SetInt8At stores sample i of a mode 0 block.
func (b DataBlockMut) SetInt8At(i int, v int8) error {
	if err := b.checkMode(ModeInt8); err != nil {
		return err
	}
	if err := b.checkIndex(i); err != nil {
		return err
	}
	b.data[i] = byte(v)
	return nil
}

// SetInt16At stores sample i of a mode 1 block.
func (b DataBlockMut) SetInt16At(i int, v int16) error {
	if err := b.checkMode(ModeInt16); err != nil {
		return err
	}
	if err := b.checkIndex(i); err != nil {
		return err
	}
	b.order.PutUint16(b.data[2*i:], uint16(v))
	return nil
}

// SetUint16At stores sample i of a mode 6 block.
func (b DataBlockMut) SetUint16At(i int, v uint16) error {
	if err := b.checkMode(ModeUint16); err != nil {
		return err
	}
	if err := b.checkIndex(i); err != nil {
		return err
	}
	b.order.PutUint16(b.data[2*i:], v)
	return nil
}

// SetFloat16At stores sample i of a mode 12 block, narrowing the value to
// half precision with round-to-nearest-even.
func (b DataBlockMut) SetFloat16At(i int, v float32) error {
	if err := b.checkMode(ModeFloat16); err != nil {
		return err
	}
	if err := b.checkIndex(i); err != nil {
		return err
	}
	b.order.PutUint16(b.data[2*i:], float16.FromFloat32(v))
	return nil
}

// SetFloat32At stores sample i of a mode 2 block.
func (b DataBlockMut) SetFloat32At(i int, v float32) error {
	if err := b.checkMode(ModeFloat32); err != nil {
		return err
	}
	if err := b.checkIndex(i); err != nil {
		return err
	}
	b.order.PutUint32(b.data[4*i:], math.Float32bits(v))
	return nil
}

// SetComplexInt16At stores sample i of a mode 3 block, real first.
func (b DataBlockMut) SetComplexInt16At(i int, v ComplexInt16) error {
	if err := b.checkMode(ModeInt16Complex); err != nil {
		return err
	}
	if err := b.checkIndex(i); err != nil {
		return err
	}
	b.order.PutUint16(b.data[4*i:], uint16(v.Real))
	b.order.PutUint16(b.data[4*i+2:], uint16(v.Imag))
	return nil
}

// SetComplex64At stores sample i of a mode 4 block, real first.
func (b DataBlockMut) SetComplex64At(i int, v complex64) error {
	if err := b.checkMode(ModeFloat32Complex); err != nil {
		return err
	}
	if err := b.checkIndex(i); err != nil {
		return err
	}
	b.order.PutUint32(b.data[8*i:], math.Float32bits(real(v)))
	b.order.PutUint32(b.data[8*i+4:], math.Float32bits(imag(v)))
	return nil
}

// SetNibbleAt stores sample i of a mode 101 block. Only the low 4 bits of v
// are stored; the neighboring nibble in the shared byte is preserved.
func (b DataBlockMut) SetNibbleAt(i int, v uint8) error {
	if err := b.checkMode(ModePacked4Bit); err != nil {
		return err
	}
	if err := b.checkIndex(i); err != nil {
		return err
	}
	v &= 0x0F
	if i%2 == 0 {
		b.data[i/2] = b.data[i/2]&0xF0 | v
	} else {
		b.data[i/2] = b.data[i/2]&0x0F | v<<4
	}
	return nil
}

// SetInt8s encodes values into a mode 0 block, filling it exactly.
func (b DataBlockMut) SetInt8s(values []int8) error {
	if err := b.checkMode(ModeInt8); err != nil {
		return err
	}
	if err := b.checkSrc(len(values)); err != nil {
		return err
	}
	for i, v := range values {
		b.data[i] = byte(v)
	}
	return nil
}

// SetInt16s encodes values into a mode 1 block, filling it exactly.
func (b DataBlockMut) SetInt16s(values []int16) error {
	if err := b.checkMode(ModeInt16); err != nil {
		return err
	}
	if err := b.checkSrc(len(values)); err != nil {
		return err
	}
	for i, v := range values {
		b.order.PutUint16(b.data[2*i:], uint16(v))
	}
	return nil
}

// SetUint16s encodes values into a mode 6 block, filling it exactly.
func (b DataBlockMut) SetUint16s(values []uint16) error {
	if err := b.checkMode(ModeUint16); err != nil {
		return err
	}
	if err := b.checkSrc(len(values)); err != nil {
		return err
	}
	for i, v := range values {
		b.order.PutUint16(b.data[2*i:], v)
	}
	return nil
}

// SetFloat16s encodes values into a mode 12 block, filling it exactly.
func (b DataBlockMut) SetFloat16s(values []float32) error {
	if err := b.checkMode(ModeFloat16); err != nil {
		return err
	}
	if err := b.checkSrc(len(values)); err != nil {
		return err
	}
	for i, v := range values {
		b.order.PutUint16(b.data[2*i:], float16.FromFloat32(v))
	}
	return nil
}

// SetFloat32s encodes values into a mode 2 block, filling it exactly.
func (b DataBlockMut) SetFloat32s(values []float32) error {
	if err := b.checkMode(ModeFloat32); err != nil {
		return err
	}
	if err := b.checkSrc(len(values)); err != nil {
		return err
	}
	for i, v := range values {
		b.order.PutUint32(b.data[4*i:], math.Float32bits(v))
	}
	return nil
}

// SetComplexInt16s encodes values into a mode 3 block, filling it exactly.
func (b DataBlockMut) SetComplexInt16s(values []ComplexInt16) error {
	if err := b.checkMode(ModeInt16Complex); err != nil {
		return err
	}
	if err := b.checkSrc(len(values)); err != nil {
		return err
	}
	for i, v := range values {
		b.order.PutUint16(b.data[4*i:], uint16(v.Real))
		b.order.PutUint16(b.data[4*i+2:], uint16(v.Imag))
	}
	return nil
}

// SetComplex64s encodes values into a mode 4 block, filling it exactly.
func (b DataBlockMut) SetComplex64s(values []complex64) error {
	if err := b.checkMode(ModeFloat32Complex); err != nil {
		return err
	}
	if err := b.checkSrc(len(values)); err != nil {
		return err
	}
	for i, v := range values {
		b.order.PutUint32(b.data[8*i:], math.Float32bits(real(v)))
		b.order.PutUint32(b.data[8*i+4:], math.Float32bits(imag(v)))
	}
	return nil
}

// SetNibbles encodes values into a mode 101 block, filling it exactly. Only
// the low 4 bits of each value are stored. For an odd sample count the
// trailing high nibble of the last byte is preserved.
func (b DataBlockMut) SetNibbles(values []uint8) error {
	if err := b.checkMode(ModePacked4Bit); err != nil {
		return err
	}
	if err := b.checkSrc(len(values)); err != nil {
		return err
	}
	for i, v := range values {
		v &= 0x0F
		if i%2 == 0 {
			b.data[i/2] = b.data[i/2]&0xF0 | v
		} else {
			b.data[i/2] = b.data[i/2]&0x0F | v<<4
		}
	}
	return nil
}
