// Package endian maps the MRC machine stamp to a byte order and probes the
// byte order of the host.
//
// MRC files record their byte order in-band: bytes 212-215 of the header hold
// a 4-byte machine stamp. Only the first two bytes are meaningful. Files
// written by modern tools use 0x44 0x44 for little-endian and 0x11 0x11 for
// big-endian; everything else is treated as little-endian, which matches how
// the major readers behave on files with a damaged or legacy stamp.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// Canonical machine stamps per MRC2014.
var (
	StampLittle = [4]byte{0x44, 0x44, 0x00, 0x00}
	StampBig    = [4]byte{0x11, 0x11, 0x00, 0x00}
)

// Detect returns the byte order encoded by a machine stamp. The second
// return is false when the stamp is not one of the two recognized values and
// the little-endian default was applied.
func Detect(stamp [4]byte) (binary.ByteOrder, bool) {
	switch {
	case stamp[0] == 0x44 && stamp[1] == 0x44:
		return binary.LittleEndian, true
	case stamp[0] == 0x11 && stamp[1] == 0x11:
		return binary.BigEndian, true
	default:
		return binary.LittleEndian, false
	}
}

// Stamp returns the canonical machine stamp for a byte order.
func Stamp(order binary.ByteOrder) [4]byte {
	if order == binary.BigEndian {
		return StampBig
	}
	return StampLittle
}

// Opposite returns the inverse byte order.
func Opposite(order binary.ByteOrder) binary.ByteOrder {
	if order == binary.BigEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Native probes the host byte order with a fixed integer value.
func Native() binary.ByteOrder {
	// 0x0100 is 256. On a little-endian host the LSB (0x00) comes first;
	// on a big-endian host the MSB (0x01) comes first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// NativeStamp returns the canonical machine stamp for the host byte order.
func NativeStamp() [4]byte {
	return Stamp(Native())
}

// IsNative reports whether order matches the host byte order.
func IsNative(order binary.ByteOrder) bool {
	return order == Native()
}
