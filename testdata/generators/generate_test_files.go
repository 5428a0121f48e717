//go:build ignore

// Generates small MRC files under testdata/ for manual testing: one map per
// mode, a big-endian map and a gzipped map.
package main

import (
	"encoding/binary"
	"log"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/scigolib/mrc"
)

func main() {
	modes := []mrc.Mode{
		mrc.ModeInt8,
		mrc.ModeInt16,
		mrc.ModeFloat32,
		mrc.ModeInt16Complex,
		mrc.ModeFloat32Complex,
		mrc.ModeUint16,
		mrc.ModeFloat16,
		mrc.ModePacked4Bit,
	}

	for _, mode := range modes {
		header := newHeader(4, mode)
		path := "testdata/" + "mode_" + mode.String() + ".mrc"
		if err := mrc.Save(path, header, make([]byte, header.DataSize())); err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		fillRamp(path)
	}

	// Big-endian float32 map.
	header := newHeader(4, mrc.ModeFloat32)
	header.SetByteOrder(binary.BigEndian)
	if err := mrc.Save("testdata/big_endian.mrc", header, make([]byte, header.DataSize())); err != nil {
		log.Fatal(err)
	}
	fillRamp("testdata/big_endian.mrc")

	// Gzipped little-endian float32 map.
	raw, err := os.ReadFile("testdata/mode_Float32.mrc")
	if err != nil {
		log.Fatal(err)
	}
	out, err := os.Create("testdata/mode_Float32.mrc.gz")
	if err != nil {
		log.Fatal(err)
	}
	zw := gzip.NewWriter(out)
	if _, err := zw.Write(raw); err != nil {
		log.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		log.Fatal(err)
	}
	if err := out.Close(); err != nil {
		log.Fatal(err)
	}
}

func newHeader(n int32, mode mrc.Mode) mrc.Header {
	h := mrc.NewHeader()
	h.Nx, h.Ny, h.Nz = n, n, n
	h.Mx, h.My, h.Mz = n, n, n
	h.XLen, h.YLen, h.ZLen = float32(n), float32(n), float32(n)
	h.Mode = int32(mode)
	return h
}

// fillRamp writes an ascending ramp through the typed access layer so the
// bytes land in the file's declared byte order.
func fillRamp(path string) {
	f, err := mrc.Open(path)
	if err != nil {
		log.Fatalf("%s: %v", path, err)
	}
	defer f.Close()

	view, err := f.ViewMut()
	if err != nil {
		log.Fatalf("%s: %v", path, err)
	}

	data := view.Data()
	for i := 0; i < data.Len(); i++ {
		switch view.Mode() {
		case mrc.ModeInt8:
			err = data.SetInt8At(i, int8(i))
		case mrc.ModeInt16:
			err = data.SetInt16At(i, int16(i))
		case mrc.ModeFloat32:
			err = data.SetFloat32At(i, float32(i))
		case mrc.ModeInt16Complex:
			err = data.SetComplexInt16At(i, mrc.ComplexInt16{Real: int16(i), Imag: int16(-i)})
		case mrc.ModeFloat32Complex:
			err = data.SetComplex64At(i, complex(float32(i), float32(-i)))
		case mrc.ModeUint16:
			err = data.SetUint16At(i, uint16(i))
		case mrc.ModeFloat16:
			err = data.SetFloat16At(i, float32(i))
		case mrc.ModePacked4Bit:
			err = data.SetNibbleAt(i, uint8(i%16))
		}
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
	}

	if err := f.Flush(); err != nil {
		log.Fatalf("%s: %v", path, err)
	}
}
