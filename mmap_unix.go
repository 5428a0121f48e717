//go:build unix

package mrc

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/scigolib/mrc/internal/utils"
)

// Mmap is an MRC map backed by a memory mapping instead of a buffer. Views
// built from it alias the mapping directly, so voxel access is zero-copy and
// the operating system pages data in on demand. This is the preferred way to
// work with maps too large to hold in memory.
//
// A writable mapping uses MAP_SHARED, so typed writes through ViewMut land
// in the page cache and reach the file after Sync or Close.
type Mmap struct {
	data     []byte
	header   Header
	writable bool
	extLen   int
	dataOff  int
	dataLen  int
}

// OpenMmap maps an MRC file read-only and validates its structure.
func OpenMmap(filename string) (*Mmap, error) {
	return openMmap(filename, false)
}

// OpenMmapWrite maps an MRC file read-write. The caller must serialize
// writers against any concurrent reader of the same file.
func OpenMmapWrite(filename string) (*Mmap, error) {
	return openMmap(filename, true)
}

func openMmap(filename string, writable bool) (*Mmap, error) {
	flag := os.O_RDONLY
	prot := unix.PROT_READ
	if writable {
		flag = os.O_RDWR
		prot |= unix.PROT_WRITE
	}

	//nolint:gosec // G304: user-provided filename is intentional for a map file library
	f, err := os.OpenFile(filename, flag, 0)
	if err != nil {
		return nil, utils.WrapError("file open failed", err)
	}
	// The mapping outlives the descriptor.
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, utils.WrapError("file stat failed", err)
	}
	size64 := fi.Size()
	if size64 < HeaderSize {
		return nil, fmt.Errorf("%w: file is %d bytes, header needs %d",
			ErrInvalidHeader, size64, HeaderSize)
	}
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: file of %d bytes cannot be mapped on this architecture",
			ErrInvalidDimensions, size64)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size64), prot, unix.MAP_SHARED)
	if err != nil {
		return nil, utils.WrapError("mmap failed", err)
	}

	m, err := newMmap(data, writable, size64)
	if err != nil {
		_ = unix.Munmap(data)
		return nil, err
	}
	return m, nil
}

func newMmap(data []byte, writable bool, size int64) (*Mmap, error) {
	header, err := DecodeHeader(data[:HeaderSize])
	if err != nil {
		return nil, err
	}
	if !header.Validate() {
		return nil, fmt.Errorf("%w: not a valid MRC file", ErrInvalidHeader)
	}

	extLen := int(header.NSymBT)
	dataOff := int(header.DataOffset())
	dataLen := int(header.DataSize())
	if size < int64(dataOff)+int64(dataLen) {
		return nil, fmt.Errorf("%w: file is %d bytes, header declares %d",
			ErrInvalidDimensions, size, int64(dataOff)+int64(dataLen))
	}

	return &Mmap{
		data:     data,
		header:   header,
		writable: writable,
		extLen:   extLen,
		dataOff:  dataOff,
		dataLen:  dataLen,
	}, nil
}

// Header returns the decoded header. For writable mappings, mutations become
// durable only through WriteHeader.
func (m *Mmap) Header() *Header { return &m.header }

// ExtHeader returns the mapped extended-header bytes.
func (m *Mmap) ExtHeader() []byte {
	return m.data[HeaderSize : HeaderSize+m.extLen]
}

// Data returns the mapped file-endian voxel bytes.
func (m *Mmap) Data() []byte {
	return m.data[m.dataOff : m.dataOff+m.dataLen]
}

// View returns a read-only view aliasing the mapping. The view must not be
// used after Close.
func (m *Mmap) View() (*View, error) {
	return NewView(m.header, m.ExtHeader(), m.Data())
}

// ViewMut returns a mutable view aliasing the mapping. It fails on mappings
// opened with OpenMmap.
func (m *Mmap) ViewMut() (*ViewMut, error) {
	if !m.writable {
		return nil, fmt.Errorf("mrc: mapping is read-only")
	}
	return NewViewMut(m.header, m.ExtHeader(), m.Data())
}

// WriteHeader encodes the current header into the mapped header region.
func (m *Mmap) WriteHeader() error {
	if !m.writable {
		return fmt.Errorf("mrc: mapping is read-only")
	}
	return m.header.Encode(m.data[:HeaderSize])
}

// Sync flushes a writable mapping to the file.
func (m *Mmap) Sync() error {
	if !m.writable {
		return nil
	}
	if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
		return utils.WrapError("msync failed", err)
	}
	return nil
}

// Close unmaps the file. Views and slices obtained from the mapping are
// invalid afterwards. It is safe to call Close multiple times.
func (m *Mmap) Close() error {
	if m.data == nil {
		return nil // Already closed.
	}
	err := unix.Munmap(m.data)
	m.data = nil // Prevent double unmap.
	if err != nil {
		return utils.WrapError("munmap failed", err)
	}
	return nil
}
