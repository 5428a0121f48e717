package mrc

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/scigolib/mrc/internal/utils"
)

// File is an MRC map opened from the filesystem. The header is decoded into
// native byte order once at open; the extended header and voxel data are
// buffered in file byte order and served to views. Writes go to both the
// buffer and the file, at the offsets the format dictates.
//
// Files compressed with gzip (a common way to distribute maps) are detected
// by magic number and decompressed into the buffer transparently; such files
// are read-only.
type File struct {
	osFile  *os.File
	header  Header
	buf     []byte // extended header followed by voxel data, file-endian
	extLen  int
	dataLen int
	gzipped bool
}

// Open opens an MRC file for reading and writing through its buffer.
// The header is validated before anything else is read.
func Open(filename string) (*File, error) {
	//nolint:gosec // G304: user-provided filename is intentional for a map file library
	f, err := os.Open(filename)
	if err != nil {
		return nil, utils.WrapError("file open failed", err)
	}

	if isGzipFile(f) {
		defer func() { _ = f.Close() }()
		return openGzip(f)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, utils.WrapError("file stat failed", err)
	}

	header, err := readHeaderAt(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	file, err := newFromHeader(f, header, fi.Size())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return file, nil
}

// Create creates a new MRC file sized for the header's declared extension
// and data lengths, with the extension and data regions zeroed. The header
// must validate.
func Create(filename string, header Header) (*File, error) {
	if !header.Validate() {
		return nil, fmt.Errorf("%w: refusing to create file from invalid header", ErrInvalidHeader)
	}

	extLen := int(header.NSymBT)
	dataLen := header.DataSize()
	if err := utils.ValidateBufferSize(dataLen, utils.MaxDataSize, "voxel data"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDimensions, err)
	}

	//nolint:gosec // G304: user-provided filename is intentional for a map file library
	f, err := os.Create(filename)
	if err != nil {
		return nil, utils.WrapError("file create failed", err)
	}

	if _, err := f.WriteAt(header.Bytes(), 0); err != nil {
		_ = f.Close()
		return nil, utils.WrapError("header write failed", err)
	}

	// Zero the extension and data regions so the file is immediately valid.
	total := header.DataOffset() + int64(dataLen)
	if err := f.Truncate(total); err != nil {
		_ = f.Close()
		return nil, utils.WrapError("file truncate failed", err)
	}

	return &File{
		osFile:  f,
		header:  header,
		buf:     make([]byte, extLen+int(dataLen)),
		extLen:  extLen,
		dataLen: int(dataLen),
	}, nil
}

// Save writes a complete map in one call: the header, a zeroed extension
// region and the given file-endian data bytes.
func Save(filename string, header Header, data []byte) error {
	f, err := Create(filename, header)
	if err != nil {
		return err
	}
	if err := f.WriteData(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// isGzipFile checks the two-byte gzip magic number.
func isGzipFile(r io.ReaderAt) bool {
	buf := utils.GetBuffer(2)
	defer utils.ReleaseBuffer(buf)

	if _, err := r.ReadAt(buf, 0); err != nil {
		return false
	}
	return buf[0] == 0x1f && buf[1] == 0x8b
}

// readHeaderAt reads and decodes the 1024-byte header, then validates it.
func readHeaderAt(r io.ReaderAt) (Header, error) {
	buf := utils.GetBuffer(HeaderSize)
	defer utils.ReleaseBuffer(buf)

	if _, err := r.ReadAt(buf, 0); err != nil {
		return Header{}, utils.WrapError("header read failed", err)
	}

	header, err := DecodeHeader(buf)
	if err != nil {
		return Header{}, err
	}
	if !header.Validate() {
		return Header{}, fmt.Errorf("%w: not a valid MRC file", ErrInvalidHeader)
	}
	return header, nil
}

// newFromHeader sizes the buffer from the header and fills it from r.
func newFromHeader(r *os.File, header Header, fileSize int64) (*File, error) {
	extLen := int(header.NSymBT)
	dataLen := header.DataSize()
	if err := utils.ValidateBufferSize(dataLen, utils.MaxDataSize, "voxel data"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDimensions, err)
	}
	if err := utils.ValidateBufferSize(uint64(extLen), utils.MaxExtHeaderSize, "extended header"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDimensions, err)
	}

	if fileSize < header.DataOffset()+int64(dataLen) {
		return nil, fmt.Errorf("%w: file is %d bytes, header declares %d",
			ErrInvalidDimensions, fileSize, header.DataOffset()+int64(dataLen))
	}

	buf := make([]byte, extLen+int(dataLen))
	if extLen > 0 {
		if _, err := r.ReadAt(buf[:extLen], HeaderSize); err != nil {
			return nil, utils.WrapError("extended header read failed", err)
		}
	}
	if dataLen > 0 {
		if _, err := r.ReadAt(buf[extLen:], header.DataOffset()); err != nil {
			return nil, utils.WrapError("data read failed", err)
		}
	}

	return &File{
		osFile:  r,
		header:  header,
		buf:     buf,
		extLen:  extLen,
		dataLen: int(dataLen),
	}, nil
}

// openGzip decompresses the whole stream and parses it in memory.
func openGzip(f *os.File) (*File, error) {
	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, utils.WrapError("gzip open failed", err)
	}
	defer func() { _ = zr.Close() }()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, utils.WrapError("gzip read failed", err)
	}
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("%w: decompressed stream is %d bytes", ErrInvalidHeader, len(raw))
	}

	header, err := DecodeHeader(raw[:HeaderSize])
	if err != nil {
		return nil, err
	}
	if !header.Validate() {
		return nil, fmt.Errorf("%w: not a valid MRC file", ErrInvalidHeader)
	}

	extLen := int(header.NSymBT)
	dataLen := int(header.DataSize())
	if int64(len(raw)) < header.DataOffset()+int64(dataLen) {
		return nil, fmt.Errorf("%w: decompressed stream is %d bytes, header declares %d",
			ErrInvalidDimensions, len(raw), header.DataOffset()+int64(dataLen))
	}

	return &File{
		header:  header,
		buf:     raw[HeaderSize : HeaderSize+extLen+dataLen],
		extLen:  extLen,
		dataLen: dataLen,
		gzipped: true,
	}, nil
}

// errReadOnly is returned for write operations on gzip-backed files.
var errReadOnly = errors.New("mrc: gzip-compressed file is read-only")

// ReadOnly reports whether the file came from a gzip stream and therefore
// rejects writes.
func (f *File) ReadOnly() bool { return f.gzipped }

// writable guards the write paths against gzip-backed and closed files.
func (f *File) writable() error {
	if f.gzipped {
		return errReadOnly
	}
	if f.osFile == nil {
		return os.ErrClosed
	}
	return nil
}

// Header returns the decoded header. Mutations become durable only through
// WriteHeader or WriteView.
func (f *File) Header() *Header { return &f.header }

// View returns a read-only view over the buffered extension and data bytes.
func (f *File) View() (*View, error) {
	return NewView(f.header, f.buf[:f.extLen], f.buf[f.extLen:])
}

// ViewMut returns a mutable view over the buffered bytes. Mutations become
// durable only through WriteView, WriteExtHeader or WriteData.
func (f *File) ViewMut() (*ViewMut, error) {
	if f.gzipped {
		return nil, errReadOnly
	}
	return NewViewMut(f.header, f.buf[:f.extLen], f.buf[f.extLen:])
}

// ReadExtHeader returns the buffered extended-header bytes.
func (f *File) ReadExtHeader() []byte { return f.buf[:f.extLen] }

// ReadData returns the buffered file-endian voxel bytes.
func (f *File) ReadData() []byte { return f.buf[f.extLen:] }

// WriteHeader encodes the current header and writes it at offset 0.
func (f *File) WriteHeader() error {
	if err := f.writable(); err != nil {
		return err
	}
	if _, err := f.osFile.WriteAt(f.header.Bytes(), 0); err != nil {
		return utils.WrapError("header write failed", err)
	}
	return nil
}

// WriteExtHeader writes the extension region. The length must equal the
// header's declared extension length.
func (f *File) WriteExtHeader(data []byte) error {
	if err := f.writable(); err != nil {
		return err
	}
	if len(data) != f.extLen {
		return fmt.Errorf("%w: extended header is %d bytes, header declares %d",
			ErrInvalidDimensions, len(data), f.extLen)
	}
	if _, err := f.osFile.WriteAt(data, HeaderSize); err != nil {
		return utils.WrapError("extended header write failed", err)
	}
	copy(f.buf[:f.extLen], data)
	return nil
}

// WriteData writes the voxel data region. The bytes must already be in the
// file's byte order and their length must equal the header's declared data
// size.
func (f *File) WriteData(data []byte) error {
	if err := f.writable(); err != nil {
		return err
	}
	if len(data) != f.dataLen {
		return fmt.Errorf("%w: data block is %d bytes, header declares %d",
			ErrInvalidDimensions, len(data), f.dataLen)
	}
	if _, err := f.osFile.WriteAt(data, f.header.DataOffset()); err != nil {
		return utils.WrapError("data write failed", err)
	}
	copy(f.buf[f.extLen:], data)
	return nil
}

// WriteView persists all three components of a view: its header, its
// extended header and its data bytes. The view's declared sizes must match
// the sizes this file was opened or created with.
func (f *File) WriteView(v *View) error {
	if err := f.writable(); err != nil {
		return err
	}
	if len(v.ExtHeader()) != f.extLen || len(v.Data().Bytes()) != f.dataLen {
		return fmt.Errorf("%w: view sizes (%d,%d) do not match file sizes (%d,%d)",
			ErrInvalidDimensions, len(v.ExtHeader()), len(v.Data().Bytes()), f.extLen, f.dataLen)
	}

	f.header = *v.Header()
	if err := f.WriteHeader(); err != nil {
		return err
	}
	if f.extLen > 0 {
		if err := f.WriteExtHeader(v.ExtHeader()); err != nil {
			return err
		}
	}
	return f.WriteData(v.Data().Bytes())
}

// Flush persists the current header and the whole buffer, making mutations
// done through a ViewMut durable.
func (f *File) Flush() error {
	if err := f.WriteHeader(); err != nil {
		return err
	}
	if f.extLen > 0 {
		if _, err := f.osFile.WriteAt(f.buf[:f.extLen], HeaderSize); err != nil {
			return utils.WrapError("extended header write failed", err)
		}
	}
	if f.dataLen > 0 {
		if _, err := f.osFile.WriteAt(f.buf[f.extLen:], f.header.DataOffset()); err != nil {
			return utils.WrapError("data write failed", err)
		}
	}
	return nil
}

// Close closes the underlying file. It is safe to call Close multiple times
// and on gzip-backed files, which hold no descriptor.
func (f *File) Close() error {
	if f.osFile == nil {
		return nil // Already closed or gzip-backed.
	}
	err := f.osFile.Close()
	f.osFile = nil // Prevent double close.
	return err
}
