package mrc

import "fmt"

// View binds one validated header to its extended-header bytes and its voxel
// data bytes. Construction checks that the three parts are mutually
// consistent; after that the view is assumed consistent for its lifetime.
// The view borrows both byte ranges and never owns the storage, so it is
// equally at home over a heap buffer or a memory mapping.
type View struct {
	header Header
	ext    ExtHeader
	data   DataBlock
}

// viewParts validates the header against the two byte ranges and returns the
// pieces shared by both view kinds.
func viewParts(header *Header, ext, data []byte) (Mode, int, error) {
	if !header.Validate() {
		return 0, 0, fmt.Errorf("%w: header fails validation", ErrInvalidHeader)
	}

	mode, ok := ModeFromCode(header.Mode)
	if !ok {
		// Unreachable after Validate, kept as a guard for direct misuse.
		return 0, 0, fmt.Errorf("%w: mode code %d", ErrInvalidMode, header.Mode)
	}

	if len(ext) != int(header.NSymBT) {
		return 0, 0, fmt.Errorf("%w: extended header is %d bytes, header declares %d",
			ErrInvalidDimensions, len(ext), header.NSymBT)
	}

	if uint64(len(data)) != header.DataSize() {
		return 0, 0, fmt.Errorf("%w: data block is %d bytes, header declares %d",
			ErrInvalidDimensions, len(data), header.DataSize())
	}

	return mode, int(header.VoxelCount()), nil
}

// NewView builds a read-only view from a decoded header and the two byte
// ranges that follow it in the file layout. It fails with ErrInvalidHeader
// when the header does not validate, with ErrInvalidMode for an unregistered
// mode code, and with ErrInvalidDimensions when either byte range does not
// exactly match the header's declared sizes. The byte order is derived from
// the machine stamp once, at construction.
func NewView(header Header, ext, data []byte) (*View, error) {
	mode, samples, err := viewParts(&header, ext, data)
	if err != nil {
		return nil, err
	}

	block, err := NewDataBlock(data, mode, header.ByteOrder(), samples)
	if err != nil {
		return nil, err
	}

	return &View{
		header: header,
		ext:    NewExtHeader(ext),
		data:   block,
	}, nil
}

// Header returns the view's header.
func (v *View) Header() *Header { return &v.header }

// Mode returns the voxel encoding.
func (v *View) Mode() Mode { return v.data.Mode() }

// Dimensions returns the voxel counts along the fast, medium and slow axes.
func (v *View) Dimensions() (nx, ny, nz int) {
	return int(v.header.Nx), int(v.header.Ny), int(v.header.Nz)
}

// ExtHeader returns the raw extended-header bytes.
func (v *View) ExtHeader() []byte { return v.ext.Bytes() }

// Data returns the typed accessor over the voxel bytes.
func (v *View) Data() DataBlock { return v.data }

// ViewMut is the mutable counterpart of View. On top of the read surface it
// exposes direct header mutation and typed or raw data writes.
//
// HeaderMut hands out the header for in-place editing without re-validation;
// changing Mode, the dimensions or NSymBT desynchronizes the header from the
// already-sized data block, and keeping them consistent is the caller's
// responsibility.
type ViewMut struct {
	header Header
	ext    ExtHeaderMut
	data   DataBlockMut
}

// NewViewMut builds a mutable view under the same rules as NewView.
func NewViewMut(header Header, ext, data []byte) (*ViewMut, error) {
	mode, samples, err := viewParts(&header, ext, data)
	if err != nil {
		return nil, err
	}

	block, err := NewDataBlockMut(data, mode, header.ByteOrder(), samples)
	if err != nil {
		return nil, err
	}

	return &ViewMut{
		header: header,
		ext:    NewExtHeaderMut(ext),
		data:   block,
	}, nil
}

// Header returns the view's header.
func (v *ViewMut) Header() *Header { return &v.header }

// HeaderMut returns the header for direct mutation. See the type comment for
// the consistency obligations this places on the caller.
func (v *ViewMut) HeaderMut() *Header { return &v.header }

// Mode returns the voxel encoding.
func (v *ViewMut) Mode() Mode { return v.data.Mode() }

// Dimensions returns the voxel counts along the fast, medium and slow axes.
func (v *ViewMut) Dimensions() (nx, ny, nz int) {
	return int(v.header.Nx), int(v.header.Ny), int(v.header.Nz)
}

// ExtHeader returns the extended-header bytes. The slice is the mutable
// backing range, so writes through it land in the underlying storage.
func (v *ViewMut) ExtHeader() []byte { return v.ext.BytesMut() }

// Data returns the typed mutable accessor over the voxel bytes.
func (v *ViewMut) Data() DataBlockMut { return v.data }

// DataMut returns the raw voxel bytes for byte-level poking when typed
// access is insufficient. Bytes written through it must be in the file's
// byte order.
func (v *ViewMut) DataMut() []byte { return v.data.BytesMut() }
