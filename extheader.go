package mrc

// ExtHeader is a read-only holder for the extended header, the opaque byte
// region between the fixed header and the voxel data. Its content depends on
// the EXTTYP tag (symmetry records for crystallographic maps, per-section
// metadata for FEI and serialEM files) and is never byte-order converted or
// otherwise interpreted here.
type ExtHeader struct {
	data []byte
}

// NewExtHeader wraps an extended-header byte range. The holder borrows the
// bytes; it never copies or owns them.
func NewExtHeader(data []byte) ExtHeader {
	return ExtHeader{data: data}
}

// Bytes returns the underlying byte range.
func (e ExtHeader) Bytes() []byte { return e.data }

// Len returns the byte length.
func (e ExtHeader) Len() int { return len(e.data) }

// ExtHeaderMut is the mutable variant of ExtHeader.
type ExtHeaderMut struct {
	ExtHeader
}

// NewExtHeaderMut wraps a mutable extended-header byte range.
func NewExtHeaderMut(data []byte) ExtHeaderMut {
	return ExtHeaderMut{ExtHeader: ExtHeader{data: data}}
}

// BytesMut returns the underlying byte range for mutation.
func (e ExtHeaderMut) BytesMut() []byte { return e.data }
