// Package mrc provides a pure Go codec and safe-access layer for MRC2014 map
// files (1024-byte header, optional extended header, typed voxel data).
// It reads and writes both little- and big-endian files and always presents
// voxel values in native byte order, so callers never deal with the file's
// byte order directly.
package mrc

import "errors"

// Sentinel errors returned by the codec and the access layer. I/O failures
// from the operating system are wrapped with context but surfaced unchanged;
// check them with errors.Is against the os/io error values.
var (
	// ErrInvalidHeader indicates a header that fails Validate.
	ErrInvalidHeader = errors.New("mrc: invalid header")

	// ErrInvalidMode indicates an unregistered mode code, or typed access
	// that does not match the data block's actual mode.
	ErrInvalidMode = errors.New("mrc: invalid mode")

	// ErrInvalidDimensions indicates a mismatch between a declared size and
	// the actual byte length, or an out-of-range sample index.
	ErrInvalidDimensions = errors.New("mrc: invalid dimensions")

	// ErrTypeMismatch indicates that raw bytes cannot be reinterpreted as the
	// requested type (wrong byte order or misaligned storage). Only the
	// zero-copy access path returns it; the decoding path reports
	// ErrInvalidMode or ErrInvalidDimensions instead.
	ErrTypeMismatch = errors.New("mrc: type mismatch")
)
