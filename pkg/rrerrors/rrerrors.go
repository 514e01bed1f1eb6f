// Package rrerrors defines the sentinel error kinds returned by the rrfs
// host callback surface. Callers distinguish failure modes with
// errors.Is against these sentinels rather than type assertions, matching
// how POSIX errno values are consumed by a FUSE bridge.
package rrerrors

import "errors"

var (
	// ErrNotFound means no entry exists at the requested path.
	ErrNotFound = errors.New("rrfs: not found")

	// ErrNotADirectory means a path component that was expected to be a
	// directory resolved to a non-directory entry.
	ErrNotADirectory = errors.New("rrfs: not a directory")

	// ErrIsADirectory means an operation that requires a regular file was
	// given a directory.
	ErrIsADirectory = errors.New("rrfs: is a directory")

	// ErrPermissionDenied means the caller failed the POSIX access check
	// for the requested operation.
	ErrPermissionDenied = errors.New("rrfs: permission denied")

	// ErrReadOnly means a mutating operation was attempted against the
	// read-only filesystem.
	ErrReadOnly = errors.New("rrfs: read-only filesystem")

	// ErrNameTooLong means a path component, or the number of components,
	// exceeded the limits this module enforces.
	ErrNameTooLong = errors.New("rrfs: name too long")

	// ErrMalformedVolume means the underlying byte region does not decode
	// as a valid ISO 9660 volume.
	ErrMalformedVolume = errors.New("rrfs: malformed volume")

	// ErrOutOfMemory means an allocation implied by decoding a structure
	// (e.g. an absurd directory record length) was refused.
	ErrOutOfMemory = errors.New("rrfs: out of memory")
)
