package rrfs

import (
	"fmt"

	"github.com/go-rrfs/rrfs/pkg/access"
	"github.com/go-rrfs/rrfs/pkg/directory"
	"github.com/go-rrfs/rrfs/pkg/rrerrors"
)

// DirHandle is the opaque handle opendir returns: the directory record
// itself, per spec.md §6.2 ("opaque handle (the directory record)").
type DirHandle struct {
	record *directory.Record
}

// FileHandle is the opaque handle open returns: an extent pointer plus
// length, per spec.md §6.2 ("opaque handle = (extent pointer, length)").
// There is no per-open allocation beyond this struct — reads index
// directly into the Image's byte region.
type FileHandle struct {
	img    *Image
	record *directory.Record
}

// DirEntry is one name readdir streams back.
type DirEntry struct {
	Name  string
	IsDir bool
}

// OpenDir answers spec.md §6.2's opendir(path) operation.
func (img *Image) OpenDir(path string, caller Caller) (*DirHandle, error) {
	rr, err := img.resolvePath(path)
	if err != nil {
		return nil, err
	}
	if !rr.Record.IsDir() {
		return nil, fmt.Errorf("opening %q: %w", path, rrerrors.ErrNotADirectory)
	}
	if !access.Check(rr, caller, access.Execute) {
		return nil, rrerrors.ErrPermissionDenied
	}
	return &DirHandle{record: rr.Record}, nil
}

// ReadDir answers spec.md §6.2's readdir(handle) operation, streaming
// "." and ".." ahead of the directory's real children, the order they
// have on disc. directory.Children skips the on-disc "." and ".."
// records, so ReadDir adds the two names itself.
func (img *Image) ReadDir(h *DirHandle) ([]DirEntry, error) {
	children, err := directory.Children(img.vol.View, h.record, img.vol.LogicalBlockSize(), img.vol.SUSPSkip)
	if err != nil {
		return nil, err
	}

	entries := make([]DirEntry, 0, len(children)+2)
	entries = append(entries, DirEntry{Name: ".", IsDir: true}, DirEntry{Name: "..", IsDir: true})
	for _, c := range children {
		entries = append(entries, DirEntry{Name: c.Name(), IsDir: c.IsDir()})
	}
	return entries, nil
}

// Open answers spec.md §6.2's open(path, flags) operation. write
// requests any mode other than read-only and always fails: this is a
// read-only filesystem.
func (img *Image) Open(path string, caller Caller, write bool) (*FileHandle, error) {
	if write {
		return nil, rrerrors.ErrPermissionDenied
	}

	rr, err := img.resolvePath(path)
	if err != nil {
		return nil, err
	}
	if rr.Record.IsDir() {
		return nil, fmt.Errorf("opening %q: %w", path, rrerrors.ErrIsADirectory)
	}
	if !access.Check(rr, caller, access.Read) {
		return nil, rrerrors.ErrPermissionDenied
	}

	return &FileHandle{img: img, record: rr.Record}, nil
}

// Read answers spec.md §6.2's read(handle, off, n) operation: it returns
// exactly max(0, min(n, L-off)) bytes, truncating at the extent's end
// and returning zero bytes past EOF. It returns an error only when the
// file's extent lies outside the image.
func (img *Image) Read(h *FileHandle, off int64, n int) ([]byte, error) {
	return img.ReadExtent(h.record, off, n)
}

// ReadExtent is Read's record-addressed counterpart, for collaborators
// (such as cmd/rrfsmount's inode-keyed FUSE bridge) that already hold a
// *directory.Record and have no FileHandle to go through. Same
// truncate-at-EOF semantics as Read.
func (img *Image) ReadExtent(rec *directory.Record, off int64, n int) ([]byte, error) {
	size := int64(rec.DataLength)
	if off < 0 || off >= size || n <= 0 {
		return nil, nil
	}
	if off+int64(n) > size {
		n = int(size - off)
	}

	base := int(rec.ExtentLocation)*img.vol.LogicalBlockSize() + int(off)
	return img.vol.View.Bytes(base, n)
}

// ChildRecords lists dir's children as decoded directory.Records (no "."
// or ".." and no DirEntry translation), for collaborators that need the
// records themselves rather than ReadDir's name-only view — notably
// cmd/rrfsmount, which keys its inode table off *directory.Record.
func (img *Image) ChildRecords(dir *directory.Record) ([]*directory.Record, error) {
	return directory.Children(img.vol.View, dir, img.vol.LogicalBlockSize(), img.vol.SUSPSkip)
}

// FindChild looks up a single named child of dir, the record-addressed
// counterpart to OpenDir+ReadDir's path-addressed lookup.
func (img *Image) FindChild(dir *directory.Record, name string) (*directory.Record, error) {
	return directory.Find(img.vol.View, dir, name, img.vol.LogicalBlockSize(), img.vol.SUSPSkip)
}

// Release answers spec.md §6.2's release(handle) operation. There is
// nothing to free: a FileHandle holds no resources beyond a pointer into
// the Image's immutable byte region.
func (img *Image) Release(*FileHandle) {}

// ReleaseDir is release's directory-handle counterpart, kept distinct
// from Release since the two opaque handle types aren't interchangeable
// at the callback boundary (mirroring FUSE's own opendir/open split).
func (img *Image) ReleaseDir(*DirHandle) {}
