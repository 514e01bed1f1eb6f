// Package rrfs is the host callback surface for a read-only ISO 9660 +
// Rock Ridge filesystem: Statfs, Getattr, Access, OpenDir, ReadDir, Open,
// Read, and Release, implemented as methods on Image. Image is built
// once by Open and is immutable thereafter — every method is a pure
// function of the byte region plus its arguments, so it requires no
// locking and may be called concurrently from multiple goroutines, the
// way the host kernel-filesystem bridge will.
package rrfs

import (
	"fmt"

	"github.com/go-rrfs/rrfs/pkg/access"
	"github.com/go-rrfs/rrfs/pkg/directory"
	"github.com/go-rrfs/rrfs/pkg/logging"
	"github.com/go-rrfs/rrfs/pkg/resolve"
	"github.com/go-rrfs/rrfs/pkg/rockridge"
	"github.com/go-rrfs/rrfs/pkg/rrerrors"
	"github.com/go-rrfs/rrfs/pkg/volume"
)

// Caller identifies the principal issuing a host callback.
type Caller = access.Caller

// Image is the loaded, immutable volume plus the options Open was given.
type Image struct {
	vol *volume.Image
	opt options
	log *logging.Logger
}

// Open parses data as an ISO 9660 volume (see pkg/volume.Load) and
// returns an Image ready to answer host callbacks.
func Open(data []byte, opts ...Option) (*Image, error) {
	o := buildOptions(opts...)

	vol, err := volume.Load(data, o.logger)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}

	return &Image{
		vol: vol,
		opt: o,
		log: logging.NewLogger(o.logger),
	}, nil
}

// StatfsResult is statfs's reply: block size, total blocks, and an
// approximate file count (see pkg/volume.Image.FileCount).
type StatfsResult struct {
	BlockSize       int
	Blocks          uint32
	ApproxFileCount int
}

// Statfs answers spec.md §6.2's statfs(path) operation. path is accepted
// for interface symmetry with the other callbacks but unused: the result
// describes the whole volume.
func (img *Image) Statfs(_ string) StatfsResult {
	return StatfsResult{
		BlockSize:       img.vol.LogicalBlockSize(),
		Blocks:          img.vol.PVD.VolumeSpaceSize,
		ApproxFileCount: img.vol.FileCount(),
	}
}

// resolvePath is the shared entry point every path-taking callback uses.
func (img *Image) resolvePath(path string) (*resolve.ResolvedRecord, error) {
	rr, err := resolve.Resolve(img.vol, path)
	if err != nil {
		return nil, err
	}
	return rr, nil
}

// Getattr answers spec.md §6.2's getattr(path) operation.
func (img *Image) Getattr(path string) (Attr, error) {
	rr, err := img.resolvePath(path)
	if err != nil {
		return Attr{}, err
	}
	return attrFromRecord(rr.Record, img.opt), nil
}

// Access answers spec.md §6.2's access(path, mask) operation. mask F
// (existence only) is expressed as a zero access.Mode, which
// access.Check always grants. A mask including Write fails with
// ErrReadOnly regardless of the record's mode bits: writes are refused
// at this layer, before any permission evaluation.
func (img *Image) Access(path string, caller Caller, mask access.Mode) error {
	rr, err := img.resolvePath(path)
	if err != nil {
		return err
	}
	if mask&access.Write != 0 {
		return rrerrors.ErrReadOnly
	}
	if !access.Check(rr, caller, mask) {
		return rrerrors.ErrPermissionDenied
	}
	return nil
}

// HasRockRidge reports whether the volume's root directory advertises
// Rock Ridge support: an ER record naming the Rock Ridge extension, or
// any PX, NM or TF field (see rockridge.HasRockRidge). The fields are
// read from the root extent's "." entry, since the PVD's embedded root
// record cannot carry a system use area.
func (img *Image) HasRockRidge() bool {
	return rockridge.HasRockRidge(img.vol.RootSUSP)
}

// RootRecord exposes the volume's root directory record for callers that
// need to drive pkg/directory or Walk directly, such as cmd/rrfsinfo's
// -stats traversal.
func (img *Image) RootRecord() *directory.Record {
	return img.vol.PVD.RootDirectory
}

// VolumeInfo is a read-only summary of PVD metadata, for diagnostic
// tooling like cmd/rrfsinfo.
type VolumeInfo struct {
	SystemIdentifier string
	VolumeIdentifier string
	ApplicationID    string
	PublisherID      string
	VolumeSpaceSize  uint32
	LogicalBlockSize int
	HasRockRidge     bool
}

// Info returns the volume's PVD metadata and Rock Ridge presence.
func (img *Image) Info() VolumeInfo {
	return VolumeInfo{
		SystemIdentifier: img.vol.PVD.SystemIdentifier,
		VolumeIdentifier: img.vol.PVD.VolumeIdentifier,
		ApplicationID:    img.vol.PVD.ApplicationIdentifier,
		PublisherID:      img.vol.PVD.PublisherIdentifier,
		VolumeSpaceSize:  img.vol.PVD.VolumeSpaceSize,
		LogicalBlockSize: img.vol.LogicalBlockSize(),
		HasRockRidge:     img.HasRockRidge(),
	}
}
