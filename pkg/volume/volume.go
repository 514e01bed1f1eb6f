// Package volume scans an ISO 9660 volume descriptor chain and resolves
// the Primary Volume Descriptor that anchors the rest of the filesystem:
// the root directory record, the logical block size, and the path table.
package volume

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-rrfs/rrfs/pkg/binview"
	"github.com/go-rrfs/rrfs/pkg/consts"
	"github.com/go-rrfs/rrfs/pkg/directory"
	"github.com/go-rrfs/rrfs/pkg/logging"
	"github.com/go-rrfs/rrfs/pkg/rrerrors"
	"github.com/go-rrfs/rrfs/pkg/susp"
)

// Image is the immutable, fully-loaded volume: the byte region plus the
// resolved PVD. Every other package accesses the volume only through an
// Image's View and PVD — nothing here is mutated after Load returns.
type Image struct {
	View *binview.View
	PVD  *PrimaryVolumeDescriptor

	// RootSUSP is the SUSP field list of the root directory's "." entry.
	// The PVD's embedded 34-byte root record has no room for a system
	// use area, so anything the root advertises — the SP field's
	// len_skp, the ER record naming Rock Ridge — lives on the "." entry
	// at the head of the root extent, decoded once by Load.
	RootSUSP []susp.Field

	// SUSPSkip is the len_skp byte count the root's SP field established
	// (SUSP-112 §5.3), zero when the root carries no SP field. Per
	// spec.md §4.4 it is dropped from the head of every record's system
	// use area before SUSP parsing; pkg/directory threads it through
	// Children/Find/Unmarshal.
	SUSPSkip int
}

// LogicalBlockSize returns the PVD's declared logical block size.
func (img *Image) LogicalBlockSize() int {
	return int(img.PVD.LogicalBlockSize)
}

// Load scans the volume descriptor chain starting at offset 0x8000,
// implementing spec.md §4.2's algorithm exactly: first Primary Volume
// Descriptor wins, the scan stops at a Terminator descriptor, and an EOF
// reached before either a PVD or a terminator is a structural failure.
func Load(data []byte, logger logr.Logger) (*Image, error) {
	log := logging.NewLogger(logger)
	view := binview.New(data)

	const start = consts.ISO9660SystemAreaSectors * consts.ISO9660SectorSize // 0x8000
	offset := start

	var pvd *PrimaryVolumeDescriptor

	for {
		if offset+consts.ISO9660SectorSize > view.Len() {
			return nil, fmt.Errorf("%w: unterminated volume descriptor chain at offset %d", rrerrors.ErrMalformedVolume, offset)
		}

		header, err := readHeader(view, offset)
		if err != nil {
			return nil, err
		}
		log.Trace("read volume descriptor", "offset", offset, "type", header.Type)

		switch header.Type {
		case TypePrimary:
			if pvd == nil {
				pvd, err = parsePrimaryVolumeDescriptor(view, offset)
				if err != nil {
					return nil, fmt.Errorf("parsing primary volume descriptor at offset %d: %w", offset, err)
				}
			}
		case TypeTerminator:
			if pvd == nil {
				return nil, fmt.Errorf("%w: reached terminator descriptor without a primary volume descriptor", rrerrors.ErrMalformedVolume)
			}
			rootSUSP := rootExtentSUSP(view, pvd)
			return &Image{View: view, PVD: pvd, RootSUSP: rootSUSP, SUSPSkip: suspSkip(rootSUSP)}, nil
		}

		offset += consts.ISO9660SectorSize
	}
}

// rootExtentSUSP returns the SUSP fields of the root directory's "."
// entry. The PVD's embedded 34-byte root record has no room for a
// system use area, so on real volumes the SP and ER fields live on the
// "." entry at the head of the root directory's extent; that record is
// decoded unskipped, since its own area is what establishes the skip.
// Fail-open: any decode problem here means no fields, not a load
// failure.
func rootExtentSUSP(view *binview.View, pvd *PrimaryVolumeDescriptor) []susp.Field {
	root := pvd.RootDirectory
	if root == nil {
		return nil
	}
	if len(root.SUSPFields) > 0 {
		return root.SUSPFields
	}

	base := int(root.ExtentLocation) * int(pvd.LogicalBlockSize)
	recLen, err := view.Byte(base)
	if err != nil || recLen == 0 {
		return nil
	}
	recBytes, err := view.Bytes(base, int(recLen))
	if err != nil {
		return nil
	}
	dot, err := directory.Unmarshal(recBytes, view, int(pvd.LogicalBlockSize), 0)
	if err != nil || !dot.IsSelfOrParent() {
		return nil
	}
	return dot.SUSPFields
}

// suspSkip reads the len_skp byte count off an SP field, if present.
func suspSkip(fields []susp.Field) int {
	if sp, ok := susp.Find(fields, "SP").(*susp.SPField); ok {
		return int(sp.SkipBytes)
	}
	return 0
}
