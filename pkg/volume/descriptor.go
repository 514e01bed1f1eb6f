package volume

import (
	"fmt"

	"github.com/go-rrfs/rrfs/pkg/binview"
	"github.com/go-rrfs/rrfs/pkg/consts"
	"github.com/go-rrfs/rrfs/pkg/rrerrors"
)

// Descriptor type codes (ECMA-119 8.1.2).
const (
	TypeBootRecord    = 0x00
	TypePrimary       = 0x01
	TypeSupplementary = 0x02
	TypePartition     = 0x03
	TypeTerminator    = 0xFF
)

// Header is the 7-byte common prefix every volume descriptor carries:
// type code, "CD001" standard identifier, and version.
type Header struct {
	Type    byte
	Version byte
}

// readHeader validates and decodes the volume descriptor header at
// offset, per spec §4.1: fails with ErrMalformedVolume if the identifier
// isn't "CD001" or the version isn't 1.
func readHeader(view *binview.View, offset int) (Header, error) {
	if offset+consts.ISO9660SectorSize > view.Len() {
		return Header{}, fmt.Errorf("%w: descriptor at offset %d exceeds image", rrerrors.ErrMalformedVolume, offset)
	}

	typ, err := view.Byte(offset)
	if err != nil {
		return Header{}, err
	}
	id, err := view.Bytes(offset+1, 5)
	if err != nil {
		return Header{}, err
	}
	if string(id) != consts.ISO9660StdIdentifier {
		return Header{}, fmt.Errorf("%w: descriptor at offset %d has identifier %q, want %q", rrerrors.ErrMalformedVolume, offset, id, consts.ISO9660StdIdentifier)
	}
	version, err := view.Byte(offset + 6)
	if err != nil {
		return Header{}, err
	}
	if version != consts.ISO9660VolumeDescVersion {
		return Header{}, fmt.Errorf("%w: descriptor at offset %d has version %d, want %d", rrerrors.ErrMalformedVolume, offset, version, consts.ISO9660VolumeDescVersion)
	}

	return Header{Type: typ, Version: version}, nil
}
