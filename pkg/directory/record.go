// Package directory decodes ISO 9660 directory records and walks a
// directory's children. It never caches: every call to Children reparses
// the extent from the underlying byte region, matching the core's
// immutable, built-once-per-Image model — a directory's contents are
// cheap to redecode and nothing here is safe to mutate and reuse.
package directory

import (
	"fmt"

	"github.com/go-rrfs/rrfs/pkg/binview"
	"github.com/go-rrfs/rrfs/pkg/rockridge"
	"github.com/go-rrfs/rrfs/pkg/rrerrors"
	"github.com/go-rrfs/rrfs/pkg/susp"
)

// FileFlags is the bit layout of a directory record's file flags byte
// (ECMA-119 9.1.6).
type FileFlags struct {
	Existence      bool
	Directory      bool
	AssociatedFile bool
	Record         bool
	Protection     bool
	MultiExtent    bool
}

func decodeFileFlags(b byte) FileFlags {
	return FileFlags{
		Existence:      b&0x01 != 0,
		Directory:      b&0x02 != 0,
		AssociatedFile: b&0x04 != 0,
		Record:         b&0x08 != 0,
		Protection:     b&0x10 != 0,
		MultiExtent:    b&0x80 != 0,
	}
}

// Record is a single decoded directory record. Special entries "\x00"
// (self) and "\x01" (parent) are decoded like any other record; Children
// skips them when walking, and Resolve never needs to match them by
// name.
type Record struct {
	Length               uint8
	ExtendedAttrLength   uint8
	ExtentLocation       uint32
	DataLength           uint32
	RecordedAt           []byte // raw 7-byte compact date/time, see binview.CompactDateTime
	Flags                FileFlags
	VolumeSequenceNumber uint16
	Identifier           string
	SystemUse            []byte
	SUSPFields           []susp.Field
	RockRidge            rockridge.Attributes
}

// IsDir reports whether the record names a directory, preferring the
// Rock Ridge PX mode when present (it can disagree with the ISO9660
// Directory flag for records Rock Ridge relocates).
func (r *Record) IsDir() bool {
	if r.RockRidge.HasPX {
		return r.RockRidge.Mode.IsDir()
	}
	return r.Flags.Directory
}

// IsSelfOrParent reports whether the record is the "." or ".." entry
// produced by the ISO9660 special identifiers 0x00/0x01.
func (r *Record) IsSelfOrParent() bool {
	return len(r.Identifier) == 1 && (r.Identifier[0] == 0x00 || r.Identifier[0] == 0x01)
}

// Name returns the record's effective filename: the Rock Ridge NM name
// if present, else the ISO9660 identifier with its version suffix and
// trailing separator dot stripped.
func (r *Record) Name() string {
	if r.RockRidge.HasName {
		return r.RockRidge.Name
	}
	return stripVersionAndDot(r.Identifier)
}

func stripVersionAndDot(name string) string {
	if idx := indexByte(name, ';'); idx != -1 {
		name = name[:idx]
	}
	if len(name) > 0 && name[len(name)-1] == '.' {
		name = name[:len(name)-1]
	}
	return name
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// Unmarshal decodes a single directory record from data, which must
// contain exactly the record's own bytes (data[0] is its own length
// byte). view is used to resolve any SUSP CE continuation areas the
// record's system use fields reference; blockSize is the volume's
// logical block size, needed to resolve those same CE areas. skip is the
// len_skp byte count established by the volume's root-record SP field
// (zero when decoding the root record itself, which is what establishes
// it) — per spec.md §4.4, it is dropped from the head of every other
// record's system use area before SUSP parsing begins.
func Unmarshal(data []byte, view *binview.View, blockSize int, skip int) (*Record, error) {
	if len(data) < 34 {
		return nil, fmt.Errorf("%w: directory record shorter than fixed header (%d bytes)", rrerrors.ErrMalformedVolume, len(data))
	}

	rv := binview.New(data)

	length := data[0]
	eaLength := data[1]

	extent, _, err := rv.Uint32LSBMSB(2)
	if err != nil {
		return nil, fmt.Errorf("decoding extent location: %w", err)
	}
	dataLength, _, err := rv.Uint32LSBMSB(10)
	if err != nil {
		return nil, fmt.Errorf("decoding data length: %w", err)
	}
	recordedAt, err := rv.Bytes(18, 7)
	if err != nil {
		return nil, fmt.Errorf("decoding recording date: %w", err)
	}
	recordedAtCopy := append([]byte(nil), recordedAt...)

	flags := decodeFileFlags(data[25])

	volSeq, _, err := rv.Uint16LSBMSB(28)
	if err != nil {
		return nil, fmt.Errorf("decoding volume sequence number: %w", err)
	}

	idLength := int(data[32])
	idEnd := 33 + idLength
	if idEnd > len(data) {
		return nil, fmt.Errorf("%w: file identifier extends past record", rrerrors.ErrMalformedVolume)
	}
	identifier := string(data[33:idEnd])

	systemUseStart := idEnd
	if idLength%2 == 0 {
		systemUseStart++ // padding byte to keep the record even-aligned
	}

	r := &Record{
		Length:               length,
		ExtendedAttrLength:   eaLength,
		ExtentLocation:       extent,
		DataLength:           dataLength,
		RecordedAt:           recordedAtCopy,
		Flags:                flags,
		VolumeSequenceNumber: volSeq,
		Identifier:           identifier,
	}

	if systemUseStart < len(data) {
		systemUse := data[systemUseStart:]
		r.SystemUse = append([]byte(nil), systemUse...)

		suspRegion := systemUse
		if skip > 0 {
			if skip >= len(suspRegion) {
				suspRegion = nil
			} else {
				suspRegion = suspRegion[skip:]
			}
		}

		// Per spec.md §4.4/§7: malformed SUSP data within an otherwise
		// well-formed directory record is fail-open, not fatal. A parse
		// error here silently terminates SUSP parsing for this record —
		// it falls back to the bare ISO9660 name and default
		// permissions rather than poisoning the whole record decode.
		fields, err := susp.Parse(view, suspRegion, blockSize, make(map[uint32]bool), nil)
		if err != nil {
			return r, nil
		}
		r.SUSPFields = fields

		attrs, err := rockridge.Decode(fields)
		if err != nil {
			return r, nil
		}
		r.RockRidge = attrs
	}

	return r, nil
}
