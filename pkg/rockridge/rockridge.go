// Package rockridge interprets the Rock Ridge Interchange Protocol
// (RRIP_1991A) fields carried inside a directory record's SUSP area:
// PX (POSIX attributes), NM (alternate name), and TF (timestamps). It
// consumes the generic susp.Field values pkg/susp decodes and has no
// knowledge of SUSP framing itself.
package rockridge

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-rrfs/rrfs/pkg/binview"
	"github.com/go-rrfs/rrfs/pkg/rrerrors"
	"github.com/go-rrfs/rrfs/pkg/susp"
)

const (
	// Identifier is the ER field identifier a volume's root directory
	// uses to advertise Rock Ridge support.
	Identifier = "RRIP_1991A"
	// Version is the Rock Ridge extension version this module understands.
	Version = 1
)

// TimestampKind enumerates the timestamp slots the TF field can carry,
// in the bit order ECMA RRIP defines them.
type TimestampKind int

const (
	TimestampCreation TimestampKind = iota
	TimestampModify
	TimestampAccess
	TimestampAttributes
	TimestampBackup
	TimestampExpiration
	TimestampEffective
)

// Attributes is the decoded Rock Ridge metadata for one directory
// record. Every field is optional — a record with no Rock Ridge fields
// at all yields a zero Attributes with HasPX/HasName false.
type Attributes struct {
	HasPX      bool
	Mode       fs.FileMode
	Links      uint32
	Uid        uint32
	Gid        uint32
	SerialNo   uint32
	HasName    bool
	Name       string
	Timestamps map[TimestampKind]time.Time
}

// Decode builds Attributes from a directory record's parsed SUSP fields.
// NM continuation is intentionally last-wins rather than concatenated:
// the reference decoder this module tracks overwrites its stored name on
// every NM field instead of appending continued fragments, and this
// module preserves that behavior rather than the stricter reading of the
// RRIP spec, to stay compatible with images produced against it.
func Decode(fields []susp.Field) (Attributes, error) {
	var attrs Attributes

	for _, f := range fields {
		entry, ok := f.(*susp.Entry)
		if !ok {
			continue
		}
		switch entry.Sig {
		case "PX":
			px, err := decodePX(entry.Data)
			if err != nil {
				return Attributes{}, err
			}
			attrs.HasPX = true
			attrs.Mode = px.Mode
			attrs.Links = px.Links
			attrs.Uid = px.Uid
			attrs.Gid = px.Gid
			attrs.SerialNo = px.SerialNo

		case "NM":
			name, err := decodeNM(entry.Data)
			if err != nil {
				return Attributes{}, err
			}
			attrs.HasName = true
			attrs.Name = name

		case "TF":
			stamps, err := decodeTF(entry.Data)
			if err != nil {
				return Attributes{}, err
			}
			attrs.Timestamps = stamps
		}
	}

	return attrs, nil
}

// HasRockRidge reports whether fields contain any Rock Ridge signature
// (PX, NM, or TF) or an ER record naming the Rock Ridge extension.
func HasRockRidge(fields []susp.Field) bool {
	for _, er := range susp.FindAll(fields, "ER") {
		e := er.(*susp.Entry)
		if id, _, _ := decodeER(e.Data); id == Identifier {
			return true
		}
	}
	for _, f := range fields {
		if e, ok := f.(*susp.Entry); ok {
			switch e.Sig {
			case "PX", "NM", "TF":
				return true
			}
		}
	}
	return false
}

func decodeER(data []byte) (identifier, descriptor string, err error) {
	if len(data) < 4 {
		return "", "", fmt.Errorf("%w: ER field too short", rrerrors.ErrMalformedVolume)
	}
	idLen := int(data[0])
	descLen := int(data[1])
	srcLen := int(data[2])
	want := 4 + idLen + descLen + srcLen
	if len(data) < want {
		return "", "", fmt.Errorf("%w: ER field declares %d bytes, has %d", rrerrors.ErrMalformedVolume, want, len(data))
	}
	identifier = string(data[4 : 4+idLen])
	descriptor = string(data[4+idLen : 4+idLen+descLen])
	return identifier, descriptor, nil
}

type posixEntry struct {
	Mode     fs.FileMode
	Links    uint32
	Uid      uint32
	Gid      uint32
	SerialNo uint32
}

// decodePX parses the PX field body (offset 4 onward of the raw SUSP
// entry). Each of the five values occupies an 8-byte both-endian field.
func decodePX(data []byte) (posixEntry, error) {
	if len(data) < 32 {
		return posixEntry{}, fmt.Errorf("%w: PX field too short (%d bytes)", rrerrors.ErrMalformedVolume, len(data))
	}
	v := binview.New(data)

	rawMode, _, err := v.Uint32LSBMSB(0)
	if err != nil {
		return posixEntry{}, fmt.Errorf("decoding PX mode: %w", err)
	}
	links, _, err := v.Uint32LSBMSB(8)
	if err != nil {
		return posixEntry{}, fmt.Errorf("decoding PX link count: %w", err)
	}
	uid, _, err := v.Uint32LSBMSB(16)
	if err != nil {
		return posixEntry{}, fmt.Errorf("decoding PX uid: %w", err)
	}
	gid, _, err := v.Uint32LSBMSB(24)
	if err != nil {
		return posixEntry{}, fmt.Errorf("decoding PX gid: %w", err)
	}
	// The serial-number (inode) pair is optional: present only when the
	// field is long enough to carry a fifth both-endian integer.
	var serial uint32
	if len(data) >= 40 {
		if s, _, err := v.Uint32LSBMSB(32); err == nil {
			serial = s
		}
	}

	return posixEntry{
		Mode:     parseFileMode(rawMode),
		Links:    links,
		Uid:      uid,
		Gid:      gid,
		SerialNo: serial,
	}, nil
}

// parseFileMode converts a POSIX st_mode value into an fs.FileMode.
func parseFileMode(mode uint32) fs.FileMode {
	var fileMode fs.FileMode

	switch mode & 0xF000 {
	case 0xC000:
		fileMode |= fs.ModeSocket
	case 0xA000:
		fileMode |= fs.ModeSymlink
	case 0x8000:
		// regular file
	case 0x6000:
		fileMode |= fs.ModeDevice
	case 0x2000:
		fileMode |= fs.ModeCharDevice
	case 0x4000:
		fileMode |= fs.ModeDir
	case 0x1000:
		fileMode |= fs.ModeNamedPipe
	}

	fileMode |= fs.FileMode(mode & 0777)

	if mode&0x0800 != 0 {
		fileMode |= os.ModeSetuid
	}
	if mode&0x0400 != 0 {
		fileMode |= os.ModeSetgid
	}
	if mode&0x0200 != 0 {
		fileMode |= os.ModeSticky
	}

	return fileMode
}

// decodeNM parses an NM field body. Bit 1 (Current) or bit 2 (Parent)
// means the name is "." or ".." respectively and carries no name bytes.
func decodeNM(data []byte) (string, error) {
	if len(data) < 1 {
		return "", fmt.Errorf("%w: NM field has no flags byte", rrerrors.ErrMalformedVolume)
	}
	flags := data[0]
	if flags&0x02 != 0 {
		return ".", nil
	}
	if flags&0x04 != 0 {
		return "..", nil
	}
	return string(data[1:]), nil
}

// decodeTF parses a TF field body: a flags byte selecting which
// timestamp slots follow (in ascending TimestampKind order), each
// either a 7-byte compact date/time or, if the LONG_FORM bit is set, a
// 17-byte decimal date/time.
func decodeTF(data []byte) (map[TimestampKind]time.Time, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: TF field has no flags byte", rrerrors.ErrMalformedVolume)
	}
	flags := data[0]
	longForm := flags&0x80 != 0
	fieldSize := 7
	if longForm {
		fieldSize = 17
	}

	out := make(map[TimestampKind]time.Time)
	v := binview.New(data)
	offset := 1
	kinds := []TimestampKind{
		TimestampCreation, TimestampModify, TimestampAccess, TimestampAttributes,
		TimestampBackup, TimestampExpiration, TimestampEffective,
	}
	for bit, kind := range kinds {
		if flags&(1<<uint(bit)) == 0 {
			continue
		}
		if offset+fieldSize > len(data) {
			return nil, fmt.Errorf("%w: TF field truncated", rrerrors.ErrMalformedVolume)
		}
		var (
			t   time.Time
			ok  bool
			err error
		)
		if longForm {
			t, ok, err = v.DecimalDateTime(offset)
		} else {
			t, ok, err = v.CompactDateTime(offset)
		}
		if err != nil {
			return nil, err
		}
		if ok {
			out[kind] = t
		}
		offset += fieldSize
	}
	return out, nil
}
