// Package susp decodes the System Use Sharing Protocol (SUSP-112) field
// framing that Rock Ridge and other ISO 9660 extensions are layered on
// top of. It understands only the three signatures SUSP itself defines —
// SP (sharing protocol indicator), ST (area terminator), and CE
// (continuation area) — and hands back every other field as an opaque
// Entry for a higher-level package (pkg/rockridge) to interpret.
package susp

import (
	"fmt"

	"github.com/go-rrfs/rrfs/pkg/binview"
	"github.com/go-rrfs/rrfs/pkg/logging"
	"github.com/go-rrfs/rrfs/pkg/rrerrors"
)

// Field is any decoded SUSP field. Concrete types are *SPField, *STField,
// *CEField, and *Entry (the catch-all for fields SUSP doesn't itself
// define).
type Field interface {
	Signature() string
}

// SPField is the SP "SUSP is in use" indicator, normally present as the
// first entry in the root directory record's system use area.
type SPField struct {
	SkipBytes uint8
}

func (*SPField) Signature() string { return "SP" }

// STField is the ST area terminator. When present, fields after it are
// not part of the SUSP area (used to pad to a sector boundary).
type STField struct{}

func (*STField) Signature() string { return "ST" }

// CEField is a continuation entry: the remaining system use fields
// continue in another block at (BlockLocation*blockSize)+Offset, for
// Length bytes.
type CEField struct {
	BlockLocation uint32
	Offset        uint32
	Length        uint32
}

func (*CEField) Signature() string { return "CE" }

// Entry is any SUSP field this package does not itself interpret —
// notably Rock Ridge's PX, NM, and TF, which pkg/rockridge decodes from
// the raw bytes.
type Entry struct {
	Sig  string
	Ver  uint8
	Data []byte
}

func (e *Entry) Signature() string { return e.Sig }

// Parse decodes every SUSP field in region, following CE continuation
// entries (resolved through view, which must cover the whole volume).
// blockSize is the volume's logical block size (PVD-derived, see
// volume.Image.LogicalBlockSize) and anchors CE's BlockLocation field.
// visited guards against continuation cycles; pass a fresh map at the
// top-level call.
func Parse(view *binview.View, region []byte, blockSize int, visited map[uint32]bool, logger *logging.Logger) ([]Field, error) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	var fields []Field

	logger.Trace("parsing SUSP region", "bytes", len(region))

	for offset := 0; offset < len(region); {
		if region[offset] == 0x00 {
			break // padding to sector/record boundary
		}

		remaining := len(region) - offset
		if remaining < 4 {
			break
		}

		entryLen := int(region[offset+2])
		if entryLen < 4 {
			return nil, fmt.Errorf("%w: SUSP entry length %d below minimum", rrerrors.ErrMalformedVolume, entryLen)
		}
		if entryLen > remaining {
			return nil, fmt.Errorf("%w: SUSP entry length %d exceeds %d remaining bytes", rrerrors.ErrMalformedVolume, entryLen, remaining)
		}

		sig := string(region[offset : offset+2])
		ver := region[offset+3]
		data := region[offset+4 : offset+entryLen]

		switch sig {
		case "SP":
			if len(data) < 3 {
				return nil, fmt.Errorf("%w: SP field too short", rrerrors.ErrMalformedVolume)
			}
			if data[0] != 0xBE || data[1] != 0xEF {
				return nil, fmt.Errorf("%w: SP field missing BE EF magic", rrerrors.ErrMalformedVolume)
			}
			fields = append(fields, &SPField{SkipBytes: data[2]})

		case "ST":
			fields = append(fields, &STField{})
			offset += entryLen
			// An ST terminator ends the SUSP area outright.
			return fields, nil

		case "CE":
			ce, err := parseCE(data)
			if err != nil {
				return nil, err
			}
			fields = append(fields, ce)

			if visited[ce.BlockLocation] {
				return nil, fmt.Errorf("%w: circular CE continuation at block %d", rrerrors.ErrMalformedVolume, ce.BlockLocation)
			}
			visited[ce.BlockLocation] = true

			ceOffset := int(ce.BlockLocation)*blockSize + int(ce.Offset)
			continuation, err := view.Bytes(ceOffset, int(ce.Length))
			if err != nil {
				return nil, fmt.Errorf("failed to read CE continuation area: %w", err)
			}
			continued, err := Parse(view, continuation, blockSize, visited, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to parse CE continuation area: %w", err)
			}
			fields = append(fields, continued...)

		default:
			fields = append(fields, &Entry{Sig: sig, Ver: ver, Data: data})
		}

		offset += entryLen
	}

	return fields, nil
}

func parseCE(data []byte) (*CEField, error) {
	if len(data) != 24 {
		return nil, fmt.Errorf("%w: CE field length %d, expected 24", rrerrors.ErrMalformedVolume, len(data))
	}
	v := binview.New(data)
	location, _, err := v.Uint32LSBMSB(0)
	if err != nil {
		return nil, err
	}
	offset, _, err := v.Uint32LSBMSB(8)
	if err != nil {
		return nil, err
	}
	length, _, err := v.Uint32LSBMSB(16)
	if err != nil {
		return nil, err
	}
	return &CEField{BlockLocation: location, Offset: offset, Length: length}, nil
}

// Find returns the first field with the given signature, or nil.
func Find(fields []Field, signature string) Field {
	for _, f := range fields {
		if f.Signature() == signature {
			return f
		}
	}
	return nil
}

// FindAll returns every field with the given signature, in order.
func FindAll(fields []Field, signature string) []Field {
	var out []Field
	for _, f := range fields {
		if f.Signature() == signature {
			out = append(out, f)
		}
	}
	return out
}
