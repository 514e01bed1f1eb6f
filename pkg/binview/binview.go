// Package binview provides bounds-checked, read-only access to the byte
// region backing an ISO 9660 volume. Every other package in this module
// decodes fields through a *View rather than slicing the region
// directly, so that a truncated or adversarial image produces
// rrerrors.ErrMalformedVolume instead of a panic.
package binview

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-rrfs/rrfs/pkg/rrerrors"
)

// View wraps an immutable byte slice — the entire volume image — and
// offers offset/length accessors used by the volume, directory, and SUSP
// decoders. A View never copies the underlying slice; callers that need
// to retain a region past the View's lifetime should copy it themselves.
type View struct {
	data []byte
}

// New wraps data in a View. data is never modified or copied.
func New(data []byte) *View {
	return &View{data: data}
}

// Len returns the total size of the backing region.
func (v *View) Len() int {
	return len(v.data)
}

// Bytes returns the off:off+n slice of the region, or
// rrerrors.ErrMalformedVolume if it falls outside the region.
func (v *View) Bytes(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(v.data) {
		return nil, fmt.Errorf("%w: range [%d:%d) outside %d-byte region", rrerrors.ErrMalformedVolume, off, off+n, len(v.data))
	}
	return v.data[off : off+n], nil
}

// Byte returns the single byte at off.
func (v *View) Byte(off int) (byte, error) {
	b, err := v.Bytes(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint32LSBMSB decodes a both-endian 32-bit field as defined by ECMA-119
// 7.3.3: an 8-byte field holding the little-endian value followed by the
// big-endian value. Only the little-endian half is trusted; the second
// return value reports whether the two halves agree, and a mismatch is
// not treated as fatal, since images produced by lax mastering tools
// sometimes get the trailing half wrong.
func (v *View) Uint32LSBMSB(off int) (uint32, bool, error) {
	b, err := v.Bytes(off, 8)
	if err != nil {
		return 0, false, err
	}
	lsb := binary.LittleEndian.Uint32(b[0:4])
	msb := binary.BigEndian.Uint32(b[4:8])
	return lsb, lsb == msb, nil
}

// Uint16LSBMSB decodes a both-endian 16-bit field as defined by ECMA-119
// 7.2.3.
func (v *View) Uint16LSBMSB(off int) (uint16, bool, error) {
	b, err := v.Bytes(off, 4)
	if err != nil {
		return 0, false, err
	}
	lsb := binary.LittleEndian.Uint16(b[0:2])
	msb := binary.BigEndian.Uint16(b[2:4])
	return lsb, lsb == msb, nil
}

// Uint32LE decodes a plain little-endian 32-bit field (used by directory
// record and path table fields, which are single-endian).
func (v *View) Uint32LE(off int) (uint32, error) {
	b, err := v.Bytes(off, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint32BE decodes a plain big-endian 32-bit field (the M path table
// location is recorded big-endian only, ECMA-119 8.4.18).
func (v *View) Uint32BE(off int) (uint32, error) {
	b, err := v.Bytes(off, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Uint16LE decodes a plain little-endian 16-bit field.
func (v *View) Uint16LE(off int) (uint16, error) {
	b, err := v.Bytes(off, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// PaddedString reads an n-byte field and trims trailing ECMA-119 filler
// spaces (0x20).
func (v *View) PaddedString(off, n int) (string, error) {
	b, err := v.Bytes(off, n)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), " "), nil
}

// CompactDateTime decodes the 7-byte "date and time format" used in
// directory records (ECMA-119 9.1.5): year offset from 1900, month, day,
// hour, minute, second, and a GMT offset in 15-minute units. The GMT
// offset byte is read but discarded — the resulting time.Time is built
// in the host's local timezone, matching the reference decoder this
// module was ported from, which never applies the stored offset. Returns
// ok=false for an all-zero field (absent timestamp), which is valid and
// not an error.
func (v *View) CompactDateTime(off int) (t time.Time, ok bool, err error) {
	b, err := v.Bytes(off, 7)
	if err != nil {
		return time.Time{}, false, err
	}
	if allZero(b) {
		return time.Time{}, false, nil
	}
	year := 1900 + int(b[0])
	month := time.Month(b[1])
	day := int(b[2])
	hour := int(b[3])
	minute := int(b[4])
	second := int(b[5])
	return time.Date(year, month, day, hour, minute, second, 0, time.Local), true, nil
}

// DecimalDateTime decodes the 17-byte decimal-digit date/time format
// used in volume descriptors (ECMA-119 8.4.26.1): 4+2+2+2+2+2 ASCII
// digits for year/month/day/hour/minute/second, 2 ASCII digits for
// hundredths of a second, and a trailing GMT-offset byte that is
// discarded for the same reason as CompactDateTime. A field of all
// '0' digits or all spaces means "not specified" and returns ok=false.
func (v *View) DecimalDateTime(off int) (t time.Time, ok bool, err error) {
	b, err := v.Bytes(off, 17)
	if err != nil {
		return time.Time{}, false, err
	}
	digits := b[0:16]
	if allSpaces(digits) || allChar(digits, '0') {
		return time.Time{}, false, nil
	}
	year, err1 := strconv.Atoi(string(digits[0:4]))
	month, err2 := strconv.Atoi(string(digits[4:6]))
	day, err3 := strconv.Atoi(string(digits[6:8]))
	hour, err4 := strconv.Atoi(string(digits[8:10]))
	minute, err5 := strconv.Atoi(string(digits[10:12]))
	second, err6 := strconv.Atoi(string(digits[12:14]))
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		// Lenient: a non-digit, non-space field is treated as absent
		// rather than a hard decode failure — real-world mastering
		// tools occasionally leave stray bytes here.
		return time.Time{}, false, nil
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false, nil
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local), true, nil
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

func allSpaces(b []byte) bool {
	return allChar(b, ' ')
}

func allChar(b []byte, c byte) bool {
	for _, x := range b {
		if x != c {
			return false
		}
	}
	return true
}
