package directory

import (
	"testing"

	"github.com/go-rrfs/rrfs/pkg/binview"
	"github.com/go-rrfs/rrfs/pkg/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRecord encodes a minimal directory record with the given
// identifier and flags, using the both-endian field layout ECMA-119
// defines (only the little-endian half needs to be correct for decoding).
func buildRecord(identifier string, isDir bool) []byte {
	idLen := len(identifier)
	length := 33 + idLen
	if idLen%2 == 0 {
		length++
	}

	rec := make([]byte, length)
	rec[0] = byte(length)
	rec[1] = 0 // extended attribute length

	putBoth32 := func(off int, v uint32) {
		rec[off] = byte(v)
		rec[off+1] = byte(v >> 8)
		rec[off+2] = byte(v >> 16)
		rec[off+3] = byte(v >> 24)
		rec[off+4] = byte(v >> 24)
		rec[off+5] = byte(v >> 16)
		rec[off+6] = byte(v >> 8)
		rec[off+7] = byte(v)
	}
	putBoth32(2, 20)   // extent location
	putBoth32(10, 100) // data length

	flags := byte(0)
	if isDir {
		flags |= 0x02
	}
	rec[25] = flags

	rec[28], rec[29] = 1, 0 // volume sequence number LE half
	rec[30], rec[31] = 0, 1 // BE half

	rec[32] = byte(idLen)
	copy(rec[33:33+idLen], identifier)

	return rec
}

func buildExtent(records ...[]byte) []byte {
	extent := make([]byte, consts.ISO9660SectorSize)
	pos := 0
	for _, r := range records {
		copy(extent[pos:], r)
		pos += len(r)
	}
	return extent
}

func TestChildrenSkipsSelfAndParent(t *testing.T) {
	self := buildRecord("\x00", true)
	parent := buildRecord("\x01", true)
	file := buildRecord("HELLO.TXT;1", false)

	extent := buildExtent(self, parent, file)
	view := binview.New(extent)

	dir := &Record{ExtentLocation: 0, DataLength: uint32(len(extent)), Flags: FileFlags{Directory: true}}

	children, err := Children(view, dir, consts.ISO9660SectorSize, 0)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "HELLO.TXT", children[0].Name())
	assert.False(t, children[0].IsDir())
}

func TestChildrenToleratesOverlongTrailingRecord(t *testing.T) {
	file := buildRecord("HELLO.TXT;1", false)
	region := make([]byte, 60)
	copy(region, file)
	region[len(file)] = 40 // declared length runs past the extent's span
	view := binview.New(region)

	dir := &Record{ExtentLocation: 0, DataLength: 60, Flags: FileFlags{Directory: true}}

	children, err := Children(view, dir, consts.ISO9660SectorSize, 0)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "HELLO.TXT", children[0].Name())
}

func TestChildrenRejectsNonDirectory(t *testing.T) {
	view := binview.New(make([]byte, consts.ISO9660SectorSize))
	dir := &Record{ExtentLocation: 0, DataLength: consts.ISO9660SectorSize, Flags: FileFlags{Directory: false}}

	_, err := Children(view, dir, consts.ISO9660SectorSize, 0)
	assert.Error(t, err)
}

func TestFindLocatesChildByName(t *testing.T) {
	sub := buildRecord("SUBDIR", true)
	extent := buildExtent(sub)
	view := binview.New(extent)

	dir := &Record{ExtentLocation: 0, DataLength: uint32(len(extent)), Flags: FileFlags{Directory: true}}

	found, err := Find(view, dir, "SUBDIR", consts.ISO9660SectorSize, 0)
	require.NoError(t, err)
	assert.True(t, found.IsDir())

	_, err = Find(view, dir, "NOPE", consts.ISO9660SectorSize, 0)
	assert.Error(t, err)
}

// buildRecordWithSUSP appends raw SUSP bytes as the record's system use
// area.
func buildRecordWithSUSP(identifier string, isDir bool, suspBytes []byte) []byte {
	rec := buildRecord(identifier, isDir)
	rec = append(rec, suspBytes...)
	rec[0] = byte(len(rec))
	return rec
}

func putBothEndian32(b []byte, off int, v uint32) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
	b[off+4] = byte(v >> 24)
	b[off+5] = byte(v >> 16)
	b[off+6] = byte(v >> 8)
	b[off+7] = byte(v)
}

func TestNamePrefersRockRidgeNM(t *testing.T) {
	nm := append([]byte{'N', 'M', 11, 1, 0x00}, []byte("readme")...)
	file := buildRecordWithSUSP("FILE.TXT;1", false, nm)

	extent := buildExtent(file)
	view := binview.New(extent)
	dir := &Record{ExtentLocation: 0, DataLength: uint32(len(extent)), Flags: FileFlags{Directory: true}}

	children, err := Children(view, dir, consts.ISO9660SectorSize, 0)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "readme", children[0].Name())
}

func TestCEContinuationCarriesPXMode(t *testing.T) {
	// PX field with mode 0100755 placed in a continuation block; the
	// record's own system use area holds only the CE pointer.
	px := make([]byte, 36)
	px[0], px[1], px[2], px[3] = 'P', 'X', 36, 1
	putBothEndian32(px, 4, 0100755) // mode
	putBothEndian32(px, 12, 1)      // links
	putBothEndian32(px, 20, 0)      // uid
	putBothEndian32(px, 28, 0)      // gid

	ce := make([]byte, 28)
	ce[0], ce[1], ce[2], ce[3] = 'C', 'E', 28, 1
	putBothEndian32(ce, 4, 1)                // continuation block location
	putBothEndian32(ce, 12, 0)               // offset within block
	putBothEndian32(ce, 20, uint32(len(px))) // length

	file := buildRecordWithSUSP("FILE.TXT;1", false, ce)

	region := make([]byte, consts.ISO9660SectorSize*2)
	copy(region, buildExtent(file))
	copy(region[consts.ISO9660SectorSize:], px)
	view := binview.New(region)

	dir := &Record{ExtentLocation: 0, DataLength: consts.ISO9660SectorSize, Flags: FileFlags{Directory: true}}

	children, err := Children(view, dir, consts.ISO9660SectorSize, 0)
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.True(t, children[0].RockRidge.HasPX)
	assert.EqualValues(t, 0o755, children[0].RockRidge.Mode.Perm())
}

func TestNameStripsVersionAndDot(t *testing.T) {
	r := &Record{Identifier: "FOO.TXT;1"}
	assert.Equal(t, "FOO.TXT", r.Name())

	r2 := &Record{Identifier: "BAR."}
	assert.Equal(t, "BAR", r2.Name())
}
