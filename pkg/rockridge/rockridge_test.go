package rockridge

import (
	"os"
	"testing"

	"github.com/go-rrfs/rrfs/pkg/susp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pxEntry(mode uint32) *susp.Entry {
	data := make([]byte, 36)
	put8 := func(off int, v uint32) {
		data[off] = byte(v)
		data[off+1] = byte(v >> 8)
		data[off+2] = byte(v >> 16)
		data[off+3] = byte(v >> 24)
	}
	put8(0, mode)
	put8(8, 1)  // links
	put8(16, 0) // uid
	put8(24, 0) // gid
	return &susp.Entry{Sig: "PX", Data: data}
}

func nmEntry(flags byte, name string) *susp.Entry {
	data := append([]byte{flags}, []byte(name)...)
	return &susp.Entry{Sig: "NM", Data: data}
}

func TestDecodePXRegularFile(t *testing.T) {
	attrs, err := Decode([]susp.Field{pxEntry(0100644)})
	require.NoError(t, err)
	assert.True(t, attrs.HasPX)
	assert.False(t, attrs.Mode.IsDir())
	assert.Equal(t, os.FileMode(0644), attrs.Mode.Perm())
}

func TestDecodePXDirectory(t *testing.T) {
	attrs, err := Decode([]susp.Field{pxEntry(040755)})
	require.NoError(t, err)
	assert.True(t, attrs.Mode.IsDir())
}

func TestDecodeNMPlainName(t *testing.T) {
	attrs, err := Decode([]susp.Field{nmEntry(0x00, "readme.txt")})
	require.NoError(t, err)
	assert.True(t, attrs.HasName)
	assert.Equal(t, "readme.txt", attrs.Name)
}

func TestDecodeNMCurrentAndParent(t *testing.T) {
	attrs, err := Decode([]susp.Field{nmEntry(0x02, "")})
	require.NoError(t, err)
	assert.Equal(t, ".", attrs.Name)

	attrs, err = Decode([]susp.Field{nmEntry(0x04, "")})
	require.NoError(t, err)
	assert.Equal(t, "..", attrs.Name)
}

func TestDecodeNMLastWins(t *testing.T) {
	// Two NM fields with no continuation bit set: the second overwrites
	// the first rather than concatenating, matching this module's
	// documented deviation from strict RRIP continuation semantics.
	attrs, err := Decode([]susp.Field{
		nmEntry(0x00, "first"),
		nmEntry(0x00, "second"),
	})
	require.NoError(t, err)
	assert.Equal(t, "second", attrs.Name)
}

func TestHasRockRidgeDetectsPX(t *testing.T) {
	assert.True(t, HasRockRidge([]susp.Field{pxEntry(0100644)}))
	assert.False(t, HasRockRidge([]susp.Field{&susp.SPField{}}))
}
