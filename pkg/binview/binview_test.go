package binview

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint32LSBMSB(t *testing.T) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], 12345)
	binary.BigEndian.PutUint32(buf[4:8], 12345)
	v := New(buf)

	got, agree, err := v.Uint32LSBMSB(0)
	require.NoError(t, err)
	assert.True(t, agree)
	assert.EqualValues(t, 12345, got)
}

func TestUint32LSBMSBMismatchNotFatal(t *testing.T) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], 1)
	binary.BigEndian.PutUint32(buf[4:8], 2)
	v := New(buf)

	got, agree, err := v.Uint32LSBMSB(0)
	require.NoError(t, err)
	assert.False(t, agree)
	assert.EqualValues(t, 1, got)
}

func TestBytesOutOfRange(t *testing.T) {
	v := New(make([]byte, 4))
	_, err := v.Bytes(2, 4)
	assert.Error(t, err)
}

func TestPaddedString(t *testing.T) {
	v := New([]byte("HELLO     "))
	s, err := v.PaddedString(0, 10)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", s)
}

func TestCompactDateTimeZeroIsAbsent(t *testing.T) {
	v := New(make([]byte, 7))
	_, ok, err := v.CompactDateTime(0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompactDateTimeIgnoresOffsetByte(t *testing.T) {
	data := []byte{120, 5, 15, 12, 34, 56, 28} // year=2020, offset=+7h (ignored)
	v := New(data)
	tm, ok, err := v.CompactDateTime(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2020, tm.Year())
	assert.Equal(t, 5, int(tm.Month()))
	assert.Equal(t, 15, tm.Day())
	assert.Equal(t, 12, tm.Hour())
	_, offset := tm.Zone()
	_, localOffset := tm.Local().Zone()
	assert.Equal(t, localOffset, offset)
}

func TestDecimalDateTimeAllZerosIsAbsent(t *testing.T) {
	data := make([]byte, 17)
	for i := range data[:16] {
		data[i] = '0'
	}
	v := New(data)
	_, ok, err := v.DecimalDateTime(0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecimalDateTimeParsesDigits(t *testing.T) {
	data := []byte("20200515123456000")
	data = append(data, 0) // extra byte, cut off below; the 17th byte '0' is the ignored tz byte
	v := New(data[:17])
	tm, ok, err := v.DecimalDateTime(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2020, tm.Year())
	assert.Equal(t, 5, int(tm.Month()))
	assert.Equal(t, 15, tm.Day())
	assert.Equal(t, 12, tm.Hour())
	assert.Equal(t, 34, tm.Minute())
	assert.Equal(t, 56, tm.Second())
}

func TestDecimalDateTimeLenientOnGarbage(t *testing.T) {
	data := []byte("202A0515123456000")
	v := New(data[:17])
	_, ok, err := v.DecimalDateTime(0)
	require.NoError(t, err)
	assert.False(t, ok)
}
