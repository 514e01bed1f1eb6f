package volume

import (
	"github.com/go-rrfs/rrfs/pkg/consts"
)

// FileCount returns an approximate count of entries named in the L path
// table, capped at consts.MaxStatfsFileCount. Per spec.md §9 ("Path table
// trust"), the path table is not independently validated against the
// directory tree; callers must treat this as approximate, and a
// corrupt or adversarial path table simply yields a low or capped count
// rather than an error — statfs is diagnostic, not authoritative.
func (img *Image) FileCount() int {
	offset := int(img.PVD.LPathTableLocation) * img.LogicalBlockSize()
	remaining := int(img.PVD.PathTableSize)

	count := 0
	for remaining > 1 && count < consts.MaxStatfsFileCount {
		idLen, err := img.View.Byte(offset)
		if err != nil || idLen == 0 {
			break
		}
		recLen := 8 + int(idLen)
		if idLen%2 != 0 {
			recLen++
		}
		if recLen > remaining {
			break
		}
		offset += recLen
		remaining -= recLen
		count++
	}
	return count
}
