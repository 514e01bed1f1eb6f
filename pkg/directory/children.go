package directory

import (
	"fmt"

	"github.com/go-rrfs/rrfs/pkg/binview"
	"github.com/go-rrfs/rrfs/pkg/rrerrors"
)

// Children decodes every directory record in dir's extent, in on-disc
// order, skipping the "." and ".." self/parent entries. It reparses the
// extent on every call; nothing about a directory's listing is cached.
// blockSize is the volume's logical block size (spec.md §2/§3's "B"),
// which anchors both the extent's own byte offset and the logical-block
// boundary a directory record never spans; skip is the len_skp byte
// count the volume's root-record SP field established (see
// Record.Unmarshal), applied to every record this call decodes.
func Children(view *binview.View, dir *Record, blockSize int, skip int) ([]*Record, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("%w: extent %d is not a directory", rrerrors.ErrNotADirectory, dir.ExtentLocation)
	}

	extentOffset := int(dir.ExtentLocation) * blockSize
	extentLen := int(dir.DataLength)

	region, err := view.Bytes(extentOffset, extentLen)
	if err != nil {
		return nil, fmt.Errorf("reading directory extent at sector %d: %w", dir.ExtentLocation, err)
	}

	var children []*Record

	// Directory records never span a logical block boundary: a zero
	// length byte means the rest of the block is padding, and decoding
	// resumes at the next block.
	for blockStart := 0; blockStart < extentLen; blockStart += blockSize {
		blockEnd := blockStart + blockSize
		if blockEnd > extentLen {
			blockEnd = extentLen
		}

		pos := blockStart
		for pos < blockEnd {
			recLen := int(region[pos])
			if recLen == 0 {
				break // padding out the rest of this block
			}
			if pos+recLen > blockEnd {
				if blockEnd == extentLen {
					// A trailing record whose length would run past the
					// extent's span is padding; iteration ends here.
					return children, nil
				}
				return nil, fmt.Errorf("%w: directory record at offset %d crosses block boundary", rrerrors.ErrMalformedVolume, pos)
			}

			rec, err := Unmarshal(region[pos:pos+recLen], view, blockSize, skip)
			if err != nil {
				return nil, fmt.Errorf("decoding directory record at offset %d: %w", pos, err)
			}
			if !rec.IsSelfOrParent() {
				children = append(children, rec)
			}

			pos += recLen
		}
	}

	return children, nil
}

// Find looks up a single child of dir by its effective Name (see
// Record.Name), matching case-sensitively. It returns rrerrors.ErrNotFound
// when no child matches.
func Find(view *binview.View, dir *Record, name string, blockSize int, skip int) (*Record, error) {
	children, err := Children(view, dir, blockSize, skip)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", rrerrors.ErrNotFound, name)
}
