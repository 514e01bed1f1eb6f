package rrfs

import (
	"io/fs"
	"time"

	"github.com/go-rrfs/rrfs/pkg/binview"
	"github.com/go-rrfs/rrfs/pkg/directory"
	"github.com/go-rrfs/rrfs/pkg/rockridge"
)

// Attr is getattr's reply, per spec.md §6.2.
type Attr struct {
	Mode   fs.FileMode
	Nlink  uint32
	Uid    uint32
	Gid    uint32
	Size   int64
	Blocks int64
	Atime  time.Time
	Mtime  time.Time
	Ctime  time.Time
	Ino    uint64
}

const (
	defaultModeDir  fs.FileMode = 0o555
	defaultModeFile fs.FileMode = 0o444
	defaultIno      uint64      = 1
)

// Attr computes the same getattr reply as Getattr, but addressed by an
// already-resolved record rather than a path. Collaborators that key
// their own state off *directory.Record (cmd/rrfsmount's inode table)
// use this instead of re-resolving a reconstructed path.
func (img *Image) Attr(rec *directory.Record) Attr {
	return attrFromRecord(rec, img.opt)
}

// attrFromRecord implements spec.md §6.2's attribute-default table: when
// Rock Ridge PX is present its mode/uid/gid/nlinks/serial number are
// used; otherwise directories get 0555, files get 0444, uid/gid fall
// back to the configured default owner, nlinks is 1, and ino is 1.
// Timestamps come from Rock Ridge TF when present, else the record's own
// recording date/time.
func attrFromRecord(rec *directory.Record, o options) Attr {
	size := int64(rec.DataLength)
	attr := Attr{
		Size:   size,
		Blocks: (size + 511) / 512,
		Ino:    defaultIno,
		Nlink:  1,
	}

	recordedAt, _ := recordTime(rec)
	attr.Atime, attr.Mtime, attr.Ctime = recordedAt, recordedAt, recordedAt

	if rec.RockRidge.HasPX {
		attr.Mode = rec.RockRidge.Mode
		attr.Uid = rec.RockRidge.Uid
		attr.Gid = rec.RockRidge.Gid
		attr.Nlink = rec.RockRidge.Links
		if rec.RockRidge.SerialNo != 0 {
			attr.Ino = uint64(rec.RockRidge.SerialNo)
		}
	} else {
		if rec.IsDir() {
			attr.Mode = defaultModeDir
		} else {
			attr.Mode = defaultModeFile
		}
		attr.Uid = o.defaultUid
		attr.Gid = o.defaultGid
	}

	if t, ok := rec.RockRidge.Timestamps[rockridge.TimestampCreation]; ok {
		attr.Ctime = t
	}
	if t, ok := rec.RockRidge.Timestamps[rockridge.TimestampModify]; ok {
		attr.Mtime = t
	}
	if t, ok := rec.RockRidge.Timestamps[rockridge.TimestampAccess]; ok {
		attr.Atime = t
	}

	return attr
}

func recordTime(rec *directory.Record) (time.Time, bool) {
	if len(rec.RecordedAt) != 7 {
		return time.Time{}, false
	}
	v := binview.New(rec.RecordedAt)
	t, ok, err := v.CompactDateTime(0)
	if err != nil || !ok {
		return time.Time{}, false
	}
	return t, true
}
