// Package access implements the POSIX permission check spec.md §4.6
// defines: ancestor execute-bit enforcement plus owner/group/other/root
// classification against a directory record's Rock Ridge PX attributes
// (or the ISO-9660 defaults when PX is absent).
package access

import (
	"io/fs"

	"github.com/go-rrfs/rrfs/pkg/directory"
	"github.com/go-rrfs/rrfs/pkg/resolve"
)

// Mode is a non-empty subset of {Read, Write, Execute}, using the
// standard POSIX r/w/x bit positions so it composes directly with the
// 3-bit groups modeBits extracts from an st_mode value.
type Mode uint8

const (
	Execute Mode = 1 << iota
	Write
	Read
)

// Caller identifies the requesting principal. Uid 0 is treated as root
// regardless of Gid, per spec.md §4.6 step 2.
type Caller struct {
	Uid uint32
	Gid uint32
}

const (
	modeDirDefault  fs.FileMode = 0o555
	modeFileDefault fs.FileMode = 0o444
)

// Check implements spec.md §4.6's algorithm against a resolved record and
// its ancestor chain (root first, target's parent last). It never itself
// returns a ReadOnly-shaped answer — that is a higher layer's concern for
// write-shaped operations — here, asking for Write just means "would the
// write bit be set".
func Check(rr *resolve.ResolvedRecord, caller Caller, mask Mode) bool {
	if mask == 0 {
		return true
	}

	// Step 1: every ancestor directory must grant execute to this
	// caller — this is the "can you even traverse down to here" check.
	for _, ancestor := range rr.Ancestors {
		if !hasPermission(ancestor, caller, Execute) {
			return false
		}
	}

	return hasPermission(rr.Record, caller, mask)
}

// hasPermission evaluates spec.md §4.6 steps 2–4 for a single record.
func hasPermission(rec *directory.Record, caller Caller, mask Mode) bool {
	effective := effectivePermissions(rec, caller)
	return effective&uint8(mask) == uint8(mask)
}

// effectivePermissions computes the 3-bit r/w/x mask (bit 2 = read, bit 1
// = write, bit 0 = execute — matching Mode's own bit layout) that applies
// to caller for rec, per spec.md §4.6 steps 2–3.
func effectivePermissions(rec *directory.Record, caller Caller) uint8 {
	if !rec.RockRidge.HasPX {
		if rec.IsDir() {
			return modeBits(modeDirDefault, classOther)
		}
		return modeBits(modeFileDefault, classOther)
	}

	mode := rec.RockRidge.Mode

	if caller.Uid == 0 {
		if mode.Perm()&(fs.FileMode(0o111)) != 0 {
			return 0b111
		}
		return 0b110
	}

	switch {
	case caller.Uid == rec.RockRidge.Uid:
		return modeBits(mode, classOwner)
	case caller.Gid == rec.RockRidge.Gid:
		return modeBits(mode, classGroup)
	default:
		return modeBits(mode, classOther)
	}
}

type permClass int

const (
	classOwner permClass = iota
	classGroup
	classOther
)

// modeBits extracts the 3-bit r/w/x group from mode for the given class:
// owner = bits 6-8, group = bits 3-5, other = bits 0-2 (standard POSIX
// st_mode layout, matching spec.md §4.6 step 3).
func modeBits(mode fs.FileMode, class permClass) uint8 {
	perm := uint32(mode.Perm())
	switch class {
	case classOwner:
		return uint8((perm >> 6) & 0b111)
	case classGroup:
		return uint8((perm >> 3) & 0b111)
	default:
		return uint8(perm & 0b111)
	}
}
