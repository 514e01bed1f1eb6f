// Package resolve splits filesystem paths into components and walks them
// down from an Image's root directory record, enforcing the directory/
// non-directory rules spec.md §4.5 defines.
package resolve

import (
	"fmt"
	"strings"

	"github.com/go-rrfs/rrfs/pkg/consts"
	"github.com/go-rrfs/rrfs/pkg/directory"
	"github.com/go-rrfs/rrfs/pkg/rrerrors"
	"github.com/go-rrfs/rrfs/pkg/volume"
)

// PathComponents is an ordered, bounded decomposition of a slash-separated
// path: at most consts.MaxPathComponents entries, each at most
// consts.MaxPathComponentBytes bytes, plus whether the original path ended
// in "/".
type PathComponents struct {
	Parts         []string
	TrailingSlash bool
}

// Split decomposes path per spec.md §4.5: it must start with "/", and a
// path with more than consts.MaxPathComponents non-empty components, or
// any component longer than consts.MaxPathComponentBytes bytes, fails
// with ErrNameTooLong. A path of just "/" yields zero components.
func Split(path string) (PathComponents, error) {
	if !strings.HasPrefix(path, "/") {
		return PathComponents{}, fmt.Errorf("%w: path %q does not start with /", rrerrors.ErrNotFound, path)
	}

	trailingSlash := len(path) > 1 && strings.HasSuffix(path, "/")

	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p == "" {
			continue
		}
		if len(p) > consts.MaxPathComponentBytes {
			return PathComponents{}, fmt.Errorf("%w: component %q exceeds %d bytes", rrerrors.ErrNameTooLong, p, consts.MaxPathComponentBytes)
		}
		parts = append(parts, p)
	}
	if len(parts) > consts.MaxPathComponents {
		return PathComponents{}, fmt.Errorf("%w: path has %d components, max %d", rrerrors.ErrNameTooLong, len(parts), consts.MaxPathComponents)
	}

	return PathComponents{Parts: parts, TrailingSlash: trailingSlash}, nil
}

// ResolvedRecord is a directory record reached by Resolve, together with
// the chain of ancestor directory records walked to reach it (root
// first, the record's own parent last). The chain lets the access-check
// layer test execute permission on every ancestor without re-resolving
// from root.
type ResolvedRecord struct {
	Record    *directory.Record
	Ancestors []*directory.Record
}

// Resolve walks path down from img's root directory record, per spec.md
// §4.5: "/" always resolves directly to the root record (the "Root /
// fast path" design note), regardless of whether the root extent decodes
// any children. Each path component is matched against the effective
// name (Rock Ridge NM if present, else the normalized ISO-9660 name) of
// every child in the current directory, using exact byte equality.
func Resolve(img *volume.Image, path string) (*ResolvedRecord, error) {
	parts, err := Split(path)
	if err != nil {
		return nil, err
	}

	root := img.PVD.RootDirectory
	if len(parts.Parts) == 0 {
		return &ResolvedRecord{Record: root}, nil
	}

	current := root
	ancestors := []*directory.Record{root}

	for i, name := range parts.Parts {
		isLast := i == len(parts.Parts)-1

		child, err := directory.Find(img.View, current, name, img.LogicalBlockSize(), img.SUSPSkip)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", path, err)
		}

		if !child.IsDir() && (!isLast || parts.TrailingSlash) {
			return nil, fmt.Errorf("%w: %q is not a directory", rrerrors.ErrNotADirectory, name)
		}

		if isLast {
			return &ResolvedRecord{Record: child, Ancestors: ancestors}, nil
		}

		ancestors = append(ancestors, child)
		current = child
	}

	// unreachable: the loop above always returns on isLast
	return nil, fmt.Errorf("%w: empty path component walk", rrerrors.ErrNotFound)
}
