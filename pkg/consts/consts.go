// Package consts holds the fixed numeric and string constants defined by
// ECMA-119 (ISO 9660) and used throughout the volume, directory, and SUSP
// decoders.
package consts

const (
	// ISO9660SystemAreaSectors is the number of reserved sectors at the
	// start of the volume before the first volume descriptor.
	ISO9660SystemAreaSectors = 16

	// ISO9660StdIdentifier is the fixed "CD001" standard identifier that
	// every volume descriptor must carry.
	ISO9660StdIdentifier = "CD001"

	// ISO9660VolumeDescVersion is the fixed volume descriptor version.
	ISO9660VolumeDescVersion = 1

	// ISO9660SectorSize is the logical sector size this module assumes.
	// ECMA-119 permits other logical block sizes; this module targets the
	// 2048-byte sectors used by virtually every ISO 9660 image in
	// practice, matching the Primary Volume Descriptor's own
	// LogicalBlockSize field when present.
	ISO9660SectorSize = 2048

	// ISO9660VolumeDescHeaderSize is the size in bytes of the common
	// volume descriptor header (type + standard identifier + version).
	ISO9660VolumeDescHeaderSize = 7

	// MaxPathComponents is the maximum number of "/"-separated components
	// a resolved path may contain.
	MaxPathComponents = 32

	// MaxPathComponentBytes is the maximum byte length of a single path
	// component.
	MaxPathComponentBytes = 255

	// MaxStatfsFileCount caps the approximate file count reported by
	// Statfs; path tables are not fully validated, so this is a ceiling
	// rather than an exact count for pathological path tables.
	MaxStatfsFileCount = 65536

	// ISO9660Separator1 and ISO9660Separator2 are the two reserved
	// filename separators: "." before an extension and ";" before a
	// version number.
	ISO9660Separator1 = "."
	ISO9660Separator2 = ";"
)
