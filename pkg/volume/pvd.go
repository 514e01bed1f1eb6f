package volume

import (
	"fmt"
	"time"

	"github.com/go-rrfs/rrfs/pkg/binview"
	"github.com/go-rrfs/rrfs/pkg/directory"
	"github.com/go-rrfs/rrfs/pkg/rrerrors"
)

// PrimaryVolumeDescriptor carries the fields spec.md §3 requires: volume
// space size, logical block size, path-table location and size, the
// embedded root directory record, and the decimal-form timestamps.
// Fields this core never consumes (volume/publisher/application strings)
// are still decoded, since they cost nothing to
// read and round out getattr-adjacent tooling in cmd/rrfsinfo.
type PrimaryVolumeDescriptor struct {
	SystemIdentifier   string
	VolumeIdentifier   string
	VolumeSpaceSize    uint32
	VolumeSetSize      uint16
	LogicalBlockSize   uint16
	PathTableSize      uint32
	LPathTableLocation uint32
	MPathTableLocation uint32
	RootDirectory      *directory.Record

	VolumeSetIdentifier   string
	PublisherIdentifier   string
	ApplicationIdentifier string

	CreationDate     time.Time
	HasCreationDate  bool
	ModificationDate time.Time
	HasModification  bool
	ExpirationDate   time.Time
	HasExpiration    bool
	EffectiveDate    time.Time
	HasEffective     bool
}

// parsePrimaryVolumeDescriptor decodes the byte-exact PVD layout (ECMA-119
// 8.4), reading the 2048-byte sector beginning at offset through view.
func parsePrimaryVolumeDescriptor(view *binview.View, offset int) (*PrimaryVolumeDescriptor, error) {
	sector, err := view.Bytes(offset, 2048)
	if err != nil {
		return nil, fmt.Errorf("reading PVD sector: %w", err)
	}
	rv := binview.New(sector)

	systemID, err := rv.PaddedString(8, 32)
	if err != nil {
		return nil, fmt.Errorf("decoding system identifier: %w", err)
	}
	volumeID, err := rv.PaddedString(40, 32)
	if err != nil {
		return nil, fmt.Errorf("decoding volume identifier: %w", err)
	}

	spaceSize, _, err := rv.Uint32LSBMSB(80)
	if err != nil {
		return nil, fmt.Errorf("decoding volume space size: %w", err)
	}
	setSize, _, err := rv.Uint16LSBMSB(120)
	if err != nil {
		return nil, fmt.Errorf("decoding volume set size: %w", err)
	}
	blockSize, _, err := rv.Uint16LSBMSB(128)
	if err != nil {
		return nil, fmt.Errorf("decoding logical block size: %w", err)
	}
	pathTableSize, _, err := rv.Uint32LSBMSB(132)
	if err != nil {
		return nil, fmt.Errorf("decoding path table size: %w", err)
	}
	lPathLoc, err := rv.Uint32LE(140)
	if err != nil {
		return nil, fmt.Errorf("decoding L path table location: %w", err)
	}
	mPathLoc, err := rv.Uint32BE(148)
	if err != nil {
		return nil, fmt.Errorf("decoding M path table location: %w", err)
	}

	rootRecordBytes, err := rv.Bytes(156, 34)
	if err != nil {
		return nil, fmt.Errorf("reading embedded root directory record: %w", err)
	}
	// skip=0: the root record's own system use area is what establishes
	// the SP-field skip count (see rootExtentSUSP); it can't apply to
	// itself.
	root, err := directory.Unmarshal(rootRecordBytes, view, int(blockSize), 0)
	if err != nil {
		return nil, fmt.Errorf("decoding embedded root directory record: %w", err)
	}

	volSetID, err := rv.PaddedString(190, 128)
	if err != nil {
		return nil, fmt.Errorf("decoding volume set identifier: %w", err)
	}
	publisherID, err := rv.PaddedString(318, 128)
	if err != nil {
		return nil, fmt.Errorf("decoding publisher identifier: %w", err)
	}
	appID, err := rv.PaddedString(574, 128)
	if err != nil {
		return nil, fmt.Errorf("decoding application identifier: %w", err)
	}

	creation, hasCreation, err := rv.DecimalDateTime(813)
	if err != nil {
		return nil, fmt.Errorf("decoding volume creation date: %w", err)
	}
	modification, hasModification, err := rv.DecimalDateTime(830)
	if err != nil {
		return nil, fmt.Errorf("decoding volume modification date: %w", err)
	}
	expiration, hasExpiration, err := rv.DecimalDateTime(847)
	if err != nil {
		return nil, fmt.Errorf("decoding volume expiration date: %w", err)
	}
	effective, hasEffective, err := rv.DecimalDateTime(864)
	if err != nil {
		return nil, fmt.Errorf("decoding volume effective date: %w", err)
	}

	if blockSize == 0 {
		return nil, fmt.Errorf("%w: PVD declares zero logical block size", rrerrors.ErrMalformedVolume)
	}

	return &PrimaryVolumeDescriptor{
		SystemIdentifier:      systemID,
		VolumeIdentifier:      volumeID,
		VolumeSpaceSize:       spaceSize,
		VolumeSetSize:         setSize,
		LogicalBlockSize:      blockSize,
		PathTableSize:         pathTableSize,
		LPathTableLocation:    lPathLoc,
		MPathTableLocation:    mPathLoc,
		RootDirectory:         root,
		VolumeSetIdentifier:   volSetID,
		PublisherIdentifier:   publisherID,
		ApplicationIdentifier: appID,
		CreationDate:          creation,
		HasCreationDate:       hasCreation,
		ModificationDate:      modification,
		HasModification:       hasModification,
		ExpirationDate:        expiration,
		HasExpiration:         hasExpiration,
		EffectiveDate:         effective,
		HasEffective:          hasEffective,
	}, nil
}
