package searchindex

import (
	"math/bits"
	"time"
)

// timeEpoch anchors the 30-bit quantized mtime packed into Entry — seconds
// since 2020-01-01T00:00:00Z, stored as a count of 4-second ticks so it fits
// in 30 bits (SPEC_FULL.md §3 "IndexEntry").
const timeEpoch = 1_577_836_800

const flagIsDir = uint32(1) << 0

// Entry is the compact on-disk/in-memory representation of one directory
// entry: 11 logical bytes (3 + 3 + 1 + 4), kept here as plain Go fields
// rather than a packed byte array — Go has no #[repr(packed)] bitfields, and
// paying 5 extra bytes per entry (16 bytes in memory, 3 of them struct
// padding after SizeLog2) is a fair trade for
// readable field access at the scale this index targets (≤100,000 entries,
// §4.2's soft cap).
type Entry struct {
	NameOffset uint32 // 24 bits used
	ParentID   uint32 // 24 bits used; 0 = root
	SizeLog2   uint8
	Packed     uint32 // bit 0: is_dir; bits 1-30: quantized mtime
}

// NewEntry builds an Entry, quantizing size to its log2 bucket and modified
// time to 4-second ticks since timeEpoch, matching the original compact
// index's packing scheme.
func NewEntry(nameOffset, parentID uint32, size uint64, isDir bool, modified time.Time) Entry {
	var sizeLog2 uint8
	if size != 0 {
		sizeLog2 = uint8(64 - bits.LeadingZeros64(size))
	}

	secs := modified.Unix()
	if secs < timeEpoch {
		secs = timeEpoch
	}
	ticks := uint32((secs - timeEpoch) / 4)

	packed := (ticks << 1) & 0xFFFFFFFE
	if isDir {
		packed |= flagIsDir
	}

	return Entry{
		NameOffset: nameOffset & 0xFFFFFF,
		ParentID:   parentID & 0xFFFFFF,
		SizeLog2:   sizeLog2,
		Packed:     packed,
	}
}

// IsDir reports the directory flag.
func (e Entry) IsDir() bool { return e.Packed&flagIsDir != 0 }

// Size returns the approximate (log2-quantized) size in bytes.
func (e Entry) Size() uint64 {
	if e.SizeLog2 == 0 {
		return 0
	}
	return uint64(1) << (e.SizeLog2 - 1)
}

// Modified reconstructs the quantized modification time.
func (e Entry) Modified() time.Time {
	ticks := e.Packed >> 1
	return time.Unix(timeEpoch+int64(ticks)*4, 0).UTC()
}
