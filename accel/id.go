package accel

import "fmt"

// ID is the packed configuration identifier of an accelerator.
//
//	[15:0]  number of TIDs
//	[31:16] number of processing elements
//	[47:32] number of configuration cache entries
//	[63:48] version
type ID uint64

// MaxIDField is the largest count a 16-bit field of an ID can carry.
const MaxIDField = 1<<16 - 1

// MakeID packs the fields.
func MakeID(version, cacheEntries, numPEs, numTIDs uint16) ID {
	return ID(uint64(version)<<48 |
		uint64(cacheEntries)<<32 |
		uint64(numPEs)<<16 |
		uint64(numTIDs))
}

// NumTIDs returns the number of transaction slots.
func (id ID) NumTIDs() int {
	return int(uint16(id))
}

// NumPEs returns the number of processing elements.
func (id ID) NumPEs() int {
	return int(uint16(id >> 16))
}

// CacheEntries returns the number of configuration cache entries.
func (id ID) CacheEntries() int {
	return int(uint16(id >> 32))
}

// Version returns the version field.
func (id ID) Version() int {
	return int(uint16(id >> 48))
}

func (id ID) String() string {
	return fmt.Sprintf("version %d, %d TIDs, %d PEs, %d cache entries",
		id.Version(), id.NumTIDs(), id.NumPEs(), id.CacheEntries())
}
