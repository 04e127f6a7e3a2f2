// Package ant implements the ASID--NNID Table (ANT). The table maps an
// address space identifier (ASID) to a queue of neural network configurations
// indexed by neural network identifier (NNID). The accelerator walks the same
// structure when a transaction starts, so everything attached here is laid out
// on cache-line boundaries.
package ant

// ASID is an address space identifier. It indexes a row of the table.
type ASID uint16

// NNID is a neural network identifier. It indexes a configuration inside the
// queue of one ASID and is assigned by insertion order.
type NNID uint16

// Word is an accelerator-addressable word (XLen = 64).
type Word uint64

// WordBytes is the number of bytes in a Word.
const WordBytes = 8

const (
	// MaxASIDs is the size of the ASID space.
	MaxASIDs = 1 << 16

	// MaxNNIDs is the size of the NNID space of one ASID.
	MaxNNIDs = 1 << 16
)
