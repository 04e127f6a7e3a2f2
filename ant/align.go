package ant

import (
	"fmt"
	"unsafe"
)

// Bytes of data per beat of a TileLink L2 response and the L2 cache line
// geometry. Configurations are read by the accelerator in L2-line bursts.
const (
	TileLinkBytesPerBeat   = 16
	TileLinkLgBytesPerBeat = 4
	L2Bytes                = 64
	L2AddrBits             = 6
)

// maxAllocWords bounds a single configuration buffer to 2 GiB.
const maxAllocWords = 1 << 28

// AllocAligned allocates a buffer of numWords words that starts on an L2 cache
// line. The raw buffer backs the aligned one and must be kept by the caller for
// as long as the aligned words are in use; dropping raw releases both.
func AllocAligned(numWords int) (raw []byte, aligned []Word, err error) {
	if numWords <= 0 || numWords > maxAllocWords {
		return nil, nil, fmt.Errorf("%w: cannot allocate %d words",
			ErrAllocation, numWords)
	}

	raw = make([]byte, numWords*WordBytes+L2Bytes)

	base := uintptr(unsafe.Pointer(&raw[0]))
	offset := int((L2Bytes - base%L2Bytes) % L2Bytes)

	aligned = unsafe.Slice((*Word)(unsafe.Pointer(&raw[offset])), numWords)

	return raw, aligned, nil
}

// IsL2Aligned tells if the first word of the slice starts on an L2 cache line.
func IsL2Aligned(words []Word) bool {
	if len(words) == 0 {
		return false
	}

	return uintptr(unsafe.Pointer(&words[0]))%L2Bytes == 0
}
