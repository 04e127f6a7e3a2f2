package ant

import "errors"

var (
	// ErrAllocation is returned when memory for the table, a queue or a
	// configuration buffer cannot be obtained.
	ErrAllocation = errors.New("allocation failed")

	// ErrCapacity is returned when attaching to a full queue.
	ErrCapacity = errors.New("queue is full")

	// ErrInvalidASID is returned when an ASID is not smaller than the number
	// of ASIDs of the table.
	ErrInvalidASID = errors.New("invalid ASID")

	// ErrInvalidNNID is returned when an NNID is outside the capacity of the
	// queue.
	ErrInvalidNNID = errors.New("invalid NNID")

	// ErrNotAttached is returned when an NNID is inside the queue capacity but
	// no configuration has been attached at that position yet.
	ErrNotAttached = errors.New("no configuration attached")

	// ErrIO is returned when a configuration file cannot be read.
	ErrIO = errors.New("cannot read configuration")

	// ErrInvalidConfiguration is returned when dereferencing a garbage
	// configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDestroyed is returned by every operation on a destroyed table.
	ErrDestroyed = errors.New("table destroyed")
)
