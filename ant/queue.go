package ant

import "fmt"

// A Queue holds the configurations of one ASID. Entries are only appended;
// the NNID of an entry is its position in the queue.
//
// A Queue is not safe for concurrent use. The owning Table serializes access.
type Queue struct {
	capacity int
	entries  []Entry
}

// NewQueue creates an empty queue that can hold up to capacity entries.
func NewQueue(capacity int) (*Queue, error) {
	if capacity <= 0 || capacity > MaxNNIDs {
		return nil, fmt.Errorf("%w: queue capacity %d", ErrAllocation, capacity)
	}

	return &Queue{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
	}, nil
}

// Capacity returns the maximum number of entries.
func (q *Queue) Capacity() int {
	return q.capacity
}

// Len returns the number of entries currently held.
func (q *Queue) Len() int {
	return len(q.entries)
}

// CanPush tells if another entry fits.
func (q *Queue) CanPush() bool {
	return len(q.entries) < q.capacity
}

// Push appends a configuration and returns the NNID assigned to it. A full
// queue rejects the configuration and keeps its entries unchanged.
func (q *Queue) Push(cfg Configuration) (NNID, error) {
	if !q.CanPush() {
		return 0, fmt.Errorf("%w: capacity %d", ErrCapacity, q.capacity)
	}

	nnid := NNID(len(q.entries))
	q.entries = append(q.entries, Entry{NNID: nnid, Config: cfg})

	return nnid, nil
}

// Get returns the entry of the NNID.
func (q *Queue) Get(nnid NNID) (Entry, error) {
	if int(nnid) >= q.capacity {
		return Entry{}, fmt.Errorf("%w: NNID %d, capacity %d",
			ErrInvalidNNID, nnid, q.capacity)
	}

	if int(nnid) >= len(q.entries) {
		return Entry{}, fmt.Errorf("%w: NNID %d", ErrNotAttached, nnid)
	}

	return q.entries[nnid], nil
}

// Entries returns a copy of the entry list.
func (q *Queue) Entries() []Entry {
	entries := make([]Entry, len(q.entries))
	copy(entries, q.entries)

	return entries
}

// Destroy releases every configuration buffer held by the queue.
func (q *Queue) Destroy() {
	for i := range q.entries {
		q.entries[i].Config.release()
	}

	q.entries = nil
	q.capacity = 0
}
