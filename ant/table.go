package ant

import (
	"fmt"
	"sync"

	"github.com/sarchlab/xfiles/hooking"
)

// HookPosAttach fires after a configuration is appended to a queue. The item
// of the hook context is an AttachEvent.
var HookPosAttach = &hooking.HookPos{Name: "ANT Attach"}

// An AttachEvent describes one successful attachment.
type AttachEvent struct {
	ASID   ASID
	NNID   NNID
	Size   int
	Source string
}

// A Table is the ASID--NNID Table. Its size is fixed at creation and it
// exclusively owns one Queue per ASID.
//
// Lookups are safe for concurrent use. Attaching while transactions reference
// the table is not supported; callers must serialize attachment themselves.
type Table struct {
	hooking.HookableBase

	mu        sync.RWMutex
	perASID   int
	queues    []*Queue
	destroyed bool
}

// NewTable creates a table of numASIDs empty queues, each able to hold
// configurationsPerASID configurations.
func NewTable(numASIDs, configurationsPerASID int) (*Table, error) {
	if numASIDs <= 0 || numASIDs > MaxASIDs {
		return nil, fmt.Errorf("%w: %d ASIDs", ErrAllocation, numASIDs)
	}

	t := &Table{
		perASID: configurationsPerASID,
		queues:  make([]*Queue, numASIDs),
	}

	for i := range t.queues {
		q, err := NewQueue(configurationsPerASID)
		if err != nil {
			return nil, err
		}

		t.queues[i] = q
	}

	return t, nil
}

// NumASIDs returns the number of rows.
func (t *Table) NumASIDs() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.queues)
}

// ConfigurationsPerASID returns the capacity of each queue.
func (t *Table) ConfigurationsPerASID() int {
	return t.perASID
}

// NumConfigurations returns how many configurations the ASID holds.
func (t *Table) NumConfigurations(asid ASID) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	q, err := t.queue(asid)
	if err != nil {
		return 0, err
	}

	return q.Len(), nil
}

// Lookup resolves an NNID of an ASID to its entry.
func (t *Table) Lookup(asid ASID, nnid NNID) (Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	q, err := t.queue(asid)
	if err != nil {
		return Entry{}, err
	}

	entry, err := q.Get(nnid)
	if err != nil {
		return Entry{}, fmt.Errorf("ASID %d: %w", asid, err)
	}

	return entry, nil
}

// Destroy releases every queue and every configuration still referenced by
// them. A table can only be destroyed once.
func (t *Table) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.destroyed {
		panic("ASID--NNID table destroyed twice")
	}

	for _, q := range t.queues {
		q.Destroy()
	}

	t.queues = nil
	t.destroyed = true
}

// queue must be called with the lock held.
func (t *Table) queue(asid ASID) (*Queue, error) {
	if t.destroyed {
		return nil, ErrDestroyed
	}

	if int(asid) >= len(t.queues) {
		return nil, fmt.Errorf("%w: ASID %d, table has %d ASIDs",
			ErrInvalidASID, asid, len(t.queues))
	}

	return t.queues[asid], nil
}

func (t *Table) push(
	asid ASID,
	cfg Configuration,
	source string,
) (NNID, error) {
	t.mu.Lock()

	q, err := t.queue(asid)
	if err != nil {
		t.mu.Unlock()
		return 0, err
	}

	nnid, err := q.Push(cfg)
	t.mu.Unlock()

	if err != nil {
		return 0, fmt.Errorf("ASID %d: %w", asid, err)
	}

	if t.NumHooks() > 0 {
		t.InvokeHook(hooking.HookCtx{
			Domain: t,
			Pos:    HookPosAttach,
			Item: AttachEvent{
				ASID:   asid,
				NNID:   nnid,
				Size:   cfg.Size(),
				Source: source,
			},
		})
	}

	return nnid, nil
}

// checkRoom fails early when the ASID is out of range or its queue is full.
func (t *Table) checkRoom(asid ASID) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	q, err := t.queue(asid)
	if err != nil {
		return err
	}

	if !q.CanPush() {
		return fmt.Errorf("ASID %d: %w: capacity %d",
			asid, ErrCapacity, q.Capacity())
	}

	return nil
}
