package ant

import (
	"fmt"
	"io"
	"unsafe"
)

// TableSnapshot is a plain-data view of the table structure.
type TableSnapshot struct {
	NumASIDs              int             `json:"num_asids"`
	ConfigurationsPerASID int             `json:"configurations_per_asid"`
	Queues                []QueueSnapshot `json:"queues"`
}

// QueueSnapshot is a plain-data view of one queue.
type QueueSnapshot struct {
	ASID     ASID            `json:"asid"`
	Capacity int             `json:"capacity"`
	Entries  []EntrySnapshot `json:"entries"`
}

// EntrySnapshot is a plain-data view of one entry.
type EntrySnapshot struct {
	NNID    NNID    `json:"nnid"`
	Size    int     `json:"size"`
	Garbage bool    `json:"garbage"`
	Addr    uintptr `json:"addr"`
}

// Snapshot copies the table structure. Configuration contents are not copied.
func (t *Table) Snapshot() (TableSnapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.destroyed {
		return TableSnapshot{}, ErrDestroyed
	}

	s := TableSnapshot{
		NumASIDs:              len(t.queues),
		ConfigurationsPerASID: t.perASID,
		Queues:                make([]QueueSnapshot, 0, len(t.queues)),
	}

	for i, q := range t.queues {
		qs := QueueSnapshot{
			ASID:     ASID(i),
			Capacity: q.Capacity(),
			Entries:  make([]EntrySnapshot, 0, q.Len()),
		}

		for _, e := range q.entries {
			es := EntrySnapshot{
				NNID:    e.NNID,
				Size:    e.Size(),
				Garbage: e.Config.IsGarbage(),
			}

			if len(e.Config.words) > 0 {
				es.Addr = uintptr(unsafe.Pointer(&e.Config.words[0]))
			}

			qs.Entries = append(qs.Entries, es)
		}

		s.Queues = append(s.Queues, qs)
	}

	return s, nil
}

// Describe writes a human-readable dump of the table structure.
func (t *Table) Describe(w io.Writer) error {
	s, err := t.Snapshot()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "ASID--NNID Table: %d ASIDs, %d configurations per ASID\n",
		s.NumASIDs, s.ConfigurationsPerASID)
	if err != nil {
		return err
	}

	for _, q := range s.Queues {
		_, err = fmt.Fprintf(w, "  |-> ASID %d: %d/%d configurations\n",
			q.ASID, len(q.Entries), q.Capacity)
		if err != nil {
			return err
		}

		for _, e := range q.Entries {
			if e.Garbage {
				_, err = fmt.Fprintf(w, "      |-> NNID %d: garbage\n", e.NNID)
			} else {
				_, err = fmt.Fprintf(w, "      |-> NNID %d: %d words @ %#x\n",
					e.NNID, e.Size, e.Addr)
			}

			if err != nil {
				return err
			}
		}
	}

	return nil
}
