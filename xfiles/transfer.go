package xfiles

import (
	"context"
	"fmt"

	"github.com/sarchlab/xfiles/accel"
	"github.com/sarchlab/xfiles/tracing"
)

// WriteData writes all the elements and starts the transaction.
func (m *Manager) WriteData(tid accel.TID, data []accel.Element) error {
	if len(data) == 0 {
		return ErrNoData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	txn, err := m.lookupFeedForward(tid)
	if err != nil {
		return err
	}

	return m.start(txn, data)
}

// WriteDataExceptLast writes every element but the last one of a
// feed-forward transaction. The transaction does not start. Issuing this for
// several transactions before their WriteDataLast calls starts them close
// together. Incremental learning writes its whole input vector at once, so it
// is rejected with ErrModeMismatch.
func (m *Manager) WriteDataExceptLast(tid accel.TID, data []accel.Element) error {
	if len(data) == 0 {
		return ErrNoData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	txn, err := m.lookupFeedForward(tid)
	if err != nil {
		return err
	}

	head := data[:len(data)-1]
	if len(head) == 0 {
		return nil
	}

	err = m.accel.WriteData(tid, head, false)
	if err != nil {
		return err
	}

	txn.written += len(head)

	tracing.AddTaskStep(txn.id, m, "data except last")

	return nil
}

// WriteDataLast writes only the last element and starts the transaction.
func (m *Manager) WriteDataLast(tid accel.TID, data []accel.Element) error {
	if len(data) == 0 {
		return ErrNoData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	txn, err := m.lookupFeedForward(tid)
	if err != nil {
		return err
	}

	return m.start(txn, data[len(data)-1:])
}

// WriteDataTrainIncremental writes an input vector with its expected outputs
// and starts an incremental learning transaction. The expected outputs update
// the cached configuration instead of being read back.
func (m *Manager) WriteDataTrainIncremental(
	tid accel.TID,
	inputs []accel.Element,
	expected []accel.Element,
) error {
	if len(inputs) == 0 {
		return ErrNoData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	txn, err := m.lookupWritable(tid)
	if err != nil {
		return err
	}

	if !txn.incremental() {
		return fmt.Errorf("%w: %d is feed-forward", ErrModeMismatch, tid)
	}

	if len(expected) != txn.numTrainOutputs {
		return fmt.Errorf("%w: %d expected outputs, transaction has %d",
			ErrModeMismatch, len(expected), txn.numTrainOutputs)
	}

	err = m.accel.WriteTrainData(tid, expected)
	if err != nil {
		return err
	}

	return m.start(txn, inputs)
}

// lookupFeedForward must be called with the lock held.
func (m *Manager) lookupFeedForward(tid accel.TID) (*transaction, error) {
	txn, err := m.lookupWritable(tid)
	if err != nil {
		return nil, err
	}

	if txn.incremental() {
		return nil, fmt.Errorf("%w: %d learns incrementally", ErrModeMismatch, tid)
	}

	return txn, nil
}

// start must be called with the lock held. The accelerator dereferences the
// configuration here, so a garbage entry fails the transaction.
func (m *Manager) start(txn *transaction, last []accel.Element) error {
	err := m.accel.WriteData(txn.tid, last, true)
	if err != nil {
		m.releaseOnDevice(txn)
		m.finish(txn, StateFailed, err)

		m.log.Warn("transaction failed to start",
			"tid", txn.tid,
			"nnid", txn.nnid,
			"err", err)

		return fmt.Errorf("%w: TID %d: %w", ErrFailed, txn.tid, err)
	}

	txn.written += len(last)
	txn.state = StateRunning

	tracing.AddTaskStep(txn.id, m, "start")

	m.log.Debug("transaction started", "tid", txn.tid, "inputs", txn.written)

	return nil
}

// ReadData blocks until len(out) outputs are available and copies them. The
// transaction then completes and its TID is retired.
//
// A killed or failed transaction returns ErrKilled or ErrFailed and is retired
// as well. If the transaction finished with fewer outputs than requested,
// ErrShortRead is returned and the transaction can be read again. When ctx is
// done, ctx.Err() is returned and nothing changes.
func (m *Manager) ReadData(ctx context.Context, tid accel.TID, out []accel.Element) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn, err := m.lookup(tid)
	if err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.cond.Broadcast()
	})
	defer stop()

	for {
		if m.slots[tid] != txn {
			return fmt.Errorf("%w: %d retired while reading", ErrInvalidTID, tid)
		}

		switch {
		case txn.state == StateKilled:
			m.retire(txn)
			return fmt.Errorf("%w: TID %d", ErrKilled, tid)
		case txn.state == StateFailed:
			m.retire(txn)
			return fmt.Errorf("%w: TID %d: %w", ErrFailed, tid, txn.err)
		case txn.state == StateRunning && txn.done:
			return m.complete(txn, out)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		m.cond.Wait()
	}
}

// complete must be called with the lock held.
func (m *Manager) complete(txn *transaction, out []accel.Element) error {
	if txn.outputs < len(out) {
		return fmt.Errorf("%w: TID %d has %d outputs, %d requested",
			ErrShortRead, txn.tid, txn.outputs, len(out))
	}

	_, err := m.accel.ReadOutput(txn.tid, out)
	if err != nil {
		return err
	}

	m.releaseOnDevice(txn)
	m.finish(txn, StateComplete, nil)
	m.retire(txn)

	m.log.Debug("transaction complete", "tid", txn.tid, "outputs", len(out))

	return nil
}
