// Package xfiles is the host side of the X-FILES transaction interface. A
// Manager binds transactions to configurations of the ASID--NNID table,
// streams their data to the accelerator and hands the outputs back.
package xfiles

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rs/xid"
	"github.com/sarchlab/xfiles/accel"
	"github.com/sarchlab/xfiles/ant"
	"github.com/sarchlab/xfiles/hooking"
	"github.com/sarchlab/xfiles/tracing"
)

// TaskKind is the tracing task kind of a transaction.
const TaskKind = "transaction"

// A Manager owns the TID space of one accelerator. All methods are safe for
// concurrent use.
//
// Hooks are invoked with the manager lock held and must not call back into
// the manager.
type Manager struct {
	hooking.HookableBase

	name  string
	log   *slog.Logger
	accel accel.Accelerator

	mu       sync.Mutex
	cond     *sync.Cond
	table    *ant.Table
	asid     ant.ASID
	antpSet  bool
	asidSet  bool
	slots    []*transaction
	nextSlot int
	nextTag  uint64
}

// Name returns the name of the manager.
func (m *Manager) Name() string {
	return m.name
}

// Accelerator returns the accelerator behind the manager.
func (m *Manager) Accelerator() accel.Accelerator {
	return m.accel
}

// SetANTP makes the table the one that requests resolve against.
func (m *Manager) SetANTP(table *ant.Table) error {
	if table == nil {
		return fmt.Errorf("%w: nil table", ErrNoContext)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.accel.SetANTP(table)
	if err != nil {
		return err
	}

	m.table = table
	m.antpSet = true

	m.log.Info("ANT pointer set",
		"asids", table.NumASIDs(),
		"configurations_per_asid", table.ConfigurationsPerASID())

	return nil
}

// SetASID sets the current address space.
func (m *Manager) SetASID(asid ant.ASID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.accel.SetASID(asid)
	if err != nil {
		return err
	}

	m.asid = asid
	m.asidSet = true

	m.log.Info("ASID set", "asid", asid)

	return nil
}

// Table returns the table set by SetANTP, or nil.
func (m *Manager) Table() *ant.Table {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.table
}

// ASID returns the current ASID and whether it has been set.
func (m *Manager) ASID() (ant.ASID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.asid, m.asidSet
}

// NewWriteRequest opens a transaction on a configuration of the current ASID.
// A zero numTrainOutputs selects feed-forward mode. Otherwise the transaction
// learns incrementally and produces numTrainOutputs outputs.
func (m *Manager) NewWriteRequest(
	nnid ant.NNID,
	learningType accel.LearningType,
	numTrainOutputs int,
) (accel.TID, error) {
	if numTrainOutputs < 0 {
		return 0, fmt.Errorf("%w: %d train outputs", ErrModeMismatch, numTrainOutputs)
	}

	if numTrainOutputs > 0 && learningType == accel.FeedForward {
		return 0, fmt.Errorf("%w: feed-forward request with %d train outputs",
			ErrModeMismatch, numTrainOutputs)
	}

	if numTrainOutputs == 0 {
		learningType = accel.FeedForward
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.antpSet || !m.asidSet {
		return 0, ErrNoContext
	}

	err := m.resolve(nnid)
	if err != nil {
		return 0, err
	}

	tid, ok := m.freeSlot()
	if !ok {
		return 0, fmt.Errorf("%w: %d TIDs held", ErrResourceExhausted, len(m.slots))
	}

	m.nextTag++
	txn := &transaction{
		id:              xid.New().String(),
		tag:             m.nextTag,
		tid:             tid,
		asid:            m.asid,
		nnid:            nnid,
		learningType:    learningType,
		numTrainOutputs: numTrainOutputs,
		state:           StateRequested,
	}

	err = m.accel.NewRequest(accel.Request{
		TID:             tid,
		NNID:            nnid,
		LearningType:    learningType,
		NumTrainOutputs: numTrainOutputs,
		Tag:             txn.tag,
	})
	if err != nil {
		return 0, err
	}

	m.slots[tid] = txn
	m.nextSlot = (int(tid) + 1) % len(m.slots)

	tracing.StartTask(txn.id, "", m, TaskKind, learningType.String(), txn.info())

	m.log.Debug("transaction requested",
		"tid", tid,
		"asid", txn.asid,
		"nnid", nnid,
		"learning_type", learningType)

	return tid, nil
}

// resolve must be called with the lock held.
func (m *Manager) resolve(nnid ant.NNID) error {
	_, err := m.table.Lookup(m.asid, nnid)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ant.ErrInvalidASID):
		return err
	default:
		return fmt.Errorf("%w: ASID %d NNID %d: %w", ErrResolution, m.asid, nnid, err)
	}
}

// freeSlot must be called with the lock held. The search starts after the
// most recently allocated TID so that a retired TID is not reused at once.
func (m *Manager) freeSlot() (accel.TID, bool) {
	for i := 0; i < len(m.slots); i++ {
		slot := (m.nextSlot + i) % len(m.slots)
		if m.slots[slot] == nil {
			return accel.TID(slot), true
		}
	}

	return 0, false
}

// lookup must be called with the lock held.
func (m *Manager) lookup(tid accel.TID) (*transaction, error) {
	if int(tid) >= len(m.slots) || m.slots[tid] == nil {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTID, tid)
	}

	return m.slots[tid], nil
}

// lookupWritable must be called with the lock held.
func (m *Manager) lookupWritable(tid accel.TID) (*transaction, error) {
	txn, err := m.lookup(tid)
	if err != nil {
		return nil, err
	}

	if !txn.writable() {
		return nil, fmt.Errorf("%w: %d is %s", ErrInvalidTID, tid, txn.state)
	}

	return txn, nil
}

// WriteRegister writes a register of a transaction that has not started. Bits
// beyond the width of the register are dropped.
func (m *Manager) WriteRegister(tid accel.TID, reg accel.Register, value uint32) error {
	if !reg.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidRegister, reg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	txn, err := m.lookupWritable(tid)
	if err != nil {
		return err
	}

	err = m.accel.WriteRegister(tid, reg, reg.Truncate(value))
	if err != nil {
		return err
	}

	txn.state = StateConfigured

	tracing.AddTaskStep(txn.id, m, "register "+reg.String())

	return nil
}

// KillTransaction stops a transaction that has not reached a terminal state.
// Readers blocked on it return ErrKilled. The TID stays reserved until it is
// retired.
func (m *Manager) KillTransaction(tid accel.TID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn, err := m.lookup(tid)
	if err != nil {
		return err
	}

	if txn.state.Terminal() {
		return fmt.Errorf("%w: %d is %s", ErrInvalidTID, tid, txn.state)
	}

	err = m.accel.Kill(tid)
	if err != nil {
		m.log.Warn("accelerator failed to kill transaction", "tid", tid, "err", err)
	}

	m.finish(txn, StateKilled, nil)

	m.log.Debug("transaction killed", "tid", tid)

	return nil
}

// Retire frees the TID of a killed or failed transaction that nobody read.
func (m *Manager) Retire(tid accel.TID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn, err := m.lookup(tid)
	if err != nil {
		return err
	}

	if txn.state != StateKilled && txn.state != StateFailed {
		return fmt.Errorf("%w: %d is %s", ErrInvalidTID, tid, txn.state)
	}

	m.retire(txn)

	return nil
}

// State returns the state of a TID that has not been retired.
func (m *Manager) State(tid accel.TID) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn, err := m.lookup(tid)
	if err != nil {
		return 0, err
	}

	return txn.state, nil
}

// Transactions lists the transactions that hold a TID, ordered by TID.
func (m *Manager) Transactions() []TransactionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	var infos []TransactionInfo

	for _, txn := range m.slots {
		if txn != nil {
			infos = append(infos, txn.info())
		}
	}

	return infos
}

// NumTIDs returns the size of the TID space.
func (m *Manager) NumTIDs() int {
	return len(m.slots)
}

// ID queries the accelerator configuration.
func (m *Manager) ID() (accel.ID, error) {
	return m.accel.ID()
}

// DebugEcho sends a value through the accelerator and back.
func (m *Manager) DebugEcho(value uint32) (uint64, error) {
	return m.accel.DebugEcho(value)
}

// HandleResponse records that the accelerator stopped running a transaction.
// Responses for a TID that has since been killed or reused are dropped.
func (m *Manager) HandleResponse(rsp accel.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if int(rsp.TID) >= len(m.slots) {
		return
	}

	txn := m.slots[rsp.TID]
	if txn == nil || txn.tag != rsp.Tag || txn.state != StateRunning {
		m.log.Debug("stale response dropped", "tid", rsp.TID, "tag", rsp.Tag)
		return
	}

	if rsp.Err != nil {
		m.releaseOnDevice(txn)
		m.finish(txn, StateFailed, rsp.Err)

		return
	}

	txn.done = true
	txn.outputs = rsp.Outputs

	tracing.AddTaskStep(txn.id, m, "done")

	m.cond.Broadcast()
}

// finish must be called with the lock held.
func (m *Manager) finish(txn *transaction, state State, err error) {
	txn.state = state
	txn.err = err

	tracing.EndTask(txn.id, m, state)

	m.cond.Broadcast()
}

// retire must be called with the lock held.
func (m *Manager) retire(txn *transaction) {
	if m.slots[txn.tid] != txn {
		return
	}

	m.slots[txn.tid] = nil

	m.cond.Broadcast()
}

func (m *Manager) releaseOnDevice(txn *transaction) {
	err := m.accel.Release(txn.tid)
	if err != nil {
		m.log.Warn("accelerator failed to release transaction",
			"tid", txn.tid, "err", err)
	}
}

var _ accel.ResponseHandler = (*Manager)(nil)
var _ tracing.NamedHookable = (*Manager)(nil)
