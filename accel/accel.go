// Package accel defines the boundary between the host control plane and the
// neural network accelerator. Everything behind the Accelerator interface runs
// in privileged context or on the device itself.
package accel

import (
	"github.com/sarchlab/xfiles/ant"
)

// TID is a transaction identifier.
type TID uint16

// Element is one fixed-width data word exchanged with the accelerator. The
// host never interprets its bit pattern.
type Element int32

// LearningType selects what a transaction does with its inputs.
type LearningType int

// The learning types understood by the arbiter.
const (
	FeedForward LearningType = iota
	TrainIncremental
	TrainBatch
)

func (t LearningType) String() string {
	switch t {
	case FeedForward:
		return "feedforward"
	case TrainIncremental:
		return "train_incremental"
	case TrainBatch:
		return "train_batch"
	default:
		return "unknown"
	}
}

// A Request binds a TID to one configuration of the current ASID.
type Request struct {
	TID  TID
	NNID ant.NNID

	LearningType    LearningType
	NumTrainOutputs int

	// Tag identifies this binding of the TID. Responses carry it back so that
	// a late response never applies to a later user of the same TID.
	Tag uint64
}

// Status is the answer of a validity query.
type Status struct {
	Started bool
	Done    bool
	Outputs int
	Err     error
}

// A Response is pushed by the accelerator when a transaction stops running.
type Response struct {
	TID     TID
	Tag     uint64
	Outputs int
	Err     error
}

// ResponseHandler receives responses. It must not call back into the
// accelerator.
type ResponseHandler interface {
	HandleResponse(rsp Response)
}

// Accelerator is the set of primitives the control plane relies on.
type Accelerator interface {
	// SetASID sets the current address space.
	SetASID(asid ant.ASID) error

	// SetANTP makes the table visible to the privileged layer.
	SetANTP(table *ant.Table) error

	// DebugEcho is a diagnostic loopback.
	DebugEcho(data uint32) (uint64, error)

	// ID reports the configuration of the accelerator.
	ID() (ID, error)

	// NumTIDs is the size of the TID space.
	NumTIDs() int

	// NewRequest binds a TID to a configuration.
	NewRequest(req Request) error

	// WriteRegister writes a transaction-scoped register. The value has
	// already been truncated to the width of the register.
	WriteRegister(tid TID, reg Register, value uint32) error

	// WriteData streams input elements. Setting last marks the final element
	// and starts the transaction.
	WriteData(tid TID, data []Element, last bool) error

	// WriteTrainData streams the expected outputs of an incremental learning
	// transaction. It must precede the last input element.
	WriteTrainData(tid TID, expected []Element) error

	// Query reports how many outputs are available.
	Query(tid TID) (Status, error)

	// ReadOutput copies available outputs.
	ReadOutput(tid TID, out []Element) (int, error)

	// Kill stops the transaction and releases its device resources.
	Kill(tid TID) error

	// Release frees the device resources of a finished transaction.
	Release(tid TID) error

	// AcceptResponseHandler registers where responses go.
	AcceptResponseHandler(h ResponseHandler)
}
