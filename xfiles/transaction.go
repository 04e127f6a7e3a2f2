package xfiles

import (
	"fmt"

	"github.com/sarchlab/xfiles/accel"
	"github.com/sarchlab/xfiles/ant"
)

// State is the state of a transaction.
type State int

// The transaction states. Complete, Killed and Failed are terminal.
const (
	StateRequested State = iota
	StateConfigured
	StateRunning
	StateComplete
	StateKilled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRequested:
		return "REQUESTED"
	case StateConfigured:
		return "CONFIGURED"
	case StateRunning:
		return "RUNNING"
	case StateComplete:
		return "COMPLETE"
	case StateKilled:
		return "KILLED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal tells if no further transition is possible.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateKilled || s == StateFailed
}

// MarshalText writes the state name, so that JSON shows it as a string.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(text []byte) error {
	for candidate := StateRequested; candidate <= StateFailed; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown transaction state %q", text)
}

type transaction struct {
	id   string
	tag  uint64
	tid  accel.TID
	asid ant.ASID
	nnid ant.NNID

	learningType    accel.LearningType
	numTrainOutputs int

	state   State
	written int
	done    bool
	outputs int
	err     error
}

func (t *transaction) incremental() bool {
	return t.numTrainOutputs > 0
}

func (t *transaction) writable() bool {
	return t.state == StateRequested || t.state == StateConfigured
}

// TransactionInfo is a snapshot of a transaction.
type TransactionInfo struct {
	ID              string `json:"id"`
	TID             int    `json:"tid"`
	ASID            int    `json:"asid"`
	NNID            int    `json:"nnid"`
	LearningType    string `json:"learning_type"`
	NumTrainOutputs int    `json:"num_train_outputs"`
	State           State  `json:"state"`
	Written         int    `json:"written"`
	Done            bool   `json:"done"`
	Outputs         int    `json:"outputs"`
	Err             string `json:"error,omitempty"`
}

func (t *transaction) info() TransactionInfo {
	info := TransactionInfo{
		ID:              t.id,
		TID:             int(t.tid),
		ASID:            int(t.asid),
		NNID:            int(t.nnid),
		LearningType:    t.learningType.String(),
		NumTrainOutputs: t.numTrainOutputs,
		State:           t.state,
		Written:         t.written,
		Done:            t.done,
		Outputs:         t.outputs,
	}

	if t.err != nil {
		info.Err = t.err.Error()
	}

	return info
}
