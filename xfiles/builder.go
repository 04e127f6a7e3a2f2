package xfiles

import (
	"log/slog"
	"sync"

	"github.com/sarchlab/xfiles/accel"
	"github.com/sarchlab/xfiles/logging"
)

// Builder can build transaction managers.
type Builder struct {
	accel  accel.Accelerator
	logger *slog.Logger
}

// MakeBuilder creates a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithAccelerator sets the accelerator that runs the transactions.
func (b Builder) WithAccelerator(a accel.Accelerator) Builder {
	b.accel = a
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(logger *slog.Logger) Builder {
	b.logger = logger
	return b
}

// Build creates a manager and registers it as the response handler of the
// accelerator.
func (b Builder) Build(name string) *Manager {
	if b.accel == nil {
		panic("accelerator is not set")
	}

	numTIDs := b.accel.NumTIDs()
	if numTIDs <= 0 {
		panic("accelerator has no TID")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &Manager{
		name:  name,
		log:   logging.For(logger, name),
		accel: b.accel,
		slots: make([]*transaction, numTIDs),
	}
	m.cond = sync.NewCond(&m.mu)

	b.accel.AcceptResponseHandler(m)

	return m
}
