package dana

import (
	"log/slog"
	"time"

	"github.com/sarchlab/xfiles/accel"
	"github.com/sarchlab/xfiles/logging"
)

// Builder can build DANA accelerators.
type Builder struct {
	numTIDs      int
	numPEs       int
	cacheEntries int
	latency      int
	tickInterval time.Duration
	logger       *slog.Logger
}

// MakeBuilder returns a Builder with the default hardware parameters.
func MakeBuilder() Builder {
	return Builder{
		numTIDs:      4,
		numPEs:       4,
		cacheEntries: 4,
		latency:      8,
		tickInterval: time.Microsecond,
	}
}

// WithNumTIDs sets the number of transaction slots.
func (b Builder) WithNumTIDs(n int) Builder {
	b.numTIDs = n
	return b
}

// WithNumPEs sets how many transactions can execute at the same time.
func (b Builder) WithNumPEs(n int) Builder {
	b.numPEs = n
	return b
}

// WithCacheEntries sets the number of configuration cache entries.
func (b Builder) WithCacheEntries(n int) Builder {
	b.cacheEntries = n
	return b
}

// WithLatency sets how many cycles a transaction executes for.
func (b Builder) WithLatency(cycles int) Builder {
	b.latency = cycles
	return b
}

// WithTickInterval sets the wall-clock time between two busy cycles. Zero
// ticks as fast as possible.
func (b Builder) WithTickInterval(d time.Duration) Builder {
	b.tickInterval = d
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(logger *slog.Logger) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.numTIDs <= 0 || b.numTIDs > accel.MaxIDField {
		panic("number of TIDs must be in [1, 65535]")
	}

	if b.numPEs <= 0 || b.numPEs > accel.MaxIDField {
		panic("number of PEs must be in [1, 65535]")
	}

	if b.cacheEntries <= 0 || b.cacheEntries > accel.MaxIDField {
		panic("number of cache entries must be in [1, 65535]")
	}

	if b.latency < 0 {
		panic("latency must not be negative")
	}
}

// Build creates a new accelerator. It does not execute anything until Start
// is called.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Comp{
		name:         name,
		log:          logging.For(logger, name),
		numPEs:       b.numPEs,
		cacheEntries: b.cacheEntries,
		latency:      b.latency,
		tickInterval: b.tickInterval,
		tids:         make([]*transaction, b.numTIDs),
		wakeup:       make(chan struct{}, 1),
	}

	return c
}

var _ accel.Accelerator = (*Comp)(nil)
