// Package dana provides an in-process DANA accelerator. It executes
// configurations attached to the ASID--NNID table as a single linear layer so
// that the control plane can be exercised without hardware.
package dana

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sarchlab/xfiles/accel"
	"github.com/sarchlab/xfiles/ant"
	"github.com/sarchlab/xfiles/logging"
)

// Version is reported in the accelerator ID.
const Version = 1

type transaction struct {
	req      accel.Request
	asid     ant.ASID
	regs     map[accel.Register]uint32
	inputs   []accel.Element
	expected []accel.Element

	started    bool
	done       bool
	cyclesLeft int
	cache      *cacheEntry
	outputs    []accel.Element
	err        error
}

// Comp is a DANA accelerator. It processes started transactions on a fixed
// number of processing elements, one cycle per tick.
type Comp struct {
	name         string
	log          *slog.Logger
	numPEs       int
	cacheEntries int
	latency      int
	tickInterval time.Duration

	mu      sync.Mutex
	asid    ant.ASID
	asidSet bool
	antp    *ant.Table
	tids    []*transaction
	running []accel.TID
	cache   *configCache
	cycle   uint64
	handler accel.ResponseHandler

	wakeup  chan struct{}
	cancel  context.CancelFunc
	stopped chan struct{}
}

// Name returns the name of the accelerator.
func (c *Comp) Name() string {
	return c.name
}

// Start launches the tick loop. It returns immediately.
func (c *Comp) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		panic("accelerator already started")
	}

	if c.cache == nil {
		c.cache = newConfigCache(c.cacheEntries)
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.stopped = make(chan struct{})

	go c.run(ctx, c.stopped)
}

// Stop ends the tick loop and waits for it to return. Running transactions
// stay where they are.
func (c *Comp) Stop() {
	c.mu.Lock()
	cancel, stopped := c.cancel, c.stopped
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-stopped
}

func (c *Comp) run(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	for {
		madeProgress := c.Tick()

		if madeProgress {
			if c.tickInterval == 0 {
				if ctx.Err() != nil {
					return
				}

				continue
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(c.tickInterval):
			}

			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-c.wakeup:
		}
	}
}

func (c *Comp) tickLater() {
	select {
	case c.wakeup <- struct{}{}:
	default:
	}
}

// Tick advances the started transactions by one cycle. A transaction that
// is waiting for a configuration cache entry does not occupy a processing
// element. It returns true when any transaction made progress.
func (c *Comp) Tick() bool {
	c.mu.Lock()

	c.cycle++

	madeProgress := false
	busyPEs := 0
	var rsps []accel.Response
	var stillRunning []accel.TID

	for _, tid := range c.running {
		txn := c.tids[tid]

		if txn.cache == nil {
			err := c.attachCache(txn)
			if errors.Is(err, ErrCacheBusy) {
				stillRunning = append(stillRunning, tid)
				continue
			}

			madeProgress = true

			if err != nil {
				c.fail(txn, err)
				rsps = append(rsps, c.response(txn))

				continue
			}
		}

		if busyPEs >= c.numPEs {
			stillRunning = append(stillRunning, tid)
			continue
		}

		busyPEs++
		madeProgress = true

		if txn.cyclesLeft > 0 {
			txn.cyclesLeft--
		}

		if txn.cyclesLeft > 0 {
			stillRunning = append(stillRunning, tid)
			continue
		}

		c.execute(txn)
		rsps = append(rsps, c.response(txn))
	}

	c.running = stillRunning
	handler := c.handler

	c.log.Log(context.Background(), logging.LevelTrace.Slog(), "tick",
		"cycle", c.cycle, "busy_pes", busyPEs, "running", len(stillRunning))

	c.mu.Unlock()

	c.deliver(handler, rsps)

	return madeProgress
}

func (c *Comp) response(txn *transaction) accel.Response {
	return accel.Response{
		TID:     txn.req.TID,
		Tag:     txn.req.Tag,
		Outputs: len(txn.outputs),
		Err:     txn.err,
	}
}

func (c *Comp) deliver(handler accel.ResponseHandler, rsps []accel.Response) {
	if handler == nil {
		return
	}

	for _, rsp := range rsps {
		handler.HandleResponse(rsp)
	}
}

// execute must be called with the lock held.
func (c *Comp) execute(txn *transaction) {
	weights := txn.cache.weights

	switch {
	case txn.req.NumTrainOutputs > 0:
		txn.outputs = forward(weights, txn.inputs, txn.req.NumTrainOutputs)
		learn(weights, txn.inputs, txn.outputs, txn.expected,
			txn.regs[accel.RegLearningRate],
			txn.regs[accel.RegWeightDecayLambda])
	default:
		txn.outputs = forward(weights, txn.inputs, len(txn.inputs))
	}

	txn.done = true
	c.cache.releaseEntry(txn.cache)
	txn.cache = nil

	c.log.Debug("transaction done",
		"tid", txn.req.TID,
		"nnid", txn.req.NNID,
		"outputs", len(txn.outputs),
		"cycle", c.cycle)
}

// SetASID sets the address space of subsequent requests.
func (c *Comp) SetASID(asid ant.ASID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.asid = asid
	c.asidSet = true

	return nil
}

// SetANTP points the accelerator at a table. Cached configurations of the
// previous table are dropped.
func (c *Comp) SetANTP(table *ant.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if table == nil {
		return fmt.Errorf("%w: nil table", ErrNoANTP)
	}

	c.antp = table
	if c.cache == nil {
		c.cache = newConfigCache(c.cacheEntries)
	} else {
		c.cache.clear()
	}

	return nil
}

// DebugEcho returns the input unchanged.
func (c *Comp) DebugEcho(data uint32) (uint64, error) {
	return uint64(data), nil
}

// ID reports the accelerator configuration.
func (c *Comp) ID() (accel.ID, error) {
	return accel.MakeID(Version,
		uint16(c.cacheEntries),
		uint16(c.numPEs),
		uint16(len(c.tids))), nil
}

// NumTIDs returns the size of the TID space.
func (c *Comp) NumTIDs() int {
	return len(c.tids)
}

// AcceptResponseHandler registers the response handler.
func (c *Comp) AcceptResponseHandler(h accel.ResponseHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler = h
}

// NewRequest binds a free TID to a configuration of the current ASID.
func (c *Comp) NewRequest(req accel.Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if int(req.TID) >= len(c.tids) {
		return fmt.Errorf("%w: %d", ErrInvalidTID, req.TID)
	}

	if !c.asidSet {
		return ErrNoASID
	}

	if c.tids[req.TID] != nil {
		return fmt.Errorf("%w: %d", ErrTIDInUse, req.TID)
	}

	c.tids[req.TID] = &transaction{
		req:  req,
		asid: c.asid,
		regs: make(map[accel.Register]uint32),
	}

	return nil
}

// lookup must be called with the lock held.
func (c *Comp) lookup(tid accel.TID) (*transaction, error) {
	if int(tid) >= len(c.tids) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTID, tid)
	}

	txn := c.tids[tid]
	if txn == nil {
		return nil, fmt.Errorf("%w: %d", ErrNotBound, tid)
	}

	return txn, nil
}

// WriteRegister writes a transaction register.
func (c *Comp) WriteRegister(tid accel.TID, reg accel.Register, value uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	txn, err := c.lookup(tid)
	if err != nil {
		return err
	}

	if txn.started {
		return fmt.Errorf("%w: %d", ErrAlreadyStarted, tid)
	}

	txn.regs[reg] = reg.Truncate(value)

	return nil
}

// WriteData appends inputs. The last flag starts the transaction.
func (c *Comp) WriteData(tid accel.TID, data []accel.Element, last bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	txn, err := c.lookup(tid)
	if err != nil {
		return err
	}

	if txn.started {
		return fmt.Errorf("%w: %d", ErrAlreadyStarted, tid)
	}

	txn.inputs = append(txn.inputs, data...)

	if !last {
		return nil
	}

	return c.start(txn)
}

// WriteTrainData records the expected outputs of a learning transaction.
func (c *Comp) WriteTrainData(tid accel.TID, expected []accel.Element) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	txn, err := c.lookup(tid)
	if err != nil {
		return err
	}

	if txn.started {
		return fmt.Errorf("%w: %d", ErrAlreadyStarted, tid)
	}

	txn.expected = append(txn.expected, expected...)

	return nil
}

// start must be called with the lock held. It dereferences the configuration,
// so garbage entries fail here. When every cache entry is held by another
// transaction, the transaction stalls until a later Tick finds a free entry.
func (c *Comp) start(txn *transaction) error {
	txn.started = true

	if len(txn.inputs) == 0 {
		return c.fail(txn, ErrNoInput)
	}

	if c.antp == nil {
		return c.fail(txn, ErrNoANTP)
	}

	err := c.attachCache(txn)
	switch {
	case errors.Is(err, ErrCacheBusy):
		c.log.Debug("transaction waiting for a cache entry",
			"tid", txn.req.TID,
			"nnid", txn.req.NNID)
	case err != nil:
		return c.fail(txn, err)
	}

	txn.cyclesLeft = c.latency
	c.running = append(c.running, txn.req.TID)
	c.tickLater()

	c.log.Debug("transaction started",
		"tid", txn.req.TID,
		"asid", txn.asid,
		"nnid", txn.req.NNID,
		"inputs", len(txn.inputs))

	return nil
}

// attachCache must be called with the lock held.
func (c *Comp) attachCache(txn *transaction) error {
	key := cacheKey{asid: txn.asid, nnid: txn.req.NNID}

	entry, err := c.cache.acquire(key, func() ([]ant.Word, error) {
		e, err := c.antp.Lookup(key.asid, key.nnid)
		if err != nil {
			return nil, err
		}

		return e.Config.Words()
	})
	if err != nil {
		return err
	}

	txn.cache = entry

	return nil
}

func (c *Comp) fail(txn *transaction, err error) error {
	txn.done = true
	txn.err = err

	c.log.Warn("transaction failed",
		"tid", txn.req.TID,
		"nnid", txn.req.NNID,
		"err", err)

	return err
}

// Query reports the state of a transaction.
func (c *Comp) Query(tid accel.TID) (accel.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	txn, err := c.lookup(tid)
	if err != nil {
		return accel.Status{}, err
	}

	return accel.Status{
		Started: txn.started,
		Done:    txn.done,
		Outputs: len(txn.outputs),
		Err:     txn.err,
	}, nil
}

// ReadOutput copies the outputs that are available.
func (c *Comp) ReadOutput(tid accel.TID, out []accel.Element) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	txn, err := c.lookup(tid)
	if err != nil {
		return 0, err
	}

	return copy(out, txn.outputs), nil
}

// Kill stops a transaction wherever it is and frees its TID.
func (c *Comp) Kill(tid accel.TID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	txn, err := c.lookup(tid)
	if err != nil {
		return err
	}

	c.removeRunning(tid)

	if txn.cache != nil {
		c.cache.releaseEntry(txn.cache)
		txn.cache = nil
	}

	c.tids[tid] = nil
	c.tickLater()

	c.log.Debug("transaction killed", "tid", tid)

	return nil
}

// Release frees the TID of a transaction that is not running.
func (c *Comp) Release(tid accel.TID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	txn, err := c.lookup(tid)
	if err != nil {
		return err
	}

	if txn.started && !txn.done {
		return fmt.Errorf("%w: %d", ErrRunning, tid)
	}

	c.tids[tid] = nil

	return nil
}

func (c *Comp) removeRunning(tid accel.TID) {
	for i, t := range c.running {
		if t == tid {
			c.running = append(c.running[:i], c.running[i+1:]...)
			return
		}
	}
}

// CachedWeights returns a copy of the cached weights of a configuration.
func (c *Comp) CachedWeights(asid ant.ASID, nnid ant.NNID) ([]int32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache == nil {
		return nil, false
	}

	e := c.cache.find(cacheKey{asid: asid, nnid: nnid})
	if e == nil {
		return nil, false
	}

	weights := make([]int32, len(e.weights))
	copy(weights, e.weights)

	return weights, true
}

// NumRunning returns how many transactions are executing or waiting for a
// processing element.
func (c *Comp) NumRunning() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.running)
}
