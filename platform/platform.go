// Package platform assembles a complete X-FILES host: the ASID--NNID table,
// a DANA accelerator, the transaction manager and the optional trace
// recorder and monitor.
package platform

import (
	"context"
	"log/slog"
	"time"

	"github.com/sarchlab/xfiles/accel/dana"
	"github.com/sarchlab/xfiles/ant"
	"github.com/sarchlab/xfiles/config"
	"github.com/sarchlab/xfiles/datarecording"
	"github.com/sarchlab/xfiles/monitoring"
	"github.com/sarchlab/xfiles/tracing"
	"github.com/sarchlab/xfiles/xfiles"
)

// A Platform owns every component of one host.
type Platform struct {
	id  string
	cfg config.Config
	log *slog.Logger

	table   *ant.Table
	device  *dana.Comp
	manager *xfiles.Manager

	dataRecorder  datarecording.DataRecorder
	tracer        *tracing.DBTracer
	latencyTracer *tracing.AverageTimeTracer
	stepTracer    *tracing.StepCountTracer
	traceReader   *tracing.TraceReader

	monitor     *monitoring.Monitor
	monitorPort int

	terminated bool
}

// ID returns the unique ID of the platform.
func (p *Platform) ID() string {
	return p.id
}

// Config returns the configuration the platform was built with.
func (p *Platform) Config() config.Config {
	return p.cfg
}

// Table returns the ASID--NNID table.
func (p *Platform) Table() *ant.Table {
	return p.table
}

// Device returns the accelerator.
func (p *Platform) Device() *dana.Comp {
	return p.device
}

// Manager returns the transaction manager.
func (p *Platform) Manager() *xfiles.Manager {
	return p.manager
}

// DataRecorder returns the trace recorder, or nil when not recording.
func (p *Platform) DataRecorder() datarecording.DataRecorder {
	return p.dataRecorder
}

// Monitor returns the monitor, or nil when monitoring is off.
func (p *Platform) Monitor() *monitoring.Monitor {
	return p.monitor
}

// MonitorPort returns the port the monitor listens on.
func (p *Platform) MonitorPort() int {
	return p.monitorPort
}

// AverageLatency returns the average time from request to a terminal state
// and the number of transactions it covers.
func (p *Platform) AverageLatency() (time.Duration, uint64) {
	return p.latencyTracer.AverageTime(), p.latencyTracer.TotalCount()
}

// StepCounts returns how many times each transaction step was reached, in
// the order the steps were first seen.
func (p *Platform) StepCounts() ([]string, []uint64) {
	names := p.stepTracer.StepNames()
	counts := make([]uint64, len(names))

	for i, name := range names {
		counts[i] = p.stepTracer.StepCount(name)
	}

	return names, counts
}

// Start runs the accelerator until ctx is done or Terminate is called.
func (p *Platform) Start(ctx context.Context) {
	p.device.Start(ctx)
}

// Terminate stops the accelerator, writes the trace, shuts the monitor down
// and destroys the table. Calling it twice does nothing.
func (p *Platform) Terminate() {
	if p.terminated {
		return
	}

	p.terminated = true

	p.device.Stop()

	if p.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		err := p.monitor.StopServer(ctx)
		if err != nil {
			p.log.Error("stopping monitor", "err", err)
		}
	}

	if p.tracer != nil {
		p.tracer.Terminate()
	}

	if p.dataRecorder != nil {
		err := p.dataRecorder.Close()
		if err != nil {
			p.log.Error("closing trace recorder", "err", err)
		}
	}

	if p.traceReader != nil {
		_ = p.traceReader.Close()
	}

	p.table.Destroy()
}
