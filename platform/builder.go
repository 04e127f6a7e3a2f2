package platform

import (
	"fmt"
	"log/slog"

	"github.com/rs/xid"

	"github.com/sarchlab/xfiles/accel/dana"
	"github.com/sarchlab/xfiles/ant"
	"github.com/sarchlab/xfiles/config"
	"github.com/sarchlab/xfiles/datarecording"
	"github.com/sarchlab/xfiles/logging"
	"github.com/sarchlab/xfiles/monitoring"
	"github.com/sarchlab/xfiles/tracing"
	"github.com/sarchlab/xfiles/xfiles"
)

// Builder can be used to build a platform.
type Builder struct {
	cfg       config.Config
	logger    *slog.Logger
	monitorOn bool
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	cfg := config.Default()

	return Builder{
		cfg:       cfg,
		monitorOn: cfg.Monitor,
	}
}

// WithConfig replaces the configuration. Monitoring follows the Monitor
// setting of the configuration.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	b.monitorOn = cfg.Monitor

	return b
}

// WithLogger sets the logger shared by all the components.
func (b Builder) WithLogger(logger *slog.Logger) Builder {
	b.logger = logger
	return b
}

// WithoutMonitoring disables the monitoring server.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithRecording records the trace into path + ".sqlite3".
func (b Builder) WithRecording(path string) Builder {
	b.cfg.Record = path
	return b
}

// Build creates the table, the accelerator and the manager, and connects the
// recorder and the monitor when enabled. The accelerator does not run until
// Start is called.
func (b Builder) Build() (*Platform, error) {
	err := b.cfg.Validate()
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &Platform{
		id:  xid.New().String(),
		cfg: b.cfg,
		log: logging.For(logger, logging.ComponentPlatform),
	}

	p.table, err = ant.NewTable(b.cfg.NumASIDs, b.cfg.ConfigsPerASID)
	if err != nil {
		return nil, err
	}

	p.device = dana.MakeBuilder().
		WithNumTIDs(b.cfg.NumTIDs).
		WithNumPEs(b.cfg.NumPEs).
		WithCacheEntries(b.cfg.CacheEntries).
		WithLatency(b.cfg.Latency).
		WithTickInterval(b.cfg.TickInterval).
		WithLogger(logger).
		Build(logging.ComponentDANA)

	p.manager = xfiles.MakeBuilder().
		WithAccelerator(p.device).
		WithLogger(logger).
		Build(logging.ComponentManager)

	err = p.manager.SetANTP(p.table)
	if err != nil {
		return nil, err
	}

	err = p.manager.SetASID(0)
	if err != nil {
		return nil, err
	}

	p.latencyTracer = tracing.NewAverageTimeTracer(
		tracing.WallClock{}, tracing.KindFilter(xfiles.TaskKind))
	tracing.CollectTrace(p.manager, p.latencyTracer)

	p.stepTracer = tracing.NewStepCountTracer(
		tracing.KindFilter(xfiles.TaskKind))
	tracing.CollectTrace(p.manager, p.stepTracer)
	tracing.CollectTrace(p.manager,
		tracing.NewLogTracer(logging.For(logger, logging.ComponentTrace)))

	if b.cfg.Record != "" {
		err = p.connectRecorder(b.cfg.Record)
		if err != nil {
			return nil, err
		}
	}

	if b.monitorOn {
		p.monitor = monitoring.NewMonitor().
			WithPortNumber(b.cfg.MonitorPort).
			WithLogger(logger)
		p.monitor.RegisterManager(p.manager)
		p.monitor.RegisterComponent(p.device)

		if p.dataRecorder != nil {
			p.traceReader, err = tracing.OpenTrace(b.cfg.Record + ".sqlite3")
			if err != nil {
				return nil, fmt.Errorf("opening trace for the monitor: %w", err)
			}

			p.monitor.RegisterTrace(p.traceReader, p.dataRecorder)
		}

		p.monitorPort = p.monitor.StartServer()
	}

	p.log.Info("platform built",
		"id", p.id,
		"asids", b.cfg.NumASIDs,
		"tids", b.cfg.NumTIDs,
		"pes", b.cfg.NumPEs)

	return p, nil
}

func (p *Platform) connectRecorder(path string) error {
	recorder, err := datarecording.New(path)
	if err != nil {
		return fmt.Errorf("creating trace recorder: %w", err)
	}

	p.dataRecorder = recorder
	p.tracer = tracing.NewDBTracer(tracing.WallClock{}, recorder)

	tracing.CollectTrace(p.manager, p.tracer)
	p.table.AcceptHook(p.tracer)

	return nil
}
