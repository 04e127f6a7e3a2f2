// Package config collects the settings of an xfiles platform from .env files
// and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sarchlab/xfiles/accel"
	"github.com/sarchlab/xfiles/logging"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Environment variables read by Load.
const (
	EnvNumASIDs       = "XFILES_NUM_ASIDS"
	EnvConfigsPerASID = "XFILES_CONFIGS_PER_ASID"
	EnvNumTIDs        = "XFILES_NUM_TIDS"
	EnvNumPEs         = "XFILES_NUM_PES"
	EnvCacheEntries   = "XFILES_CACHE_ENTRIES"
	EnvLatency        = "XFILES_LATENCY"
	EnvTickInterval   = "XFILES_TICK_INTERVAL"
	EnvLogLevel       = "XFILES_LOG_LEVEL"
	EnvLogFormat      = "XFILES_LOG_FORMAT"
	EnvRecord         = "XFILES_RECORD"
	EnvMonitor        = "XFILES_MONITOR"
	EnvMonitorPort    = "XFILES_MONITOR_PORT"
)

// Config holds the settings of a platform.
type Config struct {
	NumASIDs       int
	ConfigsPerASID int

	NumTIDs      int
	NumPEs       int
	CacheEntries int
	Latency      int
	TickInterval time.Duration

	// LogLevel is a logging spec such as "info,DANA=debug".
	LogLevel  string
	LogFormat logging.Format

	// Record is the path prefix of the trace database. Empty disables
	// recording.
	Record string

	Monitor     bool
	MonitorPort int
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		NumASIDs:       2,
		ConfigsPerASID: 4,
		NumTIDs:        4,
		NumPEs:         4,
		CacheEntries:   4,
		Latency:        8,
		TickInterval:   time.Microsecond,
		LogLevel:       "info",
		LogFormat:      logging.FormatText,
	}
}

// Load reads the given .env files, then the process environment. Variables
// set to a non-empty value in the environment win over the files.
func Load(envFiles ...string) (Config, error) {
	fileValues := map[string]string{}

	if len(envFiles) > 0 {
		var err error

		fileValues, err = godotenv.Read(envFiles...)
		if err != nil {
			return Config{}, fmt.Errorf("reading env files: %w", err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v := os.Getenv(key); v != "" {
			return v, true
		}

		v, ok := fileValues[key]

		return v, ok
	}

	return parse(lookup)
}

func parse(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	p := parser{lookup: lookup}

	p.int(EnvNumASIDs, &c.NumASIDs)
	p.int(EnvConfigsPerASID, &c.ConfigsPerASID)
	p.int(EnvNumTIDs, &c.NumTIDs)
	p.int(EnvNumPEs, &c.NumPEs)
	p.int(EnvCacheEntries, &c.CacheEntries)
	p.int(EnvLatency, &c.Latency)
	p.duration(EnvTickInterval, &c.TickInterval)
	p.string(EnvLogLevel, &c.LogLevel)
	p.format(EnvLogFormat, &c.LogFormat)
	p.string(EnvRecord, &c.Record)
	p.bool(EnvMonitor, &c.Monitor)
	p.int(EnvMonitorPort, &c.MonitorPort)

	if p.err != nil {
		return Config{}, p.err
	}

	return c, c.Validate()
}

type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) value(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}

	v, ok := p.lookup(key)
	if !ok || v == "" {
		return "", false
	}

	return v, true
}

func (p *parser) fail(key, v string, err error) {
	p.err = fmt.Errorf("%w: %s=%q: %w", ErrInvalid, key, v, err)
}

func (p *parser) int(key string, dst *int) {
	v, ok := p.value(key)
	if !ok {
		return
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}

	*dst = n
}

func (p *parser) bool(key string, dst *bool) {
	v, ok := p.value(key)
	if !ok {
		return
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}

	*dst = b
}

func (p *parser) duration(key string, dst *time.Duration) {
	v, ok := p.value(key)
	if !ok {
		return
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}

	*dst = d
}

func (p *parser) string(key string, dst *string) {
	v, ok := p.value(key)
	if !ok {
		return
	}

	*dst = v
}

func (p *parser) format(key string, dst *logging.Format) {
	v, ok := p.value(key)
	if !ok {
		return
	}

	f, err := logging.ParseFormat(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}

	*dst = f
}

// Validate checks the ranges of the settings.
func (c Config) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"number of ASIDs", c.NumASIDs > 0 && c.NumASIDs <= 1<<16},
		{"configurations per ASID", c.ConfigsPerASID > 0 && c.ConfigsPerASID <= 1<<16},
		{"number of TIDs", c.NumTIDs > 0 && c.NumTIDs <= accel.MaxIDField},
		{"number of PEs", c.NumPEs > 0 && c.NumPEs <= accel.MaxIDField},
		{"cache entries", c.CacheEntries > 0 && c.CacheEntries <= accel.MaxIDField},
		{"latency", c.Latency >= 0},
		{"tick interval", c.TickInterval >= 0},
		{"monitor port", c.MonitorPort >= 0 && c.MonitorPort < 1<<16},
	}

	for _, check := range checks {
		if !check.ok {
			return fmt.Errorf("%w: %s out of range", ErrInvalid, check.name)
		}
	}

	if _, err := logging.ParseSpec(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %w", ErrInvalid, err)
	}

	return nil
}
