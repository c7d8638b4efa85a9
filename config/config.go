// Package config loads the settings of the simulator from a dotenv file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sarchlab/satacmd/sim"
)

// DefaultFile is the dotenv file read when no file is given. It is optional.
const DefaultFile = ".env"

// Environment variables.
const (
	EnvFreqMHz       = "SATASIM_FREQ_MHZ"
	EnvMaxCycles     = "SATASIM_MAX_CYCLES"
	EnvTraceDB       = "SATASIM_TRACE_DB"
	EnvMonitorPort   = "SATASIM_MONITOR_PORT"
	EnvDeviceSectors = "SATASIM_DEVICE_SECTORS"
	EnvDeviceLatency = "SATASIM_DEVICE_LATENCY"
	EnvLinkLatency   = "SATASIM_LINK_LATENCY"
)

// Config holds the simulator settings.
type Config struct {
	FreqMHz       float64
	MaxCycles     uint64
	TraceDB       string
	MonitorPort   int
	DeviceSectors uint64
	DeviceLatency int
	LinkLatency   int
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		FreqMHz:       150,
		MaxCycles:     10_000_000,
		DeviceSectors: 1 << 20,
		DeviceLatency: 10,
		LinkLatency:   4,
	}
}

// Freq returns the clock frequency.
func (c Config) Freq() sim.Freq {
	return sim.Freq(c.FreqMHz) * sim.MHz
}

// Validate checks that the settings can build a simulation.
func (c Config) Validate() error {
	var errs []error

	if c.FreqMHz <= 0 {
		errs = append(errs, fmt.Errorf("frequency must be positive, got %v MHz",
			c.FreqMHz))
	}

	if c.DeviceSectors == 0 {
		errs = append(errs, errors.New("device capacity must be positive"))
	}

	if c.DeviceLatency < 0 {
		errs = append(errs, errors.New("device latency must not be negative"))
	}

	if c.LinkLatency < 0 {
		errs = append(errs, errors.New("link latency must not be negative"))
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid monitor port %d", c.MonitorPort))
	}

	return errors.Join(errs...)
}

// Load reads the settings. Values in the dotenv file override the defaults,
// and environment variables override the file. An empty path reads
// DefaultFile if it exists.
func Load(path string) (Config, error) {
	values := map[string]string{}

	file := path
	if file == "" {
		file = DefaultFile
	}

	fileValues, err := godotenv.Read(file)
	switch {
	case err == nil:
		values = fileValues
	case path == "" && errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config %s: %w", file, err)
	}

	for _, key := range []string{
		EnvFreqMHz, EnvMaxCycles, EnvTraceDB, EnvMonitorPort,
		EnvDeviceSectors, EnvDeviceLatency, EnvLinkLatency,
	} {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	cfg := Default()
	if err := cfg.apply(values); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) apply(values map[string]string) error {
	var err error

	for key, v := range values {
		switch key {
		case EnvFreqMHz:
			c.FreqMHz, err = strconv.ParseFloat(v, 64)
		case EnvMaxCycles:
			c.MaxCycles, err = strconv.ParseUint(v, 10, 64)
		case EnvTraceDB:
			c.TraceDB = v
		case EnvMonitorPort:
			c.MonitorPort, err = strconv.Atoi(v)
		case EnvDeviceSectors:
			c.DeviceSectors, err = strconv.ParseUint(v, 0, 64)
		case EnvDeviceLatency:
			c.DeviceLatency, err = strconv.Atoi(v)
		case EnvLinkLatency:
			c.LinkLatency, err = strconv.Atoi(v)
		}

		if err != nil {
			return fmt.Errorf("parse %s=%q: %w", key, v, err)
		}
	}

	return nil
}
