package device

import (
	"github.com/go-logr/logr"

	"github.com/sarchlab/satacmd/fis"
	"github.com/sarchlab/satacmd/sim"
	"github.com/sarchlab/satacmd/stream"
)

// A Builder can build drives.
type Builder struct {
	engine  sim.Engine
	log     logr.Logger
	tx      stream.Sink[fis.Unit]
	rx      stream.Source[fis.Unit]
	sectors uint64
	storage *Storage
	ident   fis.Identify
	latency int
	noise   bool
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		log:     logr.Discard(),
		sectors: 1 << 20,
		latency: 10,
		ident: fis.Identify{
			Serial:   "SATACMD0001",
			Firmware: "1.0",
			Model:    "SATACMD SIMULATED DRIVE",
			LBA48:    true,
		},
	}
}

// WithEngine sets the engine that ticks the drive.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(log logr.Logger) Builder {
	b.log = log
	return b
}

// WithTransport connects the drive to the link. The drive sends on tx and
// receives on rx.
func (b Builder) WithTransport(
	tx stream.Sink[fis.Unit],
	rx stream.Source[fis.Unit],
) Builder {
	b.tx = tx
	b.rx = rx
	return b
}

// WithSectors sets the capacity of a new storage.
func (b Builder) WithSectors(n uint64) Builder {
	b.sectors = n
	return b
}

// WithStorage uses an existing storage.
func (b Builder) WithStorage(s *Storage) Builder {
	b.storage = s
	return b
}

// WithIdentity sets the strings reported by IDENTIFY DEVICE.
func (b Builder) WithIdentity(serial, firmware, model string) Builder {
	b.ident.Serial = serial
	b.ident.Firmware = firmware
	b.ident.Model = model
	return b
}

// WithLatency sets the number of cycles between receiving a command and
// answering it.
func (b Builder) WithLatency(cycles int) Builder {
	b.latency = cycles
	return b
}

// WithNoise makes the drive send a Set Device Bits FIS before every status.
func (b Builder) WithNoise(on bool) Builder {
	b.noise = on
	return b
}

// Build creates a drive and registers it with the engine.
func (b Builder) Build(name string) *Drive {
	if b.engine == nil {
		panic("engine is not set")
	}

	if b.tx == nil || b.rx == nil {
		panic("transport is not set")
	}

	storage := b.storage
	if storage == nil {
		if b.sectors == 0 {
			panic("capacity must be positive")
		}

		storage = NewStorage(b.sectors)
	}

	ident := b.ident
	ident.Sectors = storage.Capacity()

	d := &Drive{
		ComponentBase: sim.NewComponentBase(name),
		log:           b.log.WithName(name),
		tx:            b.tx,
		rx:            b.rx,
		storage:       storage,
		ident:         ident,
		latency:       b.latency,
		noise:         b.noise,
	}

	b.engine.RegisterTicker(d)

	return d
}
