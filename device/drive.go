// Package device provides a simulated SATA drive that answers the commands
// issued by the command layer.
package device

import (
	"github.com/go-logr/logr"

	"github.com/sarchlab/satacmd/fis"
	"github.com/sarchlab/satacmd/sim"
	"github.com/sarchlab/satacmd/stream"
	"github.com/sarchlab/satacmd/tracing"
)

type driveState int

const (
	driveIdle driveState = iota
	driveExecuting
	driveReceiving
	driveSending
)

// Stats counts what the drive has done.
type Stats struct {
	Commands       uint64
	Errors         uint64
	SectorsRead    uint64
	SectorsWritten uint64
	Unexpected     uint64
}

// Drive is a simulated SATA drive. It executes one command at a time: after
// a fixed latency it answers with the FIS sequence of the command and ends
// with a status FIS.
type Drive struct {
	*sim.ComponentBase

	log     logr.Logger
	tx      stream.Sink[fis.Unit]
	rx      stream.Source[fis.Unit]
	storage *Storage
	ident   fis.Identify
	latency int
	noise   bool

	state     driveState
	shadow    []byte
	countdown int
	outbox    []fis.Unit
	afterSend driveState
	received  []uint32
	taskID    string
	stats     Stats
}

// Storage returns the sectors of the drive.
func (d *Drive) Storage() *Storage {
	return d.storage
}

// Identify returns the identify data the drive reports.
func (d *Drive) Identify() fis.Identify {
	return d.ident
}

// Stats returns the counters of the drive.
func (d *Drive) Stats() Stats {
	return d.stats
}

// Shadow returns the wire image of the last command FIS received.
func (d *Drive) Shadow() []byte {
	return append([]byte(nil), d.shadow...)
}

// Idle tells if the drive has no command in flight.
func (d *Drive) Idle() bool {
	return d.state == driveIdle
}

// Tick advances the drive by one cycle.
func (d *Drive) Tick() bool {
	switch d.state {
	case driveIdle:
		return d.receiveCommand()
	case driveExecuting:
		return d.execute()
	case driveReceiving:
		return d.receiveData()
	case driveSending:
		return d.send()
	default:
		panic("unknown drive state")
	}
}

func (d *Drive) receiveCommand() bool {
	u, ok := d.rx.Peek()
	if !ok {
		return false
	}

	d.rx.Accept()

	if u.Type != fis.TypeRegH2D || !u.C {
		d.stats.Unexpected++
		d.log.V(1).Info("ignored unit while idle", "fis", u.String())
		return true
	}

	shadow, err := fis.EncodeRegH2D(u)
	if err != nil {
		panic(err)
	}

	d.shadow = shadow
	d.countdown = d.latency
	d.state = driveExecuting
	d.stats.Commands++
	d.taskID = sim.GetIDGenerator().Generate()

	tracing.StartTask(d.taskID, "", d, "device", u.Command.String(), nil)

	return true
}

func (d *Drive) execute() bool {
	if d.countdown > 0 {
		d.countdown--
		return true
	}

	cmd, err := fis.DecodeRegH2D(d.shadow)
	if err != nil {
		panic(err)
	}

	d.log.V(1).Info("executing command",
		"command", cmd.Command.String(), "lba", cmd.LBA, "count", cmd.Count)

	switch cmd.Command {
	case fis.CmdWriteDMAExt:
		d.startWrite(cmd)
	case fis.CmdReadDMAExt:
		d.startRead(cmd)
	case fis.CmdIdentifyDeviceDMA:
		d.queueData(d.ident.Words())
		d.queueStatus(fis.StatusDRDY, 0)
	default:
		d.queueStatus(fis.StatusDRDY|fis.StatusERR, fis.ErrorABRT)
	}

	return true
}

// sectorCount decodes the count field, where zero means 65536 sectors.
func sectorCount(cmd fis.Unit) uint64 {
	if cmd.Count == 0 {
		return 1 << 16
	}

	return uint64(cmd.Count)
}

func (d *Drive) startWrite(cmd fis.Unit) {
	if !d.storage.InRange(cmd.LBA, sectorCount(cmd)) {
		d.queueStatus(fis.StatusDRDY|fis.StatusERR, fis.ErrorIDNF)
		return
	}

	d.received = d.received[:0]
	d.outbox = append(d.outbox,
		fis.Unit{Type: fis.TypeDMAActivateD2H, SOP: true, EOP: true})
	d.state = driveSending
	d.afterSend = driveReceiving
}

func (d *Drive) startRead(cmd fis.Unit) {
	count := sectorCount(cmd)

	words, err := d.storage.Read(cmd.LBA, count)
	if err != nil {
		d.queueStatus(fis.StatusDRDY|fis.StatusERR, fis.ErrorIDNF)
		return
	}

	d.stats.SectorsRead += count
	d.queueData(words)
	d.queueStatus(fis.StatusDRDY, 0)
}

func (d *Drive) receiveData() bool {
	u, ok := d.rx.Peek()
	if !ok {
		return false
	}

	d.rx.Accept()

	if u.Type != fis.TypeData {
		d.stats.Unexpected++
		d.log.V(1).Info("ignored unit while receiving", "fis", u.String())
		return true
	}

	d.received = append(d.received, u.Data)
	if !u.EOP {
		return true
	}

	cmd, err := fis.DecodeRegH2D(d.shadow)
	if err != nil {
		panic(err)
	}

	if err := d.storage.Write(cmd.LBA, d.received); err != nil {
		d.queueStatus(fis.StatusDRDY|fis.StatusERR, fis.ErrorIDNF)
		return true
	}

	sectors := (uint64(len(d.received)) + fis.WordsPerSector - 1) /
		fis.WordsPerSector
	d.stats.SectorsWritten += sectors
	d.queueStatus(fis.StatusDRDY, 0)

	return true
}

func (d *Drive) queueData(words []uint32) {
	for i, w := range words {
		d.outbox = append(d.outbox, fis.Unit{
			Type: fis.TypeData,
			Data: w,
			SOP:  i == 0,
			EOP:  i == len(words)-1,
		})
	}
}

func (d *Drive) queueStatus(status, errBits uint8) {
	if status&fis.StatusERR != 0 {
		d.stats.Errors++
	}

	if d.noise {
		d.outbox = append(d.outbox, fis.Unit{
			Type: fis.TypeSetDeviceBitsD2H,
			SOP:  true,
			EOP:  true,
		})
	}

	d.outbox = append(d.outbox, fis.Unit{
		Type:   fis.TypeRegD2H,
		Status: status,
		Error:  errBits,
		Device: fis.DeviceLBA,
		SOP:    true,
		EOP:    true,
	})
	d.state = driveSending
	d.afterSend = driveIdle
}

func (d *Drive) send() bool {
	if len(d.outbox) == 0 {
		d.finishSending()
		return true
	}

	if !d.tx.Ready() {
		return false
	}

	d.tx.Push(d.outbox[0])
	d.outbox = d.outbox[1:]

	if len(d.outbox) == 0 {
		d.finishSending()
	}

	return true
}

func (d *Drive) finishSending() {
	d.state = d.afterSend

	if d.state == driveIdle {
		tracing.EndTask(d.taskID, d)
		d.taskID = ""
	}
}
