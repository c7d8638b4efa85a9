// Package fis defines the Frame Information Structures exchanged between a
// SATA host and a device, and the ATA command codes the command layer uses.
package fis

import "fmt"

// Type is the FIS type code carried in the first byte of every FIS.
type Type uint8

// FIS types defined by the SATA specification.
const (
	TypeRegH2D           Type = 0x27
	TypeRegD2H           Type = 0x34
	TypeDMAActivateD2H   Type = 0x39
	TypeDMASetup         Type = 0x41
	TypeData             Type = 0x46
	TypeBISTActivate     Type = 0x58
	TypePIOSetupD2H      Type = 0x5F
	TypeSetDeviceBitsD2H Type = 0xA1
)

var typeNames = map[Type]string{
	TypeRegH2D:           "REG_H2D",
	TypeRegD2H:           "REG_D2H",
	TypeDMAActivateD2H:   "DMA_ACTIVATE_D2H",
	TypeDMASetup:         "DMA_SETUP",
	TypeData:             "DATA",
	TypeBISTActivate:     "BIST_ACTIVATE",
	TypePIOSetupD2H:      "PIO_SETUP_D2H",
	TypeSetDeviceBitsD2H: "SET_DEVICE_BITS_D2H",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("UNKNOWN(0x%02x)", uint8(t))
}

// Command is an ATA command register value.
type Command uint8

// ATA commands issued by the command layer.
const (
	CmdReadDMAExt        Command = 0x25
	CmdWriteDMAExt       Command = 0x35
	CmdIdentifyDeviceDMA Command = 0xEE
)

func (c Command) String() string {
	switch c {
	case CmdReadDMAExt:
		return "READ_DMA_EXT"
	case CmdWriteDMAExt:
		return "WRITE_DMA_EXT"
	case CmdIdentifyDeviceDMA:
		return "IDENTIFY_DEVICE_DMA"
	default:
		return fmt.Sprintf("CMD(0x%02x)", uint8(c))
	}
}

// Device register value with the LBA addressing bit and the two obsolete
// always-one bits set.
const DeviceLBA uint8 = 0xE0

// Status register bits reported in a Register D2H FIS.
const (
	StatusERR  uint8 = 0x01
	StatusDRQ  uint8 = 0x08
	StatusDF   uint8 = 0x20
	StatusDRDY uint8 = 0x40
	StatusBSY  uint8 = 0x80
)

// Error register bits.
const (
	ErrorABRT uint8 = 0x04
	ErrorIDNF uint8 = 0x10
)

// Transfer sizes.
const (
	SectorSize     = 512
	WordsPerSector = SectorSize / 4
	MaxLBA         = uint64(1)<<48 - 1
)

// A Unit is one beat on the transport stream. Header fields are meaningful
// for register and DMA activate FISes; Data is meaningful for Data FIS beats.
type Unit struct {
	Type     Type
	C        bool
	Command  Command
	Features uint16
	LBA      uint64
	Device   uint8
	Count    uint16
	ICC      uint8
	Control  uint8
	PMPort   uint8

	// Status and Error are only driven by the device side.
	Status uint8
	Error  uint8

	Data uint32
	SOP  bool
	EOP  bool
}

// StartOfUnit returns the start-of-frame marker.
func (u Unit) StartOfUnit() bool {
	return u.SOP
}

// EndOfUnit returns the end-of-frame marker.
func (u Unit) EndOfUnit() bool {
	return u.EOP
}

func (u Unit) String() string {
	switch u.Type {
	case TypeRegH2D:
		return fmt.Sprintf("%s{c=%t cmd=%s lba=0x%012x count=%d}",
			u.Type, u.C, u.Command, u.LBA, u.Count)
	case TypeRegD2H:
		return fmt.Sprintf("%s{status=0x%02x error=0x%02x}",
			u.Type, u.Status, u.Error)
	case TypeData:
		return fmt.Sprintf("%s{data=0x%08x sop=%t eop=%t}",
			u.Type, u.Data, u.SOP, u.EOP)
	default:
		return u.Type.String()
	}
}

// SplitLBA splits a 48-bit LBA into the six register bytes, low byte first.
func SplitLBA(lba uint64) [6]uint8 {
	var b [6]uint8
	for i := range b {
		b[i] = uint8(lba >> (8 * i))
	}

	return b
}

// JoinLBA is the inverse of SplitLBA.
func JoinLBA(b [6]uint8) uint64 {
	var lba uint64
	for i := range b {
		lba |= uint64(b[i]) << (8 * i)
	}

	return lba
}
