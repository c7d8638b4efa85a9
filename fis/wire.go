package fis

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/HewlettPackard/structex"
)

// ErrShortFIS is returned when a buffer is too small for the FIS it claims to
// hold.
var ErrShortFIS = errors.New("fis: buffer too short")

// ErrTypeMismatch is returned when decoding a FIS of a different type.
var ErrTypeMismatch = errors.New("fis: type mismatch")

// Register Host to Device, 5 dwords.
type regH2DWire struct {
	FISType   uint8
	PMPort    uint8 `bitfield:"4"`
	Rsvd0     uint8 `bitfield:"3"`
	C         uint8 `bitfield:"1"`
	Command   uint8
	Features0 uint8
	LBA0      uint8
	LBA1      uint8
	LBA2      uint8
	Device    uint8
	LBA3      uint8
	LBA4      uint8
	LBA5      uint8
	Features1 uint8
	Count0    uint8
	Count1    uint8
	ICC       uint8
	Control   uint8
	Rsvd1     uint8
	Rsvd2     uint8
	Rsvd3     uint8
	Rsvd4     uint8
}

// Register Device to Host, 5 dwords.
type regD2HWire struct {
	FISType uint8
	PMPort  uint8 `bitfield:"4"`
	Rsvd0   uint8 `bitfield:"2"`
	I       uint8 `bitfield:"1"`
	Rsvd1   uint8 `bitfield:"1"`
	Status  uint8
	Error   uint8
	LBA0    uint8
	LBA1    uint8
	LBA2    uint8
	Device  uint8
	LBA3    uint8
	LBA4    uint8
	LBA5    uint8
	Rsvd2   uint8
	Count0  uint8
	Count1  uint8
	Rsvd3   uint8
	Rsvd4   uint8
	Rsvd5   uint8
	Rsvd6   uint8
	Rsvd7   uint8
	Rsvd8   uint8
}

// DMA Activate Device to Host, 1 dword.
type dmaActivateWire struct {
	FISType uint8
	PMPort  uint8 `bitfield:"4"`
	Rsvd0   uint8 `bitfield:"4"`
	Rsvd1   uint8
	Rsvd2   uint8
}

// Wire sizes in bytes.
const (
	RegH2DLen      = 20
	RegD2HLen      = 20
	DMAActivateLen = 4
)

func encode(s interface{}) ([]byte, error) {
	buf := structex.NewBuffer(s)
	if buf == nil {
		return nil, fmt.Errorf("fis: cannot allocate buffer for %T", s)
	}

	if err := structex.Encode(buf, s); err != nil {
		return nil, fmt.Errorf("fis: encode %T: %w", s, err)
	}

	return buf.Bytes(), nil
}

func decode(b []byte, want Type, size int, s interface{}) error {
	if len(b) < size {
		return fmt.Errorf("%w: %s needs %d bytes, got %d",
			ErrShortFIS, want, size, len(b))
	}

	if Type(b[0]) != want {
		return fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, want, Type(b[0]))
	}

	if err := structex.DecodeByteBuffer(bytes.NewBuffer(b[:size]), s); err != nil {
		return fmt.Errorf("fis: decode %s: %w", want, err)
	}

	return nil
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}

	return 0
}

// Encode serializes the header of a register or DMA activate unit into its
// wire layout. Data beats have no standalone layout and are rejected.
func Encode(u Unit) ([]byte, error) {
	switch u.Type {
	case TypeRegH2D:
		return EncodeRegH2D(u)
	case TypeRegD2H:
		return EncodeRegD2H(u)
	case TypeDMAActivateD2H:
		return EncodeDMAActivate(u)
	default:
		return nil, fmt.Errorf("fis: no wire layout for %s", u.Type)
	}
}

// PeekType returns the type of the FIS at the start of b.
func PeekType(b []byte) (Type, error) {
	if len(b) == 0 {
		return 0, ErrShortFIS
	}

	return Type(b[0]), nil
}

// EncodeRegH2D serializes a Register Host to Device FIS.
func EncodeRegH2D(u Unit) ([]byte, error) {
	lba := SplitLBA(u.LBA)
	w := regH2DWire{
		FISType:   uint8(TypeRegH2D),
		PMPort:    u.PMPort & 0xF,
		C:         boolBit(u.C),
		Command:   uint8(u.Command),
		Features0: uint8(u.Features),
		LBA0:      lba[0],
		LBA1:      lba[1],
		LBA2:      lba[2],
		Device:    u.Device,
		LBA3:      lba[3],
		LBA4:      lba[4],
		LBA5:      lba[5],
		Features1: uint8(u.Features >> 8),
		Count0:    uint8(u.Count),
		Count1:    uint8(u.Count >> 8),
		ICC:       u.ICC,
		Control:   u.Control,
	}

	return encode(&w)
}

// DecodeRegH2D parses a Register Host to Device FIS into a single-beat unit.
func DecodeRegH2D(b []byte) (Unit, error) {
	w := regH2DWire{}
	if err := decode(b, TypeRegH2D, RegH2DLen, &w); err != nil {
		return Unit{}, err
	}

	return Unit{
		Type:     TypeRegH2D,
		C:        w.C == 1,
		Command:  Command(w.Command),
		Features: uint16(w.Features0) | uint16(w.Features1)<<8,
		LBA: JoinLBA([6]uint8{
			w.LBA0, w.LBA1, w.LBA2, w.LBA3, w.LBA4, w.LBA5}),
		Device:  w.Device,
		Count:   uint16(w.Count0) | uint16(w.Count1)<<8,
		ICC:     w.ICC,
		Control: w.Control,
		PMPort:  w.PMPort,
		SOP:     true,
		EOP:     true,
	}, nil
}

// EncodeRegD2H serializes a Register Device to Host FIS. The interrupt bit is
// always set.
func EncodeRegD2H(u Unit) ([]byte, error) {
	lba := SplitLBA(u.LBA)
	w := regD2HWire{
		FISType: uint8(TypeRegD2H),
		PMPort:  u.PMPort & 0xF,
		I:       1,
		Status:  u.Status,
		Error:   u.Error,
		LBA0:    lba[0],
		LBA1:    lba[1],
		LBA2:    lba[2],
		Device:  u.Device,
		LBA3:    lba[3],
		LBA4:    lba[4],
		LBA5:    lba[5],
		Count0:  uint8(u.Count),
		Count1:  uint8(u.Count >> 8),
	}

	return encode(&w)
}

// DecodeRegD2H parses a Register Device to Host FIS.
func DecodeRegD2H(b []byte) (Unit, error) {
	w := regD2HWire{}
	if err := decode(b, TypeRegD2H, RegD2HLen, &w); err != nil {
		return Unit{}, err
	}

	return Unit{
		Type:   TypeRegD2H,
		Status: w.Status,
		Error:  w.Error,
		LBA: JoinLBA([6]uint8{
			w.LBA0, w.LBA1, w.LBA2, w.LBA3, w.LBA4, w.LBA5}),
		Device: w.Device,
		Count:  uint16(w.Count0) | uint16(w.Count1)<<8,
		PMPort: w.PMPort,
		SOP:    true,
		EOP:    true,
	}, nil
}

// EncodeDMAActivate serializes a DMA Activate FIS.
func EncodeDMAActivate(u Unit) ([]byte, error) {
	w := dmaActivateWire{
		FISType: uint8(TypeDMAActivateD2H),
		PMPort:  u.PMPort & 0xF,
	}

	return encode(&w)
}

// DecodeDMAActivate parses a DMA Activate FIS.
func DecodeDMAActivate(b []byte) (Unit, error) {
	w := dmaActivateWire{}
	if err := decode(b, TypeDMAActivateD2H, DMAActivateLen, &w); err != nil {
		return Unit{}, err
	}

	return Unit{
		Type:   TypeDMAActivateD2H,
		PMPort: w.PMPort,
		SOP:    true,
		EOP:    true,
	}, nil
}
