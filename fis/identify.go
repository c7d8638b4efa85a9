package fis

import (
	"fmt"
	"strings"
)

// IdentifyWords is the number of 16-bit words in IDENTIFY DEVICE data.
const IdentifyWords = 256

// IdentifyDwords is the number of Data FIS dwords that carry IDENTIFY DEVICE
// data.
const IdentifyDwords = IdentifyWords / 2

// IDENTIFY DEVICE word offsets.
const (
	idSerialWord     = 10
	idSerialLen      = 10
	idFirmwareWord   = 23
	idFirmwareLen    = 4
	idModelWord      = 27
	idModelLen       = 20
	idCapabilityWord = 49
	idFeatures83Word = 83
	idFeatures86Word = 86
	idLBA48Word      = 100
)

const (
	capLBA        = 1 << 9
	capDMA        = 1 << 8
	feature48Bit  = 1 << 10
	featureValid  = 1 << 14
	featureUnused = 1 << 15
)

// Identify is the subset of IDENTIFY DEVICE data the simulator cares about.
type Identify struct {
	Serial   string
	Firmware string
	Model    string
	LBA48    bool
	Sectors  uint64
}

// Words packs the identify data into the 128 dwords of a Data FIS. ATA word
// 2i goes into the low half of dword i.
func (id Identify) Words() []uint32 {
	words := make([]uint16, IdentifyWords)

	putATAString(words[idSerialWord:idSerialWord+idSerialLen], id.Serial)
	putATAString(words[idFirmwareWord:idFirmwareWord+idFirmwareLen], id.Firmware)
	putATAString(words[idModelWord:idModelWord+idModelLen], id.Model)

	words[idCapabilityWord] = capLBA | capDMA
	words[idFeatures83Word] = featureValid
	if id.LBA48 {
		words[idFeatures83Word] |= feature48Bit
		words[idFeatures86Word] |= feature48Bit
	}

	for i := 0; i < 4; i++ {
		words[idLBA48Word+i] = uint16(id.Sectors >> (16 * i))
	}

	dwords := make([]uint32, IdentifyDwords)
	for i := range dwords {
		dwords[i] = uint32(words[2*i]) | uint32(words[2*i+1])<<16
	}

	return dwords
}

// ParseIdentify decodes the dwords of an IDENTIFY DEVICE Data FIS.
func ParseIdentify(dwords []uint32) (Identify, error) {
	if len(dwords) != IdentifyDwords {
		return Identify{}, fmt.Errorf(
			"fis: identify data has %d dwords, want %d",
			len(dwords), IdentifyDwords)
	}

	words := make([]uint16, IdentifyWords)
	for i, d := range dwords {
		words[2*i] = uint16(d)
		words[2*i+1] = uint16(d >> 16)
	}

	if words[idFeatures83Word]&(featureValid|featureUnused) != featureValid {
		return Identify{}, fmt.Errorf("fis: identify word 83 is not valid")
	}

	id := Identify{
		Serial:   getATAString(words[idSerialWord : idSerialWord+idSerialLen]),
		Firmware: getATAString(words[idFirmwareWord : idFirmwareWord+idFirmwareLen]),
		Model:    getATAString(words[idModelWord : idModelWord+idModelLen]),
		LBA48:    words[idFeatures83Word]&feature48Bit != 0,
	}

	for i := 0; i < 4; i++ {
		id.Sectors |= uint64(words[idLBA48Word+i]) << (16 * i)
	}

	return id, nil
}

// ATA strings are space padded and store the first character of each pair in
// the high byte of the word.
func putATAString(words []uint16, s string) {
	b := []byte(s)
	for i := range words {
		hi, lo := byte(' '), byte(' ')
		if 2*i < len(b) {
			hi = b[2*i]
		}

		if 2*i+1 < len(b) {
			lo = b[2*i+1]
		}

		words[i] = uint16(hi)<<8 | uint16(lo)
	}
}

func getATAString(words []uint16) string {
	b := make([]byte, 0, 2*len(words))
	for _, w := range words {
		b = append(b, byte(w>>8), byte(w))
	}

	return strings.TrimRight(string(b), " \x00")
}
