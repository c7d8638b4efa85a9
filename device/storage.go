package device

import (
	"errors"

	"github.com/sarchlab/satacmd/fis"
)

// ErrOutOfRange is returned when an access touches sectors beyond the
// capacity of the storage.
var ErrOutOfRange = errors.New("access beyond the storage capacity")

// A Storage keeps the sectors of a drive as 32-bit words.
//
// Sectors that are never written take no memory and read as zeros.
type Storage struct {
	capacity uint64
	data     map[uint64][]uint32
}

// NewStorage creates a storage with the given number of sectors.
func NewStorage(sectors uint64) *Storage {
	return &Storage{
		capacity: sectors,
		data:     make(map[uint64][]uint32),
	}
}

// Capacity returns the number of sectors.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

// InRange tells if the sectors [lba, lba+count) exist.
func (s *Storage) InRange(lba, count uint64) bool {
	return lba < s.capacity && count <= s.capacity-lba
}

func (s *Storage) sector(lba uint64) []uint32 {
	sector, ok := s.data[lba]
	if !ok {
		sector = make([]uint32, fis.WordsPerSector)
		s.data[lba] = sector
	}

	return sector
}

// Read returns count sectors starting at lba.
func (s *Storage) Read(lba, count uint64) ([]uint32, error) {
	if !s.InRange(lba, count) {
		return nil, ErrOutOfRange
	}

	res := make([]uint32, 0, count*fis.WordsPerSector)
	for i := uint64(0); i < count; i++ {
		sector, ok := s.data[lba+i]
		if !ok {
			res = append(res, make([]uint32, fis.WordsPerSector)...)
			continue
		}

		res = append(res, sector...)
	}

	return res, nil
}

// Write stores words starting at the first word of lba. A partial last sector
// keeps its remaining words.
func (s *Storage) Write(lba uint64, words []uint32) error {
	sectors := (uint64(len(words)) + fis.WordsPerSector - 1) / fis.WordsPerSector
	if !s.InRange(lba, sectors) {
		return ErrOutOfRange
	}

	for offset := 0; offset < len(words); offset += fis.WordsPerSector {
		end := offset + fis.WordsPerSector
		if end > len(words) {
			end = len(words)
		}

		copy(s.sector(lba+uint64(offset/fis.WordsPerSector)), words[offset:end])
	}

	return nil
}
