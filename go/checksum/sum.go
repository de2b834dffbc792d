// Package checksum computes, verifies and corrects the self-integrity
// checksums stored inside ME7-style C166 firmware images.
package checksum

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/kwpflash/kwpflash/go/models/mem"
)

// SeedTableEntries is the number of 32-bit words in a rolling seed table.
const SeedTableEntries = 256

// AddressRange is one contiguous span of image bytes feeding a checksum.
type AddressRange struct {
	StartAddress uint32
	NumBytes     uint32
}

// RangeInclusive builds a range from a start and an inclusive end address,
// which is how firmware tables store them.
func RangeInclusive(start, end uint32) (AddressRange, error) {
	if end < start {
		return AddressRange{}, errors.Errorf("range end %#x before start %#x", end, start)
	}
	return AddressRange{StartAddress: start, NumBytes: end - start + 1}, nil
}

// LastAddress is the inclusive end of the range.
func (r AddressRange) LastAddress() uint32 {
	return r.StartAddress + r.NumBytes - 1
}

func (r AddressRange) String() string {
	if r.NumBytes == 0 {
		return fmt.Sprintf("%#x+0", r.StartAddress)
	}
	return fmt.Sprintf("%#x-%#x", r.StartAddress, r.LastAddress())
}

// ForRange sums numBytes of img from start as successive width-byte datums
// (1, 2 or 4) into a wrapping 32-bit accumulator.
func ForRange(img *mem.Image, start, numBytes uint32, width int) (uint32, error) {
	switch width {
	case mem.UINT8, mem.UINT16, mem.UINT32:
	default:
		return 0, errors.Errorf("unsupported datum width %d", width)
	}
	if numBytes%uint32(width) != 0 {
		return 0, errors.Errorf("range %#x+%#x is not a multiple of %d bytes", start, numBytes, width)
	}
	p, err := img.View(start, numBytes)
	if err != nil {
		return 0, err
	}
	order := img.ByteOrder()
	var sum uint32
	switch width {
	case mem.UINT8:
		for _, b := range p {
			sum += uint32(b)
		}
	case mem.UINT16:
		for i := 0; i < len(p); i += 2 {
			sum += uint32(order.Uint16(p[i:]))
		}
	case mem.UINT32:
		for i := 0; i < len(p); i += 4 {
			sum += order.Uint32(p[i:])
		}
	}
	return sum, nil
}

// SeedTable is a view of a rolling checksum seed table inside an image.
// Tables placed at the very end of an image may be shorter than 1KiB;
// lookups past the end fail instead of reading outside the image.
type SeedTable struct {
	Address uint32
	data    []byte
	order   binary.ByteOrder
}

// LoadSeedTable maps the seed table at addr. At least one entry must be present.
func LoadSeedTable(img *mem.Image, addr uint32) (*SeedTable, error) {
	size := uint64(SeedTableEntries * 4)
	if rest := img.EndAddress() - uint64(addr); img.Contains(addr) && rest < size {
		size = rest
	}
	p, err := img.View(addr, uint32(size))
	if err != nil {
		return nil, errors.Wrap(err, "seed table")
	}
	if len(p) < 4 {
		return nil, &mem.MemError{Addr: uint64(addr), Size: 4, Enum: mem.MEM_READ_UNMAPPED}
	}
	return &SeedTable{Address: addr, data: p, order: img.ByteOrder()}, nil
}

// word reads the 32-bit seed at byte offset off into the table.
func (s *SeedTable) word(off uint32) (uint32, error) {
	if uint64(off)+4 > uint64(len(s.data)) {
		return 0, &mem.MemError{Addr: uint64(s.Address) + uint64(off), Size: 4, Enum: mem.MEM_READ_UNMAPPED}
	}
	return s.order.Uint32(s.data[off:]), nil
}

// Roll feeds p through the recurrence c = (c >> 8) ^ seed[(b ^ c&0xff) << 2]
// in ascending order. The table index is a byte offset.
func (s *SeedTable) Roll(c uint32, p []byte) (uint32, error) {
	for _, b := range p {
		w, err := s.word((uint32(b) ^ c&0xff) << 2)
		if err != nil {
			return 0, err
		}
		c = (c >> 8) ^ w
	}
	return c, nil
}

// RollingForRange continues the rolling checksum initial over numBytes of img from start.
func RollingForRange(img *mem.Image, seedTable, start, numBytes, initial uint32) (uint32, error) {
	table, err := LoadSeedTable(img, seedTable)
	if err != nil {
		return 0, err
	}
	p, err := img.View(start, numBytes)
	if err != nil {
		return 0, err
	}
	return table.Roll(initial, p)
}
