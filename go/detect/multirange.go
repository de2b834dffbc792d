package detect

import (
	"github.com/kwpflash/kwpflash/go/checksum"
	"github.com/kwpflash/kwpflash/go/cpu/c166"
	"github.com/kwpflash/kwpflash/go/scan"
)

// DetectMultiRange finds a standalone multi-range checksum: a run of
// identical range setups followed closely by the value store.
func DetectMultiRange(buf []byte) (*checksum.MultiRangeChecksum, error) {
	first := flatRange.Locate(buf, 0, -1)
	if first == scan.NotFound {
		return nil, failure{KindMultiRange}.missing(flatRange.Name)
	}
	return decodeFlat(buf, first)
}

// decodeFlat decodes the ranges starting at first, each directly following
// the previous one, and the value address after them.
func decodeFlat(buf []byte, first int) (*checksum.MultiRangeChecksum, error) {
	fail := failure{KindMultiRange}
	var ranges []checksum.AddressRange
	off := first
	for ; flatRange.Matches(buf, off); off += flatRange.Len() {
		r, err := decodeFlatRange(buf, off)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	if len(ranges) == 0 {
		return nil, fail.scan("ranges", first, ErrEmpty)
	}
	v := flatValue.Locate(buf, off, off+flatValueWindow)
	if v == scan.NotFound {
		return nil, fail.scan(flatValue.Name, off, ErrPatternNotFound)
	}
	addr, ok := decodeWide(buf, v)
	if !ok {
		return nil, fail.decode("value address", v, ErrDecode)
	}
	return &checksum.MultiRangeChecksum{Ranges: ranges, ValueAddress: addr}, nil
}

// decodeFlatRange reads start from a mov pair and the length from add/addc.
func decodeFlatRange(buf []byte, off int) (checksum.AddressRange, error) {
	fail := failure{KindMultiRange}
	start, ok := decodeWide(buf, off)
	if !ok {
		return checksum.AddressRange{}, fail.decode("range start", off, ErrDecode)
	}
	add, ok := c166.DecodeAdd(buf, off+8)
	if !ok {
		return checksum.AddressRange{}, fail.decode("range length", off+8, ErrDecode)
	}
	addc, ok := c166.DecodeAddWithCarry(buf, off+8+add.Size)
	if !ok {
		return checksum.AddressRange{}, fail.decode("range length", off+8+add.Size, ErrDecode)
	}
	n := c166.WideAddress(add.Op2, addc.Op2)
	if n == 0 {
		return checksum.AddressRange{}, fail.decode("range length", off+8, ErrEmpty)
	}
	return checksum.AddressRange{StartAddress: start, NumBytes: n}, nil
}

// decodeWide decodes two consecutive 4-byte moves holding the low and high
// words of a 32-bit address.
func decodeWide(buf []byte, off int) (uint32, bool) {
	lo, ok := c166.DecodeMove(buf, off)
	if !ok || lo.Size != 4 {
		return 0, false
	}
	hi, ok := c166.DecodeMove(buf, off+4)
	if !ok || hi.Size != 4 {
		return 0, false
	}
	return c166.WideAddress(lo.Op2, hi.Op2), true
}
