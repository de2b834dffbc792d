package detect

import (
	"github.com/kwpflash/kwpflash/go/checksum"
	"github.com/kwpflash/kwpflash/go/cpu/c166"
	"github.com/kwpflash/kwpflash/go/scan"
)

// Multipoint is the multipoint table plus the image base address it implies.
type Multipoint struct {
	TableAddress uint32
	BaseAddress  uint32
	Blocks       []*checksum.MultipointChecksum
}

// DetectMultipoint finds the multipoint table setup, in either the selector
// or the direct variant, and derives the image base address from the call
// into the block routine.
func DetectMultipoint(buf []byte) (*Multipoint, error) {
	fail := failure{KindMultipoint}
	anchor, callOffset := scan.NotFound, 0
	if m := multipointSelector.Locate(buf, multipointAnchorOffset, -1); m != scan.NotFound {
		anchor, callOffset = m-multipointAnchorOffset, selectorCallOffset
	} else if m := multipointDirect.Locate(buf, multipointAnchorOffset, -1); m != scan.NotFound {
		anchor, callOffset = m-multipointAnchorOffset, directCallOffset
	} else {
		return nil, fail.missing(multipointSelector.Name + " or " + multipointDirect.Name)
	}

	off := anchor
	lo, ok := c166.DecodeMove(buf, off)
	if !ok || lo.Reg != 4 {
		return nil, fail.decode("table address", off, ErrDecode)
	}
	off += lo.Size
	hi, ok := c166.DecodeMove(buf, off)
	if !ok || hi.Reg != 5 {
		return nil, fail.decode("table address", off, ErrDecode)
	}
	off += hi.Size
	count, ok := c166.DecodeCompare(buf, off)
	if !ok {
		return nil, fail.decode("block count", off, ErrDecode)
	}
	call, ok := c166.DecodeCallSegment(buf, anchor+callOffset)
	if !ok {
		return nil, fail.decode("block routine call", anchor+callOffset, ErrDecode)
	}
	target, _ := call.Target(0)

	routine := multipointBlock.Locate(buf, 0, -1)
	if routine == scan.NotFound {
		return nil, fail.missing(multipointBlock.Name)
	}
	if uint32(routine) > target {
		return nil, fail.decode("block routine call", anchor+callOffset, ErrOutOfImage)
	}
	base := target - uint32(routine)
	table := c166.WideAddress(lo.Op2, hi.Op2)
	if table < base || uint64(table)+uint64(count.Op2)*checksum.BlockStride > uint64(base)+uint64(len(buf)) {
		return nil, fail.decode("table address", anchor, ErrOutOfImage)
	}
	if count.Op2 == 0 {
		return nil, fail.decode("block count", anchor+lo.Size+hi.Size, ErrEmpty)
	}

	mp := &Multipoint{TableAddress: table, BaseAddress: base}
	for i := 0; i < int(count.Op2); i++ {
		mp.Blocks = append(mp.Blocks, &checksum.MultipointChecksum{
			BlockIndex: i,
			Address:    table + uint32(i)*checksum.BlockStride,
		})
	}
	return mp, nil
}
