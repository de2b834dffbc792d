package detect

import (
	"github.com/kwpflash/kwpflash/go/checksum"
	"github.com/kwpflash/kwpflash/go/cpu/c166"
	"github.com/kwpflash/kwpflash/go/scan"
)

// DetectMain finds the main checksum routine and reads the range table
// and value addresses out of its instructions.
func DetectMain(buf []byte) (*checksum.MainChecksum, error) {
	fail := failure{KindMain}
	head := mainHead.Locate(buf, 0, -1)
	if head == scan.NotFound {
		return nil, fail.missing(mainHead.Name)
	}
	tail := mainTail.Locate(buf, head+mainHead.Len(), head+mainTailWindow)
	if tail == scan.NotFound {
		return nil, fail.missing(mainTail.Name)
	}
	end := tail + mainTail.Len()

	off := head
	extp, ok := c166.DecodeExtendPage(buf, off)
	if !ok {
		return nil, fail.decode("range table page", off, ErrDecode)
	}
	off += extp.Size
	lo, ok := c166.DecodeMove(buf, off)
	if !ok {
		return nil, fail.decode("range table address", off, ErrDecode)
	}
	off += lo.Size
	hi, ok := c166.DecodeMove(buf, off)
	if !ok {
		return nil, fail.decode("range table address", off, ErrDecode)
	}
	off += hi.Size

	off = scan.FindNextInstructionWithin(buf, off, end, c166.CMPB)
	if off == scan.NotFound {
		return nil, fail.decode("range count", head, ErrDecode)
	}
	count, _ := c166.DecodeCompareByte(buf, off)
	off += count.Size
	off = scan.FindNextInstructionWithin(buf, off, end, c166.CMPB)
	if off == scan.NotFound {
		return nil, fail.decode("loop compare", head, ErrDecode)
	}
	cmp, _ := c166.DecodeCompareByte(buf, off)
	off += cmp.Size
	off = scan.FindNextInstructionWithin(buf, off, end, c166.EXTP)
	if off == scan.NotFound {
		return nil, fail.decode("value page", head, ErrDecode)
	}
	valuePage, _ := c166.DecodeExtendPage(buf, off)
	off += valuePage.Size
	sub, ok := c166.DecodeSubtract(buf, off)
	if !ok {
		return nil, fail.decode("value address", off, ErrDecode)
	}

	n := int(count.Op2) / 2
	if n == 0 {
		return nil, fail.decode("range count", head, ErrEmpty)
	}
	return &checksum.MainChecksum{
		RangesAddress: c166.PageAddress(extp.Op1, lo.Op2),
		ValuesAddress: c166.PageAddress(valuePage.Op1, sub.Op2),
		NumRanges:     n,
	}, nil
}
