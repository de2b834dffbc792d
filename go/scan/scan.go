// Package scan finds code in raw firmware: masked byte signatures and
// instruction-level searches built on the C166 decoder.
package scan

import (
	"github.com/kwpflash/kwpflash/go/cpu/c166"
)

// NotFound is returned by every search that comes up empty.
const NotFound = -1

// Step is the instruction alignment used by all code searches.
const Step = 2

// LocatePattern returns the first offset x in [start, end) stepping by step where
// (buf[x+y] ^ pattern[y]) & mask[y] == 0 for every y. A negative end scans to the
// end of buf. Start is rounded up to a multiple of step. Mismatched pattern and
// mask lengths never match.
func LocatePattern(buf []byte, start, end int, pattern, mask []byte, step int) int {
	if len(pattern) != len(mask) || len(pattern) == 0 || step <= 0 {
		return NotFound
	}
	if start < 0 {
		start = 0
	}
	if r := start % step; r != 0 {
		start += step - r
	}
	last := len(buf) - len(pattern)
	if end >= 0 && end-1 < last {
		last = end - 1
	}
	for x := start; x <= last; x += step {
		if matchAt(buf, x, pattern, mask) {
			return x
		}
	}
	return NotFound
}

func matchAt(buf []byte, x int, pattern, mask []byte) bool {
	for y := range pattern {
		if (buf[x+y]^pattern[y])&mask[y] != 0 {
			return false
		}
	}
	return true
}

// FindNextInstruction decodes forward from start until an instruction with
// mnemonic m is found. Undecodable words are skipped two bytes at a time.
func FindNextInstruction(buf []byte, start int, m c166.Mnemonic) int {
	return FindNextInstructionWithin(buf, start, len(buf), m)
}

// FindNextInstructionWithin is FindNextInstruction limited to instructions starting before end.
func FindNextInstructionWithin(buf []byte, start, end int, m c166.Mnemonic) int {
	if start < 0 {
		return NotFound
	}
	if end > len(buf) {
		end = len(buf)
	}
	for off := start; off < end; {
		name, size, ok := c166.DecodeOpcode(buf, off)
		if !ok {
			off += Step
			continue
		}
		if name == m {
			return off
		}
		off += size
	}
	return NotFound
}

// DecodeSequence decodes seq contiguously from off and returns the offset just past it.
func DecodeSequence(buf []byte, off int, seq []c166.Mnemonic) (int, bool) {
	for _, want := range seq {
		name, size, ok := c166.DecodeOpcode(buf, off)
		if !ok || name != want {
			return 0, false
		}
		off += size
	}
	return off, true
}

// FindPrevInstructionSequenceStart walks backward from start to bound in Step
// increments and returns the first offset at which all of seq decodes
// contiguously. Arbitrary data decodes surprisingly often, so callers keep the
// window small and anchor it on a pattern match.
func FindPrevInstructionSequenceStart(buf []byte, start, bound int, seq []c166.Mnemonic) int {
	if len(seq) == 0 {
		return NotFound
	}
	if bound < 0 {
		bound = 0
	}
	for off := start; off >= bound; off -= Step {
		if _, ok := DecodeSequence(buf, off, seq); ok {
			return off
		}
	}
	return NotFound
}
