package detect

import (
	"github.com/kwpflash/kwpflash/go/checksum"
	"github.com/kwpflash/kwpflash/go/cpu/c166"
	"github.com/kwpflash/kwpflash/go/models/mem"
)

// Helpers assembling synthetic firmware around the checksum routines.

const (
	base     = 0x800000
	fwSize   = 0x10000
	rollSub  = 0x800f00
	storeSub = 0x800f10
)

type firmware struct {
	*mem.Image
}

func newFirmware() *firmware {
	return &firmware{mem.NewBlankImage(base, fwSize)}
}

func (f *firmware) code(addr uint32, parts ...[]byte) {
	if err := f.Write(addr, c166.Cat(parts...)); err != nil {
		panic(err)
	}
}

func (f *firmware) words(addr uint32, vals ...uint32) {
	for i, v := range vals {
		if err := f.WriteUint(addr+uint32(i)*4, mem.UINT32, v); err != nil {
			panic(err)
		}
	}
}

func lo16(v uint32) uint16 { return uint16(v) }
func hi16(v uint32) uint16 { return uint16(v >> 16) }

func movWide(rlo, rhi uint8, v uint32) []byte {
	return c166.Cat(c166.MovRegImm(rlo, lo16(v)), c166.MovRegImm(rhi, hi16(v)))
}

func mainRoutine(table, values uint32, n int) []byte {
	valOff := uint16(values & 0x3fff)
	return c166.Cat(
		c166.Extp(uint16(table>>14), 1),
		c166.MovRegMem(4, uint16(table&0x3fff)),
		c166.MovRegMem(5, uint16(table&0x3fff)+2),
		c166.MovRegReg(6, 4),
		c166.CmpbRegImm(8, uint8(2*n)),
		c166.Jmpr(2, 6),
		c166.AddRegImm(4, 8),
		c166.CmpbRegImm(9, 0),
		c166.Jmpr(3, -8),
		c166.Extp(uint16(values>>14), 1),
		c166.SubRegMem(4, valOff),
		[]byte{0x32, 0xf5, byte(valOff + 4), byte((valOff + 4) >> 8)}, // subc r5,mem
		c166.Rets(),
	)
}

var blockRoutine = c166.Cat(
	[]byte{0xd4, 0x64, 0x00, 0x00, 0xd4, 0x74, 0x02, 0x00, 0xd4, 0x84, 0x04, 0x00, 0xd4, 0x94, 0x06, 0x00},
	c166.Rets(),
)

func multipointSelectorCode(table uint32, count uint16, routine uint32) []byte {
	return c166.Cat(
		movWide(4, 5, table),
		c166.CmpRegImm(12, count),
		c166.Jmpr(9, 8),
		[]byte{0x5c, 0x4c}, // shl r12,#4
		[]byte{0x00, 0x4c}, // add r4,r12
		[]byte{0x10, 0x50}, // addc r5,r0
		c166.Calls(routine),
		c166.Rets(),
	)
}

func multipointDirectCode(table uint32, count uint16, routine uint32) []byte {
	return c166.Cat(
		movWide(4, 5, table),
		c166.CmpRegImm(13, count),
		c166.MovRegData4(12, 0),
		c166.Jmpr(8, 2),
		c166.Calls(routine),
		c166.AddRegImm(4, 0x10),
		c166.Rets(),
	)
}

type rollingRange struct {
	index, next uint16
	rng         checksum.AddressRange
	short       bool // cmp r8,#data3
}

func rangeHandler(r rollingRange, cVariant bool) []byte {
	cmp := c166.CmpRegImm(8, r.index)
	if r.short {
		cmp = c166.CmpRegData3(8, uint8(r.index))
	}
	last := r.rng.LastAddress()
	body := c166.Cat(movWide(4, 5, r.rng.StartAddress), movWide(6, 7, last), c166.Calls(rollSub))
	if cVariant {
		body = c166.Cat(movWide(12, 13, r.rng.StartAddress), movWide(14, 15, last), c166.Calla(0x0f00))
	}
	return c166.Cat(cmp, c166.Jmpr(3, 10), c166.MovRegImm(9, r.next), body, c166.Rets())
}

func valueHandler(index uint16, addr uint32) []byte {
	return c166.Cat(c166.CmpRegImm(8, index), c166.Jmpr(3, 6), movWide(4, 5, addr), c166.Calls(storeSub), c166.Rets())
}

func seedSetup(table uint32) []byte {
	return c166.Cat(movWide(10, 11, table), c166.MovRegReg(12, 8), []byte{0x5c, 0x2c}, c166.Rets())
}

func initRange(r checksum.AddressRange) []byte {
	return c166.Cat(movWide(4, 5, r.StartAddress), movWide(6, 7, r.LastAddress()), c166.MovRegImm(8, 0xffff), c166.Calls(rollSub))
}

func flatCode(ranges []checksum.AddressRange, value uint32) []byte {
	var parts [][]byte
	for _, r := range ranges {
		parts = append(parts,
			movWide(4, 5, r.StartAddress),
			c166.AddRegImm(4, lo16(r.NumBytes)),
			c166.AddcRegImm(5, hi16(r.NumBytes)),
			c166.Calls(rollSub),
		)
	}
	parts = append(parts, movWide(2, 3, value), c166.Calls(storeSub), c166.Rets())
	return c166.Cat(parts...)
}

const (
	seedTable = 0x80c000
	valueBase = 0x80d000
)

var (
	testInit   = checksum.AddressRange{StartAddress: 0x800400, NumBytes: 0x10}
	testRanges = []rollingRange{
		{index: 1, next: 2, rng: checksum.AddressRange{StartAddress: 0x800000, NumBytes: 0x100}},
		{index: 2, next: 7, rng: checksum.AddressRange{StartAddress: 0x800100, NumBytes: 0x100}},
		{index: 3, next: 8, rng: checksum.AddressRange{StartAddress: 0x800200, NumBytes: 0x200}, short: true},
	}
	testFlat = []checksum.AddressRange{
		{StartAddress: 0x808000, NumBytes: 0x1000},
		{StartAddress: 0x80a000, NumBytes: 0x2000},
	}
)

// rollingFirmware lays out seed setup, init range, range handlers and
// value stores at 0x801000, with the seed table and values further up.
func rollingFirmware(ranges []rollingRange, cVariant, withFlat bool) *firmware {
	f := newFirmware()
	for i := 0; i < checksum.SeedTableEntries; i++ {
		f.words(seedTable+uint32(i)*4, uint32(i)*0x04c11db7)
	}
	parts := [][]byte{seedSetup(seedTable), initRange(testInit)}
	for _, r := range ranges {
		parts = append(parts, rangeHandler(r, cVariant))
	}
	parts = append(parts, valueHandler(7, valueBase), valueHandler(8, valueBase+4))
	if withFlat {
		parts = append(parts, flatCode(testFlat, valueBase+0x10))
	}
	f.code(0x801000, parts...)
	return f
}
