package detect

import (
	"github.com/kwpflash/kwpflash/go/scan"
)

// Signatures of the compiler-generated checksum routines. Wildcards cover
// addresses, counts and indexes that change between firmware revisions.
var (
	// extp #page,#1; mov r4,mem; mov r5,mem; mov r6,r4; cmpb rl4,#count
	mainHead = scan.MustParsePattern("main head", "D7 40 ?? ?? F2 F4 ?? ?? F2 F5 ?? ?? F0 64 47 F8 ?? ??")
	// extp #page,#1; sub r4,mem; subc r5,mem
	mainTail = scan.MustParsePattern("main tail", "D7 40 ?? ?? 22 F4 ?? ?? 32 F5 ?? ??")

	// jmpr cc_nc; shl r12,#4; add r4,r12; addc r5,r0; calls
	multipointSelector = scan.MustParsePattern("multipoint selector", "9D ?? 5C 4C 00 4C 10 50 DA ?? ?? ??")
	// mov r12,#0; jmpr cc_c; calls; add r4,#0x10
	multipointDirect = scan.MustParsePattern("multipoint direct", "E0 0C 8D ?? DA ?? ?? ?? 06 F4 10 00")
	// mov r6..r9,[r4+#0..6]: loads one {start, end} record
	multipointBlock = scan.MustParsePattern("multipoint block routine", "D4 64 00 00 D4 74 02 00 D4 84 04 00 D4 94 06 00")

	// mov r10,#lo; mov r11,#hi; mov r12,r8; shl r12,#2
	rollingSeed = scan.MustParsePattern("rolling seed table", "E6 FA ?? ?? E6 FB ?? ?? F0 C8 5C 2C")
	// mov r4..r7,#start/end; mov r8,#0xffff; calls
	rollingInit = scan.MustParsePattern("rolling init range", "E6 F4 ?? ?? E6 F5 ?? ?? E6 F6 ?? ?? E6 F7 ?? ?? E6 F8 FF FF DA ?? ?? ??")
	// mov r4..r7,#start/end; calls
	rollingRangeM = scan.MustParsePattern("rolling range (M)", "E6 F4 ?? ?? E6 F5 ?? ?? E6 F6 ?? ?? E6 F7 ?? ?? DA ?? ?? ??")
	// mov r12..r15,#start/end; calla
	rollingRangeC = scan.MustParsePattern("rolling range (C)", "E6 FC ?? ?? E6 FD ?? ?? E6 FE ?? ?? E6 FF ?? ?? CA 00 ?? ??")
	// mov r4,#lo; mov r5,#hi; calls
	rollingValue = scan.MustParsePattern("rolling value", "E6 F4 ?? ?? E6 F5 ?? ?? DA ?? ?? ??")

	// mov r4,#lo; mov r5,#hi; add r4,#len; addc r5,#len; calls
	flatRange = scan.MustParsePattern("multi-range range", "E6 F4 ?? ?? E6 F5 ?? ?? 06 F4 ?? ?? 16 F5 ?? ?? DA ?? ?? ??")
	// mov r2,#lo; mov r3,#hi; calls
	flatValue = scan.MustParsePattern("multi-range value", "E6 F2 ?? ?? E6 F3 ?? ?? DA ?? ?? ??")
)

const (
	// how far past the main head its tail may start
	mainTailWindow = 0x100
	// CALLS position relative to the multipoint anchor, per variant
	selectorCallOffset = 0x14
	directCallOffset   = 0x10
	// the multipoint anchor sits this far before the variant signature
	multipointAnchorOffset = 0x0c
	// backward window for the index instructions in front of a rolling range
	indexWindow = 64
	// max gap between consecutive rolling value templates
	valueWindow = 0x20
	// max gap between the last multi-range range and its value
	flatValueWindow = 0x20
)

// uniquePatterns are expected at most once per image.
var uniquePatterns = []struct {
	kind Kind
	p    *scan.Pattern
}{
	{KindMain, mainHead},
	{KindMultipoint, multipointSelector},
	{KindMultipoint, multipointDirect},
	{KindMultipoint, multipointBlock},
	{KindRolling, rollingSeed},
	{KindRolling, rollingInit},
}
