package models

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// FormatIns renders one "addr: bytes mnemonic operands" line per
// instruction, with the byte column padded to the widest instruction.
func FormatIns(asm []Ins, pad ...int) string {
	var width int
	if len(pad) > 0 {
		width = pad[0]
	}
	for _, insn := range asm {
		if len(insn.Bytes()) > width {
			width = len(insn.Bytes())
		}
	}
	var out []string
	for _, insn := range asm {
		pad := strings.Repeat(" ", (width-len(insn.Bytes()))*2)
		data := pad + hex.EncodeToString(insn.Bytes())
		out = append(out, strings.TrimRight(fmt.Sprintf("0x%x: %s %s %s", insn.Addr(), data, insn.Mnemonic(), insn.OpStr()), " "))
	}
	return strings.Join(out, "\n")
}
