package models

import (
	"fmt"
	"strings"
)

const hexLineSize = 16

// HexDump renders mem as 16-byte lines of byte pairs with an ASCII column.
func HexDump(base uint32, mem []byte) []string {
	var out []string
	for i := 0; i < len(mem); i += hexLineSize {
		end := i + hexLineSize
		if end > len(mem) {
			end = len(mem)
		}
		line := mem[i:end]
		var words []string
		for j := 0; j < hexLineSize; j += 2 {
			switch {
			case j+1 < len(line):
				words = append(words, fmt.Sprintf("%02x%02x", line[j], line[j+1]))
			case j < len(line):
				words = append(words, fmt.Sprintf("%02x  ", line[j]))
			default:
				words = append(words, "    ")
			}
		}
		ascii := make([]byte, len(line))
		for j, c := range line {
			if c >= 0x20 && c <= 0x7e {
				ascii[j] = c
			} else {
				ascii[j] = '.'
			}
		}
		out = append(out, fmt.Sprintf("0x%06x: %s [%s]", base+uint32(i), strings.Join(words, " "), ascii))
	}
	return out
}
