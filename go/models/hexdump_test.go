package models

import (
	"strings"
	"testing"
)

func TestHexDump(t *testing.T) {
	mem := []byte("0123456789abcdefXYZ")
	lines := HexDump(0x800000, mem)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, expected 2", len(lines))
	}
	expected := "0x800000: 3031 3233 3435 3637 3839 6162 6364 6566 [0123456789abcdef]"
	if lines[0] != expected {
		t.Fatalf("line 0:\n%s\nexpected:\n%s", lines[0], expected)
	}
	expected = "0x800010: 5859 5a" + strings.Repeat(" ", 33) + "[XYZ]"
	if lines[1] != expected {
		t.Fatalf("line 1:\n%q\nexpected:\n%q", lines[1], expected)
	}
}
