package models

import (
	"strings"

	"github.com/mgutz/ansi"
)

var (
	ColorOK   = ansi.ColorCode("green+b")
	ColorBad  = ansi.ColorCode("red+b")
	ColorWarn = ansi.ColorCode("yellow")
	ColorDim  = ansi.ColorCode("default+d")
)

// Colorize wraps s in color when the config allows it.
func (c *Config) Colorize(s, color string) string {
	if !c.Color || color == "" {
		return s
	}
	return color + s + ansi.Reset
}

// ColorPad left-pads s to pad columns before coloring, so escapes don't skew alignment.
func (c *Config) ColorPad(s, color string, pad int) string {
	length := len(s)
	s = c.Colorize(s, color)
	if length < pad {
		s = strings.Repeat(" ", pad-length) + s
	}
	return s
}

// Verdict renders a checksum state word.
func (c *Config) Verdict(ok bool) string {
	if ok {
		return c.ColorPad("OK", ColorOK, 9)
	}
	return c.ColorPad("INCORRECT", ColorBad, 9)
}
