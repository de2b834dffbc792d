package scan

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Pattern is a byte signature with a per-byte mask. Mask bytes of 0x00 are wildcards.
type Pattern struct {
	Name string
	Data []byte
	Mask []byte
}

// ParsePattern reads a signature written as hex bytes separated by spaces,
// with "??" for a wildcard byte: "E6 F4 ?? ?? DA".
func ParsePattern(name, sig string) (*Pattern, error) {
	p := &Pattern{Name: name}
	for _, tok := range strings.Fields(sig) {
		if tok == "??" {
			p.Data = append(p.Data, 0)
			p.Mask = append(p.Mask, 0)
			continue
		}
		b, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "pattern %s: bad byte %q", name, tok)
		}
		p.Data = append(p.Data, byte(b))
		p.Mask = append(p.Mask, 0xff)
	}
	if len(p.Data) == 0 {
		return nil, errors.Errorf("pattern %s: empty signature", name)
	}
	return p, nil
}

// MustParsePattern is ParsePattern for package-level signature tables.
func MustParsePattern(name, sig string) *Pattern {
	p, err := ParsePattern(name, sig)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) Len() int {
	return len(p.Data)
}

// Locate finds p in buf[start:end] at instruction alignment. A negative end is unbounded.
func (p *Pattern) Locate(buf []byte, start, end int) int {
	return LocatePattern(buf, start, end, p.Data, p.Mask, Step)
}

// LocateAll returns every aligned match of p in buf.
func (p *Pattern) LocateAll(buf []byte) []int {
	var out []int
	for off := 0; ; off += Step {
		off = p.Locate(buf, off, -1)
		if off == NotFound {
			return out
		}
		out = append(out, off)
	}
}

// Matches reports whether p matches at exactly off.
func (p *Pattern) Matches(buf []byte, off int) bool {
	return off >= 0 && off%Step == 0 && p.Locate(buf, off, off+1) == off
}

// String renders p the way ParsePattern reads it.
func (p *Pattern) String() string {
	parts := make([]string, len(p.Data))
	for i, b := range p.Data {
		if p.Mask[i] == 0 {
			parts[i] = "??"
		} else {
			parts[i] = strings.ToUpper(strconv.FormatUint(uint64(b)|0x100, 16)[1:])
		}
	}
	return strings.Join(parts, " ")
}
