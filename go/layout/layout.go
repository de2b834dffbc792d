// Package layout describes flash geometry and maps whole images onto
// device sectors and back.
package layout

import (
	"encoding/xml"
	"fmt"

	"github.com/pkg/errors"

	"github.com/kwpflash/kwpflash/go/models/mem"
)

// MemoryLayout is the sector table of one flash device.
type MemoryLayout struct {
	XMLName     xml.Name `xml:"MemoryLayout"`
	Name        string   `xml:"-"`
	BaseAddress uint32   `xml:"BaseAddress"`
	Size        uint32   `xml:"Size"`
	SectorSizes []uint32 `xml:"SectorSizes>unsignedInt"`

	err *FieldError
}

// FieldError is a validation failure of one layout field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (l *MemoryLayout) String() string {
	name := l.Name
	if name == "" {
		name = "layout"
	}
	return fmt.Sprintf("%s %#x+%#x (%d sectors)", name, l.BaseAddress, l.Size, len(l.SectorSizes))
}

// EndAddress is exclusive.
func (l *MemoryLayout) EndAddress() uint64 {
	return uint64(l.BaseAddress) + uint64(l.Size)
}

// Validate checks the layout invariants. Only the first failing check is
// reported and remembered; see Err and FieldError.
func (l *MemoryLayout) Validate() error {
	l.err = l.check()
	if l.err == nil {
		return nil
	}
	return l.err
}

func (l *MemoryLayout) check() *FieldError {
	if l.BaseAddress%2 != 0 {
		return &FieldError{"BaseAddress", fmt.Sprintf("%#x is not even", l.BaseAddress)}
	}
	if l.Size%2 != 0 {
		return &FieldError{"Size", fmt.Sprintf("%#x is not even", l.Size)}
	}
	if len(l.SectorSizes) == 0 {
		return &FieldError{"SectorSizes", "no sectors"}
	}
	var total uint64
	for i, s := range l.SectorSizes {
		if s%2 != 0 {
			return &FieldError{"SectorSizes", fmt.Sprintf("sector %d size %#x is not even", i, s)}
		}
		total += uint64(s)
	}
	if total != uint64(l.Size) {
		return &FieldError{"SectorSizes", fmt.Sprintf("sectors add up to %#x, not %#x", total, l.Size)}
	}
	return nil
}

// Err returns the error found by the last Validate, if any.
func (l *MemoryLayout) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// FieldError returns the last validation error if it concerns field.
func (l *MemoryLayout) FieldError(field string) error {
	if l.err == nil || l.err.Field != field {
		return nil
	}
	return l.err
}

// SectorStart returns the absolute address of sector i.
func (l *MemoryLayout) SectorStart(i int) uint32 {
	addr := l.BaseAddress
	for _, s := range l.SectorSizes[:i] {
		addr += s
	}
	return addr
}

// SectorIndex finds the sector holding addr.
func (l *MemoryLayout) SectorIndex(addr uint32) (int, bool) {
	if addr < l.BaseAddress {
		return 0, false
	}
	start := uint64(l.BaseAddress)
	for i, s := range l.SectorSizes {
		if uint64(addr) < start+uint64(s) {
			return i, true
		}
		start += uint64(s)
	}
	return 0, false
}

// SplitMemoryImageIntoSectors copies src into one image per sector. The
// layout itself is not validated.
func SplitMemoryImageIntoSectors(src []byte, l *MemoryLayout) ([]*mem.Image, error) {
	var total uint64
	for _, s := range l.SectorSizes {
		total += uint64(s)
	}
	if uint64(len(src)) < total {
		return nil, errors.Errorf("image is %#x bytes, %s needs %#x", len(src), l, total)
	}
	sectors := make([]*mem.Image, 0, len(l.SectorSizes))
	var off uint32
	for _, s := range l.SectorSizes {
		sectors = append(sectors, mem.NewImage(l.BaseAddress+off, append([]byte(nil), src[off:off+s]...)))
		off += s
	}
	return sectors, nil
}

// CombineMemorySectorsIntoImage concatenates sectors in order into a
// single image of l.Size bytes. Bytes not covered by a sector stay erased.
func CombineMemorySectorsIntoImage(sectors [][]byte, l *MemoryLayout) (*mem.Image, error) {
	if len(sectors) < len(l.SectorSizes) {
		return nil, errors.Errorf("%s: sector %d is missing", l, len(sectors))
	}
	img := mem.NewBlankImage(l.BaseAddress, l.Size)
	var off uint64
	for i, s := range sectors {
		if s == nil {
			return nil, errors.Errorf("%s: sector %d is missing", l, i)
		}
		if off+uint64(len(s)) > uint64(l.Size) {
			return nil, errors.Errorf("%s: sector %d ends at %#x, past the end of the layout", l, i, off+uint64(len(s)))
		}
		copy(img.Data[off:], s)
		off += uint64(len(s))
	}
	return img, nil
}
