package layout

import (
	"sort"

	"github.com/lunixbochs/fvbommel-util/sortorder"
	"github.com/pkg/errors"
)

const (
	kb = 1024
	// ExternalFlashBase is where the external flash chip is mapped.
	ExternalFlashBase = 0x800000
)

func repeat(size uint32, n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = size
	}
	return out
}

func reversed(s []uint32) []uint32 {
	out := make([]uint32, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

func bottomBoot(mainSectors int) []uint32 {
	return append([]uint32{16 * kb, 8 * kb, 8 * kb, 32 * kb}, repeat(64*kb, mainSectors)...)
}

var knownSectors = map[string][]uint32{
	"29F400BB": bottomBoot(7),
	"29F800BB": bottomBoot(15),
	"29F400BT": reversed(bottomBoot(7)),
	"29F800BT": reversed(bottomBoot(15)),
}

// Known returns a fresh copy of a built-in flash layout.
func Known(name string) (*MemoryLayout, error) {
	sectors, ok := knownSectors[name]
	if !ok {
		return nil, errors.Errorf("layout %q not found", name)
	}
	l := &MemoryLayout{
		Name:        name,
		BaseAddress: ExternalFlashBase,
		SectorSizes: append([]uint32(nil), sectors...),
	}
	for _, s := range sectors {
		l.Size += s
	}
	return l, nil
}

// Names lists the built-in layouts in natural order.
func Names() []string {
	names := make([]string, 0, len(knownSectors))
	for name := range knownSectors {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return sortorder.NaturalLess(names[i], names[j]) })
	return names
}

// ForSize picks the first built-in layout covering exactly size bytes.
func ForSize(size uint32) (*MemoryLayout, error) {
	for _, name := range Names() {
		l, _ := Known(name)
		if l.Size == size {
			return l, nil
		}
	}
	return nil, errors.Errorf("no known layout for %#x bytes", size)
}
