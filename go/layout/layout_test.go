package layout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kwpflash/kwpflash/go/models/mem"
)

func TestSplitCombine(t *testing.T) {
	l := &MemoryLayout{BaseAddress: 0x1000, Size: 8, SectorSizes: []uint32{4, 4}}
	src := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	sectors, err := SplitMemoryImageIntoSectors(src, l)
	if err != nil {
		t.Fatal(err)
	}
	if len(sectors) != 2 {
		t.Fatalf("got %d sectors", len(sectors))
	}
	if sectors[0].StartAddress != 0x1000 || !bytes.Equal(sectors[0].Data, []byte{0, 1, 2, 3}) {
		t.Fatalf("bad sector 0: %s % x", sectors[0], sectors[0].Data)
	}
	if sectors[1].StartAddress != 0x1004 || !bytes.Equal(sectors[1].Data, []byte{4, 5, 6, 7}) {
		t.Fatalf("bad sector 1: %s % x", sectors[1], sectors[1].Data)
	}
	img, err := CombineMemorySectorsIntoImage([][]byte{sectors[0].Data, sectors[1].Data}, l)
	if err != nil {
		t.Fatal(err)
	}
	if img.StartAddress != 0x1000 || !bytes.Equal(img.Data, src) {
		t.Fatalf("combine mismatch: %s % x", img, img.Data)
	}
}

func TestSplitCopiesSectors(t *testing.T) {
	l := &MemoryLayout{BaseAddress: 0x1000, Size: 8, SectorSizes: []uint32{4, 4}}
	src := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	sectors, err := SplitMemoryImageIntoSectors(src, l)
	if err != nil {
		t.Fatal(err)
	}
	if err := sectors[1].Write(0x1004, []byte{0xee}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(src, []byte{0, 1, 2, 3, 4, 5, 6, 7}) {
		t.Fatalf("sector write leaked into source: % x", src)
	}
	if sectors[1].Data[0] != 0xee {
		t.Fatal("sector write was lost")
	}
}

func TestSplitShortImage(t *testing.T) {
	l := &MemoryLayout{BaseAddress: 0, Size: 8, SectorSizes: []uint32{4, 4}}
	if _, err := SplitMemoryImageIntoSectors(make([]byte, 6), l); err == nil {
		t.Fatal("split of a short image should fail")
	}
}

func TestCombineFailures(t *testing.T) {
	l := &MemoryLayout{BaseAddress: 0, Size: 8, SectorSizes: []uint32{4, 4}}
	if _, err := CombineMemorySectorsIntoImage([][]byte{{1, 2, 3, 4}}, l); err == nil {
		t.Fatal("combine with a missing sector should fail")
	}
	if _, err := CombineMemorySectorsIntoImage([][]byte{{1, 2, 3, 4}, nil}, l); err == nil {
		t.Fatal("combine with a nil sector should fail")
	}
	if _, err := CombineMemorySectorsIntoImage([][]byte{{1, 2, 3, 4}, {5, 6, 7, 8, 9, 10}}, l); err == nil {
		t.Fatal("combine overflowing the layout should fail")
	}
}

func TestCombineShortSectorStaysErased(t *testing.T) {
	l := &MemoryLayout{BaseAddress: 0, Size: 8, SectorSizes: []uint32{4, 4}}
	img, err := CombineMemorySectorsIntoImage([][]byte{{1, 2, 3, 4}, {5, 6}}, l)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(img.Data, []byte{1, 2, 3, 4, 5, 6, 0xff, 0xff}) {
		t.Fatalf("got % x", img.Data)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		l     MemoryLayout
		field string
	}{
		{MemoryLayout{BaseAddress: 0, Size: 8, SectorSizes: []uint32{4, 4}}, ""},
		{MemoryLayout{BaseAddress: 1, Size: 8, SectorSizes: []uint32{8}}, "BaseAddress"},
		{MemoryLayout{BaseAddress: 0, Size: 7, SectorSizes: []uint32{7}}, "Size"},
		{MemoryLayout{BaseAddress: 0, Size: 8}, "SectorSizes"},
		{MemoryLayout{BaseAddress: 0, Size: 8, SectorSizes: []uint32{4, 3}}, "SectorSizes"},
		{MemoryLayout{BaseAddress: 0, Size: 8, SectorSizes: []uint32{4, 2}}, "SectorSizes"},
	}
	for i, test := range tests {
		l := test.l
		err := l.Validate()
		if test.field == "" {
			if err != nil || l.Err() != nil {
				t.Errorf("%d: unexpected error %v", i, err)
			}
			continue
		}
		if err == nil {
			t.Errorf("%d: expected %s error", i, test.field)
			continue
		}
		if l.FieldError(test.field) == nil {
			t.Errorf("%d: expected %s error, got %v", i, test.field, err)
		}
		if l.Err() == nil {
			t.Errorf("%d: Err() lost the error", i)
		}
	}
}

func TestValidateClearsError(t *testing.T) {
	l := &MemoryLayout{BaseAddress: 1, Size: 8, SectorSizes: []uint32{8}}
	if l.Validate() == nil {
		t.Fatal("odd base should fail")
	}
	l.BaseAddress = 0
	if err := l.Validate(); err != nil {
		t.Fatal(err)
	}
	if l.Err() != nil || l.FieldError("BaseAddress") != nil {
		t.Fatal("stale error after a passing Validate")
	}
}

func TestSectorIndex(t *testing.T) {
	l := &MemoryLayout{BaseAddress: 0x1000, Size: 0x30, SectorSizes: []uint32{0x10, 0x20}}
	tests := []struct {
		addr  uint32
		index int
		ok    bool
	}{
		{0xfff, 0, false},
		{0x1000, 0, true},
		{0x100f, 0, true},
		{0x1010, 1, true},
		{0x102f, 1, true},
		{0x1030, 0, false},
	}
	for _, test := range tests {
		i, ok := l.SectorIndex(test.addr)
		if i != test.index || ok != test.ok {
			t.Errorf("SectorIndex(%#x) = %d, %v; want %d, %v", test.addr, i, ok, test.index, test.ok)
		}
	}
	if s := l.SectorStart(1); s != 0x1010 {
		t.Errorf("SectorStart(1) = %#x", s)
	}
}

func TestKnown(t *testing.T) {
	names := Names()
	if len(names) != 4 {
		t.Fatalf("got %v", names)
	}
	for _, name := range names {
		l, err := Known(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := l.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	l, _ := Known("29F800BB")
	if l.Size != 1024*kb || len(l.SectorSizes) != 19 || l.SectorSizes[0] != 16*kb {
		t.Fatalf("bad 29F800BB: %s", l)
	}
	top, _ := Known("29F800BT")
	if top.SectorSizes[0] != 64*kb || top.SectorSizes[18] != 16*kb {
		t.Fatalf("bad 29F800BT: %v", top.SectorSizes)
	}
	// Known must hand out copies
	l.SectorSizes[0] = 2
	again, _ := Known("29F800BB")
	if again.SectorSizes[0] != 16*kb {
		t.Fatal("Known shares its sector table")
	}
	if _, err := Known("nope"); err == nil {
		t.Fatal("unknown layout should fail")
	}
	bySize, err := ForSize(512 * kb)
	if err != nil {
		t.Fatal(err)
	}
	if bySize.Name != "29F400BB" {
		t.Fatalf("ForSize picked %s", bySize.Name)
	}
}

func TestXMLRoundTrip(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8"?>
<MemoryLayout>
  <BaseAddress>8388608</BaseAddress>
  <Size>65536</Size>
  <SectorSizes>
    <unsignedInt>16384</unsignedInt>
    <unsignedInt>16384</unsignedInt>
    <unsignedInt>32768</unsignedInt>
  </SectorSizes>
</MemoryLayout>`
	l, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if l.BaseAddress != 0x800000 || l.Size != 0x10000 || len(l.SectorSizes) != 3 {
		t.Fatalf("bad decode: %s %v", l, l.SectorSizes)
	}
	var buf bytes.Buffer
	if err := l.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	l2, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if l2.BaseAddress != l.BaseAddress || l2.Size != l.Size || len(l2.SectorSizes) != len(l.SectorSizes) {
		t.Fatalf("round trip mismatch: %s", l2)
	}
}

func TestXMLInvalid(t *testing.T) {
	doc := `<MemoryLayout><BaseAddress>1</BaseAddress><Size>8</Size><SectorSizes><unsignedInt>8</unsignedInt></SectorSizes></MemoryLayout>`
	l, err := Decode(strings.NewReader(doc))
	if err == nil {
		t.Fatal("odd base should fail")
	}
	if l == nil || l.FieldError("BaseAddress") == nil {
		t.Fatalf("expected BaseAddress error, got %v", err)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	l := &MemoryLayout{BaseAddress: 0x800000, Size: 0x30, SectorSizes: []uint32{0x10, 0x20}}
	src := make([]byte, 0x30)
	for i := range src {
		src[i] = byte(i * 7)
	}
	sectors, err := SplitMemoryImageIntoSectors(src, l)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteArchive(&buf, l, sectors); err != nil {
		t.Fatal(err)
	}
	l2, img, err := ReadArchive(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if l2.BaseAddress != l.BaseAddress || l2.Size != l.Size || len(l2.SectorSizes) != 2 {
		t.Fatalf("bad layout: %s", l2)
	}
	if img.StartAddress != 0x800000 || !bytes.Equal(img.Data, src) {
		t.Fatal("image mismatch")
	}
}

func TestArchiveBadMagic(t *testing.T) {
	if _, _, err := ReadArchive(bytes.NewReader(make([]byte, 64))); err == nil {
		t.Fatal("zeroed archive should fail")
	}
}

func TestArchiveSectorMismatch(t *testing.T) {
	l := &MemoryLayout{BaseAddress: 0, Size: 8, SectorSizes: []uint32{4, 4}}
	sectors := []*mem.Image{mem.NewImage(0, make([]byte, 4))}
	if err := WriteArchive(&bytes.Buffer{}, l, sectors); err == nil {
		t.Fatal("sector count mismatch should fail")
	}
}
