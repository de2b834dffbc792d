package checksum

import (
	"encoding/binary"
	"io/ioutil"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kwpflash/kwpflash/go/models/mem"
)

const base = 0x800000

func quiet() logrus.FieldLogger {
	log := logrus.New()
	log.Out = ioutil.Discard
	return log
}

func put32(img *mem.Image, addr uint32, vals ...uint32) {
	for i, v := range vals {
		if err := img.WriteUint(addr+uint32(i)*4, mem.UINT32, v); err != nil {
			panic(err)
		}
	}
}

func testImage() *mem.Image {
	img := mem.NewBlankImage(base, 0x2000)
	for i := 0; i < 0x400; i++ {
		img.Data[i] = byte(i * 7)
	}
	return img
}

func TestForRangeBytes(t *testing.T) {
	img := mem.NewImage(0x1000, []byte{0x01, 0x02, 0x03, 0x04})
	sum, err := ForRange(img, 0x1000, 4, mem.UINT8)
	if err != nil {
		t.Fatal(err)
	}
	if sum != 0x0a {
		t.Fatalf("got %#x, expected 0xa", sum)
	}
}

func TestForRangeWords(t *testing.T) {
	img := mem.NewImage(0x1000, []byte{0x01, 0x02, 0x03, 0x04})
	sum, err := ForRange(img, 0x1000, 4, mem.UINT16)
	if err != nil {
		t.Fatal(err)
	}
	if sum != 0x0201+0x0403 {
		t.Fatalf("got %#x", sum)
	}
	sum, err = ForRange(img, 0x1000, 4, mem.UINT32)
	if err != nil || sum != 0x04030201 {
		t.Fatalf("got %#x, %v", sum, err)
	}
	if _, err := ForRange(img, 0x1000, 3, mem.UINT16); err == nil {
		t.Fatal("accepted a partial word")
	}
	if _, err := ForRange(img, 0x1000, 4, 3); err == nil {
		t.Fatal("accepted width 3")
	}
}

func TestForRangeWraps(t *testing.T) {
	img := mem.NewImage(0, []byte{0xff, 0xff, 0xff, 0xff, 0x02, 0x00, 0x00, 0x00})
	sum, err := ForRange(img, 0, 8, mem.UINT32)
	if err != nil {
		t.Fatal(err)
	}
	if sum != 1 {
		t.Fatalf("got %#x, expected wraparound to 1", sum)
	}
}

func TestForRangeOutOfImage(t *testing.T) {
	img := mem.NewImage(0x1000, []byte{1, 2, 3, 4})
	sum, err := ForRange(img, 0x1002, 4, mem.UINT8)
	if err == nil {
		t.Fatal("range past the end succeeded")
	}
	if !mem.IsOutOfRange(err) {
		t.Fatalf("unexpected error %v", err)
	}
	if sum != 0 {
		t.Fatalf("failed sum returned %#x", sum)
	}
	if _, err := ForRange(img, 0xffe, 4, mem.UINT8); !mem.IsOutOfRange(err) {
		t.Fatalf("range before the start: %v", err)
	}
}

func TestRollingZeroSeed(t *testing.T) {
	// 4-entry zero seed table followed by 4 zero bytes
	img := mem.NewImage(0x1000, make([]byte, 20))
	sum, err := RollingForRange(img, 0x1000, 0x1010, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	if sum != 0 {
		t.Fatalf("got %#x, expected 0", sum)
	}
}

func TestRollingRecurrence(t *testing.T) {
	img := mem.NewImage(0x1000, make([]byte, 0x402))
	for i := 0; i < SeedTableEntries; i++ {
		binary.LittleEndian.PutUint32(img.Data[i*4:], uint32(i)*0x01010101)
	}
	img.Data[0x400] = 0x12
	img.Data[0x401] = 0x34
	var c uint32 = 0xdeadbeef
	for _, b := range []byte{0x12, 0x34} {
		idx := uint32(b) ^ c&0xff
		c = (c >> 8) ^ idx*0x01010101
	}
	sum, err := RollingForRange(img, 0x1000, 0x1400, 2, 0xdeadbeef)
	if err != nil {
		t.Fatal(err)
	}
	if sum != c {
		t.Fatalf("got %#x, expected %#x", sum, c)
	}
	// byte order is part of the definition
	img.Data[0x400], img.Data[0x401] = 0x34, 0x12
	if swapped, _ := RollingForRange(img, 0x1000, 0x1400, 2, 0xdeadbeef); swapped == c {
		t.Fatal("reordered bytes produced the same checksum")
	}
}

func TestRollingShortTable(t *testing.T) {
	img := mem.NewImage(0x1000, []byte{0, 0, 0, 0, 0xff, 0x01})
	if _, err := RollingForRange(img, 0x1000, 0x1004, 2, 0); !mem.IsOutOfRange(err) {
		t.Fatalf("lookup past a short table: %v", err)
	}
}

func roundTrip(t *testing.T, c Checksum, img *mem.Image) {
	if err := c.SetMemoryReference(img); err != nil {
		t.Fatal(err)
	}
	if ok, err := c.IsCorrect(true); err != nil || ok {
		t.Fatalf("%s: fresh image reported correct=%v err=%v", c, ok, err)
	}
	if err := c.UpdateChecksum(true); err != nil {
		t.Fatal(err)
	}
	if err := c.CommitChecksum(); err != nil {
		t.Fatal(err)
	}
	if ok, err := c.IsCorrect(true); err != nil || !ok {
		t.Fatalf("%s: committed checksum incorrect=%v err=%v", c, ok, err)
	}
}

func TestMainChecksum(t *testing.T) {
	img := testImage()
	// two ranges, table at 0x801000, value at 0x801100
	put32(img, 0x801000, 0x800000, 0x8000ff, 0x800200, 0x8003ff)
	c := &MainChecksum{RangesAddress: 0x801000, ValuesAddress: 0x801100, NumRanges: 2}
	c.Logger = quiet()
	roundTrip(t, c, img)

	want, _ := ForRange(img, 0x800000, 0x100, 2)
	more, _ := ForRange(img, 0x800200, 0x200, 2)
	if c.Computed() != want+more {
		t.Fatalf("computed %#x, expected %#x", c.Computed(), want+more)
	}
	if v, _ := img.ReadUint(0x801104, 4); v != ^(want + more) {
		t.Fatalf("complement %#x", v)
	}
	if r := c.Ranges(); len(r) != 2 || r[1].NumBytes != 0x200 {
		t.Fatalf("ranges %v", r)
	}

	img.Data[0x10]++
	if ok, err := c.IsCorrect(false); err != nil || ok {
		t.Fatalf("modified image: ok=%v err=%v", ok, err)
	}
}

func TestUpdateIdempotent(t *testing.T) {
	img := testImage()
	put32(img, 0x801000, 0x800000, 0x8003ff)
	c := &MainChecksum{RangesAddress: 0x801000, ValuesAddress: 0x801100, NumRanges: 1}
	c.Logger = quiet()
	if err := c.SetMemoryReference(img); err != nil {
		t.Fatal(err)
	}
	if err := c.UpdateChecksum(false); err != nil {
		t.Fatal(err)
	}
	first := c.Computed()
	if err := c.UpdateChecksum(false); err != nil {
		t.Fatal(err)
	}
	if c.Computed() != first {
		t.Fatalf("second update %#x != %#x", c.Computed(), first)
	}
}

func TestMainChecksumOutOfImage(t *testing.T) {
	img := testImage()
	put32(img, 0x801000, 0x800000, 0x8fffff)
	c := &MainChecksum{RangesAddress: 0x801000, ValuesAddress: 0x801100, NumRanges: 1}
	c.Logger = quiet()
	if err := c.SetMemoryReference(img); err != nil {
		t.Fatal(err)
	}
	if err := c.UpdateChecksum(false); err == nil {
		t.Fatal("update over a truncated image succeeded")
	}
	if err := c.CommitChecksum(); err == nil {
		t.Fatal("commit without a computed value succeeded")
	}
	if ok, err := c.IsCorrect(false); err == nil || ok {
		t.Fatalf("IsCorrect: %v %v", ok, err)
	}
}

func TestMainChecksumBadTable(t *testing.T) {
	c := &MainChecksum{RangesAddress: 0x7ff000, ValuesAddress: 0x801100, NumRanges: 1}
	if err := c.SetMemoryReference(testImage()); err == nil {
		t.Fatal("bound a table outside the image")
	}
	if err := c.LoadChecksum(); err == nil {
		t.Fatal("failed bind left the checksum bound")
	}
}

func TestMultipointChecksum(t *testing.T) {
	img := testImage()
	put32(img, 0x801200, 0x800100, 0x8001ff, 0, 0)
	put32(img, 0x801210, 0x800000, 0x80000f, 0, 0)
	for i := 0; i < 2; i++ {
		c := &MultipointChecksum{BlockIndex: i, Address: 0x801200 + uint32(i)*BlockStride}
		c.Logger = quiet()
		roundTrip(t, c, img)
	}
	if v, _ := img.ReadUint(0x801218, 4); v != 0x0700+0x150e+0x231c+0x312a+0x3f38+0x4d46+0x5b54+0x6962 {
		t.Fatalf("block 1 sum %#x", v)
	}
	if end, _ := img.ReadUint(0x801214, 4); end != 0x80000f {
		t.Fatal("commit overwrote the block range")
	}
}

func TestMultiRangeChecksum(t *testing.T) {
	img := testImage()
	c := &MultiRangeChecksum{
		Ranges:       []AddressRange{{0x800000, 0x40}, {0x800100, 0x80}},
		ValueAddress: 0x801300,
	}
	c.Logger = quiet()
	roundTrip(t, c, img)

	empty := &MultiRangeChecksum{ValueAddress: 0x801300}
	if err := empty.SetMemoryReference(img); err != nil {
		t.Fatal(err)
	}
	if err := empty.UpdateChecksum(false); err == nil {
		t.Fatal("update with no ranges succeeded")
	}
}

func TestRollingChecksums(t *testing.T) {
	img := testImage()
	for i := 0; i < SeedTableEntries; i++ {
		put32(img, 0x801400+uint32(i)*4, uint32(i)*0x04c11db7)
	}
	initRange := AddressRange{0x800000, 0x10}
	c := &RollingChecksums{
		SeedTableAddress: 0x801400,
		InitRange:        &initRange,
		Checksums: []*RollingChecksum{
			{Index: 3, ValueAddress: 0x801800, Ranges: []AddressRange{{0x800100, 0x20}, {0x800040, 0x10}}},
			{Index: 5, ValueAddress: 0x801804, Ranges: []AddressRange{{0x800200, 0x100}}},
		},
	}
	c.Logger = quiet()
	roundTrip(t, c, img)

	seed, _ := RollingForRange(img, 0x801400, 0x800000, 0x10, 0)
	v, _ := RollingForRange(img, 0x801400, 0x800100, 0x20, seed)
	v, _ = RollingForRange(img, 0x801400, 0x800040, 0x10, v)
	if got, _ := img.ReadUint(0x801800, 4); got != v {
		t.Fatalf("chain 3 stored %#x, expected %#x", got, v)
	}

	// one bad chain fails the set
	img.Data[0x210] ^= 0xff
	if ok, err := c.IsCorrect(false); err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestRollingCommitOutOfImage(t *testing.T) {
	img := testImage()
	c := &RollingChecksums{
		SeedTableAddress: 0x801400,
		Checksums: []*RollingChecksum{
			{Index: 1, ValueAddress: 0x801800, Ranges: []AddressRange{{0x800000, 4}}},
		},
	}
	if err := c.SetMemoryReference(img); err != nil {
		t.Fatal(err)
	}
	if err := c.UpdateChecksum(false); err != nil {
		t.Fatal(err)
	}
	c.Checksums = append(c.Checksums, &RollingChecksum{Index: 2, ValueAddress: 0x900000})
	before := img.Clone()
	if err := c.CommitChecksum(); err == nil {
		t.Fatal("commit outside the image succeeded")
	}
	if string(before.Data) != string(img.Data) {
		t.Fatal("failed commit modified the image")
	}
}

func TestReport(t *testing.T) {
	img := testImage()
	put32(img, 0x801000, 0x800000, 0x8000ff)
	good := &MultiRangeChecksum{Ranges: []AddressRange{{0x800000, 0x10}}, ValueAddress: 0x801300}
	bad := &MainChecksum{RangesAddress: 0x801000, ValuesAddress: 0x801100, NumRanges: 1}
	broken := &MultiRangeChecksum{Ranges: []AddressRange{{0x900000, 0x10}}, ValueAddress: 0x801308}
	for _, c := range []Checksum{good, bad, broken} {
		if err := c.SetMemoryReference(img); err != nil {
			t.Fatal(err)
		}
	}
	good.Logger, bad.Logger, broken.Logger = quiet(), quiet(), quiet()
	good.UpdateChecksum(false)
	good.CommitChecksum()

	list := []Checksum{good, bad, broken}
	r := VerifyAll(list, false)
	if r.Correct != 1 || r.Incorrect != 1 || r.Failed != 1 || len(r.Errors) != 1 {
		t.Fatalf("verify: %s", &r)
	}
	r = CorrectAll(list, false)
	if r.Correct != 1 || r.Corrected != 1 || r.Failed != 1 || r.OK() {
		t.Fatalf("correct: %s", &r)
	}
	if r = VerifyAll(list[:2], false); !r.OK() || r.Correct != 2 {
		t.Fatalf("after correct: %s", &r)
	}
	r.AddFailure(errors.New("table outside image"))
	if r.OK() || r.Failed != 1 || len(r.Errors) != 1 {
		t.Fatalf("after AddFailure: %s", &r)
	}
}

func BenchmarkForRange(b *testing.B) {
	img := mem.NewBlankImage(base, 0x10000)
	b.SetBytes(0x10000)
	for i := 0; i < b.N; i++ {
		ForRange(img, base, 0x10000, mem.UINT16)
	}
}
