// Package loader reads firmware images and flash layouts from disk.
package loader

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"

	"github.com/kwpflash/kwpflash/go/layout"
	"github.com/kwpflash/kwpflash/go/models/mem"
)

var EmptyImage = errors.New("Image file is empty.")

// LoadImage reads a raw binary mapped at base, or a sector archive which
// carries its own base address.
func LoadImage(path string, base uint32) (*mem.Image, error) {
	p, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(p), base)
}

func Load(r io.ReadSeeker, base uint32) (*mem.Image, error) {
	if MatchArchive(r) {
		_, img, err := layout.ReadArchive(r)
		return img, err
	}
	p, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return nil, errors.WithStack(EmptyImage)
	}
	if uint64(base)+uint64(len(p)) > 1<<32 {
		return nil, errors.Errorf("%#x bytes at %#x overflow the address space", len(p), base)
	}
	return mem.NewImage(base, p), nil
}

// SaveImage writes the raw image bytes.
func SaveImage(path string, img *mem.Image) error {
	return errors.WithStack(ioutil.WriteFile(path, img.Data, 0644))
}

// SaveArchive splits img along l and writes it as a sector archive.
func SaveArchive(path string, img *mem.Image, l *layout.MemoryLayout) error {
	if img.StartAddress != l.BaseAddress {
		return errors.Errorf("image starts at %#x, %s at %#x", img.StartAddress, l, l.BaseAddress)
	}
	sectors, err := layout.SplitMemoryImageIntoSectors(img.Data, l)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := layout.WriteArchive(f, l, sectors); err != nil {
		return err
	}
	return f.Close()
}
