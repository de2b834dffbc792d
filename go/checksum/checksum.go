package checksum

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kwpflash/kwpflash/go/models"
	"github.com/kwpflash/kwpflash/go/models/mem"
)

// Checksum is the contract shared by every checksum kind.
//
// A checksum is bound to one image with SetMemoryReference. LoadChecksum
// reads the stored value(s), UpdateChecksum recomputes them from the image
// contents without writing anything, CommitChecksum writes the computed
// value(s) back and IsCorrect compares a fresh computation with what the
// image currently stores. A failed call leaves the checksum's state as it was.
type Checksum interface {
	fmt.Stringer
	SetMemoryReference(img *mem.Image) error
	LoadChecksum() error
	UpdateChecksum(emit bool) error
	IsCorrect(emit bool) (bool, error)
	CommitChecksum() error
}

// DatumWidth is the read width of the additive checksum routines.
const DatumWidth = mem.UINT16

// checksumPair is how additive checksums are stored: the sum and its complement.
type checksumPair struct {
	Sum        uint32
	Complement uint32
}

func newPair(sum uint32) checksumPair {
	return checksumPair{Sum: sum, Complement: ^sum}
}

func (p checksumPair) matches(sum uint32) bool {
	return p.Sum == sum && p.Complement == ^sum
}

// rangeEntry is one record of the main checksum's range table.
type rangeEntry struct {
	Start uint32
	End   uint32
}

// block is one record of the multipoint checksum table.
type block struct {
	Start      uint32
	End        uint32
	Sum        uint32
	Complement uint32
}

// BlockStride is the size of one multipoint table record.
const BlockStride = 0x10

// bound holds what every checksum kind needs once attached to an image.
type bound struct {
	// Logger receives the messages requested with emit. Defaults to the logrus standard logger.
	Logger logrus.FieldLogger

	img *mem.Image
}

var (
	errUnbound    = errors.New("checksum is not bound to an image")
	errNotUpdated = errors.New("nothing to commit, call UpdateChecksum first")
)

func (b *bound) image() (*mem.Image, error) {
	if b.img == nil {
		return nil, errUnbound
	}
	return b.img, nil
}

func (b *bound) log(name string, addr uint32) logrus.FieldLogger {
	log := b.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return log.WithFields(logrus.Fields{
		"checksum": name,
		"addr":     fmt.Sprintf("%#x", addr),
	})
}

// report logs the outcome of a comparison.
func (b *bound) report(emit bool, name string, addr, stored, computed uint32, ok bool) {
	if !emit {
		return
	}
	log := b.log(name, addr).WithFields(logrus.Fields{
		"stored":   fmt.Sprintf("%#08x", stored),
		"computed": fmt.Sprintf("%#08x", computed),
	})
	if ok {
		log.Info("checksum correct")
	} else {
		log.Warn("checksum incorrect")
	}
}

// sumRanges adds up ranges as 16-bit words.
func sumRanges(img *mem.Image, ranges []AddressRange) (uint32, error) {
	var total uint32
	for _, r := range ranges {
		sum, err := ForRange(img, r.StartAddress, r.NumBytes, DatumWidth)
		if err != nil {
			return 0, errors.Wrapf(err, "range %s", r)
		}
		total += sum
	}
	return total, nil
}

func loadPair(img *mem.Image, addr uint32) (checksumPair, error) {
	var p checksumPair
	err := models.UnpackAt(img, addr, &p)
	return p, err
}
