package checksum

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/kwpflash/kwpflash/go/models"
	"github.com/kwpflash/kwpflash/go/models/mem"
)

// MainChecksum sums every range listed in an in-image table of
// {start, end} records and stores {sum, ^sum} at ValuesAddress.
type MainChecksum struct {
	bound

	RangesAddress uint32
	ValuesAddress uint32
	NumRanges     int

	ranges   []AddressRange
	stored   checksumPair
	computed uint32
	updated  bool
}

func (c *MainChecksum) String() string {
	return fmt.Sprintf("main checksum (%d ranges @ %#x, value @ %#x)", c.NumRanges, c.RangesAddress, c.ValuesAddress)
}

// Ranges returns the ranges read from the table by the last LoadChecksum.
func (c *MainChecksum) Ranges() []AddressRange { return c.ranges }

func (c *MainChecksum) Stored() uint32   { return c.stored.Sum }
func (c *MainChecksum) Computed() uint32 { return c.computed }

func (c *MainChecksum) SetMemoryReference(img *mem.Image) error {
	prev := c.img
	c.img = img
	if err := c.LoadChecksum(); err != nil {
		c.img = prev
		return err
	}
	c.updated = false
	return nil
}

func (c *MainChecksum) LoadChecksum() error {
	img, err := c.image()
	if err != nil {
		return err
	}
	if c.NumRanges <= 0 {
		return errors.Errorf("%s: no ranges", c)
	}
	ranges := make([]AddressRange, 0, c.NumRanges)
	for i := 0; i < c.NumRanges; i++ {
		var e rangeEntry
		if err := models.UnpackAt(img, c.RangesAddress+uint32(i)*8, &e); err != nil {
			return errors.Wrapf(err, "%s: range table entry %d", c, i)
		}
		r, err := RangeInclusive(e.Start, e.End)
		if err != nil {
			return errors.Wrapf(err, "%s: range table entry %d", c, i)
		}
		ranges = append(ranges, r)
	}
	stored, err := loadPair(img, c.ValuesAddress)
	if err != nil {
		return errors.Wrapf(err, "%s: value", c)
	}
	c.ranges, c.stored = ranges, stored
	return nil
}

func (c *MainChecksum) compute() (uint32, error) {
	img, err := c.image()
	if err != nil {
		return 0, err
	}
	sum, err := sumRanges(img, c.ranges)
	if err != nil {
		return 0, errors.Wrap(err, c.String())
	}
	return sum, nil
}

func (c *MainChecksum) UpdateChecksum(emit bool) error {
	sum, err := c.compute()
	if err != nil {
		return err
	}
	c.computed, c.updated = sum, true
	if emit {
		c.log("main", c.ValuesAddress).Debugf("computed %#08x", sum)
	}
	return nil
}

func (c *MainChecksum) IsCorrect(emit bool) (bool, error) {
	if err := c.LoadChecksum(); err != nil {
		return false, err
	}
	sum, err := c.compute()
	if err != nil {
		return false, err
	}
	ok := c.stored.matches(sum)
	c.report(emit, "main", c.ValuesAddress, c.stored.Sum, sum, ok)
	return ok, nil
}

func (c *MainChecksum) CommitChecksum() error {
	img, err := c.image()
	if err != nil {
		return err
	}
	if !c.updated {
		return errors.Wrap(errNotUpdated, c.String())
	}
	pair := newPair(c.computed)
	if err := models.PackAt(img, c.ValuesAddress, &pair); err != nil {
		return errors.Wrap(err, c.String())
	}
	c.stored = pair
	return nil
}
