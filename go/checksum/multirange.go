package checksum

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/kwpflash/kwpflash/go/models/mem"
)

// MultiRangeChecksum sums a fixed list of ranges decoded from code rather
// than read from a table, and stores {sum, ^sum} at ValueAddress.
type MultiRangeChecksum struct {
	bound

	Ranges       []AddressRange
	ValueAddress uint32

	stored   checksumPair
	computed uint32
	updated  bool
}

func (c *MultiRangeChecksum) String() string {
	return fmt.Sprintf("multi-range checksum (%d ranges, value @ %#x)", len(c.Ranges), c.ValueAddress)
}

func (c *MultiRangeChecksum) Stored() uint32   { return c.stored.Sum }
func (c *MultiRangeChecksum) Computed() uint32 { return c.computed }

func (c *MultiRangeChecksum) SetMemoryReference(img *mem.Image) error {
	prev := c.img
	c.img = img
	if err := c.LoadChecksum(); err != nil {
		c.img = prev
		return err
	}
	c.updated = false
	return nil
}

func (c *MultiRangeChecksum) LoadChecksum() error {
	img, err := c.image()
	if err != nil {
		return err
	}
	stored, err := loadPair(img, c.ValueAddress)
	if err != nil {
		return errors.Wrap(err, c.String())
	}
	c.stored = stored
	return nil
}

func (c *MultiRangeChecksum) compute() (uint32, error) {
	img, err := c.image()
	if err != nil {
		return 0, err
	}
	if len(c.Ranges) == 0 {
		return 0, errors.Errorf("%s: no ranges", c)
	}
	sum, err := sumRanges(img, c.Ranges)
	if err != nil {
		return 0, errors.Wrap(err, c.String())
	}
	return sum, nil
}

func (c *MultiRangeChecksum) UpdateChecksum(emit bool) error {
	sum, err := c.compute()
	if err != nil {
		return err
	}
	c.computed, c.updated = sum, true
	if emit {
		c.log("multirange", c.ValueAddress).Debugf("computed %#08x", sum)
	}
	return nil
}

func (c *MultiRangeChecksum) IsCorrect(emit bool) (bool, error) {
	if err := c.LoadChecksum(); err != nil {
		return false, err
	}
	sum, err := c.compute()
	if err != nil {
		return false, err
	}
	ok := c.stored.matches(sum)
	c.report(emit, "multirange", c.ValueAddress, c.stored.Sum, sum, ok)
	return ok, nil
}

func (c *MultiRangeChecksum) CommitChecksum() error {
	img, err := c.image()
	if err != nil {
		return err
	}
	if !c.updated {
		return errors.Wrap(errNotUpdated, c.String())
	}
	pair := newPair(c.computed)
	buf := make([]byte, 8)
	order := img.ByteOrder()
	order.PutUint32(buf, pair.Sum)
	order.PutUint32(buf[4:], pair.Complement)
	if err := img.Write(c.ValueAddress, buf); err != nil {
		return errors.Wrap(err, c.String())
	}
	c.stored = pair
	return nil
}
