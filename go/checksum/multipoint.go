package checksum

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/kwpflash/kwpflash/go/models"
	"github.com/kwpflash/kwpflash/go/models/mem"
)

// MultipointChecksum is one record of the multipoint table. Each record
// holds its own {start, end, sum, ^sum}, so blocks verify independently.
type MultipointChecksum struct {
	bound

	BlockIndex int
	// Address is the record's address: table + BlockIndex*BlockStride.
	Address uint32

	rng      AddressRange
	stored   checksumPair
	computed uint32
	updated  bool
}

func (c *MultipointChecksum) String() string {
	return fmt.Sprintf("multipoint block %d @ %#x", c.BlockIndex, c.Address)
}

// Range returns the range loaded from the block record.
func (c *MultipointChecksum) Range() AddressRange { return c.rng }

func (c *MultipointChecksum) Stored() uint32   { return c.stored.Sum }
func (c *MultipointChecksum) Computed() uint32 { return c.computed }

func (c *MultipointChecksum) SetMemoryReference(img *mem.Image) error {
	prev := c.img
	c.img = img
	if err := c.LoadChecksum(); err != nil {
		c.img = prev
		return err
	}
	c.updated = false
	return nil
}

func (c *MultipointChecksum) LoadChecksum() error {
	img, err := c.image()
	if err != nil {
		return err
	}
	var b block
	if err := models.UnpackAt(img, c.Address, &b); err != nil {
		return errors.Wrap(err, c.String())
	}
	rng, err := RangeInclusive(b.Start, b.End)
	if err != nil {
		return errors.Wrap(err, c.String())
	}
	c.rng = rng
	c.stored = checksumPair{Sum: b.Sum, Complement: b.Complement}
	return nil
}

func (c *MultipointChecksum) compute() (uint32, error) {
	img, err := c.image()
	if err != nil {
		return 0, err
	}
	sum, err := ForRange(img, c.rng.StartAddress, c.rng.NumBytes, DatumWidth)
	if err != nil {
		return 0, errors.Wrap(err, c.String())
	}
	return sum, nil
}

func (c *MultipointChecksum) UpdateChecksum(emit bool) error {
	sum, err := c.compute()
	if err != nil {
		return err
	}
	c.computed, c.updated = sum, true
	if emit {
		c.log("multipoint", c.Address).Debugf("block %d computed %#08x", c.BlockIndex, sum)
	}
	return nil
}

func (c *MultipointChecksum) IsCorrect(emit bool) (bool, error) {
	if err := c.LoadChecksum(); err != nil {
		return false, err
	}
	sum, err := c.compute()
	if err != nil {
		return false, err
	}
	ok := c.stored.matches(sum)
	c.report(emit, "multipoint", c.Address, c.stored.Sum, sum, ok)
	return ok, nil
}

func (c *MultipointChecksum) CommitChecksum() error {
	img, err := c.image()
	if err != nil {
		return err
	}
	if !c.updated {
		return errors.Wrap(errNotUpdated, c.String())
	}
	pair := newPair(c.computed)
	// the sum follows the {start, end} words of the record
	if err := models.PackAt(img, c.Address+8, &pair); err != nil {
		return errors.Wrap(err, c.String())
	}
	c.stored = pair
	return nil
}
