package checksum

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/kwpflash/kwpflash/go/models/mem"
)

// RollingChecksum is one chain of the rolling set: the ranges rolled into
// it, in order, and where its 32-bit result is stored.
type RollingChecksum struct {
	Index        int
	ValueAddress uint32
	Ranges       []AddressRange

	stored   uint32
	computed uint32
}

func (r *RollingChecksum) Stored() uint32   { return r.stored }
func (r *RollingChecksum) Computed() uint32 { return r.computed }

// RollingChecksums is the chained seed-table checksum. Every chain starts
// at zero, rolls InitRange (when present) and then its own ranges.
type RollingChecksums struct {
	bound

	SeedTableAddress uint32
	InitRange        *AddressRange
	Checksums        []*RollingChecksum

	updated bool
}

func (c *RollingChecksums) String() string {
	return fmt.Sprintf("rolling checksums (%d chains, seed table @ %#x)", len(c.Checksums), c.SeedTableAddress)
}

func (c *RollingChecksums) SetMemoryReference(img *mem.Image) error {
	prev := c.img
	c.img = img
	if err := c.LoadChecksum(); err != nil {
		c.img = prev
		return err
	}
	c.updated = false
	return nil
}

func (c *RollingChecksums) LoadChecksum() error {
	img, err := c.image()
	if err != nil {
		return err
	}
	if len(c.Checksums) == 0 {
		return errors.Errorf("%s: no chains", c)
	}
	stored := make([]uint32, len(c.Checksums))
	for i, r := range c.Checksums {
		v, err := img.ReadUint(r.ValueAddress, mem.UINT32)
		if err != nil {
			return errors.Wrapf(err, "%s: chain %d value", c, r.Index)
		}
		stored[i] = v
	}
	for i, r := range c.Checksums {
		r.stored = stored[i]
	}
	return nil
}

// compute returns one value per chain, in Checksums order.
func (c *RollingChecksums) compute() ([]uint32, error) {
	img, err := c.image()
	if err != nil {
		return nil, err
	}
	table, err := LoadSeedTable(img, c.SeedTableAddress)
	if err != nil {
		return nil, errors.Wrap(err, c.String())
	}
	roll := func(v uint32, r AddressRange) (uint32, error) {
		p, err := img.View(r.StartAddress, r.NumBytes)
		if err != nil {
			return 0, errors.Wrapf(err, "%s: range %s", c, r)
		}
		return table.Roll(v, p)
	}
	var seed uint32
	if c.InitRange != nil {
		if seed, err = roll(0, *c.InitRange); err != nil {
			return nil, err
		}
	}
	out := make([]uint32, len(c.Checksums))
	for i, chain := range c.Checksums {
		v := seed
		for _, r := range chain.Ranges {
			if v, err = roll(v, r); err != nil {
				return nil, err
			}
		}
		out[i] = v
	}
	return out, nil
}

func (c *RollingChecksums) UpdateChecksum(emit bool) error {
	values, err := c.compute()
	if err != nil {
		return err
	}
	for i, r := range c.Checksums {
		r.computed = values[i]
		if emit {
			c.log("rolling", r.ValueAddress).Debugf("chain %d computed %#08x", r.Index, r.computed)
		}
	}
	c.updated = true
	return nil
}

// IsCorrect is true only if every chain matches.
func (c *RollingChecksums) IsCorrect(emit bool) (bool, error) {
	if err := c.LoadChecksum(); err != nil {
		return false, err
	}
	values, err := c.compute()
	if err != nil {
		return false, err
	}
	ok := true
	for i, r := range c.Checksums {
		match := r.stored == values[i]
		c.report(emit, fmt.Sprintf("rolling[%d]", r.Index), r.ValueAddress, r.stored, values[i], match)
		ok = ok && match
	}
	return ok, nil
}

func (c *RollingChecksums) CommitChecksum() error {
	img, err := c.image()
	if err != nil {
		return err
	}
	if !c.updated {
		return errors.Wrap(errNotUpdated, c.String())
	}
	// check every slot first so a failure writes nothing
	for _, r := range c.Checksums {
		if !img.RangeValid(r.ValueAddress, 4) {
			return errors.Wrap(&mem.MemError{Addr: uint64(r.ValueAddress), Size: 4, Enum: mem.MEM_WRITE_UNMAPPED}, c.String())
		}
	}
	for _, r := range c.Checksums {
		if err := img.WriteUint(r.ValueAddress, mem.UINT32, r.computed); err != nil {
			return errors.Wrap(err, c.String())
		}
		r.stored = r.computed
	}
	return nil
}
