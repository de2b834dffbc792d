package cmd

import (
	"github.com/kwpflash/kwpflash/go/checksum"
	"github.com/kwpflash/kwpflash/go/detect"
	"github.com/kwpflash/kwpflash/go/models"
	"github.com/kwpflash/kwpflash/go/models/mem"
)

// PrintResult lists what detection found, and why the rest wasn't.
func (c *Context) PrintResult(res *detect.Result) {
	cfg := c.Config
	c.Printf("base address %#x\n", res.BaseAddress)
	for _, k := range detect.Kinds {
		name := cfg.ColorPad(k.String(), "", 11)
		if !res.Found(k) {
			c.Printf("%s  %s\n", name, cfg.Colorize(res.Errors[k].Error(), models.ColorDim))
			continue
		}
		switch k {
		case detect.KindMain:
			c.Printf("%s  %s\n", name, res.Main)
		case detect.KindMultipoint:
			mp := res.Multipoint
			c.Printf("%s  %d blocks @ %#x\n", name, len(mp.Blocks), mp.TableAddress)
		case detect.KindRolling:
			c.Printf("%s  %s\n", name, res.Rolling)
			if r := res.Rolling.InitRange; r != nil {
				c.Printf("%13s init %s\n", "", r)
			}
			for _, chain := range res.Rolling.Checksums {
				c.Printf("%13s #%-3d @ %#x %v\n", "", chain.Index, chain.ValueAddress, chain.Ranges)
			}
		case detect.KindMultiRange:
			c.Printf("%s  %s %v\n", name, res.MultiRange, res.MultiRange.Ranges)
		}
	}
}

var DetectCmd = cmd(&Command{
	Name: "detect",
	Desc: "Detect the checksum routines of the image.",
	Run: func(c *Context) error {
		c.Result = nil
		res, err := c.Detect()
		if err != nil {
			return err
		}
		c.PrintResult(res)
		return nil
	},
})

var VerifyCmd = cmd(&Command{
	Name: "verify",
	Desc: "Verify every detected checksum.",
	Run: func(c *Context) error {
		list, unbound, err := c.Bound()
		if err != nil {
			return err
		}
		r := checksum.VerifyAll(list, true)
		for _, err := range unbound {
			r.AddFailure(err)
		}
		c.printReport(r)
		return nil
	},
})

var CorrectCmd = cmd(&Command{
	Name: "correct",
	Desc: "Fix every incorrect checksum in the image.",
	Run: func(c *Context) error {
		list, unbound, err := c.Bound()
		if err != nil {
			return err
		}
		r := checksum.CorrectAll(list, true)
		for _, err := range unbound {
			r.AddFailure(err)
		}
		if r.Corrected > 0 {
			c.Dirty = true
		}
		c.printReport(r)
		return nil
	},
})

var SumCmd = cmd(&Command{
	Name: "sum",
	Args: "<addr> <size>",
	Desc: "Sum the 16-bit words of a range.",
	Run: func(c *Context, addr, size uint32) error {
		img, err := c.image()
		if err != nil {
			return err
		}
		sum, err := checksum.ForRange(img, addr, size, mem.UINT16)
		if err != nil {
			return err
		}
		c.Printf("%s: 0x%08x ~0x%08x\n", checksum.AddressRange{StartAddress: addr, NumBytes: size}, sum, ^sum)
		return nil
	},
})

var RollingCmd = cmd(&Command{
	Name: "rolling",
	Args: "<seedtable> <addr> <size>",
	Desc: "Roll a range through a seed table, starting from zero.",
	Run: func(c *Context, seed, addr, size uint32) error {
		img, err := c.image()
		if err != nil {
			return err
		}
		sum, err := checksum.RollingForRange(img, seed, addr, size, 0)
		if err != nil {
			return err
		}
		c.Printf("%s: 0x%08x\n", checksum.AddressRange{StartAddress: addr, NumBytes: size}, sum)
		return nil
	},
})
