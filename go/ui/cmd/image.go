package cmd

import (
	"github.com/kwpflash/kwpflash/go/cpu/c166"
	"github.com/kwpflash/kwpflash/go/loader"
	"github.com/kwpflash/kwpflash/go/models"
	"github.com/kwpflash/kwpflash/go/models/mem"
	"github.com/kwpflash/kwpflash/go/scan"
)

var LoadCmd = cmd(&Command{
	Name: "load",
	Args: "<file>",
	Desc: "Load a raw image at the configured base, or a sector archive.",
	Run: func(c *Context, path string) error {
		img, err := loader.LoadImage(path, c.Config.BaseAddress)
		if err != nil {
			return err
		}
		c.SetImage(img)
		c.Printf("loaded %s\n", img)
		return nil
	},
})

var SaveCmd = cmd(&Command{
	Name: "save",
	Args: "<file>",
	Desc: "Write the image back out as a raw binary.",
	Run: func(c *Context, path string) error {
		img, err := c.image()
		if err != nil {
			return err
		}
		if err := loader.SaveImage(path, img); err != nil {
			return err
		}
		c.Dirty = false
		return nil
	},
})

var InfoCmd = cmd(&Command{
	Name: "info",
	Desc: "Describe the loaded image.",
	Run: func(c *Context) error {
		img, err := c.image()
		if err != nil {
			return err
		}
		c.Printf("%s\n", img)
		if c.Dirty {
			c.Printf("  %s\n", c.Config.Colorize("modified", models.ColorWarn))
		}
		return nil
	},
})

var DisCmd = cmd(&Command{
	Name: "dis",
	Args: "<addr> <count>",
	Desc: "Disassemble count instructions at addr.",
	Run: func(c *Context, addr uint32, count int) error {
		img, err := c.image()
		if err != nil {
			return err
		}
		off, ok := img.Offset(addr)
		if !ok {
			return &mem.MemError{Addr: uint64(addr), Size: 2, Enum: mem.MEM_READ_UNMAPPED}
		}
		// four bytes per instruction is the longest encoding
		end := off + count*4
		if end > len(img.Data) {
			end = len(img.Data)
		}
		dis, _ := (&c166.Dis{}).Dis(img.Data[off:end], uint64(addr))
		if len(dis) > count {
			dis = dis[:count]
		}
		c.Printf("%s\n", models.FormatIns(dis))
		return nil
	},
})

var HexdumpCmd = cmd(&Command{
	Name: "hexdump",
	Args: "<addr> <size>",
	Desc: "Dump size bytes at addr.",
	Run: func(c *Context, addr, size uint32) error {
		img, err := c.image()
		if err != nil {
			return err
		}
		p, err := img.View(addr, size)
		if err != nil {
			return err
		}
		for _, line := range models.HexDump(addr, p) {
			c.Printf("  %s\n", line)
		}
		return nil
	},
})

var FindCmd = cmd(&Command{
	Name: "find",
	Args: "<\"hex pattern\">",
	Desc: "Find a byte pattern on even addresses, ?? matches any byte.",
	Run: func(c *Context, sig string) error {
		img, err := c.image()
		if err != nil {
			return err
		}
		p, err := scan.ParsePattern("find", sig)
		if err != nil {
			return err
		}
		matches := p.LocateAll(img.Data)
		for _, off := range matches {
			c.Printf("  %#x\n", img.StartAddress+uint32(off))
		}
		c.Printf("%d matches for %s\n", len(matches), p)
		return nil
	},
})
