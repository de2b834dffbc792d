package cmd

import (
	"github.com/kwpflash/kwpflash/go/layout"
	"github.com/kwpflash/kwpflash/go/loader"
)

var LayoutsCmd = cmd(&Command{
	Name: "layouts",
	Desc: "List the built-in flash layouts.",
	Run: func(c *Context) error {
		for _, name := range layout.Names() {
			l, _ := layout.Known(name)
			c.Printf("  %s\n", l)
		}
		return nil
	},
})

var LayoutCmd = cmd(&Command{
	Name: "layout",
	Args: "<name|file>",
	Desc: "Show the sectors of a flash layout.",
	Run: func(c *Context, name string) error {
		l, err := loader.FindLayout(name)
		if err != nil {
			return err
		}
		c.Printf("%s\n", l)
		for i, size := range l.SectorSizes {
			c.Printf("  %2d %#08x %#x\n", i, l.SectorStart(i), size)
		}
		return nil
	},
})

var ArchiveCmd = cmd(&Command{
	Name: "archive",
	Args: "<layout> <file>",
	Desc: "Split the image along a layout and write a sector archive.",
	Run: func(c *Context, name, path string) error {
		img, err := c.image()
		if err != nil {
			return err
		}
		l, err := loader.FindLayout(name)
		if err != nil {
			return err
		}
		if err := loader.SaveArchive(path, img, l); err != nil {
			return err
		}
		c.Printf("wrote %d sectors to %s\n", len(l.SectorSizes), path)
		return nil
	},
})
