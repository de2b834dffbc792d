package image

import (
	"os"

	"github.com/pkg/errors"

	"github.com/kwpflash/kwpflash/go/cmd"
	"github.com/kwpflash/kwpflash/go/loader"
)

func DisMain(args []string) {
	c := cmd.NewImageCmd()
	c.ArgsUsage = "<addr> <count>"
	c.RunImage = func(args []string) error {
		return c.Exec("dis", args...)
	}
	os.Exit(c.Run(args))
}

func HexdumpMain(args []string) {
	c := cmd.NewImageCmd()
	c.ArgsUsage = "<addr> <size>"
	c.RunImage = func(args []string) error {
		return c.Exec("hexdump", args...)
	}
	os.Exit(c.Run(args))
}

func FindMain(args []string) {
	c := cmd.NewImageCmd()
	c.ArgsUsage = `"<hex pattern>"`
	c.RunImage = func(args []string) error {
		return c.Exec("find", args...)
	}
	os.Exit(c.Run(args))
}

func SplitMain(args []string) {
	c := cmd.NewImageCmd()
	c.ArgsUsage = "<archive>"
	var name *string
	c.SetupFlags = func() error {
		name = c.Flags.String("layout", "29F800BB", "flash layout: built-in name, layouts/<name>.xml in the config dirs, or an XML file")
		return nil
	}
	c.RunImage = func(args []string) error {
		if len(args) != 1 {
			c.Flags.Usage()
			return cmd.ExitStatus(2)
		}
		return c.Exec("archive", *name, args[0])
	}
	os.Exit(c.Run(args))
}

// CombineMain unpacks a sector archive into a raw image.
func CombineMain(args []string) {
	c := cmd.NewImageCmd()
	c.ArgsUsage = "<raw output>"
	c.RunImage = func(args []string) error {
		if len(args) != 1 {
			c.Flags.Usage()
			return cmd.ExitStatus(2)
		}
		if !loader.MatchArchiveFile(c.Flags.Arg(0)) {
			return errors.Errorf("%s is not a sector archive", c.Flags.Arg(0))
		}
		return c.Exec("save", args[0])
	}
	os.Exit(c.Run(args))
}

func init() {
	cmd.Register(cmd.Images, "dis", "disassemble image code", DisMain)
	cmd.Register(cmd.Images, "hexdump", "dump image bytes", HexdumpMain)
	cmd.Register(cmd.Images, "find", "search an image for a byte pattern", FindMain)
	cmd.Register(cmd.Images, "split", "split an image into a sector archive", SplitMain)
	cmd.Register(cmd.Images, "combine", "rebuild a raw image from a sector archive", CombineMain)
}
