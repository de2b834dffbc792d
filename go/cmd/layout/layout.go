package layout

import (
	"os"

	"github.com/kwpflash/kwpflash/go/cmd"
)

func Main(args []string) {
	c := cmd.NewImageCmd()
	c.NoImage = true
	c.ArgsUsage = "[name|file]"
	c.RunImage = func(args []string) error {
		if len(args) == 0 {
			return c.Exec("layouts")
		}
		return c.Exec("layout", args...)
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register(cmd.Layouts, "layout", "show built-in or custom flash layouts", Main) }
