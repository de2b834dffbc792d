package shell

import (
	"os"

	"github.com/kwpflash/kwpflash/go/cmd"
	"github.com/kwpflash/kwpflash/go/ui"
)

func Main(args []string) {
	c := cmd.NewImageCmd()
	c.OptImage = true
	c.RunImage = func(args []string) error {
		shell, err := ui.NewShell(c.Ctx)
		if err != nil {
			return err
		}
		shell.Run()
		return nil
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register(cmd.Interactive, "shell", "interactive checksum shell", Main) }
