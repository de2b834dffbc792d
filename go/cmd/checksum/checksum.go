package checksum

import (
	"os"

	"github.com/pkg/errors"

	"github.com/kwpflash/kwpflash/go/cmd"
	"github.com/kwpflash/kwpflash/go/loader"
)

func DetectMain(args []string) {
	c := cmd.NewImageCmd()
	c.RunImage = func(args []string) error {
		return c.Exec("detect")
	}
	os.Exit(c.Run(args))
}

// exit status 3 means the image holds incorrect checksums
func VerifyMain(args []string) {
	c := cmd.NewImageCmd()
	c.RunImage = func(args []string) error {
		if err := c.Exec("verify"); err != nil {
			return err
		}
		if !c.Ctx.Report.OK() {
			return cmd.ExitStatus(3)
		}
		return nil
	}
	os.Exit(c.Run(args))
}

func CorrectMain(args []string) {
	c := cmd.NewImageCmd()
	var out *string
	var dryRun *bool
	c.SetupFlags = func() error {
		out = c.Flags.String("out", "", "write the corrected image here instead of over the input")
		dryRun = c.Flags.Bool("n", false, "don't write anything")
		return nil
	}
	c.RunImage = func(args []string) error {
		if err := c.Exec("correct"); err != nil {
			return err
		}
		ctx := c.Ctx
		if !ctx.Report.OK() {
			return cmd.ExitStatus(3)
		}
		if !ctx.Dirty || *dryRun {
			return nil
		}
		path := *out
		if path == "" {
			path = c.Flags.Arg(0)
			if loader.MatchArchiveFile(path) {
				return errors.Errorf("%s is a sector archive, pass -out to write a raw image", path)
			}
		}
		if err := c.Exec("save", path); err != nil {
			return err
		}
		c.Config.Printf("wrote %s\n", path)
		return nil
	}
	os.Exit(c.Run(args))
}

func init() {
	cmd.Register(cmd.Checksums, "detect", "find the checksum routines of an image", DetectMain)
	cmd.Register(cmd.Checksums, "verify", "verify every checksum of an image", VerifyMain)
	cmd.Register(cmd.Checksums, "correct", "fix the incorrect checksums of an image", CorrectMain)
}
