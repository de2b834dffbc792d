package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/kwpflash/kwpflash/go/loader"
	"github.com/kwpflash/kwpflash/go/models"
	uicmd "github.com/kwpflash/kwpflash/go/ui/cmd"
)

// ExitStatus makes RunImage end the process with a specific code.
type ExitStatus int

func (e ExitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// ImageCmd is the common driver of the tools: it parses the shared flags,
// loads the image named by the first argument and hands the rest to RunImage.
type ImageCmd struct {
	Config *models.Config
	Ctx    *uicmd.Context

	SetupFlags func() error
	RunImage   func(args []string) error

	// NoImage skips loading; OptImage loads only when an argument is given.
	NoImage, OptImage bool
	// ArgsUsage describes the positional arguments after the image.
	ArgsUsage string

	Flags *flag.FlagSet
}

func NewImageCmd() *ImageCmd {
	fs := flag.NewFlagSet("cli", flag.ExitOnError)
	return &ImageCmd{Flags: fs}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func (c *ImageCmd) PrintError(err error) {
	// print an error, and a stacktrace if available
	fmt.Fprintf(os.Stderr, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	if c.Config == nil || !c.Config.Verbose {
		return
	}
	if err, ok := errors.Cause(err).(stackTracer); ok {
		// parse full path and method name for each stack frame
		var frames [][]string
		for _, f := range err.StackTrace() {
			fullpath := ""
			fileline := fmt.Sprintf("%s:%d", f, f)
			method := fmt.Sprintf("%n", f)

			frame := fmt.Sprintf("%+s", f)
			tmp := strings.SplitN(frame, "\n", 3)
			if len(tmp) == 2 {
				pathsplit := strings.Split(tmp[0], "/")
				method = pathsplit[len(pathsplit)-1]
				fullpath = strings.TrimSpace(tmp[1])
			}
			frames = append(frames, []string{fullpath, fileline, method})
			if method == "main.main" {
				break
			}
		}
		// calculate column widths
		widths := make([]int, 3)
		for _, f := range frames {
			for i, s := range f {
				if len(s) > widths[i] {
					widths[i] = len(s)
				}
			}
		}
		// print pretty stacktrace
		for _, f := range frames {
			method := f[2]
			for i := 0; i < 2; i++ {
				if widths[i] > 0 {
					pad := strings.Repeat(" ", widths[i]-len(f[i]))
					fmt.Fprintf(os.Stderr, "%s%s | ", f[i], pad)
				}
			}
			fmt.Fprintf(os.Stderr, "%s()\n", method)
		}
	}
}

func colorTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Run parses argv and executes the tool, returning the process exit code.
func (c *ImageCmd) Run(argv []string) int {
	fs := c.Flags
	base := fs.Uint("base", models.DefaultBase, "address the raw image is mapped at")
	strict := fs.Bool("strict", false, "fail when a checksum routine anchor matches more than once")
	verbose := fs.Bool("v", false, "verbose output")
	color := fs.Bool("color", colorTerminal(os.Stdout), "colorize output")
	outfile := fs.String("o", "", "redirect log output to file (default stdout)")

	fs.Usage = func() {
		usage := "Usage: %s [options]"
		if !c.NoImage {
			if c.OptImage {
				usage += " [image]"
			} else {
				usage += " <image>"
			}
		}
		if c.ArgsUsage != "" {
			usage += " " + c.ArgsUsage
		}
		usage += "\n\nOptions:\n"
		fmt.Fprintf(os.Stderr, usage, argv[0])
		var flags []*flag.Flag
		fs.VisitAll(func(f *flag.Flag) { flags = append(flags, f) })
		models.PrintFlags(os.Stderr, flags)
	}
	if c.SetupFlags != nil {
		if err := c.SetupFlags(); err != nil {
			panic(err)
		}
	}
	fs.Parse(argv[1:])
	args := fs.Args()
	if *base > 0xffffffff {
		fmt.Fprintf(os.Stderr, "-base %#x does not fit in 32 bits\n", *base)
		return 2
	}

	var stdout io.Writer = os.Stdout
	if *color {
		stdout = colorable.NewColorableStdout()
	}
	config := &models.Config{
		Output:      stdout,
		Color:       *color,
		Verbose:     *verbose,
		Strict:      *strict,
		BaseAddress: uint32(*base),
	}
	c.Config = config
	if *outfile != "" {
		out, err := os.OpenFile(*outfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			c.PrintError(err)
			return 1
		}
		defer out.Close()
		config.Output = out
		config.Color = false
	}
	c.Ctx = uicmd.NewContext(stdout, config)

	if !c.NoImage && (!c.OptImage || len(args) > 0) {
		if len(args) < 1 {
			fs.Usage()
			return 2
		}
		img, err := loader.LoadImage(args[0], config.BaseAddress)
		if err != nil {
			c.PrintError(err)
			return 1
		}
		c.Ctx.SetImage(img)
		args = args[1:]
	}
	if c.RunImage == nil {
		return 0
	}
	if err := c.RunImage(args); err != nil {
		if e, ok := err.(ExitStatus); ok {
			return int(e)
		}
		c.PrintError(err)
		return 1
	}
	return 0
}

// Exec runs a shell command against the loaded image.
func (c *ImageCmd) Exec(name string, args ...string) error {
	return uicmd.Exec(c.Ctx, name, args)
}
