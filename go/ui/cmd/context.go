package cmd

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kwpflash/kwpflash/go/checksum"
	"github.com/kwpflash/kwpflash/go/detect"
	"github.com/kwpflash/kwpflash/go/models"
	"github.com/kwpflash/kwpflash/go/models/mem"
)

var errNoImage = errors.New("no image loaded")

// Context is the state one shell session or tool invocation works on.
type Context struct {
	io.Writer
	Config *models.Config
	Log    logrus.FieldLogger

	Img    *mem.Image
	Result *detect.Result
	// Dirty is set once a command has written to Img.
	Dirty bool
	// Report is the outcome of the last verify or correct.
	Report *checksum.Report
}

func NewContext(w io.Writer, config *models.Config) *Context {
	if config == nil {
		config = &models.Config{BaseAddress: models.DefaultBase}
	}
	if config.Output == nil {
		config.Output = w
	}
	return &Context{Writer: w, Config: config, Log: config.NewLogger()}
}

func (c *Context) Printf(format string, a ...interface{}) (n int, err error) {
	return fmt.Fprintf(c, format, a...)
}

// SetImage replaces the working image and forgets the previous detection.
func (c *Context) SetImage(img *mem.Image) {
	c.Img = img
	c.Result = nil
	c.Dirty = false
	c.Report = nil
}

func (c *Context) image() (*mem.Image, error) {
	if c.Img == nil {
		return nil, errNoImage
	}
	return c.Img, nil
}

// Detect runs checksum detection once per image. In strict mode any
// ambiguous routine anchor is an error.
func (c *Context) Detect() (*detect.Result, error) {
	if c.Result != nil {
		return c.Result, nil
	}
	img, err := c.image()
	if err != nil {
		return nil, err
	}
	if c.Config.Strict {
		if errs := detect.CheckUnique(img.Data); len(errs) > 0 {
			for _, err := range errs[1:] {
				c.Log.Error(err)
			}
			return nil, errs[0]
		}
	}
	d := &detect.Detector{DefaultBase: c.Config.BaseAddress, Log: c.Log}
	res := d.Run(img.Data)
	if res.BaseAddress != img.StartAddress {
		c.Log.WithField("base", fmt.Sprintf("%#x", res.BaseAddress)).Warnf("image is mapped at %#x", img.StartAddress)
	}
	c.Result = res
	return res, nil
}

// Bound detects and attaches every checksum found to the working image.
// Checksums that were detected but couldn't be bound come back in unbound.
func (c *Context) Bound() (bound []checksum.Checksum, unbound []error, err error) {
	res, err := c.Detect()
	if err != nil {
		return nil, nil, err
	}
	bound, unbound = res.Bind(c.Img)
	if len(bound) == 0 && len(unbound) == 0 {
		return nil, nil, errors.New("no checksums found")
	}
	return bound, unbound, nil
}

func (c *Context) printReport(r checksum.Report) {
	c.Report = &r
	for _, err := range r.Errors {
		c.Printf("  %s %v\n", c.Config.Colorize("error", models.ColorBad), err)
	}
	c.Printf("%s %s\n", c.Config.Verdict(r.OK()), r.String())
}
