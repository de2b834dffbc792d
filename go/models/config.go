package models

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// DefaultBase is where ME7-style firmware images are mapped (external flash at 0x800000).
const DefaultBase = 0x800000

type Config struct {
	Output  io.Writer
	Color   bool
	Verbose bool
	// Strict runs the anchor uniqueness pass before detection.
	Strict bool

	BaseAddress uint32
}

func (c *Config) Printf(format string, a ...interface{}) {
	out := c.Output
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, format, a...)
}

// NewLogger builds the logger used for checksum and detection diagnostics.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	if c.Output != nil {
		log.Out = c.Output
	}
	log.Formatter = &logrus.TextFormatter{
		ForceColors:      c.Color,
		DisableColors:    !c.Color,
		DisableTimestamp: true,
	}
	if c.Verbose {
		log.Level = logrus.DebugLevel
	} else {
		log.Level = logrus.InfoLevel
	}
	return log
}
