// Package detect locates the checksum routines of a C166 firmware image
// by signature and reconstructs their parameters from the instructions.
//
// Every detector is a pure function of the image bytes. Detection of one
// kind never depends on another succeeding.
package detect

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kwpflash/kwpflash/go/checksum"
	"github.com/kwpflash/kwpflash/go/models/mem"
)

// Result is everything found in one image.
type Result struct {
	// BaseAddress comes from the multipoint routine when present.
	BaseAddress uint32

	Main       *checksum.MainChecksum
	Multipoint *Multipoint
	Rolling    *checksum.RollingChecksums
	MultiRange *checksum.MultiRangeChecksum

	// Errors holds the failure of every kind that wasn't found.
	Errors map[Kind]error
}

// Checksums lists what was found in correction order. The main checksum
// comes last because its ranges may cover the other checksums' values.
func (r *Result) Checksums() []checksum.Checksum {
	var out []checksum.Checksum
	if r.Multipoint != nil {
		for _, b := range r.Multipoint.Blocks {
			out = append(out, b)
		}
	}
	if r.MultiRange != nil {
		out = append(out, r.MultiRange)
	}
	if r.Rolling != nil {
		out = append(out, r.Rolling)
	}
	if r.Main != nil {
		out = append(out, r.Main)
	}
	return out
}

// Found reports whether the kind was detected.
func (r *Result) Found(k Kind) bool {
	switch k {
	case KindMain:
		return r.Main != nil
	case KindMultipoint:
		return r.Multipoint != nil
	case KindRolling:
		return r.Rolling != nil
	case KindMultiRange:
		return r.MultiRange != nil
	}
	return false
}

// Bind attaches every checksum to img and returns those that bound.
// Checksums whose tables lie outside img are reported in errs.
func (r *Result) Bind(img *mem.Image) (bound []checksum.Checksum, errs []error) {
	for _, c := range r.Checksums() {
		if err := c.SetMemoryReference(img); err != nil {
			errs = append(errs, errors.Wrapf(err, "bind %s", c))
			continue
		}
		bound = append(bound, c)
	}
	return bound, errs
}

// Detector runs all four detections over an image.
type Detector struct {
	// DefaultBase is used when the image doesn't reveal its own base address.
	DefaultBase uint32
	// Log receives detection progress and is handed to every checksum found.
	Log logrus.FieldLogger
}

// DetectAll runs every detector with the standard logger.
func DetectAll(buf []byte, defaultBase uint32) *Result {
	return (&Detector{DefaultBase: defaultBase}).Run(buf)
}

func (d *Detector) log() logrus.FieldLogger {
	if d.Log == nil {
		return logrus.StandardLogger()
	}
	return d.Log
}

func (d *Detector) Run(buf []byte) *Result {
	log := d.log()
	res := &Result{BaseAddress: d.DefaultBase, Errors: make(map[Kind]error)}
	record := func(k Kind, err error) {
		res.Errors[k] = err
		if IsNotFound(err) {
			log.WithField("kind", k).Debug(err)
		} else {
			log.WithField("kind", k).Warn(err)
		}
	}

	if m, err := DetectMain(buf); err != nil {
		record(KindMain, err)
	} else {
		m.Logger = log
		res.Main = m
	}

	if mp, err := DetectMultipoint(buf); err != nil {
		record(KindMultipoint, err)
	} else {
		for _, b := range mp.Blocks {
			b.Logger = log
		}
		res.Multipoint = mp
		res.BaseAddress = mp.BaseAddress
	}

	rolling, joint, err := DetectRolling(buf)
	if err != nil {
		record(KindRolling, err)
	} else {
		rolling.Logger = log
		res.Rolling = rolling
	}

	// the multi-range decoded with the rolling stores is the authoritative one
	if joint != nil {
		res.MultiRange = joint
	} else if mr, err := DetectMultiRange(buf); err != nil {
		record(KindMultiRange, err)
	} else {
		res.MultiRange = mr
	}
	if res.MultiRange != nil {
		res.MultiRange.Logger = log
	}

	for _, k := range Kinds {
		if res.Found(k) {
			log.WithField("kind", k).Debug("detected")
		}
	}
	return res
}

// CheckUnique is the strict-mode pass: anchors of routines that exist at
// most once per image must not match twice.
func CheckUnique(buf []byte) []error {
	var errs []error
	for _, u := range uniquePatterns {
		matches := u.p.LocateAll(buf)
		if len(matches) > 1 {
			errs = append(errs, &Error{Kind: u.kind, Stage: Scanning, Step: u.p.Name, Offset: matches[1], Err: ErrAmbiguous})
		}
	}
	return errs
}
