package checksum

import (
	"fmt"

	"github.com/pkg/errors"
)

// Report counts the outcome of a verify or correct pass.
type Report struct {
	Correct   int
	Incorrect int
	Corrected int
	Failed    int
	Errors    []error
}

func (r *Report) fail(c Checksum, err error) {
	r.AddFailure(errors.Wrap(err, c.String()))
}

// AddFailure counts a checksum that couldn't be checked at all, such as
// one whose table lies outside the image.
func (r *Report) AddFailure(err error) {
	r.Failed++
	r.Errors = append(r.Errors, err)
}

// OK is true when nothing is left incorrect or failed.
func (r *Report) OK() bool {
	return r.Incorrect == 0 && r.Failed == 0
}

func (r *Report) String() string {
	return fmt.Sprintf("%d correct, %d incorrect, %d corrected, %d failed", r.Correct, r.Incorrect, r.Corrected, r.Failed)
}

// VerifyAll checks every checksum without touching the image.
func VerifyAll(list []Checksum, emit bool) Report {
	var r Report
	for _, c := range list {
		ok, err := c.IsCorrect(emit)
		switch {
		case err != nil:
			r.fail(c, err)
		case ok:
			r.Correct++
		default:
			r.Incorrect++
		}
	}
	return r
}

// CorrectAll recomputes and commits every incorrect checksum, then verifies it again.
// Order matters: the main checksum covers ranges holding other checksums, so
// callers pass it last.
func CorrectAll(list []Checksum, emit bool) Report {
	var r Report
	for _, c := range list {
		ok, err := c.IsCorrect(emit)
		if err != nil {
			r.fail(c, err)
			continue
		}
		if ok {
			r.Correct++
			continue
		}
		if err := c.UpdateChecksum(emit); err != nil {
			r.fail(c, err)
			continue
		}
		if err := c.CommitChecksum(); err != nil {
			r.fail(c, err)
			continue
		}
		if ok, err := c.IsCorrect(false); err != nil {
			r.fail(c, err)
		} else if !ok {
			r.Incorrect++
		} else {
			r.Corrected++
		}
	}
	return r
}
