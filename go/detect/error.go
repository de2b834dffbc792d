package detect

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind names one of the four checksum kinds.
type Kind int

const (
	KindMain Kind = iota
	KindMultipoint
	KindRolling
	KindMultiRange
)

var kindNames = [...]string{
	KindMain:       "main",
	KindMultipoint: "multipoint",
	KindRolling:    "rolling",
	KindMultiRange: "multi-range",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinds lists every checksum kind in detection order.
var Kinds = []Kind{KindMain, KindMultipoint, KindRolling, KindMultiRange}

// Stage is how far a detection got before failing.
// Detection only moves forward: Scanning, then Decoding.
type Stage int

const (
	Scanning Stage = iota
	Decoding
)

func (s Stage) String() string {
	if s == Decoding {
		return "decoding"
	}
	return "scanning"
}

var (
	ErrPatternNotFound = errors.New("pattern not found")
	ErrDecode          = errors.New("unexpected instruction")
	ErrNoTerminal      = errors.New("range chain has no checksum")
	ErrEmpty           = errors.New("nothing found")
	ErrAmbiguous       = errors.New("found more than once")
	ErrOutOfImage      = errors.New("address outside image")
)

// Error reports which step of a detection failed and why.
// Err is always one of the Err* sentinels.
type Error struct {
	Kind   Kind
	Stage  Stage
	Step   string
	Offset int
	Err    error
}

func (e *Error) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("%s checksum: %s %s: %s", e.Kind, e.Stage, e.Step, e.Err)
	}
	return fmt.Sprintf("%s checksum: %s %s at +%#x: %s", e.Kind, e.Stage, e.Step, e.Offset, e.Err)
}

func (e *Error) Cause() error  { return e.Err }
func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err means the checksum kind is simply absent from the image.
func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrPatternNotFound
}

// failure builds errors for one detection attempt.
type failure struct {
	kind Kind
}

func (f failure) scan(step string, off int, err error) error {
	return &Error{Kind: f.kind, Stage: Scanning, Step: step, Offset: off, Err: err}
}

func (f failure) decode(step string, off int, err error) error {
	return &Error{Kind: f.kind, Stage: Decoding, Step: step, Offset: off, Err: err}
}

func (f failure) missing(p string) error {
	return f.scan(p, -1, ErrPatternNotFound)
}
