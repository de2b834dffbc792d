package mem

import (
	"fmt"

	"github.com/pkg/errors"
)

type MemError struct {
	Addr uint64
	Size int
	Enum int
}

func (m *MemError) Error() string {
	reason := "memory error"
	switch m.Enum {
	case MEM_WRITE_UNMAPPED:
		reason = "write outside image"
	case MEM_READ_UNMAPPED:
		reason = "read outside image"
	}
	return fmt.Sprintf("%s at %#x(%d)", reason, m.Addr, m.Size)
}

// IsOutOfRange reports whether err was caused by an access outside an Image.
func IsOutOfRange(err error) bool {
	_, ok := errors.Cause(err).(*MemError)
	return ok
}
