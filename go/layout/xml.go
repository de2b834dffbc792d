package layout

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
)

// Decode reads a layout document and validates it. A layout that fails
// validation is still returned alongside the error.
func Decode(r io.Reader) (*MemoryLayout, error) {
	var l MemoryLayout
	if err := xml.NewDecoder(r).Decode(&l); err != nil {
		return nil, errors.Wrap(err, "failed to decode layout")
	}
	if err := l.Validate(); err != nil {
		return &l, errors.Wrap(err, "invalid layout")
	}
	return &l, nil
}

// Encode writes the layout as an indented document.
func (l *MemoryLayout) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(l); err != nil {
		return errors.Wrap(err, "failed to encode layout")
	}
	_, err := io.WriteString(w, "\n")
	return err
}
