package models

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/kwpflash/kwpflash/go/models/mem"
)

type StrucStream struct {
	Stream io.ReadWriter
	Order  binary.ByteOrder
}

func (s *StrucStream) Pack(vals ...interface{}) error {
	for _, v := range vals {
		if err := struc.PackWithOrder(s.Stream, v, s.Order); err != nil {
			return err
		}
	}
	return nil
}

func (s *StrucStream) Unpack(vals ...interface{}) error {
	for _, v := range vals {
		if err := struc.UnpackWithOrder(s.Stream, v, s.Order); err != nil {
			return err
		}
	}
	return nil
}

// UnpackAt decodes the struct v from the image at addr.
func UnpackAt(img *mem.Image, addr uint32, v interface{}) error {
	size, err := struc.Sizeof(v)
	if err != nil {
		return errors.Wrap(err, "struc.Sizeof() failed")
	}
	p, err := img.View(addr, uint32(size))
	if err != nil {
		return err
	}
	return struc.UnpackWithOrder(bytes.NewReader(p), v, img.ByteOrder())
}

// PackAt encodes the struct v into the image at addr. Nothing is written if v doesn't fit.
func PackAt(img *mem.Image, addr uint32, v interface{}) error {
	var buf bytes.Buffer
	if err := struc.PackWithOrder(&buf, v, img.ByteOrder()); err != nil {
		return errors.Wrap(err, "struc.Pack() failed")
	}
	return img.Write(addr, buf.Bytes())
}
