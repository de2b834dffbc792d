package layout

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/kwpflash/kwpflash/go/models"
	"github.com/kwpflash/kwpflash/go/models/mem"
)

var ARCHIVE_MAGIC = "KWPS"

const archiveVersion = 1

// ArchiveHeader precedes the compressed sector records and carries the layout.
type ArchiveHeader struct {
	// MAGIC ("KWPS")
	Magic       string `struc:"[4]byte"`
	Version     uint32
	BaseAddress uint32
	Size        uint32
	Count       uint32   `struc:"uint32,sizeof=SectorSizes"`
	SectorSizes []uint32 `struc:"[]uint32"`
}

type sectorRecord struct {
	Address uint32
	Length  uint32 `struc:"uint32,sizeof=Data"`
	Data    []byte
}

// WriteArchive stores a split image: the layout header, then one
// snappy-compressed record per sector.
func WriteArchive(w io.Writer, l *MemoryLayout, sectors []*mem.Image) error {
	if err := l.Validate(); err != nil {
		return errors.Wrap(err, "invalid layout")
	}
	if len(sectors) != len(l.SectorSizes) {
		return errors.Errorf("%s: got %d sectors", l, len(sectors))
	}
	header := &ArchiveHeader{
		Magic:       ARCHIVE_MAGIC,
		Version:     archiveVersion,
		BaseAddress: l.BaseAddress,
		Size:        l.Size,
		SectorSizes: l.SectorSizes,
	}
	if err := struc.Pack(w, header); err != nil {
		return errors.Wrap(err, "failed to pack header")
	}
	zw := snappy.NewBufferedWriter(w)
	var buf bytes.Buffer
	stream := &models.StrucStream{Stream: &buf, Order: binary.BigEndian}
	for i, s := range sectors {
		buf.Reset()
		if err := stream.Pack(&sectorRecord{Address: s.StartAddress, Data: s.Data}); err != nil {
			return errors.Wrapf(err, "failed to pack sector %d", i)
		}
		if _, err := zw.Write(buf.Bytes()); err != nil {
			return errors.Wrapf(err, "failed to write sector %d", i)
		}
	}
	return zw.Close()
}

// ReadArchive loads an archive written by WriteArchive and recombines
// its sectors into one image.
func ReadArchive(r io.Reader) (*MemoryLayout, *mem.Image, error) {
	var header ArchiveHeader
	if err := struc.Unpack(r, &header); err != nil {
		return nil, nil, errors.Wrap(err, "failed to unpack header")
	}
	if header.Magic != ARCHIVE_MAGIC {
		return nil, nil, errors.New("invalid sector archive magic")
	}
	if header.Version != archiveVersion {
		return nil, nil, errors.Errorf("unsupported sector archive version %d", header.Version)
	}
	l := &MemoryLayout{
		BaseAddress: header.BaseAddress,
		Size:        header.Size,
		SectorSizes: header.SectorSizes,
	}
	if err := l.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid layout in archive")
	}
	zr := snappy.NewReader(r)
	sectors := make([][]byte, len(l.SectorSizes))
	for i, size := range l.SectorSizes {
		var rec sectorRecord
		if err := struc.Unpack(zr, &rec); err != nil {
			return nil, nil, errors.Wrapf(err, "failed to unpack sector %d", i)
		}
		if start := l.SectorStart(i); rec.Address != start || rec.Length != size {
			return nil, nil, errors.Errorf("sector %d is %#x+%#x, layout says %#x+%#x", i, rec.Address, rec.Length, start, size)
		}
		sectors[i] = rec.Data
	}
	img, err := CombineMemorySectorsIntoImage(sectors, l)
	if err != nil {
		return nil, nil, err
	}
	return l, img, nil
}
