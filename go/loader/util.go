package loader

import (
	"io"
	"os"

	"github.com/kwpflash/kwpflash/go/layout"
)

func getMagic(r io.ReadSeeker) []byte {
	ret := make([]byte, 4)
	io.ReadFull(r, ret)
	r.Seek(0, io.SeekStart)
	return ret
}

func MatchArchive(r io.ReadSeeker) bool {
	return string(getMagic(r)) == layout.ARCHIVE_MAGIC
}

// MatchArchiveFile reports whether the file at path is a sector archive.
func MatchArchiveFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	return MatchArchive(f)
}
