package loader

import (
	"bytes"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"

	"github.com/kwpflash/kwpflash/go/layout"
)

// LoadLayout decodes and validates a layout file.
func LoadLayout(path string) (*layout.MemoryLayout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	l, err := layout.Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	l.Name = path
	return l, nil
}

// FindLayout resolves a layout by file path, then by name in the user and
// system "layouts" config folders, then among the built-in layouts.
func FindLayout(name string) (*layout.MemoryLayout, error) {
	if _, err := os.Stat(name); err == nil {
		return LoadLayout(name)
	}
	file := name
	if !strings.HasSuffix(file, ".xml") {
		file += ".xml"
	}
	configDirs := configdir.New("kwpflash", "layouts")
	for _, config := range configDirs.QueryFolders(configdir.All) {
		if data, err := config.ReadFile(file); err == nil {
			l, err := layout.Decode(bytes.NewReader(data))
			if err != nil {
				return nil, errors.Wrapf(err, "%s in %s", file, config.Path)
			}
			l.Name = strings.TrimSuffix(file, ".xml")
			return l, nil
		}
	}
	return layout.Known(name)
}
