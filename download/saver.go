package download

import (
	"path/filepath"

	"github.com/redgrab-cli/redgrab/filesystem"
	"github.com/redgrab-cli/redgrab/where"
)

// Saver persists downloaded bytes at a path relative to the downloads
// root and returns the absolute location written.
type Saver interface {
	Save(relative string, data []byte) (string, error)
}

// DiskSaver writes downloads beneath the user's downloads directory,
// creating intermediate folders as needed.
type DiskSaver struct{}

func (DiskSaver) Save(relative string, data []byte) (string, error) {
	location := filepath.Join(where.Downloads(), filepath.FromSlash(relative))

	if err := filesystem.API().MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return "", err
	}
	if err := filesystem.API().WriteFile(location, data, 0o644); err != nil {
		return "", err
	}
	return location, nil
}
