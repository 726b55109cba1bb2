// Package cache maintains the on-disk cache directory shared by the expirable stores.
package cache

import (
	"os"
	"time"

	"github.com/redgrab-cli/redgrab/filesystem"
	"github.com/redgrab-cli/redgrab/where"
	"github.com/spf13/afero"
)

// ttl bounds how long an untouched cache entry may survive on disk.
const ttl = 7 * 24 * time.Hour

// CollectGarbage prunes cache entries whose modification time exceeds the retention window.
// Failures are ignored, a stale entry is re-pruned on the next run.
func CollectGarbage() {
	_ = afero.Walk(filesystem.API(), where.Cache(), func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		if time.Since(info.ModTime()) > ttl {
			_ = filesystem.API().Remove(path)
		}

		return nil
	})
}
