// Package ledger tracks which posts have already been downloaded so
// repeated scans of the same feed skip them.
package ledger

import (
	"github.com/metafates/gache"
	"github.com/redgrab-cli/redgrab/filesystem"
	"github.com/redgrab-cli/redgrab/where"
	"github.com/samber/lo"
)

// Record is one downloaded post entry.
type Record struct {
	PostID       string `json:"post_id"`
	Subreddit    string `json:"subreddit"`
	DownloadedAt string `json:"downloaded_at"`
}

// cacher provides an abstracted, disk-backed registry of downloaded posts.
var cacher = gache.New[map[string]*Record](
	&gache.Options{
		Path:       where.Ledger(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of downloaded post records from the
// persistent store.
func Get() (map[string]*Record, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Record), nil
	}
	return cached, nil
}

// Contains reports whether a post was already downloaded. Store errors
// degrade to "not downloaded" so a corrupt ledger never blocks a batch.
func Contains(postID string) bool {
	records, err := Get()
	if err != nil {
		return false
	}

	_, exists := records[postID]
	return exists
}

// Add persists one downloaded post. Re-adding an existing post overwrites
// its record.
func Add(record *Record) error {
	records, err := Get()
	if err != nil {
		return err
	}

	records[record.PostID] = record
	return cacher.Set(records)
}

// IDs returns the identifiers of every downloaded post.
func IDs() ([]string, error) {
	records, err := Get()
	if err != nil {
		return nil, err
	}

	return lo.Keys(records), nil
}

// Clear removes every record from the ledger.
func Clear() error {
	return cacher.Set(make(map[string]*Record))
}
