// Package filename implements the naming policy for downloaded media:
// pattern expansion for file names and destination folders, and the
// timestamp format shared by both.
package filename

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/redgrab-cli/redgrab/key"
	"github.com/redgrab-cli/redgrab/util"
	"github.com/spf13/viper"
)

// timestampLayout orders components so lexicographic and chronological
// sort agree.
const timestampLayout = "2006-01-02-15-04-05"

// Timestamp formats a moment for embedding in file and folder names.
func Timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// Generate expands the configured filename pattern for one download and
// appends the extension. Every occurrence of a placeholder is replaced, so
// patterns may repeat them. Only the substituted values are sanitized; the
// pattern's literal text, including unresolved tokens, survives verbatim.
func Generate(subreddit, stem, extension string, now time.Time) string {
	pattern := viper.GetString(key.DownloadsFilenamePattern)

	return expand(pattern, util.SanitizeFilename(subreddit), util.SanitizeFilename(stem), now) + "." + extension
}

// ExpandFolder expands the configured downloads folder pattern for one
// download. The result is a relative path under the downloads root; path
// separators inside the pattern survive expansion.
func ExpandFolder(subreddit, stem string, now time.Time) string {
	pattern := viper.GetString(key.DownloadsFolder)

	// Values are sanitized before expansion so a separator inside them
	// cannot introduce a path segment; only the pattern's own separators
	// survive, and its literal text stays untouched.
	expanded := expand(pattern, util.SanitizeFilename(subreddit), util.SanitizeFilename(stem), now)
	return path.Join(strings.Split(expanded, "/")...)
}

// GalleryFolder names the per-gallery subfolder grouping a multi-image
// post's files.
func GalleryFolder(subreddit string, now time.Time) string {
	return util.SanitizeFilename(subreddit + "_gallery_" + Timestamp(now))
}

func expand(pattern, subreddit, stem string, now time.Time) string {
	replacer := strings.NewReplacer(
		"{subreddit}", subreddit,
		"{timestamp}", Timestamp(now),
		"{filename}", stem,
	)
	return replacer.Replace(pattern)
}

// StemFromURL derives a filename stem from a source URL, ignoring query
// parameters and the extension. URLs with no usable path component yield
// "file".
func StemFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" || parsed.Path == "/" {
		return "file"
	}

	stem := util.FileStem(path.Base(parsed.Path))
	if stem == "" || stem == "." {
		return "file"
	}
	return stem
}
