package scrape

import (
	"encoding/base64"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ProcessedAttr is read first when identifying a post. Nothing here writes
// it; a page-owning driver that annotates its markup with this attribute
// keeps identifiers stable across the scans it submits.
const ProcessedAttr = "data-redgrab-id"

var subredditPathRe = regexp.MustCompile(`/r/([^/]+)`)

// titleSelectors are tried in order when locating a post's title text.
var titleSelectors = []string{
	`a[slot="title"]`,
	`[id^="post-title-"]`,
	`h3[slot="title"]`,
}

// SubredditName determines the subreddit a post belongs to, falling back
// from the post's own subreddit anchor to the page URL and finally to a
// literal "unknown".
func SubredditName(post *goquery.Selection, pageURL string) string {
	anchor := post.Find(`a[data-testid="subreddit-name"]`).First()
	if anchor.Length() > 0 {
		name := strings.TrimSpace(anchor.Text())
		name = strings.TrimPrefix(name, "r/")
		if name != "" {
			return name
		}
	}

	if match := subredditPathRe.FindStringSubmatch(pageURL); match != nil {
		return match[1]
	}

	return "unknown"
}

// PostTitle extracts the post's title text, or "" when no title element
// is present.
func PostTitle(post *goquery.Selection) string {
	for _, selector := range titleSelectors {
		if title := strings.TrimSpace(post.Find(selector).First().Text()); title != "" {
			return title
		}
	}
	return ""
}

// PostIdentifier produces a stable identifier for a post. The marker
// attribute written by a previous scan wins, then the element's native id.
// Posts carrying neither get a digest of their title and author, which is
// stable across scans of the same content. Posts with no usable metadata
// at all get a time-derived identifier, which is unstable but unique
// enough to let the batch proceed.
func PostIdentifier(post *goquery.Selection) string {
	if id := post.AttrOr(ProcessedAttr, ""); id != "" {
		return id
	}

	if id := post.AttrOr("id", ""); id != "" {
		return id
	}

	title := PostTitle(post)
	author := post.AttrOr("author", "")
	if title != "" || author != "" {
		digest := base64.StdEncoding.EncodeToString([]byte(title + "-" + author))
		if len(digest) > 12 {
			digest = digest[:12]
		}
		return "reddit-post-" + digest
	}

	return "reddit-post-fallback-" + time.Now().Format("20060102150405")
}
