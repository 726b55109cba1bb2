package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/redgrab-cli/redgrab/filesystem"
	"github.com/redgrab-cli/redgrab/log"
	"github.com/redgrab-cli/redgrab/network"
)

// URLSource re-fetches a feed URL on every scan pass. The feed server
// decides what a fresh fetch returns, so LoadMore grows the page through
// the listing's paging parameter.
type URLSource struct {
	fetcher *network.Fetcher
	url     string
	page    int
}

func NewURLSource(fetcher *network.Fetcher, url string) *URLSource {
	return &URLSource{fetcher: fetcher, url: url}
}

func (s *URLSource) Scan(ctx context.Context) (*goquery.Document, string, error) {
	url := s.url
	if s.page > 0 {
		separator := "?"
		if strings.Contains(url, "?") {
			separator = "&"
		}
		url = fmt.Sprintf("%s%scount=%d", url, separator, s.page*25)
	}

	html, err := s.fetcher.FetchText(ctx, url)
	if err != nil {
		return nil, "", fmt.Errorf("fetch feed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", fmt.Errorf("parse feed: %w", err)
	}
	return doc, s.url, nil
}

func (s *URLSource) LoadMore(context.Context) error {
	s.page++
	return nil
}

func (s *URLSource) Highlight(postID string) {
	log.Debugf("processing post %s", postID)
}

// FileSource scans a saved page once; it cannot load more.
type FileSource struct {
	path    string
	pageURL string
}

// NewFileSource reads feed markup from disk. pageURL feeds subreddit
// extraction for posts without their own subreddit anchor.
func NewFileSource(path, pageURL string) *FileSource {
	return &FileSource{path: path, pageURL: pageURL}
}

func (s *FileSource) Scan(context.Context) (*goquery.Document, string, error) {
	html, err := filesystem.API().ReadFile(s.path)
	if err != nil {
		return nil, "", fmt.Errorf("read feed file: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil, "", fmt.Errorf("parse feed file: %w", err)
	}
	return doc, s.pageURL, nil
}

func (s *FileSource) LoadMore(context.Context) error {
	return nil
}

func (s *FileSource) Highlight(postID string) {
	log.Debugf("processing post %s", postID)
}
