package bridge

import (
	"context"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/redgrab-cli/redgrab/download"
	"github.com/redgrab-cli/redgrab/ledger"
	"github.com/redgrab-cli/redgrab/log"
	"github.com/redgrab-cli/redgrab/scrape"
)

// Dispatcher services bridge messages against the pipeline. Downloads are
// serialized: one request is in flight at a time, matching the save
// primitive's pacing expectations.
type Dispatcher struct {
	locator    *scrape.Locator
	downloader *download.Downloader

	// downloadMu serializes downloads; mu guards the status fields so
	// Status stays responsive while a download runs.
	downloadMu sync.Mutex

	mu          sync.Mutex
	state       string
	downloads   int
	loadMores   int
	currentPost string
}

// NewDispatcher builds a Dispatcher over the given collaborators.
func NewDispatcher(locator *scrape.Locator, downloader *download.Downloader) *Dispatcher {
	return &Dispatcher{
		locator:    locator,
		downloader: downloader,
		state:      "idle",
	}
}

// Download services one download request. Pipeline failures come back as
// an unsuccessful response, never as an error.
func (d *Dispatcher) Download(ctx context.Context, request DownloadRequest) DownloadResponse {
	d.downloadMu.Lock()
	defer d.downloadMu.Unlock()

	d.setState("downloading")
	defer d.setState("idle")

	pipelineRequest := download.Request{
		URLs:      request.URLs,
		Subreddit: request.Subreddit,
		Title:     request.Title,
	}

	var saved []string
	var err error
	switch scrape.Kind(request.Kind) {
	case scrape.KindVideo, scrape.KindEmbed:
		var location string
		location, err = d.downloader.Video(ctx, pipelineRequest)
		if err == nil {
			saved = []string{location}
		}
	default:
		saved, err = d.downloader.Images(ctx, pipelineRequest)
	}

	if err != nil {
		log.Errorf("bridge download failed: %v", err)
		return DownloadResponse{Success: false, Message: err.Error()}
	}

	d.mu.Lock()
	d.downloads++
	d.mu.Unlock()

	return DownloadResponse{Success: true, Saved: saved}
}

func (d *Dispatcher) setState(state string) {
	d.mu.Lock()
	d.state = state
	d.mu.Unlock()
}

// Scan discovers unprocessed downloadable posts in submitted markup.
// Individual posts that fail to resolve are logged and dropped; the scan
// itself only fails on unparsable markup.
func (d *Dispatcher) Scan(ctx context.Context, request ScanRequest) (ScanResponse, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(request.HTML))
	if err != nil {
		return ScanResponse{}, err
	}

	var response ScanResponse
	d.locator.Posts(doc).Each(func(_ int, post *goquery.Selection) {
		media, ok := d.locator.Classify(post).Get()
		if !ok {
			return
		}
		response.TotalPosts++

		postID := scrape.PostIdentifier(post)
		if ledger.Contains(postID) {
			return
		}

		urls, err := d.locator.ResolveSourceURLs(ctx, media)
		if err != nil {
			log.Warnf("post %s: %v", postID, err)
			return
		}

		response.Items = append(response.Items, ScanItem{
			PostID:    postID,
			Kind:      string(media.Kind),
			URLs:      urls,
			Subreddit: scrape.SubredditName(post, request.PageURL),
			Title:     scrape.PostTitle(post),
		})
	})

	return response, nil
}

// Highlight notes which post a driver is working on; surfaced through
// Status.
func (d *Dispatcher) Highlight(request HighlightRequest) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.currentPost = request.PostID
}

// LoadMore records a feed-extension request so the page-owning peer can
// pick it up through Status.
func (d *Dispatcher) LoadMore(request LoadMoreRequest) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.loadMores++
	log.Debugf("load more requested for %q", request.PageURL)
}

// Status reports the dispatcher's current activity.
func (d *Dispatcher) Status() StatusResponse {
	d.mu.Lock()
	defer d.mu.Unlock()

	return StatusResponse{
		State:       d.state,
		Downloads:   d.downloads,
		LoadMores:   d.loadMores,
		CurrentPost: d.currentPost,
	}
}
