// Package batch drives mass scraping of a feed: repeated scan passes over
// the page markup, per-post downloads paced by a fixed delay, ledger
// deduplication, and cooperative cancellation between posts and passes.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/redgrab-cli/redgrab/download"
	"github.com/redgrab-cli/redgrab/filename"
	"github.com/redgrab-cli/redgrab/key"
	"github.com/redgrab-cli/redgrab/ledger"
	"github.com/redgrab-cli/redgrab/log"
	"github.com/redgrab-cli/redgrab/scrape"
	"github.com/spf13/viper"
)

// State names the scraper's current phase.
type State string

const (
	StateIdle        State = "idle"
	StateScanning    State = "scanning"
	StateDownloading State = "downloading"
)

// Item is one unprocessed media candidate found during a scan pass.
type Item struct {
	PostID    string
	Kind      scrape.Kind
	URLs      []string
	Subreddit string
	Title     string
}

// Outcome records how one item ended.
type Outcome struct {
	PostID    string
	Kind      scrape.Kind
	Subreddit string
	Saved     []string
	Error     string
}

// Report aggregates a whole run.
type Report struct {
	Scans      int
	Found      int
	Downloaded int
	Failed     int
	Skipped    int
	Items      []Outcome
}

// PageSource supplies feed markup and pagination to a run. LoadMore and
// Highlight are best-effort; a source that cannot extend the feed or point
// at a post simply does nothing.
type PageSource interface {
	Scan(ctx context.Context) (*goquery.Document, string, error)
	LoadMore(ctx context.Context) error
	Highlight(postID string)
}

// Scraper runs the batch loop over one PageSource.
type Scraper struct {
	locator    *scrape.Locator
	downloader *download.Downloader
	source     PageSource
	onState    func(State)

	// attempted tracks posts already tried this run, success or failure,
	// so a permanently failing post cannot keep a run alive forever.
	// Cross-run deduplication stays in the ledger, which only successful
	// downloads enter.
	attempted map[string]struct{}
}

// New builds a Scraper over the given collaborators.
func New(locator *scrape.Locator, downloader *download.Downloader, source PageSource) *Scraper {
	return &Scraper{
		locator:    locator,
		downloader: downloader,
		source:     source,
		onState:    func(State) {},
		attempted:  make(map[string]struct{}),
	}
}

// OnState registers a callback invoked on every phase change.
func (s *Scraper) OnState(callback func(State)) {
	s.onState = callback
}

// Run scans and downloads until the feed stops yielding new posts for the
// configured number of consecutive passes, or the context is cancelled.
// Cancellation is honored between posts and between passes only; an
// in-flight fetch or remux finishes first. The report covers whatever
// completed before return, also on error.
func (s *Scraper) Run(ctx context.Context) (Report, error) {
	var report Report

	maxIdle := viper.GetInt(key.ScrapeMaxIdleScans)
	postDelay := time.Duration(viper.GetInt(key.ScrapePostDelay)) * time.Millisecond
	rescanDelay := time.Duration(viper.GetInt(key.ScrapeRescanDelay)) * time.Millisecond

	defer s.onState(StateIdle)

	idle := 0
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		s.onState(StateScanning)
		items, err := s.scanPass(ctx, &report)
		if err != nil {
			return report, err
		}
		report.Scans++
		report.Found += len(items)

		if len(items) == 0 {
			idle++
			if idle >= maxIdle {
				log.Infof("no new posts after %d scans, stopping", idle)
				return report, nil
			}

			if err := s.source.LoadMore(ctx); err != nil {
				log.Warnf("load more failed: %v", err)
			}
			if !sleep(ctx, rescanDelay) {
				return report, ctx.Err()
			}
			continue
		}
		idle = 0

		s.onState(StateDownloading)
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			s.source.Highlight(item.PostID)
			s.processItem(ctx, item, &report)

			if i < len(items)-1 && !sleep(ctx, postDelay) {
				return report, ctx.Err()
			}
		}

		if !sleep(ctx, rescanDelay) {
			return report, ctx.Err()
		}
	}
}

// scanPass classifies every post on the page and resolves the unprocessed
// ones to download candidates. Posts already in the ledger or already
// attempted this run are skipped; resolution failures consume the post
// without aborting the pass.
func (s *Scraper) scanPass(ctx context.Context, report *Report) ([]Item, error) {
	doc, pageURL, err := s.source.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan page: %w", err)
	}

	var items []Item
	s.locator.Posts(doc).Each(func(_ int, post *goquery.Selection) {
		media, ok := s.locator.Classify(post).Get()
		if !ok {
			return
		}

		postID := scrape.PostIdentifier(post)
		if _, tried := s.attempted[postID]; tried || ledger.Contains(postID) {
			report.Skipped++
			return
		}

		urls, err := s.locator.ResolveSourceURLs(ctx, media)
		if err != nil {
			log.Warnf("post %s: %v", postID, err)
			s.attempted[postID] = struct{}{}
			report.Failed++
			report.Items = append(report.Items, Outcome{
				PostID: postID,
				Kind:   media.Kind,
				Error:  err.Error(),
			})
			return
		}

		items = append(items, Item{
			PostID:    postID,
			Kind:      media.Kind,
			URLs:      urls,
			Subreddit: scrape.SubredditName(post, pageURL),
			Title:     scrape.PostTitle(post),
		})
	})

	return items, nil
}

// processItem downloads one item and records the outcome. The ledger is
// only written after a successful download.
func (s *Scraper) processItem(ctx context.Context, item Item, report *Report) {
	s.attempted[item.PostID] = struct{}{}

	outcome := Outcome{PostID: item.PostID, Kind: item.Kind, Subreddit: item.Subreddit}

	saved, err := s.downloadItem(ctx, item)
	if err != nil {
		log.Errorf("post %s: %v", item.PostID, err)
		report.Failed++
		outcome.Error = err.Error()
		report.Items = append(report.Items, outcome)
		return
	}

	report.Downloaded++
	outcome.Saved = saved
	report.Items = append(report.Items, outcome)

	record := &ledger.Record{
		PostID:       item.PostID,
		Subreddit:    item.Subreddit,
		DownloadedAt: filename.Timestamp(time.Now()),
	}
	if err := ledger.Add(record); err != nil {
		log.Warnf("ledger write for %s failed: %v", item.PostID, err)
	}
}

func (s *Scraper) downloadItem(ctx context.Context, item Item) ([]string, error) {
	request := download.Request{
		URLs:      item.URLs,
		Subreddit: item.Subreddit,
		Title:     item.Title,
	}

	switch item.Kind {
	case scrape.KindVideo, scrape.KindEmbed:
		saved, err := s.downloader.Video(ctx, request)
		if err != nil {
			return nil, err
		}
		return []string{saved}, nil
	default:
		return s.downloader.Images(ctx, request)
	}
}

// sleep waits for d or until cancellation, reporting whether the full
// delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
