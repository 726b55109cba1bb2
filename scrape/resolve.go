package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/redgrab-cli/redgrab/hls"
	"github.com/redgrab-cli/redgrab/log"
)

// ErrNoMedia signals that a container yielded no downloadable source.
var ErrNoMedia = errors.New("no downloadable media found")

// canonicalImageHost prefixes full-resolution reddit image URLs.
const canonicalImageHost = "https://i.redd.it/"

// redgifsIframeRe extracts the embedded clip identifier from the provider's
// iframe HTML blob.
var redgifsIframeRe = regexp.MustCompile(`src="[^"]*redgifs\.com/ifr/([^"?]+)`)

// ResolveSourceURLs extracts the best-quality downloadable URL(s) for a
// classified media container. The returned slice is never empty on success;
// failures are reported as errors, never as an empty-but-successful result.
func (l *Locator) ResolveSourceURLs(ctx context.Context, media Media) ([]string, error) {
	// A recognized embed provider overrides the kind dispatch entirely.
	if embedURL, ok := l.redgifsURL(media.Selection); ok {
		return []string{embedURL}, nil
	}

	switch media.Kind {
	case KindMultipleImages:
		urls := l.galleryImageURLs(media.Selection)
		if len(urls) == 0 {
			return nil, fmt.Errorf("%w: empty gallery", ErrNoMedia)
		}
		return urls, nil

	case KindSingleImage:
		url, ok := l.singleImageURL(media.Selection)
		if !ok {
			return nil, fmt.Errorf("%w: no image element", ErrNoMedia)
		}
		return []string{url}, nil

	case KindVideo:
		url, err := l.videoURL(ctx, media.Selection)
		if err != nil {
			return nil, err
		}
		return []string{url}, nil

	case KindEmbed:
		// Embeds from unrecognized providers are not downloadable.
		return nil, fmt.Errorf("%w: unrecognized embed provider", ErrNoMedia)

	default:
		return nil, fmt.Errorf("%w: unknown media kind %q", ErrNoMedia, media.Kind)
	}
}

// redgifsURL derives a direct stream manifest URL from a RedGIFs embed,
// when one is present inside (or at) the given container.
func (l *Locator) redgifsURL(container *goquery.Selection) (string, bool) {
	embed := container
	if !embed.Is(l.markers.Embed) {
		embed = container.Find(l.markers.Embed).First()
	}
	if embed.Length() == 0 {
		return "", false
	}

	if embed.AttrOr("providername", "") != "RedGIFs" {
		return "", false
	}

	html := embed.AttrOr("html", "")
	if html == "" {
		return "", false
	}

	match := redgifsIframeRe.FindStringSubmatch(html)
	if match == nil {
		return "", false
	}

	return fmt.Sprintf("https://api.redgifs.com/v2/gifs/%s/hd.m3u8", match[1]), true
}

// galleryImageURLs collects one URL per gallery list item, preferring the
// figure's nested image over the lower fidelity background one.
func (l *Locator) galleryImageURLs(container *goquery.Selection) []string {
	var urls []string

	container.Find("ul li").Each(func(_ int, li *goquery.Selection) {
		if src := li.Find("figure img").First().AttrOr("src", ""); src != "" {
			urls = append(urls, src)
		}
	})

	return urls
}

// singleImageURL prefers the hidden zoomable image carrying the original
// full resolution, falling back to the inline preview.
func (l *Locator) singleImageURL(container *goquery.Selection) (string, bool) {
	zoomable := container.Find(".lightboxed-content img").First()
	if src := zoomable.AttrOr("src", ""); strings.HasPrefix(src, canonicalImageHost) {
		return src, true
	}

	preview := container.Find("img").First()
	if src := preview.AttrOr("src", ""); src != "" {
		return src, true
	}
	return "", false
}

// packagedMedia mirrors the pre-packaged renditions JSON attached to video
// players that carry no manifest URL.
type packagedMedia struct {
	PlaybackMp4s struct {
		Permutations []struct {
			Source struct {
				URL        string `json:"url"`
				Dimensions struct {
					Width  int `json:"width"`
					Height int `json:"height"`
				} `json:"dimensions"`
			} `json:"source"`
		} `json:"permutations"`
	} `json:"playbackMp4s"`
}

// videoURL resolves a video player element to one downloadable reference.
//
// A direct adaptive manifest src is preferred: RedGIFs manifests pass
// through untouched (the orchestrator performs byte-range assembly), reddit
// manifests are fetched and reduced to the best video and audio variant
// pair, joined as "video,audio". Players without a manifest fall back to
// the packaged renditions JSON, picking the widest permutation.
func (l *Locator) videoURL(ctx context.Context, element *goquery.Selection) (string, error) {
	if src := element.AttrOr("src", ""); strings.Contains(src, ".m3u8") {
		if strings.Contains(src, "api.redgifs.com") {
			return src, nil
		}

		playlist, err := l.fetcher.FetchText(ctx, src)
		if err != nil {
			return "", fmt.Errorf("fetch manifest: %w", err)
		}

		videoURL, audioURL := hls.SelectBestStreams(playlist, src)
		if videoURL == "" {
			return "", fmt.Errorf("%w: manifest has no variants", ErrNoMedia)
		}
		if audioURL == "" {
			return videoURL, nil
		}
		return videoURL + "," + audioURL, nil
	}

	packaged := element.AttrOr("packaged-media-json", "")
	if packaged == "" {
		return "", fmt.Errorf("%w: neither manifest nor packaged media", ErrNoMedia)
	}

	var parsed packagedMedia
	if err := json.Unmarshal([]byte(packaged), &parsed); err != nil {
		log.Warnf("malformed packaged media json: %v", err)
		return "", fmt.Errorf("%w: malformed packaged media", ErrNoMedia)
	}

	permutations := parsed.PlaybackMp4s.Permutations
	if len(permutations) == 0 {
		return "", fmt.Errorf("%w: no mp4 sources", ErrNoMedia)
	}

	best := permutations[0]
	for _, p := range permutations[1:] {
		if p.Source.Dimensions.Width > best.Source.Dimensions.Width {
			best = p
		}
	}
	return best.Source.URL, nil
}
