// Package scrape implements media discovery over a feed page's markup: it
// classifies post media containers and resolves them to downloadable source
// URLs.
//
// The structural markers that drive classification are injected rather than
// hard-coded, so the classifier can be exercised against synthetic documents
// and survives feed markup changes through configuration alone.
package scrape

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/redgrab-cli/redgrab/key"
	"github.com/redgrab-cli/redgrab/network"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Kind identifies the media category of a post container.
type Kind string

const (
	KindVideo          Kind = "video"
	KindSingleImage    Kind = "single-image"
	KindMultipleImages Kind = "multiple-images"
	KindEmbed          Kind = "embed"
)

// Markers holds the structural selectors identifying media containers.
type Markers struct {
	Post        string
	VideoPlayer string
	SingleImage string
	Gallery     string
	Embed       string
}

// MarkersFromConfig loads the marker set from global configuration.
func MarkersFromConfig() Markers {
	return Markers{
		Post:        viper.GetString(key.MarkersPost),
		VideoPlayer: viper.GetString(key.MarkersVideoPlayer),
		SingleImage: viper.GetString(key.MarkersSingleImage),
		Gallery:     viper.GetString(key.MarkersGallery),
		Embed:       viper.GetString(key.MarkersEmbed),
	}
}

// Media is a classified media container within a post.
type Media struct {
	Kind      Kind
	Selection *goquery.Selection
}

// Locator discovers and resolves downloadable media in feed markup.
type Locator struct {
	markers Markers
	fetcher *network.Fetcher
}

// NewLocator constructs a Locator with explicit markers and fetcher.
func NewLocator(markers Markers, fetcher *network.Fetcher) *Locator {
	return &Locator{markers: markers, fetcher: fetcher}
}

// Posts returns every post container in a document.
func (l *Locator) Posts(doc *goquery.Document) *goquery.Selection {
	return doc.Find(l.markers.Post)
}

// Classify determines the media kind of a post container.
// Order is significant: video player, then single image, then gallery
// carousel, then third-party embed; the first matching marker wins when the
// structure is ambiguous.
func (l *Locator) Classify(post *goquery.Selection) mo.Option[Media] {
	if video := post.Find(l.markers.VideoPlayer); video.Length() > 0 {
		return mo.Some(Media{Kind: KindVideo, Selection: video.First()})
	}
	if single := post.Find(l.markers.SingleImage); single.Length() > 0 {
		return mo.Some(Media{Kind: KindSingleImage, Selection: single.First()})
	}
	if gallery := post.Find(l.markers.Gallery); gallery.Length() > 0 {
		return mo.Some(Media{Kind: KindMultipleImages, Selection: gallery.First()})
	}
	if embed := post.Find(l.markers.Embed); embed.Length() > 0 {
		return mo.Some(Media{Kind: KindEmbed, Selection: embed.First()})
	}
	return mo.None[Media]()
}
