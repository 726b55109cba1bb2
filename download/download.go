// Package download turns resolved source URLs into files on disk: it
// fetches media, runs adaptive streams through the remux engine, applies
// caption overlays when configured, and names everything through the
// filename policy.
package download

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/redgrab-cli/redgrab/ffmpeg"
	"github.com/redgrab-cli/redgrab/filename"
	"github.com/redgrab-cli/redgrab/hls"
	"github.com/redgrab-cli/redgrab/key"
	"github.com/redgrab-cli/redgrab/log"
	"github.com/redgrab-cli/redgrab/network"
	"github.com/redgrab-cli/redgrab/overlay"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// Request describes one post's media to download.
type Request struct {
	URLs      []string
	Subreddit string
	Title     string
}

// Downloader orchestrates fetching, remuxing, overlays and saving.
type Downloader struct {
	fetcher   *network.Fetcher
	saver     Saver
	newEngine func() (*ffmpeg.Engine, error)
	now       func() time.Time
}

// New builds a Downloader saving under the downloads root.
func New() *Downloader {
	return &Downloader{
		fetcher:   network.NewBrowserFetcher(),
		saver:     DiskSaver{},
		newEngine: ffmpeg.New,
		now:       time.Now,
	}
}

// NewWith builds a Downloader with explicit collaborators.
func NewWith(fetcher *network.Fetcher, saver Saver, newEngine func() (*ffmpeg.Engine, error)) *Downloader {
	return &Downloader{
		fetcher:   fetcher,
		saver:     saver,
		newEngine: newEngine,
		now:       time.Now,
	}
}

// Images downloads every image of a request concurrently and returns the
// saved paths in request order. Multi-image requests get a dedicated
// gallery folder and index-prefixed names when gallery folders are
// enabled.
func (d *Downloader) Images(ctx context.Context, request Request) ([]string, error) {
	now := d.now()

	folder := filename.ExpandFolder(request.Subreddit, "", now)
	grouped := viper.GetBool(key.DownloadsGalleryFolders) && len(request.URLs) > 1
	if grouped {
		folder = path.Join(folder, filename.GalleryFolder(request.Subreddit, now))
	}

	saved := make([]string, len(request.URLs))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, url := range request.URLs {
		group.Go(func() error {
			result, err := d.fetcher.Fetch(groupCtx, url)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", url, err)
			}

			data, extension := d.captionImage(result.Bytes, result.Extension, request.Title)

			name := filename.Generate(request.Subreddit, filename.StemFromURL(url), extension, now)
			if grouped {
				name = fmt.Sprintf("%d_%s", i+1, name)
			}

			location, err := d.saver.Save(path.Join(folder, name), data)
			if err != nil {
				return err
			}

			saved[i] = location
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return saved, nil
}

// captionImage burns the post title into an image when overlays are
// enabled. Failures fall back to the original bytes; animated gifs are
// never captioned.
func (d *Downloader) captionImage(data []byte, extension, title string) ([]byte, string) {
	if !viper.GetBool(key.OverlayImages) || title == "" || extension == "gif" {
		return data, extension
	}

	captioned, err := overlay.Image(data, title)
	if err != nil {
		log.Warnf("image overlay failed, saving original: %v", err)
		return data, extension
	}
	return captioned, "png"
}

// Video downloads a request's single video source and returns the saved
// path. Adaptive manifests are assembled through the remux engine; plain
// mp4 URLs are fetched directly.
func (d *Downloader) Video(ctx context.Context, request Request) (string, error) {
	if len(request.URLs) != 1 {
		return "", fmt.Errorf("video request carries %d urls, want 1", len(request.URLs))
	}
	source := request.URLs[0]
	now := d.now()

	data, err := d.videoBytes(ctx, source)
	if err != nil {
		return "", err
	}

	data = d.captionVideo(ctx, data, request.Title)

	stem := filename.StemFromURL(strings.Split(source, ",")[0])
	name := filename.Generate(request.Subreddit, stem, "mp4", now)
	folder := filename.ExpandFolder(request.Subreddit, "", now)

	return d.saver.Save(path.Join(folder, name), data)
}

func (d *Downloader) videoBytes(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.Contains(source, ".m3u8") && strings.Contains(source, "api.redgifs.com"):
		return d.assembleByteRangeStream(ctx, source)
	case strings.Contains(source, ".m3u8"):
		return d.assembleStreamPair(ctx, source)
	default:
		result, err := d.fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		return result.Bytes, nil
	}
}

// assembleByteRangeStream downloads a single-file stream split into byte
// ranges, in declared order, and remuxes the concatenation into mp4.
func (d *Downloader) assembleByteRangeStream(ctx context.Context, manifestURL string) ([]byte, error) {
	playlist, err := d.fetcher.FetchText(ctx, manifestURL)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}

	descriptor := hls.Parse(playlist)
	if descriptor.InitSegment == nil && len(descriptor.Segments) == 0 {
		return nil, fmt.Errorf("manifest %s declares no segments", manifestURL)
	}

	var segments [][]byte
	if init := descriptor.InitSegment; init != nil {
		data, err := d.fetchSegment(ctx, manifestURL, *init)
		if err != nil {
			return nil, err
		}
		segments = append(segments, data)
	}
	for _, segment := range descriptor.Segments {
		data, err := d.fetchSegment(ctx, manifestURL, segment)
		if err != nil {
			return nil, err
		}
		segments = append(segments, data)
	}

	engine, err := d.newEngine()
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	return engine.ByteRangeRemux(ctx, segments)
}

func (d *Downloader) fetchSegment(ctx context.Context, manifestURL string, segment hls.Segment) ([]byte, error) {
	uri := hls.ResolveURI(manifestURL, segment.URI)

	data, err := d.fetcher.FetchRange(ctx, uri, segment.ByteRange.Offset, segment.ByteRange.Length)
	if err != nil {
		return nil, fmt.Errorf("fetch segment %s: %w", segment.ByteRange, err)
	}
	return data, nil
}

// assembleStreamPair downloads a "video,audio" variant pair and joins the
// elementary streams into one mp4. The manifest URLs point at their media
// counterparts by extension substitution.
func (d *Downloader) assembleStreamPair(ctx context.Context, source string) ([]byte, error) {
	videoURL, audioURL, _ := strings.Cut(source, ",")

	video, err := d.fetcher.Fetch(ctx, strings.Replace(videoURL, ".m3u8", ".ts", 1))
	if err != nil {
		return nil, fmt.Errorf("fetch video stream: %w", err)
	}

	var audio []byte
	if audioURL = strings.TrimSpace(audioURL); audioURL != "" {
		result, err := d.fetcher.Fetch(ctx, strings.Replace(audioURL, ".m3u8", ".aac", 1))
		if err != nil {
			return nil, fmt.Errorf("fetch audio stream: %w", err)
		}
		audio = result.Bytes
	}

	engine, err := d.newEngine()
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	return engine.RemuxJoin(ctx, video.Bytes, audio)
}

// captionVideo burns the post title into a video when overlays are
// enabled. Failures fall back to the original bytes.
func (d *Downloader) captionVideo(ctx context.Context, data []byte, title string) []byte {
	if !viper.GetBool(key.OverlayVideos) || title == "" {
		return data
	}

	engine, err := d.newEngine()
	if err != nil {
		log.Warnf("video overlay unavailable, saving original: %v", err)
		return data
	}
	defer engine.Close()

	captioned, err := overlay.Video(ctx, engine, data, title)
	if err != nil {
		log.Warnf("video overlay failed, saving original: %v", err)
		return data
	}
	return captioned
}
