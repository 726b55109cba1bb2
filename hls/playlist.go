// Package hls implements parsing of HTTP Live Streaming playlists as emitted
// by reddit's video pipeline and the RedGIFs embed provider.
//
// Parsing is pure and total: malformed or incomplete playlists yield a
// descriptor with empty fields, never an error. Only the two dialects the
// source platforms actually emit are understood; there is no live-stream,
// adaptive-switching or DRM support.
package hls

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ByteRange addresses a contiguous chunk of a remote container file.
type ByteRange struct {
	Offset int64
	Length int64
}

// End returns the inclusive last byte offset of the range.
func (r ByteRange) End() int64 {
	return r.Offset + r.Length - 1
}

// String renders the range in the playlist's "length@offset" notation.
func (r ByteRange) String() string {
	return fmt.Sprintf("%d@%d", r.Length, r.Offset)
}

// VideoVariant describes one renditions entry of a master playlist.
type VideoVariant struct {
	// Vertical resolution used as the quality indicator.
	Height int
	URI    string
}

// AudioVariant describes one audio media entry of a master playlist.
type AudioVariant struct {
	// Numeric GROUP-ID used as a quality rank.
	GroupID int
	URI     string
}

// Segment is a byte-range-addressed chunk of a segmented stream.
type Segment struct {
	URI       string
	ByteRange ByteRange
}

// PlaylistDescriptor is the structured form of a parsed playlist.
// Segment ordering is playback order; byte ranges are taken from the
// manifest as declared and not independently verified.
type PlaylistDescriptor struct {
	VideoVariants []VideoVariant
	AudioVariants []AudioVariant
	InitSegment   *Segment
	Segments      []Segment
}

var (
	resolutionRe = regexp.MustCompile(`RESOLUTION=(\d+)x(\d+)`)
	uriRe        = regexp.MustCompile(`URI="([^"]+)"`)
	byteRangeRe  = regexp.MustCompile(`BYTERANGE="([^"]+)"`)
	groupIDRe    = regexp.MustCompile(`GROUP-ID="(\d+)"`)
)

// Parse scans playlist text and extracts every variant and segment
// declaration it recognizes. Marker lines with no matching follow-up line
// are skipped, not errors.
func Parse(text string) PlaylistDescriptor {
	var desc PlaylistDescriptor

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		switch {
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF"):
			match := resolutionRe.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			if i+1 >= len(lines) || lines[i+1] == "" || strings.HasPrefix(lines[i+1], "#") {
				continue
			}
			height, _ := strconv.Atoi(match[2])
			desc.VideoVariants = append(desc.VideoVariants, VideoVariant{
				Height: height,
				URI:    lines[i+1],
			})

		case strings.HasPrefix(line, "#EXT-X-MEDIA") && strings.Contains(line, "TYPE=AUDIO"):
			uri := uriRe.FindStringSubmatch(line)
			if uri == nil {
				continue
			}
			var groupID int
			if group := groupIDRe.FindStringSubmatch(line); group != nil {
				groupID, _ = strconv.Atoi(group[1])
			}
			desc.AudioVariants = append(desc.AudioVariants, AudioVariant{
				GroupID: groupID,
				URI:     uri[1],
			})

		case strings.HasPrefix(line, "#EXT-X-MAP:"):
			uri := uriRe.FindStringSubmatch(line)
			br := byteRangeRe.FindStringSubmatch(line)
			if uri == nil || br == nil {
				continue
			}
			byteRange, err := ParseByteRange(br[1])
			if err != nil {
				continue
			}
			desc.InitSegment = &Segment{URI: uri[1], ByteRange: byteRange}

		case strings.HasPrefix(line, "#EXT-X-BYTERANGE:"):
			byteRange, err := ParseByteRange(strings.TrimPrefix(line, "#EXT-X-BYTERANGE:"))
			if err != nil {
				continue
			}
			// The byte-range declaration pairs with the immediately
			// following URI line; consume both.
			if i+1 >= len(lines) || lines[i+1] == "" || strings.HasPrefix(lines[i+1], "#") {
				continue
			}
			desc.Segments = append(desc.Segments, Segment{
				URI:       lines[i+1],
				ByteRange: byteRange,
			})
			i++
		}
	}

	return desc
}

// ParseByteRange parses the playlist "length@offset" notation.
func ParseByteRange(s string) (ByteRange, error) {
	parts := strings.SplitN(s, "@", 2)
	if len(parts) != 2 {
		return ByteRange{}, fmt.Errorf("malformed byte range %q", s)
	}

	length, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ByteRange{}, fmt.Errorf("malformed byte range length %q: %w", s, err)
	}

	offset, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ByteRange{}, fmt.Errorf("malformed byte range offset %q: %w", s, err)
	}

	if length < 0 || offset < 0 {
		return ByteRange{}, fmt.Errorf("negative byte range %q", s)
	}

	return ByteRange{Offset: offset, Length: length}, nil
}

// BestVideo selects the variant with the greatest height.
// Ties resolve to the first-encountered variant.
func (d PlaylistDescriptor) BestVideo() (VideoVariant, bool) {
	var best VideoVariant
	found := false
	for _, v := range d.VideoVariants {
		if !found || v.Height > best.Height {
			best = v
			found = true
		}
	}
	return best, found
}

// BestAudio selects the variant with the greatest numeric GROUP-ID.
// This is a quality heuristic observed from reddit's packager, where group
// identifiers rank bitrates; it is not a protocol guarantee and may not
// generalize to other manifest producers. Ties resolve to the
// first-encountered variant.
func (d PlaylistDescriptor) BestAudio() (AudioVariant, bool) {
	var best AudioVariant
	found := false
	for _, a := range d.AudioVariants {
		if !found || a.GroupID > best.GroupID {
			best = a
			found = true
		}
	}
	return best, found
}

// ResolveURI resolves a possibly relative playlist URI against the playlist's
// own URL. Unparseable inputs fall back to the raw reference.
func ResolveURI(baseURL, ref string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ref
	}
	resolved, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return resolved.String()
}

// SelectBestStreams parses a master playlist and returns the absolute URLs of
// the highest quality video and audio variants. The audio URL is empty when
// the playlist declares no audio media.
func SelectBestStreams(playlistText, playlistURL string) (videoURL, audioURL string) {
	desc := Parse(playlistText)

	if video, ok := desc.BestVideo(); ok {
		videoURL = ResolveURI(playlistURL, video.URI)
	}
	if audio, ok := desc.BestAudio(); ok {
		audioURL = ResolveURI(playlistURL, audio.URI)
	}
	return videoURL, audioURL
}
