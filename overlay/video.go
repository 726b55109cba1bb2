package overlay

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redgrab-cli/redgrab/ffmpeg"
	"golang.org/x/image/font/gofont/gobold"
)

const captionFontFile = "caption.ttf"

// captionBox sizes the caption band and its type for one video.
type captionBox struct {
	Height      int
	FontSize    int
	CharsByLine int
}

// boxForCaption steps the band height with caption length so long titles
// get room to wrap while short ones stay compact with larger type.
func boxForCaption(text string) captionBox {
	switch length := len(text); {
	case length > 80:
		return captionBox{Height: 150, FontSize: 28, CharsByLine: 30}
	case length > 50:
		return captionBox{Height: 120, FontSize: 28, CharsByLine: 30}
	case length > 30:
		return captionBox{Height: 100, FontSize: 28, CharsByLine: 30}
	default:
		return captionBox{Height: 90, FontSize: 32, CharsByLine: 30}
	}
}

// wrapCaption breaks a caption into lines of roughly limit characters.
// A line only breaks once it has filled at least 80% of the limit, so a
// long word near the boundary stretches its line instead of leaving the
// previous one short.
func wrapCaption(text string, limit int) []string {
	var lines []string
	var current string

	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}

		if len(candidate) > limit && len(current) > 0 {
			if len(current) >= limit*8/10 {
				lines = append(lines, current)
				current = word
				continue
			}
		}
		current = candidate
	}

	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// Video burns a caption band into an encoded video through an ffmpeg
// filtergraph: the frame is padded at the top with a white box and each
// wrapped line is drawn into it. Video is re-encoded, audio is copied.
func Video(ctx context.Context, engine *ffmpeg.Engine, encoded []byte, text string) ([]byte, error) {
	box := boxForCaption(text)
	lines := wrapCaption(text, box.CharsByLine)
	if len(lines) == 0 {
		lines = []string{""}
	}

	if err := engine.WriteFile("input.mp4", encoded); err != nil {
		return nil, err
	}
	defer engine.DeleteFile("input.mp4")

	if err := engine.WriteFile(captionFontFile, gobold.TTF); err != nil {
		return nil, err
	}
	defer engine.DeleteFile(captionFontFile)

	filters := []string{
		fmt.Sprintf("pad=iw:ih+%d:0:%d:white", box.Height, box.Height),
	}
	for i, line := range lines {
		textFile := fmt.Sprintf("temp%d.txt", i)
		if err := engine.WriteFile(textFile, []byte(line)); err != nil {
			return nil, err
		}
		defer engine.DeleteFile(textFile)

		filters = append(filters, fmt.Sprintf(
			"drawtext=textfile=%s:fontcolor=black:fontsize=%d:x=(w-text_w)/2:y=%s:fontfile=%s",
			textFile, box.FontSize, lineOffset(box.Height, len(lines), i), captionFontFile,
		))
	}

	argv := []string{
		"-i", "input.mp4",
		"-vf", strings.Join(filters, ","),
		"-c:a", "copy",
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-crf", "28",
		"-movflags", "+faststart",
		"-threads", "0",
		"output.mp4",
	}
	if err := engine.Run(ctx, argv...); err != nil {
		return nil, err
	}
	defer engine.DeleteFile("output.mp4")

	return engine.ReadFile("output.mp4")
}

// lineOffset computes a line's vertical position inside the caption band.
// The first line is biased downward, strongly when it is the only one.
func lineOffset(boxHeight, lineCount, index int) string {
	bias := 0.2
	if lineCount == 1 {
		bias = 0.4
	}

	position := float64(index)
	if position < bias {
		position = bias
	}

	offset := float64(boxHeight) / float64(lineCount) * position
	return strconv.FormatFloat(offset, 'f', -1, 64)
}
