package overlay

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redgrab-cli/redgrab/ffmpeg"
	"github.com/redgrab-cli/redgrab/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func encodeTestImage(t *testing.T, width, height int) []byte {
	t.Helper()

	src := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImage(t *testing.T) {
	Convey("When burning a caption into an image", t, func() {
		source := encodeTestImage(t, 400, 100)

		Convey("The result grows by a white band above the frame", func() {
			out, err := Image(source, "a short caption")
			So(err, ShouldBeNil)

			decoded, err := png.Decode(bytes.NewReader(out))
			So(err, ShouldBeNil)
			So(decoded.Bounds().Dx(), ShouldEqual, 400)
			So(decoded.Bounds().Dy(), ShouldBeGreaterThan, 100)

			r, g, b, _ := decoded.At(0, 0).RGBA()
			So(r, ShouldEqual, uint32(0xffff))
			So(g, ShouldEqual, uint32(0xffff))
			So(b, ShouldEqual, uint32(0xffff))
		})

		Convey("A long caption wraps onto more lines and a taller band", func() {
			short, err := Image(source, "one")
			So(err, ShouldBeNil)
			long, err := Image(source, strings.Repeat("several words that must wrap ", 5))
			So(err, ShouldBeNil)

			shortImg, err := png.Decode(bytes.NewReader(short))
			So(err, ShouldBeNil)
			longImg, err := png.Decode(bytes.NewReader(long))
			So(err, ShouldBeNil)

			So(longImg.Bounds().Dy(), ShouldBeGreaterThan, shortImg.Bounds().Dy())
		})

		Convey("Undecodable bytes propagate an error", func() {
			_, err := Image([]byte("not an image"), "caption")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestBoxForCaption(t *testing.T) {
	Convey("Caption box sizing steps with text length", t, func() {
		So(boxForCaption(strings.Repeat("x", 81)), ShouldResemble, captionBox{Height: 150, FontSize: 28, CharsByLine: 30})
		So(boxForCaption(strings.Repeat("x", 51)), ShouldResemble, captionBox{Height: 120, FontSize: 28, CharsByLine: 30})
		So(boxForCaption(strings.Repeat("x", 31)), ShouldResemble, captionBox{Height: 100, FontSize: 28, CharsByLine: 30})
		So(boxForCaption("short"), ShouldResemble, captionBox{Height: 90, FontSize: 32, CharsByLine: 30})
	})
}

func TestWrapCaption(t *testing.T) {
	Convey("When wrapping captions", t, func() {
		Convey("A short caption stays on one line", func() {
			So(wrapCaption("tiny", 30), ShouldResemble, []string{"tiny"})
		})

		Convey("Empty input yields no lines", func() {
			So(wrapCaption("   ", 30), ShouldBeEmpty)
		})

		Convey("Lines break near the limit", func() {
			lines := wrapCaption("aaaaaaaaaa bbbbbbbbbb cccccccccc dddddddddd", 30)

			So(len(lines), ShouldEqual, 2)
			So(lines[0], ShouldEqual, "aaaaaaaaaa bbbbbbbbbb cccccccccc")
			So(lines[1], ShouldEqual, "dddddddddd")
		})

		Convey("A line under 80% of the limit absorbs the next word", func() {
			lines := wrapCaption("abcdefghijklmnopqrst uvwxyzabcdefg", 30)

			So(lines, ShouldResemble, []string{"abcdefghijklmnopqrst uvwxyzabcdefg"})
		})
	})
}

func TestLineOffset(t *testing.T) {
	Convey("Line offsets bias the first line downward", t, func() {
		So(lineOffset(90, 1, 0), ShouldEqual, "36")
		So(lineOffset(100, 2, 0), ShouldEqual, "10")
		So(lineOffset(100, 2, 1), ShouldEqual, "50")
	})
}

func TestVideo(t *testing.T) {
	Convey("When burning a caption into a video", t, func() {
		runner := &captureRunner{output: []byte("captioned")}
		engine, err := ffmpeg.NewWithRunner(runner)
		So(err, ShouldBeNil)
		defer engine.Close()

		out, err := Video(context.Background(), engine, []byte("raw video"), "a caption that is fairly long to wrap")
		So(err, ShouldBeNil)
		So(out, ShouldResemble, []byte("captioned"))

		Convey("The filtergraph pads with a white box and draws each line", func() {
			graph := runner.filtergraph()
			So(graph, ShouldStartWith, "pad=iw:ih+100:0:100:white")
			So(strings.Count(graph, "drawtext="), ShouldEqual, 2)
			So(graph, ShouldContainSubstring, "fontfile=caption.ttf")
		})

		Convey("Audio is copied and video re-encoded", func() {
			So(runner.argv, ShouldContain, "libx264")
			joined := strings.Join(runner.argv, " ")
			So(joined, ShouldContainSubstring, "-c:a copy")
			So(joined, ShouldContainSubstring, "-crf 28")
		})
	})
}

// captureRunner records the argv it was invoked with and materializes the
// declared output file.
type captureRunner struct {
	argv   []string
	output []byte
}

func (r *captureRunner) Run(_ context.Context, dir string, argv []string) error {
	r.argv = argv

	outputName := argv[len(argv)-1]
	return filesystem.API().WriteFile(filepath.Join(dir, outputName), r.output, 0o644)
}

func (r *captureRunner) filtergraph() string {
	for i, arg := range r.argv {
		if arg == "-vf" && i+1 < len(r.argv) {
			return r.argv[i+1]
		}
	}
	return ""
}
