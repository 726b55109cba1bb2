package filename

import (
	"testing"
	"time"

	"github.com/redgrab-cli/redgrab/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

var testMoment = time.Date(2024, time.March, 7, 14, 5, 9, 0, time.UTC)

func TestTimestamp(t *testing.T) {
	Convey("Timestamps sort chronologically as text", t, func() {
		So(Timestamp(testMoment), ShouldEqual, "2024-03-07-14-05-09")

		later := Timestamp(testMoment.Add(time.Second))
		So(Timestamp(testMoment) < later, ShouldBeTrue)
	})
}

func TestGenerate(t *testing.T) {
	Convey("When generating filenames", t, func() {
		viper.Set(key.DownloadsFilenamePattern, "{subreddit}_{timestamp}_{filename}")

		Convey("Every placeholder expands", func() {
			name := Generate("earthporn", "sunset", "jpg", testMoment)

			So(name, ShouldEqual, "earthporn_2024-03-07-14-05-09_sunset.jpg")
		})

		Convey("Repeated placeholders all expand", func() {
			viper.Set(key.DownloadsFilenamePattern, "{subreddit}_{subreddit}")

			So(Generate("aww", "x", "png", testMoment), ShouldEqual, "aww_aww.png")
		})

		Convey("Unsafe characters in values are sanitized", func() {
			name := Generate("earth/porn", `what "a" view`, "jpg", testMoment)

			So(name, ShouldNotContainSubstring, "/")
			So(name, ShouldNotContainSubstring, `"`)
			So(name, ShouldEndWith, ".jpg")
		})

		Convey("Unknown tokens are left verbatim", func() {
			viper.Set(key.DownloadsFilenamePattern, "{subreddit}_{unknown}")

			So(Generate("aww", "x", "jpg", testMoment), ShouldEqual, "aww_{unknown}.jpg")
		})
	})
}

func TestExpandFolder(t *testing.T) {
	Convey("When expanding the downloads folder pattern", t, func() {
		viper.Set(key.DownloadsFolder, "Reddit Downloads/{subreddit}")

		Convey("Pattern literals survive, including spaces", func() {
			So(ExpandFolder("cats", "x", testMoment), ShouldEqual, "Reddit Downloads/cats")
		})

		Convey("A subreddit cannot escape its segment", func() {
			So(ExpandFolder("a/b", "x", testMoment), ShouldEqual, "Reddit Downloads/a_b")
		})
	})
}

func TestGalleryFolder(t *testing.T) {
	Convey("Gallery folders embed subreddit and timestamp", t, func() {
		So(GalleryFolder("aww", testMoment), ShouldEqual, "aww_gallery_2024-03-07-14-05-09")
	})
}

func TestStemFromURL(t *testing.T) {
	Convey("When deriving stems from source urls", t, func() {
		Convey("Query parameters and extension are stripped", func() {
			So(StemFromURL("https://x.test/path/photo123.jpg?x=1"), ShouldEqual, "photo123")
		})

		Convey("A bare host degrades to a generic stem", func() {
			So(StemFromURL("https://x.test/"), ShouldEqual, "file")
		})

		Convey("Garbage input degrades to a generic stem", func() {
			So(StemFromURL("::not a url"), ShouldEqual, "file")
		})
	})
}
