package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/redgrab-cli/redgrab/network"
	. "github.com/smartystreets/goconvey/convey"
)

var testMarkers = Markers{
	Post:        "shreddit-post",
	VideoPlayer: "shreddit-player-2",
	SingleImage: "shreddit-media-lightbox-listener",
	Gallery:     "gallery-carousel",
	Embed:       "shreddit-embed",
}

func document(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestClassify(t *testing.T) {
	locator := NewLocator(testMarkers, network.NewFetcher())

	Convey("When classifying post containers", t, func() {
		Convey("A post with a video player is a video", func() {
			doc := document(t, `<shreddit-post><shreddit-player-2 src="a.m3u8"></shreddit-player-2></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First())

			So(media.IsPresent(), ShouldBeTrue)
			So(media.MustGet().Kind, ShouldEqual, KindVideo)
		})

		Convey("A post with a lightbox listener is a single image", func() {
			doc := document(t, `<shreddit-post><shreddit-media-lightbox-listener><img src="x.jpg"></shreddit-media-lightbox-listener></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First())

			So(media.IsPresent(), ShouldBeTrue)
			So(media.MustGet().Kind, ShouldEqual, KindSingleImage)
		})

		Convey("A post with a carousel is a gallery", func() {
			doc := document(t, `<shreddit-post><gallery-carousel><ul><li></li></ul></gallery-carousel></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First())

			So(media.IsPresent(), ShouldBeTrue)
			So(media.MustGet().Kind, ShouldEqual, KindMultipleImages)
		})

		Convey("A post with only an embed is an embed", func() {
			doc := document(t, `<shreddit-post><shreddit-embed providername="RedGIFs"></shreddit-embed></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First())

			So(media.IsPresent(), ShouldBeTrue)
			So(media.MustGet().Kind, ShouldEqual, KindEmbed)
		})

		Convey("Video wins over a coexisting single image", func() {
			doc := document(t, `<shreddit-post>
				<shreddit-media-lightbox-listener><img src="x.jpg"></shreddit-media-lightbox-listener>
				<shreddit-player-2 src="a.m3u8"></shreddit-player-2>
			</shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First())

			So(media.MustGet().Kind, ShouldEqual, KindVideo)
		})

		Convey("A post without media yields none", func() {
			doc := document(t, `<shreddit-post><p>text only</p></shreddit-post>`)

			So(locator.Classify(locator.Posts(doc).First()).IsAbsent(), ShouldBeTrue)
		})
	})
}

func TestResolveSourceURLs(t *testing.T) {
	ctx := context.Background()

	Convey("When resolving media to source urls", t, func() {
		locator := NewLocator(testMarkers, network.NewFetcher())

		Convey("A RedGIFs embed resolves to its hd manifest", func() {
			doc := document(t, `<shreddit-post><shreddit-embed providername="RedGIFs" html='&lt;iframe src="https://www.redgifs.com/ifr/braveclip?autoplay=1"&gt;&lt;/iframe&gt;'></shreddit-embed></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First()).MustGet()

			urls, err := locator.ResolveSourceURLs(ctx, media)
			So(err, ShouldBeNil)
			So(urls, ShouldResemble, []string{"https://api.redgifs.com/v2/gifs/braveclip/hd.m3u8"})
		})

		Convey("An embed from another provider is not downloadable", func() {
			doc := document(t, `<shreddit-post><shreddit-embed providername="YouTube" html="x"></shreddit-embed></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First()).MustGet()

			_, err := locator.ResolveSourceURLs(ctx, media)
			So(err, ShouldNotBeNil)
		})

		Convey("A gallery yields one url per item, preferring figure images", func() {
			doc := document(t, `<shreddit-post><gallery-carousel><ul>
				<li><figure><img src="https://i.redd.it/one.jpg"></figure></li>
				<li><figure><img src="https://i.redd.it/two.png"></figure></li>
				<li><div>no image here</div></li>
			</ul></gallery-carousel></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First()).MustGet()

			urls, err := locator.ResolveSourceURLs(ctx, media)
			So(err, ShouldBeNil)
			So(urls, ShouldResemble, []string{"https://i.redd.it/one.jpg", "https://i.redd.it/two.png"})
		})

		Convey("An empty gallery is an error", func() {
			doc := document(t, `<shreddit-post><gallery-carousel><ul></ul></gallery-carousel></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First()).MustGet()

			_, err := locator.ResolveSourceURLs(ctx, media)
			So(err, ShouldNotBeNil)
		})

		Convey("A single image prefers the zoomable original", func() {
			doc := document(t, `<shreddit-post><shreddit-media-lightbox-listener>
				<img src="https://preview.redd.it/small.jpg">
				<div class="lightboxed-content"><img src="https://i.redd.it/full.jpg"></div>
			</shreddit-media-lightbox-listener></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First()).MustGet()

			urls, err := locator.ResolveSourceURLs(ctx, media)
			So(err, ShouldBeNil)
			So(urls, ShouldResemble, []string{"https://i.redd.it/full.jpg"})
		})

		Convey("A single image falls back to the inline preview", func() {
			doc := document(t, `<shreddit-post><shreddit-media-lightbox-listener>
				<img src="https://preview.redd.it/small.jpg">
			</shreddit-media-lightbox-listener></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First()).MustGet()

			urls, err := locator.ResolveSourceURLs(ctx, media)
			So(err, ShouldBeNil)
			So(urls, ShouldResemble, []string{"https://preview.redd.it/small.jpg"})
		})

		Convey("A RedGIFs manifest src passes through untouched", func() {
			doc := document(t, `<shreddit-post><shreddit-player-2 src="https://api.redgifs.com/v2/gifs/braveclip/hd.m3u8"></shreddit-player-2></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First()).MustGet()

			urls, err := locator.ResolveSourceURLs(ctx, media)
			So(err, ShouldBeNil)
			So(urls, ShouldResemble, []string{"https://api.redgifs.com/v2/gifs/braveclip/hd.m3u8"})
		})

		Convey("A reddit manifest is reduced to best video and audio", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(strings.Join([]string{
					"#EXTM3U",
					`#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="5",URI="audio_5.m3u8"`,
					`#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="9",URI="audio_9.m3u8"`,
					"#EXT-X-STREAM-INF:BANDWIDTH=1000,RESOLUTION=640x360",
					"video_360.m3u8",
					"#EXT-X-STREAM-INF:BANDWIDTH=4000,RESOLUTION=1280x720",
					"video_720.m3u8",
				}, "\n")))
			}))
			defer server.Close()

			locator := NewLocator(testMarkers, network.NewFetcherWithClient(server.Client()))
			doc := document(t, `<shreddit-post><shreddit-player-2 src="`+server.URL+`/master.m3u8"></shreddit-player-2></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First()).MustGet()

			urls, err := locator.ResolveSourceURLs(ctx, media)
			So(err, ShouldBeNil)
			So(urls, ShouldResemble, []string{server.URL + "/video_720.m3u8," + server.URL + "/audio_9.m3u8"})
		})

		Convey("Packaged renditions pick the widest permutation", func() {
			const packaged = `{"playbackMp4s":{"permutations":[
				{"source":{"url":"https://v.redd.it/x/360.mp4","dimensions":{"width":640,"height":360}}},
				{"source":{"url":"https://v.redd.it/x/1080.mp4","dimensions":{"width":1920,"height":1080}}},
				{"source":{"url":"https://v.redd.it/x/720.mp4","dimensions":{"width":1280,"height":720}}}
			]}}`
			doc := document(t, `<shreddit-post><shreddit-player-2 packaged-media-json='`+packaged+`'></shreddit-player-2></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First()).MustGet()

			urls, err := locator.ResolveSourceURLs(ctx, media)
			So(err, ShouldBeNil)
			So(urls, ShouldResemble, []string{"https://v.redd.it/x/1080.mp4"})
		})

		Convey("A player with neither manifest nor renditions is an error", func() {
			doc := document(t, `<shreddit-post><shreddit-player-2></shreddit-player-2></shreddit-post>`)
			media := locator.Classify(locator.Posts(doc).First()).MustGet()

			_, err := locator.ResolveSourceURLs(ctx, media)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestPostMetadata(t *testing.T) {
	Convey("When extracting post metadata", t, func() {
		Convey("Subreddit comes from the post's own anchor first", func() {
			doc := document(t, `<shreddit-post><a data-testid="subreddit-name"><span>r/earthporn</span></a></shreddit-post>`)

			So(SubredditName(doc.Find("shreddit-post"), "https://reddit.test/r/other/"), ShouldEqual, "earthporn")
		})

		Convey("Subreddit falls back to the page url path", func() {
			doc := document(t, `<shreddit-post></shreddit-post>`)

			So(SubredditName(doc.Find("shreddit-post"), "https://reddit.test/r/aww/top/"), ShouldEqual, "aww")
		})

		Convey("Subreddit degrades to unknown", func() {
			doc := document(t, `<shreddit-post></shreddit-post>`)

			So(SubredditName(doc.Find("shreddit-post"), "https://reddit.test/home"), ShouldEqual, "unknown")
		})

		Convey("Title is found through the selector cascade", func() {
			doc := document(t, `<shreddit-post><h3 slot="title"> Sunset over the bay </h3></shreddit-post>`)

			So(PostTitle(doc.Find("shreddit-post")), ShouldEqual, "Sunset over the bay")
		})

		Convey("Identifier prefers the processed marker attribute", func() {
			doc := document(t, `<shreddit-post data-redgrab-id="seen-before" id="t3_native"></shreddit-post>`)

			So(PostIdentifier(doc.Find("shreddit-post")), ShouldEqual, "seen-before")
		})

		Convey("Identifier falls back to the native element id", func() {
			doc := document(t, `<shreddit-post id="t3_native"></shreddit-post>`)

			So(PostIdentifier(doc.Find("shreddit-post")), ShouldEqual, "t3_native")
		})

		Convey("Identifier derives a stable digest from title and author", func() {
			html := `<shreddit-post author="someone"><h3 slot="title">A title</h3></shreddit-post>`
			first := PostIdentifier(document(t, html).Find("shreddit-post"))
			second := PostIdentifier(document(t, html).Find("shreddit-post"))

			So(first, ShouldStartWith, "reddit-post-")
			So(first, ShouldEqual, second)
		})

		Convey("Identifier degrades to a time based fallback", func() {
			doc := document(t, `<shreddit-post></shreddit-post>`)

			So(PostIdentifier(doc.Find("shreddit-post")), ShouldStartWith, "reddit-post-fallback-")
		})
	})
}
