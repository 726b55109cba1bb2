package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redgrab-cli/redgrab/download"
	"github.com/redgrab-cli/redgrab/ffmpeg"
	"github.com/redgrab-cli/redgrab/filesystem"
	"github.com/redgrab-cli/redgrab/key"
	"github.com/redgrab-cli/redgrab/ledger"
	"github.com/redgrab-cli/redgrab/network"
	"github.com/redgrab-cli/redgrab/scrape"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

var testMarkers = scrape.Markers{
	Post:        "shreddit-post",
	VideoPlayer: "shreddit-player-2",
	SingleImage: "shreddit-media-lightbox-listener",
	Gallery:     "gallery-carousel",
	Embed:       "shreddit-embed",
}

type recordingSaver struct {
	files map[string][]byte
}

func (s *recordingSaver) Save(relative string, data []byte) (string, error) {
	s.files[relative] = data
	return "/saved/" + relative, nil
}

func configure() {
	viper.Set(key.DownloadsFolder, "Reddit Downloads/{subreddit}")
	viper.Set(key.DownloadsFilenamePattern, "{subreddit}_{timestamp}_{filename}")
	viper.Set(key.DownloadsGalleryFolders, false)
	viper.Set(key.OverlayImages, false)
	viper.Set(key.OverlayVideos, false)
}

func testHandler(client *http.Client) (*Handler, *recordingSaver) {
	fetcher := network.NewFetcherWithClient(client)
	saver := &recordingSaver{files: make(map[string][]byte)}
	downloader := download.NewWith(fetcher, saver, func() (*ffmpeg.Engine, error) {
		return nil, fmt.Errorf("no engine in this test")
	})
	dispatcher := NewDispatcher(scrape.NewLocator(testMarkers, fetcher), downloader)
	return NewHandler(dispatcher), saver
}

func post(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded)))
	return recorder
}

func TestDownloadEndpoint(t *testing.T) {
	Convey("Given the bridge HTTP surface", t, func() {
		configure()
		So(ledger.Clear(), ShouldBeNil)

		media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/gone.jpg" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("image bytes"))
		}))
		defer media.Close()

		handler, saver := testHandler(media.Client())
		router := handler.Router()

		Convey("A valid download request saves and reports success", func() {
			recorder := post(t, router, "/api/download", DownloadRequest{
				Kind:      "single-image",
				URLs:      []string{media.URL + "/photo.jpg"},
				Subreddit: "aww",
			})

			So(recorder.Code, ShouldEqual, http.StatusOK)

			var response DownloadResponse
			So(json.Unmarshal(recorder.Body.Bytes(), &response), ShouldBeNil)
			So(response.Success, ShouldBeTrue)
			So(response.Saved, ShouldHaveLength, 1)
			So(saver.files, ShouldHaveLength, 1)
		})

		Convey("A pipeline failure is an unsuccessful response, not a 500", func() {
			recorder := post(t, router, "/api/download", DownloadRequest{
				Kind:      "single-image",
				URLs:      []string{media.URL + "/gone.jpg"},
				Subreddit: "aww",
			})

			So(recorder.Code, ShouldEqual, http.StatusOK)

			var response DownloadResponse
			So(json.Unmarshal(recorder.Body.Bytes(), &response), ShouldBeNil)
			So(response.Success, ShouldBeFalse)
			So(response.Message, ShouldNotBeEmpty)
		})

		Convey("A request without urls is rejected", func() {
			recorder := post(t, router, "/api/download", DownloadRequest{Kind: "video"})

			So(recorder.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An unknown kind is rejected", func() {
			recorder := post(t, router, "/api/download", DownloadRequest{
				Kind: "carousel",
				URLs: []string{media.URL + "/photo.jpg"},
			})

			So(recorder.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Malformed json is rejected", func() {
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(
				http.MethodPost, "/api/download", bytes.NewReader([]byte("{not json"))))

			So(recorder.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestScanEndpoint(t *testing.T) {
	Convey("Given markup with one image post", t, func() {
		configure()
		So(ledger.Clear(), ShouldBeNil)

		handler, _ := testHandler(http.DefaultClient)
		router := handler.Router()

		html := `<shreddit-post id="t3_scan">
			<shreddit-media-lightbox-listener><img src="https://i.redd.it/pic.jpg"></shreddit-media-lightbox-listener>
		</shreddit-post>`

		Convey("Scanning reports the post as a candidate", func() {
			recorder := post(t, router, "/api/scan", ScanRequest{
				HTML:    html,
				PageURL: "https://reddit.test/r/pics/",
			})

			So(recorder.Code, ShouldEqual, http.StatusOK)

			var response ScanResponse
			So(json.Unmarshal(recorder.Body.Bytes(), &response), ShouldBeNil)
			So(response.TotalPosts, ShouldEqual, 1)
			So(response.Items, ShouldHaveLength, 1)
			So(response.Items[0].PostID, ShouldEqual, "t3_scan")
			So(response.Items[0].Kind, ShouldEqual, "single-image")
			So(response.Items[0].Subreddit, ShouldEqual, "pics")
		})

		Convey("Posts already in the ledger are excluded", func() {
			So(ledger.Add(&ledger.Record{PostID: "t3_scan"}), ShouldBeNil)

			recorder := post(t, router, "/api/scan", ScanRequest{HTML: html})

			var response ScanResponse
			So(json.Unmarshal(recorder.Body.Bytes(), &response), ShouldBeNil)
			So(response.TotalPosts, ShouldEqual, 1)
			So(response.Items, ShouldBeEmpty)
		})

		Convey("A scan request without markup is rejected", func() {
			recorder := post(t, router, "/api/scan", ScanRequest{})

			So(recorder.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestStatusAndHighlight(t *testing.T) {
	Convey("Status reflects highlight and download activity", t, func() {
		configure()

		handler, _ := testHandler(http.DefaultClient)
		router := handler.Router()

		recorder := post(t, router, "/api/highlight", HighlightRequest{PostID: "t3_now"})
		So(recorder.Code, ShouldEqual, http.StatusOK)

		recorder = post(t, router, "/api/load-more", LoadMoreRequest{PageURL: "https://www.reddit.com/r/pics/"})
		So(recorder.Code, ShouldEqual, http.StatusOK)

		status := httptest.NewRecorder()
		router.ServeHTTP(status, httptest.NewRequest(http.MethodGet, "/api/status", nil))

		So(status.Code, ShouldEqual, http.StatusOK)

		var response StatusResponse
		So(json.Unmarshal(status.Body.Bytes(), &response), ShouldBeNil)
		So(response.State, ShouldEqual, "idle")
		So(response.CurrentPost, ShouldEqual, "t3_now")
		So(response.LoadMores, ShouldEqual, 1)
	})
}
