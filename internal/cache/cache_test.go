package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/redgrab-cli/redgrab/filesystem"
	"github.com/redgrab-cli/redgrab/where"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCollectGarbage(t *testing.T) {
	Convey("CollectGarbage", t, func() {
		var (
			stale = filepath.Join(where.Cache(), "stale.json")
			fresh = filepath.Join(where.Cache(), "fresh.json")
		)

		So(filesystem.API().WriteFile(stale, []byte("{}"), 0o644), ShouldBeNil)
		So(filesystem.API().WriteFile(fresh, []byte("{}"), 0o644), ShouldBeNil)
		So(filesystem.API().Chtimes(stale, time.Now(), time.Now().Add(-ttl-time.Hour)), ShouldBeNil)

		CollectGarbage()

		Convey("Should remove entries older than the retention window", func() {
			exists, err := filesystem.API().Exists(stale)
			So(err, ShouldBeNil)
			So(exists, ShouldBeFalse)
		})

		Convey("Should keep recent entries", func() {
			exists, err := filesystem.API().Exists(fresh)
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})
	})
}
