// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Download Destination - these keys control where and under which names media is persisted.
const (
	DownloadsFolder          = "downloads.folder"
	DownloadsFilenamePattern = "downloads.filename_pattern"
	DownloadsGalleryFolders  = "downloads.gallery_folders"
)

// Caption Overlay - these keys toggle burning the post title into downloaded media.
const (
	OverlayImages = "overlay.images"
	OverlayVideos = "overlay.videos"
)

// Batch Scraping - these keys govern the pacing of mass feed scraping.
const (
	ScrapePostDelay    = "scrape.post_delay"
	ScrapeRescanDelay  = "scrape.rescan_delay"
	ScrapeMaxIdleScans = "scrape.max_idle_scans"
)

// Feed Markers - these keys hold the structural markers used to classify post media containers.
// They are configuration rather than code so the classifier survives feed markup changes.
const (
	MarkersPost        = "markers.post"
	MarkersVideoPlayer = "markers.video_player"
	MarkersSingleImage = "markers.single_image"
	MarkersGallery     = "markers.gallery"
	MarkersEmbed       = "markers.embed"
)

// Transcoding - these keys configure the external media toolchain.
const (
	FFmpegBinary = "ffmpeg.binary"
)

// Bridge Server - these keys configure the local request/response HTTP surface.
const (
	ServeAddress = "serve.address"
)

// Diagnostics - these keys configure log persistence.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Behavior - these keys adjust terminal output.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
