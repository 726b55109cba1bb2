// Package bridge exposes the scrape and download pipeline as typed
// request/response messages, dispatched in-process or over a small HTTP
// surface. It is the seam other tooling talks to instead of importing the
// pipeline packages directly.
package bridge

// DownloadRequest asks for one post's media to be downloaded.
type DownloadRequest struct {
	Kind      string   `json:"kind" validate:"required,oneof=video single-image multiple-images embed"`
	URLs      []string `json:"urls" validate:"required,min=1,dive,required"`
	Subreddit string   `json:"subreddit"`
	Title     string   `json:"title"`
}

// DownloadResponse reports one download's outcome. Failures are carried in
// Message, not transport errors, so a batch driver can keep going.
type DownloadResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Saved   []string `json:"saved,omitempty"`
}

// ScanRequest submits feed markup for media discovery.
type ScanRequest struct {
	HTML    string `json:"html" validate:"required"`
	PageURL string `json:"page_url" validate:"omitempty,url"`
}

// ScanItem is one unprocessed downloadable post found by a scan.
type ScanItem struct {
	PostID    string   `json:"post_id"`
	Kind      string   `json:"kind"`
	URLs      []string `json:"urls"`
	Subreddit string   `json:"subreddit"`
	Title     string   `json:"title,omitempty"`
}

// ScanResponse lists the scan's candidates. Posts already in the ledger
// are excluded.
type ScanResponse struct {
	TotalPosts int        `json:"total_posts"`
	Items      []ScanItem `json:"items"`
}

// HighlightRequest marks the post currently being processed.
type HighlightRequest struct {
	PostID string `json:"post_id" validate:"required"`
}

// LoadMoreRequest asks the page-owning peer to extend the feed. The
// dispatcher only records it; a driver polling Status performs the scroll
// and submits a fresh scan.
type LoadMoreRequest struct {
	PageURL string `json:"page_url" validate:"omitempty,url"`
}

// StatusResponse describes the dispatcher's current activity.
type StatusResponse struct {
	State       string `json:"state"`
	Downloads   int    `json:"downloads"`
	LoadMores   int    `json:"load_mores,omitempty"`
	CurrentPost string `json:"current_post,omitempty"`
}
