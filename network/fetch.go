package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// Result carries fetched bytes along with the classified file extension.
type Result struct {
	Bytes     []byte
	Extension string
}

// extensionRe extracts a trailing file extension from a URL path.
var extensionRe = regexp.MustCompile(`\.([a-zA-Z0-9]+)$`)

// Fetcher retrieves remote bytes with optional byte-range restriction.
// The zero value is not usable; construct with NewFetcher.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher backed by the shared application client.
func NewFetcher() *Fetcher {
	return &Fetcher{client: Client}
}

// NewBrowserFetcher returns a Fetcher backed by the Chrome-fingerprint
// client. Feed pages and the embed provider's API reject the default Go
// Client Hello.
func NewBrowserFetcher() *Fetcher {
	return &Fetcher{client: BrowserClient}
}

// NewFetcherWithClient returns a Fetcher backed by a specific client.
// Used by tests to point at httptest servers.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch retrieves the full body at rawURL. Non-2xx responses are hard
// failures; there are no retries. The returned extension is classified from
// the Content-Type header first, then the URL path suffix, defaulting to jpg.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("fetch %s: unexpected status %d %s", rawURL, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read body of %s: %w", rawURL, err)
	}

	return Result{
		Bytes:     body,
		Extension: ClassifyExtension(resp.Header.Get("Content-Type"), rawURL),
	}, nil
}

// FetchRange retrieves [offset, offset+length-1] of the body at rawURL via
// an HTTP range request. A response outside the 2xx class is a hard failure.
func (f *Fetcher) FetchRange(ctx context.Context, rawURL string, offset, length int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch range of %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch range of %s: unexpected status %d %s", rawURL, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return io.ReadAll(resp.Body)
}

// FetchText retrieves the body at rawURL as a string. Used for playlists
// and other small text resources.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	result, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return string(result.Bytes), nil
}

// ClassifyExtension derives a file extension from a Content-Type header
// value, falling back to the URL path suffix, defaulting to jpg.
func ClassifyExtension(contentType, rawURL string) string {
	extension := "jpg"

	if contentType != "" {
		switch {
		case strings.Contains(contentType, "png"):
			extension = "png"
		case strings.Contains(contentType, "gif"):
			extension = "gif"
		case strings.Contains(contentType, "mp4"):
			extension = "mp4"
		}
	}

	if parsed, err := url.Parse(rawURL); err == nil {
		if match := extensionRe.FindStringSubmatch(parsed.Path); match != nil {
			extension = strings.ToLower(match[1])
		}
	}

	return extension
}
