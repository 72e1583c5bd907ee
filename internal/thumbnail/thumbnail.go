// Package thumbnail fetches video preview images off the consumer loop
package thumbnail

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/ytget/ytfetch/internal/worker"
)

// Fetch constants
const (
	// DefaultURLTemplate is the YouTube high quality preview; %s is the video id
	DefaultURLTemplate = "https://img.youtube.com/vi/%s/hqdefault.jpg"

	DefaultTimeout = 15 * time.Second

	// MaxImageSize bounds the response body
	MaxImageSize = 8 << 20
)

// Fetcher loads the preview image of a video
type Fetcher interface {
	Fetch(ctx context.Context, videoID string) (image.Image, error)
}

// Result is a finished fetch waiting to be picked up by the consumer loop
type Result struct {
	VideoID string
	Image   image.Image
	Err     error
}

// Mailbox carries fetch results to the consumer loop
type Mailbox = worker.Mailbox[Result]

// HTTPFetcher downloads and decodes thumbnails over HTTP
type HTTPFetcher struct {
	client      *http.Client
	urlTemplate string
}

// NewHTTPFetcher creates a fetcher. An empty template selects DefaultURLTemplate.
func NewHTTPFetcher(client *http.Client, urlTemplate string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	return &HTTPFetcher{client: client, urlTemplate: urlTemplate}
}

// URL returns the image address for videoID
func (f *HTTPFetcher) URL(videoID string) string {
	if !strings.Contains(f.urlTemplate, "%s") {
		return f.urlTemplate
	}
	return fmt.Sprintf(f.urlTemplate, videoID)
}

// Fetch downloads the thumbnail of videoID and decodes it as JPEG, PNG or WebP
func (f *HTTPFetcher) Fetch(ctx context.Context, videoID string) (image.Image, error) {
	if videoID == "" {
		return nil, fmt.Errorf("empty video id")
	}

	url := f.URL(videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thumbnail request failed with status %s for %s", resp.Status, url)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, MaxImageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to decode thumbnail of %s: %w", videoID, err)
	}
	return img, nil
}
