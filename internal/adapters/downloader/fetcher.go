package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// ErrNotVideo is returned when a media URL answers with something other than
// a video, typically a block or captcha page.
var ErrNotVideo = errors.New("response is not a video")

// MediaFetcher implements ports.Fetcher over HTTP. It hands out a body only
// when the response is a video, so block pages never land in storage.
type MediaFetcher struct {
	client *http.Client
}

// NewMediaFetcher creates a MediaFetcher. Requests have no deadline beyond
// the caller's context.
func NewMediaFetcher() *MediaFetcher {
	return &MediaFetcher{client: &http.Client{}}
}

// Fetch streams the media at mediaURL. The caller closes the body.
func (f *MediaFetcher) Fetch(ctx context.Context, mediaURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid media url: %w", err)
	}
	req.Header.Set("Accept", "video/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("media request returned %s", resp.Status)
	}
	if err := checkVideo(resp.Header.Get("Content-Type")); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// checkVideo accepts video/* and the generic binary type some CDNs use.
func checkVideo(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("%w: content type %q", ErrNotVideo, contentType)
	}
	if strings.HasPrefix(mediaType, "video/") || mediaType == "application/octet-stream" {
		return nil
	}
	return fmt.Errorf("%w: content type %q", ErrNotVideo, mediaType)
}
