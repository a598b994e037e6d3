package downloader

import (
	"context"
	"fmt"

	"trendpipe/internal/core/domain"
	"trendpipe/internal/core/ports"
)

// ResolvingDownloader implements ports.Downloader in two steps: the page URL
// is resolved to a direct media URL, which is then streamed into storage.
type ResolvingDownloader struct {
	resolver ports.URLResolver
	fetcher  ports.Fetcher
	storage  ports.Storage
}

// NewResolvingDownloader creates a new ResolvingDownloader.
func NewResolvingDownloader(resolver ports.URLResolver, fetcher ports.Fetcher, storage ports.Storage) *ResolvingDownloader {
	return &ResolvingDownloader{
		resolver: resolver,
		fetcher:  fetcher,
		storage:  storage,
	}
}

// Download resolves pageURL and saves the media as <videoID>.mp4.
func (d *ResolvingDownloader) Download(ctx context.Context, pageURL, videoID string) (string, error) {
	mediaURL, err := d.resolver.GetVideoURL(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to resolve media url: %w", err)
	}

	body, err := d.fetcher.Fetch(ctx, mediaURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	return d.storage.SaveVideo(ctx, body, domain.VideoDescriptor{ID: videoID}.FileName())
}
