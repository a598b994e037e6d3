package ports

import (
	"context"
	"io"
	"iter"

	"trendpipe/internal/core/domain"
)

// TrendSource opens sessions against the platform that lists trending videos.
type TrendSource interface {
	// OpenSession establishes a session. A failure here is fatal to a run.
	OpenSession(ctx context.Context) (TrendSession, error)
}

// TrendSession produces trending videos.
type TrendSession interface {
	// Trending returns a lazy, finite sequence of at most count descriptors.
	// Items are yielded as soon as they are known. A non-nil error ends the
	// sequence. Each call starts a fresh listing.
	Trending(ctx context.Context, count int) iter.Seq2[domain.VideoDescriptor, error]

	// Close releases the session.
	Close() error
}

// Downloader fetches a video page URL to local storage.
type Downloader interface {
	// Download retrieves the media behind pageURL and returns the local path.
	// The file is named after videoID. There is a single attempt per call.
	Download(ctx context.Context, pageURL, videoID string) (string, error)
}

// URLResolver turns a video page URL into a direct media URL.
type URLResolver interface {
	GetVideoURL(ctx context.Context, pageURL string) (string, error)
}

// Fetcher streams a direct media URL.
type Fetcher interface {
	// Fetch returns a ReadCloser that the caller must close.
	Fetch(ctx context.Context, mediaURL string) (io.ReadCloser, error)
}

// TransformRequest describes one re-encode.
type TransformRequest struct {
	VideoPath       string
	AudioPath       string
	ScaleFactor     float64
	FrameRateFactor float64
	OutputPath      string
}

// Transcoder re-encodes a downloaded video.
type Transcoder interface {
	// Transform probes the video, scales resolution and frame rate, replaces
	// the audio track and writes OutputPath, truncated to the shorter stream.
	Transform(ctx context.Context, req TransformRequest) error
}

// ReportWriter persists the end-of-run report.
type ReportWriter interface {
	// WriteReport writes the report for stats and returns its path.
	WriteReport(ctx context.Context, stats *domain.RunStats) (string, error)
}

// Storage defines the contract for persisting run artifacts.
type Storage interface {
	// SaveVideo saves the video read from reader under filename.
	SaveVideo(ctx context.Context, reader io.Reader, filename string) (string, error)

	// WriteFile atomically replaces filename with data.
	WriteFile(ctx context.Context, filename string, data []byte) (string, error)

	// Path returns the filesystem path for filename.
	Path(filename string) string
}
