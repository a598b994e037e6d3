package domain

import "fmt"

// ErrorKind classifies a per-video failure.
type ErrorKind string

const (
	DownloadFailed  ErrorKind = "download_failed"
	TranscodeFailed ErrorKind = "transcode_failed"
)

// ItemError is returned for a video whose download or transcode failed.
// It never aborts a run.
type ItemError struct {
	Kind    ErrorKind
	VideoID string
	URL     string
	Err     error
}

func (e *ItemError) Error() string {
	switch e.Kind {
	case DownloadFailed:
		return fmt.Sprintf("download of %s failed: %v", e.URL, e.Err)
	case TranscodeFailed:
		return fmt.Sprintf("transcode of video %s failed: %v", e.VideoID, e.Err)
	default:
		return fmt.Sprintf("video %s failed: %v", e.VideoID, e.Err)
	}
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
