package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// VideoDescriptor identifies one trending video as yielded by a trend source.
type VideoDescriptor struct {
	ID     string `json:"id"`
	Author string `json:"author"`
}

// URL returns the canonical TikTok page URL for the video.
func (v VideoDescriptor) URL() string {
	return fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", v.Author, v.ID)
}

// FileName returns the local file name a download of this video is stored under.
func (v VideoDescriptor) FileName() string {
	return v.ID + ".mp4"
}

// TransformedPrefix is prepended to the base name of re-encoded files.
const TransformedPrefix = "mod_"

// TransformedPath returns where the re-encode of videoPath is written.
func TransformedPath(videoPath string) string {
	return filepath.Join(filepath.Dir(videoPath), TransformedPrefix+filepath.Base(videoPath))
}

// SeenSet records the video IDs already handled during a run.
// Insertion only; order of first insertion is kept.
type SeenSet struct {
	ids   map[string]struct{}
	order []string
}

// NewSeenSet creates an empty SeenSet.
func NewSeenSet() *SeenSet {
	return &SeenSet{ids: make(map[string]struct{})}
}

// Add inserts id and reports whether it was not present before.
func (s *SeenSet) Add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Len returns the number of distinct IDs.
func (s *SeenSet) Len() int {
	return len(s.order)
}

// IDs returns the IDs in first-seen order.
func (s *SeenSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Failure describes why a single video did not make it through the pipeline.
type Failure struct {
	Kind    ErrorKind `json:"kind"`
	URL     string    `json:"url"`
	Message string    `json:"message"`
}

// RunStats holds the counters of one pipeline run.
type RunStats struct {
	RunID     string
	Succeeded int
	Failures  map[string]Failure
	StartedAt time.Time
	Elapsed   time.Duration
	LogFile   string

	errored bool
}

// NewRunStats returns zeroed stats for the given run.
func NewRunStats(runID, logFile string) *RunStats {
	return &RunStats{
		RunID:    runID,
		Failures: make(map[string]Failure),
		LogFile:  logFile,
	}
}

// Fail records a per-video failure and raises the error flag. The flag is
// never lowered again.
func (s *RunStats) Fail(err *ItemError) {
	s.errored = true
	if s.Failures == nil {
		s.Failures = make(map[string]Failure)
	}
	s.Failures[err.VideoID] = Failure{Kind: err.Kind, URL: err.URL, Message: err.Error()}
}

// HasErrors reports whether any failure was recorded during the run.
func (s *RunStats) HasErrors() bool {
	return s.errored
}

// RunResult is what a completed run hands back to its caller.
type RunResult struct {
	RunID      string
	Stats      RunStats
	Seen       []string
	ReportPath string
}
