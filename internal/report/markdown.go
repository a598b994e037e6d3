// Package report renders and stores the end-of-run summary.
package report

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"trendpipe/internal/core/domain"
	"trendpipe/internal/core/ports"
)

const (
	title          = "Tiktok video scrapping and processing"
	headerCount    = "The number of sucesfully processed videos"
	headerDuration = "Total time of scrapping and processing"
	headerErrors   = "Errors during script running"
)

// Render returns the markdown report for stats. The output depends on
// stats only, so equal stats render to identical bytes.
func Render(stats *domain.RunStats) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "%s\n%s\n", title, underline(title))

	section(&b, headerCount, strconv.Itoa(stats.Succeeded))
	section(&b, headerDuration, FormatElapsed(stats.Elapsed))

	status := "None"
	if stats.HasErrors() {
		status = "See log " + filepath.Base(stats.LogFile)
	}
	section(&b, headerErrors, status)

	return b.Bytes()
}

func section(b *bytes.Buffer, header, body string) {
	fmt.Fprintf(b, "\n# %s\n\n%s\n", header, body)
}

func underline(s string) string {
	return string(bytes.Repeat([]byte("="), len(s)))
}

// FormatElapsed renders d at millisecond precision, never negative.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Round(time.Millisecond).String()
}

// Writer implements ports.ReportWriter on top of run storage.
type Writer struct {
	storage ports.Storage
	name    string
}

// NewWriter creates a Writer that stores <name>.md.
func NewWriter(storage ports.Storage, name string) *Writer {
	return &Writer{storage: storage, name: name}
}

// WriteReport renders stats and replaces the report file in one step.
func (w *Writer) WriteReport(ctx context.Context, stats *domain.RunStats) (string, error) {
	path, err := w.storage.WriteFile(ctx, w.name+".md", Render(stats))
	if err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
