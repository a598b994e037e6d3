package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"trendpipe/internal/core/domain"
)

// OutputTemplate names downloads after the platform video ID.
const OutputTemplate = "%(id)s.%(ext)s"

// YtDlpDownloader uses the local yt-dlp binary to fetch videos.
type YtDlpDownloader struct {
	binaryPath string
	outputDir  string
}

// NewYtDlpDownloader creates a new downloader writing into outputDir.
func NewYtDlpDownloader(binaryPath, outputDir string) *YtDlpDownloader {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}
	return &YtDlpDownloader{
		binaryPath: binaryPath,
		outputDir:  outputDir,
	}
}

// Download fetches pageURL into the output directory and returns the path
// yt-dlp reports for the finished file.
func (d *YtDlpDownloader) Download(ctx context.Context, pageURL, videoID string) (string, error) {
	cmd := exec.CommandContext(ctx, d.binaryPath, d.downloadArgs(pageURL)...)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	if path := lastLine(out.String()); path != "" {
		return path, nil
	}
	// Older yt-dlp builds print nothing for after_move; fall back to the
	// name the template produces for mp4 downloads.
	return filepath.Join(d.outputDir, domain.VideoDescriptor{ID: videoID}.FileName()), nil
}

func (d *YtDlpDownloader) downloadArgs(pageURL string) []string {
	// -f b: best single file with both audio and video
	// --print after_move:filepath: emit the final path on stdout
	// --no-simulate: --print would otherwise skip the download
	return []string{
		"-f", "b",
		"--no-simulate",
		"--no-warnings",
		"--no-progress",
		"--print", "after_move:filepath",
		"-o", filepath.Join(d.outputDir, OutputTemplate),
		pageURL,
	}
}

// GetVideoURL fetches the direct download link using yt-dlp --get-url.
func (d *YtDlpDownloader) GetVideoURL(ctx context.Context, videoURL string) (string, error) {
	// -f b: Select best quality
	// --get-url: Only output the URL
	// --no-warnings: Suppress warnings
	cmd := exec.CommandContext(ctx, d.binaryPath, "-f", "b", "--get-url", "--no-warnings", videoURL)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w, stderr: %s", err, stderr.String())
	}

	return firstURL(out.String())
}

func firstURL(output string) (string, error) {
	urlStr := strings.TrimSpace(output)
	if urlStr == "" {
		return "", fmt.Errorf("yt-dlp returned empty URL")
	}

	// yt-dlp might return multiple URLs (video + audio), just take the first one
	urls := strings.Split(urlStr, "\n")
	return strings.TrimSpace(urls[0]), nil
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
