// Package service drives a pipeline run: it pulls trending videos, downloads
// and re-encodes each one, and writes the run report.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trendpipe/internal/config"
	"trendpipe/internal/core/domain"
	"trendpipe/internal/core/ports"
	"trendpipe/internal/logging"
)

// Driver coordinates one pipeline run.
type Driver struct {
	cfg        config.Config
	trends     ports.TrendSource
	downloader ports.Downloader
	transcoder ports.Transcoder
	reporter   ports.ReportWriter
	logger     logging.Logger
	logFile    string
}

// NewDriver creates a new Driver. logFile is the path the report points at
// when a video fails.
func NewDriver(
	cfg config.Config,
	trends ports.TrendSource,
	downloader ports.Downloader,
	transcoder ports.Transcoder,
	reporter ports.ReportWriter,
	logger logging.Logger,
	logFile string,
) *Driver {
	return &Driver{
		cfg:        cfg,
		trends:     trends,
		downloader: downloader,
		transcoder: transcoder,
		reporter:   reporter,
		logger:     logger,
		logFile:    logFile,
	}
}

// Run executes the pipeline once. Failures of individual videos are logged
// and recorded in the result; only a trend source failure or a failed report
// write aborts the run, and in that case no result is returned.
func (d *Driver) Run(ctx context.Context) (*domain.RunResult, error) {
	runID := uuid.New().String()
	log := d.logger.With().Str("run_id", runID).Logger()

	stats := domain.NewRunStats(runID, d.logFile)
	stats.StartedAt = time.Now()
	log.Info().
		Int("count", d.cfg.Count).
		Float64("scale_factor", d.cfg.ScaleFactor).
		Float64("fps_factor", d.cfg.FrameRateFactor).
		Str("audio_file", d.cfg.AudioFile).
		Msg("Starting run")

	session, err := d.trends.OpenSession(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open trend session")
		return nil, fmt.Errorf("failed to open trend session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close trend session")
		}
	}()

	seen := domain.NewSeenSet()
	pulled := 0
	for video, err := range session.Trending(ctx, d.cfg.Count) {
		if err != nil {
			log.Error().Err(err).Msg("Trend source failed")
			return nil, fmt.Errorf("failed to list trending videos: %w", err)
		}
		pulled++
		d.process(ctx, log, video, seen, stats)
		if pulled >= d.cfg.Count {
			break
		}
	}

	stats.Elapsed = time.Since(stats.StartedAt)
	log.Info().
		Int("pulled", pulled).
		Int("unique", seen.Len()).
		Int("succeeded", stats.Succeeded).
		Int("failed", len(stats.Failures)).
		Dur("elapsed", stats.Elapsed).
		Msg("Run finished")

	reportPath, err := d.reporter.WriteReport(ctx, stats)
	if err != nil {
		log.Error().Err(err).Msg("Failed to write report")
		return nil, err
	}
	log.Info().Str("report", reportPath).Msg("Report written")

	return &domain.RunResult{
		RunID:      runID,
		Stats:      *stats,
		Seen:       seen.IDs(),
		ReportPath: reportPath,
	}, nil
}

// process takes a single video through download and transform. A video is
// counted only when both steps succeed.
func (d *Driver) process(ctx context.Context, log logging.Logger, video domain.VideoDescriptor, seen *domain.SeenSet, stats *domain.RunStats) {
	url := video.URL()
	if !seen.Add(video.ID) {
		log.Debug().Str("video_id", video.ID).Msg("Skipping duplicate video")
		return
	}

	log.Info().Str("video_id", video.ID).Str("url", url).Msg("Downloading video")
	path, err := d.downloader.Download(ctx, url, video.ID)
	if err != nil {
		d.fail(log, stats, &domain.ItemError{Kind: domain.DownloadFailed, VideoID: video.ID, URL: url, Err: err})
		return
	}

	req := ports.TransformRequest{
		VideoPath:       path,
		AudioPath:       d.cfg.AudioFile,
		ScaleFactor:     d.cfg.ScaleFactor,
		FrameRateFactor: d.cfg.FrameRateFactor,
		OutputPath:      domain.TransformedPath(path),
	}
	if err := d.transcoder.Transform(ctx, req); err != nil {
		d.fail(log, stats, &domain.ItemError{Kind: domain.TranscodeFailed, VideoID: video.ID, URL: url, Err: err})
		return
	}

	stats.Succeeded++
	log.Info().Str("video_id", video.ID).Str("output", req.OutputPath).Msg("Video processed")
}

func (d *Driver) fail(log logging.Logger, stats *domain.RunStats, itemErr *domain.ItemError) {
	stats.Fail(itemErr)
	log.Error().
		Str("video_id", itemErr.VideoID).
		Str("url", itemErr.URL).
		Str("kind", string(itemErr.Kind)).
		Err(itemErr.Err).
		Msg(itemErr.Error())
}
