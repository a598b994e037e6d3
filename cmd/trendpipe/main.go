package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"trendpipe/internal/adapters/apify"
	"trendpipe/internal/adapters/downloader"
	"trendpipe/internal/adapters/ffmpeg"
	"trendpipe/internal/adapters/localstorage"
	"trendpipe/internal/adapters/ytdlp"
	"trendpipe/internal/check"
	"trendpipe/internal/config"
	"trendpipe/internal/core/domain"
	"trendpipe/internal/core/ports"
	"trendpipe/internal/logging"
	"trendpipe/internal/report"
	"trendpipe/internal/service"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trendpipe",
		Short: "Download trending TikTok videos and re-encode them with a new soundtrack",
		Long: `trendpipe pulls a batch of trending TikTok videos, downloads each one,
scales its resolution and frame rate, replaces its audio track and writes
a markdown report of the run.

Settings come from trendpipe.yaml in the working directory, .env and the
environment (TRENDPIPE_*, APIFY_*, *_BINARY).`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func run(ctx context.Context, out io.Writer) error {
	start := time.Now()

	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		return err
	}

	runLog, err := logging.Open(cfg.LogDir, start, cfg.LogLevel, out)
	if err != nil {
		return err
	}
	defer runLog.Close()
	logger := runLog.Logger

	logger.Info().
		Str("work_dir", cfg.WorkDir).
		Str("log_file", runLog.Path()).
		Str("downloader", string(cfg.Downloader)).
		Msg("=== trendpipe ===")

	// Missing tools only produce warnings; affected videos fail individually.
	_ = check.Preflight(cfg, logger)

	storage := localstorage.NewLocalStorage(cfg.WorkDir)
	if err := storage.Init(); err != nil {
		logger.Error().Err(err).Msg("Failed to prepare work directory")
		return err
	}

	ytDlp := ytdlp.NewYtDlpDownloader(cfg.Binaries.YtDlp, cfg.WorkDir)
	var dl ports.Downloader = ytDlp
	if cfg.Downloader == config.DownloaderResolve {
		dl = downloader.NewResolvingDownloader(ytDlp, downloader.NewMediaFetcher(), storage)
	}

	driver := service.NewDriver(
		cfg,
		apify.NewApifyScraper(cfg.Apify),
		dl,
		ffmpeg.NewTranscoder(cfg.Binaries.Ffmpeg, cfg.Binaries.Ffprobe),
		report.NewWriter(storage, cfg.ReportName),
		logger,
		runLog.Path(),
	)

	result, err := driver.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Run failed")
		return err
	}

	printSummary(out, result)
	return nil
}

func printSummary(w io.Writer, result *domain.RunResult) {
	color.New(color.Bold).Fprintln(w, "\n=== Run Summary ===")
	fmt.Fprintf(w, "Run ID:     %s\n", result.RunID)
	fmt.Fprintf(w, "Videos:     %d\n", len(result.Seen))
	color.New(color.FgHiGreen).Fprintf(w, "Processed:  %d\n", result.Stats.Succeeded)
	if result.Stats.HasErrors() {
		color.New(color.FgHiRed, color.Bold).Fprintf(w, "Failed:     %d (see %s)\n", len(result.Stats.Failures), result.Stats.LogFile)
	}
	fmt.Fprintf(w, "Elapsed:    %s\n", report.FormatElapsed(result.Stats.Elapsed))
	fmt.Fprintf(w, "Report:     %s\n", result.ReportPath)
}
