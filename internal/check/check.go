// Package check validates the external tools and inputs a run depends on
// before the pipeline starts.
package check

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"trendpipe/internal/config"
	"trendpipe/internal/logging"
)

// Sentinel errors reported by Preflight.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
	ErrFfprobeNotFound = errors.New("ffprobe not found")
	ErrYtDlpNotFound   = errors.New("yt-dlp not found")
	ErrAudioFile       = errors.New("audio file not readable")
)

// Preflight looks up ffmpeg, ffprobe and yt-dlp and stats the audio file.
// Each problem is logged as a warning and joined into the returned error.
// Nothing here stops a run: videos that hit a missing tool fail on their own.
func Preflight(cfg config.Config, log logging.Logger) error {
	var errs []error

	tools := []struct {
		bin string
		err error
	}{
		{cfg.Binaries.Ffmpeg, ErrFfmpegNotFound},
		{cfg.Binaries.Ffprobe, ErrFfprobeNotFound},
		{cfg.Binaries.YtDlp, ErrYtDlpNotFound},
	}
	for _, tool := range tools {
		path, err := exec.LookPath(tool.bin)
		if err != nil {
			log.Warn().Str("binary", tool.bin).Err(err).Msg(tool.err.Error())
			errs = append(errs, fmt.Errorf("%w: %s", tool.err, tool.bin))
			continue
		}
		log.Debug().Str("binary", tool.bin).Str("path", path).Str("version", version(path)).Msg("Found tool")
	}

	if info, err := os.Stat(cfg.AudioFile); err != nil || info.IsDir() {
		log.Warn().Str("audio_file", cfg.AudioFile).Msg(ErrAudioFile.Error())
		errs = append(errs, fmt.Errorf("%w: %s", ErrAudioFile, cfg.AudioFile))
	}

	return errors.Join(errs...)
}

// version returns the first line of the tool's version output, or "" when
// it cannot be run. The ffmpeg tools take -version, yt-dlp --version.
func version(bin string) string {
	flag := "--version"
	if strings.HasPrefix(filepath.Base(bin), "ff") {
		flag = "-version"
	}
	out, err := exec.Command(bin, flag).Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line
}
