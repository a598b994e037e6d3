// Package ffmpeg probes downloaded videos and re-encodes them with a scaled
// frame size, a scaled frame rate and a replacement audio track.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"trendpipe/internal/core/ports"
)

// Transcoder implements ports.Transcoder with the ffmpeg binary.
type Transcoder struct {
	ffmpegBin string
	probe     Prober
}

// NewTranscoder creates a Transcoder using the given binaries.
func NewTranscoder(ffmpegBin, ffprobeBin string) *Transcoder {
	return &Transcoder{
		ffmpegBin: ffmpegBin,
		probe:     FfprobeProber(ffprobeBin),
	}
}

// WithProber replaces the stream inspection step.
func (t *Transcoder) WithProber(p Prober) *Transcoder {
	t.probe = p
	return t
}

// Transform runs probe → plan → ffmpeg for one file. A failed run leaves no
// output file behind.
func (t *Transcoder) Transform(ctx context.Context, req ports.TransformRequest) error {
	if _, err := os.Stat(req.AudioPath); err != nil {
		return fmt.Errorf("audio track unavailable: %w", err)
	}

	info, err := t.probe(ctx, req.VideoPath)
	if err != nil {
		return err
	}

	geometry, err := PlanGeometry(*info, req.ScaleFactor, req.FrameRateFactor)
	if err != nil {
		return err
	}

	args := Build(t.ffmpegBin, req.VideoPath, req.AudioPath, req.OutputPath, geometry)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(req.OutputPath)
		return fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
