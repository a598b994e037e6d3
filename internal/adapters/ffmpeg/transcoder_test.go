package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpipe/internal/core/domain"
	"trendpipe/internal/core/ports"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in       string
		num, den int
		wantErr  bool
	}{
		{"30/1", 30, 1, false},
		{"30000/1001", 30000, 1001, false},
		{"25", 25, 1, false},
		{"0/0", 0, 0, true},
		{"abc/1", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			num, den, err := ParseFrameRate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.num, num)
			assert.Equal(t, tt.den, den)
		})
	}
}

func TestPlanGeometry(t *testing.T) {
	tests := []struct {
		name string
		info StreamInfo
		want Geometry
	}{
		{"portrait 30fps", StreamInfo{1080, 1920, 30, 1}, Geometry{972, 1728, 27}},
		{"ntsc rate", StreamInfo{720, 1280, 30000, 1001}, Geometry{648, 1152, 27}},
		{"rounds half up", StreamInfo{575, 1025, 25, 1}, Geometry{518, 923, 23}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanGeometry(tt.info, 0.9, 0.9)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanGeometry_Degenerate(t *testing.T) {
	_, err := PlanGeometry(StreamInfo{0, 0, 30, 1}, 0.9, 0.9)
	assert.Error(t, err)

	_, err = PlanGeometry(StreamInfo{100, 100, 1, 10}, 0.9, 0.9)
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	args := Build("ffmpeg", "123.mp4", "song.mp3", "mod_123.mp4", Geometry{972, 1728, 27})
	assert.Equal(t, []string{
		"ffmpeg", "-hide_banner", "-nostdin", "-y", "-loglevel", "error",
		"-i", "123.mp4", "-i", "song.mp3",
		"-filter_complex", "[0:v]scale=972:1728,fps=fps=27[v]",
		"-map", "[v]", "-map", "1:a:0",
		"-shortest",
		"mod_123.mp4",
	}, args)
}

// fakeFfmpeg writes a script that copies its last argument into existence,
// or fails when fail is set.
func fakeFfmpeg(t *testing.T, fail bool) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures need a POSIX shell")
	}
	body := "#!/bin/sh\nfor last; do :; done\necho encoded > \"$last\"\n"
	if fail {
		body = "#!/bin/sh\nfor last; do :; done\necho partial > \"$last\"\necho 'Invalid data found' >&2\nexit 1\n"
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func fixedProber(info *StreamInfo, err error) Prober {
	return func(context.Context, string) (*StreamInfo, error) { return info, err }
}

func newRequest(t *testing.T) ports.TransformRequest {
	t.Helper()
	dir := t.TempDir()
	audio := filepath.Join(dir, "song.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("mp3"), 0o644))
	video := filepath.Join(dir, "123.mp4")
	return ports.TransformRequest{
		VideoPath:       video,
		AudioPath:       audio,
		ScaleFactor:     0.9,
		FrameRateFactor: 0.9,
		OutputPath:      domain.TransformedPath(video),
	}
}

func TestTransform_WritesOutput(t *testing.T) {
	req := newRequest(t)
	tr := NewTranscoder(fakeFfmpeg(t, false), "ffprobe").WithProber(fixedProber(&StreamInfo{1080, 1920, 30, 1}, nil))

	require.NoError(t, tr.Transform(context.Background(), req))
	b, err := os.ReadFile(req.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "encoded\n", string(b))
}

func TestTransform_FailureRemovesOutput(t *testing.T) {
	req := newRequest(t)
	tr := NewTranscoder(fakeFfmpeg(t, true), "ffprobe").WithProber(fixedProber(&StreamInfo{1080, 1920, 30, 1}, nil))

	err := tr.Transform(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid data found")
	_, statErr := os.Stat(req.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestTransform_ProbeFailure(t *testing.T) {
	req := newRequest(t)
	tr := NewTranscoder("ffmpeg", "ffprobe").WithProber(fixedProber(nil, errors.New("moov atom not found")))

	err := tr.Transform(context.Background(), req)
	assert.ErrorContains(t, err, "moov atom not found")
}

func TestTransform_MissingAudio(t *testing.T) {
	req := newRequest(t)
	req.AudioPath = filepath.Join(t.TempDir(), "missing.mp3")
	tr := NewTranscoder("ffmpeg", "ffprobe").WithProber(fixedProber(&StreamInfo{1080, 1920, 30, 1}, nil))

	err := tr.Transform(context.Background(), req)
	assert.ErrorContains(t, err, "audio track unavailable")
}
