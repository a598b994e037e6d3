package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadDefaults loads from an empty directory so only env-default tags apply.
func loadDefaults(t *testing.T) Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := Load(DefaultFile)
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadDefaults(t)
	assert.Equal(t, 0.9, cfg.ScaleFactor)
	assert.Equal(t, 0.9, cfg.FrameRateFactor)
	assert.Equal(t, 30, cfg.Count)
	assert.Equal(t, "song.mp3", cfg.AudioFile)
	assert.Equal(t, "report", cfg.ReportName)
	assert.Equal(t, DownloaderYtDlp, cfg.Downloader)
	assert.Equal(t, 10, cfg.Apify.PageSize)
	assert.Equal(t, 3*time.Second, cfg.Apify.PollInterval())
	assert.Equal(t, "ffprobe", cfg.Binaries.Ffprobe)
}

func TestValidate(t *testing.T) {
	base := loadDefaults(t)
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults are valid", func(*Config) {}, nil},
		{"scale of one is valid", func(c *Config) { c.ScaleFactor = 1 }, nil},
		{"zero scale", func(c *Config) { c.ScaleFactor = 0 }, ErrScaleFactor},
		{"scale above one", func(c *Config) { c.ScaleFactor = 1.5 }, ErrScaleFactor},
		{"negative fps factor", func(c *Config) { c.FrameRateFactor = -0.1 }, ErrFrameRateFactor},
		{"zero count", func(c *Config) { c.Count = 0 }, ErrCount},
		{"missing audio", func(c *Config) { c.AudioFile = "" }, ErrAudioFile},
		{"missing report", func(c *Config) { c.ReportName = "" }, ErrReportName},
		{"resolve backend", func(c *Config) { c.Downloader = DownloaderResolve }, nil},
		{"unknown backend", func(c *Config) { c.Downloader = "curl" }, ErrDownloader},
		{"zero page size", func(c *Config) { c.Apify.PageSize = 0 }, ErrPageSize},
		{"zero poll interval", func(c *Config) { c.Apify.PollSeconds = 0 }, ErrPollInterval},
		{"first invalid field wins", func(c *Config) { c.Count = -1; c.ReportName = "" }, ErrCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRENDPIPE_COUNT", "5")
	t.Setenv("TRENDPIPE_SCALE_FACTOR", "0.5")
	t.Setenv("APIFY_API_TOKEN", "tok")

	cfg, err := Load(DefaultFile)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Count)
	assert.Equal(t, 0.5, cfg.ScaleFactor)
	assert.Equal(t, 0.9, cfg.FrameRateFactor)
	assert.Equal(t, "tok", cfg.Apify.Token)
	assert.Equal(t, "clockworks~tiktok-scraper", cfg.Apify.ActorID)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, DefaultFile)
	yaml := "count: 3\naudio_file: track.mp3\napify:\n  hashtag: dance\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Count)
	assert.Equal(t, "track.mp3", cfg.AudioFile)
	assert.Equal(t, "dance", cfg.Apify.Hashtag)
	assert.Equal(t, "report", cfg.ReportName)
}

func TestLoad_PollIntervalRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APIFY_POLL_SECONDS", "0")

	_, err := Load(DefaultFile)
	assert.ErrorIs(t, err, ErrPollInterval)
}

func TestLoad_InvalidValueRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRENDPIPE_FPS_FACTOR", "2")

	_, err := Load(DefaultFile)
	assert.ErrorIs(t, err, ErrFrameRateFactor)
}
