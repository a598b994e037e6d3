// Package config holds the run configuration: defaults, environment and
// optional YAML file loading, and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultFile is read when present in the working directory.
const DefaultFile = "trendpipe.yaml"

// DownloaderBackend selects how videos are fetched.
type DownloaderBackend string

const (
	DownloaderYtDlp   DownloaderBackend = "ytdlp"   // yt-dlp writes the file itself (default).
	DownloaderResolve DownloaderBackend = "resolve" // yt-dlp resolves the media URL, HTTP streams it.
)

// ApifyConfig configures the trend source.
type ApifyConfig struct {
	Token       string `yaml:"token" env:"APIFY_API_TOKEN"`
	BaseURL     string `yaml:"base_url" env:"APIFY_BASE_URL" env-default:"https://api.apify.com/v2"`
	ActorID     string `yaml:"actor_id" env:"APIFY_ACTOR_ID" env-default:"clockworks~tiktok-scraper"`
	Hashtag     string `yaml:"hashtag" env:"APIFY_HASHTAG" env-default:"fyp"`
	PageSize    int    `yaml:"page_size" env:"APIFY_PAGE_SIZE" env-default:"10" validate:"gt=0"`
	PollSeconds int    `yaml:"poll_seconds" env:"APIFY_POLL_SECONDS" env-default:"3" validate:"gte=1"`
}

// PollInterval returns the actor run polling interval.
func (c ApifyConfig) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// BinaryConfig locates the external tools.
type BinaryConfig struct {
	YtDlp   string `yaml:"ytdlp" env:"YTDLP_BINARY" env-default:"yt-dlp"`
	Ffmpeg  string `yaml:"ffmpeg" env:"FFMPEG_BINARY" env-default:"ffmpeg"`
	Ffprobe string `yaml:"ffprobe" env:"FFPROBE_BINARY" env-default:"ffprobe"`
}

// Config is built once at startup and not mutated afterwards.
type Config struct {
	ScaleFactor     float64           `yaml:"scale_factor" env:"TRENDPIPE_SCALE_FACTOR" env-default:"0.9" validate:"gt=0,lte=1"`
	FrameRateFactor float64           `yaml:"fps_factor" env:"TRENDPIPE_FPS_FACTOR" env-default:"0.9" validate:"gt=0,lte=1"`
	Count           int               `yaml:"count" env:"TRENDPIPE_COUNT" env-default:"30" validate:"gt=0"`
	AudioFile       string            `yaml:"audio_file" env:"TRENDPIPE_AUDIO_FILE" env-default:"song.mp3" validate:"required"`
	ReportName      string            `yaml:"report_name" env:"TRENDPIPE_REPORT_NAME" env-default:"report" validate:"required"`
	WorkDir         string            `yaml:"work_dir" env:"TRENDPIPE_WORK_DIR" env-default:"."`
	LogDir          string            `yaml:"log_dir" env:"TRENDPIPE_LOG_DIR" env-default:"."`
	LogLevel        string            `yaml:"log_level" env:"TRENDPIPE_LOG_LEVEL" env-default:"info"`
	Downloader      DownloaderBackend `yaml:"downloader" env:"TRENDPIPE_DOWNLOADER" env-default:"ytdlp" validate:"oneof=ytdlp resolve"`

	Apify    ApifyConfig  `yaml:"apify"`
	Binaries BinaryConfig `yaml:"binaries"`
}

// Load reads .env (if any), then path (if it exists) and the environment,
// and validates the result.
func Load(path string) (Config, error) {
	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load configuration from %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Sentinel errors returned by Validate.
var (
	ErrScaleFactor     = errors.New("scale factor must be in (0, 1]")
	ErrFrameRateFactor = errors.New("frame rate factor must be in (0, 1]")
	ErrCount           = errors.New("count must be positive")
	ErrAudioFile       = errors.New("audio file is required")
	ErrReportName      = errors.New("report name is required")
	ErrDownloader      = errors.New("unknown downloader backend")
	ErrPageSize        = errors.New("apify page size must be positive")
	ErrPollInterval    = errors.New("apify poll interval must be at least one second")
)

// fieldErrors maps validated fields to the sentinel reported for them.
var fieldErrors = map[string]error{
	"Config.ScaleFactor":       ErrScaleFactor,
	"Config.FrameRateFactor":   ErrFrameRateFactor,
	"Config.Count":             ErrCount,
	"Config.AudioFile":         ErrAudioFile,
	"Config.ReportName":        ErrReportName,
	"Config.Downloader":        ErrDownloader,
	"Config.Apify.PageSize":    ErrPageSize,
	"Config.Apify.PollSeconds": ErrPollInterval,
}

var validate = validator.New()

// Validate checks value ranges. It does not touch the filesystem.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	first := fieldErrs[0]
	if sentinel, ok := fieldErrors[first.StructNamespace()]; ok {
		return fmt.Errorf("%w: got %v", sentinel, first.Value())
	}
	return fmt.Errorf("invalid configuration: %w", err)
}
