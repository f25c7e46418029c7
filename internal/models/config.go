package models

// Config holds the application configuration.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Fetcher  FetcherConfig  `json:"fetcher"`
	Database DatabaseConfig `json:"database"`
	Limits   LimitsConfig   `json:"limits"`
	Cache    CacheConfig    `json:"cache"`
	Server   ServerConfig   `json:"server"`
	Tracing  TracingConfig  `json:"tracing"`
	Retry    RetryConfig    `json:"retry"`
	LogLevel string         `json:"log_level" env:"TELEGRAB_LOG_LEVEL"`
}

// TelegramConfig holds bot transport configuration.
type TelegramConfig struct {
	Token          string `json:"token" env:"TELEGRAM_BOT_TOKEN"`
	ViaLink        string `json:"via_link" env:"TELEGRAB_VIA_LINK"`
	PollTimeoutSec int    `json:"pollTimeoutSec"`
}

// FetcherConfig holds yt-dlp invocation configuration.
type FetcherConfig struct {
	BinaryPath         string `json:"binary_path" env:"TELEGRAB_YTDLP_PATH"`
	StagingDir         string `json:"staging_dir" env:"TELEGRAB_STAGING_DIR"`
	MetadataTimeoutSec int    `json:"metadataTimeoutSec"`
	DownloadTimeoutSec int    `json:"downloadTimeoutSec"`
}

// DatabaseConfig holds database related configuration.
type DatabaseConfig struct {
	Path string `json:"path" env:"TELEGRAB_DB_PATH"`
}

// LimitsConfig holds the validation ceilings. Zero values are replaced
// with defaults at load time.
type LimitsConfig struct {
	MaxDurationSec        float64 `json:"maxDurationSec"`
	MaxFilesizeMB         int64   `json:"maxFilesizeMB"`
	MaxVideoPlaylistItems int     `json:"maxVideoPlaylistItems"`
	MaxPhotoPlaylistItems int     `json:"maxPhotoPlaylistItems"`
}

// CacheConfig holds replay-cache configuration.
type CacheConfig struct {
	TTLDays          int `json:"ttlDays"`
	SweepIntervalHrs int `json:"sweepIntervalHours"`
}

// ServerConfig holds the ops HTTP server configuration.
type ServerConfig struct {
	Port int `json:"port" env:"PORT"`
}

// TracingConfig holds OpenTelemetry configuration.
type TracingConfig struct {
	Enabled      bool    `json:"enabled" env:"TELEGRAB_TRACING_ENABLED"`
	ServiceName  string  `json:"serviceName"`
	Environment  string  `json:"environment" env:"TELEGRAB_ENV"`
	OTLPEndpoint string  `json:"otlpEndpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SampleRate   float64 `json:"sampleRate"`
	UseStdout    bool    `json:"useStdout"`
}

// RetryConfig holds startup retry configuration.
type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
