package config

import (
	"encoding/json"
	"fmt"
	"os"

	"telegrab/internal/constants"
	"telegrab/internal/models"

	"github.com/caarlos0/env/v11"
)

var (
	ErrMissingToken  = models.ConfigError{Message: "missing Telegram bot token"}
	ErrMissingDBPath = models.ConfigError{Message: "missing database path"}
)

// LoadConfig reads the JSON config file, layers environment overrides on
// top, fills in defaults and validates the result.
func LoadConfig(path string) (*models.Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(c *models.Config) {
	if c.Limits.MaxDurationSec <= 0 {
		c.Limits.MaxDurationSec = constants.DefaultMaxDurationSec
	}
	if c.Limits.MaxFilesizeMB <= 0 {
		c.Limits.MaxFilesizeMB = constants.DefaultMaxFilesizeMB
	}
	if c.Limits.MaxVideoPlaylistItems <= 0 {
		c.Limits.MaxVideoPlaylistItems = constants.DefaultMaxVideoPlaylistItems
	}
	if c.Limits.MaxPhotoPlaylistItems <= 0 {
		c.Limits.MaxPhotoPlaylistItems = constants.DefaultMaxPhotoPlaylistItems
	}

	if c.Fetcher.BinaryPath == "" {
		c.Fetcher.BinaryPath = constants.DefaultYtDlpBinary
	}
	if c.Fetcher.StagingDir == "" {
		c.Fetcher.StagingDir = os.TempDir()
	}
	if c.Fetcher.MetadataTimeoutSec <= 0 {
		c.Fetcher.MetadataTimeoutSec = constants.DefaultMetadataTimeoutSec
	}
	if c.Fetcher.DownloadTimeoutSec <= 0 {
		c.Fetcher.DownloadTimeoutSec = constants.DefaultDownloadTimeoutSec
	}

	if c.Cache.TTLDays <= 0 {
		c.Cache.TTLDays = constants.DefaultCacheTTLDays
	}
	if c.Cache.SweepIntervalHrs <= 0 {
		c.Cache.SweepIntervalHrs = constants.DefaultSweepIntervalHrs
	}

	if c.Telegram.PollTimeoutSec <= 0 {
		c.Telegram.PollTimeoutSec = constants.DefaultTelegramPollSec
	}

	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
	}

	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultBackoffInitialMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultBackoffMaxMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultDatabaseRetryAttempts
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "telegrab"
	}
	if c.Tracing.SampleRate <= 0 {
		c.Tracing.SampleRate = 1.0
	}
}

func validate(c *models.Config) error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}
	if c.Limits.MaxVideoPlaylistItems > c.Limits.MaxPhotoPlaylistItems {
		return models.ConfigError{Message: "video playlist ceiling must not exceed photo playlist ceiling"}
	}
	return nil
}
