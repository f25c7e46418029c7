package config

import (
	"os"
	"path/filepath"
	"testing"

	"telegrab/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"telegram": {"token": "123:abc"},
		"database": {"path": "/tmp/telegrab.db"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "/tmp/telegrab.db", cfg.Database.Path)

	assert.Equal(t, float64(constants.DefaultMaxDurationSec), cfg.Limits.MaxDurationSec)
	assert.Equal(t, int64(constants.DefaultMaxFilesizeMB), cfg.Limits.MaxFilesizeMB)
	assert.Equal(t, constants.DefaultMaxVideoPlaylistItems, cfg.Limits.MaxVideoPlaylistItems)
	assert.Equal(t, constants.DefaultMaxPhotoPlaylistItems, cfg.Limits.MaxPhotoPlaylistItems)

	assert.Equal(t, constants.DefaultYtDlpBinary, cfg.Fetcher.BinaryPath)
	assert.Equal(t, os.TempDir(), cfg.Fetcher.StagingDir)
	assert.Equal(t, constants.DefaultMetadataTimeoutSec, cfg.Fetcher.MetadataTimeoutSec)
	assert.Equal(t, constants.DefaultDownloadTimeoutSec, cfg.Fetcher.DownloadTimeoutSec)

	assert.Equal(t, constants.DefaultCacheTTLDays, cfg.Cache.TTLDays)
	assert.Equal(t, constants.DefaultSweepIntervalHrs, cfg.Cache.SweepIntervalHrs)
	assert.Equal(t, constants.DefaultTelegramPollSec, cfg.Telegram.PollTimeoutSec)
	assert.Equal(t, constants.DefaultServerPort, cfg.Server.Port)

	assert.Equal(t, "telegrab", cfg.Tracing.ServiceName)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRate)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadConfigExplicitValues(t *testing.T) {
	path := writeConfig(t, `{
		"telegram": {"token": "123:abc", "via_link": "https://t.me/mybot", "pollTimeoutSec": 60},
		"database": {"path": "/data/bot.db"},
		"fetcher": {"binary_path": "/usr/local/bin/yt-dlp", "staging_dir": "/var/tmp/staging"},
		"limits": {"maxDurationSec": 900, "maxFilesizeMB": 100, "maxVideoPlaylistItems": 3, "maxPhotoPlaylistItems": 8},
		"cache": {"ttlDays": 7, "sweepIntervalHours": 6},
		"server": {"port": 9090},
		"log_level": "debug"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://t.me/mybot", cfg.Telegram.ViaLink)
	assert.Equal(t, 60, cfg.Telegram.PollTimeoutSec)
	assert.Equal(t, "/usr/local/bin/yt-dlp", cfg.Fetcher.BinaryPath)
	assert.Equal(t, "/var/tmp/staging", cfg.Fetcher.StagingDir)
	assert.Equal(t, float64(900), cfg.Limits.MaxDurationSec)
	assert.Equal(t, int64(100), cfg.Limits.MaxFilesizeMB)
	assert.Equal(t, 3, cfg.Limits.MaxVideoPlaylistItems)
	assert.Equal(t, 8, cfg.Limits.MaxPhotoPlaylistItems)
	assert.Equal(t, 7, cfg.Cache.TTLDays)
	assert.Equal(t, 6, cfg.Cache.SweepIntervalHrs)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"telegram": {"token": "file-token"},
		"database": {"path": "/tmp/file.db"}
	}`)

	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TELEGRAB_DB_PATH", "/tmp/env.db")
	t.Setenv("TELEGRAB_YTDLP_PATH", "/opt/yt-dlp")
	t.Setenv("PORT", "8888")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, "/opt/yt-dlp", cfg.Fetcher.BinaryPath)
	assert.Equal(t, 8888, cfg.Server.Port)
}

func TestLoadConfigEnvOnlySecrets(t *testing.T) {
	// The token never has to live in the file.
	path := writeConfig(t, `{
		"database": {"path": "/tmp/telegrab.db"}
	}`)

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
}

func TestLoadConfigMissingToken(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"path": "/tmp/telegrab.db"}
	}`)

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestLoadConfigMissingDBPath(t *testing.T) {
	path := writeConfig(t, `{
		"telegram": {"token": "123:abc"}
	}`)

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrMissingDBPath)
}

func TestLoadConfigInvalidPlaylistCeilings(t *testing.T) {
	path := writeConfig(t, `{
		"telegram": {"token": "123:abc"},
		"database": {"path": "/tmp/telegrab.db"},
		"limits": {"maxVideoPlaylistItems": 20, "maxPhotoPlaylistItems": 10}
	}`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "playlist ceiling")
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
