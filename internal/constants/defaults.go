package constants

// Default validation ceilings
const (
	DefaultMaxDurationSec        = 1800
	DefaultMaxFilesizeMB         = 500
	DefaultMaxVideoPlaylistItems = 5
	DefaultMaxPhotoPlaylistItems = 10
)

// Caption construction
const (
	CaptionMaxLength = 1024
	CaptionEllipsis  = "…"
)

// Default fetcher configuration
const (
	DefaultYtDlpBinary        = "yt-dlp"
	DefaultMetadataTimeoutSec = 30
	DefaultDownloadTimeoutSec = 300
)

// Default cache and dispatch configuration
const (
	DefaultCacheTTLDays     = 30
	DefaultSweepIntervalHrs = 12
	DefaultTelegramPollSec  = 30
	DefaultPipelineWorkers  = 8
)

// Default timeout values
const (
	DefaultServerPort            = 8082
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultGracefulShutdownSec   = 30
	DefaultDatabaseRetryAttempts = 3
	DefaultBackoffInitialMs      = 500
	DefaultBackoffMaxMs          = 30000
	DefaultChatLimiterShards     = 16
)
