package fetcher

import (
	"context"
	"errors"

	"telegrab/internal/models"
)

// Sentinel errors distinguishing the failure modes the pipeline cares
// about. Wrapped errors carry the underlying detail.
var (
	ErrTimeout       = errors.New("media fetch timed out")
	ErrCommandFailed = errors.New("media fetch command failed")
	ErrParsingFailed = errors.New("media fetch output could not be parsed")
)

// Result is what a download produces. Media holds the relayable items;
// Staged lists every local path that was materialized, including
// thumbnails and files of unsupported types, so the caller can delete
// them all.
type Result struct {
	Media  models.DownloadedMedia
	Staged []string
}

// Fetcher retrieves media metadata and files for a URL.
type Fetcher interface {
	FetchMetadata(ctx context.Context, url string) (*models.MediaDescriptor, error)
	Download(ctx context.Context, descriptor *models.MediaDescriptor, url string) (*Result, error)
}
