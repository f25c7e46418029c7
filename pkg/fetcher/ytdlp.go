package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"telegrab/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ytdlpInfo mirrors the subset of yt-dlp's JSON output we consume.
type ytdlpInfo struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Uploader       string      `json:"uploader"`
	Duration       float64     `json:"duration"`
	Filesize       int64       `json:"filesize"`
	FilesizeApprox int64       `json:"filesize_approx"`
	Thumbnail      string      `json:"thumbnail"`
	Width          int         `json:"width"`
	Height         int         `json:"height"`
	Type           string      `json:"_type"`
	Filename       string      `json:"_filename"`
	Ext            string      `json:"ext"`
	Entries        []ytdlpInfo `json:"entries"`
}

// YtDlpFetcher shells out to the yt-dlp binary. Metadata and download
// runs carry independent timeouts so the pipeline can tell a slow
// extractor apart from a broken one.
type YtDlpFetcher struct {
	binary          string
	stagingDir      string
	metadataTimeout time.Duration
	downloadTimeout time.Duration
	logger          *logrus.Logger
}

func NewYtDlpFetcher(cfg models.FetcherConfig, logger *logrus.Logger) *YtDlpFetcher {
	return &YtDlpFetcher{
		binary:          cfg.BinaryPath,
		stagingDir:      cfg.StagingDir,
		metadataTimeout: time.Duration(cfg.MetadataTimeoutSec) * time.Second,
		downloadTimeout: time.Duration(cfg.DownloadTimeoutSec) * time.Second,
		logger:          logger,
	}
}

func (f *YtDlpFetcher) FetchMetadata(ctx context.Context, url string) (*models.MediaDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, f.metadataTimeout)
	defer cancel()

	stdout, err := f.run(ctx, "-J", "--no-warnings", "--ignore-config", url)
	if err != nil {
		return nil, err
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	descriptor := descriptorFromInfo(&info)
	return &descriptor, nil
}

func (f *YtDlpFetcher) Download(ctx context.Context, descriptor *models.MediaDescriptor, url string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.downloadTimeout)
	defer cancel()

	template := filepath.Join(f.stagingDir, uuid.NewString()+".%(id)s.%(ext)s")

	f.logger.WithField("url", url).Info("Downloading media")

	stdout, err := f.run(ctx,
		"--print-json",
		"--no-warnings",
		"--ignore-config",
		"--write-thumbnail",
		"--convert-thumbnails", "jpg",
		"-o", template,
		url,
	)
	if err != nil {
		return nil, err
	}

	return f.collectResult(stdout)
}

// collectResult parses one JSON object per downloaded file from the
// yt-dlp output and classifies each staged file by extension.
func (f *YtDlpFetcher) collectResult(stdout []byte) (*Result, error) {
	result := &Result{}
	var items []models.DownloadedItem
	parsedAny := false

	for _, line := range strings.Split(string(stdout), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var info ytdlpInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			f.logger.WithError(err).Warn("Failed to parse a line of yt-dlp output")
			continue
		}
		parsedAny = true

		if info.Filename == "" {
			continue
		}
		result.Staged = append(result.Staged, info.Filename)

		mediaType, ok := models.MediaTypeFromPath(info.Filename)
		if !ok {
			f.logger.WithField("file", filepath.Base(info.Filename)).Warn("Skipping unsupported media type")
			continue
		}

		item := models.DownloadedItem{Path: info.Filename, Type: mediaType}
		if mediaType == models.MediaTypeVideo {
			if thumb, ok := f.findThumbnail(info.Filename); ok {
				item.ThumbnailPath = thumb
				result.Staged = append(result.Staged, thumb)
			}
		}
		items = append(items, item)
	}

	if !parsedAny {
		return nil, fmt.Errorf("%w: no media metadata in yt-dlp output", ErrParsingFailed)
	}

	switch len(items) {
	case 0:
		// Staged files still flow back for cleanup.
	case 1:
		result.Media = models.SingleDownload{Item: items[0]}
	default:
		result.Media = models.GroupDownload{Items: items}
	}

	return result, nil
}

// findThumbnail locates the sidecar written by --write-thumbnail.
func (f *YtDlpFetcher) findThumbnail(mediaPath string) (string, bool) {
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	for _, ext := range []string{".jpg", ".webp", ".png"} {
		candidate := base + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

func (f *YtDlpFetcher) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, f.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w: %s", ErrTimeout, f.binary)
	}
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		f.logger.WithField("stderr", detail).Error("yt-dlp invocation failed")
		return nil, fmt.Errorf("%w: %s", ErrCommandFailed, detail)
	}

	return stdout.Bytes(), nil
}

func descriptorFromInfo(info *ytdlpInfo) models.MediaDescriptor {
	filesize := info.Filesize
	if filesize == 0 {
		filesize = info.FilesizeApprox
	}

	descriptor := models.MediaDescriptor{
		ID:           info.ID,
		Title:        info.Title,
		Description:  info.Description,
		Uploader:     info.Uploader,
		Duration:     info.Duration,
		Filesize:     filesize,
		HasThumbnail: info.Thumbnail != "",
		Width:        info.Width,
		Height:       info.Height,
		Type:         info.Type,
	}

	for i := range info.Entries {
		descriptor.Entries = append(descriptor.Entries, descriptorFromInfo(&info.Entries[i]))
	}

	return descriptor
}
