package models

import (
	"path/filepath"
	"strings"
	"time"
)

// MediaType classifies a media item for both transmission and caching.
// Derived from the file extension; authoritative everywhere downstream.
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypePhoto MediaType = "photo"
)

// ParseMediaType maps a stored string back onto a MediaType.
func ParseMediaType(s string) (MediaType, bool) {
	switch MediaType(s) {
	case MediaTypeVideo, MediaTypePhoto:
		return MediaType(s), true
	default:
		return "", false
	}
}

// MediaTypeFromPath classifies a local file by its extension.
// Unknown extensions return false and the item is not relayed.
func MediaTypeFromPath(path string) (MediaType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "mp4", "mov", "webm", "mkv", "m4v":
		return MediaTypeVideo, true
	case "jpg", "jpeg", "png", "webp":
		return MediaTypePhoto, true
	default:
		return "", false
	}
}

// MediaRequest is one incoming unit of work: a URL posted in a chat.
type MediaRequest struct {
	URL       string
	ChatID    int64
	MessageID int
}

// MediaDescriptor holds pre-download metadata for a media item or playlist.
// Immutable once fetched.
type MediaDescriptor struct {
	ID           string
	Title        string
	Description  string
	Uploader     string
	Duration     float64 // seconds; 0 means unknown
	Filesize     int64   // approximate bytes; 0 means unknown
	HasThumbnail bool
	Width        int
	Height       int
	Type         string // extractor-reported type hint, e.g. "video"
	Entries      []MediaDescriptor
}

// IsPlaylist reports whether the descriptor has child entries.
func (d *MediaDescriptor) IsPlaylist() bool {
	return len(d.Entries) > 0
}

// DownloadedItem is one staged local file. The pipeline owns it
// exclusively until it is handed to the transport, after which the
// cleanup guard reclaims it for deletion.
type DownloadedItem struct {
	Path          string
	Type          MediaType
	ThumbnailPath string
}

// DownloadedMedia is the result of a download: either one item or an
// ordered group. The sealed interface keeps the transmit branches
// exhaustive.
type DownloadedMedia interface {
	isDownloadedMedia()
}

type SingleDownload struct {
	Item DownloadedItem
}

type GroupDownload struct {
	Items []DownloadedItem
}

func (SingleDownload) isDownloadedMedia() {}
func (GroupDownload) isDownloadedMedia()  {}

// SentMedia records one successfully transmitted item: the
// provider-assigned file handle plus its type.
type SentMedia struct {
	FileID string
	Type   MediaType
}

// CachedFile is one replayable handle inside a cache entry.
type CachedFile struct {
	FileID string
	Type   MediaType
}

// CacheEntry is the replayable result for one canonical URL.
// The file list is never empty; zero resolvable files means no entry.
type CacheEntry struct {
	ID         int64
	SourceURL  string
	Caption    string
	Files      []CachedFile
	LastUsedAt time.Time
}

// AuditStatus is the stable outcome vocabulary of the audit log.
type AuditStatus string

const (
	AuditStatusCached          AuditStatus = "cached"
	AuditStatusSuccess         AuditStatus = "success"
	AuditStatusError           AuditStatus = "error"
	AuditStatusValidationError AuditStatus = "validation_error"
)
