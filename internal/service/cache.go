package service

import (
	"context"
	"time"

	"telegrab/internal/models"

	"github.com/sirupsen/logrus"
)

// PersistentStore is the durable storage the gateway wraps.
type PersistentStore interface {
	GetCachedMedia(ctx context.Context, sourceURL string) (*models.CacheEntry, error)
	StoreCachedMedia(ctx context.Context, sourceURL, caption string, files []models.SentMedia) error
	LogRequest(ctx context.Context, chatID int64, sourceURL string, status models.AuditStatus, processingTimeMs int64) error
	CleanupExpiredCache(ctx context.Context, ttlDays int) (int64, error)
}

// CacheGateway mediates all persistence from the pipeline. Persistence
// failures never fail the user-visible request: a failed read is a
// miss, a failed write or audit append is logged and swallowed.
type CacheGateway struct {
	store  PersistentStore
	logger *logrus.Logger
}

func NewCacheGateway(store PersistentStore, logger *logrus.Logger) *CacheGateway {
	return &CacheGateway{store: store, logger: logger}
}

// Lookup returns the cache entry for a canonical URL, or nil on miss.
func (g *CacheGateway) Lookup(ctx context.Context, sourceURL string) *models.CacheEntry {
	entry, err := g.store.GetCachedMedia(ctx, sourceURL)
	if err != nil {
		g.logger.WithError(err).WithField("url", sourceURL).Error("Cache lookup failed, treating as miss")
		return nil
	}
	return entry
}

// Store upserts the replayable result for a canonical URL. Best-effort.
func (g *CacheGateway) Store(ctx context.Context, sourceURL, caption string, files []models.SentMedia) {
	if err := g.store.StoreCachedMedia(ctx, sourceURL, caption, files); err != nil {
		g.logger.WithError(err).WithField("url", sourceURL).Error("Failed to store cache entry")
		return
	}
	g.logger.WithFields(logrus.Fields{
		"url":   sourceURL,
		"files": len(files),
	}).Info("Cached media for replay")
}

// Audit appends one request record. Best-effort.
func (g *CacheGateway) Audit(ctx context.Context, chatID int64, sourceURL string, status models.AuditStatus, elapsed time.Duration) {
	if err := g.store.LogRequest(ctx, chatID, sourceURL, status, elapsed.Milliseconds()); err != nil {
		g.logger.WithError(err).Error("Failed to append audit record")
	}
}

// Sweep removes entries unused for longer than the TTL.
func (g *CacheGateway) Sweep(ctx context.Context, ttlDays int) {
	removed, err := g.store.CleanupExpiredCache(ctx, ttlDays)
	if err != nil {
		g.logger.WithError(err).Error("Cache sweep failed")
		return
	}
	g.logger.WithField("removed", removed).Info("Cache sweep completed")
}
