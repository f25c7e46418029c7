package service

import (
	"context"
	"errors"
	"time"

	apperrors "telegrab/internal/errors"
	"telegrab/internal/models"
	"telegrab/internal/tracing"
	"telegrab/pkg/fetcher"
	"telegrab/pkg/telegram"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Chat-facing replies. Every failure path produces exactly one of
// these; the media transmission itself is the success reply.
const (
	msgBusy            = "I'm already working on a request for you. Please wait until it's finished!"
	msgFetchInfoFailed = "Sorry, I could not fetch info for that link."
	msgTakingTooLong   = "Sorry, this is taking too long. Please try again later."
	msgDownloadFailed  = "Sorry, I could not process that link."
	msgNoSupportedType = "Sorry, I could not find a supported media type at that link."
	msgSendFailed      = "Sorry, there was an error while sending the media."
)

// Pipeline drives one request through cache-check, validation,
// download, transmission, cache population and audit logging. It is the
// complete error boundary: nothing propagates past Handle.
type Pipeline struct {
	fetcher   fetcher.Fetcher
	transport telegram.Transport
	cache     *CacheGateway
	validator *Validator
	limiter   *ChatLimiter
	viaLink   string
	logger    *logrus.Logger
}

func NewPipeline(f fetcher.Fetcher, t telegram.Transport, cache *CacheGateway, validator *Validator, limiter *ChatLimiter, viaLink string, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		fetcher:   f,
		transport: t,
		cache:     cache,
		validator: validator,
		limiter:   limiter,
		viaLink:   viaLink,
		logger:    logger,
	}
}

// Handle processes one media request end to end. At most one run per
// chat is in flight; a second request gets the busy reply and no
// pipeline run.
func (p *Pipeline) Handle(ctx context.Context, req models.MediaRequest) {
	guard, ok := p.limiter.TryAcquire(req.ChatID)
	if !ok {
		p.logger.WithField("chatID", req.ChatID).Info("Chat already has a request in flight")
		p.sendText(ctx, req, msgBusy)
		return
	}
	defer guard.Release()

	canonical := CanonicalizeURL(req.URL)
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "pipeline.run",
		attribute.Int64("chat.id", req.ChatID),
	)
	defer span.End()

	status := p.run(ctx, req, canonical)

	span.SetAttributes(attribute.String("pipeline.status", string(status)))
	p.cache.Audit(ctx, req.ChatID, canonical, status, time.Since(start))

	p.logger.WithFields(logrus.Fields{
		"chatID":  req.ChatID,
		"status":  status,
		"elapsed": time.Since(start).String(),
	}).Info("Request finished")
}

func (p *Pipeline) run(ctx context.Context, req models.MediaRequest, canonical string) models.AuditStatus {
	// CacheCheck: a hit that replays cleanly ends the run. A failed
	// replay falls through to a fresh pipeline; the user never learns a
	// stale entry existed.
	if entry := p.cacheCheck(ctx, canonical); entry != nil {
		if err := p.replay(ctx, req, entry); err == nil {
			return models.AuditStatusCached
		} else {
			p.logger.WithError(err).WithField("url", canonical).Warn("Cache replay failed, falling back to full run")
		}
	}

	// Validate
	descriptor, err := p.fetchMetadata(ctx, canonical)
	if err != nil {
		p.sendText(ctx, req, msgFetchInfoFailed)
		return models.AuditStatusError
	}

	if err := p.validator.Validate(descriptor); err != nil {
		p.sendText(ctx, req, apperrors.GetUserMessage(err))
		return models.AuditStatusValidationError
	}

	// Download. The cleanup guard arms before any branching on the
	// result, so every staged path is deleted no matter how the run
	// ends.
	cleanup := NewCleanupGuard(p.logger)
	defer cleanup.Release()

	result, err := p.download(ctx, descriptor, canonical)
	if result != nil {
		cleanup.Add(result.Staged...)
	}
	if err != nil {
		if errors.Is(err, fetcher.ErrTimeout) {
			p.sendText(ctx, req, msgTakingTooLong)
		} else {
			p.sendText(ctx, req, msgDownloadFailed)
		}
		return models.AuditStatusError
	}
	if result.Media == nil {
		p.sendText(ctx, req, msgNoSupportedType)
		return models.AuditStatusError
	}

	// Transmit
	caption := BuildCaption(descriptor, canonical, p.viaLink)

	sent, err := p.transmit(ctx, req, result.Media, caption)
	if err != nil {
		p.logger.WithError(err).WithField("chatID", req.ChatID).Error("Failed to transmit media")
		p.sendText(ctx, req, msgSendFailed)
		return models.AuditStatusError
	}

	// CacheStore: best-effort, never fails the request.
	p.cache.Store(ctx, canonical, caption, sent)

	return models.AuditStatusSuccess
}

func (p *Pipeline) cacheCheck(ctx context.Context, canonical string) *models.CacheEntry {
	ctx, span := tracing.StartSpan(ctx, "pipeline.cache_check")
	defer span.End()

	entry := p.cache.Lookup(ctx, canonical)
	span.SetAttributes(attribute.Bool("cache.hit", entry != nil))
	return entry
}

// replay redelivers a cached result by provider handles, stored order,
// caption on the first item only.
func (p *Pipeline) replay(ctx context.Context, req models.MediaRequest, entry *models.CacheEntry) error {
	ctx, span := tracing.StartSpan(ctx, "pipeline.replay")
	defer span.End()

	var err error
	if len(entry.Files) == 1 {
		err = p.transport.SendCachedSingle(ctx, req.ChatID, req.MessageID, entry.Files[0], entry.Caption)
	} else {
		err = p.transport.SendCachedGroup(ctx, req.ChatID, req.MessageID, entry.Files, entry.Caption)
	}
	tracing.RecordError(span, err)
	return err
}

func (p *Pipeline) fetchMetadata(ctx context.Context, url string) (*models.MediaDescriptor, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.fetch_metadata")
	defer span.End()

	descriptor, err := p.fetcher.FetchMetadata(ctx, url)
	if err != nil {
		tracing.RecordError(span, err)
		p.logger.WithError(err).WithField("url", url).Error("Metadata fetch failed")
		return nil, err
	}
	return descriptor, nil
}

func (p *Pipeline) download(ctx context.Context, descriptor *models.MediaDescriptor, url string) (*fetcher.Result, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.download")
	defer span.End()

	result, err := p.fetcher.Download(ctx, descriptor, url)
	if err != nil {
		tracing.RecordError(span, err)
		p.logger.WithError(err).WithField("url", url).Error("Download failed")
	}
	return result, err
}

func (p *Pipeline) transmit(ctx context.Context, req models.MediaRequest, media models.DownloadedMedia, caption string) ([]models.SentMedia, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.transmit")
	defer span.End()

	switch m := media.(type) {
	case models.SingleDownload:
		record, err := p.transport.SendSingle(ctx, req.ChatID, req.MessageID, m.Item, caption)
		if err != nil {
			tracing.RecordError(span, err)
			return nil, err
		}
		return []models.SentMedia{record}, nil

	case models.GroupDownload:
		records, err := p.transport.SendGroup(ctx, req.ChatID, req.MessageID, m.Items, caption)
		if err != nil {
			tracing.RecordError(span, err)
			return nil, err
		}
		return records, nil

	default:
		err := apperrors.New(apperrors.ErrCodeInternalError, "unknown downloaded media shape")
		tracing.RecordError(span, err)
		return nil, err
	}
}

// sendText delivers a failure or status reply. A failed delivery is
// logged only; the pipeline never errors past its boundary.
func (p *Pipeline) sendText(ctx context.Context, req models.MediaRequest, text string) {
	if err := p.transport.SendText(ctx, req.ChatID, req.MessageID, text); err != nil {
		p.logger.WithError(err).WithField("chatID", req.ChatID).Error("Failed to send text reply")
	}
}
