package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"telegrab/internal/constants"
	"telegrab/internal/models"
	"telegrab/pkg/telegram"

	"github.com/mymmrac/telego"
	"github.com/sirupsen/logrus"
)

const startGuide = `Hello there! I can download videos and photos from many platforms.

<b>How to use me</b>
Send me the URL of the media you want and I will fetch it and reply with the file, original caption included (up to 1024 characters).

If a link fails, double-check the URL or try again later. Not every site is supported.

/start — show this guide
/version — show bot version`

// UpdateListener consumes Telegram updates and dispatches media
// requests onto a bounded worker pool. One update is one task; the
// per-chat limiter inside the pipeline keeps concurrent requests from
// the same chat from overlapping.
type UpdateListener struct {
	client      *telegram.Client
	pipeline    *Pipeline
	logger      *logrus.Logger
	version     string
	pollTimeout int
	sem         chan struct{}
	wg          sync.WaitGroup
}

func NewUpdateListener(client *telegram.Client, pipeline *Pipeline, cfg models.TelegramConfig, version string, logger *logrus.Logger) *UpdateListener {
	return &UpdateListener{
		client:      client,
		pipeline:    pipeline,
		logger:      logger,
		version:     version,
		pollTimeout: cfg.PollTimeoutSec,
		sem:         make(chan struct{}, constants.DefaultPipelineWorkers),
	}
}

// Start begins long polling. It returns once polling is established;
// update handling continues until ctx is cancelled.
func (l *UpdateListener) Start(ctx context.Context) error {
	updates, err := l.client.Bot().UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: l.pollTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	l.logger.Info("Telegram update listener started")

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					l.logger.Warn("Updates channel closed")
					return
				}
				if update.Message != nil {
					l.handleMessage(ctx, update.Message)
				}
			}
		}
	}()

	return nil
}

// Wait blocks until the update loop and all in-flight workers finish.
func (l *UpdateListener) Wait() {
	l.wg.Wait()
}

func (l *UpdateListener) handleMessage(ctx context.Context, msg *telego.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	req := models.MediaRequest{
		URL:       text,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
	}

	switch {
	case strings.HasPrefix(text, "/start"):
		l.reply(ctx, req, startGuide)
	case strings.HasPrefix(text, "/version"):
		l.reply(ctx, req, fmt.Sprintf("telegrab version %s", l.version))
	case isMediaURL(text):
		l.dispatch(ctx, req)
	default:
		l.reply(ctx, req, "Your message isn't a valid link!")
	}
}

// dispatch hands the request to a worker. The semaphore bounds total
// concurrency; the per-chat permit is acquired inside the pipeline so
// the busy reply stays immediate.
func (l *UpdateListener) dispatch(ctx context.Context, req models.MediaRequest) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		select {
		case l.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-l.sem }()

		if err := l.client.SendTyping(ctx, req.ChatID); err != nil {
			l.logger.WithError(err).Debug("Failed to send typing action")
		}
		l.pipeline.Handle(ctx, req)
	}()
}

func (l *UpdateListener) reply(ctx context.Context, req models.MediaRequest, text string) {
	if err := l.client.SendText(ctx, req.ChatID, req.MessageID, text); err != nil {
		l.logger.WithError(err).WithField("chatID", req.ChatID).Error("Failed to send reply")
	}
}

func isMediaURL(text string) bool {
	u, err := url.ParseRequestURI(text)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
