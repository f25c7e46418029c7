package telegram

import (
	"context"
	"fmt"
	"os"

	"telegrab/internal/models"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/sirupsen/logrus"
)

// Client is the telego-backed Transport implementation.
type Client struct {
	bot    *telego.Bot
	logger *logrus.Logger
}

func NewClient(token string, logger *logrus.Logger) (*Client, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Client{bot: bot, logger: logger}, nil
}

// Bot exposes the underlying bot for the update listener.
func (c *Client) Bot() *telego.Bot {
	return c.bot
}

func (c *Client) SendSingle(ctx context.Context, chatID int64, replyTo int, item models.DownloadedItem, caption string) (models.SentMedia, error) {
	file, err := os.Open(item.Path)
	if err != nil {
		return models.SentMedia{}, fmt.Errorf("failed to open media file: %w", err)
	}
	defer file.Close()

	reply := replyParams(replyTo)

	switch item.Type {
	case models.MediaTypeVideo:
		params := &telego.SendVideoParams{
			ChatID:          tu.ID(chatID),
			Video:           tu.File(file),
			Caption:         caption,
			ParseMode:       telego.ModeHTML,
			ReplyParameters: reply,
		}
		if item.ThumbnailPath != "" {
			thumb, err := os.Open(item.ThumbnailPath)
			if err == nil {
				defer thumb.Close()
				thumbFile := tu.File(thumb)
				params.Thumbnail = &thumbFile
			}
		}
		msg, err := c.bot.SendVideo(ctx, params)
		if err != nil {
			return models.SentMedia{}, fmt.Errorf("failed to send video: %w", err)
		}
		return sentMediaFromMessage(msg)

	case models.MediaTypePhoto:
		msg, err := c.bot.SendPhoto(ctx, &telego.SendPhotoParams{
			ChatID:          tu.ID(chatID),
			Photo:           tu.File(file),
			Caption:         caption,
			ParseMode:       telego.ModeHTML,
			ReplyParameters: reply,
		})
		if err != nil {
			return models.SentMedia{}, fmt.Errorf("failed to send photo: %w", err)
		}
		return sentMediaFromMessage(msg)

	default:
		return models.SentMedia{}, fmt.Errorf("unsupported media type: %s", item.Type)
	}
}

func (c *Client) SendGroup(ctx context.Context, chatID int64, replyTo int, items []models.DownloadedItem, caption string) ([]models.SentMedia, error) {
	media := make([]telego.InputMedia, 0, len(items))
	openFiles := make([]*os.File, 0, len(items))
	defer func() {
		for _, f := range openFiles {
			f.Close()
		}
	}()

	for i, item := range items {
		file, err := os.Open(item.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open media file: %w", err)
		}
		openFiles = append(openFiles, file)

		// Only the first element carries the caption.
		itemCaption := ""
		if i == 0 {
			itemCaption = caption
		}
		media = append(media, inputMediaForUpload(item.Type, tu.File(file), itemCaption))
	}

	c.logger.WithFields(logrus.Fields{
		"chatID": chatID,
		"items":  len(media),
	}).Info("Sending media group")

	messages, err := c.bot.SendMediaGroup(ctx, &telego.SendMediaGroupParams{
		ChatID:          tu.ID(chatID),
		Media:           media,
		ReplyParameters: replyParams(replyTo),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send media group: %w", err)
	}

	sent := make([]models.SentMedia, 0, len(messages))
	for i := range messages {
		record, err := sentMediaFromMessage(&messages[i])
		if err != nil {
			return nil, err
		}
		sent = append(sent, record)
	}
	return sent, nil
}

func (c *Client) SendCachedSingle(ctx context.Context, chatID int64, replyTo int, file models.CachedFile, caption string) error {
	reply := replyParams(replyTo)

	switch file.Type {
	case models.MediaTypeVideo:
		_, err := c.bot.SendVideo(ctx, &telego.SendVideoParams{
			ChatID:          tu.ID(chatID),
			Video:           tu.FileFromID(file.FileID),
			Caption:         caption,
			ParseMode:       telego.ModeHTML,
			ReplyParameters: reply,
		})
		if err != nil {
			return fmt.Errorf("failed to resend cached video: %w", err)
		}
	case models.MediaTypePhoto:
		_, err := c.bot.SendPhoto(ctx, &telego.SendPhotoParams{
			ChatID:          tu.ID(chatID),
			Photo:           tu.FileFromID(file.FileID),
			Caption:         caption,
			ParseMode:       telego.ModeHTML,
			ReplyParameters: reply,
		})
		if err != nil {
			return fmt.Errorf("failed to resend cached photo: %w", err)
		}
	default:
		return fmt.Errorf("unsupported media type: %s", file.Type)
	}
	return nil
}

func (c *Client) SendCachedGroup(ctx context.Context, chatID int64, replyTo int, files []models.CachedFile, caption string) error {
	media := make([]telego.InputMedia, 0, len(files))
	for i, f := range files {
		itemCaption := ""
		if i == 0 {
			itemCaption = caption
		}
		media = append(media, inputMediaForUpload(f.Type, tu.FileFromID(f.FileID), itemCaption))
	}

	_, err := c.bot.SendMediaGroup(ctx, &telego.SendMediaGroupParams{
		ChatID:          tu.ID(chatID),
		Media:           media,
		ReplyParameters: replyParams(replyTo),
	})
	if err != nil {
		return fmt.Errorf("failed to resend cached media group: %w", err)
	}
	return nil
}

func (c *Client) SendText(ctx context.Context, chatID int64, replyTo int, text string) error {
	params := tu.Message(tu.ID(chatID), text)
	params.ParseMode = telego.ModeHTML
	params.ReplyParameters = replyParams(replyTo)

	if _, err := c.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (c *Client) SendTyping(ctx context.Context, chatID int64) error {
	return c.bot.SendChatAction(ctx, tu.ChatAction(tu.ID(chatID), telego.ChatActionTyping))
}

func replyParams(replyTo int) *telego.ReplyParameters {
	if replyTo == 0 {
		return nil
	}
	return &telego.ReplyParameters{MessageID: replyTo}
}

func inputMediaForUpload(mediaType models.MediaType, file telego.InputFile, caption string) telego.InputMedia {
	switch mediaType {
	case models.MediaTypeVideo:
		m := tu.MediaVideo(file)
		if caption != "" {
			m = m.WithCaption(caption).WithParseMode(telego.ModeHTML)
		}
		return m
	default:
		m := tu.MediaPhoto(file)
		if caption != "" {
			m = m.WithCaption(caption).WithParseMode(telego.ModeHTML)
		}
		return m
	}
}

// sentMediaFromMessage extracts the provider handle for the delivered
// item. For photos Telegram reports multiple sizes; the last entry is
// the largest and is the one worth replaying.
func sentMediaFromMessage(msg *telego.Message) (models.SentMedia, error) {
	switch {
	case msg.Video != nil:
		return models.SentMedia{FileID: msg.Video.FileID, Type: models.MediaTypeVideo}, nil
	case len(msg.Photo) > 0:
		return models.SentMedia{FileID: msg.Photo[len(msg.Photo)-1].FileID, Type: models.MediaTypePhoto}, nil
	default:
		return models.SentMedia{}, fmt.Errorf("sent message carries no replayable media")
	}
}
