package telegram

import (
	"context"

	"telegrab/internal/models"
)

// Transport delivers media and text to a destination chat. Uploads
// return provider-assigned file handles so results can be replayed
// later without re-uploading.
type Transport interface {
	SendSingle(ctx context.Context, chatID int64, replyTo int, item models.DownloadedItem, caption string) (models.SentMedia, error)
	SendGroup(ctx context.Context, chatID int64, replyTo int, items []models.DownloadedItem, caption string) ([]models.SentMedia, error)
	SendCachedSingle(ctx context.Context, chatID int64, replyTo int, file models.CachedFile, caption string) error
	SendCachedGroup(ctx context.Context, chatID int64, replyTo int, files []models.CachedFile, caption string) error
	SendText(ctx context.Context, chatID int64, replyTo int, text string) error
	SendTyping(ctx context.Context, chatID int64) error
}
