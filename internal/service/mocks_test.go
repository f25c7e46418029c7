package service

import (
	"context"

	"telegrab/internal/models"
	"telegrab/pkg/fetcher"

	"github.com/stretchr/testify/mock"
)

// Mock media fetcher
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchMetadata(ctx context.Context, url string) (*models.MediaDescriptor, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MediaDescriptor), args.Error(1)
}

func (m *mockFetcher) Download(ctx context.Context, descriptor *models.MediaDescriptor, url string) (*fetcher.Result, error) {
	args := m.Called(ctx, descriptor, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fetcher.Result), args.Error(1)
}

// Mock chat transport
type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) SendSingle(ctx context.Context, chatID int64, replyTo int, item models.DownloadedItem, caption string) (models.SentMedia, error) {
	args := m.Called(ctx, chatID, replyTo, item, caption)
	return args.Get(0).(models.SentMedia), args.Error(1)
}

func (m *mockTransport) SendGroup(ctx context.Context, chatID int64, replyTo int, items []models.DownloadedItem, caption string) ([]models.SentMedia, error) {
	args := m.Called(ctx, chatID, replyTo, items, caption)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SentMedia), args.Error(1)
}

func (m *mockTransport) SendCachedSingle(ctx context.Context, chatID int64, replyTo int, file models.CachedFile, caption string) error {
	args := m.Called(ctx, chatID, replyTo, file, caption)
	return args.Error(0)
}

func (m *mockTransport) SendCachedGroup(ctx context.Context, chatID int64, replyTo int, files []models.CachedFile, caption string) error {
	args := m.Called(ctx, chatID, replyTo, files, caption)
	return args.Error(0)
}

func (m *mockTransport) SendText(ctx context.Context, chatID int64, replyTo int, text string) error {
	args := m.Called(ctx, chatID, replyTo, text)
	return args.Error(0)
}

func (m *mockTransport) SendTyping(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

// Mock persistent store
type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetCachedMedia(ctx context.Context, sourceURL string) (*models.CacheEntry, error) {
	args := m.Called(ctx, sourceURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CacheEntry), args.Error(1)
}

func (m *mockStore) StoreCachedMedia(ctx context.Context, sourceURL, caption string, files []models.SentMedia) error {
	args := m.Called(ctx, sourceURL, caption, files)
	return args.Error(0)
}

func (m *mockStore) LogRequest(ctx context.Context, chatID int64, sourceURL string, status models.AuditStatus, processingTimeMs int64) error {
	args := m.Called(ctx, chatID, sourceURL, status, processingTimeMs)
	return args.Error(0)
}

func (m *mockStore) CleanupExpiredCache(ctx context.Context, ttlDays int) (int64, error) {
	args := m.Called(ctx, ttlDays)
	return args.Get(0).(int64), args.Error(1)
}
