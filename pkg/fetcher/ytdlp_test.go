package fetcher

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"telegrab/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher(t *testing.T) *YtDlpFetcher {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewYtDlpFetcher(models.FetcherConfig{
		BinaryPath:         "yt-dlp",
		StagingDir:         t.TempDir(),
		MetadataTimeoutSec: 30,
		DownloadTimeoutSec: 300,
	}, logger)
}

func downloadLine(t *testing.T, filename string) string {
	t.Helper()
	line, err := json.Marshal(map[string]any{
		"id":        "vid123",
		"title":     "A title",
		"_filename": filename,
	})
	require.NoError(t, err)
	return string(line)
}

func TestCollectResultSingleVideo(t *testing.T) {
	f := testFetcher(t)
	path := filepath.Join(t.TempDir(), "u.vid123.mp4")

	result, err := f.collectResult([]byte(downloadLine(t, path) + "\n"))
	require.NoError(t, err)

	single, ok := result.Media.(models.SingleDownload)
	require.True(t, ok)
	assert.Equal(t, path, single.Item.Path)
	assert.Equal(t, models.MediaTypeVideo, single.Item.Type)
	assert.Empty(t, single.Item.ThumbnailPath)
	assert.Equal(t, []string{path}, result.Staged)
}

func TestCollectResultVideoWithThumbnail(t *testing.T) {
	f := testFetcher(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "u.vid123.mp4")
	thumb := filepath.Join(dir, "u.vid123.jpg")
	require.NoError(t, os.WriteFile(thumb, []byte("jpg"), 0600))

	result, err := f.collectResult([]byte(downloadLine(t, path)))
	require.NoError(t, err)

	single, ok := result.Media.(models.SingleDownload)
	require.True(t, ok)
	assert.Equal(t, thumb, single.Item.ThumbnailPath)
	assert.ElementsMatch(t, []string{path, thumb}, result.Staged)
}

func TestCollectResultGroup(t *testing.T) {
	f := testFetcher(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "u.p1.jpg")
	b := filepath.Join(dir, "u.p2.jpg")

	stdout := downloadLine(t, a) + "\n" + downloadLine(t, b) + "\n"
	result, err := f.collectResult([]byte(stdout))
	require.NoError(t, err)

	group, ok := result.Media.(models.GroupDownload)
	require.True(t, ok)
	require.Len(t, group.Items, 2)
	assert.Equal(t, a, group.Items[0].Path)
	assert.Equal(t, b, group.Items[1].Path)
	assert.Equal(t, models.MediaTypePhoto, group.Items[0].Type)
}

func TestCollectResultUnsupportedTypeStillStaged(t *testing.T) {
	f := testFetcher(t)
	dir := t.TempDir()
	audio := filepath.Join(dir, "u.track.mp3")
	video := filepath.Join(dir, "u.clip.mp4")

	stdout := downloadLine(t, audio) + "\n" + downloadLine(t, video)
	result, err := f.collectResult([]byte(stdout))
	require.NoError(t, err)

	// The audio file is excluded from delivery but still staged for cleanup.
	single, ok := result.Media.(models.SingleDownload)
	require.True(t, ok)
	assert.Equal(t, video, single.Item.Path)
	assert.Contains(t, result.Staged, audio)
}

func TestCollectResultNoSupportedMedia(t *testing.T) {
	f := testFetcher(t)
	audio := filepath.Join(t.TempDir(), "u.track.mp3")

	result, err := f.collectResult([]byte(downloadLine(t, audio)))
	require.NoError(t, err)

	assert.Nil(t, result.Media)
	assert.Equal(t, []string{audio}, result.Staged)
}

func TestCollectResultGarbageOutput(t *testing.T) {
	f := testFetcher(t)

	_, err := f.collectResult([]byte("WARNING: something\nnot json at all\n"))
	assert.ErrorIs(t, err, ErrParsingFailed)
}

func TestCollectResultSkipsBadLines(t *testing.T) {
	f := testFetcher(t)
	path := filepath.Join(t.TempDir(), "u.vid.mp4")

	stdout := "garbage line\n" + downloadLine(t, path) + "\n\n"
	result, err := f.collectResult([]byte(stdout))
	require.NoError(t, err)

	_, ok := result.Media.(models.SingleDownload)
	assert.True(t, ok)
}

func TestDescriptorFromInfo(t *testing.T) {
	raw := `{
		"id": "vid123",
		"title": "A title",
		"description": "A description",
		"uploader": "creator",
		"duration": 120.5,
		"filesize": 0,
		"filesize_approx": 1048576,
		"thumbnail": "https://example.com/t.jpg",
		"width": 1920,
		"height": 1080
	}`
	var info ytdlpInfo
	require.NoError(t, json.Unmarshal([]byte(raw), &info))

	d := descriptorFromInfo(&info)

	assert.Equal(t, "vid123", d.ID)
	assert.Equal(t, "A title", d.Title)
	assert.Equal(t, "A description", d.Description)
	assert.Equal(t, "creator", d.Uploader)
	assert.Equal(t, 120.5, d.Duration)
	assert.Equal(t, int64(1048576), d.Filesize, "filesize_approx fills in when filesize is absent")
	assert.True(t, d.HasThumbnail)
	assert.Equal(t, 1920, d.Width)
	assert.Equal(t, 1080, d.Height)
	assert.False(t, d.IsPlaylist())
}

func TestDescriptorFromInfoPlaylist(t *testing.T) {
	raw := `{
		"id": "list1",
		"title": "An album",
		"_type": "playlist",
		"entries": [
			{"id": "e1", "_type": "video", "duration": 10},
			{"id": "e2", "_type": "video", "duration": 20}
		]
	}`
	var info ytdlpInfo
	require.NoError(t, json.Unmarshal([]byte(raw), &info))

	d := descriptorFromInfo(&info)

	assert.True(t, d.IsPlaylist())
	require.Len(t, d.Entries, 2)
	assert.Equal(t, "e1", d.Entries[0].ID)
	assert.Equal(t, "video", d.Entries[0].Type)
	assert.Equal(t, float64(20), d.Entries[1].Duration)
}

func TestFindThumbnailPrefersJpg(t *testing.T) {
	f := testFetcher(t)
	dir := t.TempDir()
	media := filepath.Join(dir, "u.vid.mp4")
	jpg := filepath.Join(dir, "u.vid.jpg")
	webp := filepath.Join(dir, "u.vid.webp")
	require.NoError(t, os.WriteFile(jpg, []byte("x"), 0600))
	require.NoError(t, os.WriteFile(webp, []byte("x"), 0600))

	thumb, ok := f.findThumbnail(media)
	require.True(t, ok)
	assert.Equal(t, jpg, thumb)
}

func TestFindThumbnailAbsent(t *testing.T) {
	f := testFetcher(t)

	_, ok := f.findThumbnail(filepath.Join(t.TempDir(), "u.vid.mp4"))
	assert.False(t, ok)
}
