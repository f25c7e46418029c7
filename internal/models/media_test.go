package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMediaType(t *testing.T) {
	mt, ok := ParseMediaType("video")
	assert.True(t, ok)
	assert.Equal(t, MediaTypeVideo, mt)

	mt, ok = ParseMediaType("photo")
	assert.True(t, ok)
	assert.Equal(t, MediaTypePhoto, mt)

	_, ok = ParseMediaType("hologram")
	assert.False(t, ok)

	_, ok = ParseMediaType("")
	assert.False(t, ok)
}

func TestMediaTypeFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected MediaType
		ok       bool
	}{
		{"/tmp/u.vid.mp4", MediaTypeVideo, true},
		{"/tmp/u.vid.MOV", MediaTypeVideo, true},
		{"/tmp/u.vid.webm", MediaTypeVideo, true},
		{"/tmp/u.vid.mkv", MediaTypeVideo, true},
		{"/tmp/u.vid.m4v", MediaTypeVideo, true},
		{"/tmp/u.pic.jpg", MediaTypePhoto, true},
		{"/tmp/u.pic.JPEG", MediaTypePhoto, true},
		{"/tmp/u.pic.png", MediaTypePhoto, true},
		{"/tmp/u.pic.webp", MediaTypePhoto, true},
		{"/tmp/u.track.mp3", "", false},
		{"/tmp/u.doc.pdf", "", false},
		{"/tmp/noext", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			mt, ok := MediaTypeFromPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, mt)
			}
		})
	}
}

func TestIsPlaylist(t *testing.T) {
	single := &MediaDescriptor{ID: "a"}
	assert.False(t, single.IsPlaylist())

	playlist := &MediaDescriptor{ID: "list", Entries: []MediaDescriptor{{ID: "a"}}}
	assert.True(t, playlist.IsPlaylist())
}
