package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMediaURL(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"https://example.com/video/1", true},
		{"http://example.com", true},
		{"https://www.youtube.com/watch?v=abc", true},
		{"ftp://example.com/file", false},
		{"example.com/video", false},
		{"just some text", false},
		{"/start", false},
		{"https://", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, isMediaURL(tt.input))
		})
	}
}
