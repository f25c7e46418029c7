package service

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"telegrab/internal/constants"
	"telegrab/internal/models"
)

// BuildCaption renders the user-facing caption: an HTML header with the
// attribution and source links, then an indented quote holding the
// escaped uploader handle and description (title when the description
// is empty). The header is never truncated; the quote is cut to fit the
// character ceiling with an ellipsis before the closing tag.
func BuildCaption(d *models.MediaDescriptor, sourceURL, viaLink string) string {
	header := fmt.Sprintf(`<a href="%s">Source</a> ✤ <a href="%s">Via</a>`, sourceURL, viaLink)

	var quoteParts []string
	if uploader := strings.TrimSpace(d.Uploader); uploader != "" {
		quoteParts = append(quoteParts, "<i>@"+html.EscapeString(uploader)+"</i>")
	}

	body := strings.TrimSpace(d.Description)
	if body == "" {
		body = strings.TrimSpace(d.Title)
	}
	if body != "" {
		quoteParts = append(quoteParts, html.EscapeString(body))
	}

	if len(quoteParts) == 0 {
		return header
	}

	const openTag = "\n\n<blockquote>"
	const closeTag = "</blockquote>"

	quote := strings.Join(quoteParts, "\n")
	caption := header + openTag + quote + closeTag
	if utf8.RuneCountInString(caption) <= constants.CaptionMaxLength {
		return caption
	}

	frame := utf8.RuneCountInString(header+openTag+closeTag) + utf8.RuneCountInString(constants.CaptionEllipsis)
	budget := constants.CaptionMaxLength - frame
	if budget <= 0 {
		return header
	}

	quote = truncateRunes(quote, budget)
	return header + openTag + quote + constants.CaptionEllipsis + closeTag
}

// truncateRunes cuts s to at most n runes without splitting an HTML
// entity produced by escaping.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		s = string(runes[:n])
	}

	// Drop a trailing half-entity like "&am".
	if amp := strings.LastIndex(s, "&"); amp > strings.LastIndex(s, ";") {
		s = s[:amp]
	}

	return s
}
