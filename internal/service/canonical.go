package service

import (
	"net/url"
	"strings"
)

// videoIDParams maps hosts whose query string carries the video
// identifier to the one parameter worth keeping. Every other host has
// its query stripped entirely, which collapses tracking-parameter
// variants onto one cache key.
var videoIDParams = map[string]string{
	"youtube.com":       "v",
	"www.youtube.com":   "v",
	"m.youtube.com":     "v",
	"music.youtube.com": "v",
}

// CanonicalizeURL normalizes a source URL into the cache key: the
// fragment always goes, and the query survives only as the primary
// video-id parameter of a recognized host. Idempotent.
func CanonicalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Fragment = ""
	u.RawFragment = ""

	if param, ok := videoIDParams[strings.ToLower(u.Host)]; ok {
		if id := u.Query().Get(param); id != "" {
			u.RawQuery = param + "=" + url.QueryEscape(id)
		} else {
			u.RawQuery = ""
		}
	} else {
		u.RawQuery = ""
	}

	return u.String()
}
