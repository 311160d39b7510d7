// Package youtube covers video acquisition: URL parsing, yt-dlp
// subprocess handling, WebVTT parsing, transcript fetching, and the
// Data API client used for subscription crawls.
package youtube

import "regexp"

var (
	videoURLRegex   = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/watch\?.*&v=)([a-zA-Z0-9_-]{11})`)
	videoIDRegex    = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	playlistURLRegex = regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`)
	playlistIDRegex  = regexp.MustCompile(`^[a-zA-Z0-9_-]{13,}$`)
)

// ExtractVideoID pulls an 11-character video ID out of a watch or
// youtu.be URL. Returns "" when the URL carries no recognizable ID.
func ExtractVideoID(url string) string {
	m := videoURLRegex.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsVideoID reports whether value is a bare 11-character video ID.
func IsVideoID(value string) bool {
	return videoIDRegex.MatchString(value)
}

// IsValidURL reports whether url is a YouTube video URL a video ID can
// be extracted from.
func IsValidURL(url string) bool {
	return ExtractVideoID(url) != ""
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// ExtractPlaylistID pulls a playlist ID from a playlist URL's list
// parameter. Returns "" when absent.
func ExtractPlaylistID(url string) string {
	m := playlistURLRegex.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsPlaylistID reports whether value looks like a bare playlist ID
// rather than a URL.
func IsPlaylistID(value string) bool {
	return playlistIDRegex.MatchString(value)
}
