package cache

import (
	"regexp"
	"strings"
)

// maxTitleRunes caps sanitized titles by code point count, not bytes,
// so multi-byte titles truncate at the same visual length.
const maxTitleRunes = 200

var (
	forbiddenChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Sanitize makes a video or channel title safe for use as a file or
// directory name. Forbidden filesystem characters become spaces,
// whitespace runs collapse to one space, and the result is trimmed and
// capped at 200 code points. All other Unicode passes through.
// Sanitize is idempotent.
func Sanitize(title string) string {
	s := forbiddenChars.ReplaceAllString(title, " ")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxTitleRunes {
		// Trim again: the cut can land just after a space.
		s = strings.TrimSpace(string(r[:maxTitleRunes]))
	}
	return s
}

// Filename returns the canonical cache document name for a video:
// "{sanitized title} [{video ID}].md", or "[{video ID}].md" when the
// title is empty.
func Filename(videoID, title string) string {
	if s := Sanitize(title); s != "" {
		return s + " [" + videoID + "].md"
	}
	return "[" + videoID + "].md"
}
