package youtube

import (
	"html"
	"regexp"
	"strings"
)

var (
	timestampRegex = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{3}\s+-->\s+`)
	cueTagRegex    = regexp.MustCompile(`<[^>]+>`)
	digitsRegex    = regexp.MustCompile(`^\d+$`)
)

// ParseWebVTT converts WebVTT subtitle content to plain text. The
// header, timestamps, sequence numbers, and styling blocks are
// dropped; inline cue tags are stripped; HTML entities are unescaped;
// consecutive identical lines collapse to one, which auto-captions
// produce constantly.
func ParseWebVTT(content string) string {
	var texts []string

	// Text before the first timestamp is header metadata, not cue text.
	inCue := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "WEBVTT"):
			continue
		case timestampRegex.MatchString(line):
			inCue = true
			continue
		case digitsRegex.MatchString(line):
			continue
		case strings.HasPrefix(line, "NOTE"),
			strings.HasPrefix(line, "STYLE"),
			strings.HasPrefix(line, "REGION"):
			continue
		}

		if !inCue {
			continue
		}
		text := cueTagRegex.ReplaceAllString(line, "")
		text = strings.TrimSpace(html.UnescapeString(text))
		if text == "" {
			continue
		}
		if len(texts) == 0 || texts[len(texts)-1] != text {
			texts = append(texts, text)
		}
	}

	return strings.Join(texts, "\n")
}
