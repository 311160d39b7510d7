package cache

import (
	"errors"
	"strings"
	"time"
)

// ErrMissingFrontmatter indicates a cache document without the opening
// header block at the start of the file.
var ErrMissingFrontmatter = errors.New("cache: missing frontmatter")

// Record is the unit of cache storage for one video.
type Record struct {
	// VideoID is the opaque 11-character YouTube identifier.
	VideoID string `json:"video_id"`
	// Title is the display title; may be empty.
	Title string `json:"title"`
	// Channel is the channel display name; may be empty.
	Channel string `json:"channel"`
	// PlaylistID and PlaylistTitle record provenance when the record was
	// sourced from a playlist crawl.
	PlaylistID    string `json:"playlist_id,omitempty"`
	PlaylistTitle string `json:"playlist_title,omitempty"`
	// FullText is the transcript; empty while a fetch is pending.
	FullText string `json:"full_text"`
	// Summary is the sentinel-delimited summarizer blob; empty while
	// summarization is pending.
	Summary string `json:"summary"`
	// Read and Starred are user-set flags from the document header.
	Read    bool `json:"read,omitempty"`
	Starred bool `json:"starred,omitempty"`
	// CachedAt is the header timestamp of the last write, when present.
	CachedAt time.Time `json:"-"`
}

// Body section names, bit-relevant for on-disk compatibility.
const (
	sectionSummary    = "Summary"
	sectionTakeaways  = "Top Takeaways"
	sectionProtocols  = "Protocols & Instructions"
	sectionTranscript = "Full Transcript"
)

// Encode serializes a record to the cache document format: a `---`
// delimited header followed by an H1 title and H2 sections. The
// cached_at timestamp is generated at encode time.
func Encode(rec Record) string {
	return encodeAt(rec, time.Now().UTC())
}

func encodeAt(rec Record, now time.Time) string {
	sections := ParseSummary(rec.Summary)

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("video_id: " + rec.VideoID + "\n")
	b.WriteString("title: \"" + rec.Title + "\"\n")
	if rec.Channel != "" {
		b.WriteString("channel: \"" + rec.Channel + "\"\n")
	}
	if rec.PlaylistID != "" {
		b.WriteString("playlist_id: \"" + rec.PlaylistID + "\"\n")
	}
	if rec.PlaylistTitle != "" {
		b.WriteString("playlist_title: \"" + rec.PlaylistTitle + "\"\n")
	}
	b.WriteString("url: https://www.youtube.com/watch?v=" + rec.VideoID + "\n")
	b.WriteString("cached_at: " + now.Format(time.RFC3339) + "\n")
	b.WriteString("read: false\n")
	b.WriteString("starred: false\n")
	b.WriteString("---\n")

	b.WriteString("\n# " + rec.Title + "\n")
	if sections.Summary != "" {
		b.WriteString("\n## " + sectionSummary + "\n\n" + sections.Summary + "\n")
	}
	if sections.Takeaways != "" {
		b.WriteString("\n## " + sectionTakeaways + "\n\n" + sections.Takeaways + "\n")
	}
	if sections.Protocols != "" {
		b.WriteString("\n## " + sectionProtocols + "\n\n" + sections.Protocols + "\n")
	}
	b.WriteString("\n## " + sectionTranscript + "\n\n" + rec.FullText + "\n")

	return b.String()
}

// Decode parses a cache document back into a Record. It fails with
// ErrMissingFrontmatter when the header block does not open the
// document. Header fields are extracted by name; absent fields default
// to empty/false. The three summary sub-sections are rejoined into the
// sentinel blob form, so Decode(Encode(r)) reproduces r.Summary.
func Decode(doc string) (Record, error) {
	const delim = "---\n"
	if !strings.HasPrefix(doc, delim) {
		return Record{}, ErrMissingFrontmatter
	}
	end := strings.Index(doc[len(delim):], "\n---\n")
	if end < 0 {
		return Record{}, ErrMissingFrontmatter
	}
	front := doc[len(delim) : len(delim)+end]
	body := doc[len(delim)+end+len("\n---\n"):]

	rec := Record{
		VideoID:       headerField(front, "video_id"),
		Title:         headerField(front, "title"),
		Channel:       headerField(front, "channel"),
		PlaylistID:    headerField(front, "playlist_id"),
		PlaylistTitle: headerField(front, "playlist_title"),
		Read:          strings.EqualFold(headerField(front, "read"), "true"),
		Starred:       strings.EqualFold(headerField(front, "starred"), "true"),
	}
	if ts := headerField(front, "cached_at"); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.CachedAt = t
		}
	}

	rec.FullText = bodySection(body, sectionTranscript)
	rec.Summary = SummarySections{
		Summary:   bodySection(body, sectionSummary),
		Takeaways: bodySection(body, sectionTakeaways),
		Protocols: bodySection(body, sectionProtocols),
	}.Blob()

	return rec, nil
}

// headerField extracts a named value from the header block. Quoted
// values have their surrounding quotes stripped. The extraction is
// deliberately tolerant: stored titles may contain unescaped quotes,
// so this is not a YAML parse.
func headerField(front, name string) string {
	for _, line := range strings.Split(front, "\n") {
		rest, ok := strings.CutPrefix(line, name+":")
		if !ok {
			continue
		}
		value := strings.TrimSpace(rest)
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		return value
	}
	return ""
}

// bodySection returns the content of the named H2 section: every line
// after the exact `## {name}` header up to the next H2 or end of
// document, trimmed of leading and trailing blank lines with interior
// blank lines preserved.
func bodySection(body, name string) string {
	lines := strings.Split(body, "\n")
	start := -1
	for i, line := range lines {
		if line == "## "+name {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}
	end := len(lines)
	for i := start; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") {
			end = i
			break
		}
	}
	section := lines[start:end]
	for len(section) > 0 && strings.TrimSpace(section[0]) == "" {
		section = section[1:]
	}
	for len(section) > 0 && strings.TrimSpace(section[len(section)-1]) == "" {
		section = section[:len(section)-1]
	}
	return strings.Join(section, "\n")
}
