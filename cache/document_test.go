package cache

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var encodeTime = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func TestEncodeLayout(t *testing.T) {
	rec := Record{
		VideoID:  "abc123def45",
		Title:    "Test Video",
		Channel:  "Test Channel",
		FullText: "Hello transcript.",
		Summary:  "SUMMARY:\nShort.\n\nTOP TAKEAWAYS:\n- One",
	}

	want := `---
video_id: abc123def45
title: "Test Video"
channel: "Test Channel"
url: https://www.youtube.com/watch?v=abc123def45
cached_at: 2024-03-15T10:30:00Z
read: false
starred: false
---

# Test Video

## Summary

Short.

## Top Takeaways

- One

## Full Transcript

Hello transcript.
`

	if got := encodeAt(rec, encodeTime); got != want {
		t.Errorf("encode mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeWithoutSummary(t *testing.T) {
	rec := Record{VideoID: "abc123def45", Title: "T", FullText: "text"}
	got := encodeAt(rec, encodeTime)

	if strings.Contains(got, "## Summary") {
		t.Errorf("summary section present without summary content:\n%s", got)
	}
	if !strings.Contains(got, "## Full Transcript\n\ntext\n") {
		t.Errorf("missing transcript section:\n%s", got)
	}
	if strings.Contains(got, "channel:") {
		t.Errorf("empty channel should be omitted from header:\n%s", got)
	}
}

func TestEncodePlaylistProvenance(t *testing.T) {
	rec := Record{
		VideoID:       "abc123def45",
		Title:         "T",
		PlaylistID:    "PLxyz",
		PlaylistTitle: "My List",
		FullText:      "text",
	}
	got := encodeAt(rec, encodeTime)

	if !strings.Contains(got, "playlist_id: \"PLxyz\"\n") {
		t.Errorf("missing playlist_id:\n%s", got)
	}
	if !strings.Contains(got, "playlist_title: \"My List\"\n") {
		t.Errorf("missing playlist_title:\n%s", got)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	rec := Record{
		VideoID:       "abc123def45",
		Title:         "Round Trip",
		Channel:       "Channel",
		PlaylistID:    "PLabc",
		PlaylistTitle: "List",
		FullText:      "Line one.\nLine two.\n\nAfter a blank.",
		Summary:       "SUMMARY:\nS.\n\nTOP TAKEAWAYS:\n- A\n- B\n\nPROTOCOLS & INSTRUCTIONS:\nNone mentioned.",
	}

	got, err := Decode(encodeAt(rec, encodeTime))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.VideoID != rec.VideoID {
		t.Errorf("VideoID = %q", got.VideoID)
	}
	if got.Title != rec.Title {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Channel != rec.Channel {
		t.Errorf("Channel = %q", got.Channel)
	}
	if got.PlaylistID != rec.PlaylistID || got.PlaylistTitle != rec.PlaylistTitle {
		t.Errorf("playlist = %q / %q", got.PlaylistID, got.PlaylistTitle)
	}
	if got.FullText != rec.FullText {
		t.Errorf("FullText = %q, want %q", got.FullText, rec.FullText)
	}
	if got.Summary != rec.Summary {
		t.Errorf("Summary = %q, want %q", got.Summary, rec.Summary)
	}
	if !got.CachedAt.Equal(encodeTime) {
		t.Errorf("CachedAt = %v, want %v", got.CachedAt, encodeTime)
	}
	if got.Read || got.Starred {
		t.Errorf("flags should decode false, got read=%v starred=%v", got.Read, got.Starred)
	}
}

func TestDecodeMissingFrontmatter(t *testing.T) {
	for _, doc := range []string{
		"",
		"# Just Markdown\n\ntext\n",
		"--\nvideo_id: x\n--\n",
		"---\nvideo_id: x\n", // never closed
	} {
		if _, err := Decode(doc); !errors.Is(err, ErrMissingFrontmatter) {
			t.Errorf("Decode(%q) error = %v, want ErrMissingFrontmatter", doc, err)
		}
	}
}

func TestDecodeTitleWithQuotes(t *testing.T) {
	// Titles are written unescaped, so embedded quotes must survive a
	// decode.
	rec := Record{VideoID: "abc123def45", Title: `The "Best" Advice`, FullText: "x"}
	got, err := Decode(encodeAt(rec, encodeTime))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Title != `The "Best" Advice` {
		t.Errorf("Title = %q", got.Title)
	}
}

func TestDecodeUserEditedFlags(t *testing.T) {
	doc := encodeAt(Record{VideoID: "abc123def45", Title: "T", FullText: "x"}, encodeTime)
	doc = strings.Replace(doc, "read: false", "read: true", 1)
	doc = strings.Replace(doc, "starred: false", "starred: true", 1)

	got, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Read || !got.Starred {
		t.Errorf("read=%v starred=%v, want both true", got.Read, got.Starred)
	}
}

func TestDecodeMissingSections(t *testing.T) {
	doc := "---\nvideo_id: abc123def45\ntitle: \"T\"\n---\n\n# T\n\nfree text only\n"
	got, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.FullText != "" {
		t.Errorf("FullText = %q, want empty", got.FullText)
	}
	if got.Summary != "" {
		t.Errorf("Summary = %q, want empty", got.Summary)
	}
}
