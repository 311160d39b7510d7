package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testVideoID = "abc123def45"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestFindMissingRoot(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))
	path, err := s.Find(testVideoID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
}

func TestFindPriority(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	jsonPath := filepath.Join(root, testVideoID+".json")
	legacyPath := filepath.Join(root, testVideoID+" – Old Title.md")
	currentPath := filepath.Join(root, "Summaries", "Chan", "Title ["+testVideoID+"].md")

	writeFile(t, jsonPath, `{"video_id":"`+testVideoID+`"}`)
	got, err := s.Find(testVideoID)
	if err != nil {
		t.Fatal(err)
	}
	if got != jsonPath {
		t.Errorf("json only: got %q", got)
	}

	writeFile(t, legacyPath, "---\nvideo_id: "+testVideoID+"\n---\n")
	got, _ = s.Find(testVideoID)
	if got != legacyPath {
		t.Errorf("legacy md beats json: got %q", got)
	}

	writeFile(t, currentPath, "---\nvideo_id: "+testVideoID+"\n---\n")
	got, _ = s.Find(testVideoID)
	if got != currentPath {
		t.Errorf("current beats legacy: got %q", got)
	}
}

func TestFindNoPrefixFalsePositive(t *testing.T) {
	// A video ID that extends another must not match the shorter ID's
	// lookup.
	root := t.TempDir()
	s := NewStore(root)

	writeFile(t, filepath.Join(root, testVideoID+"x extra.md"), "other video")
	writeFile(t, filepath.Join(root, testVideoID+"extra.json"), "{}")

	got, err := s.Find(testVideoID)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("got %q, want no match", got)
	}

	// The separator forms do match.
	writeFile(t, filepath.Join(root, testVideoID+" Title.md"), "---\nvideo_id: x\n---\n")
	got, _ = s.Find(testVideoID)
	if filepath.Base(got) != testVideoID+" Title.md" {
		t.Errorf("got %q, want the separator-matched file", got)
	}
}

func TestIsLegacy(t *testing.T) {
	tests := []struct {
		name string
		path string // relative to root
		want bool
	}{
		{"bare id name", testVideoID + ".md", true},
		{"en dash name", testVideoID + " – Title.md", true},
		{"outside summaries", "Title [" + testVideoID + "].md", true},
		{"directly in summaries", filepath.Join("Summaries", "Title ["+testVideoID+"].md"), true},
		{"current format", filepath.Join("Summaries", "Chan", "Title ["+testVideoID+"].md"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			s := NewStore(root)
			writeFile(t, filepath.Join(root, tt.path), "---\nvideo_id: "+testVideoID+"\n---\n")

			got, err := s.IsLegacy(testVideoID)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("IsLegacy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsLegacyJSON(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)
	writeFile(t, filepath.Join(root, testVideoID+".json"), "{}")

	got, err := s.IsLegacy(testVideoID)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("json entry should be legacy")
	}
}

func TestIsLegacyNotCached(t *testing.T) {
	s := NewStore(t.TempDir())
	got, err := s.IsLegacy(testVideoID)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("uncached video should not be legacy")
	}
}

func TestLoadNotCached(t *testing.T) {
	s := NewStore(t.TempDir())
	rec, err := s.Load(testVideoID)
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Errorf("rec = %+v, want nil", rec)
	}
}

func TestSaveCreatesCurrentLayout(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	err := s.Save(testVideoID, "the transcript", SaveOptions{
		Title:   "My Video",
		Channel: "My Channel",
	})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(root, "Summaries", "My Channel", "My Video ["+testVideoID+"].md")
	content := readFile(t, path)
	if !strings.Contains(content, "video_id: "+testVideoID+"\n") {
		t.Errorf("missing video_id in:\n%s", content)
	}
	if !strings.Contains(content, "## Full Transcript\n\nthe transcript\n") {
		t.Errorf("missing transcript in:\n%s", content)
	}

	// Index notes appear at the vault root.
	review := readFile(t, filepath.Join(root, "Daily Review.md"))
	if !strings.Contains(review, `FROM "Summaries"`) || !strings.Contains(review, "read != true") {
		t.Errorf("daily review note content:\n%s", review)
	}
	starred := readFile(t, filepath.Join(root, "Starred.md"))
	if !strings.Contains(starred, "starred = true") {
		t.Errorf("starred note content:\n%s", starred)
	}
}

func TestSaveWithoutChannel(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	if err := s.Save(testVideoID, "text", SaveOptions{Title: "T"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "Summaries", "T ["+testVideoID+"].md")); err != nil {
		t.Errorf("expected file directly in Summaries: %v", err)
	}
}

func TestSaveIndexNotesNotOverwritten(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)
	writeFile(t, filepath.Join(root, "Daily Review.md"), "user edits\n")

	if err := s.Save(testVideoID, "text", SaveOptions{Title: "T"}); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(root, "Daily Review.md")); got != "user edits\n" {
		t.Errorf("user note overwritten: %q", got)
	}
}

func TestSaveMergePreservesSummary(t *testing.T) {
	// Saving a transcript-only update over a summarized document must
	// not destroy the summary, even when the target path is unchanged.
	root := t.TempDir()
	s := NewStore(root)

	err := s.Save(testVideoID, "text v1", SaveOptions{
		Summary: "SUMMARY:\nKeep me.",
		Title:   "T",
		Channel: "C",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Save(testVideoID, "text v2", SaveOptions{Title: "T", Channel: "C"}); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Load(testVideoID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.FullText != "text v2" {
		t.Errorf("FullText = %q, transcript should be overwritten", rec.FullText)
	}
	if rec.Summary != "SUMMARY:\nKeep me." {
		t.Errorf("Summary = %q, should survive the merge", rec.Summary)
	}
}

func TestSaveFullTextAlwaysOverwritten(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	if err := s.Save(testVideoID, "original", SaveOptions{Title: "T"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(testVideoID, "", SaveOptions{Title: "T", Summary: "SUMMARY:\nS."}); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Load(testVideoID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.FullText != "" {
		t.Errorf("FullText = %q, want empty (incoming value is authoritative)", rec.FullText)
	}
	if rec.Summary != "SUMMARY:\nS." {
		t.Errorf("Summary = %q", rec.Summary)
	}
}

func TestSaveRelocatesOnNewTitle(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	if err := s.Save(testVideoID, "text", SaveOptions{Title: "Old", Channel: "C"}); err != nil {
		t.Fatal(err)
	}
	oldPath := filepath.Join(root, "Summaries", "C", "Old ["+testVideoID+"].md")
	if _, err := os.Stat(oldPath); err != nil {
		t.Fatal(err)
	}

	if err := s.Save(testVideoID, "text", SaveOptions{Title: "New", Channel: "C"}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("old document should be removed, stat err = %v", err)
	}
	newPath := filepath.Join(root, "Summaries", "C", "New ["+testVideoID+"].md")
	if _, err := os.Stat(newPath); err != nil {
		t.Errorf("new document missing: %v", err)
	}
}

func TestSaveMigratesLegacyMarkdown(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	legacy := filepath.Join(root, testVideoID+" – Old.md")
	writeFile(t, legacy, encodeAt(Record{
		VideoID:  testVideoID,
		Title:    "Old",
		FullText: "legacy text",
		Summary:  "SUMMARY:\nLegacy summary.",
	}, encodeTime))

	if err := s.Save(testVideoID, "legacy text", SaveOptions{Title: "Old", Channel: "Chan"}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(legacy); !os.IsNotExist(err) {
		t.Errorf("legacy file should be removed, stat err = %v", err)
	}
	rec, err := s.Load(testVideoID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Summary != "SUMMARY:\nLegacy summary." {
		t.Errorf("Summary = %q, legacy content should merge forward", rec.Summary)
	}

	legacyNow, err := s.IsLegacy(testVideoID)
	if err != nil {
		t.Fatal(err)
	}
	if legacyNow {
		t.Error("document should no longer be legacy after the save")
	}
}

func TestLoadMigratesJSON(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	jsonPath := filepath.Join(root, testVideoID+".json")
	writeFile(t, jsonPath,
		`{"video_id":"`+testVideoID+`","title":"From JSON","channel":"Chan","full_text":"json text","summary":""}`)

	rec, err := s.Load(testVideoID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.FullText != "json text" {
		t.Errorf("FullText = %q", rec.FullText)
	}

	if _, err := os.Stat(jsonPath); !os.IsNotExist(err) {
		t.Errorf("json file should be deleted after migration, stat err = %v", err)
	}
	migrated := filepath.Join(root, "Summaries", "Chan", "From JSON ["+testVideoID+"].md")
	if _, err := os.Stat(migrated); err != nil {
		t.Errorf("migrated document missing: %v", err)
	}

	// Second load reads the markdown document.
	again, err := s.Load(testVideoID)
	if err != nil {
		t.Fatal(err)
	}
	if again.FullText != "json text" || again.Title != "From JSON" {
		t.Errorf("reloaded record = %+v", again)
	}
}

func TestLoadDeletesEmptyJSON(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	jsonPath := filepath.Join(root, testVideoID+".json")
	writeFile(t, jsonPath, `{"video_id":"`+testVideoID+`","full_text":"","summary":""}`)

	rec, err := s.Load(testVideoID)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.VideoID != testVideoID {
		t.Errorf("rec = %+v", rec)
	}
	if _, err := os.Stat(jsonPath); !os.IsNotExist(err) {
		t.Errorf("contentless json should still be deleted, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Summaries")); !os.IsNotExist(err) {
		t.Errorf("no document should be written for contentless json")
	}
}

func TestLoadMalformedDocument(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)
	writeFile(t, filepath.Join(root, "Summaries", "C", "T ["+testVideoID+"].md"), "no frontmatter here")

	if _, err := s.Load(testVideoID); err == nil {
		t.Fatal("expected error for malformed document")
	}
}
