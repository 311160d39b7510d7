// Package cache implements the file-backed video record store: a vault
// of frontmatter+markdown documents keyed by video ID, readable across
// three historical layout generations and migrated forward on write.
package cache

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// summariesDir is the canonical subtree for current-format documents.
const summariesDir = "Summaries"

// Store is a filesystem-backed record store rooted at a vault
// directory. Lookups always re-derive location from the filesystem so
// that manual reorganization of the vault stays visible; no index is
// kept. Single-process use is assumed (no locking).
type Store struct {
	root string
}

// NewStore creates a store over the given vault root. The directory is
// created lazily on first save.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the vault root directory.
func (s *Store) Root() string { return s.root }

// Find locates the cache document for a video ID. Search order:
// current format (any file ending "[{id}].md", any depth), then legacy
// markdown ("{id}.md" or "{id} ..."), then legacy JSON ("{id}.json").
// Returns "" when nothing is cached or the root does not exist.
func (s *Store) Find(videoID string) (string, error) {
	if _, err := os.Stat(s.root); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	var current, legacyMD, legacyJSON string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		switch {
		case current == "" && strings.HasSuffix(name, "["+videoID+"].md"):
			current = path
		case legacyMD == "" && isLegacyMarkdownName(name, videoID):
			legacyMD = path
		case legacyJSON == "" && name == videoID+".json":
			legacyJSON = path
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	switch {
	case current != "":
		return current, nil
	case legacyMD != "":
		return legacyMD, nil
	default:
		return legacyJSON, nil
	}
}

// isLegacyMarkdownName matches the legacy markdown naming conventions:
// exactly "{id}.md" or "{id} {anything}.md". Bare prefix matching is
// deliberately not used so that one video ID extending another cannot
// collide.
func isLegacyMarkdownName(name, videoID string) bool {
	if name == videoID+".md" {
		return true
	}
	return strings.HasPrefix(name, videoID+" ") && strings.HasSuffix(name, ".md")
}

// IsLegacy reports whether the cached document for a video uses a
// pre-current layout: JSON, old markdown naming, or any location
// outside a channel subdirectory of Summaries/. The check needs only
// the path, never a document parse. False when nothing is cached.
func (s *Store) IsLegacy(videoID string) (bool, error) {
	path, err := s.Find(videoID)
	if err != nil || path == "" {
		return false, err
	}

	name := filepath.Base(path)
	if strings.HasSuffix(name, ".json") {
		return true, nil
	}
	if name == videoID+".md" || strings.HasPrefix(name, videoID+" –") {
		return true, nil
	}

	summaries := filepath.Join(s.root, summariesDir)
	rel, err := filepath.Rel(summaries, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true, nil
	}
	// Directly inside Summaries/ means no channel subdirectory.
	if filepath.Dir(path) == summaries {
		return true, nil
	}
	return false, nil
}

// Load reads the cached record for a video, or nil when not cached.
// Legacy JSON entries carrying transcript or summary content are
// migrated to the current markdown format as a side effect, and the
// JSON file is deleted either way. A malformed document is an error,
// not a miss.
func (s *Store) Load(videoID string) (*Record, error) {
	path, err := s.Find(videoID)
	if err != nil || path == "" {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, ".json") {
		rec, err := decodeLegacyJSON(data, videoID)
		if err != nil {
			return nil, fmt.Errorf("cache: decode %s: %w", path, err)
		}
		if rec.FullText != "" || rec.Summary != "" {
			// Save finds and removes the JSON file while migrating.
			err := s.Save(rec.VideoID, rec.FullText, SaveOptions{
				Summary: rec.Summary,
				Title:   rec.Title,
				Channel: rec.Channel,
			})
			if err != nil {
				return nil, err
			}
		} else if err := os.Remove(path); err != nil {
			return nil, err
		}
		return rec, nil
	}

	rec, err := Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("cache: parse %s: %w", path, err)
	}
	return &rec, nil
}

// SaveOptions carries the optional fields of a save. Zero values leave
// the corresponding stored fields untouched.
type SaveOptions struct {
	Summary       string
	Title         string
	Channel       string
	PlaylistID    string
	PlaylistTitle string
}

// Save writes a record, merging with any existing document for the
// same video ID and removing a superseded document at a different
// path. FullText is authoritative and always overwritten; Summary,
// Title, Channel and playlist fields update only when non-empty. The
// stored video_id is never changed by a save.
func (s *Store) Save(videoID, fullText string, opts SaveOptions) error {
	summaries := filepath.Join(s.root, summariesDir)
	if err := os.MkdirAll(summaries, 0o755); err != nil {
		return err
	}
	if err := ensureIndexNotes(s.root); err != nil {
		return err
	}

	targetDir := summaries
	if opts.Channel != "" {
		targetDir = filepath.Join(summaries, Sanitize(opts.Channel))
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return err
		}
	}
	target := filepath.Join(targetDir, Filename(videoID, opts.Title))

	base, err := s.mergeBase(videoID, target)
	if err != nil {
		return err
	}

	merged := Record{
		VideoID:       coalesce(base.VideoID, videoID),
		Title:         coalesce(opts.Title, base.Title),
		Channel:       coalesce(opts.Channel, base.Channel),
		PlaylistID:    coalesce(opts.PlaylistID, base.PlaylistID),
		PlaylistTitle: coalesce(opts.PlaylistTitle, base.PlaylistTitle),
		FullText:      fullText,
		Summary:       coalesce(opts.Summary, base.Summary),
	}

	return writeFileAtomic(target, []byte(Encode(merged)))
}

// mergeBase loads the existing record for a video to merge into, and
// deletes a superseded document living at a different path than the
// target. Returns a zero record when nothing is cached.
func (s *Store) mergeBase(videoID, target string) (Record, error) {
	existing, err := s.Find(videoID)
	if err != nil || existing == "" {
		return Record{}, err
	}

	data, err := os.ReadFile(existing)
	if err != nil {
		return Record{}, err
	}

	var base Record
	if strings.HasSuffix(existing, ".json") {
		rec, err := decodeLegacyJSON(data, videoID)
		if err != nil {
			return Record{}, fmt.Errorf("cache: decode %s: %w", existing, err)
		}
		base = *rec
	} else {
		base, err = Decode(string(data))
		if err != nil {
			return Record{}, fmt.Errorf("cache: parse %s: %w", existing, err)
		}
	}

	if existing != target {
		if err := os.Remove(existing); err != nil {
			return Record{}, err
		}
	}
	return base, nil
}

// decodeLegacyJSON parses a generation-one flat JSON record. The
// channel and playlist fields may be absent in old files.
func decodeLegacyJSON(data []byte, videoID string) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.VideoID == "" {
		rec.VideoID = videoID
	}
	return &rec, nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// writeFileAtomic writes via a temp file and rename so a document is
// never observed half-written.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ytsummary-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
