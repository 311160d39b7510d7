package cache

import (
	"os"
	"path/filepath"
)

// Index notes are Obsidian Dataview queries over the Summaries/
// subtree. They are created once at the vault root and never
// overwritten, so user edits survive.

const dailyReviewNote = `---
---
# Daily Review

` + "```dataview" + `
TABLE title, channel, cached_at
FROM "Summaries"
WHERE read != true
SORT cached_at DESC
` + "```" + `
`

const starredNote = `---
---
# Starred

` + "```dataview" + `
TABLE title, channel, cached_at
FROM "Summaries"
WHERE starred = true
SORT cached_at DESC
` + "```" + `
`

// ensureIndexNotes creates the Daily Review and Starred notes at the
// vault root if they do not already exist.
func ensureIndexNotes(root string) error {
	notes := map[string]string{
		"Daily Review.md": dailyReviewNote,
		"Starred.md":      starredNote,
	}
	for name, content := range notes {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
