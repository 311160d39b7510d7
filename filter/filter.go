// Package filter selects videos by keyword criteria on their titles.
package filter

import "regexp"

// Video is the minimal shape the keyword filter operates on.
type Video struct {
	ID    string
	Title string
}

// Keywords applies include and exclude keyword lists to video titles.
// Matching is case-insensitive on whole words. Exclude wins over
// include; an empty include list admits everything. The second return
// value maps each removed video's ID (title when the ID is empty) to a
// human-readable removal reason.
func Keywords(videos []Video, include, exclude []string) ([]Video, map[string]string) {
	includePatterns := compile(include)
	excludePatterns := compile(exclude)

	var kept []Video
	reasons := make(map[string]string)

	for _, v := range videos {
		key := v.ID
		if key == "" {
			key = v.Title
		}

		if kw := firstMatch(excludePatterns, exclude, v.Title); kw != "" {
			reasons[key] = "matched exclude keyword: " + kw
			continue
		}
		if len(includePatterns) > 0 {
			if firstMatch(includePatterns, include, v.Title) == "" {
				reasons[key] = "no include keyword matched"
				continue
			}
		}
		kept = append(kept, v)
	}

	return kept, reasons
}

func compile(keywords []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return patterns
}

// firstMatch returns the keyword whose pattern first matches the
// title, or "".
func firstMatch(patterns []*regexp.Regexp, keywords []string, title string) string {
	for i, p := range patterns {
		if p.MatchString(title) {
			return keywords[i]
		}
	}
	return ""
}
