package cache

import "strings"

// Sentinel line prefixes used by the summarizer output format. Each
// introduces a section running until the next sentinel or end of blob,
// with sentinels recognized only on a blank-line boundary.
const (
	sentinelSummary   = "SUMMARY:"
	sentinelTakeaways = "TOP TAKEAWAYS:"
	sentinelProtocols = "PROTOCOLS & INSTRUCTIONS:"
)

var sentinels = []string{sentinelSummary, sentinelTakeaways, sentinelProtocols}

// SummarySections is the structured form of a summarizer blob. Fields
// are optional; missing sections are empty strings.
type SummarySections struct {
	Summary   string
	Takeaways string
	Protocols string
}

// ParseSummary splits a sentinel-delimited summary blob into its
// sections. Text not introduced by a sentinel is discarded.
func ParseSummary(blob string) SummarySections {
	var out SummarySections
	for _, part := range splitOnSentinels(blob) {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, sentinelSummary):
			out.Summary = strings.TrimSpace(part[len(sentinelSummary):])
		case strings.HasPrefix(part, sentinelTakeaways):
			out.Takeaways = strings.TrimSpace(part[len(sentinelTakeaways):])
		case strings.HasPrefix(part, sentinelProtocols):
			out.Protocols = strings.TrimSpace(part[len(sentinelProtocols):])
		}
	}
	return out
}

// Blob reassembles the canonical sentinel-prefixed form. Empty sections
// are omitted; ParseSummary(s.Blob()) round-trips.
func (s SummarySections) Blob() string {
	var parts []string
	if s.Summary != "" {
		parts = append(parts, sentinelSummary+"\n"+s.Summary)
	}
	if s.Takeaways != "" {
		parts = append(parts, sentinelTakeaways+"\n"+s.Takeaways)
	}
	if s.Protocols != "" {
		parts = append(parts, sentinelProtocols+"\n"+s.Protocols)
	}
	return strings.Join(parts, "\n\n")
}

// IsEmpty reports whether no section carries content.
func (s SummarySections) IsEmpty() bool {
	return s.Summary == "" && s.Takeaways == "" && s.Protocols == ""
}

// splitOnSentinels splits blob at blank-line boundaries that precede a
// sentinel. The first segment may not start with a sentinel.
func splitOnSentinels(blob string) []string {
	var parts []string
	start := 0
	for i := 0; i+1 < len(blob); i++ {
		if blob[i] != '\n' || blob[i+1] != '\n' {
			continue
		}
		rest := blob[i+2:]
		for _, sent := range sentinels {
			if strings.HasPrefix(rest, sent) {
				parts = append(parts, blob[start:i])
				start = i + 2
				break
			}
		}
	}
	return append(parts, blob[start:])
}
