package cache

import "testing"

const sampleBlob = "SUMMARY:\nA short overview of the video.\n\n" +
	"TOP TAKEAWAYS:\n- First point\n- Second point\n\n" +
	"PROTOCOLS & INSTRUCTIONS:\nNone mentioned."

func TestParseSummary(t *testing.T) {
	got := ParseSummary(sampleBlob)

	if got.Summary != "A short overview of the video." {
		t.Errorf("Summary = %q", got.Summary)
	}
	if got.Takeaways != "- First point\n- Second point" {
		t.Errorf("Takeaways = %q", got.Takeaways)
	}
	if got.Protocols != "None mentioned." {
		t.Errorf("Protocols = %q", got.Protocols)
	}
}

func TestParseSummaryPartial(t *testing.T) {
	got := ParseSummary("SUMMARY:\nJust a summary, nothing else.")
	if got.Summary != "Just a summary, nothing else." {
		t.Errorf("Summary = %q", got.Summary)
	}
	if got.Takeaways != "" || got.Protocols != "" {
		t.Errorf("expected empty takeaways and protocols, got %q / %q", got.Takeaways, got.Protocols)
	}
}

func TestParseSummaryDiscardsPreamble(t *testing.T) {
	blob := "Here is your summary!\n\nSUMMARY:\nThe real content.\n\nTOP TAKEAWAYS:\n- One"
	got := ParseSummary(blob)
	if got.Summary != "The real content." {
		t.Errorf("Summary = %q", got.Summary)
	}
	if got.Takeaways != "- One" {
		t.Errorf("Takeaways = %q", got.Takeaways)
	}
}

func TestParseSummaryEmpty(t *testing.T) {
	got := ParseSummary("")
	if !got.IsEmpty() {
		t.Errorf("expected empty sections, got %+v", got)
	}
	if got.Blob() != "" {
		t.Errorf("Blob of empty sections = %q, want empty", got.Blob())
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	sections := ParseSummary(sampleBlob)
	again := ParseSummary(sections.Blob())
	if again != sections {
		t.Errorf("round trip mismatch: %+v != %+v", again, sections)
	}
}

func TestBlobOmitsEmptySections(t *testing.T) {
	s := SummarySections{Summary: "Only this."}
	want := "SUMMARY:\nOnly this."
	if got := s.Blob(); got != want {
		t.Errorf("Blob() = %q, want %q", got, want)
	}
}
