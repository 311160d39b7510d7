package youtube

import (
	"fmt"
	"strings"
)

// ErrorKind classifies an acquisition failure. The kind is assigned
// once, where the failure is observed, so callers never re-parse error
// strings to decide behavior.
type ErrorKind int

const (
	// KindOther is an unclassified failure.
	KindOther ErrorKind = iota
	// KindNoSubtitles means the video exposes no subtitle track at all.
	KindNoSubtitles
	// KindUnavailable means the video is gone or region-blocked.
	KindUnavailable
	// KindPrivate means the video is private.
	KindPrivate
	// KindAgeRestricted means the video needs a signed-in session.
	KindAgeRestricted
	// KindRateLimited means YouTube is throttling requests.
	KindRateLimited
	// KindDownload is a yt-dlp failure with no more specific class.
	KindDownload
	// KindEmpty means the fetched transcript contained no text.
	KindEmpty
)

// permanentKinds are failures a retry cannot fix.
var permanentKinds = map[ErrorKind]bool{
	KindNoSubtitles:   true,
	KindUnavailable:   true,
	KindPrivate:       true,
	KindAgeRestricted: true,
	KindEmpty:         true,
}

// TranscriptError is the caller-facing transcript failure. Message is
// a human-readable explanation suitable for display.
type TranscriptError struct {
	VideoID string
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *TranscriptError) Error() string {
	if e.Kind == KindEmpty {
		return fmt.Sprintf("transcript for video %s is empty", e.VideoID)
	}
	return fmt.Sprintf("could not fetch transcript for video %s: %s", e.VideoID, e.Message)
}

func (e *TranscriptError) Unwrap() error { return e.Err }

// Permanent reports whether retrying this video can ever succeed.
func (e *TranscriptError) Permanent() bool { return permanentKinds[e.Kind] }

// DownloadError is a yt-dlp subprocess failure. Kind and permanence
// are derived from stderr when the error is constructed.
type DownloadError struct {
	URL       string
	Kind      ErrorKind
	Stderr    string
	Err       error
	permanent bool
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("yt-dlp failed for %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Permanent reports whether the failure is non-retryable.
func (e *DownloadError) Permanent() bool { return e.permanent }

// newDownloadError classifies a yt-dlp failure from its stderr output.
func newDownloadError(url, stderr string, err error) *DownloadError {
	kind, permanent := classifyStderr(stderr + " " + fmt.Sprint(err))
	return &DownloadError{
		URL:       url,
		Kind:      kind,
		Stderr:    stderr,
		Err:       err,
		permanent: permanent,
	}
}

// Stderr patterns that mark a video as permanently unfetchable.
var permanentPatterns = []string{
	"video unavailable",
	"private video",
	"sign in to confirm your age",
	"this video is not available",
	"this video has been removed",
}

// classifyStderr maps yt-dlp output to an error kind and permanence.
// Kind and permanence are decided independently: a removed video gets
// a generic download kind but is still permanent.
func classifyStderr(msg string) (ErrorKind, bool) {
	lower := strings.ToLower(msg)

	permanent := false
	for _, p := range permanentPatterns {
		if strings.Contains(lower, p) {
			permanent = true
			break
		}
	}

	var kind ErrorKind
	switch {
	case strings.Contains(lower, "video unavailable") || strings.Contains(lower, "not available"):
		kind = KindUnavailable
	case strings.Contains(lower, "private video"):
		kind = KindPrivate
	case strings.Contains(lower, "sign in to confirm your age") || strings.Contains(lower, "age"):
		kind = KindAgeRestricted
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate"):
		kind = KindRateLimited
	default:
		kind = KindDownload
	}
	return kind, permanent
}

// userMessage renders the display message for a failure kind.
func userMessage(kind ErrorKind, err error) string {
	switch kind {
	case KindNoSubtitles:
		return "No subtitles available for this video"
	case KindUnavailable:
		return "The video is no longer available"
	case KindPrivate:
		return "The video is private"
	case KindAgeRestricted:
		return "The video is age-restricted"
	case KindRateLimited:
		return "YouTube is rate limiting requests"
	case KindDownload:
		return fmt.Sprintf("Failed to download video info: %v", err)
	default:
		return fmt.Sprint(err)
	}
}

// MetadataError indicates video metadata could not be fetched.
type MetadataError struct {
	VideoID string
	Err     error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("could not fetch metadata for video %s: %v", e.VideoID, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// PlaylistError indicates playlist metadata could not be fetched.
type PlaylistError struct {
	PlaylistID string
	Err        error
}

func (e *PlaylistError) Error() string {
	return fmt.Sprintf("could not fetch playlist info for %s: %v", e.PlaylistID, e.Err)
}

func (e *PlaylistError) Unwrap() error { return e.Err }

// APIError indicates a YouTube Data API operation failed.
type APIError struct {
	Op  string
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("youtube api: %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }
