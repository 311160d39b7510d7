package ytsummary

import (
	"ytsummary/retry"
	"ytsummary/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.As() for wrapped errors:
//
//	var te *ytsummary.TranscriptError
//	if errors.As(err, &te) {
//		fmt.Printf("transcript for %s failed: %s\n", te.VideoID, te.Kind)
//	}
//
// Checking whether a failure is worth retrying:
//
//	if ytsummary.IsRetryable(err) {
//		// try again later
//	}

// Type aliases for convenient error handling.
type (
	// TranscriptError wraps errors during transcript extraction.
	TranscriptError = youtube.TranscriptError
	// DownloadError wraps yt-dlp invocation failures.
	DownloadError = youtube.DownloadError
	// MetadataError wraps video metadata lookup failures.
	MetadataError = youtube.MetadataError
	// PlaylistError wraps playlist listing failures.
	PlaylistError = youtube.PlaylistError
	// APIError wraps YouTube Data API failures.
	APIError = youtube.APIError
)

// Transcript failure classifications from the youtube package:
//   - youtube.KindNoSubtitles: the video has no captions at all
//   - youtube.KindUnavailable: the video is gone or region-blocked
//   - youtube.KindPrivate: the video is private
//   - youtube.KindAgeRestricted: sign-in required (see YOUTUBE_COOKIES_FILE)
//   - youtube.KindRateLimited: YouTube is throttling requests
//   - youtube.KindEmpty: captions exist but contain no text

// IsRetryable determines if an error should be retried.
// Permanent transcript failures and context cancellation return false.
func IsRetryable(err error) bool {
	return retry.IsRetryable(err)
}
