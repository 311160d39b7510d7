package youtube

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"

	"ytsummary/httpclient"
	"ytsummary/retry"
)

// DefaultLanguage is the subtitle language preferred when none is
// configured.
const DefaultLanguage = "en"

// InfoProvider supplies video metadata and the subtitle inventory.
// Satisfied by *Runner.
type InfoProvider interface {
	VideoInfo(ctx context.Context, videoID string) (*VideoDetails, error)
}

// Downloader fetches subtitle payloads over HTTP. Satisfied by
// *httpclient.Client.
type Downloader interface {
	Get(ctx context.Context, url string) (*httpclient.Response, error)
}

// Fetcher turns a video ID into a plain-text transcript. Transient
// failures retry with backoff; permanent conditions (no subtitles,
// removed or private videos) fail immediately.
type Fetcher struct {
	Provider InfoProvider
	HTTP     Downloader

	// Language is the preferred subtitle language. Defaults to "en".
	Language string

	// Retry controls backoff. Zero value uses retry.DefaultConfig.
	Retry retry.Config

	// Logger for progress output. Nil disables logging.
	Logger *log.Logger
}

// NewFetcher creates a transcript fetcher with default language and
// retry configuration.
func NewFetcher(provider InfoProvider, downloader Downloader) *Fetcher {
	return &Fetcher{
		Provider: provider,
		HTTP:     downloader,
		Language: DefaultLanguage,
		Retry:    retry.DefaultConfig(),
	}
}

// Fetch retrieves and parses the transcript for a video. The returned
// error is always a *TranscriptError.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	lang := f.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	cfg := f.Retry
	if cfg.MaxAttempts == 0 {
		cfg = retry.DefaultConfig()
	}

	var text string
	err := retry.Do(ctx, cfg, retry.IsRetryable, func(ctx context.Context) error {
		var attemptErr error
		text, attemptErr = f.fetchOnce(ctx, videoID, lang)
		return attemptErr
	})
	if err != nil {
		return "", f.wrapError(videoID, err)
	}

	if strings.TrimSpace(text) == "" {
		return "", &TranscriptError{VideoID: videoID, Kind: KindEmpty}
	}
	return text, nil
}

// fetchOnce performs a single acquisition attempt: subtitle inventory,
// track selection, download, parse.
func (f *Fetcher) fetchOnce(ctx context.Context, videoID, lang string) (string, error) {
	details, err := f.Provider.VideoInfo(ctx, videoID)
	if err != nil {
		return "", err
	}
	f.logf("subtitles for %s: manual=%v auto=%d langs",
		videoID, sortedKeys(details.Subtitles.Manual), len(details.Subtitles.Auto))

	url := selectTrack(details.Subtitles, lang)
	if url == "" {
		return "", &TranscriptError{
			VideoID: videoID,
			Kind:    KindNoSubtitles,
			Message: userMessage(KindNoSubtitles, nil),
		}
	}

	resp, err := f.HTTP.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return ParseWebVTT(string(resp.Body)), nil
}

// wrapError converts the terminal retry error into a *TranscriptError
// carrying the display message for its kind.
func (f *Fetcher) wrapError(videoID string, err error) error {
	var te *TranscriptError
	if errors.As(err, &te) {
		return te
	}
	var de *DownloadError
	if errors.As(err, &de) {
		return &TranscriptError{
			VideoID: videoID,
			Kind:    de.Kind,
			Message: userMessage(de.Kind, de.Err),
			Err:     err,
		}
	}
	return &TranscriptError{
		VideoID: videoID,
		Kind:    KindOther,
		Message: userMessage(KindOther, err),
		Err:     err,
	}
}

// selectTrack picks the VTT subtitle URL to download. Priority: manual
// track in the preferred language, auto captions in the preferred
// language, any manual track, any auto track. Non-VTT renditions are
// ignored. Returns "" when nothing qualifies.
func selectTrack(tracks SubtitleTracks, lang string) string {
	if url := vttURL(tracks.Manual[lang]); url != "" {
		return url
	}
	if url := vttURL(tracks.Auto[lang]); url != "" {
		return url
	}
	if url := anyVTTURL(tracks.Manual); url != "" {
		return url
	}
	return anyVTTURL(tracks.Auto)
}

func vttURL(formats []SubtitleFormat) string {
	for _, f := range formats {
		if f.Ext == "vtt" {
			return f.URL
		}
	}
	return ""
}

// anyVTTURL scans languages in sorted order so selection is
// deterministic.
func anyVTTURL(tracks map[string][]SubtitleFormat) string {
	for _, lang := range sortedKeys(tracks) {
		if url := vttURL(tracks[lang]); url != "" {
			return url
		}
	}
	return ""
}

func sortedKeys(m map[string][]SubtitleFormat) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f *Fetcher) logf(format string, args ...any) {
	if f.Logger != nil {
		f.Logger.Printf(format, args...)
	}
}
