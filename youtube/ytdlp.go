package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"time"
)

const (
	defaultYtdlpPath    = "yt-dlp"
	defaultYtdlpTimeout = 5 * time.Minute
)

// Runner invokes yt-dlp as a subprocess for metadata-only extraction.
// No media is ever downloaded.
type Runner struct {
	// Path is the yt-dlp executable. Defaults to "yt-dlp" on PATH.
	Path string

	// Timeout is the per-invocation limit. Defaults to 5 minutes.
	Timeout time.Duration

	// CookiesFile is a Netscape-format cookies file passed to yt-dlp
	// when it exists, for age-restricted or members-only content.
	CookiesFile string

	// Logger for debug output. Nil disables logging.
	Logger *log.Logger
}

// NewRunner creates a runner with default path and timeout.
func NewRunner() *Runner {
	return &Runner{Path: defaultYtdlpPath, Timeout: defaultYtdlpTimeout}
}

// SubtitleFormat is one downloadable rendition of a subtitle track.
type SubtitleFormat struct {
	Ext string `json:"ext"`
	URL string `json:"url"`
}

// SubtitleTracks holds the subtitle inventory of a video, keyed by
// language code. Manual tracks were uploaded by the creator; Auto
// tracks are speech-recognition captions.
type SubtitleTracks struct {
	Manual map[string][]SubtitleFormat
	Auto   map[string][]SubtitleFormat
}

// VideoDetails is the metadata yt-dlp reports for a single video.
type VideoDetails struct {
	ID        string
	Title     string
	Channel   string
	Duration  time.Duration
	Subtitles SubtitleTracks
}

// PlaylistEntry is one video reference inside a playlist listing.
type PlaylistEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PlaylistDetails is the metadata of a playlist from a flat listing.
type PlaylistDetails struct {
	ID      string
	Title   string
	Entries []PlaylistEntry
}

// ytdlpInfo mirrors the fields we use from yt-dlp's -J output.
type ytdlpInfo struct {
	ID                string                      `json:"id"`
	Title             string                      `json:"title"`
	Uploader          string                      `json:"uploader"`
	Channel           string                      `json:"channel"`
	UploaderID        string                      `json:"uploader_id"`
	Duration          float64                     `json:"duration"`
	Subtitles         map[string][]SubtitleFormat `json:"subtitles"`
	AutomaticCaptions map[string][]SubtitleFormat `json:"automatic_captions"`
	Entries           []PlaylistEntry             `json:"entries"`
}

// CheckInstalled verifies that yt-dlp is available.
func (r *Runner) CheckInstalled(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.path(), "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("yt-dlp not found at %q: %w", r.path(), err)
	}
	return nil
}

// VideoInfo fetches metadata and the subtitle inventory for a video.
// The channel name falls back through uploader, channel, uploader_id.
func (r *Runner) VideoInfo(ctx context.Context, videoID string) (*VideoDetails, error) {
	info, err := r.extract(ctx, WatchURL(videoID), false)
	if err != nil {
		return nil, err
	}

	return &VideoDetails{
		ID:       coalesce(info.ID, videoID),
		Title:    info.Title,
		Channel:  coalesce(info.Uploader, info.Channel, info.UploaderID),
		Duration: time.Duration(info.Duration * float64(time.Second)),
		Subtitles: SubtitleTracks{
			Manual: info.Subtitles,
			Auto:   info.AutomaticCaptions,
		},
	}, nil
}

// PlaylistInfo fetches a flat listing of a playlist. Accepts a bare
// playlist ID or a full playlist URL.
func (r *Runner) PlaylistInfo(ctx context.Context, playlistIDOrURL string) (*PlaylistDetails, error) {
	playlistID := playlistIDOrURL
	url := playlistIDOrURL
	if IsPlaylistID(playlistIDOrURL) {
		url = "https://www.youtube.com/playlist?list=" + playlistIDOrURL
	} else {
		playlistID = ExtractPlaylistID(playlistIDOrURL)
	}

	info, err := r.extract(ctx, url, true)
	if err != nil {
		return nil, &PlaylistError{PlaylistID: playlistIDOrURL, Err: err}
	}

	entries := make([]PlaylistEntry, 0, len(info.Entries))
	for _, e := range info.Entries {
		if e.ID != "" {
			entries = append(entries, e)
		}
	}

	return &PlaylistDetails{
		ID:      coalesce(playlistID, info.ID),
		Title:   info.Title,
		Entries: entries,
	}, nil
}

// extract runs yt-dlp -J against a URL and decodes the JSON output.
func (r *Runner) extract(ctx context.Context, url string, flat bool) (*ytdlpInfo, error) {
	args := []string{"-J", "--no-warnings", "--skip-download"}
	if flat {
		args = append(args, "--flat-playlist")
	}
	if r.CookiesFile != "" {
		if _, err := os.Stat(r.CookiesFile); err == nil {
			args = append(args, "--cookies", r.CookiesFile)
			r.logf("using cookies file: %s", r.CookiesFile)
		} else {
			r.logf("cookies file unreadable, ignoring: %s", r.CookiesFile)
		}
	}
	args = append(args, url)

	timeout := r.Timeout
	if timeout == 0 {
		timeout = defaultYtdlpTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, r.path(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if cmdCtx.Err() == context.DeadlineExceeded {
			// Not the outer context: report as a retryable failure.
			return nil, newDownloadError(url, stderr.String(),
				fmt.Errorf("yt-dlp timed out after %s", timeout))
		}
		return nil, newDownloadError(url, stderr.String(), err)
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, newDownloadError(url, "", fmt.Errorf("parse yt-dlp output: %w", err))
	}
	return &info, nil
}

func (r *Runner) path() string {
	if r.Path != "" {
		return r.Path
	}
	return defaultYtdlpPath
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
