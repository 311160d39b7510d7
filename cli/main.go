package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"ytsummary/cache"
	"ytsummary/config"
	"ytsummary/httpclient"
	"ytsummary/subscriptions"
	"ytsummary/summarizer"
	"ytsummary/youtube"
)

var logger = log.New(os.Stderr, "", log.LstdFlags)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "summarize":
		os.Exit(cmdSummarize(args))
	case "subscriptions":
		os.Exit(cmdSubscriptions(args))
	case "playlist":
		os.Exit(cmdPlaylist(args))
	case "help", "-h", "--help":
		printUsage()
	default:
		// A bare URL or video ID means summarize, for backward
		// compatibility with the pre-subcommand interface.
		os.Exit(cmdSummarize(os.Args[1:]))
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ytsummary - summarize YouTube videos with Claude

Usage:
  ytsummary summarize [flags] <url-or-video-id>   Summarize a single video
  ytsummary subscriptions [flags]                 Process recent subscription videos
  ytsummary playlist [flags] <url-or-playlist-id> Cache transcripts for a playlist
  ytsummary help                                  Show this help message

Examples:
  ytsummary https://www.youtube.com/watch?v=dQw4w9WgXcQ      # Summarize (default)
  ytsummary summarize dQw4w9WgXcQ --lang de                  # Specific language
  ytsummary subscriptions --days 3 --dry-run                 # Preview a crawl
  ytsummary subscriptions --exclude-keywords "shorts,react"  # Filtered crawl
  ytsummary playlist PLxxxxxxx                               # Archive a playlist

For help on specific command: ytsummary <command> -h
`)
}

// loadConfig loads configuration, exiting on invalid settings.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func openStore(cfg *config.Config) *cache.Store {
	root, err := cfg.ResolveVaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving vault path: %v\n", err)
		os.Exit(1)
	}
	return cache.NewStore(root)
}

// newAcquisition wires the yt-dlp runner and transcript fetcher from
// configuration.
func newAcquisition(cfg *config.Config, lang string) (*youtube.Runner, *youtube.Fetcher) {
	runner := youtube.NewRunner()
	runner.Path = cfg.YtdlpPath
	runner.Timeout = cfg.YtdlpTimeout
	runner.CookiesFile = cfg.CookiesFile

	fetcher := youtube.NewFetcher(runner, httpclient.New(nil))
	if lang != "" {
		fetcher.Language = lang
	} else {
		fetcher.Language = cfg.TranscriptLanguage
	}
	fetcher.Logger = logger
	return runner, fetcher
}

func cmdSummarize(args []string) int {
	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	lang := fs.String("lang", "", "Transcript language code (default: from config)")
	model := fs.String("model", "", "Claude model ID (default: from config)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytsummary summarize [flags] <url-or-video-id>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	argv := fs.Args()
	if len(argv) == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing url-or-video-id\n")
		fs.Usage()
		return 1
	}
	urlOrID := argv[0]

	videoID := urlOrID
	if !youtube.IsVideoID(urlOrID) {
		videoID = youtube.ExtractVideoID(urlOrID)
		if videoID == "" {
			logger.Printf("invalid YouTube URL or video ID: %s", urlOrID)
			return 1
		}
	}

	cfg := loadConfig()
	if cfg.AnthropicAPIKey == "" {
		logger.Printf("ANTHROPIC_API_KEY is not set. Set it in your .env file or as an environment variable.")
		return 1
	}
	modelID := *model
	if modelID == "" {
		modelID = cfg.ClaudeModel
	}

	store := openStore(cfg)
	runner, fetcher := newAcquisition(cfg, *lang)

	ctx := context.Background()

	cached, err := store.Load(videoID)
	if err != nil {
		logger.Printf("cache error: %v", err)
		return 1
	}

	var fullText, summary, title, channel string
	if cached != nil {
		fullText = cached.FullText
		summary = cached.Summary
		title = cached.Title
		channel = cached.Channel
	}

	legacy, err := store.IsLegacy(videoID)
	if err != nil {
		logger.Printf("cache error: %v", err)
		return 1
	}

	// Metadata is needed to name the cache file, unless the cache
	// already answers everything. A legacy-format document also
	// triggers a metadata fetch so the file can be reorganized.
	needsMetadata := (title == "" || channel == "") && !(fullText != "" && summary != "")
	if needsMetadata || legacy {
		details, err := runner.VideoInfo(ctx, videoID)
		switch {
		case err != nil:
			logger.Printf("could not fetch metadata for video %s: %v", videoID, err)
		case details.Title == "":
			logger.Printf("%v", &youtube.MetadataError{VideoID: videoID, Err: errors.New("no title in response")})
		default:
			title = cache.Sanitize(details.Title)
			channel = cache.Sanitize(details.Channel)
			logger.Printf("fetched video metadata: %s by %s", title, orUnknown(channel))
			if cached != nil && legacy {
				err := store.Save(videoID, fullText, cache.SaveOptions{
					Summary: summary, Title: title, Channel: channel,
				})
				if err != nil {
					logger.Printf("cache error: %v", err)
					return 1
				}
				logger.Printf("reorganized cache file with channel subdirectory")
			}
		}
	}

	if fullText != "" {
		logger.Printf("loaded transcript from cache for %s", videoID)
	} else {
		fullText, err = fetcher.Fetch(ctx, videoID)
		if err != nil {
			logger.Printf("%v", err)
			return 1
		}
		err = store.Save(videoID, fullText, cache.SaveOptions{Title: title, Channel: channel})
		if err != nil {
			logger.Printf("cache error: %v", err)
			return 1
		}
		logger.Printf("fetched and cached transcript for %s", videoID)
	}

	if summary != "" {
		logger.Printf("loaded summary from cache")
	} else {
		client := summarizer.NewClient(httpclient.New(nil), cfg.AnthropicAPIKey)
		client.Model = modelID
		summary, err = client.Summarize(ctx, fullText)
		if err != nil {
			logger.Printf("%v", err)
			return 1
		}
		err = store.Save(videoID, fullText, cache.SaveOptions{
			Summary: summary, Title: title, Channel: channel,
		})
		if err != nil {
			logger.Printf("cache error: %v", err)
			return 1
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println(summary)
	fmt.Println("\n" + strings.Repeat("=", 60))
	return 0
}

func cmdSubscriptions(args []string) int {
	fs := flag.NewFlagSet("subscriptions", flag.ExitOnError)
	days := fs.Int("days", 7, "Fetch videos from last N days")
	dryRun := fs.Bool("dry-run", false, "Preview filtered videos without processing")
	includeKw := fs.String("include-keywords", "", "Comma-separated keyword inclusion list")
	excludeKw := fs.String("exclude-keywords", "", "Comma-separated keyword exclusion list")
	excludeCh := fs.String("exclude-channels", "", "Comma-separated channel names to exclude")
	maxVideos := fs.Int("max-videos", 50, "Maximum number of videos to process")
	lang := fs.String("lang", "", "Transcript language code (default: from config)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytsummary subscriptions [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg := loadConfig()
	store := openStore(cfg)
	_, fetcher := newAcquisition(cfg, *lang)

	ctx := context.Background()

	oauthDir, err := cfg.ResolveOAuthDir()
	if err != nil {
		logger.Printf("%v", err)
		return 1
	}
	logger.Printf("authenticating with YouTube...")
	auth := &youtube.Authenticator{Dir: oauthDir}
	ts, err := auth.TokenSource(ctx)
	if err != nil {
		logger.Printf("%v", err)
		return 1
	}
	api, err := youtube.NewAPIClient(ctx, ts)
	if err != nil {
		logger.Printf("%v", err)
		return 1
	}

	runner := &subscriptions.Runner{
		API:     api,
		Fetcher: fetcher,
		Cache:   store,
		Logger:  logger,
	}
	if cfg.AnthropicAPIKey != "" {
		client := summarizer.NewClient(httpclient.New(nil), cfg.AnthropicAPIKey)
		client.Model = cfg.ClaudeModel
		runner.Summarizer = client
	} else {
		logger.Printf("ANTHROPIC_API_KEY not set, caching transcripts without summaries")
	}
	opts := subscriptions.Options{
		Days:            *days,
		IncludeKeywords: listFlag(*includeKw, cfg.IncludeKeywords),
		ExcludeKeywords: listFlag(*excludeKw, cfg.ExcludeKeywords),
		ExcludeChannels: listFlag(*excludeCh, cfg.ExcludeChannels),
		DryRun:          *dryRun,
		MaxVideos:       *maxVideos,
	}

	if _, err := runner.Run(ctx, opts); err != nil {
		logger.Printf("%v", err)
		return 1
	}
	return 0
}

func cmdPlaylist(args []string) int {
	fs := flag.NewFlagSet("playlist", flag.ExitOnError)
	lang := fs.String("lang", "", "Transcript language code (default: from config)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytsummary playlist [flags] <url-or-playlist-id>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	argv := fs.Args()
	if len(argv) == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing url-or-playlist-id\n")
		fs.Usage()
		return 1
	}

	cfg := loadConfig()
	store := openStore(cfg)
	runner, fetcher := newAcquisition(cfg, *lang)

	ctx := context.Background()

	info, err := runner.PlaylistInfo(ctx, argv[0])
	if err != nil {
		logger.Printf("%v", err)
		return 1
	}
	logger.Printf("playlist %q: %d videos", info.Title, len(info.Entries))

	processed, skipped, failed := 0, 0, 0
	for i, entry := range info.Entries {
		rec, err := store.Load(entry.ID)
		if err != nil {
			logger.Printf("cache error: %v", err)
			return 1
		}
		if rec != nil && rec.FullText != "" {
			skipped++
			continue
		}

		logger.Printf("[%d/%d] %s", i+1, len(info.Entries), entry.Title)
		text, err := fetcher.Fetch(ctx, entry.ID)
		if err != nil {
			logger.Printf("%v", err)
			failed++
			continue
		}
		err = store.Save(entry.ID, text, cache.SaveOptions{
			Title:         entry.Title,
			PlaylistID:    info.ID,
			PlaylistTitle: cache.Sanitize(info.Title),
		})
		if err != nil {
			logger.Printf("cache error: %v", err)
			return 1
		}
		processed++
	}

	logger.Printf("playlist done: %d cached, %d already cached, %d failed", processed, skipped, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

// listFlag splits a comma-separated flag value, falling back to the
// configured default when the flag is empty.
func listFlag(flagValue string, fallback []string) []string {
	if flagValue == "" {
		return fallback
	}
	var items []string
	for _, part := range strings.Split(flagValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
