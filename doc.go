// Package ytsummary fetches YouTube transcripts, summarizes them with
// the Anthropic API, and caches the results as markdown notes in an
// Obsidian vault.
//
// Overview
//
// The work is split across sub-packages:
//
//   - youtube: video ID parsing, yt-dlp metadata extraction, WebVTT
//     transcript fetching, and the YouTube Data API client
//   - cache: the vault-backed markdown store (one note per video)
//   - summarizer: Anthropic Messages API client
//   - subscriptions: batch pipeline over subscribed channels
//   - filter: keyword-based title filtering
//   - config: environment and .env configuration
//   - retry: exponential backoff for transient failures
//
// Quick Start
//
// Fetch and cache a transcript:
//
//	store := cache.NewStore("/path/to/vault")
//	fetcher := youtube.NewFetcher(youtube.NewRunner(), httpclient.New(nil))
//	text, err := fetcher.Fetch(ctx, "dQw4w9WgXcQ")
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = store.Save("dQw4w9WgXcQ", text, cache.SaveOptions{
//		Title:   "Video Title",
//		Channel: "Channel Name",
//	})
//
// Summarize it:
//
//	client := summarizer.NewClient(httpclient.New(nil), apiKey)
//	summary, err := client.Summarize(ctx, text)
//
// Configuration
//
// Settings come from the environment, optionally seeded by a .env file
// in the working directory:
//
//   - ANTHROPIC_API_KEY: enables summarization
//   - CLAUDE_MODEL: summarization model ID
//   - TRANSCRIPT_LANGUAGE: preferred subtitle language (default "en")
//   - OBSIDIAN_VAULT_PATH: cache root (default: working directory)
//   - OAUTH_DIR: Data API token directory (default ~/.yt-summary)
//   - SUBSCRIPTION_INCLUDE_KEYWORDS, SUBSCRIPTION_EXCLUDE_KEYWORDS,
//     SUBSCRIPTION_EXCLUDE_CHANNELS: subscription run filters
//   - YOUTUBE_COOKIES_FILE: cookies for age-restricted videos
//   - YTDLP_PATH, YTDLP_TIMEOUT: yt-dlp executable and per-call limit
//
// Error Handling
//
// Transcript failures carry a classification:
//
//	var te *youtube.TranscriptError
//	if errors.As(err, &te) && te.Kind == youtube.KindNoSubtitles {
//		fmt.Println("no captions for this one")
//	}
//
// Permanent failures (private, unavailable, age-restricted, no
// subtitles) are not retried; network and rate-limit errors are, with
// exponential backoff.
//
// Dependencies
//
// ytsummary requires yt-dlp installed and reachable via PATH or
// YTDLP_PATH. Subscription runs additionally need a YouTube Data API
// OAuth token; see youtube.Authenticator for the token file layout.
//
// Install yt-dlp: https://github.com/yt-dlp/yt-dlp
//
package ytsummary
