// Package subscriptions batch-processes recent videos from the
// authenticated user's YouTube subscriptions.
package subscriptions

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"ytsummary/cache"
	"ytsummary/filter"
	"ytsummary/youtube"
)

// API is the slice of the Data API the runner needs.
type API interface {
	SubscribedChannels(ctx context.Context) ([]youtube.Channel, error)
	RecentVideos(ctx context.Context, channelID string, since time.Time) ([]youtube.Video, error)
	VideoDurations(ctx context.Context, videoIDs []string) (map[string]time.Duration, error)
}

// TranscriptFetcher turns a video ID into transcript text.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// Summarizer produces a summary blob for a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Cache is the slice of the record store the runner needs.
type Cache interface {
	Load(videoID string) (*cache.Record, error)
	Save(videoID, fullText string, opts cache.SaveOptions) error
}

// shortsCutoff is the duration at or under which a video counts as a
// YouTube Short and is skipped.
const shortsCutoff = 60 * time.Second

// Options controls one subscription run.
type Options struct {
	// Days bounds the crawl to videos published in the last N days.
	Days int
	// IncludeKeywords, ExcludeKeywords filter on video titles.
	IncludeKeywords []string
	ExcludeKeywords []string
	// ExcludeChannels drops whole channels by display name,
	// case-insensitive exact match.
	ExcludeChannels []string
	// DryRun lists the videos that would be processed and stops.
	DryRun bool
	// MaxVideos caps successful transcript saves per run. 0 is
	// unlimited.
	MaxVideos int
}

// Report summarizes what a run did.
type Report struct {
	// RunID uniquely tags the run's log lines.
	RunID string

	Processed      int // transcripts fetched and saved
	AlreadyCached  int // skipped, transcript already on disk
	Shorts         int // skipped, duration at most 60s
	KeywordRemoved int // skipped by the keyword filter
	NoTranscript   int // transcript unavailable
	Errors         int // unexpected failures
}

// Runner executes the subscription pipeline: authenticate, list
// channels, collect recent videos, filter, then fetch and cache
// transcripts one by one.
type Runner struct {
	API     API
	Fetcher TranscriptFetcher
	Cache   Cache

	// Summarizer, when set, summarizes each fetched transcript before
	// the save. Nil caches transcripts only.
	Summarizer Summarizer

	// Logger for progress output. Nil uses the default logger.
	Logger *log.Logger

	// Now is the clock, injectable for tests.
	Now func() time.Time
}

// Run executes one subscription crawl.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	r.logf("run %s: fetching subscribed channels...", report.RunID)

	channels, err := r.API.SubscribedChannels(ctx)
	if err != nil {
		return report, err
	}
	r.logf("found %d subscribed channels", len(channels))

	channels = r.excludeChannels(channels, opts.ExcludeChannels)

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	since := now().UTC().AddDate(0, 0, -opts.Days)
	r.logf("fetching videos from last %d days...", opts.Days)

	var all []youtube.Video
	for _, ch := range channels {
		videos, err := r.API.RecentVideos(ctx, ch.ID, since)
		if err != nil {
			// One broken channel must not sink the run.
			r.logf("failed to fetch videos from %s: %v", ch.Title, err)
			continue
		}
		all = append(all, videos...)
	}
	r.logf("found %d total videos", len(all))

	videos := dedupe(all)
	if len(videos) < len(all) {
		r.logf("deduplicated to %d unique videos", len(videos))
	}

	videos, cached, err := r.dropCached(videos)
	if err != nil {
		return report, err
	}
	report.AlreadyCached = cached
	if cached > 0 {
		r.logf("skipped %d videos already cached", cached)
	}

	videos, shorts, err := r.dropShorts(ctx, videos)
	if err != nil {
		return report, err
	}
	report.Shorts = shorts
	if shorts > 0 {
		r.logf("filtered %d Shorts", shorts)
	}

	videos, removed := r.applyKeywords(videos, opts.IncludeKeywords, opts.ExcludeKeywords)
	report.KeywordRemoved = removed

	r.logf("filtered to %d videos to process", len(videos))

	if opts.DryRun {
		r.logf("dry run, videos that would be processed:")
		for _, v := range videos {
			r.logf("[%s] %s | Published: %s | ID: %s",
				v.Channel, v.Title, v.PublishedAt.Format("2006-01-02"), v.ID)
		}
		return report, nil
	}

	if len(videos) == 0 {
		r.logf("no videos to process")
		return report, nil
	}

	r.logf("fetching and caching transcripts...")
	for i, v := range videos {
		if opts.MaxVideos > 0 && report.Processed >= opts.MaxVideos {
			break
		}
		r.logf("[%d] %s - %s", i+1, v.Channel, v.Title)

		text, err := r.Fetcher.Fetch(ctx, v.ID)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			var te *youtube.TranscriptError
			if errors.As(err, &te) {
				r.logf("%v", te)
				report.NoTranscript++
			} else {
				r.logf("unexpected error: %v", err)
				report.Errors++
			}
			continue
		}
		r.logf("  fetched transcript (%d chars)", len(text))

		var summary string
		if r.Summarizer != nil {
			summary, err = r.Summarizer.Summarize(ctx, text)
			if err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				r.logf("summarization failed for %s: %v", v.ID, err)
				// Keep the transcript; the summary can be produced
				// later by the single-video flow.
				if err := r.Cache.Save(v.ID, text, cache.SaveOptions{Title: v.Title, Channel: v.Channel}); err != nil {
					r.logf("failed to cache transcript for %s: %v", v.ID, err)
				}
				report.Errors++
				continue
			}
		}

		err = r.Cache.Save(v.ID, text, cache.SaveOptions{
			Summary: summary, Title: v.Title, Channel: v.Channel,
		})
		if err != nil {
			r.logf("failed to cache transcript for %s: %v", v.ID, err)
			report.Errors++
			continue
		}
		if summary != "" {
			r.logf("  cached transcript and summary")
		} else {
			r.logf("  cached transcript")
		}
		report.Processed++
	}

	r.logf("processed %d videos (%d already cached, %d no transcript, %d error(s))",
		report.Processed, report.AlreadyCached, report.NoTranscript, report.Errors)
	return report, nil
}

// excludeChannels drops channels whose display name matches the
// exclusion list, case-insensitively. Names that match no subscription
// are reported so typos surface.
func (r *Runner) excludeChannels(channels []youtube.Channel, exclude []string) []youtube.Channel {
	if len(exclude) == 0 {
		return channels
	}

	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[strings.ToLower(name)] = true
	}

	matched := make(map[string]bool)
	kept := channels[:0:0]
	for _, ch := range channels {
		lower := strings.ToLower(ch.Title)
		if excluded[lower] {
			r.logf("skipping %s (excluded)", ch.Title)
			matched[lower] = true
			continue
		}
		kept = append(kept, ch)
	}

	if n := len(channels) - len(kept); n > 0 {
		r.logf("excluded %d channels by name", n)
	}
	for _, name := range exclude {
		if !matched[strings.ToLower(name)] {
			r.logf("warning: exclude channel %q not found in subscriptions", name)
		}
	}
	return kept
}

// dedupe keeps the first occurrence of each video ID.
func dedupe(videos []youtube.Video) []youtube.Video {
	seen := make(map[string]bool, len(videos))
	unique := videos[:0:0]
	for _, v := range videos {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		unique = append(unique, v)
	}
	return unique
}

// dropCached removes videos whose cache record already carries a
// transcript. Records without one (summary-only or placeholder) stay
// in the batch.
func (r *Runner) dropCached(videos []youtube.Video) ([]youtube.Video, int, error) {
	kept := videos[:0:0]
	for _, v := range videos {
		rec, err := r.Cache.Load(v.ID)
		if err != nil {
			return nil, 0, err
		}
		if rec != nil && rec.FullText != "" {
			continue
		}
		kept = append(kept, v)
	}
	return kept, len(videos) - len(kept), nil
}

// dropShorts removes videos with a known duration of 60 seconds or
// less. Videos the duration lookup knows nothing about stay in.
func (r *Runner) dropShorts(ctx context.Context, videos []youtube.Video) ([]youtube.Video, int, error) {
	if len(videos) == 0 {
		return videos, 0, nil
	}

	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	durations, err := r.API.VideoDurations(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	kept := videos[:0:0]
	for _, v := range videos {
		if d, ok := durations[v.ID]; ok && d <= shortsCutoff {
			r.logf("  skipping Short: [%s] %s (%ds)", v.Channel, v.Title, int(d.Seconds()))
			continue
		}
		kept = append(kept, v)
	}
	return kept, len(videos) - len(kept), nil
}

// applyKeywords runs the keyword filter and logs each removal with
// its reason.
func (r *Runner) applyKeywords(videos []youtube.Video, include, exclude []string) ([]youtube.Video, int) {
	if len(include) == 0 && len(exclude) == 0 {
		return videos, 0
	}

	candidates := make([]filter.Video, len(videos))
	for i, v := range videos {
		candidates[i] = filter.Video{ID: v.ID, Title: v.Title}
	}
	filtered, reasons := filter.Keywords(candidates, include, exclude)

	keptIDs := make(map[string]bool, len(filtered))
	for _, v := range filtered {
		keptIDs[v.ID] = true
	}

	kept := videos[:0:0]
	removed := 0
	for _, v := range videos {
		if keptIDs[v.ID] {
			kept = append(kept, v)
			continue
		}
		reason := reasons[v.ID]
		if reason == "" {
			reason = "unknown"
		}
		r.logf("  keyword filter removed: [%s] %s (reason: %s)", v.Channel, v.Title, reason)
		removed++
	}
	if removed > 0 {
		r.logf("keyword filter removed %d videos", removed)
	}
	return kept, removed
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
