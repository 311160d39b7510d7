package youtube

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// Channel is a subscribed channel from the Data API.
type Channel struct {
	ID    string
	Title string
}

// Video is one entry from a channel's uploads feed.
type Video struct {
	ID          string
	Title       string
	Description string
	Channel     string
	PublishedAt time.Time
}

// APIClient wraps the YouTube Data API v3 for subscription crawls.
type APIClient struct {
	svc *ytapi.Service
}

// NewAPIClient builds a Data API client from an OAuth token source.
func NewAPIClient(ctx context.Context, ts oauth2.TokenSource) (*APIClient, error) {
	svc, err := ytapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, &APIError{Op: "create service", Err: err}
	}
	return &APIClient{svc: svc}, nil
}

// SubscribedChannels fetches every channel the authenticated user is
// subscribed to, following pagination to the end.
func (c *APIClient) SubscribedChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	pageToken := ""

	for {
		call := c.svc.Subscriptions.List([]string{"snippet"}).
			Mine(true).
			MaxResults(50).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, &APIError{Op: "fetch subscriptions", Err: err}
		}

		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.ResourceId == nil {
				continue
			}
			channels = append(channels, Channel{
				ID:    item.Snippet.ResourceId.ChannelId,
				Title: item.Snippet.Title,
			})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return channels, nil
		}
	}
}

// RecentVideos fetches videos a channel published after the cutoff,
// newest first, by walking the channel's uploads playlist (the channel
// ID with its UC prefix swapped for UU). The walk stops at the first
// entry older than the cutoff. Channels without a UC-prefixed ID
// return no videos.
func (c *APIClient) RecentVideos(ctx context.Context, channelID string, since time.Time) ([]Video, error) {
	if !strings.HasPrefix(channelID, "UC") {
		return nil, nil
	}
	uploadsID := "UU" + channelID[2:]

	var videos []Video
	pageToken := ""

	for {
		call := c.svc.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(uploadsID).
			MaxResults(50).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, &APIError{Op: "fetch videos from channel " + channelID, Err: err}
		}

		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.ResourceId == nil {
				continue
			}
			published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			if err != nil {
				continue
			}
			if published.Before(since) {
				return videos, nil
			}
			videos = append(videos, Video{
				ID:          item.Snippet.ResourceId.VideoId,
				Title:       item.Snippet.Title,
				Description: item.Snippet.Description,
				Channel:     item.Snippet.ChannelTitle,
				PublishedAt: published,
			})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return videos, nil
		}
	}
}

// durationBatchSize is the Data API limit per videos.list request.
const durationBatchSize = 50

// VideoDurations batch-fetches durations for a set of video IDs. IDs
// the API reports no contentDetails for are absent from the result.
func (c *APIClient) VideoDurations(ctx context.Context, videoIDs []string) (map[string]time.Duration, error) {
	durations := make(map[string]time.Duration, len(videoIDs))

	for start := 0; start < len(videoIDs); start += durationBatchSize {
		end := start + durationBatchSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}

		resp, err := c.svc.Videos.List([]string{"contentDetails"}).
			Id(videoIDs[start:end]...).
			Context(ctx).
			Do()
		if err != nil {
			return nil, &APIError{Op: "fetch video durations", Err: err}
		}

		for _, item := range resp.Items {
			if item.ContentDetails == nil || item.ContentDetails.Duration == "" {
				continue
			}
			durations[item.Id] = ParseISO8601Duration(item.ContentDetails.Duration)
		}
	}

	return durations, nil
}

var iso8601DurationRegex = regexp.MustCompile(`^P(?:(\d+)D)?T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISO8601Duration parses the Data API duration format, for
// example "PT1H2M3S" or "PT45S". Unparseable input yields zero.
func ParseISO8601Duration(s string) time.Duration {
	m := iso8601DurationRegex.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n := func(group string) int {
		if group == "" {
			return 0
		}
		v, _ := strconv.Atoi(group)
		return v
	}
	days, hours, minutes, seconds := n(m[1]), n(m[2]), n(m[3]), n(m[4])
	return time.Duration(days*86400+hours*3600+minutes*60+seconds) * time.Second
}
