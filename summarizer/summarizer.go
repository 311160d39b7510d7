// Package summarizer produces structured transcript summaries via the
// Anthropic Messages API.
package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ytsummary/httpclient"
)

const (
	messagesURL      = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 2048

	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-sonnet-4-5-20250929"
)

const systemPrompt = "You are an expert at summarizing video transcripts with attention to actionable details."

const promptTemplate = "Summarize the following video transcript in less than five sentences. " +
	"Then provide a bulleted list of the top takeaways from the video.\n\n" +
	"IMPORTANT: If the video contains any of the following, extract them explicitly:\n" +
	"- Step-by-step instructions or procedures\n" +
	"- Supplement protocols or stacks (dosages, timing, combinations)\n" +
	"- Specific recommendations or action items\n" +
	"- Product names, brands, or specific tools mentioned\n" +
	"- Numbered lists or sequential processes\n\n" +
	"Format your response as:\n" +
	"SUMMARY:\n[your summary here]\n\n" +
	"TOP TAKEAWAYS:\n- [takeaway 1]\n- [takeaway 2]\n...\n\n" +
	"PROTOCOLS & INSTRUCTIONS:\n" +
	"[If the video contains specific protocols, supplement stacks, step-by-step instructions, " +
	"or detailed recommendations, list them here with exact dosages, timing, and steps. " +
	"If none exist, write 'None mentioned.']\n\n" +
	"TRANSCRIPT:\n%s"

// Error indicates a summarization failure.
type Error struct {
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("summarizer: %v", e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Poster sends HTTP POST requests. Satisfied by *httpclient.Client.
type Poster interface {
	Post(ctx context.Context, url string, headers map[string]string, body []byte) (*httpclient.Response, error)
}

// Client summarizes transcripts with a Claude model. The response is
// the raw sentinel-delimited blob; cache.ParseSummary splits it.
type Client struct {
	HTTP   Poster
	APIKey string

	// Model is the Claude model ID. Defaults to DefaultModel.
	Model string

	// MaxTokens caps the response length. Defaults to 2048.
	MaxTokens int
}

// NewClient creates a summarizer client.
func NewClient(httpClient Poster, apiKey string) *Client {
	return &Client{
		HTTP:      httpClient,
		APIKey:    apiKey,
		Model:     DefaultModel,
		MaxTokens: defaultMaxTokens,
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Summarize sends the transcript to the Messages API and returns the
// raw summary blob.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := c.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(messagesRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []message{
			{Role: "user", Content: fmt.Sprintf(promptTemplate, transcript)},
		},
	})
	if err != nil {
		return "", &Error{Err: err}
	}

	headers := map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": apiVersion,
		"content-type":      "application/json",
	}

	resp, err := c.HTTP.Post(ctx, messagesURL, headers, body)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			return "", &Error{Err: fmt.Errorf("api status %d: %s", httpErr.StatusCode, httpErr.Body)}
		}
		return "", &Error{Err: err}
	}

	var parsed messagesResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", &Error{Err: fmt.Errorf("parse response: %w", err)}
	}
	for _, block := range parsed.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", &Error{Err: errors.New("response carried no text content")}
}
