package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ScopeReadonly is the only Data API scope this tool needs.
const ScopeReadonly = "https://www.googleapis.com/auth/youtube.readonly"

const tokenFileName = "token.json"

// Authenticator loads a stored OAuth token, refreshes it when expired,
// and persists refreshed tokens back to disk. It never opens a
// browser: the token file must already exist, created by an external
// authorization flow.
type Authenticator struct {
	// Dir holds token.json.
	Dir string
}

// authorizedUser is the on-disk token format shared with Google's
// client libraries, so a token created by their flow works unchanged.
type authorizedUser struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
	TokenURI     string   `json:"token_uri"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
	Expiry       string   `json:"expiry"`
}

// TokenSource returns a token source backed by Dir/token.json.
// Refreshed tokens are written back with owner-only permissions.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	path := filepath.Join(a.Dir, tokenFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf(
				"oauth token not found at %s\n"+
					"Run an OAuth authorization flow to create it:\n"+
					"1. Go to https://console.cloud.google.com/\n"+
					"2. Enable YouTube Data API v3\n"+
					"3. Create OAuth2 Desktop credentials\n"+
					"4. Authorize with scope %s and save the token to %s",
				path, ScopeReadonly, path)
		}
		return nil, err
	}

	var stored authorizedUser
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if stored.RefreshToken == "" {
		return nil, fmt.Errorf("%s carries no refresh token", path)
	}

	tokenURL := stored.TokenURI
	if tokenURL == "" {
		tokenURL = google.Endpoint.TokenURL
	}
	cfg := &oauth2.Config{
		ClientID:     stored.ClientID,
		ClientSecret: stored.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
		Scopes:       []string{ScopeReadonly},
	}

	tok := &oauth2.Token{
		AccessToken:  stored.Token,
		RefreshToken: stored.RefreshToken,
	}
	if stored.Expiry != "" {
		if t, err := parseTokenExpiry(stored.Expiry); err == nil {
			tok.Expiry = t
		}
	}

	return &persistingTokenSource{
		src:    cfg.TokenSource(ctx, tok),
		path:   path,
		stored: stored,
		last:   tok.AccessToken,
	}, nil
}

// persistingTokenSource writes refreshed tokens back to the token
// file so the next run starts with a valid access token.
type persistingTokenSource struct {
	src    oauth2.TokenSource
	path   string
	stored authorizedUser

	mu   sync.Mutex
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken == p.last {
		return tok, nil
	}

	out := p.stored
	out.Token = tok.AccessToken
	if tok.RefreshToken != "" {
		out.RefreshToken = tok.RefreshToken
	}
	out.Expiry = tok.Expiry.UTC().Format(time.RFC3339)

	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(p.path, data, 0o600); err != nil {
		return nil, err
	}
	p.last = tok.AccessToken
	return tok, nil
}

// parseTokenExpiry accepts the timestamp variants Google's libraries
// write: RFC3339 with or without fractional seconds or zone suffix.
func parseTokenExpiry(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized expiry %q", s)
}
