// Package config manages application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. Values come from a .env
// file and environment variables, environment winning.
type Config struct {
	// AnthropicAPIKey authorizes summarization requests. Empty disables
	// summarization.
	AnthropicAPIKey string
	// ClaudeModel is the model ID for summarization.
	ClaudeModel string
	// TranscriptLanguage is the preferred subtitle language code.
	TranscriptLanguage string

	// VaultPath is the root directory of the markdown cache. Empty
	// falls back to the current working directory.
	VaultPath string
	// OAuthDir holds the Data API token file. Empty falls back to
	// ~/.yt-summary.
	OAuthDir string

	// IncludeKeywords and ExcludeKeywords are the default subscription
	// title filters.
	IncludeKeywords []string
	ExcludeKeywords []string
	// ExcludeChannels names channels to drop from subscription runs.
	ExcludeChannels []string

	// CookiesFile is a Netscape-format cookies file for yt-dlp.
	CookiesFile string
	// YtdlpPath is the yt-dlp executable (default "yt-dlp").
	YtdlpPath string
	// YtdlpTimeout is the per-invocation yt-dlp limit.
	YtdlpTimeout time.Duration
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		ClaudeModel:        "claude-sonnet-4-5-20250929",
		TranscriptLanguage: "en",
		YtdlpPath:          "yt-dlp",
		YtdlpTimeout:       5 * time.Minute,
	}
}

// Load reads a .env file when present, applies environment variables
// over defaults, and validates the result.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.AnthropicAPIKey = v
	}
	if v := os.Getenv("CLAUDE_MODEL"); v != "" {
		c.ClaudeModel = v
	}
	if v := os.Getenv("TRANSCRIPT_LANGUAGE"); v != "" {
		c.TranscriptLanguage = v
	}
	if v := os.Getenv("OBSIDIAN_VAULT_PATH"); v != "" {
		c.VaultPath = expandHome(v)
	}
	if v := os.Getenv("OAUTH_DIR"); v != "" {
		c.OAuthDir = expandHome(v)
	}
	if v := os.Getenv("SUBSCRIPTION_INCLUDE_KEYWORDS"); v != "" {
		c.IncludeKeywords = splitList(v)
	}
	if v := os.Getenv("SUBSCRIPTION_EXCLUDE_KEYWORDS"); v != "" {
		c.ExcludeKeywords = splitList(v)
	}
	if v := os.Getenv("SUBSCRIPTION_EXCLUDE_CHANNELS"); v != "" {
		c.ExcludeChannels = splitList(v)
	}
	if v := os.Getenv("YOUTUBE_COOKIES_FILE"); v != "" {
		c.CookiesFile = expandHome(v)
	}
	if v := os.Getenv("YTDLP_PATH"); v != "" {
		c.YtdlpPath = v
	}
	if v := os.Getenv("YTDLP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.YtdlpTimeout = d
		}
	}
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.YtdlpTimeout <= 0 {
		return fmt.Errorf("ytdlp timeout must be positive")
	}
	if c.VaultPath != "" {
		info, err := os.Stat(c.VaultPath)
		if err != nil {
			return fmt.Errorf(
				"obsidian vault path does not exist: %s\n"+
					"Create the directory or update OBSIDIAN_VAULT_PATH in .env", c.VaultPath)
		}
		if !info.IsDir() {
			return fmt.Errorf(
				"obsidian vault path is not a directory: %s\n"+
					"Specify a valid directory path in OBSIDIAN_VAULT_PATH", c.VaultPath)
		}
		if err := checkWritable(c.VaultPath); err != nil {
			return fmt.Errorf(
				"obsidian vault path is not writable: %s\n"+
					"Check directory permissions", c.VaultPath)
		}
	}
	return nil
}

// ResolveVaultPath returns the configured vault root, defaulting to
// the current working directory.
func (c *Config) ResolveVaultPath() (string, error) {
	if c.VaultPath != "" {
		return c.VaultPath, nil
	}
	return os.Getwd()
}

// ResolveOAuthDir returns the OAuth directory, defaulting to
// ~/.yt-summary, creating it when missing.
func (c *Config) ResolveOAuthDir() (string, error) {
	dir := c.OAuthDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".yt-summary")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create oauth directory %s: %w", dir, err)
	}
	return dir, nil
}

// checkWritable probes a directory by creating and removing a file.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".ytsummary-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

// splitList parses a comma-separated env value into trimmed non-empty
// items.
func splitList(v string) []string {
	var items []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
