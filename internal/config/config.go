package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prettyhe/baoyu-skills/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
)

// Field length limits; generous, but bounded so a corrupt file fails loudly.
const (
	MaxAuthorLength     = 100
	MaxAppIDLength      = 64
	MaxAppSecretLength  = 128
	MaxStyleLength      = 4096 // style may be a name, a path, or raw CSS
	MaxControlURLLength = 2048
	MaxWorkers          = 32
)

// Article types accepted by the wechat.articleType key.
const (
	ArticleTypeSingle = "single-cover-article"
	ArticleTypeAlbum  = "multi-image-album"
)

// Config holds all configuration for the publishing flows.
type Config struct {
	WeChat  WeChatConfig  `yaml:"wechat"`
	Browser BrowserConfig `yaml:"browser"`
	Style   string        `yaml:"style"`   // Bundled style name, CSS file path, or raw CSS
	Author  string        `yaml:"author"`  // Default author when the document names none
	Timeout int           `yaml:"timeout"` // Per-call network timeout in seconds (0 = default)
	Workers int           `yaml:"workers"` // Concurrent image fetches (0 = default)

	// Source is the file this config was loaded from, empty for defaults.
	Source string `yaml:"-"`
}

// WeChatConfig defines draft API credentials and options.
type WeChatConfig struct {
	AppID       string `yaml:"appId"`
	AppSecret   string `yaml:"appSecret"`
	ArticleType string `yaml:"articleType"` // "single-cover-article" or "multi-image-album"
}

// BrowserConfig defines how the browser flows attach to a running browser.
type BrowserConfig struct {
	ControlURL string `yaml:"controlUrl"` // Remote debugging address (empty = default port)
}

// Validate checks field lengths and enumerated values.
// Called automatically by Load, but available for consumers who construct
// Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("author", c.Author, MaxAuthorLength); err != nil {
		return err
	}
	if err := validateFieldLength("style", c.Style, MaxStyleLength); err != nil {
		return err
	}
	if err := validateFieldLength("wechat.appId", c.WeChat.AppID, MaxAppIDLength); err != nil {
		return err
	}
	if err := validateFieldLength("wechat.appSecret", c.WeChat.AppSecret, MaxAppSecretLength); err != nil {
		return err
	}
	if err := validateFieldLength("browser.controlUrl", c.Browser.ControlURL, MaxControlURLLength); err != nil {
		return err
	}

	switch c.WeChat.ArticleType {
	case "", ArticleTypeSingle, ArticleTypeAlbum:
		// valid
	default:
		return fmt.Errorf("wechat.articleType: invalid value %q (must be %s or %s)",
			c.WeChat.ArticleType, ArticleTypeSingle, ArticleTypeAlbum)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout: must not be negative, got %d", c.Timeout)
	}
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers: must be between 0 and %d, got %d", MaxWorkers, c.Workers)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a neutral configuration: no credentials, library
// defaults everywhere.
func DefaultConfig() *Config {
	return &Config{}
}

// Load loads configuration. A non-empty path must name an existing file;
// with an empty path the standard locations are searched and a complete
// miss yields the default config rather than an error.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}
	for _, candidate := range SearchPaths() {
		if fileExists(candidate) {
			return loadFile(candidate)
		}
	}
	return DefaultConfig(), nil
}

// loadFile reads, parses, and validates one config file.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Source = path
	return &cfg, nil
}

// SearchPaths lists the standard config locations in precedence order: the
// working directory, then the user config directory.
func SearchPaths() []string {
	paths := []string{"baoyu.yaml", "baoyu.yml"}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(userConfigDir, "baoyu", "config.yaml"),
			filepath.Join(userConfigDir, "baoyu", "config.yml"),
		)
	}
	return paths
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Redacted returns secret-bearing values masked for display, keeping a short
// prefix so the user can tell which credential is in play.
func Redacted(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	if len(secret) <= 6 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-4)
}
