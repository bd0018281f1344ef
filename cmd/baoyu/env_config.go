package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prettyhe/baoyu-skills/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // BAOYU_CONFIG: config file path
	Style      string        // BAOYU_STYLE: stylesheet name or path
	Timeout    time.Duration // BAOYU_TIMEOUT: network timeout
	Workers    int           // BAOYU_WORKERS: parallel image fetches
	Author     string        // BAOYU_AUTHOR: byline fallback
	BrowserURL string        // BAOYU_BROWSER_URL: remote debugging address

	// Credentials follow the platform's own naming so they can be shared
	// with other tooling and .env files.
	AppID     string // WECHAT_APP_ID: official account app id
	AppSecret string // WECHAT_APP_SECRET: official account app secret
}

// knownEnvVars lists valid BAOYU_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"BAOYU_CONFIG":      true,
	"BAOYU_STYLE":       true,
	"BAOYU_TIMEOUT":     true,
	"BAOYU_WORKERS":     true,
	"BAOYU_AUTHOR":      true,
	"BAOYU_BROWSER_URL": true,
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized values.
func loadEnvConfig(env *Environment) *envConfig {
	get := func(name string) string {
		v, _ := env.LookupEnv(name)
		return v
	}

	cfg := &envConfig{
		ConfigPath: get("BAOYU_CONFIG"),
		Style:      get("BAOYU_STYLE"),
		Author:     get("BAOYU_AUTHOR"),
		BrowserURL: get("BAOYU_BROWSER_URL"),
		AppID:      get("WECHAT_APP_ID"),
		AppSecret:  get("WECHAT_APP_SECRET"),
	}

	// Parse duration for timeout
	if timeout := get("BAOYU_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	// Parse int for workers
	if workers := get("BAOYU_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized BAOYU_* variables.
// Helps catch typos like BAOYU_STILE instead of BAOYU_STYLE.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "BAOYU_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty/zero.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via the merge helpers)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Style != "" && cfg.Style == "" {
		cfg.Style = env.Style
	}
	if env.Author != "" && cfg.Author == "" {
		cfg.Author = env.Author
	}
	if env.Timeout > 0 && cfg.Timeout == 0 {
		cfg.Timeout = int(env.Timeout.Seconds())
	}
	if env.Workers > 0 && cfg.Workers == 0 {
		cfg.Workers = env.Workers
	}
	if env.BrowserURL != "" && cfg.Browser.ControlURL == "" {
		cfg.Browser.ControlURL = env.BrowserURL
	}
	if env.AppID != "" && cfg.WeChat.AppID == "" {
		cfg.WeChat.AppID = env.AppID
	}
	if env.AppSecret != "" && cfg.WeChat.AppSecret == "" {
		cfg.WeChat.AppSecret = env.AppSecret
	}
}
