package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	skills "github.com/prettyhe/baoyu-skills"
	"github.com/prettyhe/baoyu-skills/internal/config"
)

// CLI errors.
var (
	ErrNoInput     = errors.New("no input file provided")
	ErrReadInput   = errors.New("failed to read input file")
	ErrWriteOutput = errors.New("failed to write output file")
	ErrInvalidFlag = errors.New("invalid flag value")
)

// resolveConfig builds the effective configuration for a command run:
// defaults, then config file, then environment variables, then common CLI
// flags. A config file named by --config or BAOYU_CONFIG must exist; without
// one the well-known locations are searched and absence is fine.
func resolveConfig(f *commonFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env)
	warnUnknownEnvVars(env.Stderr)

	path := f.config
	if path == "" {
		path = envCfg.ConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyEnvConfig(envCfg, cfg)

	if f.style != "" {
		cfg.Style = f.style
	}
	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: timeout %q (want e.g. 30s, 2m)", ErrInvalidFlag, f.timeout)
		}
		cfg.Timeout = int(d.Seconds())
	}
	return cfg, nil
}

// readDocument loads the Markdown source named by the first positional
// argument and parses it with CLI overrides applied. The document directory
// anchors relative image paths.
func readDocument(positional []string, f *contentFlags, cfg *config.Config) (skills.Document, error) {
	if len(positional) == 0 {
		return skills.Document{}, ErrNoInput
	}

	path := positional[0]
	data, err := os.ReadFile(path) // #nosec G304 -- user-requested input path
	if err != nil {
		return skills.Document{}, fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	doc := skills.ParseDocument(string(data), skills.Overrides{
		Title:  f.title,
		Author: f.author,
		Digest: f.digest,
		Cover:  f.cover,
	})
	if doc.Author == "" {
		doc.Author = cfg.Author
	}
	doc.Dir = filepath.Dir(path)
	return doc, nil
}

// newLogger builds the CLI logger honoring quiet/verbose.
func newLogger(f *commonFlags, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.quiet:
		level = slog.LevelError
	case f.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// effectiveBrowserURL returns the browser address a command will attach to.
// The flag wins over the config file.
func effectiveBrowserURL(cfg *config.Config, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.Browser.ControlURL
}

// serviceOptions assembles library options from the merged config. The
// workers flag wins over its config file counterpart; browserURL is already
// the effective address.
func serviceOptions(cfg *config.Config, workers int, browserURL string, logger *slog.Logger) []skills.Option {
	opts := []skills.Option{skills.WithLogger(logger)}
	if cfg.Style != "" {
		opts = append(opts, skills.WithStylesheet(cfg.Style))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, skills.WithTimeout(time.Duration(cfg.Timeout)*time.Second))
	}
	if workers == 0 {
		workers = cfg.Workers
	}
	if workers > 0 {
		opts = append(opts, skills.WithWorkers(workers))
	}
	if browserURL != "" {
		opts = append(opts, skills.WithBrowserURL(browserURL))
	}
	return opts
}

// draftArticleType maps the --type flag and config value to a draft article
// type. The flag accepts the short forms; canonical names pass through so a
// validated config value needs no translation.
func draftArticleType(flagValue, configValue string) (string, error) {
	v := flagValue
	if v == "" {
		v = configValue
	}
	switch v {
	case "", "article", skills.ArticleTypeSingle:
		return skills.ArticleTypeSingle, nil
	case "album", skills.ArticleTypeAlbum:
		return skills.ArticleTypeAlbum, nil
	default:
		return "", fmt.Errorf("%w: %q (want article or album)", skills.ErrInvalidArticleType, v)
	}
}
