package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/prettyhe/baoyu-skills/internal/assets"
	"github.com/prettyhe/baoyu-skills/internal/config"
)

// defaultControlHost is probed when no browser address is configured. It
// matches the attach default of the compose commands.
const defaultControlHost = "127.0.0.1:9222"

// browserProbeTimeout bounds the version endpoint check.
const browserProbeTimeout = 3 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Config   configInfo  `json:"config"`
	Browser  browserInfo `json:"browser"`
	WeChat   wechatInfo  `json:"wechat"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// configInfo holds configuration detection results.
type configInfo struct {
	Source string   `json:"source,omitempty"` // "" = built-in defaults
	Style  string   `json:"style,omitempty"`
	Styles []string `json:"bundled_styles"`
}

// browserInfo holds remote-debugging endpoint results.
type browserInfo struct {
	ControlURL string `json:"control_url"`
	Reachable  bool   `json:"reachable"`
	Version    string `json:"version,omitempty"`
}

// wechatInfo holds credential presence results. Values are never printed.
type wechatInfo struct {
	AppID     string `json:"app_id"` // redacted
	SecretSet bool   `json:"secret_set"`
}

// systemInfo holds system check results.
type systemInfo struct {
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	Container    bool   `json:"container"`
	CI           bool   `json:"ci"`
	TempWritable bool   `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor(ctx, env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Config: configInfo{Styles: assets.ListStyles()},
		System: systemInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
	}

	cfg := checkConfig(result, env)
	checkBrowser(ctx, result, cfg)
	checkWeChat(result, cfg)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkConfig loads the effective configuration and reports its origin.
// A broken config file is an error; absence is fine.
func checkConfig(result *doctorResult, env *Environment) *config.Config {
	envCfg := loadEnvConfig(env)
	cfg, err := config.Load(envCfg.ConfigPath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		cfg = config.DefaultConfig()
	}
	applyEnvConfig(envCfg, cfg)

	result.Config.Source = cfg.Source
	result.Config.Style = cfg.Style
	return cfg
}

// checkBrowser probes the remote-debugging version endpoint.
func checkBrowser(ctx context.Context, result *doctorResult, cfg *config.Config) {
	controlURL := cfg.Browser.ControlURL
	if controlURL == "" {
		controlURL = defaultControlHost
	}
	result.Browser.ControlURL = controlURL

	probeCtx, cancel := context.WithTimeout(ctx, browserProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, versionURL(controlURL), nil)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Browser address %q is not probeable: %v", controlURL, err))
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		result.Warnings = append(result.Warnings,
			"Browser not reachable. Start Chrome with --remote-debugging-port=9222 for post/article")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	result.Browser.Reachable = true
	var version struct {
		Browser string `json:"Browser"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&version); err == nil {
		result.Browser.Version = version.Browser
	}
}

// versionURL builds the DevTools version endpoint for a control address,
// which may be a bare host:port, an http(s) URL, or a ws URL.
func versionURL(controlURL string) string {
	u := strings.TrimSuffix(controlURL, "/")
	switch {
	case strings.HasPrefix(u, "ws://"):
		u = "http://" + strings.TrimPrefix(u, "ws://")
	case strings.HasPrefix(u, "http://"), strings.HasPrefix(u, "https://"):
	default:
		u = "http://" + u
	}
	return u + "/json/version"
}

// checkWeChat reports credential presence without printing values.
func checkWeChat(result *doctorResult, cfg *config.Config) {
	result.WeChat.AppID = config.Redacted(cfg.WeChat.AppID)
	result.WeChat.SecretSet = cfg.WeChat.AppSecret != ""

	if cfg.WeChat.AppID == "" || cfg.WeChat.AppSecret == "" {
		result.Warnings = append(result.Warnings,
			"WeChat credentials not set. Set WECHAT_APP_ID and WECHAT_APP_SECRET for the wechat command")
	}
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	result.System.Container = isContainer()
	result.System.CI = isCI()

	// Check temp directory is writable; image resolution stages files there.
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "baoyu-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// isContainer detects if running in a container environment.
func isContainer() bool {
	// Docker
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	// Podman / systemd-nspawn / general container indicator
	if os.Getenv("container") != "" {
		return true
	}
	// Kubernetes
	return os.Getenv("KUBERNETES_SERVICE_HOST") != ""
}

// isCI detects common CI environments.
func isCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "baoyu doctor")
	fmt.Fprintln(w)

	// Config section
	fmt.Fprintln(w, "Configuration")
	if r.Config.Source != "" {
		fmt.Fprintf(w, "  [OK] Loaded from %s\n", r.Config.Source)
	} else {
		fmt.Fprintln(w, "  [OK] Using built-in defaults (no config file)")
	}
	if r.Config.Style != "" {
		fmt.Fprintf(w, "  [OK] Style: %s\n", r.Config.Style)
	}
	fmt.Fprintf(w, "  [OK] Bundled styles: %s\n", strings.Join(r.Config.Styles, ", "))
	fmt.Fprintln(w)

	// Browser section
	fmt.Fprintln(w, "Browser")
	if r.Browser.Reachable {
		fmt.Fprintf(w, "  [OK] Reachable at %s\n", r.Browser.ControlURL)
		if r.Browser.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Browser.Version)
		}
	} else {
		fmt.Fprintf(w, "  [WARN] Not reachable at %s\n", r.Browser.ControlURL)
	}
	fmt.Fprintln(w)

	// WeChat section
	fmt.Fprintln(w, "WeChat")
	fmt.Fprintf(w, "  [OK] App ID: %s\n", r.WeChat.AppID)
	if r.WeChat.SecretSet {
		fmt.Fprintln(w, "  [OK] App secret: set")
	} else {
		fmt.Fprintln(w, "  [WARN] App secret: not set")
	}
	fmt.Fprintln(w)

	// System section
	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.System.OS, r.System.Arch)
	if r.System.Container {
		fmt.Fprintln(w, "  [OK] Container: detected")
	}
	if r.System.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: ready")
	case "warnings":
		fmt.Fprintln(w, "Status: ready with warnings")
	default:
		fmt.Fprintln(w, "Status: errors found")
	}
}
