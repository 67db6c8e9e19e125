package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	docx2pdf "github.com/alnah/go-docx2pdf"
	"github.com/alnah/go-docx2pdf/internal/config"
)

// envPrefix marks the variables read by the CLI.
const envPrefix = "DOCX2PDF_"

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string        // DOCX2PDF_CONFIG: config file name or path
	Addr       string        // DOCX2PDF_ADDR: HTTP listen address
	Timeout    time.Duration // DOCX2PDF_TIMEOUT: LibreOffice timeout

	// Tier 2 - Layout
	ContentRoot string // DOCX2PDF_CONTENT_ROOT: templates/, output/, images/ parent
	Workers     int    // DOCX2PDF_WORKERS: concurrent conversions

	// Tier 3 - Extended
	LogLevel    string   // DOCX2PDF_LOG_LEVEL: debug, info, warn, error
	LogFormat   string   // DOCX2PDF_LOG_FORMAT: json, console
	CORSOrigins []string // DOCX2PDF_CORS_ORIGINS: comma-separated origins
}

// knownEnvVars lists valid DOCX2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"DOCX2PDF_CONFIG":  true,
	"DOCX2PDF_ADDR":    true,
	"DOCX2PDF_TIMEOUT": true,
	// Tier 2 - Layout
	"DOCX2PDF_CONTENT_ROOT": true,
	"DOCX2PDF_WORKERS":      true,
	// Tier 3 - Extended
	"DOCX2PDF_LOG_LEVEL":    true,
	"DOCX2PDF_LOG_FORMAT":   true,
	"DOCX2PDF_CORS_ORIGINS": true,
	// Read by renderer discovery
	docx2pdf.RendererEnvVar: true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored rather than reported.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("DOCX2PDF_CONFIG"),
		Addr:        os.Getenv("DOCX2PDF_ADDR"),
		ContentRoot: os.Getenv("DOCX2PDF_CONTENT_ROOT"),
		LogLevel:    strings.ToLower(os.Getenv("DOCX2PDF_LOG_LEVEL")),
		LogFormat:   strings.ToLower(os.Getenv("DOCX2PDF_LOG_FORMAT")),
	}

	if timeout := os.Getenv("DOCX2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("DOCX2PDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	if origins := os.Getenv("DOCX2PDF_CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	return cfg
}

// warnUnknownEnvVars prints warnings for unrecognized DOCX2PDF_* variables.
// Helps catch typos like DOCX2PDF_WORKER instead of DOCX2PDF_WORKERS.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays set environment values onto cfg.
// Environment wins over the config file; CLI flags are applied afterwards.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.Timeout > 0 {
		cfg.Renderer.Timeout = env.Timeout
	}
	if env.ContentRoot != "" {
		cfg.Paths.ContentRoot = env.ContentRoot
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if len(env.CORSOrigins) > 0 {
		cfg.Server.CORSOrigins = env.CORSOrigins
	}
}
