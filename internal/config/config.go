package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-docx2pdf/internal/fileutil"
	"github.com/alnah/go-docx2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength   = 4096 // PATH_MAX on Linux
	MaxOriginLength = 2048 // Browser URL limit
	MaxAddrLength   = 255
)

// Defaults applied by DefaultConfig.
const (
	DefaultAddr            = ":5000"
	DefaultRendererTimeout = 60 * time.Second
	DefaultSettleDelay     = 500 * time.Millisecond
	DefaultShutdownTimeout = 30 * time.Second
	DefaultAcquireTimeout  = 30 * time.Second
	DefaultMaxBodyBytes    = 1 << 20
	DefaultRateBurst       = 10
)

// Log levels and formats accepted by Validate.
var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
)

// Config holds all configuration for the service and the CLI.
type Config struct {
	Server        ServerConfig    `yaml:"server"`
	Paths         PathsConfig     `yaml:"paths"`
	Renderer      RendererConfig  `yaml:"renderer"`
	Bookmarks     BookmarksConfig `yaml:"bookmarks"`
	Workers       int             `yaml:"workers"`       // 0 = auto (GOMAXPROCS/2, clamped 1-8)
	KeepArtifacts bool            `yaml:"keepArtifacts"` // keep output/<id>.docx and .pdf for debugging
	Log           LogConfig       `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`     // 0 = none
	WriteTimeout    time.Duration `yaml:"writeTimeout"`    // 0 = none
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"` // grace period on SIGINT/SIGTERM
	AcquireTimeout  time.Duration `yaml:"acquireTimeout"`  // wait for a free converter before 503
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
	CORSOrigins     []string      `yaml:"corsOrigins"` // empty = CORS disabled
	RateLimit       float64       `yaml:"rateLimit"`   // requests per second, 0 = unlimited
	RateBurst       int           `yaml:"rateBurst"`
}

// PathsConfig defines the filesystem layout. Relative subdirectories are
// resolved against ContentRoot.
type PathsConfig struct {
	ContentRoot string `yaml:"contentRoot"`
	Templates   string `yaml:"templates"`
	Output      string `yaml:"output"`
	Images      string `yaml:"images"`
}

// RendererConfig defines the LibreOffice invocation.
type RendererConfig struct {
	Path           string        `yaml:"path"` // empty = well-known install locations
	Timeout        time.Duration `yaml:"timeout"`
	SettleDelay    time.Duration `yaml:"settleDelay"`
	IsolateProfile bool          `yaml:"isolateProfile"` // one LibreOffice profile per worker
}

// BookmarksConfig defines bookmark and image replacement policy.
type BookmarksConfig struct {
	Strict bool `yaml:"strict"` // fail on unknown bookmarks instead of skipping them
}

// LogConfig defines the zap logger built by the CLI.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
			AcquireTimeout:  DefaultAcquireTimeout,
			MaxBodyBytes:    DefaultMaxBodyBytes,
			RateBurst:       DefaultRateBurst,
		},
		Paths: PathsConfig{
			ContentRoot: ".",
			Templates:   "templates",
			Output:      "output",
			Images:      "images",
		},
		Renderer: RendererConfig{
			Timeout:     DefaultRendererTimeout,
			SettleDelay: DefaultSettleDelay,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Validate checks ranges, enumerations and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually or after applying overrides.
func (c *Config) Validate() error {
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr: required", ErrInvalidValue)
	}
	for name, d := range map[string]time.Duration{
		"server.readTimeout":     c.Server.ReadTimeout,
		"server.writeTimeout":    c.Server.WriteTimeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"server.acquireTimeout":  c.Server.AcquireTimeout,
		"renderer.settleDelay":   c.Renderer.SettleDelay,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s: must not be negative, got %s", ErrInvalidValue, name, d)
		}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server.maxBodyBytes: must be positive, got %d", ErrInvalidValue, c.Server.MaxBodyBytes)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: server.rateLimit: must not be negative, got %g", ErrInvalidValue, c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("%w: server.rateBurst: must be at least 1 when rateLimit is set, got %d", ErrInvalidValue, c.Server.RateBurst)
	}
	for i, origin := range c.Server.CORSOrigins {
		if err := validateFieldLength(fmt.Sprintf("server.corsOrigins[%d]", i), origin, MaxOriginLength); err != nil {
			return err
		}
		if origin == "" {
			return fmt.Errorf("%w: server.corsOrigins[%d]: empty origin", ErrInvalidValue, i)
		}
	}

	for name, p := range map[string]string{
		"paths.contentRoot": c.Paths.ContentRoot,
		"paths.templates":   c.Paths.Templates,
		"paths.output":      c.Paths.Output,
		"paths.images":      c.Paths.Images,
		"renderer.path":     c.Renderer.Path,
	} {
		if err := validateFieldLength(name, p, MaxPathLength); err != nil {
			return err
		}
	}

	if c.Renderer.Timeout <= 0 {
		return fmt.Errorf("%w: renderer.timeout: must be positive, got %s", ErrInvalidValue, c.Renderer.Timeout)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers: must not be negative, got %d", ErrInvalidValue, c.Workers)
	}

	if !oneOf(c.Log.Level, logLevels) {
		return fmt.Errorf("%w: log.level: %q (must be one of %s)", ErrInvalidValue, c.Log.Level, strings.Join(logLevels, ", "))
	}
	if !oneOf(c.Log.Format, logFormats) {
		return fmt.Errorf("%w: log.format: %q (must be one of %s)", ErrInvalidValue, c.Log.Format, strings.Join(logFormats, ", "))
	}
	return nil
}

// TemplatesDir returns the templates directory resolved against the content root.
func (c *Config) TemplatesDir() string { return c.resolve(c.Paths.Templates) }

// OutputDir returns the output directory resolved against the content root.
func (c *Config) OutputDir() string { return c.resolve(c.Paths.Output) }

// ImagesDir returns the images directory resolved against the content root.
func (c *Config) ImagesDir() string { return c.resolve(c.Paths.Images) }

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) || c.Paths.ContentRoot == "" {
		return dir
	}
	return filepath.Join(c.Paths.ContentRoot, dir)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFileStrict(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the locations LoadConfig tries for a config name,
// in order: current directory, then ~/.config/go-docx2pdf/, each with
// .yaml before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-docx2pdf", name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
