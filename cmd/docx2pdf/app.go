package main

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	docx2pdf "github.com/alnah/go-docx2pdf"
	"github.com/alnah/go-docx2pdf/internal/config"
	"github.com/alnah/go-docx2pdf/internal/hints"
)

// loadConfig builds the effective configuration.
// Precedence: CLI flags > DOCX2PDF_* variables > config file > defaults.
// Command-specific flags are merged by the caller before Validate.
func loadConfig(common *commonFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	mergeCommonFlags(common, cfg)
	return cfg, nil
}

// newLogger builds a zap logger writing to w at the configured level.
func newLogger(cfg config.LogConfig, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: log.level: %v", config.ErrInvalidValue, err)
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core), nil
}

// converterOptions translates cfg into Converter options.
func converterOptions(cfg *config.Config, logger *zap.Logger) []docx2pdf.Option {
	opts := []docx2pdf.Option{
		docx2pdf.WithLogger(logger),
		docx2pdf.WithTimeout(cfg.Renderer.Timeout),
		docx2pdf.WithSettleDelay(cfg.Renderer.SettleDelay),
		docx2pdf.WithTemplatesDir(cfg.TemplatesDir()),
		docx2pdf.WithOutputDir(cfg.OutputDir()),
		docx2pdf.WithImagesDir(cfg.ImagesDir()),
	}
	if cfg.Renderer.Path != "" {
		opts = append(opts, docx2pdf.WithRendererPath(cfg.Renderer.Path))
	}
	if cfg.Renderer.IsolateProfile {
		opts = append(opts, docx2pdf.WithIsolatedProfile())
	}
	if cfg.Bookmarks.Strict {
		opts = append(opts, docx2pdf.WithStrictBookmarks())
	}
	if cfg.KeepArtifacts {
		opts = append(opts, docx2pdf.WithKeepArtifacts())
	}
	return opts
}

// withHint appends an actionable hint for well-known failures.
func withHint(err error, available func() ([]string, error)) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, docx2pdf.ErrRendererNotFound):
		return fmt.Errorf("%w%s", err, hints.ForRendererNotFound())
	case errors.Is(err, docx2pdf.ErrRendererTimeout):
		return fmt.Errorf("%w%s", err, hints.ForTimeout())
	case errors.Is(err, docx2pdf.ErrRendererExit):
		return fmt.Errorf("%w%s", err, hints.ForRendererExit())
	case errors.Is(err, docx2pdf.ErrUnsupportedImageFormat):
		return fmt.Errorf("%w%s", err, hints.ForUnsupportedImage())
	case errors.Is(err, docx2pdf.ErrTemplateNotFound) && available != nil:
		names, listErr := available()
		if listErr != nil {
			return err
		}
		return fmt.Errorf("%w%s", err, hints.ForTemplateNotFound(names))
	}
	return err
}
