package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	docx2pdf "github.com/alnah/go-docx2pdf"
	"github.com/alnah/go-docx2pdf/internal/config"
	"github.com/alnah/go-docx2pdf/internal/server"
)

// runServe starts the HTTP API and blocks until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) (err error) {
	f, rest, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, rest)
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}
	mergeLayoutFlags(&f.layout, cfg)
	mergeRendererFlags(&f.renderer, cfg)
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.workers != 0 {
		cfg.Workers = f.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	undo, _ := maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf))
	defer undo()

	size := docx2pdf.ResolvePoolSize(cfg.Workers)
	if isolateProfiles(cfg, size) {
		logger.Debug("isolated renderer profiles enabled", zap.Int("workers", size))
	}
	pool := docx2pdf.NewConverterPool(size, converterOptions(cfg, logger)...)
	defer func() {
		if closeErr := pool.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("closing converters: %w", closeErr))
		}
	}()

	if path, locErr := env.LocateRenderer(cfg.Renderer.Path); locErr != nil {
		logger.Warn("conversions will fail until LibreOffice is installed", zap.Error(locErr))
	} else {
		logger.Info("renderer found", zap.String("path", path))
	}

	srv := server.New(server.FromConverterPool(pool), server.Options{
		AcquireTimeout: cfg.Server.AcquireTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		RendererPath:   cfg.Renderer.Path,
		Logger:         logger,
	})

	logger.Info("starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.Int("workers", size),
		zap.Bool("isolateProfile", cfg.Renderer.IsolateProfile),
		zap.String("templates", cfg.TemplatesDir()),
		zap.String("version", Version),
	)

	if err := env.Serve(ctx, srv, server.ListenConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}); err != nil {
		return fmt.Errorf("serving: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// isolateProfiles gives each pooled converter its own LibreOffice profile
// when more than one soffice can run at a time. Instances sharing a profile
// hand their job to the first one and exit without writing output.
// Reports whether cfg was changed.
func isolateProfiles(cfg *config.Config, size int) bool {
	if size < 2 || cfg.Renderer.IsolateProfile {
		return false
	}
	cfg.Renderer.IsolateProfile = true
	return true
}
