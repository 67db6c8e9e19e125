package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alnah/go-docx2pdf"
)

// Defaults applied by New for zero Options fields.
const (
	DefaultAcquireTimeout  = 30 * time.Second
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 30 * time.Second

	readHeaderTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	AcquireTimeout time.Duration // wait for a free converter before 503
	MaxBodyBytes   int64         // request body limit
	CORSOrigins    []string      // empty = CORS disabled
	RateLimit      float64       // requests per second, 0 = unlimited
	RateBurst      int
	RendererPath   string // reported by /api/health; empty = discovery
	Logger         *zap.Logger
}

// Server routes HTTP requests to pooled converters.
type Server struct {
	opts   Options
	pool   Pool
	logger *zap.Logger
	engine *gin.Engine

	locateRenderer func(string) (string, error) // replaced in tests
}

// New builds the gin engine for pool.
func New(pool Pool, opts Options) *Server {
	if opts.AcquireTimeout <= 0 {
		opts.AcquireTimeout = DefaultAcquireTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		opts:           opts,
		pool:           pool,
		logger:         logger,
		locateRenderer: docx2pdf.LocateRenderer,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(recovery(s.logger))
	r.Use(requestLogger(s.logger))

	if len(s.opts.CORSOrigins) > 0 {
		r.Use(corsMiddleware(s.opts.CORSOrigins))
	}

	api := r.Group("/api")
	api.GET("/health", s.health)

	limited := api.Group("")
	if s.opts.RateLimit > 0 {
		burst := max(s.opts.RateBurst, 1)
		limited.Use(rateLimit(rate.NewLimiter(rate.Limit(s.opts.RateLimit), burst)))
	}
	{
		limited.POST("/document/generate-pdf", s.generatePDF)
		limited.POST("/document/bookmarks", s.listBookmarks)
		limited.GET("/templates", s.listTemplates)
	}

	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenConfig defines the listener used by Run.
type ListenConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Run serves on cfg.Addr until ctx is done, then shuts down gracefully,
// letting in-flight conversions finish within cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context, cfg ListenConfig) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Addr, err)
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg ListenConfig) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening",
			zap.String("addr", ln.Addr().String()),
			zap.Int("workers", s.pool.Size()),
		)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	s.logger.Info("shutting down", zap.Duration("timeout", timeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
