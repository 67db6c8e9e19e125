package main

import (
	"context"
	"io"
	"os"
	"time"

	docx2pdf "github.com/alnah/go-docx2pdf"
	"github.com/alnah/go-docx2pdf/internal/server"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer

	// LocateRenderer finds soffice; doctor and serve report its result.
	LocateRenderer func(explicit string) (string, error)

	// RendererVersion asks soffice for its version; nil skips the probe.
	RendererVersion func(ctx context.Context, path string) (string, error)

	// Serve blocks until the HTTP server stops. Tests replace it to avoid
	// binding a port.
	Serve func(ctx context.Context, srv *server.Server, cfg server.ListenConfig) error
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:             time.Now,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		LocateRenderer:  docx2pdf.LocateRenderer,
		RendererVersion: sofficeVersion,
		Serve: func(ctx context.Context, srv *server.Server, cfg server.ListenConfig) error {
			return srv.Run(ctx, cfg)
		},
	}
}
