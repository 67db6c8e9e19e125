package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	docx2pdf "github.com/alnah/go-docx2pdf"
	"github.com/alnah/go-docx2pdf/internal/hints"
	"github.com/alnah/go-docx2pdf/internal/yamlutil"
)

// ErrWritePDF wraps failures writing the generated PDF.
var ErrWritePDF = errors.New("failed to write PDF file")

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// requestFile is the on-disk form of a generate request.
// Field names match the HTTP API body; JSON is accepted as YAML.
type requestFile struct {
	TemplateName string            `yaml:"templateName"`
	Variables    map[string]string `yaml:"variables"`
	Bookmarks    map[string]string `yaml:"bookmarks"`
	Images       map[string]string `yaml:"images"`
}

// runGenerate renders one template to a PDF file.
func runGenerate(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseGenerateFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(rest) > 1 {
		return fmt.Errorf("%w: generate takes one template name, got %q", ErrUsage, rest)
	}

	req, err := buildRequest(f, rest)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}
	mergeLayoutFlags(&f.layout, cfg)
	mergeRendererFlags(&f.renderer, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	conv, err := docx2pdf.NewConverter(converterOptions(cfg, logger)...)
	if err != nil {
		return err
	}
	defer func() { _ = conv.Close() }()

	start := env.Now()
	result, err := conv.Generate(ctx, req)
	if err != nil {
		return withHint(err, conv.Templates)
	}

	outPath, err := writePDF(f.output, result)
	if err != nil {
		return err
	}

	if !f.common.quiet {
		elapsed := env.Now().Sub(start).Round(time.Millisecond)
		fmt.Fprintf(env.Stdout, "Generated %s (%d bytes) in %s\n", outPath, len(result.PDF), elapsed)
	}
	return nil
}

// buildRequest merges the request file, the positional template name and the
// repeated assignment flags. Flags win over the file.
func buildRequest(f *generateFlags, rest []string) (docx2pdf.Request, error) {
	var rf requestFile
	if f.request != "" {
		if err := yamlutil.ReadFileStrict(f.request, &rf); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return docx2pdf.Request{}, fmt.Errorf("reading request: %w", err)
			}
			return docx2pdf.Request{}, fmt.Errorf("%w: request file %s: %v", ErrUsage, f.request, err)
		}
	}
	if len(rest) == 1 {
		rf.TemplateName = rest[0]
	}
	if rf.TemplateName == "" {
		return docx2pdf.Request{}, fmt.Errorf("%w: template name required", ErrUsage)
	}

	req := docx2pdf.Request{TemplateName: rf.TemplateName}
	var err error
	if req.Variables, err = overlay(rf.Variables, "var", f.vars); err != nil {
		return docx2pdf.Request{}, err
	}
	if req.Bookmarks, err = overlay(rf.Bookmarks, "bookmark", f.bookmarks); err != nil {
		return docx2pdf.Request{}, err
	}
	if req.Images, err = overlay(rf.Images, "image", f.images); err != nil {
		return docx2pdf.Request{}, err
	}
	return req, nil
}

// overlay returns base with the parsed flag pairs applied on top.
func overlay(base map[string]string, flagName string, pairs []string) (map[string]string, error) {
	parsed, err := parseAssignments(flagName, pairs)
	if err != nil {
		return nil, err
	}
	if len(base) == 0 {
		return parsed, nil
	}
	out := maps.Clone(base)
	maps.Copy(out, parsed)
	return out, nil
}

// writePDF stores result at output, or at result.Filename when output is
// empty or an existing directory. Returns the path written.
func writePDF(output string, result *docx2pdf.Result) (string, error) {
	path := output
	switch {
	case path == "":
		path = result.Filename
	case isDir(path):
		path = filepath.Join(path, result.Filename)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return "", fmt.Errorf("%w: %v%s", ErrWritePDF, err, hints.ForOutputDirectory())
		}
	}
	if err := os.WriteFile(path, result.PDF, filePermissions); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	return path, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
