package main

import (
	"fmt"

	"go.uber.org/zap"

	docx2pdf "github.com/alnah/go-docx2pdf"
	"github.com/alnah/go-docx2pdf/internal/fileutil"
)

// runBookmarks prints the bookmark names of a template, one per line.
// The argument is a .docx path when such a file exists, else a template name.
func runBookmarks(args []string, env *Environment) error {
	f, rest, err := parseListFlags("bookmarks", args, env.Stderr, printBookmarksUsage)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("%w: bookmarks takes one template name or .docx path", ErrUsage)
	}

	var names []string
	if fileutil.FileExists(rest[0]) {
		names, err = docx2pdf.Bookmarks(rest[0])
	} else {
		names, err = withConverter(f, env, func(conv *docx2pdf.Converter) ([]string, error) {
			names, err := conv.ListBookmarks(rest[0])
			return names, withHint(err, conv.Templates)
		})
	}
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Fprintln(env.Stdout, name)
	}
	return nil
}

// runTemplates prints the templates available in the templates directory.
func runTemplates(args []string, env *Environment) error {
	f, rest, err := parseListFlags("templates", args, env.Stderr, printTemplatesUsage)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: templates takes no arguments, got %q", ErrUsage, rest)
	}

	names, err := withConverter(f, env, (*docx2pdf.Converter).Templates)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(env.Stdout, name)
	}
	return nil
}

// withConverter runs fn on a converter built from the effective config.
func withConverter(f *listFlags, env *Environment, fn func(*docx2pdf.Converter) ([]string, error)) ([]string, error) {
	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return nil, err
	}
	mergeLayoutFlags(&f.layout, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	conv, err := docx2pdf.NewConverter(converterOptions(cfg, zap.NewNop())...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conv.Close() }()
	return fn(conv)
}
