package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-docx2pdf/internal/config"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logFormat string
}

// layoutFlags holds the content root and its subdirectories.
type layoutFlags struct {
	contentRoot string
}

// rendererFlags holds LibreOffice and replacement policy flags.
type rendererFlags struct {
	soffice        string
	timeout        time.Duration
	strict         bool
	keepArtifacts  bool
	isolateProfile bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common   commonFlags
	layout   layoutFlags
	renderer rendererFlags
	addr     string
	workers  int
}

// generateFlags holds flags for the generate command.
type generateFlags struct {
	common    commonFlags
	layout    layoutFlags
	renderer  rendererFlags
	output    string
	request   string
	vars      []string
	bookmarks []string
	images    []string
}

// listFlags holds flags for the bookmarks and templates commands.
type listFlags struct {
	common commonFlags
	layout layoutFlags
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common  commonFlags
	layout  layoutFlags
	soffice string
	json    bool
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only log errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log conversion job transitions")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: json, console")
}

func addLayoutFlags(fs *flag.FlagSet, f *layoutFlags) {
	fs.StringVarP(&f.contentRoot, "content-root", "r", "", "directory holding templates/, output/ and images/")
}

func addRendererFlags(fs *flag.FlagSet, f *rendererFlags) {
	fs.StringVar(&f.soffice, "soffice", "", "LibreOffice binary (default: discovered)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "LibreOffice timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.strict, "strict", false, "fail on unknown bookmarks")
	fs.BoolVar(&f.keepArtifacts, "keep-artifacts", false, "keep filled DOCX and PDF in the output directory")
	fs.BoolVar(&f.isolateProfile, "isolate-profile", false, "one LibreOffice profile per worker")
}

// newFlagSet creates a FlagSet that reports errors instead of exiting.
func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parse runs fs.Parse and tags failures with ErrUsage. flag.ErrHelp is
// returned as is.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return fs.Args(), nil
}

func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", stderr, printServeUsage)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :5000)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent conversions (0 = auto)")
	addCommonFlags(fs, &f.common)
	addLayoutFlags(fs, &f.layout)
	addRendererFlags(fs, &f.renderer)

	rest, err := parse(fs, args)
	return f, rest, err
}

func parseGenerateFlags(args []string, stderr io.Writer) (*generateFlags, []string, error) {
	f := &generateFlags{}
	fs := newFlagSet("generate", stderr, printGenerateUsage)
	fs.StringVarP(&f.output, "output", "o", "", "output PDF path (default: <template>.pdf)")
	fs.StringVarP(&f.request, "request", "f", "", "YAML or JSON request file")
	fs.StringArrayVar(&f.vars, "var", nil, "placeholder=value (repeatable)")
	fs.StringArrayVar(&f.bookmarks, "bookmark", nil, "bookmark=text (repeatable)")
	fs.StringArrayVar(&f.images, "image", nil, "bookmark=image file (repeatable)")
	addCommonFlags(fs, &f.common)
	addLayoutFlags(fs, &f.layout)
	addRendererFlags(fs, &f.renderer)

	rest, err := parse(fs, args)
	return f, rest, err
}

func parseListFlags(name string, args []string, stderr io.Writer, usage func(io.Writer)) (*listFlags, []string, error) {
	f := &listFlags{}
	fs := newFlagSet(name, stderr, usage)
	addCommonFlags(fs, &f.common)
	addLayoutFlags(fs, &f.layout)

	rest, err := parse(fs, args)
	return f, rest, err
}

func parseDoctorFlags(args []string, stderr io.Writer) (*doctorFlags, []string, error) {
	f := &doctorFlags{}
	fs := newFlagSet("doctor", stderr, printDoctorUsage)
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	fs.StringVar(&f.soffice, "soffice", "", "LibreOffice binary (default: discovered)")
	addCommonFlags(fs, &f.common)
	addLayoutFlags(fs, &f.layout)

	rest, err := parse(fs, args)
	return f, rest, err
}

// parseAssignments splits repeated key=value flags into a map.
// Values may contain '='; only the first one separates the key.
func parseAssignments(flagName string, pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: --%s %q: expected key=value", ErrUsage, flagName, p)
		}
		m[key] = value
	}
	return m, nil
}

// mergeCommonFlags applies logging flags to cfg (CLI wins).
func mergeCommonFlags(f *commonFlags, cfg *config.Config) {
	switch {
	case f.verbose:
		cfg.Log.Level = "debug"
	case f.quiet:
		cfg.Log.Level = "error"
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
}

func mergeLayoutFlags(f *layoutFlags, cfg *config.Config) {
	if f.contentRoot != "" {
		cfg.Paths.ContentRoot = f.contentRoot
	}
}

func mergeRendererFlags(f *rendererFlags, cfg *config.Config) {
	if f.soffice != "" {
		cfg.Renderer.Path = f.soffice
	}
	if f.timeout != 0 {
		cfg.Renderer.Timeout = f.timeout
	}
	if f.strict {
		cfg.Bookmarks.Strict = true
	}
	if f.keepArtifacts {
		cfg.KeepArtifacts = true
	}
	if f.isolateProfile {
		cfg.Renderer.IsolateProfile = true
	}
}
