package docx2pdf

import (
	"time"

	"go.uber.org/zap"
)

// Defaults applied by NewConverter.
const (
	defaultTimeout     = 60 * time.Second
	defaultSettleDelay = 500 * time.Millisecond

	// defaultWaitDelay bounds the wait for pipes after the process is killed.
	defaultWaitDelay = 2 * time.Second
)

// Request describes one template rendering.
type Request struct {
	TemplateName string            // file name inside the templates directory (required)
	Variables    map[string]string // literal placeholder -> replacement
	Bookmarks    map[string]string // bookmark name -> replacement text (optional)
	Images       map[string]string // bookmark name -> image file name in the images directory (optional)
}

// Result holds the rendered document.
type Result struct {
	PDF      []byte
	Filename string         // <template base name>.pdf
	Job      *ConversionJob // renderer run that produced PDF
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout         time.Duration
	settleDelay     time.Duration
	waitDelay       time.Duration
	rendererPath    string
	rendererEnv     []string
	isolatedProfile bool
	strictBookmarks bool
	keepArtifacts   bool
	contentRoot     string
	templatesDir    string
	outputDir       string
	imagesDir       string
}

// WithTimeout sets the renderer timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("docx2pdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithSettleDelay sets the pause between the renderer exiting and the PDF
// being moved. Zero disables it. Panics if d < 0.
func WithSettleDelay(d time.Duration) Option {
	if d < 0 {
		panic("docx2pdf: WithSettleDelay duration must not be negative")
	}
	return func(c *Converter) {
		c.cfg.settleDelay = d
	}
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRendererPath uses the soffice binary at path instead of discovery.
func WithRendererPath(path string) Option {
	return func(c *Converter) {
		c.cfg.rendererPath = path
	}
}

// WithIsolatedProfile gives the converter its own LibreOffice user profile,
// removed by Close. Needed when several converters render concurrently.
func WithIsolatedProfile() Option {
	return func(c *Converter) {
		c.cfg.isolatedProfile = true
	}
}

// WithStrictBookmarks makes a missing bookmark an error instead of a no-op.
func WithStrictBookmarks() Option {
	return func(c *Converter) {
		c.cfg.strictBookmarks = true
	}
}

// WithKeepArtifacts keeps the working .docx and .pdf in the output directory.
func WithKeepArtifacts() Option {
	return func(c *Converter) {
		c.cfg.keepArtifacts = true
	}
}

// WithContentRoot sets the directory holding templates/, output/ and images/.
func WithContentRoot(dir string) Option {
	return func(c *Converter) {
		c.cfg.contentRoot = dir
	}
}

// WithTemplatesDir overrides {contentRoot}/templates.
func WithTemplatesDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.templatesDir = dir
	}
}

// WithOutputDir overrides {contentRoot}/output.
func WithOutputDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.outputDir = dir
	}
}

// WithImagesDir overrides {contentRoot}/images.
func WithImagesDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.imagesDir = dir
	}
}

// withRendererEnv appends environment variables to the renderer process (for testing).
func withRendererEnv(env ...string) Option {
	return func(c *Converter) {
		c.cfg.rendererEnv = append(c.cfg.rendererEnv, env...)
	}
}
