package docx2pdf

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-docx2pdf/internal/assets"
	"github.com/alnah/go-docx2pdf/internal/docx"
	"github.com/alnah/go-docx2pdf/internal/fileutil"
	"github.com/alnah/go-docx2pdf/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MediaDocument = (*docx.Document)(nil)
	_ pdfRenderer            = (*sofficeRenderer)(nil)
)

// docxExt is the only template extension listed by Templates.
const docxExt = ".docx"

// Converter fills DOCX templates and renders them to PDF.
// Create with NewConverter, use Generate for conversion, and Close when done.
// A Converter is safe for concurrent use, but every Generate starts its own
// LibreOffice process; use ConverterPool to bound them.
type Converter struct {
	cfg        converterConfig
	logger     *zap.Logger
	templates  *assets.Store
	images     *assets.Store
	outputDir  string
	profileDir string
	renderer   pdfRenderer
}

// NewConverter creates a Converter and the directories it works in.
// The renderer is located on each conversion, so a missing LibreOffice is
// reported by Generate rather than here.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:     defaultTimeout,
			settleDelay: defaultSettleDelay,
			waitDelay:   defaultWaitDelay,
			contentRoot: ".",
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	var err error
	if c.templates, err = assets.NewStore(c.dir(c.cfg.templatesDir, "templates")); err != nil {
		return nil, fmt.Errorf("templates directory: %w", err)
	}
	if c.images, err = assets.NewStore(c.dir(c.cfg.imagesDir, "images")); err != nil {
		return nil, fmt.Errorf("images directory: %w", err)
	}
	c.outputDir = c.dir(c.cfg.outputDir, "output")
	if err := os.MkdirAll(c.outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	if c.cfg.isolatedProfile {
		if c.profileDir, err = os.MkdirTemp("", "docx2pdf-profile-*"); err != nil {
			return nil, fmt.Errorf("creating renderer profile: %w", err)
		}
	}

	// Create renderer if not injected (e.g., by tests)
	if c.renderer == nil {
		c.renderer = &sofficeRenderer{
			explicit:    c.cfg.rendererPath,
			locator:     defaultLocator(),
			timeout:     c.cfg.timeout,
			settleDelay: c.cfg.settleDelay,
			waitDelay:   c.cfg.waitDelay,
			profileDir:  c.profileDir,
			env:         c.cfg.rendererEnv,
			logger:      c.logger,
		}
	}

	return c, nil
}

// dir returns override when set, else contentRoot/name.
func (c *Converter) dir(override, name string) string {
	if override != "" {
		return override
	}
	return filepath.Join(c.cfg.contentRoot, name)
}

// Generate fills the named template with req and renders it to PDF.
// The context is used for cancellation in addition to the renderer timeout.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Generate(ctx context.Context, req Request) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	templatePath, err := c.resolveTemplate(req.TemplateName)
	if err != nil {
		return nil, err
	}

	// Images are checked before any file is written so a bad reference
	// costs no copy and no renderer run.
	images, err := c.resolveImages(req.Images)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	workDocx := filepath.Join(c.outputDir, id+docxExt)
	workPDF := filepath.Join(c.outputDir, id+".pdf")
	log := c.logger.With(zap.String("template", req.TemplateName), zap.String("id", id))

	if !c.cfg.keepArtifacts {
		defer func() {
			if rmErr := fileutil.RemoveAll(workDocx, workPDF); rmErr != nil {
				log.Warn("removing working files", zap.Error(rmErr))
			}
		}()
	}

	if err := fileutil.CopyFile(templatePath, workDocx); err != nil {
		return nil, fmt.Errorf("copying template: %w", err)
	}

	if err := c.fill(log, workDocx, req, images); err != nil {
		return nil, err
	}

	job, err := c.renderer.Render(ctx, workDocx, workPDF)
	if err != nil {
		if job != nil {
			log.Warn("conversion failed",
				zap.Stringer("job_state", job.State),
				zap.Int("exit_code", job.ExitCode),
				zap.String("stderr", job.Stderr),
				zap.Duration("duration", job.Duration),
			)
		}
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}

	pdf, err := os.ReadFile(workPDF) // #nosec G304 -- path built from a generated id
	if err != nil {
		return nil, fmt.Errorf("reading PDF: %w", err)
	}

	log.Info("document generated",
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", job.Duration),
	)

	return &Result{
		PDF:      pdf,
		Filename: strings.TrimSuffix(req.TemplateName, filepath.Ext(req.TemplateName)) + ".pdf",
		Job:      job,
	}, nil
}

// fill applies variables, bookmark text and images, then saves once.
func (c *Converter) fill(log *zap.Logger, path string, req Request, images map[string]string) error {
	doc, err := docx.Open(path)
	if err != nil {
		return err
	}
	defer doc.Close()

	changed := pipeline.SubstituteVariables(doc, req.Variables)

	replaced, err := pipeline.ReplaceBookmarks(doc, req.Bookmarks, c.cfg.strictBookmarks)
	if err != nil {
		return err
	}

	for _, name := range slices.Sorted(maps.Keys(images)) {
		ok, err := pipeline.InjectImage(doc, name, images[name], c.cfg.strictBookmarks)
		if err != nil {
			return err
		}
		if !ok {
			log.Debug("bookmark not found, image skipped", zap.String("bookmark", name))
		}
	}

	if err := doc.Save(); err != nil {
		return err
	}

	log.Debug("template filled",
		zap.Int("text_leaves_changed", changed),
		zap.Strings("bookmarks", replaced),
		zap.Int("images", len(images)),
	)
	return nil
}

// resolveTemplate maps a template name to its path in the templates directory.
func (c *Converter) resolveTemplate(name string) (string, error) {
	path, err := c.templates.Resolve(name)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, assets.ErrAssetNotFound):
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	case errors.Is(err, assets.ErrInvalidAssetName), errors.Is(err, assets.ErrPathTraversal):
		return "", fmt.Errorf("%w: %v", ErrInvalidTemplateName, err)
	default:
		return "", fmt.Errorf("resolving template: %w", err)
	}
}

// resolveImages maps bookmark -> image name to bookmark -> checked image path.
func (c *Converter) resolveImages(names map[string]string) (map[string]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	paths := make(map[string]string, len(names))
	for bookmark, name := range names {
		path, err := c.images.Resolve(name)
		if err != nil {
			if errors.Is(err, assets.ErrAssetNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrImageNotFound, name)
			}
			return nil, fmt.Errorf("image for bookmark %q: %w", bookmark, err)
		}
		if _, err := pipeline.CheckImage(path); err != nil {
			return nil, err
		}
		paths[bookmark] = path
	}
	return paths, nil
}

// ListBookmarks returns the bookmark names of the named template in document
// order. The template itself is never opened, so concurrent listings and
// generations of the same template do not contend.
func (c *Converter) ListBookmarks(name string) ([]string, error) {
	templatePath, err := c.resolveTemplate(name)
	if err != nil {
		return nil, err
	}

	work := filepath.Join(c.outputDir, uuid.NewString()+docxExt)
	if err := fileutil.CopyFile(templatePath, work); err != nil {
		return nil, fmt.Errorf("copying template: %w", err)
	}
	defer func() { _ = os.Remove(work) }()

	return Bookmarks(work)
}

// Templates returns the names of the .docx files in the templates directory.
func (c *Converter) Templates() ([]string, error) {
	return c.templates.List(docxExt)
}

// Close removes the isolated renderer profile, if any.
func (c *Converter) Close() error {
	if c.profileDir == "" {
		return nil
	}
	dir := c.profileDir
	c.profileDir = ""
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing renderer profile: %w", err)
	}
	return nil
}
