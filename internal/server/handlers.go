package server

import (
	"context"
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alnah/go-docx2pdf"
)

// statusClientClosedRequest is logged when the caller hangs up mid-conversion.
const statusClientClosedRequest = 499

// generateRequest is the body of POST /api/document/generate-pdf.
type generateRequest struct {
	TemplateName string            `json:"templateName"`
	Variables    map[string]string `json:"variables"`
	Bookmarks    map[string]string `json:"bookmarks"`
	Images       map[string]string `json:"images"`
}

// templateRequest is the body of POST /api/document/bookmarks.
type templateRequest struct {
	TemplateName string `json:"templateName"`
}

func (s *Server) generatePDF(c *gin.Context) {
	var req generateRequest
	if !s.bind(c, &req) {
		return
	}

	gen, ok := s.acquire(c)
	if !ok {
		return
	}
	defer s.pool.Release(gen)

	res, err := gen.Generate(c.Request.Context(), docx2pdf.Request{
		TemplateName: req.TemplateName,
		Variables:    req.Variables,
		Bookmarks:    req.Bookmarks,
		Images:       req.Images,
	})
	if err != nil {
		s.writeError(c, req.TemplateName, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	c.Data(http.StatusOK, "application/pdf", res.PDF)
}

func (s *Server) listBookmarks(c *gin.Context) {
	var req templateRequest
	if !s.bind(c, &req) {
		return
	}

	gen, ok := s.acquire(c)
	if !ok {
		return
	}
	defer s.pool.Release(gen)

	names, err := gen.ListBookmarks(req.TemplateName)
	if err != nil {
		s.writeError(c, req.TemplateName, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": names})
}

func (s *Server) listTemplates(c *gin.Context) {
	gen, ok := s.acquire(c)
	if !ok {
		return
	}
	defer s.pool.Release(gen)

	names, err := gen.Templates()
	if err != nil {
		s.writeError(c, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": names})
}

func (s *Server) health(c *gin.Context) {
	body := gin.H{"workers": s.pool.Size()}

	path, err := s.locateRenderer(s.opts.RendererPath)
	if err != nil {
		body["status"] = "unavailable"
		body["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ok"
	body["renderer"] = path
	c.JSON(http.StatusOK, body)
}

// bind decodes a size-limited JSON body, answering 400 on failure.
func (s *Server) bind(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return false
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return false
	}
	return true
}

// acquire waits for a generator, answering 503 when none frees up in time.
func (s *Server) acquire(c *gin.Context) (Generator, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.AcquireTimeout)
	defer cancel()

	gen, err := s.pool.Acquire(ctx)
	if err != nil {
		_ = c.Error(err)
		if c.Request.Context().Err() != nil {
			c.AbortWithStatus(statusClientClosedRequest)
			return nil, false
		}
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "all converters are busy, retry later"})
		return nil, false
	}
	return gen, true
}

// writeError maps library errors to HTTP responses.
func (s *Server) writeError(c *gin.Context, template string, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, docx2pdf.ErrTemplateNotFound),
		template == "" && errors.Is(err, docx2pdf.ErrInvalidTemplateName):
		c.String(http.StatusBadRequest, "Template not found: %s", template)
	case errors.Is(err, docx2pdf.ErrInvalidTemplateName),
		errors.Is(err, docx2pdf.ErrImageNotFound),
		errors.Is(err, docx2pdf.ErrUnsupportedImageFormat),
		errors.Is(err, docx2pdf.ErrBookmarkNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case c.Request.Context().Err() != nil:
		c.Status(statusClientClosedRequest)
	default:
		s.logger.Error("conversion failed", zap.String("template", template), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
