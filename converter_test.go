package docx2pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alnah/go-docx2pdf/internal/docx"
	"github.com/alnah/go-docx2pdf/internal/docx/docxtest"
)

// keptDocx returns the single working .docx left by WithKeepArtifacts.
func keptDocx(t *testing.T, root string) string {
	t.Helper()

	var found []string
	for _, name := range dirEntries(t, filepath.Join(root, "output")) {
		if strings.HasSuffix(name, ".docx") {
			found = append(found, name)
		}
	}
	if len(found) != 1 {
		t.Fatalf("output .docx files = %v, want exactly one", found)
	}
	return filepath.Join(root, "output", found[0])
}

// ---------------------------------------------------------------------------
// TestNewConverter - Directory setup
// ---------------------------------------------------------------------------

func TestNewConverter(t *testing.T) {
	t.Parallel()

	t.Run("creates working directories", func(t *testing.T) {
		t.Parallel()

		_, root := newTestConverter(t, "ok")
		for _, dir := range []string{"templates", "output", "images"} {
			info, err := os.Stat(filepath.Join(root, dir))
			if err != nil || !info.IsDir() {
				t.Errorf("%s not created: %v", dir, err)
			}
		}
	})

	t.Run("explicit directories override content root", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "pdfs")
		_, root := newTestConverter(t, "ok", WithOutputDir(out))
		if _, err := os.Stat(out); err != nil {
			t.Errorf("output dir not created: %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "output")); !os.IsNotExist(err) {
			t.Errorf("default output dir should not exist, stat error = %v", err)
		}
	})

	t.Run("content root is a file", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := NewConverter(WithContentRoot(file)); err == nil {
			t.Error("NewConverter() expected error for a file content root")
		}
	})

	t.Run("isolated profile removed by Close", func(t *testing.T) {
		t.Parallel()

		conv, err := NewConverter(WithContentRoot(t.TempDir()), WithIsolatedProfile())
		if err != nil {
			t.Fatalf("NewConverter() error = %v", err)
		}
		profile := conv.profileDir
		if _, err := os.Stat(profile); err != nil {
			t.Fatalf("profile not created: %v", err)
		}
		if err := conv.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if _, err := os.Stat(profile); !os.IsNotExist(err) {
			t.Errorf("profile still exists after Close, stat error = %v", err)
		}
		if err := conv.Close(); err != nil {
			t.Errorf("second Close() error = %v", err)
		}
	})
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	for _, d := range []time.Duration{0, -time.Second} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("WithTimeout(%s) did not panic", d)
				}
			}()
			WithTimeout(d)
		}()
	}
}

// ---------------------------------------------------------------------------
// TestGenerate - End-to-end pipeline with the fake renderer
// ---------------------------------------------------------------------------

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("returns PDF and removes working files", func(t *testing.T) {
		t.Parallel()

		conv, root := newTestConverter(t, "ok")
		writeTemplate(t, root, "invoice.docx", invoiceFixture())

		res, err := conv.Generate(context.Background(), Request{
			TemplateName: "invoice.docx",
			Variables:    map[string]string{"{{Date}}": "2024-01-01"},
		})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if !strings.HasPrefix(string(res.PDF), "%PDF-") {
			t.Errorf("PDF = %q, want %%PDF- prefix", res.PDF)
		}
		if res.Filename != "invoice.pdf" {
			t.Errorf("Filename = %q, want invoice.pdf", res.Filename)
		}
		if res.Job == nil || res.Job.State != JobRelocated || res.Job.ExitCode != 0 {
			t.Errorf("Job = %+v, want relocated with exit code 0", res.Job)
		}
		if left := dirEntries(t, filepath.Join(root, "output")); len(left) != 0 {
			t.Errorf("output dir not cleaned: %v", left)
		}
	})

	t.Run("invoice scenario", func(t *testing.T) {
		t.Parallel()

		conv, root := newTestConverter(t, "ok", WithKeepArtifacts())
		writeTemplate(t, root, "invoice.docx", invoiceFixture())

		if _, err := conv.Generate(context.Background(), Request{
			TemplateName: "invoice.docx",
			Variables:    map[string]string{"{{Date}}": "2024-01-01"},
		}); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		work := keptDocx(t, root)
		body := docxtest.ReadPart(t, work, docx.PartMainDocument)
		if strings.Contains(body, "{{Date}}") || !strings.Contains(body, "Invoice date: 2024-01-01") {
			t.Errorf("date not substituted in body:\n%s", body)
		}
		if !strings.Contains(body, ">Customer<") {
			t.Errorf("CustomerName bookmark content changed:\n%s", body)
		}
		footer := docxtest.ReadPart(t, work, "word/footer1.xml")
		if !strings.Contains(footer, "Issued 2024-01-01") {
			t.Errorf("date not substituted in footer:\n%s", footer)
		}

		pdf := strings.TrimSuffix(work, ".docx") + ".pdf"
		if _, err := os.Stat(pdf); err != nil {
			t.Errorf("kept PDF missing: %v", err)
		}

		// Template itself is never modified.
		tmpl := docxtest.ReadPart(t, filepath.Join(root, "templates", "invoice.docx"), docx.PartMainDocument)
		if !strings.Contains(tmpl, "{{Date}}") {
			t.Error("template was modified")
		}
	})

	t.Run("bookmarks and images", func(t *testing.T) {
		t.Parallel()

		conv, root := newTestConverter(t, "ok", WithKeepArtifacts())
		writeTemplate(t, root, "letter.docx", docxtest.Fixture{
			Body: "<w:p>" + docxtest.BookmarkStart(1, "Name") + docxtest.Run("x") + docxtest.BookmarkEnd(1) + "</w:p>" +
				"<w:p>" + docxtest.BookmarkStart(2, "Logo") + docxtest.Run("logo here") + docxtest.BookmarkEnd(2) + "</w:p>",
		})
		if err := os.WriteFile(filepath.Join(root, "images", "logo.png"), []byte("PNG"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := conv.Generate(context.Background(), Request{
			TemplateName: "letter.docx",
			Bookmarks:    map[string]string{"Name": "Ada"},
			Images:       map[string]string{"Logo": "logo.png"},
		}); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		work := keptDocx(t, root)
		body := docxtest.ReadPart(t, work, docx.PartMainDocument)
		if !strings.Contains(body, ">Ada<") || strings.Contains(body, "logo here") {
			t.Errorf("bookmarks not replaced:\n%s", body)
		}
		if !strings.Contains(body, "<w:drawing>") {
			t.Errorf("image not injected:\n%s", body)
		}
		if got := docxtest.ReadPart(t, work, "word/media/image1.png"); got != "PNG" {
			t.Errorf("media part = %q", got)
		}
	})

	t.Run("renders through the configured binary with an isolated profile", func(t *testing.T) {
		t.Parallel()

		argsFile := filepath.Join(t.TempDir(), "args")
		conv, root := newTestConverter(t, "ok",
			WithIsolatedProfile(),
			withRendererEnv(fakeArgsEnv+"="+argsFile),
		)
		writeTemplate(t, root, "a.docx", docxtest.Fixture{Body: docxtest.Paragraph("a")})

		if _, err := conv.Generate(context.Background(), Request{TemplateName: "a.docx"}); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		data, err := os.ReadFile(argsFile)
		if err != nil {
			t.Fatalf("reading recorded args: %v", err)
		}
		args := strings.Split(string(data), "\n")
		if len(args) != 7 || !strings.HasPrefix(args[0], "-env:UserInstallation=file:///") {
			t.Fatalf("args = %q", args)
		}
		want := []string{"--headless", "--convert-to", "pdf", "--outdir", filepath.Join(root, "output")}
		for i, w := range want {
			if args[i+1] != w {
				t.Errorf("args[%d] = %q, want %q", i+1, args[i+1], w)
			}
		}
		if !strings.HasSuffix(args[6], ".docx") {
			t.Errorf("input arg = %q, want .docx", args[6])
		}
	})
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mode    string
		opts    []Option
		req     Request
		wantErr error
	}{
		{
			name:    "template not found",
			mode:    "ok",
			req:     Request{TemplateName: "missing.docx"},
			wantErr: ErrTemplateNotFound,
		},
		{
			name:    "traversal in template name",
			mode:    "ok",
			req:     Request{TemplateName: "../invoice.docx"},
			wantErr: ErrInvalidTemplateName,
		},
		{
			name:    "empty template name",
			mode:    "ok",
			req:     Request{},
			wantErr: ErrInvalidTemplateName,
		},
		{
			name:    "renderer exits non-zero",
			mode:    "fail",
			req:     Request{TemplateName: "invoice.docx"},
			wantErr: ErrRendererExit,
		},
		{
			name:    "renderer produces nothing",
			mode:    "nooutput",
			req:     Request{TemplateName: "invoice.docx"},
			wantErr: ErrRendererOutputMissing,
		},
		{
			name:    "renderer times out",
			mode:    "sleep",
			opts:    []Option{WithTimeout(300 * time.Millisecond)},
			req:     Request{TemplateName: "invoice.docx"},
			wantErr: ErrRendererTimeout,
		},
		{
			name:    "renderer binary missing",
			mode:    "ok",
			opts:    []Option{WithRendererPath(filepath.Join(os.TempDir(), "no-such-soffice"))},
			req:     Request{TemplateName: "invoice.docx"},
			wantErr: ErrRendererNotFound,
		},
		{
			name:    "image not in images dir",
			mode:    "ok",
			req:     Request{TemplateName: "invoice.docx", Images: map[string]string{"CustomerName": "logo.png"}},
			wantErr: ErrImageNotFound,
		},
		{
			name:    "unsupported image format",
			mode:    "ok",
			req:     Request{TemplateName: "invoice.docx", Images: map[string]string{"CustomerName": "scan.tiff"}},
			wantErr: ErrUnsupportedImageFormat,
		},
		{
			name:    "strict bookmarks",
			mode:    "ok",
			opts:    []Option{WithStrictBookmarks()},
			req:     Request{TemplateName: "invoice.docx", Bookmarks: map[string]string{"Absent": "x"}},
			wantErr: ErrBookmarkNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv, root := newTestConverter(t, tt.mode, tt.opts...)
			writeTemplate(t, root, "invoice.docx", invoiceFixture())
			if err := os.WriteFile(filepath.Join(root, "images", "scan.tiff"), []byte("II*"), 0o600); err != nil {
				t.Fatal(err)
			}

			start := time.Now()
			res, err := conv.Generate(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Generate() error = %v, want %v", err, tt.wantErr)
			}
			if res != nil {
				t.Errorf("Generate() result = %+v, want nil", res)
			}
			if elapsed := time.Since(start); elapsed > 20*time.Second {
				t.Errorf("Generate() took %s", elapsed)
			}
			if left := dirEntries(t, filepath.Join(root, "output")); len(left) != 0 {
				t.Errorf("output dir not cleaned: %v", left)
			}
		})
	}
}

func TestGenerate_RendererExitIncludesStderr(t *testing.T) {
	t.Parallel()

	conv, root := newTestConverter(t, "fail")
	writeTemplate(t, root, "invoice.docx", invoiceFixture())

	_, err := conv.Generate(context.Background(), Request{TemplateName: "invoice.docx"})
	if err == nil {
		t.Fatal("Generate() expected error")
	}
	for _, want := range []string{"exit code 3", "source file could not be loaded"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestGenerate_Context(t *testing.T) {
	t.Parallel()

	t.Run("already canceled", func(t *testing.T) {
		t.Parallel()

		conv, root := newTestConverter(t, "ok")
		writeTemplate(t, root, "invoice.docx", invoiceFixture())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := conv.Generate(ctx, Request{TemplateName: "invoice.docx"}); !errors.Is(err, context.Canceled) {
			t.Errorf("Generate() error = %v, want context.Canceled", err)
		}
	})

	t.Run("canceled while rendering", func(t *testing.T) {
		t.Parallel()

		conv, root := newTestConverter(t, "sleep")
		writeTemplate(t, root, "invoice.docx", invoiceFixture())

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()
		_, err := conv.Generate(ctx, Request{TemplateName: "invoice.docx"})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Generate() error = %v, want context.DeadlineExceeded", err)
		}
		if errors.Is(err, ErrRendererTimeout) {
			t.Error("caller deadline reported as renderer timeout")
		}
	})
}

func TestGenerate_Logging(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	conv, root := newTestConverter(t, "ok", WithLogger(zap.New(core)))
	writeTemplate(t, root, "invoice.docx", invoiceFixture())

	if _, err := conv.Generate(context.Background(), Request{TemplateName: "invoice.docx"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if logs.FilterMessage("document generated").Len() != 1 {
		t.Errorf("missing 'document generated' entry, got %v", logs.All())
	}
	var states []string
	for _, e := range logs.FilterMessage("conversion job").All() {
		states = append(states, e.ContextMap()["job_state"].(string))
	}
	want := "launching,running,succeeded,locating_output,relocated"
	if strings.Join(states, ",") != want {
		t.Errorf("job states = %v, want %s", states, want)
	}
}

// ---------------------------------------------------------------------------
// TestListBookmarks - Template inspection
// ---------------------------------------------------------------------------

func TestConverter_ListBookmarks(t *testing.T) {
	t.Parallel()

	conv, root := newTestConverter(t, "ok")
	path := writeTemplate(t, root, "invoice.docx", invoiceFixture())

	got, err := conv.ListBookmarks("invoice.docx")
	if err != nil {
		t.Fatalf("ListBookmarks() error = %v", err)
	}
	if len(got) != 1 || got[0] != "CustomerName" {
		t.Errorf("ListBookmarks() = %v, want [CustomerName]", got)
	}

	// The template can be opened exclusively meanwhile.
	doc, err := docx.Open(path)
	if err != nil {
		t.Fatalf("template locked: %v", err)
	}
	doc.Close()

	if left := dirEntries(t, filepath.Join(root, "output")); len(left) != 0 {
		t.Errorf("output dir not cleaned: %v", left)
	}

	if _, err := conv.ListBookmarks("missing.docx"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("ListBookmarks(missing) error = %v, want ErrTemplateNotFound", err)
	}
}

func TestConverter_Templates(t *testing.T) {
	t.Parallel()

	conv, root := newTestConverter(t, "ok")
	writeTemplate(t, root, "b.docx", docxtest.Fixture{})
	writeTemplate(t, root, "a.docx", docxtest.Fixture{})
	if err := os.WriteFile(filepath.Join(root, "templates", "notes.txt"), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := conv.Templates()
	if err != nil {
		t.Fatalf("Templates() error = %v", err)
	}
	if strings.Join(got, ",") != "a.docx,b.docx" {
		t.Errorf("Templates() = %v, want [a.docx b.docx]", got)
	}
}

func TestGenerate_Crash(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("self-kill exits with a code on windows")
	}
	t.Parallel()

	conv, root := newTestConverter(t, "crash")
	writeTemplate(t, root, "invoice.docx", invoiceFixture())

	_, err := conv.Generate(context.Background(), Request{TemplateName: "invoice.docx"})
	if !errors.Is(err, ErrRendererCrashed) {
		t.Errorf("Generate() error = %v, want ErrRendererCrashed", err)
	}
}
