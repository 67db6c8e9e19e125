package docx2pdf

// Notes:
// - LibreOffice is never required: the test binary re-executes itself as a
//   fake soffice when fakeModeEnv is set (helper-process pattern)
// - Fake modes: ok, fail, sleep, nooutput, crash
// - Templates are generated with docxtest, so every test owns its tree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-docx2pdf/internal/docx/docxtest"
)

const (
	fakeModeEnv = "DOCX2PDF_FAKE_SOFFICE"
	fakeArgsEnv = "DOCX2PDF_FAKE_ARGS" // file receiving the argv, one per line

	fakePDF = "%PDF-1.4\n%fake\n"
)

func TestMain(m *testing.M) {
	if mode := os.Getenv(fakeModeEnv); mode != "" {
		os.Exit(fakeSoffice(mode, os.Args[1:]))
	}
	os.Exit(m.Run())
}

// fakeSoffice mimics `soffice --headless --convert-to pdf --outdir dir input`.
func fakeSoffice(mode string, args []string) int {
	if path := os.Getenv(fakeArgsEnv); path != "" {
		_ = os.WriteFile(path, []byte(strings.Join(args, "\n")), 0o600)
	}

	var outDir, input string
	for i := 0; i < len(args); i++ {
		if args[i] == "--outdir" && i+1 < len(args) {
			outDir = args[i+1]
			i++
			continue
		}
		input = args[i]
	}

	switch mode {
	case "ok":
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		out := filepath.Join(outDir, base+".pdf")
		if err := os.WriteFile(out, []byte(fakePDF), 0o600); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("convert %s -> %s using filter : writer_pdf_Export\n", input, out)
		return 0
	case "fail":
		fmt.Fprintln(os.Stderr, "Error: source file could not be loaded")
		return 3
	case "sleep":
		time.Sleep(time.Minute)
		return 0
	case "nooutput":
		return 0
	case "crash":
		p, _ := os.FindProcess(os.Getpid())
		_ = p.Kill()
		time.Sleep(time.Minute)
		return 0
	}
	fmt.Fprintf(os.Stderr, "unknown fake mode %q\n", mode)
	return 2
}

// testExecutable returns the running test binary, used as the fake soffice.
func testExecutable(t *testing.T) string {
	t.Helper()

	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable() error = %v", err)
	}
	return exe
}

// newTestConverter returns a converter rooted in a temp dir whose renderer
// is the fake soffice running in mode.
func newTestConverter(t *testing.T, mode string, opts ...Option) (*Converter, string) {
	t.Helper()

	root := t.TempDir()
	base := []Option{
		WithContentRoot(root),
		WithRendererPath(testExecutable(t)),
		WithSettleDelay(10 * time.Millisecond),
		withRendererEnv(fakeModeEnv + "=" + mode),
	}
	conv, err := NewConverter(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	t.Cleanup(func() { conv.Close() })
	return conv, root
}

// writeTemplate stores a generated template in the converter's templates dir.
func writeTemplate(t *testing.T, root, name string, f docxtest.Fixture) string {
	t.Helper()
	return docxtest.Write(t, filepath.Join(root, "templates"), name, f)
}

// invoiceFixture is a template with a date placeholder and a customer bookmark.
func invoiceFixture() docxtest.Fixture {
	return docxtest.Fixture{
		Body: docxtest.Paragraph("Invoice date: {{Date}}") +
			"<w:p>" + docxtest.BookmarkStart(0, "CustomerName") +
			docxtest.Run("Customer") + docxtest.BookmarkEnd(0) + "</w:p>",
		Footers: []string{docxtest.Paragraph("Issued {{Date}}")},
	}
}

// dirEntries lists the names in dir.
func dirEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
