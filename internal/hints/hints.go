// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"

	"github.com/alnah/go-docx2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// goos is the platform used to pick install instructions.
var goos = runtime.GOOS

// ForRendererNotFound returns hints for a missing LibreOffice installation.
// Suggests an install command for the platform and the DOCX2PDF_SOFFICE override.
func ForRendererNotFound() string {
	var hints []string

	switch {
	case IsInContainer():
		hints = append(hints, "install libreoffice-writer in the image (apt-get install -y libreoffice-writer)")
	case goos == "darwin":
		hints = append(hints, "install with: brew install --cask libreoffice")
	case goos == "windows":
		hints = append(hints, "install LibreOffice from https://www.libreoffice.org/download/")
	default:
		hints = append(hints, "install the libreoffice package for your distribution")
	}

	if os.Getenv("DOCX2PDF_SOFFICE") == "" {
		hints = append(hints, "set DOCX2PDF_SOFFICE to a custom soffice binary")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow conversions.
func ForTimeout() string {
	return format("large or image-heavy templates may need a longer --timeout")
}

// ForRendererExit returns a hint for renderer failures caused by a shared profile.
func ForRendererExit() string {
	return format("a running LibreOffice instance can lock the profile; close it or enable renderer.isolateProfile")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-docx2pdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains .config/go-docx2pdf) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-docx2pdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForTemplateNotFound lists the templates that are available.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return format("the templates directory is empty")
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForUnsupportedImage returns hints for unsupported image formats.
func ForUnsupportedImage() string {
	return format("supported formats: JPEG, PNG, GIF, BMP")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
