package docx2pdf

import (
	"fmt"
	"os"
	"runtime"

	"github.com/alnah/go-docx2pdf/internal/fileutil"
)

// RendererEnvVar names the environment variable that overrides discovery.
const RendererEnvVar = "DOCX2PDF_SOFFICE"

// rendererCandidates lists well-known LibreOffice locations per platform.
var rendererCandidates = map[string][]string{
	"windows": {
		`C:\Program Files\LibreOffice\program\soffice.exe`,
		`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
		`C:\Program Files (x86)\LibreOffice\program\soffice.com`,
	},
	"linux": {
		"/usr/bin/libreoffice",
		"/usr/bin/soffice",
		"/snap/bin/libreoffice",
	},
	"darwin": {
		"/Applications/LibreOffice.app/Contents/MacOS/soffice",
		"/opt/homebrew/bin/libreoffice",
	},
}

// RendererCandidates returns the locations searched on goos.
// Unknown platforms use the Linux list.
func RendererCandidates(goos string) []string {
	paths, ok := rendererCandidates[goos]
	if !ok {
		paths = rendererCandidates["linux"]
	}
	return append([]string(nil), paths...)
}

// locator resolves the renderer binary. Fields are replaceable for tests.
type locator struct {
	goos   string
	getenv func(string) string
	isFile func(string) bool
}

func defaultLocator() locator {
	return locator{
		goos:   runtime.GOOS,
		getenv: os.Getenv,
		isFile: fileutil.FileExists,
	}
}

// locate returns the first usable binary: explicit, then the environment
// override, then the platform table. An explicit path or override that does
// not exist is an error rather than a fall through.
func (l locator) locate(explicit string) (string, error) {
	if explicit != "" {
		if !l.isFile(explicit) {
			return "", fmt.Errorf("%w: %s does not exist", ErrRendererNotFound, explicit)
		}
		return explicit, nil
	}

	if env := l.getenv(RendererEnvVar); env != "" {
		if !l.isFile(env) {
			return "", fmt.Errorf("%w: %s=%s does not exist", ErrRendererNotFound, RendererEnvVar, env)
		}
		return env, nil
	}

	for _, p := range RendererCandidates(l.goos) {
		if l.isFile(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w. Please install LibreOffice from https://www.libreoffice.org/", ErrRendererNotFound)
}

// LocateRenderer returns the soffice binary that a Converter would use.
// explicit may be empty.
func LocateRenderer(explicit string) (string, error) {
	return defaultLocator().locate(explicit)
}

// RendererAvailable reports whether a renderer can be located.
func RendererAvailable(explicit string) bool {
	_, err := LocateRenderer(explicit)
	return err == nil
}
