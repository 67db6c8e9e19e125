package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	docx2pdf "github.com/alnah/go-docx2pdf"
	"github.com/alnah/go-docx2pdf/internal/config"
)

// versionProbeTimeout bounds `soffice --version`, which starts a full
// LibreOffice process.
const versionProbeTimeout = 20 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"` // "ready", "warnings", "errors"
	Renderer rendererInfo `json:"renderer"`
	Paths    pathsInfo    `json:"paths"`
	Env      envInfo      `json:"environment"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// rendererInfo holds LibreOffice detection results.
type rendererInfo struct {
	Found          bool   `json:"found"`
	Path           string `json:"path,omitempty"`
	Version        string `json:"version,omitempty"`
	IsolateProfile bool   `json:"isolate_profile"`
}

// pathsInfo holds content directory checks.
type pathsInfo struct {
	Templates      string `json:"templates"`
	TemplateCount  int    `json:"template_count"`
	Output         string `json:"output"`
	OutputWritable bool   `json:"output_writable"`
	Images         string `json:"images"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	Soffice       string `json:"docx2pdf_soffice,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	f, _, err := parseDoctorFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	mergeLayoutFlags(&f.layout, cfg)
	if f.soffice != "" {
		cfg.Renderer.Path = f.soffice
	}

	result := runDoctor(ctx, cfg, env)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
			Soffice: os.Getenv(docx2pdf.RendererEnvVar),
		},
	}

	checkRenderer(ctx, cfg, env, result)
	checkPaths(cfg, result)
	checkEnvironment(cfg, result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkRenderer locates LibreOffice and asks it for its version.
func checkRenderer(ctx context.Context, cfg *config.Config, env *Environment, result *doctorResult) {
	result.Renderer.IsolateProfile = cfg.Renderer.IsolateProfile

	path, err := env.LocateRenderer(cfg.Renderer.Path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Renderer.Found = true
	result.Renderer.Path = path

	if env.RendererVersion == nil {
		return
	}
	version, err := env.RendererVersion(ctx, path)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get LibreOffice version: %v", err))
		return
	}
	result.Renderer.Version = version
}

// sofficeVersion runs `soffice --version`.
func sofficeVersion(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output() // #nosec G204 -- path comes from discovery
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// checkPaths verifies the content directories.
func checkPaths(cfg *config.Config, result *doctorResult) {
	result.Paths.Templates = cfg.TemplatesDir()
	result.Paths.Output = cfg.OutputDir()
	result.Paths.Images = cfg.ImagesDir()

	entries, err := os.ReadDir(result.Paths.Templates)
	switch {
	case errors.Is(err, os.ErrNotExist):
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Templates directory %s does not exist", result.Paths.Templates))
	case err != nil:
		result.Errors = append(result.Errors,
			fmt.Sprintf("Templates directory not readable: %v", err))
	default:
		for _, e := range entries {
			if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".docx") {
				result.Paths.TemplateCount++
			}
		}
		if result.Paths.TemplateCount == 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("No .docx templates in %s", result.Paths.Templates))
		}
	}

	if !isDir(result.Paths.Output) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Output directory %s does not exist (created on first run)", result.Paths.Output))
		return
	}
	if writable(result.Paths.Output) {
		result.Paths.OutputWritable = true
	} else {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Output directory not writable: %s", result.Paths.Output))
	}
}

// checkEnvironment detects containers, where LibreOffice often lacks a
// writable home for its profile.
func checkEnvironment(cfg *config.Config, result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	if result.Env.Container && !cfg.Renderer.IsolateProfile {
		result.Warnings = append(result.Warnings,
			"Container detected; set renderer.isolateProfile if HOME is read-only")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used for renderer profiles.
func checkSystem(result *doctorResult) {
	if writable(os.TempDir()) {
		result.System.TempWritable = true
		return
	}
	result.Errors = append(result.Errors,
		fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
}

// writable reports whether a file can be created in dir.
func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".docx2pdf-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "docx2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "LibreOffice")
	if r.Renderer.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Renderer.Path)
		if r.Renderer.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Renderer.Version)
		}
		if r.Renderer.IsolateProfile {
			fmt.Fprintln(w, "  [OK] Profile: one per worker")
		} else {
			fmt.Fprintln(w, "  [OK] Profile: shared")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Paths")
	fmt.Fprintf(w, "  [OK] Templates: %s (%d)\n", r.Paths.Templates, r.Paths.TemplateCount)
	if r.Paths.OutputWritable {
		fmt.Fprintf(w, "  [OK] Output: %s (writable)\n", r.Paths.Output)
	} else {
		fmt.Fprintf(w, "  [--] Output: %s\n", r.Paths.Output)
	}
	fmt.Fprintf(w, "  [OK] Images: %s\n", r.Paths.Images)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.Soffice != "" {
		fmt.Fprintf(w, "  [OK] %s=%s\n", docx2pdf.RendererEnvVar, r.Env.Soffice)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
