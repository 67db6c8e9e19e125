package docx2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-docx2pdf/internal/fileutil"
	"github.com/alnah/go-docx2pdf/internal/process"
)

// pdfRenderer converts a document on disk to a PDF on disk.
type pdfRenderer interface {
	Render(ctx context.Context, input, output string) (*ConversionJob, error)
}

// sofficeRenderer runs LibreOffice once per conversion.
type sofficeRenderer struct {
	explicit    string // binary path from options; empty = discovery
	locator     locator
	timeout     time.Duration
	settleDelay time.Duration
	waitDelay   time.Duration
	profileDir  string // empty = LibreOffice default profile
	env         []string
	logger      *zap.Logger
}

// Render converts input to PDF and moves the result to output.
// The returned job is non-nil whenever the process was attempted.
func (r *sofficeRenderer) Render(ctx context.Context, input, output string) (*ConversionJob, error) {
	bin, err := r.locator.locate(r.explicit)
	if err != nil {
		return nil, err
	}

	outDir := filepath.Dir(output)
	job := newConversionJob(input, output, outDir, r.timeout)

	if err := r.run(ctx, bin, job); err != nil {
		return job, err
	}
	if err := r.relocate(ctx, job); err != nil {
		return job, err
	}
	return job, nil
}

// run executes soffice and classifies how it ended.
func (r *sofficeRenderer) run(ctx context.Context, bin string, job *ConversionJob) error {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, r.args(job.Input, job.OutputDir)...) // #nosec G204 -- binary from discovery or operator config
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}

	// soffice forks soffice.bin; killing only the launcher would orphan it.
	process.SetProcessGroup(cmd)
	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = r.waitDelay

	r.transition(job, JobLaunching)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		r.transition(job, JobCrashed)
		return fmt.Errorf("%w: starting %s: %v", ErrRendererCrashed, bin, err)
	}
	r.transition(job, JobRunning)

	waitErr := cmd.Wait()
	job.Duration = time.Since(start)
	job.Stderr = strings.TrimSpace(stderr.String())
	if cmd.ProcessState != nil {
		job.ExitCode = cmd.ProcessState.ExitCode()
	}
	if out := strings.TrimSpace(stdout.String()); out != "" {
		r.logger.Debug("renderer output", zap.String("stdout", out))
	}

	// Pipes held open by a grandchild after a clean exit.
	if errors.Is(waitErr, exec.ErrWaitDelay) {
		waitErr = nil
	}
	if waitErr == nil {
		r.transition(job, JobSucceeded)
		return nil
	}

	switch {
	case ctx.Err() != nil:
		r.transition(job, JobCanceled)
		return ctx.Err()
	case runCtx.Err() != nil:
		r.transition(job, JobTimedOut)
		return fmt.Errorf("%w after %s", ErrRendererTimeout, r.timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) && exitErr.ExitCode() >= 0 {
		r.transition(job, JobFailed)
		return fmt.Errorf("%w with exit code %d: %s", ErrRendererExit, exitErr.ExitCode(), job.Stderr)
	}
	r.transition(job, JobCrashed)
	return fmt.Errorf("%w: %v", ErrRendererCrashed, waitErr)
}

// relocate finds <outdir>/<input base>.pdf and moves it to the requested path.
func (r *sofficeRenderer) relocate(ctx context.Context, job *ConversionJob) error {
	r.transition(job, JobLocatingOutput)

	base := strings.TrimSuffix(filepath.Base(job.Input), filepath.Ext(job.Input))
	generated := filepath.Join(job.OutputDir, base+".pdf")
	if !fileutil.FileExists(generated) {
		r.transition(job, JobOutputMissing)
		return fmt.Errorf("%w at: %s", ErrRendererOutputMissing, generated)
	}

	// LibreOffice may still be flushing the file when the launcher exits.
	if err := sleepContext(ctx, r.settleDelay); err != nil {
		r.transition(job, JobCanceled)
		return err
	}

	if err := fileutil.MoveFile(generated, job.Output); err != nil {
		return fmt.Errorf("moving generated PDF: %w", err)
	}
	r.transition(job, JobRelocated)
	return nil
}

// args builds the soffice command line.
func (r *sofficeRenderer) args(input, outDir string) []string {
	args := make([]string, 0, 7)
	if r.profileDir != "" {
		args = append(args, "-env:UserInstallation="+fileURL(r.profileDir))
	}
	return append(args, "--headless", "--convert-to", "pdf", "--outdir", outDir, input)
}

func (r *sofficeRenderer) transition(job *ConversionJob, state JobState) {
	job.State = state
	r.logger.Debug("conversion job",
		zap.String("input", filepath.Base(job.Input)),
		zap.Stringer("job_state", state),
		zap.Int("exit_code", job.ExitCode),
		zap.Duration("duration", job.Duration),
	)
}

// fileURL returns the file:// URL LibreOffice expects for a local directory.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
