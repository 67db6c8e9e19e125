package docx2pdf

import (
	"time"
)

// JobState is the lifecycle position of a ConversionJob.
type JobState int

// Conversion job states.
//
//	Idle -> Launching -> Running -> {Succeeded, TimedOut, Failed, Crashed, Canceled}
//	Succeeded -> LocatingOutput -> {Relocated, OutputMissing}
const (
	JobIdle JobState = iota
	JobLaunching
	JobRunning
	JobSucceeded
	JobTimedOut
	JobFailed
	JobCrashed
	JobCanceled
	JobLocatingOutput
	JobRelocated
	JobOutputMissing
)

var jobStateNames = [...]string{
	JobIdle:           "idle",
	JobLaunching:      "launching",
	JobRunning:        "running",
	JobSucceeded:      "succeeded",
	JobTimedOut:       "timed_out",
	JobFailed:         "failed",
	JobCrashed:        "crashed",
	JobCanceled:       "canceled",
	JobLocatingOutput: "locating_output",
	JobRelocated:      "relocated",
	JobOutputMissing:  "output_missing",
}

func (s JobState) String() string {
	if s < 0 || int(s) >= len(jobStateNames) {
		return "unknown"
	}
	return jobStateNames[s]
}

// Terminal reports whether no further transition follows s.
func (s JobState) Terminal() bool {
	switch s {
	case JobTimedOut, JobFailed, JobCrashed, JobCanceled, JobRelocated, JobOutputMissing:
		return true
	}
	return false
}

// ConversionJob records one renderer invocation.
type ConversionJob struct {
	Input     string        // source document
	Output    string        // requested PDF path
	OutputDir string        // directory passed to --outdir
	Timeout   time.Duration // hard limit for the process
	ExitCode  int           // -1 until the process exits normally
	Stderr    string        // captured renderer diagnostics
	State     JobState
	Duration  time.Duration // process wall time
}

func newConversionJob(input, output, outDir string, timeout time.Duration) *ConversionJob {
	return &ConversionJob{
		Input:     input,
		Output:    output,
		OutputDir: outDir,
		Timeout:   timeout,
		ExitCode:  -1,
		State:     JobIdle,
	}
}
