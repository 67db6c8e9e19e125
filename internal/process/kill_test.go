package process

// Notes:
// - KillProcessGroup: we only test with an invalid PID to verify the function
//   doesn't panic. Real kill behavior is covered by the renderer timeout tests,
//   which spawn a sleeping helper process and assert it is gone.
// - Cannot test with PID 0 (kills current process group) or real PIDs.

import (
	"os/exec"
	"testing"
)

// ---------------------------------------------------------------------------
// TestKillProcessGroup - Invalid PID Handling
// ---------------------------------------------------------------------------

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	// Note: Cannot safely test with:
	// - PID 0: syscall.Kill(-0, SIGKILL) kills the current process group
	// - Negative PIDs: syscall.Kill(positive, SIGKILL) would target real processes
	KillProcessGroup(999999999)
}

// ---------------------------------------------------------------------------
// TestSetProcessGroup - SysProcAttr setup
// ---------------------------------------------------------------------------

func TestSetProcessGroup(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("soffice")
	SetProcessGroup(cmd)
	if cmd.SysProcAttr == nil {
		t.Fatal("SysProcAttr not set")
	}

	// Calling twice keeps the existing attributes.
	attr := cmd.SysProcAttr
	SetProcessGroup(cmd)
	if cmd.SysProcAttr != attr {
		t.Error("SysProcAttr replaced on second call")
	}
}
