// Package sandbox executes skill scripts as bounded child processes:
// wall-clock timeout with kill escalation, independent stdout/stderr caps, and
// workspace path containment for filesystem-mutating callers.
package sandbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const (
	// DefaultTimeout bounds a script's wall-clock runtime.
	DefaultTimeout = 60 * time.Second
	// DefaultMaxOutput caps stdout and stderr independently.
	DefaultMaxOutput = 30 * 1024
	// TimeoutExitCode is the conventional exit code reported on timeout.
	TimeoutExitCode = 124

	// killGrace is how long a process gets between SIGTERM and SIGKILL.
	killGrace = 5 * time.Second

	// ArgsEnvVar carries the JSON argument object to the script. Arguments
	// never travel via argv, which keeps shell quoting out of the picture.
	ArgsEnvVar = "QUILL_SKILL_ARGS"
	// WorkDirEnvVar carries the working directory override to the script.
	WorkDirEnvVar = "QUILL_SKILL_WORKDIR"
)

// Result is the structured outcome of one sandboxed execution.
type Result struct {
	Success  bool   `json:"success"`
	Output   string `json:"output"`
	Error    string `json:"error,omitempty"`
	ExitCode int    `json:"exitCode"`
	Killed   bool   `json:"killed,omitempty"`
}

// Runner executes scripts under the sandbox limits.
type Runner struct {
	Timeout   time.Duration
	MaxOutput int
	WorkDir   string
}

// NewRunner creates a Runner with default limits.
func NewRunner(workDir string) *Runner {
	return &Runner{
		Timeout:   DefaultTimeout,
		MaxOutput: DefaultMaxOutput,
		WorkDir:   workDir,
	}
}

// Run executes the script with argsJSON delivered via the environment.
// Failures of any kind (spawn, timeout, cancellation, non-zero exit) come back
// as a structured Result; Run itself never faults.
func (r *Runner) Run(ctx context.Context, script, argsJSON string) Result {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxOut := r.MaxOutput
	if maxOut <= 0 {
		maxOut = DefaultMaxOutput
	}
	if argsJSON == "" {
		argsJSON = "{}"
	}

	cmd := exec.Command(script)
	cmd.Dir = r.WorkDir
	cmd.Env = append(os.Environ(),
		ArgsEnvVar+"="+argsJSON,
		WorkDirEnvVar+"="+r.WorkDir,
	)
	// Own process group, so termination reaches the script's children too.
	// Without this, an orphaned grandchild keeps the output pipes open and
	// Wait blocks until it exits on its own. WaitDelay releases the pipes
	// if something unkillable still holds them.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = killGrace

	stdout := newCapBuffer(maxOut)
	stderr := newCapBuffer(maxOut)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return Result{
			Success:  false,
			Error:    fmt.Sprintf("spawn %s: %v", script, err),
			ExitCode: -1,
		}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return finished(err, stdout, stderr)

	case <-timer.C:
		r.terminate(cmd, done)
		return Result{
			Success:  false,
			Output:   stdout.String(),
			Error:    appendNote(stderr.String(), fmt.Sprintf("timed out after %s", timeout)),
			ExitCode: TimeoutExitCode,
			Killed:   true,
		}

	case <-ctx.Done():
		r.terminate(cmd, done)
		return Result{
			Success:  false,
			Output:   stdout.String(),
			Error:    appendNote(stderr.String(), "execution canceled"),
			ExitCode: -1,
			Killed:   true,
		}
	}
}

// terminate signals the whole process group to exit and escalates to SIGKILL
// if it has not gone after the grace period. It returns only once the wait
// goroutine has joined, so there is a single outcome per execution.
func (r *Runner) terminate(cmd *exec.Cmd, done <-chan error) {
	pgid := cmd.Process.Pid
	_ = syscall.Kill(-pgid, syscall.SIGTERM)

	select {
	case <-done:
	case <-time.After(killGrace):
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
		<-done
	}
}

func finished(err error, stdout, stderr *capBuffer) Result {
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{
				Success:  false,
				Output:   stdout.String(),
				Error:    appendNote(stderr.String(), err.Error()),
				ExitCode: -1,
			}
		}
	}

	return Result{
		Success:  exitCode == 0,
		Output:   stdout.String(),
		Error:    stderr.String(),
		ExitCode: exitCode,
	}
}

func appendNote(stderr, note string) string {
	if stderr == "" {
		return note
	}
	return stderr + "\n" + note
}
