package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunSuccess(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "hello.sh", `printf 'hello %s' "$QUILL_SKILL_ARGS"`)

	r := NewRunner(dir)
	res := r.Run(context.Background(), script, `{"who":"world"}`)

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
	if want := `hello {"who":"world"}`; res.Output != want {
		t.Errorf("output = %q, want %q", res.Output, want)
	}
	if res.Killed {
		t.Error("killed should be false")
	}
}

func TestRunPassesWorkDir(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "wd.sh", `printf '%s' "$QUILL_SKILL_WORKDIR"`)

	r := NewRunner(dir)
	res := r.Run(context.Background(), script, "")

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Output != dir {
		t.Errorf("workdir = %q, want %q", res.Output, dir)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "fail.sh", "echo oops >&2\nexit 3")

	r := NewRunner(dir)
	res := r.Run(context.Background(), script, "{}")

	if res.Success {
		t.Fatal("expected failure")
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(res.Error, "oops") {
		t.Errorf("stderr not captured: %q", res.Error)
	}
}

func TestRunTimeout(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "slow.sh", "echo started\nsleep 30")

	r := NewRunner(dir)
	r.Timeout = 200 * time.Millisecond

	start := time.Now()
	res := r.Run(context.Background(), script, "{}")

	if res.Success {
		t.Fatal("expected failure")
	}
	if res.ExitCode != TimeoutExitCode {
		t.Errorf("exit code = %d, want %d", res.ExitCode, TimeoutExitCode)
	}
	if !res.Killed {
		t.Error("killed should be true")
	}
	if !strings.Contains(res.Output, "started") {
		t.Errorf("output before the kill should be preserved, got %q", res.Output)
	}
	if !strings.Contains(res.Error, "timed out") {
		t.Errorf("error should mention the timeout, got %q", res.Error)
	}
	// The sleep child must die with the group; if it is orphaned instead it
	// holds the output pipes and Run blocks the full 30s.
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("run took %s, child process group not terminated", elapsed)
	}
}

func TestRunTimeoutEscalatesToKill(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "stubborn.sh", "trap '' TERM\nsleep 30 &\nwait")

	r := NewRunner(dir)
	r.Timeout = 200 * time.Millisecond

	start := time.Now()
	res := r.Run(context.Background(), script, "{}")

	if res.ExitCode != TimeoutExitCode || !res.Killed {
		t.Fatalf("result = %+v", res)
	}
	elapsed := time.Since(start)
	if elapsed > 15*time.Second {
		t.Errorf("run took %s, SIGKILL escalation did not fire", elapsed)
	}
}

func TestRunContextCanceled(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "slow.sh", "sleep 30")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	r := NewRunner(dir)
	start := time.Now()
	res := r.Run(ctx, script, "{}")

	if res.Success {
		t.Fatal("expected failure")
	}
	if !res.Killed {
		t.Error("killed should be true")
	}
	if !strings.Contains(res.Error, "canceled") {
		t.Errorf("error = %q", res.Error)
	}
	// Cancellation must return promptly, not wait out the sleep.
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("run took %s after cancellation", elapsed)
	}
}

func TestRunSpawnFailure(t *testing.T) {
	r := NewRunner(t.TempDir())
	res := r.Run(context.Background(), "/nonexistent/script.sh", "{}")

	if res.Success {
		t.Fatal("expected failure")
	}
	if res.ExitCode != -1 {
		t.Errorf("exit code = %d, want -1", res.ExitCode)
	}
	if !strings.Contains(res.Error, "spawn") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestRunOutputCapped(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "noisy.sh", `i=0
while [ $i -lt 200 ]; do printf 'xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx'; i=$((i+1)); done
printf 'E%.0s' 1 2 3 >&2`)

	r := NewRunner(dir)
	r.MaxOutput = 1024
	res := r.Run(context.Background(), script, "{}")

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if len(res.Output) > 1024+len(TruncationMarker) {
		t.Errorf("output length = %d, cap not applied", len(res.Output))
	}
	if !strings.HasSuffix(res.Output, TruncationMarker) {
		t.Error("truncation marker missing from stdout")
	}
	// stderr stayed under its own cap and must not carry the marker.
	if strings.Contains(res.Error, TruncationMarker) {
		t.Errorf("stderr wrongly truncated: %q", res.Error)
	}
}

func TestRunEmptyArgsDefaultsToObject(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "args.sh", `printf '%s' "$QUILL_SKILL_ARGS"`)

	r := NewRunner(dir)
	res := r.Run(context.Background(), script, "")

	if res.Output != "{}" {
		t.Errorf("args env = %q, want {}", res.Output)
	}
}
