package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/tobind/quill/internal/sandbox"
)

const (
	defaultRunCmdTimeout = 30 * time.Second
	maxRunCmdTimeout     = 300 * time.Second
)

// RunCommandTool executes shell commands with a configurable timeout. Commands
// matching the destructive denylist are refused outright.
type RunCommandTool struct {
	workspace string
}

// NewRunCommandTool creates a new run_command tool.
func NewRunCommandTool(workspace string) *RunCommandTool {
	return &RunCommandTool{workspace: workspace}
}

func (t *RunCommandTool) Name() string       { return "run_command" }
func (t *RunCommandTool) Category() Category { return CategorySystem }

func (t *RunCommandTool) Description() string {
	return "Execute a shell command with configurable timeout. Returns stdout, stderr, and exit code."
}

func (t *RunCommandTool) InputSchema() map[string]any {
	return objectSchema(map[string]any{
		"command":     prop("string", "The shell command to execute"),
		"working_dir": prop("string", "Working directory for the command (default: the workspace)"),
		"timeout":     prop("integer", "Timeout in seconds (default: 30, max: 300)"),
	}, "command")
}

type runCommandInput struct {
	Command    string `json:"command"`
	WorkingDir string `json:"working_dir"`
	Timeout    int    `json:"timeout"`
}

type runCommandOutput struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// Execute runs the shell command.
func (t *RunCommandTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var input runCommandInput
	if err := json.Unmarshal([]byte(argsJSON), &input); err != nil {
		return "", fmt.Errorf("run_command: parse input: %w", err)
	}
	if input.Command == "" {
		return "", fmt.Errorf("run_command: command is required")
	}

	if rule := matchDestructivePattern(input.Command); rule != nil {
		return "", fmt.Errorf("run_command: refused: %s", rule.reason)
	}

	timeout := defaultRunCmdTimeout
	if input.Timeout > 0 {
		timeout = time.Duration(input.Timeout) * time.Second
		if timeout > maxRunCmdTimeout {
			timeout = maxRunCmdTimeout
		}
	}

	slog.Info("run_command: executing", "command", input.Command, "timeout", timeout)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", input.Command)
	cmd.Dir = t.workspace
	if input.WorkingDir != "" {
		cmd.Dir = input.WorkingDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("run_command: %w", ctx.Err())
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return "", fmt.Errorf("run_command: exec: %w", err)
		}
	}

	result := runCommandOutput{
		Stdout:   sandbox.Truncate(stdout.String(), sandbox.DefaultMaxOutput),
		Stderr:   sandbox.Truncate(stderr.String(), sandbox.DefaultMaxOutput),
		ExitCode: exitCode,
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("run_command: marshal result: %w", err)
	}
	return string(out), nil
}

var _ Tool = (*RunCommandTool)(nil)
