// Package agent runs the completion loop: call the model, execute the tool
// invocations it requests, fold the results back in, repeat until the model
// answers with plain content.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tobind/quill/internal/events"
	"github.com/tobind/quill/internal/providers"
	"github.com/tobind/quill/internal/tools"
)

const defaultMaxIterations = 12

// Runtime drives one conversation turn at a time. It issues at most one
// provider call at a time per conversation; tool invocations requested within
// a single response run concurrently.
type Runtime struct {
	Providers     *providers.Registry
	Tools         *tools.Registry
	Bus           *events.Bus
	SystemPrompt  string
	MaxIterations int
}

// Run processes one user message to a final answer. Per-invocation tool
// failures are folded back into the conversation as error tool results; only
// failure to obtain a completion at all is fatal to the turn.
func (r *Runtime) Run(ctx context.Context, sessionID, userMessage string) (string, error) {
	provider := r.Providers.Default()
	if provider == nil {
		return "", fmt.Errorf("no provider available")
	}

	maxIter := r.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	ctx = events.ContextWithSessionID(ctx, sessionID)

	messages := []providers.Message{
		{Role: providers.RoleUser, Content: userMessage},
	}

	for i := 0; i < maxIter; i++ {
		req := &providers.CompletionRequest{
			System:   r.SystemPrompt,
			Messages: messages,
			Tools:    r.Tools.Schemas(),
		}

		resp, err := provider.Complete(ctx, req)
		if err != nil {
			r.publish(events.EventTurnFailed, sessionID, map[string]any{
				"provider": provider.Name(),
				"error":    err.Error(),
			})
			return "", fmt.Errorf("completion: %w", err)
		}

		r.publish(events.EventLLMCall, sessionID, map[string]any{
			"provider":      provider.Name(),
			"input_tokens":  resp.Usage.InputTokens,
			"output_tokens": resp.Usage.OutputTokens,
			"stop_reason":   string(resp.StopReason),
		})

		if resp.StopReason != providers.StopToolUse {
			return resp.Text(), nil
		}

		calls := resp.ToolUses()
		messages = append(messages, providers.Message{
			Role:      providers.RoleAssistant,
			Content:   resp.Text(),
			ToolCalls: calls,
		})
		messages = append(messages, r.executeAll(ctx, sessionID, calls)...)
	}

	return "", fmt.Errorf("no final answer after %d iterations", maxIter)
}

// executeAll runs the requested tool invocations concurrently and returns the
// tool result messages in request order.
func (r *Runtime) executeAll(ctx context.Context, sessionID string, calls []providers.ToolUse) []providers.Message {
	results := make([]providers.Message, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call providers.ToolUse) {
			defer wg.Done()
			results[i] = r.executeOne(ctx, sessionID, call)
		}(i, call)
	}
	wg.Wait()

	return results
}

func (r *Runtime) executeOne(ctx context.Context, sessionID string, call providers.ToolUse) providers.Message {
	if !r.Tools.IsAllowed(call.Name) {
		reason := "not permitted by the active tool policy"
		if _, known := r.Tools.Get(call.Name); !known {
			reason = "unknown tool"
		}
		r.publish(events.EventToolDenied, sessionID, map[string]any{
			"tool":   call.Name,
			"reason": reason,
		})
		return toolResult(call.ID, fmt.Sprintf("tool %q denied: %s", call.Name, reason), true)
	}

	tool, _ := r.Tools.Get(call.Name)

	r.publish(events.EventToolCall, sessionID, map[string]any{
		"tool": call.Name,
		"args": call.Raw,
	})

	out, err := tool.Execute(ctx, call.Raw)
	if err != nil {
		slog.Warn("tool execution failed", "tool", call.Name, "error", err)
		r.publish(events.EventToolResult, sessionID, map[string]any{
			"tool":  call.Name,
			"error": err.Error(),
		})
		return toolResult(call.ID, err.Error(), true)
	}

	r.publish(events.EventToolResult, sessionID, map[string]any{
		"tool": call.Name,
	})
	return toolResult(call.ID, out, false)
}

func toolResult(toolUseID, content string, isErr bool) providers.Message {
	return providers.Message{
		Role:      providers.RoleTool,
		Content:   content,
		ToolUseID: toolUseID,
		IsError:   isErr,
	}
}

func (r *Runtime) publish(t events.EventType, sessionID string, payload map[string]any) {
	if r.Bus == nil {
		return
	}
	r.Bus.Publish(events.New(t, events.SourceAgent, sessionID, payload))
}
