// Package providers defines the normalized chat-completion contract and the
// adapters that translate each backend SDK into it. Backend-specific response
// shapes are decoded once at the adapter boundary; the rest of the system only
// ever sees ContentBlock values.
package providers

import (
	"context"
	"strings"
)

// Role is a chat message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolUse is a single tool invocation requested by the model. Input holds the
// decoded JSON arguments; Raw preserves the original argument payload for
// handing to a tool's execute function.
type ToolUse struct {
	ID    string
	Name  string
	Input map[string]any
	Raw   string
}

// Message is a normalized chat message. Assistant messages may carry tool
// calls; tool messages report a single tool result correlated by ToolUseID.
type Message struct {
	Role      Role
	Content   string
	ToolCalls []ToolUse
	ToolUseID string // set when Role == RoleTool
	IsError   bool   // tool result reported as an error
}

// ToolSchema describes a tool offered to the model.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// CompletionRequest is one call to a provider. It is not mutated by adapters.
type CompletionRequest struct {
	System   string
	Messages []Message
	Tools    []ToolSchema
}

// StopReason explains why the model stopped producing content.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopToolUse   StopReason = "tool_use"
	StopMaxTokens StopReason = "max_tokens"
	StopError     StopReason = "error"
)

// BlockType tags a ContentBlock variant.
type BlockType string

const (
	BlockText    BlockType = "text"
	BlockToolUse BlockType = "tool_use"
)

// ContentBlock is the closed tagged variant of completion output: either a
// text block or a tool-use block.
type ContentBlock struct {
	Type    BlockType
	Text    string
	ToolUse *ToolUse
}

// TextBlock returns a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// ToolUseBlock returns a tool-use content block.
func ToolUseBlock(tu ToolUse) ContentBlock {
	return ContentBlock{Type: BlockToolUse, ToolUse: &tu}
}

// Usage reports token counts for one completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// CompletionResponse is the normalized completion result.
// Invariant: StopReason == StopToolUse iff at least one tool-use block is present.
type CompletionResponse struct {
	Blocks     []ContentBlock
	StopReason StopReason
	Usage      Usage
}

// Text concatenates the text blocks.
func (r *CompletionResponse) Text() string {
	var sb strings.Builder
	for _, b := range r.Blocks {
		if b.Type == BlockText {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// ToolUses returns the tool-use blocks in order.
func (r *CompletionResponse) ToolUses() []ToolUse {
	var out []ToolUse
	for _, b := range r.Blocks {
		if b.Type == BlockToolUse && b.ToolUse != nil {
			out = append(out, *b.ToolUse)
		}
	}
	return out
}

// reconcileStopReason enforces the tool_use/blocks invariant after decoding a
// backend response, whatever stop condition the backend reported.
func (r *CompletionResponse) reconcileStopReason() {
	hasToolUse := len(r.ToolUses()) > 0
	switch {
	case hasToolUse:
		r.StopReason = StopToolUse
	case r.StopReason == StopToolUse:
		r.StopReason = StopEndTurn
	case r.StopReason == "":
		r.StopReason = StopEndTurn
	}
}

// Provider is one model backend.
type Provider interface {
	// Name returns the registry key for this adapter.
	Name() string
	// Available reports whether the required credentials are present.
	// It is a purely local check and is re-evaluated on every call.
	Available() bool
	// Complete sends a completion request. Backend rejections and timeouts
	// surface as *Error.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}
