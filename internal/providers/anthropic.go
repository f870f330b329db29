package providers

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tobind/quill/internal/config"
)

const (
	defaultAnthropicModel     = "claude-sonnet-4-6"
	defaultAnthropicMaxTokens = 4096
	defaultAnthropicKeyEnv    = "ANTHROPIC_API_KEY"
	defaultAnthropicTimeout   = 60 * time.Second
)

// AnthropicProvider adapts the Anthropic Messages API to the Provider contract.
type AnthropicProvider struct {
	name      string
	model     string
	maxTokens int
	apiKey    string
	apiKeyEnv string
	baseURL   string
	timeout   time.Duration
}

// NewAnthropic creates an Anthropic adapter from config.
func NewAnthropic(cfg config.ProviderConfig) *AnthropicProvider {
	p := &AnthropicProvider{
		name:      cfg.Name,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		apiKey:    cfg.APIKey,
		apiKeyEnv: cfg.APIKeyEnv,
		baseURL:   cfg.BaseURL,
		timeout:   cfg.Timeout.Duration(),
	}
	if p.name == "" {
		p.name = "anthropic"
	}
	if p.model == "" {
		p.model = defaultAnthropicModel
	}
	if p.maxTokens == 0 {
		p.maxTokens = defaultAnthropicMaxTokens
	}
	if p.apiKeyEnv == "" {
		p.apiKeyEnv = defaultAnthropicKeyEnv
	}
	if p.timeout == 0 {
		p.timeout = defaultAnthropicTimeout
	}
	return p
}

func (p *AnthropicProvider) Name() string { return p.name }

// resolveKey looks up the credential on every call so that credential changes
// (tests, rotated keys) are observed without restarting.
func (p *AnthropicProvider) resolveKey() string {
	if p.apiKey != "" {
		return p.apiKey
	}
	return os.Getenv(p.apiKeyEnv)
}

func (p *AnthropicProvider) Available() bool {
	return p.resolveKey() != ""
}

func (p *AnthropicProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	key := p.resolveKey()
	if key == "" {
		return nil, &Error{Provider: p.name, Kind: ErrAuth, Err: errors.New("no API key configured")}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithRequestTimeout(p.timeout),
	}
	if p.baseURL != "" {
		opts = append(opts, option.WithBaseURL(p.baseURL))
	}
	client := anthropic.NewClient(opts...)

	params := p.buildParams(req)
	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, WrapError(p.name, err)
	}

	return fromAnthropicMessage(resp), nil
}

func (p *AnthropicProvider) buildParams(req *CompletionRequest) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
	}

	if req.System != "" {
		params.System = append(params.System, anthropic.TextBlockParam{Text: req.System})
	}

	var msgs []anthropic.MessageParam
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			// Anthropic takes system content as a dedicated field.
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case RoleUser:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleTool:
			msgs = append(msgs, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolUseID, m.Content, m.IsError),
			))
		case RoleAssistant:
			msgs = append(msgs, toAnthropicAssistant(m))
		}
	}
	params.Messages = msgs

	if len(req.Tools) > 0 {
		params.Tools = toAnthropicTools(req.Tools)
	}

	return params
}

func toAnthropicAssistant(m Message) anthropic.MessageParam {
	var blocks []anthropic.ContentBlockParamUnion
	if m.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(m.Content))
	}
	for _, tc := range m.ToolCalls {
		input := tc.Raw
		if input == "" {
			input = "{}"
		}
		blocks = append(blocks, anthropic.ContentBlockParamUnion{
			OfToolUse: &anthropic.ToolUseBlockParam{
				ID:    tc.ID,
				Name:  tc.Name,
				Input: json.RawMessage(input),
			},
		})
	}
	return anthropic.NewAssistantMessage(blocks...)
}

func toAnthropicTools(tools []ToolSchema) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		out[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schemaProperties(t.InputSchema),
					Required:   schemaRequired(t.InputSchema),
				},
			},
		}
	}
	return out
}

func fromAnthropicMessage(resp *anthropic.Message) *CompletionResponse {
	out := &CompletionResponse{
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Blocks = append(out.Blocks, TextBlock(block.AsText().Text))
		case "tool_use":
			tu := block.AsToolUse()
			out.Blocks = append(out.Blocks, decodeToolCallBlock(tu.ID, tu.Name, string(tu.Input)))
		}
	}

	switch resp.StopReason {
	case anthropic.StopReasonEndTurn:
		out.StopReason = StopEndTurn
	case anthropic.StopReasonToolUse:
		out.StopReason = StopToolUse
	case anthropic.StopReasonMaxTokens:
		out.StopReason = StopMaxTokens
	default:
		out.StopReason = StopEndTurn
	}
	out.reconcileStopReason()

	return out
}

var _ Provider = (*AnthropicProvider)(nil)
