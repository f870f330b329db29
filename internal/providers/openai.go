package providers

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/tobind/quill/internal/config"
)

const (
	defaultOpenAIModel   = "gpt-4o"
	defaultOpenAIKeyEnv  = "OPENAI_API_KEY"
	defaultOpenAITimeout = 60 * time.Second
)

// OpenAIProvider adapts the OpenAI chat-completions API to the Provider
// contract. With a base URL it also serves any OpenAI-compatible endpoint
// (Ollama, vLLM, Groq, ...).
type OpenAIProvider struct {
	name      string
	model     string
	maxTokens int
	apiKey    string
	apiKeyEnv string
	baseURL   string
	timeout   time.Duration
}

// NewOpenAI creates an OpenAI adapter from config.
func NewOpenAI(cfg config.ProviderConfig) *OpenAIProvider {
	p := &OpenAIProvider{
		name:      cfg.Name,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		apiKey:    cfg.APIKey,
		apiKeyEnv: cfg.APIKeyEnv,
		baseURL:   cfg.BaseURL,
		timeout:   cfg.Timeout.Duration(),
	}
	if p.name == "" {
		p.name = "openai"
	}
	if p.model == "" {
		p.model = defaultOpenAIModel
	}
	if p.apiKeyEnv == "" {
		p.apiKeyEnv = defaultOpenAIKeyEnv
	}
	if p.timeout == 0 {
		p.timeout = defaultOpenAITimeout
	}
	return p
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) resolveKey() string {
	if p.apiKey != "" {
		return p.apiKey
	}
	return os.Getenv(p.apiKeyEnv)
}

// Available is true with a credential, or with a base URL override: local
// OpenAI-compatible servers need no key.
func (p *OpenAIProvider) Available() bool {
	return p.resolveKey() != "" || p.baseURL != ""
}

func (p *OpenAIProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	key := p.resolveKey()
	if key == "" && p.baseURL == "" {
		return nil, &Error{Provider: p.name, Kind: ErrAuth, Err: errors.New("no API key configured")}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithRequestTimeout(p.timeout),
	}
	if p.baseURL != "" {
		opts = append(opts, option.WithBaseURL(p.baseURL))
	}
	client := openai.NewClient(opts...)

	params := p.buildParams(req)
	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, WrapError(p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Provider: p.name, Kind: ErrUnknown, Err: errors.New("empty choices in response")}
	}

	return fromOpenAIChoice(resp.Choices[0], resp.Usage), nil
}

func (p *OpenAIProvider) buildParams(req *CompletionRequest) openai.ChatCompletionNewParams {
	// OpenAI has no dedicated system field: fold the system prompt in as a
	// leading system-role message.
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		msgs = append(msgs, toOpenAIMessage(m))
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: msgs,
	}
	if p.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(p.maxTokens))
	}
	if len(req.Tools) > 0 {
		params.Tools = toOpenAITools(req.Tools)
	}
	return params
}

func toOpenAIMessage(m Message) openai.ChatCompletionMessageParamUnion {
	switch m.Role {
	case RoleSystem:
		return openai.SystemMessage(m.Content)
	case RoleTool:
		return openai.ToolMessage(m.Content, m.ToolUseID)
	case RoleUser:
		return openai.UserMessage(m.Content)
	default: // assistant
		asst := openai.ChatCompletionAssistantMessageParam{}
		if m.Content != "" {
			asst.Content.OfString = openai.String(m.Content)
		}
		if len(m.ToolCalls) > 0 {
			asst.ToolCalls = make([]openai.ChatCompletionMessageToolCallParam, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				args := tc.Raw
				if args == "" {
					args = "{}"
				}
				asst.ToolCalls[i] = openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: args,
					},
				}
			}
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
	}
}

func toOpenAITools(tools []ToolSchema) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		out[i] = openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  shared.FunctionParameters(t.InputSchema),
			},
		}
	}
	return out
}

func fromOpenAIChoice(choice openai.ChatCompletionChoice, usage openai.CompletionUsage) *CompletionResponse {
	out := &CompletionResponse{
		Usage: Usage{
			InputTokens:  int(usage.PromptTokens),
			OutputTokens: int(usage.CompletionTokens),
		},
	}

	if choice.Message.Content != "" {
		out.Blocks = append(out.Blocks, TextBlock(choice.Message.Content))
	}
	for _, tc := range choice.Message.ToolCalls {
		out.Blocks = append(out.Blocks, decodeToolCallBlock(tc.ID, tc.Function.Name, tc.Function.Arguments))
	}

	switch choice.FinishReason {
	case "tool_calls":
		out.StopReason = StopToolUse
	case "length":
		out.StopReason = StopMaxTokens
	default:
		out.StopReason = StopEndTurn
	}
	out.reconcileStopReason()

	return out
}

var _ Provider = (*OpenAIProvider)(nil)
