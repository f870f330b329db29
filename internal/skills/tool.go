package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tobind/quill/internal/events"
	"github.com/tobind/quill/internal/tools"
)

// dispatchEnvelope is a skill's structured instruction to invoke another tool
// instead of treating the skill's output as final.
type dispatchEnvelope struct {
	Dispatch string `json:"dispatch"`
	Tool     string `json:"tool"`
	Args     string `json:"args,omitempty"`
}

// SkillTool exposes the skill registry to the model as a single meta-tool.
type SkillTool struct {
	registry *Registry
	bus      *events.Bus
}

// NewSkillTool creates the use_skill tool over a registry.
func NewSkillTool(registry *Registry, bus *events.Bus) *SkillTool {
	return &SkillTool{registry: registry, bus: bus}
}

func (st *SkillTool) Name() string             { return "use_skill" }
func (st *SkillTool) Category() tools.Category { return tools.CategoryMeta }

func (st *SkillTool) Description() string {
	names := st.registry.Names()
	desc := "Execute a named skill and return its output."
	if len(names) > 0 {
		desc += " Available skills: " + strings.Join(names, ", ") + "."
	}
	return desc
}

func (st *SkillTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"skill": map[string]any{
				"type":        "string",
				"description": "Name of the skill to execute",
			},
			"args": map[string]any{
				"type":        "object",
				"description": "Arguments passed to the skill as JSON",
			},
		},
		"required": []string{"skill"},
	}
}

type useSkillInput struct {
	Skill string          `json:"skill"`
	Args  json.RawMessage `json:"args"`
}

// Execute runs the named skill. Skill output carrying a dispatch envelope is
// translated into an instruction for the orchestrating loop; everything else
// is returned as-is.
func (st *SkillTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var input useSkillInput
	if err := json.Unmarshal([]byte(argsJSON), &input); err != nil {
		return "", fmt.Errorf("use_skill: parse input: %w", err)
	}
	if input.Skill == "" {
		return "", fmt.Errorf("use_skill: skill is required")
	}

	skillArgs := "{}"
	if len(input.Args) > 0 {
		skillArgs = string(input.Args)
	}

	sessionID := events.SessionIDFromContext(ctx)
	st.publish(events.EventSkillStarted, sessionID, map[string]any{
		"skill": input.Skill,
		"args":  skillArgs,
	})

	start := time.Now()
	output, err := st.registry.Execute(ctx, input.Skill, skillArgs)

	payload := map[string]any{
		"skill":    input.Skill,
		"duration": time.Since(start).String(),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	st.publish(events.EventSkillCompleted, sessionID, payload)

	if err != nil {
		return "", err
	}
	return interpretDispatch(output), nil
}

func (st *SkillTool) publish(t events.EventType, sessionID string, payload map[string]any) {
	if st.bus == nil {
		return
	}
	st.bus.Publish(events.New(t, events.SourceSkill, sessionID, payload))
}

// interpretDispatch checks skill output for the dispatch envelope. Output that
// does not parse as JSON, or parses but is not a dispatch instruction, is
// plain content and comes back untouched.
func interpretDispatch(output string) string {
	trimmed := strings.TrimSpace(output)
	if !strings.HasPrefix(trimmed, "{") {
		return output
	}

	var env dispatchEnvelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return output
	}
	if env.Dispatch != "tool" || env.Tool == "" {
		return output
	}

	if env.Args != "" {
		return fmt.Sprintf("Invoke the tool %q with arguments: %s", env.Tool, env.Args)
	}
	return fmt.Sprintf("Invoke the tool %q.", env.Tool)
}

var _ tools.Tool = (*SkillTool)(nil)
