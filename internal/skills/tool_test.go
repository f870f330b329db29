package skills

import (
	"context"
	"strings"
	"testing"

	"github.com/tobind/quill/internal/events"
	"github.com/tobind/quill/internal/sandbox"
)

func newSkillTool(t *testing.T, skills ...*Skill) *SkillTool {
	t.Helper()
	r := NewRegistry(sandbox.NewRunner(t.TempDir()))
	for _, s := range skills {
		if err := r.Register(s); err != nil {
			t.Fatal(err)
		}
	}
	return NewSkillTool(r, nil)
}

func TestSkillToolExecute(t *testing.T) {
	st := newSkillTool(t, &Skill{Name: "greet", Description: "d", Content: "say hello"})

	out, err := st.Execute(context.Background(), `{"skill":"greet"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != "say hello" {
		t.Errorf("output = %q", out)
	}
}

func TestSkillToolDispatch(t *testing.T) {
	st := newSkillTool(t, &Skill{
		Name:        "search-macro",
		Description: "d",
		Content:     `{"dispatch":"tool","tool":"web_search","args":"{\"query\":\"golang\"}"}`,
	})

	out, err := st.Execute(context.Background(), `{"skill":"search-macro"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, `"web_search"`) {
		t.Errorf("dispatch output should name the tool: %q", out)
	}
	if !strings.Contains(out, "golang") {
		t.Errorf("dispatch output should carry the args: %q", out)
	}
}

func TestSkillToolNonDispatchJSONVerbatim(t *testing.T) {
	st := newSkillTool(t, &Skill{Name: "data", Description: "d", Content: `{"foo":1}`})

	out, err := st.Execute(context.Background(), `{"skill":"data"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != `{"foo":1}` {
		t.Errorf("non-dispatch JSON must come back verbatim, got %q", out)
	}
}

func TestSkillToolErrors(t *testing.T) {
	st := newSkillTool(t)

	if _, err := st.Execute(context.Background(), `{}`); err == nil {
		t.Error("missing skill name should error")
	}
	if _, err := st.Execute(context.Background(), `{"skill":"nope"}`); err == nil {
		t.Error("unknown skill should error")
	}
}

func TestSkillToolPublishesEvents(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()

	var got []events.Event
	done := make(chan struct{})
	bus.Subscribe(func(e events.Event) {
		got = append(got, e)
		if len(got) == 2 {
			close(done)
		}
	}, events.EventSkillStarted, events.EventSkillCompleted)

	r := NewRegistry(sandbox.NewRunner(t.TempDir()))
	if err := r.Register(&Skill{Name: "greet", Description: "d", Content: "hi"}); err != nil {
		t.Fatal(err)
	}
	st := NewSkillTool(r, bus)

	ctx := events.ContextWithSessionID(context.Background(), "sess-1")
	if _, err := st.Execute(ctx, `{"skill":"greet"}`); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	<-done
	if got[0].Type != events.EventSkillStarted || got[1].Type != events.EventSkillCompleted {
		t.Errorf("event order = %v, %v", got[0].Type, got[1].Type)
	}
	if got[0].SessionID != "sess-1" {
		t.Errorf("session id = %q", got[0].SessionID)
	}
}

func TestInterpretDispatch(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"plain text", "hello", "hello"},
		{"dispatch without args", `{"dispatch":"tool","tool":"list_dir"}`, `Invoke the tool "list_dir".`},
		{"dispatch wrong kind", `{"dispatch":"agent","tool":"x"}`, `{"dispatch":"agent","tool":"x"}`},
		{"dispatch missing tool", `{"dispatch":"tool"}`, `{"dispatch":"tool"}`},
		{"malformed json", `{"dispatch":`, `{"dispatch":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := interpretDispatch(tt.output); got != tt.want {
				t.Errorf("interpretDispatch(%q) = %q, want %q", tt.output, got, tt.want)
			}
		})
	}
}
