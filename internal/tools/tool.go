// Package tools holds the tool registry, the allow/deny policy engine, and
// the native tools the agent can call.
package tools

import "context"

// Category groups tools for policy decisions.
type Category string

const (
	CategoryCoding  Category = "coding"
	CategorySystem  Category = "system"
	CategoryBrowser Category = "browser"
	CategorySearch  Category = "search"
	CategoryMemory  Category = "memory"
	CategoryComms   Category = "comms"
	CategoryMeta    Category = "meta"
)

// Tool is one callable capability. Execute receives the model's arguments as
// raw JSON and returns a string result for the conversation; errors become
// error tool results, they do not abort the turn.
type Tool interface {
	Name() string
	Description() string
	Category() Category
	InputSchema() map[string]any
	Execute(ctx context.Context, argsJSON string) (string, error)
}
