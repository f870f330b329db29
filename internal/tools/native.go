package tools

// objectSchema builds a JSON Schema object for a tool's input.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// prop builds one property entry.
func prop(typ, description string) map[string]any {
	return map[string]any{
		"type":        typ,
		"description": description,
	}
}

// RegisterNative registers the built-in tools against the given workspace.
func RegisterNative(r *Registry, workspace string) {
	r.Register(NewReadFileTool(workspace))
	r.Register(NewWriteFileTool(workspace))
	r.Register(NewListDirTool(workspace))
	r.Register(NewRunCommandTool(workspace))
}
