// Package tools exposes the triage operations to a calling agent as
// named, described functions over a string/argument map contract. Each
// tool is a pure function of the directory contents at call time.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Tool is one callable operation.
type Tool struct {
	// Name is the unique identifier the caller invokes.
	Name string
	// Description tells the calling agent what the tool does and which
	// arguments it accepts.
	Description string
	// Handler executes the operation. It returns a structured result
	// (slices or structs ready for JSON encoding) or an error.
	Handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// Registry holds the registered tools. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Registering a duplicate or unnamed tool is an
// error.
func (r *Registry) Register(tool Tool) error {
	if tool.Name == "" {
		return fmt.Errorf("tool must have a name")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %q must have a handler", tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %q is already registered", tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

// List returns the registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Execute invokes a tool by name.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	r.mu.RLock()
	tool, exists := r.tools[name]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return tool.Handler(ctx, args)
}

// StringArg reads an optional string argument; missing or non-string
// values yield the empty string.
func StringArg(args map[string]interface{}, key string) string {
	if value, ok := args[key].(string); ok {
		return value
	}
	return ""
}

// RequiredStringArg reads a mandatory string argument.
func RequiredStringArg(args map[string]interface{}, key string) (string, error) {
	value := StringArg(args, key)
	if value == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return value, nil
}
