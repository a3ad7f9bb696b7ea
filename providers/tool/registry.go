package tool

import (
	"fmt"
	"sync"

	"github.com/leofalp/searchagent/providers/ai"
)

// Registry holds tools keyed by name and remembers registration order, which
// is the order tools are advertised in. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]GenericTool
	order []string
}

// NewRegistry returns a registry holding tools.
func NewRegistry(tools ...GenericTool) *Registry {
	r := &Registry{tools: make(map[string]GenericTool)}
	r.Register(tools...)
	return r
}

// Register adds tools. A tool whose name is already registered replaces the
// previous one and keeps its position.
func (r *Registry) Register(tools ...GenericTool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tools {
		name := t.ToolInfo().Name
		if _, exists := r.tools[name]; !exists {
			r.order = append(r.order, name)
		}
		r.tools[name] = t
	}
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (GenericTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Select returns a new registry holding only the named tools, in the order
// given. Unknown names yield an error wrapping ErrUnknownTool.
func (r *Registry) Select(names ...string) (*Registry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := NewRegistry()
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
		}
		selected.Register(t)
	}
	return selected, nil
}

// Descriptions returns the advertised metadata of every tool in order.
func (r *Registry) Descriptions() []ai.ToolDescription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ai.ToolDescription, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].ToolInfo())
	}
	return out
}
