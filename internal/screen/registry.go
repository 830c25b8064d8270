package screen

import (
	"context"
	"sort"
	"sync"
)

// Registry keeps at most one live scope per screen name.
type Registry struct {
	mu     sync.Mutex
	parent context.Context
	scopes map[string]*Scope
}

// NewRegistry returns an empty registry whose scopes derive from parent.
func NewRegistry(parent context.Context) *Registry {
	if parent == nil {
		parent = context.Background()
	}
	return &Registry{parent: parent, scopes: map[string]*Scope{}}
}

// Open starts a new instance of the screen, disposing the previous one.
func (r *Registry) Open(name string) *Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.scopes[name]; ok {
		prev.Dispose()
	}
	s := NewScope(r.parent, name)
	r.scopes[name] = s
	return s
}

// Acquire returns the live scope of the screen, opening one if needed.
func (r *Registry) Acquire(name string) *Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.scopes[name]; ok && !s.Disposed() {
		return s
	}
	s := NewScope(r.parent, name)
	r.scopes[name] = s
	return s
}

// Close disposes the screen's scope. It reports whether one was live.
func (r *Registry) Close(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scopes[name]
	if !ok {
		return false
	}
	delete(r.scopes, name)
	live := !s.Disposed()
	s.Dispose()
	return live
}

// CloseAll disposes every scope.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, s := range r.scopes {
		s.Dispose()
		delete(r.scopes, name)
	}
}

// Live lists the names of the live screens in sorted order.
func (r *Registry) Live() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.scopes))
	for name, s := range r.scopes {
		if !s.Disposed() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
