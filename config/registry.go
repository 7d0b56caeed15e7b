package config

import (
	"fmt"
	"sync"

	"github.com/dcshock/dbchain/chain"
)

// entry holds one registered step in exactly one of its two shapes.
type entry[H any] struct {
	direct      chain.Step[H]
	fromResults chain.ResultStep[H]
}

// Registry maps step names to chain steps for one handle type. Direct and
// results-accessor steps are registered through separate methods so the
// shape stays explicit. Safe for concurrent use.
type Registry[H any] struct {
	mu    sync.RWMutex
	steps map[string]entry[H]
}

// NewRegistry returns an empty step registry.
func NewRegistry[H any]() *Registry[H] {
	return &Registry[H]{steps: make(map[string]entry[H])}
}

// Register adds a direct-operation step under the given name. Overwrites
// any existing registration.
func (r *Registry[H]) Register(name string, step chain.Step[H]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.steps == nil {
		r.steps = make(map[string]entry[H])
	}
	r.steps[name] = entry[H]{direct: step}
}

// RegisterResults adds a results-accessor step under the given name.
// Overwrites any existing registration.
func (r *Registry[H]) RegisterResults(name string, step chain.ResultStep[H]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.steps == nil {
		r.steps = make(map[string]entry[H])
	}
	r.steps[name] = entry[H]{fromResults: step}
}

func (r *Registry[H]) lookup(name string) (entry[H], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.steps[name]
	return e, ok
}

// Has reports whether a step is registered under name.
func (r *Registry[H]) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// MustHave panics if name is not registered. Useful at startup wiring.
func (r *Registry[H]) MustHave(name string) {
	if !r.Has(name) {
		panic(fmt.Sprintf("config: step %q not registered", name))
	}
}

// Names returns all registered step names (unordered).
func (r *Registry[H]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.steps))
	for n := range r.steps {
		names = append(names, n)
	}
	return names
}
