// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit runs registered validators over scenarios and aggregates
// their findings into an audit report.
package audit

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pdiddy/dialogue-audit/internal/validate"
)

// ErrDuplicateValidator is returned when a name is registered twice.
var ErrDuplicateValidator = errors.New("validator already registered")

// Entry is one registered validator.
type Entry struct {
	Name string
	Fn   validate.Func
}

// Registry holds validators in registration order. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	names   map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// Register adds a validator under a unique name.
func (r *Registry) Register(name string, fn validate.Func) error {
	if name == "" {
		return errors.New("validator name is empty")
	}
	if fn == nil {
		return fmt.Errorf("validator %q has no function", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names[name] {
		return fmt.Errorf("%w: %s", ErrDuplicateValidator, name)
	}
	r.names[name] = true
	r.entries = append(r.entries, Entry{Name: name, Fn: fn})
	return nil
}

// Validators returns a copy of the entries in registration order.
func (r *Registry) Validators() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Entry(nil), r.entries...)
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of registered validators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear removes every validator.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.names = make(map[string]bool)
}
