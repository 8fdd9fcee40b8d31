// Package registry holds the ordered list of solver variants compiled into
// the binary and resolves a validated configuration to one of them.
//
// Every variant registers a Matcher: a predicate plus factory that either
// accepts a configuration and builds a Handler, or declines. FindMatch tries
// matchers in registration order and stops at the first acceptance, so when
// two matchers accept the same configuration the one registered first wins.
//
// A Registry is filled once at startup and then only read. The first call to
// FindMatch seals it; registering afterwards panics. Because nothing writes
// after sealing, concurrent FindMatch calls need no locking.
package registry

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/harrison/srbaslam/internal/models"
)

// Handler runs a selected solver variant and returns the process exit code
type Handler interface {
	Run(ctx context.Context, p models.Params) (int, error)
}

// HandlerFunc adapts an ordinary function to the Handler interface
type HandlerFunc func(ctx context.Context, p models.Params) (int, error)

// Run calls f(ctx, p)
func (f HandlerFunc) Run(ctx context.Context, p models.Params) (int, error) {
	return f(ctx, p)
}

// Matcher returns a Handler and true when it can solve p, or nil and false.
// It must not have side effects beyond building the handler.
type Matcher func(p models.Params) (Handler, bool)

// Entry is one registered variant
type Entry struct {
	Matcher     Matcher
	Description string
}

// Registry is an ordered, append-only collection of entries
type Registry struct {
	entries []Entry
	sealed  atomic.Bool
}

// New creates an empty registry
func New() *Registry {
	return &Registry{}
}

// Register appends a variant. Order is significant: earlier entries are
// tried first. It panics on a nil matcher, an empty description, or when
// called after the registry was sealed by FindMatch.
func (r *Registry) Register(m Matcher, description string) {
	if m == nil {
		panic("registry: nil matcher for " + description)
	}
	if description == "" {
		panic("registry: empty description")
	}
	if r.sealed.Load() {
		panic(fmt.Sprintf("registry: %q registered after dispatch started", description))
	}
	r.entries = append(r.entries, Entry{Matcher: m, Description: description})
}

// Descriptions returns every description in registration order
func (r *Registry) Descriptions() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Description
	}
	return out
}

// Len returns the number of registered variants
func (r *Registry) Len() int {
	return len(r.entries)
}

// FindMatch asks each matcher in registration order and returns the first
// handler produced. Later matchers are not invoked once one accepts.
// The returned description identifies the winning entry.
func (r *Registry) FindMatch(p models.Params) (Handler, string, bool) {
	r.sealed.Store(true)
	for _, e := range r.entries {
		if h, ok := e.Matcher(p); ok && h != nil {
			return h, e.Description, true
		}
	}
	return nil, "", false
}

// Sealed reports whether FindMatch has been called
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}
