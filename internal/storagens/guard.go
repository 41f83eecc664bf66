// Package storagens rewrites document-database names opened from inside a
// sandboxed session so that two sessions sharing one origin never collide.
// The rewrite is derived purely from the session identifier both sides
// already know; no negotiation is needed.
package storagens

import (
	"strings"
	"sync"

	"github.com/vibeframe/vibeframe/internal/docstore"
)

const (
	// AppPrefix marks databases belonging to the application's own storage
	// layer. Foreign names are never touched.
	AppPrefix = "fp."

	// ReservedPrefix marks internal bookkeeping databases that must keep
	// their names across sessions.
	ReservedPrefix = "fp._"

	// Marker is inserted after the prefix together with the session
	// identifier. Its presence makes a name pass through unchanged, so
	// applying the guard twice is a no-op.
	Marker = "vx-"
)

// Guard namespaces storage names for one sandboxed document. It is scoped
// per sandbox instance, not process-wide: a multi-tenant host runs one
// guard per live sandbox.
type Guard struct {
	sessionID string

	mu        sync.Mutex
	installed bool
	wrapped   OpenFunc
	cache     map[string]string
}

// NewGuard creates a guard bound to a session identifier.
func NewGuard(sessionID string) *Guard {
	return &Guard{
		sessionID: sessionID,
		cache:     make(map[string]string),
	}
}

// OpenFunc is the storage-open entry point the guard intercepts.
type OpenFunc func(name string) (*docstore.Database, error)

// Install wraps the storage-open entry point so every open goes through
// Apply. Installing twice is a no-op that returns the same wrapped
// function, mirroring the once-per-document patch flag.
func (g *Guard) Install(open OpenFunc) OpenFunc {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.installed {
		return g.wrapped
	}
	g.installed = true
	g.wrapped = func(name string) (*docstore.Database, error) {
		return open(g.Apply(name))
	}
	return g.wrapped
}

// Installed reports whether the interception is active.
func (g *Guard) Installed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.installed
}

// Apply rewrites a requested database name. Policy, first match wins:
//
//  1. names outside the application prefix pass through,
//  2. reserved internal names pass through,
//  3. names already carrying the marker pass through,
//  4. otherwise the session marker is spliced in after the prefix.
//
// The result is cached for the guard's lifetime, so repeated opens of the
// same name are cheap and stable.
func (g *Guard) Apply(name string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if out, ok := g.cache[name]; ok {
		return out
	}
	out := g.rewrite(name)
	g.cache[name] = out
	return out
}

func (g *Guard) rewrite(name string) string {
	if !strings.HasPrefix(name, AppPrefix) {
		return name
	}
	if strings.HasPrefix(name, ReservedPrefix) {
		return name
	}
	if strings.Contains(name, Marker) {
		return name
	}
	rest := strings.TrimPrefix(name, AppPrefix)
	return AppPrefix + Marker + g.sessionID + "-" + rest
}
