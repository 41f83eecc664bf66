// Package view defines the three host views (rendered app, source code,
// data inspector), the URL suffix mapping, the per-view control policy,
// and the resolver that decides which view is actually displayed.
package view

import "strings"

// Kind identifies one of the three host views.
type Kind string

const (
	Preview Kind = "preview" // rendered app
	Code    Kind = "code"    // raw source
	Data    Kind = "data"    // document inspector
)

// Suffix maps a Kind to its URL path suffix. Preview uses "app" rather
// than "preview" on the wire.
func (k Kind) Suffix() string {
	if k == Preview {
		return "app"
	}
	return string(k)
}

// FromPath derives the view from a session route path. An absent suffix
// reads as Preview; use HasExplicitSuffix to distinguish the two cases,
// since auto-navigation treats "no suffix" and "/app" differently.
func FromPath(path string) Kind {
	switch {
	case strings.HasSuffix(path, "/code"):
		return Code
	case strings.HasSuffix(path, "/data"):
		return Data
	default:
		return Preview
	}
}

// HasExplicitSuffix reports whether the path pins a view explicitly.
func HasExplicitSuffix(path string) bool {
	return strings.HasSuffix(path, "/app") ||
		strings.HasSuffix(path, "/code") ||
		strings.HasSuffix(path, "/data")
}

// PathFor builds the session route for a view.
func PathFor(sessionID, encodedTitle string, k Kind) string {
	return "/chat/" + sessionID + "/" + encodedTitle + "/" + k.Suffix()
}
