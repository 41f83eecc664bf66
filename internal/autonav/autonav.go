// Package autonav watches generation-lifecycle edges and triggers view
// changes without user action. Three independent rules run on every
// previous/current snapshot pair; all are one-shot edge triggers, so a
// component that starts observing mid-stream never fires retroactively.
package autonav

import (
	"context"

	"github.com/vibeframe/vibeframe/internal/lifecycle"
	"github.com/vibeframe/vibeframe/internal/nav"
	"github.com/vibeframe/vibeframe/internal/view"
)

// Engine evaluates the auto-navigation rules for one session.
type Engine struct {
	nav      *nav.Controller
	isMobile func() bool
}

// NewEngine creates an engine bound to a navigation controller. isMobile
// is consulted at fire time, never cached.
func NewEngine(n *nav.Controller, isMobile func() bool) *Engine {
	if isMobile == nil {
		isMobile = func() bool { return false }
	}
	return &Engine{nav: n, isMobile: isMobile}
}

// Run consumes lifecycle edges from the tracker until ctx is cancelled.
func (e *Engine) Run(ctx context.Context, t *lifecycle.Tracker) {
	ch := t.Subscribe()
	defer t.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case edge, ok := <-ch:
			if !ok {
				return
			}
			e.Evaluate(edge)
		}
	}
}

// Evaluate runs all three rules against one lifecycle edge. Rules are
// suppressed entirely until the session has a known identity.
func (e *Engine) Evaluate(edge lifecycle.Edge) {
	if !e.nav.Identity().Known() {
		return
	}
	prev, curr := edge.Prev, edge.Curr

	// R1: first code arrives while streaming. Marks the initial-navigation
	// marker for the display resolver; does not navigate by itself.
	if curr.IsStreaming && !prev.HasCode() && curr.HasCode() {
		e.nav.MarkInitialNavDone()
	}

	// R2: preview becomes ready outside a stream.
	if curr.PreviewReady && !prev.PreviewReady && !curr.IsStreaming {
		e.fireIfUnpinned()
	}

	// R3: streaming ends with the preview already ready.
	if !curr.IsStreaming && prev.IsStreaming && curr.PreviewReady {
		e.fireIfUnpinned()
	}
}

// fireIfUnpinned navigates to the preview unless the user has explicitly
// pinned the code or data view in the URL. An absent suffix reads as
// Preview for display but does not count as pinned here; that asymmetry
// is what lets auto-navigation fire only for users who never chose a view.
func (e *Engine) fireIfUnpinned() {
	path := e.nav.CurrentPath()
	if view.HasExplicitSuffix(path) && view.FromPath(path) != view.Preview {
		return
	}
	if e.isMobile() {
		e.nav.ShowMobilePreview()
		return
	}
	e.nav.NavigateToView(view.Preview)
}
