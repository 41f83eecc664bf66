// Package nav owns the session-local navigation state: the current route,
// the mobile-preview flag, the back flag and the initial-navigation marker.
// Every other component (the auto-navigation engine, the sandbox bridge,
// HTTP handlers) mutates that state only through this controller's
// transition functions, keeping a single writer per flag.
package nav

import (
	"sync"

	"github.com/vibeframe/vibeframe/internal/lifecycle"
	"github.com/vibeframe/vibeframe/internal/session"
	"github.com/vibeframe/vibeframe/internal/view"
)

// RouteSink receives committed route changes. The bridge implements it by
// pushing a navigate message to the client.
type RouteSink interface {
	CommitRoute(path string)
}

// Controller mediates all view navigation for one session.
type Controller struct {
	tracker *lifecycle.Tracker
	sink    RouteSink
	onBack  func()

	mu                 sync.Mutex
	identity           session.Identity
	currentPath        string
	localView          view.Kind // held when identity is unknown
	mobilePreviewShown bool
	userClickedBack    bool
	initialNavDone     bool
}

// NewController creates a controller. sink and onBack may be nil.
func NewController(tracker *lifecycle.Tracker, sink RouteSink, onBack func()) *Controller {
	return &Controller{
		tracker:   tracker,
		sink:      sink,
		onBack:    onBack,
		localView: view.Preview,
	}
}

// SetSink installs the route sink. The bridge is constructed after the
// controller, so assembly wires it in afterwards.
func (c *Controller) SetSink(sink RouteSink) {
	c.mu.Lock()
	c.sink = sink
	c.mu.Unlock()
}

// SetIdentity records the session identity once it exists.
func (c *Controller) SetIdentity(id session.Identity) {
	c.mu.Lock()
	c.identity = id
	c.mu.Unlock()
}

// Identity returns the current identity.
func (c *Controller) Identity() session.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// NavigateToView requests a view change. Preview is rejected until a
// renderable preview exists; Data is rejected while generation streams;
// Code is never rejected. On acceptance the mobile-preview flag is set and,
// if the identity is known, the route change is committed. Without an
// identity the choice is held as local UI state only.
func (c *Controller) NavigateToView(target view.Kind) {
	snap := c.tracker.Current()
	if target == view.Preview && !snap.PreviewReady {
		return
	}
	if target == view.Data && snap.IsStreaming {
		return
	}

	c.mu.Lock()
	c.mobilePreviewShown = true
	if snap.IsStreaming {
		c.userClickedBack = false
	}
	if !c.identity.Known() {
		c.localView = target
		c.mu.Unlock()
		return
	}
	path := view.PathFor(c.identity.SessionID, c.identity.EncodedTitle, target)
	c.currentPath = path
	sink := c.sink
	c.mu.Unlock()

	if sink != nil {
		sink.CommitRoute(path)
	}
}

// HandleBack implements the back affordance. While streaming it records
// that the user intentionally backed out of a live preview.
func (c *Controller) HandleBack() {
	snap := c.tracker.Current()
	c.mu.Lock()
	if snap.IsStreaming {
		c.userClickedBack = true
	}
	c.mobilePreviewShown = false
	cb := c.onBack
	c.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// ShowMobilePreview sets the mobile-preview flag without a URL change.
// Used when the sandbox reports readiness and by auto-navigation on mobile.
func (c *Controller) ShowMobilePreview() {
	c.mu.Lock()
	c.mobilePreviewShown = true
	c.mu.Unlock()
}

// MarkInitialNavDone records that the first code has arrived mid-stream.
// Read by the display resolver; never reset within a session route.
func (c *Controller) MarkInitialNavDone() {
	c.mu.Lock()
	c.initialNavDone = true
	c.mu.Unlock()
}

// SetCurrentPath records a path the client navigated to on its own
// (initial page load, browser history traversal).
func (c *Controller) SetCurrentPath(path string) {
	c.mu.Lock()
	c.currentPath = path
	c.mu.Unlock()
}

// CurrentPath returns the last committed or reported route.
func (c *Controller) CurrentPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPath
}

// State is a read-only copy of the controller's flags.
type State struct {
	MobilePreviewShown bool
	UserClickedBack    bool
	InitialNavDone     bool
	LocalView          view.Kind
	CurrentPath        string
}

// Snapshot returns the current flag state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		MobilePreviewShown: c.mobilePreviewShown,
		UserClickedBack:    c.userClickedBack,
		InitialNavDone:     c.initialNavDone,
		LocalView:          c.localView,
		CurrentPath:        c.currentPath,
	}
}
