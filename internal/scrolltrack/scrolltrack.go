// Package scrolltrack keeps the live code view pinned to the newest
// streamed line. While generation streams and the code view is displayed,
// it highlights the last meaningful line after every buffer mutation and
// scrolls to the bottom unless the user has scrolled away. The code view
// mounts asynchronously, so the controller discovers its sink by polling.
package scrolltrack

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vibeframe/vibeframe/internal/genstream"
	"github.com/vibeframe/vibeframe/internal/lifecycle"
	"github.com/vibeframe/vibeframe/internal/view"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	// nearBottomPx decouples "near the bottom" from "exactly at the
	// bottom" to tolerate sub-pixel rounding in client reports.
	nearBottomPx = 100
	// minDeltaPx filters out the auto-scroll's own programmatic writes
	// from being misread as user intent.
	minDeltaPx = 5
)

// Sink receives highlight and scroll directives. The sandbox bridge
// implements it by pushing messages to the client's code view.
type Sink interface {
	Highlight(line int)
	ClearHighlight()
	ScrollToBottom()
}

// Registry holds the code-view sink once it mounts. The controller polls
// Lookup until a sink appears.
type Registry struct {
	mu   sync.RWMutex
	sink Sink
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Register installs the mounted code-view sink.
func (r *Registry) Register(s Sink) {
	r.mu.Lock()
	r.sink = s
	r.mu.Unlock()
}

// Unregister removes the sink (code view unmounted).
func (r *Registry) Unregister() {
	r.mu.Lock()
	r.sink = nil
	r.mu.Unlock()
}

// Lookup returns the current sink, or nil while none is mounted.
func (r *Registry) Lookup() Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sink
}

// Controller drives auto-scroll and active-line highlighting for one
// session's code view.
type Controller struct {
	registry     *Registry
	buf          *genstream.Buffer
	pollInterval time.Duration

	mu           sync.Mutex
	active       bool
	cancel       context.CancelFunc
	done         chan struct{}
	sink         Sink
	activeLine   int
	userScrolled bool
	lastTop      int
}

// NewController creates an inactive controller.
func NewController(reg *Registry, buf *genstream.Buffer) *Controller {
	return &Controller{
		registry:     reg,
		buf:          buf,
		pollInterval: defaultPollInterval,
		activeLine:   -1,
	}
}

// Update recomputes activation from the lifecycle and the displayed view.
// The controller runs only while code is streaming, no renderable preview
// exists yet, and the code view is the one on screen.
func (c *Controller) Update(snap lifecycle.Snapshot, displayed view.Kind) {
	c.setActive(snap.IsStreaming && !snap.PreviewReady && displayed == view.Code)
}

// Close is the single cleanup path: it stops polling, unsubscribes from
// the buffer, clears any highlight and resets scroll state.
func (c *Controller) Close() {
	c.setActive(false)
}

func (c *Controller) setActive(want bool) {
	c.mu.Lock()
	if want == c.active {
		c.mu.Unlock()
		return
	}
	c.active = want
	if want {
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.done = make(chan struct{})
		go c.run(ctx, c.done)
		c.mu.Unlock()
		return
	}
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (c *Controller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer c.cleanup()

	// The editor widget mounts lazily; poll until its sink registers.
	// The wait is unbounded, ended only by deactivation.
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	var sink Sink
	for sink == nil {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sink = c.registry.Lookup()
		}
	}
	c.mu.Lock()
	c.sink = sink
	c.mu.Unlock()

	sub := c.buf.Subscribe()
	defer c.buf.Unsubscribe(sub)

	// Content may already have streamed in while we were discovering.
	c.onMutation(sink)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub:
			if !ok {
				return
			}
			c.onMutation(sink)
		}
	}
}

// onMutation moves the highlight to the last meaningful line and scrolls
// to the bottom unless the user has scrolled away.
func (c *Controller) onMutation(sink Sink) {
	line := lastContentLine(c.buf.Lines())

	c.mu.Lock()
	moved := line >= 0 && line != c.activeLine
	if moved {
		c.activeLine = line
	}
	scroll := !c.userScrolled
	c.mu.Unlock()

	if moved {
		sink.Highlight(line)
	}
	if scroll {
		sink.ScrollToBottom()
	}
}

// ReportScroll records a scroll position report from the client:
// top is the scroll offset, viewportHeight the visible height and
// contentHeight the full scrollable height.
func (c *Controller) ReportScroll(top, viewportHeight, contentHeight int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delta := top - c.lastTop
	if delta < 0 {
		delta = -delta
	}
	if delta < minDeltaPx {
		return
	}
	c.lastTop = top

	bottomGap := contentHeight - viewportHeight - top
	c.userScrolled = bottomGap > nearBottomPx
}

// UserScrolled reports whether auto-scroll is currently suppressed.
func (c *Controller) UserScrolled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userScrolled
}

// ActiveLine returns the currently highlighted line, -1 for none.
func (c *Controller) ActiveLine() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLine
}

func (c *Controller) cleanup() {
	c.mu.Lock()
	sink := c.sink
	c.sink = nil
	c.activeLine = -1
	c.userScrolled = false
	c.lastTop = 0
	c.mu.Unlock()

	if sink != nil {
		sink.ClearHighlight()
	}
}

// lastContentLine returns the index of the last non-empty line that is
// not a fence sentinel, or -1 when no such line exists.
func lastContentLine(lines []string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "```") {
			continue
		}
		return i
	}
	return -1
}
