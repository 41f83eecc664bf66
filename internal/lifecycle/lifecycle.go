// Package lifecycle tracks the generation pipeline's observable state and
// fans out previous/current pairs to subscribers. Auto-navigation fires on
// transitions between consecutive snapshots, never on levels, so the
// tracker is the single place the previous value is kept.
package lifecycle

import "sync"

// Snapshot is one observation of the generation lifecycle.
type Snapshot struct {
	IsStreaming      bool `json:"isStreaming"`
	PreviewReady     bool `json:"previewReady"`
	CodeLength       int  `json:"codeLength"`
	IsIframeFetching bool `json:"isIframeFetching"`
}

// HasCode reports whether any code has arrived.
func (s Snapshot) HasCode() bool { return s.CodeLength > 0 }

// Edge is a pair of consecutive snapshots delivered to subscribers.
type Edge struct {
	Prev, Curr Snapshot
}

// Tracker holds the current snapshot and notifies subscribers of changes.
// The generation pipeline is the only producer; the bridge updates the
// iframe-fetching flag through it as well so there is one writer path.
type Tracker struct {
	mu          sync.RWMutex
	curr        Snapshot
	subscribers map[chan Edge]struct{}
}

// NewTracker creates a tracker with a zero snapshot.
func NewTracker() *Tracker {
	return &Tracker{subscribers: make(map[chan Edge]struct{})}
}

// Current returns the latest snapshot.
func (t *Tracker) Current() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.curr
}

// Subscribe returns a channel receiving edges. The channel is buffered;
// a slow subscriber misses intermediate edges but always sees the channel
// drained state eventually. Callers must Unsubscribe when done.
func (t *Tracker) Subscribe() chan Edge {
	ch := make(chan Edge, 16)
	t.mu.Lock()
	t.subscribers[ch] = struct{}{}
	t.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (t *Tracker) Unsubscribe(ch chan Edge) {
	t.mu.Lock()
	if _, ok := t.subscribers[ch]; ok {
		delete(t.subscribers, ch)
		close(ch)
	}
	t.mu.Unlock()
}

// Update applies a mutation to the current snapshot and broadcasts the
// resulting edge. No-op edges (unchanged snapshot) are still delivered;
// subscribers are edge-triggered and ignore them.
func (t *Tracker) Update(mutate func(*Snapshot)) {
	t.mu.Lock()
	prev := t.curr
	mutate(&t.curr)
	edge := Edge{Prev: prev, Curr: t.curr}
	for ch := range t.subscribers {
		select {
		case ch <- edge:
		default:
			// Subscriber is behind; it will observe the next edge.
		}
	}
	t.mu.Unlock()
}

// SetStreaming flips the outer generation streaming flag.
func (t *Tracker) SetStreaming(v bool) {
	t.Update(func(s *Snapshot) { s.IsStreaming = v })
}

// SetPreviewReady flips the renderable-preview flag.
func (t *Tracker) SetPreviewReady(v bool) {
	t.Update(func(s *Snapshot) { s.PreviewReady = v })
}

// SetCodeLength records the size of the streamed source so far.
func (t *Tracker) SetCodeLength(n int) {
	t.Update(func(s *Snapshot) { s.CodeLength = n })
}

// SetIframeFetching records whether the sandbox itself is mid-fetch.
// Distinct from the outer streaming flag.
func (t *Tracker) SetIframeFetching(v bool) {
	t.Update(func(s *Snapshot) { s.IsIframeFetching = v })
}
