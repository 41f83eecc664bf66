package genstream

import (
	"strings"
	"sync"
)

// Buffer accumulates streamed source text and pings subscribers on every
// mutation. Subscribers receive an empty struct and re-read the buffer,
// so a slow consumer coalesces bursts instead of queueing them.
type Buffer struct {
	mu        sync.RWMutex
	content   strings.Builder
	listeners map[chan struct{}]struct{}
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{listeners: make(map[chan struct{}]struct{})}
}

// Append adds streamed text and notifies subscribers.
func (b *Buffer) Append(delta string) {
	b.mu.Lock()
	b.content.WriteString(delta)
	for ch := range b.listeners {
		select {
		case ch <- struct{}{}:
		default:
			// Listener is behind; it will re-read on the next ping.
		}
	}
	b.mu.Unlock()
}

// Reset clears the buffer for a fresh generation run.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.content.Reset()
	for ch := range b.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	b.mu.Unlock()
}

// Len returns the number of bytes buffered.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content.Len()
}

// String returns the buffered content.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content.String()
}

// Lines returns the buffered content split into lines.
func (b *Buffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Split(b.content.String(), "\n")
}

// Subscribe returns a channel pinged on every mutation. The caller must
// Unsubscribe to release it.
func (b *Buffer) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.listeners[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (b *Buffer) Unsubscribe(ch chan struct{}) {
	b.mu.Lock()
	if _, ok := b.listeners[ch]; ok {
		delete(b.listeners, ch)
		close(ch)
	}
	b.mu.Unlock()
}
