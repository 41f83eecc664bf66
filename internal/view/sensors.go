package view

import "sync"

// DefaultMobileBreakpoint is the viewport width, in logical pixels, below
// which the host treats the client as mobile.
const DefaultMobileBreakpoint = 768

// Sensors caches the ambient environment the client reports: viewport
// width and dark-mode state. Mobile-ness is re-evaluated on every call
// rather than cached, so a resize takes effect immediately.
type Sensors struct {
	mu         sync.RWMutex
	width      int
	darkMode   bool
	breakpoint int
}

// NewSensors creates sensors with the given breakpoint; zero or negative
// falls back to DefaultMobileBreakpoint.
func NewSensors(breakpoint int) *Sensors {
	if breakpoint <= 0 {
		breakpoint = DefaultMobileBreakpoint
	}
	return &Sensors{breakpoint: breakpoint}
}

// SetViewport records the latest viewport report from the client.
func (s *Sensors) SetViewport(width int, darkMode bool) {
	s.mu.Lock()
	s.width = width
	s.darkMode = darkMode
	s.mu.Unlock()
}

// IsMobile reports whether the viewport is strictly narrower than the
// breakpoint. An unreported viewport (width 0) counts as desktop.
func (s *Sensors) IsMobile() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width > 0 && s.width < s.breakpoint
}

// DarkMode reports the last observed theme.
func (s *Sensors) DarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.darkMode
}
