// Package bridge is the host side of the host↔sandbox message channel.
// The sandboxed iframe has no DOM access to the host and no shared
// storage; everything crosses this websocket as typed JSON messages.
// Unknown or malformed messages are dropped silently; protocol noise is
// never surfaced to the user.
package bridge

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vibeframe/vibeframe/internal/lifecycle"
	"github.com/vibeframe/vibeframe/internal/nav"
	"github.com/vibeframe/vibeframe/internal/scrolltrack"
	"github.com/vibeframe/vibeframe/internal/view"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// defaultNavDelay gives the sandbox time to finish its initial layout
// before the host navigates to the preview.
const defaultNavDelay = 50 * time.Millisecond

// Bridge handles one session's sandbox connections.
type Bridge struct {
	apiKey   string
	navDelay time.Duration

	tracker  *lifecycle.Tracker
	nav      *nav.Controller
	sensors  *view.Sensors
	registry *scrolltrack.Registry
	scroll   *scrolltrack.Controller

	// OnPreviewLoaded fires after the readiness handshake; OnScreenshot
	// receives the captured image, or nil when capture failed, so callers
	// have one code path for "no screenshot" regardless of cause.
	OnPreviewLoaded func()
	OnScreenshot    func(data *string)

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	// wmu serializes writes; gorilla allows one concurrent writer.
	wmu sync.Mutex
}

// New creates a bridge for one session.
func New(apiKey string, tracker *lifecycle.Tracker, navc *nav.Controller, sensors *view.Sensors, registry *scrolltrack.Registry, scroll *scrolltrack.Controller) *Bridge {
	return &Bridge{
		apiKey:   apiKey,
		navDelay: defaultNavDelay,
		tracker:  tracker,
		nav:      navc,
		sensors:  sensors,
		registry: registry,
		scroll:   scroll,
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// SetNavDelay overrides the post-handshake navigation delay (tests).
func (b *Bridge) SetNavDelay(d time.Duration) { b.navDelay = d }

// Handle upgrades the request and serves the message loop until the
// connection closes.
func (b *Bridge) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("bridge: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	b.addConn(conn)
	defer b.removeConn(conn)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("bridge: websocket read: %v", err)
			}
			return
		}

		msg, ok := Decode(raw)
		if !ok {
			continue
		}
		b.dispatch(conn, msg)
	}
}

func (b *Bridge) dispatch(conn *websocket.Conn, msg Message) {
	switch m := msg.(type) {
	case PreviewReady, PreviewLoaded:
		b.handlePreviewReady(conn)
	case Streaming:
		b.tracker.SetIframeFetching(m.State)
	case Screenshot:
		if b.OnScreenshot != nil {
			b.OnScreenshot(&m.Data)
		}
	case ScreenshotError:
		log.Printf("bridge: screenshot capture failed: %s", m.Error)
		if b.OnScreenshot != nil {
			b.OnScreenshot(nil)
		}
	case Viewport:
		b.sensors.SetViewport(m.Width, m.DarkMode)
	case ScrollReport:
		if b.scroll != nil {
			b.scroll.ReportScroll(m.Top, m.ViewportHeight, m.ContentHeight)
		}
	}
}

// handlePreviewReady runs the readiness handshake. It must be idempotent:
// an iframe reload replays the message.
func (b *Bridge) handlePreviewReady(conn *websocket.Conn) {
	// The sandbox has no other way to obtain the caller's credential.
	b.send(conn, apiKeyMessage{Type: "callai-api-key", Key: b.apiKey})

	b.nav.ShowMobilePreview()

	// Let the sandbox finish its own initial layout before switching
	// views. Suppressed when the user pinned a view, on mobile, and
	// while generation still streams.
	time.AfterFunc(b.navDelay, func() {
		if view.HasExplicitSuffix(b.nav.CurrentPath()) {
			return
		}
		if b.sensors.IsMobile() {
			return
		}
		if b.tracker.Current().IsStreaming {
			return
		}
		b.nav.NavigateToView(view.Preview)
	})

	if b.OnPreviewLoaded != nil {
		b.OnPreviewLoaded()
	}
}

// CommitRoute implements nav.RouteSink by pushing a navigate message.
func (b *Bridge) CommitRoute(path string) {
	b.broadcast(navigateMessage{Type: "navigate", Path: path})
}

// PushManifest sends the current virtual filesystem to the sandbox.
func (b *Bridge) PushManifest(files map[string]string) {
	if len(files) == 0 {
		return
	}
	b.broadcast(vfsMessage{Type: "vfs", Files: files})
}

// Highlight implements scrolltrack.Sink.
func (b *Bridge) Highlight(line int) {
	b.broadcast(highlightMessage{Type: "code-highlight", Line: line})
}

// ClearHighlight implements scrolltrack.Sink.
func (b *Bridge) ClearHighlight() {
	b.broadcast(highlightMessage{Type: "code-highlight", Line: -1})
}

// ScrollToBottom implements scrolltrack.Sink.
func (b *Bridge) ScrollToBottom() {
	b.broadcast(scrollMessage{Type: "code-scroll"})
}

func (b *Bridge) addConn(conn *websocket.Conn) {
	b.mu.Lock()
	b.conns[conn] = struct{}{}
	first := len(b.conns) == 1
	b.mu.Unlock()

	// The code view exists once a client is connected; register the
	// scroll sink so the controller's discovery poll can find it.
	if first && b.registry != nil {
		b.registry.Register(b)
	}
}

func (b *Bridge) removeConn(conn *websocket.Conn) {
	b.mu.Lock()
	delete(b.conns, conn)
	last := len(b.conns) == 0
	b.mu.Unlock()

	if last && b.registry != nil {
		b.registry.Unregister()
	}
}

func (b *Bridge) send(conn *websocket.Conn, v any) {
	b.wmu.Lock()
	defer b.wmu.Unlock()
	if err := conn.WriteJSON(v); err != nil {
		log.Printf("bridge: websocket write: %v", err)
	}
}

func (b *Bridge) broadcast(v any) {
	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.conns))
	for conn := range b.conns {
		conns = append(conns, conn)
	}
	b.mu.Unlock()

	for _, conn := range conns {
		b.send(conn, v)
	}
}
