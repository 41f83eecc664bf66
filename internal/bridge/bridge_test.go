package bridge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vibeframe/vibeframe/internal/genstream"
	"github.com/vibeframe/vibeframe/internal/lifecycle"
	"github.com/vibeframe/vibeframe/internal/nav"
	"github.com/vibeframe/vibeframe/internal/scrolltrack"
	"github.com/vibeframe/vibeframe/internal/session"
	"github.com/vibeframe/vibeframe/internal/view"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		raw  string
		want Message
		ok   bool
	}{
		{`{"type":"preview-ready"}`, PreviewReady{}, true},
		{`{"type":"preview-loaded"}`, PreviewLoaded{}, true},
		{`{"type":"streaming","state":true}`, Streaming{State: true}, true},
		{`{"type":"screenshot","data":"abc"}`, Screenshot{Data: "abc"}, true},
		{`{"type":"screenshot-error","error":"boom"}`, ScreenshotError{Error: "boom"}, true},
		{`{"type":"viewport","width":375,"darkMode":true}`, Viewport{Width: 375, DarkMode: true}, true},
		{`{"type":"scroll","top":10,"viewportHeight":500,"contentHeight":900}`, ScrollReport{Top: 10, ViewportHeight: 500, ContentHeight: 900}, true},
		{`{"foo":"bar"}`, nil, false},
		{`{"type":"unknown-kind"}`, nil, false},
		{`not json`, nil, false},
		{``, nil, false},
	}
	for _, tt := range tests {
		got, ok := Decode([]byte(tt.raw))
		if ok != tt.ok {
			t.Errorf("Decode(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("Decode(%q) = %#v, want %#v", tt.raw, got, tt.want)
		}
	}
}

type harness struct {
	tracker *lifecycle.Tracker
	nav     *nav.Controller
	sensors *view.Sensors
	scroll  *scrolltrack.Controller
	bridge  *Bridge
	srv     *httptest.Server
	conn    *websocket.Conn
}

// newHarness assembles a bridge the way a session runtime does and dials
// it over a real websocket.
func newHarness(t *testing.T) *harness {
	t.Helper()
	tr := lifecycle.NewTracker()
	sensors := view.NewSensors(0)
	reg := scrolltrack.NewRegistry()
	scroll := scrolltrack.NewController(reg, genstream.NewBuffer())
	navc := nav.NewController(tr, nil, nil)
	navc.SetIdentity(session.Identity{SessionID: "s1", EncodedTitle: "my-app"})
	navc.SetCurrentPath("/chat/s1/my-app")

	b := New("test-key", tr, navc, sensors, reg, scroll)
	b.SetNavDelay(10 * time.Millisecond)
	navc.SetSink(b)
	b.OnPreviewLoaded = func() { tr.SetPreviewReady(true) }

	srv := httptest.NewServer(http.HandlerFunc(b.Handle))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	return &harness{tracker: tr, nav: navc, sensors: sensors, scroll: scroll, bridge: b, srv: srv, conn: conn}
}

func (h *harness) sendRaw(t *testing.T, raw string) {
	t.Helper()
	if err := h.conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
		t.Fatal(err)
	}
}

// readMessage reads the next outbound message into a generic map.
func (h *harness) readMessage(t *testing.T) map[string]any {
	t.Helper()
	h.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m map[string]any
	if err := h.conn.ReadJSON(&m); err != nil {
		t.Fatalf("reading outbound message: %v", err)
	}
	return m
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestMalformedMessagesAreDroppedSilently(t *testing.T) {
	h := newHarness(t)

	h.sendRaw(t, `{"foo":"bar"}`)
	h.sendRaw(t, `garbage`)
	h.sendRaw(t, `{"type":"no-such-message"}`)
	// A valid message afterwards proves the loop survived.
	h.sendRaw(t, `{"type":"viewport","width":375,"darkMode":false}`)

	waitFor(t, h.sensors.IsMobile, "connection died on malformed input")
	snap := h.tracker.Current()
	if snap.IsStreaming || snap.PreviewReady || snap.IsIframeFetching {
		t.Errorf("malformed input mutated lifecycle flags: %+v", snap)
	}
}

func TestStreamingMessageSetsIframeFetching(t *testing.T) {
	h := newHarness(t)

	h.sendRaw(t, `{"type":"streaming","state":true}`)
	waitFor(t, func() bool { return h.tracker.Current().IsIframeFetching }, "fetch flag not set")

	h.sendRaw(t, `{"type":"streaming","state":false}`)
	waitFor(t, func() bool { return !h.tracker.Current().IsIframeFetching }, "fetch flag not cleared")
}

func TestScreenshotCallbacks(t *testing.T) {
	h := newHarness(t)
	results := make(chan *string, 2)
	h.bridge.OnScreenshot = func(data *string) { results <- data }

	h.sendRaw(t, `{"type":"screenshot","data":"data:image/png;base64,AAAA"}`)
	select {
	case data := <-results:
		if data == nil || *data != "data:image/png;base64,AAAA" {
			t.Errorf("screenshot data = %v", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("screenshot callback never fired")
	}

	// Capture failure flows through the same callback as nil.
	h.sendRaw(t, `{"type":"screenshot-error","error":"canvas tainted"}`)
	select {
	case data := <-results:
		if data != nil {
			t.Errorf("error callback carried data %q", *data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("screenshot-error callback never fired")
	}
}

func TestPreviewReadyHandshake(t *testing.T) {
	h := newHarness(t)

	h.sendRaw(t, `{"type":"preview-ready"}`)

	// First outbound message is the credential.
	msg := h.readMessage(t)
	if msg["type"] != "callai-api-key" || msg["key"] != "test-key" {
		t.Fatalf("first outbound message = %v", msg)
	}

	waitFor(t, func() bool { return h.nav.Snapshot().MobilePreviewShown },
		"handshake did not set the mobile preview flag")

	// After the layout delay the host navigates to the preview.
	msg = h.readMessage(t)
	if msg["type"] != "navigate" || msg["path"] != "/chat/s1/my-app/app" {
		t.Fatalf("expected navigate push, got %v", msg)
	}
}

func TestHandshakeNavSuppressedByPinnedView(t *testing.T) {
	h := newHarness(t)
	h.nav.SetCurrentPath("/chat/s1/my-app/code")

	h.sendRaw(t, `{"type":"preview-ready"}`)

	msg := h.readMessage(t)
	if msg["type"] != "callai-api-key" {
		t.Fatalf("first outbound message = %v", msg)
	}

	// No navigate may follow; only the read deadline ends the wait.
	h.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var extra map[string]any
	if err := h.conn.ReadJSON(&extra); err == nil {
		t.Errorf("unexpected outbound message %v after pinned handshake", extra)
	}
}

func TestHandshakeNavSuppressedWhileStreaming(t *testing.T) {
	h := newHarness(t)
	h.tracker.SetStreaming(true)

	h.sendRaw(t, `{"type":"preview-ready"}`)

	msg := h.readMessage(t)
	if msg["type"] != "callai-api-key" {
		t.Fatalf("first outbound message = %v", msg)
	}

	h.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var extra map[string]any
	if err := h.conn.ReadJSON(&extra); err == nil {
		t.Errorf("unexpected outbound message %v during streaming", extra)
	}
}

func TestHandshakeNavSuppressedOnMobile(t *testing.T) {
	h := newHarness(t)
	h.sendRaw(t, `{"type":"viewport","width":375,"darkMode":false}`)
	waitFor(t, h.sensors.IsMobile, "viewport report not applied")

	h.sendRaw(t, `{"type":"preview-ready"}`)

	msg := h.readMessage(t)
	if msg["type"] != "callai-api-key" {
		t.Fatalf("first outbound message = %v", msg)
	}

	h.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var extra map[string]any
	if err := h.conn.ReadJSON(&extra); err == nil {
		t.Errorf("unexpected outbound message %v on mobile", extra)
	}
	if !h.nav.Snapshot().MobilePreviewShown {
		t.Error("mobile handshake must still set the preview flag")
	}
}

func TestScrollReportReachesController(t *testing.T) {
	h := newHarness(t)

	h.sendRaw(t, `{"type":"scroll","top":200,"viewportHeight":500,"contentHeight":2000}`)
	waitFor(t, h.scroll.UserScrolled, "scroll report never reached the controller")
}

func TestPushManifest(t *testing.T) {
	h := newHarness(t)

	// An empty manifest is not pushed at all.
	h.bridge.PushManifest(nil)
	h.bridge.PushManifest(map[string]string{"/App.jsx": "export default 1"})

	msg := h.readMessage(t)
	if msg["type"] != "vfs" {
		t.Fatalf("outbound message = %v", msg)
	}
	files, _ := msg["files"].(map[string]any)
	if files["/App.jsx"] != "export default 1" {
		t.Errorf("files = %v", files)
	}
}

func TestHighlightAndScrollDirectives(t *testing.T) {
	h := newHarness(t)

	h.bridge.Highlight(7)
	if msg := h.readMessage(t); msg["type"] != "code-highlight" || msg["line"] != float64(7) {
		t.Errorf("highlight message = %v", msg)
	}

	h.bridge.ScrollToBottom()
	if msg := h.readMessage(t); msg["type"] != "code-scroll" {
		t.Errorf("scroll message = %v", msg)
	}

	h.bridge.ClearHighlight()
	if msg := h.readMessage(t); msg["line"] != float64(-1) {
		t.Errorf("clear message = %v", msg)
	}
}
