package bridge

import "encoding/json"

// Inbound messages form a closed tagged union. Decode inspects the type
// discriminant first and yields either a recognized variant or "ignore";
// validation is decoupled from handling and malformed input never errors.

// Message is an inbound sandbox message.
type Message interface{ isMessage() }

// PreviewReady signals the sandbox finished its readiness handshake.
type PreviewReady struct{}

// PreviewLoaded signals the sandbox finished loading the rendered app.
type PreviewLoaded struct{}

// Streaming reports whether the sandbox itself is mid-fetch, distinct
// from the outer generation streaming flag.
type Streaming struct {
	State bool `json:"state"`
}

// Screenshot carries a captured preview image as a base64 data URL.
type Screenshot struct {
	Data string `json:"data"`
}

// ScreenshotError signals a failed capture inside the sandbox.
type ScreenshotError struct {
	Error string `json:"error"`
}

// Viewport reports the client's viewport width and theme.
type Viewport struct {
	Width    int  `json:"width"`
	DarkMode bool `json:"darkMode"`
}

// ScrollReport carries the code view's scroll position.
type ScrollReport struct {
	Top            int `json:"top"`
	ViewportHeight int `json:"viewportHeight"`
	ContentHeight  int `json:"contentHeight"`
}

func (PreviewReady) isMessage()    {}
func (PreviewLoaded) isMessage()   {}
func (Streaming) isMessage()       {}
func (Screenshot) isMessage()      {}
func (ScreenshotError) isMessage() {}
func (Viewport) isMessage()        {}
func (ScrollReport) isMessage()    {}

// Decode interprets a raw sandbox message. The second return is false for
// unknown or malformed input, which callers drop without error.
func Decode(raw []byte) (Message, bool) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
		return nil, false
	}

	switch env.Type {
	case "preview-ready":
		return PreviewReady{}, true
	case "preview-loaded":
		return PreviewLoaded{}, true
	case "streaming":
		var m Streaming
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, false
		}
		return m, true
	case "screenshot":
		var m Screenshot
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, false
		}
		return m, true
	case "screenshot-error":
		var m ScreenshotError
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, false
		}
		return m, true
	case "viewport":
		var m Viewport
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, false
		}
		return m, true
	case "scroll":
		var m ScrollReport
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, false
		}
		return m, true
	default:
		return nil, false
	}
}

// Outbound message shapes. The api-key message is how the sandbox obtains
// the caller's credential; it has no access to host storage.

type apiKeyMessage struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

type navigateMessage struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

type highlightMessage struct {
	Type string `json:"type"`
	Line int    `json:"line"`
}

type scrollMessage struct {
	Type string `json:"type"`
}

type vfsMessage struct {
	Type  string            `json:"type"`
	Files map[string]string `json:"files"`
}
