package view

import (
	"testing"

	"github.com/vibeframe/vibeframe/internal/lifecycle"
)

func TestPathRoundTrip(t *testing.T) {
	for _, k := range []Kind{Preview, Code, Data} {
		path := PathFor("s1", "my-app", k)
		if got := FromPath(path); got != k {
			t.Errorf("FromPath(PathFor(%s)) = %s", k, got)
		}
		if !HasExplicitSuffix(path) {
			t.Errorf("PathFor(%s) should carry an explicit suffix", k)
		}
	}
}

func TestFromPathDefaultsToPreview(t *testing.T) {
	path := "/chat/s1/my-app"
	if got := FromPath(path); got != Preview {
		t.Errorf("suffix-less path resolved to %s, want preview", got)
	}
	// The same path must still read as "no explicit view" so that
	// auto-navigation can distinguish the two meanings.
	if HasExplicitSuffix(path) {
		t.Error("suffix-less path reported an explicit suffix")
	}
}

func TestPreviewSuffixIsApp(t *testing.T) {
	if got := Preview.Suffix(); got != "app" {
		t.Errorf("Preview.Suffix() = %q, want \"app\"", got)
	}
	if got := Code.Suffix(); got != "code" {
		t.Errorf("Code.Suffix() = %q, want \"code\"", got)
	}
}

func TestControlsPreviewDisabledUntilReady(t *testing.T) {
	// For every lifecycle combination without a ready preview, the
	// Preview control must be disabled.
	for _, streaming := range []bool{false, true} {
		for _, codeLen := range []int{0, 1200} {
			c := ComputeControls(lifecycle.Snapshot{
				IsStreaming: streaming,
				CodeLength:  codeLen,
			})
			if c.Preview.Enabled {
				t.Errorf("preview enabled with previewReady=false (streaming=%v codeLen=%d)", streaming, codeLen)
			}
		}
	}
}

func TestControlsDataDisabledWhileStreaming(t *testing.T) {
	c := ComputeControls(lifecycle.Snapshot{IsStreaming: true, PreviewReady: true})
	if c.Data.Enabled {
		t.Error("data enabled while streaming")
	}
	if !c.Code.Enabled {
		t.Error("code must always be enabled")
	}
}

func TestControlsCodeSpinner(t *testing.T) {
	// Spinner only while code is actively arriving and no renderable
	// preview exists yet.
	tests := []struct {
		snap lifecycle.Snapshot
		want bool
	}{
		{lifecycle.Snapshot{IsStreaming: true, CodeLength: 100}, true},
		{lifecycle.Snapshot{IsStreaming: true, CodeLength: 0}, false},
		{lifecycle.Snapshot{IsStreaming: true, PreviewReady: true, CodeLength: 100}, false},
		{lifecycle.Snapshot{IsStreaming: false, CodeLength: 100}, false},
	}
	for i, tt := range tests {
		if got := ComputeControls(tt.snap).Code.Loading; got != tt.want {
			t.Errorf("case %d: code loading = %v, want %v", i, got, tt.want)
		}
	}
}

func TestControlsPreviewLoadingTracksIframeFetch(t *testing.T) {
	c := ComputeControls(lifecycle.Snapshot{PreviewReady: true, IsIframeFetching: true})
	if !c.Preview.Loading {
		t.Error("preview should show loading while the sandbox fetches")
	}
}

func TestResolveDisplayStreamingForcesCode(t *testing.T) {
	// Streaming with the initial-navigation marker unset pins code.
	got := ResolveDisplay(ResolverInput{
		URLView:     Preview,
		IsStreaming: true,
	})
	if got != Code {
		t.Errorf("streaming without initial nav resolved to %s, want code", got)
	}
}

func TestResolveDisplayStreamingAfterFirstCode(t *testing.T) {
	// Scenario: streaming started with no code, code has now arrived
	// (marker set by R1), preview not ready, URL still the default.
	got := ResolveDisplay(ResolverInput{
		URLView:        Preview,
		HasSuffix:      false,
		IsStreaming:    true,
		InitialNavDone: true,
	})
	if got != Code {
		t.Errorf("mid-stream resolved to %s, want code", got)
	}
}

func TestResolveDisplayFollowsURLOnceReady(t *testing.T) {
	got := ResolveDisplay(ResolverInput{
		URLView:        Preview,
		PreviewReady:   true,
		InitialNavDone: true,
	})
	if got != Preview {
		t.Errorf("resolved to %s, want preview", got)
	}
}

func TestResolveDisplayExplicitSuffixWins(t *testing.T) {
	// A pinned /data view shows even though the preview is not ready.
	got := ResolveDisplay(ResolverInput{
		URLView:        Data,
		HasSuffix:      true,
		InitialNavDone: true,
	})
	if got != Data {
		t.Errorf("resolved to %s, want data", got)
	}
}

func TestResolveDisplayMobileBinary(t *testing.T) {
	if got := ResolveDisplay(ResolverInput{Mobile: true, URLView: Data}); got != Code {
		t.Errorf("mobile without preview flag resolved to %s, want code", got)
	}
	if got := ResolveDisplay(ResolverInput{Mobile: true, MobilePreviewShown: true, URLView: Data}); got != Preview {
		t.Errorf("mobile with preview flag resolved to %s, want preview", got)
	}
}

func TestSensorsMobileBreakpoint(t *testing.T) {
	s := NewSensors(0)

	if s.IsMobile() {
		t.Error("unreported viewport should count as desktop")
	}

	s.SetViewport(767, false)
	if !s.IsMobile() {
		t.Error("767px should be mobile")
	}

	s.SetViewport(768, false)
	if s.IsMobile() {
		t.Error("768px should be desktop (strictly-less-than breakpoint)")
	}
}

func TestSensorsDarkMode(t *testing.T) {
	s := NewSensors(0)
	s.SetViewport(1024, true)
	if !s.DarkMode() {
		t.Error("dark mode not recorded")
	}
}
