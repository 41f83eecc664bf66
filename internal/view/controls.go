package view

import "github.com/vibeframe/vibeframe/internal/lifecycle"

// Control describes whether a view's navigation affordance is clickable
// and whether it shows a loading indicator.
type Control struct {
	Enabled bool `json:"enabled"`
	Loading bool `json:"loading"`
}

// Controls holds one Control per view.
type Controls struct {
	Preview Control `json:"preview"`
	Code    Control `json:"code"`
	Data    Control `json:"data"`
}

// ComputeControls derives the per-view controls from the generation
// lifecycle. Pure: called on every state change, never stored.
//
// Code is always enabled. Data is unavailable while generation streams.
// Preview is unavailable until the sandbox has something renderable.
func ComputeControls(s lifecycle.Snapshot) Controls {
	return Controls{
		Preview: Control{
			Enabled: s.PreviewReady,
			Loading: s.IsIframeFetching,
		},
		Code: Control{
			Enabled: true,
			// Spinner only while code is actively arriving and no
			// renderable preview exists yet.
			Loading: s.IsStreaming && !s.PreviewReady && s.CodeLength > 0,
		},
		Data: Control{
			Enabled: !s.IsStreaming,
			Loading: false,
		},
	}
}
