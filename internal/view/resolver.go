package view

// ResolverInput is everything the display resolver needs. It is built
// fresh by the caller on each state change so the resolver itself stays
// a pure function.
type ResolverInput struct {
	URLView            Kind // view derived from the current path
	HasSuffix          bool // path carries an explicit /app, /code or /data
	Mobile             bool
	MobilePreviewShown bool
	IsStreaming        bool
	PreviewReady       bool
	InitialNavDone     bool
}

// ResolveDisplay picks the view that should actually be rendered. It may
// diverge from the URL-derived view during streaming: the user keeps
// looking at code as it arrives, without the host committing a URL change.
//
// On mobile the choice is binary: the preview when the mobile-preview flag
// is set, code otherwise. Data is never auto-selected on mobile.
func ResolveDisplay(in ResolverInput) Kind {
	if in.Mobile {
		if in.MobilePreviewShown {
			return Preview
		}
		return Code
	}

	if in.IsStreaming && !in.InitialNavDone {
		return Code
	}
	if in.InitialNavDone && !in.PreviewReady && !in.HasSuffix {
		// Keep code visible until a renderable preview exists.
		return Code
	}
	return in.URLView
}
