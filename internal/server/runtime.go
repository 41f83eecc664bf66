package server

import (
	"context"
	"log"

	"github.com/vibeframe/vibeframe/internal/autonav"
	"github.com/vibeframe/vibeframe/internal/bridge"
	"github.com/vibeframe/vibeframe/internal/docstore"
	"github.com/vibeframe/vibeframe/internal/genstream"
	"github.com/vibeframe/vibeframe/internal/lifecycle"
	"github.com/vibeframe/vibeframe/internal/manifest"
	"github.com/vibeframe/vibeframe/internal/nav"
	"github.com/vibeframe/vibeframe/internal/scrolltrack"
	"github.com/vibeframe/vibeframe/internal/session"
	"github.com/vibeframe/vibeframe/internal/storagens"
	"github.com/vibeframe/vibeframe/internal/view"
)

// Runtime is the per-session assembly of the orchestration subsystem:
// lifecycle tracker, navigation controller, auto-navigation engine,
// sandbox bridge, storage guard and scroll controller, wired together
// around one live session.
type Runtime struct {
	Session  *session.Session
	Tracker  *lifecycle.Tracker
	Nav      *nav.Controller
	Sensors  *view.Sensors
	Bridge   *bridge.Bridge
	Pipeline *genstream.Pipeline
	Scroll   *scrolltrack.Controller
	Guard    *storagens.Guard

	openDB storagens.OpenFunc
	cancel context.CancelFunc
}

// runtimeFor returns the cached runtime for a session, creating it on
// first use.
func (s *Server) runtimeFor(sess *session.Session) *Runtime {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rt, ok := s.runtimes[sess.ID]; ok {
		return rt
	}
	rt := s.newRuntime(sess)
	s.runtimes[sess.ID] = rt
	return rt
}

func (s *Server) newRuntime(sess *session.Session) *Runtime {
	tracker := lifecycle.NewTracker()
	sensors := view.NewSensors(s.cfg.MobileBreakpoint)
	buf := genstream.NewBuffer()
	pipeline := genstream.NewPipeline(s.client, s.cfg.Model, tracker, buf, s.sessions)

	registry := scrolltrack.NewRegistry()
	scroll := scrolltrack.NewController(registry, buf)

	navc := nav.NewController(tracker, nil, nil)
	navc.SetIdentity(sess.Identity())
	navc.SetCurrentPath("/chat/" + sess.ID + "/" + sess.EncodedTitle)

	br := bridge.New(s.cfg.APIKey, tracker, navc, sensors, registry, scroll)
	navc.SetSink(br)

	rt := &Runtime{
		Session:  sess,
		Tracker:  tracker,
		Nav:      navc,
		Sensors:  sensors,
		Bridge:   br,
		Pipeline: pipeline,
		Scroll:   scroll,
		Guard:    storagens.NewGuard(sess.ID),
	}
	rt.openDB = rt.Guard.Install(s.docs.Open)

	br.OnPreviewLoaded = func() {
		pipeline.MarkPreviewReady()
		br.PushManifest(rt.Manifest())
	}
	br.OnScreenshot = func(data *string) {
		if data == nil {
			return
		}
		if err := s.sessions.SaveScreenshot(context.Background(), sess.ID, *data); err != nil {
			log.Printf("server: %v", err)
		}
	}

	engine := autonav.NewEngine(navc, sensors.IsMobile)

	ctx, cancel := context.WithCancel(context.Background())
	rt.cancel = cancel
	go engine.Run(ctx, tracker)
	go rt.watchScroll(ctx)

	return rt
}

// watchScroll keeps the scroll controller's activation in sync with the
// lifecycle and the displayed view.
func (rt *Runtime) watchScroll(ctx context.Context) {
	ch := rt.Tracker.Subscribe()
	defer rt.Tracker.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case edge, ok := <-ch:
			if !ok {
				return
			}
			rt.Scroll.Update(edge.Curr, rt.DisplayView())
		}
	}
}

// DisplayView resolves the view that should actually be on screen.
func (rt *Runtime) DisplayView() view.Kind {
	snap := rt.Tracker.Current()
	st := rt.Nav.Snapshot()
	return view.ResolveDisplay(view.ResolverInput{
		URLView:            view.FromPath(st.CurrentPath),
		HasSuffix:          view.HasExplicitSuffix(st.CurrentPath),
		Mobile:             rt.Sensors.IsMobile(),
		MobilePreviewShown: st.MobilePreviewShown,
		IsStreaming:        snap.IsStreaming,
		PreviewReady:       snap.PreviewReady,
		InitialNavDone:     st.InitialNavDone,
	})
}

// Manifest builds the sandbox's virtual filesystem from the latest code.
// The welcome screen shows until any code exists for the session.
func (rt *Runtime) Manifest() map[string]string {
	code := rt.Pipeline.Code()
	if code == "" {
		code = rt.Session.Code
	}
	return manifest.Build(code, code == "")
}

// OpenDatabase opens a sandbox-requested document database; the name goes
// through the storage namespacing guard first.
func (rt *Runtime) OpenDatabase(name string) (*docstore.Database, error) {
	return rt.openDB(name)
}

// Close tears the runtime down: auto-navigation, the scroll watcher and
// the scroll controller's own resources all stop, even mid-stream.
func (rt *Runtime) Close() {
	rt.cancel()
	rt.Scroll.Close()
}
