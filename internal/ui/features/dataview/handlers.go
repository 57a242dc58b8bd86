package dataview

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/csvview/internal/ui/features/dataview/components"
	"github.com/leapstack-labs/csvview/internal/ui/notifier"
	"github.com/leapstack-labs/csvview/internal/ui/session"
	"github.com/leapstack-labs/csvview/internal/viewer"
	"github.com/leapstack-labs/csvview/pkg/core"
)

// PageTitle is the title of the viewer page.
const PageTitle = "Data Viewer"

// DefaultCaps are the row cap buttons offered when none are configured.
var DefaultCaps = []int{50, 100, 150, 200, 300, 500, 1000}

// Handlers provides HTTP handlers for the data viewer feature.
type Handlers struct {
	registry     *viewer.Registry
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	caps         []int
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(registry *viewer.Registry, sessionStore sessions.Store, notify *notifier.Notifier, caps []int, isDev bool) *Handlers {
	if len(caps) == 0 {
		caps = DefaultCaps
	}
	return &Handlers{
		registry:     registry,
		sessionStore: sessionStore,
		notifier:     notify,
		caps:         caps,
		isDev:        isDev,
	}
}

// ViewerPage renders the viewer page with the session's current state.
// The first visit creates the session and starts its initial load.
func (h *Handlers) ViewerPage(w http.ResponseWriter, r *http.Request) {
	key, err := session.ID(h.sessionStore, w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	snap := h.registry.Get(key).Snapshot()
	if err := components.Page(PageTitle, h.isDev, h.viewerData(snap)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ViewerUpdates is the long-lived SSE endpoint for the viewer page.
// It sends the current view once, since a load may have finished after the
// page was rendered, and then pushes the view on every state change of the
// session.
func (h *Handlers) ViewerUpdates(w http.ResponseWriter, r *http.Request) {
	key, err := session.ID(h.sessionStore, w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	updates := h.notifier.Subscribe(key)
	defer h.notifier.Unsubscribe(key, updates)

	sse := datastar.NewSSE(w, r)
	if err := h.sendViewer(sse, h.registry.Get(key).Snapshot()); err != nil {
		_ = sse.ConsoleError(err)
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			// Get rather than Lookup: an open page keeps its session alive
			// and revives it after eviction.
			if err := h.sendViewer(sse, h.registry.Get(key).Snapshot()); err != nil {
				_ = sse.ConsoleError(err)
				// Don't return - keep trying on next update
			}
		}
	}
}

// SelectDataset switches the session to the dataset in the signals and
// responds with the loading view.
func (h *Handlers) SelectDataset(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(fmt.Errorf("failed to read signals: %w", err))
		return
	}

	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.SelectDataset(core.DatasetID(signals.Dataset))

	sse := datastar.NewSSE(w, r)
	if err := h.sendViewer(sse, ctrl.Snapshot()); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// SetRowCap changes how many rows the session renders.
func (h *Handlers) SetRowCap(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)

	n, err := strconv.Atoi(chi.URLParam(r, "cap"))
	if err != nil {
		_ = sse.ConsoleError(fmt.Errorf("invalid row cap %q", chi.URLParam(r, "cap")))
		return
	}
	if err := ctrl.SetRowCap(n); err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	if err := h.sendViewer(sse, ctrl.Snapshot()); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Shuffle reorders the session's rows and truncates them to its cap.
func (h *Handlers) Shuffle(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	snap := ctrl.Shuffle()

	sse := datastar.NewSSE(w, r)
	if err := h.sendViewer(sse, snap); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// controller returns the session's controller, writing an error response
// when the session cannot be resolved.
func (h *Handlers) controller(w http.ResponseWriter, r *http.Request) (*viewer.Controller, bool) {
	key, err := session.ID(h.sessionStore, w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return h.registry.Get(key), true
}

func (h *Handlers) sendViewer(sse *datastar.ServerSentEventGenerator, snap viewer.Snapshot) error {
	return sse.PatchElementTempl(components.Viewer(h.viewerData(snap)))
}

func (h *Handlers) viewerData(snap viewer.Snapshot) components.ViewerData {
	return components.ViewerData{
		Snapshot: snap,
		Datasets: core.KnownDatasets(),
		Caps:     h.caps,
	}
}
