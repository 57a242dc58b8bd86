// Package router sets up HTTP routes for the UI server.
package router

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	dataviewFeature "github.com/leapstack-labs/csvview/internal/ui/features/dataview"
	"github.com/leapstack-labs/csvview/internal/ui/notifier"
	"github.com/leapstack-labs/csvview/internal/ui/resources"
	"github.com/leapstack-labs/csvview/internal/viewer"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	// Converter serves the CSV conversion endpoint. Nil leaves it unmounted.
	Converter    http.Handler
	Registry     *viewer.Registry
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	Caps         []int
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps, isDev bool) error {
	// Hot reload endpoint for dev mode
	if isDev {
		setupReload(router)
	}

	// Static assets
	router.Handle(resources.Prefix+"*", resources.Handler())

	if deps.Converter != nil {
		router.Method(http.MethodGet, viewer.ConvertPath, deps.Converter)
	}

	// Feature routes
	if err := dataviewFeature.SetupRoutes(router, deps.Registry, deps.SessionStore, deps.Notifier, deps.Caps, isDev); err != nil {
		return err
	}

	return nil
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
