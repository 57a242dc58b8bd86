package dataview

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/csvview/internal/ui/notifier"
	"github.com/leapstack-labs/csvview/internal/viewer"
)

// SetupRoutes configures routes for the data viewer feature.
func SetupRoutes(
	router chi.Router,
	registry *viewer.Registry,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	caps []int,
	isDev bool,
) error {
	handlers := NewHandlers(registry, sessionStore, notify, caps, isDev)

	router.Get("/", handlers.ViewerPage)
	router.Get("/viewer/updates", handlers.ViewerUpdates)
	router.Post("/viewer/dataset", handlers.SelectDataset)
	router.Post("/viewer/cap/{cap}", handlers.SetRowCap)
	router.Post("/viewer/shuffle", handlers.Shuffle)

	return nil
}
