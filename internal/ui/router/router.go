// Package router sets up HTTP routes for the console server.
package router

import (
	"github.com/go-chi/chi/v5"

	consoleFeature "github.com/leapstack-labs/portugo/internal/ui/features/console"
	"github.com/leapstack-labs/portugo/internal/ui/resources"
)

// SetupRoutes configures all routes for the console server.
func SetupRoutes(router chi.Router, console *consoleFeature.Handlers) error {
	router.Get("/", resources.Index)
	router.Handle("/static/*", resources.Handler())

	return consoleFeature.SetupRoutes(router, console)
}
