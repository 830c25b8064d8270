package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/alkarmah/storefront/api/responses"
	"github.com/alkarmah/storefront/internal/screen"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
)

// ScreenOpen starts a fresh instance of a screen. Work still running for the
// previous instance is discarded when it completes.
func ScreenOpen(registry *screen.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(chi.URLParam(r, "screen"))
		if name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "screen name is required"))
			return
		}
		registry.Open(name)
		logg.Debug(logg.WithScreen(r.Context(), name), "screen.opened")
		responses.WriteSuccess(w, map[string]any{"screen": name, "live": registry.Live()})
	}
}

// ScreenClose disposes a screen so late responses for it are dropped.
func ScreenClose(registry *screen.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(chi.URLParam(r, "screen"))
		if !registry.Close(name) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "screen is not open"))
			return
		}
		logg.Debug(logg.WithScreen(r.Context(), name), "screen.closed")
		w.WriteHeader(http.StatusNoContent)
	}
}

func ScreenList(registry *screen.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"live": registry.Live()})
	}
}
