package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/alkarmah/storefront/api/responses"
	"github.com/alkarmah/storefront/pkg/config"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
)

// Pinger is implemented by the optional stores the gateway depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency; nil entries are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		names := make([]string, 0, len(deps))
		for name, dep := range deps {
			if dep != nil {
				names = append(names, name)
			}
		}
		sort.Strings(names)

		checks := map[string]string{}
		for _, name := range names {
			if err := deps[name].Ping(ctx); err != nil {
				checks[name] = "down"
				responses.WriteError(logg.WithField(ctx, "dependency", name), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeRemoteUnavailable, err, name+" unavailable").WithDetails(checks))
				return
			}
			checks[name] = "up"
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
