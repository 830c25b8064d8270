package middleware

import (
	"net/http"
	"strings"

	"github.com/alkarmah/storefront/internal/screen"
	"github.com/alkarmah/storefront/pkg/logger"
)

// ScreenHeader names the app screen a request was issued from.
const ScreenHeader = "X-Screen"

// Screen binds the request to the live scope of the screen named in
// ScreenHeader. Responses that land after that screen closed or reopened are
// discarded by the services instead of being applied.
func Screen(registry *screen.Registry, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := strings.TrimSpace(r.Header.Get(ScreenHeader))
			if name == "" || registry == nil {
				next.ServeHTTP(w, r)
				return
			}
			scope := registry.Acquire(name)
			ctx := screen.WithScope(r.Context(), scope)
			if logg != nil {
				ctx = logg.WithScreen(ctx, name)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
