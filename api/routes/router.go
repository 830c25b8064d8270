package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alkarmah/storefront/api/controllers"
	cartcontrollers "github.com/alkarmah/storefront/api/controllers/cart"
	ordercontrollers "github.com/alkarmah/storefront/api/controllers/orders"
	"github.com/alkarmah/storefront/api/middleware"
	"github.com/alkarmah/storefront/internal/auth"
	"github.com/alkarmah/storefront/internal/cart"
	"github.com/alkarmah/storefront/internal/catalog"
	"github.com/alkarmah/storefront/internal/checkout"
	"github.com/alkarmah/storefront/internal/orders"
	"github.com/alkarmah/storefront/internal/profile"
	"github.com/alkarmah/storefront/internal/screen"
	"github.com/alkarmah/storefront/internal/session"
	"github.com/alkarmah/storefront/internal/wishlist"
	"github.com/alkarmah/storefront/pkg/config"
	"github.com/alkarmah/storefront/pkg/enums"
	"github.com/alkarmah/storefront/pkg/logger"
)

type sessionManager interface {
	Load(ctx context.Context) (session.Snapshot, error)
	Current() session.Snapshot
	RequireUser() (session.Credential, error)
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Deps carries everything the router hands to controllers. RateLimiter and
// the Ready pingers are optional.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Sessions    sessionManager
	Screens     *screen.Registry
	Catalog     catalog.Service
	Cart        cart.Service
	Checkout    checkout.Service
	Auth        auth.Service
	Orders      orders.Service
	Wishlist    wishlist.Service
	Profile     profile.Service
	RateLimiter rateLimiter
	Gatherer    prometheus.Gatherer
	Ready       map[string]controllers.Pinger
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Ready))
	})

	if cfg.Metrics.Enabled && d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)
	requireSession := middleware.RequireSession(d.Sessions, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Language(enums.ParseLanguage(cfg.App.Language), logg))
		r.Use(middleware.Session(d.Sessions, logg))
		r.Use(middleware.Screen(d.Screens, logg))

		r.Route("/session", func(r chi.Router) {
			r.Get("/", controllers.SessionGet(d.Sessions))
			r.Post("/reload", controllers.SessionReload(d.Sessions, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, d.RateLimiter, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
			r.With(middleware.AuthRateLimit(signupPolicy, d.RateLimiter, logg)).Post("/signup", controllers.AuthSignup(d.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
			r.With(requireSession).Post("/password", controllers.AuthChangePassword(d.Auth, logg))
		})

		r.Get("/categories", controllers.CategoryList(d.Catalog, logg))
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(d.Catalog, logg))
			r.Get("/{productId}", controllers.ProductGet(d.Catalog, logg))
			r.Get("/{productId}/price", controllers.ProductPrice(d.Catalog, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(d.Cart, logg))
			r.Post("/refresh", cartcontrollers.CartRefresh(d.Cart, logg))
			r.Post("/lines", cartcontrollers.CartAddLine(d.Cart, logg))
			r.Route("/lines/{lineId}", func(r chi.Router) {
				r.Delete("/", cartcontrollers.CartRemoveLine(d.Cart, logg))
				r.Put("/quantity", cartcontrollers.CartUpdateQuantity(d.Cart, logg))
				r.Post("/increment", cartcontrollers.CartIncrement(d.Cart, logg))
				r.Post("/decrement", cartcontrollers.CartDecrement(d.Cart, logg))
				r.Put("/variant", cartcontrollers.CartSelectVariant(d.Cart, logg))
			})
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutPreview(d.Checkout, logg))
			r.With(requireSession).Post("/", controllers.Checkout(d.Checkout, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/orders", ordercontrollers.List(d.Orders, logg))
			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistList(d.Wishlist, logg))
				r.Post("/", controllers.WishlistAdd(d.Wishlist, logg))
				r.Delete("/{productId}", controllers.WishlistRemove(d.Wishlist, logg))
			})
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(d.Profile, logg))
			r.Put("/", controllers.ProfileUpdate(d.Profile, logg))
		})

		r.Route("/screens", func(r chi.Router) {
			r.Get("/", controllers.ScreenList(d.Screens))
			r.Post("/{screen}", controllers.ScreenOpen(d.Screens, logg))
			r.Delete("/{screen}", controllers.ScreenClose(d.Screens, logg))
		})
	})

	return r
}
