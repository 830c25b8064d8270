package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/alkarmah/storefront/api/controllers"
	"github.com/alkarmah/storefront/api/routes"
	"github.com/alkarmah/storefront/internal/auth"
	"github.com/alkarmah/storefront/internal/backend"
	"github.com/alkarmah/storefront/internal/cart"
	"github.com/alkarmah/storefront/internal/catalog"
	"github.com/alkarmah/storefront/internal/checkout"
	"github.com/alkarmah/storefront/internal/orders"
	"github.com/alkarmah/storefront/internal/profile"
	"github.com/alkarmah/storefront/internal/screen"
	"github.com/alkarmah/storefront/internal/session"
	"github.com/alkarmah/storefront/internal/wishlist"
	"github.com/alkarmah/storefront/pkg/config"
	"github.com/alkarmah/storefront/pkg/db"
	"github.com/alkarmah/storefront/pkg/logger"
	"github.com/alkarmah/storefront/pkg/metrics"
	"github.com/alkarmah/storefront/pkg/migrate"
	"github.com/alkarmah/storefront/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		var closeErr error
		for i := len(closers) - 1; i >= 0; i-- {
			closeErr = multierr.Append(closeErr, closers[i].Close())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error releasing resources", closeErr)
		}
	}()

	ready := map[string]controllers.Pinger{}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		closers = append(closers, redisClient)
		ready["redis"] = redisClient
	}

	stores, err := openStores(ctx, cfg, logg, redisClient, &closers, ready)
	requireResource(ctx, logg, "device stores", err)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewStorefrontMetrics(reg)

	client, err := backend.New(backend.Options{Config: cfg.Backend, Logger: logg, Metrics: m})
	requireResource(ctx, logg, "backend client", err)

	sessions, err := session.NewManager(stores.session, logg)
	requireResource(ctx, logg, "session manager", err)
	snap, err := sessions.Load(ctx)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "session.load_failed_starting_anonymous")
	}

	catalogSvc, err := catalog.NewService(client, logg)
	requireResource(ctx, logg, "catalog service", err)

	basket := cart.NewBasket()
	cartSvc, err := cart.NewService(cart.ServiceParams{
		Basket:   basket,
		Products: catalogSvc,
		Remote:   client,
		Sessions: sessions,
		Logger:   logg,
		Metrics:  m,
	})
	requireResource(ctx, logg, "cart service", err)

	fee, err := cfg.Checkout.Fee()
	requireResource(ctx, logg, "delivery fee", err)
	composer, err := checkout.NewComposer(fee)
	requireResource(ctx, logg, "checkout composer", err)
	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		Basket:    basket,
		Composer:  composer,
		Orders:    client,
		Sessions:  sessions,
		Currency:  cfg.Checkout.Currency,
		Locations: cfg.Checkout.DeliveryLocations,
		Logger:    logg,
		Metrics:   m,
	})
	requireResource(ctx, logg, "checkout service", err)

	authSvc, err := auth.NewService(auth.ServiceParams{Accounts: client, Sessions: sessions, Logger: logg})
	requireResource(ctx, logg, "auth service", err)
	ordersSvc, err := orders.NewService(client, sessions, logg)
	requireResource(ctx, logg, "orders service", err)
	wishlistSvc, err := wishlist.NewService(client, sessions, logg)
	requireResource(ctx, logg, "wishlist service", err)
	profileSvc, err := profile.NewService(stores.profile, sessions, logg)
	requireResource(ctx, logg, "profile service", err)

	screens := screen.NewRegistry(ctx)
	defer screens.CloseAll()

	deps := routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Sessions: sessions,
		Screens:  screens,
		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Auth:     authSvc,
		Orders:   ordersSvc,
		Wishlist: wishlistSvc,
		Profile:  profileSvc,
		Gatherer: reg,
		Ready:    ready,
	}
	if redisClient != nil {
		deps.RateLimiter = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"addr":          addr,
		"session_store": cfg.Session.Store,
		"session_state": string(snap.State),
	})
	logg.Info(ctx, "starting storefront gateway")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "storefront gateway stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
		logg.Info(ctx, "storefront gateway stopped")
	}
}

type deviceStores struct {
	session session.Store
	profile profile.Store
}

// openStores opens the credential and profile stores on the backend selected
// by the session store setting.
func openStores(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, closers *[]io.Closer, ready map[string]controllers.Pinger) (deviceStores, error) {
	device := cfg.Session.Device
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		sessionStore, err := session.NewRedisStore(redisClient, device, cfg.Redis.SessionTTL)
		if err != nil {
			return deviceStores{}, err
		}
		profileStore, err := profile.NewRedisStore(redisClient, device)
		if err != nil {
			return deviceStores{}, err
		}
		return deviceStores{session: sessionStore, profile: profileStore}, nil
	case config.SessionStoreDB:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return deviceStores{}, err
		}
		*closers = append(*closers, dbClient)
		ready["db"] = dbClient

		sqlDB, err := dbClient.DB().DB()
		if err != nil {
			return deviceStores{}, err
		}
		if err := migrate.Up(ctx, sqlDB, dbClient.Dialect()); err != nil {
			return deviceStores{}, err
		}
		sessionStore, err := session.NewDBStore(dbClient.DB(), device)
		if err != nil {
			return deviceStores{}, err
		}
		profileStore, err := profile.NewDBStore(dbClient, device)
		if err != nil {
			return deviceStores{}, err
		}
		return deviceStores{session: sessionStore, profile: profileStore}, nil
	default:
		return deviceStores{session: session.NewMemoryStore(), profile: profile.NewMemoryStore()}, nil
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
