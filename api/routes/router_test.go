package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	"github.com/alkarmah/storefront/pkg/logger"
	"github.com/alkarmah/storefront/pkg/metrics"
)

// fakeBackend serves the handful of storefront endpoints the flows touch.
type fakeBackend struct {
	mu     sync.Mutex
	orders []backend.OrderRequest
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/products/p1":
		_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"p1","name":{"en":"Barley"},"price":12,"stock":50,"image":"https://img/p1.jpg"}}`)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/products/"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Product not found"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
		_, _ = io.WriteString(w, `{"user":{"_id":"u-1","name":"Sara","email":"sara@example.com"},"token":"opaque-token"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/api/cart/add":
		_, _ = io.WriteString(w, `{"message":"Item added to cart"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/api/orders":
		var req backend.OrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.orders = append(f.orders, req)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"_id":"o-1","status":"Pending"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestRouter(t *testing.T) (http.Handler, *fakeBackend) {
	t.Helper()

	fake := &fakeBackend{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		App:      config.AppConfig{Env: "dev"},
		Checkout: config.CheckoutConfig{DeliveryFee: "50", Currency: "QAR", DeliveryLocations: []string{"Al Sadd", "West Bay"}},
		Metrics:  config.MetricsConfig{Enabled: true},
	}
	logg := logger.Nop()
	reg := prometheus.NewRegistry()
	m := metrics.NewStorefrontMetrics(reg)

	client, err := backend.New(backend.Options{
		Config:     config.BackendConfig{BaseURL: srv.URL + "/api", Timeout: time.Second},
		HTTPClient: srv.Client(),
		Logger:     logg,
		Metrics:    m,
	})
	require.NoError(t, err)

	sessions, err := session.NewManager(session.NewMemoryStore(), logg)
	require.NoError(t, err)
	_, err = sessions.Load(context.Background())
	require.NoError(t, err)

	catalogSvc, err := catalog.NewService(client, logg)
	require.NoError(t, err)

	basket := cart.NewBasket()
	cartSvc, err := cart.NewService(cart.ServiceParams{Basket: basket, Products: catalogSvc, Remote: client, Sessions: sessions, Logger: logg, Metrics: m})
	require.NoError(t, err)

	fee, err := cfg.Checkout.Fee()
	require.NoError(t, err)
	composer, err := checkout.NewComposer(fee)
	require.NoError(t, err)
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
	require.NoError(t, err)

	authSvc, err := auth.NewService(auth.ServiceParams{Accounts: client, Sessions: sessions, Logger: logg})
	require.NoError(t, err)
	ordersSvc, err := orders.NewService(client, sessions, logg)
	require.NoError(t, err)
	wishlistSvc, err := wishlist.NewService(client, sessions, logg)
	require.NoError(t, err)
	profileSvc, err := profile.NewService(profile.NewMemoryStore(), sessions, logg)
	require.NoError(t, err)

	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logg,
		Sessions: sessions,
		Screens:  screen.NewRegistry(context.Background()),
		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Auth:     authSvc,
		Orders:   ordersSvc,
		Wishlist: wishlistSvc,
		Profile:  profileSvc,
		Gatherer: reg,
	}), fake
}

func call(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func summaryOf(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	data, ok := payload["data"].(map[string]any)
	require.True(t, ok, "missing data: %v", payload)
	summary, ok := data["summary"].(map[string]any)
	require.True(t, ok, "missing summary: %v", data)
	return summary
}

func TestCheckoutFlow(t *testing.T) {
	h, fake := newTestRouter(t)

	code, body := call(t, h, http.MethodPost, "/api/v1/cart/lines", `{"product_id":"p1","variant":"10kg","quantity":20}`)
	require.Equal(t, http.StatusCreated, code, body)

	code, body = call(t, h, http.MethodGet, "/api/v1/checkout", "")
	require.Equal(t, http.StatusOK, code)
	summary := summaryOf(t, body)
	assert.Equal(t, "240", summary["basket_total"])
	assert.Equal(t, "50", summary["delivery_fee"])
	assert.Equal(t, "290", summary["total"])

	code, _ = call(t, h, http.MethodPost, "/api/v1/checkout", `{"delivery_location":"Al Sadd"}`)
	require.Equal(t, http.StatusUnauthorized, code)

	code, body = call(t, h, http.MethodPost, "/api/v1/session/login", `{"email":"Sara@Example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, code, body)

	code, body = call(t, h, http.MethodPost, "/api/v1/checkout", `{"delivery_location":"al sadd"}`)
	require.Equal(t, http.StatusCreated, code, body)
	receipt := body["data"].(map[string]any)
	assert.Equal(t, "o-1", receipt["order_id"])
	assert.Equal(t, "Al Sadd", receipt["delivery_location"])

	require.Len(t, fake.orders, 1)
	assert.True(t, fake.orders[0].TotalAmount.Equal(decimal.NewFromInt(290)))
	assert.Equal(t, "u-1", fake.orders[0].User)
	require.Len(t, fake.orders[0].Items, 1)
	assert.Equal(t, 20, fake.orders[0].Items[0].Quantity)

	code, body = call(t, h, http.MethodGet, "/api/v1/checkout", "")
	require.Equal(t, http.StatusOK, code)
	summary = summaryOf(t, body)
	assert.Equal(t, "0", summary["basket_total"])
	assert.Equal(t, "50", summary["total"])
}

func TestQuantityClampOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t)

	code, body := call(t, h, http.MethodPost, "/api/v1/cart/lines", `{"product_id":"p1","quantity":1}`)
	require.Equal(t, http.StatusCreated, code, body)
	lineID := body["data"].(map[string]any)["line"].(map[string]any)["id"].(string)

	code, body = call(t, h, http.MethodPut, "/api/v1/cart/lines/"+lineID+"/quantity", `{"quantity":"60"}`)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, float64(50), details["max"])

	code, body = call(t, h, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "600", body["data"].(map[string]any)["total"])

	code, body = call(t, h, http.MethodDelete, "/api/v1/cart/lines/"+lineID, "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "0", body["data"].(map[string]any)["total"])
}

func TestUnknownProductIsNotFound(t *testing.T) {
	h, _ := newTestRouter(t)
	code, body := call(t, h, http.MethodGet, "/api/v1/products/ghost", "")
	assert.Equal(t, http.StatusNotFound, code, body)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h, _ := newTestRouter(t)
	for _, path := range []string{"/api/v1/orders", "/api/v1/wishlist"} {
		code, _ := call(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, code, path)
	}
}

func TestSessionLifecycle(t *testing.T) {
	h, _ := newTestRouter(t)

	code, body := call(t, h, http.MethodGet, "/api/v1/session", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "anonymous", body["data"].(map[string]any)["state"])

	code, _ = call(t, h, http.MethodPost, "/api/v1/session/login", `{"email":"sara@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, code)
	_, body = call(t, h, http.MethodGet, "/api/v1/session", "")
	assert.Equal(t, "authenticated", body["data"].(map[string]any)["state"])

	code, _ = call(t, h, http.MethodPost, "/api/v1/session/logout", "")
	require.Equal(t, http.StatusOK, code)
	_, body = call(t, h, http.MethodGet, "/api/v1/session", "")
	assert.Equal(t, "anonymous", body["data"].(map[string]any)["state"])
}

func TestProfileFollowsSignedInUser(t *testing.T) {
	h, _ := newTestRouter(t)

	code, _ := call(t, h, http.MethodPost, "/api/v1/session/login", `{"email":"sara@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, code)

	code, body := call(t, h, http.MethodGet, "/api/v1/profile", "")
	require.Equal(t, http.StatusOK, code, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Sara", data["name"])
	assert.Equal(t, "sara@example.com", data["email"])

	code, body = call(t, h, http.MethodPut, "/api/v1/profile", `{"name":"Sara","email":"sara@example.com","date_of_birth":"1994-03-02"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, []any{"Date of Birth"}, body["data"].(map[string]any)["changed"])
}

func TestHealthAndMetrics(t *testing.T) {
	h, _ := newTestRouter(t)

	code, _ := call(t, h, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = call(t, h, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, code)

	_, _ = call(t, h, http.MethodGet, "/api/v1/products/p1", "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_backend_calls_total")
}
