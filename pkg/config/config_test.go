package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Defaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if !cfg.App.IsDev() {
		t.Fatalf("expected dev env by default, got %q", cfg.App.Env)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Fatalf("unexpected backend timeout %v", cfg.Backend.Timeout)
	}
	fee, err := cfg.Checkout.Fee()
	if err != nil {
		t.Fatalf("unexpected fee error: %v", err)
	}
	if !fee.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected default delivery fee 50, got %s", fee)
	}
	if len(cfg.Checkout.DeliveryLocations) != 6 {
		t.Fatalf("expected six default delivery locations, got %v", cfg.Checkout.DeliveryLocations)
	}
	if cfg.Session.Store != SessionStoreMemory {
		t.Fatalf("unexpected session store %q", cfg.Session.Store)
	}
}

func TestLoad_MissingBackendURL(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvBackendURL); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvBackendURL, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing backend url to return an error")
	}
}

func TestLoad_NegativeDeliveryFee(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvDeliveryFee, "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected negative delivery fee to be rejected")
	}
}

func TestLoad_RedisStoreRequiresAddress(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvSessionStore, SessionStoreRedis)

	if _, err := Load(); err == nil {
		t.Fatal("expected redis store without address to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error with redis url: %v", err)
	}
}

func TestLoad_DBStoreDefaultsToSQLitePath(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvSessionStore, SessionStoreDB)
	t.Setenv(EnvDBPath, "/tmp/session.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.DB.IsSQLite() || cfg.DB.DSN != "/tmp/session.db" {
		t.Fatalf("unexpected db config %+v", cfg.DB)
	}

	t.Setenv(EnvDBDriver, DBDriverPostgres)
	if _, err := Load(); err == nil {
		t.Fatal("expected postgres without dsn to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvBackendURL, "https://api.example.test/api")
	for _, key := range []string{
		EnvSessionStore,
		EnvDeliveryFee,
		EnvRedisURL,
		EnvRedisAddr,
		EnvDBDriver,
		EnvDBDSN,
		EnvDBPath,
	} {
		unsetEnv(t, key)
	}
}

// unsetEnv removes key for the duration of the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
}

func TestLoad_CORSOriginsSplitOnCommas(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("STOREFRONT_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.App.CORSOrigins) != 2 || cfg.App.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.App.CORSOrigins)
	}
	if cfg.Redis.Enabled() {
		t.Fatal("redis should be disabled without an address")
	}
}
