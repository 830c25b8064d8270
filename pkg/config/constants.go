package config

// EnvPrefix namespaces the generated keys; tagged names are the documented ones.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
	SessionStoreDB     = "db"
)

const (
	EnvAppEnv        = "STOREFRONT_APP_ENV"
	EnvPort          = "STOREFRONT_APP_PORT"
	EnvBackendURL    = "STOREFRONT_BACKEND_URL"
	EnvDeliveryFee   = "STOREFRONT_DELIVERY_FEE"
	EnvDeliveryLocs  = "STOREFRONT_DELIVERY_LOCATIONS"
	EnvSessionStore  = "STOREFRONT_SESSION_STORE"
	EnvDBDriver      = "STOREFRONT_DB_DRIVER"
	EnvDBDSN         = "STOREFRONT_DB_DSN"
	EnvDBPath        = "STOREFRONT_DB_PATH"
	EnvRedisURL      = "STOREFRONT_REDIS_URL"
	EnvRedisAddr     = "STOREFRONT_REDIS_ADDR"
	EnvLoginLimit    = "STOREFRONT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT"
	EnvLoginWindow   = "STOREFRONT_AUTH_RATE_LIMIT_LOGIN_WINDOW"
	EnvMetricsEnable = "STOREFRONT_METRICS_ENABLED"
)
