package config

const (
	EnvPrefix = "PREVENTIVI"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv    = "PREVENTIVI_APP_ENV"
	EnvPort      = "PREVENTIVI_APP_PORT"
	EnvDBDSN     = "PREVENTIVI_DB_DSN"
	EnvJWTSecret = "PREVENTIVI_JWT_SECRET"
	EnvUseSQLite = "PREVENTIVI_USE_SQLITE"
)
