package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Drafts       DraftsConfig
	Translate    TranslateConfig
	Render       RenderConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(cfg.FeatureFlags); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PREVENTIVI_APP_ENV" required:"true"`
	Port         string `envconfig:"PREVENTIVI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PREVENTIVI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PREVENTIVI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PREVENTIVI_DB_DSN"`
	Driver string `envconfig:"PREVENTIVI_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"PREVENTIVI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PREVENTIVI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PREVENTIVI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PREVENTIVI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validate(flags FeatureFlagsConfig) error {
	if db.DSN == "" && !flags.UseSQLite {
		return fmt.Errorf("%s is required unless %s is enabled", EnvDBDSN, EnvUseSQLite)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"PREVENTIVI_REDIS_URL"`
	Address      string        `envconfig:"PREVENTIVI_REDIS_ADDR"`
	Password     string        `envconfig:"PREVENTIVI_REDIS_PASSWORD"`
	DB           int           `envconfig:"PREVENTIVI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PREVENTIVI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PREVENTIVI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PREVENTIVI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PREVENTIVI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PREVENTIVI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret   string        `envconfig:"PREVENTIVI_JWT_SECRET" required:"true"`
	Issuer   string        `envconfig:"PREVENTIVI_JWT_ISSUER" default:"preventivi-admin"`
	TokenTTL time.Duration `envconfig:"PREVENTIVI_JWT_TOKEN_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PREVENTIVI_CORS_ALLOWED_ORIGINS" default:"*"`
}

// DraftsConfig bounds the in-memory editing sessions. Abandoned
// sessions are evicted after the TTL of idle time.
type DraftsConfig struct {
	SessionTTL time.Duration `envconfig:"PREVENTIVI_DRAFT_SESSION_TTL" default:"2h"`
}

// TranslateConfig bounds the two translation backends. The upstream services
// publish no SLA, so every attempt carries its own timeout.
type TranslateConfig struct {
	GoogleURL      string        `envconfig:"PREVENTIVI_TRANSLATE_GOOGLE_URL" default:"https://translate.googleapis.com/translate_a/single"`
	LibreURL       string        `envconfig:"PREVENTIVI_TRANSLATE_LIBRE_URL" default:"https://libretranslate.de/translate"`
	AttemptTimeout time.Duration `envconfig:"PREVENTIVI_TRANSLATE_ATTEMPT_TIMEOUT" default:"8s"`
	CacheTTL       time.Duration `envconfig:"PREVENTIVI_TRANSLATE_CACHE_TTL" default:"30m"`
}

type RenderConfig struct {
	URL     string        `envconfig:"PREVENTIVI_RENDER_URL"`
	Timeout time.Duration `envconfig:"PREVENTIVI_RENDER_TIMEOUT" default:"30s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PREVENTIVI_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PREVENTIVI_AUTO_MIGRATE" default:"false"`
}
