package shared

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	AppEnv      string `env:"APP_ENV, default=prod"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`
	HTTPAddr    string `env:"HTTP_ADDR, default=:3000"`
	MetricsAddr string `env:"METRICS_ADDR"`

	Backend  BackendConfig
	Redis    RedisConfig
	Checkout CheckoutConfig
	Images   ImageConfig

	CacheTTL time.Duration `env:"CACHE_TTL, default=5m"`

	WorkspaceIdleTTL time.Duration `env:"WORKSPACE_IDLE_TTL, default=30m"`
	SweepEvery       time.Duration `env:"WORKSPACE_SWEEP_EVERY, default=1m"`
}

type BackendConfig struct {
	BaseURL string        `env:"BACKEND_BASE_URL, default=http://localhost:8080"`
	RPS     int           `env:"BACKEND_RPS, default=20"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=15s"`
}

type RedisConfig struct {
	Addr   string `env:"REDIS_ADDR, default=localhost:6379"`
	Pass   string `env:"REDIS_PASSWORD"`
	DB     int    `env:"REDIS_DB, default=0"`
	Prefix string `env:"SESSION_PREFIX, default=hotelapp"`
	// SessionTTL of zero keeps tokens until logout.
	SessionTTL time.Duration `env:"SESSION_TTL, default=0s"`
}

type CheckoutConfig struct {
	ScriptURL  string  `env:"CHECKOUT_SCRIPT_URL, default=https://checkout.razorpay.com/v1/checkout.js"`
	ServiceFee float64 `env:"CHECKOUT_SERVICE_FEE, default=299"`
	Taxes      float64 `env:"CHECKOUT_TAXES, default=449"`
}

// ImageConfig caps the per-form upload presets. Zero keeps the presets.
type ImageConfig struct {
	MaxWidth int     `env:"IMAGE_MAX_WIDTH, default=0"`
	Quality  float64 `env:"IMAGE_QUALITY, default=0"`
}

func Load() Config {
	var c Config
	if err := envconfig.Process(context.Background(), &c); err != nil {
		log.Fatal().Err(err).Msg("config: process env failed")
	}
	if c.Backend.RPS <= 0 {
		c.Backend.RPS = 20
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = time.Minute
	}
	if c.AppEnv == "dev" || c.AppEnv == "development" {
		log.Warn().Str("backend", c.Backend.BaseURL).Msg("running in development mode")
	}
	return c
}
