package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every configuration variable.
const EnvPrefix = "PUPUSAPOS"

type Config struct {
	App     AppConfig
	API     APIConfig
	Store   StoreConfig
	Metrics MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PUPUSAPOS_APP_ENV" default:"production"`
	LogLevel     string `envconfig:"PUPUSAPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PUPUSAPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "development")
}

type APIConfig struct {
	// BaseURL points at the backend, e.g. http://localhost:5000/api.
	BaseURL string        `envconfig:"PUPUSAPOS_API_URL" required:"true"`
	Timeout time.Duration `envconfig:"PUPUSAPOS_API_TIMEOUT" default:"30s"`
}

func (a APIConfig) validate() error {
	u, err := url.Parse(a.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api base url %q", a.BaseURL)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}
	return nil
}

type StoreConfig struct {
	// Path locates the sqlite file holding the credential slots.
	Path string `envconfig:"PUPUSAPOS_STORE_PATH" default:"pupusapos.db"`
}

type MetricsConfig struct {
	// Addr, when set, exposes /metrics on the given listen address.
	Addr string `envconfig:"PUPUSAPOS_METRICS_ADDR"`
}
