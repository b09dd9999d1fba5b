package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/vistoriapro/vistoria/pkg/cryptox"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	LimiterMemory = "memory"
	LimiterRedis  = "redis"
)

type Config struct {
	Env                 string        `envconfig:"ENV" default:"dev"` // dev, staging, prod
	LogLevel            string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat           string        `envconfig:"LOG_FORMAT" default:"json"`
	Port                int           `envconfig:"PORT" default:"8080"`
	ShutdownGracePeriod time.Duration `envconfig:"SHUTDOWN_GRACE_PERIOD" default:"10s"`

	DBDriver     string `envconfig:"ACCESS_DB_DRIVER" default:"sqlite"`
	DatabaseFile string `envconfig:"ACCESS_DATABASE_FILE" default:"access.db"`
	DatabaseURL  string `envconfig:"ACCESS_DATABASE_URL"`

	LinkSecret     string        `envconfig:"ACCESS_LINK_SECRET" required:"true"`
	LinkIssuer     string        `envconfig:"ACCESS_LINK_ISSUER" default:"vistoria-access"`
	LinkDefaultTTL time.Duration `envconfig:"ACCESS_LINK_DEFAULT_TTL" default:"168h"`
	LinkMaxTTL     time.Duration `envconfig:"ACCESS_LINK_MAX_TTL" default:"720h"`
	LinkBaseURL    string        `envconfig:"ACCESS_LINK_BASE_URL" default:"https://app.vistoriapro.com.br/landlord"`

	// UnlimitedEmails is comma separated.
	UnlimitedEmails []string `envconfig:"ACCESS_UNLIMITED_EMAILS"`

	IDPJWKSURL     string        `envconfig:"IDP_JWKS_URL" required:"true"`
	IDPIssuer      string        `envconfig:"IDP_ISSUER"`
	IDPAudience    string        `envconfig:"IDP_AUDIENCE"`
	IDPJWKSRefresh time.Duration `envconfig:"IDP_JWKS_REFRESH" default:"15m"`

	RateLimitBackend string `envconfig:"RATELIMIT_BACKEND" default:"memory"`
	RedisAddr        string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	HousekeepingInterval time.Duration `envconfig:"HOUSEKEEPING_INTERVAL" default:"1h"`
	GrantRetention       time.Duration `envconfig:"ACCESS_GRANT_RETENTION" default:"720h"`
}

// LoadConfig reads the environment and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if len(c.LinkSecret) < cryptox.MinSecretLength {
		errs = append(errs, fmt.Errorf("ACCESS_LINK_SECRET must be at least %d bytes", cryptox.MinSecretLength))
	}
	if c.LinkDefaultTTL <= 0 || c.LinkMaxTTL <= 0 {
		errs = append(errs, errors.New("link TTLs must be positive"))
	} else if c.LinkDefaultTTL > c.LinkMaxTTL {
		errs = append(errs, errors.New("ACCESS_LINK_DEFAULT_TTL exceeds ACCESS_LINK_MAX_TTL"))
	}
	if u, err := url.Parse(c.LinkBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("ACCESS_LINK_BASE_URL must be an absolute URL"))
	}

	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("ACCESS_DATABASE_FILE is required for sqlite"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("ACCESS_DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ACCESS_DB_DRIVER %q", c.DBDriver))
	}

	c.RateLimitBackend = strings.ToLower(strings.TrimSpace(c.RateLimitBackend))
	switch c.RateLimitBackend {
	case LimiterMemory:
	case LimiterRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis rate limiter"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RATELIMIT_BACKEND %q", c.RateLimitBackend))
	}

	return errors.Join(errs...)
}

// IsProduction is true for ENV=prod.
func (c *Config) IsProduction() bool {
	return c != nil && c.Env == "prod"
}
