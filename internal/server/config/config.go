// Package config handles configuration for the server, including defaults,
// .env and environment overlay, an optional JSON file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/eventgraph/internal/common"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"

	// devSecretKey is only ever used in development mode.
	devSecretKey = "dev-secret-do-not-use-in-production"
)

var (
	ErrMissingDSN    = errors.New("database DSN is required (DATABASE_URL or MONGODB_URI)")
	ErrMissingSecret = errors.New("token signing secret is required (JWT_SECRET)")
	ErrInvalidProxy  = errors.New("invalid trusted proxy")
)

// Config holds runtime settings for the eventgraph server.
//
// Fields:
//   - HTTPAddr: bind address for the GraphQL HTTP endpoint.
//   - DatabaseDSN: postgres:// (pgx) or mongodb:// connection string.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Required outside development.
//   - TokenValidityDuration: session token lifetime.
//   - BcryptCost: work factor for password hashes.
//   - DefaultPageSize / MaxPageSize: pagination defaults for list queries.
//   - RedisAddr / CacheTTL: anonymous query response cache; disabled when RedisAddr is empty.
//   - RateLimitRPS / RateLimitBurst: per client IP token bucket.
//   - CORSOrigins: allowed browser origins.
//   - TrustedProxies: IPs or CIDRs whose X-Forwarded-For is honoured; empty trusts none.
//   - GRPCHealthAddr: bind address for the gRPC health service; disabled when empty.
//   - LogLevel / LogFormat: slog level and handler ("json" or "text").
//   - Mode: "production" or "development".
//   - ShutdownTimeout: grace period for in-flight requests.
type Config struct {
	HTTPAddr              string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	BcryptCost            int
	DefaultPageSize       int
	MaxPageSize           int
	RedisAddr             string
	CacheTTL              time.Duration
	RateLimitRPS          float64
	RateLimitBurst        int
	CORSOrigins           []string
	TrustedProxies        []string
	GRPCHealthAddr        string
	LogLevel              string
	LogFormat             string
	Mode                  string
	ShutdownTimeout       time.Duration

	// DevSecret is set when Validate substituted the development secret.
	DevSecret bool
}

// LoadDefaults populates Config with defaults. The DSN and secret are left
// empty on purpose: they must come from the environment.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":4000"
	c.TokenValidityDuration = 24 * time.Hour
	c.BcryptCost = 10
	c.DefaultPageSize = common.DefaultPageSize
	c.MaxPageSize = common.MaxPageSize
	c.CacheTTL = 30 * time.Second
	c.RateLimitRPS = 20
	c.RateLimitBurst = 40
	c.CORSOrigins = []string{"http://localhost:3000"}
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.Mode = ModeProduction
	c.ShutdownTimeout = 10 * time.Second
}

// Validate checks required settings. In development mode a missing secret
// is replaced by a fixed development value and DevSecret is set so the
// caller can warn about it.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return ErrMissingDSN
	}
	if c.SecretKey == "" {
		if c.Mode != ModeDevelopment {
			return ErrMissingSecret
		}
		c.SecretKey = devSecretKey
		c.DevSecret = true
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidProxy, p)
		}
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = common.DefaultPageSize
	}
	if c.MaxPageSize < c.DefaultPageSize {
		c.MaxPageSize = c.DefaultPageSize
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from .env, the process environment, an optional JSON file (-c/-config) and
// finally command-line flags.
func LoadConfig() (*Config, error) {
	// a missing .env is fine, production sets real variables
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, os.LookupEnv)

	args := os.Args[1:]
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
