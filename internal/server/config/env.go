package config

import (
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays values from environment variables:
//
//	PORT               HTTP port (becomes ":PORT")
//	HTTP_ADDR          full HTTP bind address, wins over PORT
//	DATABASE_URL       Postgres DSN
//	MONGODB_URI        MongoDB URI, used when DATABASE_URL is unset
//	JWT_SECRET         token signing secret
//	TOKEN_TTL          token lifetime, Go duration
//	BCRYPT_COST        bcrypt work factor
//	REDIS_ADDR         response cache address
//	CORS_ORIGIN        comma separated list of allowed origins
//	TRUSTED_PROXIES    comma separated proxy IPs or CIDRs
//	GRPC_HEALTH_ADDR   gRPC health service address
//	LOG_LEVEL, LOG_FORMAT, APP_MODE
//
// Malformed numeric or duration values are ignored.
func parseEnv(c *Config, lookup func(string) (string, bool)) {
	get := func(k string) string {
		v, ok := lookup(k)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}

	if v := get("PORT"); v != "" {
		c.HTTPAddr = ":" + v
	}
	if v := get("HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := get("MONGODB_URI"); v != "" {
		c.DatabaseDSN = v
	}
	if v := get("DATABASE_URL"); v != "" {
		c.DatabaseDSN = v
	}
	if v := get("JWT_SECRET"); v != "" {
		c.SecretKey = v
	}
	if v := get("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.TokenValidityDuration = d
		}
	}
	if v := get("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BcryptCost = n
		}
	}
	if v := get("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := get("CORS_ORIGIN"); v != "" {
		c.CORSOrigins = splitOrigins(v)
	}
	if v := get("TRUSTED_PROXIES"); v != "" {
		c.TrustedProxies = splitList(v)
	}
	if v := get("GRPC_HEALTH_ADDR"); v != "" {
		c.GRPCHealthAddr = v
	}
	if v := get("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := get("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := get("APP_MODE"); v != "" {
		c.Mode = strings.ToLower(v)
	}
}

func splitOrigins(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
