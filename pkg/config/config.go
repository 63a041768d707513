// Package config provides unified configuration for the vestibule gateway.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (VESTIBULE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the vestibule gateway.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Backend       BackendConfig       `yaml:"backend"`
	Session       SessionConfig       `yaml:"session"`
	RateLimit     RateLimitConfig     `yaml:"ratelimit"`
	Audit         AuditConfig         `yaml:"audit"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 60s
}

// BackendConfig holds identity-governance backend settings.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"` // required
	Timeout time.Duration `yaml:"timeout"`  // default: 30s
}

// SessionConfig holds session cookie settings.
type SessionConfig struct {
	Secret       string        `yaml:"secret"`        // signing secret, required
	SecretFile   string        `yaml:"secret_file"`   // _file variant for secret
	TTL          time.Duration `yaml:"ttl"`           // default: 4h
	CookieDomain string        `yaml:"cookie_domain"` // optional
	CookieSecure bool          `yaml:"cookie_secure"` // default: true
}

// RateLimitConfig holds rate limiter settings.
type RateLimitConfig struct {
	Type              string      `yaml:"type"`                // "none", "memory", or "redis", default: "none"
	RequestsPerMinute int         `yaml:"requests_per_minute"` // default: 600
	Redis             RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis-specific limiter settings.
type RedisConfig struct {
	Addr         string `yaml:"addr"`
	Password     string `yaml:"password"`
	PasswordFile string `yaml:"password_file"` // _file variant for password
	DB           int    `yaml:"db"`
}

// AuditConfig holds delegation audit trail settings.
type AuditConfig struct {
	Type     string         `yaml:"type"`     // "none", "memory", or "postgres", default: "none"
	MaxSize  int            `yaml:"max_size"` // for memory recorder, default: 10000
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 10
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config populated with built-in default values.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Backend: BackendConfig{
			Timeout: 30 * time.Second,
		},
		Session: SessionConfig{
			TTL:          4 * time.Hour,
			CookieSecure: true,
		},
		RateLimit: RateLimitConfig{
			Type:              "none",
			RequestsPerMinute: 600,
		},
		Audit: AuditConfig{
			Type:    "none",
			MaxSize: 10000,
			Postgres: PostgresConfig{
				MaxConns: 10,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
