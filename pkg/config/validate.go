package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// backend.base_url is required.
	if c.Backend.BaseURL == "" {
		errs = append(errs, fmt.Errorf("backend.base_url is required"))
	}

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// session.secret or session.secret_file is required.
	if c.Session.Secret == "" && c.Session.SecretFile == "" {
		errs = append(errs, fmt.Errorf("session.secret or session.secret_file is required"))
	}

	// ratelimit.type must be a known value.
	switch c.RateLimit.Type {
	case "none", "memory", "redis":
		// valid
	default:
		errs = append(errs, fmt.Errorf("ratelimit.type must be \"none\", \"memory\", or \"redis\", got %q", c.RateLimit.Type))
	}

	// If ratelimit.type is "redis", an address must be set.
	if c.RateLimit.Type == "redis" && c.RateLimit.Redis.Addr == "" {
		errs = append(errs, fmt.Errorf("ratelimit.redis.addr is required when ratelimit.type is \"redis\""))
	}

	// audit.type must be a known value.
	switch c.Audit.Type {
	case "none", "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("audit.type must be \"none\", \"memory\", or \"postgres\", got %q", c.Audit.Type))
	}

	// If audit.type is "postgres", DSN or DSNFile must be set.
	if c.Audit.Type == "postgres" {
		if c.Audit.Postgres.DSN == "" && c.Audit.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("audit.postgres.dsn or audit.postgres.dsn_file is required when audit.type is \"postgres\""))
		}
	}

	return errors.Join(errs...)
}
