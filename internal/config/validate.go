package config

import "fmt"

// Validate checks the merged configuration for internal consistency.
func Validate(cfg *Config) error {
	if cfg.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}

	switch cfg.Admission.Store {
	case "memory":
	case "redis":
		if cfg.Admission.RedisAddr == "" {
			return fmt.Errorf("admission.redis_addr is required when store is redis")
		}
	default:
		return fmt.Errorf("admission.store must be memory or redis, got %q", cfg.Admission.Store)
	}

	if len(cfg.Admission.Categories) == 0 {
		return fmt.Errorf("at least one admission category is required")
	}
	for name, q := range cfg.Admission.Categories {
		if q.Quota <= 0 {
			return fmt.Errorf("admission category %q: quota must be positive", name)
		}
		if q.Window <= 0 {
			return fmt.Errorf("admission category %q: window must be positive", name)
		}
	}

	for name, d := range map[string]Duration{
		"timeouts.admin": cfg.Timeouts.Admin,
		"timeouts.query": cfg.Timeouts.Query,
		"timeouts.chat":  cfg.Timeouts.Chat,
		"timeouts.game":  cfg.Timeouts.Game,
		"timeouts.dial":  cfg.Timeouts.Dial,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	switch cfg.Auth.Algorithm {
	case "":
	case "HS256":
		if cfg.Auth.Secret == "" {
			return fmt.Errorf("auth.secret is required for HS256")
		}
	case "RS256":
		if cfg.Auth.PublicKeyPEM == "" {
			return fmt.Errorf("auth.public_key_pem is required for RS256")
		}
	default:
		return fmt.Errorf("auth.algorithm must be HS256 or RS256, got %q", cfg.Auth.Algorithm)
	}

	seen := make(map[string]bool, len(cfg.Servers))
	for _, srv := range cfg.Servers {
		if srv.Name == "" || srv.Addr == "" {
			return fmt.Errorf("every server needs a name and addr")
		}
		if seen[srv.Name] {
			return fmt.Errorf("duplicate server name %q", srv.Name)
		}
		seen[srv.Name] = true
	}

	for identity, serverName := range cfg.Bindings {
		if !seen[serverName] {
			return fmt.Errorf("binding %q references unknown server %q", identity, serverName)
		}
	}

	return nil
}
