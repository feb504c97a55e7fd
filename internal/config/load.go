package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load merges Default() + optional YAML file + RCB_* env overrides and
// validates the result. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies RCB_* environment variables on top of the
// file layer. Unparseable values are ignored in favor of the layer
// below, matching the file-over-default precedence.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RCB_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("RCB_AUDIT_DIR"); v != "" {
		cfg.AuditDir = v
	}

	if v := os.Getenv("RCB_AUTH_ALGORITHM"); v != "" {
		cfg.Auth.Algorithm = v
	}
	if v := os.Getenv("RCB_AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("RCB_AUTH_PUBLIC_KEY_PEM"); v != "" {
		cfg.Auth.PublicKeyPEM = v
	}

	if v := os.Getenv("RCB_ADMISSION_STORE"); v != "" {
		cfg.Admission.Store = v
	}
	if v := os.Getenv("RCB_REDIS_ADDR"); v != "" {
		cfg.Admission.RedisAddr = v
	}
	if v := os.Getenv("RCB_REDIS_PASSWORD"); v != "" {
		cfg.Admission.RedisPassword = v
	}
	if v := os.Getenv("RCB_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Admission.RedisDB = db
		}
	}

	applyDurationEnv("RCB_TIMEOUT_ADMIN", &cfg.Timeouts.Admin)
	applyDurationEnv("RCB_TIMEOUT_QUERY", &cfg.Timeouts.Query)
	applyDurationEnv("RCB_TIMEOUT_CHAT", &cfg.Timeouts.Chat)
	applyDurationEnv("RCB_TIMEOUT_GAME", &cfg.Timeouts.Game)
	applyDurationEnv("RCB_TIMEOUT_DIAL", &cfg.Timeouts.Dial)
}

func applyDurationEnv(name string, target *Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if parsed, err := time.ParseDuration(v); err == nil {
		*target = Duration(parsed)
	}
}
