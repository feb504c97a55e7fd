// Package config loads bridge configuration from defaults, an optional
// YAML file, and RCB_* environment overrides, then validates the merged
// result.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rcon-bridge/rcb/internal/admission"
	"github.com/rcon-bridge/rcb/internal/server"
)

// Duration wraps time.Duration with YAML string parsing ("30s", "1m").
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// CategoryQuota configures one admission category.
type CategoryQuota struct {
	Quota  int      `yaml:"quota"`
	Window Duration `yaml:"window"`
}

// AuthConfig configures identity token verification.
type AuthConfig struct {
	// Algorithm is HS256 or RS256. Empty disables verification (the
	// platform layer is then trusted to supply identities).
	Algorithm    string `yaml:"algorithm"`
	Secret       string `yaml:"secret"`
	PublicKeyPEM string `yaml:"public_key_pem"`
}

// AdmissionConfig configures the admission controller and its store.
type AdmissionConfig struct {
	// Store is "memory" or "redis".
	Store         string                   `yaml:"store"`
	RedisAddr     string                   `yaml:"redis_addr"`
	RedisPassword string                   `yaml:"redis_password"`
	RedisDB       int                      `yaml:"redis_db"`
	Categories    map[string]CategoryQuota `yaml:"categories"`
}

// TimeoutConfig bounds remote calls per handler kind plus dialing.
type TimeoutConfig struct {
	Admin Duration `yaml:"admin"`
	Query Duration `yaml:"query"`
	Chat  Duration `yaml:"chat"`
	Game  Duration `yaml:"game"`
	Dial  Duration `yaml:"dial"`
}

// Config is the merged bridge configuration.
type Config struct {
	ListenAddr string              `yaml:"listen_addr"`
	Auth       AuthConfig          `yaml:"auth"`
	Admission  AdmissionConfig     `yaml:"admission"`
	Timeouts   TimeoutConfig       `yaml:"timeouts"`
	Servers    []server.GameServer `yaml:"servers"`
	Bindings   map[string]string   `yaml:"bindings"`
	AuditDir   string              `yaml:"audit_dir"`
}

// Default returns the baseline configuration. Quotas are defaults, not
// policy: every value here is overridable per deployment.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		Admission: AdmissionConfig{
			Store: "memory",
			Categories: map[string]CategoryQuota{
				"admin": {Quota: 3, Window: Duration(60 * time.Second)},
				"query": {Quota: 10, Window: Duration(30 * time.Second)},
				"chat":  {Quota: 5, Window: Duration(30 * time.Second)},
				"game":  {Quota: 5, Window: Duration(60 * time.Second)},
			},
		},
		Timeouts: TimeoutConfig{
			Admin: Duration(5 * time.Second),
			Query: Duration(5 * time.Second),
			Chat:  Duration(3 * time.Second),
			Game:  Duration(5 * time.Second),
			Dial:  Duration(5 * time.Second),
		},
		Bindings: map[string]string{},
		AuditDir: "logs",
	}
}

// Categories converts to the admission controller's configuration.
func (c *Config) Categories() map[string]admission.CategoryConfig {
	out := make(map[string]admission.CategoryConfig, len(c.Admission.Categories))
	for name, q := range c.Admission.Categories {
		out[name] = admission.CategoryConfig{Quota: q.Quota, Window: time.Duration(q.Window)}
	}
	return out
}
