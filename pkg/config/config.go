// Package config loads application configuration for input module hosts:
// retry policy tuning and signature-table extensions. Configuration is
// read once at startup and immutable afterwards.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
	"github.com/inputmodule/inputmodule-go/pkg/session"
)

// Config is the top-level configuration file structure.
//
//	retry:
//	  max_retries: 3
//	  backoff_schedule: [10ms, 20ms]
//	  reopen: true
//	  write_timeout: 100ms
//	signatures:
//	  - vendor_id: 0x32AC
//	    product_id: 0x0021
//	    kind: led_matrix
//	log_file: events.cbor
type Config struct {
	// Retry tunes the session retry policy.
	Retry RetryConfig `yaml:"retry"`

	// Signatures extends the built-in vendor/product signature table.
	Signatures []SignatureConfig `yaml:"signatures"`

	// LogFile, when set, is the CBOR protocol event log path.
	LogFile string `yaml:"log_file"`
}

// RetryConfig mirrors session.Policy in file form.
type RetryConfig struct {
	MaxRetries        int        `yaml:"max_retries"`
	BackoffSchedule   []Duration `yaml:"backoff_schedule"`
	BackoffInitial    Duration   `yaml:"backoff_initial"`
	BackoffMax        Duration   `yaml:"backoff_max"`
	BackoffMultiplier float64    `yaml:"backoff_multiplier"`
	BackoffJitter     float64    `yaml:"backoff_jitter"`
	Reopen            *bool      `yaml:"reopen"`
	WriteTimeout      Duration   `yaml:"write_timeout"`
	ReadTimeout       Duration   `yaml:"read_timeout"`
}

// SignatureConfig is one signature-table extension entry.
type SignatureConfig struct {
	VendorID  uint16 `yaml:"vendor_id"`
	ProductID uint16 `yaml:"product_id"`
	Kind      string `yaml:"kind"`
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "100ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Parse parses a configuration from YAML bytes and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// validate rejects values the session layer cannot honor.
func (c *Config) validate() error {
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}
	if c.Retry.BackoffMultiplier != 0 && c.Retry.BackoffMultiplier <= 1 {
		return fmt.Errorf("retry.backoff_multiplier must be greater than 1")
	}
	if c.Retry.BackoffJitter < 0 {
		return fmt.Errorf("retry.backoff_jitter must not be negative")
	}
	for i, sig := range c.Signatures {
		if sig.VendorID == 0 {
			return fmt.Errorf("signatures[%d]: vendor_id is required", i)
		}
		if _, err := parseKind(sig.Kind); err != nil {
			return fmt.Errorf("signatures[%d]: %w", i, err)
		}
	}
	return nil
}

// Policy converts the retry section into a session policy.
// Unset fields fall back to session defaults.
func (c *Config) Policy() session.Policy {
	p := session.DefaultPolicy()

	if c.Retry.MaxRetries > 0 {
		p.MaxRetries = c.Retry.MaxRetries
	}
	if c.Retry.Reopen != nil {
		p.Reopen = *c.Retry.Reopen
	}
	if c.Retry.WriteTimeout > 0 {
		p.WriteTimeout = time.Duration(c.Retry.WriteTimeout)
	}
	if c.Retry.ReadTimeout > 0 {
		p.ReadTimeout = time.Duration(c.Retry.ReadTimeout)
	}

	for _, d := range c.Retry.BackoffSchedule {
		p.Backoff.Schedule = append(p.Backoff.Schedule, time.Duration(d))
	}
	p.Backoff.Initial = time.Duration(c.Retry.BackoffInitial)
	p.Backoff.Max = time.Duration(c.Retry.BackoffMax)
	p.Backoff.Multiplier = c.Retry.BackoffMultiplier
	p.Backoff.Jitter = c.Retry.BackoffJitter

	return p
}

// Table builds the signature table: built-ins plus configured extensions.
func (c *Config) Table() (descriptor.Table, error) {
	var extra []descriptor.Signature
	for i, sig := range c.Signatures {
		kind, err := parseKind(sig.Kind)
		if err != nil {
			return descriptor.Table{}, fmt.Errorf("signatures[%d]: %w", i, err)
		}
		extra = append(extra, descriptor.Signature{
			VendorID:  sig.VendorID,
			ProductID: sig.ProductID,
			Kind:      kind,
		})
	}
	return descriptor.NewTable(extra...), nil
}

// parseKind maps a config kind name to a descriptor kind.
func parseKind(s string) (descriptor.Kind, error) {
	switch s {
	case "led_matrix":
		return descriptor.KindLedMatrix, nil
	case "keyboard_backlight":
		return descriptor.KindKeyboardBacklight, nil
	case "other", "":
		return descriptor.KindOther, nil
	default:
		return descriptor.KindOther, fmt.Errorf("unknown device kind %q", s)
	}
}
