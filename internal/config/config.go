// Package config loads this server's wiring configuration from a single
// YAML file: per-tool cache TTLs, per-tool rate-limit buckets, the
// identity/authorization table's location, the audit directory and
// retention window, and the resource allowlist roots. The loader itself
// stays intentionally thin — it parses and validates, then hands the
// typed result to main for wiring, the way the teacher's own
// internal/config/loader.go treats YAML as one input among several
// rather than the source of truth (here it is closer to the latter,
// since spec.md rules out any database-backed config store).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the top-level shape of the server's config.yaml.
type File struct {
	Cache       CacheConfig       `yaml:"cache"`
	RateLimit   map[string]Bucket `yaml:"rate_limit"`
	Audit       AuditConfig       `yaml:"audit"`
	Identities  IdentitiesConfig  `yaml:"identities"`
	Resources   ResourcesConfig   `yaml:"resources"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// CacheConfig configures the response cache (spec.md §4.D).
type CacheConfig struct {
	MaxEntries     int                      `yaml:"max_entries"`
	DefaultTTLSec  int                      `yaml:"default_ttl_sec"`
	PerToolTTLSec  map[string]int           `yaml:"per_tool_ttl_sec"`
}

// Bucket configures one tool's rate-limit bucket (spec.md §4.E).
type Bucket struct {
	Capacity        int     `yaml:"capacity"`
	RefillPerSecond float64 `yaml:"refill_per_second"`
}

// AuditConfig configures the audit logger (spec.md §4.F).
type AuditConfig struct {
	Directory       string   `yaml:"directory"`
	RetentionDays   int      `yaml:"retention_days"`
	RedactionHints  []string `yaml:"redaction_hints"`
	Enabled         bool     `yaml:"enabled"`
}

// IdentitiesConfig configures where the encrypted identity table lives
// and the age identity used to decrypt it (spec.md §4.G).
type IdentitiesConfig struct {
	Enabled      bool   `yaml:"enabled"`
	StorePath    string `yaml:"store_path"`
	AgeIdentity  string `yaml:"age_identity_env"` // name of the env var holding the age identity string

	// RequireAuthentication implements spec.md §4.G: when true, a tool
	// call presenting no credential resolves to the denied sentinel
	// instead of the anonymous identity.
	RequireAuthentication bool `yaml:"require_authentication"`
}

// ResourcesConfig configures the filesystem resource provider's allowlist
// (spec.md §4.I).
type ResourcesConfig struct {
	AllowlistRoots []string `yaml:"allowlist_roots"`
}

// TelemetryConfig configures OTel wiring (SPEC_FULL.md's supplemented
// observability section).
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Load reads, parses, and validates path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates YAML config data.
func Parse(data []byte) (*File, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a config with sane defaults for every field a minimal
// deployment might omit.
func Default() *File {
	return &File{
		Cache: CacheConfig{
			MaxEntries:    1000,
			DefaultTTLSec: 60,
		},
		Audit: AuditConfig{
			Directory:     "audit",
			RetentionDays: 30,
			Enabled:       true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "mcp-pipeline-server",
		},
	}
}

func validate(cfg *File) error {
	if cfg.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be >= 0")
	}
	if cfg.Cache.DefaultTTLSec < 0 {
		return fmt.Errorf("cache.default_ttl_sec must be >= 0")
	}
	for tool, b := range cfg.RateLimit {
		if b.Capacity <= 0 {
			return fmt.Errorf("rate_limit[%s].capacity must be > 0", tool)
		}
		if b.RefillPerSecond < 0 {
			return fmt.Errorf("rate_limit[%s].refill_per_second must be >= 0", tool)
		}
	}
	if cfg.Audit.Enabled && cfg.Audit.Directory == "" {
		return fmt.Errorf("audit.directory is required when audit.enabled is true")
	}
	if cfg.Identities.Enabled && cfg.Identities.StorePath == "" {
		return fmt.Errorf("identities.store_path is required when identities.enabled is true")
	}
	return nil
}

// CacheTTLOverrides converts the per-tool second counts in the config
// into time.Duration, lowercasing tool names for case-insensitive lookup.
func (f *File) CacheTTLOverrides() map[string]time.Duration {
	out := make(map[string]time.Duration, len(f.Cache.PerToolTTLSec))
	for name, secs := range f.Cache.PerToolTTLSec {
		out[strings.ToLower(name)] = time.Duration(secs) * time.Second
	}
	return out
}

// RateLimitBuckets converts the config's rate-limit table into the shape
// internal/ratelimit.New expects, lowercasing tool names.
func (f *File) RateLimitBuckets() map[string]Bucket {
	out := make(map[string]Bucket, len(f.RateLimit))
	for name, b := range f.RateLimit {
		out[strings.ToLower(name)] = b
	}
	return out
}
