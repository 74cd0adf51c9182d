package gs1resolver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the resolver and data-entry
// binaries. Fields carry both JSON and YAML tags so LoadConfigFile can
// read either shape.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `json:"addr" yaml:"addr"`

	// FQDN is the public hostname used to build Location/Link targets
	// and JSON-LD @id values (spec.md §4.6).
	FQDN string `json:"fqdn" yaml:"fqdn"`

	// DBPath is the full path to the SQLite document store file. If
	// empty, ResolveDBPath derives one from DBName/StorageDir.
	DBPath string `json:"db_path" yaml:"db_path"`

	// DBName names the database file when DBPath is empty. Defaults to
	// "resolver".
	DBName string `json:"db_name" yaml:"db_name"`

	// StorageDir controls where the database is created when DBPath is
	// empty: "home" (default) uses ~/.gs1resolver/, "local" uses the
	// current working directory.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// Toolkit selects and configures the syntax/compression backend.
	Toolkit ToolkitConfig `json:"toolkit" yaml:"toolkit"`

	// LinktypeFallback gates the unnormalized-retry-with-substring-match
	// behavior of spec.md §4.5 step 10 (§9 open question).
	LinktypeFallback bool `json:"linktype_fallback" yaml:"linktype_fallback"`

	// APIKey is the bearer token the Data-Entry surface requires.
	// Empty disables authentication (development mode).
	APIKey string `json:"api_key" yaml:"api_key"`

	// CORSOrigins is a comma-separated allow-list; empty disables CORS
	// headers entirely.
	CORSOrigins string `json:"cors_origins" yaml:"cors_origins"`
}

// ToolkitConfig selects and configures the toolkit.Adapter backend.
type ToolkitConfig struct {
	// Backend is "pure" (default, in-process) or "subprocess".
	Backend string `json:"backend" yaml:"backend"`

	// SubprocessPath is the CLI executable to invoke when Backend is
	// "subprocess".
	SubprocessPath string `json:"subprocess_path,omitempty" yaml:"subprocess_path,omitempty"`

	// SubprocessTimeoutSeconds bounds each subprocess call (spec.md §5;
	// defaults to 30 when zero).
	SubprocessTimeoutSeconds int `json:"subprocess_timeout_seconds,omitempty" yaml:"subprocess_timeout_seconds,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for local
// development: the pure in-process toolkit backend, a SQLite store
// under ~/.gs1resolver/, and no authentication.
func DefaultConfig() Config {
	return Config{
		Addr:    ":8080",
		FQDN:    "localhost:8080",
		DBName:  "resolver",
		Toolkit: ToolkitConfig{Backend: "pure"},
	}
}

// SubprocessTimeout returns the configured subprocess timeout, falling
// back to the toolkit package's own 30s default when unset.
func (c ToolkitConfig) SubprocessTimeout() time.Duration {
	if c.SubprocessTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.SubprocessTimeoutSeconds) * time.Second
}

// ResolveDBPath computes the final document-store path from the
// configured fields.
func (c *Config) ResolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "resolver"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db"
		}
		return filepath.Join(home, ".gs1resolver", name+".db")
	}
}

// LoadConfigFile reads a Config from path, sniffing its format from the
// file extension: ".yaml"/".yml" decodes as YAML, anything else
// (including ".json" and no extension) decodes as JSON.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("opening config %q: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parsing yaml config %q: %w", path, err)
		}
	default:
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parsing json config %q: %w", path, err)
		}
	}
	return cfg, nil
}
