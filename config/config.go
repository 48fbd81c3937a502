// Package config holds the client configuration for the shelf library:
// where the cache lives, how the document service is reached, and the knobs
// the host application exposes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all client configuration.
type Config struct {
	// DataDir is the root directory for the cache database and secrets.
	DataDir string

	// ServiceURL is the document service base URL. When empty, endpoints
	// are discovered from ServiceDomain's SRV records instead.
	ServiceURL string

	// ServiceDomain is the domain queried for _shelfdocs._tcp SRV records
	// when ServiceURL is empty.
	ServiceDomain string

	// ResolverAddr is the recursive resolver used for DNSSEC-validated
	// discovery (host:port). Empty selects the default upstream.
	ResolverAddr string

	// SealCache encrypts cached content at rest with a device secret.
	SealCache bool

	// LogLevel is the host application's log level ("debug", "info",
	// "warn", "error"). The library itself does not log.
	LogLevel string

	// LogFile is the host application's log destination; empty means stderr.
	LogFile string
}

// DefaultConfig returns the default configuration. The data directory
// defaults to ~/.shelf.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DataDir:  filepath.Join(home, ".shelf"),
		LogLevel: "info",
	}
}

// ConfigPath returns the path of the config file under dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// DatabasePath returns the path of the cache database under dataDir.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "shelf.db")
}

// SecretPath returns the path of the cache sealing secret under dataDir.
func SecretPath(dataDir string) string {
	return filepath.Join(dataDir, "device.secret")
}

// LoadConfig reads a config file in "key = value" format. Blank lines and
// lines starting with # are ignored, as are unknown keys (forward
// compatibility). Unset keys retain their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, i+1, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "datadir":
			cfg.DataDir = value
		case "serviceurl":
			cfg.ServiceURL = value
		case "servicedomain":
			cfg.ServiceDomain = value
		case "resolveraddr":
			cfg.ResolverAddr = value
		case "sealcache":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return cfg, fmt.Errorf("%w: line %d: sealcache: %q", ErrInvalidConfigLine, i+1, value)
			}
			cfg.SealCache = b
		case "loglevel":
			cfg.LogLevel = value
		case "logfile":
			cfg.LogFile = value
		default:
			// Unknown keys are ignored so older builds can read newer files.
		}
	}

	return cfg, nil
}

// SaveConfig writes the config file, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# shelf client configuration\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "serviceurl = %s\n", cfg.ServiceURL)
	fmt.Fprintf(&b, "servicedomain = %s\n", cfg.ServiceDomain)
	fmt.Fprintf(&b, "resolveraddr = %s\n", cfg.ResolverAddr)
	fmt.Fprintf(&b, "sealcache = %t\n", cfg.SealCache)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
