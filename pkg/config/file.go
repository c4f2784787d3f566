package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// SystemConfigFile is the machine-wide config location.
	SystemConfigFile = "/etc/shush/shush.yaml"
	// HomeConfigFile is the per-user config location, relative to $HOME.
	HomeConfigFile = ".shush/shush.yaml"
)

// FileConfig represents values loaded from a shush.yaml file.
type FileConfig struct {
	APIURL        string `yaml:"api_url"`
	API           string `yaml:"api"`
	Creator       string `yaml:"creator"`
	Timeout       string `yaml:"timeout"`
	Format        string `yaml:"format"`
	RetryAttempts *int   `yaml:"retry_attempts"`
	RateLimit     *int   `yaml:"rate_limit"`
	Concurrency   *int   `yaml:"concurrency"`
}

// Endpoint returns the configured registry endpoint with environment
// variables expanded, so values like https://${SENSU_HOST}:4567 work.
func (fc *FileConfig) Endpoint() string {
	if fc == nil {
		return ""
	}
	url := strings.TrimSpace(fc.APIURL)
	if url == "" {
		url = strings.TrimSpace(fc.API)
	}
	return os.Expand(url, os.Getenv)
}

// Apply overlays file values onto cfg, leaving unset fields alone.
func (fc *FileConfig) Apply(cfg *Config) error {
	if fc == nil || cfg == nil {
		return nil
	}

	if endpoint := fc.Endpoint(); endpoint != "" && cfg.APIURL == "" {
		cfg.APIURL = endpoint
	}
	if creator := strings.TrimSpace(fc.Creator); creator != "" && cfg.Creator == "" {
		cfg.Creator = creator
	}
	if format := strings.TrimSpace(fc.Format); format != "" {
		cfg.Format = format
	}
	if timeout := strings.TrimSpace(fc.Timeout); timeout != "" {
		d, err := ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in config file: %w", err)
		}
		cfg.RequestTimeout = d
	}
	// Non-positive values would stall the client outright, keep the defaults.
	if fc.RetryAttempts != nil && *fc.RetryAttempts > 0 {
		cfg.RetryAttempts = *fc.RetryAttempts
	}
	if fc.RateLimit != nil && *fc.RateLimit > 0 {
		cfg.RateLimit = *fc.RateLimit
	}
	if fc.Concurrency != nil && *fc.Concurrency > 0 {
		cfg.Concurrency = *fc.Concurrency
	}
	return nil
}

// SearchPaths returns the config discovery order: the explicit path when
// given, then the system location, then per-user locations.
func SearchPaths(explicit string) []string {
	var paths []string
	if strings.TrimSpace(explicit) != "" {
		paths = append(paths, explicit)
	}
	paths = append(paths, SystemConfigFile)
	if homeDir, err := os.UserHomeDir(); err == nil && strings.TrimSpace(homeDir) != "" {
		paths = append(paths, filepath.Join(homeDir, HomeConfigFile))
	}
	if configDir, err := os.UserConfigDir(); err == nil && strings.TrimSpace(configDir) != "" {
		paths = append(paths, filepath.Join(configDir, "shush", "shush.yaml"))
	}
	return paths
}

// LoadFirstExistingFile loads the first config file that exists in paths.
func LoadFirstExistingFile(paths []string) (*FileConfig, string, error) {
	for _, path := range paths {
		candidate := strings.TrimSpace(path)
		if candidate == "" {
			continue
		}

		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("failed to access config file %q: %w", candidate, err)
		}
		if info.IsDir() {
			return nil, "", fmt.Errorf("config path %q is a directory, expected a file", candidate)
		}

		cfg, err := LoadFile(candidate)
		if err != nil {
			return nil, "", err
		}
		return cfg, candidate, nil
	}

	return nil, "", nil
}

// LoadFile loads config values from a specific YAML file path.
func LoadFile(path string) (*FileConfig, error) {
	filename := strings.TrimSpace(path)
	if filename == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", filename, err)
	}

	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
	}

	return cfg, nil
}
