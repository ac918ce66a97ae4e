package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"ndarimport/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Remote contains connection settings for the scitran service.
type Remote struct {
	BaseURL        string `toml:"base_url"`
	User           string `toml:"user"`
	Group          string `toml:"group"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Input describes the layout of an NDAR export folder.
type Input struct {
	SubjectsFile string `toml:"subjects_file"`
	ImagesFile   string `toml:"images_file"`
	// SkipRows drops data rows directly after each header. NDAR downloads
	// carry one description row there; set to 1 for raw downloads.
	SkipRows int `toml:"skip_rows"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Journal contains configuration for the local record of created entities.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Metrics contains configuration for Pushgateway reporting.
type Metrics struct {
	PushgatewayURL string `toml:"pushgateway_url"`
	Job            string `toml:"job"`
}

// Config encapsulates all configuration values for ndarimport.
//
// Configuration sections:
//   - Remote: scitran base URL, acting user, target group, request timeout
//   - Input: export file names and description rows to skip
//   - Logging: log format and level
//   - Journal: optional SQLite record of what each run created
//   - Metrics: optional Prometheus Pushgateway target
type Config struct {
	Remote  Remote  `toml:"remote"`
	Input   Input   `toml:"input"`
	Logging Logging `toml:"logging"`
	Journal Journal `toml:"journal"`
	Metrics Metrics `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. Remote settings are validated separately by
// ValidateRemote because the CLI supplies them after loading.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, configError(err)
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, configError(fmt.Errorf("open config: %w", err))
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, configError(fmt.Errorf("parse config %s: %w", resolvedPath, err))
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, configError(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ndarimport.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ApplyRemote overrides the remote URL and user with non-empty values.
func (c *Config) ApplyRemote(baseURL, user string) {
	if value := strings.TrimSpace(baseURL); value != "" {
		c.Remote.BaseURL = strings.TrimRight(value, "/")
	}
	if value := strings.TrimSpace(user); value != "" {
		c.Remote.User = value
	}
}

// RequestTimeout returns the per-request timeout, zero meaning none.
func (c *Config) RequestTimeout() time.Duration {
	if c.Remote.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func configError(err error) error {
	if err == nil || errors.Is(err, services.ErrConfiguration) {
		return err
	}
	return services.Wrap(services.ErrConfiguration, "config", "", "", err)
}
