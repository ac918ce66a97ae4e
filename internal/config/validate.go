package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the file-level configuration is usable.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validateInput,
		c.validateRemoteTimeout,
		c.validateLogging,
		c.validateMetrics,
	} {
		if err := check(); err != nil {
			return configError(err)
		}
	}
	return nil
}

// ValidateRemote ensures the service URL and user are set and well formed.
func (c *Config) ValidateRemote() error {
	if c.Remote.BaseURL == "" {
		return configError(errors.New("remote.base_url is required"))
	}
	if err := validateHTTPURL("remote.base_url", c.Remote.BaseURL); err != nil {
		return configError(err)
	}
	if c.Remote.User == "" {
		return configError(errors.New("remote.user is required"))
	}
	if strings.TrimSpace(c.Remote.Group) == "" {
		return configError(errors.New("remote.group must be set"))
	}
	return nil
}

func (c *Config) validateInput() error {
	if c.Input.SkipRows < 0 {
		return errors.New("input.skip_rows must be >= 0")
	}
	for key, name := range map[string]string{
		"input.subjects_file": c.Input.SubjectsFile,
		"input.images_file":   c.Input.ImagesFile,
	} {
		if strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("%s must be a file name, got %q", key, name)
		}
	}
	return nil
}

func (c *Config) validateRemoteTimeout() error {
	if c.Remote.TimeoutSeconds < 0 {
		return errors.New("remote.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want auto, console, or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.PushgatewayURL == "" {
		return nil
	}
	return validateHTTPURL("metrics.pushgateway_url", c.Metrics.PushgatewayURL)
}

func validateHTTPURL(key, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", key, value)
	}
	return nil
}
