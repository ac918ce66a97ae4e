package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeRemote()
	c.normalizeInput()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeMetrics()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeRemote() {
	c.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(c.Remote.BaseURL), "/")
	c.Remote.User = strings.TrimSpace(c.Remote.User)
	c.Remote.Group = strings.TrimSpace(c.Remote.Group)
	if c.Remote.Group == "" {
		c.Remote.Group = defaultGroup
	}
}

func (c *Config) normalizeInput() {
	c.Input.SubjectsFile = strings.TrimSpace(c.Input.SubjectsFile)
	if c.Input.SubjectsFile == "" {
		c.Input.SubjectsFile = defaultSubjectsFile
	}
	c.Input.ImagesFile = strings.TrimSpace(c.Input.ImagesFile)
	if c.Input.ImagesFile == "" {
		c.Input.ImagesFile = defaultImagesFile
	}
}

func (c *Config) normalizeJournal() error {
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = defaultJournalPath
	}
	var err error
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeMetrics() {
	c.Metrics.PushgatewayURL = strings.TrimRight(strings.TrimSpace(c.Metrics.PushgatewayURL), "/")
	c.Metrics.Job = strings.TrimSpace(c.Metrics.Job)
	if c.Metrics.Job == "" {
		c.Metrics.Job = defaultMetricsJob
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
