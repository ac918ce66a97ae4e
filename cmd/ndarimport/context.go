package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ndarimport/internal/config"
	"ndarimport/internal/logging"
	"ndarimport/internal/services"
	"ndarimport/internal/tree"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

// ensureConfig loads the configuration once and applies logging flag overrides.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if level := flagValue(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if format := flagValue(c.logFormatFlag); format != "" {
			cfg.Logging.Format = strings.ToLower(format)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "logging", "", err)
	}
	return logger, nil
}

func treeOptions(cfg *config.Config) tree.Options {
	return tree.Options{
		SubjectsFile: cfg.Input.SubjectsFile,
		ImagesFile:   cfg.Input.ImagesFile,
		SkipRows:     cfg.Input.SkipRows,
	}
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
