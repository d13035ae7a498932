package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vidup/internal/config"
	"vidup/internal/logging"
	"vidup/internal/services/processor"
)

const userAgent = "vidup-cli"

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				switch level {
				case "debug", "info", "warn", "error":
					cfg.Logging.Level = level
				default:
					c.configErr = fmt.Errorf("invalid --log-level %q", level)
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// logger writes to the log directory so terminal output stays readable.
func (c *commandContext) logger(sessionID string) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, sessionID)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func newProcessorClient(cfg *config.Config, requestID string) *processor.Client {
	return processor.NewClient(processor.Config{
		BaseURL:        cfg.Service.BaseURL,
		UploadEndpoint: cfg.Service.UploadEndpoint,
		StatusEndpoint: cfg.Service.StatusEndpoint,
		ResultEndpoint: cfg.Service.ResultEndpoint,
		APIToken:       cfg.Service.APIToken,
		RequestID:      requestID,
		UserAgent:      userAgent,
		RequestTimeout: cfg.RequestTimeout(),
		UploadTimeout:  cfg.UploadTimeout(),
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
