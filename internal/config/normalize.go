package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeService()
	c.normalizeUpload()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeService() {
	c.Service.BaseURL = strings.TrimSpace(c.Service.BaseURL)
	if value, ok := os.LookupEnv("VIDUP_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		if c.Service.BaseURL == "" || c.Service.BaseURL == defaultBaseURL {
			c.Service.BaseURL = strings.TrimSpace(value)
		}
	}
	if c.Service.BaseURL == "" {
		c.Service.BaseURL = defaultBaseURL
	}
	if !strings.Contains(c.Service.BaseURL, "://") {
		c.Service.BaseURL = "http://" + c.Service.BaseURL
	}
	c.Service.BaseURL = strings.TrimRight(c.Service.BaseURL, "/")

	c.Service.UploadEndpoint = normalizeEndpoint(c.Service.UploadEndpoint, defaultUploadEndpoint)
	c.Service.StatusEndpoint = normalizeEndpoint(c.Service.StatusEndpoint, defaultStatusEndpoint)
	c.Service.ResultEndpoint = normalizeEndpoint(c.Service.ResultEndpoint, defaultResultEndpoint)

	c.Service.APIToken = strings.TrimSpace(c.Service.APIToken)
	if c.Service.APIToken == "" {
		if value, ok := os.LookupEnv("VIDUP_API_TOKEN"); ok {
			c.Service.APIToken = strings.TrimSpace(value)
		}
	}
}

func normalizeEndpoint(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if strings.Contains(value, "://") {
		return value
	}
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	return value
}

func (c *Config) normalizeUpload() {
	c.Upload.MIMEType = strings.ToLower(strings.TrimSpace(c.Upload.MIMEType))
	if c.Upload.MIMEType == "" {
		c.Upload.MIMEType = defaultMIMEType
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
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
