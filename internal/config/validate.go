package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateService(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validatePoll(); err != nil {
		return err
	}
	if err := c.validateUI(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateService() error {
	parsed, err := url.Parse(c.Service.BaseURL)
	if err != nil {
		return fmt.Errorf("service.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("service.base_url must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("service.base_url must include a host")
	}
	if c.Service.RequestTimeoutSeconds <= 0 {
		return errors.New("service.request_timeout_seconds must be positive")
	}
	if c.Service.UploadTimeoutSeconds <= 0 {
		return errors.New("service.upload_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.MaxSizeMiB <= 0 {
		return errors.New("upload.max_size_mib must be positive")
	}
	return nil
}

func (c *Config) validatePoll() error {
	if c.Poll.IntervalMillis <= 0 {
		return errors.New("poll.interval_ms must be positive")
	}
	if c.Poll.MaxRetries <= 0 {
		return errors.New("poll.max_retries must be positive")
	}
	if c.Poll.WarnAfter <= 0 {
		return errors.New("poll.warn_after must be positive")
	}
	if c.Poll.WarnAfter > c.Poll.MaxRetries {
		return fmt.Errorf("poll.warn_after (%d) must not exceed poll.max_retries (%d)", c.Poll.WarnAfter, c.Poll.MaxRetries)
	}
	return nil
}

func (c *Config) validateUI() error {
	if c.UI.NoticeSeconds < 0 {
		return errors.New("ui.notice_seconds must not be negative")
	}
	if c.UI.DownloadReleaseMillis < 0 {
		return errors.New("ui.download_release_ms must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
