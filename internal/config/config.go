package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Service contains the processing service endpoints and request settings.
type Service struct {
	BaseURL               string `toml:"base_url"`
	UploadEndpoint        string `toml:"upload_endpoint"`
	StatusEndpoint        string `toml:"status_endpoint"`
	ResultEndpoint        string `toml:"result_endpoint"`
	APIToken              string `toml:"api_token"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	UploadTimeoutSeconds  int    `toml:"upload_timeout_seconds"`
}

// Upload contains the local file acceptance rules.
type Upload struct {
	MIMEType   string `toml:"mime_type"`
	MaxSizeMiB int64  `toml:"max_size_mib"`
}

// Poll contains the status polling cadence and failure thresholds.
type Poll struct {
	IntervalMillis int `toml:"interval_ms"`
	WarnAfter      int `toml:"warn_after"`
	MaxRetries     int `toml:"max_retries"`
}

// UI contains timing for user-facing notices and temporary download URLs.
type UI struct {
	NoticeSeconds         int `toml:"notice_seconds"`
	DownloadReleaseMillis int `toml:"download_release_ms"`
}

// Paths contains output and log directories.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vidup.
//
// Configuration sections by subsystem:
//   - Service: processing service base URL, endpoints, credentials, timeouts
//   - Upload: accepted MIME type and maximum file size
//   - Poll: status poll interval, warning threshold, retry budget
//   - UI: notice duration and download URL release delay
//   - Paths: output and log directories
//   - Logging: log format and level
type Config struct {
	Service Service `toml:"service"`
	Upload  Upload  `toml:"upload"`
	Poll    Poll    `toml:"poll"`
	UI      UI      `toml:"ui"`
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vidup/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
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
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("config file %q not found", expanded)
			}
			return "", false, fmt.Errorf("inspect config %q: %w", expanded, err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %q is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidup.toml")
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

// EnsureDirectories creates the log directory and, when configured, the
// output directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		dirs = append(dirs, c.Paths.OutputDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Upload.MaxSizeMiB * 1024 * 1024
}

// PollInterval returns the status poll cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalMillis) * time.Millisecond
}

// RequestTimeout returns the timeout applied to status and result requests.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Service.RequestTimeoutSeconds) * time.Second
}

// UploadTimeout returns the timeout applied to upload requests.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Service.UploadTimeoutSeconds) * time.Second
}

// NoticeDuration returns how long transient notices stay visible.
func (c *Config) NoticeDuration() time.Duration {
	return time.Duration(c.UI.NoticeSeconds) * time.Second
}

// DownloadReleaseDelay returns how long a temporary download URL outlives the save.
func (c *Config) DownloadReleaseDelay() time.Duration {
	return time.Duration(c.UI.DownloadReleaseMillis) * time.Millisecond
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

// Encode renders the configuration as TOML. The API token is redacted.
func (c *Config) Encode() ([]byte, error) {
	clone := *c
	if clone.Service.APIToken != "" {
		clone.Service.APIToken = "<redacted>"
	}
	return toml.Marshal(clone)
}
