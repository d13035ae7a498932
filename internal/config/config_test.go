package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"vidup/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("VIDUP_BASE_URL", "")
	t.Setenv("VIDUP_API_TOKEN", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "vidup", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.Paths.OutputDir != "" {
		t.Fatalf("expected empty output dir by default, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Service.BaseURL != "http://127.0.0.1:8080" {
		t.Fatalf("unexpected base url: %q", cfg.Service.BaseURL)
	}
	if cfg.Service.UploadEndpoint != "/api/upload" || cfg.Service.StatusEndpoint != "/api/status" || cfg.Service.ResultEndpoint != "/api/result" {
		t.Fatalf("unexpected endpoints: %+v", cfg.Service)
	}
	if cfg.Upload.MIMEType != "video/mp4" {
		t.Fatalf("unexpected mime type: %q", cfg.Upload.MIMEType)
	}
	if cfg.MaxUploadBytes() != 100*1024*1024 {
		t.Fatalf("unexpected max upload bytes: %d", cfg.MaxUploadBytes())
	}
	if cfg.PollInterval() != 500*time.Millisecond {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.Poll.WarnAfter != 3 || cfg.Poll.MaxRetries != 120 {
		t.Fatalf("unexpected poll thresholds: %+v", cfg.Poll)
	}
	if cfg.NoticeDuration() != 5*time.Second {
		t.Fatalf("unexpected notice duration: %s", cfg.NoticeDuration())
	}
	if cfg.DownloadReleaseDelay() != 100*time.Millisecond {
		t.Fatalf("unexpected release delay: %s", cfg.DownloadReleaseDelay())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.LogDir); err != nil || !info.IsDir() {
		t.Fatalf("expected log dir to exist: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("VIDUP_BASE_URL", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "vidup.toml")

	type payload struct {
		Service struct {
			BaseURL        string `toml:"base_url"`
			StatusEndpoint string `toml:"status_endpoint"`
		} `toml:"service"`
		Poll struct {
			IntervalMillis int `toml:"interval_ms"`
			MaxRetries     int `toml:"max_retries"`
		} `toml:"poll"`
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
	}
	custom := payload{}
	custom.Service.BaseURL = "media.example.com:9000/"
	custom.Service.StatusEndpoint = "v2/status"
	custom.Poll.IntervalMillis = 250
	custom.Poll.MaxRetries = 40
	custom.Paths.OutputDir = filepath.Join(tempDir, "out")

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Service.BaseURL != "http://media.example.com:9000" {
		t.Fatalf("unexpected base url: %q", cfg.Service.BaseURL)
	}
	if cfg.Service.StatusEndpoint != "/v2/status" {
		t.Fatalf("unexpected status endpoint: %q", cfg.Service.StatusEndpoint)
	}
	if cfg.Service.UploadEndpoint != "/api/upload" {
		t.Fatalf("expected default upload endpoint, got %q", cfg.Service.UploadEndpoint)
	}
	if cfg.PollInterval() != 250*time.Millisecond || cfg.Poll.MaxRetries != 40 {
		t.Fatalf("unexpected poll config: %+v", cfg.Poll)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempDir, "out") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestEnvironmentFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("VIDUP_BASE_URL", "https://proc.example.com/")
	t.Setenv("VIDUP_API_TOKEN", " secret ")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Service.BaseURL != "https://proc.example.com" {
		t.Fatalf("expected env base url, got %q", cfg.Service.BaseURL)
	}
	if cfg.Service.APIToken != "secret" {
		t.Fatalf("expected env token, got %q", cfg.Service.APIToken)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"scheme", func(c *config.Config) { c.Service.BaseURL = "ftp://host" }, "http or https"},
		{"max size", func(c *config.Config) { c.Upload.MaxSizeMiB = 0 }, "max_size_mib"},
		{"interval", func(c *config.Config) { c.Poll.IntervalMillis = 0 }, "interval_ms"},
		{"warn after", func(c *config.Config) { c.Poll.WarnAfter = 200 }, "warn_after"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("VIDUP_BASE_URL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Poll.MaxRetries != config.Default().Poll.MaxRetries {
		t.Fatalf("sample max retries mismatch: %d", cfg.Poll.MaxRetries)
	}
}

func TestEncodeRedactsToken(t *testing.T) {
	cfg := config.Default()
	cfg.Service.APIToken = "topsecret"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(data), "topsecret") {
		t.Fatalf("expected token to be redacted: %s", data)
	}
	if cfg.Service.APIToken != "topsecret" {
		t.Fatal("Encode must not mutate the receiver")
	}
}
