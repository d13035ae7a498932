package config

const (
	defaultBaseURL               = "http://127.0.0.1:8080"
	defaultUploadEndpoint        = "/api/upload"
	defaultStatusEndpoint        = "/api/status"
	defaultResultEndpoint        = "/api/result"
	defaultRequestTimeoutSeconds = 30
	defaultUploadTimeoutSeconds  = 600
	defaultMIMEType              = "video/mp4"
	defaultMaxSizeMiB            = 100
	defaultPollIntervalMillis    = 500
	defaultPollWarnAfter         = 3
	defaultPollMaxRetries        = 120
	defaultNoticeSeconds         = 5
	defaultDownloadReleaseMillis = 100
	defaultLogDir                = "~/.local/share/vidup/logs"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Service: Service{
			BaseURL:               defaultBaseURL,
			UploadEndpoint:        defaultUploadEndpoint,
			StatusEndpoint:        defaultStatusEndpoint,
			ResultEndpoint:        defaultResultEndpoint,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			UploadTimeoutSeconds:  defaultUploadTimeoutSeconds,
		},
		Upload: Upload{
			MIMEType:   defaultMIMEType,
			MaxSizeMiB: defaultMaxSizeMiB,
		},
		Poll: Poll{
			IntervalMillis: defaultPollIntervalMillis,
			WarnAfter:      defaultPollWarnAfter,
			MaxRetries:     defaultPollMaxRetries,
		},
		UI: UI{
			NoticeSeconds:         defaultNoticeSeconds,
			DownloadReleaseMillis: defaultDownloadReleaseMillis,
		},
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
