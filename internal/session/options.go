package session

import (
	"log/slog"
	"time"

	"vidup/internal/blob"
	"vidup/internal/config"
	"vidup/internal/media"
)

const (
	defaultPollInterval   = 500 * time.Millisecond
	defaultWarnAfter      = 3
	defaultMaxPollRetries = 120
	defaultNoticeDuration = 5 * time.Second
	defaultReleaseDelay   = 100 * time.Millisecond
)

// Options wires a Controller to its collaborators.
type Options struct {
	Processor Processor
	View      View
	Saver     Saver
	Registry  *blob.Registry
	Observer  Observer
	Logger    *slog.Logger

	Limits         media.Limits
	PollInterval   time.Duration
	StatusTimeout  time.Duration
	WarnAfter      int
	MaxPollRetries int
	NoticeDuration time.Duration
	ReleaseDelay   time.Duration

	Clock func() time.Time
}

// OptionsFromConfig fills the tunables from cfg. Collaborators are left for
// the caller to set.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		Limits: media.Limits{
			MIMEType: cfg.Upload.MIMEType,
			MaxBytes: cfg.MaxUploadBytes(),
		},
		PollInterval:   cfg.PollInterval(),
		WarnAfter:      cfg.Poll.WarnAfter,
		MaxPollRetries: cfg.Poll.MaxRetries,
		NoticeDuration: cfg.NoticeDuration(),
		ReleaseDelay:   cfg.DownloadReleaseDelay(),
	}
}

func (o *Options) applyDefaults() {
	if o.View == nil {
		o.View = nopView{}
	}
	if o.Registry == nil {
		o.Registry = blob.NewRegistry()
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	if o.Limits.MIMEType == "" {
		o.Limits.MIMEType = media.DefaultMIMEType
	}
	if o.Limits.MaxBytes <= 0 {
		o.Limits.MaxBytes = media.DefaultMaxBytes
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	// A status request may not outlive the tick that issued it.
	if o.StatusTimeout <= 0 || o.StatusTimeout > o.PollInterval {
		o.StatusTimeout = o.PollInterval
	}
	if o.MaxPollRetries <= 0 {
		o.MaxPollRetries = defaultMaxPollRetries
	}
	if o.WarnAfter <= 0 {
		o.WarnAfter = defaultWarnAfter
	}
	if o.NoticeDuration <= 0 {
		o.NoticeDuration = defaultNoticeDuration
	}
	if o.ReleaseDelay < 0 {
		o.ReleaseDelay = 0
	} else if o.ReleaseDelay == 0 {
		o.ReleaseDelay = defaultReleaseDelay
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}
