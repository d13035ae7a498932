package session

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"vidup/internal/blob"
	"vidup/internal/logging"
	"vidup/internal/media"
	"vidup/internal/services"
)

// ErrStopped is returned when the controller loop is no longer running.
var ErrStopped = errors.New("session controller stopped")

// Controller runs the session state machine on a single goroutine.
type Controller struct {
	proc     Processor
	view     View
	saver    Saver
	registry *blob.Registry
	observer Observer
	logger   *slog.Logger
	now      func() time.Time

	limits         media.Limits
	pollInterval   time.Duration
	statusTimeout  time.Duration
	warnAfter      int
	maxRetries     int
	noticeDuration time.Duration
	releaseDelay   time.Duration

	events  chan func()
	done    chan struct{}
	started atomic.Bool

	// Everything below is owned by the loop goroutine.
	baseCtx    context.Context
	state      State
	session    Session
	epoch      uint64
	workCtx    context.Context
	workCancel context.CancelFunc

	ticker       *time.Ticker
	pollInFlight bool
	tickMissed   bool
	pollCancel   context.CancelFunc
	warned       bool
	fetching     bool
	finishedAt   time.Time

	statusText    string
	statusIcon    StatusIcon
	uploadStatus  string
	uploadKind    UploadStatusKind
	displayTaskID string

	preview *blob.Slot
	result  *blob.Slot
	waiters []chan Snapshot
}

// New builds a Controller. Run must be called before actions are dispatched.
func New(opts Options) (*Controller, error) {
	if opts.Processor == nil {
		return nil, errors.New("session: processor is required")
	}
	opts.applyDefaults()
	c := &Controller{
		proc:           opts.Processor,
		view:           opts.View,
		saver:          opts.Saver,
		registry:       opts.Registry,
		observer:       opts.Observer,
		logger:         logging.NewComponentLogger(opts.Logger, "session"),
		now:            opts.Clock,
		limits:         opts.Limits,
		pollInterval:   opts.PollInterval,
		statusTimeout:  opts.StatusTimeout,
		warnAfter:      opts.WarnAfter,
		maxRetries:     opts.MaxPollRetries,
		noticeDuration: opts.NoticeDuration,
		releaseDelay:   opts.ReleaseDelay,
		events:         make(chan func()),
		done:           make(chan struct{}),
		baseCtx:        context.Background(),
	}
	c.session = Session{MaxPollRetries: c.maxRetries}
	c.preview = blob.NewSlot(c.registry)
	c.result = blob.NewSlot(c.registry)
	return c, nil
}

// Run processes actions and network completions until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.New("session: controller already running")
	}
	c.baseCtx = ctx
	defer close(c.done)
	defer c.shutdown()

	c.logger.Debug("session loop started",
		logging.Duration("poll_interval", c.pollInterval),
		logging.Int("max_poll_retries", c.maxRetries),
	)
	c.render()
	for {
		var tick <-chan time.Time
		if c.ticker != nil {
			tick = c.ticker.C
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-c.events:
			fn()
		case <-tick:
			c.poll()
		}
	}
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Dispatch delivers action to the loop and waits for it to be applied.
func (c *Controller) Dispatch(ctx context.Context, action Action) error {
	type reply struct {
		after func(context.Context) error
		err   error
	}
	ch := make(chan reply, 1)
	err := c.send(ctx, func() {
		c.logger.Debug("action received", logging.String("action", action.Name()), logging.String(logging.FieldState, c.state.String()))
		after, err := action.apply(c)
		ch <- reply{after: after, err: err}
	})
	if err != nil {
		return err
	}
	select {
	case r := <-ch:
		if r.err != nil {
			return r.err
		}
		if r.after != nil {
			return r.after(ctx)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}
}

// SelectFile validates path and makes it the previewed file.
func (c *Controller) SelectFile(ctx context.Context, path string) error {
	return c.Dispatch(ctx, SelectFile{Path: path})
}

// Upload sends the selected file and starts polling once a task id arrives.
func (c *Controller) Upload(ctx context.Context) error {
	return c.Dispatch(ctx, Upload{})
}

// Download saves the processed video through the Saver.
func (c *Controller) Download(ctx context.Context) error {
	return c.Dispatch(ctx, Download{})
}

// Reset cancels in-flight work and returns to Idle.
func (c *Controller) Reset(ctx context.Context) error {
	return c.Dispatch(ctx, Reset{})
}

// Reselect resets the session and opens the file picker.
func (c *Controller) Reselect(ctx context.Context) error {
	return c.Dispatch(ctx, Reselect{})
}

// Snapshot returns the current view model.
func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	ch := make(chan Snapshot, 1)
	if err := c.send(ctx, func() { ch <- c.snapshot() }); err != nil {
		return Snapshot{}, err
	}
	return c.receive(ctx, ch)
}

// Wait blocks until the session reaches Completed or Failed.
func (c *Controller) Wait(ctx context.Context) (Snapshot, error) {
	ch := make(chan Snapshot, 1)
	err := c.send(ctx, func() {
		if c.state.Terminal() {
			ch <- c.snapshot()
			return
		}
		c.waiters = append(c.waiters, ch)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return c.receive(ctx, ch)
}

func (c *Controller) receive(ctx context.Context, ch chan Snapshot) (Snapshot, error) {
	select {
	case snap, ok := <-ch:
		if !ok {
			return Snapshot{}, ErrStopped
		}
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-c.done:
		return Snapshot{}, ErrStopped
	}
}

func (c *Controller) send(ctx context.Context, fn func()) error {
	select {
	case c.events <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}
}

// post hands a completion to the loop. It is dropped once the loop has exited.
func (c *Controller) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.done:
	}
}

func (c *Controller) shutdown() {
	c.reset()
	c.workCancel()
	for _, ch := range c.waiters {
		close(ch)
	}
	c.waiters = nil
	c.logger.Debug("session loop stopped")
}

// newEpoch invalidates every in-flight request of the previous epoch.
func (c *Controller) newEpoch() {
	c.stopPolling()
	if c.workCancel != nil {
		c.workCancel()
	}
	c.epoch++
	c.workCtx, c.workCancel = context.WithCancel(c.baseCtx)
}

func (c *Controller) reset() {
	c.newEpoch()
	c.preview.Release()
	c.result.Release()
	c.observeURLs()
	c.session = Session{MaxPollRetries: c.maxRetries}
	c.state = StateIdle
	c.fetching = false
	c.warned = false
	c.finishedAt = time.Time{}
	c.displayTaskID = ""
	c.setProcessingText("", IconNone)
	c.setUploadStatus("", UploadStatusNone)
}

func (c *Controller) selectFile(path string) error {
	c.reset()
	file, err := media.Inspect(path)
	if err == nil {
		err = c.limits.Validate(file)
	}
	if err != nil {
		c.logger.Info("file rejected",
			logging.String("path", path),
			logging.String(logging.FieldErrorKind, services.KindOf(err)),
			logging.Error(err),
		)
		c.notify(NoticeError, services.Message(err))
		c.render()
		return err
	}
	c.session.File = file
	c.preview.Set(c.registry.FromFile(file.Path))
	c.observeURLs()
	c.state = StatePreviewing
	c.logger.Info("file selected",
		logging.String("file", file.Name),
		logging.String("size", media.FormatSize(file.Size)),
		logging.Int64("size_bytes", file.Size),
	)
	c.render()
	return nil
}

func (c *Controller) notify(kind NoticeKind, text string) {
	c.view.Notify(Notice{Kind: kind, Text: text, Duration: c.noticeDuration})
}

func (c *Controller) setUploadStatus(text string, kind UploadStatusKind) {
	c.uploadStatus = text
	c.uploadKind = kind
}

func (c *Controller) setProcessingText(text string, icon StatusIcon) {
	c.statusText = text
	c.statusIcon = icon
}

func (c *Controller) observeURLs() {
	c.observer.ObserveBlobURLs(c.registry.Live())
}

func (c *Controller) elapsed() time.Duration {
	if c.session.StartTime.IsZero() {
		return 0
	}
	end := c.finishedAt
	if end.IsZero() {
		end = c.now()
	}
	return end.Sub(c.session.StartTime)
}

func (c *Controller) uploadEnabled() bool {
	switch c.state {
	case StatePreviewing:
		return true
	case StateFailed:
		return c.session.File != nil
	default:
		return false
	}
}

func (c *Controller) snapshot() Snapshot {
	snap := Snapshot{
		State:            c.state,
		PreviewURL:       c.preview.URL(),
		ResultURL:        c.result.URL(),
		ResultSize:       int64(len(c.session.Result)),
		TaskID:           c.displayTaskID,
		StartTime:        c.session.StartTime,
		Elapsed:          c.elapsed(),
		StatusText:       c.statusText,
		StatusIcon:       c.statusIcon,
		UploadStatus:     c.uploadStatus,
		UploadStatusKind: c.uploadKind,
		UploadEnabled:    c.uploadEnabled(),
		DownloadEnabled:  c.state == StateCompleted && c.session.Result != nil,
		Spinner:          c.state == StateUploading || c.state == StateProcessing,
		Polling:          c.ticker != nil,
		Fetching:         c.fetching,
		PollRetryCount:   c.session.PollRetryCount,
		MaxPollRetries:   c.session.MaxPollRetries,
	}
	if f := c.session.File; f != nil {
		snap.FileName = f.Name
		snap.FileSize = f.Size
	}
	return snap
}

func (c *Controller) render() {
	c.view.Render(c.snapshot())
}

func (c *Controller) releaseWaiters() {
	if len(c.waiters) == 0 {
		return
	}
	snap := c.snapshot()
	for _, ch := range c.waiters {
		ch <- snap
	}
	c.waiters = nil
}
