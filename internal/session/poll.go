package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vidup/internal/logging"
	"vidup/internal/services"
	"vidup/internal/services/processor"
)

const (
	processingFailedText = "Processing failed"
	retryExhaustedText   = "Too many failed status checks, check your network connection or upload again"
	unstableNoticeText   = "Network unstable, retrying status checks"
)

var statusDisplay = map[processor.Status]struct {
	text string
	icon StatusIcon
}{
	processor.StatusWaiting:    {text: "Waiting to be processed...", icon: IconWaiting},
	processor.StatusProcessing: {text: "Processing...", icon: IconProcessing},
	processor.StatusCompleted:  {text: "Processing complete!", icon: IconCompleted},
	processor.StatusFailed:     {text: processingFailedText, icon: IconError},
}

func (c *Controller) applyStatus(status processor.Status) {
	display, ok := statusDisplay[status]
	if !ok {
		display = statusDisplay[processor.StatusProcessing]
	}
	c.setProcessingText(display.text, display.icon)
}

func (c *Controller) startPolling() {
	c.stopPolling()
	c.session.PollRetryCount = 0
	c.warned = false
	c.ticker = time.NewTicker(c.pollInterval)
	c.poll()
}

func (c *Controller) stopPolling() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.pollCancel != nil {
		c.pollCancel()
		c.pollCancel = nil
	}
	c.pollInFlight = false
	c.tickMissed = false
}

// poll issues one status request. A tick that lands while a request is still
// outstanding is remembered and served as soon as that request settles. Each
// request is bounded by the status timeout, so a hung endpoint still counts
// one failure per tick.
func (c *Controller) poll() {
	taskID := c.session.TaskID
	if taskID == "" || c.state != StateProcessing || c.fetching {
		return
	}
	if c.pollInFlight {
		c.tickMissed = true
		return
	}
	ctx, cancel := context.WithTimeout(services.WithTaskID(c.workCtx, taskID), c.statusTimeout)
	c.pollInFlight = true
	c.pollCancel = cancel
	epoch := c.epoch
	go func() {
		resp, err := c.proc.Status(ctx, taskID)
		c.post(func() { c.handleStatus(epoch, taskID, resp, err) })
	}()
}

func (c *Controller) handleStatus(epoch uint64, taskID string, resp processor.StatusResponse, err error) {
	if epoch != c.epoch || taskID != c.session.TaskID {
		c.logger.Debug("ignoring stale status reply", logging.String(logging.FieldTaskID, taskID))
		return
	}
	if c.pollCancel != nil {
		c.pollCancel()
		c.pollCancel = nil
	}
	c.pollInFlight = false
	if c.state != StateProcessing || c.fetching {
		return
	}
	if err != nil {
		c.pollFailed(taskID, err)
	} else {
		c.pollSucceeded(taskID, resp)
	}
	if c.tickMissed && c.ticker != nil {
		c.tickMissed = false
		c.poll()
	}
}

func (c *Controller) pollSucceeded(taskID string, resp processor.StatusResponse) {
	c.session.PollRetryCount = 0
	c.warned = false
	status := resp.Status
	outcome := "ok"
	if !status.Known() {
		logging.WarnWithContext(c.logger, "unrecognized processing status", "status_unrecognized",
			logging.String(logging.FieldTaskID, taskID),
			logging.String("status", resp.Raw),
			logging.String(logging.FieldErrorHint, "treated as processing"),
		)
		status = processor.StatusProcessing
		outcome = "unknown_status"
	}
	c.observer.ObservePoll(outcome)
	c.applyStatus(status)

	switch status {
	case processor.StatusCompleted:
		c.stopPolling()
		c.fetching = true
		c.logger.Info("processing completed", logging.String(logging.FieldTaskID, taskID))
		c.render()
		c.fetchResult()
	case processor.StatusFailed:
		msg := resp.Message
		if msg == "" {
			msg = processingFailedText
		}
		c.enterFailed(services.Wrap(services.ErrServerFailure, "status", msg, nil), "Processing failed, please upload again", msg)
	default:
		c.render()
	}
}

func (c *Controller) pollFailed(taskID string, err error) {
	c.session.PollRetryCount++
	n, limit := c.session.PollRetryCount, c.session.MaxPollRetries
	c.observer.ObservePoll("error")
	logger := c.taskLogger(taskID)
	logger.Debug("status request failed",
		logging.Int("attempt", n),
		logging.String(logging.FieldErrorKind, services.KindOf(err)),
		logging.Error(err),
	)
	if n >= limit {
		exhausted := services.Wrap(services.ErrRetryExhausted, "status", retryExhaustedText, err)
		c.enterFailed(exhausted, "Processing failed, please upload again", retryExhaustedText)
		return
	}
	if n >= c.warnAfter {
		c.setProcessingText(fmt.Sprintf("Network unstable, retrying... (%d/%d)", n, limit), IconError)
		if !c.warned {
			c.warned = true
			logging.WarnWithContext(logger, "status checks failing", "poll_unstable",
				logging.Int("attempt", n),
				logging.String(logging.FieldErrorHint, "check connectivity to the processing service"),
				logging.Error(err),
			)
			c.notify(NoticeWarning, unstableNoticeText)
		}
	}
	c.render()
}

func (c *Controller) fetchResult() {
	taskID, epoch := c.session.TaskID, c.epoch
	ctx := services.WithTaskID(c.workCtx, taskID)
	go func() {
		data, err := c.proc.Result(ctx, taskID)
		c.post(func() { c.handleResult(epoch, taskID, data, err) })
	}()
}

func (c *Controller) handleResult(epoch uint64, taskID string, data []byte, err error) {
	if epoch != c.epoch || taskID != c.session.TaskID || c.state != StateProcessing || !c.fetching {
		c.logger.Debug("ignoring stale result reply", logging.String(logging.FieldTaskID, taskID))
		return
	}
	if err != nil {
		c.enterFailed(err, "Fetching result failed", "Fetching the processed video failed, please try again")
		return
	}
	if data == nil {
		data = []byte{}
	}
	c.finishedAt = c.now()
	c.session.Result = data
	c.result.Set(c.registry.FromBytes(data))
	c.observeURLs()
	c.session.TaskID = ""
	c.fetching = false
	c.state = StateCompleted
	c.applyStatus(processor.StatusCompleted)
	c.setUploadStatus("Processing complete!", UploadStatusSuccess)
	c.observer.ObserveTerminal(c.state.String(), c.elapsed())
	c.taskLogger(taskID).Info("result received",
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", c.elapsed()),
	)
	c.render()
	c.releaseWaiters()
}

// enterFailed stops polling and moves to Failed. The file stays selected so
// upload is offered again.
func (c *Controller) enterFailed(err error, uploadStatus, notice string) {
	c.stopPolling()
	taskID := c.session.TaskID
	if c.finishedAt.IsZero() && !c.session.StartTime.IsZero() {
		c.finishedAt = c.now()
	}
	c.session.TaskID = ""
	c.fetching = false
	c.state = StateFailed
	c.setProcessingText(notice, IconError)
	c.setUploadStatus(uploadStatus, UploadStatusError)
	c.observer.ObserveTerminal(c.state.String(), c.elapsed())
	logging.ErrorWithContext(c.taskLogger(taskID), "session failed", "session_failed",
		logging.String(logging.FieldErrorKind, services.KindOf(err)),
		logging.Int("poll_retries", c.session.PollRetryCount),
		logging.Error(err),
	)
	c.notify(NoticeError, notice)
	c.render()
	c.releaseWaiters()
}

// taskLogger tags log lines with taskID the same way request contexts do.
func (c *Controller) taskLogger(taskID string) *slog.Logger {
	return logging.WithContext(services.WithTaskID(c.workCtx, taskID), c.logger)
}
