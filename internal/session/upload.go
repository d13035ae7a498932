package session

import (
	"errors"
	"time"

	"vidup/internal/logging"
	"vidup/internal/services"
	"vidup/internal/services/processor"
)

func (c *Controller) startUpload() error {
	switch {
	case c.state == StatePreviewing:
	case c.state == StateFailed && c.session.File != nil:
	case c.state == StateIdle || c.state == StateFailed:
		err := services.Wrap(services.ErrInvalidState, "upload", "select a video file first", nil)
		c.notify(NoticeError, services.Message(err))
		return err
	default:
		err := services.Wrapf(services.ErrInvalidState, "upload", nil, "cannot upload while %s", c.state)
		c.notify(NoticeWarning, services.Message(err))
		return err
	}

	file := c.session.File
	c.newEpoch()
	c.result.Release()
	c.observeURLs()
	c.session.TaskID = ""
	c.session.StartTime = time.Time{}
	c.session.Result = nil
	c.session.PollRetryCount = 0
	c.finishedAt = time.Time{}
	c.fetching = false
	c.displayTaskID = ""
	c.state = StateUploading
	c.setProcessingText("", IconNone)
	c.setUploadStatus("Uploading...", UploadStatusUploading)
	c.logger.Info("upload started", logging.String("file", file.Name))
	c.render()

	epoch, ctx := c.epoch, c.workCtx
	go func() {
		resp, err := c.proc.Upload(ctx, file)
		c.post(func() { c.handleUpload(epoch, resp, err) })
	}()
	return nil
}

func (c *Controller) handleUpload(epoch uint64, resp processor.UploadResponse, err error) {
	if epoch != c.epoch || c.state != StateUploading {
		c.logger.Debug("ignoring stale upload reply", logging.String(logging.FieldState, c.state.String()))
		return
	}
	if err != nil {
		result := "error"
		if errors.Is(err, services.ErrServerFailure) {
			result = "rejected"
		}
		c.observer.ObserveUpload(result)
		logging.WarnWithContext(c.logger, "upload failed", "upload_failed",
			logging.String(logging.FieldErrorKind, services.KindOf(err)),
			logging.String(logging.FieldErrorHint, "check the service URL and the server logs"),
			logging.Error(err),
		)
		c.state = StatePreviewing
		c.setUploadStatus("Upload failed", UploadStatusError)
		c.notify(NoticeError, services.Message(err))
		c.render()
		return
	}

	c.observer.ObserveUpload("accepted")
	c.session.TaskID = resp.TaskID
	c.session.StartTime = c.now()
	c.displayTaskID = resp.TaskID
	c.state = StateProcessing
	c.setUploadStatus("Upload succeeded, processing video...", UploadStatusSuccess)
	c.applyStatus(processor.StatusProcessing)
	c.logger.Info("upload accepted", logging.String(logging.FieldTaskID, resp.TaskID))
	c.render()
	c.startPolling()
}
