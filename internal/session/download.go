package session

import (
	"context"
	"fmt"
	"time"

	"vidup/internal/logging"
	"vidup/internal/media"
	"vidup/internal/services"
)

// prepareDownload runs on the loop. It issues a temporary URL for the result
// and returns the save step, which runs on the caller's goroutine so a slow
// disk never stalls polling or rendering.
func (c *Controller) prepareDownload() (func(context.Context) error, error) {
	if c.state != StateCompleted || c.session.Result == nil {
		err := services.Wrap(services.ErrInvalidState, "download", "No processed video to download", nil)
		c.notify(NoticeError, services.Message(err))
		return nil, err
	}
	if c.saver == nil {
		err := services.Wrap(services.ErrInvalidState, "download", "Saving is not available", nil)
		c.notify(NoticeError, services.Message(err))
		return nil, err
	}

	original := ""
	if c.session.File != nil {
		original = c.session.File.Name
	}
	name := media.ProcessedName(original)
	url := c.registry.FromBytes(c.session.Result)
	c.observeURLs()
	saver, registry, delay := c.saver, c.registry, c.releaseDelay
	logger := c.logger.With(logging.String("file", name))

	return func(ctx context.Context) error {
		defer time.AfterFunc(delay, func() {
			registry.Revoke(url)
			c.post(c.observeURLs)
		})

		rc, err := registry.Open(url)
		if err != nil {
			return fmt.Errorf("open download: %w", err)
		}
		defer rc.Close()

		path, err := saver.Save(ctx, name, rc)
		if err != nil {
			logging.WarnWithContext(logger, "saving processed video failed", "download_failed",
				logging.String(logging.FieldErrorHint, "check the output directory permissions"),
				logging.Error(err),
			)
			c.post(func() { c.notify(NoticeError, "Saving the processed video failed") })
			return fmt.Errorf("save %s: %w", name, err)
		}
		logger.Info("processed video saved", logging.String("path", path))
		c.post(func() { c.notify(NoticeInfo, "Saved "+path) })
		return nil
	}, nil
}
