package session

import "context"

// Action is a user intent delivered to the controller loop.
type Action interface {
	// apply runs on the loop goroutine. The returned follow-up, when non-nil,
	// runs on the caller's goroutine after the loop has replied.
	apply(c *Controller) (func(context.Context) error, error)
	Name() string
}

// SelectFile chooses a local file for upload.
type SelectFile struct{ Path string }

// Upload sends the selected file to the service.
type Upload struct{}

// Download saves the processed result.
type Download struct{}

// Reset clears the session.
type Reset struct{}

// Reselect clears the session and opens the file picker.
type Reselect struct{}

func (SelectFile) Name() string { return "select_file" }
func (Upload) Name() string     { return "upload" }
func (Download) Name() string   { return "download" }
func (Reset) Name() string      { return "reset" }
func (Reselect) Name() string   { return "reselect" }

func (a SelectFile) apply(c *Controller) (func(context.Context) error, error) {
	return nil, c.selectFile(a.Path)
}

func (Upload) apply(c *Controller) (func(context.Context) error, error) {
	return nil, c.startUpload()
}

func (Download) apply(c *Controller) (func(context.Context) error, error) {
	return c.prepareDownload()
}

func (Reset) apply(c *Controller) (func(context.Context) error, error) {
	c.reset()
	c.render()
	return nil, nil
}

func (Reselect) apply(c *Controller) (func(context.Context) error, error) {
	c.reset()
	c.render()
	c.view.OpenPicker()
	return nil, nil
}
