package session

import (
	"context"
	"io"
	"time"

	"vidup/internal/media"
	"vidup/internal/services/processor"
)

// View renders session changes. All methods are called from the controller
// loop and must not call back into the Controller synchronously.
type View interface {
	Render(Snapshot)
	Notify(Notice)
	OpenPicker()
}

// Processor is the remote service used by the controller.
type Processor interface {
	Upload(ctx context.Context, file *media.File) (processor.UploadResponse, error)
	Status(ctx context.Context, taskID string) (processor.StatusResponse, error)
	Result(ctx context.Context, taskID string) ([]byte, error)
}

// Saver persists a downloaded payload under name and returns where it went.
type Saver interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Observer receives counters for uploads, polls and terminal transitions.
type Observer interface {
	ObserveUpload(result string)
	ObservePoll(outcome string)
	ObserveTerminal(state string, elapsed time.Duration)
	ObserveBlobURLs(live int)
}

type nopObserver struct{}

func (nopObserver) ObserveUpload(string)                  {}
func (nopObserver) ObservePoll(string)                    {}
func (nopObserver) ObserveTerminal(string, time.Duration) {}
func (nopObserver) ObserveBlobURLs(int)                   {}

type nopView struct{}

func (nopView) Render(Snapshot) {}
func (nopView) Notify(Notice)   {}
func (nopView) OpenPicker()     {}
