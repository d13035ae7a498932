package session

import (
	"time"

	"vidup/internal/media"
)

// State is the lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StatePreviewing
	StateUploading
	StateProcessing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreviewing:
		return "previewing"
	case StateUploading:
		return "uploading"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a task.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Session is the per-selection data owned by the Controller.
type Session struct {
	File           *media.File
	TaskID         string
	StartTime      time.Time
	Result         []byte
	PollRetryCount int
	MaxPollRetries int
}

// NoticeKind classifies a transient notice.
type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message shown to the user for Duration.
type Notice struct {
	Kind     NoticeKind
	Text     string
	Duration time.Duration
}

// UploadStatusKind tags the persistent upload status line.
type UploadStatusKind string

const (
	UploadStatusNone      UploadStatusKind = ""
	UploadStatusUploading UploadStatusKind = "uploading"
	UploadStatusSuccess   UploadStatusKind = "success"
	UploadStatusError     UploadStatusKind = "error"
)

// StatusIcon names the processing indicator shown next to the status text.
type StatusIcon string

const (
	IconNone       StatusIcon = ""
	IconWaiting    StatusIcon = "waiting"
	IconProcessing StatusIcon = "processing"
	IconCompleted  StatusIcon = "completed"
	IconError      StatusIcon = "error"
)

// Snapshot is the read-only view model handed to the View on every change.
type Snapshot struct {
	State State

	FileName   string
	FileSize   int64
	PreviewURL string
	ResultURL  string
	ResultSize int64

	TaskID    string
	StartTime time.Time
	Elapsed   time.Duration

	StatusText       string
	StatusIcon       StatusIcon
	UploadStatus     string
	UploadStatusKind UploadStatusKind

	UploadEnabled   bool
	DownloadEnabled bool
	Spinner         bool
	Polling         bool
	Fetching        bool

	PollRetryCount int
	MaxPollRetries int
}
