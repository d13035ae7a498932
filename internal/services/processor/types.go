package processor

import "strings"

// Status is the processing state reported by the status endpoint.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Known reports whether s is one of the documented states.
func (s Status) Known() bool {
	switch s {
	case StatusWaiting, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// ParseStatus normalizes a raw status string. Unknown values are returned
// as-is so the caller can decide how to treat them.
func ParseStatus(raw string) Status {
	return Status(strings.ToLower(strings.TrimSpace(raw)))
}

// UploadResponse is the decoded reply of a successful upload.
type UploadResponse struct {
	TaskID  string
	Message string
}

// StatusResponse is the decoded reply of the status endpoint.
type StatusResponse struct {
	Status  Status
	Raw     string
	Message string
}

type uploadPayload struct {
	Success *bool  `json:"success"`
	TaskID  string `json:"taskId"`
	Message string `json:"message"`
}

type statusPayload struct {
	Status  *string `json:"status"`
	Message string  `json:"message"`
}
