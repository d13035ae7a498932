package testsupport

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// Reply is one scripted HTTP response.
type Reply struct {
	Code        int
	Body        string
	ContentType string
}

// JSON builds a 200 reply with a JSON body.
func JSON(body string) Reply {
	return Reply{Code: http.StatusOK, Body: body, ContentType: "application/json"}
}

// Status builds a status reply for the given processing state.
func Status(state string) Reply {
	return JSON(fmt.Sprintf(`{"status":%q}`, state))
}

// HTTPError builds an empty reply with code.
func HTTPError(code int) Reply {
	return Reply{Code: code}
}

// UploadRecord captures what the fake service received for one upload.
type UploadRecord struct {
	Field         string
	FileName      string
	ContentType   string
	Size          int64
	RequestID     string
	Authorization string
}

// FakeService is a scripted processing service. Status replies are consumed
// in order and the last one repeats.
type FakeService struct {
	server *httptest.Server

	mu          sync.Mutex
	upload      Reply
	statuses    []Reply
	result      Reply
	uploads     []UploadRecord
	statusCalls int
	resultCalls int
	taskIDs     []string
}

// FakeOption customizes a FakeService.
type FakeOption func(*FakeService)

// WithUploadReply scripts the upload endpoint.
func WithUploadReply(r Reply) FakeOption {
	return func(s *FakeService) { s.upload = r }
}

// WithStatuses scripts the status endpoint.
func WithStatuses(replies ...Reply) FakeOption {
	return func(s *FakeService) { s.statuses = replies }
}

// WithResult scripts the result endpoint.
func WithResult(r Reply) FakeOption {
	return func(s *FakeService) { s.result = r }
}

// NewFakeService starts a fake service that accepts uploads as task "t1",
// reports completed, and serves "processed-video" as the result.
func NewFakeService(t testing.TB, opts ...FakeOption) *FakeService {
	t.Helper()

	s := &FakeService{
		upload:   JSON(`{"success":true,"taskId":"t1"}`),
		statuses: []Reply{Status("completed")},
		result:   Reply{Code: http.StatusOK, Body: "processed-video", ContentType: "video/mp4"},
	}
	for _, opt := range opts {
		opt(s)
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/upload", s.handleUpload).Methods(http.MethodPost)
	router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet).Queries("id", "{id}")
	router.HandleFunc("/api/result", s.handleResult).Methods(http.MethodGet).Queries("id", "{id}")

	s.server = httptest.NewServer(router)
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the service base URL.
func (s *FakeService) URL() string {
	return s.server.URL
}

// Uploads returns the uploads received so far.
func (s *FakeService) Uploads() []UploadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]UploadRecord(nil), s.uploads...)
}

// StatusCalls returns how many status requests were served.
func (s *FakeService) StatusCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCalls
}

// ResultCalls returns how many result requests were served.
func (s *FakeService) ResultCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultCalls
}

// TaskIDs returns the ids passed to the status and result endpoints.
func (s *FakeService) TaskIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.taskIDs...)
}

func (s *FakeService) handleUpload(w http.ResponseWriter, r *http.Request) {
	record := UploadRecord{
		RequestID:     r.Header.Get("X-Request-ID"),
		Authorization: r.Header.Get("Authorization"),
	}
	reader, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "expected multipart body", http.StatusBadRequest)
		return
	}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, "read multipart body", http.StatusBadRequest)
			return
		}
		if part.FileName() != "" {
			record.Field = part.FormName()
			record.FileName = part.FileName()
			record.ContentType = part.Header.Get("Content-Type")
			record.Size, _ = io.Copy(io.Discard, part)
		}
		_ = part.Close()
	}

	s.mu.Lock()
	s.uploads = append(s.uploads, record)
	reply := s.upload
	s.mu.Unlock()
	write(w, reply)
}

func (s *FakeService) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.statusCalls++
	s.taskIDs = append(s.taskIDs, mux.Vars(r)["id"])
	reply := HTTPError(http.StatusNotFound)
	if len(s.statuses) > 0 {
		idx := min(s.statusCalls-1, len(s.statuses)-1)
		reply = s.statuses[idx]
	}
	s.mu.Unlock()
	write(w, reply)
}

func (s *FakeService) handleResult(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.resultCalls++
	s.taskIDs = append(s.taskIDs, mux.Vars(r)["id"])
	reply := s.result
	s.mu.Unlock()
	write(w, reply)
}

func write(w http.ResponseWriter, reply Reply) {
	if reply.ContentType != "" {
		w.Header().Set("Content-Type", reply.ContentType)
	}
	code := reply.Code
	if code == 0 {
		code = http.StatusOK
	}
	w.WriteHeader(code)
	_, _ = io.WriteString(w, reply.Body)
}
