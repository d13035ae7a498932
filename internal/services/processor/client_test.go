package processor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"vidup/internal/media"
	"vidup/internal/services"
)

func writeClip(t *testing.T, content string) *media.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	file, err := media.Inspect(path)
	if err != nil {
		t.Fatalf("inspect clip: %v", err)
	}
	return file
}

func TestUploadStreamsMultipartVideoField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/upload" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization %q", got)
		}
		if got := r.Header.Get("X-Request-ID"); got != "req-1" {
			t.Errorf("unexpected request id %q", got)
		}
		file, header, err := r.FormFile("video")
		if err != nil {
			t.Errorf("read form file: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "mp4-bytes" || header.Filename != "clip.mp4" {
			t.Errorf("unexpected upload %q (%s)", data, header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"taskId":"abc123"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/", APIToken: "secret", RequestID: "req-1"})
	resp, err := client.Upload(context.Background(), writeClip(t, "mp4-bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resp.TaskID != "abc123" {
		t.Fatalf("unexpected task id %q", resp.TaskID)
	}
}

func TestUploadServerFailureKeepsMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write([]byte(`{"success":false,"message":"quota exceeded"}`))
	}))
	defer server.Close()

	_, err := NewClient(Config{BaseURL: server.URL}).Upload(context.Background(), writeClip(t, "x"))
	if !errors.Is(err, services.ErrServerFailure) {
		t.Fatalf("expected server failure, got %v", err)
	}
	if msg := services.Message(err); msg != "quota exceeded" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestUploadClassifiesMalformedReplies(t *testing.T) {
	cases := []struct {
		name   string
		code   int
		body   string
		marker error
	}{
		{name: "non-2xx", code: http.StatusInternalServerError, body: "boom", marker: services.ErrTransport},
		{name: "invalid json", code: http.StatusOK, body: "<html>", marker: services.ErrProtocol},
		{name: "missing success", code: http.StatusOK, body: `{"taskId":"x"}`, marker: services.ErrProtocol},
		{name: "missing task id", code: http.StatusOK, body: `{"success":true}`, marker: services.ErrProtocol},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.WriteHeader(tc.code)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := NewClient(Config{BaseURL: server.URL}).Upload(context.Background(), writeClip(t, "x"))
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
			if services.Message(err) != "Upload failed" {
				t.Fatalf("unexpected message %q", services.Message(err))
			}
		})
	}
}

func TestUploadNon2xxUsesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = w.Write([]byte(`{"success":false,"message":"file too large"}`))
	}))
	defer server.Close()

	_, err := NewClient(Config{BaseURL: server.URL}).Upload(context.Background(), writeClip(t, "x"))
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected http status error, got %v", err)
	}
	if services.Message(err) != "file too large" {
		t.Fatalf("unexpected message %q", services.Message(err))
	}
}

func TestStatusParsesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" || r.URL.Query().Get("id") != "abc 1" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"status":"Processing","message":"frame 10"}`))
	}))
	defer server.Close()

	resp, err := NewClient(Config{BaseURL: server.URL}).Status(context.Background(), "abc 1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if resp.Status != StatusProcessing || resp.Message != "frame 10" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestStatusErrors(t *testing.T) {
	cases := []struct {
		name   string
		code   int
		body   string
		marker error
	}{
		{name: "http error", code: http.StatusBadGateway, body: "", marker: services.ErrTransport},
		{name: "invalid json", code: http.StatusOK, body: "nope", marker: services.ErrProtocol},
		{name: "missing status", code: http.StatusOK, body: `{"message":"x"}`, marker: services.ErrProtocol},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()
			if _, err := NewClient(Config{BaseURL: server.URL}).Status(context.Background(), "abc"); !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
		})
	}
}

func TestStatusTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	if _, err := NewClient(Config{BaseURL: url}).Status(context.Background(), "abc"); !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestResultReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/custom/result" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("processed"))
	}))
	defer server.Close()

	data, err := NewClient(Config{BaseURL: server.URL, ResultEndpoint: "custom/result"}).Result(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if string(data) != "processed" {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestGetRequiresTaskID(t *testing.T) {
	if _, err := NewClient(Config{BaseURL: "http://127.0.0.1:1"}).Result(context.Background(), " "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	if ParseStatus(" COMPLETED ") != StatusCompleted {
		t.Fatal("expected completed")
	}
	if ParseStatus("queued").Known() {
		t.Fatal("queued should not be a known status")
	}
}
