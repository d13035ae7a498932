package testsupport_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"vidup/internal/media"
	"vidup/internal/services/processor"
	"vidup/internal/testsupport"
)

func TestFakeServiceScriptsStatuses(t *testing.T) {
	svc := testsupport.NewFakeService(t, testsupport.WithStatuses(
		testsupport.HTTPError(http.StatusServiceUnavailable),
		testsupport.Status("processing"),
		testsupport.Status("completed"),
	))
	client := processor.NewClient(processor.Config{BaseURL: svc.URL(), RequestID: "rid"})

	path := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteMP4(t, path, 4096)
	file, err := media.Inspect(path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	resp, err := client.Upload(context.Background(), file)
	if err != nil || resp.TaskID != "t1" {
		t.Fatalf("upload: %+v %v", resp, err)
	}
	uploads := svc.Uploads()
	if len(uploads) != 1 || uploads[0].Field != "video" || uploads[0].Size != 4096 || uploads[0].RequestID != "rid" {
		t.Fatalf("unexpected upload record %+v", uploads)
	}

	if _, err := client.Status(context.Background(), "t1"); err == nil {
		t.Fatal("expected first status to fail")
	}
	for _, want := range []processor.Status{processor.StatusProcessing, processor.StatusCompleted, processor.StatusCompleted} {
		got, err := client.Status(context.Background(), "t1")
		if err != nil || got.Status != want {
			t.Fatalf("expected %s, got %+v (%v)", want, got, err)
		}
	}
	data, err := client.Result(context.Background(), "t1")
	if err != nil || string(data) != "processed-video" {
		t.Fatalf("unexpected result %q (%v)", data, err)
	}
	if svc.StatusCalls() != 4 || svc.ResultCalls() != 1 {
		t.Fatalf("unexpected call counts %d/%d", svc.StatusCalls(), svc.ResultCalls())
	}
}

func TestWriteMP4IsDetectedAsMP4(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.bin")
	testsupport.WriteMP4(t, path, 1024)
	mimeType, err := media.DetectMIME(path)
	if err != nil {
		t.Fatalf("DetectMIME: %v", err)
	}
	if mimeType != "video/mp4" {
		t.Fatalf("expected video/mp4 from sniffing, got %q", mimeType)
	}
}

func TestNewConfigUsesTempDirs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxRetries(2), testsupport.WithDirectories())
	if cfg.Poll.MaxRetries != 2 || cfg.Poll.WarnAfter != 2 {
		t.Fatalf("unexpected poll config %+v", cfg.Poll)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}
	if filepath.Dir(cfg.Paths.LogDir) != testsupport.BaseDir(cfg) {
		t.Fatalf("log dir %q not under %q", cfg.Paths.LogDir, testsupport.BaseDir(cfg))
	}
}
