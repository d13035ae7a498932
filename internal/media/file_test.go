package media_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidup/internal/media"
	"vidup/internal/services"
)

func writeSized(t *testing.T, path string, size int64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate %s: %v", path, err)
	}
}

func TestInspectUsesExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	writeSized(t, path, 2048)

	file, err := media.Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if file.Name != "clip.mp4" || file.Size != 2048 || file.MIMEType != "video/mp4" {
		t.Fatalf("unexpected file: %+v", file)
	}
	if file.BaseName() != "clip" {
		t.Fatalf("unexpected base name: %q", file.BaseName())
	}
}

func TestInspectSniffsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload.bin")
	header := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0x00, 0x00, 0x00, 0x00, 'm', 'p', '4', '2', 'i', 's', 'o', 'm'}
	if err := os.WriteFile(path, header, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := media.Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if file.MIMEType != "video/mp4" {
		t.Fatalf("expected sniffed video/mp4, got %q", file.MIMEType)
	}
}

func TestInspectRejectsMissingAndDirectories(t *testing.T) {
	dir := t.TempDir()
	if _, err := media.Inspect(filepath.Join(dir, "missing.mp4")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing file, got %v", err)
	}
	if _, err := media.Inspect(dir); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for directory, got %v", err)
	}
	if _, err := media.Inspect("  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank path, got %v", err)
	}
}

func TestLimitsRejectNonMP4(t *testing.T) {
	limits := media.DefaultLimits()
	for _, mimeType := range []string{"video/quicktime", "video/x-matroska", "image/png", ""} {
		err := limits.Validate(&media.File{Name: "clip", Size: 10, MIMEType: mimeType})
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected rejection for %q, got %v", mimeType, err)
		}
	}
	if err := limits.Validate(&media.File{Name: "clip.mp4", Size: 10, MIMEType: "video/mp4"}); err != nil {
		t.Fatalf("expected mp4 to pass, got %v", err)
	}
}

func TestLimitsRejectOversizeRegardlessOfType(t *testing.T) {
	limits := media.DefaultLimits()
	over := media.DefaultMaxBytes + 1
	for _, mimeType := range []string{"video/mp4", "video/quicktime"} {
		err := limits.Validate(&media.File{Name: "big", Size: over, MIMEType: mimeType})
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected rejection for %s at %d bytes, got %v", mimeType, over, err)
		}
	}
	err := limits.Validate(&media.File{Name: "big.mp4", Size: over, MIMEType: "video/mp4"})
	if !strings.Contains(services.Message(err), "100 MiB") {
		t.Fatalf("expected size in message, got %q", services.Message(err))
	}
	if err := limits.Validate(&media.File{Name: "edge.mp4", Size: media.DefaultMaxBytes, MIMEType: "video/mp4"}); err != nil {
		t.Fatalf("expected exactly 100 MiB to pass, got %v", err)
	}
}

func TestProcessedName(t *testing.T) {
	cases := map[string]string{
		"clip.mp4":          "clip_processed.mp4",
		"holiday.final.mp4": "holiday.final_processed.mp4",
		"noext":             "noext_processed.mp4",
		"":                  "processed_video_processed.mp4",
		"/videos/a.mp4":     "a_processed.mp4",
	}
	for in, want := range cases {
		if got := media.ProcessedName(in); got != want {
			t.Fatalf("ProcessedName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	if got := media.FormatSize(0); got != "0 B" {
		t.Fatalf("unexpected zero size: %q", got)
	}
	if got := media.FormatSize(50 * 1024 * 1024); got != "50 MiB" {
		t.Fatalf("unexpected 50 MiB rendering: %q", got)
	}
}
