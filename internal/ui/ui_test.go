package ui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"vidup/internal/session"
)

func TestStatusLineNoColor(t *testing.T) {
	got := StatusLine("Processing", KindWarn, "Network unstable", false)
	want := fmt.Sprintf("%s%-*s %s", indent, labelWidth, "Processing:", "[WARN] Network unstable")
	if got != want {
		t.Fatalf("StatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestStatusLineWithColor(t *testing.T) {
	got := StatusLine("Completed", KindOK, "done", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestStateLabel(t *testing.T) {
	if got := StateLabel(session.StatePreviewing); got != "Previewing" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := FormatElapsed(65 * time.Second); got != "1m05s" {
		t.Fatalf("unexpected elapsed %q", got)
	}
	if got := FormatElapsed(-time.Second); got != "0m00s" {
		t.Fatalf("unexpected elapsed %q", got)
	}
}

func TestTerminalRendersOnlyChanges(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, nil)

	snap := session.Snapshot{State: session.StatePreviewing, FileName: "clip.mp4", FileSize: 50 * 1024 * 1024}
	term.Render(snap)
	term.Render(snap)
	snap.State = session.StateUploading
	snap.UploadStatus = "Uploading..."
	term.Render(snap)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "clip.mp4 (50 MiB)") {
		t.Fatalf("unexpected preview line %q", lines[0])
	}
	if !strings.Contains(lines[1], "Uploading:") {
		t.Fatalf("unexpected upload line %q", lines[1])
	}
}

func TestTerminalNotifyShowsNotice(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, nil)
	term.Notify(session.Notice{Kind: session.NoticeError, Text: "quota exceeded", Duration: time.Hour})

	if !strings.Contains(buf.String(), "[ERROR] quota exceeded") {
		t.Fatalf("missing notice line: %q", buf.String())
	}
	if n, ok := term.Notices().Current(); !ok || n.Text != "quota exceeded" {
		t.Fatalf("expected current notice, got %+v (%v)", n, ok)
	}
	term.Notices().Dismiss()
	if _, ok := term.Notices().Current(); ok {
		t.Fatal("expected notice to be dismissed")
	}
}

func TestNoticeBoardExpires(t *testing.T) {
	var board NoticeBoard
	board.Show(session.Notice{Text: "first", Duration: 10 * time.Millisecond})
	board.Show(session.Notice{Text: "second", Duration: time.Hour})
	time.Sleep(30 * time.Millisecond)
	if n, ok := board.Current(); !ok || n.Text != "second" {
		t.Fatalf("older timer must not clear newer notice, got %+v (%v)", n, ok)
	}

	board.Show(session.Notice{Text: "third", Duration: 5 * time.Millisecond})
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := board.Current(); !ok {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("expected notice to expire")
}

func TestOpenPickerReadsPath(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, strings.NewReader("  /tmp/clip.mp4 \n"))

	picked := make(chan string, 1)
	term.OnPick(func(path string) { picked <- path })
	term.OpenPicker()

	select {
	case path := <-picked:
		if path != "/tmp/clip.mp4" {
			t.Fatalf("unexpected path %q", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("picker did not deliver a path")
	}
}

func TestOpenPickerWithoutInputWarns(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, nil)
	term.OnPick(func(string) { t.Error("unexpected pick") })
	term.OpenPicker()
	if !strings.Contains(buf.String(), "[WARN]") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
}

func TestSummaryTable(t *testing.T) {
	out := Summary(session.Snapshot{
		State:          session.StateCompleted,
		FileName:       "clip.mp4",
		FileSize:       1024,
		TaskID:         "t1",
		StartTime:      time.Unix(100, 0),
		Elapsed:        3 * time.Second,
		StatusText:     "Processing complete!",
		ResultSize:     2048,
		MaxPollRetries: 120,
	})
	for _, want := range []string{"Completed", "clip.mp4", "t1", "0m03s", "2.0 KiB"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Poll retries") {
		t.Fatalf("summary should omit zero retries:\n%s", out)
	}
}
