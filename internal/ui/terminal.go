package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"vidup/internal/media"
	"vidup/internal/session"
)

// Terminal is a line-oriented session.View.
type Terminal struct {
	out      io.Writer
	colorize bool

	inMu sync.Mutex
	in   *bufio.Reader

	mu     sync.Mutex
	last   session.Snapshot
	drawn  bool
	onPick func(path string)

	board NoticeBoard
}

// NewTerminal writes to out. in may be nil, in which case the picker is
// unavailable.
func NewTerminal(out io.Writer, in io.Reader) *Terminal {
	t := &Terminal{out: out, colorize: ShouldColorize(out)}
	if in != nil {
		t.in = bufio.NewReader(in)
	}
	return t
}

// OnPick registers the callback invoked with each path read by the picker.
func (t *Terminal) OnPick(fn func(path string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPick = fn
}

// Notices exposes the notice board.
func (t *Terminal) Notices() *NoticeBoard {
	return &t.board
}

// Render prints a status line when the snapshot changed.
func (t *Terminal) Render(s session.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.drawn && !changed(t.last, s) {
		return
	}
	t.last = s
	t.drawn = true
	fmt.Fprintln(t.out, StatusLine(StateLabel(s.State), snapshotKind(s), describe(s), t.colorize))
}

// Notify shows n on the notice board and prints it.
func (t *Terminal) Notify(n session.Notice) {
	t.board.Show(n)
	t.line("Notice", noticeKind(n.Kind), n.Text)
}

// OpenPicker reads one path from the input on a separate goroutine and hands
// it to the OnPick callback. The input stays reserved until the callback
// returns, so a following Prompt observes the selection.
func (t *Terminal) OpenPicker() {
	t.mu.Lock()
	pick := t.onPick
	t.mu.Unlock()
	if t.in == nil || pick == nil {
		t.line("Picker", KindWarn, "no input available, pass a file path instead")
		return
	}
	if !t.inMu.TryLock() {
		t.line("Picker", KindWarn, "input busy")
		return
	}
	go func() {
		defer t.inMu.Unlock()
		path, err := t.readLine("Video file")
		if err != nil || path == "" {
			return
		}
		pick(path)
	}()
}

// Prompt prints label and reads a trimmed line from the input.
func (t *Terminal) Prompt(label string) (string, error) {
	if t.in == nil {
		return "", io.EOF
	}
	t.inMu.Lock()
	defer t.inMu.Unlock()
	return t.readLine(label)
}

// readLine expects inMu to be held.
func (t *Terminal) readLine(label string) (string, error) {
	t.mu.Lock()
	fmt.Fprintf(t.out, "%s%s: ", indent, label)
	t.mu.Unlock()
	line, err := t.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return line, nil
}

func (t *Terminal) line(label string, kind Kind, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, StatusLine(label, kind, msg, t.colorize))
}

// Println writes a raw line, serialized with status output.
func (t *Terminal) Println(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, text)
}

// Summary renders a table describing s.
func Summary(s session.Snapshot) string {
	rows := [][]string{
		{"State", StateLabel(s.State)},
	}
	if s.FileName != "" {
		rows = append(rows, []string{"File", s.FileName}, []string{"Size", media.FormatSize(s.FileSize)})
	}
	if s.TaskID != "" {
		rows = append(rows, []string{"Task ID", s.TaskID})
	}
	if !s.StartTime.IsZero() {
		rows = append(rows, []string{"Processing time", FormatElapsed(s.Elapsed)})
	}
	if s.StatusText != "" {
		rows = append(rows, []string{"Status", s.StatusText})
	}
	if s.UploadStatus != "" {
		rows = append(rows, []string{"Upload", s.UploadStatus})
	}
	if s.PollRetryCount > 0 {
		rows = append(rows, []string{"Poll retries", fmt.Sprintf("%d/%d", s.PollRetryCount, s.MaxPollRetries)})
	}
	if s.ResultSize > 0 {
		rows = append(rows, []string{"Result size", media.FormatSize(s.ResultSize)})
	}
	return RenderTable([]string{"Field", "Value"}, rows, nil)
}

func changed(prev, next session.Snapshot) bool {
	return prev.State != next.State ||
		prev.FileName != next.FileName ||
		prev.StatusText != next.StatusText ||
		prev.UploadStatus != next.UploadStatus ||
		prev.PollRetryCount != next.PollRetryCount ||
		prev.Fetching != next.Fetching
}

func snapshotKind(s session.Snapshot) Kind {
	switch s.State {
	case session.StateCompleted:
		return KindOK
	case session.StateFailed:
		return KindError
	case session.StateProcessing:
		return iconKind(s.StatusIcon)
	default:
		if s.UploadStatusKind == session.UploadStatusError {
			return KindError
		}
		return KindInfo
	}
}

func describe(s session.Snapshot) string {
	switch s.State {
	case session.StateIdle:
		return "select an MP4 file"
	case session.StatePreviewing:
		msg := fmt.Sprintf("%s (%s)", s.FileName, media.FormatSize(s.FileSize))
		if s.UploadStatus != "" {
			msg += " - " + s.UploadStatus
		}
		return msg
	case session.StateUploading:
		return fmt.Sprintf("%s %s", s.UploadStatus, s.FileName)
	case session.StateProcessing:
		msg := fmt.Sprintf("%s task %s, %s", s.StatusText, s.TaskID, FormatElapsed(s.Elapsed))
		if s.Fetching {
			msg += ", fetching result"
		}
		return msg
	case session.StateCompleted:
		return fmt.Sprintf("%s %s in %s", s.StatusText, media.FormatSize(s.ResultSize), FormatElapsed(s.Elapsed))
	case session.StateFailed:
		if s.StatusText != "" {
			return fmt.Sprintf("%s (%s)", s.UploadStatus, s.StatusText)
		}
		return s.UploadStatus
	default:
		return ""
	}
}
