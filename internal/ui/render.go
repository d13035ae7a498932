package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vidup/internal/session"
)

// Kind selects the tag and colour of a status line.
type Kind int

const (
	KindInfo Kind = iota
	KindOK
	KindWarn
	KindError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	labelWidth = 12
	indent     = "  "
)

var titleCaser = cases.Title(language.English)

// StatusLine formats "  Label:       [TAG] message".
func StatusLine(label string, kind Kind, message string, colorize bool) string {
	tag := "[" + kindLabel(kind) + "]"
	if message != "" {
		tag += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", indent, labelWidth, label+":", tag)
	if colorize {
		if color := kindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func kindLabel(kind Kind) string {
	switch kind {
	case KindOK:
		return "OK"
	case KindWarn:
		return "WARN"
	case KindError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func kindColor(kind Kind) string {
	switch kind {
	case KindOK:
		return ansiGreen
	case KindWarn:
		return ansiYellow
	case KindError:
		return ansiRed
	case KindInfo:
		return ansiBlue
	default:
		return ""
	}
}

// SectionHeader returns a title line and its rule.
func SectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// ShouldColorize reports whether w is an interactive terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// StateLabel returns the display label for a session state.
func StateLabel(state session.State) string {
	return titleCaser.String(state.String())
}

// FormatElapsed renders a duration as minutes and seconds.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
}

func iconKind(icon session.StatusIcon) Kind {
	switch icon {
	case session.IconCompleted:
		return KindOK
	case session.IconError:
		return KindWarn
	default:
		return KindInfo
	}
}

func noticeKind(kind session.NoticeKind) Kind {
	switch kind {
	case session.NoticeError:
		return KindError
	case session.NoticeWarning:
		return KindWarn
	default:
		return KindInfo
	}
}
