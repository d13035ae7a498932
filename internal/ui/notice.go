package ui

import (
	"sync"
	"time"

	"vidup/internal/session"
)

// NoticeBoard holds the notice currently on screen and clears it after its
// duration. A newer notice replaces the older one and restarts the timer.
type NoticeBoard struct {
	mu      sync.Mutex
	current *session.Notice
	timer   *time.Timer
	seq     uint64
}

// Show displays n, replacing any current notice.
func (b *NoticeBoard) Show(n session.Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	b.seq++
	b.current = &n
	if n.Duration > 0 {
		seq := b.seq
		b.timer = time.AfterFunc(n.Duration, func() { b.expire(seq) })
	}
}

// Current returns the notice on screen, if any.
func (b *NoticeBoard) Current() (session.Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return session.Notice{}, false
	}
	return *b.current, true
}

// Dismiss clears the current notice.
func (b *NoticeBoard) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	b.current = nil
}

func (b *NoticeBoard) expire(seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if seq == b.seq {
		b.current = nil
		b.timer = nil
	}
}

func (b *NoticeBoard) stopLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
