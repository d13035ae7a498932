package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

// ErrEmptyName is returned when the sanitized target name is empty.
var ErrEmptyName = errors.New("export name is empty")

// Dir writes files into a single directory.
type Dir struct {
	Root string
}

// NewDir returns a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Save streams r into Root/name and returns the final path.
func (d *Dir) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	name = SanitizeFileName(filepath.Base(name))
	if name == "" || name == "." {
		return "", ErrEmptyName
	}
	root := strings.TrimSpace(d.Root)
	if root == "" {
		root = "."
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %q: %w", root, err)
	}
	target := filepath.Join(root, name)

	lock := flock.New(target + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("lock %s: %w", target, err)
	}
	if !locked {
		return "", fmt.Errorf("lock %s: not acquired", target)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	partial := target + ".part"
	out, err := os.OpenFile(partial, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", partial, err)
	}
	if _, err := io.Copy(out, &contextReader{ctx: ctx, r: r}); err != nil {
		_ = out.Close()
		_ = os.Remove(partial)
		return "", fmt.Errorf("write %s: %w", partial, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(partial)
		return "", fmt.Errorf("close %s: %w", partial, err)
	}
	if err := os.Rename(partial, target); err != nil {
		_ = os.Remove(partial)
		return "", fmt.Errorf("rename %s: %w", target, err)
	}
	return target, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
