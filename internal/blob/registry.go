package blob

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const urlPrefix = "blob:vidup/"

// ErrRevoked is returned when opening a URL that was never issued or has
// already been revoked.
var ErrRevoked = errors.New("blob url revoked")

type entry struct {
	path string
	data []byte
}

// Registry tracks live object URLs. It is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// FromFile issues a URL backed by a local file.
func (r *Registry) FromFile(path string) string {
	return r.add(entry{path: path})
}

// FromBytes issues a URL backed by data. The slice is not copied.
func (r *Registry) FromBytes(data []byte) string {
	return r.add(entry{data: data})
}

func (r *Registry) add(e entry) string {
	url := urlPrefix + uuid.NewString()
	r.mu.Lock()
	r.entries[url] = e
	r.mu.Unlock()
	return url
}

// Open returns a reader over the data behind url.
func (r *Registry) Open(url string) (io.ReadCloser, error) {
	r.mu.Lock()
	e, ok := r.entries[url]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("open %s: %w", url, ErrRevoked)
	}
	if e.path != "" {
		return os.Open(e.path)
	}
	return io.NopCloser(bytes.NewReader(e.data)), nil
}

// Size reports the payload size behind url.
func (r *Registry) Size(url string) (int64, error) {
	r.mu.Lock()
	e, ok := r.entries[url]
	r.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("size %s: %w", url, ErrRevoked)
	}
	if e.path != "" {
		info, err := os.Stat(e.path)
		if err != nil {
			return 0, err
		}
		return info.Size(), nil
	}
	return int64(len(e.data)), nil
}

// Revoke releases url. It reports whether the URL was live.
func (r *Registry) Revoke(url string) bool {
	if !IsURL(url) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[url]; !ok {
		return false
	}
	delete(r.entries, url)
	return true
}

// Live returns the number of unrevoked URLs.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// IsURL reports whether s looks like a URL issued by a Registry.
func IsURL(s string) bool {
	return strings.HasPrefix(s, urlPrefix)
}
