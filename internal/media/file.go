package media

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"vidup/internal/services"
)

const (
	// DefaultMIMEType is the only container the processing service accepts.
	DefaultMIMEType = "video/mp4"
	// DefaultMaxBytes is the default upload size limit (100 MiB).
	DefaultMaxBytes int64 = 100 * 1024 * 1024

	processedSuffix   = "_processed.mp4"
	processedFallback = "processed_video"
	sniffLength       = 512
)

var mimeByExtension = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",
}

// File is a handle to a selected local file.
type File struct {
	Path     string
	Name     string
	Size     int64
	MIMEType string
	ModTime  time.Time
}

// Inspect stats path and detects its MIME type.
func Inspect(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrValidation, "inspect", "no file selected", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrapf(services.ErrValidation, "inspect", err, "cannot read %s", filepath.Base(path))
	}
	if !info.Mode().IsRegular() {
		return nil, services.Wrapf(services.ErrValidation, "inspect", nil, "%s is not a regular file", filepath.Base(path))
	}
	mimeType, err := DetectMIME(path)
	if err != nil {
		return nil, services.Wrapf(services.ErrValidation, "inspect", err, "cannot read %s", filepath.Base(path))
	}
	return &File{
		Path:     path,
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MIMEType: mimeType,
		ModTime:  info.ModTime(),
	}, nil
}

// DetectMIME resolves the MIME type from the extension, sniffing the first
// bytes only when the extension is unknown.
func DetectMIME(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if mimeType, ok := mimeByExtension[ext]; ok {
		return mimeType, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, sniffLength)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("read header: %w", err)
	}
	if n == 0 {
		return "application/octet-stream", nil
	}
	mimeType := http.DetectContentType(buf[:n])
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	return strings.TrimSpace(mimeType), nil
}

// BaseName returns the file name without its extension.
func (f *File) BaseName() string {
	if f == nil {
		return ""
	}
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

// Limits are the acceptance rules applied on selection.
type Limits struct {
	MIMEType string
	MaxBytes int64
}

// DefaultLimits accepts MP4 files up to 100 MiB.
func DefaultLimits() Limits {
	return Limits{MIMEType: DefaultMIMEType, MaxBytes: DefaultMaxBytes}
}

// Validate returns an ErrValidation error when f is not acceptable.
func (l Limits) Validate(f *File) error {
	if f == nil {
		return services.Wrap(services.ErrValidation, "validate", "no file selected", nil)
	}
	want := l.MIMEType
	if want == "" {
		want = DefaultMIMEType
	}
	if !strings.EqualFold(f.MIMEType, want) {
		return services.Wrapf(services.ErrValidation, "validate", nil, "please choose an MP4 video file (%s is %s)", f.Name, f.MIMEType)
	}
	maxBytes := l.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if f.Size > maxBytes {
		return services.Wrapf(services.ErrValidation, "validate", nil, "file size must not exceed %s", FormatSize(maxBytes))
	}
	return nil
}

// ProcessedName returns "<base>_processed.mp4" for the original file name.
func ProcessedName(originalName string) string {
	name := strings.TrimSpace(filepath.Base(originalName))
	if name == "." || name == string(filepath.Separator) {
		name = ""
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		base = processedFallback
	}
	return base + processedSuffix
}

// FormatSize renders a byte count using binary units.
func FormatSize(size int64) string {
	if size <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(size))
}
