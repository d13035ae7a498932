package testsupport

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	f := create(t, path)
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := min(int64(chunkSize), remaining)
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteMP4 writes an ISO BMFF "ftyp" header and extends the file to size
// bytes without allocating the tail, so large fixtures stay cheap.
func WriteMP4(t testing.TB, path string, size int64) {
	t.Helper()

	header := ftypBox()
	if size < int64(len(header)) {
		size = int64(len(header))
	}
	f := create(t, path)
	defer f.Close()
	if _, err := f.Write(header); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate %s: %v", path, err)
	}
}

func ftypBox() []byte {
	brands := []string{"isom", "iso2", "avc1", "mp41"}
	box := make([]byte, 16, 16+4*len(brands))
	binary.BigEndian.PutUint32(box[0:4], uint32(16+4*len(brands)))
	copy(box[4:8], "ftyp")
	copy(box[8:12], "isom")
	binary.BigEndian.PutUint32(box[12:16], 0x200)
	for _, b := range brands {
		box = append(box, b...)
	}
	return box
}

func create(t testing.TB, path string) *os.File {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	return f
}
