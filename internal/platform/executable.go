package platform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"sync"
)

// Executable names and permissions
const (
	YTDLPBinary    = "yt-dlp"
	YTDLPBinaryWin = "yt-dlp.exe"

	ExecutablePermissions = 0755
	tempPattern           = ".ytfetch-*.tmp"
)

// ErrPayloadMissing means no bundled executable exists for this platform
var ErrPayloadMissing = errors.New("bundled yt-dlp executable is missing")

// Payload is a named-blob lookup over executables embedded at build time
type Payload interface {
	Get(name string) ([]byte, bool)
}

// EmbeddedPayload serves blobs from a directory of an fs.FS (usually an embed.FS)
type EmbeddedPayload struct {
	fsys fs.FS
	dir  string
}

// NewEmbeddedPayload creates a payload rooted at dir inside fsys
func NewEmbeddedPayload(fsys fs.FS, dir string) *EmbeddedPayload {
	return &EmbeddedPayload{fsys: fsys, dir: dir}
}

// Get returns the blob stored under name, if any
func (p *EmbeddedPayload) Get(name string) ([]byte, bool) {
	data, err := fs.ReadFile(p.fsys, path.Join(p.dir, name))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// BinaryName returns the platform specific yt-dlp file name
func BinaryName() string {
	if runtime.GOOS == OSWindows {
		return YTDLPBinaryWin
	}
	return YTDLPBinary
}

// Materializer makes sure the yt-dlp executable exists at a writable location.
// Concurrent first use is serialized and the file only appears at its final
// path once fully written.
type Materializer struct {
	payload        Payload
	dir            string
	name           string
	fallbackToPath bool

	mu       sync.Mutex
	resolved string
}

// NewMaterializer creates a materializer that writes into dir (os.TempDir when empty)
func NewMaterializer(payload Payload, dir string, fallbackToPath bool) *Materializer {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Materializer{
		payload:        payload,
		dir:            dir,
		name:           BinaryName(),
		fallbackToPath: fallbackToPath,
	}
}

// Path returns where the executable is (or will be) written
func (m *Materializer) Path() string {
	return filepath.Join(m.dir, m.name)
}

// Ensure returns the path of a ready to run executable, writing it on first use.
// A failed attempt is retried on the next call.
func (m *Materializer) Ensure(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.resolved != "" {
		return m.resolved, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := m.Path()
	if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() && info.Size() > 0 {
		m.resolved = target
		return target, nil
	}

	data, ok := m.payload.Get(m.name)
	if !ok {
		if m.fallbackToPath {
			p, err := exec.LookPath(m.name)
			if err != nil {
				return "", fmt.Errorf("%w and %s is not on PATH: %v", ErrPayloadMissing, m.name, err)
			}
			m.resolved = p
			return p, nil
		}
		return "", fmt.Errorf("%w: %s", ErrPayloadMissing, m.name)
	}

	if err := CreateDirectoryIfNotExists(m.dir); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", m.dir, err)
	}
	if err := writeFileAtomic(target, data); err != nil {
		return "", err
	}
	m.resolved = target
	return target, nil
}

// writeFileAtomic writes data next to target and renames it into place
func writeFileAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write executable: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync executable: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close executable: %w", err)
	}
	if err := os.Chmod(tmpName, ExecutablePermissions); err != nil {
		return fmt.Errorf("failed to mark executable: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		// Another process may have won the race; its file is as good as ours.
		if info, statErr := os.Stat(target); statErr == nil && info.Size() == int64(len(data)) {
			return nil
		}
		return fmt.Errorf("failed to move executable into place: %w", err)
	}
	return nil
}
