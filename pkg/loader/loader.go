// ABOUTME: Byte loader for audio clips from files, URLs, and embedded assets
// ABOUTME: Memoizes loaded clips by path string
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/clipkit/clipkit-go/pkg/clip"
)

var (
	ErrInvalidPath       = errors.New("audio path is invalid")
	ErrNotFound          = errors.New("audio file not found")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Loader resolves paths to clips and memoizes the result by path
// string. Paths may be absolute filesystem paths, http(s) URLs, or
// names inside an optional embedded filesystem.
type Loader struct {
	mu     sync.Mutex
	cache  map[string]*clip.Clip
	fsys   fs.FS
	client *http.Client
}

// New creates a loader without an embedded filesystem; relative paths
// resolve against the working directory.
func New() *Loader {
	return &Loader{
		cache:  make(map[string]*clip.Clip),
		client: http.DefaultClient,
	}
}

// NewWithFS creates a loader that resolves non-absolute, non-URL paths
// inside fsys (typically an embed.FS of bundled assets).
func NewWithFS(fsys fs.FS) *Loader {
	l := New()
	l.fsys = fsys
	return l
}

// Extension returns the lower-cased extension of path, without the dot.
func Extension(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(path[idx+1:])
}

// Load resolves path as a URL, embedded asset, or relative file.
func (l *Loader) Load(path string) (*clip.Clip, error) {
	return l.load(path, false)
}

// LoadAbsolute resolves path as an absolute filesystem path.
func (l *Loader) LoadAbsolute(path string) (*clip.Clip, error) {
	return l.load(path, true)
}

func (l *Loader) load(path string, absolute bool) (*clip.Clip, error) {
	l.mu.Lock()
	cached, ok := l.cache[path]
	l.mu.Unlock()
	if ok {
		return cached, nil
	}

	if strings.TrimSpace(path) == "" {
		return nil, ErrInvalidPath
	}
	switch Extension(path) {
	case "wav":
	case "":
		return nil, fmt.Errorf("%w: missing file extension: %s", ErrInvalidPath, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, Extension(path))
	}

	data, err := l.fetch(path, absolute)
	if err != nil {
		return nil, err
	}

	c, err := clip.New(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	l.mu.Lock()
	l.cache[path] = c
	l.mu.Unlock()
	return c, nil
}

func (l *Loader) fetch(path string, absolute bool) ([]byte, error) {
	switch {
	case absolute:
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return data, nil

	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		resp, err := l.client.Get(path)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", path, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %s (status %d)", ErrNotFound, path, resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", path, err)
		}
		return data, nil

	case l.fsys != nil:
		data, err := fs.ReadFile(l.fsys, strings.TrimPrefix(path, "/"))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if err != nil {
			return nil, fmt.Errorf("read embedded %s: %w", path, err)
		}
		return data, nil

	default:
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return data, nil
	}
}

// Add caches a clip under the given path.
func (l *Loader) Add(path string, c *clip.Clip) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[path] = c
}

// Remove evicts the cache entry for path.
func (l *Loader) Remove(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, path)
}

// Clear drops every cache entry.
func (l *Loader) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*clip.Clip)
}

// Contains reports whether path is cached.
func (l *Loader) Contains(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.cache[path]
	return ok
}

// Get returns the cached clip for path, or nil.
func (l *Loader) Get(path string) *clip.Clip {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cache[path]
}

// Len returns the number of cached clips.
func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cache)
}

// IsEmpty reports whether the cache is empty.
func (l *Loader) IsEmpty() bool {
	return l.Len() == 0
}
