package docx

import (
	"fmt"
	"path/filepath"
	"sync"
)

// openPaths tracks absolute paths currently held by a Document.
var openPaths = struct {
	mu    sync.Mutex
	paths map[string]struct{}
}{paths: make(map[string]struct{})}

// acquirePath marks path as held and returns the function releasing it.
func acquirePath(path string) (func(), error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	openPaths.mu.Lock()
	defer openPaths.mu.Unlock()

	if _, held := openPaths.paths[abs]; held {
		return nil, fmt.Errorf("%w: %s", ErrDocumentLocked, abs)
	}
	openPaths.paths[abs] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			openPaths.mu.Lock()
			delete(openPaths.paths, abs)
			openPaths.mu.Unlock()
		})
	}, nil
}
