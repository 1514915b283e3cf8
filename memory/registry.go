// Package memory provides in-process implementations of the duplicate
// registry and the citizen report store. Both live for the lifetime of the
// process and are reset on restart.
package memory

import (
	"context"
	"sync"

	"github.com/jaldrishti/jaldrishti"
)

// Ensure registry implements interface.
var _ jaldrishti.DuplicateRegistry = (*DuplicateRegistry)(nil)

// DuplicateRegistry is a mutex-guarded set of perceptual hashes.
type DuplicateRegistry struct {
	mu     sync.Mutex
	hashes map[string]struct{}
}

// NewDuplicateRegistry creates an empty registry.
func NewDuplicateRegistry() *DuplicateRegistry {
	return &DuplicateRegistry{hashes: make(map[string]struct{})}
}

// CheckAndAdd reports whether hash was already recorded and records it.
func (r *DuplicateRegistry) CheckAndAdd(ctx context.Context, hash string) (bool, error) {
	if hash == "" {
		return false, jaldrishti.Invalid("Hash is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hashes == nil {
		return false, jaldrishti.Internal("Registry is closed", nil)
	}
	if _, ok := r.hashes[hash]; ok {
		return true, nil
	}
	r.hashes[hash] = struct{}{}
	return false, nil
}

// Len returns the number of distinct hashes recorded.
func (r *DuplicateRegistry) Len(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hashes), nil
}

// Close drops all recorded hashes.
func (r *DuplicateRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hashes = nil
	return nil
}
