package storage

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/iudanet/campkeeper/internal/validation"
)

// OpenFunc opens the embedded database file backing one campaign store.
type OpenFunc func(path string) (Store, error)

// Registry owns the lifecycle of campaign stores: one store handle per
// campaign slug, created on first access and reused until Close. It is
// injected into the coordinator and scheduler instead of being looked up
// through ambient global state.
type Registry struct {
	stores map[string]Store
	open   OpenFunc
	dir    string
	mu     sync.Mutex
}

// NewRegistry creates a registry placing database files under dir.
func NewRegistry(dir string, open OpenFunc) *Registry {
	return &Registry{
		dir:    dir,
		open:   open,
		stores: make(map[string]Store),
	}
}

// Get returns the store for a campaign slug, opening it on first use.
func (r *Registry) Get(campaign string) (Store, error) {
	if err := validation.ValidateSlug(campaign); err != nil {
		return nil, fmt.Errorf("invalid campaign slug: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores[campaign]; ok {
		return store, nil
	}

	path := filepath.Join(r.dir, fmt.Sprintf("campaign-%s.db", campaign))
	store, err := r.open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store for campaign %q: %w", campaign, err)
	}

	r.stores[campaign] = store
	return store, nil
}

// Close closes every open store. The registry can be reused afterwards;
// stores reopen on the next Get.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for slug, store := range r.stores {
		if err := store.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close store for campaign %q: %w", slug, err)
		}
		delete(r.stores, slug)
	}

	return firstErr
}
