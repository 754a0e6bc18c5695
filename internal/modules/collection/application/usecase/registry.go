package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ViewRegistry tracks the live views per collection so upstream change events can
// reload every screen showing that collection.
type ViewRegistry struct {
	mu    sync.RWMutex
	views map[string]map[*CollectionView]struct{}
}

func NewViewRegistry() *ViewRegistry {
	return &ViewRegistry{views: make(map[string]map[*CollectionView]struct{})}
}

func (r *ViewRegistry) Add(view *CollectionView) {
	if view == nil {
		return
	}
	name := view.Definition().Name
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.views[name]
	if !ok {
		set = make(map[*CollectionView]struct{})
		r.views[name] = set
	}
	set[view] = struct{}{}
}

func (r *ViewRegistry) Remove(view *CollectionView) {
	if view == nil {
		return
	}
	name := view.Definition().Name
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.views[name]
	if !ok {
		return
	}
	delete(set, view)
	if len(set) == 0 {
		delete(r.views, name)
	}
}

// Count returns the number of live views of a collection.
func (r *ViewRegistry) Count(collection string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views[collection])
}

// ReloadCollection re-fetches the current page of every view of collection and returns
// how many views were reloaded.
func (r *ViewRegistry) ReloadCollection(ctx context.Context, collection string) int {
	r.mu.RLock()
	targets := make([]*CollectionView, 0, len(r.views[collection]))
	for view := range r.views[collection] {
		targets = append(targets, view)
	}
	r.mu.RUnlock()

	var wg sync.WaitGroup
	for _, view := range targets {
		wg.Add(1)
		go func(view *CollectionView) {
			defer wg.Done()
			if _, err := view.Reload(ctx); err != nil && !errors.Is(err, ErrStaleResponse) && !errors.Is(err, ErrViewClosed) {
				slog.Warn("collection reload failed", slog.String("collection", collection), slog.Any("error", err))
			}
		}(view)
	}
	wg.Wait()
	return len(targets)
}
