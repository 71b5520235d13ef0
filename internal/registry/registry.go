package registry

import (
	"fmt"
	"sync"
)

// Registry is the single shared collection of media items. Items are
// kept in submission order. An optional change hook fires after every
// mutation so persistence can debounce-save.
type Registry struct {
	mu       sync.RWMutex
	items    []*Item
	onChange func()
}

// New creates an empty registry
func New() *Registry {
	return &Registry{}
}

// SetOnChange installs a hook invoked after every mutation. The hook
// runs outside the registry lock.
func (r *Registry) SetOnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

func (r *Registry) changed() {
	r.mu.RLock()
	fn := r.onChange
	r.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Add appends an item to the registry
func (r *Registry) Add(it *Item) {
	r.mu.Lock()
	r.items = append(r.items, it)
	r.mu.Unlock()
	r.changed()
}

// Get returns the item with the given ID
func (r *Registry) Get(id string) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, fmt.Errorf("item not found: %s", id)
}

// Replace swaps in a new version of an existing item (whole-item
// replacement keeps concurrent readers consistent)
func (r *Registry) Replace(it *Item) error {
	r.mu.Lock()
	found := false
	for i, existing := range r.items {
		if existing.ID == it.ID {
			r.items[i] = it
			found = true
			break
		}
	}
	r.mu.Unlock()
	if !found {
		return fmt.Errorf("item not found: %s", it.ID)
	}
	r.changed()
	return nil
}

// Remove deletes an item by ID
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	found := false
	for i, it := range r.items {
		if it.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			found = true
			break
		}
	}
	r.mu.Unlock()
	if !found {
		return fmt.Errorf("item not found: %s", id)
	}
	r.changed()
	return nil
}

// Clear removes all items
func (r *Registry) Clear() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
	r.changed()
}

// Len returns the number of items
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Items returns all items in submission order
func (r *Registry) Items() []*Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Item, len(r.items))
	copy(out, r.items)
	return out
}

// Successful returns all items that completed generation
func (r *Registry) Successful() []*Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Item
	for _, it := range r.items {
		if it.Status == StatusSuccess {
			out = append(out, it)
		}
	}
	return out
}

// Unprocessed returns items that have not completed generation and are
// eligible for batch processing
func (r *Registry) Unprocessed() []*Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Item
	for _, it := range r.items {
		if it.Status != StatusSuccess && !it.Restored {
			out = append(out, it)
		}
	}
	return out
}

// Touch fires the change hook without mutating, for callers that edit
// an item in place through the history tracker
func (r *Registry) Touch() {
	r.changed()
}
