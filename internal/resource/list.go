// Package resource holds the list-and-patch pattern shared by every admin
// table: a snapshot replaced wholesale on refresh and patched by id after a
// confirmed write.
package resource

import "sync"

// Identified is any entity the backend addresses by id.
type Identified interface {
	GetID() string
}

// List is a concurrency-safe ordered snapshot of T.
type List[T Identified] struct {
	mu    sync.RWMutex
	items []T
	index map[string]int
}

func NewList[T Identified]() *List[T] {
	return &List[T]{index: map[string]int{}}
}

// Replace discards the current snapshot. Later writes win; two snapshots are
// never merged.
func (l *List[T]) Replace(items []T) {
	cp := make([]T, len(items))
	copy(cp, items)
	idx := make(map[string]int, len(cp))
	for i, it := range cp {
		idx[it.GetID()] = i
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = cp
	l.index = idx
}

// Patch applies fn to the item with the given id in place. It reports false
// when the id is not in the snapshot.
func (l *List[T]) Patch(id string, fn func(*T)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.index[id]
	if !ok {
		return false
	}
	fn(&l.items[i])
	return true
}

// Upsert replaces the item with the same id, or appends it.
func (l *List[T]) Upsert(item T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := item.GetID()
	if i, ok := l.index[id]; ok {
		l.items[i] = item
		return
	}
	l.index[id] = len(l.items)
	l.items = append(l.items, item)
}

// Append adds item unless an item with the same id is already present.
func (l *List[T]) Append(item T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := item.GetID()
	if _, ok := l.index[id]; ok {
		return false
	}
	l.index[id] = len(l.items)
	l.items = append(l.items, item)
	return true
}

// Remove drops the item with the given id and reports whether it was there.
func (l *List[T]) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.index[id]
	if !ok {
		return false
	}
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	delete(l.index, id)
	for j := i; j < len(l.items); j++ {
		l.index[l.items[j].GetID()] = j
	}
	return true
}

func (l *List[T]) Get(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return l.items[i], true
}

// All returns a copy of the snapshot.
func (l *List[T]) All() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Filter returns the items matching keep, in snapshot order.
func (l *List[T]) Filter(keep func(T) bool) []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []T
	for _, it := range l.items {
		if keep == nil || keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Page is one slice of a filtered list.
type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

// Paginate cuts items into pages of size, 1-based. Out-of-range pages are
// empty; a non-positive size returns everything on page 1.
func Paginate[T any](items []T, page, size int) Page[T] {
	total := len(items)
	if size <= 0 {
		return Page[T]{Items: items, Page: 1, Size: total, Total: total}
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= total {
		return Page[T]{Items: []T{}, Page: page, Size: size, Total: total}
	}
	end := start + size
	if end > total {
		end = total
	}
	return Page[T]{Items: items[start:end], Page: page, Size: size, Total: total}
}
