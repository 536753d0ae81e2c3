package lru

import (
	"container/list"
	"sync"
)

type entry[V any] struct {
	key   string
	value V
}

// LRU is a mutex guarded least-recently-used cache of derived values.
type LRU[V any] struct {
	maxSize int
	items   map[string]*list.Element
	list    *list.List
	mu      sync.Mutex
}

func New[V any](maxSize int) *LRU[V] {
	if maxSize < 1 {
		panic("assertion error: maxSize < 1")
	}
	return &LRU[V]{
		maxSize: maxSize,
		items:   make(map[string]*list.Element, maxSize),
		list:    list.New(),
	}
}

// GetOrAdd returns the cached value for key and bumps it to the front, or
// builds it with create. Failed builds are not cached.
func (l *LRU[V]) GetOrAdd(key string, create func() (V, error)) (V, error) {
	l.mu.Lock()
	element, ok := l.items[key]
	if ok {
		l.list.MoveToFront(element)
		v := element.Value.(*entry[V]).value
		l.mu.Unlock()
		return v, nil
	}
	l.mu.Unlock()

	v, err := create()
	if err != nil {
		return v, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// another goroutine could have added the key while create was running
	if element, ok := l.items[key]; ok {
		l.list.MoveToFront(element)
		return element.Value.(*entry[V]).value, nil
	}

	if len(l.items) >= l.maxSize {
		back := l.list.Back()
		l.list.Remove(back)
		delete(l.items, back.Value.(*entry[V]).key)
	}

	l.items[key] = l.list.PushFront(&entry[V]{key: key, value: v})
	return v, nil
}

// GetOrAddBytes is GetOrAdd for keys borrowed from a reusable buffer. The key
// is copied only when a new entry is stored.
func (l *LRU[V]) GetOrAddBytes(key []byte, create func(key string) (V, error)) (V, error) {
	l.mu.Lock()
	if element, ok := l.items[string(key)]; ok {
		l.list.MoveToFront(element)
		v := element.Value.(*entry[V]).value
		l.mu.Unlock()
		return v, nil
	}
	l.mu.Unlock()

	k := string(key)
	return l.GetOrAdd(k, func() (V, error) { return create(k) })
}

func (l *LRU[V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.items)
}
