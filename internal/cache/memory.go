package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

type memItem struct {
	key       string
	value     []byte
	expiresAt time.Time // zero: never
}

// MemoryBackend is a bounded in-process store. When full, inserting a new key
// evicts the oldest inserted key; overwriting a key keeps its position.
// Expired entries are dropped on read and by Sweep. It never returns errors.
type MemoryBackend struct {
	mu    sync.Mutex
	max   int
	items map[string]*list.Element
	order *list.List // front = oldest insertion
	now   func() time.Time
}

// NewMemoryBackend returns a store holding at most max entries.
func NewMemoryBackend(max int) *MemoryBackend {
	if max <= 0 {
		max = defaultMaxFallback
	}
	return &MemoryBackend{
		max:   max,
		items: make(map[string]*list.Element),
		order: list.New(),
		now:   time.Now,
	}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	it := el.Value.(*memItem)
	if m.expired(it) {
		m.removeLocked(el)
		return nil, false, nil
	}
	return it.value, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.setLocked(key, value, ttl)
	m.mu.Unlock()
	return nil
}

// SetMany stores every item under one lock.
func (m *MemoryBackend) SetMany(_ context.Context, items map[string][]byte, ttl time.Duration) error {
	m.mu.Lock()
	for k, v := range items {
		m.setLocked(k, v, ttl)
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	if el, ok := m.items[key]; ok {
		m.removeLocked(el)
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	for k, el := range m.items {
		if strings.HasPrefix(k, prefix) {
			m.removeLocked(el)
		}
	}
	m.mu.Unlock()
	return nil
}

// Clear drops every entry.
func (m *MemoryBackend) Clear() {
	m.mu.Lock()
	m.items = make(map[string]*list.Element)
	m.order.Init()
	m.mu.Unlock()
}

func (m *MemoryBackend) Sweep(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for el := m.order.Front(); el != nil; {
		next := el.Next()
		if m.expired(el.Value.(*memItem)) {
			m.removeLocked(el)
			n++
		}
		el = next
	}
	return n, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Max returns the capacity.
func (m *MemoryBackend) Max() int { return m.max }

func (m *MemoryBackend) setLocked(key string, value []byte, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = m.now().Add(ttl)
	}
	if el, ok := m.items[key]; ok {
		it := el.Value.(*memItem)
		it.value = value
		it.expiresAt = exp
		return
	}
	for len(m.items) >= m.max {
		m.removeLocked(m.order.Front())
	}
	m.items[key] = m.order.PushBack(&memItem{key: key, value: value, expiresAt: exp})
}

func (m *MemoryBackend) removeLocked(el *list.Element) {
	it := m.order.Remove(el).(*memItem)
	delete(m.items, it.key)
}

func (m *MemoryBackend) expired(it *memItem) bool {
	return !it.expiresAt.IsZero() && m.now().After(it.expiresAt)
}
