package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory хранит счетчики в памяти процесса
type Memory struct {
	windows  map[string]*entry
	now      func() time.Time
	cleanupC chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
}

type entry struct {
	window
	length time.Duration
}

// NewMemory создает счетчик в памяти.
// cleanupEvery задает период удаления истекших окон (0 - без фоновой очистки).
func NewMemory(cleanupEvery time.Duration) *Memory {
	m := &Memory{
		windows:  make(map[string]*entry),
		now:      time.Now,
		cleanupC: make(chan struct{}),
	}

	if cleanupEvery > 0 {
		go m.cleanup(cleanupEvery)
	}

	return m
}

// Increment implements Counter
func (m *Memory) Increment(_ context.Context, key string, length time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.windows[key]
	if !ok {
		e = &entry{}
		m.windows[key] = e
	}
	e.length = length

	return e.hit(m.now(), length), nil
}

// cleanup периодически удаляет истекшие окна для экономии памяти
func (m *Memory) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.prune()
		case <-m.cleanupC:
			return
		}
	}
}

func (m *Memory) prune() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, e := range m.windows {
		if e.expired(now, e.length) {
			delete(m.windows, key)
		}
	}
}

// Stop останавливает cleanup goroutine
func (m *Memory) Stop() {
	m.stopOnce.Do(func() {
		close(m.cleanupC)
	})
}
