package worker

import "sync"

// Mailbox hands results from background goroutines to the consumer loop.
// Push and Drain only hold the lock for an append or a swap.
type Mailbox[T any] struct {
	mu    sync.Mutex
	items []T
}

// Push queues item for the next Drain
func (m *Mailbox[T]) Push(item T) {
	m.mu.Lock()
	m.items = append(m.items, item)
	m.mu.Unlock()
}

// Drain takes every queued item in push order
func (m *Mailbox[T]) Drain() []T {
	m.mu.Lock()
	items := m.items
	m.items = nil
	m.mu.Unlock()
	return items
}
