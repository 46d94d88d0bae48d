package client

import "sync"

// Event is a typed event source. Handlers run synchronously, in subscription order,
// on the goroutine that raises the event.
type Event[T any] struct {
	mu       sync.RWMutex
	next     uint64
	handlers []eventHandler[T]
}

type eventHandler[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe attaches fn and returns a function that detaches it.
func (e *Event[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	e.mu.Lock()
	e.next++
	id := e.next
	e.handlers = append(e.handlers, eventHandler[T]{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, h := range e.handlers {
				if h.id == id {
					e.handlers = append(e.handlers[:i:i], e.handlers[i+1:]...)
					return
				}
			}
		})
	}
}

// emit calls every handler attached when emit begins.
func (e *Event[T]) emit(v T) {
	e.mu.RLock()
	handlers := append([]eventHandler[T](nil), e.handlers...)
	e.mu.RUnlock()

	for _, h := range handlers {
		h.fn(v)
	}
}
