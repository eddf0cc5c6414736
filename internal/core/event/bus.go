package event

import "sync"

// queue is one event type's double buffer plus its handlers.
type queue interface {
	rotate()
	dispatch()
}

type typedQueue[T any] struct {
	front    []T
	back     []T
	handlers []func(T)
}

func (q *typedQueue[T]) rotate() {
	q.front, q.back = q.back, q.front[:0]
}

func (q *typedQueue[T]) dispatch() {
	for _, ev := range q.front {
		for _, h := range q.handlers {
			h(ev)
		}
	}
}

// Bus double-buffers events per type. Events emitted during frame N are
// delivered at the start of frame N+1, so systems never observe half of a
// frame's events regardless of phase order.
type Bus struct {
	mu     sync.Mutex // protects handler registration only
	queues map[any]queue
}

func NewBus() *Bus {
	return &Bus{queues: make(map[any]queue)}
}

// The nil *T doubles as a comparable per-type map key.
func queueFor[T any](b *Bus) *typedQueue[T] {
	k := any((*T)(nil))
	if q, ok := b.queues[k]; ok {
		return q.(*typedQueue[T])
	}
	q := &typedQueue[T]{}
	b.queues[k] = q
	return q
}

// Emit queues an event for delivery next frame. Game-loop goroutine only.
func Emit[T any](b *Bus, ev T) {
	q := queueFor[T](b)
	q.back = append(q.back, ev)
}

// Subscribe registers a typed handler for events of type T. Registration may
// happen from any goroutine before the loop starts.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := queueFor[T](b)
	q.handlers = append(q.handlers, fn)
}

// BeginFrame rotates every queue's back buffer to the front, then delivers
// the front-buffer events to their subscribers.
func (b *Bus) BeginFrame() {
	for _, q := range b.queues {
		q.rotate()
	}
	for _, q := range b.queues {
		q.dispatch()
	}
}

// Pending reports how many events of type T wait in the front buffer.
// Mostly useful in tests.
func Pending[T any](b *Bus) int {
	return len(queueFor[T](b).front)
}
