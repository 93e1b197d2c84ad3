// Package notify provides typed change notification.
//
// A Notifier fans a value out to every subscribed observer. Delivery is
// synchronous by default; WithAsync moves it onto a buffered goroutine.
// Observers are always called without any notifier lock held, so an
// observer may subscribe, unsubscribe or notify again.
package notify

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Observer receives notifications.
type Observer[T any] func(value T)

// Subscription represents an active observer subscription.
type Subscription struct {
	id     uint64
	cancel func(id uint64)
	once   sync.Once
}

// Unsubscribe removes this subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(func() { s.cancel(s.id) })
}

// Notifier manages observer subscriptions for values of type T.
type Notifier[T any] struct {
	mu sync.RWMutex

	observers map[uint64]Observer[T]
	nextID    uint64

	async  bool
	buffer chan T
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool

	log *zap.Logger
}

// Option configures a Notifier.
type Option func(*options)

type options struct {
	bufferSize int
	log        *zap.Logger
}

// WithAsync enables asynchronous delivery through a buffer of the given size.
func WithAsync(bufferSize int) Option {
	return func(o *options) {
		o.bufferSize = bufferSize
	}
}

// WithLogger sets the logger used to report observer panics.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// New creates a new Notifier.
func New[T any](opts ...Option) *Notifier[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	n := &Notifier[T]{
		observers: make(map[uint64]Observer[T]),
		done:      make(chan struct{}),
		log:       o.log,
	}

	if o.bufferSize > 0 {
		n.async = true
		n.buffer = make(chan T, o.bufferSize)
		n.wg.Add(1)
		go n.processAsync()
	}

	return n
}

// Subscribe registers an observer.
func (n *Notifier[T]) Subscribe(observer Observer[T]) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = observer

	return &Subscription{id: id, cancel: n.unsubscribe}
}

// Len returns the number of active subscriptions.
func (n *Notifier[T]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// Notify delivers value to all observers. It is a no-op after Close.
func (n *Notifier[T]) Notify(value T) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	n.mu.RUnlock()

	if n.async {
		select {
		case n.buffer <- value:
		case <-n.done:
		}
		return
	}

	n.deliver(value)
}

// Close shuts down the notifier, delivering any buffered values first.
// It is safe to call Close multiple times.
func (n *Notifier[T]) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier[T]) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// deliver calls observers in subscription order.
func (n *Notifier[T]) deliver(value T) {
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.observers))
	for id := range n.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer[T], len(ids))
	for i, id := range ids {
		observers[i] = n.observers[id]
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		n.call(obs, value)
	}
}

func (n *Notifier[T]) call(obs Observer[T], value T) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error("observer panicked", zap.Any("panic", r))
		}
	}()
	obs(value)
}

func (n *Notifier[T]) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case value := <-n.buffer:
			n.deliver(value)
		case <-n.done:
			for {
				select {
				case value := <-n.buffer:
					n.deliver(value)
				default:
					return
				}
			}
		}
	}
}
