package watch

import (
	"sync"
	"time"

	"github.com/dshills/workbench/internal/fspath"
)

// DefaultDelay is the debounce delay used when none is given.
const DefaultDelay = 100 * time.Millisecond

// Debounced wraps a Watcher and merges events on the same path that arrive
// within the delay of each other. The merged event carries every operation
// seen.
type Debounced struct {
	inner Watcher
	delay time.Duration

	mu      sync.Mutex
	pending map[fspath.Key]*pending
	events  chan Event
	errors  chan error
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

type pending struct {
	event Event
	timer *time.Timer
}

// NewDebounced wraps inner. A non-positive delay uses DefaultDelay.
func NewDebounced(inner Watcher, delay time.Duration) *Debounced {
	if delay <= 0 {
		delay = DefaultDelay
	}
	d := &Debounced{
		inner:   inner,
		delay:   delay,
		pending: make(map[fspath.Key]*pending),
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		closeCh: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.processLoop()
	return d
}

// Add starts watching dir.
func (d *Debounced) Add(dir string) error { return d.inner.Add(dir) }

// Remove stops watching dir.
func (d *Debounced) Remove(dir string) error { return d.inner.Remove(dir) }

// Events returns the debounced event channel.
func (d *Debounced) Events() <-chan Event { return d.events }

// Errors returns the error channel.
func (d *Debounced) Errors() <-chan error { return d.errors }

// Pending returns the number of events waiting for their delay to pass.
func (d *Debounced) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush delivers every pending event now.
func (d *Debounced) Flush() {
	d.mu.Lock()
	keys := make([]fspath.Key, 0, len(d.pending))
	for key, p := range d.pending {
		p.timer.Stop()
		keys = append(keys, key)
	}
	d.mu.Unlock()

	for _, key := range keys {
		d.fire(key)
	}
}

// Close drops pending events, then closes the inner watcher.
func (d *Debounced) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.closeCh)
	for key, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()

	err := d.inner.Close()
	d.wg.Wait()

	d.mu.Lock()
	close(d.events)
	close(d.errors)
	d.mu.Unlock()
	return err
}

func (d *Debounced) processLoop() {
	defer d.wg.Done()

	events, errs := d.inner.Events(), d.inner.Errors()
	for events != nil || errs != nil {
		select {
		case <-d.closeCh:
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			d.handle(ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			select {
			case d.errors <- err:
			default:
			}
		}
	}
}

func (d *Debounced) handle(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	key := ev.Path.Key()
	if p, ok := d.pending[key]; ok {
		p.event.Op |= ev.Op
		p.timer.Reset(d.delay)
		return
	}
	d.pending[key] = &pending{
		event: ev,
		timer: time.AfterFunc(d.delay, func() { d.fire(key) }),
	}
}

// fire sends a pending event. The lock is held while sending so Close
// cannot close the channel underneath it; the send never blocks.
func (d *Debounced) fire(key fspath.Key) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[key]
	if !ok || d.closed {
		return
	}
	delete(d.pending, key)

	select {
	case d.events <- p.event:
	default:
	}
}

var _ Watcher = (*Debounced)(nil)
