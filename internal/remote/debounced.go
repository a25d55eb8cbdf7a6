package remote

import (
	"context"
	"sync"
	"time"
)

// Debounced coalesces payloads and publishes them in the background once edits go quiet.
// Failures are reported through OnError; nothing is rolled back.
type Debounced struct {
	pub      Publisher
	debounce time.Duration
	timeout  time.Duration
	onError  func(error)

	mu      sync.Mutex
	timer   *time.Timer
	pending *Payload
	running bool
	idle    *sync.Cond
}

type DebouncedOpts struct {
	Publisher Publisher
	Debounce  time.Duration
	// Timeout bounds one publish call.
	Timeout time.Duration
	OnError func(error)
}

func NewDebounced(opts DebouncedOpts) *Debounced {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	d := &Debounced{
		pub:      opts.Publisher,
		debounce: debounce,
		timeout:  timeout,
		onError:  opts.OnError,
	}
	d.idle = sync.NewCond(&d.mu)
	return d
}

func (d *Debounced) Publish(_ context.Context, p Payload) error {
	d.Notify(p)
	return nil
}

func (d *Debounced) Notify(p Payload) {
	if d == nil || p.Empty() {
		return
	}

	d.mu.Lock()
	if d.pending == nil {
		d.pending = &p
	} else {
		m := merge(*d.pending, p)
		d.pending = &m
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.debounce, d.onTimer)
		d.mu.Unlock()
		return
	}
	d.timer.Reset(d.debounce)
	d.mu.Unlock()
}

func (d *Debounced) onTimer() {
	d.mu.Lock()
	if d.running {
		// Another run is in flight; try again after it.
		if d.timer != nil {
			d.timer.Reset(d.debounce)
		}
		d.mu.Unlock()
		return
	}
	if d.pending == nil {
		d.mu.Unlock()
		return
	}
	p := *d.pending
	d.pending = nil
	d.running = true
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	err := d.pub.Publish(ctx, p)
	cancel()
	if err != nil && d.onError != nil {
		d.onError(err)
	}

	d.mu.Lock()
	d.running = false
	if d.pending != nil && d.timer != nil {
		d.timer.Reset(d.debounce)
	}
	d.idle.Broadcast()
	d.mu.Unlock()
}

// Flush publishes anything pending now and waits for in-flight work.
func (d *Debounced) Flush(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	for d.running {
		d.idle.Wait()
	}
	p := d.pending
	d.pending = nil
	d.mu.Unlock()

	if p == nil {
		return nil
	}
	return d.pub.Publish(ctx, *p)
}
