package epoll

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/joeycumines/logiface"
)

type (
	// Instance is a watch-list of resources, see the package docs.
	// Instances must be initialized using the New factory.
	Instance struct {
		// betteralign:ignore

		log    *instanceLogger
		pool   gopool.Pool
		ctx    context.Context // parent of all subscriptions
		cancel context.CancelFunc
		name   string

		mu    sync.Mutex
		index map[Resource]*item
		queue list.List // of *item
		bell  doorbell
		// running tracks subscription goroutines and waiters, for Shutdown
		running    sync.WaitGroup
		live       int
		subscribed int
		closed     bool
	}

	// Stats is a point-in-time view of an Instance, see Instance.Stats.
	Stats struct {
		// Registered is the number of active watches.
		Registered int
		// Queued is the number of items in the pending queue.
		Queued int
		// Subscribed is the number of outstanding Resource.Subscribe calls.
		Subscribed int
		// Live is the number of items not yet destroyed, including those
		// no longer registered, that are awaiting a subscription or waiter.
		Live int
		// Generation is the instance's own readiness generation.
		Generation uint64
		// Closed indicates Instance.Close has been called.
		Closed bool
	}
)

// New initializes a new Instance, using the provided Config, which may be
// nil. The Instance.Close method should be called once the Instance is no
// longer needed.
func New(config *Config) *Instance {
	var (
		name   = defaultName
		pool   gopool.Pool
		rates  map[time.Duration]int
		logger *logiface.Logger[logiface.Event]
	)
	if config != nil {
		if config.Name != `` {
			name = config.Name
		}
		pool = config.Pool
		rates = config.LogRates
		logger = config.Logger
	}
	if pool == nil {
		pool = getDefaultPool()
	}
	if rates == nil {
		rates = defaultLogRates()
	}

	x := Instance{
		log:   newInstanceLogger(name, logger, rates),
		pool:  pool,
		name:  name,
		index: make(map[Resource]*item),
		bell:  newDoorbell(),
	}
	x.ctx, x.cancel = context.WithCancel(context.Background())

	return &x
}

// Name returns the configured name, see Config.Name.
func (x *Instance) Name() string {
	return x.name
}

// Register starts watching r, with the given interest mask, and cookie,
// which will be returned by Wait, for each event. Error and Hangup are always
// of interest. The mask may include EdgeTriggered and/or OneShot.
//
// Newly registered resources are always checked by the next Wait.
// ErrAlreadyRegistered will be returned if r is already being watched, and
// a panic will occur if r is nil.
func (x *Instance) Register(r Resource, mask Events, cookie uint64) error {
	if r == nil {
		panic(`epoll: nil resource`)
	}
	if v, ok := r.(*Instance); ok && v == x {
		return ErrSelfRegistration
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return ErrClosed
	}
	if _, ok := x.index[r]; ok {
		return ErrAlreadyRegistered
	}

	it := &item{
		owner:    x,
		resource: r,
		mask:     mask,
		cookie:   cookie,
		state:    stateActive,
	}
	x.index[r] = it
	x.live++
	x.markPending(it)

	x.log.trace(it, `item added`)

	return nil
}

// Modify updates the interest mask and cookie, for r. The resource will be
// checked by the next Wait, which also re-enables OneShot watches.
// ErrNotRegistered will be returned if r is not being watched.
func (x *Instance) Modify(r Resource, mask Events, cookie uint64) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return ErrClosed
	}
	it, ok := x.index[r]
	if !ok {
		return ErrNotRegistered
	}
	if !it.has(stateActive) {
		panic(`epoll: indexed item not active`)
	}

	it.mask = mask
	it.cookie = cookie
	it.disarmed = false
	it.rearm = false
	if it.cancel != nil {
		it.cancel()
	}
	x.markPending(it)

	x.log.trace(it, `item modified`)

	return nil
}

// Unregister stops watching r. No event for r will be returned by any Wait
// that starts after Unregister returns.
// ErrNotRegistered will be returned if r is not being watched.
func (x *Instance) Unregister(r Resource) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return ErrClosed
	}
	it, ok := x.index[r]
	if !ok {
		return ErrNotRegistered
	}

	x.log.trace(it, `item removed`)

	delete(x.index, r)
	x.deactivate(it)

	return nil
}

// deactivate clears the active state of an item that has already been
// removed from the index, releasing it if nothing else references it.
func (x *Instance) deactivate(it *item) {
	it.clear(stateActive)
	it.rearm = false
	if it.cancel != nil {
		it.cancel()
	}
	x.unlink(it)
	x.release(it)
}

// Close stops watching all resources, aborts all subscriptions, and causes
// any blocked Wait to return ErrClosed. It is safe to call more than once.
// Close does not wait for subscriptions to return, see also Shutdown.
func (x *Instance) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil
	}
	x.closed = true

	for r, it := range x.index {
		delete(x.index, r)
		x.deactivate(it)
	}
	for it := x.popPending(); it != nil; it = x.popPending() {
		x.discard(it)
	}

	x.cancel()
	x.bell.ring()

	x.log.logger.Debug().
		Int(`live`, x.live).
		Log(`instance closed`)

	return nil
}

// Shutdown closes the instance, then waits for all subscriptions and waits
// to return. An error will be returned if ctx is done, before that point.
func (x *Instance) Shutdown(ctx context.Context) error {
	_ = x.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		x.running.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Len returns the number of registered resources.
func (x *Instance) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.index)
}

// Stats returns a snapshot of the instance's internal state.
func (x *Instance) Stats() Stats {
	x.mu.Lock()
	defer x.mu.Unlock()
	return Stats{
		Registered: len(x.index),
		Queued:     x.queue.Len(),
		Subscribed: x.subscribed,
		Live:       x.live,
		Generation: x.bell.sequence(),
		Closed:     x.closed,
	}
}
