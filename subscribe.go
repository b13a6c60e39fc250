package epoll

import (
	"context"
	"errors"
	"fmt"
)

// arm ensures the item will become pending, once the resource advances past
// the given generation. If a (cancelled) subscription is still outstanding,
// the new one is deferred until it completes, so there is never more than one.
func (x *Instance) arm(it *item, generation uint64) {
	if it.has(stateSubscribed) {
		it.rearm = true
		it.rearmAt = generation
		return
	}
	x.subscribe(it, generation)
}

// subscribe starts a Resource.Subscribe call in the background, the result
// of which is handled by onSubscribed. Must be called with the lock held.
func (x *Instance) subscribe(it *item, since uint64) {
	it.set(stateSubscribed)
	it.rearm = false
	x.subscribed++

	ctx, cancel := context.WithCancel(x.ctx)
	it.cancel = cancel
	r := it.resource

	x.running.Add(1)
	x.pool.CtxGo(ctx, func() {
		defer x.running.Done()
		snapshot, err := callSubscribe(ctx, r, since)
		x.onSubscribed(ctx, it, since, snapshot, err)
	})
}

func callSubscribe(ctx context.Context, r Resource, since uint64) (snapshot Snapshot, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf(`epoll: subscribe panicked: %v`, v)
		}
	}()
	return r.Subscribe(ctx, since)
}

// onSubscribed is the continuation of a subscription, which re-enters the
// state machine, from the subscription's goroutine.
func (x *Instance) onSubscribed(ctx context.Context, it *item, since uint64, snapshot Snapshot, err error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	it.cancel()
	it.cancel = nil
	it.clear(stateSubscribed)
	x.subscribed--

	switch {
	case !it.has(stateActive):
		x.release(it)

	case err == nil:
		if snapshot.Generation == since {
			// resubscribing would spin, so stop watching until modified
			if b := x.log.warning(`subscribe_spurious`, it.cookie); b != nil {
				b.Uint64(`cookie`, it.cookie).
					Uint64(`generation`, since).
					Log(`subscription returned without advancing generation, resource will not be reported again`)
			}
			break
		}
		if it.disarmed {
			break
		}
		if snapshot.Edges&interest(it.mask) != 0 {
			// always poll again, before reporting
			if x.markPending(it) {
				x.log.trace(it, `item became pending`)
			}
		} else if !it.has(statePending) {
			// pending items are re-checked (and re-armed) by the next wait
			x.subscribe(it, snapshot.Generation)
		}

	case errors.Is(err, ErrResourceClosed):
		// never reported again, but remains registered
		x.log.trace(it, `resource closed`)

	case ctx.Err() != nil:
		// cancelled by Modify
		if it.rearm {
			x.subscribe(it, it.rearmAt)
		} else {
			x.markPending(it)
		}

	default:
		if b := x.log.warning(`subscribe_failed`, it.cookie); b != nil {
			b.Uint64(`cookie`, it.cookie).
				Err(err).
				Log(`subscription failed, resource will not be reported again`)
		}
	}
}
