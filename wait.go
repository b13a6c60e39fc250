package epoll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Event is a readiness report, for one watched resource.
type Event struct {
	// Cookie is the value provided to Instance.Register or Instance.Modify.
	Cookie uint64
	// Events are the ready bits, limited to the watch's interest.
	Events Events
}

// Wait blocks until at least one watched resource is ready, returning up to
// maxEvents events, at most one per resource. ErrInvalidMaxEvents will be
// returned if maxEvents < 1.
//
// If ctx is done, before any resource is ready, Wait returns no events, and
// a nil error. If ctx is already done, when Wait is called, the pending
// resources are still checked, making it a non-blocking poll.
//
// ErrClosed will be returned if the instance is closed, including if it is
// closed while Wait is blocked.
func (x *Instance) Wait(ctx context.Context, maxEvents int) ([]Event, error) {
	if ctx == nil {
		panic(`epoll: nil context`)
	}
	if maxEvents < 1 {
		return nil, ErrInvalidMaxEvents
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil, ErrClosed
	}
	x.running.Add(1)
	defer x.running.Done()

	if b := x.log.logger.Debug(); b.Enabled() {
		b.Int(`queued`, x.queue.Len()).
			Bool(`cancelled`, ctx.Err() != nil).
			Log(`entering wait`)
	}

	var (
		events []Event
		// level-triggered items that were reported, to be requeued
		requeue []*item
		// a poll still checks every pending item, so must not pass a done ctx
		checkCtx = ctx
	)
	if ctx.Err() != nil {
		checkCtx = context.WithoutCancel(ctx)
	}

	for !x.closed {
		var interrupted bool
		for len(events) < maxEvents && !interrupted {
			it := x.popPending()
			if it == nil {
				break
			}

			if !it.has(stateActive) {
				x.log.trace(it, `discarding inactive item`)
				x.discard(it)
				continue
			}

			snapshot, err := x.checkStatus(checkCtx, it)

			// may have been unregistered, or the instance closed
			if !it.has(stateActive) {
				x.log.trace(it, `discarding inactive item`)
				x.discard(it)
				continue
			}

			if err != nil {
				if !errors.Is(err, ErrResourceClosed) && ctx.Err() != nil {
					// not checked, leave it for the next wait
					requeue = append(requeue, it)
					interrupted = true
					continue
				}
				if !errors.Is(err, ErrResourceClosed) {
					if b := x.log.warning(`check_failed`, it.cookie); b != nil {
						b.Uint64(`cookie`, it.cookie).
							Err(err).
							Log(`status check failed, resource will not be reported again`)
					}
				}
				x.log.trace(it, `discarding closed item`)
				x.discard(it)
				continue
			}

			var status Events
			if !it.disarmed {
				status = snapshot.Levels & interest(it.mask)
			}

			if status == 0 {
				// not ready, watch for the next edge
				it.clear(statePending)
				if !it.disarmed {
					x.arm(it, snapshot.Generation)
				}
				continue
			}

			events = append(events, Event{Cookie: it.cookie, Events: status})

			switch {
			case it.mask&OneShot != 0:
				it.clear(statePending)
				it.disarmed = true
			case it.mask&EdgeTriggered != 0:
				it.clear(statePending)
				x.arm(it, snapshot.Generation)
			default:
				requeue = append(requeue, it)
			}
		}

		if x.closed || len(events) != 0 || interrupted || ctx.Err() != nil {
			break
		}

		// block until something changes, the lock guarantees no ring is missed
		bell := x.bell.wait()
		x.mu.Unlock()
		select {
		case <-bell:
		case <-ctx.Done():
		}
		x.mu.Lock()
	}

	if x.closed {
		for _, it := range requeue {
			x.discard(it)
		}
		return nil, ErrClosed
	}

	var rung bool
	for _, it := range requeue {
		if !it.has(stateActive) {
			// unregistered while claimed
			x.discard(it)
			continue
		}
		it.elem = x.queue.PushBack(it)
		rung = true
	}
	if rung {
		// concurrent waiters may have seen an empty queue
		x.bell.ring()
	}

	if b := x.log.logger.Debug(); b.Enabled() {
		b.Int(`events`, len(events)).
			Log(`returning from wait`)
	}

	return events, nil
}

// WaitTimeout is a convenience wrapper for Wait, modeled after epoll_wait. A
// negative timeout blocks indefinitely, and a zero timeout returns
// immediately, after checking the pending resources.
func (x *Instance) WaitTimeout(maxEvents int, timeout time.Duration) ([]Event, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	switch {
	case timeout == 0:
		cancel()
	case timeout > 0:
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return x.Wait(ctx, maxEvents)
}

// discard clears the pending state of an item popped from the queue.
func (x *Instance) discard(it *item) {
	it.clear(statePending)
	x.release(it)
}

// checkStatus calls Resource.CheckStatus, with the lock released.
func (x *Instance) checkStatus(ctx context.Context, it *item) (snapshot Snapshot, err error) {
	r := it.resource
	x.mu.Unlock()
	defer x.mu.Lock()
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf(`epoll: check status panicked: %v`, v)
		}
	}()
	return r.CheckStatus(ctx)
}
