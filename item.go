package epoll

import (
	"container/list"
	"context"
	"strings"
)

type (
	// itemState is the lifecycle of a watch. An item is destroyed exactly
	// when all bits are clear, and must not be accessed afterward.
	itemState uint8

	// item is a registration of one Resource, with one Instance.
	// All fields are guarded by the owning Instance's mutex.
	item struct {
		owner    *Instance
		resource Resource
		// cancel aborts the outstanding subscription, if any
		cancel context.CancelFunc
		// elem is non-nil while the item is linked into the pending queue
		elem   *list.Element
		cookie uint64
		// rearmAt is the generation to subscribe from, once a cancelled
		// subscription completes, valid if rearm is set
		rearmAt   uint64
		mask      Events
		state     itemState
		rearm     bool
		disarmed  bool
		destroyed bool
	}
)

const (
	// stateActive indicates the item is indexed, and its instance is open.
	stateActive itemState = 1 << iota
	// stateSubscribed indicates a Resource.Subscribe call is outstanding.
	stateSubscribed
	// statePending indicates the item is in the pending queue, or has been
	// popped from it by a waiter, that will either requeue or clear it.
	statePending
)

func (x itemState) String() string {
	if x == 0 {
		return `none`
	}
	var parts []string
	if x&stateActive != 0 {
		parts = append(parts, `active`)
	}
	if x&stateSubscribed != 0 {
		parts = append(parts, `subscribed`)
	}
	if x&statePending != 0 {
		parts = append(parts, `pending`)
	}
	return strings.Join(parts, `|`)
}

func (x *item) has(s itemState) bool {
	return x.state&s == s
}

func (x *item) set(s itemState) {
	if x.destroyed {
		panic(`epoll: set state on destroyed item`)
	}
	if x.state&s != 0 {
		panic(`epoll: item state already set: ` + (x.state & s).String())
	}
	x.state |= s
}

func (x *item) clear(s itemState) {
	if x.destroyed {
		panic(`epoll: clear state on destroyed item`)
	}
	if x.state&s != s {
		panic(`epoll: item state not set: ` + (s &^ x.state).String())
	}
	x.state &^= s
}

// markPending links the item into the pending queue, unless it is already
// pending, ringing the doorbell. Returns true if the item became pending.
func (x *Instance) markPending(it *item) bool {
	if it.has(statePending) {
		return false
	}
	it.set(statePending)
	it.elem = x.queue.PushBack(it)
	x.bell.ring()
	return true
}

// popPending unlinks and returns the front of the pending queue, leaving it
// marked pending (claimed by the caller), or nil if the queue is empty.
func (x *Instance) popPending() *item {
	e := x.queue.Front()
	if e == nil {
		return nil
	}
	it := x.queue.Remove(e).(*item)
	it.elem = nil
	if !it.has(statePending) {
		panic(`epoll: queued item not pending`)
	}
	return it
}

// unlink removes a queued item from the pending queue, clearing its pending
// state. Items claimed by a waiter are left as-is.
func (x *Instance) unlink(it *item) {
	if it.elem == nil {
		return
	}
	x.queue.Remove(it.elem)
	it.elem = nil
	it.clear(statePending)
}

// release destroys the item, if no state remains.
func (x *Instance) release(it *item) {
	if it.state != 0 {
		return
	}
	if it.destroyed {
		panic(`epoll: item destroyed twice`)
	}
	if it.elem != nil || it.cancel != nil {
		panic(`epoll: destroying item with outstanding references`)
	}
	x.log.trace(it, `item destroyed`)
	it.destroyed = true
	it.resource = nil
	x.live--
}
