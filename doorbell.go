package epoll

// doorbell wakes every waiter, each time it is rung. It is not safe for
// concurrent use, and must be guarded by the owning Instance's mutex.
//
// A waiter must call wait while still holding the lock it used to observe
// that it has nothing to do. Any ring after that point closes the returned
// channel, so the wake-up cannot be lost, between checking and sleeping.
type doorbell struct {
	ch  chan struct{}
	seq uint64
}

func newDoorbell() doorbell {
	return doorbell{
		ch:  make(chan struct{}),
		seq: 1,
	}
}

// ring increments the sequence, and wakes all current waiters.
func (x *doorbell) ring() {
	x.seq++
	close(x.ch)
	x.ch = make(chan struct{})
}

// wait returns a channel that will be closed by the next ring.
func (x *doorbell) wait() <-chan struct{} {
	return x.ch
}

// sequence returns the number of rings, plus one.
func (x *doorbell) sequence() uint64 {
	return x.seq
}
