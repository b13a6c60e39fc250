package epoll

import (
	"context"
	"fmt"
)

var _ Resource = (*Instance)(nil)

// CheckStatus implements Resource, allowing instances to be nested. The
// instance is Readable while it has queued items. The generation advances
// each time the instance's doorbell rings.
func (x *Instance) CheckStatus(ctx context.Context) (Snapshot, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return Snapshot{}, errResourceClosed
	}
	return x.snapshot(), nil
}

// Subscribe implements Resource, blocking until the instance's generation
// differs from since, the instance is closed, or ctx is done.
func (x *Instance) Subscribe(ctx context.Context, since uint64) (Snapshot, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for {
		if x.closed {
			return Snapshot{}, errResourceClosed
		}
		if since > x.bell.sequence() {
			panic(fmt.Sprintf(`epoll: subscribe from future generation %d, current is %d`, since, x.bell.sequence()))
		}
		if since != x.bell.sequence() {
			return x.snapshot(), nil
		}
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
		bell := x.bell.wait()
		x.mu.Unlock()
		select {
		case <-bell:
		case <-ctx.Done():
		}
		x.mu.Lock()
	}
}

var errResourceClosed = fmt.Errorf(`%w: %w`, ErrResourceClosed, ErrClosed)

func (x *Instance) snapshot() Snapshot {
	s := Snapshot{
		Generation: x.bell.sequence(),
		// any ring may have queued something, the watcher must check
		Edges: Readable,
	}
	if x.queue.Len() != 0 {
		s.Levels = Readable
	}
	return s
}
