package epolltest

import (
	"context"
	"math/bits"
	"sync"

	"github.com/joeycumines/go-epoll"
)

// Resource is an in-memory epoll.Resource, with readiness controlled by the
// caller. It also records how it has been used, so tests can assert on the
// behavior of the watcher. The zero value is not usable, use NewResource.
type Resource struct {
	mu     sync.Mutex
	change chan struct{}
	// rose is the generation at which each bit last became set
	rose           [32]uint64
	generation     uint64
	levels         epoll.Events
	subscribers    int
	maxSubscribers int
	subscribes     int
	checks         int
	closed         bool
}

var _ epoll.Resource = (*Resource)(nil)

// NewResource initializes a Resource, with the given levels set.
func NewResource(levels epoll.Events) *Resource {
	x := Resource{
		change:     make(chan struct{}),
		generation: 1,
	}
	x.apply(levels, levels)
	return &x
}

// Set replaces the active levels, advancing the generation, if they changed.
// Bits that were not previously set are edges.
func (x *Resource) Set(levels epoll.Events) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if levels == x.levels {
		return
	}
	x.bump()
	x.apply(levels, levels&^x.levels)
}

// Add sets the given bits, see Set.
func (x *Resource) Add(events epoll.Events) {
	x.mu.Lock()
	levels := x.levels | events
	x.mu.Unlock()
	x.Set(levels)
}

// Remove clears the given bits, see Set.
func (x *Resource) Remove(events epoll.Events) {
	x.mu.Lock()
	levels := x.levels &^ events
	x.mu.Unlock()
	x.Set(levels)
}

// Trigger sets the given bits, and treats them all as edges, even if they
// were already set, e.g. like more data arriving on a readable socket.
// The generation is always advanced.
func (x *Resource) Trigger(events epoll.Events) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.bump()
	x.apply(x.levels|events, events)
}

// Close marks the resource closed, waking all subscribers.
func (x *Resource) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.closed {
		x.closed = true
		x.bump()
	}
	return nil
}

// CheckStatus implements epoll.Resource.
func (x *Resource) CheckStatus(context.Context) (epoll.Snapshot, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.checks++
	if x.closed {
		return epoll.Snapshot{}, epoll.ErrResourceClosed
	}
	return epoll.Snapshot{
		Generation: x.generation,
		Levels:     x.levels,
	}, nil
}

// Subscribe implements epoll.Resource.
func (x *Resource) Subscribe(ctx context.Context, since uint64) (epoll.Snapshot, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.subscribes++
	x.subscribers++
	if x.subscribers > x.maxSubscribers {
		x.maxSubscribers = x.subscribers
	}
	defer func() { x.subscribers-- }()

	for {
		if x.closed {
			return epoll.Snapshot{}, epoll.ErrResourceClosed
		}
		if x.generation != since {
			return epoll.Snapshot{
				Generation: x.generation,
				Edges:      x.edges(since),
				Levels:     x.levels,
			}, nil
		}
		if err := ctx.Err(); err != nil {
			return epoll.Snapshot{}, err
		}
		change := x.change
		x.mu.Unlock()
		select {
		case <-change:
		case <-ctx.Done():
		}
		x.mu.Lock()
	}
}

// Generation returns the current generation.
func (x *Resource) Generation() uint64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.generation
}

// Levels returns the currently set bits.
func (x *Resource) Levels() epoll.Events {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.levels
}

// Subscribers returns the number of Subscribe calls currently blocked.
func (x *Resource) Subscribers() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.subscribers
}

// MaxSubscribers returns the highest number of concurrent Subscribe calls.
func (x *Resource) MaxSubscribers() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.maxSubscribers
}

// Subscribes returns the total number of Subscribe calls.
func (x *Resource) Subscribes() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.subscribes
}

// Checks returns the total number of CheckStatus calls.
func (x *Resource) Checks() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.checks
}

// bump advances the generation, and wakes subscribers.
func (x *Resource) bump() {
	x.generation++
	close(x.change)
	x.change = make(chan struct{})
}

func (x *Resource) apply(levels, edges epoll.Events) {
	x.levels = levels
	for edges != 0 {
		i := bits.TrailingZeros32(uint32(edges))
		x.rose[i] = x.generation
		edges &^= 1 << i
	}
}

func (x *Resource) edges(since uint64) (edges epoll.Events) {
	for i, generation := range x.rose {
		if generation > since {
			edges |= 1 << i
		}
	}
	return edges
}
