package epoll

import (
	"context"
)

type (
	// Resource models anything that may be watched by an Instance.
	//
	// Implementations maintain a generation counter, which must be bumped
	// whenever readiness could have changed. Values are used as map keys, to
	// identify watches, and must therefore be comparable (pointers are
	// typical). Once closed, both methods must return an error satisfying
	// errors.Is(err, ErrResourceClosed).
	Resource interface {
		// CheckStatus returns the current readiness, without waiting for
		// any change. It is never called while the Instance is locked, and
		// may therefore block, if the underlying check is asynchronous.
		// The ctx only bounds a blocking check. It is never done when
		// CheckStatus is called by a non-blocking poll.
		CheckStatus(ctx context.Context) (Snapshot, error)

		// Subscribe blocks until the resource's generation differs from
		// since, then returns the new readiness. The Edges of the returned
		// Snapshot must contain the bits that became set, after since. It
		// must return promptly, with ctx.Err(), if ctx is done.
		Subscribe(ctx context.Context, since uint64) (Snapshot, error)
	}

	// Snapshot is the readiness of a Resource, at a given generation.
	Snapshot struct {
		// Generation is the resource's readiness generation.
		Generation uint64
		// Edges are bits that became set since the generation passed to
		// Resource.Subscribe. Ignored by Resource.CheckStatus callers.
		Edges Events
		// Levels are bits that are currently set.
		Levels Events
	}
)
