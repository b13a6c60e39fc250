// Package epoll implements readiness multiplexing, with the semantics of a
// Linux epoll instance, over any value implementing the Resource interface.
//
// An Instance holds a watch-list of resources, each registered with an
// interest mask and an opaque cookie. Instance.Wait blocks until at least one
// watched resource is ready, in a way matching its interest, then returns one
// Event per ready resource. Resources only need to provide two operations:
// an immediate status check, and a blocking subscription that returns once
// the resource's readiness generation advances. See [Resource] for the full
// contract.
//
// Watches are level-triggered by default, meaning a resource is reported by
// every call to Wait, for as long as its condition holds. The EdgeTriggered
// and OneShot flags may be included in the mask, to change this behavior on a
// per-watch basis.
//
// An Instance is itself a Resource, which is readable whenever it has pending
// items, so instances may be nested.
//
// All methods are safe for concurrent use. Multiple goroutines may call Wait
// on the same Instance, in which case each pending item is delivered to at
// most one waiter, per readiness occurrence.
package epoll
