package epoll

import (
	"errors"
)

var (
	// ErrClosed is returned by operations on a closed Instance, including
	// any Wait that was blocked, when the Instance was closed.
	ErrClosed = errors.New(`epoll: instance closed`)

	// ErrAlreadyRegistered is returned by Instance.Register, if the
	// resource is already being watched.
	ErrAlreadyRegistered = errors.New(`epoll: resource already registered`)

	// ErrNotRegistered is returned by Instance.Modify and
	// Instance.Unregister, if the resource is not being watched.
	ErrNotRegistered = errors.New(`epoll: resource not registered`)

	// ErrResourceClosed must be returned (or wrapped) by Resource
	// implementations, once closed. Watches on closed resources are
	// discarded, and never reported again.
	ErrResourceClosed = errors.New(`epoll: resource closed`)

	// ErrInvalidMaxEvents is returned by Instance.Wait if maxEvents < 1.
	ErrInvalidMaxEvents = errors.New(`epoll: max events must be positive`)

	// ErrSelfRegistration is returned by Instance.Register, if an instance
	// is asked to watch itself.
	ErrSelfRegistration = errors.New(`epoll: instance cannot watch itself`)
)
