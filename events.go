package epoll

import (
	"strconv"
	"strings"
)

// Events is a set of readiness bits. The values match the Linux epoll ABI,
// which is also the convention Resource implementations are expected to use.
type Events uint32

const (
	// Readable indicates data is available to read (EPOLLIN).
	Readable Events = 0x001
	// Priority indicates an exceptional condition (EPOLLPRI).
	Priority Events = 0x002
	// Writable indicates writing will not block (EPOLLOUT).
	Writable Events = 0x004
	// Error indicates an error condition (EPOLLERR). It is always of
	// interest, regardless of the registered mask.
	Error Events = 0x008
	// Hangup indicates the resource hung up (EPOLLHUP). It is always of
	// interest, regardless of the registered mask.
	Hangup Events = 0x010
	// ReadHangup indicates the peer closed its writing half (EPOLLRDHUP).
	ReadHangup Events = 0x2000

	// OneShot disables the watch after it has been reported once. It may be
	// re-enabled using Instance.Modify. Never reported as an event.
	OneShot Events = 1 << 30
	// EdgeTriggered causes a watch to be reported once per readiness edge,
	// rather than on every Wait while the condition holds. Never reported as
	// an event.
	EdgeTriggered Events = 1 << 31

	// ErrorEvents are implicitly part of every watch's interest.
	ErrorEvents = Error | Hangup

	flagEvents = OneShot | EdgeTriggered
)

var eventNames = [...]struct {
	bit  Events
	name string
}{
	{Readable, `Readable`},
	{Priority, `Priority`},
	{Writable, `Writable`},
	{Error, `Error`},
	{Hangup, `Hangup`},
	{ReadHangup, `ReadHangup`},
	{OneShot, `OneShot`},
	{EdgeTriggered, `EdgeTriggered`},
}

// Has returns true if all bits in mask are set.
func (x Events) Has(mask Events) bool {
	return x&mask == mask
}

// String returns the names of the set bits, joined by "|", with any unknown
// bits rendered in hex.
func (x Events) String() string {
	if x == 0 {
		return `0`
	}
	var b strings.Builder
	for _, v := range eventNames {
		if x&v.bit == 0 {
			continue
		}
		if b.Len() != 0 {
			b.WriteByte('|')
		}
		b.WriteString(v.name)
		x &^= v.bit
	}
	if x != 0 {
		if b.Len() != 0 {
			b.WriteByte('|')
		}
		b.WriteString(`0x`)
		b.WriteString(strconv.FormatUint(uint64(x), 16))
	}
	return b.String()
}

// interest returns the effective set of bits an item reports, given the mask
// it was registered with.
func interest(mask Events) Events {
	return (mask &^ flagEvents) | ErrorEvents
}
