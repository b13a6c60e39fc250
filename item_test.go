package epoll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemState_String(t *testing.T) {
	assert.Equal(t, `none`, itemState(0).String())
	assert.Equal(t, `active|pending`, (stateActive | statePending).String())
	assert.Equal(t, `active|subscribed|pending`, (stateActive | stateSubscribed | statePending).String())
}

func TestItem_setClear(t *testing.T) {
	var it item
	it.set(stateActive)
	assert.True(t, it.has(stateActive))
	assert.PanicsWithValue(t, `epoll: item state already set: active`, func() { it.set(stateActive | statePending) })
	it.set(statePending)
	assert.True(t, it.has(stateActive|statePending))
	it.clear(stateActive)
	assert.PanicsWithValue(t, `epoll: item state not set: active`, func() { it.clear(stateActive) })
	it.clear(statePending)
	assert.Zero(t, it.state)
}

func TestInstance_release(t *testing.T) {
	x := New(nil)
	defer x.Close()

	it := &item{owner: x, resource: x, state: stateActive | statePending}
	x.live = 1

	x.release(it)
	require.False(t, it.destroyed, `items with state must not be destroyed`)

	it.state = 0
	x.release(it)
	require.True(t, it.destroyed)
	assert.Nil(t, it.resource)
	assert.Zero(t, x.live)

	assert.PanicsWithValue(t, `epoll: item destroyed twice`, func() { x.release(it) })
	assert.PanicsWithValue(t, `epoll: set state on destroyed item`, func() { it.set(statePending) })
}

func TestInstance_pendingQueue(t *testing.T) {
	x := New(nil)
	defer x.Close()

	a := &item{state: stateActive, cookie: 1}
	b := &item{state: stateActive, cookie: 2}

	generation := x.bell.sequence()
	assert.True(t, x.markPending(a))
	assert.True(t, x.markPending(b))
	assert.False(t, x.markPending(a), `already pending`)
	assert.Equal(t, generation+2, x.bell.sequence())
	assert.Equal(t, 2, x.queue.Len())

	x.unlink(b)
	assert.False(t, b.has(statePending))
	assert.Nil(t, b.elem)

	popped := x.popPending()
	require.Same(t, a, popped)
	assert.True(t, popped.has(statePending), `popped items remain claimed`)
	assert.Nil(t, popped.elem)
	x.unlink(popped)
	assert.True(t, popped.has(statePending), `claimed items are not unlinked`)
	assert.Nil(t, x.popPending())
}
