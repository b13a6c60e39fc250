package epolltest

import (
	"context"
	"testing"
	"time"

	"github.com/joeycumines/go-epoll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResource(t *testing.T) {
	r := NewResource(epoll.Readable | epoll.Writable)
	assert.Equal(t, uint64(1), r.Generation())
	assert.Equal(t, epoll.Readable|epoll.Writable, r.Levels())

	snapshot, err := r.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, epoll.Snapshot{Generation: 1, Levels: epoll.Readable | epoll.Writable}, snapshot)
	assert.Equal(t, 1, r.Checks())

	// initial levels count as edges, relative to any earlier generation
	snapshot, err = r.Subscribe(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, epoll.Snapshot{Generation: 1, Edges: epoll.Readable | epoll.Writable, Levels: epoll.Readable | epoll.Writable}, snapshot)
}

func TestResource_Set(t *testing.T) {
	r := NewResource(epoll.Readable)

	r.Set(epoll.Readable)
	assert.Equal(t, uint64(1), r.Generation(), `unchanged levels do not advance`)

	r.Set(epoll.Readable | epoll.Writable)
	assert.Equal(t, uint64(2), r.Generation())
	snapshot, err := r.Subscribe(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, epoll.Snapshot{Generation: 2, Edges: epoll.Writable, Levels: epoll.Readable | epoll.Writable}, snapshot)

	r.Remove(epoll.Readable)
	snapshot, err = r.Subscribe(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, epoll.Snapshot{Generation: 3, Levels: epoll.Writable}, snapshot, `falling edges are not edges`)

	r.Add(epoll.Readable)
	snapshot, err = r.Subscribe(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, epoll.Snapshot{Generation: 4, Edges: epoll.Readable | epoll.Writable, Levels: epoll.Readable | epoll.Writable}, snapshot)
}

func TestResource_Trigger(t *testing.T) {
	r := NewResource(epoll.Readable)
	r.Trigger(epoll.Readable)
	assert.Equal(t, uint64(2), r.Generation())
	snapshot, err := r.Subscribe(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, epoll.Snapshot{Generation: 2, Edges: epoll.Readable, Levels: epoll.Readable}, snapshot)
}

func TestResource_Subscribe_blocks(t *testing.T) {
	r := NewResource(0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*20)
	defer cancel()
	_, err := r.Subscribe(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, r.Subscribers())
	assert.Equal(t, 1, r.MaxSubscribers())
	assert.Equal(t, 1, r.Subscribes())

	done := make(chan epoll.Snapshot, 1)
	go func() {
		snapshot, err := r.Subscribe(context.Background(), 1)
		assert.NoError(t, err)
		done <- snapshot
	}()
	require.Eventually(t, func() bool { return r.Subscribers() == 1 }, time.Second*3, time.Millisecond)
	r.Add(epoll.Hangup)

	select {
	case snapshot := <-done:
		assert.Equal(t, epoll.Snapshot{Generation: 2, Edges: epoll.Hangup, Levels: epoll.Hangup}, snapshot)
	case <-time.After(time.Second * 3):
		t.Fatal(`subscribe did not return`)
	}
}

func TestResource_Close(t *testing.T) {
	r := NewResource(epoll.Readable)

	done := make(chan error, 1)
	go func() {
		_, err := r.Subscribe(context.Background(), 1)
		done <- err
	}()
	require.Eventually(t, func() bool { return r.Subscribers() == 1 }, time.Second*3, time.Millisecond)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, uint64(2), r.Generation())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, epoll.ErrResourceClosed)
	case <-time.After(time.Second * 3):
		t.Fatal(`subscribe did not return`)
	}

	_, err := r.CheckStatus(context.Background())
	assert.ErrorIs(t, err, epoll.ErrResourceClosed)
}

type mockTB struct {
	errors []string
}

func (*mockTB) Helper() {}

func (x *mockTB) Errorf(format string, args ...any) {
	x.errors = append(x.errors, format)
}

func TestCheckNumGoroutines(t *testing.T) {
	var tb mockTB
	check := CheckNumGoroutines(time.Millisecond * 30)
	stop := make(chan struct{})
	go func() { <-stop }()
	check(&tb)
	assert.Len(t, tb.errors, 1)

	close(stop)
	tb = mockTB{}
	CheckNumGoroutines(time.Millisecond * 30)(&tb)
	assert.Empty(t, tb.errors)
}
