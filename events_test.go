package epoll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvents_String(t *testing.T) {
	for _, tc := range [...]struct {
		name   string
		events Events
		want   string
	}{
		{`zero`, 0, `0`},
		{`readable`, Readable, `Readable`},
		{`readable writable`, Readable | Writable, `Readable|Writable`},
		{`error bits`, ErrorEvents, `Error|Hangup`},
		{`flags`, Readable | EdgeTriggered | OneShot, `Readable|OneShot|EdgeTriggered`},
		{`unknown only`, 0x100, `0x100`},
		{`mixed unknown`, Writable | 0x40 | 0x100, `Writable|0x140`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.events.String())
		})
	}
}

func TestEvents_Has(t *testing.T) {
	assert.True(t, (Readable | Writable).Has(Readable))
	assert.True(t, (Readable | Writable).Has(Readable|Writable))
	assert.False(t, Readable.Has(Readable|Writable))
	assert.True(t, Readable.Has(0))
}

func TestInterest(t *testing.T) {
	assert.Equal(t, ErrorEvents, interest(0))
	assert.Equal(t, Readable|ErrorEvents, interest(Readable))
	assert.Equal(t, Writable|ErrorEvents, interest(Writable|EdgeTriggered|OneShot))
	assert.Equal(t, ErrorEvents, interest(Error))
}
