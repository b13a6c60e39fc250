package epoll

import (
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

type (
	// instanceLogger wraps the configured logger, adding the fields common
	// to every event, and rate limiting warnings.
	instanceLogger struct {
		logger  *logiface.Logger[logiface.Event]
		limiter *catrate.Limiter
	}

	// warningCategory keys the rate limiter, so a single misbehaving
	// watch cannot flood the log, nor starve reports about others. Keyed by
	// cookie, so the limiter never retains a resource.
	warningCategory struct {
		kind   string
		cookie uint64
	}
)

func newInstanceLogger(name string, logger *logiface.Logger[logiface.Event], rates map[time.Duration]int) *instanceLogger {
	x := instanceLogger{
		logger: logger.Clone().Str(`epoll`, name).Logger(),
	}
	if x.logger != nil && len(rates) != 0 {
		x.limiter = catrate.NewLimiter(rates)
	}
	return &x
}

func (x *instanceLogger) trace(it *item, msg string) {
	if b := x.logger.Trace(); b.Enabled() {
		b.Uint64(`cookie`, it.cookie).
			Stringer(`mask`, it.mask).
			Str(`state`, it.state.String()).
			Log(msg)
	}
}

// warning logs at warning level, unless the category has exceeded its rate.
func (x *instanceLogger) warning(kind string, cookie uint64) *logiface.Builder[logiface.Event] {
	b := x.logger.Warning()
	if !b.Enabled() {
		return nil
	}
	if x.limiter != nil {
		if _, ok := x.limiter.Allow(warningCategory{kind: kind, cookie: cookie}); !ok {
			b.Release()
			return nil
		}
	}
	return b.Str(`kind`, kind)
}
