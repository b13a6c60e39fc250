package epoll

import (
	"math"
	"sync"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/joeycumines/logiface"
)

// Config models optional configuration, for New.
type Config struct {
	// Name identifies the instance, in log output.
	// **Defaults to "epoll", if empty, or Config is nil.**
	Name string

	// Logger receives structured log events. Lifecycle transitions are
	// logged at trace level, waits at debug level, and resource failures at
	// warning level. Logging is disabled if nil.
	Logger *logiface.Logger[logiface.Event]

	// Pool runs the goroutines that wait on Resource.Subscribe, then feed
	// the result back into the instance. Subscriptions may block for a long
	// time, so the pool must not be capacity constrained, and it must not
	// run tasks inline, on the calling goroutine.
	// **Defaults to a shared, unbounded pool, if nil, or Config is nil.**
	Pool gopool.Pool

	// LogRates limits how often warnings are logged, per category (e.g.
	// per failing resource), as accepted by catrate.NewLimiter. An empty,
	// non-nil map disables rate limiting.
	// **Defaults to 5 per second and 60 per minute, if nil, or Config is
	// nil.**
	LogRates map[time.Duration]int
}

const defaultName = `epoll`

var (
	defaultPoolOnce sync.Once
	defaultPool     gopool.Pool
)

func getDefaultPool() gopool.Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = gopool.NewPool(`epoll.subscriptions`, math.MaxInt32, gopool.NewConfig())
	})
	return defaultPool
}

func defaultLogRates() map[time.Duration]int {
	return map[time.Duration]int{
		time.Second: 5,
		time.Minute: 60,
	}
}
