package command

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Cooldown allows Rate invocations per user every Per.
type Cooldown struct {
	Rate int
	Per  time.Duration
}

type cooldownMapping struct {
	mu       sync.Mutex
	cooldown Cooldown
	buckets  map[string]*rate.Limiter
}

func newCooldownMapping(cd Cooldown) *cooldownMapping {
	if cd.Rate < 1 {
		cd.Rate = 1
	}
	return &cooldownMapping{cooldown: cd, buckets: map[string]*rate.Limiter{}}
}

// update consumes one use from key's bucket. A positive result means the
// bucket is empty and nothing was consumed.
func (m *cooldownMapping) update(key string, now time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	lim, ok := m.buckets[key]
	if !ok {
		every := m.cooldown.Per / time.Duration(m.cooldown.Rate)
		lim = rate.NewLimiter(rate.Every(every), m.cooldown.Rate)
		m.buckets[key] = lim
	}

	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return m.cooldown.Per
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return delay
	}
	return 0
}
