package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter implements an in-memory sliding window quota.
type MemoryLimiter struct {
	config  Config
	now     func() time.Time
	entries sync.Map // map[string]*entry

	// For cleanup
	done chan struct{}
	wg   sync.WaitGroup
}

// charge is one accepted Allow call.
type charge struct {
	at   time.Time
	cost int
}

// entry holds the charges of a single key, oldest first.
type entry struct {
	mu      sync.Mutex
	charges []charge
	used    int
}

// expire drops charges at or before windowStart.
func (e *entry) expire(windowStart time.Time) {
	i := 0
	for i < len(e.charges) && !e.charges[i].at.After(windowStart) {
		e.used -= e.charges[i].cost
		i++
	}
	e.charges = e.charges[i:]
}

// NewMemoryLimiter creates a new in-memory quota limiter.
// Non-positive fields fall back to DefaultConfig.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	defaults := DefaultConfig()
	if cfg.IDs <= 0 {
		cfg.IDs = defaults.IDs
	}
	if cfg.Window <= 0 {
		cfg.Window = defaults.Window
	}

	m := &MemoryLimiter{
		config: cfg,
		now:    time.Now,
		done:   make(chan struct{}),
	}

	// Start cleanup goroutine
	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// Allow charges cost identifiers to key. Costs below one count as one.
func (m *MemoryLimiter) Allow(ctx context.Context, key string, cost int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cost < 1 {
		cost = 1
	}

	now := m.now()

	entryVal, _ := m.entries.LoadOrStore(key, &entry{})
	e := entryVal.(*entry)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.expire(now.Add(-m.config.Window))

	var resetAfter time.Duration
	if len(e.charges) > 0 {
		resetAfter = max(e.charges[0].at.Add(m.config.Window).Sub(now), 0)
	}

	if e.used+cost > m.config.IDs {
		return &Result{
			Allowed:    false,
			Remaining:  m.config.IDs - e.used,
			ResetAfter: resetAfter,
			RetryAfter: m.retryAfter(e, cost, now),
			Limit:      m.config.IDs,
		}, nil
	}

	e.charges = append(e.charges, charge{at: now, cost: cost})
	e.used += cost
	if len(e.charges) == 1 {
		resetAfter = m.config.Window
	}

	return &Result{
		Allowed:    true,
		Remaining:  m.config.IDs - e.used,
		ResetAfter: resetAfter,
		Limit:      m.config.IDs,
	}, nil
}

// retryAfter returns how long until enough charges expire for cost to fit.
// A cost above the quota never fits; the full window is suggested.
func (m *MemoryLimiter) retryAfter(e *entry, cost int, now time.Time) time.Duration {
	if cost > m.config.IDs {
		return m.config.Window
	}
	freed := m.config.IDs - e.used
	for _, c := range e.charges {
		freed += c.cost
		if freed >= cost {
			return max(c.at.Add(m.config.Window).Sub(now), 0)
		}
	}
	return m.config.Window
}

// Reset clears the quota state for a key.
func (m *MemoryLimiter) Reset(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.entries.Delete(key)
	return nil
}

// Close releases resources held by the limiter.
func (m *MemoryLimiter) Close() error {
	close(m.done)
	m.wg.Wait()
	return nil
}

// cleanupLoop periodically removes expired entries.
func (m *MemoryLimiter) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Window)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

// cleanup removes keys whose charges have all expired.
func (m *MemoryLimiter) cleanup() {
	windowStart := m.now().Add(-m.config.Window)

	m.entries.Range(func(key, value interface{}) bool {
		e := value.(*entry)
		e.mu.Lock()
		e.expire(windowStart)
		empty := len(e.charges) == 0
		e.mu.Unlock()

		if empty {
			m.entries.Delete(key)
		}
		return true
	})
}
