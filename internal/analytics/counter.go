// Package analytics counts identifiers minted per profile and persists the
// totals in batches.
package analytics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Flusher persists accumulated minted counts keyed by profile name.
type Flusher interface {
	FlushMinted(ctx context.Context, counts map[string]int64) error
}

// Config holds configuration for the MintCounter.
type Config struct {
	FlushInterval time.Duration // How often to flush accumulated counts
	BatchSize     int           // Flush once this many identifiers are pending
	ChannelBuffer int           // Size of the event channel buffer
	FlushTimeout  time.Duration // Deadline for a single flush
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		FlushInterval: 10 * time.Second,
		BatchSize:     1000,
		ChannelBuffer: 10000,
		FlushTimeout:  5 * time.Second,
	}
}

type mintEvent struct {
	profile string
	n       int
}

// MintCounter provides non-blocking, batched per-profile mint counting.
type MintCounter struct {
	flusher Flusher
	cfg     Config

	events       chan mintEvent
	counts       map[string]int64
	countsMu     sync.Mutex
	pendingCount int64 // total pending identifiers (for batch size check)
	dropped      atomic.Int64

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
	stopped  atomic.Bool
}

// NewMintCounter creates a MintCounter and starts its flush loop.
func NewMintCounter(cfg Config, flusher Flusher) *MintCounter {
	defaults := DefaultConfig()
	if cfg.ChannelBuffer <= 0 {
		cfg.ChannelBuffer = defaults.ChannelBuffer
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaults.FlushInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = defaults.FlushTimeout
	}

	c := &MintCounter{
		flusher:  flusher,
		cfg:      cfg,
		events:   make(chan mintEvent, cfg.ChannelBuffer),
		counts:   make(map[string]int64),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}

	go c.run()
	return c
}

// RecordMint records n identifiers minted under profile. It never blocks;
// events are dropped when the buffer is full or the counter is stopped.
func (c *MintCounter) RecordMint(profile string, n int) {
	if profile == "" || n <= 0 || c.stopped.Load() {
		return
	}

	select {
	case c.events <- mintEvent{profile: profile, n: n}:
	default:
		c.dropped.Add(1)
	}
}

// Dropped returns the number of events discarded because the buffer was full.
func (c *MintCounter) Dropped() int64 {
	return c.dropped.Load()
}

// Stop stops the counter and flushes remaining counts.
func (c *MintCounter) Stop() {
	c.stopOnce.Do(func() {
		c.stopped.Store(true)
		close(c.stopChan)
		<-c.doneChan
	})
}

// PendingCounts returns a snapshot of unflushed counts.
func (c *MintCounter) PendingCounts() map[string]int64 {
	c.countsMu.Lock()
	defer c.countsMu.Unlock()

	result := make(map[string]int64, len(c.counts))
	for k, v := range c.counts {
		result[k] = v
	}
	return result
}

func (c *MintCounter) run() {
	defer close(c.doneChan)

	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-c.events:
			if c.add(ev) {
				c.flush()
			}

		case <-ticker.C:
			c.flush()

		case <-c.stopChan:
			c.drain()
			c.flush()
			return
		}
	}
}

// add accumulates ev and reports whether the batch size was reached.
func (c *MintCounter) add(ev mintEvent) bool {
	c.countsMu.Lock()
	defer c.countsMu.Unlock()

	c.counts[ev.profile] += int64(ev.n)
	c.pendingCount += int64(ev.n)
	return c.pendingCount >= int64(c.cfg.BatchSize)
}

func (c *MintCounter) drain() {
	for {
		select {
		case ev := <-c.events:
			c.add(ev)
		default:
			return
		}
	}
}

// flush hands accumulated counts to the flusher. Failed batches are not
// retried.
func (c *MintCounter) flush() {
	c.countsMu.Lock()
	if len(c.counts) == 0 {
		c.countsMu.Unlock()
		return
	}

	toFlush := c.counts
	c.counts = make(map[string]int64)
	c.pendingCount = 0
	c.countsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.FlushTimeout)
	defer cancel()

	_ = c.flusher.FlushMinted(ctx, toFlush)
}
