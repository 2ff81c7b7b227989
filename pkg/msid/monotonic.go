package msid

import "sync"

// trackerKey identifies a configuration outside the default fast path.
type trackerKey struct {
	epochMs    int64
	alphabet   string
	resolution Resolution
}

// tracker remembers the last offset emitted per configuration and keeps
// offsets strictly increasing, even when the clock stands still or moves
// backwards. During bursts emitted offsets run ahead of wall-clock time.
type tracker struct {
	mu sync.Mutex

	// Default configuration slots, indexed by resolution.
	defaultLast [Day + 1]uint64
	defaultSeen [Day + 1]bool

	custom map[trackerKey]uint64
}

func newTracker() *tracker {
	return &tracker{custom: make(map[trackerKey]uint64)}
}

// next returns raw if it is greater than every offset previously returned
// for the configuration, otherwise the last offset plus one.
func (t *tracker) next(key trackerKey, raw uint64) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if key.epochMs == 0 && key.alphabet == DefaultAlphabet {
		offset := advance(raw, t.defaultLast[key.resolution], t.defaultSeen[key.resolution])
		t.defaultLast[key.resolution] = offset
		t.defaultSeen[key.resolution] = true
		return offset
	}

	last, seen := t.custom[key]
	offset := advance(raw, last, seen)
	t.custom[key] = offset
	return offset
}

func advance(raw, last uint64, seen bool) uint64 {
	if !seen || raw > last {
		return raw
	}
	return last + 1
}

// reset forgets all tracked offsets.
func (t *tracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.defaultLast = [Day + 1]uint64{}
	t.defaultSeen = [Day + 1]bool{}
	t.custom = make(map[trackerKey]uint64)
}
