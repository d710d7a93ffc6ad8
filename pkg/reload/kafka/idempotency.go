package kafka

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// versionLedger keeps the last fully applied version per dedupe key. Checking
// and recording are separate: an update is recorded only after its snapshot
// swap and cache flush both succeeded, so a redelivered message whose flush
// failed is applied again.
type versionLedger struct {
	mu      sync.Mutex
	applied *lru.Cache[string, uint64]
}

func newVersionLedger(size int) *versionLedger {
	if size <= 0 {
		size = 1024
	}
	c, _ := lru.New[string, uint64](size)
	return &versionLedger{applied: c}
}

// stale reports whether v is at or below the version recorded for key.
func (l *versionLedger) stale(key string, v uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	last, ok := l.applied.Get(key)
	return ok && v <= last
}

// record raises the version of key to v. Lower versions are ignored, so
// concurrent partitions cannot move a key backwards.
func (l *versionLedger) record(key string, v uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.applied.Get(key); ok && v <= last {
		return
	}
	l.applied.Add(key, v)
}

func (l *versionLedger) last(key string) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applied.Peek(key)
}
