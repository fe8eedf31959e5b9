// Package cache holds the most recently installed aurora snapshot.
package cache

import (
	"sync/atomic"

	"aurorawatch/internal/models"
)

type entry struct {
	seq      uint64
	snapshot *models.AuroraSnapshot
}

// SnapshotCache is safe for concurrent use. Readers get the installed
// snapshot pointer without locking; a snapshot is never mutated after install.
type SnapshotCache struct {
	current atomic.Pointer[entry]
}

// New returns an empty cache.
func New() *SnapshotCache {
	return &SnapshotCache{}
}

// Get returns the installed snapshot, or nil before the first install.
func (c *SnapshotCache) Get() *models.AuroraSnapshot {
	if e := c.current.Load(); e != nil {
		return e.snapshot
	}
	return nil
}

// Sequence returns the sequence of the installed snapshot, 0 when empty.
func (c *SnapshotCache) Sequence() uint64 {
	if e := c.current.Load(); e != nil {
		return e.seq
	}
	return 0
}

// Install replaces the snapshot only if seq is strictly newer than the
// installed one. It reports whether the snapshot was installed.
func (c *SnapshotCache) Install(seq uint64, s *models.AuroraSnapshot) bool {
	if s == nil {
		return false
	}
	next := &entry{seq: seq, snapshot: s}
	for {
		cur := c.current.Load()
		if cur != nil && seq <= cur.seq {
			return false
		}
		if c.current.CompareAndSwap(cur, next) {
			return true
		}
	}
}

// Set installs s with the sequence following the installed one and returns it.
func (c *SnapshotCache) Set(s *models.AuroraSnapshot) uint64 {
	if s == nil {
		return c.Sequence()
	}
	for {
		cur := c.current.Load()
		var seq uint64 = 1
		if cur != nil {
			seq = cur.seq + 1
		}
		if c.current.CompareAndSwap(cur, &entry{seq: seq, snapshot: s}) {
			return seq
		}
	}
}
