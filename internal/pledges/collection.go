// Package pledges holds the local pledge collection and the operations that
// keep it in step with the ledger.
package pledges

import (
	"slices"
	"sync"
	"time"

	"github.com/julianstephens/stackspledge/internal/models"
)

type entry struct {
	pledge models.Pledge
	// stamp is the generation of the last local patch or refresh that wrote the record
	stamp uint64
}

// Collection is the process-local cache of pledges shared by every view.
//
// Every refresh pass and every optimistic patch draws a number from one
// monotonic generation counter. A refresh is applied only if no newer pass was
// applied before it, and it never overwrites a record patched after the pass
// began.
type Collection struct {
	mu      sync.RWMutex
	gen     uint64
	applied uint64
	entries map[uint64]*entry
}

func NewCollection() *Collection {
	return &Collection{entries: make(map[uint64]*entry)}
}

// BeginRefresh returns the token a refresh pass must present to ApplyRefresh.
func (c *Collection) BeginRefresh() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return c.gen
}

// ApplyRefresh replaces the collection with the ledger records read by the
// pass identified by token. It reports false if the result was discarded
// because a newer pass had already been applied.
func (c *Collection) ApplyRefresh(token uint64, fetched []models.Pledge) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token < c.applied {
		return false
	}

	next := make(map[uint64]*entry, len(fetched))
	for _, p := range fetched {
		next[p.ID] = &entry{pledge: clonePledge(p), stamp: token}
	}

	for id, local := range c.entries {
		if local.stamp <= token {
			continue
		}
		if remote, ok := next[id]; ok {
			next[id] = &entry{pledge: mergePatched(local.pledge, remote.pledge), stamp: local.stamp}
		} else {
			next[id] = local
		}
	}

	c.entries = next
	c.applied = token
	return true
}

// mergePatched keeps a local patch while never letting vouches go down or a
// completion revert.
func mergePatched(local, remote models.Pledge) models.Pledge {
	out := clonePledge(local)
	if remote.Vouches > out.Vouches {
		out.Vouches = remote.Vouches
	}
	if remote.Completed {
		out.Completed = true
		if remote.CompletedAt != nil {
			ts := *remote.CompletedAt
			out.CompletedAt = &ts
		}
	}
	return out
}

// Replace loads pledges wholesale, e.g. from a saved snapshot. Stamps restart
// at the current generation.
func (c *Collection) Replace(pledges []models.Pledge) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.applied = c.gen
	c.entries = make(map[uint64]*entry, len(pledges))
	for _, p := range pledges {
		c.entries[p.ID] = &entry{pledge: clonePledge(p), stamp: c.gen}
	}
}

func (c *Collection) Get(id uint64) (models.Pledge, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok {
		return models.Pledge{}, false
	}
	return clonePledge(e.pledge), true
}

// IncrementVouches applies an optimistic +1 to id.
func (c *Collection) IncrementVouches(id uint64) (models.Pledge, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return models.Pledge{}, false
	}
	c.gen++
	e.pledge.Vouches++
	e.stamp = c.gen
	return clonePledge(e.pledge), true
}

// MarkCompleted applies an optimistic completion at the given time. An already
// completed pledge keeps its original timestamp.
func (c *Collection) MarkCompleted(id uint64, at time.Time) (models.Pledge, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return models.Pledge{}, false
	}
	c.gen++
	if !e.pledge.Completed {
		e.pledge.MarkCompleted(at)
	}
	e.stamp = c.gen
	return clonePledge(e.pledge), true
}

// Snapshot returns a copy of every pledge, newest id first.
func (c *Collection) Snapshot() []models.Pledge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Pledge, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, clonePledge(e.pledge))
	}
	slices.SortFunc(out, func(a, b models.Pledge) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	return out
}

// ByCreator returns the pledges created by address, newest first.
func (c *Collection) ByCreator(address string) []models.Pledge {
	all := c.Snapshot()
	out := all[:0]
	for _, p := range all {
		if p.IsCreator(address) {
			out = append(out, p)
		}
	}
	return out
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Collection) Stats() models.Stats {
	return models.ComputeStats(c.Snapshot())
}

func (c *Collection) UserStats(address string) models.UserStats {
	return models.ComputeUserStats(c.Snapshot(), address)
}

func clonePledge(p models.Pledge) models.Pledge {
	if p.CompletedAt != nil {
		ts := *p.CompletedAt
		p.CompletedAt = &ts
	}
	return p
}
