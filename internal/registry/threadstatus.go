package registry

import "sync"

// StatusUnknown is reported for threads the cache has never seen.
const StatusUnknown = "unknown"

// ThreadStatus is a minimal per-thread status projection keyed by the
// external thread id. It carries no ownership: it is always safe to
// discard and recompute from the thread itself.
type ThreadStatus struct {
	Status        string
	StoppedReason string
	CurrentTurn   int
	MaxTurns      int
}

// ThreadStatusPatch updates individual flags without clobbering the
// rest of the entry.
type ThreadStatusPatch struct {
	StoppedReason *string
	CurrentTurn   *int
	MaxTurns      *int
}

// ThreadStatusCache is a flat cache; entries are small enough that one
// lock over the whole map is not a contention concern.
type ThreadStatusCache struct {
	mu       sync.RWMutex
	statuses map[string]ThreadStatus
}

func NewThreadStatusCache() *ThreadStatusCache {
	return &ThreadStatusCache{statuses: make(map[string]ThreadStatus)}
}

// Set records the status for a thread, creating the entry on first use.
func (c *ThreadStatusCache) Set(threadID, status string, patch ThreadStatusPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.statuses[threadID]
	entry.Status = status
	if patch.StoppedReason != nil {
		entry.StoppedReason = *patch.StoppedReason
	}
	if patch.CurrentTurn != nil {
		entry.CurrentTurn = *patch.CurrentTurn
	}
	if patch.MaxTurns != nil {
		entry.MaxTurns = *patch.MaxTurns
	}
	c.statuses[threadID] = entry
}

// Get returns the cached status, or a synthetic "unknown" entry when
// the thread has never been recorded.
func (c *ThreadStatusCache) Get(threadID string) ThreadStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if entry, ok := c.statuses[threadID]; ok {
		return entry
	}
	return ThreadStatus{Status: StatusUnknown}
}

// Delete removes the entry for a thread.
func (c *ThreadStatusCache) Delete(threadID string) {
	c.mu.Lock()
	delete(c.statuses, threadID)
	c.mu.Unlock()
}
