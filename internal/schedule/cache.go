package schedule

import (
	"sync"

	"github.com/dalbodeule/calbot/internal/model"
)

// ViewCache keeps, per requester, the records of the most recent day view.
// Put replaces the whole entry (last write wins); there is no merge, no
// expiry, and no capacity bound; the key space is the set of real users.
// A second view from the same requester silently invalidates the indices of
// the first one; that is the intended policy, not a defect.
type ViewCache struct {
	mu    sync.RWMutex
	views map[string][]model.EventRecord
}

func NewViewCache() *ViewCache {
	return &ViewCache{views: make(map[string][]model.EventRecord)}
}

// Put stores records as the requester's current snapshot, replacing any
// prior entry wholesale.
func (c *ViewCache) Put(requesterID string, records []model.EventRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[requesterID] = records
}

// Get returns the requester's current snapshot. ok is false when the
// requester has never viewed a day in this process.
func (c *ViewCache) Get(requesterID string) ([]model.EventRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	records, ok := c.views[requesterID]
	return records, ok
}
