package worklog

import (
	"sync"

	"github.com/crewclock/crewclock-backend-go/internal/domain/worklog"
)

// orgCollections holds one in-memory log collection per organization.
type orgCollections struct {
	mu   sync.Mutex
	byID map[string]*worklog.Collection
}

func newOrgCollections() *orgCollections {
	return &orgCollections{byID: make(map[string]*worklog.Collection)}
}

func (c *orgCollections) forOrg(orgID string) *worklog.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	coll, ok := c.byID[orgID]
	if !ok {
		coll = worklog.NewCollection()
		c.byID[orgID] = coll
	}
	return coll
}
