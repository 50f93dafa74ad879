package worklog

import (
	"sort"
	"sync"
)

// Collection is the in-memory view of the authoritative log collection,
// kept in display order and merged by the same upsert/delete semantics
// whether a change is local or arrives from another device. It is the
// offline fallback when the database is unreachable.
type Collection struct {
	mu   sync.RWMutex
	logs []WorkLog
	byID map[string]int
}

func NewCollection() *Collection {
	return &Collection{byID: make(map[string]int)}
}

// Replace swaps in a freshly loaded batch wholesale.
func (c *Collection) Replace(logs []WorkLog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append([]WorkLog(nil), logs...)
	c.resort()
}

// Upsert overwrites entries by id or inserts new ones. Entries for other
// employees and dates are untouched.
func (c *Collection) Upsert(logs []WorkLog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range logs {
		if i, ok := c.byID[l.ID]; ok {
			c.logs[i] = l
			continue
		}
		c.logs = append(c.logs, l)
		c.byID[l.ID] = len(c.logs) - 1
	}
	c.resort()
}

// Delete removes an entry by id. Deleting an unknown id is a no-op.
func (c *Collection) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.byID[id]
	if !ok {
		return
	}
	c.logs = append(c.logs[:i], c.logs[i+1:]...)
	c.resort()
}

// Get returns the entry with the given id.
func (c *Collection) Get(id string) (WorkLog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return WorkLog{}, false
	}
	return c.logs[i], true
}

// All returns the collection in display order.
func (c *Collection) All() []WorkLog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]WorkLog(nil), c.logs...)
}

// ByUserDate returns every entry for one employee-day.
func (c *Collection) ByUserDate(userID, date string) []WorkLog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []WorkLog
	for _, l := range c.logs {
		if l.UserID == userID && l.Date == date {
			out = append(out, l)
		}
	}
	return out
}

// OpenByUser returns the employee's currently open work sessions.
func (c *Collection) OpenByUser(userID string) []WorkLog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []WorkLog
	for _, l := range c.logs {
		if l.UserID == userID && l.IsOpen() {
			out = append(out, l)
		}
	}
	return out
}

// Open returns every open work session in the collection.
func (c *Collection) Open() []WorkLog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []WorkLog
	for _, l := range c.logs {
		if l.IsOpen() {
			out = append(out, l)
		}
	}
	return out
}

// resort restores display order and rebuilds the id index. Callers hold
// the write lock.
func (c *Collection) resort() {
	sort.SliceStable(c.logs, func(i, j int) bool {
		return Less(c.logs[i], c.logs[j])
	})
	c.byID = make(map[string]int, len(c.logs))
	for i, l := range c.logs {
		c.byID[l.ID] = i
	}
}
