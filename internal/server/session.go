package server

import (
	"container/list"
	"sync"

	"github.com/sheetwright/imposer/pkg/imposition"
)

// session holds one uploaded PDF's bytes and its one-time analysis, keyed
// by a session ID minted on upload.
type session struct {
	id       string
	filename string
	pdfBytes []byte
	analysis *imposition.AnalysisResult
}

// SessionCache is a bounded in-memory LRU of sessions. The original backend
// kept uploads in a plain dict capped at 10 entries, evicting whatever key
// came first out of dict iteration order — not a real LRU. This is one:
// every Get and Put moves the touched entry to the front, and Put evicts the
// actual least-recently-used entry once the cache is at capacity.
type SessionCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
}

// NewSessionCache returns a cache holding at most capacity sessions.
func NewSessionCache(capacity int) *SessionCache {
	if capacity <= 0 {
		capacity = 10
	}
	return &SessionCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Put inserts or replaces s, evicting the least-recently-used session if
// the cache is full.
func (c *SessionCache) Put(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[s.id]; ok {
		el.Value = s
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(s)
	c.entries[s.id] = el
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*session).id)
		}
	}
}

// Get returns the session for id and marks it most-recently-used.
func (c *SessionCache) Get(id string) (*session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*session), true
}
