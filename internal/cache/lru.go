package cache

import (
	"container/list"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/accessmap/aae/pkg/models"
)

type lruEntry struct {
	key     string
	payload *models.AnalysisResultPayload
}

// LRU is an in-process, size-bounded ResultCache. Eviction order is
// true least-recently-used (touched on both Get and Set), modeled on
// the candidate-eviction idiom the teacher used for pattern detection,
// but backed by container/list for O(1) touch/evict instead of a
// linear oldest-timestamp scan.
type LRU struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List
	index      map[string]*list.Element
}

// NewLRU returns an LRU bounded to maxEntries. maxEntries <= 0 means
// unbounded.
func NewLRU(maxEntries int) *LRU {
	return &LRU{
		maxEntries: maxEntries,
		order:      list.New(),
		index:      make(map[string]*list.Element),
	}
}

// Get returns the cached payload for key, if present, and marks it
// most-recently-used.
func (c *LRU) Get(key string) (*models.AnalysisResultPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).payload, true
}

// Set stores payload under key, evicting the least-recently-used entry
// if the cache is at capacity.
func (c *LRU) Set(key string, payload *models.AnalysisResultPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		el.Value.(*lruEntry).payload = payload
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&lruEntry{key: key, payload: payload})
	c.index[key] = el

	if c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			evicted := oldest.Value.(*lruEntry)
			delete(c.index, evicted.key)
			log.Debug().Str("evicted_key", evicted.key).Msg("evicted oldest cached result")
		}
	}
}
