package columns

import (
	"sync"

	"github.com/aster-data/aster/pkg/fingerprint"
	"github.com/aster-data/aster/pkg/models"
	"github.com/aster-data/aster/pkg/sheet"
)

// Cache memoizes role maps keyed by a fingerprint of the header row. It is
// caller-owned: each pipeline run (or each deployment that wants sharing
// across runs) constructs its own. Eviction is oldest-insertion-first once
// the bound is reached. Headerless sheets are never cached, since their
// inference depends on the data rows.
type Cache struct {
	mu       sync.Mutex
	bound    int
	entries  map[string]models.ColumnRoleMap
	ordering []string
}

func NewCache(bound int) *Cache {
	if bound <= 0 {
		bound = 128
	}
	return &Cache{
		bound:   bound,
		entries: make(map[string]models.ColumnRoleMap),
	}
}

// Infer returns the cached role map for the structure's header row, or runs
// the inferrer and caches the result.
func (c *Cache) Infer(inf *Inferrer, structure sheet.Structure) models.ColumnRoleMap {
	if structure.HeaderIndex < 0 {
		return inf.Infer(structure)
	}

	key := fingerprint.Row(structure.Header)

	c.mu.Lock()
	if roles, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return roles
	}
	c.mu.Unlock()

	roles := inf.Infer(structure)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if len(c.ordering) >= c.bound {
			oldest := c.ordering[0]
			c.ordering = c.ordering[1:]
			delete(c.entries, oldest)
		}
		c.entries[key] = roles
		c.ordering = append(c.ordering, key)
	}
	return roles
}

// Len returns the number of cached role maps.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
