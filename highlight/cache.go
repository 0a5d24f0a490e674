package highlight

import (
	"html/template"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize bounds a Cache with zero Max.
const DefaultCacheSize = 32

// Cache uses single-flight to highlight each key once when requested
// from multiple goroutines, and caches the highlighted HTML.
type Cache struct {
	Options Options
	// Max is the number of cached fragments kept before the cache is reset.
	Max   int
	mu    sync.RWMutex
	sf    singleflight.Group
	cache map[string]template.HTML
}

// Highlight returns the cached HTML of key, or highlights the text returned
// by source as language lang and caches it. Keys must identify the source
// content, e.g. by its checksum.
func (c *Cache) Highlight(key, lang string, source func() (string, error)) (template.HTML, error) {
	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.cache[key]
		opts := c.Options
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}
		text, err := source()
		if err != nil {
			return nil, err
		}
		out, err := String(lang, text, opts)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		limit := c.Max
		if limit <= 0 {
			limit = DefaultCacheSize
		}
		if c.cache == nil || len(c.cache) >= limit {
			c.cache = map[string]template.HTML{}
		}
		c.cache[key] = out
		c.mu.Unlock()
		return out, nil
	})
	cached, _ = v.(template.HTML)
	return cached, err
}

// Len returns the number of cached fragments.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
