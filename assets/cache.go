package assets

import (
	"sort"

	"github.com/gogpu/wgpu/hal"
)

// Cache maps texture keys to decoded textures.
type Cache struct {
	textures map[string]*Texture
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{textures: make(map[string]*Texture)}
}

// Put stores t under its key, replacing any previous entry.
func (c *Cache) Put(t *Texture) {
	c.textures[normalizeKey(t.key)] = t
}

// Lookup returns the texture stored under key.
func (c *Cache) Lookup(key string) (*Texture, bool) {
	if c == nil {
		return nil, false
	}
	t, ok := c.textures[normalizeKey(key)]
	return t, ok
}

// Len returns the number of cached textures.
func (c *Cache) Len() int { return len(c.textures) }

// Keys returns the cached keys in sorted order.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, len(c.textures))
	for k := range c.textures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Destroy releases every texture and empties the cache.
func (c *Cache) Destroy(device hal.Device) {
	for k, t := range c.textures {
		t.destroy(device)
		delete(c.textures, k)
	}
}
