// Package volume reports space usage for the filesystem holding a path.
package volume

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jellydator/ttlcache/v3"
	"github.com/shirou/gopsutil/v4/disk"
)

// DefaultTTL bounds how stale a cached reading may be.
const DefaultTTL = 10 * time.Second

// Usage is a point-in-time reading for one filesystem.
type Usage struct {
	Path        string
	Total       uint64
	Used        uint64
	Free        uint64
	UsedPercent float64
}

// String renders u for a one-line header.
func (u Usage) String() string {
	return fmt.Sprintf("%s used of %s (%.1f%%), %s free",
		humanize.IBytes(u.Used), humanize.IBytes(u.Total), u.UsedPercent, humanize.IBytes(u.Free))
}

// Probe reads usage directly.
func Probe(path string) (Usage, error) {
	st, err := disk.Usage(path)
	if err != nil {
		return Usage{}, fmt.Errorf("volume usage for %s: %w", path, err)
	}
	return Usage{
		Path:        path,
		Total:       st.Total,
		Used:        st.Used,
		Free:        st.Free,
		UsedPercent: st.UsedPercent,
	}, nil
}

// Cache memoizes readings per path for a fixed TTL. Redraw loops call Get
// on every tick; the underlying statfs only runs once per TTL.
type Cache struct {
	items *ttlcache.Cache[string, Usage]
	probe func(string) (Usage, error)
}

// NewCache creates a cache. A non-positive ttl uses DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		items: ttlcache.New[string, Usage](
			ttlcache.WithTTL[string, Usage](ttl),
			ttlcache.WithDisableTouchOnHit[string, Usage](),
		),
		probe: Probe,
	}
}

// Get returns a cached reading, probing when none is fresh.
func (c *Cache) Get(path string) (Usage, error) {
	if item := c.items.Get(path); item != nil {
		return item.Value(), nil
	}
	u, err := c.probe(path)
	if err != nil {
		return Usage{}, err
	}
	c.items.Set(path, u, ttlcache.DefaultTTL)
	return u, nil
}
