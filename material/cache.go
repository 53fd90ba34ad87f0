// Copyright (c) 2026, The Garb Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package material

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/stitchlab/garb/base/colorx"
	"github.com/stitchlab/garb/base/imagex"
)

// CacheOptions configure a [Cache].
type CacheOptions struct {

	// Capacity is the number of entries above which an insertion triggers
	// an eviction pass. Default is 50.
	Capacity int

	// IdleTimeout is how long an unreferenced entry may sit unused before
	// an eviction pass removes it. Entries idle past double this timeout
	// are considered leaked and reclaimed even if never released.
	// Default is 5 minutes.
	IdleTimeout time.Duration
}

func (o *CacheOptions) defaults() {
	if o.Capacity <= 0 {
		o.Capacity = 50
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = 5 * time.Minute
	}
}

// Stats are the diagnostic counters of a [Cache]. Counters are exact, not
// sampled.
type Stats struct {
	Hits          int64
	Misses        int64
	HitRate       float64
	AvgCreateTime time.Duration
	MemoryBytes   int64
	Entries       int
}

// entry owns one material and its loaded textures, with the bookkeeping
// the eviction policy needs.
type entry struct {
	key        string
	mat        *Material
	lastAccess time.Time
	refs       int
	size       int64
	disposed   bool
}

// Cache resolves material descriptors to ready [Material]s, deduplicating
// identical requests by canonical key and evicting unused entries when an
// insertion pushes it over capacity.
//
// A Cache is an explicitly constructed service: create one at application
// start with [NewCache] and pass it to consumers. All methods are safe for
// concurrent use.
type Cache struct {
	mu      sync.Mutex
	loader  Loader
	entries map[string]*entry
	opts    CacheOptions
	group   singleflight.Group

	hits       int64
	misses     int64
	creates    int64
	createTime time.Duration
	memory     int64

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewCache returns a new [Cache] using the given texture loader.
func NewCache(loader Loader, opts CacheOptions) *Cache {
	opts.defaults()
	return &Cache{
		loader:  loader,
		entries: make(map[string]*entry),
		opts:    opts,
		now:     time.Now,
	}
}

// Get resolves the descriptor (with the optional color override merged into
// its base color) to a ready material. On a hit the cached material is
// returned immediately; on a miss the material is constructed and its
// texture maps loaded concurrently, with per-map failures degrading the
// material instead of failing it. Concurrent calls for the same key share
// one in-flight load.
//
// Every successful Get increments the entry's reference count; callers must
// balance it with [Cache.Release].
func (c *Cache) Get(ctx context.Context, desc Descriptor, colorOverride string) (*Material, error) {
	merged := desc.withOverride(colorOverride)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	key := merged.Key()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.disposed {
		c.hits++
		e.lastAccess = c.now()
		e.refs++
		c.mu.Unlock()
		return e.mat, nil
	}
	c.misses++
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.build(ctx, key, merged)
	})
	if err != nil {
		return nil, err
	}
	mat := v.(*Material)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.disposed {
		e.lastAccess = c.now()
		e.refs++
	}
	c.mu.Unlock()
	return mat, nil
}

// build constructs the material for the key: scalars synchronously, then
// all texture slots loaded concurrently and awaited together. Runs inside
// the singleflight group, so at most once per key at a time.
func (c *Cache) build(ctx context.Context, key string, desc Descriptor) (*Material, error) {
	// A previous flight may have finished between our miss and this call.
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.disposed {
		c.mu.Unlock()
		return e.mat, nil
	}
	c.mu.Unlock()

	start := c.now()
	mat := &Material{
		Name:      desc.Name,
		Category:  desc.Category,
		Roughness: desc.Roughness,
		Metalness: desc.Metalness,
		key:       key,
	}
	if desc.BaseColor != "" {
		mat.BaseColor = colorx.MustFromHex(desc.BaseColor) // validated above
	}

	g, gctx := errgroup.WithContext(ctx)
	for s := Slot(0); s < SlotsN; s++ {
		s := s
		ref := desc.Textures.Ref(s)
		if ref == "" {
			continue
		}
		g.Go(func() error {
			img, err := c.loader.Load(gctx, ref)
			if err != nil {
				slog.Error("material: texture load failed, map not applied",
					"material", desc.Name, "slot", s.String(), "ref", ref, "err", err)
				return nil
			}
			mat.maps[s] = imagex.AsRGBA(img) // each slot is written by exactly one goroutine
			return nil
		})
	}
	_ = g.Wait() // per-slot errors never propagate

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && !e.disposed {
		// Lost a race with an explicit re-insert; discard our result.
		return e.mat, nil
	}
	e := &entry{key: key, mat: mat, lastAccess: c.now(), size: mat.sizeBytes()}
	c.entries[key] = e
	c.memory += e.size
	c.creates++
	c.createTime += c.now().Sub(start)
	c.evictLocked()
	return mat, nil
}

// Release decrements the material's reference count, floored at zero.
// It does not evict: eviction is deferred to the next insertion-triggered
// cleanup pass.
func (c *Cache) Release(mat *Material) {
	if mat == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[mat.key]; ok && e.refs > 0 {
		e.refs--
	}
}

// Dispose forcibly evicts the material's entry regardless of reference
// count, for callers that know the asset is permanently retired.
func (c *Cache) Dispose(mat *Material) {
	if mat == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[mat.key]; ok {
		c.disposeLocked(e)
	}
}

// Contains reports whether a live entry exists for the descriptor with the
// override merged in, without touching timestamps or counters.
func (c *Cache) Contains(desc Descriptor, colorOverride string) bool {
	key := desc.withOverride(colorOverride).Key()
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && !e.disposed
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the current diagnostic counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		MemoryBytes: c.memory,
		Entries:     len(c.entries),
	}
	if total := c.hits + c.misses; total > 0 {
		st.HitRate = float64(c.hits) / float64(total)
	}
	if c.creates > 0 {
		st.AvgCreateTime = c.createTime / time.Duration(c.creates)
	}
	return st
}

// disposeLocked releases the entry's textures and removes it from the map,
// exactly once. Must be called under the mutex.
func (c *Cache) disposeLocked(e *entry) {
	if e.disposed {
		return
	}
	e.disposed = true
	e.mat.dispose()
	c.memory -= e.size
	delete(c.entries, e.key)
}

// evictLocked runs the insertion-triggered cleanup. First pass removes
// unreferenced entries idle past the timeout, and entries idle past double
// the timeout whose holders evidently never released them. If still over
// capacity, removes unreferenced entries strictly oldest-first; entries
// with positive reference counts are never evicted under pressure.
// Must be called under the mutex.
func (c *Cache) evictLocked() {
	if len(c.entries) <= c.opts.Capacity {
		return
	}
	now := c.now()
	for _, e := range c.entries {
		idle := now.Sub(e.lastAccess)
		if (e.refs == 0 && idle > c.opts.IdleTimeout) || idle > 2*c.opts.IdleTimeout {
			c.disposeLocked(e)
		}
	}
	if len(c.entries) <= c.opts.Capacity {
		return
	}
	byAge := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		byAge = append(byAge, e)
	}
	sort.Slice(byAge, func(i, j int) bool {
		return byAge[i].lastAccess.Before(byAge[j].lastAccess)
	})
	for _, e := range byAge {
		if len(c.entries) <= c.opts.Capacity {
			return
		}
		if e.refs > 0 {
			continue
		}
		c.disposeLocked(e)
	}
}
