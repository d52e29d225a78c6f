package anvil

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// RCoord is a region coordinate. Regions tile the world in 32-chunk steps,
// so region coordinates may be negative and are unbounded.
type RCoord int

// CCoord is a region-relative chunk coordinate in [0,32).
type CCoord int

// RegionCoord identifies one region file within a dimension.
type RegionCoord struct {
	X, Z RCoord
}

// ChunkCoord identifies a chunk by absolute chunk coordinates.
type ChunkCoord struct {
	X, Z int
}

// Region yields typed chunks by region-relative coordinate.
type Region[C any] interface {
	// Chunk loads the chunk at the given coordinates, ie 0..32 for x and z.
	// Every failure mode - ungenerated slot, corrupt data, decode failure -
	// collapses into absent here. Callers that need to tell absence from
	// corruption should use Reader directly.
	Chunk(x, z CCoord) (C, bool)
}

// RegionLoader produces regions from some backing store: a directory of
// region files, a file buffer in a browser, anything byte-addressable.
// Loaders do not cache; Dimension handles that.
type RegionLoader[C any] interface {
	// Region returns the region at the given coordinates, or absent if the
	// store holds no data for it.
	Region(x, z RCoord) (Region[C], bool)

	// List enumerates every region coordinate the store can currently
	// produce, so callers can efficiently find regions to process.
	List() ([]RegionCoord, error)
}

const defaultChunkCacheSize = 4096

// Dimension is a caching facade over a RegionLoader. Successfully loaded
// regions are memoized by coordinate and shared between all callers; absent
// regions are not recorded, so a region file that appears later is picked up
// on the next lookup.
type Dimension[C any] struct {
	loader RegionLoader[C]

	mu      sync.Mutex
	regions map[RegionCoord]Region[C]

	chunks *lru.Cache[ChunkCoord, C]
}

// NewDimension wraps a loader. The ownership of the loader is transferred to
// the dimension.
func NewDimension[C any](loader RegionLoader[C]) *Dimension[C] {
	chunks, _ := lru.New[ChunkCoord, C](defaultChunkCacheSize)
	return &Dimension[C]{
		loader:  loader,
		regions: make(map[RegionCoord]Region[C]),
		chunks:  chunks,
	}
}

// Region returns the region at the given coordinates, loading and caching it
// on first use. Once a coordinate has been cached every later lookup returns
// a handle to the same region state without consulting the loader.
func (d *Dimension[C]) Region(x, z RCoord) (Region[C], bool) {
	key := RegionCoord{X: x, Z: z}

	d.mu.Lock()
	r, ok := d.regions[key]
	d.mu.Unlock()
	if ok {
		return r, true
	}

	// Concurrent first lookups for the same coordinate may both reach the
	// loader; the slot is settled once below, first writer wins.
	r, ok = d.loader.Region(x, z)
	if !ok {
		return nil, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if cached, ok := d.regions[key]; ok {
		return cached, true
	}
	d.regions[key] = r
	return r, true
}

// List enumerates the region coordinates the underlying loader can produce.
func (d *Dimension[C]) List() ([]RegionCoord, error) {
	return d.loader.List()
}

// Chunk loads the chunk at the given absolute chunk coordinates, consulting
// a bounded cache of decoded chunks before touching the region. Absence and
// decode failure both report absent.
func (d *Dimension[C]) Chunk(cx, cz int) (C, bool) {
	key := ChunkCoord{X: cx, Z: cz}
	if c, ok := d.chunks.Get(key); ok {
		return c, true
	}

	var zero C
	region, ok := d.Region(RCoord(cx>>5), RCoord(cz>>5))
	if !ok {
		return zero, false
	}

	c, ok := region.Chunk(CCoord(cx&31), CCoord(cz&31))
	if !ok {
		return zero, false
	}
	d.chunks.Add(key, c)
	return c, true
}
