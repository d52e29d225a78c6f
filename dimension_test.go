package anvil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testChunk struct {
	x, z CCoord
}

// fakeRegion hands out testChunks and counts how often it is asked.
type fakeRegion struct {
	chunkCalls int
}

func (r *fakeRegion) Chunk(x, z CCoord) (testChunk, bool) {
	r.chunkCalls++
	return testChunk{x: x, z: z}, true
}

// countingLoader produces a fresh fakeRegion per call so that cache hits are
// observable through handle identity.
type countingLoader struct {
	calls   int
	present map[RegionCoord]bool
}

func (l *countingLoader) Region(x, z RCoord) (Region[testChunk], bool) {
	l.calls++
	if !l.present[RegionCoord{X: x, Z: z}] {
		return nil, false
	}
	return &fakeRegion{}, true
}

func (l *countingLoader) List() ([]RegionCoord, error) {
	coords := make([]RegionCoord, 0, len(l.present))
	for coord := range l.present {
		coords = append(coords, coord)
	}
	return coords, nil
}

func TestDimensionCachesRegions(t *testing.T) {
	loader := &countingLoader{present: map[RegionCoord]bool{{0, 0}: true}}
	dim := NewDimension[testChunk](loader)

	first, ok := dim.Region(0, 0)
	require.True(t, ok)
	assert.Equal(t, 1, loader.calls)

	second, ok := dim.Region(0, 0)
	require.True(t, ok)
	assert.Equal(t, 1, loader.calls, "cached lookup must not re-invoke the loader")
	assert.Same(t, first, second, "cached lookup must return the same region state")
}

func TestDimensionNoNegativeCaching(t *testing.T) {
	loader := &countingLoader{present: map[RegionCoord]bool{}}
	dim := NewDimension[testChunk](loader)

	_, ok := dim.Region(3, -2)
	assert.False(t, ok)
	assert.Equal(t, 1, loader.calls)

	// The region appears after the failed lookup, eg a file written while we
	// were running. The next call must see it.
	loader.present[RegionCoord{X: 3, Z: -2}] = true
	_, ok = dim.Region(3, -2)
	assert.True(t, ok)
	assert.Equal(t, 2, loader.calls)
}

func TestDimensionList(t *testing.T) {
	loader := &countingLoader{present: map[RegionCoord]bool{
		{1, 2}:  true,
		{-3, 4}: true,
	}}
	dim := NewDimension[testChunk](loader)

	coords, err := dim.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []RegionCoord{{1, 2}, {-3, 4}}, coords)
}

func TestDimensionChunkCoordinateMapping(t *testing.T) {
	loader := &countingLoader{present: map[RegionCoord]bool{
		{0, 0}:   true,
		{-1, -1}: true,
		{2, 0}:   true,
	}}
	dim := NewDimension[testChunk](loader)

	tests := []struct {
		cx, cz   int
		inRegion testChunk
	}{
		{0, 0, testChunk{0, 0}},
		{31, 31, testChunk{31, 31}},
		{-1, -1, testChunk{31, 31}},
		{-32, -32, testChunk{0, 0}},
		{65, 0, testChunk{1, 0}},
	}
	for _, tt := range tests {
		c, ok := dim.Chunk(tt.cx, tt.cz)
		require.True(t, ok, "chunk %d,%d", tt.cx, tt.cz)
		assert.Equal(t, tt.inRegion, c, "chunk %d,%d", tt.cx, tt.cz)
	}
}

func TestDimensionChunkCached(t *testing.T) {
	loader := &countingLoader{present: map[RegionCoord]bool{{0, 0}: true}}
	dim := NewDimension[testChunk](loader)

	c1, ok := dim.Chunk(5, 7)
	require.True(t, ok)

	region, ok := dim.Region(0, 0)
	require.True(t, ok)
	fake := region.(*fakeRegion)
	assert.Equal(t, 1, fake.chunkCalls)

	c2, ok := dim.Chunk(5, 7)
	require.True(t, ok)
	assert.Equal(t, c1, c2)
	assert.Equal(t, 1, fake.chunkCalls, "second lookup must come from the chunk cache")
}

func TestDimensionChunkAbsentRegion(t *testing.T) {
	loader := &countingLoader{present: map[RegionCoord]bool{}}
	dim := NewDimension[testChunk](loader)

	_, ok := dim.Chunk(100, 100)
	assert.False(t, ok)
}
