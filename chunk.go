package anvil

// HeightMode selects how a Chunk computes surface heights.
type HeightMode int

const (
	// HeightModeTrust uses the height maps stored with the chunk. Fast, but
	// stale maps in old worlds may disagree with the blocks.
	HeightModeTrust HeightMode = iota
	// HeightModeCalculate recomputes heights from block data. Much slower.
	HeightModeCalculate
)

// Block is a block state in the pre-flattening format: a numeric id plus four
// bits of metadata.
type Block struct {
	ID   byte
	Data byte
}

// Biome is a numeric biome id.
type Biome byte

// Chunk is the capability a decoded chunk representation must provide for
// tools that walk world data. Implementations may back it with any storage
// format.
//
// The x and z arguments of SurfaceHeight, Biome and Block are in-chunk
// coordinates and must be in [0,16); passing anything else is a caller bug
// and panics.
type Chunk interface {
	// Status returns the chunk's generation status label.
	Status() string

	// SurfaceHeight returns the height of the first air-like block above
	// something not air-like.
	SurfaceHeight(x, z int, mode HeightMode) int

	// Biome returns the biome at the given coordinates. A biome may not
	// exist if the vertical section containing y is not present.
	Biome(x, y, z int) (Biome, bool)

	// Block returns the block at the given coordinates. A block may not
	// exist if the vertical section containing y is not present.
	Block(x, y, z int) (Block, bool)

	// YRange returns the half-open range of valid Y values for this chunk.
	YRange() (min, max int)
}

// ChunkDecoder turns a chunk's decompressed payload into a typed chunk.
type ChunkDecoder[C any] func(data []byte) (C, error)
