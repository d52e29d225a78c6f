package anvil

import (
	"fmt"

	"github.com/Tnze/go-mc/nbt"
)

const airBlock = 0

// JavaChunk is a chunk in the pre-flattening Java world format: up to 16
// vertical sections of 4096 block ids with nibble-packed metadata, a
// 256-entry height map and 2D biomes.
type JavaChunk struct {
	Level struct {
		Status    string        `nbt:"Status"`
		X         int32         `nbt:"xPos"`
		Z         int32         `nbt:"zPos"`
		Biomes    []byte        `nbt:"Biomes"`
		HeightMap []int32       `nbt:"HeightMap"`
		Sections  []JavaSection `nbt:"Sections"`
	} `nbt:"Level"`
}

type JavaSection struct {
	Y          int8   `nbt:"Y"`
	Blocks     []byte `nbt:"Blocks"`
	Data       []byte `nbt:"Data"`
	BlockLight []byte `nbt:"BlockLight"`
	SkyLight   []byte `nbt:"SkyLight"`
}

var _ Chunk = (*JavaChunk)(nil)

// DecodeJavaChunk deserializes a chunk's decompressed NBT payload. It is a
// ChunkDecoder and slots straight into NewFileLoader.
func DecodeJavaChunk(data []byte) (*JavaChunk, error) {
	var c JavaChunk
	if err := nbt.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("anvil: decode chunk nbt: %w", err)
	}
	return &c, nil
}

func (c *JavaChunk) Status() string {
	if c.Level.Status == "" {
		// Old-format chunks carry no status tag; anything written to disk
		// was fully generated.
		return "full"
	}
	return c.Level.Status
}

func (c *JavaChunk) section(y int) *JavaSection {
	for i := range c.Level.Sections {
		if int(c.Level.Sections[i].Y) == y>>4 {
			return &c.Level.Sections[i]
		}
	}
	return nil
}

func checkColumn(x, z int) {
	if x < 0 || x >= 16 || z < 0 || z >= 16 {
		panic(fmt.Sprintf("anvil: in-chunk coordinate out of range: x = %d, z = %d", x, z))
	}
}

func (c *JavaChunk) SurfaceHeight(x, z int, mode HeightMode) int {
	checkColumn(x, z)
	if mode == HeightModeTrust && len(c.Level.HeightMap) == 256 {
		return int(c.Level.HeightMap[z*16+x])
	}

	_, max := c.YRange()
	for y := max - 1; y >= 0; y-- {
		if b, ok := c.Block(x, y, z); ok && b.ID != airBlock {
			return y + 1
		}
	}
	return 0
}

func (c *JavaChunk) Biome(x, y, z int) (Biome, bool) {
	checkColumn(x, z)
	if c.section(y) == nil || len(c.Level.Biomes) != 256 {
		return 0, false
	}
	return Biome(c.Level.Biomes[z*16+x]), true
}

func (c *JavaChunk) Block(x, y, z int) (Block, bool) {
	checkColumn(x, z)
	s := c.section(y)
	if s == nil || len(s.Blocks) != 4096 {
		return Block{}, false
	}

	i := (y&15)*256 + z*16 + x
	b := Block{ID: s.Blocks[i]}
	if len(s.Data) == 2048 {
		b.Data = nibble(s.Data, i)
	}
	return b, true
}

func (c *JavaChunk) YRange() (min, max int) {
	if len(c.Level.Sections) == 0 {
		return 0, 0
	}

	lo := int(c.Level.Sections[0].Y)
	hi := lo
	for _, s := range c.Level.Sections[1:] {
		if int(s.Y) < lo {
			lo = int(s.Y)
		}
		if int(s.Y) > hi {
			hi = int(s.Y)
		}
	}
	return lo * 16, (hi + 1) * 16
}

func nibble(data []byte, i int) byte {
	if i%2 == 0 {
		return data[i/2] & 0x0f
	}
	return data[i/2] >> 4
}
