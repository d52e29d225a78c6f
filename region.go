// Package anvil reads Minecraft's Anvil region format: fixed 32x32 grids of
// individually compressed, sector-allocated chunks, one grid per region file.
package anvil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/willf/bitset"
)

// SectorSize is the allocation unit for chunk data within a region file.
// An occupied chunk spans a whole number of sectors.
const SectorSize = 4096

// HeaderSize is the size of a region file's header: two sectors holding 1024
// four-byte chunk location entries.
const HeaderSize = 2 * SectorSize

const (
	regionEdge = 32
	maxChunks  = regionEdge * regionEdge
)

// CompressionScheme is the tag byte identifying how a chunk's payload is
// compressed on disk.
type CompressionScheme byte

const (
	CompressionGzip         CompressionScheme = 1
	CompressionZlib         CompressionScheme = 2
	CompressionUncompressed CompressionScheme = 3
)

func (c CompressionScheme) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZlib:
		return "zlib"
	case CompressionUncompressed:
		return "uncompressed"
	}
	return fmt.Sprintf("unknown(%d)", byte(c))
}

// ChunkLocation is a resolved sector-table entry: where within the region
// file the chunk at region-relative (X, Z) is stored.
type ChunkLocation struct {
	BeginSector int
	SectorCount int
	X, Z        CCoord
}

// A zero begin sector and sector count mark an ungenerated chunk slot, never
// a zero-length chunk.
func (l ChunkLocation) present() bool {
	return l.BeginSector != 0 && l.SectorCount != 0
}

// ChunkMeta is the five-byte prefix preceding a chunk's payload: a big-endian
// length followed by a compression scheme tag. CompressedLen counts only the
// payload bytes after the tag.
type ChunkMeta struct {
	CompressedLen int
	Scheme        CompressionScheme
}

// NewChunkMeta decodes a chunk's five-byte prefix.
func NewChunkMeta(data []byte) (ChunkMeta, error) {
	if len(data) < 5 {
		return ChunkMeta{}, ErrInsufficientData
	}

	length := int(binary.BigEndian.Uint32(data[:4]))
	if length == 0 {
		// The recorded length counts the scheme tag, so zero cannot occur in
		// a valid chunk and would otherwise underflow below.
		return ChunkMeta{}, fmt.Errorf("%w: zero length", ErrInvalidChunkMeta)
	}

	scheme := CompressionScheme(data[4])
	switch scheme {
	case CompressionGzip, CompressionZlib, CompressionUncompressed:
	default:
		return ChunkMeta{}, fmt.Errorf("%w: tag %d", ErrInvalidChunkMeta, data[4])
	}

	// The on-disk length counts the scheme tag itself.
	return ChunkMeta{CompressedLen: length - 1, Scheme: scheme}, nil
}

// Reader decodes one Anvil region file from a seekable byte source. The
// ownership of the source is transferred to the reader. A Reader may be
// shared between goroutines: every seek/read pair runs under an internal
// mutex, so concurrent callers never interleave their cursor movements.
type Reader struct {
	mu   sync.Mutex
	src  io.ReadSeeker
	Name string
}

// NewReader creates a Reader over the given source. No I/O happens until a
// chunk operation is called.
func NewReader(src io.ReadSeeker) *Reader {
	r := &Reader{src: src}
	if file, ok := src.(*os.File); ok {
		r.Name = file.Name()
	}
	return r
}

// ChunkLocation resolves the sector-table entry for the chunk at the given
// region-relative coordinates. Both coordinates must be in [0,32).
func (r *Reader) ChunkLocation(x, z CCoord) (ChunkLocation, error) {
	if x < 0 || x >= regionEdge || z < 0 || z >= regionEdge {
		return ChunkLocation{}, &InvalidOffsetError{X: x, Z: z}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chunkLocation(x, z)
}

func (r *Reader) chunkLocation(x, z CCoord) (ChunkLocation, error) {
	pos := 4 * (int64(x) + int64(z)*regionEdge)
	if _, err := r.src.Seek(pos, io.SeekStart); err != nil {
		return ChunkLocation{}, fmt.Errorf("anvil: seek location table: %w", err)
	}

	var entry [4]byte
	if _, err := io.ReadFull(r.src, entry[:]); err != nil {
		return ChunkLocation{}, fmt.Errorf("anvil: read location table: %w", err)
	}

	return ChunkLocation{
		BeginSector: int(entry[0])<<16 | int(entry[1])<<8 | int(entry[2]),
		SectorCount: int(entry[3]),
		X:           x,
		Z:           z,
	}, nil
}

// ReadRawChunk returns a chunk's five-byte meta prefix followed by its
// compressed payload, exactly as stored. Returns ErrChunkNotFound if the
// chunk has never been generated.
func (r *Reader) ReadRawChunk(x, z CCoord) ([]byte, error) {
	loc, err := r.ChunkLocation(x, z)
	if err != nil {
		return nil, err
	}
	if !loc.present() {
		return nil, ErrChunkNotFound
	}
	return r.readRawChunk(loc)
}

func (r *Reader) readRawChunk(loc ChunkLocation) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.src.Seek(int64(loc.BeginSector)*SectorSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("anvil: seek chunk %d,%d: %w", loc.X, loc.Z, err)
	}

	buf := make([]byte, 5)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		return nil, fmt.Errorf("anvil: read chunk %d,%d header: %w", loc.X, loc.Z, err)
	}

	meta, err := NewChunkMeta(buf)
	if err != nil {
		return nil, err
	}

	buf = append(buf, make([]byte, meta.CompressedLen)...)
	if _, err := io.ReadFull(r.src, buf[5:]); err != nil {
		return nil, fmt.Errorf("anvil: read chunk %d,%d payload: %w", loc.X, loc.Z, err)
	}
	return buf, nil
}

// ReadChunk returns a chunk's decompressed payload, ready for NBT
// deserialization. Returns ErrChunkNotFound if the chunk has never been
// generated.
func (r *Reader) ReadChunk(x, z CCoord) ([]byte, error) {
	raw, err := r.ReadRawChunk(x, z)
	if err != nil {
		return nil, err
	}
	return decompressChunk(raw)
}

func decompressChunk(data []byte) ([]byte, error) {
	meta, err := NewChunkMeta(data)
	if err != nil {
		return nil, err
	}

	switch meta.Scheme {
	case CompressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(data[5:]))
		if err != nil {
			return nil, fmt.Errorf("anvil: inflate chunk: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("anvil: inflate chunk: %w", err)
		}
		return out, nil
	default:
		// Vanilla worlds are zlib in practice; gzip and uncompressed chunks
		// are valid tags we have never seen in the wild.
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, meta.Scheme)
	}
}

// Occupied reports which of the 1024 chunk slots hold data, indexed by
// x + z*32.
func (r *Reader) Occupied() (*bitset.BitSet, error) {
	set := bitset.New(maxChunks)
	for z := CCoord(0); z < regionEdge; z++ {
		for x := CCoord(0); x < regionEdge; x++ {
			loc, err := r.ChunkLocation(x, z)
			if err != nil {
				return nil, err
			}
			if loc.present() {
				set.Set(uint(x) + uint(z)*regionEdge)
			}
		}
	}
	return set, nil
}

// ForEachChunk calls fn with the decompressed payload of every generated
// chunk in the region. Chunks are visited in descending begin-sector order,
// which tends to keep reads sequential on rotational media; callers must not
// rely on the ordering. The scan stops at the first failure, whether from
// decoding or from fn itself.
func (r *Reader) ForEachChunk(fn func(x, z CCoord, data []byte) error) error {
	locs := make([]ChunkLocation, 0, maxChunks)
	for x := CCoord(0); x < regionEdge; x++ {
		for z := CCoord(0); z < regionEdge; z++ {
			loc, err := r.ChunkLocation(x, z)
			if err != nil {
				return err
			}
			if loc.present() {
				locs = append(locs, loc)
			}
		}
	}

	sort.Slice(locs, func(i, j int) bool {
		return locs[i].BeginSector > locs[j].BeginSector
	})

	for _, loc := range locs {
		raw, err := r.readRawChunk(loc)
		if err != nil {
			return err
		}
		data, err := decompressChunk(raw)
		if err != nil {
			return err
		}
		if err := fn(loc.X, loc.Z, data); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying source if it is closeable.
func (r *Reader) Close() error {
	if closer, ok := r.src.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
