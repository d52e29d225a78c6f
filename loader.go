package anvil

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// RegionExt is the recognised region file extension.
const RegionExt = ".mca"

// RegionFilename returns the conventional file name for a region,
// r.<x>.<z>.mca.
func RegionFilename(x, z RCoord) string {
	return fmt.Sprintf("r.%d.%d%s", x, z, RegionExt)
}

// ParseRegionFilename recovers region coordinates from a file name of the
// form r.<x>.<z>.mca. Reports false for names that do not match.
func ParseRegionFilename(name string) (RegionCoord, bool) {
	if !strings.HasSuffix(name, RegionExt) {
		return RegionCoord{}, false
	}

	parts := strings.Split(strings.TrimSuffix(name, RegionExt), ".")
	if len(parts) != 3 || parts[0] != "r" {
		return RegionCoord{}, false
	}
	x, err := strconv.Atoi(parts[1])
	if err != nil {
		return RegionCoord{}, false
	}
	z, err := strconv.Atoi(parts[2])
	if err != nil {
		return RegionCoord{}, false
	}
	return RegionCoord{X: RCoord(x), Z: RCoord(z)}, true
}

// RegionFile couples a Reader with a chunk decoder, satisfying Region.
type RegionFile[C any] struct {
	*Reader
	decode ChunkDecoder[C]
}

// NewRegionFile wraps an already-open reader.
func NewRegionFile[C any](r *Reader, decode ChunkDecoder[C]) *RegionFile[C] {
	return &RegionFile[C]{Reader: r, decode: decode}
}

func (r *RegionFile[C]) Chunk(x, z CCoord) (C, bool) {
	var zero C
	data, err := r.ReadChunk(x, z)
	if err != nil {
		return zero, false
	}
	c, err := r.decode(data)
	if err != nil {
		return zero, false
	}
	return c, true
}

// FileLoader loads regions from a filesystem directory of r.<x>.<z>.mca
// files, the way a world save lays them out.
type FileLoader[C any] struct {
	dir    string
	decode ChunkDecoder[C]
}

func NewFileLoader[C any](dir string, decode ChunkDecoder[C]) *FileLoader[C] {
	return &FileLoader[C]{dir: dir, decode: decode}
}

// Region opens the region file for the given coordinates. Any open failure,
// including the file not existing, reports absent.
func (l *FileLoader[C]) Region(x, z RCoord) (Region[C], bool) {
	file, err := os.Open(filepath.Join(l.dir, RegionFilename(x, z)))
	if err != nil {
		return nil, false
	}
	return NewRegionFile(NewReader(file), l.decode), true
}

// List enumerates the region files in the directory. Zero-byte files are
// placeholders and excluded, as is anything whose name does not match the
// r.<x>.<z>.mca convention.
func (l *FileLoader[C]) List() ([]RegionCoord, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, &LoaderError{Op: "list regions", Err: err}
	}

	var coords []RegionCoord
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		coord, ok := ParseRegionFilename(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		coords = append(coords, coord)
	}
	return coords, nil
}
