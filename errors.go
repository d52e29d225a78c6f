package anvil

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData indicates there were fewer than five bytes where a
	// chunk's length-and-scheme prefix was expected.
	ErrInsufficientData = errors.New("anvil: insufficient data for chunk header")

	// ErrInvalidChunkMeta indicates a chunk header carried a compression
	// scheme tag outside the known set.
	ErrInvalidChunkMeta = errors.New("anvil: unrecognised compression scheme for chunk")

	// ErrUnsupportedCompression indicates a chunk is stored with a known
	// compression scheme this package does not decode.
	ErrUnsupportedCompression = errors.New("anvil: unsupported compression scheme")

	// ErrChunkNotFound indicates the requested chunk slot has never been
	// generated. This is an expected condition for sparse worlds, not a sign
	// of corruption.
	ErrChunkNotFound = errors.New("anvil: chunk not found")
)

// InvalidOffsetError indicates a region-relative chunk coordinate outside
// [0,32) on either axis.
type InvalidOffsetError struct {
	X, Z CCoord
}

func (e *InvalidOffsetError) Error() string {
	return fmt.Sprintf("anvil: invalid chunk offset: x = %d, z = %d", e.X, e.Z)
}

// LoaderError wraps a failure at the loader boundary, such as the backing
// region directory not being readable.
type LoaderError struct {
	Op  string
	Err error
}

func (e *LoaderError) Error() string {
	return "anvil: " + e.Op + ": " + e.Err.Error()
}

func (e *LoaderError) Unwrap() error {
	return e.Err
}
