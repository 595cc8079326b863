// Package vector provides an exact nearest-neighbor index over fixed-dimension
// vectors, with a binary on-disk format.
package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

var (
	// ErrEmptyInput is returned by Build when given zero vectors.
	ErrEmptyInput = errors.New("vector: no vectors to build index from")
	// ErrNotBuilt is returned by Search before a successful Build.
	ErrNotBuilt = errors.New("vector: index not built")
)

// Neighbor is a single nearest-neighbor hit: the insertion position of the
// stored vector and its squared Euclidean distance to the query.
type Neighbor struct {
	Position int     `json:"position"`
	Distance float32 `json:"distance"`
}

// FlatIndex stores all vectors in insertion order and answers exact k-nearest
// queries by brute-force squared L2 distance. Corpus sizes here are tens of
// thousands of items, where exhaustive search is both correct and fast.
type FlatIndex struct {
	dimensions int
	vectors    [][]float32
	built      bool
	mu         sync.RWMutex
}

// NewFlatIndex creates an empty index for vectors of the given dimension.
func NewFlatIndex(dimensions int) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("vector: dimensions must be positive, got %d", dimensions)
	}
	return &FlatIndex{dimensions: dimensions}, nil
}

// Build replaces the index contents with vectors; position i in the index
// corresponds to vectors[i]. Returns ErrEmptyInput for an empty input and an
// error on any dimension mismatch.
func (x *FlatIndex) Build(vectors [][]float32) error {
	if len(vectors) == 0 {
		return ErrEmptyInput
	}
	stored := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != x.dimensions {
			return fmt.Errorf("vector: dimension mismatch at %d: got %d, expected %d", i, len(v), x.dimensions)
		}
		vec := make([]float32, x.dimensions)
		copy(vec, v)
		stored[i] = vec
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.vectors = stored
	x.built = true
	return nil
}

// Search returns, for each query, the k nearest stored vectors by squared
// Euclidean distance, ascending, ties broken by lower insertion position.
// k is clamped to the number of stored vectors.
func (x *FlatIndex) Search(queries [][]float32, k int) ([][]Neighbor, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.built {
		return nil, ErrNotBuilt
	}
	if k > len(x.vectors) {
		k = len(x.vectors)
	}
	results := make([][]Neighbor, len(queries))
	for qi, q := range queries {
		if len(q) != x.dimensions {
			return nil, fmt.Errorf("vector: query %d dimension mismatch: got %d, expected %d", qi, len(q), x.dimensions)
		}
		if k <= 0 {
			results[qi] = []Neighbor{}
			continue
		}
		neighbors := make([]Neighbor, len(x.vectors))
		for i, v := range x.vectors {
			neighbors[i] = Neighbor{Position: i, Distance: SquaredL2(q, v)}
		}
		sort.Slice(neighbors, func(a, b int) bool {
			if neighbors[a].Distance != neighbors[b].Distance {
				return neighbors[a].Distance < neighbors[b].Distance
			}
			return neighbors[a].Position < neighbors[b].Position
		})
		results[qi] = neighbors[:k]
	}
	return results, nil
}

// Size returns the number of stored vectors.
func (x *FlatIndex) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// Dimensions returns the vector dimension.
func (x *FlatIndex) Dimensions() int {
	return x.dimensions
}

// Built reports whether Build has completed successfully.
func (x *FlatIndex) Built() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.built
}

// Save persists the index to path. Directory is created if needed.
// Format: dimensions (uint32 LE), count (uint32 LE), then count*dimensions
// float32 LE in insertion order.
func (x *FlatIndex) Save(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.built {
		return ErrNotBuilt
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(x.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(x.vectors))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, v := range x.vectors {
		if _, err := f.Write(float32SliceToBytes(v)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// LoadFlatIndex reads an index written by Save. The returned index is built.
func LoadFlatIndex(path string) (*FlatIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}
	if dim == 0 {
		return nil, fmt.Errorf("index file reports zero dimensions")
	}
	vectors := make([][]float32, 0, n)
	buf := make([]byte, int(dim)*4)
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors = append(vectors, bytesToFloat32Slice(buf))
	}
	idx := &FlatIndex{dimensions: int(dim)}
	if n > 0 {
		idx.vectors = vectors
		idx.built = true
	}
	return idx, nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
