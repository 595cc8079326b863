package recommender

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hyperjump/susume/internal/vector"
)

// The three co-located artifact files of one fitted session. They form one
// logical unit: load refuses them unless the vector count and dimension agree
// across all three.
const (
	EmbeddingsFile = "embeddings.bin"
	IDMapFile      = "index_to_id.json"
	IndexFile      = "vector.index"
)

// saveArtifacts writes the fitted state to dir, creating it if needed.
// Writes are not atomic across the three files; a crash mid-save leaves a
// state that a later load rejects as corrupt.
func saveArtifacts(dir string, st *fittedState) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := writeEmbeddings(filepath.Join(dir, EmbeddingsFile), st.embeddings); err != nil {
		return err
	}
	if err := writeIDMap(filepath.Join(dir, IDMapFile), st.idMap); err != nil {
		return err
	}
	if err := st.index.Save(filepath.Join(dir, IndexFile)); err != nil {
		return fmt.Errorf("save vector index: %w", err)
	}
	return nil
}

// loadArtifacts reads and cross-validates the three files. The index file is
// authoritative for n and D; the embeddings file must hold exactly n*D floats
// and the id map exactly n contiguous positions.
func loadArtifacts(dir string) (*fittedState, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, dir)
		}
		return nil, fmt.Errorf("stat artifact dir: %w", err)
	}

	idx, err := vector.LoadFlatIndex(filepath.Join(dir, IndexFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: missing %s", ErrCorruptArtifact, IndexFile)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
	}
	n := idx.Size()
	dim := idx.Dimensions()
	// A successful save always writes at least one vector.
	if n == 0 {
		return nil, fmt.Errorf("%w: index reports no vectors", ErrCorruptArtifact)
	}

	embeddings, err := readEmbeddings(filepath.Join(dir, EmbeddingsFile), n, dim)
	if err != nil {
		return nil, err
	}
	idMap, err := readIDMap(filepath.Join(dir, IDMapFile), n)
	if err != nil {
		return nil, err
	}
	return &fittedState{embeddings: embeddings, index: idx, idMap: idMap}, nil
}

// writeEmbeddings writes the raw row-major float32 matrix, little-endian.
func writeEmbeddings(path string, embeddings [][]float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create embeddings file: %w", err)
	}
	defer f.Close()
	buf := make([]byte, 4)
	for _, row := range embeddings {
		for _, v := range row {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
			if _, err := f.Write(buf); err != nil {
				return fmt.Errorf("write embeddings: %w", err)
			}
		}
	}
	return nil
}

// readEmbeddings reads an n x dim float32 matrix; any size mismatch is corruption.
func readEmbeddings(path string, n, dim int) ([][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: missing %s", ErrCorruptArtifact, EmbeddingsFile)
		}
		return nil, fmt.Errorf("read embeddings: %w", err)
	}
	want := n * dim * 4
	if len(data) != want {
		return nil, fmt.Errorf("%w: embeddings hold %d bytes, index reports %d x %d (%d bytes)",
			ErrCorruptArtifact, len(data), n, dim, want)
	}
	rows := make([][]float32, n)
	for i := 0; i < n; i++ {
		row := make([]float32, dim)
		for j := 0; j < dim; j++ {
			off := (i*dim + j) * 4
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
		}
		rows[i] = row
	}
	return rows, nil
}

// writeIDMap writes the position-to-id mapping as a JSON object keyed by the
// string form of each position.
func writeIDMap(path string, idMap *IndexToID) error {
	obj := make(map[string]int64, idMap.Len())
	for pos, id := range idMap.IDs() {
		obj[strconv.Itoa(pos)] = id
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal id map: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write id map: %w", err)
	}
	return nil
}

// readIDMap reads the mapping and verifies it holds exactly n contiguous positions.
func readIDMap(path string, n int) (*IndexToID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: missing %s", ErrCorruptArtifact, IDMapFile)
		}
		return nil, fmt.Errorf("read id map: %w", err)
	}
	var obj map[string]int64
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: unparseable id map: %v", ErrCorruptArtifact, err)
	}
	if len(obj) != n {
		return nil, fmt.Errorf("%w: id map holds %d entries, index reports %d vectors",
			ErrCorruptArtifact, len(obj), n)
	}
	ids := make([]int64, n)
	for pos := 0; pos < n; pos++ {
		id, ok := obj[strconv.Itoa(pos)]
		if !ok {
			return nil, fmt.Errorf("%w: id map missing position %d", ErrCorruptArtifact, pos)
		}
		ids[pos] = id
	}
	return NewIndexToID(ids), nil
}
