package recommender

import "fmt"

// IndexToID maps an internal index position (insertion order, 0..n-1) to the
// external movie id at that position. Built once per fit, immutable afterward.
type IndexToID struct {
	ids []int64
}

// NewIndexToID builds the map from ids in insertion order.
func NewIndexToID(ids []int64) *IndexToID {
	owned := make([]int64, len(ids))
	copy(owned, ids)
	return &IndexToID{ids: owned}
}

// Resolve returns the external id stored at position.
func (m *IndexToID) Resolve(position int) (int64, error) {
	if position < 0 || position >= len(m.ids) {
		return 0, fmt.Errorf("%w: %d (size %d)", ErrPositionOutOfRange, position, len(m.ids))
	}
	return m.ids[position], nil
}

// Len returns the number of mapped positions.
func (m *IndexToID) Len() int {
	return len(m.ids)
}

// IDs returns the mapped ids in position order. The returned slice is a copy.
func (m *IndexToID) IDs() []int64 {
	out := make([]int64, len(m.ids))
	copy(out, m.ids)
	return out
}
