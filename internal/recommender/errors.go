// Package recommender orchestrates corpus assembly, embedding, and vector
// search into a fit/predict/save/load session lifecycle.
package recommender

import "errors"

var (
	// ErrNotFitted is returned by Predict and Save before a successful Fit or Load.
	ErrNotFitted = errors.New("recommender: session not fitted")
	// ErrArtifactNotFound is returned by Load when the artifact directory does not exist.
	ErrArtifactNotFound = errors.New("recommender: artifact directory not found")
	// ErrCorruptArtifact is returned by Load when the persisted files disagree
	// on vector count or dimension. A corrupt state is never partially adopted.
	ErrCorruptArtifact = errors.New("recommender: artifact files are inconsistent")
	// ErrPositionOutOfRange is returned when resolving a position outside 0..n-1.
	ErrPositionOutOfRange = errors.New("recommender: position out of range")
)
