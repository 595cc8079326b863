// Package embedding provides text embedding behind a common interface, with
// an ONNX-backed implementation and a deterministic mock.
package embedding

import "context"

// Embedder maps text to fixed-dimension unit-norm vectors. Implementations
// are stateless across calls: the same text always yields the same vector
// (up to floating-point reproducibility of the underlying model), and batch
// boundaries never affect individual vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
