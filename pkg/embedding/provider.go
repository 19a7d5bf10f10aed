package embedding

import "context"

// Provider defines the interface for generating text embeddings
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkIndex exposes per-document chunk similarity lookups over an
// already-indexed corpus. Scores are cosine similarities, descending.
type ChunkIndex interface {
	TopKChunkSimilarities(ctx context.Context, resourceID string, queryVector []float32, k int) ([]float64, error)
}
