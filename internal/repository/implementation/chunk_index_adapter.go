package implementation

import (
	"context"

	"adaptive-rag-core/internal/repository/contract"
	"adaptive-rag-core/pkg/embedding"
)

// ChunkIndexAdapter exposes the chunk repository through the narrow
// embedding.ChunkIndex interface the selector depends on.
type ChunkIndexAdapter struct {
	repo contract.ChunkEmbeddingRepository
}

func NewChunkIndexAdapter(repo contract.ChunkEmbeddingRepository) embedding.ChunkIndex {
	return &ChunkIndexAdapter{repo: repo}
}

func (a *ChunkIndexAdapter) TopKChunkSimilarities(ctx context.Context, documentID string, queryVector []float32, k int) ([]float64, error) {
	scored, err := a.repo.SearchSimilarWithScore(ctx, documentID, queryVector, k)
	if err != nil {
		return nil, err
	}

	sims := make([]float64, len(scored))
	for i, s := range scored {
		sims[i] = s.Similarity
	}
	return sims, nil
}
