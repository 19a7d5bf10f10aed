package contract

import (
	"context"

	"github.com/google/uuid"
)

type ChunkEmbedding struct {
	Id         uuid.UUID
	DocumentId string
	ChunkIndex int
	Content    string
	Embedding  []float32
}

type ScoredChunk struct {
	Chunk      *ChunkEmbedding
	Similarity float64
}

type ChunkEmbeddingRepository interface {
	Create(ctx context.Context, chunk *ChunkEmbedding) error
	CreateBulk(ctx context.Context, chunks []*ChunkEmbedding) error
	DeleteByDocumentId(ctx context.Context, documentId string) error
	CountByDocumentId(ctx context.Context, documentId string) (int64, error)

	// SearchSimilarWithScore returns the top-k chunks of one document ranked by
	// cosine similarity to the query vector, highest first.
	SearchSimilarWithScore(ctx context.Context, documentId string, embedding []float32, limit int) ([]*ScoredChunk, error)
}
