package implementation

import (
	"context"

	"adaptive-rag-core/internal/model"
	"adaptive-rag-core/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChunkEmbeddingRepositoryImpl struct {
	db *gorm.DB
}

func NewChunkEmbeddingRepository(db *gorm.DB) contract.ChunkEmbeddingRepository {
	return &ChunkEmbeddingRepositoryImpl{db: db}
}

func (r *ChunkEmbeddingRepositoryImpl) Create(ctx context.Context, chunk *contract.ChunkEmbedding) error {
	m := toModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *toContract(m)
	return nil
}

func (r *ChunkEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, chunks []*contract.ChunkEmbedding) error {
	models := make([]*model.ChunkEmbedding, len(chunks))
	for i, c := range chunks {
		models[i] = toModel(c)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *toContract(m)
	}
	return nil
}

func (r *ChunkEmbeddingRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId string) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.ChunkEmbedding{}).Error
}

func (r *ChunkEmbeddingRepositoryImpl) CountByDocumentId(ctx context.Context, documentId string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ChunkEmbedding{}).
		Where("document_id = ?", documentId).
		Count(&count).Error
	return count, err
}

// SearchSimilarWithScore ranks one document's chunks against the query vector.
// Cosine distance in pgvector is 1 - cosine_similarity, so we select
// 1 - (embedding_value <=> query_vector) as the similarity score.
func (r *ChunkEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, documentId string, embedding []float32, limit int) ([]*contract.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.ChunkEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("chunk_embeddings").
		Select("chunk_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("document_id = ?", documentId).
		Where("deleted_at IS NULL").
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChunk{
			Chunk:      toContract(&res.ChunkEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func toModel(c *contract.ChunkEmbedding) *model.ChunkEmbedding {
	return &model.ChunkEmbedding{
		Id:             c.Id,
		DocumentId:     c.DocumentId,
		ChunkIndex:     c.ChunkIndex,
		Content:        c.Content,
		EmbeddingValue: pgvector.NewVector(c.Embedding),
	}
}

func toContract(m *model.ChunkEmbedding) *contract.ChunkEmbedding {
	return &contract.ChunkEmbedding{
		Id:         m.Id,
		DocumentId: m.DocumentId,
		ChunkIndex: m.ChunkIndex,
		Content:    m.Content,
		Embedding:  m.EmbeddingValue.Slice(),
	}
}
