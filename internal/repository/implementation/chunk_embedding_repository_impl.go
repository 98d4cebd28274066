package implementation

import (
	"context"

	"hr-assistant-be/internal/model"
	"hr-assistant-be/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChunkEmbeddingRepositoryImpl struct {
	db *gorm.DB
}

func NewChunkEmbeddingRepository(db *gorm.DB) repository.ChunkEmbeddingRepository {
	return &ChunkEmbeddingRepositoryImpl{db: db}
}

func (r *ChunkEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*model.ChunkEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(embeddings, 100).Error
}

func (r *ChunkEmbeddingRepositoryImpl) ReplaceGeneration(ctx context.Context, generation uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("generation <> ?", generation).
		Delete(&model.ChunkEmbedding{}).Error
}

func (r *ChunkEmbeddingRepositoryImpl) CountByGeneration(ctx context.Context, generation uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ChunkEmbedding{}).
		Where("generation = ?", generation).
		Count(&count).Error
	return count, err
}
