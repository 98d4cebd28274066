package repository

import (
	"context"

	"hr-assistant-be/internal/model"

	"github.com/google/uuid"
)

// ChunkEmbeddingRepository persists corpus chunks for durability and audit.
// The in-memory snapshot in pkg/index stays the retrieval source of truth.
type ChunkEmbeddingRepository interface {
	CreateBulk(ctx context.Context, embeddings []*model.ChunkEmbedding) error
	// ReplaceGeneration deletes every chunk not belonging to the given
	// corpus generation. Called after a new generation is fully written.
	ReplaceGeneration(ctx context.Context, generation uuid.UUID) error
	CountByGeneration(ctx context.Context, generation uuid.UUID) (int64, error)
}
