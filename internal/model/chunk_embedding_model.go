package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ChunkEmbedding is the durable copy of an indexed corpus chunk. The column
// is an untyped vector because the embedding dimensionality depends on the
// configured provider (768 for Gemini, corpus-sized for TF-IDF).
type ChunkEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChunkId        string          `gorm:"type:text;not null;index"`
	DocumentId     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Source         string          `gorm:"type:text"`
	ChunkIndex     int             `gorm:"default:0"`
	Document       string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector"`
	StartOffset    int             `gorm:"default:0"`
	EndOffset      int             `gorm:"default:0"`
	Generation     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (ChunkEmbedding) TableName() string {
	return "chunk_embeddings"
}
