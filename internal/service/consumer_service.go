package service

import (
	"context"
	"encoding/json"
	"log"

	"hr-assistant-be/internal/dto"
	"hr-assistant-be/internal/model"
	"hr-assistant-be/internal/repository"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	chunkRepo repository.ChunkEmbeddingRepository
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	chunkRepo repository.ChunkEmbeddingRepository,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		chunkRepo: chunkRepo,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PersistChunksMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal chunk persistence message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	generation, err := uuid.Parse(payload.Generation)
	if err != nil {
		log.Printf("[ERROR] Invalid corpus generation %q: %v", payload.Generation, err)
		msg.Ack()
		return
	}

	log.Printf("[INFO] Persisting %d corpus chunks for generation %s", len(payload.Chunks), generation)

	rows := make([]*model.ChunkEmbedding, 0, len(payload.Chunks))
	for _, c := range payload.Chunks {
		documentId, err := uuid.Parse(c.DocumentId)
		if err != nil {
			log.Printf("[WARN] Chunk %s carries invalid document id %q, skipping", c.ChunkId, c.DocumentId)
			continue
		}
		rows = append(rows, &model.ChunkEmbedding{
			Id:             uuid.New(),
			ChunkId:        c.ChunkId,
			DocumentId:     documentId,
			Source:         c.Source,
			ChunkIndex:     c.Index,
			Document:       c.Text,
			EmbeddingValue: pgvector.NewVector(c.Embedding),
			StartOffset:    c.Start,
			EndOffset:      c.End,
			Generation:     generation,
		})
	}

	if err := cs.chunkRepo.CreateBulk(ctx, rows); err != nil {
		log.Printf("[ERROR] Failed to persist corpus chunks: %v", err)
		msg.Nack() // Nack for retriable errors
		return
	}

	// The new generation is fully written; older generations are now garbage.
	if err := cs.chunkRepo.ReplaceGeneration(ctx, generation); err != nil {
		log.Printf("[WARN] Failed to drop stale corpus generations: %v", err)
	}

	msg.Ack()
}
