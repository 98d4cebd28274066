package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hr-assistant-be/internal/dto"
	"hr-assistant-be/internal/pkg/logger"
	"hr-assistant-be/pkg/docs"
	"hr-assistant-be/pkg/events"
	"hr-assistant-be/pkg/index"
	pktNats "hr-assistant-be/pkg/nats"

	"github.com/google/uuid"
)

type ICorpusService interface {
	Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error)
}

type corpusService struct {
	idx              *index.Index
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewCorpusService(
	idx *index.Index,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ICorpusService {
	return &corpusService{
		idx:              idx,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (c *corpusService) Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error) {
	raws := make([]*docs.RawDocument, 0, len(req.Documents))
	for _, d := range req.Documents {
		text := docs.CleanText(d.Text)
		if text == "" {
			continue
		}
		raws = append(raws, &docs.RawDocument{Name: d.Name, Text: text})
	}

	if req.Folder != "" {
		loaded, err := docs.LoadFolder(req.Folder)
		if err != nil {
			return nil, fmt.Errorf("load corpus folder: %w", err)
		}
		raws = append(raws, loaded...)
	}

	chunks, err := c.idx.Ingest(ctx, raws)
	if err != nil {
		return nil, err
	}

	documents := len(c.idx.Documents())
	c.logger.Info("corpus_service", "Corpus ingested", map[string]interface{}{
		"documents": documents,
		"chunks":    len(chunks),
	})

	// Durable persistence runs off the request path; the in-memory snapshot
	// already serves retrieval.
	if c.publisherService != nil {
		msgPayload := dto.PersistChunksMessage{
			Generation: uuid.NewString(),
		}
		for _, ch := range chunks {
			msgPayload.Chunks = append(msgPayload.Chunks, dto.PersistChunk{
				ChunkId:    ch.ID,
				DocumentId: ch.DocumentID.String(),
				Source:     ch.Source,
				Index:      ch.Index,
				Text:       ch.Text,
				Start:      ch.Start,
				End:        ch.End,
				Embedding:  ch.Embedding,
			})
		}
		msgJson, err := json.Marshal(msgPayload)
		if err != nil {
			return nil, err
		}
		if err := c.publisherService.Publish(ctx, msgJson); err != nil {
			return nil, err
		}
	}

	if c.eventPublisher != nil {
		evt := events.NewCorpusIngested(documents, len(chunks))
		// We log error but don't fail the request as notification is auxiliary
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			c.logger.Warn("corpus_service", "Failed to publish CORPUS_INGESTED event", map[string]interface{}{
				"error": err.Error(),
				"at":    time.Now().Format(time.RFC3339),
			})
		}
	}

	return &dto.IngestResponse{
		Documents: documents,
		Chunks:    len(chunks),
	}, nil
}
