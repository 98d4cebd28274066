package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"hr-assistant-be/internal/dto"
	"hr-assistant-be/internal/model"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChunkRepo struct {
	mu     sync.Mutex
	calls  []string
	rows   []*model.ChunkEmbedding
	purged []uuid.UUID
}

func (f *fakeChunkRepo) CreateBulk(ctx context.Context, embeddings []*model.ChunkEmbedding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create")
	f.rows = append(f.rows, embeddings...)
	return nil
}

func (f *fakeChunkRepo) ReplaceGeneration(ctx context.Context, generation uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "replace")
	f.purged = append(f.purged, generation)
	return nil
}

func (f *fakeChunkRepo) CountByGeneration(ctx context.Context, generation uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if r.Generation == generation {
			n++
		}
	}
	return n, nil
}

func (f *fakeChunkRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func publishPersistMessage(t *testing.T, pubSub *gochannel.GoChannel, topic string, payload []byte) {
	t.Helper()
	require.NoError(t, pubSub.Publish(topic, message.NewMessage(uuid.NewString(), payload)))
}

func TestConsumerPersistsThenPurges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	repo := &fakeChunkRepo{}
	consumer := NewConsumerService(pubSub, "corpus.persist", repo)
	require.NoError(t, consumer.Consume(ctx))

	generation := uuid.New()
	documentId := uuid.New()
	payload, err := json.Marshal(dto.PersistChunksMessage{
		Generation: generation.String(),
		Chunks: []dto.PersistChunk{
			{
				ChunkId:    "leave_policy.md#0",
				DocumentId: documentId.String(),
				Source:     "leave_policy.md",
				Index:      0,
				Text:       "employees get 20 days of annual leave",
				Start:      0,
				End:        37,
				Embedding:  []float32{0.1, 0.2, 0.3},
			},
		},
	})
	require.NoError(t, err)
	publishPersistMessage(t, pubSub, "corpus.persist", payload)

	require.Eventually(t, func() bool { return repo.callCount() == 2 }, time.Second, 10*time.Millisecond)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	// Stale generations are dropped only after the new rows are written.
	assert.Equal(t, []string{"create", "replace"}, repo.calls)
	require.Len(t, repo.purged, 1)
	assert.Equal(t, generation, repo.purged[0])

	require.Len(t, repo.rows, 1)
	assert.Equal(t, "leave_policy.md#0", repo.rows[0].ChunkId)
	assert.Equal(t, documentId, repo.rows[0].DocumentId)
	assert.Equal(t, generation, repo.rows[0].Generation)
	assert.Equal(t, 37, repo.rows[0].EndOffset)
}

func TestConsumerAcksMalformedMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	repo := &fakeChunkRepo{}
	consumer := NewConsumerService(pubSub, "corpus.persist", repo)
	require.NoError(t, consumer.Consume(ctx))

	// Garbage payload and an invalid generation are acked without touching
	// the store; the valid message behind them still lands.
	publishPersistMessage(t, pubSub, "corpus.persist", []byte("not json"))

	invalid, err := json.Marshal(dto.PersistChunksMessage{Generation: "not-a-uuid"})
	require.NoError(t, err)
	publishPersistMessage(t, pubSub, "corpus.persist", invalid)

	generation := uuid.New()
	valid, err := json.Marshal(dto.PersistChunksMessage{
		Generation: generation.String(),
		Chunks: []dto.PersistChunk{
			{ChunkId: "benefits.md#0", DocumentId: uuid.NewString(), Source: "benefits.md", Text: "dental is included"},
		},
	})
	require.NoError(t, err)
	publishPersistMessage(t, pubSub, "corpus.persist", valid)

	require.Eventually(t, func() bool { return repo.callCount() == 2 }, time.Second, 10*time.Millisecond)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, []string{"create", "replace"}, repo.calls)
	require.Len(t, repo.rows, 1)
	assert.Equal(t, "benefits.md#0", repo.rows[0].ChunkId)
}
