package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"hr-assistant-be/internal/pkg/logger"
	"hr-assistant-be/pkg/docs"
	"hr-assistant-be/pkg/embedding"

	"github.com/google/uuid"
)

// ErrIndexEmpty is returned by Retrieve before the first successful ingest.
var ErrIndexEmpty = errors.New("document index is empty, ingest a corpus first")

// Chunk is the retrieval unit: a bounded span of a source document with its
// cached embedding. Seq is the global ingest ordinal used for deterministic
// tie-breaking.
type Chunk struct {
	ID         string    `json:"id"`
	Seq        int       `json:"seq"`
	DocumentID uuid.UUID `json:"document_id"`
	Source     string    `json:"source"`
	Index      int       `json:"index"`
	Text       string    `json:"text"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Embedding  []float32 `json:"-"`
}

// Document groups the chunks produced from one source file.
type Document struct {
	ID         uuid.UUID
	SourcePath string
	Name       string
	Chunks     []Chunk
}

// ScoredChunk pairs a chunk id with its similarity to the query.
type ScoredChunk struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
}

// RetrievalResult is ordered by descending score (ties by lower chunk Seq).
type RetrievalResult struct {
	Scored []ScoredChunk `json:"scored"`
}

func (r RetrievalResult) Empty() bool {
	return len(r.Scored) == 0
}

// TopScore returns the best similarity, or 0 for an empty result.
func (r RetrievalResult) TopScore() float64 {
	if len(r.Scored) == 0 {
		return 0
	}
	return r.Scored[0].Score
}

// Gap returns the distance between the best score and the runner-up. A full
// gap (equal to the top score) is reported when only one candidate exists.
func (r RetrievalResult) Gap() float64 {
	if len(r.Scored) == 0 {
		return 0
	}
	if len(r.Scored) == 1 {
		return r.Scored[0].Score
	}
	return r.Scored[0].Score - r.Scored[1].Score
}

type Config struct {
	ChunkSize    int
	ChunkOverlap int
	DefaultTopK  int
}

// snapshot is an immutable corpus generation. Readers obtain the whole
// snapshot through one atomic pointer load, so a concurrent ingest can never
// expose a partially built index.
type snapshot struct {
	provider  embedding.EmbeddingProvider
	chunks    []Chunk
	byID      map[string]int
	dimension int
	documents []Document
}

// Index holds the active corpus and serves nearest-neighbor retrieval.
type Index struct {
	provider embedding.EmbeddingProvider
	cfg      Config
	logger   logger.ILogger

	ingestMu sync.Mutex // single exclusive writer
	active   atomic.Pointer[snapshot]
}

func New(provider embedding.EmbeddingProvider, cfg Config, log logger.ILogger) *Index {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1200
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 3
	}
	return &Index{
		provider: provider,
		cfg:      cfg,
		logger:   log,
	}
}

// Ingest chunks and embeds the given documents, then publishes them as the
// new active corpus in one snapshot swap. The previous corpus stays visible
// to readers until the swap. Returns the chunks of the new generation.
func (ix *Index) Ingest(ctx context.Context, raws []*docs.RawDocument) ([]Chunk, error) {
	ix.ingestMu.Lock()
	defer ix.ingestMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, errors.New("ingest called with no documents")
	}

	snap := &snapshot{byID: make(map[string]int), provider: ix.provider}
	seq := 0

	// Corpus-dependent providers (TF-IDF) bind a fresh vocabulary to this
	// generation; the active snapshot keeps embedding with its own, so a
	// failed ingest cannot disturb it.
	if preparer, ok := ix.provider.(embedding.CorpusPreparer); ok {
		corpus := make([]string, 0, len(raws))
		for _, raw := range raws {
			corpus = append(corpus, raw.Text)
		}
		prepared, err := preparer.PrepareCorpus(corpus)
		if err != nil {
			return nil, fmt.Errorf("prepare embedding vocabulary: %w", err)
		}
		snap.provider = prepared
	}

	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc := Document{
			ID:         uuid.New(),
			SourcePath: raw.SourcePath,
			Name:       raw.Name,
		}

		for i, span := range SplitText(raw.Text, ix.cfg.ChunkSize, ix.cfg.ChunkOverlap) {
			res, err := snap.provider.Generate(span.Text, embedding.TaskRetrievalDocument)
			if err != nil {
				return nil, fmt.Errorf("embed chunk %d of %s: %w", i, raw.Name, err)
			}
			vec := normalize(res.Embedding.Values)
			if snap.dimension == 0 {
				snap.dimension = len(vec)
			}
			if len(vec) != snap.dimension {
				return nil, fmt.Errorf("chunk %d of %s: embedding dimension %d, want %d",
					i, raw.Name, len(vec), snap.dimension)
			}

			chunk := Chunk{
				ID:         fmt.Sprintf("%s#%d", raw.Name, i),
				Seq:        seq,
				DocumentID: doc.ID,
				Source:     raw.Name,
				Index:      i,
				Text:       span.Text,
				Start:      span.Start,
				End:        span.End,
				Embedding:  vec,
			}
			snap.byID[chunk.ID] = len(snap.chunks)
			snap.chunks = append(snap.chunks, chunk)
			doc.Chunks = append(doc.Chunks, chunk)
			seq++
		}

		snap.documents = append(snap.documents, doc)
	}

	if len(snap.chunks) == 0 {
		return nil, errors.New("ingest produced no chunks")
	}

	ix.active.Store(snap)
	ix.logger.Info("index", "Corpus ingested", map[string]interface{}{
		"documents": len(snap.documents),
		"chunks":    len(snap.chunks),
		"dimension": snap.dimension,
	})

	return snap.chunks, nil
}

// Retrieve embeds the query and returns at most k chunks ranked by
// descending cosine similarity. Safe for concurrent callers; read-only.
func (ix *Index) Retrieve(ctx context.Context, queryText string, k int) (RetrievalResult, error) {
	snap := ix.active.Load()
	if snap == nil {
		return RetrievalResult{}, ErrIndexEmpty
	}
	if err := ctx.Err(); err != nil {
		return RetrievalResult{}, err
	}
	if k <= 0 {
		k = ix.cfg.DefaultTopK
	}

	// The query is embedded through the snapshot's provider, so vectors
	// always match the generation being scored.
	res, err := snap.provider.Generate(queryText, embedding.TaskRetrievalQuery)
	if err != nil {
		return RetrievalResult{}, fmt.Errorf("embed query: %w", err)
	}
	qvec := normalize(res.Embedding.Values)

	// snap.chunks is in ingest (Seq) order; the stable sort therefore breaks
	// score ties toward the earlier-ingested chunk.
	scored := make([]ScoredChunk, 0, len(snap.chunks))
	for i := range snap.chunks {
		scored = append(scored, ScoredChunk{
			ChunkID: snap.chunks[i].ID,
			Score:   dot(qvec, snap.chunks[i].Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}

	return RetrievalResult{Scored: scored}, nil
}

// Chunk looks up a chunk of the active corpus by id.
func (ix *Index) Chunk(id string) (Chunk, bool) {
	snap := ix.active.Load()
	if snap == nil {
		return Chunk{}, false
	}
	pos, ok := snap.byID[id]
	if !ok {
		return Chunk{}, false
	}
	return snap.chunks[pos], true
}

// Documents returns the documents of the active corpus, in ingest order.
func (ix *Index) Documents() []Document {
	snap := ix.active.Load()
	if snap == nil {
		return nil
	}
	return snap.documents
}

// Ready reports whether a corpus has been ingested.
func (ix *Index) Ready() bool {
	return ix.active.Load() != nil
}

func normalize(vec []float32) []float32 {
	norm := 0.0
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
