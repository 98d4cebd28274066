package embedding

// Task types hint retrieval-oriented providers which side of the search the
// text belongs to.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

// CorpusPreparer is implemented by providers whose vocabulary depends on the
// indexed corpus (e.g. TF-IDF). PrepareCorpus returns a provider bound to
// that corpus without touching the receiver, so vectors embedded against an
// earlier corpus keep their meaning while a new one is built.
type CorpusPreparer interface {
	PrepareCorpus(corpus []string) (EmbeddingProvider, error)
}

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}
