package dto

type IngestDocument struct {
	Name string `json:"name" validate:"required"`
	Text string `json:"text" validate:"required"`
}

type IngestRequest struct {
	Documents []IngestDocument `json:"documents,omitempty" validate:"omitempty,dive"`
	// Folder points at a server-local directory of .txt/.md/.pdf files.
	Folder string `json:"folder,omitempty"`
}

type IngestResponse struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

// PersistChunksMessage is the payload published to the chunk persistence
// worker after a successful ingest.
type PersistChunksMessage struct {
	Generation string         `json:"generation"`
	Chunks     []PersistChunk `json:"chunks"`
}

type PersistChunk struct {
	ChunkId    string    `json:"chunk_id"`
	DocumentId string    `json:"document_id"`
	Source     string    `json:"source"`
	Index      int       `json:"index"`
	Text       string    `json:"text"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Embedding  []float32 `json:"embedding"`
}
