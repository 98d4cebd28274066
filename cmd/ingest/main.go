package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"hr-assistant-be/internal/config"
	"hr-assistant-be/internal/pkg/logger"
	"hr-assistant-be/pkg/docs"
	"hr-assistant-be/pkg/embedding"
	"hr-assistant-be/pkg/index"

	"github.com/fatih/color"
)

// Offline corpus indexer: loads a policy folder, chunks and embeds it, and
// prints what the server would serve. Useful for checking a corpus before
// pointing the API at it.
func main() {
	folder := flag.String("folder", "./corpus", "folder of .txt/.md/.pdf policy documents")
	query := flag.String("query", "", "optional probe query to run against the fresh index")
	topK := flag.Int("k", 3, "retrieval depth for the probe query")
	flag.Parse()

	cfg := config.Load()

	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		provider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
	} else {
		provider = embedding.NewTfidfProvider()
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, false)
	idx := index.New(provider, index.Config{
		ChunkSize:    cfg.Assistant.ChunkSize,
		ChunkOverlap: cfg.Assistant.ChunkOverlap,
		DefaultTopK:  cfg.Assistant.TopK,
	}, sysLogger)

	raws, err := docs.LoadFolder(*folder)
	if err != nil {
		log.Fatalf("Failed to load corpus folder: %v", err)
	}
	if len(raws) == 0 {
		color.Yellow("No readable documents found in %s", *folder)
		return
	}

	chunks, err := idx.Ingest(context.Background(), raws)
	if err != nil {
		log.Fatalf("Ingest failed: %v", err)
	}

	color.Green("✅ Indexed %d documents into %d chunks", len(idx.Documents()), len(chunks))
	for _, doc := range idx.Documents() {
		fmt.Printf("  %s (%d chunks)\n", doc.Name, len(doc.Chunks))
	}

	if *query == "" {
		return
	}

	result, err := idx.Retrieve(context.Background(), *query, *topK)
	if err != nil {
		log.Fatalf("Probe retrieval failed: %v", err)
	}

	color.Cyan("\nProbe: %q", *query)
	for i, sc := range result.Scored {
		chunk, _ := idx.Chunk(sc.ChunkID)
		color.White("%d. [%.4f] %s", i+1, sc.Score, sc.ChunkID)
		preview := chunk.Text
		if len(preview) > 160 {
			preview = preview[:160] + "..."
		}
		fmt.Printf("   %s\n", preview)
	}
}
