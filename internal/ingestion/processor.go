package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Manav129/RAG-CHATBOT/internal/llm"
	"github.com/Manav129/RAG-CHATBOT/internal/metrics"
	"github.com/Manav129/RAG-CHATBOT/internal/vector/milvus"
	"github.com/Manav129/RAG-CHATBOT/pkg/logger"
	"github.com/Manav129/RAG-CHATBOT/pkg/utils"
)

// Embedder is the slice of the LLM client the processor needs.
type Embedder interface {
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

var _ Embedder = (*llm.Client)(nil)

// Processor turns policy documents into embedded chunks in the vector store.
type Processor struct {
	vectorDB     *milvus.Client
	embedder     Embedder
	docsDir      string
	chunkSize    int
	chunkOverlap int
}

// DocumentChunk is one chunk of a source document plus its position within it.
type DocumentChunk struct {
	Text        string
	Source      string
	ChunkIndex  int
	TotalChunks int
}

type IngestResult struct {
	Status         string                 `json:"status"`
	Message        string                 `json:"message"`
	FilesProcessed int                    `json:"files_processed"`
	ChunksStored   int                    `json:"chunks_stored"`
	Collection     *milvus.CollectionInfo `json:"collection_info,omitempty"`
}

func NewProcessor(vectorDB *milvus.Client, embedder Embedder, docsDir string, chunkSize, chunkOverlap int) *Processor {
	if chunkSize == 0 {
		chunkSize = 500
	}
	if chunkOverlap == 0 {
		chunkOverlap = 50
	}
	return &Processor{
		vectorDB:     vectorDB,
		embedder:     embedder,
		docsDir:      docsDir,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Ingest processes every PDF and HTML document in the docs directory and
// upserts the embedded chunks. reset drops the collection first so stale
// chunks from removed documents disappear.
func (p *Processor) Ingest(ctx context.Context, reset bool) (*IngestResult, error) {
	logger.Info("Starting document ingestion",
		zap.String("directory", p.docsDir),
		zap.Bool("reset", reset),
	)

	if reset {
		if err := p.vectorDB.Drop(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset collection: %w", err)
		}
	}

	if err := p.vectorDB.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	chunks, filesProcessed, err := p.ProcessDirectory()
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		return &IngestResult{
			Status:  "error",
			Message: "No documents found to process",
		}, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	logger.Info("Generating embeddings", zap.Int("chunks", len(texts)))
	embeddings, err := p.embedder.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(embeddings), len(chunks))
	}

	now := time.Now()
	vectorChunks := make([]milvus.Chunk, len(chunks))
	for i, chunk := range chunks {
		vectorChunks[i] = milvus.Chunk{
			ID:          chunkID(chunk.Source, chunk.ChunkIndex),
			Embedding:   embeddings[i],
			Text:        chunk.Text,
			Source:      chunk.Source,
			ChunkIndex:  chunk.ChunkIndex,
			TotalChunks: chunk.TotalChunks,
			IngestedAt:  now,
		}
	}

	if err := p.vectorDB.Insert(ctx, vectorChunks); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	metrics.DocumentsIngested.Add(float64(filesProcessed))
	metrics.ChunksIngested.Add(float64(len(vectorChunks)))

	info, err := p.vectorDB.Stats(ctx)
	if err != nil {
		logger.Warn("Failed to read collection stats after ingest", zap.Error(err))
	}

	logger.Info("Document ingestion complete",
		zap.Int("files", filesProcessed),
		zap.Int("chunks", len(vectorChunks)),
	)

	return &IngestResult{
		Status:         "success",
		Message:        "Documents ingested successfully",
		FilesProcessed: filesProcessed,
		ChunksStored:   len(vectorChunks),
		Collection:     info,
	}, nil
}

// ProcessDirectory extracts and chunks every supported document in the docs
// directory. Unreadable or empty files are skipped with a warning rather
// than failing the whole run.
func (p *Processor) ProcessDirectory() ([]DocumentChunk, int, error) {
	entries, err := os.ReadDir(p.docsDir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read docs directory %q: %w", p.docsDir, err)
	}

	var all []DocumentChunk
	filesProcessed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		path := filepath.Join(p.docsDir, name)

		var text string
		switch strings.ToLower(filepath.Ext(name)) {
		case ".pdf":
			text, err = ExtractPDF(path)
		case ".html", ".htm":
			text, err = ExtractHTML(path)
		default:
			continue
		}

		if err != nil {
			logger.Warn("Skipping unreadable document", zap.String("file", name), zap.Error(err))
			continue
		}

		chunks := p.ProcessDocument(name, text)
		if len(chunks) == 0 {
			logger.Warn("No text extracted from document", zap.String("file", name))
			continue
		}

		logger.Info("Document chunked", zap.String("file", name), zap.Int("chunks", len(chunks)))
		all = append(all, chunks...)
		filesProcessed++
	}

	return all, filesProcessed, nil
}

// ProcessDocument splits extracted text into chunks tagged with their source.
func (p *Processor) ProcessDocument(source, text string) []DocumentChunk {
	parts := SplitText(text, p.chunkSize, p.chunkOverlap)
	if len(parts) == 0 {
		return nil
	}

	chunks := make([]DocumentChunk, len(parts))
	for i, part := range parts {
		chunks[i] = DocumentChunk{
			Text:        part,
			Source:      source,
			ChunkIndex:  i,
			TotalChunks: len(parts),
		}
	}
	return chunks
}

func chunkID(source string, index int) string {
	return fmt.Sprintf("%s_%d", utils.HashString(source), index)
}
