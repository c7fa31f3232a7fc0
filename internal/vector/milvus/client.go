package milvus

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/Manav129/RAG-CHATBOT/pkg/logger"
)

// Client owns the support-docs collection: one row per document chunk,
// searched by cosine similarity over the chunk embedding.
type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
}

type Chunk struct {
	ID          string
	Embedding   []float32
	Text        string
	Source      string
	ChunkIndex  int
	TotalChunks int
	IngestedAt  time.Time
}

type SearchResult struct {
	ChunkID    string
	Text       string
	Source     string
	ChunkIndex int
	Score      float32
}

type CollectionInfo struct {
	Name      string `json:"name"`
	RowCount  int64  `json:"row_count"`
	VectorDim int    `json:"vector_dim"`
}

func NewClient(endpoint, apiKey, collectionName string, vectorDim int) (*Client, error) {
	var c client.Client
	var err error

	if apiKey != "" {
		c, err = client.NewClient(context.Background(), client.Config{
			Address: endpoint,
			APIKey:  apiKey,
		})
	} else {
		c, err = client.NewGrpcClient(context.Background(), endpoint)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
		zap.Int("vector_dim", vectorDim),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

// EnsureCollection creates, indexes and loads the collection if missing.
func (m *Client) EnsureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Debug("Collection already exists", zap.String("collection", m.collectionName))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "Support policy document chunks",
		Fields: []*entity.Field{
			{
				Name:       "chunk_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.vectorDim),
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "4096",
				},
			},
			{
				Name:     "source",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "255",
				},
			},
			{
				Name:     "chunk_index",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "total_chunks",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "ingested_at",
				DataType: entity.FieldTypeInt64,
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.COSINE, 1024)
	if err != nil {
		return fmt.Errorf("failed to build index definition: %w", err)
	}

	err = m.client.CreateIndex(ctx, m.collectionName, "embedding", idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", m.collectionName))

	return nil
}

// Drop removes the collection entirely. Used by ingest with reset=true.
func (m *Client) Drop(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !has {
		return nil
	}

	if err := m.client.DropCollection(ctx, m.collectionName); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}

	logger.Info("Collection dropped", zap.String("collection", m.collectionName))
	return nil
}

func (m *Client) Insert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	chunkIDs := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	texts := make([]string, len(chunks))
	sources := make([]string, len(chunks))
	chunkIndexes := make([]int64, len(chunks))
	totalChunks := make([]int64, len(chunks))
	ingestedAt := make([]int64, len(chunks))

	for i, chunk := range chunks {
		chunkIDs[i] = chunk.ID
		embeddings[i] = chunk.Embedding
		texts[i] = chunk.Text
		sources[i] = chunk.Source
		chunkIndexes[i] = int64(chunk.ChunkIndex)
		totalChunks[i] = int64(chunk.TotalChunks)
		ingestedAt[i] = chunk.IngestedAt.Unix()
	}

	_, err := m.client.Insert(
		ctx,
		m.collectionName,
		"",
		entity.NewColumnVarChar("chunk_id", chunkIDs),
		entity.NewColumnFloatVector("embedding", m.vectorDim, embeddings),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("source", sources),
		entity.NewColumnInt64("chunk_index", chunkIndexes),
		entity.NewColumnInt64("total_chunks", totalChunks),
		entity.NewColumnInt64("ingested_at", ingestedAt),
	)

	if err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	err = m.client.Flush(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Chunks inserted into vector store", zap.Int("count", len(chunks)))

	return nil
}

func (m *Client) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]SearchResult, error) {
	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResult, err := m.client.Search(
		ctx,
		m.collectionName,
		[]string{},
		"",
		[]string{"chunk_id", "text", "source", "chunk_index"},
		[]entity.Vector{entity.FloatVector(queryEmbedding)},
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0)
	for _, sr := range searchResult {
		for i := 0; i < sr.ResultCount; i++ {
			chunkID, _ := sr.Fields.GetColumn("chunk_id").Get(i)
			text, _ := sr.Fields.GetColumn("text").Get(i)
			source, _ := sr.Fields.GetColumn("source").Get(i)
			chunkIndex, _ := sr.Fields.GetColumn("chunk_index").Get(i)

			results = append(results, SearchResult{
				ChunkID:    chunkID.(string),
				Text:       text.(string),
				Source:     source.(string),
				ChunkIndex: int(chunkIndex.(int64)),
				Score:      sr.Scores[i],
			})
		}
	}

	logger.Debug("Vector search completed",
		zap.Int("topK", topK),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Stats reports the collection row count for the /stats endpoint.
func (m *Client) Stats(ctx context.Context) (*CollectionInfo, error) {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection: %w", err)
	}

	info := &CollectionInfo{
		Name:      m.collectionName,
		VectorDim: m.vectorDim,
	}

	if !has {
		return info, nil
	}

	stats, err := m.client.GetCollectionStatistics(ctx, m.collectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection statistics: %w", err)
	}

	if rc, ok := stats["row_count"]; ok {
		if n, err := strconv.ParseInt(rc, 10, 64); err == nil {
			info.RowCount = n
		}
	}

	return info, nil
}
