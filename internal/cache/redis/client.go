package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Manav129/RAG-CHATBOT/internal/metrics"
	"github.com/Manav129/RAG-CHATBOT/pkg/logger"
)

// Client caches chat answers and query embeddings in Redis. The cache is
// optional; the chat pipeline degrades to uncached operation when Redis
// is unavailable.
type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// SetAnswer caches a full chat result keyed by the query hash.
func (c *Client) SetAnswer(ctx context.Context, queryHash string, result interface{}, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal chat result: %w", err)
	}

	if err := c.client.Set(ctx, "chat:"+queryHash, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set chat cache: %w", err)
	}

	logger.Debug("Chat answer cached", zap.String("query_hash", queryHash), zap.Duration("ttl", ttl))
	return nil
}

// GetAnswer loads a cached chat result into result. Returns false on miss.
func (c *Client) GetAnswer(ctx context.Context, queryHash string, result interface{}) (bool, error) {
	data, err := c.client.Get(ctx, "chat:"+queryHash).Bytes()
	if err == redis.Nil {
		metrics.CacheMisses.WithLabelValues("chat").Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get chat cache: %w", err)
	}

	if err := json.Unmarshal(data, result); err != nil {
		return false, fmt.Errorf("failed to unmarshal chat result: %w", err)
	}

	metrics.CacheHits.WithLabelValues("chat").Inc()
	logger.Debug("Chat cache hit", zap.String("query_hash", queryHash))
	return true, nil
}

func (c *Client) SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	if err := c.client.Set(ctx, "embedding:"+textHash, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set embedding cache: %w", err)
	}

	logger.Debug("Embedding cached", zap.String("text_hash", textHash))
	return nil
}

func (c *Client) GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error) {
	data, err := c.client.Get(ctx, "embedding:"+textHash).Bytes()
	if err == redis.Nil {
		metrics.CacheMisses.WithLabelValues("embedding").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get embedding cache: %w", err)
	}

	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal embedding: %w", err)
	}

	metrics.CacheHits.WithLabelValues("embedding").Inc()
	logger.Debug("Embedding cache hit", zap.String("text_hash", textHash))
	return embedding, true, nil
}

// InvalidateAnswers drops every cached chat answer. Called after document
// ingestion so answers reflect the current knowledge base.
func (c *Client) InvalidateAnswers(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "chat:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Chat answer cache invalidated")
	return nil
}
