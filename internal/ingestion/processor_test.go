package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessDocumentMetadata(t *testing.T) {
	p := NewProcessor(nil, nil, "", 500, 50)

	text := strings.Repeat("All products can be returned within 30 days of purchase. ", 40)
	chunks := p.ProcessDocument("Refund_Policy.pdf", text)

	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.Equal(t, "Refund_Policy.pdf", chunk.Source)
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, len(chunks), chunk.TotalChunks)
		assert.NotEmpty(t, chunk.Text)
	}
}

func TestProcessDocumentEmptyText(t *testing.T) {
	p := NewProcessor(nil, nil, "", 500, 50)
	assert.Nil(t, p.ProcessDocument("Blank.pdf", "   "))
}

func TestChunkIDStable(t *testing.T) {
	a := chunkID("Refund_Policy.pdf", 3)
	b := chunkID("Refund_Policy.pdf", 3)
	c := chunkID("Shipping.pdf", 3)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestProcessorDefaultChunking(t *testing.T) {
	p := NewProcessor(nil, nil, "", 0, 0)
	assert.Equal(t, 500, p.chunkSize)
	assert.Equal(t, 50, p.chunkOverlap)
}
