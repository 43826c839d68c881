// Package indexing builds and reads the bleve chunk index shared by the MCP
// server and the offline indexer CLI.
package indexing

import (
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"

	"github.com/oncoindex/abstracts-mcp-server/internal/chunking"
)

// SchemaVersion identifies the indexed chunk layout. Bump it whenever the
// chunk fields or metadata keys change so stale local indexes are rebuilt on
// startup instead of served with missing fields.
const SchemaVersion = 1

// batchSize bounds how many chunks are committed per bleve batch.
const batchSize = 100

// Build creates a fresh index at path and loads every chunk into it, one
// bleve document per chunk. The target directory must not already hold an
// index.
func Build(path string, chunks []chunking.Chunk) error {
	mapping := bleve.NewIndexMapping()
	index, err := bleve.New(path, mapping)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	batch := index.NewBatch()
	for i, chunk := range chunks {
		if err := batch.Index(chunk.ID, chunk); err != nil {
			index.Close()
			return fmt.Errorf("failed to add chunk %s to batch: %w", chunk.ID, err)
		}
		if (i+1)%batchSize == 0 {
			if err := index.Batch(batch); err != nil {
				index.Close()
				return fmt.Errorf("failed to index batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			index.Close()
			return fmt.Errorf("failed to index final batch: %w", err)
		}
	}

	if err := index.Close(); err != nil {
		return fmt.Errorf("failed to close index: %w", err)
	}
	return nil
}

// ChunkFromHit rebuilds a chunk from the stored fields of a search hit.
// Bleve flattens the metadata map into dotted field names and widens numbers
// to float64; both are undone here so callers see the same shape the engine
// produced.
func ChunkFromHit(id string, fields map[string]interface{}) chunking.Chunk {
	chunk := chunking.Chunk{ID: id}

	if s, ok := fields["document_id"].(string); ok {
		chunk.DocumentID = s
	}
	if s, ok := fields["content"].(string); ok {
		chunk.Content = s
	}
	if s, ok := fields["chunk_type"].(string); ok {
		chunk.ChunkType = chunking.ChunkType(s)
	}
	if n, ok := fields["sequence_number"].(float64); ok {
		chunk.SequenceNumber = int(n)
	}
	if n, ok := fields["token_count"].(float64); ok {
		chunk.TokenCount = int(n)
	}
	if s, ok := fields["created_at"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			chunk.CreatedAt = ts
		}
	}

	for name, value := range fields {
		key, found := strings.CutPrefix(name, "metadata.")
		if !found {
			continue
		}
		if chunk.Metadata == nil {
			chunk.Metadata = make(map[string]any)
		}
		chunk.Metadata[key] = restoreMetadataValue(key, value)
	}

	return chunk
}

// restoreMetadataValue narrows the integer metadata fields back from bleve's
// float64 representation.
func restoreMetadataValue(key string, value interface{}) interface{} {
	switch key {
	case "year", "sub_chunk_index":
		if f, ok := value.(float64); ok {
			return int(f)
		}
	}
	return value
}
