package chunking

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChunkType classifies which structural part of an abstract a chunk came
// from. Retrieval filters on it, so the set is closed: strategies never
// invent new values, and content that matches no known structure is GENERIC.
type ChunkType string

const (
	TypeAbstractHeader ChunkType = "ABSTRACT_HEADER"
	TypeBackground     ChunkType = "BACKGROUND"
	TypeMethods        ChunkType = "METHODS"
	TypeResults        ChunkType = "RESULTS"
	TypeConclusions    ChunkType = "CONCLUSIONS"
	TypeTrialDesign    ChunkType = "TRIAL_DESIGN"
	TypeTable          ChunkType = "TABLE"
	TypeClinicalTrial  ChunkType = "CLINICAL_TRIAL"
	TypeSponsor        ChunkType = "SPONSOR"
	TypeGeneric        ChunkType = "GENERIC"
)

// Chunk is one retrievable unit of an abstract. Chunks are created only by a
// strategy and never mutated afterwards; the persistence layer stores the
// fields verbatim and the search index maps them by their JSON names.
type Chunk struct {
	ID             string         `json:"id"`
	DocumentID     string         `json:"document_id"`
	Content        string         `json:"content"`
	ChunkType      ChunkType      `json:"chunk_type"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	SequenceNumber int            `json:"sequence_number"`
	TokenCount     int            `json:"token_count,omitempty"` // whitespace-delimited word count, diagnostics only
	CreatedAt      time.Time      `json:"created_at"`
}

// DocumentContext carries the document-level metadata computed once per
// document (abstract ID, year, sponsor, ...) plus the owning document's
// identity. It is passed read-only into every chunk construction; per-chunk
// extraction overlays it but never writes back.
type DocumentContext struct {
	DocumentID string
	Filename   string
	Metadata   map[string]any
}

// NewDocumentContext runs document-scope metadata extraction over the full
// content. Strategies call this exactly once per document.
func NewDocumentContext(documentID, filename, content string) DocumentContext {
	return DocumentContext{
		DocumentID: documentID,
		Filename:   filename,
		Metadata:   ExtractMetadata(content, filename),
	}
}

// WordCount returns the number of whitespace-delimited words in s, the
// approximate size measure recorded on each chunk.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// newChunk builds one chunk from the document context plus the chunk's own
// text. Document-level metadata is copied in first, then fields extracted
// from the chunk's own content (table presence, locally repeated labels),
// then the strategy-supplied extras (section label, sub-chunk index), so the
// most specific source wins.
func newChunk(ctx DocumentContext, content string, chunkType ChunkType, sequence int, extra map[string]any) Chunk {
	md := make(map[string]any, len(ctx.Metadata)+len(extra)+1)
	for k, v := range ctx.Metadata {
		md[k] = v
	}
	for k, v := range ExtractMetadata(content, "") {
		md[k] = v
	}
	for k, v := range extra {
		md[k] = v
	}

	return Chunk{
		ID:             uuid.NewString(),
		DocumentID:     ctx.DocumentID,
		Content:        content,
		ChunkType:      chunkType,
		Metadata:       md,
		SequenceNumber: sequence,
		TokenCount:     WordCount(content),
		CreatedAt:      time.Now().UTC(),
	}
}
