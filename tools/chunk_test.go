package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/oncoindex/abstracts-mcp-server/internal/chunking"
)

func TestChunkAbstract_Basic(t *testing.T) {
	_, output, err := ChunkAbstract(context.Background(), nil, ChunkAbstractInput{
		Content:  ascoToolSample,
		Filename: "ASCO_2020.md",
	})
	if err != nil {
		t.Fatalf("ChunkAbstract failed: %v", err)
	}

	if output.Documents != 1 {
		t.Errorf("Expected 1 document, got %d", output.Documents)
	}
	if output.Count != len(output.Chunks) {
		t.Errorf("Count %d does not match %d chunks", output.Count, len(output.Chunks))
	}
	if output.Count == 0 {
		t.Fatal("Expected chunks")
	}
	if output.Strategy != string(chunking.StrategyHybrid) {
		t.Errorf("Expected default HYBRID strategy, got %s", output.Strategy)
	}
	if output.LowConfidence {
		t.Error("Structured abstract should not be flagged low confidence")
	}

	types := make(map[chunking.ChunkType]bool)
	for _, chunk := range output.Chunks {
		types[chunk.ChunkType] = true

		if chunk.DocumentID != "ASCO_2020_10000" {
			t.Errorf("Expected document ID ASCO_2020_10000, got %q", chunk.DocumentID)
		}
		if chunk.Metadata["conference"] != "ASCO" {
			t.Errorf("Expected ASCO conference metadata, got %v", chunk.Metadata["conference"])
		}
		if chunk.Metadata["year"] != 2020 {
			t.Errorf("Expected year 2020, got %v", chunk.Metadata["year"])
		}
	}
	for _, want := range []chunking.ChunkType{
		chunking.TypeBackground,
		chunking.TypeMethods,
		chunking.TypeResults,
		chunking.TypeConclusions,
	} {
		if !types[want] {
			t.Errorf("Expected a %s chunk", want)
		}
	}
}

func TestChunkAbstract_MultipleAbstracts(t *testing.T) {
	content := ascoToolSample + "\n" + `### Abstract ID: 10012

**Title:** Nivolumab plus ipilimumab in advanced melanoma.

## Background

Combination checkpoint inhibition improves outcomes.

## Results

Five-year overall survival was 52%.
`

	_, output, err := ChunkAbstract(context.Background(), nil, ChunkAbstractInput{
		Content:  content,
		Filename: "ASCO_2020.md",
	})
	if err != nil {
		t.Fatalf("ChunkAbstract failed: %v", err)
	}

	if output.Documents != 2 {
		t.Fatalf("Expected 2 documents, got %d", output.Documents)
	}

	docIDs := make(map[string]bool)
	for _, chunk := range output.Chunks {
		docIDs[chunk.DocumentID] = true
	}
	if !docIDs["ASCO_2020_10000"] || !docIDs["ASCO_2020_10012"] {
		t.Errorf("Expected chunks from both abstracts, got document IDs: %v", docIDs)
	}
}

func TestChunkAbstract_ExplicitDocumentID(t *testing.T) {
	_, output, err := ChunkAbstract(context.Background(), nil, ChunkAbstractInput{
		Content:    ascoToolSample,
		Filename:   "ASCO_2020.md",
		DocumentID: "trial-briefing-42",
	})
	if err != nil {
		t.Fatalf("ChunkAbstract failed: %v", err)
	}

	if output.Documents != 1 {
		t.Errorf("Explicit ID should pin the input to one document, got %d", output.Documents)
	}
	for _, chunk := range output.Chunks {
		if chunk.DocumentID != "trial-briefing-42" {
			t.Errorf("Expected overridden document ID, got %q", chunk.DocumentID)
		}
	}
}

func TestChunkAbstract_EmptyContent(t *testing.T) {
	_, _, err := ChunkAbstract(context.Background(), nil, ChunkAbstractInput{Content: "   "})
	if err == nil {
		t.Error("Expected error for empty content")
	}
}

func TestChunkAbstract_LowConfidence(t *testing.T) {
	content := `The melanoma session drew a large audience this year.
Speakers covered adjuvant therapy, biomarkers and survivorship.
No structured abstract material appears in this note.`

	_, output, err := ChunkAbstract(context.Background(), nil, ChunkAbstractInput{
		Content:  content,
		Filename: "session_notes_2024.md",
	})
	if err != nil {
		t.Fatalf("ChunkAbstract failed: %v", err)
	}

	if !output.LowConfidence {
		t.Error("Unstructured prose should be flagged low confidence")
	}
	if output.Message == "" {
		t.Error("Expected a message explaining the GENERIC chunks")
	}
	for _, chunk := range output.Chunks {
		if chunk.ChunkType != chunking.TypeGeneric {
			t.Errorf("Expected GENERIC chunks, got %s", chunk.ChunkType)
		}
	}
}

func TestChunkAbstract_InlineConfig(t *testing.T) {
	_, output, err := ChunkAbstract(context.Background(), nil, ChunkAbstractInput{
		Content:  ascoToolSample,
		Filename: "ASCO_2020.md",
		Config:   `{"strategy": "RECURSIVE", "max_chunk_size": 400, "chunk_overlap": 50}`,
	})
	if err != nil {
		t.Fatalf("ChunkAbstract failed: %v", err)
	}

	if output.Strategy != string(chunking.StrategyRecursive) {
		t.Errorf("Expected RECURSIVE strategy, got %s", output.Strategy)
	}
	// Recursive windows carry no section types, so the flag fires
	if !output.LowConfidence {
		t.Error("Recursive output is all GENERIC and should be flagged")
	}
}

func TestChunkAbstract_BadConfig(t *testing.T) {
	_, _, err := ChunkAbstract(context.Background(), nil, ChunkAbstractInput{
		Content: ascoToolSample,
		Config:  `{"strategy": "SEMANTIC"}`,
	})
	if err == nil {
		t.Error("Expected error for an unknown strategy")
	}
}

func TestExtractMetadata_Tool(t *testing.T) {
	_, output, err := ExtractAbstractMetadata(context.Background(), nil, ExtractMetadataInput{
		Content:  ascoToolSample,
		Filename: "ASCO_2020.md",
	})
	if err != nil {
		t.Fatalf("ExtractAbstractMetadata failed: %v", err)
	}

	if output.FieldCount != len(output.Metadata) {
		t.Errorf("FieldCount %d does not match %d fields", output.FieldCount, len(output.Metadata))
	}
	if output.Metadata["abstract_id"] != "10000" {
		t.Errorf("Expected abstract_id 10000, got %v", output.Metadata["abstract_id"])
	}
	if output.Metadata["conference"] != "ASCO" {
		t.Errorf("Expected conference ASCO, got %v", output.Metadata["conference"])
	}
	if output.Metadata["year"] != 2020 {
		t.Errorf("Expected year 2020, got %v", output.Metadata["year"])
	}
	sponsor, _ := output.Metadata["sponsor"].(string)
	if !strings.Contains(sponsor, "Merck") {
		t.Errorf("Expected Merck sponsor, got %q", sponsor)
	}
	if output.Metadata["has_table"] != false {
		t.Errorf("Sample has no table, got has_table=%v", output.Metadata["has_table"])
	}
}

func TestExtractMetadata_FilenameOnly(t *testing.T) {
	_, output, err := ExtractAbstractMetadata(context.Background(), nil, ExtractMetadataInput{
		Filename: "ESMO_2021.md",
	})
	if err != nil {
		t.Fatalf("ExtractAbstractMetadata failed: %v", err)
	}

	if output.Metadata["conference"] != "ESMO" {
		t.Errorf("Expected conference ESMO from the filename, got %v", output.Metadata["conference"])
	}
	if output.Metadata["year"] != 2021 {
		t.Errorf("Expected year 2021, got %v", output.Metadata["year"])
	}
}

func TestExtractMetadata_EmptyInput(t *testing.T) {
	_, _, err := ExtractAbstractMetadata(context.Background(), nil, ExtractMetadataInput{})
	if err == nil {
		t.Error("Expected error when both content and filename are empty")
	}
}
