package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oncoindex/abstracts-mcp-server/internal/chunking"
	"github.com/oncoindex/abstracts-mcp-server/internal/corpus"
)

// ChunkAbstractInput defines input for chunk_abstract tool
type ChunkAbstractInput struct {
	Content    string `json:"content" jsonschema:"Markdown content of one or more abstracts"`
	Filename   string `json:"filename,omitempty" jsonschema:"Original filename, e.g. ASCO_2020.md; supplies conference and year metadata (optional)"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"Document ID override; when set the content is chunked as one document (optional)"`
	Config     string `json:"config,omitempty" jsonschema:"Chunking configuration as inline JSON or a path to a JSON file (optional, defaults to the hybrid pipeline)"`
}

// ChunkAbstractOutput defines output for chunk_abstract tool
type ChunkAbstractOutput struct {
	Chunks        []chunking.Chunk `json:"chunks"`
	Count         int              `json:"count"`
	Documents     int              `json:"documents"`
	Strategy      string           `json:"strategy"`
	LowConfidence bool             `json:"low_confidence,omitempty"`
	Message       string           `json:"message,omitempty"`
}

// ExtractMetadataInput defines input for extract_metadata tool
type ExtractMetadataInput struct {
	Content  string `json:"content" jsonschema:"Abstract markdown to extract metadata from"`
	Filename string `json:"filename,omitempty" jsonschema:"Original filename; supplies conference and year metadata (optional)"`
}

// ExtractMetadataOutput defines output for extract_metadata tool
type ExtractMetadataOutput struct {
	Metadata   map[string]any `json:"metadata"`
	FieldCount int            `json:"field_count"`
}

// resolveConfig accepts a chunking configuration as inline JSON or as a path
// to a JSON file. Empty input means the default pipeline.
func resolveConfig(input string) (chunking.Configuration, error) {
	if strings.TrimSpace(input) == "" {
		return chunking.DefaultConfiguration(), nil
	}
	data, err := readConfigContent(input)
	if err != nil {
		return chunking.Configuration{}, err
	}
	return chunking.LoadConfiguration(data)
}

// ChunkAbstract splits abstract markdown into typed, metadata-enriched chunks
func ChunkAbstract(ctx context.Context, req *mcp.CallToolRequest, input ChunkAbstractInput) (*mcp.CallToolResult, ChunkAbstractOutput, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, ChunkAbstractOutput{}, fmt.Errorf("content must not be empty")
	}

	cfg, err := resolveConfig(input.Config)
	if err != nil {
		return nil, ChunkAbstractOutput{}, err
	}

	docs := corpus.SplitAbstracts(input.Content, input.Filename)
	if input.DocumentID != "" {
		// An explicit ID pins the whole input to one document
		docs = []corpus.Document{{ID: input.DocumentID, Filename: input.Filename, Content: input.Content}}
	}

	var chunks []chunking.Chunk
	for _, doc := range docs {
		docChunks, err := chunking.ChunkDocument(doc.Content, cfg, doc.ID, doc.Filename)
		if err != nil {
			return nil, ChunkAbstractOutput{}, fmt.Errorf("failed to chunk %s: %w", doc.ID, err)
		}
		chunks = append(chunks, docChunks...)
	}

	output := ChunkAbstractOutput{
		Chunks:    chunks,
		Count:     len(chunks),
		Documents: len(docs),
		Strategy:  string(cfg.Strategy),
	}
	if len(chunks) > 0 && countGeneric(chunks) == len(chunks) {
		output.LowConfidence = true
		output.Message = "No abstract structure recognized; every chunk is GENERIC"
	}

	return nil, output, nil
}

// ExtractAbstractMetadata runs the metadata probes over one abstract
func ExtractAbstractMetadata(ctx context.Context, req *mcp.CallToolRequest, input ExtractMetadataInput) (*mcp.CallToolResult, ExtractMetadataOutput, error) {
	if strings.TrimSpace(input.Content) == "" && strings.TrimSpace(input.Filename) == "" {
		return nil, ExtractMetadataOutput{}, fmt.Errorf("content or filename must be provided")
	}

	metadata := chunking.ExtractMetadata(input.Content, input.Filename)

	return nil, ExtractMetadataOutput{
		Metadata:   metadata,
		FieldCount: len(metadata),
	}, nil
}

// RegisterChunkingTools registers the chunking pipeline tools
func RegisterChunkingTools(server *mcp.Server) error {
	// Tool 1: chunk_abstract
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "chunk_abstract",
			Description: "Split abstract markdown into typed, metadata-enriched chunks using the configured strategy (HEADER_BASED, RECURSIVE or HYBRID)",
		},
		ChunkAbstract,
	)

	// Tool 2: extract_metadata
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "extract_metadata",
			Description: "Extract structured metadata (abstract ID, trial ID, sponsor, title, year, conference, table presence) from abstract markdown",
		},
		ExtractAbstractMetadata,
	)

	return nil
}
