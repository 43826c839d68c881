package tools

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oncoindex/abstracts-mcp-server/internal/corpus"
)

// InspectCorpusInput defines input for inspect_corpus tool
type InspectCorpusInput struct {
	Path string `json:"path,omitempty" jsonschema:"Corpus directory to inspect; defaults to the managed corpus"`
}

// InspectCorpusOutput defines output for inspect_corpus tool
type InspectCorpusOutput struct {
	*corpus.Info
}

// InspectCorpus summarizes a corpus directory and recommends a chunking
// configuration for it
func InspectCorpus(ctx context.Context, req *mcp.CallToolRequest, input InspectCorpusInput) (*mcp.CallToolResult, InspectCorpusOutput, error) {
	path := input.Path
	if path == "" {
		path = filepath.Join(dataDir, corpusDir)
	}

	info, err := corpus.InspectDir(path)
	if err != nil {
		return nil, InspectCorpusOutput{}, fmt.Errorf("failed to inspect corpus: %w", err)
	}

	return nil, InspectCorpusOutput{Info: info}, nil
}

// RegisterCorpusTools registers corpus inspection tools with the MCP server
func RegisterCorpusTools(server *mcp.Server) error {
	// Tool 6: inspect_corpus
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "inspect_corpus",
			Description: "Summarize a corpus directory of abstract markdown files: file and abstract counts, conferences, years, structure coverage, and a recommended chunking configuration. Defaults to the managed corpus when no path is given.",
		},
		InspectCorpus,
	)

	return nil
}
