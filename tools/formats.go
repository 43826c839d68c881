package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oncoindex/abstracts-mcp-server/internal/conference"
)

// formatCatalog caches the loaded conference format catalog
var formatCatalog *conference.Catalog

// LoadFormatCatalog loads the conference format catalog.
// Try embedded data first (standalone binary), then filesystem (development),
// then the compiled-in defaults.
func LoadFormatCatalog() error {
	catalogData, err := defaultDataProvider.ReadFile("data/formats/catalog.json")
	if err != nil {
		// Fallback to filesystem (development mode)
		catalogPath := filepath.Join(dataDir, "formats/catalog.json")
		catalogData, err = os.ReadFile(catalogPath)
	}
	if err != nil {
		// No catalog file anywhere; run on the compiled-in formats.
		formatCatalog = &conference.Catalog{
			Formats: conference.DefaultFormats(),
			Version: "builtin",
		}
		return nil
	}

	catalog, err := conference.LoadCatalog(catalogData)
	if err != nil {
		return err
	}
	formatCatalog = &catalog
	return nil
}

// FormatSummary represents lightweight format info for listing
type FormatSummary struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Conference      string   `json:"conference,omitempty"`
	AbstractIDStyle string   `json:"abstract_id_style"` // "numeric" or "alphanumeric"
	SectionHeaders  []string `json:"section_headers"`
	Description     string   `json:"description,omitempty"`
}

// ListFormatsInput defines input for list_formats tool
type ListFormatsInput struct {
	// No input needed - returns all known formats
}

// ListFormatsOutput defines output for list_formats tool
type ListFormatsOutput struct {
	Formats []FormatSummary `json:"formats"`
	Count   int             `json:"count"`
	Version string          `json:"version,omitempty"`
}

// ListFormats returns all known conference abstract formats
func ListFormats(ctx context.Context, req *mcp.CallToolRequest, input ListFormatsInput) (*mcp.CallToolResult, ListFormatsOutput, error) {
	if formatCatalog == nil {
		if err := LoadFormatCatalog(); err != nil {
			return nil, ListFormatsOutput{}, fmt.Errorf("failed to load format catalog: %w", err)
		}
	}

	summaries := make([]FormatSummary, 0, len(formatCatalog.Formats))
	for _, format := range formatCatalog.Formats {
		summaries = append(summaries, FormatSummary{
			ID:              format.ID,
			Name:            format.Name,
			Conference:      format.Conference,
			AbstractIDStyle: format.AbstractIDStyle,
			SectionHeaders:  format.SectionHeaders,
			Description:     format.Description,
		})
	}

	return nil, ListFormatsOutput{
		Formats: summaries,
		Count:   len(summaries),
		Version: formatCatalog.Version,
	}, nil
}

// DetectFormatInput defines input for detect_format tool
type DetectFormatInput struct {
	Content  string `json:"content,omitempty" jsonschema:"Markdown content of the abstract document"`
	Filename string `json:"filename,omitempty" jsonschema:"Original filename, used for prefix hints (e.g. ASCO_2020.md)"`
}

// DetectFormatOutput defines output for detect_format tool
type DetectFormatOutput struct {
	Detected   bool     `json:"detected"`
	FormatID   string   `json:"format_id,omitempty"`
	FormatName string   `json:"format_name,omitempty"`
	Conference string   `json:"conference,omitempty"`
	Score      int      `json:"score"`
	Structured bool     `json:"structured"`
	Headers    []string `json:"headers,omitempty"`
	Message    string   `json:"message"`
}

// DetectFormat scores a document against every known format and reports the
// best match
func DetectFormat(ctx context.Context, req *mcp.CallToolRequest, input DetectFormatInput) (*mcp.CallToolResult, DetectFormatOutput, error) {
	if strings.TrimSpace(input.Content) == "" && strings.TrimSpace(input.Filename) == "" {
		return nil, DetectFormatOutput{}, fmt.Errorf("content or filename is required")
	}

	if formatCatalog == nil {
		if err := LoadFormatCatalog(); err != nil {
			return nil, DetectFormatOutput{}, fmt.Errorf("failed to load format catalog: %w", err)
		}
	}

	format, score, ok := conference.DetectFormat(input.Content, input.Filename, formatCatalog.Formats)

	output := DetectFormatOutput{
		Detected:   ok,
		Score:      score,
		Structured: conference.HasRecognizableStructure(input.Content),
		Headers:    conference.FindHeadersInDocument(input.Content),
	}
	if ok {
		output.FormatID = format.ID
		output.FormatName = format.Name
		output.Conference = format.Conference
		output.Message = fmt.Sprintf("Matched %s (score %d)", format.Name, score)
	} else {
		output.Message = "No known conference format matched; chunks from this document will be typed GENERIC unless it carries recognizable section headers"
	}

	return nil, output, nil
}

// RegisterFormatTools registers conference format tools
func RegisterFormatTools(server *mcp.Server) error {
	// Initialize the format catalog
	if err := LoadFormatCatalog(); err != nil {
		return fmt.Errorf("failed to load format catalog: %w", err)
	}

	// Tool 4: list_formats
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_formats",
			Description: "List the known conference abstract formats with identifier style, section vocabulary, and detection hints",
		},
		ListFormats,
	)

	// Tool 5: detect_format
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "detect_format",
			Description: "Detect which conference format a markdown document follows by scoring abstract ID patterns, sponsor labels, section headers, and the filename prefix",
		},
		DetectFormat,
	)

	return nil
}
