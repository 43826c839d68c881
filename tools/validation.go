package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/oncoindex/abstracts-mcp-server/internal/chunking"
)

// pipelineSchemaURL matches the $id of the embedded schema so the compiler
// resolves the resource without fetching anything.
const pipelineSchemaURL = "https://raw.githubusercontent.com/oncoindex/abstracts-mcp-server/main/tools/data/schema/pipeline.schema.json"

// ValidationIssue is one schema or semantic failure found in a pipeline config
type ValidationIssue struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationWarning flags a setting that is legal but likely unintended
type ValidationWarning struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidatePipelineConfigInput defines input for validate_pipeline_config tool
type ValidatePipelineConfigInput struct {
	Config string `json:"config" jsonschema:"Pipeline configuration as JSON string or file path"`
}

// ValidatePipelineConfigOutput defines output for validate_pipeline_config tool
type ValidatePipelineConfigOutput struct {
	Valid    bool                    `json:"valid"`
	Config   *chunking.Configuration `json:"config,omitempty"`
	Errors   []ValidationIssue       `json:"errors,omitempty"`
	Warnings []ValidationWarning     `json:"warnings,omitempty"`
	Summary  string                  `json:"summary"`
}

// readConfigContent accepts a configuration as inline JSON or as a path to a
// JSON file and returns the raw JSON bytes.
func readConfigContent(input string) ([]byte, error) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return []byte(trimmed), nil
	}
	data, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, nil
}

// pipelineSchema caches the compiled schema across tool calls
var pipelineSchema *jsonschema.Schema

// loadPipelineSchema compiles the embedded pipeline config schema
func loadPipelineSchema() (*jsonschema.Schema, error) {
	if pipelineSchema != nil {
		return pipelineSchema, nil
	}

	data, err := defaultDataProvider.ReadFile("data/schema/pipeline.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded schema: %w", err)
	}

	var schemaDoc interface{}
	if err := json.Unmarshal(data, &schemaDoc); err != nil {
		return nil, fmt.Errorf("embedded schema is not valid JSON: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(pipelineSchemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile(pipelineSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	pipelineSchema = schema
	return schema, nil
}

// validateSchema checks a decoded config document against the embedded
// JSON Schema and returns one issue per failure.
func validateSchema(config interface{}) ([]ValidationIssue, error) {
	schema, err := loadPipelineSchema()
	if err != nil {
		return nil, err
	}

	if err := schema.Validate(config); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return collectSchemaIssues(validationErr), nil
		}
		return []ValidationIssue{{Message: err.Error(), Code: "SCHEMA_VALIDATION_ERROR"}}, nil
	}
	return nil, nil
}

// collectSchemaIssues flattens the validation error tree into one issue per
// leaf cause, keeping each failure's instance path.
func collectSchemaIssues(validationErr *jsonschema.ValidationError) []ValidationIssue {
	if len(validationErr.Causes) == 0 {
		path := "$"
		if len(validationErr.InstanceLocation) > 0 {
			path = "$." + strings.Join(validationErr.InstanceLocation, ".")
		}
		return []ValidationIssue{{
			Path:    path,
			Message: validationErr.Error(),
			Code:    "SCHEMA_VALIDATION_ERROR",
		}}
	}

	var issues []ValidationIssue
	for _, cause := range validationErr.Causes {
		issues = append(issues, collectSchemaIssues(cause)...)
	}
	return issues
}

// configWarnings flags settings that pass validation but usually hurt
// retrieval quality.
func configWarnings(cfg chunking.Configuration) []ValidationWarning {
	var warnings []ValidationWarning

	if cfg.ChunkOverlap > cfg.MaxChunkSize/2 {
		warnings = append(warnings, ValidationWarning{
			Field: "chunk_overlap",
			Message: fmt.Sprintf("overlap of %d repeats more than half of every %d-character window; consecutive chunks will be mostly duplicates",
				cfg.ChunkOverlap, cfg.MaxChunkSize),
		})
	}
	if cfg.MaxChunkSize < 200 {
		warnings = append(warnings, ValidationWarning{
			Field: "max_chunk_size",
			Message: fmt.Sprintf("chunks of %d characters are smaller than most abstract sections; sections will be split aggressively",
				cfg.MaxChunkSize),
		})
	}
	if cfg.Strategy == chunking.StrategyRecursive {
		warnings = append(warnings, ValidationWarning{
			Field:   "strategy",
			Message: "RECURSIVE ignores section structure; every chunk is typed GENERIC and chunk type filters will miss",
		})
	}
	if !cfg.PreserveTables {
		warnings = append(warnings, ValidationWarning{
			Field:   "preserve_tables",
			Message: "tables stay folded into prose chunks; no TABLE chunks are emitted and chunk type filters will miss them",
		})
	}

	return warnings
}

// ValidatePipelineConfig validates a chunking pipeline configuration in two
// layers: the embedded JSON Schema for shape, then the constructor bounds
// for semantics.
func ValidatePipelineConfig(ctx context.Context, req *mcp.CallToolRequest, input ValidatePipelineConfigInput) (*mcp.CallToolResult, ValidatePipelineConfigOutput, error) {
	output := ValidatePipelineConfigOutput{}

	if strings.TrimSpace(input.Config) == "" {
		return nil, output, fmt.Errorf("config must be a JSON document or a file path")
	}

	data, err := readConfigContent(input.Config)
	if err != nil {
		return nil, output, err
	}

	// Layer 0: must be JSON at all
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		output.Errors = append(output.Errors, ValidationIssue{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    "INVALID_JSON",
		})
		output.Summary = "Configuration is not valid JSON"
		return nil, output, nil
	}

	// Layer 1: shape, against the embedded schema
	schemaIssues, err := validateSchema(decoded)
	if err != nil {
		return nil, output, err
	}
	output.Errors = append(output.Errors, schemaIssues...)

	// Layer 2: semantic bounds enforced by the constructor
	cfg, err := chunking.LoadConfiguration(data)
	if err != nil {
		code := "INVALID_CONFIGURATION"
		if errors.Is(err, chunking.ErrUnsupportedStrategy) {
			code = "UNSUPPORTED_STRATEGY"
		}
		output.Errors = append(output.Errors, ValidationIssue{
			Message: err.Error(),
			Code:    code,
		})
	}

	if len(output.Errors) > 0 {
		output.Valid = false
		output.Summary = fmt.Sprintf("Configuration failed validation with %d error(s)", len(output.Errors))
		return nil, output, nil
	}

	output.Valid = true
	output.Config = &cfg
	output.Warnings = configWarnings(cfg)
	if len(output.Warnings) > 0 {
		output.Summary = fmt.Sprintf("Configuration is valid (%s strategy) with %d warning(s)", cfg.Strategy, len(output.Warnings))
	} else {
		output.Summary = fmt.Sprintf("Configuration is valid (%s strategy)", cfg.Strategy)
	}

	return nil, output, nil
}

// RegisterValidationTools registers configuration validation tools
func RegisterValidationTools(server *mcp.Server) error {
	// Tool 3: validate_pipeline_config
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "validate_pipeline_config",
			Description: "Validate a chunking pipeline configuration against the JSON Schema and the semantic bounds (sizes, overlap, strategy membership)",
		},
		ValidatePipelineConfig,
	)

	return nil
}
