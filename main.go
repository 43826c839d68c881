package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/oncoindex/abstracts-mcp-server/tools"
)

const (
	version     = "0.3.1"
	serverName  = "abstracts-mcp-server"
	description = "MCP server for chunking, inspecting and searching oncology conference abstracts"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("%s version %s\n", serverName, version)
		os.Exit(0)
	}

	// Set up logging to stderr (MCP uses stdout for protocol)
	log.SetOutput(os.Stderr)
	log.Printf("%s v%s starting...", serverName, version)

	// Create MCP server
	server := createMCPServer()

	// Register all tools, resources, and prompts
	if err := registerTools(server); err != nil {
		log.Fatalf("Failed to register tools: %v", err)
	}
	if err := registerResources(server); err != nil {
		log.Fatalf("Failed to register resources: %v", err)
	}
	if err := registerPrompts(server); err != nil {
		log.Fatalf("Failed to register prompts: %v", err)
	}

	log.Printf("✓ Server ready and waiting for connections")

	// Set up cleanup on shutdown
	defer func() {
		if err := tools.CloseSearch(); err != nil {
			log.Printf("Error closing abstract search: %v", err)
		}
	}()

	// Run server with stdio transport
	ctx := context.Background()
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// createMCPServer initializes the MCP server
func createMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		nil, // Default options
	)

	log.Printf("Server initialized: %s v%s", serverName, version)
	return server
}

// registerTools registers all MCP tools
func registerTools(server *mcp.Server) error {
	toolCount := 0

	// Chunking pipeline tools (2 tools)
	if err := tools.RegisterChunkingTools(server); err != nil {
		return fmt.Errorf("failed to register chunking tools: %w", err)
	}
	toolCount += 2

	// Configuration validation tool (1 tool)
	if err := tools.RegisterValidationTools(server); err != nil {
		return fmt.Errorf("failed to register validation tools: %w", err)
	}
	toolCount++

	// Conference format tools (2 tools)
	if err := tools.RegisterFormatTools(server); err != nil {
		return fmt.Errorf("failed to register format tools: %w", err)
	}
	toolCount += 2

	// Corpus inspection tool (1 tool)
	if err := tools.RegisterCorpusTools(server); err != nil {
		return fmt.Errorf("failed to register corpus tools: %w", err)
	}
	toolCount++

	// Abstract search tools (2 tools)
	if err := tools.RegisterSearchTools(server); err != nil {
		log.Printf("Warning: Failed to register search tools: %v", err)
		log.Printf("Abstract search will be unavailable")
	} else {
		toolCount += 2
	}

	log.Printf("✓ All tools registered: %d tools (chunking + validation + formats + corpus + search)", toolCount)
	return nil
}

// registerResources registers all MCP resources
func registerResources(server *mcp.Server) error {
	// TODO: Expose the format catalog as a readable resource
	// TODO: Expose the pipeline config schema as a readable resource

	log.Printf("Resources registered: 0 (TODO - implementation pending)")
	return nil
}

// registerPrompts registers all MCP prompts
func registerPrompts(server *mcp.Server) error {
	// TODO: Register corpus ingestion workflow prompts

	log.Printf("Prompts registered: 0 (TODO - implementation pending)")
	return nil
}
