package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/oncoindex/abstracts-mcp-server/internal/chunking"
	"github.com/oncoindex/abstracts-mcp-server/internal/corpus"
	"github.com/oncoindex/abstracts-mcp-server/internal/indexing"
)

func main() {
	configPath := flag.String("config", "", "pipeline configuration JSON file (defaults to the built-in hybrid pipeline)")
	exportPath := flag.String("export", "", "also write every chunk as JSON lines to this file")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-config pipeline.json] [-export chunks.jsonl] <corpus-dir> <index-dir>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s -export chunks.jsonl data/corpus data/search/index\n", os.Args[0])
		os.Exit(1)
	}

	corpusDir := flag.Arg(0)
	indexDir := flag.Arg(1)

	log.Printf("Abstract Corpus Indexer v%d", indexing.SchemaVersion)
	log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	// Step 1: Load the pipeline configuration
	cfg := chunking.DefaultConfiguration()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to read configuration: %v", err)
		}
		cfg, err = chunking.LoadConfiguration(data)
		if err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
		log.Printf("Pipeline configuration: %s", *configPath)
	}
	log.Printf("Strategy: %s (max %d chars, overlap %d)", cfg.Strategy, cfg.MaxChunkSize, cfg.ChunkOverlap)

	// Step 2: Scan the corpus and split multi-abstract files
	log.Printf("Scanning corpus: %s", corpusDir)
	docs, err := corpus.ScanDir(corpusDir)
	if err != nil {
		log.Fatalf("Failed to scan corpus: %v", err)
	}
	if len(docs) == 0 {
		log.Fatalf("No abstracts found in %s", corpusDir)
	}
	log.Printf("✓ Found %d abstracts", len(docs))

	// Step 3: Chunk every abstract
	var chunks []chunking.Chunk
	for _, doc := range docs {
		docChunks, err := chunking.ChunkDocument(doc.Content, cfg, doc.ID, doc.Filename)
		if err != nil {
			log.Fatalf("Failed to chunk %s: %v", doc.ID, err)
		}
		chunks = append(chunks, docChunks...)
	}

	totalTokens := 0
	generic := 0
	for _, chunk := range chunks {
		totalTokens += chunk.TokenCount
		if chunk.ChunkType == chunking.TypeGeneric {
			generic++
		}
	}
	avgTokens := 0
	if len(chunks) > 0 {
		avgTokens = totalTokens / len(chunks)
	}

	log.Printf("✓ Chunked %d abstracts into %d chunks (avg: %d tokens, %d generic)",
		len(docs), len(chunks), avgTokens, generic)
	if generic == len(chunks) && len(chunks) > 0 {
		log.Printf("⚠️  Every chunk is GENERIC - no recognizable abstract structure in this corpus")
	}

	// Step 4: Replace the existing index
	if err := os.RemoveAll(indexDir); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove old index: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(indexDir), 0755); err != nil {
		log.Fatalf("Failed to create index directory: %v", err)
	}

	log.Printf("Creating search index: %s", indexDir)
	if err := indexing.Build(indexDir, chunks); err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}
	log.Printf("✓ Indexed %d chunks successfully", len(chunks))

	// Step 5: Optional JSONL export for downstream pipelines
	if *exportPath != "" {
		if err := exportChunks(*exportPath, chunks); err != nil {
			log.Fatalf("Failed to export chunks: %v", err)
		}
		log.Printf("✓ Exported %d chunks to %s", len(chunks), *exportPath)
	}

	// Step 6: Write version file
	versionFile := filepath.Join(filepath.Dir(indexDir), ".index_version")
	versionContent := fmt.Sprintf("%d", indexing.SchemaVersion)
	if err := os.WriteFile(versionFile, []byte(versionContent), 0644); err != nil {
		log.Printf("Warning: Failed to write version file: %v", err)
	} else {
		log.Printf("✓ Index schema version: v%d", indexing.SchemaVersion)
	}

	log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("✓ Indexing complete!")
	log.Printf("")
	log.Printf("Index details:")
	log.Printf("  Location:      %s", indexDir)
	log.Printf("  Abstracts:     %d", len(docs))
	log.Printf("  Total chunks:  %d", len(chunks))
	log.Printf("  Avg size:      %d tokens", avgTokens)
	log.Printf("  Schema:        v%d", indexing.SchemaVersion)
}

// exportChunks writes chunks as JSON lines, one chunk object per line, the
// format downstream embedding pipelines ingest.
func exportChunks(path string, chunks []chunking.Chunk) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	for _, chunk := range chunks {
		if err := enc.Encode(chunk); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
