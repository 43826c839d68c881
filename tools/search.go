package tools

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oncoindex/abstracts-mcp-server/internal/chunking"
	"github.com/oncoindex/abstracts-mcp-server/internal/corpus"
	"github.com/oncoindex/abstracts-mcp-server/internal/indexing"
)

const (
	corpusDir     = "corpus"
	indexDir      = "search/index"
	lockFile      = "search/index.lock"
	lockTimeout   = 5 * time.Second // Max time to wait for lock
	lockRetryWait = 500 * time.Millisecond

	indexVersionFile = "search/.index_version"
)

var (
	dataDir string // Data directory for the abstract corpus and search index
)

func init() {
	// Strategy 1: Try user home directory first (standalone installation)
	// This works cross-platform: ~/.abstracts-mcp/ on Unix, C:\Users\...\abstracts-mcp\ on Windows
	homeDir, err := os.UserHomeDir()
	if err == nil {
		userDataDir := filepath.Join(homeDir, ".abstracts-mcp")

		// Check if user data directory exists
		if info, err := os.Stat(userDataDir); err == nil && info.IsDir() {
			dataDir = userDataDir
			log.Printf("✓ Data directory: %s (user home)", dataDir)
			return
		}

		// Try to create it - this is the expected path for standalone installations
		if err := os.MkdirAll(userDataDir, 0755); err == nil {
			dataDir = userDataDir
			log.Printf("✓ Data directory created: %s", dataDir)

			// Create subdirectories
			os.MkdirAll(filepath.Join(dataDir, corpusDir), 0755)
			os.MkdirAll(filepath.Join(dataDir, "search"), 0755)
			return
		}

		// If creation failed, log warning and try next strategy
		log.Printf("Warning: Could not create user data directory at %s: %v", userDataDir, err)
	} else {
		log.Printf("Warning: Could not determine user home directory: %v", err)
	}

	// Strategy 2: Try relative to executable (development installation)
	// Binary at: <install>/bin/abstracts-mcp-server, data at: <install>/data/
	execPath, err := os.Executable()
	if err == nil {
		execDir := filepath.Dir(execPath)
		relativeDataDir := filepath.Join(execDir, "..", "data")

		if info, err := os.Stat(relativeDataDir); err == nil && info.IsDir() {
			dataDir, _ = filepath.Abs(relativeDataDir)
			log.Printf("✓ Data directory: %s (relative to binary)", dataDir)
			return
		}
	}

	// Strategy 3: Last resort fallback to current working directory
	dataDir = filepath.Join(".", "data")
	log.Printf("⚠️  Data directory (fallback): %s", dataDir)

	os.MkdirAll(filepath.Join(dataDir, corpusDir), 0755)
	os.MkdirAll(filepath.Join(dataDir, "search"), 0755)
}

// isProcessRunning is implemented in platform-specific files:
// - search_unix.go for Unix/Linux/macOS
// - search_windows.go for Windows

// cleanStaleLock removes lock file if the owning process is dead
func cleanStaleLock() error {
	lockPath := filepath.Join(dataDir, lockFile)

	data, err := os.ReadFile(lockPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No lock file, nothing to clean
		}
		return fmt.Errorf("failed to read lock file: %w", err)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		// Corrupted lock file, remove it
		log.Printf("Warning: Corrupted lock file (invalid PID), removing...")
		return os.Remove(lockPath)
	}

	if isProcessRunning(pid) {
		return fmt.Errorf("lock held by running process %d", pid)
	}

	// Process is dead, remove stale lock
	log.Printf("Stale lock detected (PID %d not running), cleaning...", pid)
	return os.Remove(lockPath)
}

// acquireLock attempts to acquire the index lock with retry
func acquireLock() error {
	lockPath := filepath.Join(dataDir, lockFile)
	ourPID := os.Getpid()

	// Check if we already have the lock
	if data, err := os.ReadFile(lockPath); err == nil {
		if pidStr := strings.TrimSpace(string(data)); pidStr != "" {
			if pid, err := strconv.Atoi(pidStr); err == nil && pid == ourPID {
				log.Printf("Lock already held by this process (PID %d)", ourPID)
				return nil
			}
		}
	}

	startTime := time.Now()

	for {
		// Try to clean stale lock first
		if err := cleanStaleLock(); err != nil {
			// Lock is held by an active process
			elapsed := time.Since(startTime)
			if elapsed >= lockTimeout {
				return fmt.Errorf("timeout waiting for index lock after %v: %w", elapsed, err)
			}

			log.Printf("Index locked by another process, waiting... (%v elapsed)", elapsed.Round(100*time.Millisecond))
			time.Sleep(lockRetryWait)
			continue
		}

		// Try to create lock file with our PID
		if err := os.WriteFile(lockPath, []byte(strconv.Itoa(ourPID)), 0644); err != nil {
			return fmt.Errorf("failed to create lock file: %w", err)
		}

		log.Printf("✓ Index lock acquired (PID %d)", ourPID)
		return nil
	}
}

// releaseLock releases the index lock
func releaseLock() error {
	lockPath := filepath.Join(dataDir, lockFile)

	// Verify we own the lock before removing
	data, err := os.ReadFile(lockPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Lock already removed
		}
		return fmt.Errorf("failed to read lock file: %w", err)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err == nil && pid != os.Getpid() {
		log.Printf("Warning: Lock file contains different PID (%d vs %d), not removing", pid, os.Getpid())
		return nil
	}

	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}

	log.Printf("✓ Index lock released")
	return nil
}

// SearchResult pairs a chunk with its relevance score
type SearchResult struct {
	Chunk chunking.Chunk `json:"chunk"`
	Score float64        `json:"score"`
}

// SearchAbstractsInput defines input for search_abstracts tool
type SearchAbstractsInput struct {
	Query      string `json:"query" jsonschema:"Full-text query over the indexed abstract chunks"`
	ChunkType  string `json:"chunk_type,omitempty" jsonschema:"Only return chunks of this type, e.g. RESULTS or CONCLUSIONS (optional)"`
	Conference string `json:"conference,omitempty" jsonschema:"Only return chunks from this conference, e.g. ASCO (optional)"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of results (optional, defaults to 10)"`
}

// SearchAbstractsOutput defines output for search_abstracts tool
type SearchAbstractsOutput struct {
	Results   []SearchResult `json:"results"`
	Query     string         `json:"query"`
	TotalHits int            `json:"total_hits"`
}

// RefreshAbstractIndexInput defines input for refresh_abstract_index tool
type RefreshAbstractIndexInput struct {
	Force     bool   `json:"force,omitempty" jsonschema:"Rebuild even if no corpus file changed (optional, defaults to false)"`
	CorpusDir string `json:"corpus_dir,omitempty" jsonschema:"Directory of abstract markdown files to index (optional, defaults to the managed corpus)"`
}

// RefreshAbstractIndexOutput defines output for refresh_abstract_index tool
type RefreshAbstractIndexOutput struct {
	Updated       bool      `json:"updated"`
	LastUpdate    time.Time `json:"last_update"`
	ChunksIndexed int       `json:"chunks_indexed"`
	Message       string    `json:"message"`
}

// indexHolder manages concurrent access to the Bleve chunk index
type indexHolder struct {
	// current holds the active index pointer (atomic access for lock-free reads)
	current atomic.Pointer[Index]

	// refreshMu prevents concurrent rebuild operations
	// NOT used for searches - they are lock-free via atomic pointer
	refreshMu sync.Mutex

	// wg tracks in-flight search operations for graceful cleanup of old indexes
	wg sync.WaitGroup
}

var (
	indexMgr *indexHolder
)

// InitializeSearch initializes the abstract search system
// Priority: local index from a previous run > index built from the bundled corpus
func InitializeSearch() error {
	startTime := time.Now()
	log.Printf("Initializing abstract search...")

	// Initialize indexHolder if needed
	if indexMgr == nil {
		indexMgr = &indexHolder{}
	}

	indexPath := filepath.Join(dataDir, indexDir)

	// Acquire lock before accessing index
	log.Printf("Acquiring index lock...")
	lockStart := time.Now()
	if err := acquireLock(); err != nil {
		return fmt.Errorf("failed to acquire index lock: %w", err)
	}
	log.Printf("Lock acquired in %v", time.Since(lockStart).Round(time.Millisecond))

	// Strategy 1: Try to open the local index left by a previous run
	if _, err := os.Stat(indexPath); err == nil {
		// Check index schema version
		currentVersion := getIndexVersion()
		if currentVersion != indexing.SchemaVersion {
			log.Printf("Index schema version mismatch (have: v%d, want: v%d), invalidating old index...",
				currentVersion, indexing.SchemaVersion)
			os.RemoveAll(indexPath)
			os.Remove(filepath.Join(dataDir, indexVersionFile))
		} else {
			openStart := time.Now()
			index, err := bleve.Open(indexPath)
			if err == nil {
				wrapped := wrapIndex(index)
				indexMgr.current.Store(&wrapped)
				count, _ := wrapped.DocCount()
				elapsed := time.Since(startTime).Round(time.Millisecond)
				log.Printf("✓ Abstract search initialized (%d chunks, local index v%d) in %v",
					count, indexing.SchemaVersion, elapsed)

				// Point out stale indexes, but keep serving the old one
				if needsRefresh() {
					log.Printf("ℹ️  Corpus files changed since the last build. Use refresh_abstract_index to rebuild.")
				}

				return nil
			}

			// Index corrupted, remove it
			log.Printf("Warning: Local index corrupted (open failed in %v), removing...", time.Since(openStart).Round(time.Millisecond))
			os.RemoveAll(indexPath)
			os.Remove(filepath.Join(dataDir, indexVersionFile))
		}
	}

	// Strategy 2: Seed the corpus from the embedded files and build a fresh index
	log.Printf("No local index found, building from the bundled corpus...")
	extractStart := time.Now()

	if err := extractEmbeddedCorpus(); err != nil {
		return fmt.Errorf("failed to extract embedded corpus: %w", err)
	}
	log.Printf("Extraction completed in %v", time.Since(extractStart).Round(time.Millisecond))

	chunks, err := chunkCorpus(filepath.Join(dataDir, corpusDir))
	if err != nil {
		return fmt.Errorf("failed to chunk corpus: %w", err)
	}
	if err := indexChunks(chunks); err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	indexPtr := indexMgr.current.Load()
	if indexPtr == nil {
		return fmt.Errorf("index still nil after build")
	}
	count, _ := (*indexPtr).DocCount()
	elapsed := time.Since(startTime).Round(time.Millisecond)
	log.Printf("✓ Abstract search initialized (%d chunks, bundled corpus) in %v", count, elapsed)

	return nil
}

// getIndexVersion reads the current index schema version from disk
func getIndexVersion() int {
	versionPath := filepath.Join(dataDir, indexVersionFile)
	data, err := os.ReadFile(versionPath)
	if err != nil {
		return 0 // No version file = v0 (old format)
	}

	version := 0
	fmt.Sscanf(string(data), "%d", &version)
	return version
}

// writeIndexVersion writes the current index schema version to disk.
// The file's mtime doubles as the "last built" timestamp needsRefresh
// compares corpus files against.
func writeIndexVersion() error {
	versionPath := filepath.Join(dataDir, indexVersionFile)
	os.MkdirAll(filepath.Dir(versionPath), 0755)

	content := fmt.Sprintf("%d", indexing.SchemaVersion)
	return os.WriteFile(versionPath, []byte(content), 0644)
}

// extractEmbeddedCorpus copies the bundled abstract files into the managed
// corpus directory. Files already present locally are left alone so user
// edits and additions survive restarts.
func extractEmbeddedCorpus() error {
	corpusPath := filepath.Join(dataDir, corpusDir)
	if err := os.MkdirAll(corpusPath, 0755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}

	entries, err := defaultDataProvider.ReadDir("data/corpus")
	if err != nil {
		return fmt.Errorf("failed to read embedded corpus: %w", err)
	}

	extracted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		localFile := filepath.Join(corpusPath, entry.Name())
		if _, err := os.Stat(localFile); err == nil {
			continue // Keep the local copy
		}
		data, err := defaultDataProvider.ReadFile("data/corpus/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read embedded file %s: %w", entry.Name(), err)
		}
		if err := os.WriteFile(localFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", localFile, err)
		}
		extracted++
	}

	log.Printf("✓ Bundled corpus extracted to %s (%d new files)", corpusPath, extracted)
	return nil
}

// needsRefresh reports whether any managed corpus file changed after the
// last index build. The version file's mtime records the build time.
func needsRefresh() bool {
	versionPath := filepath.Join(dataDir, indexVersionFile)
	info, err := os.Stat(versionPath)
	if err != nil {
		return true // No recorded build
	}
	builtAt := info.ModTime()

	entries, err := os.ReadDir(filepath.Join(dataDir, corpusDir))
	if err != nil {
		return false // No corpus to compare against
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
			continue
		}
		if fi, err := entry.Info(); err == nil && fi.ModTime().After(builtAt) {
			return true
		}
	}
	return false
}

// chunkCorpus splits every markdown file under dir into abstracts and runs
// each through the chunking pipeline with the default configuration.
func chunkCorpus(dir string) ([]chunking.Chunk, error) {
	docs, err := corpus.ScanDir(dir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no abstracts found in %s", dir)
	}

	cfg := chunking.DefaultConfiguration()
	var chunks []chunking.Chunk
	for _, doc := range docs {
		docChunks, err := chunking.ChunkDocument(doc.Content, cfg, doc.ID, doc.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to chunk %s: %w", doc.ID, err)
		}
		chunks = append(chunks, docChunks...)
	}
	return chunks, nil
}

// averageTokens calculates the mean token count across chunks
func averageTokens(chunks []chunking.Chunk) int {
	if len(chunks) == 0 {
		return 0
	}
	total := 0
	for _, chunk := range chunks {
		total += chunk.TokenCount
	}
	return total / len(chunks)
}

// countGeneric counts chunks that matched no structural boundary. When every
// chunk is generic the corpus carried no recognizable abstract structure.
func countGeneric(chunks []chunking.Chunk) int {
	count := 0
	for _, chunk := range chunks {
		if chunk.ChunkType == chunking.TypeGeneric {
			count++
		}
	}
	return count
}

// indexChunks builds a new index from chunks and swaps it in atomically
func indexChunks(chunks []chunking.Chunk) error {
	startTime := time.Now()
	indexPath := filepath.Join(dataDir, indexDir)
	tempIndexPath := filepath.Join(dataDir, indexDir+".tmp")

	// Clean up any leftover temp index from previous crash
	os.RemoveAll(tempIndexPath)

	// Create directory for temp index
	if err := os.MkdirAll(filepath.Dir(tempIndexPath), 0755); err != nil {
		return fmt.Errorf("failed to create temp index directory: %w", err)
	}

	// Build the new index in the temp location
	log.Printf("Building new index with %d chunks in temp location...", len(chunks))
	buildStart := time.Now()
	if err := indexing.Build(tempIndexPath, chunks); err != nil {
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to build temp index: %w", err)
	}
	log.Printf("Temp index built in %v", time.Since(buildStart).Round(time.Millisecond))

	// Atomic filesystem swap: rename temp to final location
	log.Printf("Swapping temp index into place...")
	swapStart := time.Now()

	// Remove old index directory (atomic operation will replace it)
	if err := os.RemoveAll(indexPath); err != nil && !os.IsNotExist(err) {
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to remove old index: %w", err)
	}

	// Rename temp to final location (atomic operation on POSIX)
	if err := os.Rename(tempIndexPath, indexPath); err != nil {
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to rename temp index: %w", err)
	}
	log.Printf("Index swapped in %v", time.Since(swapStart).Round(time.Millisecond))

	// Open the index from final location
	reopenStart := time.Now()
	finalIndex, err := bleve.Open(indexPath)
	if err != nil {
		return fmt.Errorf("failed to open new index: %w", err)
	}
	log.Printf("New index opened in %v", time.Since(reopenStart).Round(time.Millisecond))

	wrapped := wrapIndex(finalIndex)

	// ATOMIC SWAP: Replace the global index pointer
	oldIndexPtr := indexMgr.current.Swap(&wrapped)

	// Graceful cleanup of old index in background
	go func(oldPtr *Index) {
		if oldPtr == nil {
			return
		}

		log.Printf("Waiting for in-flight searches to complete before closing old index...")
		waitStart := time.Now()

		// Wait for all in-flight searches on old index to complete
		indexMgr.wg.Wait()

		log.Printf("All searches completed, closing old index (waited %v)...",
			time.Since(waitStart).Round(time.Millisecond))

		old := *oldPtr
		if err := old.Close(); err != nil {
			log.Printf("Warning: Error closing old index: %v", err)
		} else {
			log.Printf("✓ Old index closed successfully")
		}
	}(oldIndexPtr)

	elapsed := time.Since(startTime).Round(time.Millisecond)
	log.Printf("✓ Index swap completed in %v, searches now using new index", elapsed)

	// Write version file to mark this as current index version
	if err := writeIndexVersion(); err != nil {
		log.Printf("Warning: Failed to write index version: %v", err)
	}

	return nil
}

// rebuildAbstractIndex re-chunks the corpus and rebuilds the search index
func rebuildAbstractIndex(force bool, corpusPath string) error {
	startTime := time.Now()

	// A caller-supplied corpus always rebuilds; freshness tracking only
	// covers the managed corpus directory.
	if corpusPath != "" {
		force = true
	} else {
		corpusPath = filepath.Join(dataDir, corpusDir)
	}

	if !force && !needsRefresh() {
		log.Printf("Index is current, skipping rebuild")
		return nil
	}

	// Serialize rebuild operations (prevent concurrent rebuilds)
	indexMgr.refreshMu.Lock()
	defer indexMgr.refreshMu.Unlock()

	// Re-check after acquiring lock (double-checked locking pattern)
	// Another goroutine may have already rebuilt while we were waiting
	if !force && !needsRefresh() {
		log.Printf("Index was rebuilt by another goroutine, skipping")
		return nil
	}

	log.Printf("Starting index rebuild (force=%v, corpus=%s)...", force, corpusPath)

	// Acquire inter-process lock for re-indexing (will wait if another process has it)
	if err := acquireLock(); err != nil {
		return fmt.Errorf("failed to acquire lock for rebuild: %w", err)
	}
	// Note: Lock will be released by CloseSearch() when process exits

	// Chunk the corpus
	chunkStart := time.Now()
	chunks, err := chunkCorpus(corpusPath)
	if err != nil {
		return fmt.Errorf("chunking failed: %w", err)
	}
	generic := countGeneric(chunks)
	log.Printf("Chunked corpus: %d chunks (avg: %d tokens, %d generic)",
		len(chunks), averageTokens(chunks), generic)
	if generic == len(chunks) && len(chunks) > 0 {
		log.Printf("⚠️  Every chunk is GENERIC - no recognizable abstract structure, type filters will miss")
	}
	log.Printf("Chunking completed in %v", time.Since(chunkStart).Round(time.Millisecond))

	// Create search index (this closes and reopens the global index)
	if err := indexChunks(chunks); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	elapsed := time.Since(startTime).Round(time.Millisecond)
	log.Printf("✓ Index rebuild completed in %v", elapsed)

	return nil
}

// buildSearchQuery combines the free-text query with the optional chunk
// type and conference filters.
func buildSearchQuery(input SearchAbstractsInput) query.Query {
	match := bleve.NewMatchQuery(input.Query)

	var filters []query.Query
	if chunkType := strings.TrimSpace(input.ChunkType); chunkType != "" {
		tq := bleve.NewMatchQuery(chunkType)
		tq.SetField("chunk_type")
		filters = append(filters, tq)
	}
	if conference := strings.TrimSpace(input.Conference); conference != "" {
		cq := bleve.NewMatchQuery(conference)
		cq.SetField("metadata.conference")
		filters = append(filters, cq)
	}

	if len(filters) == 0 {
		return match
	}
	return bleve.NewConjunctionQuery(append([]query.Query{match}, filters...)...)
}

// SearchAbstracts searches the indexed abstract chunks
func SearchAbstracts(ctx context.Context, req *mcp.CallToolRequest, input SearchAbstractsInput) (*mcp.CallToolResult, SearchAbstractsOutput, error) {
	// Track in-flight searches for graceful cleanup (MUST be before Load)
	indexMgr.wg.Add(1)
	defer indexMgr.wg.Done()

	// Get current index atomically (lock-free read)
	indexPtr := indexMgr.current.Load()

	// If index not initialized, try to initialize it now
	if indexPtr == nil {
		log.Printf("Abstract index not initialized, initializing now...")
		if err := InitializeSearch(); err != nil {
			return nil, SearchAbstractsOutput{}, fmt.Errorf("failed to initialize abstract index: %w", err)
		}
		// Reload after initialization
		indexPtr = indexMgr.current.Load()
		if indexPtr == nil {
			return nil, SearchAbstractsOutput{}, fmt.Errorf("index still nil after initialization")
		}
	}

	// Dereference pointer to get actual index
	index := *indexPtr

	maxResults := input.MaxResults
	if maxResults <= 0 || maxResults > 20 {
		maxResults = 10
	}

	// Create search query
	search := bleve.NewSearchRequest(buildSearchQuery(input))
	search.Size = maxResults
	search.Fields = []string{"*"}

	// Execute search on current index
	searchResults, err := index.Search(search)
	if err != nil {
		return nil, SearchAbstractsOutput{}, fmt.Errorf("search failed: %w", err)
	}

	// Convert hits back to chunks
	results := make([]SearchResult, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		results = append(results, SearchResult{
			Chunk: indexing.ChunkFromHit(hit.ID, hit.Fields),
			Score: hit.Score,
		})
	}

	output := SearchAbstractsOutput{
		Results:   results,
		Query:     input.Query,
		TotalHits: int(searchResults.Total),
	}

	return nil, output, nil
}

// RefreshAbstractIndex re-chunks the corpus and rebuilds the search index
func RefreshAbstractIndex(ctx context.Context, req *mcp.CallToolRequest, input RefreshAbstractIndexInput) (*mcp.CallToolResult, RefreshAbstractIndexOutput, error) {
	output := RefreshAbstractIndexOutput{
		Updated: false,
	}

	// Report freshness without rebuilding when nothing changed
	if !input.Force && input.CorpusDir == "" && !needsRefresh() {
		versionPath := filepath.Join(dataDir, indexVersionFile)
		if info, err := os.Stat(versionPath); err == nil {
			output.LastUpdate = info.ModTime()
			output.Message = fmt.Sprintf("Index is current (last built: %s)", info.ModTime().Format(time.RFC3339))
			return nil, output, nil
		}
	}

	// Perform rebuild
	if err := rebuildAbstractIndex(input.Force, input.CorpusDir); err != nil {
		return nil, output, fmt.Errorf("rebuild failed: %w", err)
	}

	// Count chunks from current index
	indexPtr := indexMgr.current.Load()
	if indexPtr != nil {
		index := *indexPtr
		count, _ := index.DocCount()
		output.ChunksIndexed = int(count)
	}

	output.Updated = true
	output.LastUpdate = time.Now()
	output.Message = fmt.Sprintf("Abstract index rebuilt, %d chunks indexed", output.ChunksIndexed)

	return nil, output, nil
}

// RegisterSearchTools registers abstract search tools
func RegisterSearchTools(server *mcp.Server) error {
	// Initialize search synchronously
	if err := InitializeSearch(); err != nil {
		log.Printf("Warning: Abstract search initialization failed: %v", err)
		log.Printf("Abstract search will attempt to initialize on first use")
	}

	// Tool 7: search_abstracts
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "search_abstracts",
			Description: "Full-text search over chunked conference abstracts. Optional chunk type and conference filters narrow the results.",
		},
		SearchAbstracts,
	)

	// Tool 8: refresh_abstract_index
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "refresh_abstract_index",
			Description: "Re-chunk the abstract corpus and rebuild the search index (skipped automatically when no corpus file changed)",
		},
		RefreshAbstractIndex,
	)

	return nil
}

// CloseSearch closes the abstract search index and releases the lock
func CloseSearch() error {
	var closeErr error

	// Close index gracefully
	if indexMgr != nil {
		// Atomically swap index to nil (prevents new searches)
		indexPtr := indexMgr.current.Swap(nil)

		if indexPtr != nil {
			log.Printf("Waiting for in-flight searches to complete before closing...")

			// Wait for all in-flight searches to complete
			indexMgr.wg.Wait()

			// Now safe to close index
			index := *indexPtr
			closeErr = index.Close()
			if closeErr != nil {
				log.Printf("Error closing abstract index: %v", closeErr)
			} else {
				log.Printf("✓ Abstract index closed successfully")
			}
		}
	}

	// Always attempt to release inter-process lock, even if close failed
	if err := releaseLock(); err != nil {
		log.Printf("Error releasing lock: %v", err)
		if closeErr == nil {
			closeErr = err
		}
	}

	return closeErr
}
