package corpus_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oncoindex/abstracts-mcp-server/internal/chunking"
	"github.com/oncoindex/abstracts-mcp-server/internal/corpus"
)

const multiAbstractFile = `# ASCO 2020 Annual Meeting

Selected melanoma abstracts.

### Abstract ID: 10000

**Title:** Pembrolizumab versus ipilimumab in advanced melanoma.

## Background

Pembrolizumab prolongs survival in advanced melanoma.

## Results

Median overall survival was 32.7 months with pembrolizumab.

### Abstract ID: 10012

**Title:** Nivolumab plus ipilimumab in untreated melanoma.

## Background

Combination checkpoint inhibition improves outcomes.

## Results

| Arm | Median OS |
| --- | --- |
| Nivolumab plus ipilimumab | 72.1 mo |

Patients enrolled in CheckMate 067 (NCT01844505).
`

func TestSplitAbstracts(t *testing.T) {
	docs := corpus.SplitAbstracts(multiAbstractFile, "ASCO_2020.md")

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "ASCO_2020_10000" {
		t.Errorf("expected document id ASCO_2020_10000, got %q", docs[0].ID)
	}
	if docs[1].ID != "ASCO_2020_10012" {
		t.Errorf("expected document id ASCO_2020_10012, got %q", docs[1].ID)
	}
	for i, doc := range docs {
		if doc.Filename != "ASCO_2020.md" {
			t.Errorf("document %d: expected the source filename, got %q", i, doc.Filename)
		}
	}
	if got := docs[0].Content; !strings.Contains(got, "Pembrolizumab versus ipilimumab") {
		t.Errorf("first document lost its title: %q", got)
	}
	if strings.Contains(docs[0].Content, "Nivolumab") {
		t.Errorf("first document leaked into the second: %q", docs[0].Content)
	}
	if strings.Contains(docs[0].Content, "Selected melanoma abstracts") {
		t.Errorf("front matter leaked into the first document: %q", docs[0].Content)
	}
}

func TestSplitAbstractsWithoutHeaders(t *testing.T) {
	docs := corpus.SplitAbstracts("A single free-text report without abstract headers.", "notes_2019.md")

	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].ID != "notes_2019" {
		t.Errorf("expected the file stem as the document id, got %q", docs[0].ID)
	}
}

func TestSplitAbstractsEmpty(t *testing.T) {
	if docs := corpus.SplitAbstracts("   \n\n", "ASCO_2020.md"); docs != nil {
		t.Errorf("expected no documents for blank content, got %d", len(docs))
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ASCO_2020.md"), []byte(multiAbstractFile), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not part of the corpus"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	docs, err := corpus.ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents from the markdown file, got %d", len(docs))
	}
}

func TestScanDirMissing(t *testing.T) {
	if _, err := corpus.ScanDir(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestInspect(t *testing.T) {
	docs := corpus.SplitAbstracts(multiAbstractFile, "ASCO_2020.md")
	info := corpus.Inspect(docs, "corpus")

	if info.DocumentCount != 2 {
		t.Errorf("DocumentCount = %d, want 2", info.DocumentCount)
	}
	if info.FileCount != 1 {
		t.Errorf("FileCount = %d, want 1", info.FileCount)
	}
	if len(info.Conferences) != 1 || info.Conferences[0] != "ASCO" {
		t.Errorf("Conferences = %v, want [ASCO]", info.Conferences)
	}
	if len(info.Years) != 1 || info.Years[0] != 2020 {
		t.Errorf("Years = %v, want [2020]", info.Years)
	}
	if info.WithTables != 1 {
		t.Errorf("WithTables = %d, want 1", info.WithTables)
	}
	if info.WithTrialIDs != 1 {
		t.Errorf("WithTrialIDs = %d, want 1", info.WithTrialIDs)
	}
	if info.Structured != 2 {
		t.Errorf("Structured = %d, want 2", info.Structured)
	}
	if info.RecommendedConfig.Strategy != chunking.StrategyHybrid {
		t.Errorf("expected the hybrid strategy for a structured corpus, got %q", info.RecommendedConfig.Strategy)
	}
	if len(info.Recommendations) == 0 {
		t.Fatal("no recommendations provided")
	}
	for i, rec := range info.Recommendations {
		if rec.Setting == "" {
			t.Errorf("recommendation %d has no setting", i)
		}
		if rec.Reason == "" {
			t.Errorf("recommendation %d has no reason", i)
		}
	}
}

func TestInspectUnstructuredCorpus(t *testing.T) {
	docs := []corpus.Document{
		{ID: "notes_0", Filename: "notes.md", Content: "Free text without any headers."},
		{ID: "notes_1", Filename: "notes.md", Content: "More free text, still no headers."},
		{ID: "ASCO_2020_10000", Filename: "ASCO_2020.md", Content: "## Background\n\nStructured text."},
	}

	info := corpus.Inspect(docs, "")
	if info.Unstructured != 2 || info.Structured != 1 {
		t.Fatalf("expected 2 unstructured and 1 structured, got %d and %d", info.Unstructured, info.Structured)
	}
	if info.RecommendedConfig.Strategy != chunking.StrategyRecursive {
		t.Errorf("expected the recursive strategy for a mostly unstructured corpus, got %q", info.RecommendedConfig.Strategy)
	}

	var found bool
	for _, rec := range info.Recommendations {
		if rec.Setting == "strategy" && rec.Value == string(chunking.StrategyRecursive) {
			found = true
			if rec.Warning == "" {
				t.Error("expected the strategy recommendation to carry a warning")
			}
		}
	}
	if !found {
		t.Error("expected a strategy recommendation")
	}
}

func TestInspectEmptyCorpus(t *testing.T) {
	info := corpus.Inspect(nil, "")
	if info.DocumentCount != 0 {
		t.Errorf("DocumentCount = %d, want 0", info.DocumentCount)
	}
	if info.RecommendedConfig != chunking.DefaultConfiguration() {
		t.Errorf("expected the default configuration, got %+v", info.RecommendedConfig)
	}
	if len(info.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %d", len(info.Recommendations))
	}
}

func TestFileStem(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "plain file", filename: "ASCO_2020.md", want: "ASCO_2020"},
		{name: "full path", filename: "/data/corpus/ESMO_2021.md", want: "ESMO_2021"},
		{name: "no extension", filename: "notes", want: "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := corpus.FileStem(tt.filename); got != tt.want {
				t.Errorf("FileStem(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}
