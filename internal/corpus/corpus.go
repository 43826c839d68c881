package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/oncoindex/abstracts-mcp-server/internal/chunking"
	"github.com/oncoindex/abstracts-mcp-server/internal/conference"
)

// Document is one abstract ready for chunking. A conference file usually
// carries many abstracts; SplitAbstracts assigns each a stable ID built
// from the file stem and the abstract's own identifier.
type Document struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Info summarizes a corpus: what is in it and how it should be chunked.
type Info struct {
	Path              string                 `json:"path,omitempty"`
	FileCount         int                    `json:"file_count"`
	DocumentCount     int                    `json:"document_count"`
	Conferences       []string               `json:"conferences,omitempty"`
	Years             []int                  `json:"years,omitempty"`
	WithTables        int                    `json:"with_tables"`
	WithTrialIDs      int                    `json:"with_trial_ids"`
	Structured        int                    `json:"structured"`
	Unstructured      int                    `json:"unstructured"`
	RecommendedConfig chunking.Configuration `json:"recommended_config"`
	Recommendations   []Recommendation       `json:"recommendations"`
}

// Recommendation explains one suggested chunking setting.
type Recommendation struct {
	Setting string `json:"setting"`
	Value   string `json:"value"`
	Reason  string `json:"reason"`
	Warning string `json:"warning,omitempty"`
}

var abstractBoundaryRe = regexp.MustCompile(`(?m)^###\s+Abstract ID:`)

// SplitAbstracts cuts one conference file into per-abstract documents at its
// "### Abstract ID:" headers. Front matter before the first header is
// dropped. A file without any abstract header comes back as one document
// carrying the file stem as its ID.
func SplitAbstracts(content, filename string) []Document {
	stem := FileStem(filename)

	locs := abstractBoundaryRe.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			return nil
		}
		return []Document{{ID: stem, Filename: filename, Content: trimmed}}
	}

	docs := make([]Document, 0, len(locs))
	for i, loc := range locs {
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		text := strings.TrimSpace(content[loc[0]:end])
		if text == "" {
			continue
		}

		id := fmt.Sprintf("%s_%d", stem, i)
		if md := chunking.ExtractMetadata(text, filename); md["abstract_id"] != nil {
			id = fmt.Sprintf("%s_%v", stem, md["abstract_id"])
		}
		docs = append(docs, Document{ID: id, Filename: filename, Content: text})
	}
	return docs
}

// FileStem returns the file name without directory or extension, the prefix
// used for document IDs.
func FileStem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ScanDir loads every markdown file directly under dir and splits it into
// documents. Subdirectories are not descended into.
func ScanDir(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		docs = append(docs, SplitAbstracts(string(data), entry.Name())...)
	}
	return docs, nil
}

// Inspect summarizes docs and derives a recommended chunking configuration
// from what they contain. It never fails: an empty corpus just yields the
// default configuration with no observations.
func Inspect(docs []Document, path string) *Info {
	info := &Info{
		Path:              path,
		DocumentCount:     len(docs),
		RecommendedConfig: chunking.DefaultConfiguration(),
	}

	files := make(map[string]struct{})
	conferences := make(map[string]struct{})
	years := make(map[int]struct{})

	for _, doc := range docs {
		files[doc.Filename] = struct{}{}

		md := chunking.ExtractMetadata(doc.Content, doc.Filename)
		if c, ok := md["conference"].(string); ok {
			conferences[c] = struct{}{}
		}
		if y, ok := md["year"].(int); ok {
			years[y] = struct{}{}
		}
		if md["has_table"] == true {
			info.WithTables++
		}
		if _, ok := md["clinical_trial_id"]; ok {
			info.WithTrialIDs++
		}

		if conference.HasRecognizableStructure(doc.Content) {
			info.Structured++
		} else {
			info.Unstructured++
		}
	}

	info.FileCount = len(files)
	for c := range conferences {
		info.Conferences = append(info.Conferences, c)
	}
	sort.Strings(info.Conferences)
	for y := range years {
		info.Years = append(info.Years, y)
	}
	sort.Ints(info.Years)

	if info.DocumentCount > 0 && info.Unstructured > info.Structured {
		info.RecommendedConfig.Strategy = chunking.StrategyRecursive
	}
	info.Recommendations = buildRecommendations(info)
	return info
}

// InspectDir scans dir and summarizes what it finds.
func InspectDir(dir string) (*Info, error) {
	docs, err := ScanDir(dir)
	if err != nil {
		return nil, err
	}
	return Inspect(docs, dir), nil
}

// buildRecommendations turns the corpus observations into an ordered list of
// explained settings.
func buildRecommendations(info *Info) []Recommendation {
	var recommendations []Recommendation
	if info.DocumentCount == 0 {
		return recommendations
	}

	if info.Unstructured > info.Structured {
		recommendations = append(recommendations, Recommendation{
			Setting: "strategy",
			Value:   string(chunking.StrategyRecursive),
			Reason:  fmt.Sprintf("%d of %d documents have no recognizable section structure", info.Unstructured, info.DocumentCount),
			Warning: "chunks from unstructured documents are typed GENERIC",
		})
	} else {
		recommendations = append(recommendations, Recommendation{
			Setting: "strategy",
			Value:   string(chunking.StrategyHybrid),
			Reason:  fmt.Sprintf("%d of %d documents carry section headers", info.Structured, info.DocumentCount),
		})
	}

	if info.WithTables > 0 {
		recommendations = append(recommendations, Recommendation{
			Setting: "preserve_tables",
			Value:   "true",
			Reason:  fmt.Sprintf("%d documents contain tables worth excising into dedicated TABLE chunks", info.WithTables),
		})
	}

	if info.WithTrialIDs > 0 {
		recommendations = append(recommendations, Recommendation{
			Setting: "include_headers",
			Value:   "true",
			Reason:  "trial identifiers and section headers improve retrieval filtering",
		})
	}
	return recommendations
}
