package conference

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// CommonSectionHeaders is a curated list of section headers seen across
// conference abstract layouts. It gives a lightweight structure check
// without loading the full format catalog.
var CommonSectionHeaders = []string{
	"background",
	"methods",
	"patients and methods",
	"materials and methods",
	"results",
	"conclusions",
	"conclusion",
	"trial design",
}

// Format describes how one conference lays out its abstracts
type Format struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Conference      string   `json:"conference"`
	FilenamePrefix  string   `json:"filename_prefix"`
	SponsorLabel    string   `json:"sponsor_label"`
	AbstractIDStyle string   `json:"abstract_id_style"` // "numeric" or "alphanumeric"
	IDPattern       string   `json:"id_pattern"`        // regular expression matched against content
	SectionHeaders  []string `json:"section_headers"`
	Description     string   `json:"description"`
}

// Catalog is the complete format catalog
type Catalog struct {
	Formats     []Format `json:"formats"`
	Version     string   `json:"version"`
	LastUpdated string   `json:"last_updated"`
}

// LoadCatalog parses a serialized format catalog.
func LoadCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse format catalog: %w", err)
	}
	if len(catalog.Formats) == 0 {
		return Catalog{}, fmt.Errorf("format catalog contains no formats")
	}
	return catalog, nil
}

// FormatByID looks a format up by its identifier.
func (c Catalog) FormatByID(id string) (Format, bool) {
	for _, f := range c.Formats {
		if f.ID == id {
			return f, true
		}
	}
	return Format{}, false
}

// DefaultFormats covers the layouts the bundled corpus uses. The richer
// catalog with per-conference notes ships as data/formats/catalog.json;
// this is the fallback when that file cannot be loaded.
func DefaultFormats() []Format {
	return []Format{
		{
			ID:              "asco",
			Name:            "ASCO Annual Meeting",
			Conference:      "ASCO",
			FilenamePrefix:  "ASCO_",
			SponsorLabel:    "**Research Sponsor:**",
			AbstractIDStyle: "numeric",
			IDPattern:       `(?m)Abstract ID:\s*\d+\s*$`,
			SectionHeaders:  []string{"Background", "Methods", "Results", "Conclusions"},
			Description:     "Numeric abstract IDs with a Research Sponsor line",
		},
		{
			ID:              "esmo",
			Name:            "ESMO Congress",
			Conference:      "ESMO",
			FilenamePrefix:  "ESMO_",
			SponsorLabel:    "**Legal entity responsible for the study:**",
			AbstractIDStyle: "alphanumeric",
			IDPattern:       `Abstract ID:\s*\d+[A-Z]\b`,
			SectionHeaders:  []string{"Background", "Patients and Methods", "Results", "Conclusions"},
			Description:     "Alphanumeric abstract IDs (1076O) with a legal entity line",
		},
	}
}

// HasRecognizableStructure reports whether content carries any of the common
// section headers. It is a fast string check, not a full boundary scan.
func HasRecognizableStructure(content string) bool {
	lower := strings.ToLower(content)
	for _, header := range CommonSectionHeaders {
		if strings.Contains(lower, "# "+header) {
			return true
		}
	}
	return false
}

// FindHeadersInDocument extracts all markdown header texts from content,
// normalized to lower case with trailing punctuation stripped, deduplicated
// in order of first appearance.
func FindHeadersInDocument(content string) []string {
	seen := make(map[string]struct{})
	var headers []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		text := strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
		if text == "" {
			continue
		}
		normalized := strings.ToLower(strings.TrimRight(text, ":. "))
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		headers = append(headers, normalized)
	}
	return headers
}

// Score rates how well content and filename match this format. Filename
// prefix and identifier style weigh more than individual section headers.
func (f Format) Score(content, filename string) int {
	score := 0

	if f.FilenamePrefix != "" && filename != "" {
		base := strings.ToLower(filepath.Base(filename))
		if strings.HasPrefix(base, strings.ToLower(f.FilenamePrefix)) {
			score += 3
		}
	}
	if f.SponsorLabel != "" && strings.Contains(strings.ToLower(content), strings.ToLower(f.SponsorLabel)) {
		score += 2
	}
	if f.IDPattern != "" {
		if re, err := regexp.Compile(f.IDPattern); err == nil && re.MatchString(content) {
			score += 2
		}
	}

	if len(f.SectionHeaders) > 0 {
		found := make(map[string]struct{})
		for _, h := range FindHeadersInDocument(content) {
			found[h] = struct{}{}
		}
		for _, h := range f.SectionHeaders {
			if _, ok := found[strings.ToLower(h)]; ok {
				score++
			}
		}
	}
	return score
}

// DetectFormat scores content and filename against every format and returns
// the best match. ok is false when nothing matched at all, which usually
// means the document will chunk as GENERIC.
func DetectFormat(content, filename string, formats []Format) (Format, int, bool) {
	var best Format
	bestScore := 0
	for _, f := range formats {
		if s := f.Score(content, filename); s > bestScore {
			best = f
			bestScore = s
		}
	}
	return best, bestScore, bestScore > 0
}
