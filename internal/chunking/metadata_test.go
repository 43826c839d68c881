package chunking

import (
	"testing"
)

const sampleAbstract = `### Abstract ID: 10000

**Title:** Pembrolizumab versus ipilimumab in advanced melanoma: 5-year outcomes.

## Background

Pembrolizumab prolongs progression-free and overall survival in advanced melanoma.

## Methods

Patients enrolled in KEYNOTE-006 (NCT02362594) received pembrolizumab or ipilimumab.

**Clinical trial information:** NCT02362594.

**Research Sponsor:** Merck & Co., Inc.
`

func TestExtractMetadata(t *testing.T) {
	md := ExtractMetadata(sampleAbstract, "ASCO_2020.md")

	tests := []struct {
		field string
		want  any
	}{
		{"abstract_id", "10000"},
		{"clinical_trial_id", "NCT02362594"},
		{"sponsor", "Merck & Co., Inc"},
		{"title", "Pembrolizumab versus ipilimumab in advanced melanoma: 5-year outcomes."},
		{"has_table", false},
		{"conference", "ASCO"},
		{"year", 2020},
	}
	for _, tt := range tests {
		got, ok := md[tt.field]
		if !ok {
			t.Errorf("expected field %q to be present", tt.field)
			continue
		}
		if got != tt.want {
			t.Errorf("field %q: expected %v, got %v", tt.field, tt.want, got)
		}
	}
}

func TestExtractMetadataAbstractIDForms(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "numeric on its own line",
			text: "### Abstract ID: 10000\n\nSome text.",
			want: "10000",
		},
		{
			name: "numeric with letter suffix",
			text: "### Abstract ID: 1076O\n\nSome text.",
			want: "1076O",
		},
		{
			name: "numeric at end of document",
			text: "Abstract ID: 9513",
			want: "9513",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := ExtractMetadata(tt.text, "")
			got, ok := md["abstract_id"]
			if !ok {
				t.Fatal("expected abstract_id to be present")
			}
			if got != tt.want {
				t.Errorf("expected abstract_id %q, got %v", tt.want, got)
			}
		})
	}
}

func TestExtractMetadataSponsorVariants(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "research sponsor label",
			text: "**Research Sponsor:** Merck & Co., Inc.",
			want: "Merck & Co., Inc",
		},
		{
			name: "legal entity label",
			text: "**Legal entity responsible for the study:** F. Hoffmann-La Roche Ltd.",
			want: "F. Hoffmann-La Roche Ltd",
		},
		{
			name: "funding label",
			text: "**Funding:** Bristol Myers Squibb.",
			want: "Bristol Myers Squibb",
		},
		{
			name: "plain research sponsor label",
			text: "Research Sponsor: Merck Sharp & Dohme Corp.",
			want: "Merck Sharp & Dohme Corp",
		},
		{
			name: "plain funding label",
			text: "Funding: Bristol Myers Squibb.",
			want: "Bristol Myers Squibb",
		},
		{
			name: "bare sponsor label",
			text: "Sponsor: AstraZeneca.",
			want: "AstraZeneca",
		},
		{
			name: "research sponsor wins over funding",
			text: "**Funding:** None.\n\n**Research Sponsor:** Merck & Co., Inc.",
			want: "Merck & Co., Inc",
		},
		{
			name: "specific label wins over bare sponsor",
			text: "Sponsor: Acme Oncology.\n\n**Research Sponsor:** Merck & Co., Inc.",
			want: "Merck & Co., Inc",
		},
		{
			name: "header glued onto sponsor line",
			text: "**Research Sponsor:** Bristol Myers Squibb## Background",
			want: "Bristol Myers Squibb",
		},
		{
			name: "value inside the emphasis markers",
			text: "**Research Sponsor: Novartis.**",
			want: "Novartis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := ExtractMetadata(tt.text, "")
			got, ok := md["sponsor"]
			if !ok {
				t.Fatal("expected sponsor to be present")
			}
			if got != tt.want {
				t.Errorf("expected sponsor %q, got %v", tt.want, got)
			}
		})
	}
}

func TestExtractMetadataAbsentFields(t *testing.T) {
	md := ExtractMetadata("A paragraph with no recognizable structure at all.", "")

	for _, field := range []string{"abstract_id", "clinical_trial_id", "sponsor", "title", "year", "conference"} {
		if v, ok := md[field]; ok {
			t.Errorf("expected field %q to be absent, got %v", field, v)
		}
	}
	if hasTable, ok := md["has_table"]; !ok || hasTable != false {
		t.Errorf("expected has_table to be present and false, got %v", hasTable)
	}
}

func TestExtractMetadataTablePresence(t *testing.T) {
	text := "## Results\n\n| Arm | ORR |\n| --- | --- |\n| Pembrolizumab | 41% |\n"
	md := ExtractMetadata(text, "")
	if md["has_table"] != true {
		t.Errorf("expected has_table true, got %v", md["has_table"])
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name           string
		filename       string
		wantConference string
		wantYear       int
		wantOK         bool
	}{
		{name: "conference and year", filename: "ASCO_2020.md", wantConference: "ASCO", wantYear: 2020, wantOK: true},
		{name: "esmo", filename: "ESMO_2021.md", wantConference: "ESMO", wantYear: 2021, wantOK: true},
		{name: "full path", filename: "/data/corpus/ASCO_2023.md", wantConference: "ASCO", wantYear: 2023, wantOK: true},
		{name: "year only", filename: "abstracts_2019.md", wantYear: 2019, wantOK: true},
		{name: "no year", filename: "abstracts.md", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conference, year, ok := parseFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if conference != tt.wantConference {
				t.Errorf("expected conference %q, got %q", tt.wantConference, conference)
			}
			if year != tt.wantYear {
				t.Errorf("expected year %d, got %d", tt.wantYear, year)
			}
		})
	}
}

func TestCleanSponsor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trailing period", input: "Merck & Co., Inc.", want: "Merck & Co., Inc"},
		{name: "glued header", input: "Bristol Myers Squibb## Background", want: "Bristol Myers Squibb"},
		{name: "emphasis remnant", input: "Novartis.**", want: "Novartis"},
		{name: "surrounding whitespace", input: "  Roche  ", want: "Roche"},
		{name: "empty after cleanup", input: " . ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanSponsor(tt.input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "whitespace only", text: "  \n\t ", want: 0},
		{name: "simple", text: "overall survival was longer", want: 4},
		{name: "collapsed whitespace", text: "one\n\ntwo   three", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordCount(tt.text); got != tt.want {
				t.Errorf("expected %d words, got %d", tt.want, got)
			}
		})
	}
}
