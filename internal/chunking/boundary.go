package chunking

import (
	"regexp"
	"strings"
)

// Section is a labeled span of a document produced by boundary detection.
// Header holds the raw markdown header line that opened the span. Table
// excision keeps it on the span's first piece, prose or table, so a span
// whose body is nothing but a table still carries its header; it is empty
// for spans opened by an inline label line.
type Section struct {
	Label   ChunkType
	Header  string
	Content string
}

var (
	headerLineRe    = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	clinicalLabelRe = regexp.MustCompile(`(?i)^\*\*Clinical trial information\s*:`)
	sponsorLabelRe  = regexp.MustCompile(`(?i)^\*\*(Research Sponsor|Legal entity responsible for the study|Funding)\s*:`)
)

// sectionSynonyms maps normalized header text onto section labels. Keys are
// lower-case with trailing ":" and "." stripped.
var sectionSynonyms = map[string]ChunkType{
	"background":            TypeBackground,
	"methods":               TypeMethods,
	"patients and methods":  TypeMethods,
	"materials and methods": TypeMethods,
	"results":               TypeResults,
	"conclusion":            TypeConclusions,
	"conclusions":           TypeConclusions,
	"trial design":          TypeTrialDesign,
}

// DetectSections splits markdown into labeled spans. Boundaries are markdown
// headers and the inline label lines conference abstracts use for sponsor
// and clinical-trial identifiers. Text containing no boundary at all becomes
// one GENERIC span. With preserveTables set, pipe tables are excised into
// their own TABLE spans and the prose around them keeps the enclosing span's
// label; a header always ends a table, never the other way around.
func DetectSections(text string, preserveTables bool) []Section {
	var sections []Section
	current := Section{Label: TypeGeneric}
	var buf []string

	flush := func() {
		current.Content = strings.TrimSpace(strings.Join(buf, "\n"))
		if current.Header != "" || current.Content != "" {
			sections = append(sections, current)
		}
		buf = buf[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := headerLineRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			current = Section{Label: classifyHeader(m[2]), Header: trimmed}
			continue
		}
		if clinicalLabelRe.MatchString(trimmed) {
			flush()
			current = Section{Label: TypeClinicalTrial}
			buf = append(buf, line)
			continue
		}
		if sponsorLabelRe.MatchString(trimmed) {
			flush()
			current = Section{Label: TypeSponsor}
			buf = append(buf, line)
			continue
		}
		buf = append(buf, line)
	}
	flush()

	if !preserveTables {
		return sections
	}
	var out []Section
	for _, sec := range sections {
		out = append(out, exciseTables(sec)...)
	}
	return out
}

// classifyHeader maps header text onto a section label. The abstract ID
// header is recognized by substring since conferences embed the ID in it;
// everything else goes through the synonym table or falls back to GENERIC.
func classifyHeader(text string) ChunkType {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.TrimRight(normalized, ":. ")
	if strings.Contains(normalized, "abstract id") {
		return TypeAbstractHeader
	}
	if label, ok := sectionSynonyms[normalized]; ok {
		return label
	}
	return TypeGeneric
}

// exciseTables cuts pipe tables out of a span. Prose on either side keeps
// the span's label, and the span's header line stays attached to the first
// piece cut from it, whether that piece is prose or a table. A span that is
// nothing but its header survives unchanged.
func exciseTables(sec Section) []Section {
	lines := strings.Split(sec.Content, "\n")
	var out []Section
	var prose []string
	header := sec.Header

	flushProse := func() {
		content := strings.TrimSpace(strings.Join(prose, "\n"))
		prose = prose[:0]
		if content == "" {
			return
		}
		out = append(out, Section{Label: sec.Label, Header: header, Content: content})
		header = ""
	}

	for i := 0; i < len(lines); {
		if end, ok := tableAt(lines, i); ok {
			flushProse()
			out = append(out, Section{
				Label:   TypeTable,
				Header:  header,
				Content: strings.TrimSpace(strings.Join(lines[i:end], "\n")),
			})
			header = ""
			i = end
			continue
		}
		prose = append(prose, lines[i])
		i++
	}
	flushProse()

	if len(out) == 0 {
		return []Section{sec}
	}
	return out
}

// tableAt reports whether a pipe table starts at line i and returns the
// index just past its last row. A table is at least two consecutive pipe
// rows whose second row is the dash separator.
func tableAt(lines []string, i int) (int, bool) {
	end := i
	for end < len(lines) && isPipeRow(lines[end]) {
		end++
	}
	if end-i < 2 {
		return 0, false
	}
	if !isSeparatorRow(lines[i+1]) {
		return 0, false
	}
	return end, true
}

func isPipeRow(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

func isSeparatorRow(line string) bool {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, "|") || !strings.Contains(t, "-") {
		return false
	}
	return strings.Trim(t, "|-: \t") == ""
}
