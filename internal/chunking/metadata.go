package chunking

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// A probe extracts one metadata field from abstract text. Probes for the
// same field are ordered; once a field is set, later probes for it are
// skipped, so precedence lives in the list order and nowhere else.
type probe struct {
	field string
	match func(text string) (any, bool)
}

var (
	abstractIDNumericRe = regexp.MustCompile(`(?m)Abstract ID:\s*(\d+)\s*$`)
	abstractIDAlphaRe   = regexp.MustCompile(`Abstract ID:\s*(\d+[A-Z])\b`)
	trialIDRe           = regexp.MustCompile(`\b(NCT\d{8})\b`)

	sponsorResearchRe      = regexp.MustCompile(`(?mi)\*\*Research Sponsor:\*{0,2}\s*(.+)$`)
	sponsorResearchPlainRe = regexp.MustCompile(`(?mi)Research Sponsor:\s*(.+)$`)
	sponsorLegalRe         = regexp.MustCompile(`(?mi)\*\*Legal entity responsible for the study:\*{0,2}\s*(.+)$`)
	sponsorFundingRe       = regexp.MustCompile(`(?mi)\*\*Funding:\*{0,2}\s*(.+)$`)
	sponsorLegalPlainRe    = regexp.MustCompile(`(?mi)Legal entity responsible for the study:\s*(.+)$`)
	sponsorFundingPlainRe  = regexp.MustCompile(`(?mi)Funding:\s*(.+)$`)
	sponsorBareRe          = regexp.MustCompile(`(?mi)\*\*Sponsor:\*{0,2}\s*(.+)$`)
	sponsorBarePlainRe     = regexp.MustCompile(`(?mi)Sponsor:\s*(.+)$`)

	titleRe = regexp.MustCompile(`(?mi)\*\*Title:\*{0,2}\s*(.+)$`)

	conferenceFileRe = regexp.MustCompile(`^([A-Z]{3,8})[_-](\d{4})\b`)
	yearFileRe       = regexp.MustCompile(`((?:19|20)\d{2})`)
)

// textProbes is the extraction order. The purely numeric abstract ID form is
// tried before the numeric-plus-suffix form some conferences use ("1076O").
// Sponsor labels run from most to least specific, bold forms ahead of the
// plain ones some files carry, with the bare Sponsor label as last resort.
var textProbes = []probe{
	{"abstract_id", capture(abstractIDNumericRe)},
	{"abstract_id", capture(abstractIDAlphaRe)},
	{"clinical_trial_id", capture(trialIDRe)},
	{"sponsor", captureSponsor(sponsorResearchRe)},
	{"sponsor", captureSponsor(sponsorResearchPlainRe)},
	{"sponsor", captureSponsor(sponsorLegalRe)},
	{"sponsor", captureSponsor(sponsorFundingRe)},
	{"sponsor", captureSponsor(sponsorLegalPlainRe)},
	{"sponsor", captureSponsor(sponsorFundingPlainRe)},
	{"sponsor", captureSponsor(sponsorBareRe)},
	{"sponsor", captureSponsor(sponsorBarePlainRe)},
	{"title", capture(titleRe)},
}

// ExtractMetadata runs the ordered probes over text and derives the
// filename-scoped fields (conference, year). A field whose probes all miss
// is absent from the result rather than empty; has_table is the exception
// and is always reported. Extraction never fails, it only finds less.
func ExtractMetadata(text, filename string) map[string]any {
	md := make(map[string]any, 8)
	for _, p := range textProbes {
		if _, done := md[p.field]; done {
			continue
		}
		if v, ok := p.match(text); ok {
			md[p.field] = v
		}
	}
	md["has_table"] = strings.Contains(text, "|") && strings.Contains(text, "---")

	if filename != "" {
		if conference, year, ok := parseFilename(filename); ok {
			if conference != "" {
				md["conference"] = conference
			}
			md["year"] = year
		}
	}
	return md
}

// parseFilename pulls the conference code and year out of names like
// "ASCO_2020.md". A bare four-digit year anywhere in the name is accepted
// when no recognizable conference prefix is present.
func parseFilename(filename string) (conference string, year int, ok bool) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if m := conferenceFileRe.FindStringSubmatch(base); m != nil {
		year, _ = strconv.Atoi(m[2])
		return m[1], year, true
	}
	if m := yearFileRe.FindStringSubmatch(base); m != nil {
		year, _ = strconv.Atoi(m[1])
		return "", year, true
	}
	return "", 0, false
}

func capture(re *regexp.Regexp) func(string) (any, bool) {
	return func(text string) (any, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return nil, false
		}
		v := strings.TrimSpace(m[1])
		v = strings.TrimSuffix(v, "**")
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, false
		}
		return v, true
	}
}

func captureSponsor(re *regexp.Regexp) func(string) (any, bool) {
	return func(text string) (any, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return nil, false
		}
		v := cleanSponsor(m[1])
		if v == "" {
			return nil, false
		}
		return v, true
	}
}

// cleanSponsor strips markdown that commonly runs into the sponsor line: a
// header glued on without a newline, leftover emphasis markers, and the
// trailing period conferences print after the sponsor name.
func cleanSponsor(s string) string {
	if i := strings.Index(s, "##"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "**")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	return strings.TrimSpace(s)
}
