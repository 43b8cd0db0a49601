package advisor

import (
	"regexp"
	"strings"

	"github.com/avely-labs/formation-advisor/internal/domain"
)

// ParseFailedStructure is the sentinel recommended structure when the
// synthesis text carried no sections and no usable first line
const ParseFailedStructure = "Unable to parse recommendation"

// Section headers of the coordinator output template. Matching is
// case-insensitive; a section runs until the next "##" header or the end
// of the text.
var (
	structureRe     = sectionRe(`RECOMMENDED STRUCTURE`)
	benefitsRe      = sectionRe(`KEY BENEFITS`)
	tradeOffsRe     = sectionRe(`TRADE[\s-]?OFFS`)
	nextStepsRe     = sectionRe(`NEXT STEPS`)
	clarificationRe = sectionRe(`CLARIFICATION NEEDED`)

	bulletRe   = regexp.MustCompile(`^[-*]\s+`)
	numberedRe = regexp.MustCompile(`^\d+\.\s+`)
)

func sectionRe(header string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)##\s*` + header + `\s*\n?(.*?)(?:\n##|\z)`)
}

// Parse turns free-form synthesis text into a structured Recommendation.
// It never fails: missing sections default to empty lists, a missing
// structure section falls back to the first non-empty line, and a fully
// unparseable text yields the sentinel structure with Partial set.
func Parse(text string) domain.Recommendation {
	if q, ok := clarificationQuestion(text); ok {
		// List fields stay non-nil so they serialize as empty lists
		return domain.Recommendation{
			KeyBenefits:           []string{},
			TradeOffs:             []string{},
			NextSteps:             []string{},
			NeedsClarification:    true,
			ClarificationQuestion: q,
		}
	}

	rec := domain.Recommendation{
		KeyBenefits: extractList(text, benefitsRe),
		TradeOffs:   extractList(text, tradeOffsRe),
		NextSteps:   extractList(text, nextStepsRe),
		Conflicts:   DetectConflicts(text),
	}

	if m := structureRe.FindStringSubmatch(text); m != nil {
		rec.RecommendedStructure = strings.TrimSpace(m[1])
		return rec
	}

	// No structure section: degrade rather than fail
	rec.Partial = true
	if line := firstNonEmptyLine(text); line != "" {
		rec.RecommendedStructure = line
	} else {
		rec.RecommendedStructure = ParseFailedStructure
	}

	return rec
}

// clarificationQuestion reports whether the text is a clarification
// request. The fixed "## CLARIFICATION NEEDED" marker wins; the looser
// heuristic (the word "clarification" plus a question) covers synthesis
// output that asks without following the template.
func clarificationQuestion(text string) (string, bool) {
	if m := clarificationRe.FindStringSubmatch(text); m != nil {
		q := firstNonEmptyLine(m[1])
		if q == "" {
			q = firstQuestionLine(text)
		}
		if q != "" {
			return q, true
		}
	}

	if strings.Contains(strings.ToLower(text), "clarification") {
		if q := firstQuestionLine(text); q != "" {
			return q, true
		}
	}

	return "", false
}

// extractList splits the bullet or numbered lines of a section into an
// ordered slice. A missing section yields an empty list, not an error.
func extractList(text string, re *regexp.Regexp) []string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return []string{}
	}

	items := []string{}
	for _, line := range strings.Split(m[1], "\n") {
		line = strings.TrimSpace(line)
		switch {
		case bulletRe.MatchString(line):
			items = append(items, strings.TrimSpace(bulletRe.ReplaceAllString(line, "")))
		case numberedRe.MatchString(line):
			items = append(items, strings.TrimSpace(numberedRe.ReplaceAllString(line, "")))
		}
	}

	return items
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#*- "))
		if line != "" {
			return line
		}
	}
	return ""
}

func firstQuestionLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "?") {
			return strings.TrimSpace(strings.TrimLeft(line, "#*- "))
		}
	}
	return ""
}
