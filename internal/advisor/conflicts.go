package advisor

import (
	"regexp"
	"strings"

	"github.com/avely-labs/formation-advisor/internal/domain"
)

// The conflict detector structures what the synthesis already identified;
// it does not re-derive conflicts from the raw per-role analyses.

var (
	conflictsSectionRe = sectionRe(`CONFLICTS(?:\s+IDENTIFIED)?`)

	areaSplitRe   = regexp.MustCompile(`(?im)^\s*[-*]?\s*\*\*Area\*\*:[ \t]*`)
	descriptionRe = regexp.MustCompile(`(?is)\*\*Description\*\*:\s*(.+?)(?:\n\s*[-*]?\s*\*\*|\z)`)
	resolutionRe  = regexp.MustCompile(`(?is)\*\*Resolution\*\*:\s*(.+?)(?:\n\s*[-*]?\s*\*\*|\z)`)
)

// DetectConflicts extracts {area, description, resolution} triples from
// the conflicts section of a synthesis text. A triple missing both area
// and description is dropped; a missing resolution is kept empty, which
// is a valid state distinct from "no conflict".
func DetectConflicts(text string) []domain.ConflictDetail {
	m := conflictsSectionRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	section := strings.TrimSpace(m[1])
	if section == "" || strings.Contains(strings.ToLower(section), "no significant conflicts") {
		return nil
	}

	blocks := areaSplitRe.Split(section, -1)
	if len(blocks) < 2 {
		return nil
	}

	var conflicts []domain.ConflictDetail
	// First split element is any preamble before the first Area key
	for _, block := range blocks[1:] {
		detail := domain.ConflictDetail{
			Area:        strings.TrimSpace(strings.SplitN(block, "\n", 2)[0]),
			Description: submatch(descriptionRe, block),
			Resolution:  submatch(resolutionRe, block),
		}

		if detail.Area == "" && detail.Description == "" {
			continue
		}

		conflicts = append(conflicts, detail)
	}

	return conflicts
}

func submatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
