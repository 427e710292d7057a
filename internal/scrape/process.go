package scrape

import (
	"rfpwatch/internal/domain"
	"rfpwatch/internal/scrape/util"
)

// Normalize turns a fragment into an Opportunity. Fields the source
// supplied win; deadline and budget fall back to extraction from Text.
func Normalize(fr domain.RawFragment) domain.Opportunity {
	text := util.CleanText(fr.Text)

	deadline := util.NormalizeDeadline(fr.Deadline)
	if deadline == "" {
		deadline = util.ExtractDeadline(text)
	}
	budget := util.CleanText(fr.Budget)
	if budget == "" {
		budget = util.ExtractBudget(text)
	}

	return domain.Opportunity{
		Organization: util.CleanText(fr.Organization),
		Region:       util.CleanText(fr.Region),
		Sector:       util.CleanText(fr.Sector),
		Link:         util.CanonicalizeURL(fr.Link),
		Deadline:     deadline,
		Budget:       budget,
		Source:       fr.Source,
	}
}
