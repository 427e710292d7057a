package scrape

import "rfpwatch/internal/domain"

// keepOpportunity is the only filter: a record without a deadline is
// dropped. Duplicates are kept.
func keepOpportunity(op domain.Opportunity) bool {
	return op.Deadline != ""
}
