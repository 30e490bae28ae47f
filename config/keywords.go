package config

import "strings"

// OpportunityKeywords is the vocabulary of listing phrases that hint at a
// flip opportunity. Connectors match these against listing remarks at
// ingestion time.
var OpportunityKeywords = []string{
	"as-is", "fixer", "needs work", "handyman", "tlc", "potential", "opportunity",
	"estate sale", "foreclosure", "bank owned", "reo", "short sale", "distressed",
	"investor", "renovation", "remodel", "restore", "flip", "under market", "bargain",
	"motivated", "must sell", "bring offer", "priced to sell", "reduced",
}

// MatchOpportunityKeywords returns the vocabulary terms found in the given
// free text (case-insensitive substring match).
func MatchOpportunityKeywords(text string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, term := range OpportunityKeywords {
		if strings.Contains(lower, term) {
			matched = append(matched, term)
		}
	}
	return matched
}
