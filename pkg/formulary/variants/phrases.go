package variants

import (
	"github.com/cognicore/formulary/pkg/formulary/count"
	"github.com/cognicore/formulary/pkg/formulary/search"
)

// SlotFillers aggregates the filler words observed at each variable slot of
// one phrase template across matches, folded through the variant map onto
// canonical forms. The outer slice has one counter per variable position.
func SlotFillers(matches []search.PhraseMatch, variantOf map[string]string) []*count.Counter[string] {
	var slots []*count.Counter[string]
	for _, m := range matches {
		for i, filler := range m.VariableTerms {
			for len(slots) <= i {
				slots = append(slots, count.New[string]())
			}
			slots[i].Inc(Canonical(variantOf, filler))
		}
	}
	return slots
}

// ConstructDominantPhrases expands a phrase template into concrete phrases
// by substituting every combination of dominant fillers for its variable
// slots. dominant holds, per variable position, the qualifying canonical
// terms; a position with no dominant term keeps its placeholder. A phrase
// without variables comes back unchanged as the only result.
func ConstructDominantPhrases(phrase search.CandidatePhrase, dominant [][]string) []search.CandidatePhrase {
	results := [][]string{nil}
	slot := 0
	for _, term := range phrase.Terms() {
		choices := []string{term}
		if term == search.Var {
			if slot < len(dominant) && len(dominant[slot]) > 0 {
				choices = dominant[slot]
			}
			slot++
		}
		var next [][]string
		for _, prefix := range results {
			for _, choice := range choices {
				grown := make([]string, len(prefix), len(prefix)+1)
				copy(grown, prefix)
				next = append(next, append(grown, choice))
			}
		}
		results = next
	}

	phrases := make([]search.CandidatePhrase, len(results))
	for i, terms := range results {
		phrases[i] = search.NewCandidatePhrase(terms)
	}
	return phrases
}
