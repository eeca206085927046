// Package variants clusters spelling and lexical variants of filler words
// into canonical forms and selects the dominant fillers of a variable slot.
package variants

import (
	"fmt"

	"github.com/cognicore/formulary/pkg/formulary/count"
	"github.com/cognicore/formulary/pkg/formulary/internalerr"
	"github.com/cognicore/formulary/pkg/formulary/skipgram"
)

// Embedding is an optional external word-embedding resource. Similarity
// must return a score in [0,1]; it is only consulted for words Has reports
// as known.
type Embedding interface {
	Has(term string) bool
	Similarity(a, b string) float64
}

// ClusterOptions configures a variant clustering run.
type ClusterOptions struct {
	// TopN bounds how many similarity neighbors are considered per
	// canonical term. Defaults to 1000.
	TopN int
	// Threshold is the minimum combined score for accepting a neighbor as a
	// variant. Defaults to 0.5.
	Threshold float64
	// KnownVariants pre-seeds the variant map. These assignments are
	// honored first and never overridden.
	KnownVariants map[string]string
	// Embedding is consulted as an extra similarity signal when set.
	Embedding Embedding
}

func (o ClusterOptions) withDefaults() ClusterOptions {
	if o.TopN == 0 {
		o.TopN = 1000
	}
	if o.Threshold == 0 {
		o.Threshold = 0.5
	}
	return o
}

func (o ClusterOptions) validate() error {
	if o.TopN < 1 {
		return fmt.Errorf("%w: top n must be at least 1", internalerr.ErrInvalidConfig)
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be in [0,1]", internalerr.ErrInvalidConfig)
	}
	return nil
}

// MapWordVariants greedily clusters the words of termFreq into a variant map
// (variant term to canonical term). Words are processed most-frequent-first;
// a word already mapped as a variant, or already chosen as a canonical form,
// is skipped. Each remaining word becomes canonical and claims any unmapped
// similarity neighbor whose combined score meets the threshold. The combined
// score averages skip-gram cosine similarity, edit-based similarity and,
// when an embedding is supplied, embedding similarity with 0 substituted for
// unknown words.
//
// The single greedy pass is order dependent and not globally optimal; it is
// deterministic for a fixed counter and index.
func MapWordVariants(sim *skipgram.Similarity, termFreq *count.Counter[string],
	opts ClusterOptions) (map[string]string, error) {

	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	variantOf := make(map[string]string)
	canonical := make(map[string]bool)
	for variant, canon := range opts.KnownVariants {
		variantOf[variant] = canon
		canonical[canon] = true
	}

	for _, entry := range termFreq.MostCommon() {
		term := entry.Key
		if _, mapped := variantOf[term]; mapped {
			continue
		}
		if canonical[term] {
			continue
		}
		canonical[term] = true

		for _, ranked := range sim.RankSimilar(term, opts.TopN) {
			if _, mapped := variantOf[ranked.Term]; mapped {
				continue
			}
			if canonical[ranked.Term] {
				continue
			}
			if combinedScore(term, ranked, opts.Embedding) >= opts.Threshold {
				variantOf[ranked.Term] = term
			}
		}
	}
	return variantOf, nil
}

func combinedScore(term string, ranked skipgram.Ranked, emb Embedding) float64 {
	score := ranked.Score + VariantSimilarity(term, ranked.Term)
	n := 2.0
	if emb != nil {
		if emb.Has(term) && emb.Has(ranked.Term) {
			score += emb.Similarity(term, ranked.Term)
		}
		n = 3.0
	}
	return score / n
}

// Canonical resolves term through the variant map; a term absent from the
// map is its own canonical form.
func Canonical(variantOf map[string]string, term string) string {
	if canon, ok := variantOf[term]; ok {
		return canon
	}
	return term
}

// FindDominantTerms redistributes each variant's frequency onto its
// canonical form and returns every canonical term whose aggregated share of
// the total meets minFrac. A minFrac of 0 defaults to 0.1. Results come back
// most frequent first.
func FindDominantTerms(termFreq *count.Counter[string], variantOf map[string]string,
	minFrac float64) []string {

	if minFrac == 0 {
		minFrac = 0.1
	}
	total := termFreq.Total()
	if total == 0 {
		return nil
	}

	folded := count.New[string]()
	for _, entry := range termFreq.MostCommon() {
		folded.Add(Canonical(variantOf, entry.Key), entry.Count)
	}

	var dominant []string
	for _, entry := range folded.MostCommon() {
		if float64(entry.Count)/float64(total) >= minFrac {
			dominant = append(dominant, entry.Key)
		}
	}
	return dominant
}
