package search

import (
	"github.com/cognicore/formulary/pkg/formulary/corpus"
	"github.com/cognicore/formulary/pkg/formulary/vocab"
)

// SelectTerms computes the selection mask for one document: a slice the same
// length as doc.Words where kept tokens carry their term and variable
// positions are empty strings.
//
// A token is kept only if it is in the minimum-frequency vocabulary, its own
// frequency meets MinCoocFreq, and at least MinNeighbourSupport neighbors
// within ContextSize positions support it: for a neighbor at j the lookup is
// count(term_j, term_i) when j < i and count(term_i, term_j) when j > i, the
// earlier position always first. The decision uses no cross-document state,
// so documents may be processed concurrently.
func (e *Engine) SelectTerms(doc corpus.Document) []string {
	words := doc.Words
	ids := make([]int, len(words))
	seq := make([]string, len(words))
	for i, w := range words {
		ids[i] = e.minFreqVocab.ID(w)
		if ids[i] != vocab.NotFound {
			seq[i] = w
		}
	}

	selected := make([]string, len(words))
	for i := range seq {
		if ids[i] == vocab.NotFound || e.termFreq.Get(ids[i]) < e.opts.MinCoocFreq {
			continue
		}

		support := 0
		lo := i - e.opts.ContextSize
		if lo < 0 {
			lo = 0
		}
		hi := i + e.opts.ContextSize
		if hi > len(seq)-1 {
			hi = len(seq) - 1
		}
		for j := lo; j <= hi; j++ {
			if j == i || seq[j] == "" {
				continue
			}
			var n int
			if j < i {
				n = e.coocFreq.Get(ids[j], ids[i])
			} else {
				n = e.coocFreq.Get(ids[i], ids[j])
			}
			if n >= e.opts.MinCoocFreq {
				support++
			}
		}
		if support >= e.opts.MinNeighbourSupport {
			selected[i] = seq[i]
		}
	}
	return selected
}
