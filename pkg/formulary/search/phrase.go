package search

import "strings"

// Var is the placeholder marking a variable position in a phrase template.
const Var = "<VAR>"

// CandidatePhrase is a phrase template: an ordered term sequence where some
// positions hold the Var placeholder. It is a value object; list and string
// forms round-trip.
type CandidatePhrase struct {
	terms []string
}

// NewCandidatePhrase builds a phrase from terms. Empty strings become Var.
func NewCandidatePhrase(terms []string) CandidatePhrase {
	owned := make([]string, len(terms))
	for i, t := range terms {
		if t == "" {
			owned[i] = Var
		} else {
			owned[i] = t
		}
	}
	return CandidatePhrase{terms: owned}
}

// ParsePhrase builds a phrase from its space-joined string form.
func ParsePhrase(s string) CandidatePhrase {
	return NewCandidatePhrase(strings.Split(s, " "))
}

// Terms returns the phrase as a term list, Var placeholders included.
func (p CandidatePhrase) Terms() []string {
	terms := make([]string, len(p.terms))
	copy(terms, p.terms)
	return terms
}

// String returns the space-joined phrase form.
func (p CandidatePhrase) String() string {
	return strings.Join(p.terms, " ")
}

// Len returns the number of positions, variable ones included.
func (p CandidatePhrase) Len() int {
	return len(p.terms)
}

// Variables returns the number of Var positions.
func (p CandidatePhrase) Variables() int {
	n := 0
	for _, t := range p.terms {
		if t == Var {
			n++
		}
	}
	return n
}

// PhraseMatch is a located occurrence of a CandidatePhrase in a document.
// The word span is [WordStart, WordEnd) with WordEnd-WordStart == Phrase.Len.
// Char offsets are -1 when unknown. VariableTerms holds the literal filler
// word observed at each Var position, in order.
type PhraseMatch struct {
	Phrase        CandidatePhrase
	DocID         string
	WordStart     int
	WordEnd       int
	CharStart     int
	CharEnd       int
	VariableTerms []string
}

// newPhraseMatch locates phrase at wordStart in a document with the given
// words. fillers maps each phrase position to its source word offset within
// the document; nil means positions are contiguous from wordStart.
func newPhraseMatch(phrase CandidatePhrase, docID string, wordStart int,
	words []string, fillers []int) PhraseMatch {

	m := PhraseMatch{
		Phrase:    phrase,
		DocID:     docID,
		WordStart: wordStart,
		WordEnd:   wordStart + phrase.Len(),
		CharStart: -1,
		CharEnd:   -1,
	}
	for i, t := range phrase.terms {
		if t != Var {
			continue
		}
		pos := wordStart + i
		if fillers != nil {
			pos = fillers[i]
		}
		if pos >= 0 && pos < len(words) {
			m.VariableTerms = append(m.VariableTerms, words[pos])
		}
	}
	return m
}
