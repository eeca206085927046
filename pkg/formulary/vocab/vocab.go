// Package vocab maintains the bidirectional term-to-id mapping underlying all
// frequency structures. Ids are assigned densely in insertion order and stay
// stable for the lifetime of a Vocabulary; selected sub-vocabularies reuse the
// parent's ids so counts keyed on them remain valid.
package vocab

import (
	"errors"
	"fmt"
	"io"

	"github.com/cognicore/formulary/pkg/formulary/corpus"
	"github.com/cognicore/formulary/pkg/formulary/count"
	"github.com/cognicore/formulary/pkg/formulary/internalerr"
)

// NotFound is the sentinel id returned for unknown terms.
const NotFound = -1

// Vocabulary maps terms to dense integer ids and back.
type Vocabulary struct {
	termID map[string]int
	idTerm map[int]string
	nextID int
}

// New creates an empty vocabulary.
func New() *Vocabulary {
	return &Vocabulary{
		termID: make(map[string]int),
		idTerm: make(map[int]string),
	}
}

// FromTerms creates a vocabulary pre-seeded with terms in order.
func FromTerms(terms []string) *Vocabulary {
	v := New()
	v.IndexAll(terms)
	return v
}

// Len returns the number of indexed terms.
func (v *Vocabulary) Len() int {
	return len(v.termID)
}

// Index assigns a new id to term if unseen and returns its id. Indexing an
// already-known term returns the existing id.
func (v *Vocabulary) Index(term string) int {
	if id, ok := v.termID[term]; ok {
		return id
	}
	id := v.nextID
	v.nextID++
	v.termID[term] = id
	v.idTerm[id] = term
	return id
}

// IndexAll indexes every term in order.
func (v *Vocabulary) IndexAll(terms []string) {
	for _, term := range terms {
		v.Index(term)
	}
}

// ID returns the id for term, or NotFound.
func (v *Vocabulary) ID(term string) int {
	if id, ok := v.termID[term]; ok {
		return id
	}
	return NotFound
}

// Term returns the term for id. ok is false for unassigned ids.
func (v *Vocabulary) Term(id int) (string, bool) {
	term, ok := v.idTerm[id]
	return term, ok
}

// Contains reports whether term is in the vocabulary.
func (v *Vocabulary) Contains(term string) bool {
	_, ok := v.termID[term]
	return ok
}

// Reset drops all term-id assignments.
func (v *Vocabulary) Reset() {
	v.termID = make(map[string]int)
	v.idTerm = make(map[int]string)
	v.nextID = 0
}

// TermFreq counts term occurrences by id with default-zero lookups.
type TermFreq = count.Counter[int]

// Selection picks the terms for a sub-vocabulary. Exactly one of Terms, IDs,
// or TermFreq must be set; TermFreq additionally requires MinFreq > 0.
type Selection struct {
	Terms    []string
	IDs      []int
	TermFreq *TermFreq
	MinFreq  int
}

// NewSelected builds a sub-vocabulary of full containing exactly the selected
// term-id pairs, preserving the parent's numeric ids. Selected terms or ids
// unknown to full are ignored. Terms indexed into the sub-vocabulary later
// get fresh ids above the parent's range, never one of the preserved ids.
func NewSelected(full *Vocabulary, sel Selection) (*Vocabulary, error) {
	modes := 0
	if sel.Terms != nil {
		modes++
	}
	if sel.IDs != nil {
		modes++
	}
	if sel.TermFreq != nil {
		modes++
	}
	if modes != 1 {
		return nil, fmt.Errorf("%w: exactly one of Terms, IDs or TermFreq must be set",
			internalerr.ErrInvalidConfig)
	}

	ids := sel.IDs
	switch {
	case sel.TermFreq != nil:
		if sel.MinFreq <= 0 {
			return nil, fmt.Errorf("%w: TermFreq selection requires MinFreq > 0",
				internalerr.ErrInvalidConfig)
		}
		for _, id := range sel.TermFreq.Keys() {
			if sel.TermFreq.Get(id) >= sel.MinFreq {
				ids = append(ids, id)
			}
		}
	case sel.Terms != nil:
		for _, term := range sel.Terms {
			if id := full.ID(term); id != NotFound {
				ids = append(ids, id)
			}
		}
	}

	selected := New()
	for _, id := range ids {
		term, ok := full.Term(id)
		if !ok {
			continue
		}
		selected.termID[term] = id
		selected.idTerm[id] = term
	}
	selected.nextID = full.nextID
	return selected, nil
}

// CalculateTermFreq runs one full pass over src, indexing every term into v
// and counting occurrences per id. Bad documents are skipped.
func CalculateTermFreq(src corpus.Source, v *Vocabulary) (*TermFreq, error) {
	it, err := src.Docs()
	if err != nil {
		return nil, err
	}
	freq := count.New[int]()
	for {
		doc, err := it.Next()
		if err == io.EOF {
			break
		}
		if errors.Is(err, internalerr.ErrBadDocument) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, term := range doc.Words {
			freq.Inc(v.Index(term))
		}
	}
	return freq, nil
}
