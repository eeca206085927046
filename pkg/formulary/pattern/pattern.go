// Package pattern matches fixed label sequences against token sequences,
// for checking documents against already-known formula patterns.
package pattern

import (
	"fmt"

	"github.com/cognicore/formulary/pkg/formulary/corpus"
	"github.com/cognicore/formulary/pkg/formulary/internalerr"
)

// Pattern is an immutable ordered label sequence.
type Pattern struct {
	labels []string
	key    string
}

// New creates a pattern. At least one label is required.
func New(labels []string) (Pattern, error) {
	if len(labels) == 0 {
		return Pattern{}, fmt.Errorf("%w: a pattern needs at least one label", internalerr.ErrInvalidConfig)
	}
	owned := make([]string, len(labels))
	copy(owned, labels)
	return Pattern{labels: owned, key: fmt.Sprintf("%q", owned)}, nil
}

// Labels returns the label sequence.
func (p Pattern) Labels() []string {
	labels := make([]string, len(p.labels))
	copy(labels, p.labels)
	return labels
}

// Len returns the number of labels.
func (p Pattern) Len() int {
	return len(p.labels)
}

// Start returns the first label.
func (p Pattern) Start() string {
	return p.labels[0]
}

// End returns the last label.
func (p Pattern) End() string {
	return p.labels[len(p.labels)-1]
}

// Contains reports whether label occurs anywhere in the pattern.
func (p Pattern) Contains(label string) bool {
	for _, l := range p.labels {
		if l == label {
			return true
		}
	}
	return false
}

// Match is one located pattern occurrence: the word span [WordStart,
// WordEnd) in the owning document.
type Match struct {
	Pattern   Pattern
	DocID     string
	WordStart int
	WordEnd   int
}

// Index holds a pattern set queryable by a document scan. Patterns are
// indexed by their start and end labels so a scan only verifies patterns
// whose boundary labels occur.
type Index struct {
	patterns map[string]Pattern
	byStart  map[string][]Pattern
	byEnd    map[string][]Pattern
}

// NewIndex creates an index over patterns. Duplicates are stored once.
func NewIndex(patterns []Pattern) *Index {
	idx := &Index{
		patterns: make(map[string]Pattern),
		byStart:  make(map[string][]Pattern),
		byEnd:    make(map[string][]Pattern),
	}
	idx.Add(patterns)
	return idx
}

// Add indexes further patterns, ignoring ones already present.
func (idx *Index) Add(patterns []Pattern) {
	for _, p := range patterns {
		if p.Len() == 0 {
			continue
		}
		if _, ok := idx.patterns[p.key]; ok {
			continue
		}
		idx.patterns[p.key] = p
		idx.byStart[p.Start()] = append(idx.byStart[p.Start()], p)
		idx.byEnd[p.End()] = append(idx.byEnd[p.End()], p)
	}
}

// Len returns the number of indexed patterns.
func (idx *Index) Len() int {
	return len(idx.patterns)
}

// Contains reports whether an identical pattern is indexed.
func (idx *Index) Contains(p Pattern) bool {
	_, ok := idx.patterns[p.key]
	return ok
}

// FindMatches scans doc for every occurrence of every indexed pattern.
// Matches come back in document order, patterns at the same start position
// in indexing order.
func (idx *Index) FindMatches(doc corpus.Document) []Match {
	var matches []Match
	for i, word := range doc.Words {
		for _, p := range idx.byStart[word] {
			end := i + p.Len()
			if end > len(doc.Words) {
				continue
			}
			if doc.Words[end-1] != p.End() {
				continue
			}
			if matchesAt(doc.Words[i:end], p) {
				matches = append(matches, Match{
					Pattern:   p,
					DocID:     doc.ID,
					WordStart: i,
					WordEnd:   end,
				})
			}
		}
	}
	return matches
}

// FindPattern scans doc for occurrences of one pattern.
func FindPattern(doc corpus.Document, p Pattern) []Match {
	var matches []Match
	for i, word := range doc.Words {
		if word != p.Start() {
			continue
		}
		end := i + p.Len()
		if end > len(doc.Words) {
			continue
		}
		if matchesAt(doc.Words[i:end], p) {
			matches = append(matches, Match{
				Pattern:   p,
				DocID:     doc.ID,
				WordStart: i,
				WordEnd:   end,
			})
		}
	}
	return matches
}

// InDoc reports whether p occurs anywhere in doc.
func InDoc(doc corpus.Document, p Pattern) bool {
	return len(FindPattern(doc, p)) > 0
}

func matchesAt(words []string, p Pattern) bool {
	for i, label := range p.labels {
		if words[i] != label {
			return false
		}
	}
	return true
}
