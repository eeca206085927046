// Package phrasectx counts the word windows surrounding known phrases
// across a corpus, the substrate for analyzing what tends to follow a
// formula.
package phrasectx

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cognicore/formulary/pkg/formulary/corpus"
	"github.com/cognicore/formulary/pkg/formulary/count"
	"github.com/cognicore/formulary/pkg/formulary/internalerr"
	"github.com/cognicore/formulary/pkg/formulary/variants"
)

// PhraseMap registers main phrases and their known string variants. Every
// registered form resolves to its main phrase; when a form is claimed
// twice, the earlier registration wins.
type PhraseMap struct {
	mains   []string
	mainOf  map[string]string
	lengths map[int]bool
}

// NewPhraseMap registers mains, each mapping to itself.
func NewPhraseMap(mains []string) *PhraseMap {
	m := &PhraseMap{
		mainOf:  make(map[string]string),
		lengths: make(map[int]bool),
	}
	for _, main := range mains {
		if _, ok := m.mainOf[main]; ok {
			continue
		}
		m.mains = append(m.mains, main)
		m.register(main, main)
	}
	return m
}

func (m *PhraseMap) register(form, main string) {
	m.mainOf[form] = main
	m.lengths[len(strings.Fields(form))] = true
}

// AddVariant registers a variant string form of main. The main phrase must
// already be registered; a form already claimed by another main is left
// with its earlier assignment.
func (m *PhraseMap) AddVariant(main, variant string) error {
	if owner, ok := m.mainOf[main]; !ok || owner != main {
		return fmt.Errorf("%w: %q is not a registered main phrase", internalerr.ErrNotFound, main)
	}
	if _, ok := m.mainOf[variant]; ok {
		return nil
	}
	m.register(variant, main)
	return nil
}

// Mains returns the registered main phrases in registration order.
func (m *PhraseMap) Mains() []string {
	mains := make([]string, len(m.mains))
	copy(mains, m.mains)
	return mains
}

// Main resolves a phrase form to its main phrase.
func (m *PhraseMap) Main(form string) (string, bool) {
	main, ok := m.mainOf[form]
	return main, ok
}

// Lengths returns the distinct token lengths of all registered forms,
// ascending.
func (m *PhraseMap) Lengths() []int {
	lengths := make([]int, 0, len(m.lengths))
	for l := range m.lengths {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)
	return lengths
}

// Contexts aggregates the occurrences of one main phrase: a raw count plus
// counters of the word windows immediately before and after each match.
type Contexts struct {
	Count int
	Pre   *count.Counter[string]
	Post  *count.Counter[string]
}

// Model scans documents for registered phrase forms and accumulates their
// surrounding context windows per main phrase.
type Model struct {
	phrases     *PhraseMap
	contextSize int
	byMain      map[string]*Contexts
}

// NewModel creates a context model. contextSize is the window width in
// words on each side; it defaults to 5.
func NewModel(phrases *PhraseMap, contextSize int) (*Model, error) {
	if contextSize < 0 {
		return nil, fmt.Errorf("%w: context size must not be negative", internalerr.ErrInvalidConfig)
	}
	if contextSize == 0 {
		contextSize = 5
	}
	return &Model{
		phrases:     phrases,
		contextSize: contextSize,
		byMain:      make(map[string]*Contexts),
	}, nil
}

// Count runs a full corpus pass. Bad documents are skipped; counts are
// associative, so document order does not affect the totals.
func (m *Model) Count(src corpus.Source) error {
	it, err := src.Docs()
	if err != nil {
		return err
	}
	for {
		doc, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if errors.Is(err, internalerr.ErrBadDocument) {
			continue
		}
		if err != nil {
			return err
		}
		m.CountDoc(doc.Words)
	}
}

// CountDoc scans one token sequence for exact matches of any registered
// form at every registered length, accumulating the preceding and following
// windows of each match.
func (m *Model) CountDoc(words []string) {
	lengths := m.phrases.Lengths()
	for i := range words {
		for _, l := range lengths {
			if l == 0 || i+l > len(words) {
				continue
			}
			form := strings.Join(words[i:i+l], " ")
			main, ok := m.phrases.Main(form)
			if !ok {
				continue
			}
			ctx := m.byMain[main]
			if ctx == nil {
				ctx = &Contexts{Pre: count.New[string](), Post: count.New[string]()}
				m.byMain[main] = ctx
			}
			ctx.Count++

			lo := i - m.contextSize
			if lo < 0 {
				lo = 0
			}
			// Matches at a document edge count an empty window, so
			// Pre and Post totals stay equal to Count.
			ctx.Pre.Inc(strings.Join(words[lo:i], " "))
			hi := i + l + m.contextSize
			if hi > len(words) {
				hi = len(words)
			}
			ctx.Post.Inc(strings.Join(words[i+l:hi], " "))
		}
	}
}

// Contexts returns the aggregated contexts for a main phrase.
func (m *Model) Contexts(main string) (*Contexts, bool) {
	ctx, ok := m.byMain[main]
	return ctx, ok
}

// PostTransitions returns the following-window counter of a main phrase
// with every window word folded through the variant map, merging windows
// that differ only in spelling variants.
func (m *Model) PostTransitions(main string, variantOf map[string]string) *count.Counter[string] {
	folded := count.New[string]()
	ctx, ok := m.byMain[main]
	if !ok {
		return folded
	}
	for _, entry := range ctx.Post.MostCommon() {
		window := strings.Fields(entry.Key)
		for i, w := range window {
			window[i] = variants.Canonical(variantOf, w)
		}
		folded.Add(strings.Join(window, " "), entry.Count)
	}
	return folded
}
