// Package search implements the formulaic-phrase detection engine: corpus
// frequency passes, the per-token selection filter and the two phrase
// extraction strategies operating on the selection mask.
package search

import (
	"fmt"
	"sync/atomic"

	"github.com/cognicore/formulary/pkg/formulary/cooc"
	"github.com/cognicore/formulary/pkg/formulary/corpus"
	"github.com/cognicore/formulary/pkg/formulary/internalerr"
	"github.com/cognicore/formulary/pkg/formulary/vocab"
)

// Options configures the engine's frequency passes and selection filter.
type Options struct {
	// MinTermFreq is the frequency threshold for the filtered vocabulary.
	// Defaults to 1.
	MinTermFreq int
	// SkipSize is the co-occurrence skip window. Defaults to 4.
	SkipSize int
	// NgramSize is the co-occurrence tuple width. Defaults to 2.
	NgramSize int
	// MinCoocFreq is the co-occurrence support threshold. When 0 the
	// co-occurrence pass is skipped and extraction is unavailable.
	MinCoocFreq int
	// MaxMinTermFrac is the fraction of the collection above which even the
	// rarest term of a phrase makes it too common to be interesting.
	// Defaults to 0.01.
	MaxMinTermFrac float64
	// ContextSize is how far the selection filter looks for supporting
	// neighbors, on each side. Defaults to SkipSize+1.
	ContextSize int
	// MinNeighbourSupport is the number of in-window neighbors whose
	// co-occurrence must meet MinCoocFreq for a token to be kept.
	// Defaults to 1.
	MinNeighbourSupport int
}

func (o Options) withDefaults() Options {
	if o.MinTermFreq == 0 {
		o.MinTermFreq = 1
	}
	if o.SkipSize == 0 {
		o.SkipSize = 4
	}
	if o.NgramSize == 0 {
		o.NgramSize = 2
	}
	if o.MaxMinTermFrac == 0 {
		o.MaxMinTermFrac = 0.01
	}
	if o.ContextSize == 0 {
		o.ContextSize = o.SkipSize + 1
	}
	if o.MinNeighbourSupport == 0 {
		o.MinNeighbourSupport = 1
	}
	return o
}

func (o Options) validate() error {
	if o.MinTermFreq < 1 {
		return fmt.Errorf("%w: min term frequency must be at least 1", internalerr.ErrInvalidConfig)
	}
	if o.SkipSize < 0 {
		return fmt.Errorf("%w: skip size must not be negative", internalerr.ErrInvalidConfig)
	}
	if o.MinCoocFreq < 0 {
		return fmt.Errorf("%w: min co-occurrence frequency must not be negative", internalerr.ErrInvalidConfig)
	}
	if o.MinCoocFreq > 0 && o.NgramSize != 2 {
		return fmt.Errorf("%w: the selection filter needs pairwise counts (ngram size 2), got %d",
			internalerr.ErrInvalidConfig, o.NgramSize)
	}
	if o.MaxMinTermFrac <= 0 {
		return fmt.Errorf("%w: max min term fraction must be positive", internalerr.ErrInvalidConfig)
	}
	if o.ContextSize < 1 {
		return fmt.Errorf("%w: context size must be at least 1", internalerr.ErrInvalidConfig)
	}
	return nil
}

// Engine holds the read-only frequency structures built by the corpus
// passes. Build it once per corpus configuration; extraction then traverses
// the source again without mutating any of them.
type Engine struct {
	src  corpus.Source
	opts Options

	fullVocab    *vocab.Vocabulary
	minFreqVocab *vocab.Vocabulary
	termFreq     *vocab.TermFreq
	coocFreq     *cooc.Table
	collSize     int

	// candidates dropped by the frequency-fraction gate, as a diagnostic;
	// atomic because extraction may fan out across worker goroutines
	filtered atomic.Int64
}

// New runs the term-frequency pass, builds the minimum-frequency vocabulary
// and, when MinCoocFreq is set, runs the co-occurrence pass. The source must
// support one fresh traversal per pass.
func New(src corpus.Source, opts Options) (*Engine, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	e := &Engine{src: src, opts: opts, fullVocab: vocab.New()}

	freq, err := vocab.CalculateTermFreq(src, e.fullVocab)
	if err != nil {
		return nil, err
	}
	e.termFreq = freq
	e.collSize = freq.Total()

	e.minFreqVocab, err = vocab.NewSelected(e.fullVocab, vocab.Selection{
		TermFreq: freq,
		MinFreq:  opts.MinTermFreq,
	})
	if err != nil {
		return nil, err
	}

	if opts.MinCoocFreq > 0 {
		if err := e.countCooccurrences(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) countCooccurrences() error {
	table, err := cooc.NewTable(cooc.Options{
		NgramSize: e.opts.NgramSize,
		SkipSize:  e.opts.SkipSize,
	})
	if err != nil {
		return err
	}
	if err := table.Count(e.src, e.minFreqVocab); err != nil {
		return err
	}
	e.coocFreq = table
	return nil
}

// Options returns the engine configuration after defaulting.
func (e *Engine) Options() Options {
	return e.opts
}

// FullVocab returns the vocabulary of every term seen in the corpus.
func (e *Engine) FullVocab() *vocab.Vocabulary {
	return e.fullVocab
}

// MinFreqVocab returns the frequency-filtered vocabulary. It shares ids with
// FullVocab.
func (e *Engine) MinFreqVocab() *vocab.Vocabulary {
	return e.minFreqVocab
}

// CoocFreq returns the co-occurrence table, nil when the pass was skipped.
func (e *Engine) CoocFreq() *cooc.Table {
	return e.coocFreq
}

// CollectionSize returns the corpus size in tokens.
func (e *Engine) CollectionSize() int {
	return e.collSize
}

// TermFrequency returns the corpus frequency of term, 0 for unknown terms.
func (e *Engine) TermFrequency(term string) int {
	id := e.fullVocab.ID(term)
	if id == vocab.NotFound {
		return 0
	}
	return e.termFreq.Get(id)
}

// FilteredCandidates returns how many candidate phrases the
// frequency-fraction gate dropped so far.
func (e *Engine) FilteredCandidates() int {
	return int(e.filtered.Load())
}

// minTermFrac returns the collection fraction of the rarest non-variable
// term of phrase, and whether the phrase had any non-variable term at all.
func (e *Engine) minTermFrac(phrase []string) (float64, bool) {
	found := false
	min := 0.0
	for _, term := range phrase {
		if term == "" {
			continue
		}
		frac := float64(e.TermFrequency(term)) / float64(e.collSize)
		if !found || frac < min {
			min = frac
			found = true
		}
	}
	return min, found
}

// passesFracGate applies the "phrase must not be too common" filter and
// keeps the diagnostic count of rejected candidates.
func (e *Engine) passesFracGate(phrase []string) bool {
	frac, ok := e.minTermFrac(phrase)
	if !ok {
		return false
	}
	if frac >= e.opts.MaxMinTermFrac {
		e.filtered.Add(1)
		return false
	}
	return true
}
