package search

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/cognicore/formulary/pkg/formulary/corpus"
	"github.com/cognicore/formulary/pkg/formulary/internalerr"
)

// Strategy selects a phrase-extraction algorithm.
type Strategy string

const (
	// SubPhrases slices runs into fixed-length phrases with controlled skips.
	SubPhrases Strategy = "sub_phrases"
	// LongPhrases emits whole runs with embedded variables as one phrase.
	LongPhrases Strategy = "long_phrases"
)

// ExtractOptions configures a phrase-extraction pass.
type ExtractOptions struct {
	Strategy Strategy
	// MinPhraseLength: sub-phrase runs must be strictly longer than this;
	// long phrases need at least this many non-variable tokens. Defaults to 3.
	MinPhraseLength int
	// MaxPhraseLength is the sub-phrase target length. Defaults to 5.
	MaxPhraseLength int
	// MaxVariables is how many variable tokens a run tolerates before it
	// breaks.
	MaxVariables int
	// MaxSkips widens the sub-phrase look-ahead beyond MaxPhraseLength.
	MaxSkips int
	// MaxDocs stops consuming the corpus after this many documents; 0 means
	// no limit.
	MaxDocs int
	// Workers fans ExtractAll out over this many goroutines. Results keep
	// corpus order regardless.
	Workers int
}

func (o ExtractOptions) withDefaults() ExtractOptions {
	if o.Strategy == "" {
		o.Strategy = LongPhrases
	}
	if o.MinPhraseLength == 0 {
		o.MinPhraseLength = 3
	}
	if o.MaxPhraseLength == 0 {
		o.MaxPhraseLength = 5
	}
	return o
}

func (o ExtractOptions) validate() error {
	if o.Strategy != SubPhrases && o.Strategy != LongPhrases {
		return fmt.Errorf("%w: invalid strategy %q, must be %q or %q",
			internalerr.ErrInvalidConfig, o.Strategy, SubPhrases, LongPhrases)
	}
	if o.MinPhraseLength < 1 {
		return fmt.Errorf("%w: min phrase length must be at least 1", internalerr.ErrInvalidConfig)
	}
	if o.MaxSkips < 0 || o.MaxVariables < 0 || o.MaxDocs < 0 {
		return fmt.Errorf("%w: max skips, variables and docs must not be negative",
			internalerr.ErrInvalidConfig)
	}
	return nil
}

// ExtractDoc runs the selection filter and the configured strategy on a
// single document.
func (e *Engine) ExtractDoc(doc corpus.Document, opts ExtractOptions) ([]PhraseMatch, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if e.coocFreq == nil {
		return nil, fmt.Errorf("%w: no co-occurrence pass ran, set MinCoocFreq",
			internalerr.ErrInvalidConfig)
	}
	return e.extractDoc(doc, opts), nil
}

func (e *Engine) extractDoc(doc corpus.Document, opts ExtractOptions) []PhraseMatch {
	selected := e.SelectTerms(doc)
	if opts.Strategy == SubPhrases {
		return e.extractSub(doc, selected, opts)
	}
	return e.extractLong(doc, selected, opts)
}

// extractLong accumulates runs of selected tokens, tolerating up to
// MaxVariables embedded variable positions, and emits each surviving run as
// one phrase with variables rendered as Var. A pending run is flushed at end
// of document.
func (e *Engine) extractLong(doc corpus.Document, selected []string, opts ExtractOptions) []PhraseMatch {
	var matches []PhraseMatch
	var run []string
	start, vars := 0, 0

	flush := func() {
		if len(run)-vars >= opts.MinPhraseLength && e.passesFracGate(run) {
			matches = append(matches, newPhraseMatch(
				NewCandidatePhrase(run), doc.ID, start, doc.Words, nil))
		}
		run, vars = nil, 0
	}

	for ti, term := range selected {
		if term == "" && vars == opts.MaxVariables {
			flush()
		}
		if term == "" && len(run) == 0 {
			continue
		}
		if len(run) == 0 {
			start = ti
		}
		if term == "" {
			vars++
		}
		run = append(run, term)
	}
	flush()
	return matches
}

// extractSub accumulates runs the same way, then slices every surviving run
// into all fixed-length sub-phrases obtainable with up to MaxSkips skipped
// positions. Runs of length exactly MinPhraseLength are excluded.
func (e *Engine) extractSub(doc corpus.Document, selected []string, opts ExtractOptions) []PhraseMatch {
	var matches []PhraseMatch
	var run []string
	start, vars := 0, 0

	flush := func() {
		if len(run) > opts.MinPhraseLength && e.passesFracGate(run) {
			matches = append(matches, e.subPhraseMatches(run, start, doc, opts)...)
		}
		run, vars = nil, 0
	}

	for ti, term := range selected {
		if term == "" && vars == opts.MaxVariables {
			flush()
			continue
		}
		if term == "" && len(run) == 0 {
			continue
		}
		if len(run) == 0 {
			start = ti
		}
		if term == "" {
			vars++
		}
		run = append(run, term)
	}
	flush()
	return matches
}

// subPhraseMatches generates every sub-phrase of width MaxPhraseLength from
// the run: the anchor token plus each combination of MaxPhraseLength-1 later
// positions within a MaxPhraseLength+MaxSkips look-ahead.
func (e *Engine) subPhraseMatches(run []string, runStart int, doc corpus.Document,
	opts ExtractOptions) []PhraseMatch {

	size := opts.MaxPhraseLength
	var matches []PhraseMatch
	for ti := 0; ti+size <= len(run); ti++ {
		tail := run[ti+1:]
		if len(tail) > size+opts.MaxSkips-1 {
			tail = tail[:size+opts.MaxSkips-1]
		}
		if len(tail) < size-1 {
			break
		}
		for _, combo := range combin.Combinations(len(tail), size-1) {
			phrase := make([]string, 0, size)
			fillers := make([]int, 0, size)
			phrase = append(phrase, run[ti])
			fillers = append(fillers, runStart+ti)
			for _, off := range combo {
				phrase = append(phrase, tail[off])
				fillers = append(fillers, runStart+ti+1+off)
			}
			matches = append(matches, newPhraseMatch(
				NewCandidatePhrase(phrase), doc.ID, runStart+ti, doc.Words, fillers))
		}
	}
	return matches
}

// MatchIterator streams phrase matches document by document. It is
// single-pass and not restartable.
type MatchIterator struct {
	engine   *Engine
	it       corpus.Iterator
	opts     ExtractOptions
	queue    []PhraseMatch
	consumed int
	done     bool
}

// Extract starts a streaming extraction pass over the engine's corpus.
func (e *Engine) Extract(opts ExtractOptions) (*MatchIterator, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if e.coocFreq == nil {
		return nil, fmt.Errorf("%w: no co-occurrence pass ran, set MinCoocFreq",
			internalerr.ErrInvalidConfig)
	}
	it, err := e.src.Docs()
	if err != nil {
		return nil, err
	}
	return &MatchIterator{engine: e, it: it, opts: opts}, nil
}

// Next returns the next match, io.EOF when the pass is finished. Bad
// documents are skipped.
func (mi *MatchIterator) Next() (PhraseMatch, error) {
	for len(mi.queue) == 0 {
		if mi.done {
			return PhraseMatch{}, io.EOF
		}
		if mi.opts.MaxDocs > 0 && mi.consumed >= mi.opts.MaxDocs {
			mi.done = true
			return PhraseMatch{}, io.EOF
		}
		doc, err := mi.it.Next()
		if err == io.EOF {
			mi.done = true
			return PhraseMatch{}, io.EOF
		}
		if errors.Is(err, internalerr.ErrBadDocument) {
			mi.consumed++
			continue
		}
		if err != nil {
			mi.done = true
			return PhraseMatch{}, err
		}
		mi.consumed++
		mi.queue = mi.engine.extractDoc(doc, mi.opts)
	}
	m := mi.queue[0]
	mi.queue = mi.queue[1:]
	return m, nil
}

// ExtractAll runs a full extraction pass and returns every match. With
// Workers > 1 documents are processed concurrently; matches still come back
// in corpus order.
func (e *Engine) ExtractAll(opts ExtractOptions) ([]PhraseMatch, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if e.coocFreq == nil {
		return nil, fmt.Errorf("%w: no co-occurrence pass ran, set MinCoocFreq",
			internalerr.ErrInvalidConfig)
	}
	if opts.Workers <= 1 {
		return e.extractAllSequential(opts)
	}
	return e.extractAllParallel(opts)
}

func (e *Engine) extractAllSequential(opts ExtractOptions) ([]PhraseMatch, error) {
	it, err := e.src.Docs()
	if err != nil {
		return nil, err
	}
	mi := &MatchIterator{engine: e, it: it, opts: opts}
	var matches []PhraseMatch
	for {
		m, err := mi.Next()
		if err == io.EOF {
			return matches, nil
		}
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
}

type indexedDoc struct {
	index int
	doc   corpus.Document
}

type indexedMatches struct {
	index   int
	matches []PhraseMatch
}

func (e *Engine) extractAllParallel(opts ExtractOptions) ([]PhraseMatch, error) {
	it, err := e.src.Docs()
	if err != nil {
		return nil, err
	}

	jobs := make(chan indexedDoc, opts.Workers)
	results := make(chan indexedMatches, opts.Workers)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- indexedMatches{
					index:   job.index,
					matches: e.extractDoc(job.doc, opts),
				}
			}
		}()
	}

	var feedErr error
	go func() {
		defer close(jobs)
		for index := 0; ; index++ {
			if opts.MaxDocs > 0 && index >= opts.MaxDocs {
				return
			}
			doc, err := it.Next()
			if err == io.EOF {
				return
			}
			if errors.Is(err, internalerr.ErrBadDocument) {
				continue
			}
			if err != nil {
				feedErr = err
				return
			}
			jobs <- indexedDoc{index: index, doc: doc}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var collected []indexedMatches
	for res := range results {
		if len(res.matches) > 0 {
			collected = append(collected, res)
		}
	}
	if feedErr != nil {
		return nil, feedErr
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].index < collected[j].index
	})
	var matches []PhraseMatch
	for _, res := range collected {
		matches = append(matches, res.matches...)
	}
	return matches, nil
}
