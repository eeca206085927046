package skipgram

import (
	"sort"
	"unicode/utf8"

	"github.com/cognicore/formulary/pkg/formulary/count"
	"github.com/cognicore/formulary/pkg/formulary/vocab"
)

// SimilarityOptions configures a Similarity index.
type SimilarityOptions struct {
	// NgramLength is the skip-gram character count. Defaults to 3.
	NgramLength int
	// SkipLength is the skip budget per skip-gram.
	SkipLength int
	// MaxLengthDiff bounds candidate comparisons to terms whose character
	// length is within this distance of the query's. Defaults to 2. This is a
	// pruning heuristic: spelling variants rarely differ greatly in length.
	MaxLengthDiff int
	// Terms to index immediately.
	Terms []string
}

// Similarity is a character skip-gram vector index over word strings,
// queryable for nearest neighbors by cosine similarity. The index is rebuilt,
// not incrementally updated, when the term set changes.
type Similarity struct {
	ngramLength   int
	skipLength    int
	maxLengthDiff int
	vocab         *vocab.Vocabulary
	vecLength     map[int]float64
	// skipgram -> term character length -> term id -> frequency
	index map[string]map[int]map[int]int
}

// NewSimilarity creates an index and indexes opts.Terms.
func NewSimilarity(opts SimilarityOptions) (*Similarity, error) {
	if opts.NgramLength == 0 {
		opts.NgramLength = 3
	}
	if opts.MaxLengthDiff == 0 {
		opts.MaxLengthDiff = 2
	}
	// surface bad sizes before any term is indexed
	if _, err := Generate("", opts.NgramLength, opts.SkipLength); err != nil {
		return nil, err
	}

	s := &Similarity{
		ngramLength:   opts.NgramLength,
		skipLength:    opts.SkipLength,
		maxLengthDiff: opts.MaxLengthDiff,
		vocab:         vocab.New(),
		vecLength:     make(map[int]float64),
		index:         make(map[string]map[int]map[int]int),
	}
	if opts.Terms != nil {
		s.IndexTerms(opts.Terms)
	}
	return s, nil
}

// Len returns the number of indexed terms.
func (s *Similarity) Len() int {
	return s.vocab.Len()
}

// IndexTerms resets the index and indexes terms.
func (s *Similarity) IndexTerms(terms []string) {
	s.vocab.Reset()
	s.vecLength = make(map[int]float64)
	s.index = make(map[string]map[int]map[int]int)
	for _, term := range terms {
		s.indexTerm(term)
	}
}

func (s *Similarity) indexTerm(term string) {
	if s.vocab.Contains(term) {
		return
	}
	id := s.vocab.Index(term)
	freq, _ := Frequencies(term, s.ngramLength, s.skipLength)
	s.vecLength[id] = VectorLength(freq)

	termLen := utf8.RuneCountInString(term)
	for _, gram := range freq.Keys() {
		byLen, ok := s.index[gram]
		if !ok {
			byLen = make(map[int]map[int]int)
			s.index[gram] = byLen
		}
		byID, ok := byLen[termLen]
		if !ok {
			byID = make(map[int]int)
			byLen[termLen] = byID
		}
		byID[id] = freq.Get(gram)
	}
}

// Ranked is one similarity result.
type Ranked struct {
	Term  string
	Score float64
}

// RankSimilar returns up to topN indexed terms most similar to term, sorted
// by descending cosine score over skip-gram count vectors. The query term
// itself is never included. Candidates are restricted to terms whose length
// is within MaxLengthDiff of the query's.
func (s *Similarity) RankSimilar(term string, topN int) []Ranked {
	freq, err := Frequencies(term, s.ngramLength, s.skipLength)
	if err != nil {
		return nil
	}
	queryNorm := s.termVectorLength(term, freq)
	if queryNorm == 0 {
		return nil
	}

	termLen := utf8.RuneCountInString(term)
	dot := make(map[int]float64)
	for _, gram := range freq.Keys() {
		byLen, ok := s.index[gram]
		if !ok {
			continue
		}
		queryFreq := float64(freq.Get(gram))
		for l := termLen - s.maxLengthDiff; l <= termLen+s.maxLengthDiff; l++ {
			for id, f := range byLen[l] {
				dot[id] += queryFreq * float64(f)
			}
		}
	}

	ids := make([]int, 0, len(dot))
	for id := range dot {
		candidate, _ := s.vocab.Term(id)
		if candidate == term {
			continue
		}
		dot[id] /= queryNorm * s.vecLength[id]
		ids = append(ids, id)
	}
	// ids are dense in indexing order, so sorting them first makes the
	// score-descending order stable across runs
	sort.Ints(ids)
	sort.SliceStable(ids, func(i, j int) bool {
		return dot[ids[i]] > dot[ids[j]]
	})
	if topN > 0 && len(ids) > topN {
		ids = ids[:topN]
	}

	ranked := make([]Ranked, len(ids))
	for i, id := range ids {
		t, _ := s.vocab.Term(id)
		ranked[i] = Ranked{Term: t, Score: dot[id]}
	}
	return ranked
}

func (s *Similarity) termVectorLength(term string, freq *count.Counter[string]) float64 {
	if id := s.vocab.ID(term); id != vocab.NotFound {
		return s.vecLength[id]
	}
	return VectorLength(freq)
}
