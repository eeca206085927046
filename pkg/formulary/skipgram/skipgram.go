// Package skipgram provides character-level skip-grams and a cosine
// similarity index over skip-gram count vectors, used to find spelling and
// morphological neighbors of word strings.
package skipgram

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/cognicore/formulary/pkg/formulary/count"
	"github.com/cognicore/formulary/pkg/formulary/internalerr"
)

// SkipGram is a character n-gram with gaps. Length is the span from the first
// to the last consumed character, inclusive of skipped positions.
type SkipGram struct {
	String string
	Offset int
	Length int
}

// Generate turns text into its skip-grams: at every character anchor, all
// ways of choosing the remaining ngramSize-1 characters within an
// ngramSize+skipSize window. Choices reaching past the end of the text are
// discarded.
func Generate(text string, ngramSize, skipSize int) ([]SkipGram, error) {
	if ngramSize <= 0 {
		return nil, fmt.Errorf("%w: ngram size must be positive, got %d",
			internalerr.ErrInvalidConfig, ngramSize)
	}
	if skipSize < 0 {
		return nil, fmt.Errorf("%w: skip size must not be negative, got %d",
			internalerr.ErrInvalidConfig, skipSize)
	}

	combos := tailIndexes(ngramSize, skipSize)
	runes := []rune(text)

	var grams []SkipGram
	for offset := 0; offset < len(runes)-1; offset++ {
		window := runes[offset:]
		if len(window) > ngramSize+skipSize {
			window = window[:ngramSize+skipSize]
		}
		for _, combo := range combos {
			gram := make([]rune, 0, ngramSize)
			gram = append(gram, window[0])
			ok := true
			for _, idx := range combo {
				if idx >= len(window) {
					ok = false
					break
				}
				gram = append(gram, window[idx])
			}
			if !ok {
				continue
			}
			length := 1
			if len(combo) > 0 {
				length = combo[len(combo)-1] + 1
			}
			grams = append(grams, SkipGram{
				String: string(gram),
				Offset: offset,
				Length: length,
			})
		}
	}
	return grams, nil
}

// Frequencies returns the skip-gram multiset of text as a counter.
func Frequencies(text string, ngramSize, skipSize int) (*count.Counter[string], error) {
	grams, err := Generate(text, ngramSize, skipSize)
	if err != nil {
		return nil, err
	}
	freq := count.New[string]()
	for _, g := range grams {
		freq.Inc(g.String)
	}
	return freq, nil
}

// VectorLength returns the Euclidean norm of a skip-gram frequency vector.
func VectorLength(freq *count.Counter[string]) float64 {
	var sum float64
	for _, key := range freq.Keys() {
		f := float64(freq.Get(key))
		sum += f * f
	}
	return math.Sqrt(sum)
}

// tailIndexes enumerates window-relative positions of the non-initial
// skip-gram characters: ngramSize-1 picks from [1, ngramSize+skipSize-1].
func tailIndexes(ngramSize, skipSize int) [][]int {
	if ngramSize == 1 {
		return [][]int{{}}
	}
	combos := combin.Combinations(ngramSize+skipSize-1, ngramSize-1)
	for _, combo := range combos {
		for i := range combo {
			combo[i]++
		}
	}
	return combos
}
