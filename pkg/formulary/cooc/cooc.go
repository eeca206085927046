// Package cooc counts ordered term-id tuples within a skip window across a
// corpus. Order matters and is preserved: count(a,b) and count(b,a) are
// independent entries.
package cooc

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/cognicore/formulary/pkg/formulary/corpus"
	"github.com/cognicore/formulary/pkg/formulary/count"
	"github.com/cognicore/formulary/pkg/formulary/internalerr"
	"github.com/cognicore/formulary/pkg/formulary/vocab"
)

// Options configures the skip window.
type Options struct {
	// NgramSize is the tuple width. Defaults to 2 (bigrams).
	NgramSize int
	// SkipSize is the number of extra look-ahead positions beyond adjacency.
	SkipSize int
}

func (o Options) withDefaults() Options {
	if o.NgramSize == 0 {
		o.NgramSize = 2
	}
	return o
}

func (o Options) validate() error {
	if o.NgramSize < 2 {
		return fmt.Errorf("%w: ngram size must be at least 2, got %d",
			internalerr.ErrInvalidConfig, o.NgramSize)
	}
	if o.SkipSize < 0 {
		return fmt.Errorf("%w: skip size must not be negative, got %d",
			internalerr.ErrInvalidConfig, o.SkipSize)
	}
	return nil
}

// SkipOffsets enumerates the tail-position choices of a skip window: all ways
// of picking ngramSize-1 ordered offsets in [1, ngramSize+skipSize-1]. The
// first window member is always offset 0 and is not part of the result.
func SkipOffsets(ngramSize, skipSize int) [][]int {
	combos := combin.Combinations(ngramSize+skipSize-1, ngramSize-1)
	for _, combo := range combos {
		for i := range combo {
			combo[i]++
		}
	}
	return combos
}

// Table holds co-occurrence counts keyed by ordered id tuples.
type Table struct {
	opts   Options
	combos [][]int
	counts *count.Counter[string]
}

// NewTable validates opts and returns an empty table.
func NewTable(opts Options) (*Table, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Table{
		opts:   opts,
		combos: SkipOffsets(opts.NgramSize, opts.SkipSize),
		counts: count.New[string](),
	}, nil
}

// Options returns the table's window configuration.
func (t *Table) Options() Options {
	return t.opts
}

// Count runs a full pass over src, counting every ordered id tuple whose
// members all resolve in v. Tuples with any out-of-vocabulary member are
// dropped. Bad documents are skipped.
func (t *Table) Count(src corpus.Source, v *vocab.Vocabulary) error {
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
		t.countDoc(doc.Words, v)
	}
}

func (t *Table) countDoc(words []string, v *vocab.Vocabulary) {
	ids := make([]int, len(words))
	for i, w := range words {
		ids[i] = v.ID(w)
	}

	tuple := make([]int, t.opts.NgramSize)
	for i := range ids {
		if ids[i] == vocab.NotFound {
			continue
		}
		tuple[0] = ids[i]
		for _, combo := range t.combos {
			ok := true
			for ci, off := range combo {
				j := i + off
				if j >= len(ids) || ids[j] == vocab.NotFound {
					ok = false
					break
				}
				tuple[ci+1] = ids[j]
			}
			if ok {
				t.counts.Inc(tupleKey(tuple))
			}
		}
	}
}

// Get returns the count for the ordered id tuple, 0 if unseen or if the
// tuple width does not match the configured n-gram size.
func (t *Table) Get(ids ...int) int {
	if len(ids) != t.opts.NgramSize {
		return 0
	}
	return t.counts.Get(tupleKey(ids))
}

// Len returns the number of distinct tuples counted.
func (t *Table) Len() int {
	return t.counts.Len()
}

// Entry is one counted tuple.
type Entry struct {
	IDs   []int
	Count int
}

// Entries returns all counted tuples sorted by descending count, frequency
// ties in first-seen order.
func (t *Table) Entries() []Entry {
	ranked := t.counts.MostCommon()
	entries := make([]Entry, len(ranked))
	for i, e := range ranked {
		entries[i] = Entry{IDs: parseTupleKey(e.Key), Count: e.Count}
	}
	return entries
}

func tupleKey(ids []int) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(strconv.Itoa(id))
	}
	return sb.String()
}

func parseTupleKey(key string) []int {
	parts := strings.Split(key, ":")
	ids := make([]int, len(parts))
	for i, p := range parts {
		ids[i], _ = strconv.Atoi(p)
	}
	return ids
}
