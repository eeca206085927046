// Package corpus defines the document source boundary of the engine.
//
// A Source produces ordered token sequences with stable identifiers. The
// detection passes traverse a source several times (term frequencies,
// co-occurrences, extraction), so a Source must hand out a fresh Iterator per
// Docs call. Sources backed by one-shot streams should be wrapped in the
// cache subpackage before being handed to the engine.
package corpus

import (
	"io"
	"strconv"
)

// Document is one unit of the corpus: an ordered word sequence plus its
// identifier. An empty word list is a valid document that contributes nothing.
type Document struct {
	ID    string
	Words []string
}

// Iterator yields documents one at a time. Next returns io.EOF when the
// source is exhausted. A non-EOF error wrapping internalerr.ErrBadDocument
// reports a single malformed record; callers may keep calling Next to skip it.
type Iterator interface {
	Next() (Document, error)
}

// Source is an iterable corpus. Every Docs call starts a fresh traversal.
type Source interface {
	Docs() (Iterator, error)
}

// SliceSource is an in-memory, restartable source. Documents without an ID
// get a positional fallback assigned at construction.
type SliceSource struct {
	docs []Document
}

// FromWords wraps plain word sequences, assigning positional IDs.
func FromWords(seqs [][]string) *SliceSource {
	docs := make([]Document, len(seqs))
	for i, words := range seqs {
		docs[i] = Document{ID: strconv.Itoa(i), Words: words}
	}
	return &SliceSource{docs: docs}
}

// FromDocuments wraps prepared documents, filling in positional IDs where
// missing.
func FromDocuments(docs []Document) *SliceSource {
	owned := make([]Document, len(docs))
	copy(owned, docs)
	for i := range owned {
		if owned[i].ID == "" {
			owned[i].ID = strconv.Itoa(i)
		}
	}
	return &SliceSource{docs: owned}
}

// Len returns the number of documents.
func (s *SliceSource) Len() int {
	return len(s.docs)
}

// Docs returns a fresh iterator over the slice.
func (s *SliceSource) Docs() (Iterator, error) {
	return &sliceIterator{docs: s.docs}, nil
}

type sliceIterator struct {
	docs []Document
	pos  int
}

func (it *sliceIterator) Next() (Document, error) {
	if it.pos >= len(it.docs) {
		return Document{}, io.EOF
	}
	doc := it.docs[it.pos]
	it.pos++
	return doc, nil
}
