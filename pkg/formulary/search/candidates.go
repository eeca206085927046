package search

import (
	"io"
)

// IndexCandidateDocs maps every extracted phrase to the set of document IDs
// it was found in. Matches come from a full extraction pass with the given
// options.
func (e *Engine) IndexCandidateDocs(opts ExtractOptions) (map[string][]string, error) {
	mi, err := e.Extract(opts)
	if err != nil {
		return nil, err
	}
	index := make(map[string][]string)
	seen := make(map[string]map[string]bool)
	for {
		m, err := mi.Next()
		if err == io.EOF {
			return index, nil
		}
		if err != nil {
			return nil, err
		}
		key := m.Phrase.String()
		if seen[key] == nil {
			seen[key] = make(map[string]bool)
		}
		if !seen[key][m.DocID] {
			seen[key][m.DocID] = true
			index[key] = append(index[key], m.DocID)
		}
	}
}

// ExtractCandidateVariables re-runs extraction and keeps only matches whose
// phrase is in the candidate set, exposing the concrete tokens behind each
// variable position.
func (e *Engine) ExtractCandidateVariables(candidates map[string][]string,
	opts ExtractOptions) ([]PhraseMatch, error) {

	mi, err := e.Extract(opts)
	if err != nil {
		return nil, err
	}
	var matches []PhraseMatch
	for {
		m, err := mi.Next()
		if err == io.EOF {
			return matches, nil
		}
		if err != nil {
			return nil, err
		}
		if _, ok := candidates[m.Phrase.String()]; ok {
			matches = append(matches, m)
		}
	}
}
