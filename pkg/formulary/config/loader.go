package config

import (
	"fmt"

	"github.com/cognicore/formulary/pkg/formulary/corpus"
	"github.com/cognicore/formulary/pkg/formulary/internalerr"
	"github.com/cognicore/formulary/pkg/formulary/search"
	"github.com/cognicore/formulary/pkg/formulary/skipgram"
	"github.com/cognicore/formulary/pkg/formulary/variants"
)

// Loader turns a loaded Config into runnable components
type Loader struct {
	Config *Config
	// KnownVariantsPath optionally merges a standalone variants file into
	// the clustering options
	KnownVariantsPath string
}

// Components holds the constructed pieces of a detection run
type Components struct {
	Source         corpus.Source
	SearchOptions  search.Options
	ExtractOptions search.ExtractOptions
	ClusterOptions variants.ClusterOptions
	// SimilarityOptions carries the skip-gram settings for the clustering
	// step; Terms is left for the caller to fill from its frequencies
	SimilarityOptions skipgram.SimilarityOptions
	// CachePath is set when the corpus should be materialized into a
	// sqlite token cache before the passes run
	CachePath string
}

// Load validates the configuration and builds all components
func (l *Loader) Load() (*Components, error) {
	if l.Config == nil {
		return nil, fmt.Errorf("%w: no configuration given", internalerr.ErrInvalidConfig)
	}
	comp := &Components{}

	src, err := buildSource(l.Config.Corpus)
	if err != nil {
		return nil, fmt.Errorf("build corpus source: %w", err)
	}
	comp.Source = src
	comp.CachePath = l.Config.Corpus.CachePath

	s := l.Config.Search
	comp.SearchOptions = search.Options{
		MinTermFreq:         s.MinTermFreq,
		MinCoocFreq:         s.MinCoocFreq,
		SkipSize:            s.SkipSize,
		NgramSize:           s.NgramSize,
		MaxMinTermFrac:      s.MaxMinTermFrac,
		ContextSize:         s.ContextSize,
		MinNeighbourSupport: s.MinNeighbourSupport,
	}

	e := l.Config.Extract
	comp.ExtractOptions = search.ExtractOptions{
		Strategy:        search.Strategy(e.Strategy),
		MinPhraseLength: e.MinPhraseLength,
		MaxPhraseLength: e.MaxPhraseLength,
		MaxVariables:    e.MaxVariables,
		MaxSkips:        e.MaxSkips,
		MaxDocs:         e.MaxDocs,
		Workers:         e.Workers,
	}

	cluster, sim, err := l.LoadClustering()
	if err != nil {
		return nil, err
	}
	comp.ClusterOptions = cluster
	comp.SimilarityOptions = sim

	return comp, nil
}

// LoadClustering builds only the clustering components. Commands that work
// from precomputed frequencies instead of a corpus use this directly, so
// their configuration files need no corpus section.
func (l *Loader) LoadClustering() (variants.ClusterOptions, skipgram.SimilarityOptions, error) {
	if l.Config == nil {
		return variants.ClusterOptions{}, skipgram.SimilarityOptions{},
			fmt.Errorf("%w: no configuration given", internalerr.ErrInvalidConfig)
	}

	c := l.Config.Clustering
	cluster := variants.ClusterOptions{
		TopN:          c.TopN,
		Threshold:     c.Threshold,
		KnownVariants: map[string]string{},
	}
	for variant, canon := range c.KnownVariants {
		cluster.KnownVariants[variant] = canon
	}

	if l.KnownVariantsPath != "" {
		kv, err := LoadKnownVariants(l.KnownVariantsPath)
		if err != nil {
			return variants.ClusterOptions{}, skipgram.SimilarityOptions{},
				fmt.Errorf("load known variants: %w", err)
		}
		for variant, canon := range kv.Variants {
			if _, ok := cluster.KnownVariants[variant]; !ok {
				cluster.KnownVariants[variant] = canon
			}
		}
	}

	sim := skipgram.SimilarityOptions{
		NgramLength:   c.NgramLength,
		SkipLength:    c.SkipLength,
		MaxLengthDiff: c.MaxLengthDiff,
	}
	return cluster, sim, nil
}

func buildSource(c Corpus) (corpus.Source, error) {
	split, err := corpus.NewSplitter(c.WordPattern, c.Lowercase)
	if err != nil {
		return nil, fmt.Errorf("%w: bad word pattern %q: %v", internalerr.ErrInvalidConfig, c.WordPattern, err)
	}

	switch c.Format {
	case "tsv":
		if c.Path == "" {
			return nil, fmt.Errorf("%w: tsv corpus needs a path", internalerr.ErrInvalidConfig)
		}
		return &corpus.TSVSentences{Path: c.Path, Splitter: split, Boundaries: c.Boundaries}, nil
	case "jsonl":
		if c.Path == "" {
			return nil, fmt.Errorf("%w: jsonl corpus needs a path", internalerr.ErrInvalidConfig)
		}
		return &corpus.JSONLSource{Path: c.Path, Splitter: split}, nil
	case "html":
		paths := c.Paths
		if c.Path != "" {
			paths = append([]string{c.Path}, paths...)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("%w: html corpus needs at least one path", internalerr.ErrInvalidConfig)
		}
		return &corpus.HTMLSource{Paths: paths, Splitter: split}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported corpus format %q, must be tsv, jsonl or html",
			internalerr.ErrInvalidConfig, c.Format)
	}
}
