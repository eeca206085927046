// Package config loads detection-run configuration from YAML files and
// builds the corresponding corpus source and engine options.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level run configuration
type Config struct {
	Corpus     Corpus     `yaml:"corpus"`
	Search     Search     `yaml:"search"`
	Extract    Extract    `yaml:"extract"`
	Clustering Clustering `yaml:"clustering"`
}

// Corpus configures where tokens come from
type Corpus struct {
	// Format is one of "tsv", "jsonl" or "html"
	Format string `yaml:"format"`
	// Path is the corpus file; for html it may name several files
	Path  string   `yaml:"path"`
	Paths []string `yaml:"paths"`
	// WordPattern overrides the word-separator regexp
	WordPattern string `yaml:"word_pattern"`
	Lowercase   bool   `yaml:"lowercase"`
	// Boundaries adds paragraph boundary markers (tsv only)
	Boundaries bool `yaml:"boundaries"`
	// CachePath materializes the tokenized corpus into a sqlite file so
	// later passes reread tokens instead of reparsing the raw input
	CachePath string `yaml:"cache_path"`
}

// Search configures the frequency passes and the selection filter
type Search struct {
	MinTermFreq         int     `yaml:"min_term_freq"`
	MinCoocFreq         int     `yaml:"min_cooc_freq"`
	SkipSize            int     `yaml:"skip_size"`
	NgramSize           int     `yaml:"ngram_size"`
	MaxMinTermFrac      float64 `yaml:"max_min_term_frac"`
	ContextSize         int     `yaml:"context_size"`
	MinNeighbourSupport int     `yaml:"min_neighbour_support"`
}

// Extract configures the phrase-extraction pass
type Extract struct {
	Strategy        string `yaml:"strategy"`
	MinPhraseLength int    `yaml:"min_phrase_length"`
	MaxPhraseLength int    `yaml:"max_phrase_length"`
	MaxVariables    int    `yaml:"max_variables"`
	MaxSkips        int    `yaml:"max_skips"`
	MaxDocs         int    `yaml:"max_docs"`
	Workers         int    `yaml:"workers"`
}

// Clustering configures variant clustering of slot fillers
type Clustering struct {
	TopN          int     `yaml:"top_n"`
	Threshold     float64 `yaml:"threshold"`
	NgramLength   int     `yaml:"ngram_length"`
	SkipLength    int     `yaml:"skip_length"`
	MaxLengthDiff int     `yaml:"max_length_diff"`
	// KnownVariants maps variant spellings to their canonical form
	KnownVariants map[string]string `yaml:"known_variants"`
}

// Load reads a run configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// KnownVariants represents a standalone known-variants file
type KnownVariants struct {
	Variants map[string]string `yaml:"variants"`
}

// LoadKnownVariants loads a variant-to-canonical map from a YAML file
func LoadKnownVariants(path string) (*KnownVariants, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var kv KnownVariants
	if err := yaml.Unmarshal(data, &kv); err != nil {
		return nil, err
	}

	return &kv, nil
}
