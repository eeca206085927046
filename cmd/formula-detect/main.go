package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/formulary/pkg/formulary/config"
	"github.com/cognicore/formulary/pkg/formulary/cooc"
	"github.com/cognicore/formulary/pkg/formulary/corpus/cache"
	"github.com/cognicore/formulary/pkg/formulary/count"
	"github.com/cognicore/formulary/pkg/formulary/search"
)

type report struct {
	RunID              string       `json:"run_id"`
	CollectionSize     int          `json:"collection_size"`
	VocabularySize     int          `json:"vocabulary_size"`
	FilteredVocabSize  int          `json:"filtered_vocab_size"`
	FilteredCandidates int          `json:"filtered_candidates"`
	Phrases            []phraseJSON `json:"phrases"`
	TopPairs           []pairJSON   `json:"top_pairs"`
}

type phraseJSON struct {
	Phrase string   `json:"phrase"`
	Count  int      `json:"count"`
	Docs   []string `json:"docs,omitempty"`
}

type pairJSON struct {
	Terms []string `json:"terms"`
	Count int      `json:"count"`
	PMI   float64  `json:"pmi"`
	NPMI  float64  `json:"npmi"`
}

func main() {
	var (
		configPath   = flag.String("config", "", "Path to run configuration YAML (required)")
		variantsPath = flag.String("known-variants", "", "Optional: standalone known-variants YAML")
		topPhrases   = flag.Int("top-phrases", 50, "Maximum phrases in the report")
		topPairs     = flag.Int("top-pairs", 20, "Maximum co-occurrence pairs in the report")
		withDocs     = flag.Bool("with-docs", false, "Include per-phrase document ids")
	)
	flag.Parse()

	if *configPath == "" {
		log.Fatal("--config required")
	}

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	loader := config.Loader{Config: cfg, KnownVariantsPath: *variantsPath}
	components, err := loader.Load()
	if err != nil {
		log.Fatalf("build components: %v", err)
	}

	src := components.Source
	if components.CachePath != "" {
		cached, err := cache.Materialize(ctx, src, components.CachePath)
		if err != nil {
			log.Fatalf("materialize corpus cache: %v", err)
		}
		defer cached.Close()
		src = cached
	}

	engine, err := search.New(src, components.SearchOptions)
	if err != nil {
		log.Fatalf("build engine: %v", err)
	}

	matches, err := engine.ExtractAll(components.ExtractOptions)
	if err != nil {
		log.Fatalf("extract phrases: %v", err)
	}

	rep := report{
		RunID:             ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.Reader, 0)).String(),
		CollectionSize:    engine.CollectionSize(),
		VocabularySize:    engine.FullVocab().Len(),
		FilteredVocabSize: engine.MinFreqVocab().Len(),
	}
	rep.Phrases = aggregatePhrases(matches, *topPhrases, *withDocs)
	rep.TopPairs = topPairDiagnostics(engine, *topPairs)
	rep.FilteredCandidates = engine.FilteredCandidates()

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatalf("marshal report: %v", err)
	}
	fmt.Println(string(out))
}

func aggregatePhrases(matches []search.PhraseMatch, limit int, withDocs bool) []phraseJSON {
	counts := count.New[string]()
	docs := make(map[string][]string)
	seen := make(map[string]map[string]bool)
	for _, m := range matches {
		key := m.Phrase.String()
		counts.Inc(key)
		if !withDocs {
			continue
		}
		if seen[key] == nil {
			seen[key] = make(map[string]bool)
		}
		if !seen[key][m.DocID] {
			seen[key][m.DocID] = true
			docs[key] = append(docs[key], m.DocID)
		}
	}

	ranked := counts.MostCommon()
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]phraseJSON, 0, len(ranked))
	for _, entry := range ranked {
		out = append(out, phraseJSON{
			Phrase: entry.Key,
			Count:  entry.Count,
			Docs:   docs[entry.Key],
		})
	}
	return out
}

func topPairDiagnostics(engine *search.Engine, limit int) []pairJSON {
	table := engine.CoocFreq()
	if table == nil {
		return nil
	}
	calc := cooc.NewCalculator(1.0)

	entries := table.Entries()
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]pairJSON, 0, len(entries))
	for _, entry := range entries {
		terms := make([]string, len(entry.IDs))
		freqs := make([]int, len(entry.IDs))
		for i, id := range entry.IDs {
			term, ok := engine.FullVocab().Term(id)
			if !ok {
				continue
			}
			terms[i] = term
			freqs[i] = engine.TermFrequency(term)
		}
		pair := pairJSON{Terms: terms, Count: entry.Count}
		if len(entry.IDs) == 2 {
			pair.PMI = calc.PMI(entry.Count, freqs[0], freqs[1], engine.CollectionSize())
			pair.NPMI = calc.NPMI(entry.Count, freqs[0], freqs[1], engine.CollectionSize())
		}
		out = append(out, pair)
	}
	return out
}
