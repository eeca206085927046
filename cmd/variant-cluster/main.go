package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/cognicore/formulary/pkg/formulary/config"
	"github.com/cognicore/formulary/pkg/formulary/count"
	"github.com/cognicore/formulary/pkg/formulary/skipgram"
	"github.com/cognicore/formulary/pkg/formulary/variants"
)

type report struct {
	Terms         int               `json:"terms"`
	Clusters      int               `json:"clusters"`
	VariantOf     map[string]string `json:"variant_of"`
	DominantTerms []string          `json:"dominant_terms"`
}

func main() {
	var (
		input        = flag.String("input", "", "Path to filler frequencies: TSV (term <TAB> count) or JSON list (required)")
		configPath   = flag.String("config", "", "Optional: run configuration YAML, clustering section overrides the tuning flags")
		variantsPath = flag.String("known-variants", "", "Optional: known-variants YAML")
		topN         = flag.Int("top-n", 1000, "Similarity neighbors considered per term")
		threshold    = flag.Float64("threshold", 0.5, "Minimum combined similarity for accepting a variant")
		ngramLength  = flag.Int("ngram-length", 3, "Skip-gram character length")
		skipLength   = flag.Int("skip-length", 0, "Skip budget per skip-gram")
		minFrac      = flag.Float64("min-frac", 0.1, "Minimum aggregated share for a dominant term")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}

	freq, err := loadFrequencies(*input)
	if err != nil {
		log.Fatalf("load frequencies: %v", err)
	}

	clusterOpts := variants.ClusterOptions{
		TopN:          *topN,
		Threshold:     *threshold,
		KnownVariants: map[string]string{},
	}
	simOpts := skipgram.SimilarityOptions{
		NgramLength: *ngramLength,
		SkipLength:  *skipLength,
	}
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		loader := &config.Loader{Config: cfg, KnownVariantsPath: *variantsPath}
		clusterOpts, simOpts, err = loader.LoadClustering()
		if err != nil {
			log.Fatalf("load clustering config: %v", err)
		}
	} else if *variantsPath != "" {
		kv, err := config.LoadKnownVariants(*variantsPath)
		if err != nil {
			log.Fatalf("load known variants: %v", err)
		}
		clusterOpts.KnownVariants = kv.Variants
	}

	simOpts.Terms = freq.Keys()
	sim, err := skipgram.NewSimilarity(simOpts)
	if err != nil {
		log.Fatalf("build similarity index: %v", err)
	}

	variantOf, err := variants.MapWordVariants(sim, freq, clusterOpts)
	if err != nil {
		log.Fatalf("cluster variants: %v", err)
	}

	clusters := make(map[string]bool)
	for _, canon := range variantOf {
		clusters[canon] = true
	}

	rep := report{
		Terms:         freq.Len(),
		Clusters:      len(clusters),
		VariantOf:     variantOf,
		DominantTerms: variants.FindDominantTerms(freq, variantOf, *minFrac),
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatalf("marshal report: %v", err)
	}
	fmt.Println(string(out))
}

func loadFrequencies(path string) (*count.Counter[string], error) {
	if strings.HasSuffix(path, ".json") {
		return loadJSONFrequencies(path)
	}
	return loadTSVFrequencies(path)
}

// loadJSONFrequencies accepts either a list of terms, counting repeats, or a
// list of {"term": ..., "count": ...} objects.
func loadJSONFrequencies(path string) (*count.Counter[string], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	freq := count.New[string]()
	var terms []string
	if err := json.Unmarshal(data, &terms); err == nil {
		for _, term := range terms {
			freq.Inc(term)
		}
		return freq, nil
	}

	var entries []struct {
		Term  string `json:"term"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%s: expected a JSON list of terms or of {term, count} objects: %v", path, err)
	}
	for i, e := range entries {
		if e.Term == "" {
			return nil, fmt.Errorf("%s: entry %d has no term", path, i)
		}
		n := e.Count
		if n <= 0 {
			n = 1
		}
		freq.Add(e.Term, n)
	}
	return freq, nil
}

func loadTSVFrequencies(path string) (*count.Counter[string], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	freq := count.New[string]()
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		row := strings.TrimSpace(scanner.Text())
		if row == "" || strings.HasPrefix(row, "#") {
			continue
		}
		parts := strings.Split(row, "\t")
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: expected term<TAB>count, got %q", line, row)
		}
		n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad count %q", line, parts[1])
		}
		freq.Add(strings.TrimSpace(parts[0]), n)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return freq, nil
}
