package variants

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cognicore/formulary/pkg/formulary/count"
	"github.com/cognicore/formulary/pkg/formulary/internalerr"
	"github.com/cognicore/formulary/pkg/formulary/skipgram"
)

func TestVariantSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "colour", "colour", 1},
		{"one edit", "colour", "color", 1 - 1.0/6.0},
		{"disjoint", "abc", "xyz", 0},
		{"both empty", "", "", 1},
		{"one empty", "abc", "", 0},
		{"multibyte runes", "schoß", "schos", 1 - 1.0/5.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := VariantSimilarity(tc.a, tc.b); got != tc.want {
				t.Errorf("Expected similarity %v, got %v", tc.want, got)
			}
			if got := VariantSimilarity(tc.b, tc.a); got != tc.want {
				t.Errorf("Expected symmetric similarity %v, got %v", tc.want, got)
			}
		})
	}
}

func fillerCounts(counts map[string]int, order []string) *count.Counter[string] {
	c := count.New[string]()
	for _, term := range order {
		c.Add(term, counts[term])
	}
	return c
}

func fillerIndex(t *testing.T, terms []string) *skipgram.Similarity {
	t.Helper()
	sim, err := skipgram.NewSimilarity(skipgram.SimilarityOptions{Terms: terms})
	if err != nil {
		t.Fatalf("Expected similarity index, got error: %v", err)
	}
	return sim
}

func TestMapWordVariantsClustersSpellings(t *testing.T) {
	terms := []string{"colour", "color", "table"}
	freq := fillerCounts(map[string]int{"colour": 10, "color": 4, "table": 3}, terms)
	sim := fillerIndex(t, terms)

	variantOf, err := MapWordVariants(sim, freq, ClusterOptions{})
	if err != nil {
		t.Fatalf("Expected variant map, got error: %v", err)
	}
	want := map[string]string{"color": "colour"}
	if !reflect.DeepEqual(variantOf, want) {
		t.Errorf("Expected %v, got %v", want, variantOf)
	}
	if Canonical(variantOf, "color") != "colour" {
		t.Errorf("Expected \"color\" to resolve to \"colour\", got %q", Canonical(variantOf, "color"))
	}
	if Canonical(variantOf, "table") != "table" {
		t.Errorf("Expected unmapped term to be its own canonical, got %q", Canonical(variantOf, "table"))
	}
}

func TestMapWordVariantsMostFrequentWins(t *testing.T) {
	// with "color" the more frequent spelling the cluster flips direction
	terms := []string{"colour", "color"}
	freq := fillerCounts(map[string]int{"colour": 2, "color": 9}, terms)
	sim := fillerIndex(t, terms)

	variantOf, err := MapWordVariants(sim, freq, ClusterOptions{})
	if err != nil {
		t.Fatalf("Expected variant map, got error: %v", err)
	}
	want := map[string]string{"colour": "color"}
	if !reflect.DeepEqual(variantOf, want) {
		t.Errorf("Expected %v, got %v", want, variantOf)
	}
}

func TestMapWordVariantsKnownVariantsNeverOverridden(t *testing.T) {
	terms := []string{"colour", "color", "table"}
	freq := fillerCounts(map[string]int{"colour": 10, "color": 4, "table": 3}, terms)
	sim := fillerIndex(t, terms)

	variantOf, err := MapWordVariants(sim, freq, ClusterOptions{
		KnownVariants: map[string]string{"color": "couleur"},
	})
	if err != nil {
		t.Fatalf("Expected variant map, got error: %v", err)
	}
	if variantOf["color"] != "couleur" {
		t.Errorf("Expected pre-seeded assignment kept, got %q", variantOf["color"])
	}
}

func TestMapWordVariantsIdempotent(t *testing.T) {
	terms := []string{"iohannes", "johannes", "iohanes", "petrus"}
	freq := fillerCounts(map[string]int{"iohannes": 12, "johannes": 6, "iohanes": 4, "petrus": 5}, terms)
	sim := fillerIndex(t, terms)

	first, err := MapWordVariants(sim, freq, ClusterOptions{})
	if err != nil {
		t.Fatalf("Expected variant map, got error: %v", err)
	}
	second, err := MapWordVariants(sim, freq, ClusterOptions{})
	if err != nil {
		t.Fatalf("Expected variant map, got error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical maps across runs, got %v and %v", first, second)
	}
}

type stubEmbedding struct {
	known map[string]bool
	score float64
}

func (s stubEmbedding) Has(term string) bool { return s.known[term] }

func (s stubEmbedding) Similarity(a, b string) float64 { return s.score }

func TestMapWordVariantsEmbeddingSignal(t *testing.T) {
	terms := []string{"colour", "color"}
	freq := fillerCounts(map[string]int{"colour": 10, "color": 4}, terms)

	// unknown words contribute 0, dragging the three-way average below the
	// threshold; known agreeing words lift it back up
	tests := []struct {
		name   string
		emb    Embedding
		mapped bool
	}{
		{"no embedding", nil, true},
		{"unknown words", stubEmbedding{}, false},
		{"agreeing embedding", stubEmbedding{known: map[string]bool{"colour": true, "color": true}, score: 1}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			variantOf, err := MapWordVariants(fillerIndex(t, terms), freq, ClusterOptions{Embedding: tc.emb})
			if err != nil {
				t.Fatalf("Expected variant map, got error: %v", err)
			}
			if _, ok := variantOf["color"]; ok != tc.mapped {
				t.Errorf("Expected mapped=%v, got %v", tc.mapped, variantOf)
			}
		})
	}
}

func TestClusterOptionsValidation(t *testing.T) {
	terms := []string{"a", "b"}
	freq := fillerCounts(map[string]int{"a": 1, "b": 1}, terms)
	tests := []struct {
		name string
		opts ClusterOptions
	}{
		{"negative top n", ClusterOptions{TopN: -1}},
		{"threshold above one", ClusterOptions{Threshold: 1.5}},
		{"negative threshold", ClusterOptions{Threshold: -0.1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := MapWordVariants(fillerIndex(t, terms), freq, tc.opts)
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestFindDominantTerms(t *testing.T) {
	variantOf := map[string]string{"color": "colour"}

	t.Run("both above threshold", func(t *testing.T) {
		freq := fillerCounts(map[string]int{"colour": 5, "color": 4, "table": 1},
			[]string{"colour", "color", "table"})
		got := FindDominantTerms(freq, variantOf, 0.1)
		if !reflect.DeepEqual(got, []string{"colour", "table"}) {
			t.Errorf("Expected [colour table], got %v", got)
		}
	})

	t.Run("small share drops out", func(t *testing.T) {
		freq := fillerCounts(map[string]int{"colour": 10, "color": 9, "table": 1},
			[]string{"colour", "color", "table"})
		got := FindDominantTerms(freq, variantOf, 0.1)
		if !reflect.DeepEqual(got, []string{"colour"}) {
			t.Errorf("Expected [colour], got %v", got)
		}
	})

	t.Run("empty counter", func(t *testing.T) {
		if got := FindDominantTerms(count.New[string](), nil, 0.1); got != nil {
			t.Errorf("Expected nil for an empty counter, got %v", got)
		}
	})
}
