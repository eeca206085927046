package pattern

import (
	"errors"
	"strings"
	"testing"

	"github.com/cognicore/formulary/pkg/formulary/corpus"
	"github.com/cognicore/formulary/pkg/formulary/internalerr"
)

func mustPattern(t *testing.T, labels ...string) Pattern {
	t.Helper()
	p, err := New(labels)
	if err != nil {
		t.Fatalf("Expected pattern, got error: %v", err)
	}
	return p
}

func testDoc(text string) corpus.Document {
	return corpus.Document{ID: "doc", Words: strings.Fields(text)}
}

func TestPatternAccessors(t *testing.T) {
	p := mustPattern(t, "A", "set", "of", "labels")
	if p.Len() != 4 {
		t.Errorf("Expected length 4, got %d", p.Len())
	}
	if p.Start() != "A" || p.End() != "labels" {
		t.Errorf("Expected boundary labels A/labels, got %s/%s", p.Start(), p.End())
	}
	if !p.Contains("set") {
		t.Error("Expected pattern to contain \"set\"")
	}
	if p.Contains("missing") {
		t.Error("Expected pattern to not contain \"missing\"")
	}
}

func TestPatternLabelsCopies(t *testing.T) {
	labels := []string{"a", "b"}
	p := mustPattern(t, labels...)
	labels[0] = "mutated"
	if p.Start() != "a" {
		t.Errorf("Expected pattern unaffected by input mutation, got %q", p.Start())
	}
	got := p.Labels()
	got[1] = "mutated"
	if p.End() != "b" {
		t.Errorf("Expected pattern unaffected by output mutation, got %q", p.End())
	}
}

func TestNewRejectsEmptyPattern(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestIndexDeduplicates(t *testing.T) {
	p := mustPattern(t, "is", "a")
	idx := NewIndex([]Pattern{p, mustPattern(t, "is", "a")})
	if idx.Len() != 1 {
		t.Errorf("Expected 1 indexed pattern, got %d", idx.Len())
	}
	if !idx.Contains(p) {
		t.Error("Expected index to contain the pattern")
	}
	if idx.Contains(mustPattern(t, "is", "a", "doc")) {
		t.Error("Expected index to not contain an unindexed pattern")
	}
}

func TestFindPattern(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		labels  []string
		matches int
	}{
		{"no match", "This is a sentence", []string{"is", "a", "doc"}, 0},
		{"single match", "This is a sentence", []string{"is", "a", "sentence"}, 1},
		{"repeated match", "There is a repetition is a repetition", []string{"is", "a", "repetition"}, 2},
		{"match at end boundary", "ends with is a", []string{"is", "a"}, 1},
		{"start found but pattern overruns", "ends with is", []string{"is", "a"}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := mustPattern(t, tc.labels...)
			doc := testDoc(tc.text)
			matches := FindPattern(doc, p)
			if len(matches) != tc.matches {
				t.Errorf("Expected %d matches, got %d", tc.matches, len(matches))
			}
			if got := InDoc(doc, p); got != (tc.matches > 0) {
				t.Errorf("Expected InDoc %v, got %v", tc.matches > 0, got)
			}
		})
	}
}

func TestFindPatternSpans(t *testing.T) {
	p := mustPattern(t, "is", "a", "repetition")
	matches := FindPattern(testDoc("There is a repetition is a repetition"), p)
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].WordStart != 1 || matches[0].WordEnd != 4 {
		t.Errorf("Expected first span [1,4), got [%d,%d)", matches[0].WordStart, matches[0].WordEnd)
	}
	if matches[1].WordStart != 4 || matches[1].WordEnd != 7 {
		t.Errorf("Expected second span [4,7), got [%d,%d)", matches[1].WordStart, matches[1].WordEnd)
	}
	if matches[0].DocID != "doc" {
		t.Errorf("Expected document id carried, got %q", matches[0].DocID)
	}
}

func TestIndexFindMatches(t *testing.T) {
	idx := NewIndex([]Pattern{
		mustPattern(t, "is", "a", "repetition"),
		mustPattern(t, "a", "repetition"),
		mustPattern(t, "never", "matches"),
	})
	matches := idx.FindMatches(testDoc("There is a repetition is a repetition"))
	if len(matches) != 4 {
		t.Fatalf("Expected 4 matches across patterns, got %d", len(matches))
	}
	for _, m := range matches {
		if m.Pattern.Start() == "never" {
			t.Errorf("Expected no match for the absent pattern, got %v", m)
		}
	}
}
