package phrasectx

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/formulary/pkg/formulary/corpus"
	"github.com/cognicore/formulary/pkg/formulary/internalerr"
)

func TestPhraseMapResolvesVariants(t *testing.T) {
	m := NewPhraseMap([]string{"in nomine domini", "anno domini"})

	if err := m.AddVariant("in nomine domini", "in nomine dei"); err != nil {
		t.Fatalf("Expected variant registered, got error: %v", err)
	}
	main, ok := m.Main("in nomine dei")
	if !ok || main != "in nomine domini" {
		t.Errorf("Expected variant to resolve to its main phrase, got %q (%v)", main, ok)
	}
	main, ok = m.Main("anno domini")
	if !ok || main != "anno domini" {
		t.Errorf("Expected main phrase to resolve to itself, got %q (%v)", main, ok)
	}
	if _, ok := m.Main("unregistered phrase"); ok {
		t.Error("Expected unregistered form to not resolve")
	}
}

func TestPhraseMapEarlierMainWins(t *testing.T) {
	m := NewPhraseMap([]string{"first phrase", "second phrase"})
	if err := m.AddVariant("first phrase", "shared form"); err != nil {
		t.Fatalf("Expected variant registered, got error: %v", err)
	}
	if err := m.AddVariant("second phrase", "shared form"); err != nil {
		t.Fatalf("Expected no error re-registering a claimed form, got %v", err)
	}
	main, _ := m.Main("shared form")
	if main != "first phrase" {
		t.Errorf("Expected the earlier registration to win, got %q", main)
	}
}

func TestPhraseMapUnknownMain(t *testing.T) {
	m := NewPhraseMap([]string{"first phrase"})
	err := m.AddVariant("unknown phrase", "some variant")
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPhraseMapLengths(t *testing.T) {
	m := NewPhraseMap([]string{"in nomine domini", "anno domini", "amen"})
	if got := m.Lengths(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("Expected lengths [1 2 3], got %v", got)
	}
}

func TestCountDocAccumulatesContexts(t *testing.T) {
	m := NewPhraseMap([]string{"in nomine domini"})
	model, err := NewModel(m, 2)
	if err != nil {
		t.Fatalf("Expected model, got error: %v", err)
	}

	model.CountDoc(strings.Fields("ego petrus in nomine domini amen scripsi"))
	model.CountDoc(strings.Fields("in nomine domini amen"))

	ctx, ok := model.Contexts("in nomine domini")
	if !ok {
		t.Fatal("Expected contexts for the registered phrase")
	}
	if ctx.Count != 2 {
		t.Errorf("Expected 2 occurrences, got %d", ctx.Count)
	}
	if got := ctx.Pre.Get("ego petrus"); got != 1 {
		t.Errorf("Expected preceding window \"ego petrus\" once, got %d", got)
	}
	if ctx.Pre.Total() != 2 {
		t.Errorf("Expected a preceding window per occurrence, got total %d", ctx.Pre.Total())
	}
	if got := ctx.Post.Get("amen scripsi"); got != 1 {
		t.Errorf("Expected following window \"amen scripsi\" once, got %d", got)
	}
	if got := ctx.Post.Get("amen"); got != 1 {
		t.Errorf("Expected clipped following window \"amen\" once, got %d", got)
	}
}

func TestCountDocCountsEmptyEdgeWindows(t *testing.T) {
	m := NewPhraseMap([]string{"bona fide"})
	model, err := NewModel(m, 2)
	if err != nil {
		t.Fatalf("Expected model, got error: %v", err)
	}

	model.CountDoc(strings.Fields("bona fide throughout"))
	model.CountDoc(strings.Fields("acting bona fide"))

	ctx, ok := model.Contexts("bona fide")
	if !ok {
		t.Fatal("Expected contexts for the registered phrase")
	}
	if got := ctx.Pre.Get(""); got != 1 {
		t.Errorf("Expected an empty preceding window at document start, got %d", got)
	}
	if got := ctx.Post.Get(""); got != 1 {
		t.Errorf("Expected an empty following window at document end, got %d", got)
	}
	if ctx.Pre.Total() != ctx.Count || ctx.Post.Total() != ctx.Count {
		t.Errorf("Expected window totals to match the occurrence count %d, got pre %d post %d",
			ctx.Count, ctx.Pre.Total(), ctx.Post.Total())
	}
}

func TestCountDocMatchesVariantsUnderMain(t *testing.T) {
	m := NewPhraseMap([]string{"in nomine domini"})
	if err := m.AddVariant("in nomine domini", "in nomine dei"); err != nil {
		t.Fatalf("Expected variant registered, got error: %v", err)
	}
	model, err := NewModel(m, 2)
	if err != nil {
		t.Fatalf("Expected model, got error: %v", err)
	}

	model.CountDoc(strings.Fields("in nomine domini amen"))
	model.CountDoc(strings.Fields("in nomine dei amen"))

	ctx, ok := model.Contexts("in nomine domini")
	if !ok {
		t.Fatal("Expected contexts under the main phrase")
	}
	if ctx.Count != 2 {
		t.Errorf("Expected both forms counted under the main, got %d", ctx.Count)
	}
	if _, ok := model.Contexts("in nomine dei"); ok {
		t.Error("Expected no separate contexts under the variant form")
	}
}

func TestCountDocMultipleLengthsPerPosition(t *testing.T) {
	m := NewPhraseMap([]string{"anno domini", "anno"})
	model, err := NewModel(m, 1)
	if err != nil {
		t.Fatalf("Expected model, got error: %v", err)
	}
	model.CountDoc(strings.Fields("datum anno domini millesimo"))

	short, _ := model.Contexts("anno")
	long, _ := model.Contexts("anno domini")
	if short == nil || short.Count != 1 {
		t.Errorf("Expected the one-token phrase matched, got %v", short)
	}
	if long == nil || long.Count != 1 {
		t.Errorf("Expected the two-token phrase matched at the same position, got %v", long)
	}
}

func TestModelCountScansCorpus(t *testing.T) {
	m := NewPhraseMap([]string{"bona fide"})
	model, err := NewModel(m, 0)
	if err != nil {
		t.Fatalf("Expected model, got error: %v", err)
	}
	src := corpus.FromWords([][]string{
		strings.Fields("acting bona fide throughout"),
		strings.Fields("nothing to see"),
		strings.Fields("bona fide again"),
	})
	if err := model.Count(src); err != nil {
		t.Fatalf("Expected corpus pass, got error: %v", err)
	}
	ctx, ok := model.Contexts("bona fide")
	if !ok || ctx.Count != 2 {
		t.Fatalf("Expected 2 occurrences, got %v", ctx)
	}
	// default window size applies
	if got := ctx.Post.Get("throughout"); got != 1 {
		t.Errorf("Expected following window \"throughout\" once, got %d", got)
	}
}

func TestPostTransitionsFoldsVariants(t *testing.T) {
	m := NewPhraseMap([]string{"in nomine"})
	model, err := NewModel(m, 1)
	if err != nil {
		t.Fatalf("Expected model, got error: %v", err)
	}
	model.CountDoc(strings.Fields("in nomine domini"))
	model.CountDoc(strings.Fields("in nomine dominj"))

	folded := model.PostTransitions("in nomine", map[string]string{"dominj": "domini"})
	if got := folded.Get("domini"); got != 2 {
		t.Errorf("Expected spelling variants merged into 2 counts, got %d", got)
	}
	if folded.Len() != 1 {
		t.Errorf("Expected a single folded window, got %d", folded.Len())
	}
}

func TestNewModelValidation(t *testing.T) {
	if _, err := NewModel(NewPhraseMap(nil), -1); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for a negative context size, got %v", err)
	}
}
