package variants

import (
	"reflect"
	"testing"

	"github.com/cognicore/formulary/pkg/formulary/search"
)

func TestSlotFillers(t *testing.T) {
	matches := []search.PhraseMatch{
		{VariableTerms: []string{"color", "johannes"}},
		{VariableTerms: []string{"colour", "iohannes"}},
		{VariableTerms: []string{"colour"}},
	}
	variantOf := map[string]string{"color": "colour", "johannes": "iohannes"}

	slots := SlotFillers(matches, variantOf)
	if len(slots) != 2 {
		t.Fatalf("Expected 2 slots, got %d", len(slots))
	}
	if got := slots[0].Get("colour"); got != 3 {
		t.Errorf("Expected 3 folded fillers for \"colour\", got %d", got)
	}
	if got := slots[1].Get("iohannes"); got != 2 {
		t.Errorf("Expected 2 folded fillers for \"iohannes\", got %d", got)
	}
}

func TestConstructDominantPhrases(t *testing.T) {
	phrase := search.ParsePhrase("in nomine " + search.Var + " amen")

	t.Run("single dominant", func(t *testing.T) {
		got := ConstructDominantPhrases(phrase, [][]string{{"domini"}})
		if len(got) != 1 || got[0].String() != "in nomine domini amen" {
			t.Errorf("Expected [in nomine domini amen], got %v", got)
		}
	})

	t.Run("multiple dominants expand", func(t *testing.T) {
		got := ConstructDominantPhrases(phrase, [][]string{{"domini", "dei"}})
		want := []string{"in nomine domini amen", "in nomine dei amen"}
		var strs []string
		for _, p := range got {
			strs = append(strs, p.String())
		}
		if !reflect.DeepEqual(strs, want) {
			t.Errorf("Expected %v, got %v", want, strs)
		}
	})

	t.Run("no dominant keeps placeholder", func(t *testing.T) {
		got := ConstructDominantPhrases(phrase, [][]string{nil})
		if len(got) != 1 || got[0].String() != phrase.String() {
			t.Errorf("Expected the template unchanged, got %v", got)
		}
	})

	t.Run("no variables", func(t *testing.T) {
		plain := search.ParsePhrase("in nomine domini")
		got := ConstructDominantPhrases(plain, nil)
		if len(got) != 1 || got[0].String() != "in nomine domini" {
			t.Errorf("Expected the phrase unchanged, got %v", got)
		}
	})

	t.Run("two slots combine", func(t *testing.T) {
		p := search.ParsePhrase(search.Var + " et " + search.Var)
		got := ConstructDominantPhrases(p, [][]string{{"a", "b"}, {"x"}})
		want := []string{"a et x", "b et x"}
		var strs []string
		for _, q := range got {
			strs = append(strs, q.String())
		}
		if !reflect.DeepEqual(strs, want) {
			t.Errorf("Expected %v, got %v", want, strs)
		}
	})
}
